package service

import (
	"fmt"
	htmlstd "html"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

const (
	VideoPlatformYouTube = "youtube"
	VideoPlatformVimeo   = "vimeo"
)

var (
	videoLinePattern     = regexp.MustCompile(`^\s*<?((?:https?://)?[^\s<>]+)>?\s*$`)
	videoEmbedSrcPattern = regexp.MustCompile(`^https://(?:www\.youtube(?:-nocookie)?\.com/embed/|player\.vimeo\.com/video/)`)
	youTubeTimePattern   = regexp.MustCompile(`(?i)(\d+)(h|m|s)`)
	listItemPattern      = regexp.MustCompile(`^(?:[-*+]|\d+\.)\s+`)
)

// VideoEmbed describes an iframe-ready player for a talk recording.
type VideoEmbed struct {
	Platform string
	Source   string
	EmbedURL string
}

// contentPolicy extends the UGC policy with video players from known hosts.
func contentPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("iframe")
	policy.AllowAttrs("class", "data-video-platform").OnElements("div")
	policy.AllowAttrs("src").Matching(videoEmbedSrcPattern).OnElements("iframe")
	policy.AllowAttrs("title", "allow", "allowfullscreen", "frameborder", "loading", "referrerpolicy").OnElements("iframe")
	return policy
}

// ParseVideoEmbed recognises YouTube and Vimeo links.
func ParseVideoEmbed(raw string) (VideoEmbed, bool) {
	trimmed := strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(raw), "<"), ">")
	if trimmed == "" {
		return VideoEmbed{}, false
	}
	lower := strings.ToLower(trimmed)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		trimmed = "https://" + trimmed
	}

	u, err := url.Parse(trimmed)
	if err != nil || u.Hostname() == "" {
		return VideoEmbed{}, false
	}

	if embedURL, ok := youTubeEmbedURL(u); ok {
		return VideoEmbed{Platform: VideoPlatformYouTube, Source: trimmed, EmbedURL: embedURL}, true
	}
	if embedURL, ok := vimeoEmbedURL(u); ok {
		return VideoEmbed{Platform: VideoPlatformVimeo, Source: trimmed, EmbedURL: embedURL}, true
	}
	return VideoEmbed{}, false
}

func youTubeEmbedURL(u *url.URL) (string, bool) {
	host := strings.ToLower(u.Hostname())
	path := strings.Trim(u.Path, "/")

	var videoID string
	switch {
	case host == "youtu.be":
		videoID = path
	case isHostOrSubdomain(host, "youtube.com"):
		switch {
		case path == "watch":
			videoID = u.Query().Get("v")
		case strings.HasPrefix(path, "embed/"):
			videoID = strings.TrimPrefix(path, "embed/")
		case strings.HasPrefix(path, "shorts/"):
			videoID = strings.TrimPrefix(path, "shorts/")
		case strings.HasPrefix(path, "live/"):
			videoID = strings.TrimPrefix(path, "live/")
		}
	default:
		return "", false
	}
	videoID, _, _ = strings.Cut(videoID, "/")
	if videoID == "" {
		return "", false
	}

	values := url.Values{}
	values.Set("rel", "0")
	values.Set("modestbranding", "1")
	if start := youTubeStart(u.Query()); start > 0 {
		values.Set("start", strconv.Itoa(start))
	}
	return fmt.Sprintf("https://www.youtube.com/embed/%s?%s", url.PathEscape(videoID), values.Encode()), true
}

// youTubeStart accepts t=90, t=1m30s or start=90.
func youTubeStart(query url.Values) int {
	value := query.Get("start")
	if value == "" {
		value = query.Get("t")
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return max(seconds, 0)
	}

	total := 0
	for _, match := range youTubeTimePattern.FindAllStringSubmatch(value, -1) {
		n, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		switch strings.ToLower(match[2]) {
		case "h":
			total += n * 3600
		case "m":
			total += n * 60
		case "s":
			total += n
		}
	}
	return total
}

func vimeoEmbedURL(u *url.URL) (string, bool) {
	host := strings.ToLower(u.Hostname())
	if !isHostOrSubdomain(host, "vimeo.com") {
		return "", false
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if host == "player.vimeo.com" && len(segments) == 2 && segments[0] == "video" {
		segments = segments[1:]
	}
	videoID := segments[len(segments)-1]
	if videoID == "" || !onlyDigits(videoID) {
		return "", false
	}
	return "https://player.vimeo.com/video/" + videoID, true
}

// applyVideoEmbeds swaps standalone video links outside code blocks, quotes and lists for players.
func applyVideoEmbeds(markdown string) string {
	if strings.TrimSpace(markdown) == "" {
		return markdown
	}

	lines := strings.Split(markdown, "\n")
	fence := ""
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			switch {
			case fence == "":
				fence = trimmed[:3]
			case strings.HasPrefix(trimmed, fence):
				fence = ""
			}
			continue
		}
		if fence != "" || trimmed == "" || strings.HasPrefix(line, "    ") || strings.HasPrefix(line, "\t") {
			continue
		}
		if strings.HasPrefix(trimmed, ">") || listItemPattern.MatchString(trimmed) {
			continue
		}

		match := videoLinePattern.FindStringSubmatch(trimmed)
		if match == nil {
			continue
		}
		embed, ok := ParseVideoEmbed(match[1])
		if !ok {
			continue
		}
		lines[i] = "\n" + videoEmbedHTML(embed) + "\n"
	}
	return strings.Join(lines, "\n")
}

func videoEmbedHTML(embed VideoEmbed) string {
	return fmt.Sprintf(
		`<div class="video-embed" data-video-platform="%s"><iframe src="%s" title="Video player" loading="lazy" allow="encrypted-media; picture-in-picture; web-share" allowfullscreen frameborder="0" referrerpolicy="strict-origin-when-cross-origin"></iframe></div>`,
		htmlstd.EscapeString(embed.Platform),
		htmlstd.EscapeString(embed.EmbedURL),
	)
}

func isHostOrSubdomain(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}

func onlyDigits(value string) bool {
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return value != ""
}
