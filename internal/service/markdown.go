package service

import (
	"bytes"
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(goldmarkhtml.WithHardWraps(), goldmarkhtml.WithXHTML(), goldmarkhtml.WithUnsafe()),
	)
	contentSanitizer = contentPolicy()
	strictPolicy     = bluemonday.StrictPolicy()
)

// RenderMarkdown converts markdown to HTML safe to embed in the public site.
// Standalone YouTube and Vimeo links become players.
func RenderMarkdown(content string) (string, error) {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(applyVideoEmbeds(content)), &buf); err != nil {
		return "", err
	}
	return string(contentSanitizer.SanitizeBytes(buf.Bytes())), nil
}

const maxPlainTextPasses = 8

var angleBrackets = strings.NewReplacer("<", "", ">", "")

// plainText strips all markup from editor supplied rich text fields.
// Entities are decoded before sanitizing and the pass repeats until the value is stable.
func plainText(value string) string {
	current := strings.TrimSpace(value)
	for range maxPlainTextPasses {
		if current == "" {
			return ""
		}
		next := strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(html.UnescapeString(current))))
		if next == current {
			return current
		}
		current = next
	}
	// still changing after deep entity nesting; drop anything tag-like
	return strings.TrimSpace(angleBrackets.Replace(current))
}

// slugify derives a URL slug from a title.
func slugify(value string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(value)) {
		switch {
		case r == '\'' || r == '’':
			continue
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		default:
			pendingHyphen = true
		}
	}

	slug := b.String()
	if len(slug) > 200 {
		slug = strings.TrimRight(slug[:200], "-")
	}
	return slug
}
