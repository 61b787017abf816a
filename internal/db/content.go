package db

import (
	"time"

	"gorm.io/gorm"
)

// Publishing is embedded by every record the public site can show.
type Publishing struct {
	Published   bool `gorm:"not null;default:false;index"`
	PublishedAt *time.Time
	SortOrder   int `gorm:"not null;default:0;index"`
}

// PublishState exposes the embedded publishing fields to generic code.
func (p *Publishing) PublishState() *Publishing {
	return p
}

// SetPublished flips the flag and keeps PublishedAt in step with it.
func (p *Publishing) SetPublished(published bool, now time.Time) {
	if published {
		if !p.Published || p.PublishedAt == nil {
			stamp := now
			p.PublishedAt = &stamp
		}
	} else {
		p.PublishedAt = nil
	}
	p.Published = published
}

// HeroContent is a banner shown at the top of the marketing site.
type HeroContent struct {
	gorm.Model
	Title    string `gorm:"size:200;not null"`
	Subtitle string `gorm:"size:500"`
	CTAText  string `gorm:"column:cta_text;size:100"`
	CTALink  string `gorm:"column:cta_link;size:500"`
	ImageURL string `gorm:"size:1000"`
	MediaID  *uint
	Publishing
}

// TableName keeps the table name stable regardless of pluralization rules.
func (HeroContent) TableName() string {
	return "hero_contents"
}

// Event 活动
type Event struct {
	gorm.Model
	Title           string    `gorm:"size:200;not null"`
	Description     string    `gorm:"type:text"`
	Location        string    `gorm:"size:200"`
	StartsAt        time.Time `gorm:"not null;index"`
	EndsAt          *time.Time
	ImageURL        string `gorm:"size:1000"`
	RegistrationURL string `gorm:"size:1000"`
	EventType       string `gorm:"size:32;index"`
	Publishing
}

// Program is a long-running offering such as a bootcamp or fellowship.
type Program struct {
	gorm.Model
	Title       string `gorm:"size:200;not null"`
	Slug        string `gorm:"size:200;index;not null"`
	Summary     string `gorm:"size:500"`
	Description string `gorm:"type:text"`
	Category    string `gorm:"size:32;index"`
	Duration    string `gorm:"size:100"`
	ImageURL    string `gorm:"size:1000"`
	ApplyURL    string `gorm:"size:1000"`
	Publishing
}

// MentorTalk is a recorded or upcoming talk given by a mentor.
type MentorTalk struct {
	gorm.Model
	Title        string `gorm:"size:200;not null"`
	Speaker      string `gorm:"size:120;not null"`
	SpeakerRole  string `gorm:"size:200"`
	Description  string `gorm:"type:text"`
	TalkDate     *time.Time
	VideoURL     string `gorm:"size:1000"`
	ThumbnailURL string `gorm:"size:1000"`
	Publishing
}

// TeamMember 团队成员
type TeamMember struct {
	gorm.Model
	Name        string `gorm:"size:120;not null"`
	Role        string `gorm:"size:120;not null"`
	Bio         string `gorm:"type:text"`
	PhotoURL    string `gorm:"size:1000"`
	LinkedInURL string `gorm:"column:linkedin_url;size:1000"`
	TwitterURL  string `gorm:"size:1000"`
	Email       string `gorm:"size:200"`
	Team        string `gorm:"size:32;index"`
	Publishing
}

// Testimonial is a quote from a participant or partner.
type Testimonial struct {
	gorm.Model
	Author     string `gorm:"size:120;not null"`
	AuthorRole string `gorm:"size:200"`
	Quote      string `gorm:"type:text;not null"`
	AvatarURL  string `gorm:"size:1000"`
	Rating     int    `gorm:"not null;default:0"`
	Publishing
}

// Section is a keyed markdown block such as "about" or "mission".
type Section struct {
	gorm.Model
	Key     string `gorm:"size:100;index;not null"`
	Title   string `gorm:"size:200;not null"`
	Content string `gorm:"type:text"`
	Publishing
}
