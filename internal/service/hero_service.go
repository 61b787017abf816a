package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sunoy2004/yanc-cms-sub001/internal/db"
	"gorm.io/gorm"
)

// ErrHeroNotFound is returned when a hero banner does not exist.
var ErrHeroNotFound = fmt.Errorf("hero %w", ErrNotFound)

// HeroService handles hero banner CRUD.
type HeroService struct {
	*contentStore[db.HeroContent, *db.HeroContent]
}

// HeroInput represents fields accepted when creating or updating a hero banner.
type HeroInput struct {
	Title     string `json:"title" validate:"required,max=200"`
	Subtitle  string `json:"subtitle" validate:"max=500"`
	CTAText   string `json:"cta_text" validate:"max=100"`
	CTALink   string `json:"cta_link" validate:"omitempty,max=500,weblink"`
	ImageURL  string `json:"image_url" validate:"omitempty,max=1000,weblink"`
	MediaID   *uint  `json:"media_id"`
	Published *bool  `json:"published"`
	SortOrder *int   `json:"sort_order" validate:"omitempty,min=0"`
}

// NewHeroService creates a HeroService instance.
func NewHeroService(gdb *gorm.DB) *HeroService {
	return &HeroService{
		contentStore: newContentStore[db.HeroContent, *db.HeroContent](gdb, ErrHeroNotFound, "title", "subtitle"),
	}
}

// InputFrom projects a stored banner back into an input, used to merge partial updates.
func (s *HeroService) InputFrom(hero *db.HeroContent) HeroInput {
	published := hero.Published
	sortOrder := hero.SortOrder
	return HeroInput{
		Title:     hero.Title,
		Subtitle:  hero.Subtitle,
		CTAText:   hero.CTAText,
		CTALink:   hero.CTALink,
		ImageURL:  hero.ImageURL,
		MediaID:   hero.MediaID,
		Published: &published,
		SortOrder: &sortOrder,
	}
}

// Create inserts a new hero banner.
func (s *HeroService) Create(input HeroInput) (*db.HeroContent, error) {
	input, err := s.prepare(input)
	if err != nil {
		return nil, err
	}

	hero := db.HeroContent{}
	assignHero(&hero, input)
	if err := s.applyInputState(&hero, input.Published, input.SortOrder, true); err != nil {
		return nil, err
	}

	if err := s.db.Create(&hero).Error; err != nil {
		return nil, fmt.Errorf("create hero: %w", err)
	}
	return &hero, nil
}

// Update replaces every field of an existing hero banner.
func (s *HeroService) Update(id uint, input HeroInput) (*db.HeroContent, error) {
	hero, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	input, err = s.prepare(input)
	if err != nil {
		return nil, err
	}

	assignHero(hero, input)
	if err := s.applyInputState(hero, input.Published, input.SortOrder, false); err != nil {
		return nil, err
	}

	if err := s.db.Save(hero).Error; err != nil {
		return nil, fmt.Errorf("update hero: %w", err)
	}
	return hero, nil
}

// Active returns the banner the public site shows: the first published one in display order.
func (s *HeroService) Active() (*db.HeroContent, error) {
	items, err := s.published(1, nil)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrHeroNotFound
	}
	return &items[0], nil
}

// ListPublished returns published banners in display order.
func (s *HeroService) ListPublished(limit int) ([]db.HeroContent, error) {
	return s.published(limit, nil)
}

func (s *HeroService) prepare(input HeroInput) (HeroInput, error) {
	input.Title = plainText(input.Title)
	input.Subtitle = plainText(input.Subtitle)
	input.CTAText = plainText(input.CTAText)
	input.CTALink = strings.TrimSpace(input.CTALink)
	input.ImageURL = strings.TrimSpace(input.ImageURL)

	if err := validateStruct(input); err != nil {
		return input, err
	}
	if input.CTAText != "" && input.CTALink == "" {
		return input, fieldError("cta_link", "cta_link is required when cta_text is set")
	}

	if input.MediaID != nil {
		var media db.MediaItem
		if err := s.db.First(&media, *input.MediaID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return input, fieldError("media_id", "media_id does not reference an uploaded file")
			}
			return input, err
		}
		if input.ImageURL == "" {
			input.ImageURL = media.URL
		}
	}

	return input, nil
}

func assignHero(hero *db.HeroContent, input HeroInput) {
	hero.Title = input.Title
	hero.Subtitle = input.Subtitle
	hero.CTAText = input.CTAText
	hero.CTALink = input.CTALink
	hero.ImageURL = input.ImageURL
	hero.MediaID = input.MediaID
}
