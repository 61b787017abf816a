package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sunoy2004/yanc-cms-sub001/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrSectionNotFound is returned when a section does not exist.
	ErrSectionNotFound = fmt.Errorf("section %w", ErrNotFound)
	// ErrSectionKeyTaken is returned when another section already uses the key.
	ErrSectionKeyTaken = fmt.Errorf("section key %w", ErrConflict)
)

// SectionService handles keyed markdown blocks.
type SectionService struct {
	*contentStore[db.Section, *db.Section]
}

// SectionInput represents fields accepted when creating or updating a section.
type SectionInput struct {
	Key       string `json:"key" validate:"required,max=100,slug"`
	Title     string `json:"title" validate:"required,max=200"`
	Content   string `json:"content" validate:"max=100000"`
	Published *bool  `json:"published"`
	SortOrder *int   `json:"sort_order" validate:"omitempty,min=0"`
}

// NewSectionService creates a SectionService instance.
func NewSectionService(gdb *gorm.DB) *SectionService {
	return &SectionService{
		contentStore: newContentStore[db.Section, *db.Section](gdb, ErrSectionNotFound, "key", "title"),
	}
}

// InputFrom projects a stored section back into an input.
func (s *SectionService) InputFrom(section *db.Section) SectionInput {
	published := section.Published
	sortOrder := section.SortOrder
	return SectionInput{
		Key:       section.Key,
		Title:     section.Title,
		Content:   section.Content,
		Published: &published,
		SortOrder: &sortOrder,
	}
}

// Create inserts a new section.
func (s *SectionService) Create(input SectionInput) (*db.Section, error) {
	input, err := s.prepare(input, 0)
	if err != nil {
		return nil, err
	}

	section := db.Section{}
	assignSection(&section, input)
	if err := s.applyInputState(&section, input.Published, input.SortOrder, true); err != nil {
		return nil, err
	}

	if err := s.db.Create(&section).Error; err != nil {
		return nil, fmt.Errorf("create section: %w", err)
	}
	return &section, nil
}

// Update replaces every field of an existing section.
func (s *SectionService) Update(id uint, input SectionInput) (*db.Section, error) {
	section, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	input, err = s.prepare(input, id)
	if err != nil {
		return nil, err
	}

	assignSection(section, input)
	if err := s.applyInputState(section, input.Published, input.SortOrder, false); err != nil {
		return nil, err
	}

	if err := s.db.Save(section).Error; err != nil {
		return nil, fmt.Errorf("update section: %w", err)
	}
	return section, nil
}

// GetByKey fetches a section by key. When publishedOnly is set drafts are reported as missing.
func (s *SectionService) GetByKey(key string, publishedOnly bool) (*db.Section, error) {
	query := s.db.Where("key = ?", strings.ToLower(strings.TrimSpace(key)))
	if publishedOnly {
		query = query.Where("published = ?", true)
	}

	var section db.Section
	if err := query.First(&section).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSectionNotFound
		}
		return nil, err
	}
	return &section, nil
}

// ListPublished returns published sections in display order.
func (s *SectionService) ListPublished(limit int) ([]db.Section, error) {
	return s.published(limit, nil)
}

// Render converts the section markdown into sanitized HTML.
func (s *SectionService) Render(section *db.Section) (string, error) {
	if section == nil {
		return "", nil
	}
	return RenderMarkdown(section.Content)
}

func (s *SectionService) prepare(input SectionInput, excludeID uint) (SectionInput, error) {
	input.Key = strings.ToLower(strings.TrimSpace(input.Key))
	input.Title = plainText(input.Title)
	input.Content = strings.TrimSpace(input.Content)

	if err := validateStruct(input); err != nil {
		return input, err
	}

	var count int64
	if err := s.db.Model(&db.Section{}).
		Where("key = ? AND id <> ?", input.Key, excludeID).
		Count(&count).Error; err != nil {
		return input, fmt.Errorf("check section key: %w", err)
	}
	if count > 0 {
		return input, ErrSectionKeyTaken
	}

	return input, nil
}

func assignSection(section *db.Section, input SectionInput) {
	section.Key = input.Key
	section.Title = input.Title
	section.Content = input.Content
}
