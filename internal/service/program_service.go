package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sunoy2004/yanc-cms-sub001/internal/db"
	"gorm.io/gorm"
)

const (
	ProgramCategoryBootcamp   = "bootcamp"
	ProgramCategoryMentorship = "mentorship"
	ProgramCategoryFellowship = "fellowship"
	ProgramCategoryCourse     = "course"
)

var (
	// ErrProgramNotFound is returned when a program does not exist.
	ErrProgramNotFound = fmt.Errorf("program %w", ErrNotFound)
	// ErrProgramSlugTaken is returned when another program already uses the slug.
	ErrProgramSlugTaken = fmt.Errorf("program slug %w", ErrConflict)
)

// ProgramService handles program CRUD.
type ProgramService struct {
	*contentStore[db.Program, *db.Program]
}

// ProgramInput represents fields accepted when creating or updating a program.
// Description is markdown.
type ProgramInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Slug        string `json:"slug" validate:"omitempty,max=200,slug"`
	Summary     string `json:"summary" validate:"max=500"`
	Description string `json:"description" validate:"max=50000"`
	Category    string `json:"category" validate:"required,oneof=bootcamp mentorship fellowship course"`
	Duration    string `json:"duration" validate:"max=100"`
	ImageURL    string `json:"image_url" validate:"omitempty,max=1000,weblink"`
	ApplyURL    string `json:"apply_url" validate:"omitempty,max=1000,url"`
	Published   *bool  `json:"published"`
	SortOrder   *int   `json:"sort_order" validate:"omitempty,min=0"`
}

// NewProgramService creates a ProgramService instance.
func NewProgramService(gdb *gorm.DB) *ProgramService {
	return &ProgramService{
		contentStore: newContentStore[db.Program, *db.Program](gdb, ErrProgramNotFound, "title", "summary", "category"),
	}
}

// InputFrom projects a stored program back into an input.
func (s *ProgramService) InputFrom(program *db.Program) ProgramInput {
	published := program.Published
	sortOrder := program.SortOrder
	return ProgramInput{
		Title:       program.Title,
		Slug:        program.Slug,
		Summary:     program.Summary,
		Description: program.Description,
		Category:    program.Category,
		Duration:    program.Duration,
		ImageURL:    program.ImageURL,
		ApplyURL:    program.ApplyURL,
		Published:   &published,
		SortOrder:   &sortOrder,
	}
}

// Create inserts a new program, deriving the slug from the title when none is given.
func (s *ProgramService) Create(input ProgramInput) (*db.Program, error) {
	input, err := s.prepare(input, 0)
	if err != nil {
		return nil, err
	}

	program := db.Program{}
	assignProgram(&program, input)
	if err := s.applyInputState(&program, input.Published, input.SortOrder, true); err != nil {
		return nil, err
	}

	if err := s.db.Create(&program).Error; err != nil {
		return nil, fmt.Errorf("create program: %w", err)
	}
	return &program, nil
}

// Update replaces every field of an existing program.
func (s *ProgramService) Update(id uint, input ProgramInput) (*db.Program, error) {
	program, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	input, err = s.prepare(input, id)
	if err != nil {
		return nil, err
	}

	assignProgram(program, input)
	if err := s.applyInputState(program, input.Published, input.SortOrder, false); err != nil {
		return nil, err
	}

	if err := s.db.Save(program).Error; err != nil {
		return nil, fmt.Errorf("update program: %w", err)
	}
	return program, nil
}

// GetBySlug fetches a published program for the public site.
func (s *ProgramService) GetBySlug(slug string) (*db.Program, error) {
	var program db.Program
	err := s.db.Where("slug = ? AND published = ?", strings.ToLower(strings.TrimSpace(slug)), true).First(&program).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}
	return &program, nil
}

// ListPublished returns published programs, optionally limited to one category.
func (s *ProgramService) ListPublished(category string, limit int) ([]db.Program, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		return s.published(limit, nil)
	}
	return s.published(limit, func(q *gorm.DB) *gorm.DB {
		return q.Where("category = ?", category)
	})
}

func (s *ProgramService) prepare(input ProgramInput, excludeID uint) (ProgramInput, error) {
	input.Title = plainText(input.Title)
	input.Summary = plainText(input.Summary)
	input.Description = strings.TrimSpace(input.Description)
	input.Category = strings.ToLower(strings.TrimSpace(input.Category))
	input.Duration = plainText(input.Duration)
	input.ImageURL = strings.TrimSpace(input.ImageURL)
	input.ApplyURL = strings.TrimSpace(input.ApplyURL)
	input.Slug = strings.ToLower(strings.TrimSpace(input.Slug))
	if input.Slug == "" {
		input.Slug = slugify(input.Title)
	}

	if err := validateStruct(input); err != nil {
		return input, err
	}
	if input.Slug == "" {
		return input, fieldError("slug", "slug could not be derived from the title")
	}

	var count int64
	if err := s.db.Model(&db.Program{}).
		Where("slug = ? AND id <> ?", input.Slug, excludeID).
		Count(&count).Error; err != nil {
		return input, fmt.Errorf("check program slug: %w", err)
	}
	if count > 0 {
		return input, ErrProgramSlugTaken
	}

	return input, nil
}

func assignProgram(program *db.Program, input ProgramInput) {
	program.Title = input.Title
	program.Slug = input.Slug
	program.Summary = input.Summary
	program.Description = input.Description
	program.Category = input.Category
	program.Duration = input.Duration
	program.ImageURL = input.ImageURL
	program.ApplyURL = input.ApplyURL
}
