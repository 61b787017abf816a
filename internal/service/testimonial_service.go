package service

import (
	"fmt"
	"strings"

	"github.com/sunoy2004/yanc-cms-sub001/internal/db"
	"gorm.io/gorm"
)

// ErrTestimonialNotFound is returned when a testimonial does not exist.
var ErrTestimonialNotFound = fmt.Errorf("testimonial %w", ErrNotFound)

// TestimonialService handles testimonial CRUD.
type TestimonialService struct {
	*contentStore[db.Testimonial, *db.Testimonial]
}

// TestimonialInput represents fields accepted when creating or updating a testimonial.
// A rating of 0 means unrated.
type TestimonialInput struct {
	Author     string `json:"author" validate:"required,max=120"`
	AuthorRole string `json:"author_role" validate:"max=200"`
	Quote      string `json:"quote" validate:"required,max=5000"`
	AvatarURL  string `json:"avatar_url" validate:"omitempty,max=1000,weblink"`
	Rating     int    `json:"rating" validate:"min=0,max=5"`
	Published  *bool  `json:"published"`
	SortOrder  *int   `json:"sort_order" validate:"omitempty,min=0"`
}

// NewTestimonialService creates a TestimonialService instance.
func NewTestimonialService(gdb *gorm.DB) *TestimonialService {
	return &TestimonialService{
		contentStore: newContentStore[db.Testimonial, *db.Testimonial](gdb, ErrTestimonialNotFound, "author", "author_role", "quote"),
	}
}

// InputFrom projects a stored testimonial back into an input.
func (s *TestimonialService) InputFrom(item *db.Testimonial) TestimonialInput {
	published := item.Published
	sortOrder := item.SortOrder
	return TestimonialInput{
		Author:     item.Author,
		AuthorRole: item.AuthorRole,
		Quote:      item.Quote,
		AvatarURL:  item.AvatarURL,
		Rating:     item.Rating,
		Published:  &published,
		SortOrder:  &sortOrder,
	}
}

// Create inserts a new testimonial.
func (s *TestimonialService) Create(input TestimonialInput) (*db.Testimonial, error) {
	input, err := prepareTestimonial(input)
	if err != nil {
		return nil, err
	}

	item := db.Testimonial{}
	assignTestimonial(&item, input)
	if err := s.applyInputState(&item, input.Published, input.SortOrder, true); err != nil {
		return nil, err
	}

	if err := s.db.Create(&item).Error; err != nil {
		return nil, fmt.Errorf("create testimonial: %w", err)
	}
	return &item, nil
}

// Update replaces every field of an existing testimonial.
func (s *TestimonialService) Update(id uint, input TestimonialInput) (*db.Testimonial, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	input, err = prepareTestimonial(input)
	if err != nil {
		return nil, err
	}

	assignTestimonial(item, input)
	if err := s.applyInputState(item, input.Published, input.SortOrder, false); err != nil {
		return nil, err
	}

	if err := s.db.Save(item).Error; err != nil {
		return nil, fmt.Errorf("update testimonial: %w", err)
	}
	return item, nil
}

// ListPublished returns published testimonials in display order.
func (s *TestimonialService) ListPublished(limit int) ([]db.Testimonial, error) {
	return s.published(limit, nil)
}

func prepareTestimonial(input TestimonialInput) (TestimonialInput, error) {
	input.Author = plainText(input.Author)
	input.AuthorRole = plainText(input.AuthorRole)
	input.Quote = plainText(input.Quote)
	input.AvatarURL = strings.TrimSpace(input.AvatarURL)

	if err := validateStruct(input); err != nil {
		return input, err
	}
	return input, nil
}

func assignTestimonial(item *db.Testimonial, input TestimonialInput) {
	item.Author = input.Author
	item.AuthorRole = input.AuthorRole
	item.Quote = input.Quote
	item.AvatarURL = input.AvatarURL
	item.Rating = input.Rating
}
