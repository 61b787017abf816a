package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/sunoy2004/yanc-cms-sub001/internal/db"
	"gorm.io/gorm"
)

// ErrMentorTalkNotFound is returned when a mentor talk does not exist.
var ErrMentorTalkNotFound = fmt.Errorf("mentor talk %w", ErrNotFound)

// MentorTalkService handles mentor talk CRUD.
type MentorTalkService struct {
	*contentStore[db.MentorTalk, *db.MentorTalk]
}

// MentorTalkInput represents fields accepted when creating or updating a mentor talk.
type MentorTalkInput struct {
	Title        string     `json:"title" validate:"required,max=200"`
	Speaker      string     `json:"speaker" validate:"required,max=120"`
	SpeakerRole  string     `json:"speaker_role" validate:"max=200"`
	Description  string     `json:"description" validate:"max=20000"`
	TalkDate     *time.Time `json:"talk_date"`
	VideoURL     string     `json:"video_url" validate:"omitempty,max=1000,url"`
	ThumbnailURL string     `json:"thumbnail_url" validate:"omitempty,max=1000,weblink"`
	Published    *bool      `json:"published"`
	SortOrder    *int       `json:"sort_order" validate:"omitempty,min=0"`
}

// NewMentorTalkService creates a MentorTalkService instance.
func NewMentorTalkService(gdb *gorm.DB) *MentorTalkService {
	return &MentorTalkService{
		contentStore: newContentStore[db.MentorTalk, *db.MentorTalk](gdb, ErrMentorTalkNotFound, "title", "speaker", "speaker_role"),
	}
}

// InputFrom projects a stored talk back into an input.
func (s *MentorTalkService) InputFrom(talk *db.MentorTalk) MentorTalkInput {
	published := talk.Published
	sortOrder := talk.SortOrder
	return MentorTalkInput{
		Title:        talk.Title,
		Speaker:      talk.Speaker,
		SpeakerRole:  talk.SpeakerRole,
		Description:  talk.Description,
		TalkDate:     talk.TalkDate,
		VideoURL:     talk.VideoURL,
		ThumbnailURL: talk.ThumbnailURL,
		Published:    &published,
		SortOrder:    &sortOrder,
	}
}

// Create inserts a new mentor talk.
func (s *MentorTalkService) Create(input MentorTalkInput) (*db.MentorTalk, error) {
	input, err := prepareMentorTalk(input)
	if err != nil {
		return nil, err
	}

	talk := db.MentorTalk{}
	assignMentorTalk(&talk, input)
	if err := s.applyInputState(&talk, input.Published, input.SortOrder, true); err != nil {
		return nil, err
	}

	if err := s.db.Create(&talk).Error; err != nil {
		return nil, fmt.Errorf("create mentor talk: %w", err)
	}
	return &talk, nil
}

// Update replaces every field of an existing mentor talk.
func (s *MentorTalkService) Update(id uint, input MentorTalkInput) (*db.MentorTalk, error) {
	talk, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	input, err = prepareMentorTalk(input)
	if err != nil {
		return nil, err
	}

	assignMentorTalk(talk, input)
	if err := s.applyInputState(talk, input.Published, input.SortOrder, false); err != nil {
		return nil, err
	}

	if err := s.db.Save(talk).Error; err != nil {
		return nil, fmt.Errorf("update mentor talk: %w", err)
	}
	return talk, nil
}

// ListPublished returns published talks in display order.
func (s *MentorTalkService) ListPublished(limit int) ([]db.MentorTalk, error) {
	return s.published(limit, nil)
}

func prepareMentorTalk(input MentorTalkInput) (MentorTalkInput, error) {
	input.Title = plainText(input.Title)
	input.Speaker = plainText(input.Speaker)
	input.SpeakerRole = plainText(input.SpeakerRole)
	input.Description = plainText(input.Description)
	input.VideoURL = strings.TrimSpace(input.VideoURL)
	input.ThumbnailURL = strings.TrimSpace(input.ThumbnailURL)
	if input.TalkDate != nil {
		talkDate := input.TalkDate.UTC()
		input.TalkDate = &talkDate
	}

	if err := validateStruct(input); err != nil {
		return input, err
	}
	return input, nil
}

func assignMentorTalk(talk *db.MentorTalk, input MentorTalkInput) {
	talk.Title = input.Title
	talk.Speaker = input.Speaker
	talk.SpeakerRole = input.SpeakerRole
	talk.Description = input.Description
	talk.TalkDate = input.TalkDate
	talk.VideoURL = input.VideoURL
	talk.ThumbnailURL = input.ThumbnailURL
}
