package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/sunoy2004/yanc-cms-sub001/internal/db"
	"gorm.io/gorm"
)

const (
	EventTypeWorkshop   = "workshop"
	EventTypeWebinar    = "webinar"
	EventTypeMeetup     = "meetup"
	EventTypeConference = "conference"
	EventTypeHackathon  = "hackathon"

	EventsUpcoming = "upcoming"
	EventsPast     = "past"
)

// ErrEventNotFound is returned when an event does not exist.
var ErrEventNotFound = fmt.Errorf("event %w", ErrNotFound)

// EventService handles event CRUD and the public upcoming/past listings.
type EventService struct {
	*contentStore[db.Event, *db.Event]
}

// EventInput represents fields accepted when creating or updating an event.
type EventInput struct {
	Title           string     `json:"title" validate:"required,max=200"`
	Description     string     `json:"description" validate:"max=20000"`
	Location        string     `json:"location" validate:"max=200"`
	StartsAt        time.Time  `json:"starts_at" validate:"required"`
	EndsAt          *time.Time `json:"ends_at"`
	ImageURL        string     `json:"image_url" validate:"omitempty,max=1000,weblink"`
	RegistrationURL string     `json:"registration_url" validate:"omitempty,max=1000,url"`
	EventType       string     `json:"event_type" validate:"required,oneof=workshop webinar meetup conference hackathon"`
	Published       *bool      `json:"published"`
	SortOrder       *int       `json:"sort_order" validate:"omitempty,min=0"`
}

// NewEventService creates an EventService instance.
func NewEventService(gdb *gorm.DB) *EventService {
	return &EventService{
		contentStore: newContentStore[db.Event, *db.Event](gdb, ErrEventNotFound, "title", "location", "description"),
	}
}

// InputFrom projects a stored event back into an input.
func (s *EventService) InputFrom(event *db.Event) EventInput {
	published := event.Published
	sortOrder := event.SortOrder
	return EventInput{
		Title:           event.Title,
		Description:     event.Description,
		Location:        event.Location,
		StartsAt:        event.StartsAt,
		EndsAt:          event.EndsAt,
		ImageURL:        event.ImageURL,
		RegistrationURL: event.RegistrationURL,
		EventType:       event.EventType,
		Published:       &published,
		SortOrder:       &sortOrder,
	}
}

// Create inserts a new event.
func (s *EventService) Create(input EventInput) (*db.Event, error) {
	input, err := prepareEvent(input)
	if err != nil {
		return nil, err
	}

	event := db.Event{}
	assignEvent(&event, input)
	if err := s.applyInputState(&event, input.Published, input.SortOrder, true); err != nil {
		return nil, err
	}

	if err := s.db.Create(&event).Error; err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return &event, nil
}

// Update replaces every field of an existing event.
func (s *EventService) Update(id uint, input EventInput) (*db.Event, error) {
	event, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	input, err = prepareEvent(input)
	if err != nil {
		return nil, err
	}

	assignEvent(event, input)
	if err := s.applyInputState(event, input.Published, input.SortOrder, false); err != nil {
		return nil, err
	}

	if err := s.db.Save(event).Error; err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

// ListPublished returns published events. when selects upcoming (still running or in the
// future, soonest first), past (finished, most recent first) or all of them.
func (s *EventService) ListPublished(when string, now time.Time, limit int) ([]db.Event, error) {
	now = now.UTC()

	var refine func(*gorm.DB) *gorm.DB
	switch strings.ToLower(strings.TrimSpace(when)) {
	case "":
		refine = func(q *gorm.DB) *gorm.DB {
			return q.Order("starts_at desc")
		}
	case EventsUpcoming:
		refine = func(q *gorm.DB) *gorm.DB {
			return q.Where("COALESCE(ends_at, starts_at) >= ?", now).Order("starts_at asc")
		}
	case EventsPast:
		refine = func(q *gorm.DB) *gorm.DB {
			return q.Where("COALESCE(ends_at, starts_at) < ?", now).Order("starts_at desc")
		}
	default:
		return nil, fieldError("when", "when must be one of upcoming, past")
	}

	return s.published(limit, refine)
}

func prepareEvent(input EventInput) (EventInput, error) {
	input.Title = plainText(input.Title)
	input.Description = plainText(input.Description)
	input.Location = plainText(input.Location)
	input.ImageURL = strings.TrimSpace(input.ImageURL)
	input.RegistrationURL = strings.TrimSpace(input.RegistrationURL)
	input.EventType = strings.ToLower(strings.TrimSpace(input.EventType))
	if input.EventType == "" {
		input.EventType = EventTypeMeetup
	}

	if err := validateStruct(input); err != nil {
		return input, err
	}

	input.StartsAt = input.StartsAt.UTC()
	if input.EndsAt != nil {
		if input.EndsAt.Before(input.StartsAt) {
			return input, fieldError("ends_at", "ends_at must not be before starts_at")
		}
		endsAt := input.EndsAt.UTC()
		input.EndsAt = &endsAt
	}

	return input, nil
}

func assignEvent(event *db.Event, input EventInput) {
	event.Title = input.Title
	event.Description = input.Description
	event.Location = input.Location
	event.StartsAt = input.StartsAt
	event.EndsAt = input.EndsAt
	event.ImageURL = input.ImageURL
	event.RegistrationURL = input.RegistrationURL
	event.EventType = input.EventType
}
