package handler

import (
	"github.com/sunoy2004/yanc-cms-sub001/internal/db"
	"github.com/sunoy2004/yanc-cms-sub001/internal/service"
	"github.com/sunoy2004/yanc-cms-sub001/internal/storage"
	"gorm.io/gorm"
)

// Options carries the settings handlers pass down to services.
type Options struct {
	Auth  service.AuthOptions
	Media service.MediaOptions
}

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db        *gorm.DB
	auth      *service.AuthService
	media     *service.MediaService
	dashboard *service.DashboardService

	heroService    *service.HeroService
	eventService   *service.EventService
	programService *service.ProgramService
	talkService    *service.MentorTalkService
	teamService    *service.TeamService
	quoteService   *service.TestimonialService
	sectionService *service.SectionService

	heroes       *contentResource[db.HeroContent, service.HeroInput]
	events       *contentResource[db.Event, service.EventInput]
	programs     *contentResource[db.Program, service.ProgramInput]
	mentorTalks  *contentResource[db.MentorTalk, service.MentorTalkInput]
	teamMembers  *contentResource[db.TeamMember, service.TeamMemberInput]
	testimonials *contentResource[db.Testimonial, service.TestimonialInput]
	sections     *contentResource[db.Section, service.SectionInput]
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, store storage.Storage, opts Options) *API {
	a := &API{
		db:             gdb,
		auth:           service.NewAuthService(gdb, opts.Auth),
		media:          service.NewMediaService(gdb, store, opts.Media),
		dashboard:      service.NewDashboardService(gdb),
		heroService:    service.NewHeroService(gdb),
		eventService:   service.NewEventService(gdb),
		programService: service.NewProgramService(gdb),
		talkService:    service.NewMentorTalkService(gdb),
		teamService:    service.NewTeamService(gdb),
		quoteService:   service.NewTestimonialService(gdb),
		sectionService: service.NewSectionService(gdb),
	}

	a.heroes = newContentResource[db.HeroContent, service.HeroInput]("hero", a.heroService, heroPayload)
	a.events = newContentResource[db.Event, service.EventInput]("event", a.eventService, eventPayload)
	a.programs = newContentResource[db.Program, service.ProgramInput]("program", a.programService, programPayload)
	a.mentorTalks = newContentResource[db.MentorTalk, service.MentorTalkInput]("mentor talk", a.talkService, mentorTalkPayload)
	a.teamMembers = newContentResource[db.TeamMember, service.TeamMemberInput]("team member", a.teamService, teamMemberPayload)
	a.testimonials = newContentResource[db.Testimonial, service.TestimonialInput]("testimonial", a.quoteService, testimonialPayload)
	a.sections = newContentResource[db.Section, service.SectionInput]("section", a.sectionService, sectionPayload)

	return a
}

// Heroes returns the admin handlers for hero banners.
func (a *API) Heroes() ContentResource { return a.heroes }

// Events returns the admin handlers for events.
func (a *API) Events() ContentResource { return a.events }

// Programs returns the admin handlers for programs.
func (a *API) Programs() ContentResource { return a.programs }

// MentorTalks returns the admin handlers for mentor talks.
func (a *API) MentorTalks() ContentResource { return a.mentorTalks }

// TeamMembers returns the admin handlers for team members.
func (a *API) TeamMembers() ContentResource { return a.teamMembers }

// Testimonials returns the admin handlers for testimonials.
func (a *API) Testimonials() ContentResource { return a.testimonials }

// Sections returns the admin handlers for sections.
func (a *API) Sections() ContentResource { return a.sections }
