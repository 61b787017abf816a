package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sunoy2004/yanc-cms-sub001/internal/service"
)

// PublicHero returns the banner the marketing site shows.
func (a *API) PublicHero(c *gin.Context) {
	hero, err := a.heroService.Active()
	if err != nil {
		respondServiceError(c, err, "failed to load hero")
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": heroPayload(hero)})
}

// PublicEvents lists published events; ?when=upcoming|past narrows relative to now.
func (a *API) PublicEvents(c *gin.Context) {
	events, err := a.eventService.ListPublished(c.Query("when"), time.Now(), publicLimit(c))
	if err != nil {
		respondServiceError(c, err, "failed to list events")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": itemsPayload(events, eventPayload)})
}

func (a *API) PublicPrograms(c *gin.Context) {
	programs, err := a.programService.ListPublished(c.Query("category"), publicLimit(c))
	if err != nil {
		respondServiceError(c, err, "failed to list programs")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": itemsPayload(programs, programPayload)})
}

// PublicProgram returns one program by slug with its description rendered to HTML.
func (a *API) PublicProgram(c *gin.Context) {
	program, err := a.programService.GetBySlug(c.Param("slug"))
	if err != nil {
		respondServiceError(c, err, "failed to load program")
		return
	}

	rendered, err := service.RenderMarkdown(program.Description)
	if err != nil {
		respondServiceError(c, err, "failed to render program")
		return
	}

	payload := programPayload(program)
	payload["html"] = rendered
	c.JSON(http.StatusOK, gin.H{"item": payload})
}

func (a *API) PublicMentorTalks(c *gin.Context) {
	talks, err := a.talkService.ListPublished(publicLimit(c))
	if err != nil {
		respondServiceError(c, err, "failed to list mentor talks")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": itemsPayload(talks, mentorTalkPayload)})
}

// PublicTeamMembers lists published members; ?team= narrows to one team.
func (a *API) PublicTeamMembers(c *gin.Context) {
	members, err := a.teamService.ListPublished(c.Query("team"), publicLimit(c))
	if err != nil {
		respondServiceError(c, err, "failed to list team members")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": itemsPayload(members, teamMemberPayload)})
}

func (a *API) PublicTestimonials(c *gin.Context) {
	items, err := a.quoteService.ListPublished(publicLimit(c))
	if err != nil {
		respondServiceError(c, err, "failed to list testimonials")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": itemsPayload(items, testimonialPayload)})
}

// PublicSection returns a published section with its markdown rendered to HTML.
func (a *API) PublicSection(c *gin.Context) {
	section, err := a.sectionService.GetByKey(c.Param("key"), true)
	if err != nil {
		respondServiceError(c, err, "failed to load section")
		return
	}

	rendered, err := a.sectionService.Render(section)
	if err != nil {
		respondServiceError(c, err, "failed to render section")
		return
	}

	payload := sectionPayload(section)
	payload["html"] = rendered
	c.JSON(http.StatusOK, gin.H{"item": payload})
}
