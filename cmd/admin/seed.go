package main

import (
	"fmt"
	"time"

	"github.com/sunoy2004/yanc-cms-sub001/internal/db"
	"github.com/sunoy2004/yanc-cms-sub001/internal/service"
)

// seed fills an empty database with a small demo site.
func (a *app) seed() error {
	var count int64
	if err := a.db.Model(&db.HeroContent{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		fmt.Fprintln(a.out, "content already exists, skipping seed")
		return nil
	}

	published := true
	now := a.now().UTC().Truncate(time.Hour)

	if _, err := service.NewHeroService(a.db).Create(service.HeroInput{
		Title:     "Build what's next with YANC",
		Subtitle:  "Programs, mentors and events for early-stage founders.",
		CTAText:   "Explore programs",
		CTALink:   "/programs",
		Published: &published,
	}); err != nil {
		return fmt.Errorf("seed hero: %w", err)
	}

	events := service.NewEventService(a.db)
	for _, input := range []service.EventInput{
		{Title: "Founder Friday", Location: "Online", StartsAt: now.AddDate(0, 0, 7), EventType: service.EventTypeWebinar},
		{Title: "Pitch Night", Location: "Berlin", StartsAt: now.AddDate(0, 0, 21), EventType: service.EventTypeMeetup},
		{Title: "Spring Hackathon", Location: "Lisbon", StartsAt: now.AddDate(0, -2, 0), EventType: service.EventTypeHackathon},
	} {
		input.Published = &published
		if _, err := events.Create(input); err != nil {
			return fmt.Errorf("seed event %q: %w", input.Title, err)
		}
	}

	programs := service.NewProgramService(a.db)
	for _, input := range []service.ProgramInput{
		{
			Title:       "Launch Bootcamp",
			Summary:     "Eight weeks from idea to first customers.",
			Description: "## What you get\n\n- Weekly workshops\n- Office hours with operators\n- Demo day",
			Category:    service.ProgramCategoryBootcamp,
			Duration:    "8 weeks",
		},
		{
			Title:       "Mentor Circle",
			Summary:     "Small groups matched with an experienced founder.",
			Description: "Monthly sessions focused on one concrete problem at a time.",
			Category:    service.ProgramCategoryMentorship,
			Duration:    "6 months",
		},
	} {
		input.Published = &published
		if _, err := programs.Create(input); err != nil {
			return fmt.Errorf("seed program %q: %w", input.Title, err)
		}
	}

	talkDate := now.AddDate(0, -1, 0)
	if _, err := service.NewMentorTalkService(a.db).Create(service.MentorTalkInput{
		Title:       "Finding your first ten customers",
		Speaker:     "Ada Osei",
		SpeakerRole: "Founder, Ledgerly",
		TalkDate:    &talkDate,
		VideoURL:    "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		Published:   &published,
	}); err != nil {
		return fmt.Errorf("seed mentor talk: %w", err)
	}

	team := service.NewTeamService(a.db)
	for _, input := range []service.TeamMemberInput{
		{Name: "Sam Rivera", Role: "Program Lead", Team: service.TeamCore},
		{Name: "Priya Nair", Role: "Growth Mentor", Team: service.TeamMentor},
	} {
		input.Published = &published
		if _, err := team.Create(input); err != nil {
			return fmt.Errorf("seed team member %q: %w", input.Name, err)
		}
	}

	if _, err := service.NewTestimonialService(a.db).Create(service.TestimonialInput{
		Author:     "Lena Fischer",
		AuthorRole: "Bootcamp alumna",
		Quote:      "The bootcamp gave us structure and a network we still rely on.",
		Rating:     5,
		Published:  &published,
	}); err != nil {
		return fmt.Errorf("seed testimonial: %w", err)
	}

	if _, err := service.NewSectionService(a.db).Create(service.SectionInput{
		Key:       "about",
		Title:     "About us",
		Content:   "We are a volunteer-run community helping new founders **ship**.",
		Published: &published,
	}); err != nil {
		return fmt.Errorf("seed section: %w", err)
	}

	fmt.Fprintln(a.out, "demo content created")
	return nil
}
