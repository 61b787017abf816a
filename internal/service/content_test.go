package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sunoy2004/yanc-cms-sub001/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupContentTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:content-service-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

func boolPtr(v bool) *bool { return &v }

func intPtr(v int) *int { return &v }

func TestHeroCreateGetUpdateDelete(t *testing.T) {
	gdb := setupContentTestDB(t)
	svc := NewHeroService(gdb)

	hero, err := svc.Create(HeroInput{
		Title:    "  Build with <b>YANC</b> ",
		Subtitle: "Young founders network",
		CTAText:  "Apply",
		CTALink:  "/programs",
		ImageURL: "https://cdn.example.com/hero.png",
	})
	if err != nil {
		t.Fatalf("create hero: %v", err)
	}
	if hero.Title != "Build with YANC" {
		t.Fatalf("expected markup stripped from title, got %q", hero.Title)
	}
	if hero.Published || hero.PublishedAt != nil {
		t.Fatalf("expected new hero to be a draft")
	}

	loaded, err := svc.Get(hero.ID)
	if err != nil {
		t.Fatalf("get hero: %v", err)
	}
	if loaded.Subtitle != "Young founders network" || loaded.CTALink != "/programs" || loaded.ImageURL != "https://cdn.example.com/hero.png" {
		t.Fatalf("unexpected hero after reload: %+v", loaded)
	}

	input := svc.InputFrom(loaded)
	input.Subtitle = "Updated"
	input.Published = boolPtr(true)
	updated, err := svc.Update(hero.ID, input)
	if err != nil {
		t.Fatalf("update hero: %v", err)
	}
	if updated.Subtitle != "Updated" || !updated.Published || updated.PublishedAt == nil {
		t.Fatalf("unexpected hero after update: %+v", updated)
	}

	if err := svc.Delete(hero.ID); err != nil {
		t.Fatalf("delete hero: %v", err)
	}
	if _, err := svc.Get(hero.ID); !errors.Is(err, ErrHeroNotFound) || !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrHeroNotFound after delete, got %v", err)
	}
	if err := svc.Delete(hero.ID); !errors.Is(err, ErrHeroNotFound) {
		t.Fatalf("expected ErrHeroNotFound on second delete, got %v", err)
	}
}

func TestHeroValidation(t *testing.T) {
	gdb := setupContentTestDB(t)
	svc := NewHeroService(gdb)

	_, err := svc.Create(HeroInput{CTALink: "javascript:alert(1)"})
	var verr *ValidationError
	if !errors.As(err, &verr) || !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := verr.Fields["title"]; !ok {
		t.Fatalf("expected title error, got %v", verr.Fields)
	}
	if _, ok := verr.Fields["cta_link"]; !ok {
		t.Fatalf("expected cta_link error, got %v", verr.Fields)
	}

	_, err = svc.Create(HeroInput{Title: "Hi", CTAText: "Go"})
	if !errors.As(err, &verr) || verr.Fields["cta_link"] == "" {
		t.Fatalf("expected cta_link to be required with cta_text, got %v", err)
	}

	_, err = svc.Create(HeroInput{Title: "Hi", MediaID: uintPtr(42)})
	if !errors.As(err, &verr) || verr.Fields["media_id"] == "" {
		t.Fatalf("expected unknown media_id to be rejected, got %v", err)
	}

	if _, err := svc.Update(999, HeroInput{Title: "x"}); !errors.Is(err, ErrHeroNotFound) {
		t.Fatalf("expected not found before validation, got %v", err)
	}
}

func TestHeroMediaFillsImageURL(t *testing.T) {
	gdb := setupContentTestDB(t)
	media := db.MediaItem{ObjectKey: "media/2026/10/a.png", URL: "/uploads/media/2026/10/a.png", ContentType: "image/png"}
	if err := gdb.Create(&media).Error; err != nil {
		t.Fatalf("seed media: %v", err)
	}

	hero, err := NewHeroService(gdb).Create(HeroInput{Title: "Banner", MediaID: &media.ID})
	if err != nil {
		t.Fatalf("create hero: %v", err)
	}
	if hero.ImageURL != media.URL {
		t.Fatalf("expected image_url from media, got %q", hero.ImageURL)
	}
}

func uintPtr(v uint) *uint { return &v }

func TestContentListSearchStatusAndPagination(t *testing.T) {
	gdb := setupContentTestDB(t)
	svc := NewHeroService(gdb)

	for i := 0; i < 12; i++ {
		title := fmt.Sprintf("Spring launch %02d", i)
		if i%3 == 0 {
			title = fmt.Sprintf("Winter 100%% %02d", i)
		}
		if _, err := svc.Create(HeroInput{Title: title, Published: boolPtr(i%2 == 0)}); err != nil {
			t.Fatalf("seed hero %d: %v", i, err)
		}
	}

	result, err := svc.List(ListFilter{Page: 2, PerPage: 5})
	if err != nil {
		t.Fatalf("list heroes: %v", err)
	}
	if result.Total != 12 || result.TotalPages != 3 || len(result.Items) != 5 || result.Page != 2 {
		t.Fatalf("unexpected page: total=%d pages=%d items=%d page=%d", result.Total, result.TotalPages, len(result.Items), result.Page)
	}
	if result.Items[0].SortOrder != 5 {
		t.Fatalf("expected second page to start at sort_order 5, got %d", result.Items[0].SortOrder)
	}

	result, err = svc.List(ListFilter{Search: "WINTER 100%"})
	if err != nil {
		t.Fatalf("search heroes: %v", err)
	}
	if result.Total != 4 {
		t.Fatalf("expected 4 winter heroes, got %d", result.Total)
	}

	result, err = svc.List(ListFilter{Search: "100%", Status: StatusDraft})
	if err != nil {
		t.Fatalf("search drafts: %v", err)
	}
	if result.Total != 2 {
		t.Fatalf("expected 2 winter drafts, got %d", result.Total)
	}

	result, err = svc.List(ListFilter{Page: -1, PerPage: 1000})
	if err != nil {
		t.Fatalf("list clamp: %v", err)
	}
	if result.Page != 1 || result.PerPage != maxPerPage || result.TotalPages != 1 {
		t.Fatalf("expected clamped paging, got page=%d per_page=%d pages=%d", result.Page, result.PerPage, result.TotalPages)
	}

	result, err = svc.List(ListFilter{Search: "nothing matches"})
	if err != nil {
		t.Fatalf("empty search: %v", err)
	}
	if result.Total != 0 || result.TotalPages != 1 || result.Items == nil {
		t.Fatalf("expected empty non-nil page, got %+v", result)
	}

	if _, err := svc.List(ListFilter{Status: "archived"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid status error, got %v", err)
	}
}

func TestContentSetPublishedTogglesAndStamps(t *testing.T) {
	gdb := setupContentTestDB(t)
	svc := NewTestimonialService(gdb)
	fixed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	item, err := svc.Create(TestimonialInput{Author: "Ada", Quote: "Great cohort"})
	if err != nil {
		t.Fatalf("create testimonial: %v", err)
	}

	toggled, err := svc.SetPublished(item.ID, nil)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !toggled.Published || toggled.PublishedAt == nil || !toggled.PublishedAt.Equal(fixed) {
		t.Fatalf("expected published with stamp, got %+v", toggled.Publishing)
	}

	svc.now = func() time.Time { return fixed.Add(time.Hour) }
	again, err := svc.SetPublished(item.ID, boolPtr(true))
	if err != nil {
		t.Fatalf("publish again: %v", err)
	}
	if !again.PublishedAt.Equal(fixed) {
		t.Fatalf("expected original publish stamp to be kept, got %v", again.PublishedAt)
	}

	off, err := svc.SetPublished(item.ID, nil)
	if err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	if off.Published || off.PublishedAt != nil {
		t.Fatalf("expected draft without stamp, got %+v", off.Publishing)
	}

	reloaded, err := svc.Get(item.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Published || reloaded.PublishedAt != nil {
		t.Fatalf("expected persisted draft state, got %+v", reloaded.Publishing)
	}

	if _, err := svc.SetPublished(404, nil); !errors.Is(err, ErrTestimonialNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestContentBulkDeleteAndReorder(t *testing.T) {
	gdb := setupContentTestDB(t)
	svc := NewMentorTalkService(gdb)

	ids := make([]uint, 0, 4)
	for i := 0; i < 4; i++ {
		talk, err := svc.Create(MentorTalkInput{Title: fmt.Sprintf("Talk %d", i), Speaker: "Grace"})
		if err != nil {
			t.Fatalf("create talk: %v", err)
		}
		if talk.SortOrder != i {
			t.Fatalf("expected appended sort order %d, got %d", i, talk.SortOrder)
		}
		ids = append(ids, talk.ID)
	}

	if err := svc.Reorder([]uint{ids[3], ids[1]}); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	first, _ := svc.Get(ids[3])
	second, _ := svc.Get(ids[1])
	untouched, _ := svc.Get(ids[2])
	if first.SortOrder != 0 || second.SortOrder != 1 || untouched.SortOrder != 2 {
		t.Fatalf("unexpected sort orders: %d %d %d", first.SortOrder, second.SortOrder, untouched.SortOrder)
	}

	deleted, err := svc.BulkDelete([]uint{ids[0], ids[2], 9999})
	if err != nil {
		t.Fatalf("bulk delete: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("expected 2 deleted, got %d", deleted)
	}

	result, err := svc.List(ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if result.Total != 2 {
		t.Fatalf("expected 2 remaining talks, got %d", result.Total)
	}

	if _, err := svc.BulkDelete(nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected validation error for empty ids, got %v", err)
	}
	if err := svc.Reorder([]uint{0}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected validation error for zero id, got %v", err)
	}
}

func TestContentReorderRejectsUnknownOrDeletedIDs(t *testing.T) {
	gdb := setupContentTestDB(t)
	svc := NewMentorTalkService(gdb)

	ids := make([]uint, 0, 3)
	for i := 0; i < 3; i++ {
		talk, err := svc.Create(MentorTalkInput{Title: fmt.Sprintf("Talk %d", i), Speaker: "Grace"})
		if err != nil {
			t.Fatalf("create talk: %v", err)
		}
		ids = append(ids, talk.ID)
	}
	if err := svc.Delete(ids[2]); err != nil {
		t.Fatalf("delete: %v", err)
	}

	for _, order := range [][]uint{{ids[1], 9999}, {ids[1], ids[2]}} {
		err := svc.Reorder(order)
		if !errors.Is(err, ErrMentorTalkNotFound) || !errors.Is(err, ErrNotFound) {
			t.Fatalf("reorder %v: expected not found, got %v", order, err)
		}
	}

	first, _ := svc.Get(ids[0])
	second, _ := svc.Get(ids[1])
	if first.SortOrder != 0 || second.SortOrder != 1 {
		t.Fatalf("expected failed reorder to roll back, got %d %d", first.SortOrder, second.SortOrder)
	}
}

func TestHeroActiveReturnsFirstPublished(t *testing.T) {
	gdb := setupContentTestDB(t)
	svc := NewHeroService(gdb)

	if _, err := svc.Active(); !errors.Is(err, ErrHeroNotFound) {
		t.Fatalf("expected ErrHeroNotFound without heroes, got %v", err)
	}

	if _, err := svc.Create(HeroInput{Title: "Draft", SortOrder: intPtr(0)}); err != nil {
		t.Fatalf("create draft: %v", err)
	}
	if _, err := svc.Create(HeroInput{Title: "Later", Published: boolPtr(true), SortOrder: intPtr(5)}); err != nil {
		t.Fatalf("create later: %v", err)
	}
	if _, err := svc.Create(HeroInput{Title: "Sooner", Published: boolPtr(true), SortOrder: intPtr(2)}); err != nil {
		t.Fatalf("create sooner: %v", err)
	}

	active, err := svc.Active()
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if active.Title != "Sooner" {
		t.Fatalf("expected Sooner, got %s", active.Title)
	}

	published, err := svc.ListPublished(0)
	if err != nil {
		t.Fatalf("list published: %v", err)
	}
	if len(published) != 2 {
		t.Fatalf("expected drafts to be excluded, got %d", len(published))
	}
}
