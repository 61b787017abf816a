package main

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/sunoy2004/yanc-cms-sub001/internal/db"
	"github.com/sunoy2004/yanc-cms-sub001/internal/service"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestApp(t *testing.T) (*app, *bytes.Buffer) {
	t.Helper()

	dsn := fmt.Sprintf("file:admin-cli-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	out := &bytes.Buffer{}
	a := &app{db: gdb, out: out, now: func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }}
	if err := a.run([]string{"migrate"}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return a, out
}

func stubPassword(t *testing.T, password string) {
	t.Helper()
	original := readPasswordFunc
	readPasswordFunc = func(string) (string, error) { return password, nil }
	t.Cleanup(func() { readPasswordFunc = original })
}

func TestAddUserResetPasswordAndList(t *testing.T) {
	a, out := newTestApp(t)
	auth := service.NewAuthService(a.db, service.AuthOptions{Secret: "test"})

	stubPassword(t, "first-password")
	if err := a.run([]string{"adduser", "-username", "editor", "-name", "Site Editor"}); err != nil {
		t.Fatalf("adduser: %v", err)
	}
	if !strings.Contains(out.String(), "created user editor") {
		t.Fatalf("unexpected output: %q", out.String())
	}
	if _, err := auth.Login("editor", "first-password"); err != nil {
		t.Fatalf("expected login with initial password: %v", err)
	}

	stubPassword(t, "second-password")
	if err := a.run([]string{"resetpassword", "-username", "editor"}); err != nil {
		t.Fatalf("resetpassword: %v", err)
	}
	if _, err := auth.Login("editor", "first-password"); !errors.Is(err, service.ErrInvalidCredentials) {
		t.Fatalf("expected old password to be rejected, got %v", err)
	}
	if _, err := auth.Login("editor", "second-password"); err != nil {
		t.Fatalf("expected login with new password: %v", err)
	}

	out.Reset()
	if err := a.run([]string{"listusers"}); err != nil {
		t.Fatalf("listusers: %v", err)
	}
	listing := out.String()
	if !strings.Contains(listing, "USERNAME") || !strings.Contains(listing, "editor") || !strings.Contains(listing, "Site Editor") {
		t.Fatalf("unexpected listing: %q", listing)
	}
}

func TestAddUserRejectsBadInput(t *testing.T) {
	a, _ := newTestApp(t)

	stubPassword(t, "long-enough-password")
	if err := a.run([]string{"adduser"}); err == nil {
		t.Fatal("expected missing -username to fail")
	}
	if err := a.run([]string{"adduser", "-username", "editor"}); err != nil {
		t.Fatalf("adduser: %v", err)
	}
	if err := a.run([]string{"adduser", "-username", "editor"}); !errors.Is(err, service.ErrUsernameTaken) {
		t.Fatalf("expected duplicate username error, got %v", err)
	}

	stubPassword(t, "short")
	var validationErr *service.ValidationError
	if err := a.run([]string{"adduser", "-username", "writer"}); !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error for short password, got %v", err)
	}

	if err := a.run([]string{"resetpassword", "-username", "nobody"}); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected not found for unknown user, got %v", err)
	}
	if err := a.run([]string{"frobnicate"}); err == nil {
		t.Fatal("expected unknown command to fail")
	}
}

func TestSeedCreatesPublishedDemoContentOnce(t *testing.T) {
	a, out := newTestApp(t)

	if err := a.run([]string{"seed"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	hero, err := service.NewHeroService(a.db).Active()
	if err != nil {
		t.Fatalf("expected active hero: %v", err)
	}
	if hero.Title == "" {
		t.Fatalf("unexpected hero: %+v", hero)
	}

	upcoming, err := service.NewEventService(a.db).ListPublished(service.EventsUpcoming, a.now(), 0)
	if err != nil {
		t.Fatalf("list upcoming: %v", err)
	}
	if len(upcoming) != 2 || upcoming[0].Title != "Founder Friday" {
		t.Fatalf("unexpected upcoming events: %+v", upcoming)
	}

	program, err := service.NewProgramService(a.db).GetBySlug("launch-bootcamp")
	if err != nil {
		t.Fatalf("expected seeded program: %v", err)
	}
	if program.Category != service.ProgramCategoryBootcamp {
		t.Fatalf("unexpected program: %+v", program)
	}

	if _, err := service.NewSectionService(a.db).GetByKey("about", true); err != nil {
		t.Fatalf("expected about section: %v", err)
	}

	out.Reset()
	if err := a.run([]string{"seed"}); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if !strings.Contains(out.String(), "skipping") {
		t.Fatalf("expected second seed to skip, got %q", out.String())
	}
	var heroes int64
	a.db.Model(&db.HeroContent{}).Count(&heroes)
	if heroes != 1 {
		t.Fatalf("expected exactly one hero, got %d", heroes)
	}
}
