package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/khoahotran/devprofile/adapters/persistence"
	profileUC "github.com/khoahotran/devprofile/internal/application/usecase/profile"
	"github.com/khoahotran/devprofile/internal/config"
	"github.com/khoahotran/devprofile/internal/domain/profile"
	"github.com/khoahotran/devprofile/pkg/apperror"
	"github.com/khoahotran/devprofile/pkg/logger"
)

func main() {
	fmt.Println("adding sample profile into database...")

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}
	appLogger := logger.NewZapLogger(cfg.App.Env)

	pool, err := persistence.NewPostgresPool(cfg, appLogger)
	if err != nil {
		log.Fatalf("cannot connect DB: %v", err)
	}
	defer pool.Close()

	repo := persistence.NewPostgresProfileRepo(pool, appLogger)
	uc := profileUC.NewProfileUseCase(repo, profileUC.NewAggregator(repo, appLogger), nil, nil, appLogger)

	years := func(n int) *int { return &n }
	date := func(y int, m time.Month) time.Time { return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC) }
	end := date(2022, time.December)

	out, err := uc.ExecuteCreateProfile(context.Background(), profileUC.CreateProfileInput{
		Profile: profile.Profile{
			Name:         "Alex Morgan",
			Email:        "alex.morgan@example.com",
			Title:        "Full Stack Developer",
			Bio:          "I build web products end to end, from database schema to polished UI.",
			Location:     "Ho Chi Minh City, Vietnam",
			Website:      "https://alexmorgan.dev",
			Availability: profile.AvailabilityOpportunities,
			Theme:        profile.ThemeLight,
		},
		Skills: []profile.Skill{
			{Name: "Go", Level: profile.LevelAdvanced, YearsOfExperience: years(4)},
			{Name: "PostgreSQL", Level: profile.LevelAdvanced, YearsOfExperience: years(5)},
			{Name: "React", Level: profile.LevelIntermediate, YearsOfExperience: years(3)},
			{Name: "Kubernetes", Level: profile.LevelBeginner, YearsOfExperience: years(1)},
		},
		SocialLinks: []profile.SocialLink{
			{Platform: "GitHub", URL: "https://github.com/alexmorgan", Icon: "github"},
			{Platform: "LinkedIn", URL: "https://linkedin.com/in/alexmorgan", Icon: "linkedin"},
		},
		WorkExperience: []profile.WorkExperience{
			{
				Title:        "Senior Backend Engineer",
				Company:      "Nimbus Labs",
				StartDate:    date(2023, time.January),
				IsCurrent:    true,
				Description:  "Own the profile and search services.",
				Achievements: []string{"Cut p99 latency by 40%", "Led the Postgres 16 upgrade"},
			},
			{
				Title:        "Software Engineer",
				Company:      "Brightpath",
				StartDate:    date(2020, time.March),
				EndDate:      &end,
				Achievements: []string{"Shipped the billing dashboard"},
			},
		},
		Achievements: []string{"Speaker at GopherCon Vietnam", "Open source maintainer"},
		Interests:    []string{"Distributed systems", "Developer tooling", "Trail running"},
	})
	if err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			fmt.Println("sample profile already exists, nothing to do.")
			return
		}
		log.Fatalf("cannot add profile: %v", err)
	}

	fmt.Printf("added sample profile '%s' (%s) successfully!\n", out.Profile.Email, out.Profile.ID)
}
