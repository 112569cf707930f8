package persistence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/khoahotran/devprofile/internal/domain/profile"
	"github.com/khoahotran/devprofile/pkg/apperror"
	"github.com/khoahotran/devprofile/pkg/logger"
)

type ProfileRepoIntegrationTestSuite struct {
	suite.Suite
	dbPool          *pgxpool.Pool
	pgContainer     *postgres.PostgresContainer
	testLogger      logger.Logger
	profileRepo     profile.Repository
	endorsementRepo profile.EndorsementRepository
}

func (s *ProfileRepoIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(1*time.Minute),
		),
	)
	if err != nil {
		s.T().Fatalf("Failed to start postgres container: %s", err)
	}
	s.pgContainer = pgContainer

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		s.T().Fatalf("Failed to get connection string: %s", err)
	}

	m, err := migrate.New("file://../../migrations", dsn)
	if err != nil {
		s.T().Fatalf("Failed to create migrate instance: %s", err)
	}
	if err := m.Up(); err != nil {
		s.T().Fatalf("Failed to run migrations: %s", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		s.T().Fatalf("Failed to create pgxpool: %s", err)
	}
	s.dbPool = pool

	s.testLogger = logger.NewNop()
	s.profileRepo = NewPostgresProfileRepo(s.dbPool, s.testLogger)
	s.endorsementRepo = NewPostgresEndorsementRepo(s.dbPool, s.testLogger)
}

func (s *ProfileRepoIntegrationTestSuite) TearDownSuite() {
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(context.Background()); err != nil {
			s.T().Fatalf("Failed to terminate postgres container: %s", err)
		}
	}
}

func (s *ProfileRepoIntegrationTestSuite) SetupTest() {
	_, err := s.dbPool.Exec(context.Background(), `TRUNCATE profiles CASCADE`)
	s.Require().NoError(err)
}

func TestProfileRepoIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode.")
	}
	suite.Run(t, new(ProfileRepoIntegrationTestSuite))
}

func date(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func (s *ProfileRepoIntegrationTestSuite) seed(email string) *profile.Aggregate {
	now := time.Now().UTC()
	id := uuid.New()
	years := 5
	end := date(2020, time.June)

	agg := profile.NewAggregate(
		profile.Profile{
			ID: id, Name: "Grace", Email: email, Title: "Engineer",
			Availability: profile.AvailabilityAvailable, Theme: profile.ThemeLight,
			CreatedAt: now, UpdatedAt: now,
		},
		[]profile.Skill{
			{ID: uuid.New(), ProfileID: id, Name: "Go", Level: profile.LevelExpert, YearsOfExperience: &years, CreatedAt: now},
			{ID: uuid.New(), ProfileID: id, Name: "SQL", Level: profile.LevelAdvanced, CreatedAt: now},
		},
		[]profile.SocialLink{{ID: uuid.New(), ProfileID: id, Platform: "GitHub", URL: "https://github.com/grace", Icon: "github"}},
		[]profile.WorkExperience{
			{ID: uuid.New(), ProfileID: id, Title: "Junior", Company: "Acme", StartDate: date(2018, time.January), EndDate: &end,
				Achievements: []string{"Shipped v1", "Cut p99 in half"}},
			{ID: uuid.New(), ProfileID: id, Title: "Senior", Company: "Initech", StartDate: date(2021, time.March), IsCurrent: true},
		},
		[]string{"Speaker", "Maintainer"},
		[]string{"Climbing"},
	)
	s.Require().NoError(s.profileRepo.Create(context.Background(), agg))
	return agg
}

func (s *ProfileRepoIntegrationTestSuite) Test_Create_And_ReadChildren() {
	ctx := context.Background()
	agg := s.seed("grace@example.com")

	found, err := s.profileRepo.FindByID(ctx, agg.ID)
	s.Require().NoError(err)
	s.Equal("Grace", found.Name)
	s.Equal(0, found.TotalEndorsements)
	s.Empty(found.Bio)

	skills, err := s.profileRepo.ListSkills(ctx, agg.ID)
	s.Require().NoError(err)
	s.Require().Len(skills, 2)
	s.Equal("Go", skills[0].Name)
	s.Equal(5, *skills[0].YearsOfExperience)
	s.Nil(skills[1].YearsOfExperience)
	s.NotNil(skills[0].Endorsements)

	work, err := s.profileRepo.ListWorkExperience(ctx, agg.ID)
	s.Require().NoError(err)
	s.Require().Len(work, 2)
	s.Equal("Senior", work[0].Title)
	s.Equal([]string{"Shipped v1", "Cut p99 in half"}, work[1].Achievements)

	achievements, err := s.profileRepo.ListAchievements(ctx, agg.ID)
	s.Require().NoError(err)
	s.Equal([]string{"Speaker", "Maintainer"}, achievements)

	id, err := s.profileRepo.FindIDByEmail(ctx, "grace@example.com")
	s.Require().NoError(err)
	s.Equal(agg.ID, id)
}

func (s *ProfileRepoIntegrationTestSuite) Test_Create_DuplicateEmail() {
	s.seed("dup@example.com")

	dup := profile.NewAggregate(profile.Profile{ID: uuid.New(), Name: "Other", Email: "dup@example.com",
		Availability: profile.AvailabilityAvailable, Theme: profile.ThemeLight}, nil, nil, nil, nil, nil)
	err := s.profileRepo.Create(context.Background(), dup)
	s.ErrorIs(err, apperror.ErrConflict)

	_, err = s.profileRepo.FindByID(context.Background(), dup.ID)
	s.ErrorIs(err, apperror.ErrNotFound)
	s.ErrorIs(err, profile.ErrProfileNotFound)
}

func (s *ProfileRepoIntegrationTestSuite) Test_Update_And_Theme() {
	ctx := context.Background()
	agg := s.seed("update@example.com")

	bio := "Hello"
	s.Require().NoError(s.profileRepo.Update(ctx, agg.ID, profile.Update{Bio: &bio}))

	theme, err := s.profileRepo.UpdateTheme(ctx, agg.ID, profile.ThemeDark)
	s.Require().NoError(err)
	s.Equal(profile.ThemeDark, theme)

	found, err := s.profileRepo.FindByID(ctx, agg.ID)
	s.Require().NoError(err)
	s.Equal("Hello", found.Bio)
	s.Equal(profile.ThemeDark, found.Theme)
	s.Equal("Grace", found.Name)

	err = s.profileRepo.Update(ctx, uuid.New(), profile.Update{Bio: &bio})
	s.ErrorIs(err, apperror.ErrNotFound)
}

func (s *ProfileRepoIntegrationTestSuite) Test_Endorse_ConcurrentCounter() {
	ctx := context.Background()
	agg := s.seed("popular@example.com")
	skill := agg.Skills[0]

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.endorsementRepo.Add(ctx, agg.ID, &profile.Endorsement{
				ID: uuid.New(), SkillID: skill.ID, SkillName: skill.Name,
				EndorserName: "Fan", EndorserEmail: "fan@example.com", EndorserAvatar: profile.DefaultAvatar("fan@example.com"),
			})
			s.NoError(err)
		}()
	}
	wg.Wait()

	found, err := s.profileRepo.FindByID(ctx, agg.ID)
	s.Require().NoError(err)
	s.Equal(n, found.TotalEndorsements)

	endorsements, err := s.endorsementRepo.ListEndorsements(ctx, skill.ID)
	s.Require().NoError(err)
	s.Len(endorsements, n)
	for i := 1; i < len(endorsements); i++ {
		s.False(endorsements[i].EndorsedAt.After(endorsements[i-1].EndorsedAt), "newest first")
	}

	feed, err := s.endorsementRepo.ListEndorsementsByProfile(ctx, agg.ID, 5)
	s.Require().NoError(err)
	s.Len(feed, 5)
}

func (s *ProfileRepoIntegrationTestSuite) Test_Recount_FixesDrift() {
	ctx := context.Background()
	agg := s.seed("drift@example.com")

	s.Require().NoError(s.endorsementRepo.Add(ctx, agg.ID, &profile.Endorsement{
		ID: uuid.New(), SkillID: agg.Skills[1].ID, SkillName: "SQL",
		EndorserName: "Ada", EndorserEmail: "ada@example.com", EndorserAvatar: "a", Message: "Solid",
	}))
	_, err := s.dbPool.Exec(ctx, `UPDATE profiles SET total_endorsements = 99 WHERE id = $1`, agg.ID)
	s.Require().NoError(err)

	total, err := s.endorsementRepo.RecountTotal(ctx, agg.ID)
	s.Require().NoError(err)
	s.Equal(1, total)

	_, err = s.endorsementRepo.RecountTotal(ctx, uuid.New())
	s.ErrorIs(err, apperror.ErrNotFound)
}

func (s *ProfileRepoIntegrationTestSuite) Test_Endorse_UnknownProfileLeavesNoRow() {
	ctx := context.Background()
	agg := s.seed("ghost@example.com")

	err := s.endorsementRepo.Add(ctx, uuid.New(), &profile.Endorsement{
		ID: uuid.New(), SkillID: agg.Skills[0].ID, SkillName: "Go",
		EndorserName: "Ada", EndorserEmail: "ada@example.com", EndorserAvatar: "a",
	})
	s.ErrorIs(err, apperror.ErrNotFound)

	endorsements, err := s.endorsementRepo.ListEndorsements(ctx, agg.Skills[0].ID)
	s.Require().NoError(err)
	s.Empty(endorsements)
}

func (s *ProfileRepoIntegrationTestSuite) Test_Delete_Cascades() {
	ctx := context.Background()
	agg := s.seed("gone@example.com")
	s.Require().NoError(s.endorsementRepo.Add(ctx, agg.ID, &profile.Endorsement{
		ID: uuid.New(), SkillID: agg.Skills[0].ID, SkillName: "Go",
		EndorserName: "Ada", EndorserEmail: "ada@example.com", EndorserAvatar: "a",
	}))

	s.Require().NoError(s.profileRepo.Delete(ctx, agg.ID))

	_, err := s.endorsementRepo.FindSkill(ctx, agg.Skills[0].ID)
	s.ErrorIs(err, profile.ErrSkillNotFound)

	var orphans int
	s.Require().NoError(s.dbPool.QueryRow(ctx, `SELECT COUNT(*) FROM endorsements`).Scan(&orphans))
	s.Zero(orphans)

	s.ErrorIs(s.profileRepo.Delete(ctx, agg.ID), apperror.ErrNotFound)
}

func (s *ProfileRepoIntegrationTestSuite) Test_ListIDs_NewestFirst() {
	first := s.seed("first@example.com")
	time.Sleep(5 * time.Millisecond)
	second := s.seed("second@example.com")

	ids, err := s.profileRepo.ListIDs(context.Background())
	s.Require().NoError(err)
	s.Equal([]uuid.UUID{second.ID, first.ID}, ids)
}
