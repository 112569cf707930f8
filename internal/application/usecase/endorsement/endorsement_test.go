package endorsement

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/khoahotran/devprofile/internal/application/service"
	"github.com/khoahotran/devprofile/internal/domain/profile"
	"github.com/khoahotran/devprofile/internal/domain/profile/profiletest"
	"github.com/khoahotran/devprofile/pkg/apperror"
	"github.com/khoahotran/devprofile/pkg/logger"
)

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, service.Event) error {
	return errors.New("broker down")
}

type EndorsementUseCaseTestSuite struct {
	suite.Suite
	store     *profiletest.Memory
	profileID uuid.UUID
	skillID   uuid.UUID
	otherID   uuid.UUID
	add       *AddEndorsementUseCase
	list      *ListEndorsementsUseCase
	feed      *FeedUseCase
	reconcile *ReconcileUseCase
}

func (s *EndorsementUseCaseTestSuite) SetupTest() {
	log := logger.NewNop()
	s.store = profiletest.NewMemory()

	s.profileID, s.skillID = uuid.New(), uuid.New()
	s.Require().NoError(s.store.Create(context.Background(), profile.NewAggregate(
		profile.Profile{ID: s.profileID, Name: "Grace", Email: "grace@example.com"},
		[]profile.Skill{{ID: s.skillID, ProfileID: s.profileID, Name: "COBOL"}},
		nil, nil, nil, nil,
	)))

	s.otherID = uuid.New()
	s.Require().NoError(s.store.Create(context.Background(), profile.NewAggregate(
		profile.Profile{ID: s.otherID, Name: "Linus", Email: "linus@example.com"},
		nil, nil, nil, nil, nil,
	)))

	s.add = NewAddEndorsementUseCase(s.store, failingPublisher{}, log)
	s.list = NewListEndorsementsUseCase(s.store, log)
	s.feed = NewFeedUseCase(s.store, s.store, "https://profiles.example.com/", log)
	s.reconcile = NewReconcileUseCase(s.store, log)
}

func TestEndorsementUseCases(t *testing.T) {
	suite.Run(t, new(EndorsementUseCaseTestSuite))
}

func (s *EndorsementUseCaseTestSuite) endorse(name, email string) *AddEndorsementOutput {
	out, err := s.add.Execute(context.Background(), AddEndorsementInput{
		ProfileID:     s.profileID,
		SkillID:       s.skillID,
		EndorserName:  name,
		EndorserEmail: email,
	})
	s.Require().NoError(err)
	return out
}

func (s *EndorsementUseCaseTestSuite) Test_Add_ReturnsUpdatedSkill() {
	s.endorse("Ada", "ada@example.com")
	out := s.endorse("Ken", "ken@example.com")

	s.Equal("COBOL", out.Endorsement.SkillName)
	s.Equal("https://i.pravatar.cc/150?u=ken%40example.com", out.Endorsement.EndorserAvatar)
	s.Require().Len(out.Skill.Endorsements, 2)
	s.Equal(out.Endorsement.ID, out.Skill.Endorsements[0].ID, "newest endorsement comes first")

	p, err := s.store.FindByID(context.Background(), s.profileID)
	s.Require().NoError(err)
	s.Equal(2, p.TotalEndorsements)
}

func (s *EndorsementUseCaseTestSuite) Test_Add_KeepsExplicitAvatarAndMessage() {
	out, err := s.add.Execute(context.Background(), AddEndorsementInput{
		SkillID:        s.skillID,
		EndorserName:   "Ada",
		EndorserEmail:  "ada@example.com",
		EndorserAvatar: "https://example.com/ada.png",
		Message:        "  Sharp.  ",
	})
	s.Require().NoError(err)
	s.Equal("https://example.com/ada.png", out.Endorsement.EndorserAvatar)
	s.Equal("Sharp.", out.Endorsement.Message)
}

func (s *EndorsementUseCaseTestSuite) Test_Add_Validation() {
	_, err := s.add.Execute(context.Background(), AddEndorsementInput{SkillID: s.skillID, EndorserEmail: "a@b.c"})
	s.ErrorIs(err, apperror.ErrInvalidInput)

	_, err = s.add.Execute(context.Background(), AddEndorsementInput{SkillID: s.skillID, EndorserName: "A", EndorserEmail: "  "})
	s.ErrorIs(err, apperror.ErrInvalidInput)

	s.Equal(0, s.store.EndorsementCount(s.profileID))
}

func (s *EndorsementUseCaseTestSuite) Test_Add_UnknownOrForeignSkill() {
	_, err := s.add.Execute(context.Background(), AddEndorsementInput{
		SkillID: uuid.New(), EndorserName: "A", EndorserEmail: "a@b.c",
	})
	s.ErrorIs(err, apperror.ErrNotFound)

	_, err = s.add.Execute(context.Background(), AddEndorsementInput{
		ProfileID: s.otherID, SkillID: s.skillID, EndorserName: "A", EndorserEmail: "a@b.c",
	})
	s.ErrorIs(err, apperror.ErrNotFound)
	s.ErrorIs(err, profile.ErrSkillNotFound)
}

func (s *EndorsementUseCaseTestSuite) Test_Add_StoreFailureIsNotCreated() {
	s.store.SetFailure("Add", apperror.NewInternal("failed to add endorsement", errors.New("disk full")))

	out, err := s.add.Execute(context.Background(), AddEndorsementInput{
		SkillID: s.skillID, EndorserName: "A", EndorserEmail: "a@b.c",
	})
	s.Nil(out)
	s.ErrorIs(err, apperror.ErrInternal)
	s.Equal(0, s.store.EndorsementCount(s.profileID))
}

func (s *EndorsementUseCaseTestSuite) Test_Add_ConcurrentCounterMatchesRows() {
	const n = 25
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.add.Execute(context.Background(), AddEndorsementInput{
				SkillID: s.skillID, EndorserName: "Fan", EndorserEmail: "fan@example.com",
			})
			s.NoError(err)
		}()
	}
	wg.Wait()

	p, err := s.store.FindByID(context.Background(), s.profileID)
	s.Require().NoError(err)
	s.Equal(n, p.TotalEndorsements)
	s.Equal(n, s.store.EndorsementCount(s.profileID))
}

func (s *EndorsementUseCaseTestSuite) Test_List() {
	first := s.endorse("Ada", "ada@example.com")
	second := s.endorse("Ken", "ken@example.com")

	out, err := s.list.Execute(context.Background(), ListEndorsementsInput{ProfileID: s.profileID, SkillID: s.skillID})
	s.Require().NoError(err)
	s.Require().Len(out.Endorsements, 2)
	s.Equal(second.Endorsement.ID, out.Endorsements[0].ID)
	s.Equal(first.Endorsement.ID, out.Endorsements[1].ID)

	_, err = s.list.Execute(context.Background(), ListEndorsementsInput{ProfileID: s.otherID, SkillID: s.skillID})
	s.ErrorIs(err, apperror.ErrNotFound)
}

func (s *EndorsementUseCaseTestSuite) Test_Feed() {
	s.endorse("Ada", "ada@example.com")

	feed, err := s.feed.Execute(context.Background(), FeedInput{ProfileID: s.profileID})
	s.Require().NoError(err)
	s.Equal("Grace - Endorsements", feed.Title)
	s.Equal("https://profiles.example.com/profile/"+s.profileID.String(), feed.Link.Href)
	s.Require().Len(feed.Items, 1)
	s.Equal("Ada endorsed COBOL", feed.Items[0].Title)

	rss, err := feed.ToRss()
	s.Require().NoError(err)
	s.True(strings.Contains(rss, "<rss"))

	_, err = s.feed.Execute(context.Background(), FeedInput{ProfileID: uuid.New()})
	s.ErrorIs(err, apperror.ErrNotFound)
}

func (s *EndorsementUseCaseTestSuite) Test_Reconcile_FixesDrift() {
	s.endorse("Ada", "ada@example.com")
	s.store.SetTotal(s.profileID, 42)

	for i := 0; i < 2; i++ {
		out, err := s.reconcile.Execute(context.Background(), ReconcileInput{ProfileID: s.profileID})
		s.Require().NoError(err)
		s.Equal(1, out.TotalEndorsements)
	}

	_, err := s.reconcile.Execute(context.Background(), ReconcileInput{ProfileID: uuid.New()})
	s.ErrorIs(err, apperror.ErrNotFound)
}

func (s *EndorsementUseCaseTestSuite) Test_Add_PublishFailureDoesNotFailRequest() {
	out := s.endorse("Ada", "ada@example.com")
	s.NotNil(out.Endorsement)
	// Give the background publish a moment to run and log its failure.
	time.Sleep(10 * time.Millisecond)
}

// flakyReloadStore fails every FindSkill after the first one.
type flakyReloadStore struct {
	*profiletest.Memory
	mu    sync.Mutex
	calls int
}

func (f *flakyReloadStore) FindSkill(ctx context.Context, skillID uuid.UUID) (*profile.Skill, error) {
	f.mu.Lock()
	f.calls++
	n := f.calls
	f.mu.Unlock()
	if n > 1 {
		return nil, apperror.NewInternal("reload", errors.New("conn reset"))
	}
	return f.Memory.FindSkill(ctx, skillID)
}

func (s *EndorsementUseCaseTestSuite) Test_Add_ReloadFailureStillSucceeds() {
	s.endorse("Ada", "ada@example.com")

	store := &flakyReloadStore{Memory: s.store}
	add := NewAddEndorsementUseCase(store, nil, logger.NewNop())

	out, err := add.Execute(context.Background(), AddEndorsementInput{
		ProfileID:     s.profileID,
		SkillID:       s.skillID,
		EndorserName:  "Ken",
		EndorserEmail: "ken@example.com",
	})
	s.Require().NoError(err)
	s.Require().NotNil(out.Endorsement)
	s.Equal(2, s.store.EndorsementCount(s.profileID))

	s.Require().Len(out.Skill.Endorsements, 2)
	s.Equal(out.Endorsement.ID, out.Skill.Endorsements[0].ID)
	s.Equal("Ken", out.Skill.Endorsements[0].EndorserName)
	s.Equal("Ada", out.Skill.Endorsements[1].EndorserName)
}
