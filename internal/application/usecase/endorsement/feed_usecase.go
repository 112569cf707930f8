package endorsement

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/feeds"
	"go.uber.org/zap"

	"github.com/khoahotran/devprofile/internal/domain/profile"
	"github.com/khoahotran/devprofile/pkg/logger"
)

const feedItemLimit = 50

type FeedUseCase struct {
	profileRepo     profile.Repository
	endorsementRepo profile.EndorsementRepository
	publicURL       string
	logger          logger.Logger
}

func NewFeedUseCase(pRepo profile.Repository, eRepo profile.EndorsementRepository, publicURL string, log logger.Logger) *FeedUseCase {
	return &FeedUseCase{
		profileRepo:     pRepo,
		endorsementRepo: eRepo,
		publicURL:       strings.TrimRight(publicURL, "/"),
		logger:          log,
	}
}

type FeedInput struct {
	ProfileID uuid.UUID
}

// Execute builds an RSS feed of the latest endorsements across all of a
// profile's skills.
func (uc *FeedUseCase) Execute(ctx context.Context, input FeedInput) (*feeds.Feed, error) {
	p, err := uc.profileRepo.FindByID(ctx, input.ProfileID)
	if err != nil {
		return nil, err
	}

	endorsements, err := uc.endorsementRepo.ListEndorsementsByProfile(ctx, input.ProfileID, feedItemLimit)
	if err != nil {
		uc.logger.Error("Failed to list endorsements for feed", err, zap.String("profile_id", input.ProfileID.String()))
		return nil, err
	}

	profileURL := fmt.Sprintf("%s/profile/%s", uc.publicURL, p.ID.String())
	feed := &feeds.Feed{
		Title:       fmt.Sprintf("%s - Endorsements", p.Name),
		Link:        &feeds.Link{Href: profileURL},
		Description: fmt.Sprintf("Latest skill endorsements for %s.", p.Name),
		Author:      &feeds.Author{Name: p.Name, Email: p.Email},
		Created:     p.CreatedAt,
		Updated:     time.Now().UTC(),
	}

	items := make([]*feeds.Item, 0, len(endorsements))
	for _, e := range endorsements {
		desc := e.Message
		if desc == "" {
			desc = fmt.Sprintf("%s endorsed %s for %s.", e.EndorserName, p.Name, e.SkillName)
		}
		items = append(items, &feeds.Item{
			Id:          e.ID.String(),
			Title:       fmt.Sprintf("%s endorsed %s", e.EndorserName, e.SkillName),
			Link:        &feeds.Link{Href: profileURL},
			Author:      &feeds.Author{Name: e.EndorserName, Email: e.EndorserEmail},
			Description: desc,
			Created:     e.EndorsedAt,
		})
	}
	feed.Items = items

	uc.logger.Info("Endorsement feed generated", zap.String("profile_id", p.ID.String()), zap.Int("item_count", len(items)))
	return feed, nil
}
