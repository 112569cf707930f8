package profile

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/khoahotran/devprofile/internal/domain/profile"
	"github.com/khoahotran/devprofile/pkg/apperror"
	"github.com/khoahotran/devprofile/pkg/logger"
)

var tracer = otel.Tracer("profile_usecase")

// aggregateAllConcurrency bounds how many profiles AggregateAll assembles at once.
const aggregateAllConcurrency = 4

// Aggregator assembles the full profile view from the store. It only reads,
// so it is safe to share between requests.
type Aggregator struct {
	profileRepo profile.Repository
	logger      logger.Logger
}

func NewAggregator(repo profile.Repository, log logger.Logger) *Aggregator {
	return &Aggregator{
		profileRepo: repo,
		logger:      log,
	}
}

// Aggregate loads the profile row and then its five child relations in
// parallel. Any failing fetch fails the whole call.
func (a *Aggregator) Aggregate(ctx context.Context, id uuid.UUID) (*profile.Aggregate, error) {
	ctx, span := tracer.Start(ctx, "Aggregate")
	defer span.End()
	span.SetAttributes(attribute.String("profile.id", id.String()))

	p, err := a.profileRepo.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			err = serviceError("failed to load profile", err)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "load profile failed")
		return nil, err
	}

	var (
		skills       []profile.Skill
		links        []profile.SocialLink
		work         []profile.WorkExperience
		achievements []string
		interests    []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		skills, err = a.profileRepo.ListSkills(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		links, err = a.profileRepo.ListSocialLinks(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		work, err = a.profileRepo.ListWorkExperience(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		achievements, err = a.profileRepo.ListAchievements(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		interests, err = a.profileRepo.ListInterests(gctx, id)
		return err
	})

	if err := g.Wait(); err != nil {
		a.logger.WithContext(ctx).Error("Failed to aggregate profile", err, zap.String("profile_id", id.String()))
		span.RecordError(err)
		span.SetStatus(codes.Error, "aggregate children failed")
		return nil, serviceError("failed to aggregate profile relations", err)
	}

	return profile.NewAggregate(*p, skills, links, work, achievements, interests), nil
}

func (a *Aggregator) AggregateByEmail(ctx context.Context, email string) (*profile.Aggregate, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperror.NewMissingField("email")
	}

	id, err := a.profileRepo.FindIDByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		return nil, serviceError("failed to resolve profile email", err)
	}
	return a.Aggregate(ctx, id)
}

// AggregateAll returns every profile, newest first. Profiles removed between
// listing and loading are skipped.
func (a *Aggregator) AggregateAll(ctx context.Context) ([]*profile.Aggregate, error) {
	ctx, span := tracer.Start(ctx, "AggregateAll")
	defer span.End()

	ids, err := a.profileRepo.ListIDs(ctx)
	if err != nil {
		return nil, serviceError("failed to list profiles", err)
	}

	results := make([]*profile.Aggregate, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(aggregateAllConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			agg, err := a.Aggregate(gctx, id)
			if err != nil {
				if errors.Is(err, apperror.ErrNotFound) {
					return nil
				}
				return err
			}
			results[i] = agg
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]*profile.Aggregate, 0, len(results))
	for _, agg := range results {
		if agg != nil {
			out = append(out, agg)
		}
	}
	span.SetAttributes(attribute.Int("profile.count", len(out)))
	return out, nil
}

// serviceError keeps an existing internal AppError and wraps anything else.
func serviceError(details string, err error) error {
	if errors.Is(err, apperror.ErrInternal) {
		return err
	}
	return apperror.NewInternal(details, err)
}
