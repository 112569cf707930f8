package profile

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/devprofile/internal/application/service"
	"github.com/khoahotran/devprofile/internal/domain/profile"
	"github.com/khoahotran/devprofile/pkg/apperror"
	"github.com/khoahotran/devprofile/pkg/logger"
)

const pictureFolder = "profiles"

type ProfileUseCase struct {
	profileRepo profile.Repository
	aggregator  *Aggregator
	uploader    service.Uploader
	publisher   service.EventPublisher
	logger      logger.Logger
}

// NewProfileUseCase wires the profile operations. uploader and publisher may
// be nil when Cloudinary or Kafka are not configured.
func NewProfileUseCase(repo profile.Repository, agg *Aggregator, uploader service.Uploader, publisher service.EventPublisher, log logger.Logger) *ProfileUseCase {
	return &ProfileUseCase{
		profileRepo: repo,
		aggregator:  agg,
		uploader:    uploader,
		publisher:   publisher,
		logger:      log,
	}
}

type GetProfileInput struct {
	ProfileID uuid.UUID
}

type GetProfileByEmailInput struct {
	Email string
}

type GetProfileOutput struct {
	Profile *profile.Aggregate
}

func (uc *ProfileUseCase) ExecuteGetProfile(ctx context.Context, input GetProfileInput) (*GetProfileOutput, error) {
	agg, err := uc.aggregator.Aggregate(ctx, input.ProfileID)
	if err != nil {
		return nil, err
	}
	return &GetProfileOutput{Profile: agg}, nil
}

func (uc *ProfileUseCase) ExecuteGetProfileByEmail(ctx context.Context, input GetProfileByEmailInput) (*GetProfileOutput, error) {
	agg, err := uc.aggregator.AggregateByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	return &GetProfileOutput{Profile: agg}, nil
}

type ListProfilesOutput struct {
	Profiles []*profile.Aggregate
}

func (uc *ProfileUseCase) ExecuteListProfiles(ctx context.Context) (*ListProfilesOutput, error) {
	aggs, err := uc.aggregator.AggregateAll(ctx)
	if err != nil {
		return nil, err
	}
	return &ListProfilesOutput{Profiles: aggs}, nil
}

type GetStatsOutput struct {
	Stats profile.Stats
}

func (uc *ProfileUseCase) ExecuteGetStats(ctx context.Context, input GetProfileInput) (*GetStatsOutput, error) {
	agg, err := uc.aggregator.Aggregate(ctx, input.ProfileID)
	if err != nil {
		return nil, err
	}
	return &GetStatsOutput{Stats: profile.ComputeStats(agg)}, nil
}

type CreateProfileInput struct {
	Profile        profile.Profile
	Skills         []profile.Skill
	SocialLinks    []profile.SocialLink
	WorkExperience []profile.WorkExperience
	Achievements   []string
	Interests      []string
}

func (uc *ProfileUseCase) ExecuteCreateProfile(ctx context.Context, input CreateProfileInput) (*GetProfileOutput, error) {
	ctx, span := tracer.Start(ctx, "CreateProfile")
	defer span.End()

	now := time.Now().UTC()
	p := input.Profile
	p.ID = uuid.New()
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	p.TotalEndorsements = 0
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Name == "" {
		return nil, apperror.NewMissingField("name")
	}
	if p.Email == "" {
		return nil, apperror.NewMissingField("email")
	}
	if err := p.Validate(); err != nil {
		return nil, apperror.NewInvalidInput(err.Error(), err)
	}
	p.ApplyDefaults()

	skills := make([]profile.Skill, 0, len(input.Skills))
	for _, s := range input.Skills {
		s.Name = strings.TrimSpace(s.Name)
		if err := s.Validate(); err != nil {
			return nil, apperror.NewInvalidInput(err.Error(), err)
		}
		if s.Level == "" {
			s.Level = profile.LevelIntermediate
		}
		s.ID = uuid.New()
		s.ProfileID = p.ID
		s.CreatedAt = now
		s.Endorsements = nil
		skills = append(skills, s)
	}

	links := make([]profile.SocialLink, 0, len(input.SocialLinks))
	for _, l := range input.SocialLinks {
		l.Platform = strings.TrimSpace(l.Platform)
		l.URL = strings.TrimSpace(l.URL)
		if l.Platform == "" || l.URL == "" {
			return nil, apperror.NewInvalidInput("social link platform and url are required", nil)
		}
		if l.Icon == "" {
			l.Icon = strings.ToLower(l.Platform)
		}
		l.ID = uuid.New()
		l.ProfileID = p.ID
		links = append(links, l)
	}

	work := make([]profile.WorkExperience, 0, len(input.WorkExperience))
	for _, w := range input.WorkExperience {
		if err := w.Validate(); err != nil {
			return nil, apperror.NewInvalidInput(err.Error(), err)
		}
		w.Normalize()
		w.ID = uuid.New()
		w.ProfileID = p.ID
		work = append(work, w)
	}

	agg := profile.NewAggregate(p, skills, links, work, compact(input.Achievements), compact(input.Interests))
	if err := uc.profileRepo.Create(ctx, agg); err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("profile.id", p.ID.String()))

	uc.logger.WithContext(ctx).Info("Profile created", zap.String("profile_id", p.ID.String()))
	uc.publish(service.Event{Type: service.EventProfileCreated, ProfileID: p.ID.String()})

	return uc.ExecuteGetProfile(ctx, GetProfileInput{ProfileID: p.ID})
}

type UpdateProfileInput struct {
	ProfileID uuid.UUID
	Update    profile.Update
}

// ExecuteUpdateProfile applies a partial update. Blank name or email values
// leave the stored ones untouched.
func (uc *ProfileUseCase) ExecuteUpdateProfile(ctx context.Context, input UpdateProfileInput) (*GetProfileOutput, error) {
	ctx, span := tracer.Start(ctx, "UpdateProfile")
	defer span.End()

	u := input.Update
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		u.Name = nil
	}
	if u.Email != nil && strings.TrimSpace(*u.Email) == "" {
		u.Email = nil
	}
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		u.Name = &name
	}
	if u.Email != nil {
		email := strings.TrimSpace(*u.Email)
		u.Email = &email
	}
	if u.Availability != nil && !u.Availability.Valid() {
		return nil, apperror.NewInvalidInput("availability must be one of Available, Not Available, Open to Opportunities", profile.ErrInvalidAvailability)
	}
	if u.Theme != nil && !u.Theme.Valid() {
		return nil, apperror.NewInvalidInput("theme must be light or dark", profile.ErrInvalidTheme)
	}

	if err := uc.profileRepo.Update(ctx, input.ProfileID, u); err != nil {
		span.RecordError(err)
		return nil, err
	}

	uc.publish(service.Event{Type: service.EventProfileUpdated, ProfileID: input.ProfileID.String()})
	return uc.ExecuteGetProfile(ctx, GetProfileInput{ProfileID: input.ProfileID})
}

type DeleteProfileInput struct {
	ProfileID uuid.UUID
}

func (uc *ProfileUseCase) ExecuteDeleteProfile(ctx context.Context, input DeleteProfileInput) error {
	ctx, span := tracer.Start(ctx, "DeleteProfile")
	defer span.End()

	existing, err := uc.profileRepo.FindByID(ctx, input.ProfileID)
	if err != nil {
		return err
	}

	if err := uc.profileRepo.Delete(ctx, input.ProfileID); err != nil {
		span.RecordError(err)
		return err
	}

	if uc.uploader != nil && strings.Contains(existing.ProfilePicture, pictureFolder+"/"+input.ProfileID.String()) {
		uc.deletePictureAsync(pictureFolder + "/" + input.ProfileID.String())
	}

	uc.logger.WithContext(ctx).Info("Profile deleted", zap.String("profile_id", input.ProfileID.String()))
	uc.publish(service.Event{Type: service.EventProfileDeleted, ProfileID: input.ProfileID.String()})
	return nil
}

type UpdateThemeInput struct {
	ProfileID uuid.UUID
	Theme     profile.Theme
}

type UpdateThemeOutput struct {
	Theme profile.Theme
}

func (uc *ProfileUseCase) ExecuteUpdateTheme(ctx context.Context, input UpdateThemeInput) (*UpdateThemeOutput, error) {
	if !input.Theme.Valid() {
		return nil, apperror.NewInvalidInput("theme must be light or dark", profile.ErrInvalidTheme)
	}

	theme, err := uc.profileRepo.UpdateTheme(ctx, input.ProfileID, input.Theme)
	if err != nil {
		return nil, err
	}

	uc.publish(service.Event{
		Type:      service.EventThemeChanged,
		ProfileID: input.ProfileID.String(),
		Payload:   map[string]any{"theme": string(theme)},
	})
	return &UpdateThemeOutput{Theme: theme}, nil
}

type UploadPictureInput struct {
	ProfileID uuid.UUID
	File      io.Reader
}

func (uc *ProfileUseCase) ExecuteUploadPicture(ctx context.Context, input UploadPictureInput) (*GetProfileOutput, error) {
	ctx, span := tracer.Start(ctx, "UploadPicture")
	defer span.End()

	if uc.uploader == nil {
		return nil, apperror.NewInternal("uploads not configured", nil)
	}
	if input.File == nil {
		return nil, apperror.NewMissingField("file")
	}
	if _, err := uc.profileRepo.FindByID(ctx, input.ProfileID); err != nil {
		return nil, err
	}

	url, err := uc.uploader.Upload(ctx, input.File, pictureFolder, input.ProfileID.String())
	if err != nil {
		span.RecordError(err)
		return nil, apperror.NewInternal("failed to upload profile picture", err)
	}

	if err := uc.profileRepo.Update(ctx, input.ProfileID, profile.Update{ProfilePicture: &url}); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			uc.deletePictureAsync(pictureFolder + "/" + input.ProfileID.String())
		}
		return nil, err
	}

	uc.publish(service.Event{
		Type:      service.EventProfileUpdated,
		ProfileID: input.ProfileID.String(),
		Payload:   map[string]any{"profile_picture": url},
	})
	return uc.ExecuteGetProfile(ctx, GetProfileInput{ProfileID: input.ProfileID})
}

func (uc *ProfileUseCase) publish(evt service.Event) {
	if uc.publisher == nil {
		return
	}
	go func() {
		if err := uc.publisher.Publish(context.Background(), evt); err != nil {
			uc.logger.Error("Failed to publish profile event", err, zap.String("type", evt.Type), zap.String("profile_id", evt.ProfileID))
		}
	}()
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// deletePictureAsync removes a stored picture off the request path.
func (uc *ProfileUseCase) deletePictureAsync(publicID string) {
	go func() {
		if err := uc.uploader.Delete(context.Background(), publicID); err != nil {
			uc.logger.Warn("Failed to delete profile picture", zap.String("public_id", publicID), zap.Error(err))
		}
	}()
}
