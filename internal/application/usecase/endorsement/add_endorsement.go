package endorsement

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/devprofile/internal/application/service"
	"github.com/khoahotran/devprofile/internal/domain/profile"
	"github.com/khoahotran/devprofile/pkg/apperror"
	"github.com/khoahotran/devprofile/pkg/logger"
)

var tracer = otel.Tracer("endorsement_usecase")

type AddEndorsementUseCase struct {
	endorsementRepo profile.EndorsementRepository
	publisher       service.EventPublisher
	logger          logger.Logger
}

func NewAddEndorsementUseCase(eRepo profile.EndorsementRepository, publisher service.EventPublisher, log logger.Logger) *AddEndorsementUseCase {
	return &AddEndorsementUseCase{
		endorsementRepo: eRepo,
		publisher:       publisher,
		logger:          log,
	}
}

type AddEndorsementInput struct {
	// ProfileID is optional. When set, the skill must belong to it.
	ProfileID      uuid.UUID
	SkillID        uuid.UUID
	EndorserName   string
	EndorserEmail  string
	EndorserAvatar string
	Message        string
}

type AddEndorsementOutput struct {
	Skill       *profile.Skill
	Endorsement *profile.Endorsement
}

func (uc *AddEndorsementUseCase) Execute(ctx context.Context, input AddEndorsementInput) (*AddEndorsementOutput, error) {
	ctx, span := tracer.Start(ctx, "AddEndorsement")
	defer span.End()
	span.SetAttributes(attribute.String("skill.id", input.SkillID.String()))

	name := strings.TrimSpace(input.EndorserName)
	email := strings.TrimSpace(input.EndorserEmail)
	if name == "" {
		return nil, apperror.NewMissingField("endorsedBy.name")
	}
	if email == "" {
		return nil, apperror.NewMissingField("endorsedBy.email")
	}

	skill, err := findOwnedSkill(ctx, uc.endorsementRepo, input.ProfileID, input.SkillID)
	if err != nil {
		return nil, err
	}

	avatar := strings.TrimSpace(input.EndorserAvatar)
	if avatar == "" {
		avatar = profile.DefaultAvatar(email)
	}

	e := &profile.Endorsement{
		ID:             uuid.New(),
		SkillID:        skill.ID,
		SkillName:      skill.Name,
		EndorserName:   name,
		EndorserEmail:  email,
		EndorserAvatar: avatar,
		Message:        strings.TrimSpace(input.Message),
	}
	if err := uc.endorsementRepo.Add(ctx, skill.ProfileID, e); err != nil {
		span.RecordError(err)
		return nil, err
	}

	// The endorsement is durable from here on; a failed reload must not
	// invite a retry that would store it twice.
	updated, err := uc.endorsementRepo.FindSkill(ctx, skill.ID)
	if err != nil {
		uc.logger.WithContext(ctx).Warn("Failed to reload endorsed skill, returning local copy",
			zap.String("skill_id", skill.ID.String()), zap.Error(err))
		updated = skill
		updated.Endorsements = append([]profile.Endorsement{*e}, skill.Endorsements...)
	}
	profile.SortEndorsements(updated.Endorsements)

	uc.logger.WithContext(ctx).Info("Endorsement added",
		zap.String("profile_id", skill.ProfileID.String()),
		zap.String("skill_id", skill.ID.String()),
		zap.String("endorsement_id", e.ID.String()),
	)

	if uc.publisher != nil {
		evt := service.Event{
			Type:      service.EventEndorsementAdded,
			ProfileID: skill.ProfileID.String(),
			Payload: map[string]any{
				"skill_id":       skill.ID.String(),
				"endorsement_id": e.ID.String(),
			},
		}
		go func() {
			if err := uc.publisher.Publish(context.Background(), evt); err != nil {
				uc.logger.Error("Failed to publish endorsement event", err, zap.String("endorsement_id", e.ID.String()))
			}
		}()
	}

	return &AddEndorsementOutput{Skill: updated, Endorsement: e}, nil
}

// findOwnedSkill loads a skill and hides it when it belongs to another profile.
func findOwnedSkill(ctx context.Context, repo profile.EndorsementRepository, profileID, skillID uuid.UUID) (*profile.Skill, error) {
	skill, err := repo.FindSkill(ctx, skillID)
	if err != nil {
		return nil, err
	}
	if profileID != uuid.Nil && skill.ProfileID != profileID {
		notFound := apperror.NewNotFound("skill", skillID.String())
		notFound.Err = profile.ErrSkillNotFound
		return nil, notFound
	}
	return skill, nil
}
