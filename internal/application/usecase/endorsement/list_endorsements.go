package endorsement

import (
	"context"

	"github.com/google/uuid"

	"github.com/khoahotran/devprofile/internal/domain/profile"
	"github.com/khoahotran/devprofile/pkg/logger"
)

type ListEndorsementsUseCase struct {
	endorsementRepo profile.EndorsementRepository
	logger          logger.Logger
}

func NewListEndorsementsUseCase(eRepo profile.EndorsementRepository, log logger.Logger) *ListEndorsementsUseCase {
	return &ListEndorsementsUseCase{
		endorsementRepo: eRepo,
		logger:          log,
	}
}

type ListEndorsementsInput struct {
	ProfileID uuid.UUID
	SkillID   uuid.UUID
}

type ListEndorsementsOutput struct {
	Endorsements []profile.Endorsement
}

func (uc *ListEndorsementsUseCase) Execute(ctx context.Context, input ListEndorsementsInput) (*ListEndorsementsOutput, error) {
	skill, err := findOwnedSkill(ctx, uc.endorsementRepo, input.ProfileID, input.SkillID)
	if err != nil {
		return nil, err
	}

	endorsements := skill.Endorsements
	if endorsements == nil {
		endorsements = []profile.Endorsement{}
	}
	profile.SortEndorsements(endorsements)
	return &ListEndorsementsOutput{Endorsements: endorsements}, nil
}
