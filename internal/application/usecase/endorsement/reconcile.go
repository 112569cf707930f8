package endorsement

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/devprofile/internal/domain/profile"
	"github.com/khoahotran/devprofile/pkg/logger"
)

// ReconcileUseCase re-derives a profile's endorsement counter from the rows.
// Running it any number of times yields the same total.
type ReconcileUseCase struct {
	endorsementRepo profile.EndorsementRepository
	logger          logger.Logger
}

func NewReconcileUseCase(eRepo profile.EndorsementRepository, log logger.Logger) *ReconcileUseCase {
	return &ReconcileUseCase{
		endorsementRepo: eRepo,
		logger:          log,
	}
}

type ReconcileInput struct {
	ProfileID uuid.UUID
}

type ReconcileOutput struct {
	TotalEndorsements int
}

func (uc *ReconcileUseCase) Execute(ctx context.Context, input ReconcileInput) (*ReconcileOutput, error) {
	ctx, span := tracer.Start(ctx, "ReconcileEndorsements")
	defer span.End()

	total, err := uc.endorsementRepo.RecountTotal(ctx, input.ProfileID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	uc.logger.Debug("Endorsement total reconciled", zap.String("profile_id", input.ProfileID.String()), zap.Int("total", total))
	return &ReconcileOutput{TotalEndorsements: total}, nil
}
