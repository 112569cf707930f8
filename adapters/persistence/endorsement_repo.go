package persistence

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/khoahotran/devprofile/internal/domain/profile"
	"github.com/khoahotran/devprofile/pkg/apperror"
	"github.com/khoahotran/devprofile/pkg/logger"
)

var endorsementColumns = []string{
	"id", "skill_id", "skill_name", "endorser_name", "endorser_email",
	"endorser_avatar", "COALESCE(message, '')", "endorsed_at",
}

// recountSQL derives the counter from the endorsement rows in one statement.
const recountSQL = `
	UPDATE profiles
	SET total_endorsements = (
		SELECT COUNT(*)
		FROM endorsements e
		JOIN skills s ON s.id = e.skill_id
		WHERE s.profile_id = $1
	), updated_at = NOW()
	WHERE id = $1
	RETURNING total_endorsements
`

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type postgresEndorsementRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresEndorsementRepo(db *pgxpool.Pool, logger logger.Logger) profile.EndorsementRepository {
	return &postgresEndorsementRepo{db: db, logger: logger}
}

func skillNotFound(id string) error {
	e := apperror.NewNotFound("skill", id)
	e.Err = profile.ErrSkillNotFound
	return e
}

func queryEndorsements(ctx context.Context, db querier, builder sq.SelectBuilder) ([]profile.Endorsement, error) {
	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build endorsements query", err)
	}
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to query endorsements", err)
	}
	endorsements, err := pgx.CollectRows(rows, scanEndorsement)
	if err != nil {
		return nil, apperror.NewInternal("error iterating endorsement rows", err)
	}
	return endorsements, nil
}

func scanEndorsement(row pgx.CollectableRow) (profile.Endorsement, error) {
	var e profile.Endorsement
	err := row.Scan(&e.ID, &e.SkillID, &e.SkillName, &e.EndorserName, &e.EndorserEmail,
		&e.EndorserAvatar, &e.Message, &e.EndorsedAt)
	return e, err
}

func (r *postgresEndorsementRepo) FindSkill(ctx context.Context, skillID uuid.UUID) (*profile.Skill, error) {
	s := &profile.Skill{}
	err := r.db.QueryRow(ctx, `
		SELECT id, profile_id, name, level, years_of_experience, created_at
		FROM skills WHERE id = $1
	`, skillID).Scan(&s.ID, &s.ProfileID, &s.Name, &s.Level, &s.YearsOfExperience, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, skillNotFound(skillID.String())
		}
		return nil, apperror.NewInternal("failed to query skill", err)
	}

	s.Endorsements, err = r.ListEndorsements(ctx, skillID)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *postgresEndorsementRepo) ListEndorsements(ctx context.Context, skillID uuid.UUID) ([]profile.Endorsement, error) {
	return queryEndorsements(ctx, r.db,
		psql.Select(endorsementColumns...).
			From("endorsements").
			Where(sq.Eq{"skill_id": skillID}).
			OrderBy("endorsed_at DESC", "id ASC"),
	)
}

func (r *postgresEndorsementRepo) ListEndorsementsByProfile(ctx context.Context, profileID uuid.UUID, limit int) ([]profile.Endorsement, error) {
	cols := make([]string, len(endorsementColumns))
	for i, c := range endorsementColumns {
		if c == "COALESCE(message, '')" {
			cols[i] = "COALESCE(e.message, '')"
			continue
		}
		cols[i] = "e." + c
	}
	builder := psql.Select(cols...).
		From("endorsements e").
		Join("skills s ON s.id = e.skill_id").
		Where(sq.Eq{"s.profile_id": profileID}).
		OrderBy("e.endorsed_at DESC", "e.id ASC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}
	return queryEndorsements(ctx, r.db, builder)
}

// Add inserts the endorsement and recounts the profile total inside one
// transaction. The profile row lock serializes concurrent endorsers so the
// recount always sees every committed row.
func (r *postgresEndorsementRepo) Add(ctx context.Context, profileID uuid.UUID, e *profile.Endorsement) error {
	var total int
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if err := lockProfile(ctx, tx, profileID); err != nil {
			return err
		}

		err := tx.QueryRow(ctx, `
			INSERT INTO endorsements (id, skill_id, skill_name, endorser_name, endorser_email, endorser_avatar, message)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING endorsed_at
		`, e.ID, e.SkillID, e.SkillName, e.EndorserName, e.EndorserEmail, e.EndorserAvatar, nullIfEmpty(e.Message),
		).Scan(&e.EndorsedAt)
		if err != nil {
			return err
		}

		return tx.QueryRow(ctx, recountSQL, profileID).Scan(&total)
	})
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return apperror.NewInternal("failed to add endorsement", err)
	}

	r.logger.Debug("Endorsement stored",
		zap.String("profile_id", profileID.String()),
		zap.String("skill_id", e.SkillID.String()),
		zap.Int("total_endorsements", total),
	)
	return nil
}

func (r *postgresEndorsementRepo) RecountTotal(ctx context.Context, profileID uuid.UUID) (int, error) {
	var total int
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if err := lockProfile(ctx, tx, profileID); err != nil {
			return err
		}
		return tx.QueryRow(ctx, recountSQL, profileID).Scan(&total)
	})
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return 0, appErr
		}
		return 0, apperror.NewInternal("failed to recount endorsements", err)
	}
	return total, nil
}

func lockProfile(ctx context.Context, tx pgx.Tx, profileID uuid.UUID) error {
	var id uuid.UUID
	err := tx.QueryRow(ctx, `SELECT id FROM profiles WHERE id = $1 FOR UPDATE`, profileID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return profileNotFound(profileID.String())
	}
	return err
}
