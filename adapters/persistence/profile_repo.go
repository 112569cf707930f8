package persistence

import (
	"context"
	"errors"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/khoahotran/devprofile/internal/domain/profile"
	"github.com/khoahotran/devprofile/pkg/apperror"
	"github.com/khoahotran/devprofile/pkg/logger"
)

type postgresProfileRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresProfileRepo(db *pgxpool.Pool, logger logger.Logger) profile.Repository {
	return &postgresProfileRepo{db: db, logger: logger}
}

const profileColumns = `
	id, name, email, COALESCE(title, ''), COALESCE(bio, ''), COALESCE(profile_picture, ''),
	COALESCE(location, ''), COALESCE(phone, ''), COALESCE(website, ''),
	availability, theme, total_endorsements, created_at, updated_at`

func profileNotFound(id string) error {
	e := apperror.NewNotFound("profile", id)
	e.Err = profile.ErrProfileNotFound
	return e
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func scanProfile(row pgx.Row) (*profile.Profile, error) {
	p := &profile.Profile{}
	err := row.Scan(
		&p.ID, &p.Name, &p.Email, &p.Title, &p.Bio, &p.ProfilePicture,
		&p.Location, &p.Phone, &p.Website,
		&p.Availability, &p.Theme, &p.TotalEndorsements, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func (r *postgresProfileRepo) Create(ctx context.Context, agg *profile.Aggregate) error {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		p := agg.Profile
		query := `
			INSERT INTO profiles (id, name, email, title, bio, profile_picture, location, phone, website,
				availability, theme, total_endorsements, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 0, $12, $13)
		`
		if _, err := tx.Exec(ctx, query,
			p.ID, p.Name, p.Email, nullIfEmpty(p.Title), nullIfEmpty(p.Bio), nullIfEmpty(p.ProfilePicture),
			nullIfEmpty(p.Location), nullIfEmpty(p.Phone), nullIfEmpty(p.Website),
			p.Availability, p.Theme, p.CreatedAt, p.UpdatedAt,
		); err != nil {
			return err
		}
		return insertChildren(ctx, tx, agg)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.NewConflict("profile", "email", agg.Email)
		}
		return apperror.NewInternal("failed to create profile", err)
	}
	return nil
}

func insertChildren(ctx context.Context, tx pgx.Tx, agg *profile.Aggregate) error {
	if len(agg.Skills) > 0 {
		rows := make([][]any, len(agg.Skills))
		for i, s := range agg.Skills {
			rows[i] = []any{s.ID, agg.ID, s.Name, s.Level, s.YearsOfExperience, i, s.CreatedAt}
		}
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"skills"},
			[]string{"id", "profile_id", "name", "level", "years_of_experience", "position", "created_at"},
			pgx.CopyFromRows(rows),
		); err != nil {
			return err
		}
	}

	if len(agg.SocialLinks) > 0 {
		rows := make([][]any, len(agg.SocialLinks))
		for i, l := range agg.SocialLinks {
			rows[i] = []any{l.ID, agg.ID, l.Platform, l.URL, nullIfEmpty(l.Icon), i}
		}
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"social_links"},
			[]string{"id", "profile_id", "platform", "url", "icon", "position"},
			pgx.CopyFromRows(rows),
		); err != nil {
			return err
		}
	}

	if len(agg.WorkExperience) > 0 {
		workRows := make([][]any, 0, len(agg.WorkExperience))
		var achievementRows [][]any
		for _, w := range agg.WorkExperience {
			workRows = append(workRows, []any{
				w.ID, agg.ID, w.Title, w.Company, w.StartDate, w.EndDate, w.IsCurrent,
				nullIfEmpty(w.Location), nullIfEmpty(w.Description),
			})
			for pos, a := range w.Achievements {
				achievementRows = append(achievementRows, []any{w.ID, a, pos})
			}
		}
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"work_experience"},
			[]string{"id", "profile_id", "title", "company", "start_date", "end_date", "is_current", "location", "description"},
			pgx.CopyFromRows(workRows),
		); err != nil {
			return err
		}
		if len(achievementRows) > 0 {
			if _, err := tx.CopyFrom(ctx, pgx.Identifier{"work_achievements"},
				[]string{"work_experience_id", "achievement", "position"},
				pgx.CopyFromRows(achievementRows),
			); err != nil {
				return err
			}
		}
	}

	if err := copyStrings(ctx, tx, "achievements", "achievement", agg.ID, agg.Achievements); err != nil {
		return err
	}
	return copyStrings(ctx, tx, "interests", "interest", agg.ID, agg.Interests)
}

func copyStrings(ctx context.Context, tx pgx.Tx, table, column string, profileID uuid.UUID, values []string) error {
	if len(values) == 0 {
		return nil
	}
	rows := make([][]any, len(values))
	for i, v := range values {
		rows[i] = []any{profileID, v}
	}
	_, err := tx.CopyFrom(ctx, pgx.Identifier{table}, []string{"profile_id", column}, pgx.CopyFromRows(rows))
	return err
}

func (r *postgresProfileRepo) Update(ctx context.Context, id uuid.UUID, u profile.Update) error {
	set := map[string]any{"updated_at": sq.Expr("NOW()")}
	if u.Name != nil {
		set["name"] = *u.Name
	}
	if u.Email != nil {
		set["email"] = *u.Email
	}
	if u.Title != nil {
		set["title"] = *u.Title
	}
	if u.Bio != nil {
		set["bio"] = *u.Bio
	}
	if u.ProfilePicture != nil {
		set["profile_picture"] = *u.ProfilePicture
	}
	if u.Location != nil {
		set["location"] = *u.Location
	}
	if u.Phone != nil {
		set["phone"] = *u.Phone
	}
	if u.Website != nil {
		set["website"] = *u.Website
	}
	if u.Availability != nil {
		set["availability"] = string(*u.Availability)
	}
	if u.Theme != nil {
		set["theme"] = string(*u.Theme)
	}

	sql, args, err := psql.Update("profiles").SetMap(set).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return apperror.NewInternal("failed to build update profile query", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if isUniqueViolation(err) && u.Email != nil {
			return apperror.NewConflict("profile", "email", *u.Email)
		}
		return apperror.NewInternal("failed to update profile", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return profileNotFound(id.String())
	}
	return nil
}

func (r *postgresProfileRepo) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return apperror.NewInternal("failed to delete profile", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return profileNotFound(id.String())
	}
	return nil
}

func (r *postgresProfileRepo) UpdateTheme(ctx context.Context, id uuid.UUID, theme profile.Theme) (profile.Theme, error) {
	var stored profile.Theme
	err := r.db.QueryRow(ctx,
		`UPDATE profiles SET theme = $2, updated_at = NOW() WHERE id = $1 RETURNING theme`,
		id, theme,
	).Scan(&stored)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", profileNotFound(id.String())
		}
		return "", apperror.NewInternal("failed to update theme", err)
	}
	return stored, nil
}

func (r *postgresProfileRepo) FindByID(ctx context.Context, id uuid.UUID) (*profile.Profile, error) {
	row := r.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)
	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, profileNotFound(id.String())
		}
		return nil, apperror.NewInternal("failed to query profile", err)
	}
	return p, nil
}

func (r *postgresProfileRepo) FindIDByEmail(ctx context.Context, email string) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.QueryRow(ctx, `SELECT id FROM profiles WHERE email = $1`, strings.TrimSpace(email)).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, profileNotFound(email)
		}
		return uuid.Nil, apperror.NewInternal("failed to query profile by email", err)
	}
	return id, nil
}

func (r *postgresProfileRepo) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM profiles ORDER BY created_at DESC`)
	if err != nil {
		return nil, apperror.NewInternal("failed to list profiles", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, apperror.NewInternal("error iterating profile rows", err)
	}
	return ids, nil
}

func (r *postgresProfileRepo) ListSkills(ctx context.Context, profileID uuid.UUID) ([]profile.Skill, error) {
	builder := psql.Select("id", "profile_id", "name", "level", "years_of_experience", "created_at").
		From("skills").
		Where(sq.Eq{"profile_id": profileID}).
		OrderBy("position ASC", "created_at ASC")

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build list skills query", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to query skills", err)
	}
	skills, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (profile.Skill, error) {
		var s profile.Skill
		err := row.Scan(&s.ID, &s.ProfileID, &s.Name, &s.Level, &s.YearsOfExperience, &s.CreatedAt)
		s.Endorsements = []profile.Endorsement{}
		return s, err
	})
	if err != nil {
		return nil, apperror.NewInternal("error iterating skill rows", err)
	}
	if len(skills) == 0 {
		return skills, nil
	}

	skillIDs := make([]uuid.UUID, len(skills))
	index := make(map[uuid.UUID]int, len(skills))
	for i, s := range skills {
		skillIDs[i] = s.ID
		index[s.ID] = i
	}

	endorsements, err := queryEndorsements(ctx, r.db,
		psql.Select(endorsementColumns...).
			From("endorsements").
			Where(sq.Eq{"skill_id": skillIDs}).
			OrderBy("endorsed_at DESC"),
	)
	if err != nil {
		return nil, err
	}
	for _, e := range endorsements {
		i := index[e.SkillID]
		skills[i].Endorsements = append(skills[i].Endorsements, e)
	}
	return skills, nil
}

func (r *postgresProfileRepo) ListSocialLinks(ctx context.Context, profileID uuid.UUID) ([]profile.SocialLink, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, profile_id, platform, url, COALESCE(icon, '')
		FROM social_links
		WHERE profile_id = $1
		ORDER BY position ASC
	`, profileID)
	if err != nil {
		return nil, apperror.NewInternal("failed to query social links", err)
	}
	links, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (profile.SocialLink, error) {
		var l profile.SocialLink
		err := row.Scan(&l.ID, &l.ProfileID, &l.Platform, &l.URL, &l.Icon)
		return l, err
	})
	if err != nil {
		return nil, apperror.NewInternal("error iterating social link rows", err)
	}
	return links, nil
}

func (r *postgresProfileRepo) ListWorkExperience(ctx context.Context, profileID uuid.UUID) ([]profile.WorkExperience, error) {
	// Ongoing roles first, matching profile.SortWorkExperience.
	rows, err := r.db.Query(ctx, `
		SELECT id, profile_id, title, company, start_date, end_date, is_current,
			COALESCE(location, ''), COALESCE(description, '')
		FROM work_experience
		WHERE profile_id = $1
		ORDER BY (is_current OR end_date IS NULL) DESC, start_date DESC
	`, profileID)
	if err != nil {
		return nil, apperror.NewInternal("failed to query work experience", err)
	}
	work, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (profile.WorkExperience, error) {
		var w profile.WorkExperience
		err := row.Scan(&w.ID, &w.ProfileID, &w.Title, &w.Company, &w.StartDate, &w.EndDate,
			&w.IsCurrent, &w.Location, &w.Description)
		w.Achievements = []string{}
		return w, err
	})
	if err != nil {
		return nil, apperror.NewInternal("error iterating work experience rows", err)
	}
	if len(work) == 0 {
		return work, nil
	}

	workIDs := make([]uuid.UUID, len(work))
	index := make(map[uuid.UUID]int, len(work))
	for i, w := range work {
		workIDs[i] = w.ID
		index[w.ID] = i
	}

	achRows, err := r.db.Query(ctx, `
		SELECT work_experience_id, achievement
		FROM work_achievements
		WHERE work_experience_id = ANY($1)
		ORDER BY position ASC, id ASC
	`, workIDs)
	if err != nil {
		return nil, apperror.NewInternal("failed to query work achievements", err)
	}
	defer achRows.Close()
	for achRows.Next() {
		var workID uuid.UUID
		var achievement string
		if err := achRows.Scan(&workID, &achievement); err != nil {
			return nil, apperror.NewInternal("failed to scan work achievement", err)
		}
		i := index[workID]
		work[i].Achievements = append(work[i].Achievements, achievement)
	}
	if err := achRows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating work achievements", err)
	}
	return work, nil
}

func (r *postgresProfileRepo) ListAchievements(ctx context.Context, profileID uuid.UUID) ([]string, error) {
	return r.listStrings(ctx, "achievements", "achievement", profileID)
}

func (r *postgresProfileRepo) ListInterests(ctx context.Context, profileID uuid.UUID) ([]string, error) {
	return r.listStrings(ctx, "interests", "interest", profileID)
}

func (r *postgresProfileRepo) listStrings(ctx context.Context, table, column string, profileID uuid.UUID) ([]string, error) {
	sql, args, err := psql.Select(column).
		From(table).
		Where(sq.Eq{"profile_id": profileID}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build list "+table+" query", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to query "+table, err)
	}
	values, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		r.logger.Warn("Failed to collect rows", zap.String("table", table), zap.Error(err))
		return nil, apperror.NewInternal("error iterating "+table, err)
	}
	return values, nil
}
