package postgres

import (
	"context"
	"time"

	"github.com/CalumRakk/resume-project/internal/domain"
	"github.com/CalumRakk/resume-project/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

const skillColumns = `id, resume_id, name, level, keywords, created_at, updated_at`

func scanSkill(row pgx.Row) (*domain.Skill, error) {
	var s domain.Skill
	var keywords []string
	if err := row.Scan(
		&s.ID, &s.ResumeID, &s.Name, &s.Level, pq.Array(&keywords), &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return nil, notFound(err)
	}
	if keywords == nil {
		keywords = []string{}
	}
	s.Keywords = keywords
	return &s, nil
}

type skillRepo struct {
	db *pgxpool.Pool
}

func NewSkillRepository(db *pgxpool.Pool) domain.SkillRepository {
	return &skillRepo{db: db}
}

func (r *skillRepo) Create(ctx context.Context, s *domain.Skill) error {
	return insertSkill(ctx, r.db, s)
}

func (r *skillRepo) GetByID(ctx context.Context, id int64) (*domain.Skill, error) {
	return scanSkill(r.db.QueryRow(ctx, `SELECT `+skillColumns+` FROM skills WHERE id = $1`, id))
}

func (r *skillRepo) Update(ctx context.Context, s *domain.Skill) error {
	query := `UPDATE skills SET name = $2, level = $3, keywords = $4, updated_at = $5 WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, s.ID, s.Name, s.Level, pq.Array(s.Keywords), s.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *skillRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM skills WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

const experienceColumns = `id, resume_id, name, position, url, highlights, summary, start_date, end_date, created_at, updated_at`

func scanExperience(row pgx.Row) (*domain.Experience, error) {
	var e domain.Experience
	var highlights []string
	var end *time.Time
	if err := row.Scan(
		&e.ID, &e.ResumeID, &e.Name, &e.Position, &e.URL, pq.Array(&highlights), &e.Summary,
		&e.StartDate.Time, &end, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, notFound(err)
	}
	if highlights == nil {
		highlights = []string{}
	}
	e.Highlights = highlights
	if end != nil {
		e.EndDate = &domain.Date{Time: *end}
	}
	return &e, nil
}

type experienceRepo struct {
	db *pgxpool.Pool
}

func NewExperienceRepository(db *pgxpool.Pool) domain.ExperienceRepository {
	return &experienceRepo{db: db}
}

func (r *experienceRepo) Create(ctx context.Context, e *domain.Experience) error {
	return insertExperience(ctx, r.db, e)
}

func (r *experienceRepo) GetByID(ctx context.Context, id int64) (*domain.Experience, error) {
	return scanExperience(r.db.QueryRow(ctx, `SELECT `+experienceColumns+` FROM experiences WHERE id = $1`, id))
}

func (r *experienceRepo) Update(ctx context.Context, e *domain.Experience) error {
	query := `UPDATE experiences
              SET name = $2, position = $3, url = $4, highlights = $5, summary = $6,
                  start_date = $7, end_date = $8, updated_at = $9
              WHERE id = $1`
	tag, err := r.db.Exec(ctx, query,
		e.ID, e.Name, e.Position, e.URL, pq.Array(e.Highlights), e.Summary,
		e.StartDate.Time, endDateArg(e.EndDate), e.UpdatedAt,
	)
	if err != nil {
		if isPgError(err, pgCheckViolation) {
			return apperror.BadRequest(domain.ErrInvalidDateRange.Error())
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *experienceRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM experiences WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
