package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/CalumRakk/resume-project/internal/domain"
	"github.com/CalumRakk/resume-project/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type resumeRepo struct {
	db *pgxpool.Pool
}

func NewResumeRepository(db *pgxpool.Pool) domain.ResumeRepository {
	return &resumeRepo{db: db}
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const resumeColumns = `id, user_id, template_id, full_name, email, summary, created_at, updated_at`

func (r *resumeRepo) Create(ctx context.Context, resume *domain.Resume) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `INSERT INTO resumes (user_id, template_id, full_name, email, summary, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err = tx.QueryRow(ctx, query,
		resume.UserID, resume.TemplateID, resume.FullName, resume.Email, resume.Summary,
		resume.CreatedAt, resume.UpdatedAt,
	).Scan(&resume.ID)
	if err != nil {
		if isPgError(err, pgForeignKeyViolation) {
			return apperror.BadRequest(domain.ErrUnknownTemplateID.Error())
		}
		return err
	}

	for i := range resume.Skills {
		s := &resume.Skills[i]
		s.ResumeID = resume.ID
		s.CreatedAt, s.UpdatedAt = resume.CreatedAt, resume.UpdatedAt
		if err := insertSkill(ctx, tx, s); err != nil {
			return fmt.Errorf("insert skill %d: %w", i, err)
		}
	}
	for i := range resume.Experiences {
		e := &resume.Experiences[i]
		e.ResumeID = resume.ID
		e.CreatedAt, e.UpdatedAt = resume.CreatedAt, resume.UpdatedAt
		if err := insertExperience(ctx, tx, e); err != nil {
			return fmt.Errorf("insert experience %d: %w", i, err)
		}
	}

	return tx.Commit(ctx)
}

// GetByID loads the resume with its skills, experiences, selected template and
// the customization for that template.
func (r *resumeRepo) GetByID(ctx context.Context, id int64) (*domain.Resume, error) {
	query := `SELECT ` + resumeColumns + ` FROM resumes WHERE id = $1`
	var resume domain.Resume
	err := r.db.QueryRow(ctx, query, id).Scan(
		&resume.ID, &resume.UserID, &resume.TemplateID, &resume.FullName, &resume.Email, &resume.Summary,
		&resume.CreatedAt, &resume.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}

	if resume.Skills, err = fetchSkills(ctx, r.db, resume.ID); err != nil {
		return nil, err
	}
	if resume.Experiences, err = fetchExperiences(ctx, r.db, resume.ID); err != nil {
		return nil, err
	}

	if resume.TemplateID != nil {
		tmpl, err := getTemplate(ctx, r.db, *resume.TemplateID)
		if err != nil && err != domain.ErrNotFound {
			return nil, err
		}
		resume.Template = tmpl

		custom, err := getCustomization(ctx, r.db, resume.ID, *resume.TemplateID)
		if err != nil && err != domain.ErrNotFound {
			return nil, err
		}
		resume.Customization = custom
	}

	return &resume, nil
}

// FetchByUser lists resumes without nested items, newest first.
func (r *resumeRepo) FetchByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Resume, int64, error) {
	query := `SELECT ` + resumeColumns + ` FROM resumes WHERE user_id = $1
              ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	resumes := []domain.Resume{}
	for rows.Next() {
		var resume domain.Resume
		if err := rows.Scan(
			&resume.ID, &resume.UserID, &resume.TemplateID, &resume.FullName, &resume.Email, &resume.Summary,
			&resume.CreatedAt, &resume.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		resumes = append(resumes, resume)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM resumes WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	return resumes, total, nil
}

func (r *resumeRepo) Update(ctx context.Context, resume *domain.Resume) error {
	query := `UPDATE resumes SET template_id = $2, full_name = $3, email = $4, summary = $5, updated_at = $6
              WHERE id = $1`
	tag, err := r.db.Exec(ctx, query,
		resume.ID, resume.TemplateID, resume.FullName, resume.Email, resume.Summary, resume.UpdatedAt,
	)
	if err != nil {
		if isPgError(err, pgForeignKeyViolation) {
			return apperror.BadRequest(domain.ErrUnknownTemplateID.Error())
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *resumeRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM resumes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func insertSkill(ctx context.Context, q querier, s *domain.Skill) error {
	query := `INSERT INTO skills (resume_id, name, level, keywords, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	return q.QueryRow(ctx, query,
		s.ResumeID, s.Name, s.Level, pq.Array(s.Keywords), s.CreatedAt, s.UpdatedAt,
	).Scan(&s.ID)
}

func insertExperience(ctx context.Context, q querier, e *domain.Experience) error {
	query := `INSERT INTO experiences (resume_id, name, position, url, highlights, summary, start_date, end_date, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	err := q.QueryRow(ctx, query,
		e.ResumeID, e.Name, e.Position, e.URL, pq.Array(e.Highlights), e.Summary,
		e.StartDate.Time, endDateArg(e.EndDate), e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	if err != nil && isPgError(err, pgCheckViolation) {
		return apperror.BadRequest(domain.ErrInvalidDateRange.Error())
	}
	return err
}

func endDateArg(d *domain.Date) *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

func fetchSkills(ctx context.Context, q querier, resumeID int64) ([]domain.Skill, error) {
	rows, err := q.Query(ctx, `SELECT `+skillColumns+` FROM skills WHERE resume_id = $1 ORDER BY id`, resumeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	skills := []domain.Skill{}
	for rows.Next() {
		s, err := scanSkill(rows)
		if err != nil {
			return nil, err
		}
		skills = append(skills, *s)
	}
	return skills, rows.Err()
}

func fetchExperiences(ctx context.Context, q querier, resumeID int64) ([]domain.Experience, error) {
	rows, err := q.Query(ctx, `SELECT `+experienceColumns+` FROM experiences WHERE resume_id = $1 ORDER BY start_date DESC, id`, resumeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	experiences := []domain.Experience{}
	for rows.Next() {
		e, err := scanExperience(rows)
		if err != nil {
			return nil, err
		}
		experiences = append(experiences, *e)
	}
	return experiences, rows.Err()
}
