package postgres

import (
	"context"
	"encoding/json"

	"github.com/CalumRakk/resume-project/internal/domain"
	"github.com/CalumRakk/resume-project/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const templateColumns = `id, name, description, component_name, customization_rules, created_at, updated_at`

func scanTemplate(row pgx.Row) (*domain.Template, error) {
	var t domain.Template
	var rules []byte
	if err := row.Scan(
		&t.ID, &t.Name, &t.Description, &t.ComponentName, &rules, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, notFound(err)
	}
	t.CustomizationRules = map[string]any{}
	if len(rules) > 0 {
		if err := json.Unmarshal(rules, &t.CustomizationRules); err != nil {
			return nil, err
		}
	}
	return &t, nil
}

func getTemplate(ctx context.Context, q querier, id int64) (*domain.Template, error) {
	return scanTemplate(q.QueryRow(ctx, `SELECT `+templateColumns+` FROM templates WHERE id = $1`, id))
}

func jsonObject(m map[string]any) ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

type templateRepo struct {
	db *pgxpool.Pool
}

func NewTemplateRepository(db *pgxpool.Pool) domain.TemplateRepository {
	return &templateRepo{db: db}
}

func (r *templateRepo) Create(ctx context.Context, t *domain.Template) error {
	rules, err := jsonObject(t.CustomizationRules)
	if err != nil {
		return err
	}
	query := `INSERT INTO templates (name, description, component_name, customization_rules, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err = r.db.QueryRow(ctx, query,
		t.Name, t.Description, t.ComponentName, string(rules), t.CreatedAt, t.UpdatedAt,
	).Scan(&t.ID)
	if err != nil && isPgError(err, pgUniqueViolation) {
		return apperror.Conflict("Template with this name already exists")
	}
	return err
}

// Upsert inserts or updates the template with the same name.
func (r *templateRepo) Upsert(ctx context.Context, t *domain.Template) error {
	rules, err := jsonObject(t.CustomizationRules)
	if err != nil {
		return err
	}
	query := `INSERT INTO templates (name, description, component_name, customization_rules, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6)
              ON CONFLICT (name) DO UPDATE
              SET description = EXCLUDED.description,
                  component_name = EXCLUDED.component_name,
                  customization_rules = EXCLUDED.customization_rules,
                  updated_at = EXCLUDED.updated_at
              RETURNING id`
	return r.db.QueryRow(ctx, query,
		t.Name, t.Description, t.ComponentName, string(rules), t.CreatedAt, t.UpdatedAt,
	).Scan(&t.ID)
}

func (r *templateRepo) GetByID(ctx context.Context, id int64) (*domain.Template, error) {
	return getTemplate(ctx, r.db, id)
}

func (r *templateRepo) Fetch(ctx context.Context) ([]domain.Template, error) {
	rows, err := r.db.Query(ctx, `SELECT `+templateColumns+` FROM templates ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := []domain.Template{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

const customizationColumns = `id, resume_id, template_id, custom_styles, created_at, updated_at`

func getCustomization(ctx context.Context, q querier, resumeID, templateID int64) (*domain.ResumeCustomization, error) {
	query := `SELECT ` + customizationColumns + ` FROM resume_customizations WHERE resume_id = $1 AND template_id = $2`
	var c domain.ResumeCustomization
	var styles []byte
	err := q.QueryRow(ctx, query, resumeID, templateID).Scan(
		&c.ID, &c.ResumeID, &c.TemplateID, &styles, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	c.CustomStyles = map[string]any{}
	if len(styles) > 0 {
		if err := json.Unmarshal(styles, &c.CustomStyles); err != nil {
			return nil, err
		}
	}
	return &c, nil
}

type customizationRepo struct {
	db *pgxpool.Pool
}

func NewCustomizationRepository(db *pgxpool.Pool) domain.CustomizationRepository {
	return &customizationRepo{db: db}
}

// Upsert keeps one row per (resume, template).
func (r *customizationRepo) Upsert(ctx context.Context, c *domain.ResumeCustomization) error {
	styles, err := jsonObject(c.CustomStyles)
	if err != nil {
		return err
	}
	query := `INSERT INTO resume_customizations (resume_id, template_id, custom_styles, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5)
              ON CONFLICT (resume_id, template_id) DO UPDATE
              SET custom_styles = EXCLUDED.custom_styles, updated_at = EXCLUDED.updated_at
              RETURNING id, created_at`
	err = r.db.QueryRow(ctx, query,
		c.ResumeID, c.TemplateID, string(styles), c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil && isPgError(err, pgForeignKeyViolation) {
		return apperror.BadRequest(domain.ErrUnknownTemplateID.Error())
	}
	return err
}

func (r *customizationRepo) GetByResumeAndTemplate(ctx context.Context, resumeID, templateID int64) (*domain.ResumeCustomization, error) {
	return getCustomization(ctx, r.db, resumeID, templateID)
}
