package domain

import (
	"context"
	"time"
)

// Template is a resume layout rendered by the front-end component
// ComponentName. CustomizationRules describes which styles a resume may
// override.
type Template struct {
	ID                 int64          `json:"id" yaml:"-"`
	Name               string         `json:"name" yaml:"name"`
	Description        string         `json:"description" yaml:"description"`
	ComponentName      string         `json:"component_name" yaml:"component_name"`
	CustomizationRules map[string]any `json:"customization_rules" yaml:"customization_rules"`
	CreatedAt          time.Time      `json:"created_at" yaml:"-"`
	UpdatedAt          time.Time      `json:"updated_at" yaml:"-"`
}

type TemplateInput struct {
	Name               string         `json:"name" binding:"required,max=100,no_emoji"`
	Description        string         `json:"description" binding:"max=1000"`
	ComponentName      string         `json:"component_name" binding:"required,component_name"`
	CustomizationRules map[string]any `json:"customization_rules"`
}

func (in TemplateInput) ToTemplate() *Template {
	rules := in.CustomizationRules
	if rules == nil {
		rules = map[string]any{}
	}
	return &Template{
		Name:               in.Name,
		Description:        in.Description,
		ComponentName:      in.ComponentName,
		CustomizationRules: rules,
	}
}

// ResumeCustomization holds the per-resume style overrides for one template.
type ResumeCustomization struct {
	ID           int64          `json:"id"`
	ResumeID     int64          `json:"resume_id"`
	TemplateID   int64          `json:"template_id"`
	CustomStyles map[string]any `json:"custom_styles"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

type SelectTemplateRequest struct {
	TemplateID   int64          `json:"template_id" binding:"required,gt=0"`
	CustomStyles map[string]any `json:"custom_styles"`
}

type TemplateRepository interface {
	Create(ctx context.Context, t *Template) error
	Upsert(ctx context.Context, t *Template) error
	GetByID(ctx context.Context, id int64) (*Template, error)
	Fetch(ctx context.Context) ([]Template, error)
}

type CustomizationRepository interface {
	Upsert(ctx context.Context, c *ResumeCustomization) error
	GetByResumeAndTemplate(ctx context.Context, resumeID, templateID int64) (*ResumeCustomization, error)
}

type TemplateUsecase interface {
	ListTemplates(ctx context.Context) ([]Template, error)
	GetTemplate(ctx context.Context, id int64) (*Template, error)
	CreateTemplate(ctx context.Context, in TemplateInput) (*Template, error)
	ImportTemplates(ctx context.Context, templates []Template) (int, error)
	SelectTemplate(ctx context.Context, userID string, resumeID int64, req SelectTemplateRequest) (*ResumeCustomization, error)
}
