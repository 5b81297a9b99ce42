package domain

import (
	"context"
	"strings"
	"time"
)

const (
	DefaultSkillName          = "Web Development"
	DefaultSkillLevel         = "Master"
	DefaultExperienceName     = "Company Name"
	DefaultExperiencePosition = "President"
	DefaultExperienceURL      = "https://company.com"
)

type Skill struct {
	ID        int64     `json:"id"`
	ResumeID  int64     `json:"resume_id"`
	Name      string    `json:"name"`
	Level     string    `json:"level"`
	Keywords  []string  `json:"keywords"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type SkillInput struct {
	Name     string   `json:"name" binding:"max=100,no_emoji"`
	Level    string   `json:"level" binding:"max=100"`
	Keywords []string `json:"keywords" binding:"max=50,dive,max=100"`
}

func (in SkillInput) Validate() error {
	return validateList(in.Keywords)
}

// ToSkill applies defaults for omitted fields.
func (in SkillInput) ToSkill() Skill {
	return Skill{
		Name:     withDefault(in.Name, DefaultSkillName),
		Level:    withDefault(in.Level, DefaultSkillLevel),
		Keywords: normalizeList(in.Keywords),
	}
}

type Experience struct {
	ID         int64     `json:"id"`
	ResumeID   int64     `json:"resume_id"`
	Name       string    `json:"name"`
	Position   string    `json:"position"`
	URL        string    `json:"url"`
	Highlights []string  `json:"highlights"`
	Summary    string    `json:"summary"`
	StartDate  Date      `json:"start_date"`
	EndDate    *Date     `json:"end_date"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type ExperienceInput struct {
	Name       string   `json:"name" binding:"max=100"`
	Position   string   `json:"position" binding:"max=100"`
	URL        string   `json:"url" binding:"omitempty,url,max=200"`
	Highlights []string `json:"highlights" binding:"max=50,dive,max=500"`
	Summary    string   `json:"summary" binding:"max=5000"`
	StartDate  Date     `json:"start_date"`
	EndDate    *Date    `json:"end_date"`
}

func (in ExperienceInput) Validate() error {
	if in.StartDate.IsZero() {
		return ErrMissingStartDate
	}
	if in.EndDate != nil && !in.EndDate.IsZero() && in.EndDate.Before(in.StartDate.Time) {
		return ErrInvalidDateRange
	}
	return validateList(in.Highlights)
}

// ToExperience applies defaults for omitted fields.
func (in ExperienceInput) ToExperience() Experience {
	e := Experience{
		Name:       withDefault(in.Name, DefaultExperienceName),
		Position:   withDefault(in.Position, DefaultExperiencePosition),
		URL:        withDefault(in.URL, DefaultExperienceURL),
		Highlights: normalizeList(in.Highlights),
		Summary:    in.Summary,
		StartDate:  in.StartDate,
	}
	if in.EndDate != nil && !in.EndDate.IsZero() {
		end := *in.EndDate
		e.EndDate = &end
	}
	return e
}

type SkillRepository interface {
	Create(ctx context.Context, s *Skill) error
	GetByID(ctx context.Context, id int64) (*Skill, error)
	Update(ctx context.Context, s *Skill) error
	Delete(ctx context.Context, id int64) error
}

type ExperienceRepository interface {
	Create(ctx context.Context, e *Experience) error
	GetByID(ctx context.Context, id int64) (*Experience, error)
	Update(ctx context.Context, e *Experience) error
	Delete(ctx context.Context, id int64) error
}

func withDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}

func validateList(items []string) error {
	if len(items) > MaxListItems {
		return ErrTooManyListItems
	}
	for _, item := range items {
		if strings.TrimSpace(item) == "" {
			return ErrBlankListItem
		}
	}
	return nil
}

func normalizeList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, strings.TrimSpace(item))
	}
	return out
}
