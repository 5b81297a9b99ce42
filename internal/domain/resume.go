package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrInvalidDateRange  = errors.New("end_date must not be before start_date")
	ErrMissingStartDate  = errors.New("start_date is required")
	ErrTooManyListItems  = errors.New("lists are limited to 50 items")
	ErrBlankListItem     = errors.New("list items must not be blank")
	ErrUnknownTemplateID = errors.New("template does not exist")
)

// MaxListItems bounds keywords, highlights and nested collections.
const MaxListItems = 50

type Resume struct {
	ID            int64                `json:"id"`
	UserID        string               `json:"user_id"`
	TemplateID    *int64               `json:"template_selected"`
	FullName      string               `json:"full_name"`
	Email         string               `json:"email"`
	Summary       string               `json:"summary"`
	Skills        []Skill              `json:"skills"`
	Experiences   []Experience         `json:"experiences"`
	Template      *Template            `json:"template,omitempty"`
	Customization *ResumeCustomization `json:"customization,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// ResumeFields are the scalar fields a client may set with PUT.
type ResumeFields struct {
	FullName   string `json:"full_name" binding:"required,max=100,valid_name"`
	Email      string `json:"email" binding:"required,email,max=254"`
	Summary    string `json:"summary" binding:"max=5000"`
	TemplateID *int64 `json:"template_selected" binding:"omitempty,gt=0"`
}

// ResumeInput creates a resume, optionally with its skills and experiences.
type ResumeInput struct {
	ResumeFields
	Skills      []SkillInput      `json:"skills" binding:"max=50,dive"`
	Experiences []ExperienceInput `json:"experiences" binding:"max=50,dive"`
}

// Validate checks what struct tags cannot express.
func (in ResumeInput) Validate() error {
	if len(in.Skills) > MaxListItems || len(in.Experiences) > MaxListItems {
		return ErrTooManyListItems
	}
	for _, s := range in.Skills {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	for _, e := range in.Experiences {
		if err := e.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ToResume builds the resume and its nested items with defaults applied.
func (in ResumeInput) ToResume(userID string) *Resume {
	r := &Resume{UserID: userID, Skills: []Skill{}, Experiences: []Experience{}}
	in.ResumeFields.applyTo(r)
	for _, s := range in.Skills {
		r.Skills = append(r.Skills, s.ToSkill())
	}
	for _, e := range in.Experiences {
		r.Experiences = append(r.Experiences, e.ToExperience())
	}
	return r
}

func (f ResumeFields) applyTo(r *Resume) {
	r.FullName = f.FullName
	r.Email = f.Email
	r.Summary = f.Summary
	r.TemplateID = f.TemplateID
}

// Replace overwrites every scalar field of r.
func (f ResumeFields) Replace(r *Resume) {
	f.applyTo(r)
}

// ResumePatch is a partial update. Only non-nil fields are applied; there is
// no way to clear template_selected through a patch.
type ResumePatch struct {
	FullName   *string `json:"full_name" binding:"omitempty,min=1,max=100,valid_name"`
	Email      *string `json:"email" binding:"omitempty,email,max=254"`
	Summary    *string `json:"summary" binding:"omitempty,max=5000"`
	TemplateID *int64  `json:"template_selected" binding:"omitempty,gt=0"`
}

func (p ResumePatch) Empty() bool {
	return p.FullName == nil && p.Email == nil && p.Summary == nil && p.TemplateID == nil
}

// Apply merges the allowed fields into r.
func (p ResumePatch) Apply(r *Resume) {
	if p.FullName != nil {
		r.FullName = *p.FullName
	}
	if p.Email != nil {
		r.Email = *p.Email
	}
	if p.Summary != nil {
		r.Summary = *p.Summary
	}
	if p.TemplateID != nil {
		id := *p.TemplateID
		r.TemplateID = &id
	}
}

type ResumeRepository interface {
	// Create inserts the resume with its skills and experiences atomically.
	Create(ctx context.Context, r *Resume) error
	GetByID(ctx context.Context, id int64) (*Resume, error)
	FetchByUser(ctx context.Context, userID string, limit, offset int) ([]Resume, int64, error)
	Update(ctx context.Context, r *Resume) error
	Delete(ctx context.Context, id int64) error
}

type ResumeUsecase interface {
	ListResumes(ctx context.Context, userID string, page, pageSize int) ([]Resume, int64, error)
	GetResume(ctx context.Context, userID string, id int64) (*Resume, error)
	CreateResume(ctx context.Context, userID string, in ResumeInput) (*Resume, error)
	ReplaceResume(ctx context.Context, userID string, id int64, fields ResumeFields) (*Resume, error)
	PatchResume(ctx context.Context, userID string, id int64, patch ResumePatch) (*Resume, error)
	DeleteResume(ctx context.Context, userID string, id int64) error

	AddSkill(ctx context.Context, userID string, resumeID int64, in SkillInput) (*Skill, error)
	UpdateSkill(ctx context.Context, userID string, resumeID, skillID int64, in SkillInput) (*Skill, error)
	DeleteSkill(ctx context.Context, userID string, resumeID, skillID int64) error

	AddExperience(ctx context.Context, userID string, resumeID int64, in ExperienceInput) (*Experience, error)
	UpdateExperience(ctx context.Context, userID string, resumeID, experienceID int64, in ExperienceInput) (*Experience, error)
	DeleteExperience(ctx context.Context, userID string, resumeID, experienceID int64) error
}
