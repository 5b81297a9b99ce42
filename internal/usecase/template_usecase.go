package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/CalumRakk/resume-project/internal/domain"
	"github.com/CalumRakk/resume-project/pkg/apperror"
)

type templateUsecase struct {
	templateRepo      domain.TemplateRepository
	customizationRepo domain.CustomizationRepository
	resumeRepo        domain.ResumeRepository
}

func NewTemplateUsecase(
	templateRepo domain.TemplateRepository,
	customizationRepo domain.CustomizationRepository,
	resumeRepo domain.ResumeRepository,
) domain.TemplateUsecase {
	return &templateUsecase{
		templateRepo:      templateRepo,
		customizationRepo: customizationRepo,
		resumeRepo:        resumeRepo,
	}
}

func (u *templateUsecase) ListTemplates(ctx context.Context) ([]domain.Template, error) {
	templates, err := u.templateRepo.Fetch(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return templates, nil
}

func (u *templateUsecase) GetTemplate(ctx context.Context, id int64) (*domain.Template, error) {
	t, err := u.templateRepo.GetByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "Template not found")
	}
	return t, nil
}

func (u *templateUsecase) CreateTemplate(ctx context.Context, in domain.TemplateInput) (*domain.Template, error) {
	t := in.ToTemplate()
	now := time.Now()
	t.CreatedAt, t.UpdatedAt = now, now

	if err := u.templateRepo.Create(ctx, t); err != nil {
		return nil, repoError(err, "Template not found")
	}
	return t, nil
}

// ImportTemplates upserts a catalog by name. It stops at the first invalid or
// failing entry and reports how many were written before it.
func (u *templateUsecase) ImportTemplates(ctx context.Context, templates []domain.Template) (int, error) {
	now := time.Now()
	for i := range templates {
		t := &templates[i]
		if strings.TrimSpace(t.Name) == "" || strings.TrimSpace(t.ComponentName) == "" {
			return i, apperror.BadRequest(fmt.Sprintf("template #%d: name and component_name are required", i+1))
		}
		if t.CustomizationRules == nil {
			t.CustomizationRules = map[string]any{}
		}
		t.CreatedAt, t.UpdatedAt = now, now
		if err := u.templateRepo.Upsert(ctx, t); err != nil {
			return i, fmt.Errorf("template %q: %w", t.Name, err)
		}
	}
	return len(templates), nil
}

// SelectTemplate makes templateID the resume's template and stores the
// resume's custom styles for it.
func (u *templateUsecase) SelectTemplate(ctx context.Context, userID string, resumeID int64, req domain.SelectTemplateRequest) (*domain.ResumeCustomization, error) {
	resume, err := u.resumeRepo.GetByID(ctx, resumeID)
	if err != nil {
		return nil, repoError(err, "Resume not found")
	}
	if userID == "" || resume.UserID != userID {
		return nil, apperror.NotFound("Resume not found")
	}

	if _, err := u.templateRepo.GetByID(ctx, req.TemplateID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.BadRequest(domain.ErrUnknownTemplateID.Error())
		}
		return nil, apperror.Internal(err)
	}

	now := time.Now()
	templateID := req.TemplateID
	resume.TemplateID = &templateID
	resume.UpdatedAt = now
	if err := u.resumeRepo.Update(ctx, resume); err != nil {
		return nil, repoError(err, "Resume not found")
	}

	custom := &domain.ResumeCustomization{
		ResumeID:     resumeID,
		TemplateID:   templateID,
		CustomStyles: req.CustomStyles,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if custom.CustomStyles == nil {
		custom.CustomStyles = map[string]any{}
	}
	if err := u.customizationRepo.Upsert(ctx, custom); err != nil {
		return nil, repoError(err, "Resume not found")
	}
	return custom, nil
}
