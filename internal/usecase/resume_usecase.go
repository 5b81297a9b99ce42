package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/CalumRakk/resume-project/internal/domain"
	"github.com/CalumRakk/resume-project/pkg/apperror"
)

type resumeUsecase struct {
	resumeRepo     domain.ResumeRepository
	skillRepo      domain.SkillRepository
	experienceRepo domain.ExperienceRepository
	templateRepo   domain.TemplateRepository
	now            func() time.Time
}

func NewResumeUsecase(
	resumeRepo domain.ResumeRepository,
	skillRepo domain.SkillRepository,
	experienceRepo domain.ExperienceRepository,
	templateRepo domain.TemplateRepository,
) domain.ResumeUsecase {
	return &resumeUsecase{
		resumeRepo:     resumeRepo,
		skillRepo:      skillRepo,
		experienceRepo: experienceRepo,
		templateRepo:   templateRepo,
		now:            time.Now,
	}
}

// ownedResume loads the resume and hides it from anyone but its owner.
func (u *resumeUsecase) ownedResume(ctx context.Context, userID string, id int64) (*domain.Resume, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("User not authenticated")
	}
	resume, err := u.resumeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Resume not found")
		}
		return nil, apperror.Internal(err)
	}
	if resume.UserID != userID {
		return nil, apperror.NotFound("Resume not found")
	}
	return resume, nil
}

func (u *resumeUsecase) checkTemplate(ctx context.Context, templateID *int64) error {
	if templateID == nil {
		return nil
	}
	if _, err := u.templateRepo.GetByID(ctx, *templateID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperror.BadRequest(domain.ErrUnknownTemplateID.Error())
		}
		return apperror.Internal(err)
	}
	return nil
}

func repoError(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	if _, ok := apperror.As(err); ok {
		return err
	}
	if errors.Is(err, domain.ErrNotFound) {
		return apperror.NotFound(notFoundMsg)
	}
	return apperror.Internal(err)
}

func (u *resumeUsecase) ListResumes(ctx context.Context, userID string, page, pageSize int) ([]domain.Resume, int64, error) {
	if userID == "" {
		return nil, 0, apperror.Unauthorized("User not authenticated")
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	resumes, total, err := u.resumeRepo.FetchByUser(ctx, userID, pageSize, offset)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	return resumes, total, nil
}

func (u *resumeUsecase) GetResume(ctx context.Context, userID string, id int64) (*domain.Resume, error) {
	return u.ownedResume(ctx, userID, id)
}

func (u *resumeUsecase) CreateResume(ctx context.Context, userID string, in domain.ResumeInput) (*domain.Resume, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("User not authenticated")
	}
	if err := in.Validate(); err != nil {
		return nil, apperror.BadRequest(err.Error())
	}
	if err := u.checkTemplate(ctx, in.TemplateID); err != nil {
		return nil, err
	}

	resume := in.ToResume(userID)
	now := u.now()
	resume.CreatedAt = now
	resume.UpdatedAt = now

	if err := u.resumeRepo.Create(ctx, resume); err != nil {
		return nil, repoError(err, "Resume not found")
	}
	return resume, nil
}

func (u *resumeUsecase) ReplaceResume(ctx context.Context, userID string, id int64, fields domain.ResumeFields) (*domain.Resume, error) {
	resume, err := u.ownedResume(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := u.checkTemplate(ctx, fields.TemplateID); err != nil {
		return nil, err
	}

	fields.Replace(resume)
	return u.save(ctx, resume)
}

func (u *resumeUsecase) PatchResume(ctx context.Context, userID string, id int64, patch domain.ResumePatch) (*domain.Resume, error) {
	resume, err := u.ownedResume(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return resume, nil
	}
	if err := u.checkTemplate(ctx, patch.TemplateID); err != nil {
		return nil, err
	}

	patch.Apply(resume)
	return u.save(ctx, resume)
}

// save persists scalar changes and reloads so the selected template and its
// customization reflect the update.
func (u *resumeUsecase) save(ctx context.Context, resume *domain.Resume) (*domain.Resume, error) {
	resume.UpdatedAt = u.now()
	if err := u.resumeRepo.Update(ctx, resume); err != nil {
		return nil, repoError(err, "Resume not found")
	}
	return u.ownedResume(ctx, resume.UserID, resume.ID)
}

func (u *resumeUsecase) DeleteResume(ctx context.Context, userID string, id int64) error {
	if _, err := u.ownedResume(ctx, userID, id); err != nil {
		return err
	}
	return repoError(u.resumeRepo.Delete(ctx, id), "Resume not found")
}
