package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/CalumRakk/resume-project/internal/domain"
	"github.com/CalumRakk/resume-project/pkg/apperror"
)

// Skills and experiences are only reachable through a resume the caller owns,
// and must belong to that resume.

func (u *resumeUsecase) ownedSkill(ctx context.Context, userID string, resumeID, skillID int64) (*domain.Skill, error) {
	if _, err := u.ownedResume(ctx, userID, resumeID); err != nil {
		return nil, err
	}
	skill, err := u.skillRepo.GetByID(ctx, skillID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Skill not found")
		}
		return nil, apperror.Internal(err)
	}
	if skill.ResumeID != resumeID {
		return nil, apperror.NotFound("Skill not found")
	}
	return skill, nil
}

func (u *resumeUsecase) AddSkill(ctx context.Context, userID string, resumeID int64, in domain.SkillInput) (*domain.Skill, error) {
	resume, err := u.ownedResume(ctx, userID, resumeID)
	if err != nil {
		return nil, err
	}
	if len(resume.Skills) >= domain.MaxListItems {
		return nil, apperror.BadRequest(fmt.Sprintf("a resume holds at most %d skills", domain.MaxListItems))
	}
	if err := in.Validate(); err != nil {
		return nil, apperror.BadRequest(err.Error())
	}

	skill := in.ToSkill()
	skill.ResumeID = resumeID
	skill.CreatedAt = u.now()
	skill.UpdatedAt = skill.CreatedAt

	if err := u.skillRepo.Create(ctx, &skill); err != nil {
		return nil, repoError(err, "Resume not found")
	}
	return &skill, nil
}

func (u *resumeUsecase) UpdateSkill(ctx context.Context, userID string, resumeID, skillID int64, in domain.SkillInput) (*domain.Skill, error) {
	existing, err := u.ownedSkill(ctx, userID, resumeID, skillID)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, apperror.BadRequest(err.Error())
	}

	updated := in.ToSkill()
	updated.ID = existing.ID
	updated.ResumeID = existing.ResumeID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = u.now()

	if err := u.skillRepo.Update(ctx, &updated); err != nil {
		return nil, repoError(err, "Skill not found")
	}
	return &updated, nil
}

func (u *resumeUsecase) DeleteSkill(ctx context.Context, userID string, resumeID, skillID int64) error {
	if _, err := u.ownedSkill(ctx, userID, resumeID, skillID); err != nil {
		return err
	}
	return repoError(u.skillRepo.Delete(ctx, skillID), "Skill not found")
}

func (u *resumeUsecase) ownedExperience(ctx context.Context, userID string, resumeID, experienceID int64) (*domain.Experience, error) {
	if _, err := u.ownedResume(ctx, userID, resumeID); err != nil {
		return nil, err
	}
	exp, err := u.experienceRepo.GetByID(ctx, experienceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Experience not found")
		}
		return nil, apperror.Internal(err)
	}
	if exp.ResumeID != resumeID {
		return nil, apperror.NotFound("Experience not found")
	}
	return exp, nil
}

func (u *resumeUsecase) AddExperience(ctx context.Context, userID string, resumeID int64, in domain.ExperienceInput) (*domain.Experience, error) {
	resume, err := u.ownedResume(ctx, userID, resumeID)
	if err != nil {
		return nil, err
	}
	if len(resume.Experiences) >= domain.MaxListItems {
		return nil, apperror.BadRequest(fmt.Sprintf("a resume holds at most %d experiences", domain.MaxListItems))
	}
	if err := in.Validate(); err != nil {
		return nil, apperror.BadRequest(err.Error())
	}

	exp := in.ToExperience()
	exp.ResumeID = resumeID
	exp.CreatedAt = u.now()
	exp.UpdatedAt = exp.CreatedAt

	if err := u.experienceRepo.Create(ctx, &exp); err != nil {
		return nil, repoError(err, "Resume not found")
	}
	return &exp, nil
}

func (u *resumeUsecase) UpdateExperience(ctx context.Context, userID string, resumeID, experienceID int64, in domain.ExperienceInput) (*domain.Experience, error) {
	existing, err := u.ownedExperience(ctx, userID, resumeID, experienceID)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, apperror.BadRequest(err.Error())
	}

	updated := in.ToExperience()
	updated.ID = existing.ID
	updated.ResumeID = existing.ResumeID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = u.now()

	if err := u.experienceRepo.Update(ctx, &updated); err != nil {
		return nil, repoError(err, "Experience not found")
	}
	return &updated, nil
}

func (u *resumeUsecase) DeleteExperience(ctx context.Context, userID string, resumeID, experienceID int64) error {
	if _, err := u.ownedExperience(ctx, userID, resumeID, experienceID); err != nil {
		return err
	}
	return repoError(u.experienceRepo.Delete(ctx, experienceID), "Experience not found")
}
