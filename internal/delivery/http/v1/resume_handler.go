package v1

import (
	"net/http"
	"strconv"

	"github.com/CalumRakk/resume-project/internal/delivery/http/response"
	"github.com/CalumRakk/resume-project/internal/domain"

	"github.com/gin-gonic/gin"
)

type ResumeHandler struct {
	resumeUC domain.ResumeUsecase
}

func NewResumeHandler(protected *gin.RouterGroup, resumeUC domain.ResumeUsecase) {
	handler := &ResumeHandler{resumeUC: resumeUC}

	resumes := protected.Group("/resumes")
	{
		resumes.GET("", handler.List)
		resumes.POST("", handler.Create)
		resumes.GET("/:id", handler.Get)
		resumes.PUT("/:id", handler.Replace)
		resumes.PATCH("/:id", handler.Patch)
		resumes.DELETE("/:id", handler.Delete)

		resumes.POST("/:id/skills", handler.AddSkill)
		resumes.PUT("/:id/skills/:skillId", handler.UpdateSkill)
		resumes.DELETE("/:id/skills/:skillId", handler.DeleteSkill)

		resumes.POST("/:id/experiences", handler.AddExperience)
		resumes.PUT("/:id/experiences/:experienceId", handler.UpdateExperience)
		resumes.DELETE("/:id/experiences/:experienceId", handler.DeleteExperience)
	}
}

// List godoc
// @Summary      List my resumes
// @Tags         resumes
// @Produce      json
// @Security     BearerAuth
// @Param        page       query     int  false  "Page number"  default(1)
// @Param        page_size  query     int  false  "Page size"    default(10)
// @Success      200        {object}  response.Response{data=response.Paginated}
// @Failure      401        {object}  response.Response
// @Router       /resumes [get]
func (h *ResumeHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	resumes, total, err := h.resumeUC.ListResumes(c.Request.Context(), currentUserID(c), page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}
	if resumes == nil {
		resumes = []domain.Resume{}
	}
	response.Success(c, http.StatusOK, "Resumes retrieved", response.Paginated{
		Items:    resumes,
		Total:    total,
		Page:     max(page, 1),
		PageSize: min(max(pageSize, 1), 100),
	})
}

// Create godoc
// @Summary      Create a resume
// @Description  Create a resume, optionally with its skills and experiences in one request.
// @Tags         resumes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        resume  body      domain.ResumeInput  true  "Resume"
// @Success      201     {object}  response.Response{data=domain.Resume}
// @Failure      400     {object}  response.Response
// @Failure      401     {object}  response.Response
// @Router       /resumes [post]
func (h *ResumeHandler) Create(c *gin.Context) {
	var in domain.ResumeInput
	if !bindJSON(c, &in) {
		return
	}

	resume, err := h.resumeUC.CreateResume(c.Request.Context(), currentUserID(c), in)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Resume created", resume)
}

// Get godoc
// @Summary      Get a resume
// @Tags         resumes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Resume ID"
// @Success      200  {object}  response.Response{data=domain.Resume}
// @Failure      404  {object}  response.Response
// @Router       /resumes/{id} [get]
func (h *ResumeHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	resume, err := h.resumeUC.GetResume(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Resume retrieved", resume)
}

// Replace godoc
// @Summary      Replace a resume
// @Description  Overwrite every scalar field. Skills and experiences are managed through their own endpoints.
// @Tags         resumes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      int                  true  "Resume ID"
// @Param        resume  body      domain.ResumeFields  true  "Resume fields"
// @Success      200     {object}  response.Response{data=domain.Resume}
// @Failure      400     {object}  response.Response
// @Failure      404     {object}  response.Response
// @Router       /resumes/{id} [put]
func (h *ResumeHandler) Replace(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var fields domain.ResumeFields
	if !bindJSON(c, &fields) {
		return
	}

	resume, err := h.resumeUC.ReplaceResume(c.Request.Context(), currentUserID(c), id, fields)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Resume updated", resume)
}

// Patch godoc
// @Summary      Update part of a resume
// @Tags         resumes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      int                 true  "Resume ID"
// @Param        patch  body      domain.ResumePatch  true  "Fields to change"
// @Success      200    {object}  response.Response{data=domain.Resume}
// @Failure      400    {object}  response.Response
// @Failure      404    {object}  response.Response
// @Router       /resumes/{id} [patch]
func (h *ResumeHandler) Patch(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var patch domain.ResumePatch
	if !bindJSON(c, &patch) {
		return
	}

	resume, err := h.resumeUC.PatchResume(c.Request.Context(), currentUserID(c), id, patch)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Resume updated", resume)
}

// Delete godoc
// @Summary      Delete a resume
// @Tags         resumes
// @Security     BearerAuth
// @Param        id   path      int  true  "Resume ID"
// @Success      204
// @Failure      404  {object}  response.Response
// @Router       /resumes/{id} [delete]
func (h *ResumeHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.resumeUC.DeleteResume(c.Request.Context(), currentUserID(c), id); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddSkill godoc
// @Summary      Add a skill
// @Tags         resumes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      int               true  "Resume ID"
// @Param        skill  body      domain.SkillInput true  "Skill"
// @Success      201    {object}  response.Response{data=domain.Skill}
// @Failure      400    {object}  response.Response
// @Failure      404    {object}  response.Response
// @Router       /resumes/{id}/skills [post]
func (h *ResumeHandler) AddSkill(c *gin.Context) {
	resumeID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in domain.SkillInput
	if !bindJSON(c, &in) {
		return
	}

	skill, err := h.resumeUC.AddSkill(c.Request.Context(), currentUserID(c), resumeID, in)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Skill added", skill)
}

// UpdateSkill godoc
// @Summary      Update a skill
// @Tags         resumes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int               true  "Resume ID"
// @Param        skillId  path      int               true  "Skill ID"
// @Param        skill    body      domain.SkillInput true  "Skill"
// @Success      200      {object}  response.Response{data=domain.Skill}
// @Failure      404      {object}  response.Response
// @Router       /resumes/{id}/skills/{skillId} [put]
func (h *ResumeHandler) UpdateSkill(c *gin.Context) {
	resumeID, ok := paramID(c, "id")
	if !ok {
		return
	}
	skillID, ok := paramID(c, "skillId")
	if !ok {
		return
	}
	var in domain.SkillInput
	if !bindJSON(c, &in) {
		return
	}

	skill, err := h.resumeUC.UpdateSkill(c.Request.Context(), currentUserID(c), resumeID, skillID, in)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Skill updated", skill)
}

// DeleteSkill godoc
// @Summary      Delete a skill
// @Tags         resumes
// @Security     BearerAuth
// @Param        id       path  int  true  "Resume ID"
// @Param        skillId  path  int  true  "Skill ID"
// @Success      204
// @Failure      404  {object}  response.Response
// @Router       /resumes/{id}/skills/{skillId} [delete]
func (h *ResumeHandler) DeleteSkill(c *gin.Context) {
	resumeID, ok := paramID(c, "id")
	if !ok {
		return
	}
	skillID, ok := paramID(c, "skillId")
	if !ok {
		return
	}
	if err := h.resumeUC.DeleteSkill(c.Request.Context(), currentUserID(c), resumeID, skillID); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddExperience godoc
// @Summary      Add an experience
// @Tags         resumes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id          path      int                     true  "Resume ID"
// @Param        experience  body      domain.ExperienceInput  true  "Experience"
// @Success      201         {object}  response.Response{data=domain.Experience}
// @Failure      400         {object}  response.Response
// @Failure      404         {object}  response.Response
// @Router       /resumes/{id}/experiences [post]
func (h *ResumeHandler) AddExperience(c *gin.Context) {
	resumeID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in domain.ExperienceInput
	if !bindJSON(c, &in) {
		return
	}

	exp, err := h.resumeUC.AddExperience(c.Request.Context(), currentUserID(c), resumeID, in)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Experience added", exp)
}

// UpdateExperience godoc
// @Summary      Update an experience
// @Tags         resumes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id            path      int                     true  "Resume ID"
// @Param        experienceId  path      int                     true  "Experience ID"
// @Param        experience    body      domain.ExperienceInput  true  "Experience"
// @Success      200           {object}  response.Response{data=domain.Experience}
// @Failure      400           {object}  response.Response
// @Failure      404           {object}  response.Response
// @Router       /resumes/{id}/experiences/{experienceId} [put]
func (h *ResumeHandler) UpdateExperience(c *gin.Context) {
	resumeID, ok := paramID(c, "id")
	if !ok {
		return
	}
	expID, ok := paramID(c, "experienceId")
	if !ok {
		return
	}
	var in domain.ExperienceInput
	if !bindJSON(c, &in) {
		return
	}

	exp, err := h.resumeUC.UpdateExperience(c.Request.Context(), currentUserID(c), resumeID, expID, in)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Experience updated", exp)
}

// DeleteExperience godoc
// @Summary      Delete an experience
// @Tags         resumes
// @Security     BearerAuth
// @Param        id            path  int  true  "Resume ID"
// @Param        experienceId  path  int  true  "Experience ID"
// @Success      204
// @Failure      404  {object}  response.Response
// @Router       /resumes/{id}/experiences/{experienceId} [delete]
func (h *ResumeHandler) DeleteExperience(c *gin.Context) {
	resumeID, ok := paramID(c, "id")
	if !ok {
		return
	}
	expID, ok := paramID(c, "experienceId")
	if !ok {
		return
	}
	if err := h.resumeUC.DeleteExperience(c.Request.Context(), currentUserID(c), resumeID, expID); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
