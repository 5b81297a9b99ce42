package v1

import (
	"net/http"

	"github.com/CalumRakk/resume-project/internal/delivery/http/response"
	"github.com/CalumRakk/resume-project/internal/domain"

	"github.com/gin-gonic/gin"
)

type TemplateHandler struct {
	templateUC domain.TemplateUsecase
}

func NewTemplateHandler(public, protected, admin *gin.RouterGroup, templateUC domain.TemplateUsecase) {
	handler := &TemplateHandler{templateUC: templateUC}

	public.GET("/templates", handler.List)
	public.GET("/templates/:id", handler.Get)

	admin.POST("/templates", handler.Create)

	protected.PUT("/resumes/:id/template", handler.Select)
}

// List godoc
// @Summary      List templates
// @Tags         templates
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.Template}
// @Router       /templates [get]
func (h *TemplateHandler) List(c *gin.Context) {
	templates, err := h.templateUC.ListTemplates(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	if templates == nil {
		templates = []domain.Template{}
	}
	response.Success(c, http.StatusOK, "Templates retrieved", templates)
}

// Get godoc
// @Summary      Get a template
// @Tags         templates
// @Produce      json
// @Param        id   path      int  true  "Template ID"
// @Success      200  {object}  response.Response{data=domain.Template}
// @Failure      404  {object}  response.Response
// @Router       /templates/{id} [get]
func (h *TemplateHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	t, err := h.templateUC.GetTemplate(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Template retrieved", t)
}

// Create godoc
// @Summary      Create a template
// @Description  Admin only.
// @Tags         templates
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        template  body      domain.TemplateInput  true  "Template"
// @Success      201       {object}  response.Response{data=domain.Template}
// @Failure      400       {object}  response.Response
// @Failure      403       {object}  response.Response
// @Failure      409       {object}  response.Response
// @Router       /templates [post]
func (h *TemplateHandler) Create(c *gin.Context) {
	var in domain.TemplateInput
	if !bindJSON(c, &in) {
		return
	}
	t, err := h.templateUC.CreateTemplate(c.Request.Context(), in)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Template created", t)
}

// Select godoc
// @Summary      Select a resume's template
// @Description  Set the template used to render a resume, with optional style overrides.
// @Tags         resumes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id         path      int                           true  "Resume ID"
// @Param        selection  body      domain.SelectTemplateRequest  true  "Template and styles"
// @Success      200        {object}  response.Response{data=domain.ResumeCustomization}
// @Failure      400        {object}  response.Response
// @Failure      404        {object}  response.Response
// @Router       /resumes/{id}/template [put]
func (h *TemplateHandler) Select(c *gin.Context) {
	resumeID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req domain.SelectTemplateRequest
	if !bindJSON(c, &req) {
		return
	}

	custom, err := h.templateUC.SelectTemplate(c.Request.Context(), currentUserID(c), resumeID, req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Template selected", custom)
}
