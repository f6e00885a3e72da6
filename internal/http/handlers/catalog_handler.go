package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mahdiyarhamdi/sheetaro/internal/dto"
	"github.com/mahdiyarhamdi/sheetaro/internal/http/handlers/common"
	"github.com/mahdiyarhamdi/sheetaro/internal/service"
)

// CatalogHandler serves the published catalog and its administration.
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler creates a new handler.
func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListCategories handles GET /api/catalog/categories.
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusOK, gin.H{"categories": categories})
}

// GetCategory handles GET /api/catalog/categories/:slug.
func (h *CatalogHandler) GetCategory(c *gin.Context) {
	category, err := h.catalog.CategoryBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusOK, category)
}

// GetQuestions handles GET /api/catalog/plans/:id/questions.
func (h *CatalogHandler) GetQuestions(c *gin.Context) {
	planID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	questions, err := h.catalog.PlanQuestions(c.Request.Context(), planID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusOK, gin.H{"questions": questions})
}

// GetVersion handles GET /api/admin/catalog/versions/:version.
func (h *CatalogHandler) GetVersion(c *gin.Context) {
	version, err := strconv.ParseInt(c.Param("version"), 10, 64)
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "invalid version number")
		return
	}

	snap, err := h.catalog.Version(c.Request.Context(), version)
	if err != nil {
		_ = c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusOK, gin.H{
		"version":    snap.Version,
		"created_at": snap.CreatedAt,
		"categories": snap.Categories,
	})
}

// CreateCategory handles POST /api/admin/catalog/categories.
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req dto.CategoryRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	snap, id, err := h.catalog.CreateCategory(c.Request.Context(), service.CategoryInput{
		Slug:        req.Slug,
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		BasePrice:   req.BasePrice,
		SortOrder:   req.SortOrder,
		IsActive:    req.IsActive,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusCreated, gin.H{"id": id, "version": snap.Version})
}

// UpdateCategory handles PUT /api/admin/catalog/categories/:id.
func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req dto.CategoryRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := h.catalog.UpdateCategory(c.Request.Context(), id, service.CategoryInput{
		Slug:        req.Slug,
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		BasePrice:   req.BasePrice,
		SortOrder:   req.SortOrder,
		IsActive:    req.IsActive,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusOK, gin.H{"version": snap.Version})
}

// AddAttribute handles POST /api/admin/catalog/categories/:id/attributes.
func (h *CatalogHandler) AddAttribute(c *gin.Context) {
	categoryID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req dto.AttributeRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	snap, id, err := h.catalog.AddAttribute(c.Request.Context(), categoryID, service.AttributeInput{
		Slug:       req.Slug,
		Name:       req.Name,
		Kind:       req.Kind,
		IsRequired: req.IsRequired,
		SortOrder:  req.SortOrder,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusCreated, gin.H{"id": id, "version": snap.Version})
}

// AddOption handles POST /api/admin/catalog/attributes/:id/options.
func (h *CatalogHandler) AddOption(c *gin.Context) {
	attributeID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req dto.OptionRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	snap, id, err := h.catalog.AddOption(c.Request.Context(), attributeID, service.OptionInput{
		Value:      req.Value,
		Label:      req.Label,
		PriceDelta: req.PriceDelta,
		SortOrder:  req.SortOrder,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusCreated, gin.H{"id": id, "version": snap.Version})
}

// AddPlan handles POST /api/admin/catalog/categories/:id/plans.
func (h *CatalogHandler) AddPlan(c *gin.Context) {
	categoryID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req dto.PlanRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	snap, id, err := h.catalog.AddDesignPlan(c.Request.Context(), categoryID, service.PlanInput{
		Slug:             req.Slug,
		Name:             req.Name,
		Kind:             req.Kind,
		Price:            req.Price,
		MaxRevisions:     req.MaxRevisions,
		RevisionPrice:    req.RevisionPrice,
		HasQuestionnaire: req.HasQuestionnaire,
		HasTemplates:     req.HasTemplates,
		HasFileUpload:    req.HasFileUpload,
		SortOrder:        req.SortOrder,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusCreated, gin.H{"id": id, "version": snap.Version})
}

// AddSection handles POST /api/admin/catalog/plans/:id/sections.
func (h *CatalogHandler) AddSection(c *gin.Context) {
	planID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req dto.SectionRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	snap, id, err := h.catalog.AddQuestionSection(c.Request.Context(), planID, req.Title, req.SortOrder)
	if err != nil {
		_ = c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusCreated, gin.H{"id": id, "version": snap.Version})
}

// AddQuestion handles POST /api/admin/catalog/sections/:id/questions.
func (h *CatalogHandler) AddQuestion(c *gin.Context) {
	sectionID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req dto.QuestionRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	snap, id, err := h.catalog.AddQuestion(c.Request.Context(), sectionID, service.QuestionInput{
		Text:                req.Text,
		Kind:                req.Kind,
		IsRequired:          req.IsRequired,
		Placeholder:         req.Placeholder,
		HelpText:            req.HelpText,
		Rules:               req.Rules,
		DependsOnQuestionID: req.DependsOnQuestionID,
		DependsOnValues:     req.DependsOnValues,
		SortOrder:           req.SortOrder,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusCreated, gin.H{"id": id, "version": snap.Version})
}

// AddQuestionOption handles POST /api/admin/catalog/questions/:id/options.
func (h *CatalogHandler) AddQuestionOption(c *gin.Context) {
	questionID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req dto.QuestionOptionRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	snap, id, err := h.catalog.AddQuestionOption(c.Request.Context(), questionID, req.Value, req.Label, req.SortOrder)
	if err != nil {
		_ = c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusCreated, gin.H{"id": id, "version": snap.Version})
}

// AddTemplate handles POST /api/admin/catalog/plans/:id/templates.
func (h *CatalogHandler) AddTemplate(c *gin.Context) {
	planID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req dto.TemplateRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	snap, id, err := h.catalog.AddTemplate(c.Request.Context(), planID, service.TemplateInput{
		Name:         req.Name,
		PreviewPath:  req.PreviewPath,
		SourcePath:   req.SourcePath,
		SourceWidth:  req.SourceWidth,
		SourceHeight: req.SourceHeight,
		Placeholder:  req.Placeholder,
		StretchLogo:  req.StretchLogo,
		SortOrder:    req.SortOrder,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusCreated, gin.H{"id": id, "version": snap.Version})
}
