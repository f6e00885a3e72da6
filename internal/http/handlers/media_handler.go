package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mahdiyarhamdi/sheetaro/internal/dto"
	"github.com/mahdiyarhamdi/sheetaro/internal/http/handlers/common"
	"github.com/mahdiyarhamdi/sheetaro/internal/pkg/apperror"
	"github.com/mahdiyarhamdi/sheetaro/internal/service"
	"github.com/mahdiyarhamdi/sheetaro/internal/storage"
)

// MediaHandler accepts multipart uploads (logos, design files, receipts),
// returns the stored path for later reference in order and payment
// requests, and renders composite previews of gallery templates.
type MediaHandler struct {
	files     *storage.FileStorage
	catalog   *service.CatalogService
	templates *service.TemplateService
}

// NewMediaHandler creates a new handler.
func NewMediaHandler(files *storage.FileStorage, catalog *service.CatalogService, templates *service.TemplateService) *MediaHandler {
	return &MediaHandler{files: files, catalog: catalog, templates: templates}
}

// Upload handles POST /api/media/:kind.
func (h *MediaHandler) Upload(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondError(c, http.StatusUnauthorized, "authorization required")
		return
	}

	kind := storage.Kind(c.Param("kind"))
	switch kind {
	case storage.KindLogo, storage.KindDesign, storage.KindReceipt, storage.KindAnswer:
	default:
		common.RespondError(c, http.StatusBadRequest, "unknown upload kind")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "a file field is required")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		_ = c.Error(err)
		return
	}
	defer f.Close()

	path, size, err := h.files.Save(c.Request.Context(), userID, kind, fileHeader.Filename, f)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusCreated, dto.UploadResponse{Path: path, Size: size})
}

// PreviewComposite handles POST /api/catalog/templates/:id/preview. The
// customer sees their logo placed on the template before committing to
// an order.
func (h *MediaHandler) PreviewComposite(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondError(c, http.StatusUnauthorized, "authorization required")
		return
	}

	templateID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req dto.CompositePreviewRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	// The logo must be one the caller uploaded themselves.
	if !strings.HasPrefix(req.LogoPath, string(storage.KindLogo)+"/"+userID.String()+"/") {
		_ = c.Error(apperror.New(apperror.ErrCodeNotFound, "logo not found"))
		return
	}

	snap, err := h.catalog.Latest(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	tpl, ok := snap.Template(templateID)
	if !ok {
		_ = c.Error(apperror.New(apperror.ErrCodeNotFound, "template not found"))
		return
	}

	path, err := h.templates.RenderComposite(c.Request.Context(), userID, tpl, req.LogoPath)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, gin.H{"path": path})
}
