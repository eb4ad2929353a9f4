package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AmbitionsXXXV/doc-editor/internal/domain/entities"
	"github.com/AmbitionsXXXV/doc-editor/internal/domain/services"
	"github.com/AmbitionsXXXV/doc-editor/internal/interfaces/dto"
)

type DocumentHandler struct {
	documentSvc *services.DocumentService
}

func NewDocumentHandler(documentSvc *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentSvc: documentSvc}
}

// currentUserID returns the authenticated user's id, or "" for anonymous
// requests that came through the optional-auth middleware.
func currentUserID(c *gin.Context) string {
	value, ok := c.Get(userKey)
	if !ok {
		return ""
	}
	user, ok := value.(*entities.User)
	if !ok {
		return ""
	}
	return user.ID
}

func (h *DocumentHandler) Create(c *gin.Context) {
	var req dto.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	doc, err := h.documentSvc.Create(c.Request.Context(), currentUserID(c), req.Title, req.Content, req.IsPublic)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, doc)
}

func (h *DocumentHandler) List(c *gin.Context) {
	var req dto.ListDocumentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.documentSvc.List(c.Request.Context(), currentUserID(c), req.Page, req.PageSize)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *DocumentHandler) GetByID(c *gin.Context) {
	doc, err := h.documentSvc.Fetch(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

func (h *DocumentHandler) Update(c *gin.Context) {
	var req dto.UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	upd := entities.DocumentUpdate{
		Title:    req.Title,
		Content:  req.Content,
		IsPublic: req.IsPublic,
	}

	doc, err := h.documentSvc.Update(c.Request.Context(), c.Param("id"), currentUserID(c), upd)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	if err := h.documentSvc.Delete(c.Request.Context(), c.Param("id"), currentUserID(c)); err != nil {
		handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *DocumentHandler) Share(c *gin.Context) {
	var req dto.ShareDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	grant, err := h.documentSvc.Share(
		c.Request.Context(),
		c.Param("id"),
		req.UserID,
		entities.PermissionLevel(req.PermissionLevel),
		currentUserID(c),
	)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, grant)
}

func (h *DocumentHandler) ListPermissions(c *gin.Context) {
	grants, err := h.documentSvc.ListGrants(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PermissionListResponse{Permissions: grants})
}

func (h *DocumentHandler) UpdatePermission(c *gin.Context) {
	var req dto.UpdatePermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	grant, err := h.documentSvc.UpdateGrant(
		c.Request.Context(),
		c.Param("id"),
		entities.PermissionLevel(req.PermissionLevel),
		currentUserID(c),
	)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, grant)
}

func (h *DocumentHandler) RevokePermission(c *gin.Context) {
	if err := h.documentSvc.RevokeGrant(c.Request.Context(), c.Param("id"), currentUserID(c)); err != nil {
		handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
