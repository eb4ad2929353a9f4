package dto

import "github.com/AmbitionsXXXV/doc-editor/internal/domain/entities"

type CreateDocumentRequest struct {
	Title    string `json:"title" binding:"required"`
	Content  string `json:"content"`
	IsPublic bool   `json:"is_public"`
}

type UpdateDocumentRequest struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	IsPublic *bool   `json:"is_public"`
}

type ListDocumentsRequest struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

type ShareDocumentRequest struct {
	UserID          string `json:"user_id" binding:"required"`
	PermissionLevel string `json:"permission_level" binding:"required"`
}

type UpdatePermissionRequest struct {
	PermissionLevel string `json:"permission_level" binding:"required"`
}

type PermissionListResponse struct {
	Permissions []*entities.PermissionGrant `json:"permissions"`
}
