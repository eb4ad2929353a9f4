package entities

import "time"

type Document struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	OwnerID   string    `json:"owner_id"`
	IsPublic  bool      `json:"is_public"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DocumentUpdate carries a partial update; nil fields keep their current value.
type DocumentUpdate struct {
	Title    *string
	Content  *string
	IsPublic *bool
}

func (u DocumentUpdate) Empty() bool {
	return u.Title == nil && u.Content == nil && u.IsPublic == nil
}

type DocumentPage struct {
	Documents []*Document `json:"documents"`
	Total     int64       `json:"total"`
	Page      int         `json:"page"`
	PageSize  int         `json:"page_size"`
}
