package dto

import (
	"time"

	"github.com/spec-kit/service-desk/internal/domain"
)

// CreateCategoryRequest payload.
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// CreatePriorityRequest payload.
type CreatePriorityRequest struct {
	Name  string `json:"name" validate:"required"`
	Level int    `json:"level" validate:"required,min=1"`
	Color string `json:"color"`
}

// CreateStatusRequest payload.
type CreateStatusRequest struct {
	Name         string              `json:"name" validate:"required"`
	SortOrder    int                 `json:"sort_order"`
	Color        string              `json:"color"`
	IsClosed     bool                `json:"is_closed"`
	SemanticRole domain.SemanticRole `json:"semantic_role"`
}

// CategoryResponse response.
type CategoryResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"created_at"`
}

// PriorityResponse response.
type PriorityResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Level     int       `json:"level"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

// StatusResponse response.
type StatusResponse struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	SortOrder    int                 `json:"sort_order"`
	Color        string              `json:"color"`
	IsClosed     bool                `json:"is_closed"`
	SemanticRole domain.SemanticRole `json:"semantic_role"`
	CreatedAt    time.Time           `json:"created_at"`
}
