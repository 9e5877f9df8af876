package service

import (
	"context"
	"strings"

	"github.com/spec-kit/service-desk/internal/domain"
	"github.com/spec-kit/service-desk/internal/repository"
	apperrors "github.com/spec-kit/service-desk/pkg/util"
)

// ReferenceService manages the fixed enumerations tickets classify against.
// Deleting a row that tickets still reference fails; the rows are shared,
// not owned by any ticket.
type ReferenceService struct {
	categories repository.CategoryRepository
	priorities repository.PriorityRepository
	statuses   repository.StatusRepository
}

// ReferenceDependencies bundles repositories for reference data.
type ReferenceDependencies struct {
	CategoryRepo repository.CategoryRepository
	PriorityRepo repository.PriorityRepository
	StatusRepo   repository.StatusRepository
}

// NewReferenceService constructs the service.
func NewReferenceService(deps ReferenceDependencies) *ReferenceService {
	return &ReferenceService{
		categories: deps.CategoryRepo,
		priorities: deps.PriorityRepo,
		statuses:   deps.StatusRepo,
	}
}

// CreateCategory adds a category; names are unique.
func (s *ReferenceService) CreateCategory(ctx context.Context, name, description, color string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	category := &domain.Category{
		Name:        name,
		Description: strings.TrimSpace(description),
		Color:       color,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, mapRepoError(err, "category")
	}
	return category, nil
}

// ListCategories returns all categories ordered by name.
func (s *ReferenceService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, mapRepoError(err, "category")
	}
	return categories, nil
}

// DeleteCategory removes a category unless tickets reference it.
func (s *ReferenceService) DeleteCategory(ctx context.Context, id string) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		return mapRepoError(err, "category")
	}
	return nil
}

// CreatePriority adds a priority level; names are unique.
func (s *ReferenceService) CreatePriority(ctx context.Context, name string, level int, color string) (*domain.Priority, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	if level < 1 {
		return nil, apperrors.NewValidationError("level must be positive", map[string]any{"level": level})
	}
	priority := &domain.Priority{
		Name:  name,
		Level: level,
		Color: color,
	}
	if err := s.priorities.Create(ctx, priority); err != nil {
		return nil, mapRepoError(err, "priority")
	}
	return priority, nil
}

// ListPriorities returns all priorities ordered by level.
func (s *ReferenceService) ListPriorities(ctx context.Context) ([]domain.Priority, error) {
	priorities, err := s.priorities.List(ctx)
	if err != nil {
		return nil, mapRepoError(err, "priority")
	}
	return priorities, nil
}

// DeletePriority removes a priority unless tickets reference it.
func (s *ReferenceService) DeletePriority(ctx context.Context, id string) error {
	if err := s.priorities.Delete(ctx, id); err != nil {
		return mapRepoError(err, "priority")
	}
	return nil
}

// CreateStatus adds a workflow status; names are unique.
func (s *ReferenceService) CreateStatus(ctx context.Context, name string, sortOrder int, color string, isClosed bool, role domain.SemanticRole) (*domain.Status, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	switch role {
	case domain.RoleNone, domain.RoleResolved, domain.RoleClosed:
	case "":
		role = domain.RoleNone
	default:
		return nil, apperrors.NewValidationError("unknown semantic role", map[string]any{"semantic_role": role})
	}
	status := &domain.Status{
		Name:         name,
		SortOrder:    sortOrder,
		Color:        color,
		IsClosed:     isClosed,
		SemanticRole: role,
	}
	if err := s.statuses.Create(ctx, status); err != nil {
		return nil, mapRepoError(err, "status")
	}
	return status, nil
}

// ListStatuses returns all statuses in display order.
func (s *ReferenceService) ListStatuses(ctx context.Context) ([]domain.Status, error) {
	statuses, err := s.statuses.List(ctx)
	if err != nil {
		return nil, mapRepoError(err, "status")
	}
	return statuses, nil
}

// DeleteStatus removes a status unless tickets reference it.
func (s *ReferenceService) DeleteStatus(ctx context.Context, id string) error {
	if err := s.statuses.Delete(ctx, id); err != nil {
		return mapRepoError(err, "status")
	}
	return nil
}
