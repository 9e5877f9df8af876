package service

import (
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/service-desk/internal/repository"
	apperrors "github.com/spec-kit/service-desk/pkg/util"
)

// mapRepoError translates storage-layer failures into the domain error
// taxonomy. Connectivity failures surface as STORAGE_UNAVAILABLE so callers
// can tell a dead backend from a bad request.
func mapRepoError(err error, resource string) error {
	if err == nil {
		return nil
	}
	switch {
	case repository.IsNotFound(err):
		return apperrors.NewNotFound(resource, nil)
	case repository.IsUniqueViolation(err):
		return apperrors.NewUniqueViolation(resource+" already exists", nil)
	case repository.IsForeignKeyViolation(err):
		return apperrors.NewConflict(resource+" is referenced by other rows", nil)
	case pgconn.SafeToRetry(err):
		return apperrors.NewStorageUnavailable(err)
	default:
		return apperrors.NewInternalError(err)
	}
}
