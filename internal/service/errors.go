package service

import (
	"errors"

	"socialfeed/internal/models"
	"socialfeed/internal/repository"
)

// storageError maps repository failures to AppErrors. Vanished rows become
// NOT_FOUND; anything else is an opaque internal error.
func storageError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	var missing *repository.MissingError
	if errors.As(err, &missing) {
		return models.NewNotFoundError(missing.Resource, missing.ID)
	}
	return models.NewInternalError(err)
}
