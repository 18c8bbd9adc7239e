package service

import (
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/tnqbao/gau-inventory-service/repository"
	"github.com/tnqbao/gau-inventory-service/utils"
)

// referenced fails with INVALID_INPUT when id is set but points nowhere.
func referenced[T any](field string, id *uuid.UUID, find func(uuid.UUID) (*T, error)) error {
	if id == nil {
		return nil
	}
	if _, err := find(*id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return utils.NewValidationError(field, "references a missing record")
		}
		return err
	}
	return nil
}

type dependent struct {
	name  string
	count func(uuid.UUID) (int64, error)
}

// ensureUnused fails with IN_USE on the first dependent collection that still has rows.
func ensureUnused(entityName string, id uuid.UUID, deps ...dependent) error {
	for _, d := range deps {
		n, err := d.count(id)
		if err != nil {
			return err
		}
		if n > 0 {
			return utils.NewInUseError(entityName, d.name, n)
		}
	}
	return nil
}

func unique(exists bool, err error, message string) error {
	if err != nil {
		return err
	}
	if exists {
		return utils.NewConflictError(message)
	}
	return nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func trim(values ...*string) {
	for _, v := range values {
		*v = strings.TrimSpace(*v)
	}
}
