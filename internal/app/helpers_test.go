package app

import (
	"errors"

	"github.com/Omartinezpaz/sistema-sorteo-sub001/internal/domain"
)

func asStateError(err error, target **domain.StateError) bool {
	return errors.As(err, target)
}
