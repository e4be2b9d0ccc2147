package ports

import (
	"context"
	"municipal-tasks/internal/core/domain/entities"
)

// SessionSource reports the current authenticated identity. It is cheap and
// side-effect free, so the session gate may poll it repeatedly.
type SessionSource interface {
	Current(ctx context.Context) (*entities.Session, error)
}
