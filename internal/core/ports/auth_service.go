package ports

import (
	"context"

	"github.com/opendatahub/dataset-api/internal/core/domain"
)

// AuthService implements registration and login use cases.
type AuthService interface {
	Register(ctx context.Context, name, email, password, role string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}
