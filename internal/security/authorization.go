package security

import (
	"errors"
	"log/slog"

	"github.com/yourorg/bookingdesk/internal/domain"
)

// ErrForbidden is returned when an authenticated caller lacks the role for an
// operation. Never conflated with an authentication failure.
var ErrForbidden = errors.New("insufficient permissions")

// Operation is a booking-request operation subject to authorization
type Operation string

const (
	OpSubmit Operation = "submit"
	OpList   Operation = "list"
	OpAccept Operation = "accept"
	OpReject Operation = "reject"
	OpDelete Operation = "delete"
)

// RolePermissions maps roles to the operations they may perform. Closed set;
// disabled accounts are rejected by the bearer middleware before this table is
// ever consulted.
var RolePermissions = map[domain.Role][]Operation{
	domain.RoleAdmin: {
		OpSubmit,
		OpList,
		OpAccept,
		OpReject,
		OpDelete,
	},
	domain.RoleRequester: {
		OpSubmit,
	},
}

// AuthorizationService decides whether a role may perform an operation. Pure
// decision function, no I/O.
type AuthorizationService struct {
	logger *slog.Logger
}

// NewAuthorizationService creates a new authorization service
func NewAuthorizationService(logger *slog.Logger) *AuthorizationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthorizationService{
		logger: logger,
	}
}

// Authorize reports whether a role may perform an operation
func (as *AuthorizationService) Authorize(role domain.Role, op Operation) bool {
	ops, exists := RolePermissions[role]
	if !exists {
		return false
	}
	for _, o := range ops {
		if o == op {
			return true
		}
	}
	return false
}

// ValidateOperation returns ErrForbidden when the role may not perform the
// operation.
func (as *AuthorizationService) ValidateOperation(role domain.Role, op Operation) error {
	if !as.Authorize(role, op) {
		as.logger.Warn("operation denied",
			slog.String("role", string(role)),
			slog.String("operation", string(op)),
		)
		return ErrForbidden
	}
	return nil
}
