package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yourorg/bookingdesk/internal/domain"
)

// ErrUserNotFound is returned when no user record matches. Callers must not
// expose to clients whether a username exists.
var ErrUserNotFound = errors.New("user not found")

// PostgresUserRepository implements domain.UserRepository using PostgreSQL.
// The core only reads users; writes happen through the seed tooling.
type PostgresUserRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresUserRepository creates a new user repository
func NewPostgresUserRepository(db *sql.DB, logger *slog.Logger) *PostgresUserRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresUserRepository{
		db:     db,
		logger: logger,
	}
}

// GetByUsername retrieves a user by username
func (r *PostgresUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	user := &domain.User{}

	query := `
		SELECT id, username, password_hash, role, disabled
		FROM users
		WHERE username = $1
	`

	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Role,
		&user.Disabled,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		r.logger.Error("failed to get user",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("get user: %w", err)
	}

	return user, nil
}

// UpsertUser inserts or updates a user record. Used only by the seed tooling,
// never by the request path.
func (r *PostgresUserRepository) UpsertUser(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (username, password_hash, role, disabled)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (username) DO UPDATE SET
			password_hash = EXCLUDED.password_hash,
			role = EXCLUDED.role,
			disabled = EXCLUDED.disabled
	`

	if _, err := r.db.ExecContext(ctx, query, user.Username, user.PasswordHash, user.Role, user.Disabled); err != nil {
		return fmt.Errorf("upsert user %s: %w", user.Username, err)
	}
	return nil
}
