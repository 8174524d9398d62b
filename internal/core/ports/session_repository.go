package ports

import (
	"context"

	"github.com/culturecart/accounts-api/internal/core/domain"
)

// SessionRepository persists the login/logout audit trail.
type SessionRepository interface {
	Insert(ctx context.Context, session *domain.Session) error
	// Recent returns the newest sessions first, joined with their owners.
	Recent(ctx context.Context, limit int) ([]domain.SessionView, error)
}

// SessionRecorder accepts audit entries after the auth outcome is decided.
// Record never fails the caller: write errors are logged and dropped by the
// implementation.
type SessionRecorder interface {
	Record(session domain.Session)
}
