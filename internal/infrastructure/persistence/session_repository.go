package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/certibase/backend/internal/domain/models"
	"github.com/certibase/backend/pkg/constants"
	"github.com/certibase/backend/pkg/utils"
)

// SessionRepository handles database operations for user sessions
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Insert creates a new session row keyed by the token JTI
func (r *SessionRepository) Insert(ctx context.Context, s *models.Session) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, user_id, expires_at, is_revoked, last_activity, created_date)
		VALUES (?, ?, ?, ?, NOW(), NOW())`,
		constants.TableSession)

	_, err := r.db.ExecContext(ctx, query, s.ID, s.UserID, s.ExpiresAt, s.IsRevoked)
	return err
}

// Get retrieves a session by its ID (the JWT JTI claim)
func (r *SessionRepository) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, expires_at, is_revoked, last_activity, created_date
		FROM %s
		WHERE id = ? LIMIT 1`,
		constants.TableSession)

	var s models.Session
	var expiresRaw, lastActivityRaw, createdRaw []byte

	err := r.db.QueryRowContext(ctx, query, sessionID).Scan(
		&s.ID,
		&s.UserID,
		&expiresRaw,
		&s.IsRevoked,
		&lastActivityRaw,
		&createdRaw,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	s.ExpiresAt = utils.ParseDBTime(expiresRaw)
	s.LastActivity = utils.ParseDBTime(lastActivityRaw)
	s.CreatedAt = utils.ParseDBTime(createdRaw)
	return &s, nil
}

// IsRevoked reports the revocation flag for a session
func (r *SessionRepository) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	var revoked bool
	query := fmt.Sprintf("SELECT is_revoked FROM %s WHERE id = ? LIMIT 1", constants.TableSession)
	err := r.db.QueryRowContext(ctx, query, sessionID).Scan(&revoked)
	if err != nil {
		return false, err
	}
	return revoked, nil
}

// Revoke marks a session as revoked
func (r *SessionRepository) Revoke(ctx context.Context, sessionID string) error {
	query := fmt.Sprintf("UPDATE %s SET is_revoked = 1 WHERE id = ?", constants.TableSession)
	_, err := r.db.ExecContext(ctx, query, sessionID)
	return err
}

// RevokeAllForUser revokes every session of a user except the given one.
// Used after a password change.
func (r *SessionRepository) RevokeAllForUser(ctx context.Context, userID, keepSessionID string) error {
	query := fmt.Sprintf("UPDATE %s SET is_revoked = 1 WHERE user_id = ? AND id != ?", constants.TableSession)
	_, err := r.db.ExecContext(ctx, query, userID, keepSessionID)
	return err
}

// TouchActivity updates the last activity timestamp
func (r *SessionRepository) TouchActivity(ctx context.Context, sessionID string) error {
	query := fmt.Sprintf("UPDATE %s SET last_activity = NOW() WHERE id = ?", constants.TableSession)
	_, err := r.db.ExecContext(ctx, query, sessionID)
	return err
}
