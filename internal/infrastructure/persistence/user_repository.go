package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/certibase/backend/internal/domain/models"
	"github.com/certibase/backend/pkg/constants"
	"github.com/certibase/backend/pkg/utils"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// UserWithPassword extends User with the password hash for auth checks.
type UserWithPassword struct {
	*models.User
	PasswordHash string
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE %s = ?)", constants.TableUser, constants.FieldEmail)
	err := r.db.QueryRowContext(ctx, query, email).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *UserRepository) Insert(ctx context.Context, u *models.User, passwordHash string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, email, name, password, role, is_active, created_date, last_modified_date)
		VALUES (?, ?, ?, ?, ?, ?, NOW(), NOW())`,
		constants.TableUser)

	_, err := r.db.ExecContext(ctx, query, u.ID, u.Email, u.Name, passwordHash, u.Role, u.IsActive)
	return err
}

// FindByEmailWithPassword retrieves a user and their password hash by email
func (r *UserRepository) FindByEmailWithPassword(ctx context.Context, email string) (*UserWithPassword, error) {
	query := fmt.Sprintf(`
		SELECT id, email, name, password, role, is_active
		FROM %s
		WHERE email = ? LIMIT 1`,
		constants.TableUser)

	var u UserWithPassword
	var user models.User
	u.User = &user

	var password sql.NullString

	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&password,
		&user.Role,
		&user.IsActive,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if password.Valid {
		u.PasswordHash = password.String
	}
	return &u, nil
}

// FindByIDWithPassword retrieves a user and their password hash by ID
func (r *UserRepository) FindByIDWithPassword(ctx context.Context, userID string) (*UserWithPassword, error) {
	query := fmt.Sprintf(`
		SELECT id, password
		FROM %s
		WHERE id = ? LIMIT 1`,
		constants.TableUser)

	var u UserWithPassword
	var user models.User
	u.User = &user
	var password sql.NullString

	err := r.db.QueryRowContext(ctx, query, userID).Scan(&user.ID, &password)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if password.Valid {
		u.PasswordHash = password.String
	}
	return &u, nil
}

// GetByID fetches basic user info
func (r *UserRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	query := fmt.Sprintf(`
		SELECT id, email, name, role, is_active, created_date, last_login
		FROM %s
		WHERE id = ? LIMIT 1`,
		constants.TableUser)

	return r.scanOne(r.db.QueryRowContext(ctx, query, userID))
}

// FindAll retrieves all users, newest first
func (r *UserRepository) FindAll(ctx context.Context) ([]*models.User, error) {
	query := fmt.Sprintf(`
		SELECT id, email, name, role, is_active, created_date, last_login
		FROM %s
		ORDER BY %s DESC`,
		constants.TableUser, constants.FieldCreatedDate)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		var u models.User
		var createdRaw, lastLoginRaw []byte

		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.IsActive, &createdRaw, &lastLoginRaw); err != nil {
			continue
		}

		u.CreatedAt = utils.ParseDBTime(createdRaw)
		u.LastLogin = utils.ParseDBTimePtr(lastLoginRaw)
		users = append(users, &u)
	}
	return users, rows.Err()
}

func (r *UserRepository) scanOne(row *sql.Row) (*models.User, error) {
	var u models.User
	var createdRaw, lastLoginRaw []byte

	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.IsActive, &createdRaw, &lastLoginRaw)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	u.CreatedAt = utils.ParseDBTime(createdRaw)
	u.LastLogin = utils.ParseDBTimePtr(lastLoginRaw)
	return &u, nil
}

// Update writes the mutable profile fields
func (r *UserRepository) Update(ctx context.Context, u *models.User) error {
	query := fmt.Sprintf(`
		UPDATE %s SET email = ?, name = ?, role = ?, is_active = ?, last_modified_date = NOW()
		WHERE id = ?`,
		constants.TableUser)

	_, err := r.db.ExecContext(ctx, query, u.Email, u.Name, u.Role, u.IsActive, u.ID)
	return err
}

// UpdatePassword updates the user's password hash
func (r *UserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	query := fmt.Sprintf("UPDATE %s SET password = ?, last_modified_date = NOW() WHERE id = ?", constants.TableUser)
	_, err := r.db.ExecContext(ctx, query, passwordHash, userID)
	return err
}

// TouchLastLogin stamps a successful login
func (r *UserRepository) TouchLastLogin(ctx context.Context, userID string) error {
	query := fmt.Sprintf("UPDATE %s SET last_login = NOW() WHERE id = ?", constants.TableUser)
	_, err := r.db.ExecContext(ctx, query, userID)
	return err
}
