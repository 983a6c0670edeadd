package repository

import (
	"fmt"

	"github.com/akotov/loan-service/internal/models"
)

// CreateUser creates a new user in the database
func (r *Repository) CreateUser(user *models.User) error {
	query := `
		INSERT INTO loan.users (name, email, password_hash, role, credit_score, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := r.db.QueryRow(query, user.Name, user.Email, user.PasswordHash, user.Role, user.CreditScore, user.Active).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUserByEmail retrieves a user by email
func (r *Repository) FindUserByEmail(email string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, name, email, password_hash, role, credit_score, active, created_at
		FROM loan.users
		WHERE email = $1`
	err := r.db.QueryRow(query, email).
		Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.CreditScore, &user.Active, &user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", noRows(err))
	}
	return user, nil
}

// FindUserByID retrieves a user by id
func (r *Repository) FindUserByID(id int64) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, name, email, password_hash, role, credit_score, active, created_at
		FROM loan.users
		WHERE id = $1`
	err := r.db.QueryRow(query, id).
		Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.CreditScore, &user.Active, &user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", noRows(err))
	}
	return user, nil
}

// FindAvailableManager picks an active manager to review an application.
// The manager with the fewest pending assignments goes first.
func (r *Repository) FindAvailableManager() (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT u.id, u.name, u.email, u.password_hash, u.role, u.credit_score, u.active, u.created_at
		FROM loan.users u
		LEFT JOIN loan.applications a ON a.assigned_to = u.id AND a.status = 'PENDING'
		WHERE u.role = 'manager' AND u.active
		GROUP BY u.id
		ORDER BY COUNT(a.id) ASC, u.id ASC
		LIMIT 1`
	err := r.db.QueryRow(query).
		Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.CreditScore, &user.Active, &user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to find available manager: %w", noRows(err))
	}
	return user, nil
}
