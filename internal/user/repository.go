package user

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/patel-jhanvi/amrap-gym/internal/db"
)

const userColumns = `id, name, email, to_char(date_of_birth, 'YYYY-MM-DD') AS date_of_birth, fitness_goal, created_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateUser(ctx context.Context, req UserRequest) (*User, error) {
	query := `
		INSERT INTO users (id, name, email, date_of_birth, fitness_goal)
		VALUES ($1, $2, $3, $4::date, $5)
		RETURNING ` + userColumns

	var user User
	err := r.db.GetContext(ctx, &user, query, uuid.NewString(), req.Name, req.Email, req.DateOfBirth, req.FitnessGoal)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	return &user, nil
}

func (r *repository) GetAllUsers(ctx context.Context, search string) ([]User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE name ILIKE $1 OR email ILIKE $1
		ORDER BY created_at ASC, id ASC
	`

	users := []User{}
	if err := r.db.SelectContext(ctx, &users, query, db.LikePattern(search)); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *repository) GetUserByID(ctx context.Context, id string) (*User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrUserNotFound
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var user User
	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *repository) UpdateUser(ctx context.Context, id string, req UserRequest) (*User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrUserNotFound
	}

	query := `
		UPDATE users
		SET name = $2, email = $3, date_of_birth = $4::date, fitness_goal = $5
		WHERE id = $1
		RETURNING ` + userColumns

	var user User
	err := r.db.GetContext(ctx, &user, query, id, req.Name, req.Email, req.DateOfBirth, req.FitnessGoal)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrUserNotFound
	case db.IsUniqueViolation(err):
		return nil, ErrEmailExists
	case err != nil:
		return nil, err
	}

	return &user, nil
}

func (r *repository) DeleteUser(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrUserNotFound
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return ErrUserHasMemberships
		}
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (r *repository) EmailExists(ctx context.Context, email, excludeID string) (bool, error) {
	if excludeID == "" {
		return db.Exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))`, email)
	}
	return db.Exists(ctx, r.db,
		`SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(email) = LOWER($1) AND id::text <> $2)`,
		email, excludeID)
}
