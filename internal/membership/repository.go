package membership

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/patel-jhanvi/amrap-gym/internal/db"
	"github.com/patel-jhanvi/amrap-gym/internal/gym"
	"github.com/patel-jhanvi/amrap-gym/internal/user"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func validIDs(userID, gymID string) error {
	if _, err := uuid.Parse(userID); err != nil {
		return user.ErrUserNotFound
	}
	if _, err := uuid.Parse(gymID); err != nil {
		return gym.ErrGymNotFound
	}
	return nil
}

func (r *repository) AddMembership(ctx context.Context, userID, gymID string) (*Membership, error) {
	if err := validIDs(userID, gymID); err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Row lock on the gym serializes concurrent adds so the count below
	// cannot go stale before the insert.
	var capacity sql.NullInt64
	err = tx.GetContext(ctx, &capacity, `SELECT max_capacity FROM gyms WHERE id = $1 FOR UPDATE`, gymID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, gym.ErrGymNotFound
	}
	if err != nil {
		return nil, err
	}

	userExists, err := db.Exists(ctx, tx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, userID)
	if err != nil {
		return nil, err
	}
	if !userExists {
		return nil, user.ErrUserNotFound
	}

	already, err := db.Exists(ctx, tx,
		`SELECT EXISTS(SELECT 1 FROM memberships WHERE user_id = $1 AND gym_id = $2)`, userID, gymID)
	if err != nil {
		return nil, err
	}
	if already {
		return nil, ErrAlreadyMember
	}

	if capacity.Valid {
		var count int64
		if err := tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM memberships WHERE gym_id = $1`, gymID); err != nil {
			return nil, err
		}
		if count >= capacity.Int64 {
			return nil, ErrGymFull
		}
	}

	var m Membership
	err = tx.GetContext(ctx, &m, `
		INSERT INTO memberships (user_id, gym_id)
		VALUES ($1, $2)
		RETURNING user_id, gym_id, join_date
	`, userID, gymID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrAlreadyMember
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit membership: %w", err)
	}

	return &m, nil
}

func (r *repository) RemoveMembership(ctx context.Context, userID, gymID string) error {
	if err := validIDs(userID, gymID); err != nil {
		return ErrMembershipNotFound
	}

	result, err := r.db.ExecContext(ctx,
		`DELETE FROM memberships WHERE user_id = $1 AND gym_id = $2`, userID, gymID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrMembershipNotFound
	}

	return nil
}

func (r *repository) GymsOfUser(ctx context.Context, userID string) ([]GymMembership, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, user.ErrUserNotFound
	}

	exists, err := db.Exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, user.ErrUserNotFound
	}

	query := `
		SELECT g.id, g.name, g.type, g.location, g.max_capacity, g.created_at, m.join_date
		FROM memberships m
		JOIN gyms g ON g.id = m.gym_id
		WHERE m.user_id = $1
		ORDER BY m.join_date ASC, g.id ASC
	`

	gyms := []GymMembership{}
	if err := r.db.SelectContext(ctx, &gyms, query, userID); err != nil {
		return nil, err
	}

	return gyms, nil
}

func (r *repository) MembersOfGym(ctx context.Context, gymID string) ([]UserMembership, error) {
	if _, err := uuid.Parse(gymID); err != nil {
		return nil, gym.ErrGymNotFound
	}

	exists, err := db.Exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM gyms WHERE id = $1)`, gymID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, gym.ErrGymNotFound
	}

	query := `
		SELECT u.id, u.name, u.email, to_char(u.date_of_birth, 'YYYY-MM-DD') AS date_of_birth,
		       u.fitness_goal, u.created_at, m.join_date, g.name AS gym_name
		FROM memberships m
		JOIN users u ON u.id = m.user_id
		JOIN gyms g ON g.id = m.gym_id
		WHERE m.gym_id = $1
		ORDER BY m.join_date ASC, u.id ASC
	`

	members := []UserMembership{}
	if err := r.db.SelectContext(ctx, &members, query, gymID); err != nil {
		return nil, err
	}

	return members, nil
}
