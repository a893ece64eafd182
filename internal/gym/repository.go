package gym

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/patel-jhanvi/amrap-gym/internal/db"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateGym(ctx context.Context, req GymRequest) (*Gym, error) {
	query := `
		INSERT INTO gyms (id, name, type, location, max_capacity)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, type, location, max_capacity, created_at
	`

	var gym Gym
	err := r.db.GetContext(ctx, &gym, query, uuid.NewString(), req.Name, req.Type, req.Location, req.MaxCapacity)
	if err != nil {
		return nil, err
	}

	return &gym, nil
}

func (r *repository) GetAllGyms(ctx context.Context, search string) ([]Gym, error) {
	query := `
		SELECT id, name, type, location, max_capacity, created_at
		FROM gyms
		WHERE name ILIKE $1
		ORDER BY created_at ASC, id ASC
	`

	gyms := []Gym{}
	err := r.db.SelectContext(ctx, &gyms, query, db.LikePattern(search))
	if err != nil {
		return nil, err
	}

	return gyms, nil
}

func (r *repository) GetGymByID(ctx context.Context, id string) (*Gym, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrGymNotFound
	}

	query := `
		SELECT id, name, type, location, max_capacity, created_at
		FROM gyms
		WHERE id = $1
	`

	var gym Gym
	err := r.db.GetContext(ctx, &gym, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGymNotFound
	}
	if err != nil {
		return nil, err
	}

	return &gym, nil
}

func (r *repository) UpdateGym(ctx context.Context, id string, req GymRequest) (*Gym, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrGymNotFound
	}

	query := `
		UPDATE gyms
		SET name = $2, type = $3, location = $4, max_capacity = $5
		WHERE id = $1
		RETURNING id, name, type, location, max_capacity, created_at
	`

	var gym Gym
	err := r.db.GetContext(ctx, &gym, query, id, req.Name, req.Type, req.Location, req.MaxCapacity)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGymNotFound
	}
	if err != nil {
		return nil, err
	}

	return &gym, nil
}

func (r *repository) DeleteGym(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrGymNotFound
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM gyms WHERE id = $1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return ErrGymHasMembers
		}
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrGymNotFound
	}

	return nil
}
