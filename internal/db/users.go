package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/Danilov210/Trip-Planner/internal/models"
)

func (d *DB) CreateUser(ctx context.Context, user models.User) error {
	_, err := d.pool.Exec(ctx,
		`INSERT INTO users (user_id, username, password_hash) VALUES ($1, $2, $3)`,
		user.UserID, user.Username, user.PasswordHash,
	)
	return err
}

func (d *DB) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	row := d.pool.QueryRow(ctx,
		`SELECT user_id, username, password_hash FROM users WHERE username = $1`, username,
	)
	err := row.Scan(&user.UserID, &user.Username, &user.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	return user, err
}
