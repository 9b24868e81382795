package repository

import (
	"context"
	"database/sql"
	"time"

	"windhager_gateway/internal/models"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.User, error)
}

// CommandRepo is the append-only audit log of device write commands.
type CommandRepo interface {
	Append(ctx context.Context, e models.CommandEvent) error
	List(ctx context.Context, from, to time.Time, result string) ([]models.CommandEvent, error)
}

type Repository struct {
	Auth     Authorization
	Commands CommandRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Auth:     NewUserRepository(db),
		Commands: NewCommandSQLite(db),
	}
}
