package repository

import (
	"database/sql"
	"time"

	"github.com/kohi-academy/training-portal/backend/internal/config"
)

type Repository struct {
	cfg    *config.Config
	dbpool *sql.DB
	loc    *time.Location
}

func NewRepository(cfg *config.Config, dbpool *sql.DB, loc *time.Location) *Repository {
	return &Repository{
		cfg:    cfg,
		dbpool: dbpool,
		loc:    loc,
	}
}
