package db

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Project struct {
	ID        string
	Name      string
	OwnerID   string
	Fps       int32
	Width     int32
	Height    int32
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

type Snapshot struct {
	ID        string
	ProjectID string
	Version   int32
	Document  []byte
	CreatedAt pgtype.Timestamptz
}
