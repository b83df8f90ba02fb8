package history

import (
	"context"
	"time"
)

// Record is one stored prediction.
type Record struct {
	ID          string    `json:"id"`
	Diagnosis   string    `json:"diagnosis"`
	Confidence  float64   `json:"confidence"`
	Urgency     string    `json:"urgency"`
	ImageSHA256 string    `json:"image_sha256"`
	CreatedAt   time.Time `json:"created_at"`
}

type Store interface {
	CreateSchema(ctx context.Context) error
	Save(ctx context.Context, record Record) error
	Get(ctx context.Context, id string) (*Record, error)
	// List returns at most limit records, newest first.
	List(ctx context.Context, limit int) ([]*Record, error)
	Close() error
}

type Config struct {
	Enabled          bool   `yaml:"enabled"`
	Type             string `yaml:"type"`
	ConnectionString string `yaml:"connectionString"`
}
