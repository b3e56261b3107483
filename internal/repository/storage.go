package repository

import (
	"QRLink-Backend/internal/domain"
	"context"
	"errors"
	"time"
)

var (
	ErrCodeNotFound = errors.New("short code not found")
	ErrCodeExists   = errors.New("short code already exists")
)

// LinkUpdates описывает частичное обновление ссылки. nil-поля не меняются.
type LinkUpdates struct {
	DestinationURL *string
	IsActive       *bool
	ExpiresAt      *time.Time
	ClearExpiresAt bool
	MaxScans       *int64
}

type Storage interface {
	// Link methods
	FindByShortCode(ctx context.Context, code string) (*domain.ShortLink, error)
	Create(ctx context.Context, link *domain.ShortLink) error
	UpdateLink(ctx context.Context, code string, updates LinkUpdates) (*domain.ShortLink, error)
	Delete(ctx context.Context, code string) error
	ExistsByShortCode(ctx context.Context, code string) (bool, error)

	// Scan tracking methods
	IncrementScan(ctx context.Context, linkID int64) error
	InsertScanEvent(ctx context.Context, event *domain.ScanEvent) error

	// Aggregate stats for the observability endpoint
	GetAggregateStats(ctx context.Context) (*domain.AggregateStats, error)
}
