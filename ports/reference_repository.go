package ports

import (
	"context"

	"salondesk/domain/reference"
)

// ReferenceRepository stores cleaned reference lists
type ReferenceRepository interface {
	// ReplaceList swaps all entries of one list atomically
	ReplaceList(ctx context.Context, list string, entries []reference.Entry) error
	Lists(ctx context.Context) (map[string][]reference.Entry, error)
	RecordRun(ctx context.Context, run *reference.Run) error
	LatestRun(ctx context.Context) (*reference.Run, error)
}

// SalonRepository stores the salon master list
type SalonRepository interface {
	ReplaceAll(ctx context.Context, salons []reference.Salon) error
	GetByCID(ctx context.Context, cid string) (*reference.Salon, error)
	Search(ctx context.Context, term string, limit int) ([]reference.Salon, error)
	All(ctx context.Context) ([]reference.Salon, error)
}
