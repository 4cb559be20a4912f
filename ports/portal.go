package ports

import (
	"context"

	"salondesk/domain/portal"
)

// PortalScraper looks a salon up on the vendor web portal
type PortalScraper interface {
	Lookup(ctx context.Context, term string) (*portal.Table, error)
}
