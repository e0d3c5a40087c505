package location

import (
	"context"
	"sync"
	"time"

	"github.com/kass/go-city-map/pkg/models"
)

// CachedPositioner remembers the last fix of the wrapped positioner and
// serves it again while it is younger than the request's MaxCacheAge.
type CachedPositioner struct {
	next Positioner
	now  func() time.Time

	mu      sync.Mutex
	last    models.Coordinate
	fixedAt time.Time
}

// NewCachedPositioner wraps next with a last-known-position cache
func NewCachedPositioner(next Positioner) *CachedPositioner {
	return &CachedPositioner{next: next, now: time.Now}
}

func (c *CachedPositioner) CurrentPosition(ctx context.Context, opts Options) (models.Coordinate, error) {
	c.mu.Lock()
	if !c.fixedAt.IsZero() && opts.MaxCacheAge > 0 && c.now().Sub(c.fixedAt) < opts.MaxCacheAge {
		last := c.last
		c.mu.Unlock()
		return last, nil
	}
	c.mu.Unlock()

	coord, err := c.next.CurrentPosition(ctx, opts)
	if err != nil {
		return models.Coordinate{}, err
	}

	c.mu.Lock()
	c.last = coord
	c.fixedAt = c.now()
	c.mu.Unlock()
	return coord, nil
}
