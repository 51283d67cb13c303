package port

import (
	"context"
	"time"
)

// PageSweeper unmounts page instances that have been idle since before the deadline
type PageSweeper interface {
	Sweep(ctx context.Context, idleSince time.Time) int
}
