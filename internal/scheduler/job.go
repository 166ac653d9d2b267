package scheduler

import (
	"context"
)

// Job is a unit of periodic work
type Job interface {
	Name() string
	// Spec is a five field cron expression evaluated in the store timezone.
	Spec() string
	Enable() bool
	Do(ctx context.Context) error
}
