package cron

import (
	"context"
	"fmt"
	"time"
)

// horizonSyncer refreshes availability for the next n days.
type horizonSyncer interface {
	SyncHorizon(ctx context.Context, job string, days int) error
}

// AvailabilityJobParams configure one horizon refresh job.
type AvailabilityJobParams struct {
	Name     string
	Days     int
	Interval time.Duration
	Planner  horizonSyncer
}

// NewAvailabilityJob builds a job that refreshes one sync horizon on its
// own cadence.
func NewAvailabilityJob(params AvailabilityJobParams) (Job, error) {
	if params.Name == "" {
		return nil, fmt.Errorf("job name required")
	}
	if params.Days <= 0 {
		return nil, fmt.Errorf("horizon days must be positive")
	}
	if params.Interval <= 0 {
		return nil, fmt.Errorf("interval must be positive")
	}
	if params.Planner == nil {
		return nil, fmt.Errorf("planner required")
	}
	return &availabilityJob{
		name:     params.Name,
		days:     params.Days,
		interval: params.Interval,
		planner:  params.Planner,
	}, nil
}

type availabilityJob struct {
	name     string
	days     int
	interval time.Duration
	planner  horizonSyncer
}

func (j *availabilityJob) Name() string { return j.name }

func (j *availabilityJob) Interval() time.Duration { return j.interval }

func (j *availabilityJob) Run(ctx context.Context) error {
	return j.planner.SyncHorizon(ctx, j.name, j.days)
}
