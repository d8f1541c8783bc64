package task

import (
	"context"

	"github.com/MarwanIssa100/SparkUp/internal/config"
	"github.com/MarwanIssa100/SparkUp/internal/state"
	"github.com/go-co-op/gocron/v2"
)

// ReconcileSweepJob takes over optimistic commands whose confirmation
// signal never arrived, so a dropped receipt cannot leave the snapshot
// silently diverged.
type ReconcileSweepJob struct {
	commander *state.Commander
	config    *config.Config
}

// NewReconcileSweepJob creates the stale command sweep task
func NewReconcileSweepJob(commander *state.Commander, cfg *config.Config) *ReconcileSweepJob {
	return &ReconcileSweepJob{
		commander: commander,
		config:    cfg,
	}
}

// GetName task name
func (j *ReconcileSweepJob) GetName() string {
	return "reconcile_sweep"
}

// GetSchedule schedule definition
func (j *ReconcileSweepJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(j.config.Policy.ReconcileTimeout / 2)
}

// Execute sweeps the pending command if it outlived the reconcile window.
func (j *ReconcileSweepJob) Execute() {
	j.commander.SweepStale(context.Background())
}
