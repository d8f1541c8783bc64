package task

import (
	"context"

	"github.com/MarwanIssa100/SparkUp/internal/config"
	"github.com/MarwanIssa100/SparkUp/internal/ledger"
	"github.com/MarwanIssa100/SparkUp/internal/logger"
	"github.com/MarwanIssa100/SparkUp/internal/state"
	"github.com/go-co-op/gocron/v2"
)

// RefreshJob periodic full snapshot fetch
type RefreshJob struct {
	reader *ledger.Reader
	store  *state.Store
	config *config.Config
}

// NewRefreshJob creates the snapshot refresh task
func NewRefreshJob(reader *ledger.Reader, store *state.Store, cfg *config.Config) *RefreshJob {
	return &RefreshJob{
		reader: reader,
		store:  store,
		config: cfg,
	}
}

// GetName task name
func (j *RefreshJob) GetName() string {
	return "snapshot_refresh"
}

// GetSchedule schedule definition
func (j *RefreshJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(j.config.Policy.RefreshInterval)
}

// Execute runs one full snapshot fetch. Failures leave the previous
// snapshot rendered; only the error banner changes.
func (j *RefreshJob) Execute() {
	if err := j.reader.Refresh(context.Background(), j.store); err != nil {
		logger.Error("Periodic snapshot refresh failed: %v", err)
		return
	}
	logger.Debug("Periodic snapshot refresh done (%d ideas)", j.store.Len())
}
