package task

import (
	"github.com/MarwanIssa100/SparkUp/internal/config"
	"github.com/MarwanIssa100/SparkUp/internal/ledger"
	"github.com/MarwanIssa100/SparkUp/internal/logger"
	"github.com/MarwanIssa100/SparkUp/internal/state"
	"github.com/go-co-op/gocron/v2"
)

// Job is one scheduled unit of background work.
type Job interface {
	GetName() string
	GetSchedule() gocron.JobDefinition
	Execute()
}

// TaskManager owns the background scheduler.
type TaskManager struct {
	scheduler gocron.Scheduler
	jobs      []Job
}

// NewTaskManager creates the manager with the gateway's two jobs.
func NewTaskManager(reader *ledger.Reader, store *state.Store, commander *state.Commander, cfg *config.Config) *TaskManager {
	s, err := gocron.NewScheduler()
	if err != nil {
		logger.Fatal("Failed to create scheduler: %v", err)
	}

	return &TaskManager{
		scheduler: s,
		jobs: []Job{
			NewRefreshJob(reader, store, cfg),
			NewReconcileSweepJob(commander, cfg),
		},
	}
}

// Start registers the jobs and starts the scheduler.
func Start(reader *ledger.Reader, store *state.Store, commander *state.Commander, cfg *config.Config) *TaskManager {
	manager := NewTaskManager(reader, store, commander, cfg)
	manager.RegisterJobs()
	manager.scheduler.Start()

	logger.Info("Task manager started successfully")
	return manager
}

// RegisterJobs registers every job in singleton mode so a slow run never
// overlaps the next one.
func (m *TaskManager) RegisterJobs() {
	for _, job := range m.jobs {
		_, err := m.scheduler.NewJob(
			job.GetSchedule(),
			gocron.NewTask(job.Execute),
			gocron.WithName(job.GetName()),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			logger.Error("Failed to register job %s: %v", job.GetName(), err)
		}
	}
}

// Stop shuts the scheduler down.
func (m *TaskManager) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		logger.Error("Failed to shutdown scheduler: %v", err)
	}
	logger.Info("Task manager stopped")
}
