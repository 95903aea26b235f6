package task

import (
	"github.com/go-co-op/gocron/v2"

	"github.com/hippocampus-web3/thorchain-indexer/internal/logger"
)

// Job is a periodic task the manager schedules.
type Job interface {
	GetName() string
	GetSchedule() gocron.JobDefinition
	Execute()
}

// Manager owns the gocron scheduler and the registered jobs.
type Manager struct {
	scheduler gocron.Scheduler
}

func NewManager() (*Manager, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &Manager{scheduler: s}, nil
}

// Register schedules a job. Singleton reschedule mode guarantees a job
// never overlaps itself: the next run waits for the previous to finish.
func (m *Manager) Register(job Job) {
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

// Start launches the scheduler.
func (m *Manager) Start() {
	m.scheduler.Start()
	logger.Info("Task manager started successfully")
}

// Stop shuts the scheduler down, waiting for in-flight runs so cursor and
// idempotence invariants hold across restarts.
func (m *Manager) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		logger.Error("Failed to shutdown scheduler: %v", err)
	}
	logger.Info("Task manager stopped")
}
