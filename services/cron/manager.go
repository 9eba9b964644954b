package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sahilchouksey/admission-bridge/model"
	"github.com/sahilchouksey/admission-bridge/services"
	"github.com/sahilchouksey/admission-bridge/utils"
	"github.com/sahilchouksey/admission-bridge/utils/auth"
	"gorm.io/gorm"
)

const (
	statusRunning   = "running"
	statusCompleted = "completed"
	statusFailed    = "failed"
)

// Dependencies are the services the maintenance jobs act on
type Dependencies struct {
	Blacklist      *auth.BlacklistService
	Notifications  *services.NotificationService
	Directory      *services.DirectoryService
	DirectoryCache bool // warm Directory only when a shared cache is configured
}

// CronManager manages all scheduled cron jobs
type CronManager struct {
	cron *cron.Cron
	db   *gorm.DB
	deps Dependencies
	log  *utils.Logger
}

// NewCronManager creates a new cron manager
func NewCronManager(db *gorm.DB, deps Dependencies, log *utils.Logger) *CronManager {
	// Create cron with seconds precision
	c := cron.New(cron.WithSeconds())

	return &CronManager{
		cron: c,
		db:   db,
		deps: deps,
		log:  log.With("component", "cron"),
	}
}

// Start starts all cron jobs
func (m *CronManager) Start() error {
	m.log.Info("starting cron jobs")

	if err := m.registerJobs(); err != nil {
		return err
	}

	m.cron.Start()

	m.log.Info("cron jobs started", "jobs", len(m.cron.Entries()))
	return nil
}

// Stop stops all cron jobs and waits for running ones to finish
func (m *CronManager) Stop() {
	m.log.Info("stopping cron jobs")
	ctx := m.cron.Stop()
	<-ctx.Done()
	m.log.Info("cron jobs stopped")
}

// registerJobs registers all cron jobs with their schedules
func (m *CronManager) registerJobs() error {
	// Every hour: drop expired blacklist entries
	if _, err := m.cron.AddFunc("0 0 * * * *", func() {
		m.run(jobCleanupBlacklist, 5*time.Minute, m.CleanupExpiredTokens)
	}); err != nil {
		return err
	}

	// Daily at 2 AM: prune cron logs and old read notifications
	if _, err := m.cron.AddFunc("0 0 2 * * *", func() {
		m.run(jobCleanupOldData, 10*time.Minute, m.CleanupOldData)
	}); err != nil {
		return err
	}

	if m.deps.DirectoryCache && m.deps.Directory != nil {
		// Every 10 minutes: rebuild the cached directory
		if _, err := m.cron.AddFunc("0 */10 * * * *", func() {
			m.run(jobWarmDirectory, 2*time.Minute, m.WarmDirectoryCache)
		}); err != nil {
			return err
		}
	}

	m.log.Info("all cron jobs registered")
	return nil
}

// run executes a job with a timeout and records it in cron_job_logs
func (m *CronManager) run(jobName string, timeout time.Duration, job func(ctx context.Context) (string, error)) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	entry := m.logJobStart(jobName)
	message, err := job(ctx)
	if err != nil {
		m.logJobError(entry, err)
		return
	}
	m.logJobComplete(entry, message)
}

// logJobStart logs the start of a cron job
func (m *CronManager) logJobStart(jobName string) *model.CronJobLog {
	m.log.Info("starting job", "job", jobName)

	entry := &model.CronJobLog{
		JobName:   jobName,
		Status:    statusRunning,
		StartedAt: time.Now(),
	}
	if err := m.db.Create(entry).Error; err != nil {
		m.log.Warn("failed to record job start", "job", jobName, "error", err)
	}
	return entry
}

// logJobComplete logs successful completion of a cron job
func (m *CronManager) logJobComplete(entry *model.CronJobLog, message string) {
	m.log.Info("completed job", "job", entry.JobName, "message", message)
	m.finish(entry, map[string]interface{}{
		"status":  statusCompleted,
		"message": message,
	})
}

// logJobError logs a cron job error
func (m *CronManager) logJobError(entry *model.CronJobLog, err error) {
	m.log.Error("job failed", "job", entry.JobName, "error", err)
	m.finish(entry, map[string]interface{}{
		"status":    statusFailed,
		"error_msg": err.Error(),
	})
}

func (m *CronManager) finish(entry *model.CronJobLog, updates map[string]interface{}) {
	if entry.ID == 0 {
		return
	}
	completedAt := time.Now()
	updates["completed_at"] = completedAt
	updates["duration"] = completedAt.Sub(entry.StartedAt).Milliseconds()

	if err := m.db.Model(&model.CronJobLog{}).Where("id = ?", entry.ID).Updates(updates).Error; err != nil {
		m.log.Warn("failed to record job result", "job", entry.JobName, "error", err)
	}
}
