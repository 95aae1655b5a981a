package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/certibase/backend/pkg/constants"
)

// scheduledJob is one registered maintenance job. The cron expression and
// run bookkeeping live in the scheduled_jobs table so multiple instances
// share the is_running lock; the handler itself is code.
type scheduledJob struct {
	ID       string
	Name     string
	CronExpr string
	Run      func(ctx context.Context) error
}

// SchedulerService runs the recurring maintenance jobs: the daily
// certification status sweep, overdue task and milestone flagging, and
// the surveillance-due sweep.
type SchedulerService struct {
	db             *sql.DB
	certifications *CertificationService
	tasks          *TaskService
	pipelines      *PipelineService
	jobs           []scheduledJob
	stopChan       chan struct{}
	wg             sync.WaitGroup
	mu             sync.Mutex
	running        bool
	stopped        bool // prevents double-close of stopChan
}

func NewSchedulerService(db *sql.DB, certifications *CertificationService, tasks *TaskService, pipelines *PipelineService) *SchedulerService {
	s := &SchedulerService{
		db:             db,
		certifications: certifications,
		tasks:          tasks,
		pipelines:      pipelines,
		stopChan:       make(chan struct{}),
	}
	s.jobs = []scheduledJob{
		{
			ID:       "cert-status-sweep",
			Name:     "Certification status sweep",
			CronExpr: "0 2 * * *",
			Run:      s.runCertStatusSweep,
		},
		{
			ID:       "overdue-flagging",
			Name:     "Overdue task and milestone flagging",
			CronExpr: "0 * * * *",
			Run:      s.runOverdueFlagging,
		},
		{
			ID:       "surveillance-sweep",
			Name:     "Surveillance due sweep",
			CronExpr: "0 3 * * *",
			Run:      s.runSurveillanceSweep,
		},
	}
	return s
}

// Start registers the job rows and begins the background loop.
func (s *SchedulerService) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	log.Println("⏰ Scheduler starting...")
	s.registerJobs()

	ticker := time.NewTicker(time.Duration(constants.ScheduleCheckInterval) * time.Second)
	defer ticker.Stop()

	s.runDueJobs()

	for {
		select {
		case <-ticker.C:
			s.runDueJobs()
		case <-s.stopChan:
			log.Println("⏰ Scheduler stopping...")
			s.wg.Wait()
			log.Println("⏰ Scheduler stopped")
			return
		}
	}
}

// Stop gracefully stops the scheduler and waits for running jobs.
func (s *SchedulerService) Stop() {
	s.mu.Lock()
	if !s.running || s.stopped {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.stopped = true
	s.mu.Unlock()

	close(s.stopChan)
}

// registerJobs upserts one row per job so the lock and run bookkeeping
// survive restarts. Cron changes in code win over stored values.
func (s *SchedulerService) registerJobs() {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, cron_expr, is_running)
		VALUES (?, ?, ?, false)
		ON DUPLICATE KEY UPDATE name = VALUES(name), cron_expr = VALUES(cron_expr)`,
		constants.TableScheduledJob)

	for _, job := range s.jobs {
		if _, err := s.db.Exec(query, job.ID, job.Name, job.CronExpr); err != nil {
			log.Printf("⚠️ Failed to register scheduled job %s: %v", job.ID, err)
		}
	}
}

func (s *SchedulerService) runDueJobs() {
	now := time.Now().UTC()
	for _, job := range s.jobs {
		due, err := s.isJobDue(job, now)
		if err != nil {
			log.Printf("⚠️ Failed to check schedule for job %s: %v", job.ID, err)
			continue
		}
		if !due {
			continue
		}

		s.wg.Add(1)
		go func(j scheduledJob) {
			defer s.wg.Done()
			s.executeJob(j)
		}(job)
	}
}

func (s *SchedulerService) isJobDue(job scheduledJob, now time.Time) (bool, error) {
	query := fmt.Sprintf("SELECT last_run_at, next_run_at FROM %s WHERE id = ?", constants.TableScheduledJob)

	var lastRun, nextRun sql.NullTime
	err := s.db.QueryRow(query, job.ID).Scan(&lastRun, &nextRun)
	if err == sql.ErrNoRows {
		return true, nil
	}
	if err != nil {
		return false, err
	}

	if nextRun.Valid {
		return !now.Before(nextRun.Time), nil
	}
	// Never scheduled and never run: first tick runs it.
	return !lastRun.Valid, nil
}

// executeJob runs one job with the shared lock, panic recovery and the
// runtime cap, then records the outcome and the next run time.
func (s *SchedulerService) executeJob(job scheduledJob) {
	acquired, err := s.acquireLock(job.ID)
	if err != nil {
		log.Printf("⚠️ Failed to acquire lock for job %s: %v", job.ID, err)
		return
	}
	if !acquired {
		log.Printf("⏭️ Job %s is already running, skipping", job.Name)
		return
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("🔥 Panic in scheduled job %s: %v", job.Name, r)
		}
		s.releaseLock(job.ID)
	}()

	timeout := time.Duration(constants.ScheduleMaxRuntimeMins) * time.Minute
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	runErr := job.Run(ctx)
	duration := time.Since(start)

	if runErr != nil {
		log.Printf("❌ Scheduled job %s failed after %v: %v", job.Name, duration, runErr)
		s.recordRun(job.ID, runErr.Error())
	} else {
		log.Printf("✅ Scheduled job %s completed in %v", job.Name, duration)
		s.recordRun(job.ID, "")
	}

	s.scheduleNextRun(job)
}

func (s *SchedulerService) acquireLock(jobID string) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET is_running = true
		WHERE id = ? AND (is_running = false OR is_running IS NULL)`,
		constants.TableScheduledJob)

	result, err := s.db.Exec(query, jobID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (s *SchedulerService) releaseLock(jobID string) {
	query := fmt.Sprintf("UPDATE %s SET is_running = false WHERE id = ?", constants.TableScheduledJob)
	if _, err := s.db.Exec(query, jobID); err != nil {
		log.Printf("⚠️ Failed to release lock for job %s: %v", jobID, err)
	}
}

func (s *SchedulerService) recordRun(jobID, errMsg string) {
	query := fmt.Sprintf("UPDATE %s SET last_run_at = ?, last_error = ? WHERE id = ?", constants.TableScheduledJob)
	if _, err := s.db.Exec(query, time.Now().UTC(), errMsg, jobID); err != nil {
		log.Printf("⚠️ Failed to record run for job %s: %v", jobID, err)
	}
}

func (s *SchedulerService) scheduleNextRun(job scheduledJob) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(job.CronExpr)
	if err != nil {
		log.Printf("⚠️ Invalid cron expression for job %s: %v", job.ID, err)
		return
	}
	next := schedule.Next(time.Now().UTC())

	query := fmt.Sprintf("UPDATE %s SET next_run_at = ? WHERE id = ?", constants.TableScheduledJob)
	if _, err := s.db.Exec(query, next, job.ID); err != nil {
		log.Printf("⚠️ Failed to set next run for job %s: %v", job.ID, err)
	}
}

// Job bodies

func (s *SchedulerService) runCertStatusSweep(ctx context.Context) error {
	updated, err := s.certifications.RefreshStatuses(ctx)
	if err != nil {
		return err
	}
	log.Printf("🏅 Certification status sweep: %d updated", updated)
	return nil
}

// runOverdueFlagging marks pending milestones past their due date as
// overdue and logs open tasks past theirs.
func (s *SchedulerService) runOverdueFlagging(ctx context.Context) error {
	query := fmt.Sprintf(`
		UPDATE %s SET status = 'overdue'
		WHERE status = 'pending' AND due_date IS NOT NULL AND due_date < NOW()`,
		constants.TablePipelineMilestone)
	result, err := s.db.ExecContext(ctx, query)
	if err != nil {
		return err
	}
	flagged, _ := result.RowsAffected()

	overdue, err := s.tasks.ListOverdue(ctx)
	if err != nil {
		return err
	}

	log.Printf("📝 Overdue flagging: %d milestones flagged, %d tasks overdue", flagged, len(overdue))
	return nil
}

func (s *SchedulerService) runSurveillanceSweep(ctx context.Context) error {
	moved, err := s.pipelines.RunSurveillanceSweep(ctx)
	if err != nil {
		return err
	}
	log.Printf("🔄 Surveillance sweep: %d pipelines moved", moved)
	return nil
}
