package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"oboete/app/database"
	"oboete/app/notify"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

const dueBatchSize = 50

type Scheduler struct {
	reminderRepo database.ReminderRepository
	notifier     notify.Notifier
	interval     time.Duration
	workerCount  int
	cron         *cron.Cron
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	taskQueue    chan TaskInterface

	// inFlight prevents a reminder from being enqueued again while an
	// earlier dispatch (or its retries) is still pending.
	inFlightMu sync.Mutex
	inFlight   map[int64]struct{}
}

func NewScheduler(reminderRepo database.ReminderRepository, notifier notify.Notifier,
	interval time.Duration, workerCount int) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		reminderRepo: reminderRepo,
		notifier:     notifier,
		interval:     interval,
		workerCount:  workerCount,
		cron:         cron.New(),
		ctx:          ctx,
		cancel:       cancel,
		taskQueue:    make(chan TaskInterface, 300),
		inFlight:     make(map[int64]struct{}),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	// Reminders that came due while the service was down fire on the
	// first sweep.
	s.enqueueDueReminders()

	spec := fmt.Sprintf("@every %ds", int(s.interval.Seconds()))
	if _, err := s.cron.AddFunc(spec, s.enqueueDueReminders); err != nil {
		slog.Error("Failed to schedule reminder sweep", "spec", spec, "error", err)
		return
	}
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueueDueReminders() {
	due, err := s.reminderRepo.GetDue(time.Now(), dueBatchSize)
	if err != nil {
		slog.Error("Failed to query due reminders", "error", err)
		return
	}
	if len(due) == 0 {
		return
	}

	slog.Debug("Due reminders found", "count", len(due))

	for i := range due {
		reminder := due[i]
		if !s.markInFlight(reminder.ID) {
			slog.Debug("Reminder already in flight, skipping", "reminder_id", reminder.ID)
			continue
		}

		task := NewDispatchReminderTask(&reminder, s.reminderRepo, s.notifier)
		if err := s.EnqueueTask(task); err != nil {
			s.release(reminder.ID)
			slog.Warn("Failed to enqueue DispatchReminderTask", "reminder_id", reminder.ID, "error", err)
		}
	}
}

func (s *Scheduler) markInFlight(reminderID int64) bool {
	s.inFlightMu.Lock()
	defer s.inFlightMu.Unlock()

	if _, busy := s.inFlight[reminderID]; busy {
		return false
	}
	s.inFlight[reminderID] = struct{}{}
	return true
}

func (s *Scheduler) release(reminderID int64) {
	s.inFlightMu.Lock()
	defer s.inFlightMu.Unlock()
	delete(s.inFlight, reminderID)
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)
	if err == nil {
		s.release(task.GetReminderID())
		return
	}

	slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

	if !task.CanRetry() {
		s.release(task.GetReminderID())
		slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		return
	}

	task.IncrementRetryCount()
	retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
	if retryDelay > 30*time.Second {
		retryDelay = 30 * time.Second
	}

	slog.Warn("Task retry scheduled", "type", string(task.GetType()), "reminder_id", task.GetReminderID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

	// The retry goroutine joins the WaitGroup so Stop cannot close the
	// queue while a re-enqueue is still possible.
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		select {
		case <-time.After(retryDelay):
		case <-s.ctx.Done():
			slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
			return
		}

		if retryErr := s.EnqueueTask(task); retryErr != nil {
			s.release(task.GetReminderID())
			slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
		}
	}()
}
