package tasks

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application to manage background reminder dispatching.
// Example usage:
//
//	scheduler := NewScheduler(reminderRepo, notifier, interval, workerCount)
//	scheduler.Start()
//	defer scheduler.Stop()
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
