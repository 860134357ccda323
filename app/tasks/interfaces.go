package tasks

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application and the API handlers to run background work:
// video processing triggered by webhook notifications and hub subscription
// management.
// Example usage:
//
//	scheduler := NewScheduler(channelRepo, processor, subscriber)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewProcessVideoTask(videoID, channelID, processor))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
