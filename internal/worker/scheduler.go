package worker

import (
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"rateservice/internal/service"
)

// NewScheduler creates an asynq scheduler whose cron specs are evaluated in loc.
func NewScheduler(redisOpt asynq.RedisConnOpt, loc *time.Location, logger *zap.SugaredLogger) *asynq.Scheduler {
	return asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
		Location: loc,
		Logger:   logger,
		PostEnqueueFunc: func(info *asynq.TaskInfo, err error) {
			if err != nil {
				logger.Errorw("Failed to enqueue scheduled sync", "error", err)
				return
			}
			logger.Infow("Scheduled sync enqueued", "task_id", info.ID, "queue", info.Queue)
		},
	})
}

// RegisterDailySync registers the scheduled sync task under cronSpec and returns the entry id.
func RegisterDailySync(s *asynq.Scheduler, cronSpec string, timeout time.Duration) (string, error) {
	task, err := NewSyncTask(service.TriggerScheduled, timeout)
	if err != nil {
		return "", err
	}
	entryID, err := s.Register(cronSpec, task)
	if err != nil {
		return "", fmt.Errorf("register sync schedule %q: %w", cronSpec, err)
	}
	return entryID, nil
}
