package service

import (
	"context"
	"time"

	"github.com/txix-open/isp-kit/log"
)

type CleanupTask struct {
	cleanup  Cleanup
	logger   log.Logger
	interval time.Duration

	chanClose chan bool
}

func NewCleanupTask(cleanup Cleanup, logger log.Logger, interval time.Duration) *CleanupTask {
	return &CleanupTask{
		cleanup:   cleanup,
		logger:    logger,
		interval:  interval,
		chanClose: make(chan bool),
	}
}

func (t *CleanupTask) Run(ctx context.Context) {
	go t.run(ctx)
}

// Stop terminates the task. Must be called at most once.
func (t *CleanupTask) Stop() {
	close(t.chanClose)
}

func (t *CleanupTask) run(ctx context.Context) {
	chanTimeout := time.After(t.interval)
	for {
		select {
		case <-t.chanClose:
			return
		case <-ctx.Done():
			return
		case <-chanTimeout:
			deleted, err := t.cleanup.Do(ctx)
			if err != nil {
				t.logger.Error(ctx, err)
			} else {
				t.logger.Info(ctx, "counters cleanup completed", log.Int64("deleted", deleted))
			}
			chanTimeout = time.After(t.interval)
		}
	}
}
