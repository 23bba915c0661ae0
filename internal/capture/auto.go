package capture

import (
	"context"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/ambientanki/ambientd/internal/models"
	"github.com/ambientanki/ambientd/internal/monitor"
	"github.com/ambientanki/ambientd/internal/queue"
)

// AutoCapturer connects tab lifecycle events to the capture pipeline:
// an activated tab gets a dwell timer; when it fires and the URL passes
// the whitelist/blacklist rules, a capture task is queued.
type AutoCapturer struct {
	service *Service
	store   Store
	monitor *monitor.TabMonitor
	queue   *queue.Queue
	logger  *zap.Logger
}

// NewAutoCapturer wires the monitor's capture signal and the queue's
// error stream.
func NewAutoCapturer(service *Service, store Store, tabMonitor *monitor.TabMonitor, q *queue.Queue, logger *zap.Logger) *AutoCapturer {
	a := &AutoCapturer{
		service: service,
		store:   store,
		monitor: tabMonitor,
		queue:   q,
		logger:  logger,
	}
	tabMonitor.OnCapture(a.onDwellElapsed)
	q.OnError(func(task *queue.Task, err error) {
		logger.Error("auto_capture_failed", zap.String("task_id", task.ID.String()), zap.Error(err))
	})
	return a
}

// TabActivated starts dwell monitoring for the tab when auto capture is
// enabled. Re-activation restarts the timer.
func (a *AutoCapturer) TabActivated(ctx context.Context, tabID int, url string) error {
	settings, err := a.store.Settings(ctx)
	if err != nil {
		return err
	}
	if !settings.AutoCapture.Enabled {
		return nil
	}
	dwell := time.Duration(settings.AutoCapture.MinDwellTime) * time.Millisecond
	a.monitor.StartMonitoring(tabID, url, dwell)
	return nil
}

// TabClosed cancels any pending dwell timer for the tab.
func (a *AutoCapturer) TabClosed(tabID int) {
	a.monitor.StopMonitoring(tabID)
}

func (a *AutoCapturer) onDwellElapsed(tabID int, url string) {
	ctx := context.Background()
	settings, err := a.store.Settings(ctx)
	if err != nil {
		a.logger.Error("auto_capture_failed", zap.Int("tab_id", tabID), zap.Error(err))
		return
	}
	if !settings.AutoCapture.Enabled {
		return
	}
	if !ShouldCaptureURL(url, settings.AutoCapture) {
		a.logger.Debug("auto_capture_filtered", zap.Int("tab_id", tabID), zap.String("url", url))
		return
	}

	a.queue.Add(func() error {
		_, err := a.service.Capture(context.Background(), Request{URL: url, Auto: true, TabID: tabID})
		return err
	}, 0)
}

// ShouldCaptureURL applies the auto-capture URL rules. The blacklist
// wins over the whitelist; a non-empty whitelist requires a match.
// Patterns that fail to compile are ignored.
func ShouldCaptureURL(url string, rules models.AutoCaptureRules) bool {
	for _, pattern := range rules.Blacklist {
		re, err := regexp.Compile(pattern)
		if err != nil {
			continue
		}
		if re.MatchString(url) {
			return false
		}
	}

	if len(rules.Whitelist) == 0 {
		return true
	}
	for _, pattern := range rules.Whitelist {
		re, err := regexp.Compile(pattern)
		if err != nil {
			continue
		}
		if re.MatchString(url) {
			return true
		}
	}
	return false
}
