package worker

import (
	"context"
	"sync"
	"time"

	"clinic-appointment-service/internal/delivery/dto"
	"clinic-appointment-service/internal/service"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// leaderLockKey makes sure only one instance generates slots per run.
const leaderLockKey = "slotgen:leader"

const leaderLockTTL = 2 * time.Minute

// YearGenerator is the part of the slot use case the worker drives.
type YearGenerator interface {
	GenerateYear(ctx context.Context, year int, strict bool) (*dto.GenerateSlotsResponse, error)
}

// SlotGenerationWorker keeps the current and the next calendar year generated.
type SlotGenerationWorker struct {
	log       *logrus.Logger
	locker    service.LockerService
	generator YearGenerator
	spec      string
	now       func() time.Time

	mu     sync.Mutex
	cron   *cron.Cron
	cancel context.CancelFunc
	runs   sync.WaitGroup
}

// NewSlotGenerationWorker builds the worker. locker may be nil for a single instance deployment.
func NewSlotGenerationWorker(log *logrus.Logger, locker service.LockerService, generator YearGenerator, spec string) *SlotGenerationWorker {
	return &SlotGenerationWorker{
		log:       log,
		locker:    locker,
		generator: generator,
		spec:      spec,
		now:       time.Now,
	}
}

// Start runs one pass immediately and then on every tick of the cron spec.
func (w *SlotGenerationWorker) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	c := cron.New()
	if _, err := c.AddFunc(w.spec, func() { w.RunOnce(runCtx) }); err != nil {
		w.log.Warnf("Invalid slot worker cron spec %q, falling back to @daily: %+v", w.spec, err)
		c = cron.New()
		_, _ = c.AddFunc("@daily", func() { w.RunOnce(runCtx) })
	}
	c.Start()
	w.cron = c

	w.runs.Add(1)
	go func() {
		defer w.runs.Done()
		w.RunOnce(runCtx)
	}()

	w.log.Infof("Slot generation worker started (schedule %s)", w.spec)
}

// Stop cancels in-flight runs and waits for the startup pass and the running job to finish.
func (w *SlotGenerationWorker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cancel != nil {
		w.cancel()
	}
	if w.cron != nil {
		<-w.cron.Stop().Done()
		w.cron = nil
	}
	w.runs.Wait()
	w.log.Info("Slot generation worker stopped")
}

// RunOnce generates the current and the next year if this instance wins the leader lock.
// Existing slots are skipped, so repeated runs only fill gaps.
func (w *SlotGenerationWorker) RunOnce(ctx context.Context) {
	if w.locker != nil {
		acquired, token, err := w.locker.TryLock(ctx, leaderLockKey, leaderLockTTL)
		if err != nil {
			w.log.Warnf("Slot worker leader lock attempt failed: %+v", err)
			return
		}
		if !acquired {
			w.log.Info("Slot worker leader lock held by another instance, skipping run")
			return
		}
		defer func() {
			unlockCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := w.locker.Unlock(unlockCtx, leaderLockKey, token); err != nil {
				w.log.Warnf("Failed to release slot worker leader lock: %+v", err)
			}
		}()

		refreshCtx, stopRefresh := context.WithCancel(ctx)
		defer stopRefresh()
		go w.refreshLeaderLock(refreshCtx, token)
	}

	year := w.now().Year()
	for _, y := range []int{year, year + 1} {
		if ctx.Err() != nil {
			return
		}
		result, err := w.generator.GenerateYear(ctx, y, false)
		if err != nil {
			w.log.Warnf("Slot worker failed to generate year %d: %+v", y, err)
			continue
		}
		w.log.WithFields(logrus.Fields{
			"year":     result.Year,
			"inserted": result.Inserted,
			"skipped":  result.Skipped,
		}).Info("Slot worker generated year")
	}
}

func (w *SlotGenerationWorker) refreshLeaderLock(ctx context.Context, token string) {
	tick := time.NewTicker(leaderLockTTL / 2)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			if err := w.locker.Refresh(ctx, leaderLockKey, token, leaderLockTTL); err != nil {
				w.log.Warnf("Failed to refresh slot worker leader lock: %+v", err)
			}
		}
	}
}
