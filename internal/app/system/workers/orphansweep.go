// internal/app/system/workers/orphansweep.go
package workers

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ProjectRefs is a collection whose documents point at projects.
type ProjectRefs interface {
	DistinctProjectIDs(ctx context.Context) ([]string, error)
	DeleteByProject(ctx context.Context, projectID string) (int64, error)
}

// ProjectLookup reports which of the given project ids still exist.
type ProjectLookup interface {
	ExistingIDs(ctx context.Context, ids []string) (map[string]bool, error)
}

// SweepRecorder receives one call per orphaned project that was cleaned up.
// *auditlog.Logger satisfies it.
type SweepRecorder interface {
	OrphansSwept(ctx context.Context, projectID string, memberships, notifications int64)
}

// OrphanSweep is a background worker that removes memberships and
// notifications left behind by a project teardown that did not finish.
type OrphanSweep struct {
	projects      ProjectLookup
	memberships   ProjectRefs
	notifications ProjectRefs
	recorder      SweepRecorder
	log           *zap.Logger
	interval      time.Duration
	timeout       time.Duration
	stopCh        chan struct{}
	wg            sync.WaitGroup
}

// NewOrphanSweep creates a new sweeper.
//
// Parameters:
//   - projects: lookup of live projects
//   - memberships, notifications: collections to sweep
//   - recorder: audit sink, may be nil
//   - interval: how often to sweep (e.g., 15 minutes)
func NewOrphanSweep(projects ProjectLookup, memberships, notifications ProjectRefs, recorder SweepRecorder, logger *zap.Logger, interval time.Duration) *OrphanSweep {
	return &OrphanSweep{
		projects:      projects,
		memberships:   memberships,
		notifications: notifications,
		recorder:      recorder,
		log:           logger,
		interval:      interval,
		timeout:       time.Minute,
		stopCh:        make(chan struct{}),
	}
}

// Start begins the background sweep loop.
func (w *OrphanSweep) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("orphan sweep worker started", zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *OrphanSweep) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("orphan sweep worker stopped")
}

func (w *OrphanSweep) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
			w.Sweep(ctx)
			cancel()
		}
	}
}

// Sweep runs one pass and returns the number of orphaned projects cleaned.
func (w *OrphanSweep) Sweep(ctx context.Context) int {
	referenced := map[string]struct{}{}
	for _, refs := range []ProjectRefs{w.memberships, w.notifications} {
		ids, err := refs.DistinctProjectIDs(ctx)
		if err != nil {
			w.log.Error("orphan sweep: list project references", zap.Error(err))
			return 0
		}
		for _, id := range ids {
			referenced[id] = struct{}{}
		}
	}
	if len(referenced) == 0 {
		return 0
	}

	ids := make([]string, 0, len(referenced))
	for id := range referenced {
		ids = append(ids, id)
	}
	live, err := w.projects.ExistingIDs(ctx, ids)
	if err != nil {
		w.log.Error("orphan sweep: look up projects", zap.Error(err))
		return 0
	}

	cleaned := 0
	for _, id := range ids {
		if live[id] {
			continue
		}
		// notifications first so a failure leaves the membership,
		// which is what the next pass keys on
		nDel, err := w.notifications.DeleteByProject(ctx, id)
		if err != nil {
			w.log.Warn("orphan sweep: delete notifications", zap.String("project_id", id), zap.Error(err))
			continue
		}
		mDel, err := w.memberships.DeleteByProject(ctx, id)
		if err != nil {
			w.log.Warn("orphan sweep: delete memberships", zap.String("project_id", id), zap.Error(err))
			continue
		}
		cleaned++
		w.log.Info("orphan sweep: cleaned project references",
			zap.String("project_id", id),
			zap.Int64("memberships", mDel),
			zap.Int64("notifications", nDel))
		if w.recorder != nil {
			w.recorder.OrphansSwept(ctx, id, mDel, nDel)
		}
	}
	return cleaned
}
