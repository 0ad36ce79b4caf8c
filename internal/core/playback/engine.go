package playback

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/samirrijal/dronepath/internal/core/domain"
	"github.com/samirrijal/dronepath/internal/core/ports"
)

// Config tunes the segment animation.
type Config struct {
	Steps        int           // interpolation steps per segment
	StepInterval time.Duration // delay between steps
}

// DefaultConfig is 50 steps 20ms apart: one second per segment.
func DefaultConfig() Config {
	return Config{Steps: 50, StepInterval: 20 * time.Millisecond}
}

// Engine animates the marker of one Store. It watches the store and keeps at
// most one segment task alive: the task walks Steps interpolation steps from
// waypoint i to i+1, then advances the store cursor (the coarse tick).
type Engine struct {
	sessionID string
	store     *Store
	cfg       Config
	pub       ports.FramePublisher
	log       *slog.Logger

	mu     sync.Mutex
	frame  domain.Frame
	coords [][2]float64
	seg    *segment
}

type segment struct {
	generation uint64
	index      int
	cancel     context.CancelFunc
	done       chan struct{}
}

// NewEngine creates an engine bound to store. pub may be nil.
func NewEngine(sessionID string, store *Store, cfg Config, pub ports.FramePublisher) *Engine {
	if cfg.Steps <= 0 {
		cfg.Steps = DefaultConfig().Steps
	}
	if cfg.StepInterval <= 0 {
		cfg.StepInterval = DefaultConfig().StepInterval
	}
	e := &Engine{
		sessionID: sessionID,
		store:     store,
		cfg:       cfg,
		pub:       pub,
		log:       slog.Default().With("session", sessionID),
	}
	snap := store.Snapshot()
	e.coords = snap.Path.Coordinates()
	e.frame = e.restingFrame(snap)
	return e
}

// Frame returns the most recent frame.
func (e *Engine) Frame() domain.Frame {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frame
}

// Run drives the engine until ctx is cancelled. Cancelling ctx tears down the
// in-flight segment and waits for it to exit.
func (e *Engine) Run(ctx context.Context) error {
	changes, unsubscribe := e.store.Subscribe()
	defer unsubscribe()

	e.reconcile(ctx)
	for {
		select {
		case <-ctx.Done():
			e.mu.Lock()
			seg := e.seg
			e.stopLocked()
			e.mu.Unlock()
			if seg != nil {
				<-seg.done
			}
			e.log.Debug("playback engine stopped")
			return nil
		case <-changes:
			e.reconcile(ctx)
		}
	}
}

// reconcile brings the engine in line with the store after a mutation.
func (e *Engine) reconcile(ctx context.Context) {
	snap := e.store.Snapshot()

	e.mu.Lock()
	defer e.mu.Unlock()

	e.coords = snap.Path.Coordinates()

	if e.seg != nil && snap.Running() &&
		e.seg.generation == snap.State.Generation && e.seg.index == snap.State.CurrentIndex {
		return
	}
	e.stopLocked()

	if !snap.Running() {
		e.frame = e.restingFrame(snap)
		e.publishLocked(ctx)
		return
	}

	i := snap.State.CurrentIndex
	segCtx, cancel := context.WithCancel(ctx)
	seg := &segment{
		generation: snap.State.Generation,
		index:      i,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	e.seg = seg
	go e.runSegment(segCtx, seg, snap.Path[i].Point(), snap.Path[i+1].Point())
}

func (e *Engine) runSegment(ctx context.Context, seg *segment, start, end domain.GeoPoint) {
	defer close(seg.done)

	ticker := time.NewTicker(e.cfg.StepInterval)
	defer ticker.Stop()

	for step := 0; step <= e.cfg.Steps; step++ {
		if step > 0 {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
		if !e.emit(ctx, seg, step, Lerp(start, end, step, e.cfg.Steps)) {
			return
		}
	}

	if !e.store.Advance(seg.generation, seg.index) {
		e.log.Debug("stale segment ignored", "generation", seg.generation, "index", seg.index)
	}
}

// emit records and publishes a frame for seg. It reports false once seg has
// been superseded, so a cancelled task never touches engine state.
func (e *Engine) emit(ctx context.Context, seg *segment, step int, pos domain.GeoPoint) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.seg != seg {
		return false
	}
	e.frame = domain.Frame{
		SessionID:  e.sessionID,
		Generation: seg.generation,
		Index:      seg.index,
		Step:       step,
		Steps:      e.cfg.Steps,
		Position:   pos,
		Path:       e.coords,
		Status:     domain.StatusRunning,
		Time:       time.Now(),
	}
	e.publishLocked(ctx)
	return true
}

func (e *Engine) stopLocked() {
	if e.seg != nil {
		e.seg.cancel()
		e.seg = nil
	}
}

func (e *Engine) publishLocked(ctx context.Context) {
	if e.pub == nil {
		return
	}
	f := e.frame
	if err := e.pub.PublishFrame(ctx, &f); err != nil {
		e.log.Warn("publish frame failed", "error", err)
	}
}

// restingFrame is the frame for a marker sitting on the current waypoint.
func (e *Engine) restingFrame(snap domain.Snapshot) domain.Frame {
	pos := domain.DefaultPosition
	if len(snap.Path) > 0 {
		pos = snap.Path[snap.State.CurrentIndex].Point()
	}
	return domain.Frame{
		SessionID:  e.sessionID,
		Generation: snap.State.Generation,
		Index:      snap.State.CurrentIndex,
		Steps:      e.cfg.Steps,
		Position:   pos,
		Path:       snap.Path.Coordinates(),
		Status:     snap.Status(),
		Paused:     snap.State.IsPaused,
		AtEnd:      snap.AtEnd(),
		Time:       time.Now(),
	}
}
