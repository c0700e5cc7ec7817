// Package scheduler - Latest-frame-wins detection scheduling.
//
// A Scheduler sits between a frame source and a Detector. Frames are
// published into a single-slot mailbox; a newer frame replaces one that has
// not been picked up yet, so the detector always works on the most recent
// frame and a slow detector never backs up the capture loop.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nvr-ai/go-canvas/images"
	"github.com/nvr-ai/go-canvas/inference"
	"github.com/nvr-ai/go-canvas/models/postprocess"
	"go.uber.org/zap"
)

// Detector is the part of detector.Detector the scheduler needs.
type Detector interface {
	Detect(ctx context.Context, img *images.Image) ([]postprocess.Detection, error)
}

// Frame is one published image.
type Frame struct {
	ID          uuid.UUID
	Seq         uint64
	Image       *images.Image
	PublishedAt time.Time
}

// Result is the outcome of detecting one frame.
type Result struct {
	Frame      *Frame
	Detections []postprocess.Detection
	Err        error
	Latency    time.Duration
}

// Stats counts frames through the scheduler.
type Stats struct {
	// Published frames accepted by Publish.
	Published uint64
	// Processed frames detected successfully.
	Processed uint64
	// Dropped frames replaced before pickup, pending at Stop, or rejected as busy.
	Dropped uint64
	// Failed frames whose detection returned an error.
	Failed uint64
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Scheduler feeds the latest published frame to a Detector on one worker
// goroutine.
type Scheduler struct {
	det     Detector
	handler func(Result)
	logger  *zap.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	frame   *Frame
	seq     uint64
	stats   Stats
	running bool
	stopped bool
	cancel  context.CancelFunc
}

// New creates a scheduler. handler is called from the Run goroutine with the
// result of every detected frame.
func New(det Detector, handler func(Result), opts ...Option) *Scheduler {
	s := &Scheduler{
		det:     det,
		handler: handler,
		logger:  zap.NewNop(),
	}
	s.cond = sync.NewCond(&s.mu)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Publish offers img for detection without blocking. An unconsumed frame is
// replaced and counted as dropped.
//
// Returns:
//   - *Frame: The published frame, or nil after Stop.
func (s *Scheduler) Publish(img *images.Image) *Frame {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return nil
	}
	if s.frame != nil {
		s.stats.Dropped++
	}

	s.seq++
	s.stats.Published++
	s.frame = &Frame{
		ID:          uuid.New(),
		Seq:         s.seq,
		Image:       img,
		PublishedAt: time.Now(),
	}
	s.cond.Signal()
	return s.frame
}

// Run consumes frames until ctx is done or Stop is called. It returns nil
// after Stop and the context error otherwise. Run may only be called once.
func (s *Scheduler) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("scheduler is already running")
	}
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.cancel = cancel
	s.mu.Unlock()

	release := context.AfterFunc(ctx, func() {
		s.mu.Lock()
		s.cond.Broadcast()
		s.mu.Unlock()
	})
	defer release()

	for {
		frame := s.next(ctx)
		if frame == nil {
			return s.exitErr(ctx)
		}

		start := time.Now()
		dets, err := s.det.Detect(ctx, frame.Image)
		latency := time.Since(start)

		switch {
		case err == nil:
			s.count(func(st *Stats) { st.Processed++ })
		case errors.Is(err, inference.ErrBusy):
			s.count(func(st *Stats) { st.Dropped++ })
			continue
		case ctx.Err() != nil:
			return s.exitErr(ctx)
		default:
			s.count(func(st *Stats) { st.Failed++ })
			s.logger.Warn("detection failed", zap.Uint64("seq", frame.Seq), zap.Error(err))
		}

		s.handler(Result{
			Frame:      frame,
			Detections: dets,
			Err:        err,
			Latency:    latency,
		})
	}
}

// next blocks until a frame is available, returning nil on shutdown.
func (s *Scheduler) next(ctx context.Context) *Frame {
	s.mu.Lock()
	defer s.mu.Unlock()

	for s.frame == nil && !s.stopped && ctx.Err() == nil {
		s.cond.Wait()
	}
	if s.stopped || ctx.Err() != nil {
		return nil
	}

	frame := s.frame
	s.frame = nil
	return frame
}

func (s *Scheduler) exitErr(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil
	}
	return ctx.Err()
}

func (s *Scheduler) count(fn func(*Stats)) {
	s.mu.Lock()
	fn(&s.stats)
	s.mu.Unlock()
}

// Stop ends Run, cancelling an in-flight detection. A pending frame is counted
// as dropped. Stop is idempotent.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	s.stopped = true
	if s.frame != nil {
		s.stats.Dropped++
		s.frame = nil
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.cond.Broadcast()
}

// Stats returns a snapshot of the frame counters.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}
