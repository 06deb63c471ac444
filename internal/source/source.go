// Package source supplies the tracks the widget displays. Track selection
// belongs to whoever runs the widget: a fixed track from the command line or
// whatever an MPRIS player on the session bus is showing.
package source

import (
	"context"
	"errors"
	"sync"

	"karolbroda.com/coverglow/internal/track"
)

var ErrStopped = errors.New("source already stopped")

type Source interface {
	Start(ctx context.Context) error
	Events() <-chan *track.Info
	Stop()
}

// Static emits a single track once started.
type Static struct {
	trk    *track.Info
	events chan *track.Info

	mu      sync.Mutex
	started bool
	stopped bool
}

func NewStatic(trk *track.Info) *Static {
	return &Static{
		trk:    trk,
		events: make(chan *track.Info, 1),
	}
}

// Start emits the track on the first call only. Starting a stopped source
// is an error.
func (s *Static) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrStopped
	}
	if s.started {
		return nil
	}
	s.started = true

	if s.trk != nil {
		copied := *s.trk
		s.events <- &copied
	}
	return nil
}

func (s *Static) Events() <-chan *track.Info {
	return s.events
}

func (s *Static) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	s.stopped = true
	close(s.events)
}
