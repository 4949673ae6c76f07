// Package slideshow drives the timed rotation of a section's media items.
package slideshow

import (
	"errors"
	"sync"
	"time"

	"github.com/djnacci/backend/internal/models"
)

var ErrIndexOutOfRange = errors.New("slide index out of range")

// Seek tells a video player where to jump
type Seek struct {
	To     time.Duration
	Resume bool
}

// Option configures a Slideshow
type Option func(*Slideshow)

// WithClock replaces the wall clock, mainly for tests
func WithClock(c Clock) Option {
	return func(s *Slideshow) {
		s.clock = c
	}
}

// WithOnChange registers a callback invoked with the new active index
// after every change. It runs outside the slideshow lock.
func WithOnChange(fn func(index int)) Option {
	return func(s *Slideshow) {
		s.onChange = fn
	}
}

// Slideshow cycles through an ordered list of items, keeping each one
// active for Duration(item) before moving to the next.
//
// A pending advance is identified by a generation number; every Stop,
// Show, SetItems and advance bumps the generation, so a timer that fires
// after being superseded does nothing.
type Slideshow struct {
	mu       sync.Mutex
	clock    Clock
	items    []models.MediaItem
	index    int
	running  bool
	timer    Timer
	gen      uint64
	onChange func(int)
}

// New creates a stopped slideshow over items
func New(items []models.MediaItem, opts ...Option) *Slideshow {
	s := &Slideshow{
		clock: realClock{},
		items: append([]models.MediaItem(nil), items...),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins rotation from the active item. Starting a running slideshow restarts the current timer.
func (s *Slideshow) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = true
	s.arm()
}

// Stop cancels the pending advance. Once Stop returns no further advance
// happens; an advance notification that was already being delivered may
// still finish, so callers that need a hard barrier must synchronize in
// the callback.
func (s *Slideshow) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = false
	s.disarm()
}

// Running reports whether the slideshow is started
func (s *Slideshow) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Index returns the active item index
func (s *Slideshow) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Current returns the active item, false when the list is empty
func (s *Slideshow) Current() (models.MediaItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.items) == 0 {
		return models.MediaItem{}, false
	}
	return s.items[s.index], true
}

// Show makes item i active and restarts its timer from zero
func (s *Slideshow) Show(i int) error {
	s.mu.Lock()
	if i < 0 || i >= len(s.items) {
		s.mu.Unlock()
		return ErrIndexOutOfRange
	}

	changed := s.index != i
	s.index = i
	if s.running {
		s.arm()
	}
	notify := s.onChange
	s.mu.Unlock()

	if changed && notify != nil {
		notify(i)
	}
	return nil
}

// SetItems replaces the item list. The active index is kept while it is
// still valid and reset to 0 otherwise.
func (s *Slideshow) SetItems(items []models.MediaItem) {
	s.mu.Lock()
	s.items = append([]models.MediaItem(nil), items...)

	changed := false
	if s.index >= len(s.items) {
		changed = s.index != 0
		s.index = 0
	}
	if s.running {
		s.arm()
	}
	index, notify := s.index, s.onChange
	s.mu.Unlock()

	if changed && notify != nil {
		notify(index)
	}
}

// PlaybackPosition reports the playback position of the active video.
// Once the clip end is reached it returns a seek back to the clip start;
// playback resumes only when the video is the sole item, otherwise the
// slideshow timer moves on.
func (s *Slideshow) PlaybackPosition(pos time.Duration) (Seek, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.items) == 0 {
		return Seek{}, false
	}
	item := s.items[s.index]
	if item.Type != models.MediaTypeVideo {
		return Seek{}, false
	}

	start, end := clipBounds(item)
	if pos < time.Duration(end)*time.Second {
		return Seek{}, false
	}

	return Seek{
		To:     time.Duration(start) * time.Second,
		Resume: len(s.items) == 1,
	}, true
}

// arm schedules the next advance. Must be called with mu held.
func (s *Slideshow) arm() {
	s.disarm()
	if !s.running || len(s.items) <= 1 {
		return
	}

	gen := s.gen
	s.timer = s.clock.AfterFunc(Duration(s.items[s.index]), func() {
		s.advance(gen)
	})
}

// disarm drops the pending advance. Must be called with mu held.
func (s *Slideshow) disarm() {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Slideshow) advance(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || !s.running || len(s.items) <= 1 {
		s.mu.Unlock()
		return
	}

	s.timer = nil
	s.index = (s.index + 1) % len(s.items)
	s.arm()
	index, notify, armed := s.index, s.onChange, s.gen
	s.mu.Unlock()

	if notify != nil && s.current(armed) {
		notify(index)
	}
}

// current reports whether no Stop, Show or SetItems happened since gen was taken
func (s *Slideshow) current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen == gen
}
