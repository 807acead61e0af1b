package recommend

import (
	"sync"

	"github.com/icco/moviefinder/models"
)

// Phase is the request lifecycle stage.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseSettled
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseSettled:
		return "settled"
	default:
		return "unknown"
	}
}

// Snapshot is a consistent read of State. While Phase is PhaseLoading,
// Movies and Err are always empty.
type Snapshot struct {
	Phase      Phase
	Movies     []models.Movie
	Err        string
	Generation uint64
}

// Loading reports whether a request is in flight.
func (s Snapshot) Loading() bool {
	return s.Phase == PhaseLoading
}

// State holds the shared loading/results/error status. It is created by
// the composing root and handed to the form (the only writer) and to
// whatever renders it.
type State struct {
	mu         sync.RWMutex
	phase      Phase
	movies     []models.Movie
	err        string
	generation uint64
}

// NewState returns an idle state.
func NewState() *State {
	return &State{}
}

// Begin enters PhaseLoading, drops any previous results or error and
// returns the generation that is allowed to settle.
func (s *State) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.phase = PhaseLoading
	s.movies = nil
	s.err = ""
	return s.generation
}

// Succeed settles gen with movies. It is a no-op returning false when gen
// has been superseded or already settled.
func (s *State) Succeed(gen uint64, movies []models.Movie) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.current(gen) {
		return false
	}
	s.phase = PhaseSettled
	s.movies = movies
	s.err = ""
	return true
}

// Fail settles gen with an error message and no results.
func (s *State) Fail(gen uint64, message string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.current(gen) {
		return false
	}
	s.phase = PhaseSettled
	s.movies = nil
	s.err = message
	return true
}

func (s *State) current(gen uint64) bool {
	return gen == s.generation && s.phase == PhaseLoading
}

// Reset returns to PhaseIdle. Any outstanding request is superseded.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.phase = PhaseIdle
	s.movies = nil
	s.err = ""
}

// Loading reports whether a request is in flight.
func (s *State) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase == PhaseLoading
}

// Snapshot returns a copy of the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var movies []models.Movie
	if len(s.movies) > 0 {
		movies = make([]models.Movie, len(s.movies))
		copy(movies, s.movies)
	}
	return Snapshot{
		Phase:      s.phase,
		Movies:     movies,
		Err:        s.err,
		Generation: s.generation,
	}
}
