package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/icco/moviefinder/lib/client"
	"github.com/icco/moviefinder/lib/validation"
	"github.com/icco/moviefinder/models"
)

// ErrInFlight is returned by Start while a request is already loading.
var ErrInFlight = errors.New("a recommendation request is already in progress")

// ErrUnknownField is returned by UpdateField for names it does not own.
var ErrUnknownField = errors.New("unknown form field")

// Form field names, matching the wire keys.
const (
	FieldDescription = "description"
	FieldMovieType   = "movie_type"
	FieldReleasePref = "release_pref"
)

// Recommender is the network side of a submission.
type Recommender interface {
	Recommend(ctx context.Context, query models.PreferenceQuery) ([]models.Movie, error)
}

// Form owns the preference draft and the local error message, and is the
// only writer of its State.
type Form struct {
	mu     sync.Mutex
	state  *State
	client Recommender
	logger *slog.Logger
	draft  models.PreferenceQuery
	err    string
}

// NewForm returns a form with the default draft.
func NewForm(state *State, rec Recommender, logger *slog.Logger) *Form {
	return &Form{
		state:  state,
		client: rec,
		logger: logger,
		draft:  models.DefaultQuery(),
	}
}

// UpdateField sets one draft field. Values are checked on submit, not here.
func (f *Form) UpdateField(name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch name {
	case FieldDescription:
		f.draft.Description = value
	case FieldMovieType:
		f.draft.MovieType = models.MovieType(value)
	case FieldReleasePref:
		f.draft.ReleasePref = models.ReleasePref(value)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return nil
}

// Draft returns the current field values.
func (f *Form) Draft() models.PreferenceQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

// Error returns the message to show under the form, or "".
func (f *Form) Error() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// CanSubmit reports whether the submit control is enabled.
func (f *Form) CanSubmit() bool {
	return !f.state.Loading()
}

// Submission is a started request: a generation and the query snapshot
// taken when it began.
type Submission struct {
	Generation uint64
	Query      models.PreferenceQuery

	client Recommender
}

// Outcome is the result of running a Submission.
type Outcome struct {
	Generation uint64
	Movies     []models.Movie
	Err        error
}

// Run performs the single network call. It does not touch shared state, so
// it may run off the UI goroutine.
func (s *Submission) Run(ctx context.Context) Outcome {
	movies, err := s.client.Recommend(ctx, s.Query)
	if err != nil {
		return Outcome{Generation: s.Generation, Err: err}
	}
	return Outcome{Generation: s.Generation, Movies: movies}
}

// Start validates the draft and, if it passes, moves the state to loading.
// A rejected draft sets the local error and leaves the state untouched.
func (f *Form) Start() (*Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state.Loading() {
		return nil, ErrInFlight
	}

	query := f.draft.Snapshot()
	if err := validation.ValidateQuery(query); err != nil {
		var inputErr *validation.InputError
		if errors.As(err, &inputErr) {
			f.err = inputErr.Message
		} else {
			f.err = err.Error()
		}
		f.logger.Debug("Rejected submission", slog.String("reason", f.err))
		return nil, err
	}

	f.err = ""
	gen := f.state.Begin()
	f.logger.Debug("Started submission", slog.Uint64("generation", gen))

	return &Submission{Generation: gen, Query: query, client: f.client}, nil
}

// Finish settles the state with o. It returns false when o belongs to a
// superseded submission, in which case nothing changes.
func (f *Form) Finish(o Outcome) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if o.Err != nil {
		msg := client.Message(o.Err)
		if !f.state.Fail(o.Generation, msg) {
			f.logger.Debug("Discarded stale failure", slog.Uint64("generation", o.Generation))
			return false
		}
		f.err = msg
		f.logger.Warn("Recommendation failed",
			slog.Uint64("generation", o.Generation),
			slog.Any("error", o.Err))
		return true
	}

	if !f.state.Succeed(o.Generation, o.Movies) {
		f.logger.Debug("Discarded stale result", slog.Uint64("generation", o.Generation))
		return false
	}
	f.logger.Debug("Settled submission",
		slog.Uint64("generation", o.Generation),
		slog.Int("movies", len(o.Movies)))
	return true
}

// Submit runs the whole lifecycle synchronously and returns the error that
// was surfaced, if any.
func (f *Form) Submit(ctx context.Context) error {
	sub, err := f.Start()
	if err != nil {
		return err
	}
	o := sub.Run(ctx)
	f.Finish(o)
	return o.Err
}
