package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/icco/moviefinder/handlers/templates"
	"github.com/icco/moviefinder/lib/health"
	"github.com/icco/moviefinder/lib/presenter"
	"github.com/icco/moviefinder/lib/recommend"
	"github.com/icco/moviefinder/models"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type errorData struct {
	Message string
	Refresh bool
}

type pageData struct {
	Draft        models.PreferenceQuery
	MovieTypes   []models.MovieType
	ReleasePrefs []models.ReleasePref
	Error        string
	Loading      bool
	Refresh      bool
	View         presenter.View
}

// Server serves the preference form over HTTP. It shares one Form and State
// across all visitors, the same way the terminal UI owns a single form.
type Server struct {
	ctx         context.Context
	form        *recommend.Form
	state       *recommend.State
	submitLimit int
	wg          sync.WaitGroup
}

// New returns a Server whose background requests run under ctx. Each client
// IP may submit submitLimit times per minute; zero disables the limit.
func New(ctx context.Context, form *recommend.Form, state *recommend.State, submitLimit int) *Server {
	return &Server{ctx: ctx, form: form, state: state, submitLimit: submitLimit}
}

// Router returns the chi router for the web front-end.
func (s *Server) Router(p health.Pinger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.HandleHome)
	r.Group(func(r chi.Router) {
		if s.submitLimit > 0 {
			r.Use(httprate.Limit(s.submitLimit, time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, req *http.Request) {
					renderError(w, "Too many requests. Please wait a moment and try again.", http.StatusTooManyRequests)
				})))
		}
		r.Post("/", s.HandleSubmit)
	})
	r.Get("/healthz", health.Check(p))
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// Wait blocks until every background request has settled.
func (s *Server) Wait() {
	s.wg.Wait()
}

func renderError(w http.ResponseWriter, message string, status int) {
	tmpl, err := templates.ParseTemplates("base.html", "error.html")
	if err != nil {
		slog.Error("Failed to parse error template", slog.Any("error", err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "base", errorData{Message: message}); err != nil {
		slog.Error("Failed to execute error template", slog.Any("error", err))
	}
}

// HandleHome renders the form, its error and the current results. While a
// request is loading the page refreshes itself until it settles.
func (s *Server) HandleHome(w http.ResponseWriter, req *http.Request) {
	snap := s.state.Snapshot()
	data := pageData{
		Draft:        s.form.Draft(),
		MovieTypes:   models.MovieTypes,
		ReleasePrefs: models.ReleasePrefs,
		Error:        s.form.Error(),
		Loading:      snap.Loading(),
		Refresh:      snap.Loading(),
		View:         presenter.Render(snap.Movies, snap.Loading()),
	}

	tmpl, err := templates.ParseTemplates("base.html", "home.html")
	if err != nil {
		slog.Error("Failed to parse template", slog.Any("error", err))
		renderError(w, "Something went wrong while loading the page.", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		slog.Error("Failed to execute template", slog.Any("error", err))
		renderError(w, "Something went wrong while displaying the page.", http.StatusInternalServerError)
	}
}

// HandleSubmit copies the posted fields into the draft and starts a request.
// The request runs in the background; the browser is sent back to the form,
// which shows the loading view until the result lands.
func (s *Server) HandleSubmit(w http.ResponseWriter, req *http.Request) {
	if err := req.ParseForm(); err != nil {
		renderError(w, "We couldn't read the submitted form.", http.StatusBadRequest)
		return
	}

	for _, field := range []string{recommend.FieldDescription, recommend.FieldMovieType, recommend.FieldReleasePref} {
		if _, ok := req.PostForm[field]; !ok {
			continue
		}
		if err := s.form.UpdateField(field, req.PostForm.Get(field)); err != nil {
			slog.Error("Failed to update field", slog.String("field", field), slog.Any("error", err))
		}
	}

	sub, err := s.form.Start()
	switch {
	case errors.Is(err, recommend.ErrInFlight):
		slog.Debug("Ignored submit while loading")
	case err != nil:
		// The form already carries the message to show.
	default:
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.form.Finish(sub.Run(s.ctx))
		}()
	}

	http.Redirect(w, req, "/", http.StatusSeeOther)
}

// Routes lists the mounted routes, for startup logging.
func Routes(r http.Handler) []string {
	var out []string
	routes, ok := r.(chi.Routes)
	if !ok {
		return nil
	}
	_ = chi.Walk(routes, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		out = append(out, method+" "+route)
		return nil
	})
	return out
}
