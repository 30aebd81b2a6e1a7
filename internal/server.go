package internal

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

// NewRouter exposes the app under /api.
func NewRouter(app *App, logger *zap.Logger) http.Handler {
	s := &server{app: app, logger: orNop(logger)}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.Status)
		r.Post("/initialize", s.Initialize)
		r.Get("/similar", s.Similar)
		r.Get("/projection", s.Projection)
		r.Get("/dependencies", s.Dependencies)
	})
	return r
}

type server struct {
	app    *App
	logger *zap.Logger
}

type ErrResponse struct {
	Err            error `json:"-"`
	HTTPStatusCode int   `json:"-"`

	StatusText string    `json:"status"`
	Kind       ErrorKind `json:"kind,omitempty"`
	ErrorText  string    `json:"error,omitempty"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func ErrInvalidRequest(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
	}
}

// ErrFromPipeline maps a pipeline error to a response by its kind.
func ErrFromPipeline(err error) render.Renderer {
	kind := KindOf(err)
	resp := &ErrResponse{Err: err, Kind: kind, ErrorText: err.Error()}

	switch kind {
	case KindNotInitialized:
		resp.HTTPStatusCode = http.StatusServiceUnavailable
		resp.StatusText = "Model not initialized."
	case KindResourceUnavailable:
		resp.HTTPStatusCode = http.StatusBadGateway
		resp.StatusText = "Resource unavailable."
	case KindTrainingFailure:
		resp.HTTPStatusCode = http.StatusInternalServerError
		resp.StatusText = "Training failed."
	case KindCanceled:
		resp.HTTPStatusCode = http.StatusServiceUnavailable
		resp.StatusText = "Request canceled."
	default:
		resp.HTTPStatusCode = http.StatusInternalServerError
		resp.StatusText = "Internal error."
	}
	return resp
}

func (s *server) Status(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, s.app.Status())
}

func (s *server) Initialize(w http.ResponseWriter, r *http.Request) {
	if _, err := s.app.Initialize(r.Context()); err != nil {
		render.Render(w, r, ErrFromPipeline(err))
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, s.app.Status())
}

func (s *server) Similar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	word := strings.ToLower(strings.TrimSpace(q.Get("word")))
	if word == "" {
		render.Render(w, r, ErrInvalidRequest(errors.New("word is required")))
		return
	}
	k, err := intParam(q.Get("k"), 0)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(fmt.Errorf("k: %w", err)))
		return
	}
	approx := false
	if v := q.Get("approx"); v != "" {
		if approx, err = strconv.ParseBool(v); err != nil {
			render.Render(w, r, ErrInvalidRequest(fmt.Errorf("approx: %w", err)))
			return
		}
	}

	var res SimilarityResult
	if approx {
		res, err = s.app.SimilarApprox(word, k)
	} else {
		res, err = s.app.Similar(word, k)
	}
	if err != nil {
		render.Render(w, r, ErrFromPipeline(err))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, res)
}

func (s *server) Projection(w http.ResponseWriter, r *http.Request) {
	topN, err := intParam(r.URL.Query().Get("top_n"), 0)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(fmt.Errorf("top_n: %w", err)))
		return
	}

	res, err := s.app.Project(r.Context(), topN)
	if err != nil {
		render.Render(w, r, ErrFromPipeline(err))
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, res)
}

func (s *server) Dependencies(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, Dependencies())
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)),
		)
	})
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("must be positive, got %d", n)
	}
	return n, nil
}
