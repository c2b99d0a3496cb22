// Package web serves the prediction form and a JSON endpoint on top of a loaded
// predictor.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ezoic/houseprice/config"
	"github.com/ezoic/houseprice/dataset"
	"github.com/ezoic/houseprice/housing"
	hpErrors "github.com/ezoic/houseprice/pkg/errors"
	"github.com/ezoic/houseprice/pkg/log"
)

// Predictor prices one house from raw column values.
type Predictor interface {
	Schema() dataset.Schema
	Predict(ctx context.Context, values map[string]string) (housing.Prediction, error)
}

// Server exposes a Predictor over HTTP. Handlers keep no per-request state.
type Server struct {
	predictor Predictor
	cfg       config.ServerConfig
	logger    log.Logger
	handler   http.Handler
}

// NewServer builds the routes for p.
func NewServer(p Predictor, cfg config.ServerConfig) *Server {
	s := &Server{
		predictor: p,
		cfg:       cfg,
		logger:    log.GetLoggerWithName("web"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.indexHandler)
	mux.HandleFunc("POST /predict", s.formPredictHandler)
	mux.HandleFunc("POST /api/predict", s.apiPredictHandler)
	mux.HandleFunc("GET /healthz", s.healthCheckHandler)
	s.handler = s.withRequestID(mux)
	return s
}

// SetLogger replaces the server's logger.
func (s *Server) SetLogger(l log.Logger) {
	s.logger = l
}

// Handler returns the routed handler, wrapped with request logging.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe listens on the configured address and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down gracefully
// within the configured shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("Server listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("Server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type formField struct {
	ID    string
	Name  string
	Label string
	Value string
	Min   string
	Max   string
}

type pageData struct {
	Fields []formField
	Result *housing.Prediction
	Error  string
}

func (s *Server) fields(values map[string]string) []formField {
	cols := s.predictor.Schema().InputColumns()
	fields := make([]formField, len(cols))
	for i, c := range cols {
		v, ok := values[c.Name]
		if !ok {
			v = c.Default
		}
		fields[i] = formField{
			ID:    "f" + strconv.Itoa(i),
			Name:  c.Name,
			Label: c.DisplayLabel(),
			Value: v,
			Min:   formatBound(c.Min),
			Max:   formatBound(c.Max),
		}
	}
	return fields
}

func formatBound(b *float64) string {
	if b == nil {
		return ""
	}
	return strconv.FormatFloat(*b, 'f', -1, 64)
}

func (s *Server) render(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, data); err != nil {
		s.logger.Error("Template rendering failed", err)
	}
}

// indexHandler handles GET / with the defaults pre-filled.
func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, pageData{Fields: s.fields(nil)})
}

// formPredictHandler handles POST /predict from the HTML form.
func (s *Server) formPredictHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render(w, http.StatusBadRequest, pageData{Fields: s.fields(nil), Error: "invalid form submission"})
		return
	}

	values := make(map[string]string)
	for _, c := range s.predictor.Schema().InputColumns() {
		if r.PostForm.Has(c.Name) {
			values[c.Name] = strings.TrimSpace(r.PostForm.Get(c.Name))
		}
	}

	pred, err := s.predictor.Predict(r.Context(), values)
	if err != nil {
		s.render(w, statusFor(err), pageData{Fields: s.fields(values), Error: userMessage(err)})
		return
	}
	s.render(w, http.StatusOK, pageData{Fields: s.fields(values), Result: &pred})
}

// PredictRequest is the body of POST /api/predict. Values may be JSON strings or
// numbers.
type PredictRequest struct {
	Values map[string]json.RawMessage `json:"values"`
}

// ErrorResponse is returned by the JSON API on failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

// apiPredictHandler handles POST /api/predict.
func (s *Server) apiPredictHandler(w http.ResponseWriter, r *http.Request) {
	var req PredictRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body: " + err.Error()})
		return
	}

	values := make(map[string]string, len(req.Values))
	for name, raw := range req.Values {
		v, err := rawValue(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("value for %q: %v", name, err)})
			return
		}
		values[name] = v
	}

	pred, err := s.predictor.Predict(r.Context(), values)
	if err != nil {
		writeJSON(w, statusFor(err), ErrorResponse{Error: userMessage(err)})
		return
	}
	writeJSON(w, http.StatusOK, pred)
}

// rawValue accepts a JSON string or number and returns its text.
func rawValue(raw json.RawMessage) (string, error) {
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str, nil
	}
	var num json.Number
	if err := json.Unmarshal(raw, &num); err == nil {
		return num.String(), nil
	}
	return "", fmt.Errorf("must be a string or a number")
}

// HealthResponse is the JSON response of GET /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Variant string `json:"variant"`
}

// healthCheckHandler handles GET /healthz. Artifacts are loaded before the server
// starts, so a running server is always healthy.
func (s *Server) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy", Variant: s.predictor.Schema().Variant})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps input errors to 422 and everything else to 500.
func statusFor(err error) int {
	var (
		se *hpErrors.SchemaMismatchError
		ve *hpErrors.ValueError
		re *hpErrors.RangeError
		va *hpErrors.ValidationError
	)
	switch {
	case hpErrors.As(err, &se), hpErrors.As(err, &ve), hpErrors.As(err, &re), hpErrors.As(err, &va):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func userMessage(err error) string {
	if statusFor(err) == http.StatusInternalServerError {
		return "prediction failed"
	}
	return err.Error()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withRequestID tags every request with a UUID, echoes it in X-Request-ID and logs
// the outcome.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r)

		fields := []any{
			log.RequestIDKey, id,
			log.MethodKey, r.Method,
			log.RouteKey, r.URL.Path,
			log.StatusKey, rec.status,
			log.DurationMsKey, time.Since(start).Milliseconds(),
		}
		switch {
		case rec.status >= 500:
			s.logger.Warn("Request failed", fields...)
		case rec.status >= 400:
			s.logger.Info("Request rejected", fields...)
		default:
			s.logger.Debug("Request served", fields...)
		}
	})
}
