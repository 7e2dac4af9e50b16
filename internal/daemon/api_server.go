package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"dit/internal/api"
	"dit/internal/config"
	"dit/internal/keyer"
	"dit/internal/logging"
	"dit/internal/morse"
	"dit/internal/queue"
)

const (
	defaultLogLimit = 200
	logFollowWait   = 25 * time.Second
)

type apiServer struct {
	cfg      *config.Config
	bind     string
	logger   *slog.Logger
	daemon   *Daemon
	queueSvc *api.QueueService
	limiter  *rate.Limiter

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		cfg:      cfg,
		bind:     strings.TrimSpace(cfg.Paths.APIBind),
		logger:   logger,
		daemon:   d,
		queueSvc: api.NewQueueService(d.store),
	}
	if cfg.API.RequestsPerSecond > 0 {
		srv.limiter = rate.NewLimiter(rate.Limit(cfg.API.RequestsPerSecond), max(cfg.API.Burst, 1))
	}

	token := cfg.Paths.APIToken
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", authMiddleware(token, srv.handlePing))
	mux.HandleFunc("GET /status", authMiddleware(token, srv.handleStatus))
	mux.HandleFunc("GET /speed", authMiddleware(token, srv.rateLimited(srv.handleSpeed)))
	mux.HandleFunc("GET /morse", authMiddleware(token, srv.rateLimited(srv.handleMorse)))
	mux.HandleFunc("GET /render", authMiddleware(token, srv.handleRender))
	mux.HandleFunc("GET /api/status", authMiddleware(token, srv.handleDaemonStatus))
	mux.HandleFunc("GET /api/queue", authMiddleware(token, srv.handleQueue))
	mux.HandleFunc("GET /api/queue/{id}", authMiddleware(token, srv.handleQueueJob))
	mux.HandleFunc("GET /api/logs", authMiddleware(token, srv.handleLogs))
	mountWebUI(mux)

	srv.server = &http.Server{
		Handler:           srv.withRequestContext(mux),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *apiServer) start(ctx context.Context) error {
	if s.bind == "" {
		return errors.New("api bind address is empty")
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handlePing(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, api.OKResponse{OK: true})
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, api.FromStatusSummary(s.daemon.workflow.Status(r.Context())))
}

func (s *apiServer) handleSpeed(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if !query.Has("value") {
		s.writeJSON(w, http.StatusOK, s.speedResponse(s.daemon.workflow.Speed(r.Context())))
		return
	}
	speed, err := s.daemon.workflow.SetSpeed(r.Context(), query.Get("value"))
	switch {
	case errors.Is(err, keyer.ErrBadSpeed):
		s.writeError(w, http.StatusOK, api.ErrCodeBadSpeed, "")
	case err != nil:
		s.writeInternal(w, r, err)
	default:
		s.writeJSON(w, http.StatusOK, s.speedResponse(speed))
	}
}

func (s *apiServer) speedResponse(speed int) api.SpeedResponse {
	return api.SpeedResponse{
		OK:            true,
		Speed:         speed,
		Min:           s.cfg.Keyer.MinSpeed,
		Max:           s.cfg.Keyer.MaxSpeed,
		MaxTextLength: s.cfg.Keyer.MaxTextLength,
	}
}

func (s *apiServer) handleMorse(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	requestID, _ := logging.RequestIDFromContext(r.Context())
	sub, err := s.daemon.workflow.Submit(r.Context(), query.Get("data"), query.Get("speed"), requestID)
	switch {
	case errors.Is(err, keyer.ErrEmptyText):
		s.writeError(w, http.StatusOK, api.ErrCodeEmpty, "")
	case errors.Is(err, keyer.ErrTooLong):
		s.writeError(w, http.StatusOK, api.ErrCodeTooLong, fmt.Sprintf("limit is %d characters", s.cfg.Keyer.MaxTextLength))
	case err != nil:
		s.writeInternal(w, r, err)
	default:
		s.writeJSON(w, http.StatusOK, api.FromSubmission(sub))
	}
}

func (s *apiServer) handleRender(w http.ResponseWriter, r *http.Request) {
	text := strings.ReplaceAll(r.URL.Query().Get("text"), "\r", "")
	if limit := s.cfg.Keyer.MaxTextLength; limit > 0 && len([]rune(text)) > limit {
		s.writeError(w, http.StatusOK, api.ErrCodeTooLong, fmt.Sprintf("limit is %d characters", limit))
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromTranscription(text, morse.Render(text)))
}

func (s *apiServer) handleDaemonStatus(w http.ResponseWriter, r *http.Request) {
	status := s.daemon.Status(r.Context())
	counts := api.MergeQueueStats(status.Workflow.QueueStats)
	s.writeJSON(w, http.StatusOK, api.DaemonStatus{
		Running:      status.Running,
		PID:          status.PID,
		Address:      status.Address,
		QueueDBPath:  status.QueueDBPath,
		LockFilePath: status.LockFilePath,
		LogPath:      status.LogPath,
		Keyer:        api.FromStatusSummary(status.Workflow),
		QueueStats:   counts,
	})
}

func (s *apiServer) handleQueue(w http.ResponseWriter, r *http.Request) {
	var statuses []queue.Status
	for _, value := range r.URL.Query()["status"] {
		if status, ok := queue.ParseStatus(value); ok {
			statuses = append(statuses, status)
		}
	}

	jobs, err := s.queueSvc.List(r.Context(), statuses...)
	if err != nil {
		s.writeInternal(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.JobListResponse{Jobs: jobs})
}

func (s *apiServer) handleQueueJob(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, api.ErrCodeBadRequest, "invalid job id")
		return
	}
	job, err := s.queueSvc.Describe(r.Context(), id)
	if err != nil {
		s.writeInternal(w, r, err)
		return
	}
	if job == nil {
		s.writeError(w, http.StatusNotFound, api.ErrCodeNotFound, "job not found")
		return
	}
	s.writeJSON(w, http.StatusOK, api.JobResponse{Job: *job})
}

func (s *apiServer) handleLogs(w http.ResponseWriter, r *http.Request) {
	hub := s.daemon.LogStream()
	if hub == nil {
		s.writeJSON(w, http.StatusOK, api.LogStreamResponse{Events: []logging.LogEvent{}})
		return
	}

	query := r.URL.Query()
	since, _ := strconv.ParseUint(query.Get("since"), 10, 64)
	limit, _ := strconv.Atoi(query.Get("limit"))
	if limit <= 0 {
		limit = defaultLogLimit
	}
	follow := query.Get("follow") == "1" || strings.EqualFold(query.Get("follow"), "true")
	tail := query.Get("tail") == "1" || strings.EqualFold(query.Get("tail"), "true")

	var filterJob int64
	if value := strings.TrimSpace(query.Get("job")); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			filterJob = parsed
		}
	}
	component := strings.TrimSpace(query.Get("component"))

	var (
		events []logging.LogEvent
		next   uint64
	)
	if tail && since == 0 && !follow {
		events, next = hub.Tail(limit)
	} else {
		ctx, cancel := context.WithTimeout(r.Context(), logFollowWait)
		defer cancel()
		var err error
		events, next, err = hub.Fetch(ctx, since, limit, follow)
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			s.writeInternal(w, r, err)
			return
		}
	}

	filtered := make([]logging.LogEvent, 0, len(events))
	for _, evt := range events {
		if filterJob != 0 && evt.JobID != filterJob {
			continue
		}
		if component != "" && !strings.EqualFold(component, evt.Component) {
			continue
		}
		filtered = append(filtered, evt)
	}
	s.writeJSON(w, http.StatusOK, api.LogStreamResponse{Events: filtered, Next: next})
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, code, detail string) {
	s.writeJSON(w, status, api.ErrorResponse{OK: false, Error: code, Detail: detail})
}

func (s *apiServer) writeInternal(w http.ResponseWriter, r *http.Request, err error) {
	logging.ErrorWithContext(logging.WithContext(r.Context(), s.log()), "request failed", "api_request_failed",
		logging.String("path", r.URL.Path),
		logging.Error(err),
	)
	s.writeError(w, http.StatusInternalServerError, api.ErrCodeInternal, err.Error())
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String(logging.FieldComponent, "api-server"))
	}
	return logging.NewNop()
}
