package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"autotex/internal/annocache"
	"autotex/internal/compiler"
	"autotex/internal/config"
	"autotex/internal/logging"
	"autotex/internal/texlog"
)

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

type statusResponse struct {
	Running            bool   `json:"running"`
	CacheDBPath        string `json:"cache_db_path,omitempty"`
	CacheEntries       int64  `json:"cache_entries"`
	LockFilePath       string `json:"lock_file_path"`
	CompilerConfigured bool   `json:"compiler_configured"`
}

type compileResponse struct {
	SubmissionID string `json:"submission_id"`
	Checksum     string `json:"checksum"`
	Status       string `json:"status"`
	Reason       string `json:"reason,omitempty"`
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	if cfg == nil || d == nil {
		return nil, nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	srv := &apiServer{
		bind:   bind,
		logger: logger,
		daemon: d,
	}

	token := strings.TrimSpace(cfg.Paths.APIToken)
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", authMiddleware(token, srv.handleStatus))
	mux.HandleFunc("/api/submissions/", authMiddleware(token, srv.handleSubmission))

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

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

	s.log().Info("api server listening", slog.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status(r.Context())
	s.writeJSON(w, http.StatusOK, statusResponse{
		Running:            status.Running,
		CacheDBPath:        status.CacheDBPath,
		CacheEntries:       status.CacheEntries,
		LockFilePath:       status.LockFilePath,
		CompilerConfigured: status.CompilerConfigured,
	})
}

// handleSubmission routes /api/submissions/{id}/{compile|status|log|preview}.
func (s *apiServer) handleSubmission(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/submissions/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" {
		s.writeError(w, http.StatusNotFound, "submission not found")
		return
	}

	submissionID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid submission id")
		return
	}
	checksum := strings.TrimSpace(r.URL.Query().Get("checksum"))
	if checksum == "" {
		s.writeError(w, http.StatusBadRequest, "checksum query parameter is required")
		return
	}

	logger := s.log().With(
		slog.String("request_id", uuid.NewString()),
		slog.Int64("submission_id", submissionID),
	)

	switch parts[1] {
	case "compile":
		s.handleCompile(w, r, logger, submissionID, checksum)
	case "status":
		s.handleCompileStatus(w, r, submissionID, checksum)
	case "log":
		s.handleLog(w, r, logger, submissionID, checksum)
	case "preview":
		s.handlePreview(w, r, submissionID, checksum)
	default:
		s.writeError(w, http.StatusNotFound, "submission not found")
	}
}

func (s *apiServer) handleCompile(w http.ResponseWriter, r *http.Request, logger *slog.Logger, submissionID int64, checksum string) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	task, err := s.daemon.compiler.Start(r.Context(), formatSubmissionID(submissionID), checksum)
	if err != nil {
		s.writeCompilerError(w, err)
		return
	}
	logger.Info("compilation requested", slog.String("status", string(task.Status)))
	s.writeJSON(w, http.StatusAccepted, taskResponse(task))
}

func (s *apiServer) handleCompileStatus(w http.ResponseWriter, r *http.Request, submissionID int64, checksum string) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	task, err := s.daemon.compiler.Status(r.Context(), formatSubmissionID(submissionID), checksum)
	if err != nil {
		s.writeCompilerError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, taskResponse(task))
}

// handleLog serves the annotated compilation transcript. Finished
// compilations are annotated once and cached; an in-progress compilation
// reports its state as JSON instead.
func (s *apiServer) handleLog(w http.ResponseWriter, r *http.Request, logger *slog.Logger, submissionID int64, checksum string) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ctx := r.Context()
	sourceID := formatSubmissionID(submissionID)

	task, err := s.daemon.compiler.Status(ctx, sourceID, checksum)
	if err != nil {
		s.writeCompilerError(w, err)
		return
	}
	if task.Status == compiler.StatusInProgress {
		s.writeJSON(w, http.StatusOK, taskResponse(task))
		return
	}

	if s.daemon.store != nil {
		entry, err := s.daemon.store.Get(ctx, sourceID, checksum, string(task.Status))
		if err == nil {
			s.writeHTML(w, entry.HTML)
			return
		}
		if !errors.Is(err, annocache.ErrNotFound) {
			logger.Warn("annotation cache read failed", logging.Error(err))
		}
	}

	raw, err := s.daemon.compiler.Log(ctx, sourceID, checksum)
	if err != nil {
		s.writeCompilerError(w, err)
		return
	}

	annotated := s.daemon.annotator.Annotate(raw, submissionID, annotationStatus(task.Status))
	if s.daemon.store != nil {
		if err := s.daemon.store.Put(ctx, sourceID, checksum, string(task.Status), annotated); err != nil {
			logger.Warn("annotation cache write failed", logging.Error(err))
		}
	}
	logger.Info("annotated log served", slog.String("status", string(task.Status)))
	s.writeHTML(w, annotated)
}

func (s *apiServer) handlePreview(w http.ResponseWriter, r *http.Request, submissionID int64, checksum string) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	body, contentType, err := s.daemon.compiler.Preview(r.Context(), formatSubmissionID(submissionID), checksum)
	if err != nil {
		s.writeCompilerError(w, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		s.log().Warn("preview stream interrupted", logging.Error(err))
	}
}

// annotationStatus maps the compiler task state onto the annotator's
// succeeded/failed distinction.
func annotationStatus(status compiler.TaskStatus) texlog.Status {
	if status == compiler.StatusSucceeded {
		return texlog.StatusSucceeded
	}
	return texlog.StatusFailed
}

func formatSubmissionID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func taskResponse(task *compiler.Compilation) compileResponse {
	return compileResponse{
		SubmissionID: task.SourceID,
		Checksum:     task.Checksum,
		Status:       string(task.Status),
		Reason:       task.Reason,
	}
}

func (s *apiServer) writeCompilerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, compiler.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "submission not found")
	case errors.Is(err, compiler.ErrUnavailable):
		s.writeError(w, http.StatusServiceUnavailable, "compiler service not configured")
	case errors.Is(err, compiler.ErrTransient):
		s.writeError(w, http.StatusBadGateway, "compiler service unavailable, retry later")
	default:
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *apiServer) writeHTML(w http.ResponseWriter, html string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, html); err != nil {
		s.log().Error("failed to write response", logging.Error(err))
	}
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

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(slog.String("component", "api-server"))
	}
	return logging.NewNop()
}
