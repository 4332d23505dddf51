package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/kapu/member-directory-go/internal/config"
	"github.com/kapu/member-directory-go/internal/constants"
	"github.com/kapu/member-directory-go/internal/sanitize"
	"github.com/kapu/member-directory-go/internal/service"
	"go.uber.org/zap"
)

// Server exposes the directory as a JSON API plus a WebSocket view session.
// It renders nothing itself; clients receive view state and own presentation.
type Server struct {
	cfg        *config.Config
	directory  *service.Directory
	logger     *zap.Logger
	httpServer *http.Server
}

func NewServer(cfg *config.Config, directory *service.Directory, logger *zap.Logger) *Server {
	s := &Server{
		cfg:       cfg,
		directory: directory,
		logger:    logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/lists", s.handleLists)
	mux.HandleFunc("GET /api/profiles", s.handleProfiles)
	mux.HandleFunc("GET /ws", s.handleWS)

	s.httpServer = &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      mux,
		ReadTimeout:  constants.ServerConfig.ReadTimeout,
		WriteTimeout: constants.ServerConfig.WriteTimeout,
	}
	return s
}

// Start serves until the context is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", zap.String("addr", s.cfg.Server.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleLists never fails outward: enumeration errors already degraded to
// the sentinel option inside the directory service.
func (s *Server) handleLists(w http.ResponseWriter, r *http.Request) {
	options := s.directory.ListOptions(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"options": options})
}

func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	listID := r.URL.Query().Get("list")
	if listID == "" {
		listID = s.cfg.Source.PrimaryListID
	}
	imageListID := r.URL.Query().Get("imageList")
	if imageListID == "" {
		imageListID = s.cfg.Source.ImageListID
	}

	profiles, err := s.directory.Load(r.Context(), listID, imageListID)
	if err != nil {
		s.logger.Error("Profile load failed",
			zap.String("list_id", listID),
			zap.Error(err),
		)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "failed to load profiles"})
		return
	}

	// Rich text is sanitized at every boundary it could be injected from.
	for i := range profiles {
		profiles[i].DetailsHTML = sanitize.HTML(profiles[i].DetailsHTML)
	}

	writeJSON(w, http.StatusOK, map[string]any{"profiles": profiles, "total": len(profiles)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
