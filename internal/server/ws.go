package server

import (
	"context"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/kapu/member-directory-go/internal/constants"
	"github.com/kapu/member-directory-go/internal/view"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// The host portal fronts this service; origin policy is enforced there.
	CheckOrigin: func(*http.Request) bool { return true },
}

// clientEvent is one inbound view event. The event vocabulary mirrors the
// interactions of the card grid: typing in a search slot, changing the cap,
// opening and dismissing the detail overlay, and reporting an image-load
// failure so the cascade can advance.
type clientEvent struct {
	Type      string `json:"type"`
	Person    string `json:"person,omitempty"`
	Details   string `json:"details,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	ID        string `json:"id,omitempty"`
	List      string `json:"list,omitempty"`
	ImageList string `json:"imageList,omitempty"`
}

// wsConn serializes writes; gorilla connections allow one concurrent writer.
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) sendState(state view.State) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(map[string]any{"type": "state", "state": state})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	dpr, _ := strconv.ParseFloat(r.URL.Query().Get("dpr"), 64)

	session := view.NewSession(view.Options{
		SiteBase: s.cfg.Site.URL,
		Title:    s.cfg.View.Title,
		Subtitle: s.cfg.View.Subtitle,
		Accent:   s.cfg.View.AccentColor,
		Limit:    s.cfg.View.ItemsPerPage,
		DPR:      dpr,
	}, s.logger)

	client := &wsConn{conn: conn}
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	listID := s.cfg.Source.PrimaryListID
	imageListID := s.cfg.Source.ImageListID
	s.startLoad(ctx, session, client, listID, imageListID)

	for {
		var event clientEvent
		if err := conn.ReadJSON(&event); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("WebSocket closed", zap.Error(err))
			}
			return
		}

		switch event.Type {
		case "query":
			session.SetQuery(view.Query{Person: event.Person, Details: event.Details})
		case "limit":
			session.SetLimit(event.Limit)
		case "select":
			session.Select(event.ID)
		case "dismiss":
			session.Dismiss()
		case "image-error":
			session.CardImageFailed(event.ID)
		case "detail-image-error":
			session.DetailImageFailed()
		case "source":
			// Changing the source mid-flight bumps the generation; any
			// in-flight load commits against the old one and is discarded.
			listID, imageListID = event.List, event.ImageList
			s.startLoad(ctx, session, client, listID, imageListID)
		default:
			s.logger.Debug("Ignoring unknown view event", zap.String("type", event.Type))
		}

		if err := client.sendState(session.Snapshot()); err != nil {
			s.logger.Debug("WebSocket write failed", zap.Error(err))
			return
		}
	}
}

// startLoad runs one directory load in the background and applies it through
// the session's generation guard.
func (s *Server) startLoad(ctx context.Context, session *view.Session, client *wsConn, listID, imageListID string) {
	generation := session.BeginLoad()
	if err := client.sendState(session.Snapshot()); err != nil {
		return
	}

	go func() {
		loadCtx, cancel := context.WithTimeout(ctx, constants.SourceConfig.RequestTimeout)
		defer cancel()

		items, err := s.directory.Load(loadCtx, listID, imageListID)
		if !session.CompleteLoad(generation, items, err) {
			return
		}
		if err := client.sendState(session.Snapshot()); err != nil {
			s.logger.Debug("WebSocket write failed after load", zap.Error(err))
		}
	}()
}
