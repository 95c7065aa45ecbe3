package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"

	"github.com/jrennick/gambit/internal/broker"
	"github.com/jrennick/gambit/internal/middleware"
)

// GameWSHandler upgrades the connection to WebSocket for one game and streams
// state events to the client until it disconnects. The socket is one-way:
// clients act through the REST endpoints and listen here, so a dropped frame
// costs nothing a refetch can't recover.
func (s *Server) GameWSHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := gameID(w, r)
	if !ok {
		return
	}

	g, err := s.Engine.Game(r.Context(), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	// Identity must be resolved before the upgrade: a guest cookie can only
	// be set while we still control the response headers.
	userID, err := s.EnsureIdentity(w, r)
	if err != nil {
		s.Log.Warnf("ws auth failed for game %s: %v", id, err)
		http.Error(w, "authentication failed", http.StatusForbidden)
		return
	}

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols:   []string{"game"},
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.Log.Warnf("websocket accept error for game %s: %v", id, err)
		return
	}
	defer c.Close(websocket.StatusInternalError, "handler exit")

	if c.Subprotocol() != "game" {
		c.Close(websocket.StatusPolicyViolation, "client must use the 'game' subprotocol")
		return
	}
	middleware.LogWebSocketConnect(s.Log, r.RemoteAddr, r.URL.Path)

	sub := s.Registry.Subscribe(id, userID)
	defer s.Registry.Unsubscribe(sub)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Initial full-state frame so the client never depends on having been
	// subscribed before the latest update.
	if frame, merr := broker.EventFromRecord(broker.EventRefetch, g).Marshal(); merr == nil {
		if werr := s.writeFrame(ctx, c, frame); werr != nil {
			middleware.LogWebSocketDisconnect(s.Log, r.RemoteAddr, r.URL.Path, werr)
			return
		}
	}

	// Drain incoming messages so pings and close frames are processed; any
	// payload other than a close is ignored.
	go func() {
		for {
			if _, _, rerr := c.Read(ctx); rerr != nil {
				cancel()
				return
			}
		}
	}()

	err = s.writeLoop(ctx, c, sub.Send())
	middleware.LogWebSocketDisconnect(s.Log, r.RemoteAddr, r.URL.Path, err)
	c.Close(websocket.StatusNormalClosure, "")
}

// writeLoop forwards fanout frames to the client and paces heartbeats.
func (s *Server) writeLoop(ctx context.Context, c *websocket.Conn, frames <-chan []byte) error {
	interval := s.PingInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case frame, ok := <-frames:
			if !ok {
				return nil
			}
			if err := s.writeFrame(ctx, c, frame); err != nil {
				return err
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				return err
			}
		}
	}
}

func (s *Server) writeFrame(ctx context.Context, c *websocket.Conn, frame []byte) error {
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err := c.Write(writeCtx, websocket.MessageText, frame)
	if err != nil {
		status := websocket.CloseStatus(err)
		if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway &&
			!strings.Contains(err.Error(), "context deadline exceeded") {
			s.Log.Warnf("websocket write error: %v", err)
		}
	}
	return err
}
