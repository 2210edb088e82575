package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"lm500_emulator/internal/logger"
	"lm500_emulator/internal/models"
	"lm500_emulator/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait       = 10 * time.Second
	pongWait        = 60 * time.Second
	pingPeriod      = (pongWait * 9) / 10
	maxMsgSize      = 1 << 12
	defaultInterval = time.Second
	maxInterval     = 10 * time.Second
)

// Message types on /ws.
const (
	msgState      = "state"
	msgTransition = "transition"
	msgSettled    = "settled"
)

type wsEnvelope struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// TransitionMessage reports a fill machine state change seen between two polls.
type TransitionMessage struct {
	From       string  `json:"from"`
	To         string  `json:"to"`
	SimSeconds float64 `json:"sim_seconds"`
}

// SettledMessage reports a channel whose fill stopped between two polls.
type SettledMessage struct {
	Channel int    `json:"channel"`
	Status  string `json:"status"` // Off | Timeout
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// @Summary      Stream instrument state
// @Description  Upgrades to a WebSocket. Every interval (default 1s, max 10s) the server polls the instrument
// @Description  and pushes {"type":"transition"} and {"type":"settled"} messages for changes since the last
// @Description  poll, followed by {"type":"state","data":LevelState}.
// @Tags         device
// @Param        interval     query  string  false  "Go duration, e.g. 500ms"
// @Param        interval_ms  query  int     false  "Interval in milliseconds"
// @Router       /ws [get]
func (h *Handler) wsConnect(c *gin.Context) {
	interval := h.parseInterval(c)
	log := h.log
	if log == nil {
		log = logger.Nop()
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Errorw("ws_upgrade_failed", "err", err)
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	closed := make(chan struct{})
	go drain(conn, closed, log)

	stream := &stateStream{conn: conn, mon: h.services.Monitoring}
	ctx := c.Request.Context()
	if err := stream.push(ctx); err != nil {
		log.Infow("ws_initial_push_failed", "err", err)
		return
	}

	poll := time.NewTicker(interval)
	defer poll.Stop()
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			return
		case <-ctx.Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Infow("ws_ping_failed", "err", err)
				return
			}
		case <-poll.C:
			if err := stream.push(ctx); err != nil {
				log.Infow("ws_push_failed", "err", err)
				return
			}
		}
	}
}

// parseInterval reads ?interval=2s, falling back to ?interval_ms=2000.
// Values outside (0, maxInterval] are ignored.
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	inRange := func(d time.Duration) bool { return d > 0 && d <= maxInterval }

	if d, err := time.ParseDuration(c.Query("interval")); err == nil && inRange(d) {
		return d
	}
	if ms, err := strconv.Atoi(c.Query("interval_ms")); err == nil {
		if d := time.Duration(ms) * time.Millisecond; inRange(d) {
			return d
		}
	}
	return defaultInterval
}

// drain consumes client frames so pongs and close frames are processed.
func drain(conn *websocket.Conn, closed chan<- struct{}, log *logger.Logger) {
	defer close(closed)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			log.Infow("ws_read_closed", "err", err)
			return
		}
	}
}

// stateStream remembers the last snapshot sent to one client.
type stateStream struct {
	conn *websocket.Conn
	mon  service.Monitoring
	prev *models.LevelState
}

func (s *stateStream) push(ctx context.Context) error {
	st, err := s.mon.GetState(ctx)
	if err != nil {
		return fmt.Errorf("get state: %w", err)
	}

	var msgs []wsEnvelope
	if s.prev != nil {
		msgs = stateChanges(*s.prev, st)
	}
	msgs = append(msgs, wsEnvelope{Type: msgState, Data: st})
	s.prev = &st

	for _, m := range msgs {
		_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := s.conn.WriteJSON(m); err != nil {
			return err
		}
	}
	return nil
}

// stateChanges lists the transition and settlements implied by going from
// prev to next. A fill that stops and restarts within one poll is not seen.
func stateChanges(prev, next models.LevelState) []wsEnvelope {
	var out []wsEnvelope
	if prev.FillState != next.FillState {
		out = append(out, wsEnvelope{Type: msgTransition, Data: TransitionMessage{
			From:       prev.FillState,
			To:         next.FillState,
			SimSeconds: next.SimSeconds,
		}})
	}
	for i, ch := range next.Channels {
		if i >= len(prev.Channels) || !prev.Channels[i].Filling || ch.Filling {
			continue
		}
		out = append(out, wsEnvelope{Type: msgSettled, Data: SettledMessage{
			Channel: ch.Channel,
			Status:  ch.FillStatus,
		}})
	}
	return out
}
