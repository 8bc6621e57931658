package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/examsecure/examsecure-backend/internal/middleware"
	"github.com/examsecure/examsecure-backend/internal/response"
	"github.com/examsecure/examsecure-backend/internal/session"
	ws "github.com/examsecure/examsecure-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler runs live exam sessions over WebSocket: one connection drives
// one student's attempt through the session manager.
type WSHandler struct {
	manager   *session.Manager
	threshold int
	log       zerolog.Logger
	upgrader  websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(manager *session.Manager, warningThreshold int, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		manager:   manager,
		threshold: warningThreshold,
		log:       log.With().Str("component", "ws_handler").Logger(),
		upgrader:  buildUpgrader(allowedOrigins),
	}
}

// wsConn serializes writes; the session watcher and the read loop both push
// frames.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsConn) write(v interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return ws.WriteTyped(w.conn, v)
}

func (w *wsConn) writeError(err error) {
	_, code := response.MapDomainError(err)
	w.mu.Lock()
	defer w.mu.Unlock()
	ws.WriteError(w.conn, string(code), response.GetMessage(code))
}

// SessionStream godoc
// WS /ws/v1/student/exams/:exam_id/session
// Starts or resumes the student's attempt and serves the action protocol
// until the attempt is submitted or the connection drops.
func (h *WSHandler) SessionStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid exam ID"})
		return
	}

	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer raw.Close()
	conn := &wsConn{conn: raw}

	studentID := claims.UserID
	wsLog := h.log.With().
		Int("student_id", studentID).
		Str("exam_id", examID.String()).
		Logger()

	engine, info, err := h.manager.Start(c.Request.Context(), examID, studentID)
	if err != nil {
		wsLog.Warn().Err(err).Msg("Session start refused")
		conn.writeError(err)
		return
	}
	defer h.manager.Release(examID, studentID, engine)

	wsLog.Info().
		Str("attempt_id", info.Attempt.ID.String()).
		Bool("resumed", info.Resumed).
		Msg("Session connected")

	if err := conn.write(ws.StartedResponse{Event: ws.EventStarted, Session: info}); err != nil {
		return
	}

	// Push the final outcome when the session ends without the student
	// asking: timer expiry or the violation threshold.
	watchCtx, cancelWatch := context.WithCancel(context.Background())
	defer cancelWatch()
	go h.watchDone(watchCtx, engine, conn, wsLog)

	h.readLoop(c.Request.Context(), engine, conn, wsLog)
}

func (h *WSHandler) watchDone(ctx context.Context, engine *session.Engine, conn *wsConn, wsLog zerolog.Logger) {
	select {
	case <-ctx.Done():
		return
	case <-engine.Done():
	}
	res, err := engine.Result(ctx)
	if err != nil {
		return
	}
	// A student-initiated submit is acknowledged by the read loop.
	if !res.Attempt.AutoSubmitted {
		return
	}
	conn.write(ws.SubmittedResponse{
		Event:         ws.EventSubmitted,
		AutoSubmitted: res.Attempt.AutoSubmitted,
		Reason:        res.Reason,
		Summary:       res.Summary,
	})
	wsLog.Info().Str("reason", res.Reason).Msg("Final result pushed")
}

func (h *WSHandler) readLoop(ctx context.Context, engine *session.Engine, conn *wsConn, wsLog zerolog.Logger) {
	for {
		data, err := ws.Read(conn.conn)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		var envelope ws.RequestEnvelope
		if err := json.Unmarshal(data, &envelope); err != nil {
			conn.writeError(session.ErrInvalidInput)
			continue
		}

		switch envelope.Action {
		case ws.ActionAnswer:
			var req ws.AnswerRequest
			if err := json.Unmarshal(data, &req); err != nil {
				conn.writeError(session.ErrInvalidInput)
				continue
			}
			if err := engine.SaveAnswer(ctx, req.Index, req.Answer); err != nil {
				conn.writeError(err)
				continue
			}
			conn.write(ws.SavedResponse{Event: ws.EventSaved, Index: req.Index})

		case ws.ActionClear:
			var req ws.ClearRequest
			if err := json.Unmarshal(data, &req); err != nil {
				conn.writeError(session.ErrInvalidInput)
				continue
			}
			if err := engine.ClearAnswer(ctx, req.Index); err != nil {
				conn.writeError(err)
				continue
			}
			conn.write(ws.SavedResponse{Event: ws.EventSaved, Index: req.Index})

		case ws.ActionMarkReview:
			var req ws.MarkReviewRequest
			if err := json.Unmarshal(data, &req); err != nil {
				conn.writeError(session.ErrInvalidInput)
				continue
			}
			if err := engine.MarkForReview(ctx, req.Index); err != nil {
				conn.writeError(err)
				continue
			}
			conn.write(ws.SavedResponse{Event: ws.EventSaved, Index: req.Index})

		case ws.ActionGoto:
			var req ws.GotoRequest
			if err := json.Unmarshal(data, &req); err != nil {
				conn.writeError(session.ErrInvalidInput)
				continue
			}
			if err := engine.Goto(ctx, req.Index); err != nil {
				conn.writeError(err)
				continue
			}
			conn.write(ws.SavedResponse{Event: ws.EventSaved, Index: req.Index})

		case ws.ActionNext:
			if err := engine.Next(ctx); err != nil {
				conn.writeError(err)
				continue
			}
			h.pushOverview(ctx, engine, conn)

		case ws.ActionPrevious:
			if err := engine.Previous(ctx); err != nil {
				conn.writeError(err)
				continue
			}
			h.pushOverview(ctx, engine, conn)

		case ws.ActionOverview:
			h.pushOverview(ctx, engine, conn)

		case ws.ActionViolation:
			var req ws.ViolationRequest
			if err := json.Unmarshal(data, &req); err != nil {
				conn.writeError(session.ErrInvalidInput)
				continue
			}
			count, err := engine.ReportViolation(ctx, req.Payload)
			if err != nil {
				conn.writeError(err)
				continue
			}
			conn.write(ws.WarningResponse{
				Event:        ws.EventWarning,
				WarningCount: count,
				Threshold:    h.threshold,
			})

		case ws.ActionSubmit:
			res, err := engine.Submit(ctx)
			if err != nil {
				conn.writeError(err)
				continue
			}
			conn.write(ws.SubmittedResponse{
				Event:         ws.EventSubmitted,
				AutoSubmitted: false,
				Reason:        res.Reason,
				Summary:       res.Summary,
			})

		case ws.ActionPing:
			conn.write(ws.PongResponse{Event: ws.EventPong})

		default:
			wsLog.Warn().Str("action", string(envelope.Action)).Msg("Unknown action")
			conn.write(ws.ErrorResponse{
				Event: ws.EventError,
				Error: "unknown action: " + string(envelope.Action),
			})
		}
	}
}

func (h *WSHandler) pushOverview(ctx context.Context, engine *session.Engine, conn *wsConn) {
	ov, err := engine.Overview(ctx)
	if err != nil {
		conn.writeError(err)
		return
	}
	conn.write(ws.OverviewResponse{Event: ws.EventOverview, Overview: ov})
}
