package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/DvwN-Lee/OnlineExam-v2/internal/config"
	"github.com/DvwN-Lee/OnlineExam-v2/internal/middleware"
	"github.com/DvwN-Lee/OnlineExam-v2/internal/service"
	ws "github.com/DvwN-Lee/OnlineExam-v2/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowed-origins slice permits all origins (development mode).
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

// WSHandler handles the draft-sync WebSocket channel. Each autosaved answer
// lands in a Redis hash immediately and is queued for merge into the session
// row by the draft worker, so the HTTP save-draft endpoint stays optional
// for clients that use the socket.
type WSHandler struct {
	rdb            *redis.Client
	sessionService *service.SessionService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(rdb *redis.Client, sessionService *service.SessionService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		rdb:            rdb,
		sessionService: sessionService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// DraftStream godoc
// WS /ws/v1/student/exams/:exam_id/draft
// Upgrades to WebSocket for incremental draft autosave.
func (h *WSHandler) DraftStream(c *gin.Context) {
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

	studentID := claims.UserID

	// Only an in-progress attempt may stream drafts.
	if err := h.sessionService.VerifyInProgress(c.Request.Context(), examID, studentID); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "no in-progress attempt for this exam"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	draftKey := config.CacheKey.DraftAnswersKey(examID.String(), studentID)

	wsLog := h.log.With().
		Int("student_id", studentID).
		Str("exam_id", examID.String()).
		Logger()

	wsLog.Info().Msg("Student connected")

	for {
		var msg ws.AutosaveRequest
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			break
		}

		switch msg.Action {
		case ws.ActionAutosave:
			h.handleAutosave(conn, draftKey, studentID, examID, &msg)
		case ws.ActionPing:
			ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			ws.WriteError(conn, "unknown action: "+string(msg.Action))
		}
	}
}

// handleAutosave stores a single answer in Redis and queues it for merge
// into the session row.
func (h *WSHandler) handleAutosave(conn *websocket.Conn, draftKey string, studentID int, examID uuid.UUID, msg *ws.AutosaveRequest) {
	ctx := context.Background()

	if msg.QuestionID == "" {
		ws.WriteError(conn, "question_id is required")
		return
	}

	// Reject malformed IDs before they become Redis hash fields.
	if _, err := uuid.Parse(msg.QuestionID); err != nil {
		ws.WriteError(conn, "invalid question_id format")
		return
	}

	if err := h.rdb.HSet(ctx, draftKey, msg.QuestionID, msg.Answer).Err(); err != nil {
		h.log.Error().Err(err).Int("student_id", studentID).Msg("Autosave Redis error")
		ws.WriteError(conn, "save failed")
		return
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"student_id":  studentID,
		"exam_id":     examID.String(),
		"question_id": msg.QuestionID,
		"answer":      msg.Answer,
	})
	h.rdb.RPush(ctx, config.WorkerKey.PersistDraftsQueue, payload)

	ws.WriteTyped(conn, ws.AutosaveResponse{Event: ws.EventSuccess, Status: "saved"})
}
