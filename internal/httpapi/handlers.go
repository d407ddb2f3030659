package httpapi

import (
	"errors"
	"net/http"
	"time"

	"acs-call-console/internal/acs"
	"acs-call-console/internal/callconfig"
	"acs-call-console/internal/dialing"
	"acs-call-console/internal/events"
	"acs-call-console/internal/session"
	"acs-call-console/internal/token"
	"acs-call-console/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Config  *callconfig.Service
	Session *session.Session
	Hub     *events.Hub

	// Clock is injectable for deterministic tests.
	Clock func() time.Time
}

func (h Handlers) now() time.Time {
	if h.Clock != nil {
		return h.Clock()
	}
	return time.Now()
}

// slotID identifies the console's storage slot. Defaults to a single shared
// slot, matching the original single-browser behavior.
func slotID(c *gin.Context) string {
	if s := c.Query("slot"); s != "" {
		return s
	}
	return "default"
}

/* ===================== CONFIGURATION ===================== */

func (h Handlers) GetConfig(c *gin.Context) {
	cfg, err := h.Config.Load(c.Request.Context(), slotID(c))
	if err != nil {
		switch {
		case errors.Is(err, callconfig.ErrNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "no saved configuration"})
		case errors.Is(err, callconfig.ErrInvalidRecord):
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "saved configuration is not parseable"})
		default:
			logger.FromGin(c).Error("config load failed", "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "config load failed"})
		}
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (h Handlers) SaveConfig(c *gin.Context) {
	var cfg callconfig.CallConfiguration
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if err := h.Config.Save(c.Request.Context(), slotID(c), cfg); err != nil {
		switch {
		case errors.Is(err, callconfig.ErrNothingToSave):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "nothing to save"})
		case errors.Is(err, callconfig.ErrInvalidArgument):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.FromGin(c).Error("config save failed", "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "config save failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}

func (h Handlers) ClearConfig(c *gin.Context) {
	if err := h.Config.Clear(c.Request.Context(), slotID(c)); err != nil {
		logger.FromGin(c).Error("config clear failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "config clear failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

/* ===================== TOKEN & VALIDATION ===================== */

type decodeTokenRequest struct {
	Token string `json:"token"`
}

// DecodeToken projects the credential's expiry for display. It is a pure
// read; nothing is stored and the signature is never verified.
func (h Handlers) DecodeToken(c *gin.Context) {
	var req decodeTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	c.JSON(http.StatusOK, token.Decode(req.Token, h.now()))
}

type validateTargetResponse struct {
	Valid   bool   `json:"valid"`
	Code    string `json:"code,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message,omitempty"`
}

// ValidateTarget reports the first target failure for the posted snapshot.
// Validation failures are part of the contract, not HTTP errors.
func (h Handlers) ValidateTarget(c *gin.Context) {
	var cfg callconfig.CallConfiguration
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	resp := validateTargetResponse{Valid: true}
	if err := dialing.ValidateTarget(cfg); err != nil {
		var ve *dialing.ValidationError
		if errors.As(err, &ve) {
			resp = validateTargetResponse{Code: string(ve.Code), Field: ve.Field, Message: ve.Message}
		} else {
			resp = validateTargetResponse{Message: err.Error()}
		}
	}
	c.JSON(http.StatusOK, resp)
}

// Readiness recomputes the submit-enable predicate for the posted snapshot.
func (h Handlers) Readiness(c *gin.Context) {
	var cfg callconfig.CallConfiguration
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ready": dialing.Ready(cfg, h.now())})
}

/* ===================== SESSION & CALLS ===================== */

func (h Handlers) Connect(c *gin.Context) {
	cfg, err := h.Config.Load(c.Request.Context(), slotID(c))
	if err != nil {
		if errors.Is(err, callconfig.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "no saved configuration"})
			return
		}
		logger.FromGin(c).Error("config load failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "config load failed"})
		return
	}
	if err := h.Session.Connect(c.Request.Context(), cfg); err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.Session.Status())
}

func (h Handlers) Disconnect(c *gin.Context) {
	if err := h.Session.Disconnect(c.Request.Context()); err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.Session.Status())
}

func (h Handlers) StartListening(c *gin.Context) {
	if err := h.Session.StartListening(c.Request.Context()); err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.Session.Status())
}

func (h Handlers) StopListening(c *gin.Context) {
	if err := h.Session.StopListening(c.Request.Context()); err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.Session.Status())
}

func (h Handlers) StartCall(c *gin.Context) {
	callID, err := h.Session.StartCall(c.Request.Context())
	if err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"callId": callID})
}

func (h Handlers) AcceptCall(c *gin.Context) {
	if err := h.Session.Accept(c.Request.Context(), c.Param("call_id")); err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "accepted"})
}

func (h Handlers) RejectCall(c *gin.Context) {
	if err := h.Session.Reject(c.Request.Context(), c.Param("call_id")); err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "rejected"})
}

func (h Handlers) LeaveCall(c *gin.Context) {
	if err := h.Session.Leave(c.Request.Context(), c.Param("call_id")); err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "left"})
}

// sessionError maps session failures onto HTTP statuses. SDK failures get
// the best-effort explanation; the session itself is already back in a
// usable state by the time any of these return.
func (h Handlers) sessionError(c *gin.Context, err error) {
	var ve *dialing.ValidationError
	switch {
	case errors.As(err, &ve):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": ve.Message, "code": string(ve.Code), "field": ve.Field})
	case errors.Is(err, session.ErrNotReady):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "configuration is not ready to submit"})
	case errors.Is(err, session.ErrAlreadyConnected),
		errors.Is(err, session.ErrBusy):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, session.ErrNotConnected),
		errors.Is(err, session.ErrNotListening):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.FromGin(c).Error("sdk operation failed", "err", err)
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": acs.Explain(err)})
	}
}

/* ===================== EVENT STREAM ===================== */

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The console is a same-origin demo surface; tighten this before any
	// multi-origin deployment.
	CheckOrigin: func(*http.Request) bool { return true },
}

// EventStream upgrades to WebSocket and streams display-state snapshots.
func (h Handlers) EventStream(c *gin.Context) {
	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.FromGin(c).Error("websocket upgrade failed", "err", err)
		return
	}
	h.Hub.Attach(conn)
}
