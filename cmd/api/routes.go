package main

import (
	"acs-call-console/internal/events"
	"acs-call-console/internal/httpapi"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, hub *events.Hub) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "event_clients": hub.ClientCount()})
	})

	v1 := r.Group("/v1")
	{
		// CONFIG routes: the persisted call configuration slot.
		cfg := v1.Group("/config")
		{
			cfg.GET("", h.GetConfig)
			cfg.PUT("", h.SaveConfig)
			cfg.DELETE("", h.ClearConfig)
		}

		// TOKEN routes: display-only credential decoding.
		v1.POST("/token/decode", h.DecodeToken)

		// DIALING routes: pure validation over posted snapshots.
		dialing := v1.Group("/dialing")
		{
			dialing.POST("/validate", h.ValidateTarget)
			dialing.POST("/readiness", h.Readiness)
		}

		// SESSION routes: agent lifecycle.
		sess := v1.Group("/session")
		{
			sess.POST("/connect", h.Connect)
			sess.POST("/disconnect", h.Disconnect)
			sess.POST("/listen", h.StartListening)
			sess.POST("/stop", h.StopListening)
		}

		// CALLS routes: place and answer calls on the connected agent.
		calls := v1.Group("/calls")
		{
			calls.POST("/start", h.StartCall)
			calls.POST("/:call_id/accept", h.AcceptCall)
			calls.POST("/:call_id/reject", h.RejectCall)
			calls.POST("/:call_id/leave", h.LeaveCall)
		}

		// EVENTS: one-way display-state stream to the browser.
		v1.GET("/events/ws", h.EventStream)
	}
}
