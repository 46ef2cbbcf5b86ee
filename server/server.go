// Package server exposes the ops endpoints: liveness plus notifier counters.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/micanis/bot-pocket-pace/notifier"
)

func NewRouter(n *notifier.Notifier, startedAt time.Time) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	router.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, n.MetricsSnapshot())
	})

	router.GET("/status", func(c *gin.Context) {
		m := n.MetricsSnapshot()
		c.JSON(http.StatusOK, gin.H{
			"started_at":    startedAt,
			"uptime":        time.Since(startedAt).String(),
			"last_sweep_at": m.LastSweepAt,
			"sweeps":        m.Sweeps,
		})
	})

	return router
}
