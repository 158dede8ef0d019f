// Package http serves a local read-only status surface for a running
// client: health and a snapshot of the coordination state.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mkarev/liveclass/internal/app/orch"
	"github.com/mkarev/liveclass/internal/config"
)

func SetupRouter(cfg *config.Config, o *orch.Orchestrator) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.GET("/state", func(c *gin.Context) {
		c.JSON(http.StatusOK, o.Snapshot())
	})
	api.GET("/pending", func(c *gin.Context) {
		c.JSON(http.StatusOK, o.Admission.Pending())
	})

	log.Info().Str("module", "adapters.http").Msg("status router setup")
	return r
}
