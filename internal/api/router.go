package api

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// Router wires the API routes onto a new gin engine.
func Router(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger())

	v1 := r.Group("/v1")
	v1.GET("/health", h.Health)

	v1.GET("/pdfs", h.ListPDFs)
	v1.GET("/pdfs/count", h.CountPDFs)
	v1.GET("/pdfs/:id", h.GetPDF)
	v1.POST("/pdfs", h.CreatePDF)
	v1.PATCH("/pdfs/:id/status", h.UpdateStatus)

	return r
}

// RequestLogger logs one line per request once the handler chain returns.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		slog.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
