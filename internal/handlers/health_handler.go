package handlers

import (
	"context"
	"database/sql"
	_ "embed"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

//go:embed openapi.yaml
var openAPISpec []byte

// HealthHandler はデータベース接続の健全性を返します。
func HealthHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			slog.WarnContext(ctx, "database ping failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "message": "Database connection failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Database connection is healthy"})
	}
}

// OpenAPIHandler はAPIドキュメント (OpenAPI 3) を返します。
func OpenAPIHandler(c *gin.Context) {
	c.Data(http.StatusOK, "application/yaml", openAPISpec)
}
