// Package routesはroutingを行います。
package routes

import (
	"database/sql"
	"net/http"
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"todo-api/internal/config"
	"todo-api/internal/database"
	"todo-api/internal/handlers"
	"todo-api/internal/repositories"
	"todo-api/internal/services"
)

// SetupRouter はGinルーターをセットアップし、すべてのエンドポイントを登録します。
func SetupRouter(db *sql.DB, dialect database.Dialect, cfg config.ServerConfig) *gin.Engine {
	gin.SetMode(cfg.Mode)

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(RequestID(), RequestLogger(), gin.Recovery())
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	// リポジトリ → サービス → ハンドラー
	todoRepo := repositories.NewTodoRepository(db, dialect)
	todoService := services.NewTodoService(todoRepo)
	todoHandler := handlers.NewTodoHandler(todoService)

	api := r.Group("/api")
	api.GET("/health", handlers.HealthHandler(db))
	api.GET("/docs/openapi.yaml", handlers.OpenAPIHandler)

	todos := api.Group("/todos")
	{
		todos.GET("", todoHandler.GetTodosHandler)
		todos.POST("", todoHandler.CreateTodoHandler)
		todos.POST("/batch", todoHandler.BatchCreateTodosHandler)
		todos.POST("/bulk", todoHandler.ReplaceTodosHandler)
		todos.GET("/:id", todoHandler.GetTodoByIDHandler)
		todos.PUT("/:id", todoHandler.UpdateTodoHandler)
		todos.DELETE("/:id", todoHandler.DeleteTodoHandler)
		todos.PATCH("/:id/complete", todoHandler.CompleteTodoHandler)
		todos.PATCH("/:id/uncomplete", todoHandler.UncompleteTodoHandler)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})

	return r
}

// corsConfig は許可オリジンからCORS設定を作ります。"*" は全オリジン許可です。
func corsConfig(origins []string) cors.Config {
	config := cors.DefaultConfig()
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	config.ExposeHeaders = []string{RequestIDHeader}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
	}
	return config
}
