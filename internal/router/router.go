package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/movieshelf/internal/handler"
	"github.com/user/movieshelf/internal/middleware"
)

// RegisterRoutes 注册所有路由
func RegisterRoutes(r *gin.Engine, h *handler.Handler) {
	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.Use(middleware.OptionalAuth(h.Sessions))
	{
		// ==================== 目录 ====================
		api.GET("/movies", h.Movies)
		api.GET("/movies/:id", h.MovieDetail)
		api.GET("/movies/:id/trailer", h.MovieTrailer)
		api.GET("/trending", h.Trending)

		// ==================== 认证 ====================
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Register)
			auth.POST("/login", h.Login)
			auth.POST("/logout", h.Logout)
			auth.GET("/me", h.Me)
		}

		// ==================== 收藏（需要登录）====================
		saved := api.Group("/saved")
		saved.Use(middleware.RequireAuth(h.Sessions))
		{
			saved.GET("", h.SavedList)
			saved.GET("/ids", h.SavedIDs)
			saved.POST("", h.SaveMovie)
			saved.DELETE("/:id", h.RemoveSaved)
		}
	}
}
