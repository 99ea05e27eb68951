package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"cabin-roster/backend/config"
	"cabin-roster/backend/internal/api/handler"
	"cabin-roster/backend/internal/api/middleware"
	"cabin-roster/backend/internal/dto"
	"cabin-roster/backend/pkg/jwt"
	"cabin-roster/backend/pkg/redis"
)

// multipart 边界与表单字段的额外空间
const bodyOverhead = 1 << 20

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, db *gorm.DB, logger *zap.Logger) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := dto.RegisterValidators(v); err != nil {
			logger.Fatal("注册自定义校验规则失败", zap.Error(err))
		}
	}

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(cfg.Upload.MaxBytes + bodyOverhead))

	// ── 健康检查 / 指标 ──
	r.GET("/health", func(c *gin.Context) {
		if db != nil {
			if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		v1.POST("/auth/login", h.Auth.Login)

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)

			// 当日名单
			rosterGroup := authorized.Group("/roster")
			{
				rosterGroup.GET("", h.Roster.Get)
				rosterGroup.PUT("", h.Roster.Replace)
				rosterGroup.POST("/import", h.Roster.ImportFile)
			}

			// 员工偏好
			preferences := authorized.Group("/preferences")
			{
				preferences.GET("", h.Preference.List)
				preferences.POST("", h.Preference.Import)
				preferences.DELETE("", h.Preference.Clear)
				preferences.POST("/import", h.Preference.ImportFile)
				preferences.GET("/template", h.Preference.Template)
				preferences.POST("/match", h.Preference.Match)
				preferences.DELETE("/:name", h.Preference.Remove)
			}

			// 区域配置
			areas := authorized.Group("/areas")
			{
				areas.GET("", h.Area.List)
				areas.GET("/options", h.Area.GetOptions)
				areas.PUT("/options", h.Area.UpdateOptions)
				areas.GET("/needs", h.Area.Needs)
				areas.PUT("/:id", h.Area.Update)
			}

			// 分配
			assignments := authorized.Group("/assignments")
			{
				assignments.POST("",
					middleware.RateLimit(rdb, "generate", cfg.Assignment.GenerateRateLimit, cfg.Assignment.GenerateRateWindow),
					h.Assignment.Generate)
				assignments.GET("", h.Assignment.List)
				assignments.GET("/latest", h.Assignment.Latest)
				assignments.GET("/:id", h.Assignment.Get)
				assignments.PUT("/:id/cells", h.Assignment.UpdateCell)
				assignments.GET("/:id/duplicates", h.Assignment.Duplicates)
			}

			// 导出
			authorized.GET("/export/assignments/:id", h.Export.ExportRun)
		}
	}

	return r
}
