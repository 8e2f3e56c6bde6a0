package handler

import (
	"hospital-roster/internal/config"
	"hospital-roster/internal/middleware"
	"hospital-roster/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the middleware chain and the roster routes
func NewRouter(cfg *config.Config, hospitals *HospitalHandler, access *middleware.AccessControlMiddleware) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestLogger())
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics())
	}
	r.Use(middleware.CORS(cfg))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		utils.SuccessResponse(c, gin.H{
			"status":  "healthy",
			"service": "hospital-roster",
		})
	})

	if cfg.Metrics.Enabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	api := r.Group("/api/hospitals")
	api.Use(middleware.AuthMiddleware())
	{
		api.GET("", hospitals.GetAllHospitals)
		api.GET("/stats", hospitals.GetStats)
		api.POST("", middleware.RequireSuperAdmin(), hospitals.CreateHospital)

		scoped := api.Group("/:id")
		scoped.Use(access.CheckHospitalAccess())
		{
			scoped.GET("", hospitals.GetHospital)
			scoped.GET("/admins", hospitals.GetAdmins)
			scoped.GET("/audit", hospitals.GetAuditTrail)
			scoped.PUT("", hospitals.UpdateHospital)
			scoped.PUT("/status", hospitals.ChangeStatus)
			scoped.DELETE("", middleware.RequireSuperAdmin(), hospitals.DeleteHospital)
		}
	}

	return r
}
