package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JasjusSirsak/bolususu/internal/core/server"
	"github.com/JasjusSirsak/bolususu/internal/domain"
	"github.com/JasjusSirsak/bolususu/internal/transport/http/ez"
	mdw "github.com/JasjusSirsak/bolususu/internal/transport/http/middleware"
)

// NewAdminEngine serves the operator console. Every /admin/v1 route requires
// a user whose global role is admin.
func NewAdminEngine(d Deps) *gin.Engine {
	ez.RegisterValidators()
	r := server.NewRouter(d.Log, server.Options{Name: "admin", AllowOrigins: d.HTTP.AllowOrigins})

	r.Use(
		mdw.RequestID(),
		mdw.AccessLog(d.Log),
		mdw.Metrics(),
		mdw.RateLimit(50, 100),
		mdw.ConcurrencyLimit(50),
		mdw.MaxBodyBytes(1<<20),
		mdw.Timeout(10*time.Second),
	)

	r.GET("/health", health(d.DB))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	admin := r.Group("/admin/v1", mdw.AuthJWT(d.Identity, domain.UserRoleAdmin))
	AdminModules(d).MountAdmin(admin)

	return r
}
