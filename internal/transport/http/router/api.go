package router

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JasjusSirsak/bolususu/internal/core/server"
	"github.com/JasjusSirsak/bolususu/internal/transport/http/ez"
	mdw "github.com/JasjusSirsak/bolususu/internal/transport/http/middleware"
)

func NewAPIEngine(d Deps) *gin.Engine {
	ez.RegisterValidators()
	r := server.NewRouter(d.Log, server.Options{Name: "api", AllowOrigins: d.HTTP.AllowOrigins})

	rps, burst := d.rate()
	r.Use(
		mdw.RequestID(),
		mdw.AccessLog(d.Log),
		mdw.Metrics(),
		mdw.RateLimit(rps, burst),
		mdw.ConcurrencyLimit(d.maxInFlight()),
		mdw.MaxBodyBytes(d.maxBody()),
		mdw.Timeout(d.handlerTimeout()),
		// row payloads are large and repetitive
		gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})),
	)

	r.GET("/health", health(d.DB))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.GET("/health", health(d.DB))
	APIModules(d).MountAPI(api)

	return r
}
