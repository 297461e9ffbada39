package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	resp "github.com/JasjusSirsak/bolususu/internal/transport/http/response"
)

// health reports liveness plus a short database ping.
func health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		out := gin.H{"status": "ok", "timestamp": time.Now().UTC().Format(time.RFC3339)}
		if db == nil {
			resp.JSON(c, http.StatusOK, out)
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			out["status"] = "degraded"
			out["db"] = "down"
			c.JSON(http.StatusServiceUnavailable, resp.New(resp.CodeUnavailable, "database unreachable", out))
			return
		}
		out["db"] = "up"
		resp.JSON(c, http.StatusOK, out)
	}
}
