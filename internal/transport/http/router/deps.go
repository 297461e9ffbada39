package router

import (
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/JasjusSirsak/bolususu/internal/core/config"
	"github.com/JasjusSirsak/bolususu/internal/service"
	"github.com/JasjusSirsak/bolususu/internal/transport/http/handler"
	mdw "github.com/JasjusSirsak/bolususu/internal/transport/http/middleware"
)

// Deps is everything the engines need; cmd/ wires it.
type Deps struct {
	Log      *zap.Logger
	DB       *gorm.DB
	HTTP     config.HTTP
	CSV      config.CSV
	Identity *service.IdentityVerifier
	Users    *service.UserService
	Projects *service.ProjectRegistry
	Uploads  *service.CSVService
}

func (d Deps) handlerTimeout() time.Duration {
	if d.HTTP.HandlerTimeoutSec <= 0 {
		return 30 * time.Second
	}
	return time.Duration(d.HTTP.HandlerTimeoutSec) * time.Second
}

func (d Deps) maxBody() int64 {
	if d.CSV.MaxBodyMB <= 0 {
		return 50 << 20
	}
	return int64(d.CSV.MaxBodyMB) << 20
}

func (d Deps) rate() (rate.Limit, int) {
	rps, burst := d.HTTP.RateLimitRPS, d.HTTP.RateLimitBurst
	if rps <= 0 {
		rps = 200
	}
	if burst <= 0 {
		burst = int(2 * rps)
	}
	return rate.Limit(rps), burst
}

func (d Deps) maxInFlight() int64 {
	if d.HTTP.MaxInFlight <= 0 {
		return 300
	}
	return d.HTTP.MaxInFlight
}

// APIModules registers the user-facing modules.
func APIModules(d Deps) *Registry {
	base := handler.Base{Log: d.Log, Auth: mdw.AuthJWT(d.Identity, "")}
	auth := &handler.Auth{Base: base, Users: d.Users}
	if d.HTTP.AuthRateLimitRPS > 0 {
		auth.Limit = mdw.RateLimitPerIP(rate.Limit(d.HTTP.AuthRateLimitRPS), int(d.HTTP.AuthRateLimitRPS*4)+1)
	}
	return new(Registry).Register(
		auth,
		&handler.User{Base: base, Users: d.Users, Projects: d.Projects},
		&handler.Projects{Base: base, Projects: d.Projects},
		&handler.CSV{Base: base, CSV: d.Uploads},
	)
}

// AdminModules registers the operator console modules.
func AdminModules(d Deps) *Registry {
	base := handler.Base{Log: d.Log}
	return new(Registry).Register(
		&handler.Admin{Base: base, Users: d.Users, Projects: d.Projects},
	)
}
