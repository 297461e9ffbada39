// Package handler holds the HTTP modules mounted by the router. Each module
// adapts one service to routes and leaves all rules to the service.
package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/JasjusSirsak/bolususu/internal/transport/http/ez"
)

// Base carries what every module needs: a logger and the authentication
// middleware for routes that require a caller.
type Base struct {
	Log  *zap.Logger
	Auth gin.HandlerFunc
}

func (b Base) public(g *gin.RouterGroup) ez.EZ { return ez.New(g, b.Log) }

func (b Base) authed(g *gin.RouterGroup, path string) ez.EZ {
	return ez.New(g.Group(path, b.Auth), b.Log)
}
