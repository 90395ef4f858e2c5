package ports

import (
	"github.com/gin-gonic/gin"
)

// RouteRegistrar mounts a handler's routes. Routes that need a caller
// identity are wrapped with requireAuth.
type RouteRegistrar interface {
	SetupRoutes(router gin.IRouter, requireAuth gin.HandlerFunc)
}
