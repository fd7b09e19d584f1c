// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
)

// RouteRegistrar is implemented by handlers that wire their own route group.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// registerAll wires each handler's routes onto the group.
func registerAll(rg *gin.RouterGroup, registrars ...RouteRegistrar) {
	for _, r := range registrars {
		r.RegisterRoutes(rg)
	}
}
