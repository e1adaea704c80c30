// Package helloworld is the in-process reference implementation of the
// compatibility contract the application under test must satisfy: the two
// endpoints, their exact payloads, 404 for unknown paths and 405 for non-GET
// methods on known routes. Probe and report tests run against it instead of a
// live container.
package helloworld

import (
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter builds the contract router.
func NewRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(ginzap.Ginzap(zap.L(), time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(zap.L(), true))
	r.HandleMethodNotAllowed = true

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Hello, World!"})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "hello-world"})
	})
	return r
}
