package main

import (
	"codeberg.org/campusnavi/server/api/rest/documents"
	"codeberg.org/campusnavi/server/api/rest/health"
	"codeberg.org/campusnavi/server/api/rest/search"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	limiter "github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// per-client budget for the query API; every search fans out to the
// embedding provider, so this also shields it
const searchRateLimit = "60-M"

// sets up all API routes and middleware
func RegisterRoutes(router *gin.Engine, server *Server) {
	router.Use(cors.Default())
	router.GET("/health", health.Handler)

	rate, err := limiter.NewRateFromFormatted(searchRateLimit)
	if err != nil {
		panic(err) // compile-time constant, cannot fail at runtime
	}

	rateLimiter := mgin.NewMiddleware(limiter.New(memory.NewStore(), rate))

	v1 := router.Group("/api/v1")
	v1.Use(rateLimiter)

	{
		v1.GET("/ping", health.PingHandler)

		search.RegisterRoutes(v1, server.engine)
		documents.RegisterRoutes(v1, server.store)
	}
}
