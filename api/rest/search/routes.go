package search

import "github.com/gin-gonic/gin"

// registers search routes
func RegisterRoutes(router *gin.RouterGroup, engine Searcher) {
	router.POST("/search", Handler(engine))
}
