package documents

import "github.com/gin-gonic/gin"

// registers document audit routes
func RegisterRoutes(router *gin.RouterGroup, store ChunkStore) {
	router.GET("/documents/:id/chunks", ChunksHandler(store))
	router.DELETE("/documents/:id", DeleteHandler(store))
}
