package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Status string `json:"status"`
}

// reports service liveness
func Handler(c *gin.Context) {
	c.JSON(http.StatusOK, Response{Status: "ok"})
}

// lightweight readiness probe
func PingHandler(c *gin.Context) {
	c.String(http.StatusOK, "pong")
}
