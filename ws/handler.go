package ws

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/vnkhanh/e-learning-backend/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // tighten for production deployments
	},
}

// Handler upgrades authenticated clients onto the hub for one job id.
// Browsers cannot set an Authorization header on a websocket dial, so the
// token travels as a query parameter.
type Handler struct {
	Hub       *Hub
	JWTSecret string
}

func (h *Handler) WatchJob(c *gin.Context) {
	jobID := c.Param("id")

	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	if _, err := utils.VerifyToken(h.JWTSecret, token); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("ws: upgrade failed:", err)
		return
	}

	h.Hub.Register(jobID, conn)
	defer h.Hub.Unregister(jobID, conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
