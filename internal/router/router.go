package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hippocampus-web3/thorchain-indexer/internal/handler"
)

// Setup builds the gin engine and mounts every route.
func Setup(
	nodeHandler *handler.NodeHandler,
	whitelistHandler *handler.WhitelistHandler,
	chatHandler *handler.ChatHandler,
	statsHandler *handler.StatsHandler,
	subscriptionHandler *handler.SubscriptionHandler,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		api.GET("/nodes", nodeHandler.GetNodes)
		api.GET("/whitelist", whitelistHandler.GetRequests)
		api.GET("/chat/:nodeAddress", chatHandler.GetMessages)
		api.GET("/stats", statsHandler.GetStats)
		api.POST("/subscriptions", subscriptionHandler.CreateSubscription)
	}

	return r
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
