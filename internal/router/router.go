package router

import (
	"github.com/MarwanIssa100/SparkUp/internal/handler"
	"github.com/gin-gonic/gin"
)

func Setup(ideaHandler *handler.IdeaHandler) *gin.Engine {
	r := gin.Default()

	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "sparkup-gateway",
		})
	})

	v1 := r.Group("/api/v1")
	{
		ideas := v1.Group("/ideas")
		{
			ideas.GET("", ideaHandler.ListIdeas)
			ideas.POST("", ideaHandler.CreateIdea)
			ideas.POST("/refresh", ideaHandler.Refresh)
			ideas.POST("/:id/fund", ideaHandler.FundIdea)
			ideas.POST("/:id/withdraw", ideaHandler.Withdraw)
			ideas.POST("/:id/complete", ideaHandler.CompleteIdea)
			ideas.POST("/:id/refund", ideaHandler.Refund)
		}
	}

	return r
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
