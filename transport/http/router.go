package http

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/gebeta-eats/payflow"
)

// SetupRouter sets up the Gin router
func SetupRouter(flow *payflow.Flow, appBaseURL string, log zerolog.Logger) *gin.Engine {
	router := gin.Default()
	router.Use(BearerToken())

	handlers := NewPaymentHandlers(flow, appBaseURL, log)

	payment := router.Group("/payment")
	{
		payment.POST("", RequireBearer(), handlers.Initiate)
		// The provider's return navigation carries no Authorization header;
		// the verifier restores the credential itself.
		payment.GET("/callback/:orderId", handlers.Callback)
		payment.GET("/verify/:orderId", handlers.Verify)
		payment.GET("/status", handlers.Status)
		payment.DELETE("/session", handlers.Teardown)
	}

	return router
}
