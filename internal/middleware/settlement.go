package middleware

import (
	"net/http"
	"time"

	"studio-booking/internal/service"
	"studio-booking/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SettlementSweep runs the settlement sweep before every request. Reads
// and writes alike depend on past sessions being closed, so a failed
// sweep fails the request rather than serve stale state.
func SettlementSweep(settlement service.SettlementService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := settlement.Sweep(c.Request.Context(), time.Now()); err != nil {
			logger.WithComponent("middleware").Error("settlement sweep failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
			return
		}
		c.Next()
	}
}
