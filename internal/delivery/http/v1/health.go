package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const readinessTimeout = 2 * time.Second

func (h *handlerImpl) HandleLiveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handlerImpl) HandleReadiness(c *gin.Context) {
	if h.opts.Store != nil {
		ctx, cancel := context.WithTimeout(c, readinessTimeout)
		defer cancel()

		err := h.opts.Store.Ping(ctx)
		if err != nil {
			h.logger.Error().
				Err(err).
				Msg("store is not ready")
			abort(c, newStatusTextError(http.StatusServiceUnavailable))
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
