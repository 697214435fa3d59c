package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/tracklin/internal/timer"
)

type reconcileTimerResponse struct {
	timer.State
	Phase   timer.Phase `json:"phase"`
	Display string      `json:"display"`
	Expired bool        `json:"expired"`
}

// HandleReconcileTimer brings a persisted countdown up to date with the
// server clock. Expired reports whether it ran out since its last update.
func (h *handlerImpl) HandleReconcileTimer(c *gin.Context) {
	data, err := c.GetRawData()
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to read timer state")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	now := h.now()
	state, err := timer.Restore(data, now)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind timer state")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	expired := state.Reconcile(now)
	h.logger.Debug().
		Int("remaining_seconds", state.RemainingSeconds).
		Bool("expired", expired).
		Msg("reconciled timer")

	c.JSON(http.StatusOK, reconcileTimerResponse{
		State:   *state,
		Phase:   state.Phase(),
		Display: state.Display(),
		Expired: expired,
	})
}
