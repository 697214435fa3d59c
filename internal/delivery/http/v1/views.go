package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/tracklin/internal/models"
	"github.com/adanyl0v/tracklin/internal/views"
)

type todayResponse struct {
	Date  models.Date    `json:"date"`
	Tasks []taskResponse `json:"tasks"`
}

type dayResponse struct {
	Date  *models.Date   `json:"date"`
	Tasks []taskResponse `json:"tasks"`
}

type scheduleResponse struct {
	Tasks []taskResponse `json:"tasks"`
	Days  []dayResponse  `json:"days"`
}

// HandleTodoList renders the caller's tasks due today. The client may pass
// its own local date as ?today=YYYY-MM-DD.
func (h *handlerImpl) HandleTodoList(c *gin.Context) {
	tasks, err := h.tasks.ListForOwner(c, callerID(c))
	if err != nil {
		abort(c, taskError(err))
		return
	}

	today := views.ResolveToday(c.Query("today"), h.now(), h.opts.Location)
	view := views.Today(tasks, today)

	c.JSON(http.StatusOK, todayResponse{
		Date:  view.Date,
		Tasks: newTaskResponses(view.Tasks),
	})
}

func (h *handlerImpl) HandleSchedule(c *gin.Context) {
	tasks, err := h.tasks.ListForOwner(c, callerID(c))
	if err != nil {
		abort(c, taskError(err))
		return
	}

	view := views.Schedule(tasks)
	days := make([]dayResponse, len(view.Days))
	for i, day := range view.Days {
		days[i] = dayResponse{
			Date:  day.Date,
			Tasks: newTaskResponses(day.Tasks),
		}
	}

	c.JSON(http.StatusOK, scheduleResponse{
		Tasks: newTaskResponses(view.Tasks),
		Days:  days,
	})
}
