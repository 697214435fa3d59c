package v1

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/tracklin/internal/models"
	"github.com/adanyl0v/tracklin/internal/services"
)

type taskResponse struct {
	ID        string       `json:"id"`
	OwnerID   string       `json:"owner_id"`
	Text      string       `json:"text"`
	Date      *models.Date `json:"date"`
	Time      *string      `json:"time"`
	Completed bool         `json:"completed"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func newTaskResponse(task *models.Task) taskResponse {
	return taskResponse{
		ID:        task.ID,
		OwnerID:   task.UserID,
		Text:      task.Text,
		Date:      task.Date,
		Time:      task.Time,
		Completed: task.Completed,
		CreatedAt: task.CreatedAt,
		UpdatedAt: task.UpdatedAt,
	}
}

func newTaskResponses(tasks []*models.Task) []taskResponse {
	resp := make([]taskResponse, len(tasks))
	for i, task := range tasks {
		resp[i] = newTaskResponse(task)
	}
	return resp
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	patch, err := h.bindTaskPatch(c)
	if err != nil {
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	task, err := h.tasks.CreateTask(c, callerID(c), services.CreateTaskParams{
		Text: patch.Text,
		Date: patch.Date,
		Time: patch.Time,
	})
	if err != nil {
		abort(c, taskError(err))
		return
	}

	c.JSON(http.StatusOK, newTaskResponse(task))
}

func (h *handlerImpl) HandleGetTasks(c *gin.Context) {
	tasks, err := h.tasks.ListForOwner(c, callerID(c))
	if err != nil {
		abort(c, taskError(err))
		return
	}

	c.JSON(http.StatusOK, newTaskResponses(tasks))
}

// HandleUpdateTask leaves every judgement of the body to the service, so
// that a caller who doesn't own the task learns nothing from its shape.
func (h *handlerImpl) HandleUpdateTask(c *gin.Context) {
	patch, err := h.bindTaskPatch(c)
	if err != nil {
		patch = models.TaskPatch{Malformed: true}
	}

	task, err := h.tasks.UpdateTask(c, callerID(c), c.Param("id"), patch)
	if err != nil {
		abort(c, taskError(err))
		return
	}

	c.JSON(http.StatusOK, newTaskResponse(task))
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	err := h.tasks.DeleteTask(c, callerID(c), c.Param("id"))
	if err != nil {
		abort(c, taskError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// bindTaskPatch decodes the body field by field so that a value of the
// wrong JSON type is marked invalid on its own field instead of failing the
// whole body. An empty body is an empty patch. Only a body that isn't a JSON
// object is an error.
func (h *handlerImpl) bindTaskPatch(c *gin.Context) (models.TaskPatch, error) {
	var patch models.TaskPatch

	body, err := c.GetRawData()
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to read request body")
		return patch, errInvalidRequestBody
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return patch, nil
	}

	var fields map[string]json.RawMessage
	err = json.Unmarshal(body, &fields)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to unmarshal request body")
		return patch, errInvalidRequestBody
	}

	decodeField(fields, "text", &patch.Text)
	decodeField(fields, "date", &patch.Date)
	decodeField(fields, "time", &patch.Time)
	decodeField(fields, "completed", &patch.Completed)
	return patch, nil
}

func decodeField[T any](fields map[string]json.RawMessage, name string, dst *models.Optional[T]) {
	raw, ok := fields[name]
	if !ok {
		return
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		*dst = models.Invalid[T]()
	}
}
