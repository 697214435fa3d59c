package views

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/tracklin/internal/models"
)

func date(t *testing.T, s string) *models.Date {
	t.Helper()
	d, err := models.ParseDate(s)
	require.NoError(t, err)
	return &d
}

func orderedTasks(t *testing.T) []*models.Task {
	return []*models.Task{
		{ID: "1", Text: "anytime"},
		{ID: "2", Text: "first", Date: date(t, "2024-03-01")},
		{ID: "3", Text: "second", Date: date(t, "2024-03-01")},
		{ID: "4", Text: "later", Date: date(t, "2024-03-02")},
	}
}

func TestToday(t *testing.T) {
	view := Today(orderedTasks(t), *date(t, "2024-03-01"))

	require.Len(t, view.Tasks, 2)
	assert.Equal(t, "2", view.Tasks[0].ID)
	assert.Equal(t, "3", view.Tasks[1].ID)
	assert.Equal(t, "2024-03-01", view.Date.String())
}

func TestTodayEmpty(t *testing.T) {
	view := Today(orderedTasks(t), *date(t, "2030-01-01"))

	assert.NotNil(t, view.Tasks)
	assert.Empty(t, view.Tasks)
}

func TestSchedule(t *testing.T) {
	tasks := orderedTasks(t)
	view := Schedule(tasks)

	assert.Equal(t, tasks, view.Tasks)
	require.Len(t, view.Days, 3)
	assert.Nil(t, view.Days[0].Date)
	assert.Len(t, view.Days[0].Tasks, 1)
	assert.Equal(t, "2024-03-01", view.Days[1].Date.String())
	assert.Len(t, view.Days[1].Tasks, 2)
	assert.Equal(t, "2024-03-02", view.Days[2].Date.String())
}

func TestScheduleNil(t *testing.T) {
	view := Schedule(nil)

	assert.NotNil(t, view.Tasks)
	assert.Empty(t, view.Days)
}

func TestResolveToday(t *testing.T) {
	// 23:30 UTC is already the next day in Jakarta.
	now := time.Date(2024, 6, 1, 23, 30, 0, 0, time.UTC)
	jakarta := time.FixedZone("WIB", 7*60*60)

	assert.Equal(t, "2024-05-31", ResolveToday("2024-05-31", now, jakarta).String())
	assert.Equal(t, "2024-06-02", ResolveToday("", now, jakarta).String())
	assert.Equal(t, "2024-06-02", ResolveToday("not a date", now, jakarta).String())
	assert.Equal(t, "2024-06-01", ResolveToday("", now, nil).String())
}
