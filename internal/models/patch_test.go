package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskPatchUnmarshal(t *testing.T) {
	var patch TaskPatch
	require.NoError(t, json.Unmarshal([]byte(`{"date":null,"completed":true}`), &patch))

	assert.False(t, patch.Text.Set)
	assert.False(t, patch.Time.Set)
	assert.True(t, patch.Date.Set)
	assert.True(t, patch.Date.Null)
	assert.Nil(t, patch.Date.Ptr())
	assert.Equal(t, Some(true), patch.Completed)
	assert.False(t, patch.Empty())

	var empty TaskPatch
	require.NoError(t, json.Unmarshal([]byte(`{}`), &empty))
	assert.True(t, empty.Empty())

	assert.Error(t, json.Unmarshal([]byte(`{"completed":"yes"}`), &empty))
}

func TestTaskChangesApply(t *testing.T) {
	d := Date{Year: 2024, Month: 3, Day: 1}
	tm := "08.00"
	task := &Task{ID: "1", UserID: "u", Text: "before", Date: &d, Time: &tm}

	TaskChanges{
		Date:      Null[Date](),
		Completed: Some(true),
	}.Apply(task)

	assert.Equal(t, "before", task.Text)
	assert.Nil(t, task.Date)
	require.NotNil(t, task.Time)
	assert.Equal(t, "08.00", *task.Time)
	assert.True(t, task.Completed)
	assert.True(t, TaskChanges{}.Empty())
}

func TestTaskClone(t *testing.T) {
	d := Date{Year: 2024, Month: 3, Day: 1}
	tm := "08.00"
	task := &Task{ID: "1", Date: &d, Time: &tm}

	clone := task.Clone()
	clone.Date.Day = 2
	*clone.Time = "09.00"

	assert.Equal(t, 1, task.Date.Day)
	assert.Equal(t, "08.00", *task.Time)
}
