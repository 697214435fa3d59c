package models

import "time"

const (
	MaxTaskTextLength = 255
	MaxTaskTimeLength = 5
)

type Task struct {
	ID        string
	UserID    string
	Text      string
	Date      *Date
	Time      *string
	Completed bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a deep copy, so callers may keep it after the store mutates
// its own record.
func (t *Task) Clone() *Task {
	c := *t
	if t.Date != nil {
		d := *t.Date
		c.Date = &d
	}
	if t.Time != nil {
		s := *t.Time
		c.Time = &s
	}
	return &c
}
