// Package views shapes an owner's ordered task list into the read models
// rendered by the today and schedule pages. Nothing here validates or
// mutates tasks.
package views

import (
	"strings"
	"time"

	"github.com/adanyl0v/tracklin/internal/models"
)

type TodayView struct {
	Date  models.Date
	Tasks []*models.Task
}

type ScheduleView struct {
	Tasks []*models.Task
	Days  []Day
}

// Day groups consecutive tasks sharing a date. Date is nil for the
// anytime bucket.
type Day struct {
	Date  *models.Date
	Tasks []*models.Task
}

// Today keeps the tasks dated today, in their original order. Undated
// tasks are left out.
func Today(tasks []*models.Task, today models.Date) TodayView {
	view := TodayView{
		Date:  today,
		Tasks: make([]*models.Task, 0),
	}
	for _, t := range tasks {
		if t.Date != nil && *t.Date == today {
			view.Tasks = append(view.Tasks, t)
		}
	}
	return view
}

// Schedule expects tasks already ordered by date with undated ones first,
// as the stores return them.
func Schedule(tasks []*models.Task) ScheduleView {
	view := ScheduleView{
		Tasks: tasks,
		Days:  make([]Day, 0),
	}
	if view.Tasks == nil {
		view.Tasks = make([]*models.Task, 0)
	}
	for _, t := range tasks {
		n := len(view.Days)
		if n > 0 && sameDate(view.Days[n-1].Date, t.Date) {
			view.Days[n-1].Tasks = append(view.Days[n-1].Tasks, t)
			continue
		}
		view.Days = append(view.Days, Day{Date: t.Date, Tasks: []*models.Task{t}})
	}
	return view
}

// ResolveToday prefers the calendar date reported by the client, which is
// its local wall clock, and falls back to now in loc when the client sent
// nothing usable.
func ResolveToday(clientDate string, now time.Time, loc *time.Location) models.Date {
	if clientDate = strings.TrimSpace(clientDate); clientDate != "" {
		if d, err := models.ParseDate(clientDate); err == nil {
			return d
		}
	}
	if loc == nil {
		loc = time.UTC
	}
	return models.DateOf(now.In(loc))
}

func sameDate(a, b *models.Date) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
