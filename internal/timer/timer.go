// Package timer is the countdown used by the timer page. The state is what
// the page persists between reloads; Reconcile catches up on the wall
// clock time that passed while nothing was ticking.
package timer

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrZeroDuration = errors.New("timer duration must be greater than zero")

type Phase string

const (
	PhaseSetup   Phase = "setup"
	PhaseRunning Phase = "running"
	PhasePaused  Phase = "paused"
	PhaseTimeUp  Phase = "time_up"
)

const (
	maxHours   = 23
	maxMinutes = 59
	maxSeconds = 59
)

// State mirrors the persisted payload. LastUpdatedAt is unix milliseconds.
type State struct {
	InputHours       int   `json:"inputHours"`
	InputMinutes     int   `json:"inputMinutes"`
	InputSeconds     int   `json:"inputSeconds"`
	InitialSeconds   int   `json:"initialSeconds"`
	RemainingSeconds int   `json:"remainingSeconds"`
	IsCounting       bool  `json:"isCounting"`
	IsTimeUp         bool  `json:"isTimeUp"`
	LastUpdatedAt    int64 `json:"lastUpdatedAt"`
}

// New returns the one minute countdown the page starts with.
func New(now time.Time) *State {
	return &State{
		InputMinutes:     1,
		InitialSeconds:   60,
		RemainingSeconds: 60,
		LastUpdatedAt:    now.UnixMilli(),
	}
}

// savedState is the persisted payload as the page may have left it. Any
// key can be missing or null.
type savedState struct {
	InputHours       *int   `json:"inputHours"`
	InputMinutes     *int   `json:"inputMinutes"`
	InputSeconds     *int   `json:"inputSeconds"`
	InitialSeconds   *int   `json:"initialSeconds"`
	RemainingSeconds *int   `json:"remainingSeconds"`
	IsCounting       *bool  `json:"isCounting"`
	IsTimeUp         *bool  `json:"isTimeUp"`
	LastUpdatedAt    *int64 `json:"lastUpdatedAt"`
}

// Restore decodes a persisted payload, filling missing keys the way a
// fresh page would: the inputs and durations of New, remaining time equal
// to the initial duration and a last update at now.
func Restore(data []byte, now time.Time) (*State, error) {
	var saved savedState
	err := json.Unmarshal(data, &saved)
	if err != nil {
		return nil, fmt.Errorf("failed to decode timer state: %w", err)
	}

	s := New(now)
	s.InputHours = valueOr(saved.InputHours, s.InputHours)
	s.InputMinutes = valueOr(saved.InputMinutes, s.InputMinutes)
	s.InputSeconds = valueOr(saved.InputSeconds, s.InputSeconds)
	s.InitialSeconds = valueOr(saved.InitialSeconds, s.InitialSeconds)
	s.RemainingSeconds = valueOr(saved.RemainingSeconds, s.InitialSeconds)
	s.IsCounting = valueOr(saved.IsCounting, false)
	s.IsTimeUp = valueOr(saved.IsTimeUp, false)
	s.LastUpdatedAt = valueOr(saved.LastUpdatedAt, s.LastUpdatedAt)
	return s, nil
}

// SetInput clamps each component to its clock range.
func (s *State) SetInput(hours, minutes, seconds int) {
	s.InputHours = clamp(hours, 0, maxHours)
	s.InputMinutes = clamp(minutes, 0, maxMinutes)
	s.InputSeconds = clamp(seconds, 0, maxSeconds)
}

func (s *State) Start(now time.Time) error {
	s.SetInput(s.InputHours, s.InputMinutes, s.InputSeconds)
	total := s.InputHours*3600 + s.InputMinutes*60 + s.InputSeconds
	if total == 0 {
		return ErrZeroDuration
	}

	s.InitialSeconds = total
	s.RemainingSeconds = total
	s.IsCounting = true
	s.IsTimeUp = false
	s.touch(now)
	return nil
}

func (s *State) Pause(now time.Time) {
	s.IsCounting = false
	s.touch(now)
}

// Resume does nothing once the countdown has run out.
func (s *State) Resume(now time.Time) {
	if s.RemainingSeconds <= 0 {
		return
	}
	s.IsCounting = true
	s.IsTimeUp = false
	s.touch(now)
}

// Reset rewinds to the last started duration without starting it.
func (s *State) Reset(now time.Time) {
	s.RemainingSeconds = s.InitialSeconds
	s.IsCounting = false
	s.IsTimeUp = false
	s.touch(now)
}

// Tick advances a running countdown by one second and reports whether it
// just ran out.
func (s *State) Tick(now time.Time) bool {
	if !s.IsCounting {
		return false
	}
	if s.RemainingSeconds <= 1 {
		s.expire(now)
		return true
	}
	s.RemainingSeconds--
	s.touch(now)
	return false
}

// Reconcile subtracts the whole seconds elapsed since the last update from
// a running countdown and reports whether it ran out meanwhile.
func (s *State) Reconcile(now time.Time) bool {
	defer s.touch(now)

	if !s.IsCounting || s.IsTimeUp || s.RemainingSeconds <= 0 {
		return false
	}

	elapsed := (now.UnixMilli() - s.LastUpdatedAt) / 1000
	if elapsed < 0 {
		elapsed = 0
	}
	s.RemainingSeconds -= int(elapsed)
	if s.RemainingSeconds <= 0 {
		s.RemainingSeconds = 0
		s.IsCounting = false
		s.IsTimeUp = true
		return true
	}
	return false
}

func (s *State) Phase() Phase {
	switch {
	case s.IsTimeUp:
		return PhaseTimeUp
	case s.IsCounting:
		return PhaseRunning
	case s.RemainingSeconds > 0 && s.RemainingSeconds < s.InitialSeconds:
		return PhasePaused
	default:
		return PhaseSetup
	}
}

// Display renders the inputs while setting up and the remaining time
// otherwise, as HH:MM:SS.
func (s *State) Display() string {
	if s.Phase() == PhaseSetup && s.RemainingSeconds == s.InitialSeconds {
		return fmt.Sprintf("%02d:%02d:%02d", s.InputHours, s.InputMinutes, s.InputSeconds)
	}
	return Format(s.RemainingSeconds)
}

func Format(total int) string {
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, total%3600/60, total%60)
}

func (s *State) expire(now time.Time) {
	s.RemainingSeconds = 0
	s.IsCounting = false
	s.IsTimeUp = true
	s.touch(now)
}

func (s *State) touch(now time.Time) {
	s.LastUpdatedAt = now.UnixMilli()
}

func valueOr[T any](v *T, def T) T {
	if v == nil {
		return def
	}
	return *v
}

func clamp(v, lo, hi int) int {
	return min(hi, max(lo, v))
}
