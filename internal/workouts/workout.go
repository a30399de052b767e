package workouts

import (
	"errors"
	"time"
)

var ErrWorkoutNotFound = errors.New("workout not found")

type FinishedWorkout struct {
	ID            int       `json:"id"`
	FinishedAt    time.Time `json:"finished_at"`
	DurationSec   int       `json:"duration_sec"`
	ExercisesDone []string  `json:"exercises_done"`
}

// Payload is the wire shape of a finished workout. FinishedAt falls back to
// the current time when absent, duration and the exercise name list are
// required.
type Payload struct {
	FinishedAt    *time.Time `json:"finished_at"`
	DurationSec   *int       `json:"duration_sec"`
	ExercisesDone *[]string  `json:"exercises_done"`
}

func (p Payload) ToFinishedWorkout(now time.Time) (FinishedWorkout, error) {
	if p.DurationSec == nil {
		return FinishedWorkout{}, errors.New("duration_sec is required")
	}
	if *p.DurationSec < 0 {
		return FinishedWorkout{}, errors.New("duration_sec must not be negative")
	}
	if p.ExercisesDone == nil {
		return FinishedWorkout{}, errors.New("exercises_done must be a list")
	}

	w := FinishedWorkout{
		FinishedAt:    now,
		DurationSec:   *p.DurationSec,
		ExercisesDone: *p.ExercisesDone,
	}
	if p.FinishedAt != nil {
		w.FinishedAt = *p.FinishedAt
	}

	return w, nil
}
