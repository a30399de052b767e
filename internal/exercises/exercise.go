package exercises

import (
	"errors"
	"strings"
)

var ErrExerciseNotFound = errors.New("exercise not found")

type Exercise struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Tip      *string `json:"tip"`
	YtSearch *string `json:"yt_search"`
	Sets     int     `json:"sets"`
	Reps     int     `json:"reps"`
	Weight   float64 `json:"weight"`
}

// Payload is the wire shape of an exercise. Optional numeric fields are
// pointers so that an absent value can be told apart from an explicit zero
// and fall back to its default (sets=1, reps=1, weight=0).
type Payload struct {
	ID       *int     `json:"id"`
	Name     string   `json:"name"`
	Tip      *string  `json:"tip"`
	YtSearch *string  `json:"yt_search"`
	Sets     *int     `json:"sets"`
	Reps     *int     `json:"reps"`
	Weight   *float64 `json:"weight"`
}

// ToExercise validates the payload and maps it, field by field, onto the
// entity, applying defaults for absent optional values.
func (p Payload) ToExercise() (Exercise, error) {
	if strings.TrimSpace(p.Name) == "" {
		return Exercise{}, errors.New("exercise name is required")
	}

	e := Exercise{
		Name:     p.Name,
		Tip:      p.Tip,
		YtSearch: p.YtSearch,
		Sets:     1,
		Reps:     1,
	}
	if p.ID != nil {
		e.ID = *p.ID
	}
	if p.Sets != nil {
		e.Sets = *p.Sets
	}
	if p.Reps != nil {
		e.Reps = *p.Reps
	}
	if p.Weight != nil {
		e.Weight = *p.Weight
	}
	return e, nil
}
