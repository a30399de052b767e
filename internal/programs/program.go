package programs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mstojkov/fittracker/internal/exercises"
)

var ErrProgramNotFound = errors.New("program not found")

type Program struct {
	ID        int                  `json:"id"`
	Title     string               `json:"title"`
	Exercises []exercises.Exercise `json:"exercises"`
}

// Summary is the list view of a program: no exercise bodies, just the count.
type Summary struct {
	ID             int    `json:"id"`
	Title          string `json:"title"`
	ExercisesCount int    `json:"exercises_count"`
}

func (p Program) Summary() Summary {
	return Summary{
		ID:             p.ID,
		Title:          p.Title,
		ExercisesCount: len(p.Exercises),
	}
}

// Payload is the wire shape of an uploaded program. Exercises is a pointer
// so that a missing or null sequence can be rejected while an empty one
// stays valid.
type Payload struct {
	ID        *int                 `json:"id"`
	Title     string               `json:"title"`
	Exercises *[]exercises.Payload `json:"exercises"`
}

func (p Payload) ToProgram() (Program, error) {
	if strings.TrimSpace(p.Title) == "" {
		return Program{}, errors.New("program title is required")
	}
	if p.Exercises == nil {
		return Program{}, errors.New("program exercises must be a list")
	}

	program := Program{
		Title:     p.Title,
		Exercises: make([]exercises.Exercise, 0, len(*p.Exercises)),
	}
	if p.ID != nil {
		program.ID = *p.ID
	}
	for i, exPayload := range *p.Exercises {
		e, err := exPayload.ToExercise()
		if err != nil {
			return Program{}, fmt.Errorf("exercise %d: %w", i, err)
		}
		program.Exercises = append(program.Exercises, e)
	}

	return program, nil
}
