package programs

import (
	"encoding/json"
	"fmt"

	"github.com/mstojkov/fittracker/internal/exercises"
)

// The exercises of a program live in a single text column as a JSON array
// (format v1). Keep the encode/decode pair together so the column format
// stays stable regardless of the storage engine behind it.

func encodeExercises(ee []exercises.Exercise) (string, error) {
	if ee == nil {
		ee = make([]exercises.Exercise, 0)
	}
	blob, err := json.Marshal(ee)
	if err != nil {
		return "", fmt.Errorf("encode exercises: %w", err)
	}
	return string(blob), nil
}

func decodeExercises(blob string) ([]exercises.Exercise, error) {
	ee := make([]exercises.Exercise, 0)
	if err := json.Unmarshal([]byte(blob), &ee); err != nil {
		return nil, fmt.Errorf("decode exercises: %w", err)
	}
	return ee, nil
}
