package workouts

import (
	"encoding/json"
	"fmt"
)

// Exercise names of a finished workout live in a single text column as a
// JSON array of strings (format v1).

func encodeExerciseNames(names []string) (string, error) {
	if names == nil {
		names = make([]string, 0)
	}
	blob, err := json.Marshal(names)
	if err != nil {
		return "", fmt.Errorf("encode exercise names: %w", err)
	}
	return string(blob), nil
}

func decodeExerciseNames(blob string) ([]string, error) {
	names := make([]string, 0)
	if err := json.Unmarshal([]byte(blob), &names); err != nil {
		return nil, fmt.Errorf("decode exercise names: %w", err)
	}
	return names, nil
}
