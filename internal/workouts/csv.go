package workouts

import (
	"fmt"
	"strings"
)

// The export format is consumed by existing spreadsheets and must stay
// byte-stable: a space after each comma and exercises joined by "; " in a
// single trailing field. encoding/csv cannot produce this layout, hence the
// manual writer.
const (
	historyCSVHeader     = "Date, Duration (sec), Exercises"
	historyCSVDateFormat = "02.01.2006 15:04"
)

func HistoryCSV(workouts []FinishedWorkout) []byte {
	var sb strings.Builder
	sb.WriteString(historyCSVHeader)
	sb.WriteString("\n")
	for _, w := range workouts {
		sb.WriteString(fmt.Sprintf(
			"%s, %d, %s\n",
			w.FinishedAt.Format(historyCSVDateFormat),
			w.DurationSec,
			strings.Join(w.ExercisesDone, "; "),
		))
	}
	return []byte(sb.String())
}
