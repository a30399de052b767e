package workouts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mstojkov/fittracker/internal/telemetry/tracing"

	"go.opentelemetry.io/otel/attribute"
)

type SQLiteRepo struct {
	db *sql.DB
}

func NewSQLiteRepo(db *sql.DB) *SQLiteRepo {
	return &SQLiteRepo{
		db: db,
	}
}

// Timestamps are stored as RFC3339 UTC text so that lexical order matches
// chronological order. Sub-second precision is dropped on write.
func (r *SQLiteRepo) Add(ctx context.Context, workout FinishedWorkout) (_ *FinishedWorkout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	blob, err := encodeExerciseNames(workout.ExercisesDone)
	if err != nil {
		return nil, err
	}

	workout.FinishedAt = workout.FinishedAt.UTC().Truncate(time.Second)

	res, err := r.db.ExecContext(
		ctx,
		`INSERT INTO finished_workouts (finished_at, duration_sec, exercises_done)
			VALUES (?, ?, ?);`,
		workout.FinishedAt.Format(time.RFC3339), workout.DurationSec, blob,
	)
	if err != nil {
		return nil, fmt.Errorf("insert finished workout: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	span.SetAttributes(attribute.Int("workout.id", int(id)))

	workout.ID = int(id)
	return &workout, nil
}

func (r *SQLiteRepo) Get(ctx context.Context, id int) (_ *FinishedWorkout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	row := r.db.QueryRowContext(
		ctx,
		`SELECT id, finished_at, duration_sec, exercises_done
			FROM finished_workouts
			WHERE id = ?;`,
		id,
	)
	w, err := scanWorkout(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWorkoutNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get finished workout: %w", err)
	}

	return w, nil
}

// ListAll returns finished workouts newest first.
func (r *SQLiteRepo) ListAll(ctx context.Context) (_ []FinishedWorkout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.listall")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, finished_at, duration_sec, exercises_done
			FROM finished_workouts
			ORDER BY finished_at DESC;`,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	workouts := make([]FinishedWorkout, 0)
	for rows.Next() {
		w, err := scanWorkout(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		workouts = append(workouts, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return workouts, nil
}

func (r *SQLiteRepo) Delete(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	res, err := r.db.ExecContext(ctx, `DELETE FROM finished_workouts WHERE id = ?;`, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrWorkoutNotFound
	}
	return nil
}

func (r *SQLiteRepo) Count(ctx context.Context) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.count")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM finished_workouts;`).Scan(&count); err != nil {
		return -1, fmt.Errorf("count finished workouts: %w", err)
	}
	return count, nil
}

func scanWorkout(scan func(dest ...any) error) (*FinishedWorkout, error) {
	var w FinishedWorkout
	var finishedAt string
	var blob string
	if err := scan(&w.ID, &finishedAt, &w.DurationSec, &blob); err != nil {
		return nil, err
	}

	var err error
	if w.FinishedAt, err = time.Parse(time.RFC3339, finishedAt); err != nil {
		return nil, fmt.Errorf("parse finished_at: %w", err)
	}
	if w.ExercisesDone, err = decodeExerciseNames(blob); err != nil {
		return nil, err
	}

	return &w, nil
}
