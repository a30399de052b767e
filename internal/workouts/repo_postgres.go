package workouts

import (
	"context"
	"errors"
	"fmt"

	"github.com/mstojkov/fittracker/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

type PostgresRepo struct {
	db *pgxpool.Pool
}

func NewPostgresRepo(db *pgxpool.Pool) *PostgresRepo {
	return &PostgresRepo{
		db: db,
	}
}

func (r *PostgresRepo) Add(ctx context.Context, workout FinishedWorkout) (_ *FinishedWorkout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	blob, err := encodeExerciseNames(workout.ExercisesDone)
	if err != nil {
		return nil, err
	}

	var id int
	if err := r.db.QueryRow(
		ctx,
		`INSERT INTO finished_workouts (finished_at, duration_sec, exercises_done)
			VALUES ($1, $2, $3)
			RETURNING id;`,
		workout.FinishedAt, workout.DurationSec, blob,
	).Scan(&id); err != nil {
		return nil, fmt.Errorf("insert finished workout: %w", err)
	}

	span.SetAttributes(attribute.Int("workout.id", id))

	workout.ID = id
	return &workout, nil
}

func (r *PostgresRepo) Get(ctx context.Context, id int) (_ *FinishedWorkout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	var w FinishedWorkout
	var blob string
	err = r.db.QueryRow(
		ctx,
		`SELECT id, finished_at, duration_sec, exercises_done
			FROM finished_workouts
			WHERE id = $1;`,
		id,
	).Scan(&w.ID, &w.FinishedAt, &w.DurationSec, &blob)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrWorkoutNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get finished workout: %w", err)
	}

	if w.ExercisesDone, err = decodeExerciseNames(blob); err != nil {
		return nil, err
	}

	return &w, nil
}

// ListAll returns finished workouts newest first.
func (r *PostgresRepo) ListAll(ctx context.Context) (_ []FinishedWorkout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.listall")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
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
		var w FinishedWorkout
		var blob string
		if err := rows.Scan(&w.ID, &w.FinishedAt, &w.DurationSec, &blob); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		if w.ExercisesDone, err = decodeExerciseNames(blob); err != nil {
			return nil, err
		}
		workouts = append(workouts, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return workouts, nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	res, err := r.db.Exec(ctx, `DELETE FROM finished_workouts WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrWorkoutNotFound
	}
	return nil
}

func (r *PostgresRepo) Count(ctx context.Context) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.count")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM finished_workouts;`).Scan(&count); err != nil {
		return -1, fmt.Errorf("count finished workouts: %w", err)
	}
	return count, nil
}
