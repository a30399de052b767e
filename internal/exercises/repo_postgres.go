package exercises

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

func (r *PostgresRepo) Add(ctx context.Context, exercise Exercise) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = r.db.QueryRow(
		ctx,
		`INSERT INTO exercises
				(name, tip, yt_search, sets, reps, weight)
				VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id;`,
		exercise.Name, exercise.Tip, exercise.YtSearch, exercise.Sets, exercise.Reps, exercise.Weight,
	).Scan(&exercise.ID)
	if err != nil {
		return nil, fmt.Errorf("insert exercise: %w", err)
	}

	span.SetAttributes(attribute.Int("exercise.id", exercise.ID))

	return &exercise, nil
}

func (r *PostgresRepo) Get(ctx context.Context, id int) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	var e Exercise
	err = r.db.QueryRow(
		ctx,
		`SELECT id, name, tip, yt_search, sets, reps, weight
			FROM exercises
			WHERE id = $1;`,
		id,
	).Scan(&e.ID, &e.Name, &e.Tip, &e.YtSearch, &e.Sets, &e.Reps, &e.Weight)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrExerciseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get exercise: %w", err)
	}

	return &e, nil
}

func (r *PostgresRepo) ListAll(ctx context.Context) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.listall")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT id, name, tip, yt_search, sets, reps, weight
			FROM exercises
			ORDER BY id;`,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	exercises := make([]Exercise, 0)
	for rows.Next() {
		var e Exercise
		if err := rows.Scan(&e.ID, &e.Name, &e.Tip, &e.YtSearch, &e.Sets, &e.Reps, &e.Weight); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		exercises = append(exercises, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return exercises, nil
}

func (r *PostgresRepo) Update(ctx context.Context, exercise *Exercise) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", exercise.ID))

	tag, err := r.db.Exec(
		ctx,
		`UPDATE exercises SET name = $1, tip = $2, yt_search = $3, sets = $4, reps = $5, weight = $6 WHERE id = $7;`,
		exercise.Name, exercise.Tip, exercise.YtSearch, exercise.Sets, exercise.Reps, exercise.Weight, exercise.ID,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrExerciseNotFound
	}

	return nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM exercises WHERE id = $1;`,
		id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrExerciseNotFound
	}
	return nil
}

func (r *PostgresRepo) Count(ctx context.Context) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.count")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM exercises;`).Scan(&count); err != nil {
		return -1, fmt.Errorf("count exercises: %w", err)
	}
	return count, nil
}
