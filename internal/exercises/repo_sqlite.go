package exercises

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

func (r *SQLiteRepo) Add(ctx context.Context, exercise Exercise) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	res, err := r.db.ExecContext(
		ctx,
		`INSERT INTO exercises
				(name, tip, yt_search, sets, reps, weight)
				VALUES (?, ?, ?, ?, ?, ?);`,
		exercise.Name, exercise.Tip, exercise.YtSearch, exercise.Sets, exercise.Reps, exercise.Weight,
	)
	if err != nil {
		return nil, fmt.Errorf("insert exercise: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	span.SetAttributes(attribute.Int("exercise.id", int(id)))

	exercise.ID = int(id)
	return &exercise, nil
}

func (r *SQLiteRepo) Get(ctx context.Context, id int) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	var e Exercise
	err = r.db.QueryRowContext(
		ctx,
		`SELECT id, name, tip, yt_search, sets, reps, weight
			FROM exercises
			WHERE id = ?;`,
		id,
	).Scan(&e.ID, &e.Name, &e.Tip, &e.YtSearch, &e.Sets, &e.Reps, &e.Weight)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrExerciseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get exercise: %w", err)
	}

	return &e, nil
}

func (r *SQLiteRepo) ListAll(ctx context.Context) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.listall")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.QueryContext(
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

func (r *SQLiteRepo) Update(ctx context.Context, exercise *Exercise) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", exercise.ID))

	res, err := r.db.ExecContext(
		ctx,
		`UPDATE exercises SET name = ?, tip = ?, yt_search = ?, sets = ?, reps = ?, weight = ? WHERE id = ?;`,
		exercise.Name, exercise.Tip, exercise.YtSearch, exercise.Sets, exercise.Reps, exercise.Weight, exercise.ID,
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrExerciseNotFound
	}

	return nil
}

func (r *SQLiteRepo) Delete(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	res, err := r.db.ExecContext(ctx, `DELETE FROM exercises WHERE id = ?;`, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrExerciseNotFound
	}
	return nil
}

func (r *SQLiteRepo) Count(ctx context.Context) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.count")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM exercises;`).Scan(&count); err != nil {
		return -1, fmt.Errorf("count exercises: %w", err)
	}
	return count, nil
}
