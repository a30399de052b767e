package programs

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

func (r *SQLiteRepo) Add(ctx context.Context, program Program) (_ *Program, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.programs.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	blob, err := encodeExercises(program.Exercises)
	if err != nil {
		return nil, err
	}

	res, err := r.db.ExecContext(
		ctx,
		`INSERT INTO programs (title, exercises) VALUES (?, ?);`,
		program.Title, blob,
	)
	if err != nil {
		return nil, fmt.Errorf("insert program: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	span.SetAttributes(attribute.Int("program.id", int(id)))

	program.ID = int(id)
	return &program, nil
}

func (r *SQLiteRepo) Get(ctx context.Context, id int) (_ *Program, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.programs.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	var p Program
	var blob string
	err = r.db.QueryRowContext(
		ctx,
		`SELECT id, title, exercises FROM programs WHERE id = ?;`,
		id,
	).Scan(&p.ID, &p.Title, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProgramNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get program: %w", err)
	}

	if p.Exercises, err = decodeExercises(blob); err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *SQLiteRepo) ListAll(ctx context.Context) (_ []Program, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.programs.listall")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, title, exercises FROM programs ORDER BY id;`,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	programs := make([]Program, 0)
	for rows.Next() {
		var p Program
		var blob string
		if err := rows.Scan(&p.ID, &p.Title, &blob); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		if p.Exercises, err = decodeExercises(blob); err != nil {
			return nil, err
		}
		programs = append(programs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return programs, nil
}

func (r *SQLiteRepo) Update(ctx context.Context, program *Program) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.programs.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", program.ID))

	blob, err := encodeExercises(program.Exercises)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(
		ctx,
		`UPDATE programs SET title = ?, exercises = ? WHERE id = ?;`,
		program.Title, blob, program.ID,
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrProgramNotFound
	}

	return nil
}

// Delete removes the program and returns its title.
func (r *SQLiteRepo) Delete(ctx context.Context, id int) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.programs.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	var title string
	err = r.db.QueryRowContext(
		ctx,
		`DELETE FROM programs WHERE id = ? RETURNING title;`,
		id,
	).Scan(&title)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrProgramNotFound
	}
	if err != nil {
		return "", fmt.Errorf("delete program: %w", err)
	}

	return title, nil
}
