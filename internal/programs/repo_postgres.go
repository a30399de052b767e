package programs

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

func (r *PostgresRepo) Add(ctx context.Context, program Program) (_ *Program, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.programs.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	blob, err := encodeExercises(program.Exercises)
	if err != nil {
		return nil, err
	}

	var id int
	if err := r.db.QueryRow(
		ctx,
		`INSERT INTO programs (title, exercises)
			VALUES ($1, $2)
			RETURNING id;`,
		program.Title, blob,
	).Scan(&id); err != nil {
		return nil, fmt.Errorf("insert program: %w", err)
	}

	span.SetAttributes(attribute.Int("program.id", id))

	program.ID = id
	return &program, nil
}

func (r *PostgresRepo) Get(ctx context.Context, id int) (_ *Program, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.programs.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	var p Program
	var blob string
	err = r.db.QueryRow(
		ctx,
		`SELECT id, title, exercises FROM programs WHERE id = $1;`,
		id,
	).Scan(&p.ID, &p.Title, &blob)
	if errors.Is(err, pgx.ErrNoRows) {
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

func (r *PostgresRepo) ListAll(ctx context.Context) (_ []Program, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.programs.listall")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
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

func (r *PostgresRepo) Update(ctx context.Context, program *Program) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.programs.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", program.ID))

	blob, err := encodeExercises(program.Exercises)
	if err != nil {
		return err
	}

	res, err := r.db.Exec(
		ctx,
		`UPDATE programs SET title = $1, exercises = $2 WHERE id = $3;`,
		program.Title, blob, program.ID,
	)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrProgramNotFound
	}

	return nil
}

// Delete removes the program and returns its title.
func (r *PostgresRepo) Delete(ctx context.Context, id int) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.programs.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	var title string
	err = r.db.QueryRow(
		ctx,
		`DELETE FROM programs WHERE id = $1 RETURNING title;`,
		id,
	).Scan(&title)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrProgramNotFound
	}
	if err != nil {
		return "", fmt.Errorf("delete program: %w", err)
	}

	return title, nil
}
