package workouts

import "context"

// Repo is implemented by both the postgres and the sqlite repository.
type Repo interface {
	Add(ctx context.Context, workout FinishedWorkout) (*FinishedWorkout, error)
	Get(ctx context.Context, id int) (*FinishedWorkout, error)
	ListAll(ctx context.Context) ([]FinishedWorkout, error)
	Delete(ctx context.Context, id int) error
	Count(ctx context.Context) (int, error)
}
