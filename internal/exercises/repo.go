package exercises

import "context"

// Repo is the persistence contract for the exercises table, implemented by
// both storage backends.
type Repo interface {
	Add(ctx context.Context, exercise Exercise) (*Exercise, error)
	Get(ctx context.Context, id int) (*Exercise, error)
	ListAll(ctx context.Context) ([]Exercise, error)
	Update(ctx context.Context, exercise *Exercise) error
	Delete(ctx context.Context, id int) error
	Count(ctx context.Context) (int, error)
}
