package programs

import "context"

// Repo is implemented by both the postgres and the sqlite repository.
type Repo interface {
	Add(ctx context.Context, program Program) (*Program, error)
	Get(ctx context.Context, id int) (*Program, error)
	ListAll(ctx context.Context) ([]Program, error)
	Update(ctx context.Context, program *Program) error
	Delete(ctx context.Context, id int) (string, error)
}
