package exercises

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
)

type seedRepo interface {
	Add(ctx context.Context, exercise Exercise) (*Exercise, error)
	Count(ctx context.Context) (int, error)
}

// seedExercises is the fixed starter set inserted on first startup.
var seedExercises = []Exercise{
	{Name: "Жим лёжа", Tip: strPtr("Не забывай про разминку!"), YtSearch: strPtr("bench press tutorial"), Sets: 1, Reps: 1},
	{Name: "Приседания", Tip: strPtr("Следи за спиной"), YtSearch: strPtr("squats tutorial"), Sets: 1, Reps: 1},
	{Name: "Становая тяга", Tip: strPtr("Разгибай ноги"), YtSearch: strPtr("deadlift tutorial"), Sets: 1, Reps: 1},
	{Name: "Подтягивания", Tip: strPtr("Не раскачивайся"), YtSearch: strPtr("pull ups tutorial"), Sets: 1, Reps: 1},
	{Name: "Отжимания", Tip: strPtr("Держи тело прямо"), YtSearch: strPtr("push ups tutorial"), Sets: 1, Reps: 1},
	{Name: "Планка", Tip: strPtr("Не прогибай поясницу"), YtSearch: strPtr("plank tutorial"), Sets: 1, Reps: 1},
}

// Seed inserts the starter exercises when the table is empty. The emptiness
// check makes it idempotent; it must run before the server takes traffic.
func Seed(ctx context.Context, repo seedRepo) error {
	count, err := repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("count exercises: %w", err)
	}
	if count > 0 {
		log.Debugf("exercises table not empty (%d rows), skipping seed", count)
		return nil
	}

	for _, e := range seedExercises {
		added, err := repo.Add(ctx, e)
		if err != nil {
			return fmt.Errorf("seed exercise [%s]: %w", e.Name, err)
		}
		log.Tracef("seeded exercise %d: %s", added.ID, added.Name)
	}

	log.Debugf("seeded %d exercises", len(seedExercises))
	return nil
}

func strPtr(s string) *string {
	return &s
}
