package migrations

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"history-quiz-service/internal/infra/memory"
)

func init() {
	// Seed the built-in question bank so a fresh database can serve
	// games immediately.
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			for difficulty, pool := range memory.DefaultPools() {
				for _, question := range pool {
					data, err := json.Marshal(question)
					if err != nil {
						return err
					}
					if _, err := db.ExecContext(ctx,
						`INSERT INTO questions (id, difficulty, data) VALUES (?, ?, ?::jsonb)`,
						uuid.NewString(), string(difficulty), string(data),
					); err != nil {
						return err
					}
				}
			}
			return nil
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `DELETE FROM questions`)
			return err
		},
	)
}
