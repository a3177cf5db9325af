package database

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// schemaModels lists every table the application owns.
var schemaModels = []any{
	(*User)(nil),
	(*PolicyInquiry)(nil),
	(*DeniedInquiry)(nil),
}

// CreateSchema creates the application's tables if they do not exist yet,
// so a fresh database is usable without a separate provisioning step.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	for _, model := range schemaModels {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table for %T: %w", model, err)
		}
	}
	return nil
}
