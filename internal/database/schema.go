package database

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// CreateSchema creates all tables that do not exist yet, parents first
func CreateSchema(ctx context.Context, db *bun.DB) error {
	tables := []struct {
		model       any
		foreignKeys []string
	}{
		{model: (*User)(nil)},
		{
			model:       (*CustomerProfile)(nil),
			foreignKeys: []string{`("user_id") REFERENCES "users" ("id") ON DELETE CASCADE`},
		},
		{model: (*Category)(nil)},
		{
			model: (*Product)(nil),
			foreignKeys: []string{
				`("category_id") REFERENCES "categories" ("id")`,
				`("seller_id") REFERENCES "users" ("id")`,
			},
		},
		{
			model: (*Service)(nil),
			foreignKeys: []string{
				`("category_id") REFERENCES "categories" ("id")`,
				`("seller_id") REFERENCES "users" ("id")`,
			},
		},
	}

	for _, t := range tables {
		q := db.NewCreateTable().Model(t.model).IfNotExists()
		for _, fk := range t.foreignKeys {
			q = q.ForeignKey(fk)
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table for %T: %w", t.model, err)
		}
	}

	indexes := []struct {
		model   any
		name    string
		columns []string
	}{
		{model: (*Category)(nil), name: "categories_type_sort_idx", columns: []string{"type", "sort_order"}},
		{model: (*Product)(nil), name: "products_category_idx", columns: []string{"category_id"}},
		{model: (*Service)(nil), name: "services_category_idx", columns: []string{"category_id"}},
	}

	for _, idx := range indexes {
		_, err := db.NewCreateIndex().
			Model(idx.model).
			Index(idx.name).
			Column(idx.columns...).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}
