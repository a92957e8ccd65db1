package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// GamesColumns holds the columns for the "games" table.
	GamesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "player", Type: field.TypeString},
		{Name: "difficulty", Type: field.TypeString},
		{Name: "policy", Type: field.TypeString},
		{Name: "score", Type: field.TypeInt},
		{Name: "moves", Type: field.TypeInt},
		{Name: "duration_ms", Type: field.TypeInt64},
		{Name: "completed_at", Type: field.TypeInt64},
	}
	// GamesTable holds the schema information for the "games" table.
	GamesTable = &schema.Table{
		Name:       gamesTable,
		Columns:    GamesColumns,
		PrimaryKey: []*schema.Column{GamesColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:       "games_difficulty_score",
				Unique:     false,
				Columns:    []*schema.Column{GamesColumns[2], GamesColumns[4]},
				Annotation: &entsql.IndexAnnotation{DescColumns: map[string]bool{"score": true}},
			},
		},
	}
	// SettingsColumns holds the columns for the "settings" table.
	SettingsColumns = []*schema.Column{
		{Name: "key", Type: field.TypeString},
		{Name: "value", Type: field.TypeString},
		{Name: "updated_at", Type: field.TypeInt64},
	}
	// SettingsTable holds the schema information for the "settings" table.
	SettingsTable = &schema.Table{
		Name:       settingsTable,
		Columns:    SettingsColumns,
		PrimaryKey: []*schema.Column{SettingsColumns[0]},
	}
	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		GamesTable,
		SettingsTable,
	}
)

// migrate creates missing tables, columns and indexes.
func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("ent migrate: %w", err)
	}
	return m.Create(ctx, Tables...)
}
