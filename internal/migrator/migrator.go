// Package migrator keeps the Postgres schema in line with the models using atlas.
package migrator

import (
	"context"
	"database/sql"
	"fmt"

	"ariga.io/atlas/sql/migrate"
	"ariga.io/atlas/sql/postgres"
	"ariga.io/atlas/sql/schema"

	"github.com/eleven-am/tasklist/internal/logger"
)

// Options controls a migration run
type Options struct {
	// DryRun plans the changes without applying them
	DryRun bool
	// AllowDestructive keeps drops in the plan; otherwise they are skipped
	AllowDestructive bool
}

// Plan is the outcome of comparing the live schema with the desired one
type Plan struct {
	Changes    []schema.Change
	Skipped    []string
	Statements []string
	Applied    bool
}

// Migrator diffs and applies the schema on a live database
type Migrator struct {
	db *sql.DB
}

func New(db *sql.DB) *Migrator {
	return &Migrator{db: db}
}

// Migrate inspects the managed tables, plans the changes that bring them to Desired and,
// unless DryRun is set, applies them.
func (m *Migrator) Migrate(ctx context.Context, opts Options) (*Plan, error) {
	log := logger.Migration()

	driver, err := postgres.Open(m.db)
	if err != nil {
		return nil, fmt.Errorf("failed to open atlas driver: %w", err)
	}

	current, err := driver.InspectSchema(ctx, "", &schema.InspectOptions{Tables: ManagedTables})
	if err != nil {
		return nil, fmt.Errorf("failed to inspect current schema: %w", err)
	}
	log.Debug("inspected schema", "schema", current.Name, "tables", len(current.Tables))

	changes, err := driver.SchemaDiff(current, Desired(current.Name))
	if err != nil {
		return nil, fmt.Errorf("failed to calculate diff: %w", err)
	}

	plan := &Plan{}
	changes, plan.Skipped = FilterDestructive(changes, opts.AllowDestructive)
	plan.Changes = changes
	for _, skipped := range plan.Skipped {
		log.Warn("skipping destructive change", "change", skipped)
	}

	if len(changes) == 0 {
		log.Info("schema is up to date")
		return plan, nil
	}

	plan.Statements, err = GenerateAtlasSQL(ctx, driver, changes)
	if err != nil {
		return nil, err
	}

	if opts.DryRun {
		return plan, nil
	}

	if err := driver.ApplyChanges(ctx, changes); err != nil {
		return nil, fmt.Errorf("failed to apply changes: %w", err)
	}
	plan.Applied = true
	log.Info("schema migrated", "changes", len(changes))

	return plan, nil
}

func GenerateAtlasSQL(ctx context.Context, driver migrate.Driver, changes []schema.Change) ([]string, error) {
	plan, err := driver.PlanChanges(ctx, "tasklist", changes)
	if err != nil {
		return nil, fmt.Errorf("failed to generate plan: %w", err)
	}

	statements := make([]string, len(plan.Changes))
	for i, change := range plan.Changes {
		statements[i] = change.Cmd
		if change.Comment != "" {
			statements[i] = fmt.Sprintf("-- %s\n%s", change.Comment, change.Cmd)
		}
	}

	return statements, nil
}

// FilterDestructive splits changes into the ones to keep and descriptions of the
// destructive ones dropped. Destructive sub-changes of a ModifyTable are removed
// individually.
func FilterDestructive(changes []schema.Change, allow bool) ([]schema.Change, []string) {
	if allow {
		return changes, nil
	}

	var kept []schema.Change
	var skipped []string
	for _, change := range changes {
		mod, ok := change.(*schema.ModifyTable)
		if !ok {
			if IsDestructiveChange(change) {
				skipped = append(skipped, DescribeChange(change))
				continue
			}
			kept = append(kept, change)
			continue
		}

		var sub []schema.Change
		for _, c := range mod.Changes {
			if IsDestructiveChange(c) {
				skipped = append(skipped, fmt.Sprintf("%s on %s", DescribeChange(c), mod.T.Name))
				continue
			}
			sub = append(sub, c)
		}
		if len(sub) > 0 {
			kept = append(kept, &schema.ModifyTable{T: mod.T, Changes: sub})
		}
	}
	return kept, skipped
}

func IsDestructiveChange(change schema.Change) bool {
	switch c := change.(type) {
	case *schema.DropTable, *schema.DropColumn, *schema.DropIndex, *schema.DropForeignKey:
		return true
	case *schema.ModifyTable:
		for _, subChange := range c.Changes {
			if IsDestructiveChange(subChange) {
				return true
			}
		}
	}
	return false
}

func DescribeChange(change schema.Change) string {
	switch c := change.(type) {
	case *schema.AddTable:
		return fmt.Sprintf("Create table %s", c.T.Name)
	case *schema.DropTable:
		return fmt.Sprintf("Drop table %s", c.T.Name)
	case *schema.ModifyTable:
		return fmt.Sprintf("Modify table %s (%d changes)", c.T.Name, len(c.Changes))
	case *schema.AddColumn:
		return fmt.Sprintf("Add column %s", c.C.Name)
	case *schema.DropColumn:
		return fmt.Sprintf("Drop column %s", c.C.Name)
	case *schema.ModifyColumn:
		return fmt.Sprintf("Modify column %s", c.To.Name)
	case *schema.AddIndex:
		return fmt.Sprintf("Add index %s", c.I.Name)
	case *schema.DropIndex:
		return fmt.Sprintf("Drop index %s", c.I.Name)
	case *schema.AddForeignKey:
		return fmt.Sprintf("Add foreign key %s", c.F.Symbol)
	case *schema.DropForeignKey:
		return fmt.Sprintf("Drop foreign key %s", c.F.Symbol)
	default:
		return fmt.Sprintf("Change type %T", change)
	}
}
