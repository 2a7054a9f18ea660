// Command migrate inspects and changes the recipebox database schema.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"recipebox/internal/config"
	"recipebox/internal/database"

	"gorm.io/gorm"
)

const usageText = "usage: go run ./cmd/migrate <up|auto|status|list|down <version>>"

type command func(ctx context.Context, db *gorm.DB, cfg *config.Config, args []string) error

var commands = map[string]command{
	"up":     migrateUp,
	"auto":   migrateAuto,
	"status": showStatus,
	"list":   listMigrations,
	"down":   migrateDown,
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	flag.Parse()
	if flag.NArg() < 1 {
		return errors.New(usageText)
	}
	cmd, ok := commands[strings.ToLower(strings.TrimSpace(flag.Arg(0)))]
	if !ok {
		return errors.New(usageText)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: false})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	return cmd(context.Background(), db, cfg, flag.Args()[1:])
}

func migrateUp(ctx context.Context, db *gorm.DB, _ *config.Config, _ []string) error {
	if err := database.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("sql migrations failed: %w", err)
	}
	log.Printf("recipebox schema at %d embedded migrations", len(database.GetMigrations()))
	return nil
}

func migrateAuto(ctx context.Context, db *gorm.DB, cfg *config.Config, _ []string) error {
	cfg.DBSchemaMode = database.SchemaModeAuto
	if err := database.ApplySchema(ctx, db, cfg); err != nil {
		return fmt.Errorf("auto schema apply failed: %w", err)
	}
	log.Printf("automigrated %d recipebox models", len(database.PersistentModels()))
	return nil
}

func showStatus(ctx context.Context, db *gorm.DB, cfg *config.Config, _ []string) error {
	status, err := database.GetSchemaStatus(ctx, db, cfg)
	if err != nil {
		return fmt.Errorf("schema status failed: %w", err)
	}
	return writeStatus(os.Stdout, status)
}

func listMigrations(_ context.Context, _ *gorm.DB, _ *config.Config, _ []string) error {
	return writeMigrations(os.Stdout, database.GetMigrations())
}

func migrateDown(ctx context.Context, db *gorm.DB, _ *config.Config, args []string) error {
	m, err := rollbackTarget(args)
	if err != nil {
		return err
	}
	if err := database.RollbackMigration(ctx, db, m.Version); err != nil {
		return fmt.Errorf("rollback %s failed: %w", m.String(), err)
	}
	log.Printf("rolled back %s", m.String())
	return nil
}

// rollbackTarget resolves the version argument of "down" to an embedded
// migration.
func rollbackTarget(args []string) (*database.Migration, error) {
	if len(args) < 1 {
		return nil, errors.New("usage: go run ./cmd/migrate down <version>")
	}
	version, err := strconv.Atoi(args[0])
	if err != nil {
		return nil, fmt.Errorf("invalid version %q: %w", args[0], err)
	}
	m := database.GetMigrationByVersion(version)
	if m == nil {
		return nil, fmt.Errorf("no embedded migration with version %d", version)
	}
	return m, nil
}

func writeStatus(w io.Writer, status *database.SchemaStatus) error {
	fmt.Fprintf(w, "recipebox schema: driver=%s mode=%s env=%s\n", status.Driver, status.Mode, status.Environment)
	fmt.Fprintf(w, "automigrate models: %t\n", status.WillRunAutoMigrate)
	if !status.WillRunSQL {
		fmt.Fprintf(w, "sql migrations: not used with %s in %s mode\n", status.Driver, status.Mode)
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tNAME\tSTATE")
	for _, m := range status.AppliedMigrations {
		fmt.Fprintf(tw, "%06d\t%s\tapplied\n", m.Version, m.Name)
	}
	for _, v := range status.UnknownVersions {
		fmt.Fprintf(tw, "%06d\t?\tapplied, not in this build\n", v)
	}
	for _, m := range status.PendingMigrations {
		fmt.Fprintf(tw, "%06d\t%s\tpending\n", m.Version, m.Name)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d applied, %d pending\n", len(status.AppliedVersions), len(status.PendingMigrations))
	return err
}

func writeMigrations(w io.Writer, migrations []database.Migration) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tNAME\tROLLBACK")
	for _, m := range migrations {
		rollback := "yes"
		if strings.TrimSpace(m.DownScript) == "" {
			rollback = "no"
		}
		fmt.Fprintf(tw, "%06d\t%s\t%s\n", m.Version, m.Name, rollback)
	}
	return tw.Flush()
}
