package db

import (
	"errors"
	"fmt"
	"io"
)

// RunMigrateCommand runs one 'migrate' action against the database at
// dbPath and writes its report to out.
func RunMigrateCommand(args []string, dbPath string, out io.Writer) error {
	if len(args) < 1 {
		PrintMigrateHelp(out)
		return errors.New("migrate: missing action")
	}
	action := args[0]
	if action == "help" {
		PrintMigrateHelp(out)
		return nil
	}

	database, err := OpenDB(dbPath)
	if err != nil {
		return err
	}
	defer database.Close()

	switch action {
	case "up":
		if err := database.MigrateUp(); err != nil {
			return err
		}
		fmt.Fprintln(out, "All migrations applied")
		return printVersion(database, out)

	case "down":
		if err := database.MigrateDown(); err != nil {
			return err
		}
		fmt.Fprintln(out, "Rolled back one migration")
		return printVersion(database, out)

	case "status":
		if err := printVersion(database, out); err != nil {
			return err
		}
		if _, dirty, _ := database.MigrateVersion(); dirty {
			fmt.Fprintln(out, "WARNING: database is in a dirty state; a migration failed mid-execution")
		}
		return nil

	default:
		PrintMigrateHelp(out)
		return fmt.Errorf("migrate: unknown action %q", action)
	}
}

func printVersion(database *DB, out io.Writer) error {
	version, dirty, err := database.MigrateVersion()
	if err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}
	fmt.Fprintf(out, "Current version: %d (dirty: %v)\n", version, dirty)
	return nil
}

// PrintMigrateHelp describes the migrate actions.
func PrintMigrateHelp(out io.Writer) {
	fmt.Fprintln(out, "Usage: calibrate -db <path> migrate <up|down|status|help>")
	fmt.Fprintln(out, "  up      Apply all pending migrations")
	fmt.Fprintln(out, "  down    Roll back one migration")
	fmt.Fprintln(out, "  status  Show the current schema version")
}
