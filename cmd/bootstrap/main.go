// Command bootstrap creates the primary manager account or resets its password.
//
//	bootstrap -password 'new-secret'
//	echo 'new-secret' | bootstrap -password -
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"lembah/internal/adapters/storage"
	accountStore "lembah/internal/adapters/storage/account"
	"lembah/internal/application/orchestrators"
	"lembah/internal/config"
	"lembah/internal/logging"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "bootstrap:", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(logging.Options{Level: slog.LevelWarn, Format: cfg.LogFormat})

	fs := flag.NewFlagSet("bootstrap", flag.ContinueOnError)
	fs.SetOutput(stdout)
	dbPath := fs.String("db", cfg.DBPath, "SQLite database path")
	password := fs.String("password", cfg.ManagerPassword, `new manager password; "-" reads one line from stdin`)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *password == "-" {
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read password: %w", err)
		}
		*password = strings.TrimRight(line, "\r\n")
	}
	if *password == "" {
		return errors.New("-password or LEMBAH_MANAGER_PASSWORD is required")
	}

	db, err := storage.Open(*dbPath)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := storage.MigrateDB(db, *dbPath); err != nil {
		return err
	}

	result, err := orchestrators.ExecuteBootstrapManager(context.Background(),
		orchestrators.BootstrapManagerInput{Password: *password},
		orchestrators.BootstrapManagerDeps{AccountStore: accountStore.NewSQLiteStore(db)},
	)
	if err != nil {
		return err
	}
	if result.Created {
		fmt.Fprintf(stdout, "Created manager account (id %d) in %s\n", result.AccountID, *dbPath)
	} else {
		fmt.Fprintf(stdout, "Reset manager password (id %d) in %s\n", result.AccountID, *dbPath)
	}
	return nil
}
