package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/starford/bulletlog/internal"
	"github.com/starford/bulletlog/internal/index"
	"github.com/starford/bulletlog/internal/journal"
	"github.com/starford/bulletlog/internal/logservice"
	"github.com/starford/bulletlog/internal/mcpserver"
	"github.com/starford/bulletlog/internal/storage"
	pkgconfig "github.com/starford/bulletlog/pkg/config"
)

const defaultConfigPath = ".bulletlog.yaml"

var errUsage = errors.New("usage")

// loadConfig layers flags and their environment variables over the config
// file over the defaults.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if path := cmd.String("file"); path != "" {
		cfg.Journal.Path = path
	}
	if date := cmd.String("date"); date != "" {
		cfg.Journal.Date = date
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// cliLogger writes to stderr so stdout carries only command output.
func cliLogger(cfg *internal.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.App.LogLevel}))
}

func newService(cfg *internal.Config, opts ...logservice.Option) (*logservice.Service, error) {
	store, err := storage.NewFile(cfg.Journal.Path)
	if err != nil {
		return nil, err
	}
	opts = append([]logservice.Option{logservice.WithLogger(cliLogger(cfg))}, opts...)
	return logservice.NewService(store, opts...), nil
}

func openService(cmd *cli.Command) (*logservice.Service, *internal.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	svc, err := newService(cfg)
	if err != nil {
		return nil, nil, err
	}
	return svc, cfg, nil
}

func addNote(ctx context.Context, cmd *cli.Command) error {
	return addEntry(ctx, cmd, (*logservice.Service).AddNote)
}

func addTask(ctx context.Context, cmd *cli.Command) error {
	return addEntry(ctx, cmd, (*logservice.Service).AddTask)
}

func addEntry(ctx context.Context, cmd *cli.Command,
	add func(*logservice.Service, context.Context, journal.Date, string) (journal.Entry, error)) error {
	if cmd.Args().Len() == 0 {
		return fmt.Errorf("%w: %s %s", errUsage, cmd.Name, cmd.ArgsUsage)
	}
	text := strings.Join(cmd.Args().Slice(), " ")

	svc, cfg, err := openService(cmd)
	if err != nil {
		return err
	}
	date, err := cfg.Journal.Today(time.Now())
	if err != nil {
		return err
	}
	_, err = add(svc, ctx, date, text)
	return err
}

func listNotes(ctx context.Context, cmd *cli.Command) error {
	svc, _, err := openService(cmd)
	if err != nil {
		return err
	}
	doc, err := svc.Document(ctx)
	if err != nil {
		return err
	}
	return doc.ListNotes(cmd.Root().Writer)
}

func listTasks(ctx context.Context, cmd *cli.Command) error {
	svc, _, err := openService(cmd)
	if err != nil {
		return err
	}
	doc, err := svc.Document(ctx)
	if err != nil {
		return err
	}
	return doc.ListTasks(cmd.Root().Writer)
}

func completeTask(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("%w: comp <index>", errUsage)
	}
	idx, err := strconv.Atoi(cmd.Args().First())
	if err != nil || idx < 0 {
		return fmt.Errorf("%w: comp: index must be a non-negative integer, got %q", errUsage, cmd.Args().First())
	}

	svc, _, err := openService(cmd)
	if err != nil {
		return err
	}
	_, err = svc.CompleteTask(ctx, idx, "")
	return err
}

func search(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() == 0 {
		return fmt.Errorf("%w: search <query>", errUsage)
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	svc, err := newService(cfg, logservice.WithIndex(db))
	if err != nil {
		return err
	}
	results, err := svc.Search(ctx, strings.Join(cmd.Args().Slice(), " "), 0)
	if err != nil {
		return err
	}
	w := cmd.Root().Writer
	for _, r := range results {
		marker := byte('?')
		if k, ok := journal.ParseKind(r.Kind); ok {
			marker = k.Marker()
		}
		if _, err := fmt.Fprintf(w, "%s %c %s\n", r.Date, marker, r.Text); err != nil {
			return err
		}
	}
	return nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func serveMCP(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	svc, err := newService(cfg, logservice.WithIndex(db))
	if err != nil {
		return err
	}
	return mcpserver.New(svc, cfg.Journal.Clock()).ServeStdio()
}
