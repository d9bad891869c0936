package main

import (
	"context"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "bulletlog",
		Usage: "Keep a dated log of notes and tasks in a single plain-text file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file (optional)",
				DefaultText: defaultConfigPath,
				Value:       defaultConfigPath,
				Sources:     cli.EnvVars("BULLETLOG_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Journal file (default .BULLETLOG in the working directory)",
				Sources: cli.EnvVars("BULLETLOG_FILE"),
			},
			&cli.StringFlag{
				Name:    "date",
				Aliases: []string{"d"},
				Usage:   "Date for new entries as YYYY-MM-DD (default today)",
				Sources: cli.EnvVars("BULLETLOG_DATE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "add",
				Aliases:   []string{"a", "note", "n"},
				Usage:     "Add a note under today's date",
				ArgsUsage: "<text>",
				Action:    addNote,
			},
			{
				Name:      "task",
				Aliases:   []string{"t"},
				Usage:     "Add an open task under today's date",
				ArgsUsage: "<text>",
				Action:    addTask,
			},
			{
				Name:    "notes",
				Aliases: []string{"ns"},
				Usage:   "List all notes",
				Action:  listNotes,
			},
			{
				Name:    "tasks",
				Aliases: []string{"ts"},
				Usage:   "List open tasks with their indexes",
				Action:  listTasks,
			},
			{
				Name:      "comp",
				Aliases:   []string{"c"},
				Usage:     "Complete the open task at index (see tasks)",
				ArgsUsage: "<index>",
				Action:    completeTask,
			},
			{
				Name:      "search",
				Usage:     "Full-text search through entries",
				ArgsUsage: "<query>",
				Action:    search,
			},
			{
				Name:   "serve",
				Usage:  "Serve the journal over HTTP with live updates",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools on stdin/stdout",
				Action: serveMCP,
			},
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		slog.Error("bulletlog failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
