// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
)

func main() {
	env, err := loadEnv()
	if err != nil {
		log.Fatal(err)
	}

	app := &cli.App{
		Name:  "haystack",
		Usage: "Multi-tenant PDF RAG with knowledge-graph extraction",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory",
				Value:   env.DBPath,
			},
			&cli.StringFlag{
				Name:  "weaviate-url",
				Usage: "Weaviate endpoint for chunk and graph storage",
				Value: env.WeaviateURL,
			},
			&cli.StringFlag{
				Name:  "provider",
				Usage: "AI provider (gemini, openai)",
				Value: env.Provider,
			},
			&cli.BoolFlag{
				Name:  "offline",
				Usage: "Run with mock AI and in-memory stores, no network calls",
			},
			&cli.StringFlag{
				Name:    "tenant",
				Aliases: []string{"t"},
				Usage:   "Tenant id",
				Value:   env.Tenant,
			},
			&cli.StringFlag{
				Name:  "password",
				Usage: "Tenant password",
				Value: env.Password,
			},
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "PDF path to ingest, then exit",
			},
			&cli.StringFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "Query to ask, then exit",
			},
		},
		Before: setupLogger,
		Action: rootCommand,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Ingest a PDF into the tenant's active knowledge base",
				ArgsUsage: "<path>",
				Action:    ingestCommand,
			},
			{
				Name:      "ask",
				Usage:     "Answer a query against the tenant's data",
				ArgsUsage: "<query>",
				Action:    askCommand,
			},
			{
				Name:   "stats",
				Usage:  "Show the tenant's usage statistics",
				Action: statsCommand,
			},
			{
				Name:      "createkb",
				Usage:     "Create a knowledge base (not activated)",
				ArgsUsage: "<name>",
				Action:    createKBCommand,
			},
			{
				Name:   "listkb",
				Usage:  "List the tenant's knowledge bases",
				Action: listKBCommand,
			},
			{
				Name:      "usekb",
				Usage:     "Activate a knowledge base by id or name",
				ArgsUsage: "<id|name>",
				Action:    useKBCommand,
			},
			{
				Name:      "deletekb",
				Usage:     "Delete a knowledge base record",
				ArgsUsage: "<id>",
				Action:    deleteKBCommand,
			},
			{
				Name:   "jobs",
				Usage:  "List the tenant's ingestion jobs",
				Action: jobsCommand,
			},
			{
				Name:  "tenant",
				Usage: "Tenant account administration",
				Subcommands: []*cli.Command{
					{
						Name:      "create",
						Usage:     "Create a tenant account",
						ArgsUsage: "<id> <password>",
						Action:    tenantCreateCommand,
					},
					{
						Name:      "delete",
						Usage:     "Delete a tenant account",
						ArgsUsage: "<id>",
						Action:    tenantDeleteCommand,
					},
					{
						Name:      "passwd",
						Usage:     "Change a tenant's password",
						ArgsUsage: "<id> <password>",
						Action:    tenantPasswdCommand,
					},
					{
						Name:   "list",
						Usage:  "List tenant accounts",
						Action: tenantListCommand,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
