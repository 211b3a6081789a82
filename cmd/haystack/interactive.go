package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"haystack"
)

var stdin = bufio.NewReader(os.Stdin)

// prompt reads one trimmed line from stdin.
func prompt(label string) (string, error) {
	fmt.Print(label)
	line, err := stdin.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

const banner = `
============================
       Haystack RAG CLI
============================
Commands:
  ingest <file>
  ask <your question>
  kb create <name> | kb list | kb use <id|name> | kb delete <id>
  jobs
  stats
  exit | back
----------------------------
`

// interactiveLoop is the menu mode entered when no one-shot flag is
// given. The session stays bound to the authenticated tenant.
func interactiveLoop(ctx context.Context, app *haystack.App, tenantID string) error {
	fmt.Print(banner)

	for {
		cmd, err := prompt("insert your query here > ")
		if err != nil {
			return err
		}

		switch {
		case cmd == "":
			continue

		case strings.EqualFold(cmd, "exit"), strings.EqualFold(cmd, "back"):
			return nil

		case strings.HasPrefix(cmd, "ingest"):
			path := strings.TrimSpace(strings.TrimPrefix(cmd, "ingest"))
			if path == "" {
				fmt.Println("Usage: ingest <file>")
				continue
			}
			if err := runIngest(ctx, app, path, tenantID); err != nil {
				fmt.Println("Error:", err)
			}

		case strings.HasPrefix(cmd, "ask "):
			question := strings.TrimSpace(strings.TrimPrefix(cmd, "ask "))
			answer, err := app.Answerer().Answer(ctx, question, tenantID, 0)
			if err != nil {
				fmt.Println("Error:", err)
				continue
			}
			fmt.Println(answer)

		case strings.HasPrefix(cmd, "kb "):
			if err := kbSubcommand(ctx, app, tenantID, strings.TrimSpace(strings.TrimPrefix(cmd, "kb "))); err != nil {
				fmt.Println("Error:", err)
			}

		case cmd == "jobs":
			for _, job := range app.Queue().List(tenantID) {
				fmt.Printf("%s  %-9s  %s\n", job.ID, job.Status, job.Path)
			}

		case cmd == "stats":
			stats, err := app.Monitor().Stats(ctx, tenantID)
			if err != nil {
				fmt.Println("Error:", err)
				continue
			}
			if stats.Ingestions == 0 && stats.Queries == 0 && len(stats.Jobs) == 0 {
				fmt.Println("No stats for this tenant.")
				continue
			}
			fmt.Print(formatStats(tenantID, stats))

		default:
			fmt.Println("Commands: ingest <file>, ask <query>, kb ..., jobs, stats, exit (or back)")
		}
	}
}

// kbSubcommand dispatches the interactive "kb ..." commands.
func kbSubcommand(ctx context.Context, app *haystack.App, tenantID, rest string) error {
	verb, arg, _ := strings.Cut(rest, " ")
	arg = strings.TrimSpace(arg)

	switch verb {
	case "create":
		if arg == "" {
			return fmt.Errorf("usage: kb create <name>")
		}
		kbID, err := app.Registry().CreateKB(ctx, tenantID, arg)
		if err != nil {
			return err
		}
		fmt.Printf("Created knowledge base %q with id %s\n", arg, kbID)
		return nil

	case "list":
		kbs, err := app.Registry().ListKBs(ctx, tenantID)
		if err != nil {
			return err
		}
		if len(kbs) == 0 {
			fmt.Println("No knowledge bases.")
			return nil
		}
		for id, kb := range kbs {
			marker := " "
			if kb.Active {
				marker = "*"
			}
			fmt.Printf("%s %s  %s\n", marker, id, kb.Name)
		}
		return nil

	case "use":
		if arg == "" {
			return fmt.Errorf("usage: kb use <id|name>")
		}
		kbID, err := resolveKB(ctx, app.Registry(), tenantID, arg)
		if err != nil {
			return err
		}
		if err := app.Registry().SetActiveKB(ctx, tenantID, kbID); err != nil {
			return err
		}
		fmt.Printf("Active knowledge base is now %s\n", kbID)
		return nil

	case "delete":
		if arg == "" {
			return fmt.Errorf("usage: kb delete <id>")
		}
		return app.Registry().DeleteKB(ctx, tenantID, arg)

	default:
		return fmt.Errorf("unknown kb command %q", verb)
	}
}
