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
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"haystack"
	"haystack/ai"
	"haystack/core"
	"haystack/storage"
)

// openApp assembles the application from the global flags.
func openApp(c *cli.Context) (*haystack.App, error) {
	opts := []haystack.AppOption{
		haystack.WithProvider(c.String("provider")),
		haystack.WithWeaviateURL(c.String("weaviate-url")),
	}
	if c.Bool("offline") {
		opts = append(opts, haystack.WithOffline())
	}

	env, err := loadEnv()
	if err != nil {
		return nil, err
	}
	aiOpts := []ai.ConfigOption{ai.WithAPIKey(env.GeminiAPIKey)}
	if env.AIHost != "" {
		aiOpts = append(aiOpts, ai.WithHost(env.AIHost))
	}
	opts = append(opts, haystack.WithAIConfig(ai.NewConfig(aiOpts...)))

	return haystack.NewApp(c.Context, c.String("db"), opts...)
}

// authenticate resolves and verifies the tenant credential. Flags are
// tried first; missing values are prompted for until a pair verifies.
func authenticate(c *cli.Context, app *haystack.App) (string, error) {
	tenantID := strings.TrimSpace(c.String("tenant"))
	password := c.String("password")

	if tenantID != "" && password != "" {
		ok, err := app.Tenants().VerifyCredentials(c.Context, tenantID, password)
		if err != nil {
			return "", err
		}
		if ok {
			return tenantID, nil
		}
		return "", fmt.Errorf("invalid tenant id or password")
	}

	for {
		var err error
		if tenantID, err = prompt("Enter tenant id: "); err != nil {
			return "", err
		}
		if password, err = prompt("Enter password: "); err != nil {
			return "", err
		}

		ok, err := app.Tenants().VerifyCredentials(c.Context, tenantID, password)
		if err != nil {
			return "", err
		}
		if ok {
			return tenantID, nil
		}
		fmt.Println("Invalid tenant id or password. Try again.")
	}
}

// rootCommand handles the one-shot --file/--query flags, or drops into
// the interactive loop when neither is given.
func rootCommand(c *cli.Context) error {
	app, err := openApp(c)
	if err != nil {
		return err
	}
	defer app.Close()

	tenantID, err := authenticate(c, app)
	if err != nil {
		return err
	}

	file := c.String("file")
	queryText := c.String("query")
	if file == "" && queryText == "" {
		return interactiveLoop(c.Context, app, tenantID)
	}

	if file != "" {
		if err := runIngest(c.Context, app, file, tenantID); err != nil {
			return err
		}
	}
	if queryText != "" {
		answer, err := app.Answerer().Answer(c.Context, queryText, tenantID, 0)
		if err != nil {
			return err
		}
		fmt.Println(answer)
	}
	return nil
}

// runIngest submits the document to the job queue and waits for the
// terminal state.
func runIngest(ctx context.Context, app *haystack.App, path, tenantID string) error {
	app.Start(ctx)
	jobID := app.Queue().Submit(path, tenantID)
	fmt.Printf("Job %s queued\n", jobID)

	job, err := waitForJob(ctx, app, jobID)
	if err != nil {
		return err
	}
	if job.Status == core.JobFailed {
		return fmt.Errorf("ingestion failed: %s", job.Error)
	}

	fmt.Printf("Ingested: %d chunks\n", job.Result.Chunks)
	if job.Result.Degraded() {
		fmt.Printf("Warning: %s\n", job.Result.GraphWarning)
	} else if job.Result.GraphNodes > 0 {
		fmt.Printf("Knowledge graph: %d nodes, %d edges\n", job.Result.GraphNodes, job.Result.GraphEdges)
	}
	return nil
}

func waitForJob(ctx context.Context, app *haystack.App, jobID string) (core.IngestionJob, error) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		job, err := app.Queue().Get(jobID)
		if err != nil {
			return core.IngestionJob{}, err
		}
		if job.Status.Terminal() {
			return job, nil
		}

		select {
		case <-ctx.Done():
			return core.IngestionJob{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

func ingestCommand(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("usage: ingest <path>")
	}

	app, err := openApp(c)
	if err != nil {
		return err
	}
	defer app.Close()

	tenantID, err := authenticate(c, app)
	if err != nil {
		return err
	}
	return runIngest(c.Context, app, path, tenantID)
}

func askCommand(c *cli.Context) error {
	queryText := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(queryText) == "" {
		return fmt.Errorf("usage: ask <query>")
	}

	app, err := openApp(c)
	if err != nil {
		return err
	}
	defer app.Close()

	tenantID, err := authenticate(c, app)
	if err != nil {
		return err
	}

	answer, err := app.Answerer().Answer(c.Context, queryText, tenantID, 0)
	if err != nil {
		return err
	}
	fmt.Println(answer)
	return nil
}

func statsCommand(c *cli.Context) error {
	app, err := openApp(c)
	if err != nil {
		return err
	}
	defer app.Close()

	tenantID, err := authenticate(c, app)
	if err != nil {
		return err
	}

	stats, err := app.Monitor().Stats(c.Context, tenantID)
	if err != nil {
		return err
	}
	fmt.Print(formatStats(tenantID, stats))
	return nil
}

// formatStats renders a tenant usage record for terminal display.
func formatStats(tenantID string, stats *core.TenantUsage) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Tenant %s\n", tenantID)
	fmt.Fprintf(&sb, "  ingestions: %d\n", stats.Ingestions)
	fmt.Fprintf(&sb, "  queries:    %d\n", stats.Queries)
	fmt.Fprintf(&sb, "  chunks:     %d\n", stats.Chunks)
	if stats.LastIngest != "" {
		fmt.Fprintf(&sb, "  last ingest: %s\n", stats.LastIngest)
	}
	if stats.LastQuery != "" {
		fmt.Fprintf(&sb, "  last query:  %s\n", stats.LastQuery)
	}

	if len(stats.Jobs) > 0 {
		ids := make([]string, 0, len(stats.Jobs))
		for id := range stats.Jobs {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool {
			return stats.Jobs[ids[i]].StartedAt.Before(stats.Jobs[ids[j]].StartedAt)
		})

		sb.WriteString("  jobs:\n")
		for _, id := range ids {
			job := stats.Jobs[id]
			fmt.Fprintf(&sb, "    %s  %-9s  %s", id, job.Status, job.Filename)
			if job.Error != "" {
				fmt.Fprintf(&sb, "  (%s)", job.Error)
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func createKBCommand(c *cli.Context) error {
	name := c.Args().First()
	if name == "" {
		return fmt.Errorf("usage: createkb <name>")
	}
	if err := core.ValidateKBName(name); err != nil {
		return err
	}

	app, err := openApp(c)
	if err != nil {
		return err
	}
	defer app.Close()

	tenantID, err := authenticate(c, app)
	if err != nil {
		return err
	}

	kbID, err := app.Registry().CreateKB(c.Context, tenantID, name)
	if err != nil {
		return err
	}
	fmt.Printf("Created knowledge base %q with id %s (not active; run usekb to activate)\n", name, kbID)
	return nil
}

func listKBCommand(c *cli.Context) error {
	app, err := openApp(c)
	if err != nil {
		return err
	}
	defer app.Close()

	tenantID, err := authenticate(c, app)
	if err != nil {
		return err
	}

	kbs, err := app.Registry().ListKBs(c.Context, tenantID)
	if err != nil {
		return err
	}
	if len(kbs) == 0 {
		fmt.Println("No knowledge bases.")
		return nil
	}

	ids := make([]string, 0, len(kbs))
	for id := range kbs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return kbs[ids[i]].Name < kbs[ids[j]].Name })

	for _, id := range ids {
		kb := kbs[id]
		marker := " "
		if kb.Active {
			marker = "*"
		}
		fmt.Printf("%s %s  %s\n", marker, id, kb.Name)
	}
	return nil
}

func useKBCommand(c *cli.Context) error {
	ref := c.Args().First()
	if ref == "" {
		return fmt.Errorf("usage: usekb <id|name>")
	}

	app, err := openApp(c)
	if err != nil {
		return err
	}
	defer app.Close()

	tenantID, err := authenticate(c, app)
	if err != nil {
		return err
	}

	kbID, err := resolveKB(c.Context, app.Registry(), tenantID, ref)
	if err != nil {
		return err
	}
	if err := app.Registry().SetActiveKB(c.Context, tenantID, kbID); err != nil {
		return err
	}
	fmt.Printf("Active knowledge base is now %s\n", kbID)
	return nil
}

// resolveKB turns a KB reference into an id. Ids match directly;
// otherwise the reference must match exactly one KB name.
func resolveKB(ctx context.Context, registry storage.RegistryRepository, tenantID, ref string) (string, error) {
	kbs, err := registry.ListKBs(ctx, tenantID)
	if err != nil {
		return "", err
	}
	if _, ok := kbs[ref]; ok {
		return ref, nil
	}

	var matches []string
	for id, kb := range kbs {
		if kb.Name == ref {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no knowledge base with id or name %q", ref)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("knowledge base name %q is ambiguous, use an id from listkb", ref)
	}
}

func deleteKBCommand(c *cli.Context) error {
	kbID := c.Args().First()
	if kbID == "" {
		return fmt.Errorf("usage: deletekb <id>")
	}

	app, err := openApp(c)
	if err != nil {
		return err
	}
	defer app.Close()

	tenantID, err := authenticate(c, app)
	if err != nil {
		return err
	}

	if err := app.Registry().DeleteKB(c.Context, tenantID, kbID); err != nil {
		return err
	}
	fmt.Printf("Deleted knowledge base %s (stored chunks and graph data are not removed)\n", kbID)
	return nil
}

func jobsCommand(c *cli.Context) error {
	app, err := openApp(c)
	if err != nil {
		return err
	}
	defer app.Close()

	tenantID, err := authenticate(c, app)
	if err != nil {
		return err
	}

	// Queue state is process-local; past runs live in the usage record.
	stats, err := app.Monitor().Stats(c.Context, tenantID)
	if err != nil {
		return err
	}
	if len(stats.Jobs) == 0 {
		fmt.Println("No jobs recorded.")
		return nil
	}
	fmt.Print(formatStats(tenantID, stats))
	return nil
}

func tenantCreateCommand(c *cli.Context) error {
	id, password := c.Args().Get(0), c.Args().Get(1)
	if id == "" || password == "" {
		return fmt.Errorf("usage: tenant create <id> <password>")
	}
	if err := core.ValidateTenantID(id); err != nil {
		return err
	}

	app, err := openApp(c)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Tenants().CreateTenant(c.Context, id, password); err != nil {
		return err
	}
	fmt.Printf("Created tenant %s\n", id)
	return nil
}

func tenantDeleteCommand(c *cli.Context) error {
	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("usage: tenant delete <id>")
	}

	app, err := openApp(c)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Tenants().DeleteTenant(c.Context, id); err != nil {
		return err
	}
	fmt.Printf("Deleted tenant %s\n", id)
	return nil
}

func tenantPasswdCommand(c *cli.Context) error {
	id, password := c.Args().Get(0), c.Args().Get(1)
	if id == "" || password == "" {
		return fmt.Errorf("usage: tenant passwd <id> <password>")
	}

	app, err := openApp(c)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Tenants().UpdatePassword(c.Context, id, password); err != nil {
		return err
	}
	fmt.Printf("Updated password for tenant %s\n", id)
	return nil
}

func tenantListCommand(c *cli.Context) error {
	app, err := openApp(c)
	if err != nil {
		return err
	}
	defer app.Close()

	tenants, err := app.Tenants().ListTenants(c.Context)
	if err != nil {
		return err
	}
	if len(tenants) == 0 {
		fmt.Println("No tenants.")
		return nil
	}

	sort.Slice(tenants, func(i, j int) bool { return tenants[i].ID < tenants[j].ID })
	for _, t := range tenants {
		fmt.Printf("%s  created %s\n", t.ID, t.CreatedAt.Format(time.RFC3339))
	}
	return nil
}
