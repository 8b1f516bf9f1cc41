package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cleantownship/cleantown-service/internal/config"
	"github.com/cleantownship/cleantown-service/internal/persistence"
	"github.com/cleantownship/cleantown-service/internal/service"
	"github.com/cleantownship/cleantown-service/internal/session"
	"github.com/cleantownship/cleantown-service/internal/slot"
)

const usage = `usage: cleantownctl <command> [flags]

commands:
  seed-admin   create or replace the administrator account
  import       copy legacy slot files into the record store
  export       print the record store in the legacy slot layout
`

type cli struct {
	cfg    config.Config
	logger *zap.Logger
	stdout io.Writer
	open   func(ctx context.Context) (*persistence.Stores, error)
}

func (c *cli) dispatch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(c.stdout, usage)
		return errors.New("missing command")
	}
	switch args[0] {
	case "seed-admin":
		return c.seedAdmin(ctx, args[1:])
	case "import":
		return c.importSlots(ctx, args[1:])
	case "export":
		return c.export(ctx, args[1:])
	case "help", "-h", "--help":
		fmt.Fprint(c.stdout, usage)
		return nil
	default:
		fmt.Fprint(c.stdout, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func (c *cli) seedAdmin(ctx context.Context, args []string) error {
	flagSet := pflag.NewFlagSet("seed-admin", pflag.ContinueOnError)
	email := flagSet.String("email", c.cfg.Admin.Email, "administrator email")
	password := flagSet.String("password", c.cfg.Admin.Password, "administrator password")
	name := flagSet.String("name", c.cfg.Admin.Name, "administrator display name")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return errors.New("seed-admin: --email and --password are required")
	}

	stores, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer stores.Close()

	// Sessions are not issued here; the manager only satisfies the service.
	authService := service.NewAuthService(c.cfg, service.AuthDependencies{
		ReporterRepo: stores.Reporters,
		Sessions:     session.NewManager(session.NewMemoryStore(), c.cfg.Auth.SessionTTL()),
		Logger:       c.logger,
	})
	admin, err := authService.SeedAdmin(ctx, strings.TrimSpace(*email), *password, *name)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "administrator %s ready\n", admin.Email)
	return nil
}

func (c *cli) importSlots(ctx context.Context, args []string) error {
	flagSet := pflag.NewFlagSet("import", pflag.ContinueOnError)
	reportersPath := flagSet.String("reporters", "", "path to the reporters slot JSON file")
	issuesPath := flagSet.String("issues", "", "path to the issues slot JSON file")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if *reportersPath == "" && *issuesPath == "" {
		return errors.New("import: at least one of --reporters or --issues is required")
	}

	stores, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer stores.Close()

	var reportersSlot, issuesSlot *slot.Slot
	if *reportersPath != "" {
		reportersSlot = slot.New(slot.ReportersSlot, slot.FileBackend{Path: *reportersPath}, c.logger)
	}
	if *issuesPath != "" {
		issuesSlot = slot.New(slot.IssuesSlot, slot.FileBackend{Path: *issuesPath}, c.logger)
	}

	legacy := service.NewLegacyService(stores.Reporters, stores.Issues, c.logger, c.cfg.Auth.BcryptCost)
	report, err := legacy.Import(ctx, reportersSlot, issuesSlot)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "imported %d reporters, %d issues\n", report.Reporters, report.Issues)
	for _, email := range report.SkippedReporters {
		fmt.Fprintf(c.stdout, "skipped existing reporter %s\n", email)
	}
	for _, owner := range report.SkippedOwners {
		fmt.Fprintf(c.stdout, "skipped issues for %s: store already has issues\n", owner)
	}
	return nil
}

func (c *cli) export(ctx context.Context, args []string) error {
	flagSet := pflag.NewFlagSet("export", pflag.ContinueOnError)
	format := flagSet.String("format", "json", "output format: json or yaml")
	out := flagSet.String("out", "", "write to this file instead of stdout")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if *format != "json" && *format != "yaml" {
		return fmt.Errorf("export: unsupported format %q", *format)
	}

	stores, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer stores.Close()

	snapshot, err := service.NewLegacyService(stores.Reporters, stores.Issues, c.logger, c.cfg.Auth.BcryptCost).Export(ctx)
	if err != nil {
		return err
	}

	w := c.stdout
	if *out != "" {
		file, err := os.Create(*out)
		if err != nil {
			return fmt.Errorf("create %s: %w", *out, err)
		}
		defer file.Close()
		w = file
	}
	return encodeSnapshot(w, *format, snapshot)
}

func encodeSnapshot(w io.Writer, format string, snapshot service.Snapshot) error {
	if format == "yaml" {
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(snapshot); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return encoder.Close()
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(snapshot); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
