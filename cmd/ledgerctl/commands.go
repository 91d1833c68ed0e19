package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/titledeed/internal/actor"
	"github.com/MrJamesThe3rd/titledeed/internal/app"
	"github.com/MrJamesThe3rd/titledeed/internal/audit"
	"github.com/MrJamesThe3rd/titledeed/internal/config"
	"github.com/MrJamesThe3rd/titledeed/internal/database"
	"github.com/MrJamesThe3rd/titledeed/internal/http/auth"
)

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger := commonRun()
			if cfg.Store.Driver != config.DriverPostgres {
				return fmt.Errorf("migrate needs the postgres store, got %q", cfg.Store.Driver)
			}

			db, err := database.New(cfg.ConnectionString())
			if err != nil {
				return err
			}
			defer db.Close()

			return database.Migrate(db, logger)
		},
	}
}

func reconcileCommand() *cobra.Command {
	var watch time.Duration

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Commit ledger actions that succeeded but never reached the record store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger := commonRun()

			a, err := app.New(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			if watch > 0 {
				logger.Info("reconciling until interrupted", "interval", watch)
				a.Bridge.RunReconciler(cmd.Context(), watch)

				return nil
			}

			resolved, err := a.Bridge.Reconcile(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("resolved %d reconciliation(s)\n", resolved)

			return nil
		},
	}

	cmd.Flags().DurationVar(&watch, "watch", 0, "keep reconciling at this interval")

	return cmd
}

func pendingCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "pending",
		Short: "List parked ledger actions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger := commonRun()

			a, err := app.New(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			rows, err := a.Bridge.Pending(cmd.Context(), limit)
			if err != nil {
				return err
			}

			return printJSON(rows)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 100, "maximum rows to list")

	return cmd
}

func auditCommand() *cobra.Command {
	var (
		key   string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "audit [record-id]",
		Short: "Show audit entries, optionally for one record or operation key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := audit.ListFilter{Limit: limit}

			if len(args) == 1 {
				id, err := uuid.Parse(args[0])
				if err != nil {
					return fmt.Errorf("invalid record id: %w", err)
				}

				filter.RelatedRecordID = &id
			}

			if key != "" {
				filter.OperationKey = &key
			}

			cfg, logger := commonRun()

			a, err := app.New(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			entries, err := a.Audit.List(cmd.Context(), filter)
			if err != nil {
				return err
			}

			return printJSON(entries)
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "operation key")
	cmd.Flags().IntVar(&limit, "limit", 100, "maximum entries to list")

	return cmd
}

func receiptCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "receipt <operation-key>",
		Short: "Look up the ledger receipt of an operation key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger := commonRun()

			a, err := app.New(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			receipt, err := a.Ledger.LookupReceipt(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if receipt == nil {
				return fmt.Errorf("no receipt for %s", args[0])
			}

			return printJSON(receipt)
		},
	}
}

func tokenCommand() *cobra.Command {
	var (
		roles  []string
		wallet string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token <subject>",
		Short: "Issue an API bearer token for local testing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _ := commonRun()
			if cfg.Auth.JWTSecret == "" {
				return fmt.Errorf("JWT_SECRET is not set")
			}

			rs := make([]actor.Role, len(roles))
			for i, r := range roles {
				rs[i] = actor.Role(strings.ToLower(strings.TrimSpace(r)))
			}

			token, err := auth.Issue(cfg.Auth.JWTSecret, cfg.Auth.Issuer, args[0], rs, wallet, ttl)
			if err != nil {
				return err
			}

			fmt.Println(token)

			return nil
		},
	}

	cmd.Flags().StringSliceVar(&roles, "role", []string{string(actor.RoleBuyer)}, "roles granted by the token")
	cmd.Flags().StringVar(&wallet, "wallet", "", "wallet address claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")

	return cmd
}

func importCommand() *cobra.Command {
	var official string

	cmd := &cobra.Command{
		Use:   "import <extract.csv>",
		Short: "File every parcel of a registry office extract as a pending registration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger := commonRun()

			if official == "" {
				official = cfg.Console.OfficialID
			}

			if official == "" {
				return fmt.Errorf("--official or OFFICIAL_ID is required")
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			a, err := app.New(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.Cadastre.Import(cmd.Context(), actor.New(official, actor.RoleOfficial), f)
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stderr, "%s extract (%s): %d filed, %d failed\n",
				report.Layout, report.Charset, len(report.Submitted), len(report.Failures))

			return printJSON(report.Failures)
		},
	}

	cmd.Flags().StringVar(&official, "official", "", "official the import is recorded against")

	return cmd
}
