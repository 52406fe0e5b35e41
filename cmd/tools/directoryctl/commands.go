package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	hcq "provider-directory/internal/workers/ai-conversation/handle-chat-query"
)

const commandTimeout = 2 * time.Minute

var errIndexDisabled = errors.New("elasticsearch is not enabled in the configuration")

func newRootCmd(open opener) *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "directoryctl",
		Short:         "Operate the child protection provider directory",
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: configs/config.yaml)")

	withBackends := func(cmd *cobra.Command, fn func(ctx context.Context, b *backends) error) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		b, err := open(ctx, configPath)
		if err != nil {
			return err
		}
		defer b.Close()
		return fn(ctx, b)
	}

	root.AddCommand(newAskCmd(withBackends), newReindexCmd(withBackends), newStatsCmd(withBackends), newMigrateCmd(withBackends))
	return root
}

type runner func(cmd *cobra.Command, fn func(ctx context.Context, b *backends) error) error

func newAskCmd(run runner) *cobra.Command {
	var explain bool

	cmd := &cobra.Command{
		Use:   "ask <query...>",
		Short: "Answer a chat query and print the reply as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return run(cmd, func(ctx context.Context, b *backends) error {
				handler := hcq.NewHandler(hcq.LoadConfig(), b.store, b.log)

				out := map[string]interface{}{}
				if explain {
					u, err := handler.Explain(ctx, query)
					if err != nil {
						return err
					}
					out["understanding"] = u
				}
				out["reply"] = handler.HandleChatQuery(ctx, query)

				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			})
		},
	}
	cmd.Flags().BoolVar(&explain, "explain", false, "also print the extracted intent and entities")
	return cmd
}

func newReindexCmd(run runner) *cobra.Command {
	var batchSize int

	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Copy every organization from PostgreSQL into the search index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if batchSize <= 0 {
				return fmt.Errorf("--batch-size must be positive")
			}
			return run(cmd, func(ctx context.Context, b *backends) error {
				if b.index == nil {
					return errIndexDisabled
				}

				orgs, err := b.store.ListOrganizations(ctx)
				if err != nil {
					return err
				}
				for start := 0; start < len(orgs); start += batchSize {
					end := start + batchSize
					if end > len(orgs) {
						end = len(orgs)
					}
					if err := b.index.IndexOrganizations(ctx, orgs[start:end]); err != nil {
						return fmt.Errorf("batch %d-%d: %w", start, end, err)
					}
				}

				fmt.Fprintf(cmd.OutOrStdout(), "indexed %d organizations into %s\n", len(orgs), b.indexName)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&batchSize, "batch-size", 500, "organizations per bulk request")
	return cmd
}

func newStatsCmd(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print directory counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, b *backends) error {
				orgs, err := b.store.CountOrganizations(ctx)
				if err != nil {
					return err
				}
				services, err := b.store.CountServiceTypes(ctx)
				if err != nil {
					return err
				}
				districts, err := b.store.CountDistricts(ctx)
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "organizations: %d\n", orgs)
				fmt.Fprintf(w, "service types: %d\n", services)
				fmt.Fprintf(w, "districts:     %d\n", districts)
				return nil
			})
		},
	}
}

func newMigrateCmd(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create any missing directory tables in PostgreSQL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, b *backends) error {
				if err := b.migrator.Migrate(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
				return nil
			})
		},
	}
}
