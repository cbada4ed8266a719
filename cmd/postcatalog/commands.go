package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"PostCatalog/internal/app"
	"PostCatalog/internal/config"
	"PostCatalog/internal/domain"
	"PostCatalog/internal/logging"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "postcatalog",
		Short:         "Turn social page posts into a storefront catalog",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(newServeCmd(), newTransformCmd(), newSnapshotCmd())
	return root
}

func loadApp(cmd *cobra.Command) (*app.Application, *slog.Logger, error) {
	cfg := config.Load()
	logger := logging.NewWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)

	application, err := app.New(cmd.Context(), cfg, logger)
	if err != nil {
		logger.Error("application init failed", "error", err)
		return nil, nil, err
	}
	return application, logger, nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the products API and the page scheduler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, logger, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer application.Close()

			if err := application.Serve(cmd.Context()); err != nil {
				logger.Error("application stopped", "error", err)
				return err
			}
			return nil
		},
	}
}

func newTransformCmd() *cobra.Command {
	var (
		req        domain.TransformRequest
		categories string
	)

	cmd := &cobra.Command{
		Use:   "transform",
		Short: "Sync one page into the catalog and print the summary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, _, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer application.Close()

			for _, name := range strings.Split(categories, ",") {
				if name = strings.TrimSpace(name); name != "" {
					req.CustomCategories = append(req.CustomCategories, name)
				}
			}

			summary, err := application.Transform(cmd.Context(), req)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), summary)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&req.PageIdentifier, "page", "", "page URL or identifier to sync")
	flags.StringVar(&req.DisplayName, "display-name", "", "store display name")
	flags.StringVar(&req.Description, "description", "", "store description")
	flags.StringVar(&categories, "categories", "", "comma-separated custom category names")
	flags.StringVar(&req.Language, "language", "", "content language hint")
	flags.IntVar(&req.PostLimit, "limit", 100, "maximum posts to fetch (capped at 100)")
	_ = cmd.MarkFlagRequired("page")

	return cmd
}

func newSnapshotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Print the stored catalog snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, _, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer application.Close()

			snapshot, err := application.Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), snapshot)
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
