// Command folio serves a multilingual blog, imports Markdown posts into its
// content store and scaffolds new sites.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/folio"
	"github.com/eringen/folio/logger"
	"github.com/eringen/folio/scaffold"
	"github.com/eringen/folio/views"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	configPath   string
	importLocale string
)

const shutdownTimeout = 10 * time.Second

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "folio - a multilingual blog engine built with Go, Echo and templ",
	Long: `folio serves locale-scoped blog posts stored in SQLite.

Configuration comes from an optional YAML file (--config) and FOLIO_*
environment variables, e.g. FOLIO_URL, FOLIO_ADMIN_PASSWORD,
FOLIO_TELEGRAM_BOT_TOKEN.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "new" {
			return nil
		}
		cfg, err := folio.LoadConfig(configPath)
		if err != nil {
			return err
		}
		logger.Init(cfg.Log.Mode, cfg.Log.ToLoggerOptions())
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var importCmd = &cobra.Command{
	Use:   "import <dir>",
	Short: "Import Markdown files with YAML front matter into the content store",
	Long: `Imports every *.md file under dir. Front matter keys: title, excerpt,
date (YYYY-MM-DD or RFC 3339), slug, locale, tags, cover_image, author,
author_picture, published.

The slug defaults to the file name and the locale to a ".<locale>.md"
suffix, then to --locale. Existing posts with the same locale and slug
are replaced.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var newCmd = &cobra.Command{
	Use:   "new <dir>",
	Short: "Create a starter site with a config file and a sample post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data := scaffold.NewData(args[0], time.Now().UTC().Format("2006-01-02"))
		files, err := scaffold.Generate(args[0], data)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, f := range files {
			fmt.Fprintf(out, "  created %s\n", f)
		}
		fmt.Fprintf(out, "\nNext steps:\n  cd %s\n  folio import -c folio.yaml content\n  folio serve -c folio.yaml\n", args[0])
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the folio version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "folio %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	importCmd.Flags().StringVarP(&importLocale, "locale", "l", "", "locale for files that do not declare one")

	rootCmd.AddCommand(serveCmd, importCmd, newCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := folio.LoadConfig(configPath)
	if err != nil {
		return err
	}
	app := folio.New(cfg, views.New(cfg))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Start()
	}()

	select {
	case err := <-errCh:
		_ = app.Close()
		return err
	case <-ctx.Done():
	}

	logger.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
