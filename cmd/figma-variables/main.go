package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	figmavariables "github.com/kataras/figma-variables"
	"github.com/kataras/figma-variables/pkg/config"
	"github.com/kataras/figma-variables/pkg/figma"
	"github.com/kataras/figma-variables/pkg/plugin"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const version = figma.Version

var (
	configPath string
	cfg        *config.Config
)

// flagKeys maps config keys onto flag names.
var flagKeys = map[string]string{
	"token":         "token",
	"file_url":      "url",
	"document":      "document",
	"collections":   "collections",
	"format":        "format",
	"output":        "output",
	"serve.addr":    "addr",
	"serve.path":    "path",
	"serve.stdio":   "stdio",
	"serve.origins": "origin",
	"serve.debug":   "debug",
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "figma-variables",
		Short: "Export Figma variables as name/value text",
		Long: "A tool to export Figma variable collections (colors, numbers, booleans, strings) " +
			"into one \"name\" : \"value\" list per collection mode",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			flags := make(map[string]*pflag.Flag, len(flagKeys))
			for key, name := range flagKeys {
				flags[key] = cmd.Flags().Lookup(name)
			}

			var err error
			cfg, err = config.Load(configPath, flags)
			return err
		},
		RunE: runExport,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "Config file (default ./figma-variables.yaml)")
	pf.StringP("url", "u", "", "Figma file URL")
	pf.StringP("token", "t", "", "Figma Personal Access Token (or FIGMA_TOKEN)")
	pf.StringP("document", "d", "", "Local .json or .yaml variables document, instead of --url")

	addExportFlags(rootCmd)

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export the selected collections (default command)",
		RunE:  runExport,
	}
	addExportFlags(exportCmd)

	collectionsCmd := &cobra.Command{
		Use:   "collections",
		Short: "List the variable collections of the file",
		RunE:  runCollections,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the export to a UI panel over WebSocket or stdio",
		RunE:  runServe,
	}
	serveCmd.Flags().String("addr", "127.0.0.1:7777", "Listen address")
	serveCmd.Flags().String("path", "/ws", "WebSocket endpoint path")
	serveCmd.Flags().Bool("stdio", false, "Serve a single session over stdin/stdout instead of WebSocket")
	serveCmd.Flags().StringSlice("origin", nil, "Allowed WebSocket origins (default any)")
	serveCmd.Flags().Bool("debug", false, "Development logging")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("figma-variables version %s\n", version)
		},
	}

	rootCmd.AddCommand(exportCmd, collectionsCmd, serveCmd, versionCmd)
	return rootCmd
}

func addExportFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("collections", nil, "Collection ids or names to export (default all)")
	cmd.Flags().StringP("format", "f", "text", "Output format: text, markdown, json")
	cmd.Flags().StringP("output", "o", "", "Output file (default stdout)")
}

func options(logger figmavariables.Logger) figmavariables.Options {
	return figmavariables.Options{
		AccessToken:  cfg.Token,
		FileURL:      cfg.FileURL,
		DocumentPath: cfg.Document,
		Collections:  cfg.Collections,
		Format:       cfg.Format,
		Logger:       logger,
	}
}

func runExport(cmd *cobra.Command, args []string) error {
	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan)

	cyan.Fprintln(os.Stderr, "\n🎨 Figma Variables Exporter")
	cyan.Fprintln(os.Stderr, "===========================")
	cyan.Fprintln(os.Stderr)

	result, err := figmavariables.Run(cmd.Context(), options(&cliLogger{}))
	if err != nil {
		return err
	}

	cyan.Fprintln(os.Stderr, "\n📊 Export Summary:")
	for _, bundle := range result.Bundles {
		fmt.Fprintf(os.Stderr, "  • %s: %d variable(s)\n", bundle.Name, len(bundle.Variables))
	}

	if cfg.Output == "" {
		fmt.Fprint(cmd.OutOrStdout(), result.Output)
		return nil
	}

	green.Fprintf(os.Stderr, "\n💾 Writing to %s... ", cfg.Output)
	if err := os.WriteFile(cfg.Output, []byte(result.Output), 0644); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "✗")
		return err
	}
	green.Fprintln(os.Stderr, "✓")

	green.Fprintf(os.Stderr, "\n✨ Successfully exported %d bundle(s) to %s\n\n", len(result.Bundles), cfg.Output)
	return nil
}

func runCollections(cmd *cobra.Command, args []string) error {
	refs, err := figmavariables.ListCollections(cmd.Context(), options(&cliLogger{}))
	if err != nil {
		return err
	}

	if len(refs) == 0 {
		color.New(color.FgYellow).Fprintln(os.Stderr, "No variable collections found")
		return nil
	}

	for _, ref := range refs {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", ref.ID, ref.Name)
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	zl, err := newZapLogger(cfg.Serve.Debug)
	if err != nil {
		return err
	}
	defer zl.Sync()
	logger := zl.Sugar()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := options(logger)
	open, fileName, err := opts.Source(ctx)
	if err != nil {
		return err
	}

	if cfg.Serve.Stdio {
		logger.Infow("Serving over stdio", "file", fileName)
		err := plugin.ServeStream(ctx, open, os.Stdin, os.Stdout, logger)
		if errors.Is(err, context.Canceled) {
			logger.Infow("Shutting down")
			return nil
		}
		return err
	}

	mux := http.NewServeMux()
	mux.Handle(cfg.Serve.Path, plugin.NewServer(open, logger, cfg.Serve.Origins))
	srv := &http.Server{
		Addr:              cfg.Serve.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infow("Listening", "addr", srv.Addr, "path", cfg.Serve.Path, "file", fileName)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Infow("Shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newZapLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// cliLogger implements figmavariables.Logger with colored terminal output on stderr.
type cliLogger struct{}

func (l *cliLogger) Infof(format string, args ...any) {
	color.New(color.FgYellow).Fprintf(os.Stderr, format+"\n", args...)
}

func (l *cliLogger) Warnf(format string, args ...any) {
	color.New(color.FgYellow).Fprintf(os.Stderr, "⚠ "+format+"\n", args...)
}

func (l *cliLogger) Errorf(format string, args ...any) {
	color.New(color.FgRed).Fprintf(os.Stderr, "✗ "+format+"\n", args...)
}
