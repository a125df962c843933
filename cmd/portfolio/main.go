package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ironsheep/portfolio/internal/config"
	"github.com/ironsheep/portfolio/internal/content"
	"github.com/ironsheep/portfolio/internal/markdown"
	"github.com/ironsheep/portfolio/internal/server"
	"github.com/ironsheep/portfolio/internal/site"
	"github.com/ironsheep/portfolio/internal/store"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "--version", "-v", "version":
		fmt.Printf("portfolio %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		return
	case "--help", "-h", "help":
		printHelp()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "portfolio: %v\n", err)
		os.Exit(2)
	}

	switch cmd {
	case "serve":
		logger := config.NewLogger(cfg.LogLevel, os.Stdout, true)
		slog.SetDefault(logger)
		if err := serve(cfg, logger); err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	case "mcp":
		// stdout carries the protocol
		logger := config.NewLogger(cfg.LogLevel, os.Stderr, false)
		logger.Debug("portfolio MCP server", "version", Version, "built", BuildTime, "commit", GitCommit)
		if err := server.New(Version, logger).Run(); err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	case "md":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: portfolio md <file>")
			os.Exit(2)
		}
		if err := preview(os.Args[2]); err != nil {
			fmt.Fprintf(os.Stderr, "portfolio: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "portfolio: unknown command %q (see --help)\n", cmd)
		os.Exit(2)
	}
}

func printHelp() {
	fmt.Println("portfolio - personal site with color and markdown tools")
	fmt.Println()
	fmt.Println("Usage: portfolio [command]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  serve            Run the HTTP site (default)")
	fmt.Println("  mcp              Serve the color and markdown tools over MCP (stdin/stdout)")
	fmt.Println("  md <file>        Render a markdown file in the terminal")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  PORTFOLIO_ADDR=:8080            HTTP listen address")
	fmt.Println("  PORTFOLIO_LOG_LEVEL=info        debug, info, warn or error")
	fmt.Println("  PORTFOLIO_DATA_DIR=data         Directory for the document database")
	fmt.Println("  PORTFOLIO_CONTENT_DIR=          Content tree on disk (default: embedded)")
	fmt.Println("  PORTFOLIO_WATCH=false           Reload the content tree on change")
	fmt.Println("  PORTFOLIO_MAX_UPLOAD_MB=10      Image upload size limit")
}

func serve(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	docs, err := store.Open(cfg.DBPath())
	if err != nil {
		return err
	}
	defer docs.Close()

	src, err := content.NewSource(cfg.ContentDir, logger)
	if err != nil {
		return fmt.Errorf("load content: %w", err)
	}
	if cfg.Watch {
		go func() {
			if err := src.Watch(ctx); err != nil {
				logger.Warn("content watch stopped", "error", err)
			}
		}()
	}

	s, err := site.New(site.Options{
		Content:        src,
		Documents:      docs,
		Logger:         logger,
		MaxUploadBytes: cfg.MaxUploadBytes(),
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr, "version", Version, "content", contentLabel(cfg.ContentDir))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func contentLabel(dir string) string {
	if dir == "" {
		return "embedded"
	}
	return dir
}

func preview(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	p, err := markdown.NewTerminalPreview(100)
	if err != nil {
		return err
	}
	return p.Render(os.Stdout, string(data))
}
