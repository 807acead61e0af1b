package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/icco/moviefinder/handlers"
	"github.com/icco/moviefinder/lib/client"
	"github.com/icco/moviefinder/lib/config"
	"github.com/icco/moviefinder/lib/logging"
	"github.com/icco/moviefinder/lib/recommend"
	"github.com/icco/moviefinder/lib/tui"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [serve]\n\n", os.Args[0])
		fmt.Fprintln(flag.CommandLine.Output(), "Without arguments the interactive terminal UI starts.")
		fmt.Fprintln(flag.CommandLine.Output(), "serve starts the web front-end on $PORT.")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	switch flag.Arg(0) {
	case "":
		err = runTUI(cfg)
	case "serve":
		err = runServer(cfg)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		slog.Error("Exited with error", slog.Any("error", err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runTUI(cfg *config.Config) error {
	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}

	logFile, err := logging.OpenFile(cfg.LogFile)
	if err != nil {
		return err
	}
	defer logFile.Close()

	logger := logging.New(logFile, level, logging.FormatText)
	slog.SetDefault(logger)
	logger.Info("Starting terminal UI", slog.String("api_url", cfg.APIURL))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	c := client.NewClient(cfg.APIURL, cfg.RequestTimeout, logger)
	state := recommend.NewState()
	form := recommend.NewForm(state, c, logger)

	p := tea.NewProgram(tui.New(ctx, form, state), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("terminal UI failed: %w", err)
	}

	logger.Info("Terminal UI stopped")
	return nil
}

func runServer(cfg *config.Config) error {
	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}

	logger := logging.New(os.Stdout, level, logging.FormatJSON)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := client.NewClient(cfg.APIURL, cfg.RequestTimeout, logger)
	state := recommend.NewState()
	form := recommend.NewForm(state, c, logger)
	s := handlers.New(ctx, form, state, cfg.SubmitLimit)
	router := s.Router(c)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server",
			slog.String("addr", srv.Addr),
			slog.String("api_url", cfg.APIURL),
			slog.Any("routes", handlers.Routes(router)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("listen failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Graceful shutdown failed", slog.Any("error", err))
		_ = srv.Close()
	}
	s.Wait()

	logger.Info("Server stopped")
	return nil
}
