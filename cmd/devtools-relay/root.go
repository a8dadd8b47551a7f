package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/goliatone/go-devtools/internal/relay"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	keyAddr     = "relay.addr"
	keyPath     = "relay.path"
	keyLogLevel = "relay.log_level"
)

func newRootCmd() *cobra.Command {
	cfg := viper.New()
	cfg.SetEnvPrefix("DEVTOOLS")
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()
	cfg.SetDefault(keyAddr, "127.0.0.1:8765")
	cfg.SetDefault(keyPath, "/devtools")
	cfg.SetDefault(keyLogLevel, "info")

	rootCmd := &cobra.Command{
		Use:          "devtools-relay",
		Short:        "Receive devtools sessions over websockets",
		Long:         "devtools-relay accepts connections from bridges using the remote extension, logs every action and serves the latest state of each session on /sessions.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), cfg)
		},
	}

	flags := rootCmd.Flags()
	flags.String("addr", cfg.GetString(keyAddr), "listen address")
	flags.String("path", cfg.GetString(keyPath), "websocket path")
	flags.String("log-level", cfg.GetString(keyLogLevel), "zerolog level")
	_ = cfg.BindPFlag(keyAddr, flags.Lookup("addr"))
	_ = cfg.BindPFlag(keyPath, flags.Lookup("path"))
	_ = cfg.BindPFlag(keyLogLevel, flags.Lookup("log-level"))

	return rootCmd
}

func newLogger(level string) zerolog.Logger {
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		logLevel = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(logLevel).
		With().Timestamp().Logger()
}

func serve(ctx context.Context, cfg *viper.Viper) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := newLogger(cfg.GetString(keyLogLevel))
	server := relay.NewServer(log)
	httpServer := &http.Server{
		Addr:              cfg.GetString(keyAddr),
		Handler:           server.Handler(cfg.GetString(keyPath)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", httpServer.Addr).Str("path", cfg.GetString(keyPath)).Msg("relay listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	log.Info().Msg("relay shutting down")
	return httpServer.Shutdown(shutdownCtx)
}
