package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/varkas/mannchess-server/internal/archive"
	"github.com/varkas/mannchess-server/internal/config"
	"github.com/varkas/mannchess-server/internal/gateway"
	"github.com/varkas/mannchess-server/internal/msgcat"
	"github.com/varkas/mannchess-server/internal/notify"
	"github.com/varkas/mannchess-server/internal/obslog"
	"github.com/varkas/mannchess-server/internal/room"
)

func main() {
	if err := newCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("MANNCHESS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "mannchessd",
		Short:         "Websocket server hosting two-player mann-chess rooms.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load(v)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringP("bind", "b", "0.0.0.0", "address to bind to (env: MANNCHESS_BIND)")
	fs.IntP("port", "p", 8080, "port to listen on (env: MANNCHESS_PORT)")
	fs.String("redis-url", "", "redis URL for game archiving (env: MANNCHESS_REDIS_URL)")
	fs.String("database-url", "", "postgres URL for game archiving (env: MANNCHESS_DATABASE_URL)")
	fs.String("monitor-url", "", "base URL receiving room lifecycle events (env: MANNCHESS_MONITOR_URL)")
	fs.String("messages-dir", "", "directory of YAML overrides for the message catalog (env: MANNCHESS_MESSAGES_DIR)")
	fs.Duration("grace-window", room.DefaultGraceWindow, "how long a disconnected seat is held (env: MANNCHESS_GRACE_WINDOW)")
	fs.String("log-level", "info", "log level (env: MANNCHESS_LOG_LEVEL)")
	fs.String("log-format", "console", "log encoder, console or json (env: MANNCHESS_LOG_FORMAT)")
	fs.Bool("log-console", true, "log to stdout (env: MANNCHESS_LOG_CONSOLE)")
	fs.String("log-file", "", "log file path (env: MANNCHESS_LOG_FILE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})

	return cmd
}

func serve(ctx context.Context, cfg *config.AppConfig) error {
	if err := obslog.Init(obslog.Options{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Console: cfg.LogConsole,
		File:    cfg.LogFile,
	}); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	defer func() { _ = obslog.L().Sync() }()

	cat, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		return fmt.Errorf("message catalog: %w", err)
	}

	store, err := newStore(cfg)
	if err != nil {
		return fmt.Errorf("archive: %w", err)
	}

	hub := gateway.NewHub(room.Options{
		Catalog:     cat,
		GraceWindow: cfg.GraceWindow,
		Archive:     store,
		Notifier:    notify.New(cfg.MonitorURL),
	})
	defer hub.Close()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           hub.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		obslog.L().Info("listen", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	obslog.L().Info("shutdown")
	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// newStore picks the archive backend: redis when configured, postgres
// otherwise, in-memory when neither is.
func newStore(cfg *config.AppConfig) (archive.Store, error) {
	switch {
	case cfg.RedisURL != "":
		return archive.NewRedisStore(cfg.RedisURL)
	case cfg.DatabaseURL != "":
		return archive.NewPostgresStore(cfg.DatabaseURL)
	default:
		return archive.NewMemoryStore(), nil
	}
}
