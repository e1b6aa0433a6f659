package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"

	"github.com/nhle/pdf-prints/internal/api"
	"github.com/nhle/pdf-prints/internal/app"
	"github.com/nhle/pdf-prints/internal/credential"
	"github.com/nhle/pdf-prints/internal/model"
	"github.com/nhle/pdf-prints/internal/notify"
	"github.com/nhle/pdf-prints/internal/service"
	"github.com/nhle/pdf-prints/internal/store"
)

const usage = `usage: pdfprints [flags] [command]

commands:
  tui             interactive PDF grid (default)
  serve           HTTP JSON API
  migrate         apply schema migrations and exit
  init            write a default config file
  redis-password  store the Redis password read from stdin in the keyring
                  (empty input removes it)

flags:
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "pdfprints:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	_ = godotenv.Load()

	fs := pflag.NewFlagSet("pdfprints", pflag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		fs.PrintDefaults()
	}
	configPath := fs.String("config", model.DefaultConfigPath(), "path to the YAML config file")
	fs.String("db", "", "SQLite database path")
	fs.String("driver", "", "database driver: sqlite or postgres")
	fs.String("addr", "", "listen address for serve")
	fs.String("log-level", "", "log level: debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	v := model.NewViper()
	for key, flag := range map[string]string{
		"database.path":   "db",
		"database.driver": "driver",
		"server.address":  "addr",
		"log.level":       "log-level",
	} {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return fmt.Errorf("binding flag %s: %w", flag, err)
		}
	}

	cfg, err := model.LoadConfig(v, *configPath)
	if err != nil {
		return err
	}

	cmd := fs.Arg(0)
	if cmd == "" {
		cmd = "tui"
	}

	switch cmd {
	case "tui":
		return runTUI(cfg)
	case "serve":
		return runServe(cfg)
	case "migrate":
		return runMigrate(cfg)
	case "init":
		return runInit(*configPath, cfg)
	case "redis-password":
		return runRedisPassword(os.Stdin)
	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func runTUI(cfg *model.AppConfig) error {
	logPath := cfg.Log.File
	if logPath == "" {
		logPath = filepath.Join(model.DataDir(), "pdfprints.log")
	}
	closeLog, err := setupFileLogger(cfg.Log.Level, logPath)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx := context.Background()
	st, err := openStore(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	var (
		svcOpts []service.Option
		appOpts []app.Option
	)
	if cfg.Redis.Enabled() {
		rdb, err := newRedisClient(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer rdb.Close()

		n := notify.NewRedisNotifier(rdb, cfg.Redis.Channel)
		svcOpts = append(svcOpts, service.WithNotifier(n))
		appOpts = append(appOpts, app.WithSubscriber(n))
	}

	svc := service.New(st, svcOpts...)
	m := app.New(svc, cfg.Display.PageSize, appOpts...)

	slog.Info("starting tui", "driver", st.Dialect())
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running tui: %w", err)
	}
	return nil
}

func runServe(cfg *model.AppConfig) error {
	slog.SetDefault(newLogger(cfg.Log.Level, os.Stderr))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	var opts []service.Option
	if cfg.Redis.Enabled() {
		rdb, err := newRedisClient(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer rdb.Close()
		opts = append(opts, service.WithNotifier(notify.NewRedisNotifier(rdb, cfg.Redis.Channel)))
	}

	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           api.Router(api.NewHandler(service.New(st, opts...))),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", srv.Addr, "driver", st.Dialect())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return nil
}

func runMigrate(cfg *model.AppConfig) error {
	slog.SetDefault(newLogger(cfg.Log.Level, os.Stderr))

	ctx := context.Background()
	st, err := openStore(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	version, err := st.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s schema at version %d\n", st.Dialect(), version)
	return nil
}

func runInit(path string, cfg *model.AppConfig) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config %s already exists", path)
	}
	if err := model.SaveConfig(path, cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func runRedisPassword(in io.Reader) error {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("reading password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return credential.Delete(credential.RedisPassword)
	}
	return credential.Set(credential.RedisPassword, password)
}

// openStore opens the configured backend and applies pending migrations.
func openStore(ctx context.Context, cfg model.DatabaseConfig) (*store.SQLStore, error) {
	switch cfg.Driver {
	case "postgres":
		return store.NewPostgresStore(ctx, cfg.PostgresURL)
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		return store.NewSQLiteStore(cfg.Path)
	}
}

// newRedisClient connects to Redis. An empty configured password falls back
// to the keyring.
func newRedisClient(ctx context.Context, cfg model.RedisConfig) (*redis.Client, error) {
	password := cfg.Password
	if password == "" {
		p, err := credential.Get(credential.RedisPassword)
		switch {
		case err == nil:
			password = p
		case !errors.Is(err, credential.ErrNotFound):
			slog.Warn("reading redis password from keyring", "error", err)
		}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}

// setupFileLogger routes slog to path so log lines do not corrupt the
// alternate screen.
func setupFileLogger(level, path string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	slog.SetDefault(newLogger(level, f))
	return func() { f.Close() }, nil
}

func newLogger(level string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
