package cli

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harrylevesque/navshell/internal/api"
	"github.com/harrylevesque/navshell/internal/auth"
	"github.com/harrylevesque/navshell/internal/certs"
	"github.com/harrylevesque/navshell/internal/models"
	"github.com/harrylevesque/navshell/internal/shell"
	"github.com/harrylevesque/navshell/internal/store"
	"github.com/harrylevesque/navshell/internal/utils"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the navigation shell HTTP server",
		Long: strings.TrimSpace(`
Run the navigation shell. The menu is loaded from the configured source
(a YAML file or a Redis key) and reloaded whenever the source reports a change.
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			logger, err := utils.NewLogger(cfg.Logging)
			if err != nil {
				return err
			}
			defer logger.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := runServe(ctx, cfg, logger.Logger, nil); err != nil {
				logger.Error("server stopped", zap.Error(err))
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")
	return cmd
}

// runServe blocks until ctx is done. ready, if set, receives the bound
// address once the listener is up.
func runServe(ctx context.Context, cfg utils.Config, logger *zap.Logger, ready func(net.Addr)) error {
	var client redis.UniversalClient
	if cfg.Menu.Source == "redis" || cfg.Auth.Store == "redis" {
		client = newRedisClient(cfg.Redis)
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis %s: %w", cfg.Redis.Addr, err)
		}
	}

	src := menuSource(cfg, client, logger)
	profiles, err := profileStore(ctx, cfg, client)
	if err != nil {
		return err
	}

	sh := shell.New(
		shell.WithLogger(logger.Named("shell")),
		shell.WithTestMarker(cfg.IsTest()),
		shell.WithSessionTTL(cfg.Session.TTL),
		shell.WithMaxSessions(cfg.Session.Max),
	)
	menu, err := src.Load(ctx)
	switch {
	case err == nil:
		sh.Apply(menu)
	case errors.Is(err, store.ErrMenuNotFound):
		logger.Warn("no menu configured yet, serving an empty route table")
	default:
		return fmt.Errorf("load menu: %w", err)
	}

	var updates <-chan *models.Menu
	if cfg.Menu.Watch {
		if updates, err = src.Watch(ctx); err != nil {
			return fmt.Errorf("watch menu: %w", err)
		}
	}

	threshold, err := cfg.Auth.CreationThreshold()
	if err != nil {
		return err
	}
	srv := api.NewServer(sh,
		auth.NewResolver(profiles, cfg.Auth.Cookie, logger.Named("auth"),
			auth.WithProfileCreationThreshold(threshold)),
		api.WithLogger(logger.Named("http")),
		api.WithAuthURL(cfg.Auth.URL),
	)
	go srv.Metrics().Watch(ctx, sh)

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return err
	}
	if cfg.TLS.Enabled() {
		tlsConfig, leaf, err := certs.NewCertManager(cfg.TLS.CertFile, cfg.TLS.KeyFile).TLSConfig()
		if err != nil {
			ln.Close()
			return err
		}
		if certs.NeedsRenewal(leaf, time.Now()) {
			logger.Warn("tls certificate expires soon", zap.Time("not_after", leaf.NotAfter))
		}
		ln = tls.NewListener(ln, tlsConfig)
	}
	httpServer := &http.Server{
		Handler:           srv.NewRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 2)
	go func() {
		if err := sh.Run(ctx, updates); err != nil && !errors.Is(err, context.Canceled) {
			errc <- err
		}
	}()
	go func() {
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()
	logger.Info("navshell listening",
		zap.String("addr", ln.Addr().String()),
		zap.String("env", cfg.Env),
		zap.String("menu_source", cfg.Menu.Source),
		zap.Bool("tls", cfg.TLS.Enabled()),
	)
	if ready != nil {
		ready(ln.Addr())
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errc:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}
	return runErr
}

func newRedisClient(cfg utils.RedisConfig) redis.UniversalClient {
	return redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    []string{cfg.Addr},
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func menuSource(cfg utils.Config, client redis.UniversalClient, logger *zap.Logger) store.MenuSource {
	if cfg.Menu.Source == "redis" {
		return store.NewRedisMenuSource(client, cfg.Redis.MenuKey, cfg.Redis.MenuChannel, logger.Named("menu"))
	}
	return store.NewFileMenuSource(cfg.Menu.File, logger.Named("menu"))
}

// profileStore builds the configured profile store. The memory store is
// seeded with auth.dev_profiles.
func profileStore(ctx context.Context, cfg utils.Config, client redis.UniversalClient) (store.ProfileStore, error) {
	if cfg.Auth.Store == "redis" {
		return store.NewRedisProfileStore(client, cfg.Redis.ProfilePrefix), nil
	}
	profiles := store.NewMemoryProfileStore()
	for token, p := range cfg.Auth.DevProfiles {
		if err := profiles.Put(ctx, token, p); err != nil {
			return nil, err
		}
	}
	return profiles, nil
}
