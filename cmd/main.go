package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Driverassistance/driveassist-app/internal/auth"
	"github.com/Driverassistance/driveassist-app/internal/config"
	"github.com/Driverassistance/driveassist-app/internal/db"
	"github.com/Driverassistance/driveassist-app/internal/garage"
	"github.com/Driverassistance/driveassist-app/internal/handlers"
	"github.com/Driverassistance/driveassist-app/internal/i18n"
	"github.com/Driverassistance/driveassist-app/internal/metrics"
	"github.com/Driverassistance/driveassist-app/internal/middleware"
	"github.com/Driverassistance/driveassist-app/internal/notify"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cfg := config.Load()

	root := &cobra.Command{
		Use:   "driveassist",
		Short: "DriveAssist - vehicle maintenance status and reminders",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg.Log.ConfigureLogging()
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfg.Store.Driver, "store", cfg.Store.Driver, "Storage driver (sqlite, mongo, memory)")
	root.PersistentFlags().StringVar(&cfg.Store.SQLitePath, "db", cfg.Store.SQLitePath, "Path to SQLite database")
	root.PersistentFlags().StringVar(&cfg.Locale, "locale", cfg.Locale, "Display language (ru, en)")

	root.AddCommand(serveCmd(&cfg))
	root.AddCommand(dashboardCmd(&cfg))
	root.AddCommand(remindCmd(&cfg))
	root.AddCommand(hashPasscodeCmd())
	return root
}

// openService opens the configured store and builds the garage service on it.
func openService(ctx context.Context, cfg *config.Config, rec *metrics.Recorder) (*garage.Service, db.Store, error) {
	store, err := db.Open(ctx, cfg.Store)
	if err != nil {
		return nil, nil, fmt.Errorf("database error: %w", err)
	}
	svc := garage.NewService(store,
		garage.WithCatalog(i18n.Match(cfg.Locale)),
		garage.WithMetrics(rec),
	)
	return svc, store, nil
}

// newHandler wires the HTTP API around svc.
func newHandler(cfg *config.Config, svc handlers.Garage, rec *metrics.Recorder) (http.Handler, error) {
	authService, err := auth.NewService(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry, cfg.Auth.PasscodeHash)
	if err != nil {
		return nil, fmt.Errorf("auth setup: %w", err)
	}
	if !authService.Enabled() {
		log.Warn("OWNER_PASSCODE_HASH not set, API is open")
	}
	return handlers.NewRouter(handlers.RouterConfig{
		Garage:      handlers.NewGarageHandler(svc),
		Auth:        handlers.NewAuthHandler(authService),
		AuthMW:      middleware.NewAuthMiddleware(authService),
		RateLimiter: middleware.NewRateLimitMiddleware(),
		RateLimit:   cfg.Auth.RateLimit,
		Metrics:     rec,
	}), nil
}

func serveCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rec, err := metrics.NewRecorder()
			if err != nil {
				return err
			}
			svc, store, err := openService(ctx, cfg, rec)
			if err != nil {
				return err
			}
			defer store.Close(context.Background())

			handler, err := newHandler(cfg, svc, rec)
			if err != nil {
				return err
			}
			server := &http.Server{
				Addr:              ":" + cfg.Port,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.WithFields(log.Fields{"port": cfg.Port, "store": cfg.Store.Driver}).Info("HTTP server listening")
				errCh <- server.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVarP(&cfg.Port, "port", "p", cfg.Port, "Server port")
	return cmd
}

func dashboardCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Print the dashboard as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, store, err := openService(cmd.Context(), cfg, nil)
			if err != nil {
				return err
			}
			defer store.Close(context.Background())
			return printDashboard(cmd.Context(), svc, cmd.OutOrStdout())
		},
	}
}

func printDashboard(ctx context.Context, g handlers.Garage, w io.Writer) error {
	d, err := g.Dashboard(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

func remindCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "remind",
		Short: "Publish the current reminder banner over MQTT",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			pub, err := notify.NewMQTTPublisher(cfg.MQTT)
			if err != nil {
				return err
			}
			defer pub.Close()

			svc, store, err := openService(ctx, cfg, nil)
			if err != nil {
				return err
			}
			defer store.Close(context.Background())

			sent, err := remind(ctx, svc, pub, time.Now())
			if err != nil {
				return err
			}
			if !sent {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing due")
			}
			return nil
		},
	}
}

type bannerSource interface {
	Dashboard(ctx context.Context) (garage.Dashboard, error)
}

func remind(ctx context.Context, src bannerSource, pub notify.Publisher, now time.Time) (bool, error) {
	d, err := src.Dashboard(ctx)
	if err != nil {
		return false, err
	}
	return pub.PublishBanner(ctx, d.Banner, now)
}

func hashPasscodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-passcode [passcode]",
		Short: "Print a bcrypt hash for OWNER_PASSCODE_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := auth.ValidatePasscode(args[0]); err != nil {
				return err
			}
			hash, err := auth.HashPasscode(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
