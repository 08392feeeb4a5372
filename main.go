package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/srich3/portfolio/internal/config"
	"github.com/srich3/portfolio/internal/content"
	"github.com/srich3/portfolio/internal/logging"
	"github.com/srich3/portfolio/internal/session"
	"github.com/srich3/portfolio/internal/store"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	BuildVersion   = "master"
	BuildCommit    = "00000000"
	BuildDate      = time.Now().Format("2006-01-02T15:04:05Z")
	BuildGoVersion = runtime.Version()
	envFile        string

	rootCmd = &cobra.Command{
		Use:   "portfolio",
		Short: "Personal portfolio web server",
		Long:  `portfolio serves a single page developer portfolio with HTMX driven sections.`,
		RunE:  serve,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE:  serve,
	}

	migrateCmd = &cobra.Command{
		Use:       "migrate [up|down|up-one|down-one]",
		Short:     "Migrate the analytics database schema",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"up", "down", "up-one", "down-one"},
		RunE:      migrateDB,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run:   version,
	}
)

var (
	errApp             = errors.New("application error")
	errMigrationAction = errors.New("unknown migration action")
)

const shutdownTimeout = 10 * time.Second

func main() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file to load")
	rootCmd.AddCommand(serveCmd, migrateCmd, versionCmd)

	if err := fang.Execute(context.Background(), rootCmd); err != nil {
		os.Exit(1)
	}
}

func version(_ *cobra.Command, _ []string) {
	fmt.Printf("portfolio\n\n")                     //nolint:forbidigo
	fmt.Printf("  Version: %s\n", BuildVersion)     //nolint:forbidigo
	fmt.Printf("  Commit:  %s\n", BuildCommit)      //nolint:forbidigo
	fmt.Printf("  Built:   %s\n", BuildDate)        //nolint:forbidigo
	fmt.Printf("  Runtime: %s\n\n", BuildGoVersion) //nolint:forbidigo
}

// migrationAction maps the migrate argument to a store action. No argument means up.
func migrationAction(args []string) (store.MigrationAction, error) {
	if len(args) == 0 {
		return store.MigrateUp, nil
	}

	switch args[0] {
	case "up":
		return store.MigrateUp, nil
	case "down":
		return store.MigrateDn, nil
	case "up-one":
		return store.MigrateUpOne, nil
	case "down-one":
		return store.MigrateDownOne, nil
	default:
		return store.MigrateUp, fmt.Errorf("%w: %q", errMigrationAction, args[0])
	}
}

func migrateDB(cmd *cobra.Command, args []string) error {
	action, errAction := migrationAction(args)
	if errAction != nil {
		return errAction
	}

	cfg, err := config.Read(envFile)
	if err != nil {
		return errors.Join(err, errApp)
	}

	database, errOpen := store.Open(cmd.Context(), cfg.DBPath, false)
	if errOpen != nil {
		return errors.Join(errOpen, errApp)
	}
	defer database.Close()

	return database.Migrate(action)
}

// serve runs the web server and the session sweeper until interrupted.
func serve(cmd *cobra.Command, _ []string) error {
	cfg, errConfig := config.Read(envFile)
	if errConfig != nil {
		return errors.Join(errConfig, errApp)
	}
	if err := cfg.Validate(); err != nil {
		return errors.Join(err, errApp)
	}

	gin.SetMode(cfg.Mode)

	logger, errLogger := logging.New(cfg.Release(), cfg.LogLevel)
	if errLogger != nil {
		return errors.Join(errLogger, errApp)
	}
	defer func() { _ = logger.Sync() }()

	site, errSite := content.Load()
	if errSite != nil {
		return errors.Join(errSite, errApp)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var analytics *store.Store
	if cfg.Analytics {
		database, errDB := store.Open(ctx, cfg.DBPath, true)
		if errDB != nil {
			return errors.Join(errDB, errApp)
		}
		defer database.Close()
		analytics = database
		logger.Info("Privacy: visitor tracking enabled with hashed IP addresses", zap.String("db", cfg.DBPath))
	}

	if !cfg.Release() && cfg.DefaultAdmin() {
		logger.Warn("Using default admin credentials. Set ADMIN_USERNAME and ADMIN_PASSWORD.")
	}

	sessions, errSessions := session.NewStore(site, cfg.SessionTTL,
		session.WithLimit(cfg.SessionLimit),
		session.WithLogger(logger))
	if errSessions != nil {
		return errors.Join(errSessions, errApp)
	}

	application, errNew := newApp(cfg, logger, site, sessions, analytics)
	if errNew != nil {
		return errors.Join(errNew, errApp)
	}

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           application.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return sessions.Run(groupCtx, cfg.SweepInterval)
	})
	group.Go(func() error {
		return application.retention(groupCtx)
	})
	group.Go(func() error {
		logger.Info("Portfolio listening",
			zap.String("addr", cfg.Addr()),
			zap.String("base_path", cfg.BasePath),
			zap.String("mode", cfg.Mode))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		logger.Info("Shutting down")

		return server.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
