package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"habitcoach/internal/api"
	"habitcoach/internal/observability"
)

var servePort string

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the reminder scheduler",
		RunE:  runServe,
	}
	cmd.Flags().StringVarP(&servePort, "port", "p", "", "Listen port (default: $COACH_PORT or 3000)")

	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if servePort != "" {
		cfg.Port = servePort
	}
	log := observability.Logger()

	svc, err := buildServices(cfg)
	if err != nil {
		return err
	}
	defer svc.close()

	lifecycleCtx, cancelLifecycle := context.WithCancel(context.Background())
	defer cancelLifecycle()

	if cfg.EnableWorkers {
		log.Info("starting background workers")
		go svc.scheduler.Start(lifecycleCtx)
		go sweepSessions(lifecycleCtx, svc)
	} else {
		log.Info("background workers disabled (set COACH_ENABLE_WORKERS=true to enable)")
	}

	app := api.NewApp(api.Deps{
		Dispatcher:     svc.dispatcher,
		Outcomes:       svc.outcomes,
		Subscriptions:  svc.repo,
		Signer:         svc.signer,
		VAPIDPublicKey: cfg.VAPIDPublicKey,
	}, cfg.AllowedOrigins, true)

	sigCtx, stopSignals := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		cancelLifecycle()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
	}()

	log.Info("server starting", "port", cfg.Port, "storage", cfg.StorageBackend,
		"db", cfg.DBPath, "weekday_mode", cfg.WeekdayMode, "cors", cfg.AllowedOrigins)
	return app.Listen(":" + cfg.Port)
}

// sweepSessions drops idle dialog sessions once a minute.
func sweepSessions(ctx context.Context, svc *services) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := svc.engine.Sessions().Sweep(); n > 0 {
				observability.Logger().Info("expired dialog sessions removed", "count", n)
			}
		}
	}
}
