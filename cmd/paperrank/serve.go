package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	delivery "github.com/paperrank/app/internal/delivery/http"
	"github.com/paperrank/app/internal/middleware"
	"github.com/paperrank/app/internal/session"
	"github.com/paperrank/app/internal/usecase"
)

const sweepInterval = 5 * time.Minute

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, client, cleanup, err := setup()
		if err != nil {
			return err
		}
		defer cleanup()

		log.Info("PaperRank starting...")
		log.WithField("webhook", client.URL()).Info("Forwarding searches")
		if cfg.Session.Ephemeral {
			log.Warn("SESSION_SECRET not set; sessions will not survive a restart")
		}

		codec, err := session.NewTokenCodec([]byte(cfg.Session.Secret))
		if err != nil {
			return err
		}
		sessions := session.NewManager(codec,
			session.WithCookieName(cfg.Session.CookieName),
			session.WithTTL(cfg.Session.TTL),
			session.WithMaxSessions(cfg.Session.Max),
			session.WithSecureCookie(cfg.Session.Secure),
		)

		searchUsecase := usecase.NewSearchUsecase(client, log)
		handler := delivery.NewHandler(searchUsecase, cfg.Webhook.Timeout, log)
		sessionMiddleware := middleware.NewSessionMiddleware(sessions, log)
		router := delivery.NewRouter(handler, sessionMiddleware, cfg.CORS.AllowedOrigins)

		srv := &http.Server{
			Addr:         ":" + cfg.Server.Port,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		go sessions.Run(ctx, sweepInterval, func(dropped int) {
			log.WithField("dropped", dropped).Debug("ended idle sessions")
		})

		errCh := make(chan error, 1)
		go func() {
			log.Infof("Server starting on port %s", cfg.Server.Port)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}
		log.Info("Shutting down server...")

		// In-flight searches may run up to the webhook timeout.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}

		log.Info("Server stopped gracefully")
		return nil
	},
}

func init() {
	serveCmd.Flags().String("port", "", "listen port (env PORT)")
	viper.BindPFlag("port", serveCmd.Flags().Lookup("port"))

	rootCmd.AddCommand(serveCmd)
}
