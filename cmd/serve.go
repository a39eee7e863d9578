package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/birdquiz/birdquiz/internal/api"
	"github.com/birdquiz/birdquiz/internal/auth"
	"github.com/birdquiz/birdquiz/internal/metrics"
)

const janitorInterval = time.Minute

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the quiz over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()
		cfg := rt.cfg
		log := rt.log

		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		opts := api.Options{
			AllowedOrigins:    cfg.CORS.AllowedOrigins,
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
			SessionTTL:        cfg.Quiz.SessionTTL,
			DefaultCount:      cfg.Quiz.QuestionCount,
			Policy:            cfg.Quiz.Policy(),
			Logger:            log,
			Metrics:           metrics.New(reg),
		}
		if cfg.JWT.Secret != "" {
			authSvc, err := auth.NewService(cfg.JWT.Secret, cfg.JWT.TTL())
			if err != nil {
				return fmt.Errorf("jwt: %w", err)
			}
			opts.Auth = authSvc
		} else {
			log.Warn("jwt.secret not set; every request is anonymous and nothing is saved")
		}

		srv := api.New(rt.service(auth.UserFromContext), opts)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		go srv.RunJanitor(ctx, janitorInterval)

		httpSrv := &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      srv.Router(),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info("listening", zap.String("addr", cfg.Server.Addr), zap.String("mode", cfg.Mode))
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("listen: %w", err)
			}
		case <-ctx.Done():
		}

		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		err = httpSrv.Shutdown(shutdownCtx)
		srv.Shutdown()
		if err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		log.Info("server stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}
