package main

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"suratapi/docs"
	handlers "suratapi/internal/http/handler"
	"suratapi/internal/http/middleware"
	"suratapi/internal/notify"
	"suratapi/internal/numbering"
	tracing "suratapi/internal/otel"
	"suratapi/internal/service"
)

const (
	shutdownTimeout = 15 * time.Second
	bodyLimit       = 20 << 20
)

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API with the configured store (STORE=postgres|memory).

Notifications and audit entries are written after each commit; NATS_URL and
NOTIFY_WEBHOOK_URL add optional sinks.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	shutdownTracing, err := tracing.Init(ctx, a.log)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			a.log.Warn().Err(err).Msg("tracer shutdown failed")
		}
	}()

	st, err := a.openStores(ctx)
	if err != nil {
		return err
	}
	defer st.close()

	blobs, err := a.openStorage(ctx)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	sinks := []notify.Sink{notify.NewStoreSink(st.notifications, st.audit), notify.NewLogSink(a.log)}
	if url := a.cfg.Notify.NATSURL; url != "" {
		nc, err := notify.DialNATS(url, "suratapi")
		if err != nil {
			return err
		}
		defer nc.Drain()
		sinks = append(sinks, notify.NewNATSSink(nc, a.cfg.Notify.SubjectPrefix))
	}
	if url := a.cfg.Notify.WebhookURL; url != "" {
		sinks = append(sinks, notify.NewWebhookSink(url, nil))
	}

	dispatcher, err := notify.NewDispatcher(a.log, notify.Options{
		Workers:    a.cfg.Notify.Workers,
		QueueSize:  a.cfg.Notify.QueueSize,
		MaxTries:   uint(max(a.cfg.Notify.MaxRetries, 1)),
		Registerer: reg,
	}, sinks...)
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := dispatcher.Close(dctx); err != nil {
			a.log.Warn().Err(err).Msg("notification queue not drained")
		}
	}()

	metrics, err := service.NewMetrics(reg)
	if err != nil {
		return err
	}
	deps := service.Deps{
		Letters:   st.letters,
		Audit:     st.audit,
		Users:     st.users,
		Resolver:  numbering.NewResolver(st.units, st.classes, a.cfg.NumberTemplate, a.loc),
		Storage:   blobs,
		Publisher: dispatcher,
		Metrics:   metrics,
		Logger:    a.log,
	}
	units, classes, users := st.catalogs()

	httpMetrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return err
	}

	srv := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		BodyLimit:             bodyLimit,
		DisableStartupMessage: true,
	})
	srv.Use(otelfiber.Middleware())
	srv.Use(middleware.RequestID())
	srv.Use(middleware.Logger(a.log))
	srv.Use(httpMetrics.Handler())

	srv.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	srv.Get("/swagger/*", swaggerUI)

	handlers.RegisterRoutes(srv, handlers.Services{
		Letters:         service.NewLetterService(deps),
		Approvals:       service.NewApprovalService(deps),
		Dispositions:    service.NewDispositionService(deps),
		Notifications:   service.NewNotificationService(st.notifications),
		Numbers:         service.NewNumberService(deps.Resolver),
		Units:           units,
		Classifications: classes,
		Users:           users,
		Checks:          append(st.checks, handlers.Check{Name: "storage", Ping: blobs.Ping}),
		Auth:            middleware.Actor(st.users),
	})

	addr := ":" + a.cfg.Port
	errc := make(chan error, 1)
	go func() { errc <- srv.Listen(addr) }()
	a.log.Info().Str("addr", addr).Str("store", a.cfg.Store).Int("sinks", len(sinks)).Msg("listening")

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	a.log.Info().Msg("shutting down")
	if err := srv.ShutdownWithTimeout(shutdownTimeout); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// swaggerUI serves the docs with the host and scheme the caller used.
func swaggerUI(c *fiber.Ctx) error {
	scheme := c.Protocol()
	if proto := c.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.Split(proto, ",")[0]
	}

	docs.SwaggerInfo.Host = c.Get("Host")
	docs.SwaggerInfo.Schemes = []string{scheme}

	return swagger.HandlerDefault(c)
}
