package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "net/http/pprof"

	healthgo "github.com/hellofresh/health-go/v5"
	"github.com/labstack/echo-contrib/pprof"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
	"github.com/taldoflemis/usersnack/crosta/telemetry"
	"github.com/taldoflemis/usersnack/cucina"
	"github.com/taldoflemis/usersnack/ordine"

	_ "github.com/taldoflemis/usersnack/banco/docs"
)

// @title						Banco Storefront Gateway
// @version					1.0
// @description				Browsing and ordering API for the Usersnack pizza storefront.
// @host						localhost:8080
// @BasePath					/
func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()
	retcode := 0
	defer func() {
		os.Exit(retcode)
	}()

	slog.InfoContext(ctx, "Launching banco")

	slog.InfoContext(ctx, "Loading config")
	settings, err := LoadConfig()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", slog.Any("err", err))
		retcode = 1
		return
	}

	slog.InfoContext(ctx, "Setting up opentelemetry")
	otelShutdown, err := telemetry.SetupOTelSDK(ctx, settings.App, settings.OpenTelemetry)
	if err != nil {
		slog.Error("failed to setup telemetry", slog.Any("err", err))
		retcode = 1
		return
	}

	defer func() {
		err = errors.Join(err, otelShutdown(context.Background()))
		if err != nil {
			slog.ErrorContext(
				ctx,
				"failed to shutdown opentelemetry providers",
				slog.Any("err", err),
			)
			retcode = 1
		}
	}()

	kitchen := cucina.NewClient(settings.Upstream)
	pricer := ordine.NewPricer(kitchen)
	submitter := ordine.NewSubmitter(kitchen)

	sessions, err := NewSessionStore(pricer, time.Duration(settings.Session.TTLInSeconds)*time.Second)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create session store", slog.Any("err", err))
		retcode = 1
		return
	}
	sessions.StartJanitor(ctx, time.Duration(settings.Session.JanitorIntervalInSeconds)*time.Second)

	healthChecks := []healthgo.Config{
		{
			Name:      "kitchen",
			Timeout:   time.Duration(settings.Upstream.TimeoutInSeconds) * time.Second,
			SkipOnErr: false,
			Check:     kitchen.Ping,
		},
	}

	var publisher OrderPublisher = NewGoChannelOrderPublisher()
	if settings.Nats.Enabled {
		slog.InfoContext(ctx, "Connecting to NATS server")
		nc, err := settings.Nats.GetNatsClient()
		if err != nil {
			slog.ErrorContext(ctx, "failed to connect to NATS server", slog.Any("err", err))
			retcode = 1
			return
		}

		publisher = NewNATSOrderPublisher(nc, "orders.confirmed")
		healthChecks = append(healthChecks, healthgo.Config{
			Name: "nats",
			Check: func(ctx context.Context) error {
				if !nc.IsConnected() {
					return errors.New("NATS connection is not active")
				}
				return nil
			},
		})
	}

	slog.InfoContext(ctx, "Setting up health checker")
	health, err := healthgo.New(
		healthgo.WithComponent(healthgo.Component{
			Name:    settings.App.Name,
			Version: settings.App.Version,
		}),
		healthgo.WithChecks(healthChecks...),
	)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create health checker", slog.Any("err", err))
		retcode = 1
		return
	}

	errChan := make(chan error)
	server := echo.New()
	server.HideBanner = true

	_, err = NewMainHandler(server, settings, kitchen, sessions, submitter, publisher, health)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create main handler", slog.Any("err", err))
		retcode = 1
		return
	}
	server.GET("/swagger/*", echoSwagger.WrapHandler)
	pprof.Register(server)

	go func() {
		slog.InfoContext(ctx, "listening for requests", slog.String("ip", settings.HTTP.IP), slog.String("port", settings.HTTP.Port))
		errChan <- server.Start(fmt.Sprintf("%s:%s", settings.HTTP.IP, settings.HTTP.Port))
	}()

	select {
	case err = <-errChan:
		slog.ErrorContext(ctx, "error when running server", slog.Any("err", err))
		retcode = 1
		return
	case <-ctx.Done():
		// Wait for first Signal arrives
	}

	err = server.Shutdown(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to shutdown gracefully the server", slog.Any("err", err))
	}
}
