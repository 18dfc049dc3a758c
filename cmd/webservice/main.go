package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	_ "time/tzdata"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lumakart/fulfillment-service/config"
	"github.com/lumakart/fulfillment-service/internal/controller"
	"github.com/lumakart/fulfillment-service/internal/deadline"
	circuitbreaker "github.com/lumakart/fulfillment-service/internal/infrastructure/circuit-breaker"
	"github.com/lumakart/fulfillment-service/internal/infrastructure/database/postgres"
	messagequeue "github.com/lumakart/fulfillment-service/internal/infrastructure/message-queue/kafka"
	paymentgateway "github.com/lumakart/fulfillment-service/internal/infrastructure/payment-gateway"
	"github.com/lumakart/fulfillment-service/internal/infrastructure/tracing"
	localmiddleware "github.com/lumakart/fulfillment-service/internal/middleware"
	"github.com/lumakart/fulfillment-service/internal/reconcile"
	"github.com/lumakart/fulfillment-service/internal/repository"
	"github.com/lumakart/fulfillment-service/internal/service"
	"github.com/lumakart/fulfillment-service/pkg/keylock"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = logger

	config := config.CreateNewConfig()

	db, err := postgres.GetDBInstance(config.PostgreSQLConfig.DBUsername, config.PostgreSQLConfig.DBPassword, config.PostgreSQLConfig.DBHost, config.PostgreSQLConfig.DBPort, config.PostgreSQLConfig.DBName)
	if err != nil {
		panic(err)
	}

	traceProvider, err := tracing.InitTracing(config.TracingConfig.CollectorHost)
	if err != nil {
		fmt.Println(err)
	}

	defer func() {
		if err := traceProvider.Shutdown(context.Background()); err != nil {
			fmt.Println(err)
		}
	}()

	tracer := traceProvider.Tracer("fulfillment-service")

	e := echo.New()
	g := e.Group("/api/v1")

	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, span := tracer.Start(c.Request().Context(), fmt.Sprintf("[%s] %s", c.Request().Method, c.Path()))
			defer span.End()

			req := c.Request()
			c.SetRequest(req.WithContext(ctx))

			return next(c)
		}
	})

	// Used empty string so that metrics are not prefixed with the service name making it easier to aggregate across services
	e.Use(echoprometheus.NewMiddleware(""))
	go func() {
		metrics := echo.New()
		metrics.GET("/metrics", echoprometheus.NewHandler())
		if err := metrics.Start(fmt.Sprintf(":%s", config.MetricsPort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start metrics server")
		}
	}()

	e.Use(localmiddleware.Logger)

	g.GET("/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, "pong")
	})

	clk := clockwork.NewRealClock()
	locks := keylock.New()

	orderRepo := repository.CreateOrderRepository(db)
	refundRepo := repository.CreateRefundRepository(db)
	voucherRepo := repository.CreateVoucherRepository(db)

	var notifier service.Notifier = service.NoopNotifier{}
	if config.KafkaConfig.BrokerAddress != "" {
		kafkaProducer := messagequeue.CreateKafkaProducer(config)
		notifier = service.CreateKafkaNotifier(kafkaProducer)
	}

	var provider paymentgateway.Provider
	if config.MidtransConfig.ServerKey != "" {
		midtransClient := paymentgateway.CreateMidtransClient(config)
		provider = paymentgateway.CreateMidtransProvider(midtransClient)
	} else {
		provider = paymentgateway.CreateLocalProvider(clk)
	}

	// The expiry callback is wired after the payment service exists.
	var paymentSvc service.PaymentService
	deadlines := deadline.CreateRegistry(clk, func(orderID string) {
		if err := paymentSvc.ExpirePayment(context.Background(), orderID); err != nil {
			log.Error().Err(err).Str("order_id", orderID).Msg("expiry callback failed")
		}
	})

	coordinator := service.CreateConfirmationCoordinator(orderRepo, locks, deadlines, notifier, clk)
	orderSvc := service.CreateOrderService(orderRepo, voucherRepo, locks, deadlines, notifier, clk)
	paymentSvc = service.CreatePaymentService(orderRepo, voucherRepo, provider, coordinator, locks, deadlines, notifier, clk)
	refundSvc := service.CreateRefundService(refundRepo, orderRepo, orderSvc, locks, notifier, clk)

	breaker := circuitbreaker.CreateCircuitBreaker[reconcile.Snapshot]("fulfillment-service")

	var fetcher reconcile.Fetcher
	if config.ReconcileConfig.BackendBaseURL != "" {
		fetcher = reconcile.CreateHTTPFetcher(config.ReconcileConfig.BackendBaseURL)
	} else {
		fetcher = reconcile.CreateRepositoryFetcher(orderRepo, refundRepo)
	}

	loop := reconcile.CreateLoop(fetcher, breaker, clk, time.Duration(config.ReconcileConfig.OrderIntervalSeconds)*time.Second)
	go loop.Run(context.Background())

	controller.CreateFulfillmentController(g, orderSvc, paymentSvc, refundSvc, loop)

	s, err := gocron.NewScheduler()
	if err != nil {
		panic(err)
	}

	_, err = s.NewJob(
		gocron.DurationJob(
			time.Minute,
		),
		gocron.NewTask(
			paymentSvc.SweepExpiredPayments,
		),
	)
	if err != nil {
		panic(err)
	}

	s.Start()

	e.Logger.Fatal(e.Start(fmt.Sprintf(":%s", config.ServicePort)))
}
