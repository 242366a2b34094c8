package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/fanticheli/lanchonete-creusa-ms-pedido/internal/modules/customer"
	"github.com/fanticheli/lanchonete-creusa-ms-pedido/internal/modules/order"
	"github.com/fanticheli/lanchonete-creusa-ms-pedido/internal/modules/payment"
	"github.com/fanticheli/lanchonete-creusa-ms-pedido/internal/modules/product"
	"github.com/fanticheli/lanchonete-creusa-ms-pedido/internal/modules/production"
	"github.com/fanticheli/lanchonete-creusa-ms-pedido/internal/platform/config"
	"github.com/fanticheli/lanchonete-creusa-ms-pedido/internal/platform/kafka"
	"github.com/fanticheli/lanchonete-creusa-ms-pedido/internal/platform/logging"
	"github.com/fanticheli/lanchonete-creusa-ms-pedido/internal/platform/metrics"
	"github.com/fanticheli/lanchonete-creusa-ms-pedido/internal/platform/telemetry"
)

func main() {
	cfg := config.Load()
	logging.Service = cfg.ServiceName
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := telemetry.InitTracer(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("init tracer: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(shutdownCtx)
	}()

	// ── Storage ─────────────────────────────────────────────
	var (
		db           *sql.DB
		productRepo  product.Repository
		orderRepo    order.Repository
		customerRepo customer.Repository
	)
	if cfg.DatabaseURL != "" {
		db, err = sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Fatal(err)
		}
		defer db.Close()

		if err := db.PingContext(ctx); err != nil {
			log.Fatal(err)
		}
		log.Println("Successfully connected to the database!")

		productRepo = product.NewPostgresRepository(db)
		orderRepo = order.NewPostgresRepository(db)
		customerRepo = customer.NewPostgresRepository(db)
	} else {
		log.Println("DATABASE_URL not set, using in-memory repositories")
		productRepo = product.NewMemoryRepository()
		orderRepo = order.NewMemoryRepository()
		customerRepo = customer.NewMemoryRepository()
	}

	// ── Queues ──────────────────────────────────────────────
	broker := kafka.NewClient(cfg.KafkaBrokers)
	var paymentWriter, productionWriter kafka.Writer
	if broker.Enabled() {
		pw := broker.NewWriter(cfg.PaymentRequestsQueue)
		defer pw.Close()
		prw := broker.NewWriter(cfg.ProductionQueue)
		defer prw.Close()
		paymentWriter, productionWriter = pw, prw
	} else {
		log.Println("KAFKA_BROKERS not set, queue adapters disabled")
	}

	// ── Collaborators ───────────────────────────────────────
	gateways := payment.GatewayRegistry{
		payment.ModeQueue: payment.NewQueueGateway(paymentWriter, cfg.PaymentRequestsQueue),
		payment.ModeHTTP:  payment.NewHTTPGateway(cfg.PaymentServiceURL, cfg.HTTPClientTimeout),
	}
	notifiers := production.NotifierRegistry{
		production.ModeQueue:   production.NewQueueNotifier(productionWriter, cfg.ProductionQueue),
		production.ModeWebhook: production.NewWebhookNotifier(cfg.ProductionWebhookURL, cfg.HTTPClientTimeout),
	}
	canceller := payment.NewWebhookCanceller(cfg.PaymentCancelWebhookURL, cfg.HTTPClientTimeout)

	serverMetrics := metrics.NewServerMetrics(prometheus.DefaultRegisterer, cfg.ServiceName)
	workflowMetrics := metrics.NewWorkflowMetrics(prometheus.DefaultRegisterer)

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(serverMetrics.Middleware)

	productService := product.NewService(productRepo)
	product.NewHandler(productService).RegisterRoutes(router)

	orderService := order.NewService(orderRepo, productService,
		gateways.Select(cfg.PaymentMode), notifiers.Select(cfg.ProductionMode), workflowMetrics)
	order.NewHandler(orderService).RegisterRoutes(router)

	customerService := customer.NewService(customerRepo, orderService, canceller)
	customer.NewHandler(customerService).RegisterRoutes(router)

	router.Handle("/metrics", metrics.Handler())
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				http.Error(w, "database unreachable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// ── Consumers ───────────────────────────────────────────
	var wg sync.WaitGroup
	if broker.Enabled() {
		handlers := map[string]kafka.HandlerFunc{
			cfg.PaymentDecisionsQueue: order.PaymentDecisionHandler(orderService),
			cfg.ReadyOrdersQueue:      order.ReadyOrderHandler(orderService),
		}
		var consumers []*kafka.Consumer
		for queue, handle := range handlers {
			retryTopic := kafka.RetryTopic(queue)
			retry := broker.NewWriter(retryTopic)
			defer retry.Close()

			primary := newConsumer(broker, cfg, queue, handle, workflowMetrics)
			primary.Park = retry
			primary.MaxAttempts = 3

			// Pending messages cycle through the retry topic until they succeed.
			pending := newConsumer(broker, cfg, retryTopic, handle, workflowMetrics)
			pending.Park = retry
			pending.MaxAttempts = 1
			pending.Delay = 10 * time.Second

			consumers = append(consumers, primary, pending)
		}
		for _, c := range consumers {
			wg.Add(1)
			go func(c *kafka.Consumer) {
				defer wg.Done()
				if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					log.Printf("consumer %s stopped: %v", c.Queue, err)
				}
			}(c)
		}
	}

	// ── Start Server ─────────────────────────────────────────
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router}
	go func() {
		log.Printf("%s starting on :%s", cfg.ServiceName, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	wg.Wait()
}

func newConsumer(broker *kafka.Client, cfg config.Config, queue string, handle kafka.HandlerFunc, m *metrics.WorkflowMetrics) *kafka.Consumer {
	return &kafka.Consumer{
		Queue:   queue,
		Open:    func() kafka.Reader { return broker.NewReader(queue, cfg.KafkaGroupID) },
		Handle:  handle,
		Backoff: 2 * time.Second,
		OnResult: func(result string) {
			m.QueueMessages.WithLabelValues(queue, result).Inc()
		},
	}
}
