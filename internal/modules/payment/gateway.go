package payment

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/fanticheli/lanchonete-creusa-ms-pedido/internal/platform/apperr"
	"github.com/fanticheli/lanchonete-creusa-ms-pedido/internal/platform/kafka"
)

// Gateway is the transport-agnostic contract for starting a payment. It returns
// the payment reference when the transport yields one synchronously, or "" when
// the request was only handed off.
type Gateway interface {
	InitiatePayment(ctx context.Context, req Request) (string, error)
}

// Mode names a Gateway transport.
type Mode string

const (
	ModeQueue Mode = "queue"
	ModeHTTP  Mode = "http"
)

// GatewayRegistry maps modes to their Gateway implementations.
type GatewayRegistry map[Mode]Gateway

// Select returns the gateway for mode. An unknown mode yields a gateway that
// fails every call with a configuration error.
func (r GatewayRegistry) Select(mode string) Gateway {
	if gw, ok := r[Mode(strings.ToLower(mode))]; ok && gw != nil {
		return gw
	}
	return unconfiguredGateway{mode: mode}
}

type unconfiguredGateway struct{ mode string }

func (g unconfiguredGateway) InitiatePayment(context.Context, Request) (string, error) {
	return "", apperr.New(apperr.Configuration, "payment method not configured (mode %q)", g.mode)
}

// ── Queue adapter ─────────────────────────────────────────────────────────────
// Publishes the request to a durable topic; the broker acknowledgment is enough
// to proceed and the decision arrives later on the payment decisions queue.

type queueGateway struct {
	writer kafka.Writer
	topic  string
}

func NewQueueGateway(writer kafka.Writer, topic string) Gateway {
	return &queueGateway{writer: writer, topic: topic}
}

func (g *queueGateway) InitiatePayment(ctx context.Context, req Request) (string, error) {
	if g.writer == nil || g.topic == "" {
		return "", apperr.New(apperr.Configuration, "payment method not configured")
	}
	if err := kafka.PublishJSON(ctx, g.writer, strconv.Itoa(req.OrderNumber), req); err != nil {
		return "", apperr.Wrap(apperr.Configuration, err, "payment method not configured")
	}
	return "", nil
}

// ── HTTP adapter ──────────────────────────────────────────────────────────────
// Calls the payment service and stores the returned payment code on the order.

type httpGateway struct {
	client  *resty.Client
	baseURL string
}

func NewHTTPGateway(baseURL string, timeout time.Duration) Gateway {
	return &httpGateway{
		client:  resty.New().SetTimeout(timeout),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (g *httpGateway) InitiatePayment(ctx context.Context, req Request) (string, error) {
	if g.baseURL == "" {
		return "", apperr.New(apperr.Configuration, "payment method not configured")
	}

	var result InitiateResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		Post(g.baseURL + "/api/pagamentos")
	if err != nil {
		return "", apperr.Wrap(apperr.Configuration, err, "payment method not configured")
	}
	if resp.IsError() {
		return "", apperr.New(apperr.Payment, "payment could not be processed: status %d", resp.StatusCode())
	}

	code := result.Code()
	if code == "" {
		return "", apperr.New(apperr.Payment, "payment could not be processed: empty payment code")
	}
	return code, nil
}

// ── Cancellation ──────────────────────────────────────────────────────────────

// Canceller asks the payment service to drop the payment of an order.
type Canceller interface {
	CancelPayment(ctx context.Context, orderNumber int) error
}

type webhookCanceller struct {
	client  *resty.Client
	baseURL string
}

func NewWebhookCanceller(baseURL string, timeout time.Duration) Canceller {
	return &webhookCanceller{
		client:  resty.New().SetTimeout(timeout),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (c *webhookCanceller) CancelPayment(ctx context.Context, orderNumber int) error {
	if c.baseURL == "" {
		return apperr.New(apperr.Configuration, "payment cancellation webhook not configured")
	}
	resp, err := c.client.R().
		SetContext(ctx).
		Delete(fmt.Sprintf("%s/%d", c.baseURL, orderNumber))
	if err != nil {
		return apperr.Wrap(apperr.Delivery, err, "cancel payment of order %d", orderNumber)
	}
	if resp.IsError() {
		return apperr.New(apperr.Delivery, "cancel payment of order %d: status %d", orderNumber, resp.StatusCode())
	}
	return nil
}
