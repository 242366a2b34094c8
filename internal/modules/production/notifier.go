package production

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/fanticheli/lanchonete-creusa-ms-pedido/internal/platform/apperr"
	"github.com/fanticheli/lanchonete-creusa-ms-pedido/internal/platform/kafka"
)

// Notifier delivers production notifications. A missing endpoint or unknown
// mode is a configuration error; a failed send is a delivery error.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

type Mode string

const (
	ModeQueue   Mode = "queue"
	ModeWebhook Mode = "webhook"
)

type NotifierRegistry map[Mode]Notifier

func (r NotifierRegistry) Select(mode string) Notifier {
	if n, ok := r[Mode(strings.ToLower(mode))]; ok && n != nil {
		return n
	}
	return unconfiguredNotifier{mode: mode}
}

type unconfiguredNotifier struct{ mode string }

func (n unconfiguredNotifier) Notify(context.Context, Notification) error {
	return apperr.New(apperr.Configuration, "could not send order to production: mode %q not configured", n.mode)
}

type queueNotifier struct {
	writer kafka.Writer
	topic  string
}

func NewQueueNotifier(writer kafka.Writer, topic string) Notifier {
	return &queueNotifier{writer: writer, topic: topic}
}

func (q *queueNotifier) Notify(ctx context.Context, n Notification) error {
	if q.writer == nil || q.topic == "" {
		return apperr.New(apperr.Configuration, "could not send order to production: queue not configured")
	}
	if err := kafka.PublishJSON(ctx, q.writer, strconv.Itoa(n.OrderNumber), n); err != nil {
		return apperr.Wrap(apperr.Delivery, err, "could not send order to production")
	}
	return nil
}

type webhookNotifier struct {
	client *resty.Client
	url    string
}

func NewWebhookNotifier(url string, timeout time.Duration) Notifier {
	return &webhookNotifier{client: resty.New().SetTimeout(timeout), url: url}
}

func (w *webhookNotifier) Notify(ctx context.Context, n Notification) error {
	if w.url == "" {
		return apperr.New(apperr.Configuration, "could not send order to production: webhook not configured")
	}
	resp, err := w.client.R().SetContext(ctx).SetBody(n).Post(w.url)
	if err != nil {
		return apperr.Wrap(apperr.Delivery, err, "could not send order to production")
	}
	if resp.IsError() {
		return apperr.New(apperr.Delivery, "could not send order to production: status %d", resp.StatusCode())
	}
	return nil
}
