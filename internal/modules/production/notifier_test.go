package production

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fanticheli/lanchonete-creusa-ms-pedido/internal/platform/apperr"
)

type captureWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func testNotification() Notification {
	return Notification{
		OrderID:     "order-1",
		Customer:    "Cliente 1",
		OrderNumber: 5,
		Products: []Item{
			{Description: "X-Burguer", Value: decimal.NewFromInt(10)},
			{Description: "Sorvetinho", Value: decimal.RequireFromString("1.50")},
		},
	}
}

func TestQueueNotifier(t *testing.T) {
	w := &captureWriter{}
	require.NoError(t, NewQueueNotifier(w, "producao").Notify(context.Background(), testNotification()))

	require.Len(t, w.msgs, 1)
	var got Notification
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, "order-1", got.OrderID)
	require.Len(t, got.Products, 2)
	assert.Equal(t, "Sorvetinho", got.Products[1].Description)

	err := NewQueueNotifier(&captureWriter{err: errors.New("leader not available")}, "producao").Notify(context.Background(), testNotification())
	assert.ErrorIs(t, err, apperr.Delivery)
	assert.NotErrorIs(t, err, apperr.Configuration)
	assert.ErrorIs(t, NewQueueNotifier(nil, "producao").Notify(context.Background(), testNotification()), apperr.Configuration)
	assert.ErrorIs(t, NewQueueNotifier(&captureWriter{}, "").Notify(context.Background(), testNotification()), apperr.Configuration)
}

func TestWebhookNotifier(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		var got Notification
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, 5, got.OrderNumber)
		if calls > 1 {
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL, time.Second)

	assert.NoError(t, n.Notify(context.Background(), testNotification()))
	assert.ErrorIs(t, n.Notify(context.Background(), testNotification()), apperr.Delivery)
	assert.ErrorIs(t, NewWebhookNotifier("", time.Second).Notify(context.Background(), testNotification()), apperr.Configuration)
}

func TestNotifierRegistrySelect(t *testing.T) {
	registry := NotifierRegistry{ModeQueue: NewQueueNotifier(&captureWriter{}, "producao")}

	assert.NoError(t, registry.Select("queue").Notify(context.Background(), testNotification()))
	err := registry.Select("carrier-pigeon").Notify(context.Background(), testNotification())
	assert.ErrorIs(t, err, apperr.Configuration)
	assert.NotErrorIs(t, err, apperr.Delivery)
}
