package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientParsesBrokers(t *testing.T) {
	c := NewClient(" kafka-1:9092, ,kafka-2:9092 ")
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, c.Brokers)
	assert.True(t, c.Enabled())
	assert.False(t, NewClient("").Enabled())
}

type captureWriter struct{ msgs []kafka.Message }

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func TestPublishJSON(t *testing.T) {
	w := &captureWriter{}
	require.NoError(t, PublishJSON(context.Background(), w, "7", map[string]int{"numeroPedido": 7}))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "7", string(w.msgs[0].Key))
	var got map[string]int
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, 7, got["numeroPedido"])

	assert.ErrorIs(t, PublishJSON(context.Background(), nil, "k", nil), ErrDisabled)
}

// fakeTopic replays messages from the last committed offset every time a
// reader is opened, like a consumer group does.
type fakeTopic struct {
	mu        sync.Mutex
	msgs      []kafka.Message
	committed int
	opened    int
}

func (f *fakeTopic) open() Reader {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened++
	return &fakeReader{topic: f, pos: f.committed}
}

func (f *fakeTopic) state() (committed, opened int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.committed, f.opened
}

type fakeReader struct {
	topic *fakeTopic
	pos   int
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.topic.mu.Lock()
	if r.pos < len(r.topic.msgs) {
		m := r.topic.msgs[r.pos]
		r.pos++
		r.topic.mu.Unlock()
		return m, nil
	}
	r.topic.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.topic.mu.Lock()
	defer r.topic.mu.Unlock()
	for _, m := range msgs {
		if int(m.Offset)+1 > r.topic.committed {
			r.topic.committed = int(m.Offset) + 1
		}
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

type recorder struct {
	mu       sync.Mutex
	attempts map[string]int
	results  []string
}

func newRecorder() *recorder { return &recorder{attempts: map[string]int{}} }

func (r *recorder) attempt(msg kafka.Message) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts[string(msg.Value)]++
	return r.attempts[string(msg.Value)]
}

func (r *recorder) onResult(result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
}

func (r *recorder) snapshot() (map[string]int, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	attempts := map[string]int{}
	for k, v := range r.attempts {
		attempts[k] = v
	}
	return attempts, append([]string(nil), r.results...)
}

type parkWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
	errs []error
}

func (w *parkWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.errs) > 0 {
		err := w.errs[0]
		w.errs = w.errs[1:]
		return err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *parkWriter) parked() []kafka.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]kafka.Message(nil), w.msgs...)
}

func runUntil(t *testing.T, c *Consumer, done func() bool) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan error, 1)
	go func() { stopped <- c.Run(ctx) }()

	require.Eventually(t, done, time.Second, time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-stopped, context.Canceled)
}

func TestConsumerRetriesTransientFailure(t *testing.T) {
	topic := &fakeTopic{msgs: []kafka.Message{
		{Offset: 0, Value: []byte("a")},
		{Offset: 1, Value: []byte("b")},
	}}
	rec := newRecorder()
	park := &parkWriter{}

	c := &Consumer{
		Queue:       "pagamentos",
		Open:        topic.open,
		Park:        park,
		MaxAttempts: 3,
		Backoff:     time.Millisecond,
		Handle: func(_ context.Context, msg kafka.Message) error {
			if rec.attempt(msg) == 1 && string(msg.Value) == "a" {
				return errors.New("order not found")
			}
			return nil
		},
		OnResult: rec.onResult,
	}

	runUntil(t, c, func() bool {
		committed, _ := topic.state()
		return committed == 2
	})

	_, opened := topic.state()
	assert.Equal(t, 1, opened)
	attempts, results := rec.snapshot()
	assert.Equal(t, 2, attempts["a"])
	assert.Equal(t, 1, attempts["b"])
	assert.Equal(t, []string{"unacked", "acked", "acked"}, results)
	assert.Empty(t, park.parked())
}

func TestConsumerParksFailingMessageAndMovesOn(t *testing.T) {
	topic := &fakeTopic{msgs: []kafka.Message{
		{Offset: 0, Key: []byte("7"), Value: []byte("bad")},
		{Offset: 1, Key: []byte("8"), Value: []byte("good")},
	}}
	rec := newRecorder()
	park := &parkWriter{}

	c := &Consumer{
		Queue:       "pagamentos",
		Open:        topic.open,
		Park:        park,
		MaxAttempts: 2,
		Backoff:     time.Millisecond,
		Handle: func(_ context.Context, msg kafka.Message) error {
			rec.attempt(msg)
			if string(msg.Value) == "bad" {
				return errors.New("order number 7 not found")
			}
			return nil
		},
		OnResult: rec.onResult,
	}

	runUntil(t, c, func() bool {
		committed, _ := topic.state()
		return committed == 2
	})

	_, opened := topic.state()
	assert.Equal(t, 1, opened)
	attempts, results := rec.snapshot()
	assert.Equal(t, 2, attempts["bad"])
	assert.Equal(t, 1, attempts["good"])
	assert.Equal(t, []string{"unacked", "unacked", "parked", "acked"}, results)

	parked := park.parked()
	require.Len(t, parked, 1)
	assert.Equal(t, "bad", string(parked[0].Value))
	assert.Equal(t, "7", string(parked[0].Key))
	require.Len(t, parked[0].Headers, 1)
	assert.Equal(t, RedeliveriesHeader, parked[0].Headers[0].Key)
	assert.Equal(t, "1", string(parked[0].Headers[0].Value))
}

func TestConsumerCountsRedeliveries(t *testing.T) {
	topic := &fakeTopic{msgs: []kafka.Message{{
		Offset:  0,
		Value:   []byte("bad"),
		Headers: []kafka.Header{{Key: "trace", Value: []byte("t-1")}, {Key: RedeliveriesHeader, Value: []byte("4")}},
	}}}
	park := &parkWriter{}

	c := &Consumer{
		Queue:       RetryTopic("pagamentos"),
		Open:        topic.open,
		Park:        park,
		MaxAttempts: 1,
		Backoff:     time.Millisecond,
		Handle:      func(context.Context, kafka.Message) error { return errors.New("still failing") },
	}

	runUntil(t, c, func() bool {
		committed, _ := topic.state()
		return committed == 1
	})

	parked := park.parked()
	require.Len(t, parked, 1)
	assert.Equal(t, []kafka.Header{
		{Key: "trace", Value: []byte("t-1")},
		{Key: RedeliveriesHeader, Value: []byte("5")},
	}, parked[0].Headers)
}

func TestConsumerKeepsMessageWhenParkingFails(t *testing.T) {
	topic := &fakeTopic{msgs: []kafka.Message{{Offset: 0, Value: []byte("bad")}}}
	park := &parkWriter{errs: []error{errors.New("leader not available")}}
	rec := newRecorder()

	c := &Consumer{
		Queue:       "prontos",
		Open:        topic.open,
		Park:        park,
		MaxAttempts: 1,
		Backoff:     time.Millisecond,
		Handle: func(_ context.Context, msg kafka.Message) error {
			rec.attempt(msg)
			return errors.New("invalid order status")
		},
	}

	runUntil(t, c, func() bool {
		committed, _ := topic.state()
		return committed == 1
	})

	attempts, _ := rec.snapshot()
	assert.Equal(t, 2, attempts["bad"])
	assert.Len(t, park.parked(), 1)
}

func TestConsumerDelaysRecentMessages(t *testing.T) {
	written := time.Now()
	topic := &fakeTopic{msgs: []kafka.Message{{Offset: 0, Value: []byte("a"), Time: written}}}
	var handledAt time.Time

	c := &Consumer{
		Queue:   RetryTopic("prontos"),
		Open:    topic.open,
		Delay:   50 * time.Millisecond,
		Backoff: time.Millisecond,
		Handle: func(context.Context, kafka.Message) error {
			handledAt = time.Now()
			return nil
		},
	}

	runUntil(t, c, func() bool {
		committed, _ := topic.state()
		return committed == 1
	})

	assert.GreaterOrEqual(t, handledAt.Sub(written), 50*time.Millisecond)
}

func TestRetryTopic(t *testing.T) {
	assert.Equal(t, "pagamentos.retry", RetryTopic("pagamentos"))
}
