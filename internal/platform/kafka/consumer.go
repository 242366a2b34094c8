package kafka

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/fanticheli/lanchonete-creusa-ms-pedido/internal/platform/logging"
)

// HandlerFunc processes one message. A nil error acknowledges it.
type HandlerFunc func(ctx context.Context, msg kafka.Message) error

// RedeliveriesHeader counts how many times a message went through a retry topic.
const RedeliveriesHeader = "x-redeliveries"

// RetryTopic names the topic that holds messages of queue still pending.
func RetryTopic(queue string) string { return queue + ".retry" }

// Consumer reads a topic and commits a message only once it is settled: either
// its handler succeeded, or after MaxAttempts failures it was parked on the
// retry topic through Park. A failing message never holds back the ones behind
// it. Without Park a failing message is retried in place until it succeeds.
// Delay holds each message back until that long after it was written, which
// paces a retry topic that parks into itself.
type Consumer struct {
	Queue       string
	Open        func() Reader
	Handle      HandlerFunc
	Park        Writer
	MaxAttempts int
	Backoff     time.Duration
	Delay       time.Duration
	OnResult    func(result string)
}

func (c *Consumer) Run(ctx context.Context) error {
	reader := c.Open()
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logging.Log(logging.Fields{Queue: c.Queue, Step: "fetch", Status: "error", Error: err.Error()})
			if !c.wait(ctx) {
				return ctx.Err()
			}
			continue
		}

		outcome, err := c.settle(ctx, msg)
		if err != nil {
			return err
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			if errors.Is(err, context.Canceled) {
				return ctx.Err()
			}
			logging.Log(logging.Fields{Queue: c.Queue, Step: "commit", Status: "error", Error: err.Error()})
			continue
		}
		c.result(outcome)
	}
}

// settle handles msg until it succeeds or is parked. It only fails when ctx ends.
func (c *Consumer) settle(ctx context.Context, msg kafka.Message) (string, error) {
	if c.Delay > 0 && !msg.Time.IsZero() {
		if !sleep(ctx, time.Until(msg.Time.Add(c.Delay))) {
			return "", ctx.Err()
		}
	}
	for attempt := 1; ; attempt++ {
		err := c.Handle(ctx, msg)
		if err == nil {
			return "acked", nil
		}
		c.result("unacked")
		logging.Log(logging.Fields{Queue: c.Queue, Step: "handle", Status: "unacked", Error: err.Error()})

		if c.Park != nil && attempt >= c.maxAttempts() {
			perr := c.park(ctx, msg)
			if perr == nil {
				logging.Log(logging.Fields{Queue: c.Queue, Step: "park", Status: "parked", Error: err.Error()})
				return "parked", nil
			}
			logging.Log(logging.Fields{Queue: c.Queue, Step: "park", Status: "error", Error: perr.Error()})
		}

		if !c.wait(ctx) {
			return "", ctx.Err()
		}
	}
}

func (c *Consumer) park(ctx context.Context, msg kafka.Message) error {
	redeliveries := 0
	headers := make([]kafka.Header, 0, len(msg.Headers)+1)
	for _, h := range msg.Headers {
		if h.Key == RedeliveriesHeader {
			redeliveries, _ = strconv.Atoi(string(h.Value))
			continue
		}
		headers = append(headers, h)
	}
	headers = append(headers, kafka.Header{Key: RedeliveriesHeader, Value: []byte(strconv.Itoa(redeliveries + 1))})

	return c.Park.WriteMessages(ctx, kafka.Message{
		Key:     msg.Key,
		Value:   msg.Value,
		Headers: headers,
		Time:    time.Now().UTC(),
	})
}

func (c *Consumer) maxAttempts() int {
	if c.MaxAttempts <= 0 {
		return 3
	}
	return c.MaxAttempts
}

func (c *Consumer) result(r string) {
	if c.OnResult != nil {
		c.OnResult(r)
	}
}

func (c *Consumer) wait(ctx context.Context) bool {
	d := c.Backoff
	if d <= 0 {
		d = 2 * time.Second
	}
	return sleep(ctx, d)
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
