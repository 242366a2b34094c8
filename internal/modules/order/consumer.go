package order

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/fanticheli/lanchonete-creusa-ms-pedido/internal/platform/apperr"
	queue "github.com/fanticheli/lanchonete-creusa-ms-pedido/internal/platform/kafka"
)

// PaymentDecisionHandler applies decisions from the payment decisions queue. A
// message carrying only codigoPagamento is correlated by payment code, anything
// else by numeroPedido.
func PaymentDecisionHandler(svc Service) queue.HandlerFunc {
	return func(ctx context.Context, msg kafka.Message) error {
		var m PaymentDecisionMessage
		if err := json.Unmarshal(msg.Value, &m); err != nil {
			return apperr.Wrap(apperr.InvalidArgument, err, "decode payment decision")
		}
		if m.OrderNumber == 0 && m.PaymentCode != "" {
			_, err := svc.AlterPaymentStatusByCode(ctx, m.PaymentCode, m.PaymentStatus)
			return err
		}
		_, err := svc.AlterPaymentStatusByNumber(ctx, m.OrderNumber, m.PaymentStatus)
		return err
	}
}

// ReadyOrderHandler applies fulfillment updates from the ready orders queue.
func ReadyOrderHandler(svc Service) queue.HandlerFunc {
	return func(ctx context.Context, msg kafka.Message) error {
		var m ReadyOrderMessage
		if err := json.Unmarshal(msg.Value, &m); err != nil {
			return apperr.Wrap(apperr.InvalidArgument, err, "decode ready order")
		}
		_, err := svc.AlterOrderStatus(ctx, m.OrderID, m.Status)
		return err
	}
}
