package order

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the payment side of an order's lifecycle.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDENTE"
	PaymentApproved PaymentStatus = "APROVADO"
	PaymentDenied   PaymentStatus = "NEGADO"
)

// OrderStatus is the fulfillment side of an order's lifecycle.
type OrderStatus string

const (
	StatusReceived      OrderStatus = "RECEBIDO"
	StatusInPreparation OrderStatus = "PREPARACAO"
	StatusReady         OrderStatus = "PRONTO"
	StatusFinished      OrderStatus = "FINALIZADO"
	StatusCanceled      OrderStatus = "CANCELADO"
)

var paymentStatuses = map[PaymentStatus]struct{}{
	PaymentPending:  {},
	PaymentApproved: {},
	PaymentDenied:   {},
}

var orderStatuses = map[OrderStatus]struct{}{
	StatusReceived:      {},
	StatusInPreparation: {},
	StatusReady:         {},
	StatusFinished:      {},
	StatusCanceled:      {},
}

func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	p := PaymentStatus(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := paymentStatuses[p]
	return p, ok
}

func ParseOrderStatus(s string) (OrderStatus, bool) {
	o := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := orderStatuses[o]
	return o, ok
}

// Order is one purchase. OrderNumber and TotalValue are fixed at creation.
type Order struct {
	ID            string          `json:"id"`
	OrderNumber   int             `json:"numeroPedido"`
	Customer      string          `json:"cliente"`
	Products      []string        `json:"produtos"`
	TotalValue    decimal.Decimal `json:"valorTotal"`
	PaymentCode   string          `json:"codigoPagamento,omitempty"`
	PaymentStatus PaymentStatus   `json:"statusPagamento"`
	Status        OrderStatus     `json:"statusPedido"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// CreateOrderRequest is the checkout payload.
type CreateOrderRequest struct {
	Products []string `json:"produtos"`
	Customer string   `json:"cliente"`
}

type PaymentStatusRequest struct {
	PaymentStatus string `json:"statusPagamento"`
}

type OrderStatusRequest struct {
	Status string `json:"statusPedido"`
}

// PaymentDecisionMessage arrives on the payment decisions queue. Deployments
// correlate either by order number or by payment code.
type PaymentDecisionMessage struct {
	OrderNumber   int    `json:"numeroPedido"`
	PaymentCode   string `json:"codigoPagamento"`
	PaymentStatus string `json:"statusPagamento"`
}

// ReadyOrderMessage arrives on the ready orders queue.
type ReadyOrderMessage struct {
	OrderID string `json:"idPedido"`
	Status  string `json:"statusPedido"`
}
