package payment

import "github.com/shopspring/decimal"

// Request is what the payment side needs to charge an order.
type Request struct {
	OrderID     string          `json:"id,omitempty"`
	Customer    string          `json:"cliente"`
	TotalValue  decimal.Decimal `json:"valorTotal"`
	OrderNumber int             `json:"numeroPedido"`
}

// InitiateResponse is the payment service reply. Older deployments answer with
// codigoPix instead of codigoPagamento.
type InitiateResponse struct {
	PaymentCode string `json:"codigoPagamento"`
	PixCode     string `json:"codigoPix"`
}

func (r InitiateResponse) Code() string {
	if r.PaymentCode != "" {
		return r.PaymentCode
	}
	return r.PixCode
}
