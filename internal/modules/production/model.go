package production

import "github.com/shopspring/decimal"

// Item is a resolved product line sent to the kitchen.
type Item struct {
	Description string          `json:"descricao"`
	Value       decimal.Decimal `json:"valor"`
}

// Notification tells the fulfillment side that an order's payment was approved
// and preparation can start.
type Notification struct {
	OrderID     string `json:"id"`
	Customer    string `json:"cliente"`
	Products    []Item `json:"produtos"`
	OrderNumber int    `json:"numeroPedido"`
}
