package order

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fanticheli/lanchonete-creusa-ms-pedido/internal/platform/apperr"
)

// Handler exposes order HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Post("/", h.checkout)                                            // POST /api/v1/orders
		r.Post("/checkout", h.checkout)                                    // POST /api/v1/orders/checkout
		r.Put("/payment-status/{number}", h.alterPaymentStatusByNumber)    // PUT  /api/v1/orders/payment-status/{number}
		r.Put("/payment-code/{code}/payment-status", h.alterPaymentByCode) // PUT  /api/v1/orders/payment-code/{code}/payment-status
		r.Put("/{id}/fulfillment-status", h.alterOrderStatus)              // PUT  /api/v1/orders/{id}/fulfillment-status
		r.Get("/number/{number}", h.getOrderByNumber)                      // GET  /api/v1/orders/number/{number}
		r.Get("/customer/{customer}", h.listCustomerOrders)                // GET  /api/v1/orders/customer/{customer}
		r.Get("/{id}", h.getOrder)                                         // GET  /api/v1/orders/{id}
	})
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, err)
		return
	}
	o, err := h.service.CreateOrder(r.Context(), req)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusCreated, o)
}

func (h *Handler) alterPaymentStatusByNumber(w http.ResponseWriter, r *http.Request) {
	number, err := orderNumberParam(r)
	if err != nil {
		fail(w, err)
		return
	}
	var req PaymentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, err)
		return
	}
	o, err := h.service.AlterPaymentStatusByNumber(r.Context(), number, req.PaymentStatus)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, PaymentStatusRequest{PaymentStatus: string(o.PaymentStatus)})
}

func (h *Handler) alterPaymentByCode(w http.ResponseWriter, r *http.Request) {
	var req PaymentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, err)
		return
	}
	o, err := h.service.AlterPaymentStatusByCode(r.Context(), chi.URLParam(r, "code"), req.PaymentStatus)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, PaymentStatusRequest{PaymentStatus: string(o.PaymentStatus)})
}

func (h *Handler) alterOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req OrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, err)
		return
	}
	o, err := h.service.AlterOrderStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, OrderStatusRequest{Status: string(o.Status)})
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) getOrderByNumber(w http.ResponseWriter, r *http.Request) {
	number, err := orderNumberParam(r)
	if err != nil {
		fail(w, err)
		return
	}
	o, err := h.service.GetOrderByNumber(r.Context(), number)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) listCustomerOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListCustomerOrders(r.Context(), chi.URLParam(r, "customer"))
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, orders)
}

func orderNumberParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "number")
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, apperr.New(apperr.InvalidArgument, "invalid order number %q", raw)
	}
	return n, nil
}

// fail maps every error to 400 with a message body.
func fail(w http.ResponseWriter, err error) {
	respond(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
