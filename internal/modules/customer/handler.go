package customer

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/customers", func(r chi.Router) {
		r.Post("/", h.createCustomer)
		r.Get("/", h.listCustomers)
		r.Get("/cpf/{cpf}", h.findByCPF)
		r.Delete("/cpf/{cpf}", h.deleteByCPF)
	})
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req CustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, err)
		return
	}

	c, err := h.service.CreateCustomer(r.Context(), req)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusCreated, c)
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.service.ListCustomers(r.Context())
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, customers)
}

func (h *Handler) findByCPF(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.FindByCPF(r.Context(), chi.URLParam(r, "cpf"))
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, c)
}

func (h *Handler) deleteByCPF(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteByCPF(r.Context(), chi.URLParam(r, "cpf")); err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"message": "customer deleted"})
}

func fail(w http.ResponseWriter, err error) {
	respond(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
