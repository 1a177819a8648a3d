package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/sergeybelanov/shop/internal/domain"
	"github.com/sergeybelanov/shop/internal/service/order"
)

// OrderHandler обслуживает REST-операции заказов: жизненный цикл корзины,
// submit и последующие переходы статуса.
type OrderHandler struct {
	orders *order.Service
	logger *log.Entry
}

// NewOrderHandler создаёт хендлер заказов.
func NewOrderHandler(svc *order.Service, logger *log.Entry) *OrderHandler {
	if logger == nil {
		logger = log.New().WithField("component", "order-handler")
	}
	return &OrderHandler{orders: svc, logger: logger}
}

// OrderItemRequest — позиция в запросе на создание заказа.
type OrderItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// CreateOrderRequest — тело POST /api/v1/orders.
type CreateOrderRequest struct {
	CustomerID      string             `json:"customer_id"`
	ShippingAddress AddressDTO         `json:"shipping_address"`
	Items           []OrderItemRequest `json:"items"`
}

// AddItemRequest — тело POST /api/v1/orders/{id}/items.
type AddItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// UpdateQuantityRequest — тело PUT /api/v1/orders/{id}/items/{productId}.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CustomerInfoRequest — тело PUT /api/v1/orders/{id}/customer-info.
type CustomerInfoRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// CancelOrderRequest — тело POST /api/v1/orders/{id}/cancel.
type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

// UpdateStatusRequest — тело PUT /api/v1/orders/{id}/status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// POST /api/v1/orders
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	address, err := domain.NewAddress(
		req.ShippingAddress.Street,
		req.ShippingAddress.City,
		req.ShippingAddress.State,
		req.ShippingAddress.ZipCode,
		req.ShippingAddress.Country,
	)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	specs := make([]order.ItemSpec, 0, len(req.Items))
	for _, item := range req.Items {
		specs = append(specs, order.ItemSpec{
			ProductID: domain.ProductID(item.ProductID),
			Quantity:  item.Quantity,
		})
	}

	created, err := h.orders.CreateOrder(domain.CustomerID(req.CustomerID), address, specs)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, orderResponse(created))
}

// GET /api/v1/orders?customerId=&status=
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	if customerID := r.URL.Query().Get("customerId"); customerID != "" {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		orders, err := h.orders.ListCustomerOrders(domain.CustomerID(customerID), limit)
		if err != nil {
			respondDomainError(w, h.logger, err)
			return
		}
		respondJSON(w, http.StatusOK, orderListResponse(orders))
		return
	}

	status := domain.OrderStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		respondError(w, http.StatusBadRequest, "invalid_status", "unknown order status")
		return
	}

	orders, err := h.orders.ListOrders(status)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, orderListResponse(orders))
}

// GET /api/v1/orders/{id}
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	found, err := h.orders.GetOrder(orderID(r))
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, orderResponse(found))
}

// POST /api/v1/orders/{id}/items
func (h *OrderHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if !decodeBody(w, r, &req) {
		return
	}

	updated, err := h.orders.AddItem(orderID(r), domain.ProductID(req.ProductID), req.Quantity)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, orderResponse(updated))
}

// DELETE /api/v1/orders/{id}/items/{productId}
func (h *OrderHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID := domain.ProductID(chi.URLParam(r, "productId"))
	updated, err := h.orders.RemoveItem(orderID(r), productID)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, orderResponse(updated))
}

// PUT /api/v1/orders/{id}/items/{productId}
func (h *OrderHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequest
	if !decodeBody(w, r, &req) {
		return
	}

	productID := domain.ProductID(chi.URLParam(r, "productId"))
	updated, err := h.orders.UpdateItemQuantity(orderID(r), productID, req.Quantity)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, orderResponse(updated))
}

// PUT /api/v1/orders/{id}/customer-info
func (h *OrderHandler) SetCustomerInfo(w http.ResponseWriter, r *http.Request) {
	var req CustomerInfoRequest
	if !decodeBody(w, r, &req) {
		return
	}

	info, err := domain.NewCustomerInfo(req.Name, req.Email, req.Phone)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	updated, err := h.orders.SetCustomerInfo(orderID(r), info)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, orderResponse(updated))
}

// POST /api/v1/orders/{id}/submit
func (h *OrderHandler) Submit(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.orders.Submit)
}

// POST /api/v1/orders/{id}/confirm
func (h *OrderHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.orders.Confirm)
}

// POST /api/v1/orders/{id}/start-processing
func (h *OrderHandler) StartProcessing(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.orders.StartProcessing)
}

// POST /api/v1/orders/{id}/ship
func (h *OrderHandler) Ship(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.orders.Ship)
}

// POST /api/v1/orders/{id}/deliver
func (h *OrderHandler) Deliver(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.orders.Deliver)
}

// POST /api/v1/orders/{id}/cancel
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req CancelOrderRequest
	if r.ContentLength > 0 && !decodeBody(w, r, &req) {
		return
	}

	updated, err := h.orders.Cancel(orderID(r), req.Reason)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, orderResponse(updated))
}

// PUT /api/v1/orders/{id}/status
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}

	updated, err := h.orders.UpdateStatus(orderID(r), domain.OrderStatus(req.Status))
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, orderResponse(updated))
}

// DELETE /api/v1/orders/{id}
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.DeleteOrder(orderID(r)); err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// GET /api/v1/orders/{id}/history
func (h *OrderHandler) StatusHistory(w http.ResponseWriter, r *http.Request) {
	changes, err := h.orders.StatusHistory(orderID(r))
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, statusHistoryResponse(changes))
}

// GET /api/v1/orders/{id}/shipping-quote
func (h *OrderHandler) ShippingQuote(w http.ResponseWriter, r *http.Request) {
	quote, err := h.orders.ShippingQuote(orderID(r))
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]MoneyDTO{"shipping": moneyDTO(quote)})
}

func (h *OrderHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	op func(domain.OrderID) (domain.Order, error),
) {
	updated, err := op(orderID(r))
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, orderResponse(updated))
}

func orderListResponse(orders []domain.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, orderResponse(o))
	}
	return out
}

func orderID(r *http.Request) domain.OrderID {
	return domain.OrderID(chi.URLParam(r, "id"))
}
