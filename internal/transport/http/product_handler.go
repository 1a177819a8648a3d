package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/sergeybelanov/shop/internal/domain"
	"github.com/sergeybelanov/shop/internal/service/catalog"
)

// ProductHandler обслуживает REST-операции каталога.
type ProductHandler struct {
	catalog *catalog.Service
	logger  *log.Entry
}

// NewProductHandler создаёт хендлер каталога.
func NewProductHandler(svc *catalog.Service, logger *log.Entry) *ProductHandler {
	if logger == nil {
		logger = log.New().WithField("component", "product-handler")
	}
	return &ProductHandler{catalog: svc, logger: logger}
}

// CreateProductRequest — тело POST /api/v1/products.
type CreateProductRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       MoneyDTO `json:"price"`
	SKU         string   `json:"sku"`
}

// UpdateProductRequest — тело PUT /api/v1/products/{id}.
type UpdateProductRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// UpdatePriceRequest — тело PUT /api/v1/products/{id}/price.
type UpdatePriceRequest struct {
	Price MoneyDTO `json:"price"`
}

// POST /api/v1/products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if !decodeBody(w, r, &req) {
		return
	}

	price, err := domain.NewMoneyFromString(req.Price.Amount, req.Price.Currency)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	product, err := h.catalog.CreateProduct(req.Name, req.Description, price, req.SKU)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, productResponse(product))
}

// GET /api/v1/products?status=
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	status := domain.ProductStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		respondError(w, http.StatusBadRequest, "invalid_status", "unknown product status")
		return
	}

	products, err := h.catalog.ListProducts(status)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, productResponse(p))
	}
	respondJSON(w, http.StatusOK, out)
}

// GET /api/v1/products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.GetProduct(productID(r))
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, productResponse(product))
}

// PUT /api/v1/products/{id}
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateProductRequest
	if !decodeBody(w, r, &req) {
		return
	}

	product, err := h.catalog.UpdateInfo(productID(r), req.Name, req.Description)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, productResponse(product))
}

// PUT /api/v1/products/{id}/price
func (h *ProductHandler) UpdatePrice(w http.ResponseWriter, r *http.Request) {
	var req UpdatePriceRequest
	if !decodeBody(w, r, &req) {
		return
	}

	price, err := domain.NewMoneyFromString(req.Price.Amount, req.Price.Currency)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	product, err := h.catalog.UpdatePrice(productID(r), price)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, productResponse(product))
}

// POST /api/v1/products/{id}/activate
func (h *ProductHandler) Activate(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.Activate(productID(r))
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, productResponse(product))
}

// POST /api/v1/products/{id}/deactivate
func (h *ProductHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.Deactivate(productID(r))
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, productResponse(product))
}

// DELETE /api/v1/products/{id}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteProduct(productID(r)); err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func productID(r *http.Request) domain.ProductID {
	return domain.ProductID(chi.URLParam(r, "id"))
}
