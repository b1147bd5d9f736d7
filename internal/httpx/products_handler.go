package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"smoothie-be/internal/product"
	"smoothie-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	opts := product.ListOptions{
		Category:   r.URL.Query().Get("category"),
		OnlyActive: true,
	}

	products, err := h.Products.List(r.Context(), opts)
	if err != nil {
		utils.WriteJSONError(w, "failed to list products", http.StatusInternalServerError)
		return
	}
	if products == nil {
		products = []*product.Product{}
	}

	utils.WriteJSON(w, http.StatusOK, products)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.Products.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			utils.WriteJSONError(w, "product not found", http.StatusNotFound)
			return
		}
		utils.WriteJSONError(w, "failed to load product", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, p)
}

type createProductReq struct {
	Name     string  `json:"name"`
	Price    string  `json:"price"`
	Quantity int     `json:"quantity"`
	Category string  `json:"category"`
	Active   bool    `json:"active"`
	Featured bool    `json:"featured"`
	ImageURL *string `json:"image_url"`
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		utils.WriteJSONError(w, "name is required", http.StatusBadRequest)
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		utils.WriteJSONError(w, "invalid price", http.StatusBadRequest)
		return
	}

	p := &product.Product{
		ID:       uuid.NewString(),
		Name:     req.Name,
		Price:    price,
		Quantity: req.Quantity,
		Category: req.Category,
		Active:   req.Active,
		Featured: req.Featured,
		ImageURL: req.ImageURL,
	}
	if err := h.Products.Create(r.Context(), p); err != nil {
		utils.WriteJSONError(w, "failed to create product", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, p)
}

type updateProductReq struct {
	Name     *string `json:"name"`
	Price    *string `json:"price"`
	Quantity *int    `json:"quantity"`
	Category *string `json:"category"`
	Active   *bool   `json:"active"`
	Featured *bool   `json:"featured"`
	ImageURL *string `json:"image_url"`
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var req updateProductReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid json", http.StatusBadRequest)
		return
	}

	input := product.UpdateInput{
		Name:     req.Name,
		Quantity: req.Quantity,
		Category: req.Category,
		Active:   req.Active,
		Featured: req.Featured,
		ImageURL: req.ImageURL,
	}
	if req.Price != nil {
		price, err := decimal.NewFromString(*req.Price)
		if err != nil || price.IsNegative() {
			utils.WriteJSONError(w, "invalid price", http.StatusBadRequest)
			return
		}
		input.Price = &price
	}

	if err := h.Products.Update(r.Context(), chi.URLParam(r, "id"), input); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			utils.WriteJSONError(w, "product not found", http.StatusNotFound)
			return
		}
		utils.WriteJSONError(w, "failed to update product", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
