package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"smoothie-be/internal/cart"
	"smoothie-be/internal/coupon"
	"smoothie-be/internal/order"
	"smoothie-be/internal/utils"

	"github.com/go-chi/chi/v5"
)

type checkoutReq struct {
	CustomerName  string `json:"customer_name"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	PaymentMethod string `json:"payment_method"`
	SlipURL       string `json:"slip_url"`
	CouponCode    string `json:"coupon_code"`
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if sid == "" {
		utils.WriteJSONError(w, "X-Session-ID header is required", http.StatusBadRequest)
		return
	}

	var req checkoutReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid json", http.StatusBadRequest)
		return
	}

	o, err := h.Orders.Checkout(r.Context(), order.CheckoutInput{
		SessionID:     sid,
		CustomerName:  req.CustomerName,
		Phone:         req.Phone,
		Address:       req.Address,
		PaymentMethod: order.PaymentMethod(req.PaymentMethod),
		SlipURL:       req.SlipURL,
		CouponCode:    req.CouponCode,
	})
	if err != nil {
		switch {
		case errors.Is(err, order.ErrCustomerRequired),
			errors.Is(err, order.ErrSlipRequired),
			errors.Is(err, cart.ErrEmptyCart):
			utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, coupon.ErrNotFound):
			utils.WriteJSONError(w, "invalid coupon code", http.StatusBadRequest)
		default:
			utils.WriteJSONError(w, "checkout failed", http.StatusInternalServerError)
		}
		return
	}

	utils.WriteJSON(w, http.StatusCreated, orderView(o))
}

func (h *Handler) orderHistory(w http.ResponseWriter, r *http.Request) {
	phone := r.URL.Query().Get("phone")
	if phone == "" {
		utils.WriteJSONError(w, "phone query parameter is required", http.StatusBadRequest)
		return
	}

	orders, err := h.Orders.History(r.Context(), phone)
	if err != nil {
		utils.WriteJSONError(w, "failed to load orders", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, orderViews(orders))
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.Orders.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			utils.WriteJSONError(w, "order not found", http.StatusNotFound)
			return
		}
		utils.WriteJSONError(w, "failed to load order", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, orderView(o))
}

// orderItemView is the wire shape for one line of an order.
type orderItemView struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
	Subtotal  string `json:"subtotal"`
}

type orderViewBody struct {
	ID              string          `json:"id"`
	OrderNumber     string          `json:"order_number"`
	CustomerName    string          `json:"customer_name"`
	Phone           string          `json:"phone"`
	Address         string          `json:"address,omitempty"`
	PaymentMethod   string          `json:"payment_method"`
	SlipURL         string          `json:"slip_url,omitempty"`
	PaymentVerified *bool           `json:"payment_verified"`
	DeliveryStatus  string          `json:"delivery_status"`
	Subtotal        string          `json:"subtotal"`
	CouponCode      string          `json:"coupon_code,omitempty"`
	DiscountPercent int             `json:"discount_percent"`
	Total           string          `json:"total"`
	CreatedAt       string          `json:"created_at"`
	Items           []orderItemView `json:"items"`
}

func orderView(o *order.Order) orderViewBody {
	items := make([]orderItemView, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemView{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price.StringFixed(2),
			Quantity:  it.Quantity,
			Subtotal:  it.Subtotal.StringFixed(2),
		})
	}

	return orderViewBody{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerName:    o.CustomerName,
		Phone:           o.Phone,
		Address:         o.Address,
		PaymentMethod:   string(o.PaymentMethod),
		SlipURL:         o.SlipURL,
		PaymentVerified: o.PaymentVerified,
		DeliveryStatus:  string(o.DeliveryStatus),
		Subtotal:        o.Subtotal.StringFixed(2),
		CouponCode:      o.CouponCode,
		DiscountPercent: o.DiscountPercent,
		Total:           o.Total.StringFixed(2),
		CreatedAt:       o.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		Items:           items,
	}
}

func orderViews(orders []*order.Order) []orderViewBody {
	views := make([]orderViewBody, 0, len(orders))
	for _, o := range orders {
		views = append(views, orderView(o))
	}
	return views
}
