package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"smoothie-be/internal/coupon"
	"smoothie-be/internal/logger"
	"smoothie-be/internal/order"
	"smoothie-be/internal/slip"
	"smoothie-be/internal/user"
	"smoothie-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// adminListOrders returns the order list and kicks off the automatic
// verification sweep. The sweep runs in the background; its results reach
// the dashboard over the websocket stream.
func (h *Handler) adminListOrders(w http.ResponseWriter, r *http.Request) {
	filter := order.ListFilter{
		DeliveryStatus: order.DeliveryStatus(r.URL.Query().Get("delivery_status")),
		Unverified:     r.URL.Query().Get("unverified") == "true",
	}

	orders, err := h.Orders.List(r.Context(), filter)
	if err != nil {
		utils.WriteJSONError(w, "failed to list orders", http.StatusInternalServerError)
		return
	}

	sweepCtx := context.WithoutCancel(r.Context())
	go func() {
		if err := h.Verifier.VerifyPending(sweepCtx, h.Orders); err != nil {
			logger.FromCtx(sweepCtx).Warn("verification sweep failed", zap.Error(err))
		}
	}()

	utils.WriteJSON(w, http.StatusOK, orderViews(orders))
}

type verifySlipResp struct {
	State   string       `json:"state"`
	Outcome string       `json:"outcome,omitempty"`
	Result  *slip.Result `json:"result,omitempty"`
}

func (h *Handler) verifySlip(w http.ResponseWriter, r *http.Request) {
	o, err := h.Orders.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			utils.WriteJSONError(w, "order not found", http.StatusNotFound)
			return
		}
		utils.WriteJSONError(w, "failed to load order", http.StatusInternalServerError)
		return
	}
	if o.SlipURL == "" {
		utils.WriteJSONError(w, "order has no slip", http.StatusBadRequest)
		return
	}

	res, state, err := h.Verifier.Verify(r.Context(), slip.VerifyRequest{
		OrderID:       o.ID,
		SlipURL:       o.SlipURL,
		ExpectedTotal: o.Total,
		ExpectedName:  o.CustomerName,
	}, slip.TriggerManual)
	if err != nil {
		if errors.Is(err, slip.ErrAlreadyChecking) {
			utils.WriteJSONError(w, "verification already in progress", http.StatusConflict)
			return
		}
		utils.WriteJSONError(w, "verification failed", http.StatusInternalServerError)
		return
	}

	resp := verifySlipResp{State: string(state), Result: res}
	if res != nil {
		resp.Outcome = string(res.Outcome)
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

type deliveryStatusReq struct {
	Status string `json:"status"`
}

func (h *Handler) setDeliveryStatus(w http.ResponseWriter, r *http.Request) {
	var req deliveryStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid json", http.StatusBadRequest)
		return
	}

	err := h.Orders.SetDeliveryStatus(r.Context(), chi.URLParam(r, "id"), order.DeliveryStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, order.ErrNotFound):
			utils.WriteJSONError(w, "order not found", http.StatusNotFound)
		case errors.Is(err, order.ErrInvalidTransition):
			utils.WriteJSONError(w, err.Error(), http.StatusConflict)
		default:
			utils.WriteJSONError(w, "failed to update delivery status", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type overrideReq struct {
	Verified bool `json:"verified"`
}

func (h *Handler) overrideVerification(w http.ResponseWriter, r *http.Request) {
	var req overrideReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid json", http.StatusBadRequest)
		return
	}

	if err := h.Orders.OverrideVerification(r.Context(), chi.URLParam(r, "id"), req.Verified); err != nil {
		if errors.Is(err, order.ErrNotFound) {
			utils.WriteJSONError(w, "order not found", http.StatusNotFound)
			return
		}
		utils.WriteJSONError(w, "failed to override verification", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listCoupons(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.Coupons.List(r.Context())
	if err != nil {
		utils.WriteJSONError(w, "failed to list coupons", http.StatusInternalServerError)
		return
	}
	if coupons == nil {
		coupons = []*coupon.Coupon{}
	}
	utils.WriteJSON(w, http.StatusOK, coupons)
}

type createCouponReq struct {
	Code            string `json:"code"`
	DiscountPercent int    `json:"discount_percent"`
}

func (h *Handler) createCoupon(w http.ResponseWriter, r *http.Request) {
	var req createCouponReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Code == "" || req.DiscountPercent <= 0 || req.DiscountPercent > 100 {
		utils.WriteJSONError(w, "code and a discount between 1 and 100 are required", http.StatusBadRequest)
		return
	}

	c := &coupon.Coupon{
		ID:              uuid.NewString(),
		Code:            req.Code,
		DiscountPercent: req.DiscountPercent,
		Active:          true,
	}
	if err := h.Coupons.Create(r.Context(), c); err != nil {
		utils.WriteJSONError(w, "failed to create coupon", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, c)
}

type couponActiveReq struct {
	Active bool `json:"active"`
}

func (h *Handler) setCouponActive(w http.ResponseWriter, r *http.Request) {
	var req couponActiveReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid json", http.StatusBadRequest)
		return
	}

	if err := h.Coupons.SetActive(r.Context(), chi.URLParam(r, "id"), req.Active); err != nil {
		if errors.Is(err, coupon.ErrNotFound) {
			utils.WriteJSONError(w, "coupon not found", http.StatusNotFound)
			return
		}
		utils.WriteJSONError(w, "failed to update coupon", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, h.Stats.Snapshot())
}

// serveWS authenticates the dashboard stream with a token query parameter,
// since browsers cannot set headers on websocket upgrades.
func (h *Handler) serveWS(w http.ResponseWriter, r *http.Request) {
	claims, err := user.ParseJWT(r.URL.Query().Get("token"))
	if err != nil || claims.Role != string(user.RoleAdmin) {
		utils.WriteJSONError(w, "admin access required", http.StatusUnauthorized)
		return
	}

	h.Hub.ServeHTTP(w, r)
}
