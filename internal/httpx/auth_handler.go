package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"smoothie-be/internal/user"
	"smoothie-be/internal/utils"
)

type credentialsReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResp struct {
	Token string `json:"token"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Email == "" || len(req.Password) < 8 {
		utils.WriteJSONError(w, "email and a password of at least 8 characters are required", http.StatusBadRequest)
		return
	}

	token, u, err := h.Users.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrEmailExists) {
			utils.WriteJSONError(w, err.Error(), http.StatusConflict)
			return
		}
		utils.WriteJSONError(w, "registration failed", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, authResp{Token: token, Email: u.Email, Role: string(u.Role)})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid json", http.StatusBadRequest)
		return
	}

	token, u, err := h.Users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		utils.WriteJSONError(w, "invalid email or password", http.StatusUnauthorized)
		return
	}

	utils.WriteJSON(w, http.StatusOK, authResp{Token: token, Email: u.Email, Role: string(u.Role)})
}
