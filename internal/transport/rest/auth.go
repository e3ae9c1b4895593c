package rest

import (
	"net/http"

	"tienda-be/internal/client"
	"tienda-be/internal/user"
)

type AuthHandler struct {
	identity user.Service
	clients  client.Service
}

func NewAuthHandler(identity user.Service, clients client.Service) *AuthHandler {
	return &AuthHandler{identity: identity, clients: clients}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	token, acct, err := h.identity.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token: token,
		Email: acct.Email,
		Role:  string(acct.Role),
	})
}

// Register provisions an identity account and the client record in one call.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input client.ClientInput
	if err := decodeJSON(r, &input); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	c, err := h.clients.Create(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, c)
}
