package rest

import (
	"net/http"

	"tienda-be/internal/client"
	"tienda-be/internal/order"
	"tienda-be/internal/utils"
)

type ClientHandler struct {
	svc    client.Service
	orders order.Service
}

func NewClientHandler(svc client.Service, orders order.Service) *ClientHandler {
	return &ClientHandler{svc: svc, orders: orders}
}

// clientDetail embeds the client record with its order history summaries.
type clientDetail struct {
	client.Client
	Orders []order.Summary `json:"orders"`
}

// canAccess allows admins and the owning subject; everyone else is denied
// without revealing whether the client exists.
func (h *ClientHandler) canAccess(r *http.Request, clientID int64) bool {
	if utils.IsAdmin(r.Context()) {
		return true
	}
	sub, ok := utils.GetSubjectFromContext(r.Context())
	return ok && h.svc.IsOwner(r.Context(), clientID, sub)
}

func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	clients, err := h.svc.GetAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, clients)
}

func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if !h.canAccess(r, id) {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "forbidden"})
		return
	}

	c, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	history, err := h.orders.ListByClient(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	detail := clientDetail{Client: *c, Orders: make([]order.Summary, 0, len(history))}
	for _, o := range history {
		detail.Orders = append(detail.Orders, order.ToSummary(o))
	}
	writeJSON(w, http.StatusOK, detail)
}

// Me resolves the authenticated subject to its client record.
func (h *ClientHandler) Me(w http.ResponseWriter, r *http.Request) {
	sub, ok := utils.GetSubjectFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return
	}

	c, err := h.svc.GetBySubject(r.Context(), sub)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if !h.canAccess(r, id) {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "forbidden"})
		return
	}

	var input client.ClientInput
	if err := decodeJSON(r, &input); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	c, err := h.svc.Update(r.Context(), id, input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type resetPasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

func (h *ClientHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if !h.canAccess(r, id) {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "forbidden"})
		return
	}

	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil || req.NewPassword == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if err := h.svc.ResetPassword(r.Context(), id, req.NewPassword); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Orders lists the client's order history as summaries.
func (h *ClientHandler) Orders(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if !h.canAccess(r, id) {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "forbidden"})
		return
	}

	history, err := h.orders.ListByClient(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	summaries := make([]order.Summary, 0, len(history))
	for _, o := range history {
		summaries = append(summaries, order.ToSummary(o))
	}
	writeJSON(w, http.StatusOK, summaries)
}
