package rest

import (
	"net/http"

	"tienda-be/internal/client"
	"tienda-be/internal/order"
	"tienda-be/internal/utils"
)

type OrderHandler struct {
	svc     order.Service
	clients client.Service
}

func NewOrderHandler(svc order.Service, clients client.Service) *OrderHandler {
	return &OrderHandler{svc: svc, clients: clients}
}

type createOrderRequest struct {
	ClientID int64                `json:"clientId"`
	Items    []order.NewOrderItem `json:"lines"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	// Non-admins may only place orders against their own client record.
	if !utils.IsAdmin(r.Context()) {
		sub, ok := utils.GetSubjectFromContext(r.Context())
		if !ok || !h.clients.IsOwner(r.Context(), req.ClientID, sub) {
			writeJSON(w, http.StatusForbidden, errorResponse{Error: "forbidden"})
			return
		}
	}

	o, err := h.svc.Create(r.Context(), req.ClientID, req.Items)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, order.ToResponse(o))
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order.ToResponses(orders))
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if !h.canAccess(r, id) {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "forbidden"})
		return
	}

	o, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order.ToResponse(o))
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	o, err := h.svc.UpdateStatus(r.Context(), id, order.Status(req.Status))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order.ToResponse(o))
}

func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if !h.canAccess(r, id) {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "forbidden"})
		return
	}

	if err := h.svc.Cancel(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	o, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order.ToResponse(o))
}

// canAccess allows admins and the order's owner. Ownership fails closed, so
// an unknown order yields 403 here rather than leaking existence.
func (h *OrderHandler) canAccess(r *http.Request, orderID int64) bool {
	if utils.IsAdmin(r.Context()) {
		return true
	}
	sub, ok := utils.GetSubjectFromContext(r.Context())
	return ok && h.svc.IsOwner(r.Context(), orderID, sub)
}
