package rest

import (
	"net/http"

	"tienda-be/internal/category"
	"tienda-be/internal/client"
	"tienda-be/internal/logger"
	"tienda-be/internal/middleware"
	"tienda-be/internal/order"
	"tienda-be/internal/product"
	"tienda-be/internal/user"

	"github.com/gorilla/mux"
)

// Services bundles the collaborators the router wires into handlers.
type Services struct {
	Identity   user.Service
	Categories category.Service
	Products   product.Service
	Clients    client.Service
	Orders     order.Service
}

func NewRouter(s Services) http.Handler {
	authH := NewAuthHandler(s.Identity, s.Clients)
	catH := NewCategoryHandler(s.Categories)
	prodH := NewProductHandler(s.Products)
	clientH := NewClientHandler(s.Clients, s.Orders)
	orderH := NewOrderHandler(s.Orders, s.Clients)

	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	r.HandleFunc("/auth/login", authH.Login).Methods("POST")
	r.HandleFunc("/auth/register", authH.Register).Methods("POST")

	// Catalog reads are public, mutations are admin only.
	r.HandleFunc("/categories", catH.List).Methods("GET")
	r.HandleFunc("/categories/{id:[0-9]+}", catH.Get).Methods("GET")
	r.Handle("/categories", middleware.RequireAdmin(http.HandlerFunc(catH.Create))).Methods("POST")
	r.Handle("/categories/{id:[0-9]+}", middleware.RequireAdmin(http.HandlerFunc(catH.Update))).Methods("PUT")
	r.Handle("/categories/{id:[0-9]+}", middleware.RequireAdmin(http.HandlerFunc(catH.Delete))).Methods("DELETE")

	r.HandleFunc("/products", prodH.List).Methods("GET")
	r.HandleFunc("/products/{id:[0-9]+}", prodH.Get).Methods("GET")
	r.Handle("/products", middleware.RequireAdmin(http.HandlerFunc(prodH.Create))).Methods("POST")
	r.Handle("/products/{id:[0-9]+}", middleware.RequireAdmin(http.HandlerFunc(prodH.Update))).Methods("PUT")
	r.Handle("/products/{id:[0-9]+}", middleware.RequireAdmin(http.HandlerFunc(prodH.Delete))).Methods("DELETE")

	r.Handle("/clients", middleware.RequireAdmin(http.HandlerFunc(clientH.List))).Methods("GET")
	r.Handle("/clients/me", middleware.RequireAuth(http.HandlerFunc(clientH.Me))).Methods("GET")
	r.Handle("/clients/{id:[0-9]+}", middleware.RequireAuth(http.HandlerFunc(clientH.Get))).Methods("GET")
	r.Handle("/clients/{id:[0-9]+}", middleware.RequireAuth(http.HandlerFunc(clientH.Update))).Methods("PUT")
	r.Handle("/clients/{id:[0-9]+}", middleware.RequireAdmin(http.HandlerFunc(clientH.Delete))).Methods("DELETE")
	r.Handle("/clients/{id:[0-9]+}/reset-password", middleware.RequireAuth(http.HandlerFunc(clientH.ResetPassword))).Methods("POST")
	r.Handle("/clients/{id:[0-9]+}/orders", middleware.RequireAuth(http.HandlerFunc(clientH.Orders))).Methods("GET")

	r.Handle("/orders", middleware.RequireAuth(http.HandlerFunc(orderH.Create))).Methods("POST")
	r.Handle("/orders", middleware.RequireAdmin(http.HandlerFunc(orderH.List))).Methods("GET")
	r.Handle("/orders/{id:[0-9]+}", middleware.RequireAuth(http.HandlerFunc(orderH.Get))).Methods("GET")
	r.Handle("/orders/{id:[0-9]+}/status", middleware.RequireAdmin(http.HandlerFunc(orderH.UpdateStatus))).Methods("PATCH")
	r.Handle("/orders/{id:[0-9]+}/cancel", middleware.RequireAuth(http.HandlerFunc(orderH.Cancel))).Methods("POST")

	// Outermost first: CORS answers preflight before anything else runs, the
	// request id must exist before the access log and handlers use it.
	var handler http.Handler = r
	handler = logger.LoggingMiddleware(handler)
	handler = middleware.RateLimitMiddleware(handler)
	handler = middleware.AuthMiddleware(handler)
	handler = logger.RequestIDMiddleware(handler)
	handler = middleware.CORS(handler)
	return handler
}
