package main

import (
	"net/http"

	"tienda-be/internal/category"
	"tienda-be/internal/client"
	"tienda-be/internal/config"
	"tienda-be/internal/db"
	"tienda-be/internal/logger"
	"tienda-be/internal/order"
	"tienda-be/internal/product"
	"tienda-be/internal/transport/rest"
	"tienda-be/internal/user"

	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	identityRepo := user.NewRepository(database)
	identitySvc := user.NewService(identityRepo)

	categoryRepo := category.NewRepository(database)
	categorySvc := category.NewService(categoryRepo)

	productRepo := product.NewRepository(database)
	productSvc := product.NewService(productRepo, categoryRepo)

	clientRepo := client.NewRepository(database)
	clientSvc := client.NewService(clientRepo, identitySvc)

	orderRepo := order.NewRepository(database)
	orderSvc := order.NewService(orderRepo, clientSvc)

	router := rest.NewRouter(rest.Services{
		Identity:   identitySvc,
		Categories: categorySvc,
		Products:   productSvc,
		Clients:    clientSvc,
		Orders:     orderSvc,
	})

	logger.L().Info("server listening", zap.String("port", cfg.AppPort))
	if err := http.ListenAndServe(":"+cfg.AppPort, router); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}
