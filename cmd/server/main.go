package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	"github.com/rs/cors"

	"github.com/linemk/supershop/internal/app"
	"github.com/linemk/supershop/internal/app/handlers"
	"github.com/linemk/supershop/internal/config"
	"github.com/linemk/supershop/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/supershop/internal/lib/logger"
	"github.com/linemk/supershop/internal/lib/logger/handlers/urllog"
	"github.com/linemk/supershop/internal/lib/metrics"
)

func main() {
	// загрузка конфигурации
	cfg := config.MustLoad()

	// инициализация логгера, зависит от настройки окружения
	log := logger.SetupLogger(cfg.Env)
	log.Info("starting app", slog.String("env", cfg.Env))

	// подключения к postgres и redis, клиенты провайдеров, сервисы
	application, err := app.NewApp(log, cfg)
	if err != nil {
		log.Error("failed to initialize app", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize app"))
	}
	defer application.Close()

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      newRouter(log, cfg, application.Services),
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.Any("error", err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	stopSign := <-stop
	log.Info("received shutdown signal", slog.String("signal", stopSign.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", slog.Any("error", errors.Wrap(err, "shutdown")))
	}
	log.Info("server gracefully stopped")
}

func newRouter(log *slog.Logger, cfg *config.Config, svc *app.Services) http.Handler {
	tokenTTL := time.Duration(cfg.JWT.TokenTTL) * time.Minute

	router := chi.NewRouter()
	// настройка middleware
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(metrics.Middleware)
	router.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.HTTPServer.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler)

	router.Handle("/metrics", metrics.Handler())

	// вебхук провайдера: любой метод, кроме POST, получает 405 от хэндлера
	router.HandleFunc("/webhooks/", handlers.WebhookHandler(log, svc.Checkout))

	// эндпоинты аутентификации
	router.Post("/api/auth/code", handlers.SendCodeHandler(log, svc.Verification))
	router.Post("/api/auth/register", handlers.RegisterHandler(log, svc.Auth, tokenTTL))
	router.Post("/api/auth/login", handlers.AuthHandler(log, svc.Auth, tokenTTL))

	// каталог доступен без токена на чтение
	router.Get("/api/items", handlers.ListItemsHandler(log, svc.Catalog))
	router.Get("/api/items/{id}", handlers.GetItemHandler(log, svc.Photos))
	router.Get("/api/items/{id}/stock", handlers.ItemStockHandler(log, svc.Stock))
	router.Get("/api/categories", handlers.ListCategoriesHandler(log, svc.Catalog))
	router.Get("/api/categories/{slug}/items", handlers.CategoryItemsHandler(log, svc.Catalog))

	router.Group(func(r chi.Router) {
		r.Use(jwtmiddleware.NewJWTMiddleware())

		r.Get("/api/info", handlers.InfoHandler(log, svc.Info))

		// правка каталога только для сотрудников
		r.Group(func(r chi.Router) {
			r.Use(jwtmiddleware.RequireStaff)

			r.Patch("/api/items/{id}", handlers.UpdateItemHandler(log, svc.Photos))
			r.Delete("/api/items/{id}", handlers.DeleteItemHandler(log, svc.Photos))
			r.Post("/api/items/{id}/photos", handlers.AttachPhotoHandler(log, svc.Photos))
			r.Put("/api/items/{id}/general-photos/{slot}", handlers.SetGeneralPhotoHandler(log, svc.Photos))
			r.Post("/api/items/{id}/converge", handlers.ConvergeItemHandler(log, svc.Photos))
			r.Patch("/api/item-photos/{id}", handlers.UpdateItemPhotoHandler(log, svc.Photos))
			r.Delete("/api/item-photos/{id}", handlers.DeleteItemPhotoHandler(log, svc.Photos))
		})

		r.Get("/api/baskets/", handlers.GetBasketHandler(log, svc.Basket))
		r.Post("/api/baskets/add/", handlers.AddBasketItemHandler(log, svc.Basket))
		r.Patch("/api/baskets/basket-item/{id}/", handlers.UpdateBasketItemHandler(log, svc.Basket))
		r.Post("/api/baskets/delete/", handlers.DeleteBasketItemsHandler(log, svc.Basket))

		r.Get("/api/favourites/", handlers.ListFavouritesHandler(log, svc.Favourites))
		r.Post("/api/favourites/{stock_id}/add_item/", handlers.AddFavouriteHandler(log, svc.Favourites))
		r.Post("/api/favourites/{stock_id}/remove_item/", handlers.RemoveFavouriteHandler(log, svc.Favourites))

		r.Post("/api/payments/", handlers.CreatePaymentHandler(log, svc.Checkout))
		r.Get("/api/payments/{id}", handlers.GetPaymentHandler(log, svc.Checkout))
		r.Post("/api/payments/{id}/sync", handlers.SyncPaymentHandler(log, svc.Checkout))

		r.Get("/api/addresses/", handlers.ListAddressesHandler(log, svc.Addresses))
		r.Post("/api/addresses/", handlers.CreateAddressHandler(log, svc.Addresses))
		r.Get("/api/addresses/{id}/", handlers.GetAddressHandler(log, svc.Addresses))
		r.Put("/api/addresses/{id}/", handlers.UpdateAddressHandler(log, svc.Addresses))
		r.Delete("/api/addresses/{id}/", handlers.DeleteAddressHandler(log, svc.Addresses))
	})

	return router
}
