package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
	goredis "github.com/redis/go-redis/v9"

	"github.com/linemk/supershop/internal/clients/smsru"
	"github.com/linemk/supershop/internal/clients/yookassa"
	"github.com/linemk/supershop/internal/config"
	"github.com/linemk/supershop/internal/lib/blobstore"
	"github.com/linemk/supershop/internal/service"
	"github.com/linemk/supershop/internal/storage"
	coderedis "github.com/linemk/supershop/internal/storage/redis"
)

// Services: собранный слой бизнес-логики для хэндлеров
type Services struct {
	Auth         service.AuthServiceInterface
	Verification service.VerificationService
	Info         service.InfoService
	Catalog      service.CatalogService
	Photos       service.PhotoService
	Stock        service.StockLedger
	Basket       service.BasketService
	Favourites   service.FavouritesService
	Checkout     service.CheckoutService
	Addresses    service.AddressService
}

type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	DB       *sql.DB
	Redis    *goredis.Client
	Services *Services
}

// NewApp создаёт новый экземпляр App: подключения к postgres и redis, клиенты провайдеров и сервисы
func NewApp(log *slog.Logger, cfg *config.Config) (*App, error) {
	const op = "app.NewApp"

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("%s: failed to open database: %w", op, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: failed to ping database: %w", op, err)
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		db.Close()
		rdb.Close()
		return nil, fmt.Errorf("%s: failed to ping redis: %w", op, err)
	}

	blobs, err := blobstore.NewFS(cfg.Storage.MediaRoot)
	if err != nil {
		db.Close()
		rdb.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	payments := yookassa.New(log, yookassa.Config{
		BaseURL:   cfg.YooKassa.BaseURL,
		ShopID:    cfg.YooKassa.ShopID,
		SecretKey: cfg.YooKassa.SecretKey,
		ReturnURL: cfg.YooKassa.ReturnURL,
		Currency:  cfg.YooKassa.Currency,
		Timeout:   cfg.YooKassa.Timeout,
	})
	sms := smsru.New(log, cfg.SMS.BaseURL, cfg.SMS.APIID, cfg.SMS.Timeout)

	app := &App{
		Config: cfg,
		Logger: log,
		DB:     db,
		Redis:  rdb,
	}
	app.Services = buildServices(log, cfg, db, rdb, blobs, payments, sms)

	return app, nil
}

func buildServices(
	log *slog.Logger,
	cfg *config.Config,
	db *sql.DB,
	rdb goredis.Cmdable,
	blobs service.BlobStore,
	provider service.PaymentProvider,
	sms service.SMSSender,
) *Services {
	// реализация слоев по работе с БД по каждому направлению
	userRepo := storage.NewUserRepository(db)
	itemRepo := storage.NewItemRepository(db)
	catalogRepo := storage.NewCatalogRepository(db)
	photoRepo := storage.NewPhotoRepository(db)
	stockRepo := storage.NewStockRepository(db)
	basketRepo := storage.NewBasketRepository(db)
	favouritesRepo := storage.NewFavouritesRepository(db)
	paymentRepo := storage.NewPaymentRepository(db)
	orderRepo := storage.NewOrderRepository(db)
	addressRepo := storage.NewAddressRepository(db)

	codes := coderedis.NewCodeStore(rdb, cfg.SMS.CodeTTL)
	verifier := service.NewVerificationService(log, codes, sms)
	ledger := service.NewStockLedger(log, stockRepo)

	return &Services{
		Auth:         service.NewAuthService(log, userRepo, verifier, time.Duration(cfg.JWT.TokenTTL)*time.Minute),
		Verification: verifier,
		Info:         service.NewInfoService(log, userRepo, orderRepo),
		Catalog:      service.NewCatalogService(log, catalogRepo),
		Photos:       service.NewPhotoService(log, itemRepo, photoRepo, blobs),
		Stock:        ledger,
		Basket:       service.NewBasketService(log, basketRepo, stockRepo),
		Favourites:   service.NewFavouritesService(log, favouritesRepo, stockRepo),
		Checkout:     service.NewCheckoutService(log, db, basketRepo, paymentRepo, orderRepo, itemRepo, ledger, provider),
		Addresses:    service.NewAddressService(log, db, addressRepo),
	}
}

// Close закрывает подключения
func (a *App) Close() error {
	rerr := a.Redis.Close()
	if err := a.DB.Close(); err != nil {
		return err
	}
	return rerr
}
