package main

import (
	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	infraredis "app/internal/infra/redis"
	infraRepo "app/internal/infra/repository"
	"app/internal/infra/stripegw"
	"app/internal/logging"
	"app/internal/payment"
	repo "app/internal/repository"
	"app/internal/server"
	"app/internal/usecase"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
)

func main() {
	//.envはローカル開発用。無ければ環境変数だけで動く
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logging.Init("api", "logs/api.log")

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		panic(err)
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.Product{},
		&model.Cart{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.Payment{},
		&model.Shipment{},
	); err != nil {
		panic(err)
	}

	//注文ごとに成功済み決済は1件まで。アプリ側ガードのDBバックストップ
	if err := gormDB.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_payments_success_order
		 ON payments (order_id) WHERE status = 'SUCCESS'`,
	).Error; err != nil {
		panic(err)
	}

	//Redis（トークン失効リスト）。未設定ならnilのまま進める
	var blacklist repo.TokenBlacklist
	if cfg.RedisAddr != "" {
		rdb := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		blacklist = infraredis.NewTokenBlacklist(rdb)
		log.Info("token blacklist enabled", "addr", cfg.RedisAddr)
	} else {
		log.Warn("REDIS_ADDR not set - logout does not revoke tokens")
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	categoryRepo := infraRepo.NewCategoryGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	cartItemRepo := infraRepo.NewCartItemGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	shipmentRepo := infraRepo.NewShipmentGormRepository(gormDB)
	inventoryRepo := infraRepo.NewInventoryGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//決済プロバイダ。未知のmethodはモックに落ちる
	providers := payment.NewRegistry(payment.NewMockProvider())
	providers.Register("CARD", stripegw.NewProvider(cfg.Currency))

	//Stripe Checkoutゲートウェイ
	gateway := stripegw.NewGateway(cfg)
	if cfg.StripeWebhookSecret == "" {
		log.Warn("STRIPE_WEBHOOK_SECRET not set - webhook events are ignored")
	}

	//Usecase生成
	authUC := usecase.NewAuthUsecase(userRepo, blacklist, cfg.JWTSecret)
	productUC := usecase.NewProductUsecase(productRepo, inventoryRepo, categoryRepo)
	categoryUC := usecase.NewCategoryUsecase(categoryRepo)
	cartUC := usecase.NewCartUsecase(cartRepo, cartItemRepo, productRepo)
	checkoutUC := usecase.NewCheckoutUsecase(txManager, cfg.EnforceStock)
	orderUC := usecase.NewOrderUsecase(txManager)
	paymentUC := usecase.NewPaymentUsecase(txManager, providers)
	shipmentUC := usecase.NewShipmentUsecase(shipmentRepo, orderRepo)
	stripeUC := usecase.NewStripeUsecase(
		txManager, gateway, checkoutUC,
		cartRepo, cartItemRepo, productRepo, userRepo,
		cfg.StripeWebhookSecret != "",
	)

	//Handler生成とルート登録
	e := server.New()
	server.RegisterRoutes(e, cfg, blacklist, server.Handlers{
		Auth:         handler.NewAuthHandler(authUC),
		Product:      handler.NewProductHandler(productUC),
		AdminProduct: handler.NewAdminProductHandler(productUC),
		Category:     handler.NewCategoryHandler(categoryUC),
		Cart:         handler.NewCartHandler(cartUC),
		Checkout:     handler.NewCheckoutHandler(checkoutUC),
		Order:        handler.NewOrderHandler(orderUC, shipmentUC, paymentUC),
		Payment:      handler.NewPaymentHandler(paymentUC),
		Stripe:       handler.NewStripeHandler(stripeUC),
		Shipment:     handler.NewShipmentHandler(shipmentUC),
	})

	addr := ":" + cfg.Port
	log.Info("starting server", "addr", addr)
	if err := server.Start(e, addr); err != nil {
		panic(err)
	}
}
