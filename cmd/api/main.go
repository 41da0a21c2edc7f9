package main

import (
	"context"
	"log"

	"bierz/internal/config"
	"bierz/internal/domain/model"
	"bierz/internal/handler"
	"bierz/internal/infra/db"
	infraRepo "bierz/internal/infra/repository"
	"bierz/internal/server"
	"bierz/internal/usecase"
	"bierz/internal/validator"

	"github.com/joho/godotenv"
)

func main() {
	// .envは無くてもいい（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		log.Fatal(err)
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Category{},
		&model.Product{},
		&model.Cart{},
		&model.CartItem{},
		&model.Equipment{},
		&model.CartEquipment{},
		&model.Order{},
		&model.OrderItem{},
		&model.InventoryAdjustment{},
		&model.AuditLog{},
	); err != nil {
		log.Fatal(err)
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	rtRepo := infraRepo.NewRefreshTokenRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	categoryRepo := infraRepo.NewCategoryGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	cartItemRepo := infraRepo.NewCartItemGormRepository(gormDB)
	equipmentRepo := infraRepo.NewEquipmentGormRepository(gormDB)
	cartEquipRepo := infraRepo.NewCartEquipmentGormRepository(gormDB)
	inventoryRepo := infraRepo.NewInventoryGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//レンタル機材は固定カタログなので起動時にシードする
	ctx := context.Background()
	for _, eq := range []model.Equipment{
		{Slug: "chopeira", Name: "Chopeira Elétrica"},
		{Slug: "homebar", Name: "HomeBar"},
	} {
		if err := equipmentRepo.EnsureExists(ctx, eq); err != nil {
			log.Fatal(err)
		}
	}

	//Usecase生成
	authValidator := validator.NewAuthValidator(userRepo)
	authUC := usecase.NewAuthUsecase(cfg, userRepo, rtRepo, authValidator)
	productUC := usecase.NewProductUsecase(productRepo, inventoryRepo, auditRepo)
	categoryUC := usecase.NewCategoryUsecase(categoryRepo, auditRepo)
	cartUC := usecase.NewCartUsecase(cartRepo, cartItemRepo, cartEquipRepo, equipmentRepo, productRepo)
	orderUC := usecase.NewOrderUsecase(txManager)
	adminOrderUC := usecase.NewAdminOrderUsecase(txManager, auditRepo)
	adminUserUC := usecase.NewAdminUserUsecase(userRepo, rtRepo, auditRepo)
	adminAuditUC := usecase.NewAdminAuditUsecase(auditRepo)

	//Handler生成
	h := server.Handlers{
		UserRepo: userRepo,

		Auth:          handler.NewAuthHandler(cfg, authUC),
		Product:       handler.NewProductHandler(productUC),
		Category:      handler.NewCategoryHandler(categoryUC),
		Cart:          handler.NewCartHandler(cartUC),
		Order:         handler.NewOrderHandler(orderUC),
		AdminProduct:  handler.NewAdminProductHandler(productUC),
		AdminCategory: handler.NewAdminCategoryHandler(categoryUC),
		AdminOrder:    handler.NewAdminOrderHandler(adminOrderUC),
		AdminUser:     handler.NewAdminUserHandler(cfg, userRepo, adminUserUC, authUC, adminAuditUC),
	}

	//Server起動
	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}

	if err := server.Start(addr, cfg, h); err != nil {
		log.Fatal(err)
	}
}
