package main

import (
	"context"
	"log"
	"time"

	"manuflix-backend/config"
	"manuflix-backend/database"
	adminapi "manuflix-backend/internal/api/admin"
	authapi "manuflix-backend/internal/api/auth"
	billingapi "manuflix-backend/internal/api/billing"
	"manuflix-backend/internal/api/pixwebhook"
	plansapi "manuflix-backend/internal/api/plans"
	usersapi "manuflix-backend/internal/api/users"
	routes "manuflix-backend/internal/app/http"
	"manuflix-backend/internal/checkout"
	"manuflix-backend/internal/infra/pushinpay"
	"manuflix-backend/internal/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	db := database.InitDB(cfg.DBURL)

	planStore := store.NewPlanStore(db)
	txStore := store.NewTransactionStore(db)
	subStore := store.NewSubscriptionStore(db)

	if err := planStore.Seed(context.Background()); err != nil {
		logger.Fatal("plan seed failed", zap.Error(err))
	}

	provider := pushinpay.NewClient(cfg.PushinPay, logger)
	confirmer := checkout.NewConfirmer(txStore, planStore, subStore, logger)
	manager := checkout.NewManager(provider, txStore, planStore, confirmer, logger, checkout.Config{})

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, routes.Deps{
		JWTSecret:     cfg.JWTSecret,
		Auth:          authapi.NewHandler(db, cfg.JWTSecret),
		Plans:         plansapi.NewHandler(planStore),
		Billing:       billingapi.NewHandler(manager, txStore, logger),
		Users:         usersapi.NewHandler(subStore),
		Webhook:       pixwebhook.NewHandler(txStore, confirmer, cfg.PushinPay.WebhookSecret, logger),
		Admin:         adminapi.NewHandler(txStore, logger),
		Subscriptions: subStore,
	})

	r.Run(":" + cfg.Port)
}
