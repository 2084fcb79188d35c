package routes

import (
	adminapi "manuflix-backend/internal/api/admin"
	authapi "manuflix-backend/internal/api/auth"
	billingapi "manuflix-backend/internal/api/billing"
	"manuflix-backend/internal/api/pixwebhook"
	plansapi "manuflix-backend/internal/api/plans"
	usersapi "manuflix-backend/internal/api/users"
	"manuflix-backend/internal/app/http/middleware"
	"manuflix-backend/internal/store"

	"github.com/gin-gonic/gin"
)

type Deps struct {
	JWTSecret string

	Auth    *authapi.Handler
	Plans   *plansapi.Handler
	Billing *billingapi.Handler
	Users   *usersapi.Handler
	Webhook *pixwebhook.Handler
	Admin   *adminapi.Handler

	Subscriptions *store.SubscriptionStore
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.POST("/webhook/payment-confirmation", d.Webhook.HandlePaymentConfirmation)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	public := r.Group("/")
	public.Use(middleware.SanitizeInputMiddleware())
	public.POST("/register", d.Auth.Register)
	public.POST("/login", d.Auth.Login)
	public.GET("/plans", d.Plans.ListPlans)

	// Authenticated
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware(d.JWTSecret))
	auth.GET("/me/subscription", d.Users.GetSubscription)
	auth.GET("/payments", d.Billing.GetPaymentHistory)
	auth.POST("/checkout", d.Billing.StartCheckout)
	auth.GET("/checkout/:id", d.Billing.GetCheckout)
	auth.DELETE("/checkout/:id", d.Billing.CancelCheckout)

	// Subscribed users
	subscribed := auth.Group("/")
	subscribed.Use(middleware.RequireActiveSubscription(d.Subscriptions))
	subscribed.GET("/content", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "Bem-vindo ao catálogo Manuflix"})
	})

	// Admin
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(d.JWTSecret), middleware.RequireRole("admin"))
	admin.GET("/payments", d.Admin.ListAllPayments)
}
