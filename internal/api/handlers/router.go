package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Services bundles what the router needs.
type Services struct {
	Tokens   TokenParser
	Catalog  CatalogService
	Carts    CartService
	Checkout CheckoutService
	Payments PaymentService
	Orders   OrderService
	Reports  ReportService
	Accounts AccountService
}

func NewRouter(s Services) http.Handler {
	catalog := NewCatalogHandler(s.Catalog)
	carts := NewCartHandler(s.Carts)
	checkout := NewCheckoutHandler(s.Checkout)
	payments := NewPaymentHandler(s.Payments)
	orders := NewOrderHandler(s.Orders)
	reports := NewReportHandler(s.Reports)
	accounts := NewAccountHandler(s.Accounts)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// The provider calls this without a token.
	r.HandleFunc("/mpesa/callback", payments.Callback)

	r.Group(func(r chi.Router) {
		r.Use(Authenticate(s.Tokens))

		r.Post("/register", accounts.Register)
		r.Post("/login", accounts.Login)

		r.Get("/categories", catalog.Categories)
		r.Get("/products", catalog.Products)
		r.Get("/products/{id}", catalog.Product)

		r.Group(func(r chi.Router) {
			r.Use(RequireUser)

			r.Get("/profile", accounts.Profile)
			r.Post("/profile", accounts.UpdateProfile)

			r.Post("/products/{id}/reviews", catalog.AddReview)

			r.Get("/cart", carts.View)
			r.Post("/add/{productId}", carts.Add)
			r.Post("/update/{productId}", carts.Update)

			r.Get("/checkout", checkout.Checkout)
			r.Post("/order/process", checkout.Process)
			r.Post("/cash/checkout/{productId}", checkout.CashBuyNow)
			r.Post("/mpesa/initiate/{productId}", checkout.MpesaBuyNow)

			r.Get("/orders", orders.List)
			r.Get("/orders/{id}", orders.Get)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(RequireStaff)

			r.Get("/sales", reports.Sales)

			r.Post("/categories", catalog.CreateCategory)
			r.Put("/categories/{slug}", catalog.UpdateCategory)
			r.Delete("/categories/{slug}", catalog.DeleteCategory)

			r.Post("/products", catalog.CreateProduct)
			r.Put("/products/{id}", catalog.UpdateProduct)
			r.Delete("/products/{id}", catalog.DeleteProduct)
			r.Get("/products/{id}/operations", catalog.StockMovements)

			r.Get("/orders", orders.All)
			r.Get("/orders/{id}", orders.Detail)
			r.Post("/orders/{id}/complete", orders.Complete)
			r.Post("/orders/{id}/cancel", orders.Cancel)
		})
	})

	return r
}
