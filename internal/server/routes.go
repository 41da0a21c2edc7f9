package server

import (
	"github.com/labstack/echo/v4"

	"bierz/internal/config"
	"bierz/internal/handler"
	"bierz/internal/repository"
)

// Handlers はroutes登録に必要なhandler一式。
type Handlers struct {
	UserRepo repository.UserRepository

	Auth          *handler.AuthHandler
	Product       *handler.ProductHandler
	Category      *handler.CategoryHandler
	Cart          *handler.CartHandler
	Order         *handler.OrderHandler
	AdminProduct  *handler.AdminProductHandler
	AdminCategory *handler.AdminCategoryHandler
	AdminOrder    *handler.AdminOrderHandler
	AdminUser     *handler.AdminUserHandler
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, h Handlers) {
	h.Auth.RegisterRoutes(e, h.UserRepo)
	h.Product.RegisterRoutes(e)
	h.Category.RegisterRoutes(e)
	h.Cart.RegisterRoutes(e, cfg, h.UserRepo)
	h.Order.RegisterRoutes(e, cfg, h.UserRepo)
	h.AdminProduct.RegisterRoutes(e, cfg, h.UserRepo)
	h.AdminCategory.RegisterRoutes(e, cfg, h.UserRepo)
	h.AdminOrder.RegisterRoutes(e, cfg, h.UserRepo)
	h.AdminUser.RegisterRoutes(e)
}
