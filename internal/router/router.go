package router

import (
	"time"

	"backstock/internal/config"
	"backstock/internal/handler"
	"backstock/internal/middleware"
	"backstock/internal/repository"
	"backstock/internal/service"
	"backstock/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// New wires repositories, services, and handlers into the HTTP engine.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())

	// Repositories
	txr := repository.NewTxRunner(db)
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	vendorRepo := repository.NewVendorRepository(db)
	productRepo := repository.NewProductRepository(db)
	vendorProductRepo := repository.NewVendorProductRepository(db)
	billRepo := repository.NewBillRepository(db)
	returnRepo := repository.NewReturnRepository(db)

	// Services
	authSvc := service.NewAuthService(userRepo, cfg)
	categorySvc := service.NewCategoryService(categoryRepo)
	vendorSvc := service.NewVendorService(vendorRepo)
	productSvc := service.NewProductService(productRepo, categoryRepo, vendorRepo, vendorProductRepo)
	vendorProductSvc := service.NewVendorProductService(vendorProductRepo, productRepo, vendorRepo)
	billingSvc := service.NewBillingService(txr, billRepo, vendorProductRepo, dispatcher, rdb, cfg.StockAlertThreshold, cfg.PDFStoragePath)
	returnSvc := service.NewReturnService(txr, vendorProductRepo, billRepo, returnRepo, dispatcher, cfg.StockAlertThreshold)
	analyticsSvc := service.NewAnalyticsService(productRepo, billRepo, rdb)

	// Handlers
	healthH := handler.NewHealthHandler(db, rdb)
	authH := handler.NewAuthHandler(authSvc)
	categoryH := handler.NewCategoryHandler(categorySvc)
	vendorH := handler.NewVendorHandler(vendorSvc)
	productH := handler.NewProductHandler(productSvc, analyticsSvc)
	vendorProductH := handler.NewVendorProductHandler(vendorProductSvc)
	billingH := handler.NewBillingHandler(billingSvc)
	returnH := handler.NewReturnHandler(returnSvc)

	r.GET("/health", healthH.Check)

	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group("/v1")
	v1.Use(middleware.RateLimiter(300, time.Minute))

	auth := v1.Group("/auth")
	auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
	auth.POST("/refresh", authH.Refresh)

	// Reads are open to any authenticated operator; writes require admin.
	staff := v1.Group("")
	staff.Use(middleware.JWTAuth(cfg.JWTSecret))

	admin := v1.Group("")
	admin.Use(middleware.JWTAuth(cfg.JWTSecret), middleware.RequireRole("admin"))

	staff.GET("/categories", categoryH.List)
	staff.GET("/categories/:id", categoryH.Get)
	admin.POST("/categories", categoryH.Create)
	admin.PATCH("/categories/:id", categoryH.Update)
	admin.DELETE("/categories/:id", categoryH.Delete)

	staff.GET("/vendors", vendorH.List)
	staff.GET("/vendors/:id", vendorH.Get)
	admin.POST("/vendors", vendorH.Create)
	admin.PATCH("/vendors/:id", vendorH.Update)
	admin.DELETE("/vendors/:id", vendorH.Delete)

	staff.GET("/products", productH.List)
	staff.GET("/products/:id", productH.Get)
	staff.GET("/products/:id/sales-analysis", productH.SalesAnalysis)
	staff.GET("/dropdown-data", productH.DropdownData)
	admin.POST("/products", productH.Create)
	admin.PATCH("/products/:id", productH.Update)
	admin.DELETE("/products/:id", productH.Delete)
	admin.POST("/products/:id/reactivate", productH.Reactivate)

	staff.GET("/vendor-products", vendorProductH.List)
	staff.GET("/vendor-products/:id", vendorProductH.Get)
	admin.POST("/vendor-products", vendorProductH.Create)
	admin.PATCH("/vendor-products/:id", vendorProductH.Update)
	admin.DELETE("/vendor-products/:id", vendorProductH.Delete)

	staff.GET("/bills", billingH.List)
	staff.GET("/bills/:id", billingH.Get)
	staff.GET("/bills/invoice/:invoice_no", billingH.GetByInvoiceNo)
	staff.GET("/bills/:id/pdf", billingH.PDF)
	staff.POST("/bills", billingH.Create)
	admin.DELETE("/bills/:id", billingH.Delete)

	staff.POST("/returns", returnH.Submit)
	staff.GET("/returns", returnH.List)
	admin.POST("/returns/:id/resolve", returnH.Resolve)

	return r
}
