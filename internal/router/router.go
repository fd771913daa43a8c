package router

import (
	"time"

	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/config"
	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/handler"
	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/middleware"
	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/repository"
	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/scan"
	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/service"
	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, registry *scan.Registry) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP
	r.Use(middleware.Operator())

	// ── Repositories ─────────────────────────────────────────────────────────
	productRepo := repository.NewProductRepository(db)
	changeRepo := repository.NewChangeRecordRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	productSvc := service.NewProductService(productRepo, rdb)
	stockSvc := service.NewStockService(productRepo, changeRepo, dispatcher, rdb)
	changeSvc := service.NewChangeService(changeRepo)
	statsSvc := service.NewStatsService(productRepo, cfg.ReportStoragePath)
	settingsSvc := service.NewSettingsService(rdb)
	scanSvc := service.NewScanService(registry, scan.NewZXingDecoder(), productSvc, stockSvc)

	// ── Handlers ─────────────────────────────────────────────────────────────
	productsH := handler.NewProductsHandler(productSvc, stockSvc)
	changesH := handler.NewChangesHandler(changeSvc)
	scanH := handler.NewScanHandler(scanSvc)
	statsH := handler.NewStatsHandler(statsSvc)
	settingsH := handler.NewSettingsHandler(settingsSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	r.GET("/health", handler.Health(db, rdb))

	v1 := r.Group("/v1")
	{
		prods := v1.Group("/products")
		{
			prods.POST("", productsH.Create)
			prods.GET("", productsH.List)
			prods.GET("/:id", productsH.GetByID)
			prods.PUT("/:id", productsH.Update)
			prods.DELETE("/:id", productsH.Deactivate)
			prods.PATCH("/:id/reactivate", productsH.Reactivate)
			prods.PATCH("/:id/stock", productsH.AdjustStock)
			prods.POST("/import", productsH.Import)
		}
		v1.GET("/products/barcode/:code", productsH.GetByBarcode)

		v1.GET("/changes", changesH.List)

		sessions := v1.Group("/scan/sessions")
		{
			sessions.POST("", scanH.Start)
			sessions.GET("/:id", scanH.Get)
			sessions.DELETE("/:id", scanH.Close)
			sessions.POST("/:id/code", scanH.ManualCode)
			sessions.POST("/:id/quantity", scanH.Quantity)
			sessions.POST("/:id/commit", scanH.Commit)
		}
		v1.POST("/scan/detect", scanH.DetectStill)

		v1.GET("/stats", statsH.Summary)
		v1.GET("/stats/report", statsH.Report)

		v1.GET("/settings", settingsH.Get)
		v1.PUT("/settings", settingsH.Update)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
