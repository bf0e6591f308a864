package app

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/phenrril/reconcell/internal/adapters/httpserver"
	"github.com/phenrril/reconcell/internal/adapters/repo/postgres"
	"github.com/phenrril/reconcell/internal/domain"
	"github.com/phenrril/reconcell/internal/usecase"
)

type App struct {
	DB     *gorm.DB
	Engine *usecase.Engine
}

func NewApp(db *gorm.DB) (*App, error) {
	catalogRepo := postgres.NewCatalogRepo(db)
	priceRepo := postgres.NewPriceLogRepo(db)
	refundRepo := postgres.NewRefundLogRepo(db)
	shipmentRepo := postgres.NewShipmentLogRepo(db)
	aliasRepo := postgres.NewAliasRepo(db)
	configRepo := postgres.NewConfigRepo(db)
	snapshots := postgres.NewSnapshotStore(db)

	engine := usecase.NewEngine(catalogRepo, priceRepo, refundRepo, shipmentRepo, aliasRepo, configRepo, snapshots)

	return &App{DB: db, Engine: engine}, nil
}

func (a *App) HTTPHandler() http.Handler {
	return httpserver.New(a.Engine)
}

func (a *App) Migrate() error {
	if err := a.DB.AutoMigrate(
		&domain.Product{}, &domain.PriceLog{}, &domain.RefundLog{},
		&domain.ShipmentLog{}, &domain.LearnedAlias{}, &domain.EngineConfig{},
	); err != nil {
		return err
	}

	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_price_logs_sku_date ON price_logs (sku, date)").Error
	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_refund_logs_sku_date ON refund_logs (sku, date)").Error

	return nil
}
