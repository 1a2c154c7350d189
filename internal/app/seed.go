package app

import (
	"go.uber.org/zap"

	"github.com/alchepastry/pastryadmin/internal/catalog"
	"github.com/alchepastry/pastryadmin/internal/domain"
)

// checkProducts returns the initial catalog contents.
func (a *Application) checkProducts() []domain.Product {
	if !a.appConfig.Catalog.Seed {
		zap.L().Info("catalog seeding disabled, starting empty")
		return nil
	}
	products := catalog.SeedProducts(a.appConfig.Catalog.Currency)
	zap.L().Info("initialized default catalog", zap.Int("products", len(products)))
	return products
}
