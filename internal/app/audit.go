package app

import (
	"go.uber.org/zap"

	"github.com/alchepastry/pastryadmin/internal/catalog"
	"github.com/alchepastry/pastryadmin/pkg/metrics"
)

func (a *Application) subscribeCatalog() {
	for _, topic := range catalog.Topics {
		if err := a.bus.Subscribe(topic, a.auditEvent); err != nil {
			zap.S().Errorf("subscribe %s error %s", topic, err.Error())
		}
	}
}

// auditEvent logs every applied catalog mutation and counts it.
func (a *Application) auditEvent(ev catalog.Event) {
	fields := []zap.Field{
		zap.String("namespace", "catalog"),
		zap.String("topic", ev.Topic),
		zap.Int64("product_id", ev.Product.ID),
		zap.String("name", ev.Product.Name),
		zap.Int("size", ev.Size),
	}
	if ev.Topic == catalog.TopicStock && ev.Previous != nil {
		fields = append(fields, zap.Int("stock_from", ev.Previous.Stock), zap.Int("stock_to", ev.Product.Stock))
	}
	zap.L().Info("catalog changed", fields...)

	if a.metrics != nil {
		a.metrics.Incr(metrics.CatalogMutations, 1)
		a.metrics.SetGauge(metrics.CatalogProducts, int64(ev.Size))
	}
}
