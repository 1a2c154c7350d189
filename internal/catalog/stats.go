package catalog

import (
	"github.com/montanaflynn/stats"

	"github.com/alchepastry/pastryadmin/internal/domain"
)

// Summary aggregates the current catalog for the stats endpoint and the
// metrics sampler.
type Summary struct {
	Count       int                     `json:"count"`
	StockTotal  int                     `json:"stock_total"`
	OutOfStock  int                     `json:"out_of_stock"`
	MeanPrice   float64                 `json:"mean_price"`
	MedianPrice float64                 `json:"median_price"`
	MinPrice    float64                 `json:"min_price"`
	MaxPrice    float64                 `json:"max_price"`
	ByCategory  map[domain.Category]int `json:"by_category"`
}

// Summarize computes a Summary over products. Prices are read with currency
// stripped; an empty catalog yields zero price figures.
func Summarize(currency string, products []domain.Product) Summary {
	sum := Summary{
		Count:      len(products),
		ByCategory: make(map[domain.Category]int, len(domain.Categories)),
	}
	for _, c := range domain.Categories {
		sum.ByCategory[c] = 0
	}
	prices := make(stats.Float64Data, 0, len(products))
	for _, p := range products {
		sum.StockTotal += p.Stock
		if p.Stock <= 0 {
			sum.OutOfStock++
		}
		sum.ByCategory[p.Category]++
		prices = append(prices, PriceValue(currency, p.Price))
	}
	if len(prices) == 0 {
		return sum
	}
	sum.MeanPrice, _ = stats.Round(mustFloat(prices.Mean()), 2)
	sum.MedianPrice, _ = stats.Round(mustFloat(prices.Median()), 2)
	sum.MinPrice = mustFloat(prices.Min())
	sum.MaxPrice = mustFloat(prices.Max())
	return sum
}

func mustFloat(v float64, err error) float64 {
	if err != nil {
		return 0
	}
	return v
}

// Summary summarizes the live collection.
func (s *Store) Summary() Summary {
	return Summarize(s.currency, s.List())
}
