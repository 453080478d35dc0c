package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"backstock/internal/apierror"
	"backstock/internal/dto"
	"backstock/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const salesCacheTTL = 60 * time.Second

// AnalyticsService computes derived sales figures for products. Results are
// cached in Redis for a short window; the cache is a pure accelerator and the
// service works with rdb == nil.
type AnalyticsService interface {
	SalesAnalysis(ctx context.Context, productID uuid.UUID) (*dto.SalesAnalysisResponse, error)
}

type analyticsService struct {
	products repository.ProductRepository
	bills    repository.BillRepository
	rdb      *redis.Client
}

func NewAnalyticsService(products repository.ProductRepository, bills repository.BillRepository, rdb *redis.Client) AnalyticsService {
	return &analyticsService{products: products, bills: bills, rdb: rdb}
}

func (s *analyticsService) SalesAnalysis(ctx context.Context, productID uuid.UUID) (*dto.SalesAnalysisResponse, error) {
	if cached := s.fromCache(ctx, productID); cached != nil {
		return cached, nil
	}

	if _, err := s.products.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("Product not found")
		}
		return nil, err
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	twoDaysAgo := now.Add(-48 * time.Hour)

	agg, err := s.bills.SalesAnalysis(ctx, productID, monthStart, twoDaysAgo)
	if err != nil {
		return nil, err
	}

	resp := &dto.SalesAnalysisResponse{
		ProductID:      productID,
		TotalSales:     agg.TotalSales,
		TotalRevenue:   agg.TotalRevenue,
		ThisMonthSales: agg.ThisMonthSales,
		Last2DaySales:  agg.Last2DaySales,
	}
	s.toCache(ctx, productID, resp)
	return resp, nil
}

func salesCacheKey(productID uuid.UUID) string {
	return "sales_analysis:" + productID.String()
}

// invalidateSalesCache drops cached figures after a bill write touches the
// given products. Best effort.
func invalidateSalesCache(ctx context.Context, rdb *redis.Client, productIDs []uuid.UUID) {
	if rdb == nil || len(productIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(productIDs))
	for _, id := range productIDs {
		keys = append(keys, salesCacheKey(id))
	}
	if err := rdb.Del(ctx, keys...).Err(); err != nil {
		log.Warn().Err(err).Msg("sales analysis cache invalidation failed")
	}
}

func (s *analyticsService) fromCache(ctx context.Context, productID uuid.UUID) *dto.SalesAnalysisResponse {
	if s.rdb == nil {
		return nil
	}
	raw, err := s.rdb.Get(ctx, salesCacheKey(productID)).Bytes()
	if err != nil {
		return nil
	}
	var resp dto.SalesAnalysisResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil
	}
	return &resp
}

func (s *analyticsService) toCache(ctx context.Context, productID uuid.UUID, resp *dto.SalesAnalysisResponse) {
	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, salesCacheKey(productID), raw, salesCacheTTL).Err(); err != nil {
		log.Warn().Err(err).Str("product_id", productID.String()).Msg("sales analysis cache write failed")
	}
}
