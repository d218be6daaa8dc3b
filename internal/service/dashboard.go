package service

import (
	"context"
	"time"

	"github.com/shopmetrics/insights/internal/api/dto"
	"github.com/shopmetrics/insights/internal/domain/commerce"
	ierr "github.com/shopmetrics/insights/internal/errors"
	"github.com/shopmetrics/insights/internal/types"
	"github.com/sourcegraph/conc"
)

// DashboardService assembles the full Presentation Adapter feed for one filter
// window: it filters the fact relation, fans the four transforms out, and
// attaches the scalar totals and RFM means the adapter renders as headline
// metrics.
type DashboardService interface {
	GetDashboard(ctx context.Context, req *dto.GetDashboardRequest) (*dto.DashboardResponse, error)
	GetDailyOrders(ctx context.Context, req *dto.GetDashboardRequest) (*dto.DailyOrdersResponse, error)
	GetCategoryRanking(ctx context.Context, req *dto.GetDashboardRequest) (*dto.CategoryRankingResponse, error)
	GetStateDistribution(ctx context.Context, req *dto.GetDashboardRequest) (*dto.StateDistributionResponse, error)
	GetRFM(ctx context.Context, req *dto.GetDashboardRequest) (*dto.RfmResponse, error)
}

type dashboardService struct {
	ServiceParams
	analytics AnalyticsService
	dataset   *commerce.Dataset
}

func NewDashboardService(params ServiceParams, analytics AnalyticsService, dataset *commerce.Dataset) DashboardService {
	return &dashboardService{
		ServiceParams: params,
		analytics:     analytics,
		dataset:       dataset,
	}
}

func (s *dashboardService) GetDashboard(ctx context.Context, req *dto.GetDashboardRequest) (*dto.DashboardResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start, end := s.resolveWindow(req)
	facts := s.dataset.Facts.FilterByDay(start, end)

	s.Logger.Debugw("computing dashboard",
		"start", start.Format(types.DateLayout),
		"end", end.Format(types.DateLayout),
		"lines", len(facts),
	)

	// The four transforms are independent and their inputs immutable, so they
	// run concurrently without locking.
	var (
		daily      []*commerce.DailyMetric
		categories []*commerce.CategoryMetric
		states     []*commerce.StateMetric
		rfm        []*commerce.RfmRecord
		rfmErr     error
	)
	var wg conc.WaitGroup
	wg.Go(func() { daily = s.analytics.DailyOrders(facts) })
	wg.Go(func() { categories = s.analytics.CategoryRanking(facts) })
	wg.Go(func() { states = s.analytics.StateDistribution(facts) })
	wg.Go(func() { rfm, rfmErr = s.analytics.RFM(facts, s.dataset.Orders) })
	wg.Wait()

	if rfmErr != nil {
		return nil, rfmErr
	}

	resp := &dto.DashboardResponse{
		StartDate:   start.Format(types.DateLayout),
		EndDate:     end.Format(types.DateLayout),
		DatasetSpan: s.spanResponse(),
		DailyOrders: dto.NewDailyOrdersResponse(daily),
		Categories:  dto.NewCategoryRankingResponse(categories, req.TopN),
		States:      dto.NewStateDistributionResponse(states),
		Rfm:         dto.NewRfmResponse(rfm),
	}
	return resp, nil
}

func (s *dashboardService) GetDailyOrders(ctx context.Context, req *dto.GetDashboardRequest) (*dto.DailyOrdersResponse, error) {
	facts, err := s.filteredFacts(req)
	if err != nil {
		return nil, err
	}
	resp := dto.NewDailyOrdersResponse(s.analytics.DailyOrders(facts))
	return &resp, nil
}

func (s *dashboardService) GetCategoryRanking(ctx context.Context, req *dto.GetDashboardRequest) (*dto.CategoryRankingResponse, error) {
	facts, err := s.filteredFacts(req)
	if err != nil {
		return nil, err
	}
	resp := dto.NewCategoryRankingResponse(s.analytics.CategoryRanking(facts), req.TopN)
	return &resp, nil
}

func (s *dashboardService) GetStateDistribution(ctx context.Context, req *dto.GetDashboardRequest) (*dto.StateDistributionResponse, error) {
	facts, err := s.filteredFacts(req)
	if err != nil {
		return nil, err
	}
	resp := dto.NewStateDistributionResponse(s.analytics.StateDistribution(facts))
	return &resp, nil
}

func (s *dashboardService) GetRFM(ctx context.Context, req *dto.GetDashboardRequest) (*dto.RfmResponse, error) {
	facts, err := s.filteredFacts(req)
	if err != nil {
		return nil, err
	}
	records, err := s.analytics.RFM(facts, s.dataset.Orders)
	if err != nil {
		return nil, err
	}
	resp := dto.NewRfmResponse(records)
	return &resp, nil
}

func (s *dashboardService) filteredFacts(req *dto.GetDashboardRequest) (commerce.FactRelation, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	start, end := s.resolveWindow(req)
	return s.dataset.Facts.FilterByDay(start, end), nil
}

// resolveWindow falls back to the full dataset span when the request carries no
// window, the same default the reference UI presents in its date picker.
func (s *dashboardService) resolveWindow(req *dto.GetDashboardRequest) (time.Time, time.Time) {
	if start, end, ok := req.Window(); ok {
		return start, end
	}
	min, max, ok := s.dataset.Facts.Span()
	if !ok {
		// no parseable timestamp anywhere; any window filters to empty
		return time.Time{}, time.Time{}
	}
	return min, max
}

func (s *dashboardService) spanResponse() dto.DatasetSpanResponse {
	min, max, ok := s.dataset.Facts.Span()
	if !ok {
		return dto.DatasetSpanResponse{}
	}
	return dto.DatasetSpanResponse{
		MinDate: min.Format(types.DateLayout),
		MaxDate: max.Format(types.DateLayout),
	}
}

// LoadDataset reads both relations through the repository at startup. A schema
// violation surfaces here and aborts the process; there is no partial mode.
func LoadDataset(ctx context.Context, params ServiceParams) (*commerce.Dataset, error) {
	dataset, err := params.CommerceRepo.Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(dataset.Facts) == 0 {
		params.Logger.Warnw("fact dataset is empty; all aggregations will be empty")
	}
	if len(dataset.Orders) == 0 {
		return nil, ierr.NewError("orders dataset is empty").
			WithHint("The orders dataset must contain at least one order").
			Mark(ierr.ErrInvalidOperation)
	}
	return dataset, nil
}
