package service

import (
	"context"
	"testing"

	"github.com/shopmetrics/insights/internal/api/dto"
	"github.com/shopmetrics/insights/internal/config"
	"github.com/shopmetrics/insights/internal/domain/commerce"
	"github.com/shopmetrics/insights/internal/errors"
	"github.com/shopmetrics/insights/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type DashboardServiceSuite struct {
	suite.Suite
	ctx     context.Context
	dataset *commerce.Dataset
	service DashboardService
}

func TestDashboardService(t *testing.T) {
	suite.Run(t, new(DashboardServiceSuite))
}

func (s *DashboardServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.dataset = testutil.NewDatasetBuilder().
		WithLine("A", "c1", "SP", "tech", "2018-01-01 09:00:00", 10).
		WithLine("A", "c1", "SP", "home", "2018-01-01 09:00:00", 20).
		WithLine("B", "c2", "RJ", "tech", "2018-01-01 15:00:00", 5).
		WithLine("C", "c3", "SP", "garden", "2018-01-02 11:00:00", 40).
		WithOrder("A", "2018-01-01 09:00:00").
		WithOrder("B", "2018-01-01 15:00:00").
		WithOrder("C", "2018-01-02 11:00:00").
		Build()
	s.service = s.newService(s.dataset)
}

func (s *DashboardServiceSuite) newService(dataset *commerce.Dataset) DashboardService {
	params := ServiceParams{
		Logger:       testutil.NewTestLogger(),
		Config:       config.GetDefaultConfig(),
		CommerceRepo: testutil.NewInMemoryCommerceStore(dataset),
	}
	return NewDashboardService(params, NewAnalyticsService(params), dataset)
}

func (s *DashboardServiceSuite) TestGetDashboardFullSpanDefault() {
	resp, err := s.service.GetDashboard(s.ctx, &dto.GetDashboardRequest{})
	s.Require().NoError(err)

	s.Equal("2018-01-01", resp.StartDate)
	s.Equal("2018-01-02", resp.EndDate)
	s.Equal("2018-01-01", resp.DatasetSpan.MinDate)
	s.Equal("2018-01-02", resp.DatasetSpan.MaxDate)

	s.Require().Len(resp.DailyOrders.Items, 2)
	s.Equal(3, resp.DailyOrders.TotalOrders)
	s.True(resp.DailyOrders.TotalRevenue.Equal(decimal.NewFromInt(75)))
}

func (s *DashboardServiceSuite) TestGetDashboardSingleDayBoundary() {
	resp, err := s.service.GetDashboard(s.ctx, &dto.GetDashboardRequest{
		StartDate: "2018-01-01",
		EndDate:   "2018-01-01",
	})
	s.Require().NoError(err)

	s.Require().Len(resp.DailyOrders.Items, 1)
	s.Equal("2018-01-01", resp.DailyOrders.Items[0].Date)
	// orders A and B purchased that day; A's two lines count once
	s.Equal(2, resp.DailyOrders.Items[0].OrderCount)
	s.True(resp.DailyOrders.Items[0].Revenue.Equal(decimal.NewFromInt(35)))
}

func (s *DashboardServiceSuite) TestGetDashboardInvertedRange() {
	resp, err := s.service.GetDashboard(s.ctx, &dto.GetDashboardRequest{
		StartDate: "2018-01-02",
		EndDate:   "2018-01-01",
	})
	s.Require().NoError(err)

	s.Empty(resp.DailyOrders.Items)
	s.Empty(resp.Categories.Items)
	s.Empty(resp.States.Items)
	s.Empty(resp.Rfm.Items)
	s.Equal(0, resp.DailyOrders.TotalOrders)
}

func (s *DashboardServiceSuite) TestGetDashboardValidation() {
	testCases := []struct {
		name string
		req  dto.GetDashboardRequest
	}{
		{
			name: "start_without_end",
			req:  dto.GetDashboardRequest{StartDate: "2018-01-01"},
		},
		{
			name: "end_without_start",
			req:  dto.GetDashboardRequest{EndDate: "2018-01-01"},
		},
		{
			name: "bad_date_format",
			req:  dto.GetDashboardRequest{StartDate: "01/02/2018", EndDate: "2018-01-05"},
		},
		{
			name: "negative_top_n",
			req:  dto.GetDashboardRequest{TopN: -1},
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, err := s.service.GetDashboard(s.ctx, &tc.req)
			s.Require().Error(err)
			s.True(errors.IsValidation(err))
		})
	}
}

func (s *DashboardServiceSuite) TestCategorySlicesComeFromOneRanking() {
	resp, err := s.service.GetDashboard(s.ctx, &dto.GetDashboardRequest{TopN: 2})
	s.Require().NoError(err)

	// tech(2), home(1), garden(1) -> best is head, worst is tail of one ranking
	s.Require().Len(resp.Categories.Items, 3)
	s.Equal("tech", resp.Categories.Items[0].Category)

	s.Require().Len(resp.Categories.Best, 2)
	s.Require().Len(resp.Categories.Worst, 2)
	s.Equal("tech", resp.Categories.Best[0].Category)
	s.Equal(resp.Categories.Items[1], resp.Categories.Best[1])
	s.Equal(resp.Categories.Items[1], resp.Categories.Worst[0])
	s.Equal(resp.Categories.Items[2], resp.Categories.Worst[1])
}

func (s *DashboardServiceSuite) TestStatesSortedDescendingForPresentation() {
	resp, err := s.service.GetDashboard(s.ctx, &dto.GetDashboardRequest{})
	s.Require().NoError(err)

	s.Require().Len(resp.States.Items, 2)
	s.Equal("SP", resp.States.Items[0].State)
	s.Equal(2, resp.States.Items[0].CustomerCount)
	s.Equal("RJ", resp.States.Items[1].State)
	s.Equal(1, resp.States.Items[1].CustomerCount)
}

func (s *DashboardServiceSuite) TestRfmMeans() {
	resp, err := s.service.GetDashboard(s.ctx, &dto.GetDashboardRequest{})
	s.Require().NoError(err)

	s.Require().Len(resp.Rfm.Items, 3)

	// reference is order C (2018-01-02 11:00); c1 last 01-01 09:00 -> 1 day,
	// c2 last 01-01 15:00 -> 0 days, c3 last 01-02 11:00 -> 0 days
	recencies := make(map[string]int)
	for _, r := range resp.Rfm.Items {
		s.Require().NotNil(r.RecencyDays)
		recencies[r.CustomerID] = *r.RecencyDays
	}
	s.Equal(1, recencies["c1"])
	s.Equal(0, recencies["c2"])
	s.Equal(0, recencies["c3"])

	third := decimal.NewFromInt(3)
	s.True(resp.Rfm.AverageRecency.Equal(decimal.NewFromInt(1).Div(third)))
	s.True(resp.Rfm.AverageFrequency.Equal(decimal.NewFromInt(1)))
	s.True(resp.Rfm.AverageMonetary.Equal(decimal.NewFromInt(75).Div(third)))
}

func (s *DashboardServiceSuite) TestGetDashboardIsIdempotent() {
	req := &dto.GetDashboardRequest{StartDate: "2018-01-01", EndDate: "2018-01-02"}

	first, err := s.service.GetDashboard(s.ctx, req)
	s.Require().NoError(err)
	second, err := s.service.GetDashboard(s.ctx, &dto.GetDashboardRequest{
		StartDate: "2018-01-01", EndDate: "2018-01-02",
	})
	s.Require().NoError(err)

	s.Equal(first, second)
}

func (s *DashboardServiceSuite) TestIndividualEndpointsMatchDashboard() {
	req := func() *dto.GetDashboardRequest {
		return &dto.GetDashboardRequest{StartDate: "2018-01-01", EndDate: "2018-01-02"}
	}

	full, err := s.service.GetDashboard(s.ctx, req())
	s.Require().NoError(err)

	daily, err := s.service.GetDailyOrders(s.ctx, req())
	s.Require().NoError(err)
	s.Equal(full.DailyOrders, *daily)

	categories, err := s.service.GetCategoryRanking(s.ctx, req())
	s.Require().NoError(err)
	s.Equal(full.Categories, *categories)

	states, err := s.service.GetStateDistribution(s.ctx, req())
	s.Require().NoError(err)
	s.Equal(full.States, *states)

	rfm, err := s.service.GetRFM(s.ctx, req())
	s.Require().NoError(err)
	s.Equal(full.Rfm, *rfm)
}

func (s *DashboardServiceSuite) TestLoadDatasetRejectsEmptyOrders() {
	dataset := testutil.NewDatasetBuilder().
		WithLine("A", "c1", "SP", "tech", "2018-01-01 09:00:00", 10).
		Build()
	params := ServiceParams{
		Logger:       testutil.NewTestLogger(),
		Config:       config.GetDefaultConfig(),
		CommerceRepo: testutil.NewInMemoryCommerceStore(dataset),
	}

	_, err := LoadDataset(s.ctx, params)
	s.Require().Error(err)
	s.True(errors.IsInvalidOperation(err))
}
