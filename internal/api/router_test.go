package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	v1 "github.com/shopmetrics/insights/internal/api/v1"
	"github.com/shopmetrics/insights/internal/config"
	"github.com/shopmetrics/insights/internal/service"
	"github.com/shopmetrics/insights/internal/testutil"
	"github.com/stretchr/testify/suite"
)

type RouterSuite struct {
	suite.Suite
	router *gin.Engine
}

func TestRouter(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	dataset := testutil.NewDatasetBuilder().
		WithLine("A", "c1", "SP", "tech", "2018-01-01 09:00:00", 10).
		WithLine("B", "c2", "RJ", "home", "2018-01-02 15:00:00", 5).
		WithOrder("A", "2018-01-01 09:00:00").
		WithOrder("B", "2018-01-02 15:00:00").
		Build()

	log := testutil.NewTestLogger()
	params := service.ServiceParams{
		Logger:       log,
		Config:       config.GetDefaultConfig(),
		CommerceRepo: testutil.NewInMemoryCommerceStore(dataset),
	}
	dashboardService := service.NewDashboardService(params, service.NewAnalyticsService(params), dataset)

	s.router = NewRouter(NewHandlers(
		v1.NewDashboardHandler(dashboardService, log),
		v1.NewHealthHandler(),
	), log)
}

func (s *RouterSuite) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RouterSuite) TestHealth() {
	w := s.get("/health")
	s.Equal(http.StatusOK, w.Code)
}

func (s *RouterSuite) TestGetDashboard() {
	w := s.get("/v1/dashboard?start_date=2018-01-01&end_date=2018-01-02")
	s.Require().Equal(http.StatusOK, w.Code)

	var body map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	s.Equal("2018-01-01", body["start_date"])
	s.Equal("2018-01-02", body["end_date"])
	s.Contains(body, "daily_orders")
	s.Contains(body, "categories")
	s.Contains(body, "states")
	s.Contains(body, "rfm")
}

func (s *RouterSuite) TestGetDashboardBadDate() {
	w := s.get("/v1/dashboard?start_date=bogus&end_date=2018-01-02")
	s.Require().Equal(http.StatusBadRequest, w.Code)

	var body map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	s.Equal(false, body["success"])
}

func (s *RouterSuite) TestIndividualRelationRoutes() {
	for _, path := range []string{
		"/v1/dashboard/daily-orders",
		"/v1/dashboard/categories",
		"/v1/dashboard/states",
		"/v1/dashboard/rfm",
	} {
		w := s.get(path)
		s.Equal(http.StatusOK, w.Code, "path %s", path)
	}
}

func (s *RouterSuite) TestRequestIDHeader() {
	w := s.get("/health")
	s.NotEmpty(w.Header().Get("X-Request-ID"))
}
