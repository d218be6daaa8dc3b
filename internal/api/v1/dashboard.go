package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopmetrics/insights/internal/api/dto"
	ierr "github.com/shopmetrics/insights/internal/errors"
	"github.com/shopmetrics/insights/internal/logger"
	"github.com/shopmetrics/insights/internal/service"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
	Logger           *logger.Logger
}

func NewDashboardHandler(dashboardService service.DashboardService, logger *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		Logger:           logger,
	}
}

// GetDashboard retrieves the full dashboard feed for a filter window
// @Summary Get the full dashboard feed
// @Description Retrieve the daily series, category ranking, state distribution and RFM records for an inclusive day-granular window. Omitting both dates selects the full dataset span.
// @Produce json
// @Param start_date query string false "Window start (YYYY-MM-DD, inclusive)"
// @Param end_date query string false "Window end (YYYY-MM-DD, inclusive)"
// @Param top_n query int false "Best/worst category slice size (default 5)"
// @Success 200 {object} dto.DashboardResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /dashboard [get]
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.GetDashboardRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Please check the query parameters").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.dashboardService.GetDashboard(ctx, &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetDailyOrders retrieves the daily order/revenue series
// @Summary Get the daily order series
// @Produce json
// @Param start_date query string false "Window start (YYYY-MM-DD, inclusive)"
// @Param end_date query string false "Window end (YYYY-MM-DD, inclusive)"
// @Success 200 {object} dto.DailyOrdersResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /dashboard/daily-orders [get]
func (h *DashboardHandler) GetDailyOrders(c *gin.Context) {
	h.serve(c, func(req *dto.GetDashboardRequest) (any, error) {
		return h.dashboardService.GetDailyOrders(c.Request.Context(), req)
	})
}

// GetCategories retrieves the category ranking
// @Summary Get the category ranking
// @Produce json
// @Param start_date query string false "Window start (YYYY-MM-DD, inclusive)"
// @Param end_date query string false "Window end (YYYY-MM-DD, inclusive)"
// @Param top_n query int false "Best/worst category slice size (default 5)"
// @Success 200 {object} dto.CategoryRankingResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /dashboard/categories [get]
func (h *DashboardHandler) GetCategories(c *gin.Context) {
	h.serve(c, func(req *dto.GetDashboardRequest) (any, error) {
		return h.dashboardService.GetCategoryRanking(c.Request.Context(), req)
	})
}

// GetStates retrieves the per-region customer distribution
// @Summary Get the state distribution
// @Produce json
// @Param start_date query string false "Window start (YYYY-MM-DD, inclusive)"
// @Param end_date query string false "Window end (YYYY-MM-DD, inclusive)"
// @Success 200 {object} dto.StateDistributionResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /dashboard/states [get]
func (h *DashboardHandler) GetStates(c *gin.Context) {
	h.serve(c, func(req *dto.GetDashboardRequest) (any, error) {
		return h.dashboardService.GetStateDistribution(c.Request.Context(), req)
	})
}

// GetRFM retrieves the per-customer RFM segmentation
// @Summary Get the RFM segmentation
// @Produce json
// @Param start_date query string false "Window start (YYYY-MM-DD, inclusive)"
// @Param end_date query string false "Window end (YYYY-MM-DD, inclusive)"
// @Success 200 {object} dto.RfmResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /dashboard/rfm [get]
func (h *DashboardHandler) GetRFM(c *gin.Context) {
	h.serve(c, func(req *dto.GetDashboardRequest) (any, error) {
		return h.dashboardService.GetRFM(c.Request.Context(), req)
	})
}

func (h *DashboardHandler) serve(c *gin.Context, fn func(req *dto.GetDashboardRequest) (any, error)) {
	var req dto.GetDashboardRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Please check the query parameters").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := fn(&req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}
