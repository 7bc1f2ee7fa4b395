package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-fee-api/internal/dto"
	"github.com/noah-isme/school-fee-api/internal/middleware"
	"github.com/noah-isme/school-fee-api/internal/models"
	"github.com/noah-isme/school-fee-api/pkg/response"
)

const monthLayout = "2006-01"

type feeReportService interface {
	TotalFeeCollected(ctx context.Context) (int64, bool, error)
	TotalFeeForClass(ctx context.Context, className string) (int64, bool, error)
	ListRecordsForMonth(ctx context.Context, yearMonth string) ([]models.MonthlyFeeRecord, error)
	ListClasses(ctx context.Context) ([]string, bool, error)
}

// FeeHandler exposes fee aggregates, the monthly report and the class list.
type FeeHandler struct {
	fees feeReportService
	now  func() time.Time
}

// NewFeeHandler constructs FeeHandler.
func NewFeeHandler(fees feeReportService) *FeeHandler {
	return &FeeHandler{fees: fees, now: time.Now}
}

// Total godoc
// @Summary Total fee collected
// @Description Sums every recorded fee, or one class when class is given. No fees sum to 0.
// @Tags Fees
// @Produce json
// @Param class query string false "Class name"
// @Success 200 {object} response.Envelope
// @Router /api/v1/fees/total [get]
func (h *FeeHandler) Total(c *gin.Context) {
	className, scoped := c.GetQuery("class")
	className = strings.TrimSpace(className)

	var (
		total int64
		hit   bool
		err   error
	)
	if scoped {
		total, hit, err = h.fees.TotalFeeForClass(c.Request.Context(), className)
	} else {
		total, hit, err = h.fees.TotalFeeCollected(c.Request.Context())
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, dto.FeeTotalResponse{ClassName: className, Total: total}, middleware.ExtractMeta(c))
}

// Monthly godoc
// @Summary Monthly fee records
// @Description Records whose fee date falls in month (YYYY-MM, default current month). Malformed months yield an empty list.
// @Tags Fees
// @Produce json
// @Param month query string false "Month as YYYY-MM"
// @Success 200 {object} response.Envelope
// @Router /api/v1/fees/monthly [get]
func (h *FeeHandler) Monthly(c *gin.Context) {
	month := h.month(c)
	records, err := h.fees.ListRecordsForMonth(c.Request.Context(), month)
	if err != nil {
		response.Error(c, err)
		return
	}
	var total int64
	for _, r := range records {
		if r.FeeAmount != nil {
			total += *r.FeeAmount
		}
	}
	response.JSON(c, http.StatusOK, dto.MonthlyFeeResponse{Month: month, Records: records, Total: total})
}

// Classes godoc
// @Summary List classes
// @Description Distinct class names currently in use, sorted ascending.
// @Tags Classes
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /api/v1/classes [get]
func (h *FeeHandler) Classes(c *gin.Context) {
	classes, hit, err := h.fees.ListClasses(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	if classes == nil {
		classes = []string{}
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, dto.ClassListResponse{Classes: classes}, middleware.ExtractMeta(c))
}

func (h *FeeHandler) month(c *gin.Context) string {
	if month := strings.TrimSpace(c.Query("month")); month != "" {
		return month
	}
	return h.now().Format(monthLayout)
}
