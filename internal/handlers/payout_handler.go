package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"reseller_hub/internal/gateway"
	"reseller_hub/internal/models"
	"reseller_hub/internal/report"
	"reseller_hub/internal/services"
	"reseller_hub/internal/settlement"
)

type PayoutHandler struct {
	payouts     services.PayoutService
	exports     services.ExportService
	maintenance services.MaintenanceService
	now         func() time.Time
}

func NewPayoutHandler(
	payouts services.PayoutService,
	exports services.ExportService,
	maintenance services.MaintenanceService,
	now func() time.Time,
) *PayoutHandler {
	if now == nil {
		now = time.Now
	}
	return &PayoutHandler{
		payouts:     payouts,
		exports:     exports,
		maintenance: maintenance,
		now:         now,
	}
}

type summaryResponse struct {
	WeekStart         string          `json:"week_start"`
	WeeklyProfit      decimal.Decimal `json:"weekly_profit"`
	RealizedProfit    decimal.Decimal `json:"realized_profit"`
	PendingCommission decimal.Decimal `json:"pending_commission"`
	PastDue           []models.Order  `json:"past_due"`
	CurrentWeek       []models.Order  `json:"current_week"`
}

func newSummaryResponse(s settlement.Summary) summaryResponse {
	return summaryResponse{
		WeekStart:         s.WeekStart.Format("2006-01-02"),
		WeeklyProfit:      s.WeeklyProfit,
		RealizedProfit:    s.RealizedProfit,
		PendingCommission: s.PendingCommission,
		PastDue:           s.PastDue,
		CurrentWeek:       s.CurrentWeek,
	}
}

func (h *PayoutHandler) Summary(c *gin.Context) {
	s, err := h.payouts.Summary(c.Request.Context(), h.now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSummaryResponse(s))
}

func (h *PayoutHandler) TogglePaid(c *gin.Context) {
	s, err := h.payouts.TogglePaid(c.Request.Context(), c.Param("order_id"), h.now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSummaryResponse(s))
}

func (h *PayoutHandler) Document(c *gin.Context) {
	var buf bytes.Buffer
	name, err := h.payouts.Document(c.Request.Context(), h.now(), &buf)
	if err != nil {
		respondError(c, err)
		return
	}
	attachment(c, name)
	c.Data(http.StatusOK, report.DocumentMIMEType, buf.Bytes())
}

func (h *PayoutHandler) Export(c *gin.Context) {
	rel, err := gateway.ParseRelation(c.Param("relation"))
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	name, err := h.exports.Export(c.Request.Context(), rel, h.now(), &buf)
	if err != nil {
		respondError(c, err)
		return
	}
	attachment(c, name)
	c.Data(http.StatusOK, report.SnapshotMIMEType, buf.Bytes())
}

func (h *PayoutHandler) Clear(c *gin.Context) {
	rel, err := gateway.ParseRelation(c.Param("relation"))
	if err != nil {
		respondError(c, err)
		return
	}

	var req struct {
		Passphrase string `json:"passphrase"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	result, err := h.maintenance.Clear(c.Request.Context(), rel, req.Passphrase)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func attachment(c *gin.Context, name string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
}
