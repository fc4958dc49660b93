package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"budget-advisor/backend/internal/ai"
	"budget-advisor/backend/internal/budget"
	"budget-advisor/backend/internal/strategy"
)

// handleRecommend is the single recommendation operation: validate, resolve
// status, short-circuit safe statuses locally, delegate the rest to the
// completion advisor, and normalize whatever comes back.
func (s *Server) handleRecommend(c *gin.Context) {
	var req RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderError(c, http.StatusBadRequest, fmt.Errorf("invalid json payload: %w", err))
		return
	}

	division := strings.TrimSpace(req.Division)
	if division == "" {
		s.renderError(c, http.StatusBadRequest, errors.New("Division is required"))
		return
	}
	category := strings.TrimSpace(req.Category)
	if category == "" {
		s.renderError(c, http.StatusBadRequest, errors.New("Category is required"))
		return
	}
	if !req.amountPresent() {
		s.renderError(c, http.StatusBadRequest, errors.New("Amount is required"))
		return
	}
	// A non-numeric Amount coerces to n/a rather than rejecting; the sheet
	// occasionally sends free text here.
	amount := req.amount()

	status, complete := budget.ResolveStatus(req.Status, req.VariancePct, req.AllowedVariancePct)
	tolerance := budget.ToleranceFor(req.AllowedVariancePct)
	summary := budget.Summary(req.budgetContext(status))

	log := logrus.WithFields(logrus.Fields{
		"request_id": requestID(c),
		"division":   division,
		"category":   category,
		"status":     status,
		"tolerance":  tolerance,
	})

	if !s.policy.Delegates(status, complete) {
		action, impact := budget.Fallback(status)
		resp := NewRecommendResponse(summary, tolerance, action, impact)
		log.WithField("action", action).Info("recommendation resolved locally")
		s.broadcast(c, status, resp, false)
		c.JSON(http.StatusOK, resp)
		return
	}

	if s.advisor == nil || !s.advisor.Enabled() {
		s.renderError(c, http.StatusInternalServerError, errors.New("completion API credential not configured"))
		return
	}

	strategyText, strategySource := strategy.Resolve(req.StrategyOverride, s.strategyEnv)
	input := ai.AdviceInput{
		Division:           division,
		Category:           category,
		VendorSource:       req.VendorSource,
		Amount:             amount,
		Notes:              req.Notes,
		VarianceSummary:    summary,
		Status:             status,
		Tolerance:          tolerance,
		HeadroomCandidates: req.headroomCandidates(),
		Strategy:           strategyText,
		AllowedActions:     s.policy.AllowedActions(),
	}

	start := time.Now()
	decision, err := s.advisor.Advise(c.Request.Context(), input)
	if err != nil {
		var upstream *ai.UpstreamError
		if errors.As(err, &upstream) {
			log.WithField("upstream_status", upstream.StatusCode).Warn("completion service returned an error")
			s.renderUpstreamError(c, upstream)
			return
		}
		log.WithError(err).Warn("completion service unreachable")
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "completion service unreachable",
			"status":  http.StatusBadGateway,
			"details": err.Error(),
		})
		return
	}

	fallbackAction, fallbackImpact := budget.Fallback(status)
	resp := RecommendResponse{
		VarianceSummary: decision.VarianceSummary,
		AITolerance:     decision.AITolerance,
		AIAction:        decision.AIAction,
		ExpectedImpact:  decision.ExpectedImpact,
	}
	if resp.VarianceSummary == "" {
		resp.VarianceSummary = summary
	}
	if resp.AITolerance == "" {
		resp.AITolerance = string(tolerance)
	}
	if resp.AIAction == "" {
		resp.AIAction = string(fallbackAction)
	}
	if resp.ExpectedImpact == "" {
		resp.ExpectedImpact = fallbackImpact
	}
	resp.LegacySummary = resp.VarianceSummary
	resp.LegacyTolerance = resp.AITolerance
	resp.LegacyRecommendation = resp.AIAction

	log.WithFields(logrus.Fields{
		"action":          resp.AIAction,
		"strategy_source": strategySource,
		"duration_ms":     time.Since(start).Milliseconds(),
	}).Info("recommendation delegated to completion advisor")

	s.broadcast(c, status, resp, true)
	c.JSON(http.StatusOK, resp)
}

func (s *Server) broadcast(c *gin.Context, status budget.Status, resp RecommendResponse, delegated bool) {
	if s.notifier == nil {
		return
	}
	event := resp
	s.notifier.Broadcast(RecommendationEvent{
		Type:           "recommendation",
		RequestID:      requestID(c),
		Status:         string(status),
		Delegated:      delegated,
		Recommendation: &event,
	})
}
