package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/jekabolt/creator-analytics/internal/entity"
	gerr "github.com/jekabolt/creator-analytics/internal/errors"
	"github.com/jekabolt/creator-analytics/internal/form"
)

// orderUpdateBody binds the live update payload.
type orderUpdateBody struct {
	form.OrderUpdateRequest
}

func (b *orderUpdateBody) Bind(r *http.Request) error {
	return b.Validate()
}

func (s *Server) getRevenueAnalytics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := form.RevenueFilterRequest{
		Period:               q.Get("period"),
		StartDate:            q.Get("startDate"),
		EndDate:              q.Get("endDate"),
		Occasion:             q.Get("occasionType"),
		IncludeSubscriptions: q.Get("includeSubscriptions"),
	}
	if req.Period == "" {
		req.Period = string(entity.Period30Days)
	}
	f, err := req.Filter(time.UTC)
	if err != nil {
		render.Render(w, r, errInvalidRequest(err))
		return
	}
	resp, err := s.analytics.GetRevenueAnalytics(r.Context(), chi.URLParam(r, "creatorId"), f)
	if err != nil {
		render.Render(w, r, errRenderer(r, err))
		return
	}
	render.JSON(w, r, resp)
}

func (s *Server) getAnalyticsSummary(w http.ResponseWriter, r *http.Request) {
	period := entity.Period(r.URL.Query().Get("period"))
	if period == "" {
		period = entity.Period30Days
	}
	if !period.Valid() || period == entity.PeriodCustom {
		render.Render(w, r, errRenderer(r, fmt.Errorf("summary period %q: %w", period, gerr.InvalidFilter)))
		return
	}
	sum, err := s.analytics.GetAnalyticsSummary(r.Context(), chi.URLParam(r, "creatorId"), period)
	if err != nil {
		render.Render(w, r, errRenderer(r, err))
		return
	}
	render.JSON(w, r, sum)
}

func (s *Server) postOrderUpdate(w http.ResponseWriter, r *http.Request) {
	body := &orderUpdateBody{}
	if err := render.Bind(r, body); err != nil {
		render.Render(w, r, errInvalidRequest(err))
		return
	}
	err := s.analytics.UpdateAnalyticsForOrder(r.Context(),
		chi.URLParam(r, "creatorId"),
		body.OrderID,
		body.Amount,
		body.Occasion,
		body.OrderDate,
	)
	if err != nil {
		render.Render(w, r, errRenderer(r, err))
		return
	}
	render.NoContent(w, r)
}

func (s *Server) postBackfill(w http.ResponseWriter, r *http.Request) {
	creatorId := chi.URLParam(r, "creatorId")
	if err := s.limiter.Check("backfill:" + creatorId); err != nil {
		render.Render(w, r, errRenderer(r, err))
		return
	}
	rep, err := s.analytics.ProcessHistoricalData(r.Context(), creatorId)
	if err != nil {
		render.Render(w, r, errRenderer(r, err))
		return
	}
	render.JSON(w, r, rep)
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	resp := &healthResponse{Status: "ok", Services: map[string]string{}, code: http.StatusOK}
	for name, p := range s.health {
		if err := p.Ping(ctx); err != nil {
			resp.Services[name] = err.Error()
			resp.Status = "degraded"
			resp.code = http.StatusServiceUnavailable
			continue
		}
		resp.Services[name] = "ok"
	}
	render.Render(w, r, resp)
}
