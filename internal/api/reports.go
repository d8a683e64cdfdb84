package api

import (
	"context"

	"github.com/devilmonastery/eventdesk/internal/client"
	"github.com/devilmonastery/eventdesk/internal/domain/entities"
)

const reportsPath = "/api/reports"

// ReportService reads aggregated reports
type ReportService struct {
	c *client.Client
}

// Revenue returns monthly income and expenses between from and to
func (s *ReportService) Revenue(ctx context.Context, from, to string) (*entities.RevenueReport, error) {
	r := DateRange{From: from, To: to}
	return client.Get[*entities.RevenueReport](ctx, s.c, reportsPath+"/revenue", r.apply(nil))
}

// Bookings returns booking counts by status and event type between from and to
func (s *ReportService) Bookings(ctx context.Context, from, to string) (*entities.BookingReport, error) {
	r := DateRange{From: from, To: to}
	return client.Get[*entities.BookingReport](ctx, s.c, reportsPath+"/bookings", r.apply(nil))
}
