package telemetry

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when a metrics recorder is built without a meter.
var ErrMeterNil = errors.New("telemetry: meter is nil")

// BusinessMetrics counts production and inventory activity. A nil
// *BusinessMetrics is valid and records nothing, so services can hold one
// unconditionally.
type BusinessMetrics struct {
	requestsCreated      *Counter
	requestsCompleted    *Counter
	completionsRejected  *Counter
	stockAdjustments     *Counter
	reservationsCreated  *Counter
	reservationsReleased *Counter
	lowStockAlerts       *Counter
}

// NewBusinessMetrics registers the mfg_* instruments on meter.
func NewBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	bm := &BusinessMetrics{}
	counters := []struct {
		dst              **Counter
		name, desc, unit string
	}{
		{&bm.requestsCreated, "mfg_production_request_created_total", "Production requests created, by material sufficiency", "{requests}"},
		{&bm.requestsCompleted, "mfg_production_request_completed_total", "Production requests completed", "{requests}"},
		{&bm.completionsRejected, "mfg_production_completion_rejected_total", "Completion attempts rejected, by error code", "{attempts}"},
		{&bm.stockAdjustments, "mfg_stock_adjustment_total", "Inventory adjustments written, by type", "{adjustments}"},
		{&bm.reservationsCreated, "mfg_reservation_created_total", "Stock reservations created, by type", "{reservations}"},
		{&bm.reservationsReleased, "mfg_reservation_released_total", "Stock reservations released, by reason", "{reservations}"},
		{&bm.lowStockAlerts, "mfg_low_stock_alert_total", "Low-stock threshold crossings, by entity and alert type", "{alerts}"},
	}
	for _, c := range counters {
		counter, err := NewCounter(meter, c.name, c.desc, c.unit)
		if err != nil {
			return nil, err
		}
		*c.dst = counter
	}
	return bm, nil
}

func (bm *BusinessMetrics) RecordRequestCreated(ctx context.Context, sufficient bool) {
	if bm == nil {
		return
	}
	outcome := "shortage"
	if sufficient {
		outcome = "sufficient"
	}
	bm.requestsCreated.Inc(ctx, AttrOutcome.String(outcome))
}

func (bm *BusinessMetrics) RecordRequestCompleted(ctx context.Context) {
	if bm == nil {
		return
	}
	bm.requestsCompleted.Inc(ctx)
}

func (bm *BusinessMetrics) RecordCompletionRejected(ctx context.Context, code string) {
	if bm == nil {
		return
	}
	bm.completionsRejected.Inc(ctx, AttrErrorCode.String(code))
}

func (bm *BusinessMetrics) RecordStockAdjustment(ctx context.Context, adjustmentType string) {
	if bm == nil {
		return
	}
	bm.stockAdjustments.Inc(ctx, AttrAdjustmentType.String(adjustmentType))
}

func (bm *BusinessMetrics) RecordReservation(ctx context.Context, reservationType string) {
	if bm == nil {
		return
	}
	bm.reservationsCreated.Inc(ctx, AttrReservationType.String(reservationType))
}

func (bm *BusinessMetrics) RecordReservationsReleased(ctx context.Context, reason string, count int64) {
	if bm == nil || count <= 0 {
		return
	}
	bm.reservationsReleased.Add(ctx, count, AttrReleaseReason.String(reason))
}

func (bm *BusinessMetrics) RecordLowStock(ctx context.Context, entityType, alertType string) {
	if bm == nil {
		return
	}
	bm.lowStockAlerts.Inc(ctx, AttrEntityType.String(entityType), AttrAlertType.String(alertType))
}
