package inventory

import (
	"context"
	"fmt"

	"github.com/erp/manufacturing/internal/domain/inventory"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/erp/manufacturing/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// LowStockAlertHandler handles StockBelowThreshold events and forwards an
// alert to the configured notifier
type LowStockAlertHandler struct {
	logger          *zap.Logger
	notifier        StockAlertNotifier
	businessMetrics *telemetry.BusinessMetrics
}

// StockAlertNotifier is the interface for sending stock alerts
type StockAlertNotifier interface {
	// SendAlert sends a stock alert notification
	SendAlert(ctx context.Context, alert StockAlert) error
}

// StockAlert represents a stock level alert
type StockAlert struct {
	EntityType       string `json:"entity_type"`
	EntityID         string `json:"entity_id"`
	Name             string `json:"name"`
	CurrentQuantity  string `json:"current_quantity"`
	ReorderThreshold string `json:"reorder_threshold"`
	AlertType        string `json:"alert_type"` // "low_stock", "out_of_stock"
}

// NewLowStockAlertHandler creates a new handler for stock below threshold events
func NewLowStockAlertHandler(logger *zap.Logger) *LowStockAlertHandler {
	return &LowStockAlertHandler{
		logger: logger,
	}
}

// WithNotifier sets the notifier for sending alerts
func (h *LowStockAlertHandler) WithNotifier(notifier StockAlertNotifier) *LowStockAlertHandler {
	h.notifier = notifier
	return h
}

// WithBusinessMetrics sets the metrics recorder counting threshold crossings
func (h *LowStockAlertHandler) WithBusinessMetrics(bm *telemetry.BusinessMetrics) *LowStockAlertHandler {
	h.businessMetrics = bm
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *LowStockAlertHandler) EventTypes() []string {
	return []string{inventory.EventTypeStockBelowThreshold}
}

// Handle processes a StockBelowThresholdEvent
func (h *LowStockAlertHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	thresholdEvent, ok := event.(*inventory.StockBelowThresholdEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", inventory.EventTypeStockBelowThreshold),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			inventory.EventTypeStockBelowThreshold, event.EventType())
	}

	alertType := "low_stock"
	if thresholdEvent.Stock.IsZero() {
		alertType = "out_of_stock"
	}

	h.logger.Warn("stock below threshold detected",
		zap.String("entity_type", string(thresholdEvent.EntityType)),
		zap.String("entity_id", thresholdEvent.EntityID.String()),
		zap.String("name", thresholdEvent.Name),
		zap.String("stock", thresholdEvent.Stock.String()),
		zap.String("reorder_threshold", thresholdEvent.ReorderThreshold.String()),
	)
	h.businessMetrics.RecordLowStock(ctx, string(thresholdEvent.EntityType), alertType)

	alert := StockAlert{
		EntityType:       string(thresholdEvent.EntityType),
		EntityID:         thresholdEvent.EntityID.String(),
		Name:             thresholdEvent.Name,
		CurrentQuantity:  thresholdEvent.Stock.String(),
		ReorderThreshold: thresholdEvent.ReorderThreshold.String(),
		AlertType:        alertType,
	}

	if h.notifier != nil {
		if err := h.notifier.SendAlert(ctx, alert); err != nil {
			h.logger.Error("failed to send stock alert notification",
				zap.String("entity_id", alert.EntityID),
				zap.Error(err),
			)
			// Notification failure shouldn't fail the event handling
		}
	}

	return nil
}

// Ensure LowStockAlertHandler implements shared.EventHandler
var _ shared.EventHandler = (*LowStockAlertHandler)(nil)

// LoggingStockAlertNotifier is a simple notifier that logs alerts
type LoggingStockAlertNotifier struct {
	logger *zap.Logger
}

// NewLoggingStockAlertNotifier creates a new logging notifier
func NewLoggingStockAlertNotifier(logger *zap.Logger) *LoggingStockAlertNotifier {
	return &LoggingStockAlertNotifier{
		logger: logger,
	}
}

// SendAlert logs the stock alert
func (n *LoggingStockAlertNotifier) SendAlert(ctx context.Context, alert StockAlert) error {
	n.logger.Warn("STOCK ALERT",
		zap.String("type", alert.AlertType),
		zap.String("entity_type", alert.EntityType),
		zap.String("entity_id", alert.EntityID),
		zap.String("name", alert.Name),
		zap.String("current_qty", alert.CurrentQuantity),
		zap.String("reorder_threshold", alert.ReorderThreshold),
	)
	return nil
}

// Ensure LoggingStockAlertNotifier implements StockAlertNotifier
var _ StockAlertNotifier = (*LoggingStockAlertNotifier)(nil)
