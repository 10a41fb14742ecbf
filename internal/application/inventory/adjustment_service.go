package inventory

import (
	"context"
	"strings"

	"github.com/erp/manufacturing/internal/application/retry"
	"github.com/erp/manufacturing/internal/domain/inventory"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/erp/manufacturing/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

var adjustmentWriters = shared.RoleSet{shared.RoleProduction, shared.RoleAdmin}

// AdjustmentService applies manual stock corrections and exposes the audit trail
type AdjustmentService struct {
	adjustmentRepo  inventory.InventoryAdjustmentRepository
	txScope         TransactionScope
	recorder        *AuditRecorder
	eventPublisher  shared.EventPublisher
	businessMetrics *telemetry.BusinessMetrics
	retryPolicy     retry.Policy
	logger          *zap.Logger
}

// NewAdjustmentService creates a new AdjustmentService
func NewAdjustmentService(
	adjustmentRepo inventory.InventoryAdjustmentRepository,
	txScope TransactionScope,
	recorder *AuditRecorder,
	logger *zap.Logger,
) *AdjustmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdjustmentService{
		adjustmentRepo: adjustmentRepo,
		txScope:        txScope,
		recorder:       recorder,
		retryPolicy:    retry.DefaultPolicy(),
		logger:         logger,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *AdjustmentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics recorder
func (s *AdjustmentService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// SetRetryPolicy overrides the transaction retry policy
func (s *AdjustmentService) SetRetryPolicy(policy retry.Policy) {
	s.retryPolicy = policy
}

// Adjust sets or shifts the stock of one material or product and records the
// change in the ledger, in one transaction. Stock never goes below zero.
func (s *AdjustmentService) Adjust(ctx context.Context, actor shared.Actor, input AdjustInput) (*AdjustmentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "inventory_adjustment", "adjust")
	defer span.End()

	if err := shared.Authorize(actor, adjustmentWriters); err != nil {
		return nil, err
	}
	if err := validateAdjustInput(input); err != nil {
		return nil, err
	}

	var (
		adj    *inventory.InventoryAdjustment
		events []shared.DomainEvent
	)
	err := retry.Do(ctx, s.retryPolicy, s.logger, "inventory_adjustment.adjust", func(ctx context.Context) error {
		adj, events = nil, nil
		return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			target, err := lockStockTarget(ctx, repos, input.EntityType, input.EntityID)
			if err != nil {
				return err
			}

			after := target.stock
			if input.NewQuantity != nil {
				after = *input.NewQuantity
			} else {
				after = after.Add(*input.Delta)
			}
			if after.IsNegative() {
				return shared.NewDomainError(shared.ErrInsufficientStock.Code,
					"Adjustment would drive stock below zero (current "+target.stock.String()+")")
			}
			if after.Equal(target.stock) {
				return shared.NewDomainError(shared.ErrInvalidInput.Code, "Adjustment does not change stock")
			}

			if err := target.moveTo(ctx, after); err != nil {
				return err
			}

			adj, err = s.recorder.Record(ctx, repos.AdjustmentRepo(), AuditEntry{
				EntityType: target.entityType,
				EntityID:   target.id,
				Type:       inventory.AdjustmentTypeManual,
				Before:     target.stock,
				After:      after,
				Reason:     input.Reason,
				Actor:      actor,
			})
			if err != nil {
				return err
			}

			if evt := target.thresholdEvent(after); evt != nil {
				events = append(events, evt)
			}
			return nil
		})
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publish(ctx, events)
	s.businessMetrics.RecordStockAdjustment(ctx, string(inventory.AdjustmentTypeManual))

	s.logger.Info("Stock adjusted manually",
		zap.String("entity_type", string(adj.EntityType)),
		zap.String("entity_id", adj.EntityID.String()),
		zap.String("before", adj.QuantityBefore.String()),
		zap.String("after", adj.QuantityAfter.String()),
		zap.String("actor_id", actor.ID.String()),
		zap.String("actor_role", actor.Role.String()),
	)

	resp := ToAdjustmentResponse(adj)
	return &resp, nil
}

// History lists the audit trail, newest first
func (s *AdjustmentService) History(ctx context.Context, actor shared.Actor, filter AdjustmentListFilter) (*shared.Paginated[AdjustmentResponse], error) {
	if err := shared.Authorize(actor, nil); err != nil {
		return nil, err
	}
	if filter.EntityType != "" && !filter.EntityType.IsValid() {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Entity type must be material or product")
	}

	domainFilter := inventory.AdjustmentFilter{
		Filter:         pageFilter(filter.Page, filter.PageSize),
		EntityType:     filter.EntityType,
		EntityID:       filter.EntityID,
		AdjustmentType: filter.AdjustmentType,
		ReferenceID:    filter.ReferenceID,
	}

	adjustments, err := s.adjustmentRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.adjustmentRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	page := shared.NewPaginated(ToAdjustmentResponses(adjustments), total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

func (s *AdjustmentService) publish(ctx context.Context, events []shared.DomainEvent) {
	publishEvents(ctx, s.eventPublisher, s.logger, events)
}

func validateAdjustInput(input AdjustInput) error {
	if (input.NewQuantity == nil) == (input.Delta == nil) {
		return shared.NewDomainError(shared.ErrInvalidInput.Code, "Exactly one of new_quantity and delta is required")
	}
	if input.NewQuantity != nil && input.NewQuantity.IsNegative() {
		return shared.NewDomainError(shared.ErrInvalidInput.Code, "New quantity cannot be negative")
	}
	if input.Delta != nil && input.Delta.IsZero() {
		return shared.NewDomainError(shared.ErrInvalidInput.Code, "Delta cannot be zero")
	}
	if strings.TrimSpace(input.Reason) == "" {
		return shared.NewDomainError(shared.ErrInvalidInput.Code, "Reason is required for manual adjustments")
	}
	return nil
}

// pageFilter builds a shared.Filter sorted newest first
func pageFilter(page, pageSize int) shared.Filter {
	filter := shared.DefaultFilter()
	if page > 0 {
		filter.Page = page
	}
	if pageSize > 0 {
		filter.PageSize = pageSize
	}
	return filter
}

// publishEvents publishes after commit. Failures are logged, never returned:
// the stock change is already durable.
func publishEvents(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, events []shared.DomainEvent) {
	if publisher == nil || len(events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		logger.Warn("Failed to publish domain events",
			zap.Int("count", len(events)),
			zap.Error(err),
		)
	}
}
