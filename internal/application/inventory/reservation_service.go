package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/erp/manufacturing/internal/application/retry"
	"github.com/erp/manufacturing/internal/domain/catalog"
	"github.com/erp/manufacturing/internal/domain/inventory"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/erp/manufacturing/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var reservationWriters = shared.RoleSet{shared.RoleFulfillment, shared.RoleAdmin}

// DefaultSweepBatchSize bounds how many expired reservations are deleted per statement
const DefaultSweepBatchSize = 500

// ReservationService maintains product reservations and available-to-promise
type ReservationService struct {
	productRepo       catalog.ProductRepository
	reservationRepo   inventory.StockReservationRepository
	txScope           TransactionScope
	recorder          *AuditRecorder
	eventPublisher    shared.EventPublisher
	businessMetrics   *telemetry.BusinessMetrics
	retryPolicy       retry.Policy
	defaultExpiration time.Duration
	sweepBatchSize    int
	logger            *zap.Logger
}

// NewReservationService creates a new ReservationService
func NewReservationService(
	productRepo catalog.ProductRepository,
	reservationRepo inventory.StockReservationRepository,
	txScope TransactionScope,
	recorder *AuditRecorder,
	logger *zap.Logger,
) *ReservationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReservationService{
		productRepo:     productRepo,
		reservationRepo: reservationRepo,
		txScope:         txScope,
		recorder:        recorder,
		retryPolicy:     retry.DefaultPolicy(),
		sweepBatchSize:  DefaultSweepBatchSize,
		logger:          logger,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *ReservationService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics recorder
func (s *ReservationService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// SetRetryPolicy overrides the transaction retry policy
func (s *ReservationService) SetRetryPolicy(policy retry.Policy) {
	s.retryPolicy = policy
}

// SetDefaultExpiration sets the expiry applied to manual reservations created without one.
// Zero means manual reservations never expire.
func (s *ReservationService) SetDefaultExpiration(d time.Duration) {
	s.defaultExpiration = d
}

// SetSweepBatchSize sets the batch size used by ReleaseExpired
func (s *ReservationService) SetSweepBatchSize(n int) {
	if n > 0 {
		s.sweepBatchSize = n
	}
}

// Reserve holds quantity of a product. The product row is locked, ATP is
// recomputed from live stock and active reservations, and the reservation is
// inserted only if it fits.
func (s *ReservationService) Reserve(ctx context.Context, actor shared.Actor, input ReserveInput) (*ReserveResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "reservation", "reserve")
	defer span.End()

	if err := shared.Authorize(actor, reservationWriters); err != nil {
		return nil, err
	}

	resType := input.Type
	if resType == "" {
		resType = inventory.ReservationTypeManual
		if input.OrderRef != "" {
			resType = inventory.ReservationTypeOrder
		}
	}
	expiresAt := input.ExpiresAt
	if expiresAt == nil && resType == inventory.ReservationTypeManual && s.defaultExpiration > 0 {
		t := time.Now().Add(s.defaultExpiration)
		expiresAt = &t
	}

	reservation, err := inventory.NewStockReservation(
		input.ProductID,
		input.Quantity,
		resType,
		strings.TrimSpace(input.OrderRef),
		strings.TrimSpace(input.OrderLineRef),
		expiresAt,
		actor.ID,
	)
	if err != nil {
		return nil, err
	}

	var atp inventory.AvailableToPromise
	err = retry.Do(ctx, s.retryPolicy, s.logger, "reservation.reserve", func(ctx context.Context) error {
		return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			product, err := repos.ProductRepo().FindByIDForUpdate(ctx, reservation.ProductID)
			if err != nil {
				return err
			}

			reserved, err := repos.ReservationRepo().SumActive(ctx, product.ID, time.Now())
			if err != nil {
				return err
			}

			atp = inventory.NewAvailableToPromise(product.ID, product.Stock, reserved)
			if !atp.CanPromise(reservation.Quantity) {
				return shared.NewDomainError(shared.ErrInsufficientStock.Code,
					"Requested "+reservation.Quantity.String()+" exceeds available-to-promise "+atp.Available.String())
			}

			return repos.ReservationRepo().Create(ctx, reservation)
		})
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	atp = inventory.NewAvailableToPromise(atp.ProductID, atp.Stock, atp.Reserved.Add(reservation.Quantity))
	publishEvents(ctx, s.eventPublisher, s.logger, []shared.DomainEvent{inventory.NewStockReservedEvent(reservation)})
	s.businessMetrics.RecordReservation(ctx, string(reservation.ReservationType))

	s.logger.Info("Stock reserved",
		zap.String("reservation_id", reservation.ID.String()),
		zap.String("product_id", reservation.ProductID.String()),
		zap.String("quantity", reservation.Quantity.String()),
		zap.String("order_ref", reservation.OrderRef),
		zap.String("available_after", atp.Available.String()),
	)

	return &ReserveResult{
		Reservation: ToReservationResponse(reservation),
		ATP:         atp,
	}, nil
}

// Release deletes a reservation
func (s *ReservationService) Release(ctx context.Context, actor shared.Actor, reservationID uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "reservation", "release")
	defer span.End()

	if err := shared.Authorize(actor, reservationWriters); err != nil {
		return err
	}

	reservation, err := s.reservationRepo.FindByID(ctx, reservationID)
	if err != nil {
		return err
	}
	if err := s.reservationRepo.Delete(ctx, reservationID); err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	publishEvents(ctx, s.eventPublisher, s.logger, []shared.DomainEvent{
		inventory.NewReservationReleasedEvent(reservation, inventory.ReleaseReasonExplicit),
	})
	s.businessMetrics.RecordReservationsReleased(ctx, string(inventory.ReleaseReasonExplicit), 1)
	return nil
}

// ReleaseByOrder deletes every reservation held for an order and returns how many went away
func (s *ReservationService) ReleaseByOrder(ctx context.Context, actor shared.Actor, orderRef string) (int64, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "reservation", "release_by_order")
	defer span.End()

	if err := shared.Authorize(actor, reservationWriters); err != nil {
		return 0, err
	}
	orderRef = strings.TrimSpace(orderRef)
	if orderRef == "" {
		return 0, shared.NewDomainError(shared.ErrInvalidInput.Code, "Order reference is required")
	}

	reservations, err := s.reservationRepo.FindByOrder(ctx, orderRef)
	if err != nil {
		return 0, err
	}
	if len(reservations) == 0 {
		return 0, nil
	}

	released, err := s.reservationRepo.DeleteByIDs(ctx, reservationIDs(reservations))
	if err != nil {
		telemetry.RecordError(span, err)
		return 0, err
	}

	publishEvents(ctx, s.eventPublisher, s.logger, releasedEvents(reservations, inventory.ReleaseReasonOrder))
	s.businessMetrics.RecordReservationsReleased(ctx, string(inventory.ReleaseReasonOrder), released)

	s.logger.Info("Released reservations for order",
		zap.String("order_ref", orderRef),
		zap.Int64("count", released),
	)
	return released, nil
}

// Fulfill consumes a reservation: product stock is decremented, the
// order_fulfillment adjustment is recorded, and the reservation is deleted.
// Expired reservations fail with RESERVATION_EXPIRED.
func (s *ReservationService) Fulfill(ctx context.Context, actor shared.Actor, reservationID uuid.UUID) (*FulfillmentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "reservation", "fulfill")
	defer span.End()

	if err := shared.Authorize(actor, reservationWriters); err != nil {
		return nil, err
	}

	var (
		reservation *inventory.StockReservation
		adj         *inventory.InventoryAdjustment
		events      []shared.DomainEvent
	)
	err := retry.Do(ctx, s.retryPolicy, s.logger, "reservation.fulfill", func(ctx context.Context) error {
		events = nil
		return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			var err error
			reservation, err = repos.ReservationRepo().FindByID(ctx, reservationID)
			if err != nil {
				return err
			}

			target, err := lockStockTarget(ctx, repos, inventory.EntityTypeProduct, reservation.ProductID)
			if err != nil {
				return err
			}
			// An expired reservation no longer counts toward ATP; its stock may be promised elsewhere.
			if reservation.IsExpired() {
				return inventory.ErrReservationExpired
			}
			after := target.stock.Sub(reservation.Quantity)
			if err := target.repo.DecrementStock(ctx, target.id, reservation.Quantity); err != nil {
				return err
			}

			adj, err = s.recorder.Record(ctx, repos.AdjustmentRepo(), AuditEntry{
				EntityType:    inventory.EntityTypeProduct,
				EntityID:      target.id,
				Type:          inventory.AdjustmentTypeOrderFulfillment,
				Before:        target.stock,
				After:         after,
				Reason:        fulfillmentReason(reservation),
				Actor:         actor,
				ReferenceType: inventory.ReferenceTypeReservation,
				ReferenceID:   reservation.ID,
			})
			if err != nil {
				return err
			}

			if err := repos.ReservationRepo().Delete(ctx, reservation.ID); err != nil {
				return err
			}

			events = append(events, inventory.NewReservationReleasedEvent(reservation, inventory.ReleaseReasonFulfilled))
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

	publishEvents(ctx, s.eventPublisher, s.logger, events)
	s.businessMetrics.RecordReservationsReleased(ctx, string(inventory.ReleaseReasonFulfilled), 1)
	s.businessMetrics.RecordStockAdjustment(ctx, string(inventory.AdjustmentTypeOrderFulfillment))

	return &FulfillmentResponse{
		ReservationID: reservation.ID,
		ProductID:     reservation.ProductID,
		Quantity:      reservation.Quantity,
		Adjustment:    ToAdjustmentResponse(adj),
	}, nil
}

// ATP returns stock, active reservations and available-to-promise for a product.
// The read is unlocked and may be stale by the time it is displayed.
func (s *ReservationService) ATP(ctx context.Context, actor shared.Actor, productID uuid.UUID) (*inventory.AvailableToPromise, error) {
	if err := shared.Authorize(actor, nil); err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	reserved, err := s.reservationRepo.SumActive(ctx, product.ID, time.Now())
	if err != nil {
		return nil, err
	}

	atp := inventory.NewAvailableToPromise(product.ID, product.Stock, reserved)
	return &atp, nil
}

// ListByProduct lists a product's reservations, including expired ones not yet swept
func (s *ReservationService) ListByProduct(ctx context.Context, actor shared.Actor, productID uuid.UUID) ([]ReservationResponse, error) {
	if err := shared.Authorize(actor, nil); err != nil {
		return nil, err
	}
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}

	reservations, err := s.reservationRepo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return ToReservationResponses(reservations), nil
}

// ReleaseExpired deletes expired reservations in batches and publishes a
// ReservationReleased event for each. Expired reservations already stop
// counting against ATP; the sweep only reclaims the rows.
func (s *ReservationService) ReleaseExpired(ctx context.Context) (*ReleaseStats, error) {
	stats := &ReleaseStats{ProcessedAt: time.Now()}

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		expired, err := s.reservationRepo.FindExpired(ctx, stats.ProcessedAt, s.sweepBatchSize)
		if err != nil {
			s.logger.Error("Failed to find expired reservations", zap.Error(err))
			return stats, err
		}
		if len(expired) == 0 {
			break
		}

		released, err := s.reservationRepo.DeleteByIDs(ctx, reservationIDs(expired))
		if err != nil {
			s.logger.Error("Failed to delete expired reservations", zap.Error(err))
			return stats, err
		}

		stats.Batches++
		stats.TotalExpired += len(expired)
		stats.Released += released
		publishEvents(ctx, s.eventPublisher, s.logger, releasedEvents(expired, inventory.ReleaseReasonExpired))

		if len(expired) < s.sweepBatchSize || released == 0 {
			break
		}
	}

	if stats.TotalExpired == 0 {
		s.logger.Debug("No expired reservations found")
		return stats, nil
	}

	s.businessMetrics.RecordReservationsReleased(ctx, string(inventory.ReleaseReasonExpired), stats.Released)
	s.logger.Info("Completed expired reservation sweep",
		zap.Int("expired", stats.TotalExpired),
		zap.Int64("released", stats.Released),
		zap.Int("batches", stats.Batches),
	)
	return stats, nil
}

func reservationIDs(rs []inventory.StockReservation) []uuid.UUID {
	ids := make([]uuid.UUID, len(rs))
	for i := range rs {
		ids[i] = rs[i].ID
	}
	return ids
}

func releasedEvents(rs []inventory.StockReservation, reason inventory.ReleaseReason) []shared.DomainEvent {
	events := make([]shared.DomainEvent, len(rs))
	for i := range rs {
		events[i] = inventory.NewReservationReleasedEvent(&rs[i], reason)
	}
	return events
}

func fulfillmentReason(r *inventory.StockReservation) string {
	if r.OrderRef == "" {
		return "Reservation fulfilled"
	}
	reason := "Fulfilled order " + r.OrderRef
	if r.OrderLineRef != "" {
		reason += " line " + r.OrderLineRef
	}
	return reason
}
