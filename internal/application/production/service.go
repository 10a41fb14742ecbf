package production

import (
	"context"
	"errors"
	"strings"

	invapp "github.com/erp/manufacturing/internal/application/inventory"
	"github.com/erp/manufacturing/internal/application/retry"
	"github.com/erp/manufacturing/internal/domain/catalog"
	"github.com/erp/manufacturing/internal/domain/inventory"
	"github.com/erp/manufacturing/internal/domain/production"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/erp/manufacturing/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	requestCreators   = shared.RoleSet{shared.RoleFulfillment, shared.RoleAdmin}
	requestOperators  = shared.RoleSet{shared.RoleProduction, shared.RoleAdmin}
	requestCancellers = shared.RoleSet{shared.RoleFulfillment, shared.RoleProduction, shared.RoleAdmin}
)

// Service manages the lifecycle of production requests and applies their
// inventory effect on completion
type Service struct {
	requestRepo     production.ProductionRequestRepository
	txScope         TransactionScope
	recorder        *invapp.AuditRecorder
	eventPublisher  shared.EventPublisher
	businessMetrics *telemetry.BusinessMetrics
	retryPolicy     retry.Policy
	logger          *zap.Logger
}

// NewService creates a new production request service
func NewService(
	requestRepo production.ProductionRequestRepository,
	txScope TransactionScope,
	recorder *invapp.AuditRecorder,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		requestRepo: requestRepo,
		txScope:     txScope,
		recorder:    recorder,
		retryPolicy: retry.DefaultPolicy(),
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics recorder
func (s *Service) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// SetRetryPolicy overrides the transaction retry policy
func (s *Service) SetRetryPolicy(policy retry.Policy) {
	s.retryPolicy = policy
}

// Create expands the product's recipe, checks availability against current
// stock, and persists a pending request with its material snapshot.
// An insufficient report does not prevent creation: the check is advisory
// and is repeated under lock when the request is completed.
func (s *Service) Create(ctx context.Context, actor shared.Actor, input CreateRequestInput) (*CreateRequestResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "production_request", "create")
	defer span.End()

	if err := shared.Authorize(actor, requestCreators); err != nil {
		return nil, err
	}
	if !input.Quantity.IsPositive() {
		return nil, production.ErrInvalidQuantity
	}

	var (
		req    *production.ProductionRequest
		report production.AvailabilityReport
	)
	err := retry.Do(ctx, s.retryPolicy, s.logger, "production_request.create", func(ctx context.Context) error {
		req = nil
		return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			var err error
			report, err = s.evaluate(ctx, repos, input.ProductID, input.Quantity)
			if err != nil {
				return err
			}

			req, err = production.NewProductionRequest(input.ProductID, input.Quantity, actor.ID, strings.TrimSpace(input.Notes), report)
			if err != nil {
				return err
			}
			return repos.RequestRepo().Create(ctx, req)
		})
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publish(ctx, req)
	s.businessMetrics.RecordRequestCreated(ctx, report.Sufficient)

	s.logger.Info("Production request created",
		zap.String("request_id", req.ID.String()),
		zap.String("product_id", req.ProductID.String()),
		zap.String("quantity", req.QuantityRequested.String()),
		zap.Bool("sufficient", report.Sufficient),
		zap.String("actor_id", actor.ID.String()),
	)

	return &CreateRequestResult{
		Request:      ToRequestResponse(req),
		Availability: ToAvailabilityResponse(report),
	}, nil
}

// Preview runs the expansion and the availability check without writing anything
func (s *Service) Preview(ctx context.Context, actor shared.Actor, productID uuid.UUID, quantity decimal.Decimal) (*PreviewResult, error) {
	if err := shared.Authorize(actor, nil); err != nil {
		return nil, err
	}
	if !quantity.IsPositive() {
		return nil, production.ErrInvalidQuantity
	}

	var report production.AvailabilityReport
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		report, err = s.evaluate(ctx, repos, productID, quantity)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &PreviewResult{
		ProductID:    productID,
		Quantity:     quantity,
		Availability: ToAvailabilityResponse(report),
	}, nil
}

// evaluate expands the recipe and checks it against an unlocked stock read
func (s *Service) evaluate(ctx context.Context, repos TransactionalRepositories, productID uuid.UUID, quantity decimal.Decimal) (production.AvailabilityReport, error) {
	if _, err := repos.ProductRepo().FindByID(ctx, productID); err != nil {
		return production.AvailabilityReport{}, err
	}

	lines, err := repos.BOMRepo().FindByProduct(ctx, productID)
	if err != nil {
		return production.AvailabilityReport{}, err
	}
	requirements, err := production.Expand(productID, lines, quantity)
	if err != nil {
		return production.AvailabilityReport{}, err
	}

	materials, err := repos.MaterialRepo().FindByIDs(ctx, production.MaterialIDs(requirements))
	if err != nil {
		return production.AvailabilityReport{}, err
	}
	return production.Check(requirements, production.NewStockSnapshot(materials))
}

// Start moves a pending request to in_progress. It has no inventory effect.
func (s *Service) Start(ctx context.Context, actor shared.Actor, id uuid.UUID) (*RequestResponse, error) {
	return s.transition(ctx, actor, requestOperators, id, "start", func(req *production.ProductionRequest) error {
		return req.Start()
	})
}

// Cancel abandons a pending or in-progress request. It has no inventory effect.
func (s *Service) Cancel(ctx context.Context, actor shared.Actor, id uuid.UUID, reason string) (*RequestResponse, error) {
	reason = strings.TrimSpace(reason)
	if len(reason) > 500 {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Cancel reason cannot exceed 500 characters")
	}
	return s.transition(ctx, actor, requestCancellers, id, "cancel", func(req *production.ProductionRequest) error {
		return req.Cancel(reason)
	})
}

// transition applies a state change with no inventory effect under the request row lock
func (s *Service) transition(
	ctx context.Context,
	actor shared.Actor,
	allowed shared.RoleSet,
	id uuid.UUID,
	method string,
	apply func(req *production.ProductionRequest) error,
) (*RequestResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "production_request", method)
	defer span.End()

	if err := shared.Authorize(actor, allowed); err != nil {
		return nil, err
	}

	var req *production.ProductionRequest
	err := retry.Do(ctx, s.retryPolicy, s.logger, "production_request."+method, func(ctx context.Context) error {
		req = nil
		return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			var err error
			req, err = repos.RequestRepo().FindByIDForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if err := apply(req); err != nil {
				return err
			}
			return repos.RequestRepo().SaveWithLock(ctx, req)
		})
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publish(ctx, req)
	s.logger.Info("Production request "+method,
		zap.String("request_id", req.ID.String()),
		zap.String("status", string(req.Status)),
		zap.String("actor_id", actor.ID.String()),
	)

	resp := ToRequestResponse(req)
	return &resp, nil
}

// Complete consumes the request's materials and credits the product in a
// single transaction. The materials are locked in ID order and checked
// against live stock; if anything is short the transaction is abandoned with
// an *InsufficientMaterialsError listing every shortage and nothing is written.
// A request that is already completed fails with ALREADY_COMPLETED without writes.
func (s *Service) Complete(ctx context.Context, actor shared.Actor, id uuid.UUID) (*RequestResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "production_request", "complete")
	defer span.End()

	if err := shared.Authorize(actor, requestOperators); err != nil {
		return nil, err
	}

	var (
		req    *production.ProductionRequest
		events []shared.DomainEvent
	)
	err := retry.Do(ctx, s.retryPolicy, s.logger, "production_request.complete", func(ctx context.Context) error {
		req, events = nil, nil
		return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			var err error
			req, err = repos.RequestRepo().FindByIDForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if err := req.EnsureCompletable(); err != nil {
				return err
			}

			events, err = s.consume(ctx, repos, actor, req)
			if err != nil {
				return err
			}

			if err := req.Complete(actor.ID); err != nil {
				return err
			}
			return repos.RequestRepo().SaveWithLock(ctx, req)
		})
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.businessMetrics.RecordCompletionRejected(ctx, shared.ErrorCode(err))
		s.logCompletionFailure(id, actor, err)
		return nil, err
	}

	s.publish(ctx, req)
	publishEvents(ctx, s.eventPublisher, s.logger, events)
	s.businessMetrics.RecordRequestCompleted(ctx)

	s.logger.Info("Production request completed",
		zap.String("request_id", req.ID.String()),
		zap.String("product_id", req.ProductID.String()),
		zap.String("quantity", req.QuantityRequested.String()),
		zap.Int("materials", len(req.Materials)),
		zap.String("actor_id", actor.ID.String()),
	)

	resp := ToRequestResponse(req)
	return &resp, nil
}

// consume re-checks availability under lock, decrements every material,
// credits the product and records one audit row per stock change.
// It returns the low-stock events to publish after commit.
func (s *Service) consume(ctx context.Context, repos TransactionalRepositories, actor shared.Actor, req *production.ProductionRequest) ([]shared.DomainEvent, error) {
	requirements := req.Requirements()

	materials, err := repos.MaterialRepo().FindByIDsForUpdate(ctx, production.MaterialIDs(requirements))
	if err != nil {
		return nil, err
	}
	report, err := production.Check(requirements, production.NewStockSnapshot(materials))
	if err != nil {
		return nil, err
	}
	if err := report.Err(); err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]catalog.Material, len(materials))
	for _, m := range materials {
		byID[m.ID] = m
	}

	var events []shared.DomainEvent
	for _, line := range report.PerMaterial {
		if err := repos.MaterialRepo().DecrementStock(ctx, line.MaterialID, line.Required); err != nil {
			if errors.Is(err, shared.ErrInsufficientStock) {
				line.Sufficient = false
				return nil, production.NewInsufficientMaterialsError([]production.MaterialAvailability{line})
			}
			return nil, err
		}

		after := line.Available.Sub(line.Required)
		_, err := s.recorder.Record(ctx, repos.AdjustmentRepo(), invapp.AuditEntry{
			EntityType:    inventory.EntityTypeMaterial,
			EntityID:      line.MaterialID,
			Type:          inventory.AdjustmentTypeProductionConsumption,
			Before:        line.Available,
			After:         after,
			Reason:        "Consumed by production request " + req.ID.String(),
			Actor:         actor,
			ReferenceType: inventory.ReferenceTypeProductionRequest,
			ReferenceID:   req.ID,
		})
		if err != nil {
			return nil, err
		}

		m := byID[line.MaterialID]
		if inventory.CrossedThreshold(line.Available, after, m.ReorderThreshold) {
			events = append(events, inventory.NewStockBelowThresholdEvent(inventory.EntityTypeMaterial, m.ID, m.Name, after, m.ReorderThreshold))
		}
	}

	product, err := repos.ProductRepo().FindByIDForUpdate(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if err := repos.ProductRepo().IncrementStock(ctx, product.ID, req.QuantityRequested); err != nil {
		return nil, err
	}
	_, err = s.recorder.Record(ctx, repos.AdjustmentRepo(), invapp.AuditEntry{
		EntityType:    inventory.EntityTypeProduct,
		EntityID:      product.ID,
		Type:          inventory.AdjustmentTypeProductionOutput,
		Before:        product.Stock,
		After:         product.Stock.Add(req.QuantityRequested),
		Reason:        "Produced by production request " + req.ID.String(),
		Actor:         actor,
		ReferenceType: inventory.ReferenceTypeProductionRequest,
		ReferenceID:   req.ID,
	})
	if err != nil {
		return nil, err
	}

	return events, nil
}

func (s *Service) logCompletionFailure(id uuid.UUID, actor shared.Actor, err error) {
	fields := []zap.Field{
		zap.String("request_id", id.String()),
		zap.String("actor_id", actor.ID.String()),
		zap.String("code", shared.ErrorCode(err)),
	}
	var shortage *production.InsufficientMaterialsError
	if errors.As(err, &shortage) {
		fields = append(fields, zap.Int("short_materials", len(shortage.Shortages)))
		s.logger.Warn("Production request completion rejected", append(fields, zap.Error(err))...)
		return
	}
	s.logger.Info("Production request completion failed", append(fields, zap.Error(err))...)
}

// Get returns a request with its material snapshot
func (s *Service) Get(ctx context.Context, actor shared.Actor, id uuid.UUID) (*RequestResponse, error) {
	if err := shared.Authorize(actor, nil); err != nil {
		return nil, err
	}
	req, err := s.requestRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToRequestResponse(req)
	return &resp, nil
}

// List returns a page of requests
func (s *Service) List(ctx context.Context, actor shared.Actor, filter RequestListFilter) (*shared.Paginated[RequestResponse], error) {
	if err := shared.Authorize(actor, nil); err != nil {
		return nil, err
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Unknown status: "+string(filter.Status))
	}

	domainFilter := production.RequestFilter{
		Filter:    shared.DefaultFilter(),
		Status:    filter.Status,
		ProductID: filter.ProductID,
	}
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}

	requests, err := s.requestRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.requestRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	page := shared.NewPaginated(ToRequestResponses(requests), total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

// publish sends the aggregate's pending events after commit
func (s *Service) publish(ctx context.Context, req *production.ProductionRequest) {
	if req == nil {
		return
	}
	publishEvents(ctx, s.eventPublisher, s.logger, req.GetDomainEvents())
	req.ClearDomainEvents()
}

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
