package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"order-service/internal/domain"
	"order-service/internal/infra"
	rabbit "order-service/internal/infra/rabbitmq"
	"order-service/internal/inventory"
	"order-service/internal/pricing"
	"order-service/internal/repository"
)

// LineRequest is one cart line as submitted by the customer.
type LineRequest struct {
	ProductID uint64
	Quantity  int64
}

// OrderService owns the order state machine. It prices and stock-checks a
// cart into a Processed order and later drives the one-way accept/reject
// transition. All inventory goes through the ledger; all persistence goes
// through the repository.
type OrderService struct {
	repo      repository.OrderRepository
	catalog   infra.CatalogGateway
	ledger    *inventory.Ledger
	publisher rabbit.PublisherInterface
	logger    *zap.SugaredLogger
	validate  *validator.Validate

	mu         sync.Mutex
	orderLocks map[string]*sync.Mutex
}

func NewOrderService(
	repo repository.OrderRepository,
	catalog infra.CatalogGateway,
	ledger *inventory.Ledger,
	publisher rabbit.PublisherInterface,
	logger *zap.SugaredLogger,
) *OrderService {
	return &OrderService{
		repo:       repo,
		catalog:    catalog,
		ledger:     ledger,
		publisher:  publisher,
		logger:     logger,
		validate:   validator.New(),
		orderLocks: make(map[string]*sync.Mutex),
	}
}

// orderLock serializes accept/reject per order id. The loser of a concurrent
// accept/reject race sees the winner's terminal status and fails.
func (s *OrderService) orderLock(orderID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.orderLocks[orderID]
	if !ok {
		lock = &sync.Mutex{}
		s.orderLocks[orderID] = lock
	}
	return lock
}

// CreateOrder turns a cart into a priced, stock-reserved, persisted order.
// Either the whole order is persisted with every line reserved, or nothing
// is: any failure releases the reservations already made in this call.
func (s *OrderService) CreateOrder(ctx context.Context, customer domain.CustomerInfo, lines []LineRequest) (*domain.Order, error) {
	if err := s.validate.Struct(customer); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return nil, &domain.ValidationError{Field: verrs[0].Field(), Reason: "failed " + verrs[0].Tag() + " validation"}
		}
		return nil, &domain.ValidationError{Field: "customer", Reason: err.Error()}
	}
	if len(lines) == 0 {
		return nil, &domain.ValidationError{Field: "items", Reason: "order must have at least one item"}
	}
	for _, l := range lines {
		if l.Quantity <= 0 {
			return nil, &domain.ValidationError{Field: "items", Reason: "quantity must be positive"}
		}
	}

	// The ledger keys holds by (order, product), so an order carries at most
	// one line per product: duplicate cart lines are summed into one.
	merged := make([]LineRequest, 0, len(lines))
	byProduct := make(map[uint64]int)
	for _, l := range lines {
		if i, ok := byProduct[l.ProductID]; ok {
			merged[i].Quantity += l.Quantity
			continue
		}
		byProduct[l.ProductID] = len(merged)
		merged = append(merged, l)
	}
	lines = merged

	products := make([]*infra.ProductInfo, len(lines))
	g, gctx := errgroup.WithContext(ctx)
	for i, l := range lines {
		i, l := i, l
		g.Go(func() error {
			p, err := s.catalog.GetProduct(gctx, l.ProductID)
			if err != nil {
				return &domain.PersistenceError{Op: "catalog lookup", Err: err}
			}
			if p == nil {
				return &domain.ProductNotFoundError{ProductID: l.ProductID}
			}
			products[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	order := &domain.Order{
		ID:           uuid.New().String(),
		CustomerInfo: customer,
		Status:       domain.StatusProcessed,
		CreatedAt:    time.Now(),
	}
	for i, l := range lines {
		quote, err := pricing.PriceLine(products[i].Price, products[i].DiscountPercent, l.Quantity)
		if err != nil {
			return nil, &domain.ValidationError{Field: "items", Reason: err.Error()}
		}
		order.Items = append(order.Items, domain.OrderItem{
			OrderID:     order.ID,
			ProductID:   l.ProductID,
			ProductName: products[i].Name,
			Quantity:    l.Quantity,
			UnitPrice:   quote.UnitPrice,
		})
	}
	order.TotalAmount = order.RecomputeTotal()

	// Reservations are taken in ascending product-id order so that two
	// orders over overlapping products cannot deadlock.
	sort.Slice(order.Items, func(i, j int) bool {
		return order.Items[i].ProductID < order.Items[j].ProductID
	})
	reserved := 0
	for _, it := range order.Items {
		if err := s.ledger.Reserve(ctx, order.ID, it.ProductID, it.Quantity); err != nil {
			s.releaseItems(order, reserved)
			return nil, err
		}
		reserved++
	}

	if err := ctx.Err(); err != nil {
		s.releaseItems(order, reserved)
		return nil, err
	}

	if err := s.repo.Save(ctx, order); err != nil {
		s.releaseItems(order, reserved)
		return nil, &domain.PersistenceError{Op: "order save", Err: err}
	}

	go s.publishEvent(domain.TopicOrderCreated, domain.OrderCreatedEvent{
		OrderID:     order.ID,
		TotalAmount: order.TotalAmount,
		ItemCount:   len(order.Items),
		CreatedAt:   order.CreatedAt,
	})

	s.logger.Infow("order created", "order_id", order.ID, "total", order.TotalAmount, "items", len(order.Items))
	return order, nil
}

// releaseItems rolls back the first n reservations of the order.
func (s *OrderService) releaseItems(order *domain.Order, n int) {
	for i := 0; i < n; i++ {
		it := order.Items[i]
		s.ledger.Release(order.ID, it.ProductID, it.Quantity)
	}
}

// AcceptOrder commits every reservation of a Processed order and flips it to
// Accepted. Stock commits happen before the status is persisted; if any step
// fails, commits already made are reverted and the order stays Processed.
func (s *OrderService) AcceptOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	lock := s.orderLock(orderID)
	lock.Lock()
	defer lock.Unlock()

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.IsTerminal() {
		return nil, &domain.InvalidStateTransitionError{OrderID: orderID, Current: order.Status, Attempted: domain.StatusAccepted}
	}

	committed := 0
	for _, it := range order.Items {
		if err := s.ledger.Commit(ctx, order.ID, it.ProductID, it.Quantity); err != nil {
			s.revertCommits(ctx, order, committed)
			return nil, err
		}
		committed++
	}

	if err := order.Accept(time.Now()); err != nil {
		s.revertCommits(ctx, order, committed)
		return nil, err
	}

	if err := s.repo.Update(ctx, order); err != nil {
		s.revertCommits(ctx, order, committed)
		return nil, &domain.PersistenceError{Op: "order accept", Err: err}
	}

	go s.publishEvent(domain.TopicOrderAccepted, domain.OrderAcceptedEvent{
		OrderID:    order.ID,
		AcceptedAt: *order.AcceptedAt,
	})

	s.logger.Infow("order accepted", "order_id", order.ID)
	return order, nil
}

func (s *OrderService) revertCommits(ctx context.Context, order *domain.Order, n int) {
	for i := 0; i < n; i++ {
		it := order.Items[i]
		if err := s.ledger.RevertCommit(ctx, order.ID, it.ProductID, it.Quantity); err != nil {
			s.logger.Errorw("failed to revert stock commit",
				"order_id", order.ID, "product_id", it.ProductID, "err", err)
		}
	}
}

// RejectOrder releases every reservation of a Processed order and flips it to
// Rejected, recording the reason (a default is used when none is given).
func (s *OrderService) RejectOrder(ctx context.Context, orderID, reason string) (*domain.Order, error) {
	lock := s.orderLock(orderID)
	lock.Lock()
	defer lock.Unlock()

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.IsTerminal() {
		return nil, &domain.InvalidStateTransitionError{OrderID: orderID, Current: order.Status, Attempted: domain.StatusRejected}
	}

	for _, it := range order.Items {
		s.ledger.Release(order.ID, it.ProductID, it.Quantity)
	}

	if err := order.Reject(time.Now(), reason); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, order); err != nil {
		// Put the holds back so the still-Processed order can be accepted
		// or rejected again later.
		for _, it := range order.Items {
			if rerr := s.ledger.Reserve(ctx, order.ID, it.ProductID, it.Quantity); rerr != nil {
				s.logger.Errorw("failed to reinstate reservation after reject rollback",
					"order_id", order.ID, "product_id", it.ProductID, "err", rerr)
			}
		}
		return nil, &domain.PersistenceError{Op: "order reject", Err: err}
	}

	go s.publishEvent(domain.TopicOrderRejected, domain.OrderRejectedEvent{
		OrderID:    order.ID,
		Reason:     *order.RejectReason,
		RejectedAt: *order.RejectedAt,
	})

	s.logger.Infow("order rejected", "order_id", order.ID, "reason", *order.RejectReason)
	return order, nil
}

func (s *OrderService) loadOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "order lookup", Err: err}
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.loadOrder(ctx, orderID)
}

func (s *OrderService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "order list", Err: err}
	}
	return orders, nil
}

func (s *OrderService) publishEvent(topic string, event any) {
	if err := s.publisher.Publish(context.Background(), topic, event); err != nil {
		s.logger.Errorw("failed to publish event", "topic", topic, "err", err)
	}
}
