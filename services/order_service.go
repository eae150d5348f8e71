package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/platoo/order-service/models"
	"github.com/platoo/order-service/utils"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

var ErrMenuItemUnavailable = errors.New("menu item is not available")

// OrderNotifier is told about committed order changes.
type OrderNotifier interface {
	OrderCreated(order models.Order)
	OrderStatusChanged(order models.Order)
}

type noopNotifier struct{}

func (noopNotifier) OrderCreated(models.Order)       {}
func (noopNotifier) OrderStatusChanged(models.Order) {}

type OrderServiceConfig struct {
	// LookupTimeout bounds each catalog call; an expired lookup skips the item.
	LookupTimeout time.Duration
	// MaxConcurrency bounds parallel catalog calls per order. 1 is sequential.
	MaxConcurrency int
	Policy         ResolutionPolicy
}

// OrderService owns the order store and the order creation flow.
type OrderService struct {
	db             *gorm.DB
	catalog        MenuLookup
	notifier       OrderNotifier
	policy         ResolutionPolicy
	lookupTimeout  time.Duration
	maxConcurrency int
	tracer         trace.Tracer
}

func NewOrderService(db *gorm.DB, catalog MenuLookup, notifier OrderNotifier, cfg OrderServiceConfig) *OrderService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if cfg.Policy == nil {
		cfg.Policy = PartialResolution{}
	}
	if cfg.LookupTimeout <= 0 {
		cfg.LookupTimeout = 3 * time.Second
	}
	if cfg.MaxConcurrency < 1 {
		cfg.MaxConcurrency = 1
	}
	return &OrderService{
		db:             db,
		catalog:        catalog,
		notifier:       notifier,
		policy:         cfg.Policy,
		lookupTimeout:  cfg.LookupTimeout,
		maxConcurrency: cfg.MaxConcurrency,
		tracer:         otel.Tracer("github.com/platoo/order-service/services"),
	}
}

// CreateOrder resolves every requested item against the catalog, prices the
// order and stores it with status pending, all inside one transaction. Any
// fatal failure rolls the transaction back and comes back as
// *OrderCreationError.
func (s *OrderService) CreateOrder(ctx context.Context, userID string, items []models.LineItemRequest) (*models.Order, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" || len(items) == 0 {
		return nil, ErrInvalidOrderRequest
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidOrderRequest
		}
	}

	ctx, span := s.tracer.Start(ctx, "OrderService.CreateOrder", trace.WithAttributes(
		attribute.String("order.user_id", userID),
		attribute.Int("order.items_requested", len(items)),
	))
	defer span.End()

	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		resolved, unresolved, err := s.resolveItems(ctx, items)
		if err != nil {
			return err
		}
		if err := s.policy.Accept(len(items), unresolved); err != nil {
			return err
		}

		total, lines, err := CalculateTotal(items, resolved)
		if err != nil {
			return err
		}

		number, err := nextOrderNumber(tx)
		if err != nil {
			return err
		}

		order = models.Order{
			OrderNumber: number,
			UserID:      userID,
			TotalAmount: total.InexactFloat64(),
			Status:      models.OrderStatusPending,
			Items:       lines,
		}
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("persist order: %w", err)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		utils.ErrorLogger.WithFields(logrus.Fields{
			"user_id": userID,
			"items":   len(items),
		}).Errorf("Order creation aborted: %v", err)
		return nil, &OrderCreationError{Cause: err}
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"user_id":      userID,
		"total_amount": order.TotalAmount,
		"items":        len(order.Items),
		"requested":    len(items),
	}).Info("Order created")

	s.notifier.OrderCreated(order)
	return &order, nil
}

type lookupOutcome struct {
	entry models.CatalogEntry
	err   error
}

// resolveItems looks up each distinct requested id once. Lookups run with
// bounded parallelism and never cancel each other; a per-item failure only
// marks that item unresolved. Only cancellation of ctx itself is fatal.
func (s *OrderService) resolveItems(ctx context.Context, items []models.LineItemRequest) (map[string]models.CatalogEntry, []UnresolvedItem, error) {
	ids := distinctMenuItemIDs(items)
	outcomes := make([]lookupOutcome, len(ids))

	var g errgroup.Group
	g.SetLimit(s.maxConcurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			lookupCtx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
			defer cancel()
			entry, err := s.catalog.LookupMenuItem(lookupCtx, id)
			outcomes[i] = lookupOutcome{entry: entry, err: err}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("resolve menu items: %w", err)
	}

	resolved := make(map[string]models.CatalogEntry, len(ids))
	var unresolved []UnresolvedItem
	for i, id := range ids {
		out := outcomes[i]
		if out.err == nil && !out.entry.IsAvailable {
			out.err = ErrMenuItemUnavailable
		}
		if out.err != nil {
			utils.InfoLogger.WithFields(logrus.Fields{
				"menu_item_id": id,
				"reason":       out.err.Error(),
			}).Warn("Skipping unresolved menu item")
			unresolved = append(unresolved, UnresolvedItem{MenuItemID: id, Reason: out.err})
			continue
		}
		resolved[CanonicalMenuItemID(id)] = out.entry
	}

	return resolved, unresolved, nil
}

// distinctMenuItemIDs returns trimmed ids in request order, one per canonical id.
func distinctMenuItemIDs(items []models.LineItemRequest) []string {
	seen := make(map[string]bool, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		key := CanonicalMenuItemID(item.MenuItemID)
		if seen[key] {
			continue
		}
		seen[key] = true
		ids = append(ids, strings.TrimSpace(item.MenuItemID))
	}
	return ids
}

// nextOrderNumber bumps the order counter inside tx, so a rolled back order
// never consumes a number.
func nextOrderNumber(tx *gorm.DB) (string, error) {
	res := tx.Model(&models.OrderCounter{}).
		Where("name = ?", models.OrderCounterName).
		UpdateColumn("count", gorm.Expr("count + ?", 1))
	if res.Error != nil {
		return "", fmt.Errorf("increment order counter: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		counter := models.OrderCounter{Name: models.OrderCounterName, Count: 1}
		if err := tx.Create(&counter).Error; err != nil {
			return "", fmt.Errorf("create order counter: %w", err)
		}
		return models.FormatOrderNumber(counter.Count), nil
	}

	var counter models.OrderCounter
	if err := tx.Where("name = ?", models.OrderCounterName).First(&counter).Error; err != nil {
		return "", fmt.Errorf("read order counter: %w", err)
	}
	return models.FormatOrderNumber(counter.Count), nil
}

// GetOrder returns one order with its items.
func (s *OrderService) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).Preload("Items").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}
	return &order, nil
}

// ListOrders returns orders newest first.
func (s *OrderService) ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, error) {
	query := s.db.WithContext(ctx).Preload("Items").Order("created_at DESC").Order("id DESC")
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		if !filter.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		query = query.Where("status = ?", filter.Status)
	}

	orders := []models.Order{}
	if err := query.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// UpdateOrderStatus moves an order to status. Items and total are untouched.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id uint, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	var order models.Order
	changed := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("load order %d: %w", id, err)
		}
		if order.Status == status {
			return nil
		}
		if order.Status.Terminal() {
			return fmt.Errorf("%w: order is %s", ErrStatusTransition, order.Status)
		}

		if err := tx.Model(&order).Update("status", status).Error; err != nil {
			return fmt.Errorf("update order %d status: %w", id, err)
		}
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		utils.InfoLogger.WithFields(logrus.Fields{
			"order_id": order.ID,
			"status":   order.Status,
		}).Info("Order status updated")
		s.notifier.OrderStatusChanged(order)
	}
	return &order, nil
}

// DeleteOrder removes an order and its items.
func (s *OrderService) DeleteOrder(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("load order %d: %w", id, err)
		}
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return fmt.Errorf("delete items of order %d: %w", id, err)
		}
		if err := tx.Delete(&order).Error; err != nil {
			return fmt.Errorf("delete order %d: %w", id, err)
		}
		return nil
	})
}
