package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"royal-kart/internal/events"
	"royal-kart/internal/model"
	"royal-kart/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo repository.OrderRepository
	publisher events.Publisher
	logger    zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(orderRepo repository.OrderRepository, publisher events.Publisher, logger zerolog.Logger) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		publisher: publisher,
		logger:    logger.With().Str("service", "order").Logger(),
	}
}

// List returns orders newest first, optionally filtered by status.
func (s *orderService) List(ctx context.Context, status model.OrderStatus, limit, offset int) ([]model.Order, error) {
	if status != "" && !status.Valid() {
		return nil, model.ErrInvalidStatus
	}
	limit, offset = clampPage(limit, offset, 20)

	orders, err := s.orderRepo.List(ctx, status, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Str("status", string(status)).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (s *orderService) find(ctx context.Context, orderID string) (*model.Order, error) {
	orderID = strings.ToUpper(strings.TrimSpace(orderID))
	if orderID == "" {
		return nil, model.ErrOrderNotFound
	}

	order, err := s.orderRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		s.logger.Debug().Str("order_id", orderID).Msg("order not found")
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}

// findForCustomer returns the order only when phone matches. A mismatch is
// reported as not found.
func (s *orderService) findForCustomer(ctx context.Context, orderID, phone string) (*model.Order, error) {
	normalised, err := NormalisePhone(phone)
	if err != nil {
		return nil, err
	}
	order, err := s.find(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerPhone != normalised {
		s.logger.Debug().Str("order_id", order.OrderID).Msg("tracking phone mismatch")
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) detail(ctx context.Context, order *model.Order) (*model.OrderDetail, error) {
	items, err := s.orderRepo.GetItems(ctx, order.ID)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", order.OrderID).Msg("failed to get order items")
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}

	messages, err := s.orderRepo.ListMessages(ctx, order.ID)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", order.OrderID).Msg("failed to get order messages")
		return nil, fmt.Errorf("failed to get order messages: %w", err)
	}

	return &model.OrderDetail{Order: *order, Items: items, Messages: messages}, nil
}

// Get returns an order with its items and messages.
func (s *orderService) Get(ctx context.Context, orderID string) (*model.OrderDetail, error) {
	order, err := s.find(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, order)
}

// Track is the customer-facing lookup.
func (s *orderService) Track(ctx context.Context, orderID, phone string) (*model.OrderDetail, error) {
	order, err := s.findForCustomer(ctx, orderID, phone)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, order)
}

// UpdateStatus moves an order forward, or to cancelled.
func (s *orderService) UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) (*model.Order, error) {
	if !status.Valid() {
		return nil, model.ErrInvalidStatus
	}

	order, err := s.find(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(status) {
		s.logger.Debug().
			Str("order_id", order.OrderID).
			Str("from", string(order.Status)).
			Str("to", string(status)).
			Msg("status transition rejected")
		return nil, model.ErrInvalidTransition
	}

	ok, err := s.orderRepo.UpdateStatus(ctx, order.ID, order.Status, status)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", order.OrderID).Msg("failed to update order status")
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if !ok {
		// Someone else moved the order first.
		return nil, model.ErrInvalidTransition
	}

	previous := order.Status
	order.Status = status
	order.UpdatedAt = time.Now().UTC()

	s.logger.Info().
		Str("order_id", order.OrderID).
		Str("from", string(previous)).
		Str("to", string(status)).
		Msg("order status updated")

	publish(ctx, s.publisher, s.logger, events.New(events.OrderStatusChanged, map[string]any{
		"orderId": order.OrderID,
		"from":    previous,
		"status":  status,
	}))

	return order, nil
}

// Delete removes a delivered order.
func (s *orderService) Delete(ctx context.Context, orderID string) error {
	order, err := s.find(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status != model.StatusDelivered {
		return model.ErrOrderNotDeletable
	}

	if err := s.orderRepo.Delete(ctx, order.ID); err != nil {
		if isDomainError(err) {
			return err
		}
		s.logger.Error().Err(err).Str("order_id", order.OrderID).Msg("failed to delete order")
		return fmt.Errorf("failed to delete order: %w", err)
	}

	s.logger.Info().Str("order_id", order.OrderID).Msg("order deleted")
	return nil
}

// AddCustomerMessage appends a customer note after checking the phone.
func (s *orderService) AddCustomerMessage(ctx context.Context, orderID, phone, message string) (*model.OrderMessage, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, model.MissingField("message")
	}
	order, err := s.findForCustomer(ctx, orderID, phone)
	if err != nil {
		return nil, err
	}
	return s.addMessage(ctx, order, message, false)
}

// AddAdminMessage appends a store note.
func (s *orderService) AddAdminMessage(ctx context.Context, orderID, message string) (*model.OrderMessage, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, model.MissingField("message")
	}
	order, err := s.find(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.addMessage(ctx, order, message, true)
}

func (s *orderService) addMessage(ctx context.Context, order *model.Order, text string, admin bool) (*model.OrderMessage, error) {
	msg := &model.OrderMessage{
		ID:        uuid.New(),
		OrderID:   order.ID,
		Message:   text,
		IsAdmin:   admin,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.orderRepo.AddMessage(ctx, msg); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.OrderID).Msg("failed to add order message")
		return nil, fmt.Errorf("failed to add order message: %w", err)
	}

	author := model.AuthorCustomer
	if admin {
		author = model.AuthorAdmin
	}
	publish(ctx, s.publisher, s.logger, events.New(events.OrderMessageAdded, map[string]any{
		"orderId": order.OrderID,
		"author":  author,
	}))

	return msg, nil
}
