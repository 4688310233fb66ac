package trading

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"paper-trading-go/internal/config"
	"paper-trading-go/internal/models"
	"paper-trading-go/internal/pricing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service is the order intake and settlement engine. Every order runs in
// two phases: the side that could be overdrawn by a concurrent request
// (cash for buys, shares for sells) is mutated synchronously at intake,
// and the side that merely grows (shares for buys, cash for sells) is
// applied by the settlement callback after a fixed delay.
type Service struct {
	logger       *zap.Logger
	db           *gorm.DB
	oracle       pricing.Oracle
	cash         *CashStore
	positions    *PositionStore
	journal      *Journal
	scheduler    *Scheduler
	clock        Clock
	symbolLocks  *KeyedMutex
	accountLocks *KeyedMutex
	delay        time.Duration
	precision    int32
}

// NewService creates the trading service.
func NewService(logger *zap.Logger, cfg *config.Config, db *gorm.DB, oracle pricing.Oracle, clock Clock) *Service {
	return &Service{
		logger:       logger,
		db:           db,
		oracle:       oracle,
		cash:         NewCashStore(),
		positions:    NewPositionStore(),
		journal:      NewJournal(),
		scheduler:    NewScheduler(logger, clock),
		clock:        clock,
		symbolLocks:  NewKeyedMutex(),
		accountLocks: NewKeyedMutex(),
		delay:        time.Duration(cfg.Trading.SettlementDelaySec) * time.Second,
		precision:    cfg.Trading.RoundingPrecision,
	}
}

// PlaceOrderResult is returned to the transport layer when an order is
// accepted. Settlement has not happened yet at that point.
type PlaceOrderResult struct {
	OrderID string             `json:"order_id"`
	Status  models.OrderStatus `json:"status"`
}

// PlaceBuy validates a buy request, debits its cost from the account
// immediately, journals the order as Pending and schedules its settlement.
func (s *Service) PlaceBuy(ctx context.Context, accountID, symbol string, quantity int64, tradeDate time.Time) (PlaceOrderResult, error) {
	if err := s.validate(accountID, symbol, quantity, tradeDate); err != nil {
		return PlaceOrderResult{}, err
	}

	point, err := s.lookupPrice(ctx, symbol, tradeDate)
	if err != nil {
		return PlaceOrderResult{}, err
	}

	cost := point.ClosingPrice.Mul(decimal.NewFromInt(quantity)).Round(s.precision)

	order := &models.Order{
		ID:          uuid.NewString(),
		AccountID:   accountID,
		Symbol:      symbol,
		DisplayName: point.CompanyName,
		Sector:      point.Sector,
		Side:        models.OrderSideBuy,
		Status:      models.OrderStatusPending,
		Quantity:    quantity,
		UnitPrice:   point.ClosingPrice,
		TotalAmount: cost,
		TradeDate:   tradeDate,
	}

	// Debiting at intake reserves the funds, so concurrent buys cannot
	// overdraw the account while this order waits to settle.
	unlock := s.accountLocks.Lock(accountID)
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.cash.Debit(ctx, tx, accountID, cost); err != nil {
			return err
		}
		return s.journal.Insert(ctx, tx, order)
	})
	unlock()
	if err != nil {
		return PlaceOrderResult{}, err
	}

	s.logger.Info("Buy order accepted",
		zap.String("order_id", order.ID),
		zap.String("symbol", symbol),
		zap.Int64("quantity", quantity),
		zap.String("cost", cost.String()),
	)

	s.scheduler.Defer(s.delay, func() { s.settle(order.ID) })

	return PlaceOrderResult{OrderID: order.ID, Status: models.OrderStatusPending}, nil
}

// PlaceSell validates a sell request against the current holding, removes
// the shares immediately, journals the order (with realized P&L computed
// against the holding's average cost) and schedules the cash credit.
func (s *Service) PlaceSell(ctx context.Context, accountID, symbol string, quantity int64, tradeDate time.Time) (PlaceOrderResult, error) {
	if err := s.validate(accountID, symbol, quantity, tradeDate); err != nil {
		return PlaceOrderResult{}, err
	}

	var order *models.Order

	// Removing the shares at intake means a second concurrent sell cannot
	// dispose of the same lot twice.
	unlock := s.symbolLocks.Lock(symbol)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		holding, err := s.positions.Get(ctx, tx, accountID, symbol)
		if err != nil {
			return err
		}
		if holding.Quantity < quantity {
			return fmt.Errorf("insufficient shares: %w", ErrFailedPrecondition)
		}

		point, err := s.lookupPrice(ctx, symbol, tradeDate)
		if err != nil {
			return err
		}

		price := point.ClosingPrice
		qty := decimal.NewFromInt(quantity)
		total := price.Mul(qty).Round(s.precision)
		pnl := price.Sub(holding.AverageCost).Mul(qty).Round(s.precision)
		pnlPercent := price.Sub(holding.AverageCost).
			Div(holding.AverageCost).
			Mul(decimal.NewFromInt(100)).
			Round(s.precision)

		order = &models.Order{
			ID:                 uuid.NewString(),
			AccountID:          accountID,
			Symbol:             symbol,
			DisplayName:        holding.DisplayName,
			Sector:             holding.Sector,
			Side:               models.OrderSideSell,
			Status:             models.OrderStatusPending,
			Quantity:           quantity,
			UnitPrice:          price,
			TotalAmount:        total,
			RealizedPnL:        pnl,
			RealizedPnLPercent: pnlPercent,
			TradeDate:          tradeDate,
		}

		holding.Quantity -= quantity
		if holding.Quantity == 0 {
			// Selling does not change the cost basis of what remains, and
			// nothing remains here: drop the row instead of keeping a
			// zero-quantity residue.
			if err := s.positions.Delete(ctx, tx, holding); err != nil {
				return err
			}
		} else {
			if err := s.positions.Save(ctx, tx, holding); err != nil {
				return err
			}
		}

		return s.journal.Insert(ctx, tx, order)
	})
	unlock()
	if err != nil {
		return PlaceOrderResult{}, err
	}

	s.logger.Info("Sell order accepted",
		zap.String("order_id", order.ID),
		zap.String("symbol", symbol),
		zap.Int64("quantity", quantity),
		zap.String("realized_pnl", order.RealizedPnL.String()),
	)

	s.scheduler.Defer(s.delay, func() { s.settle(order.ID) })

	return PlaceOrderResult{OrderID: order.ID, Status: models.OrderStatusPending}, nil
}

// settle applies the deferred half of an order and marks it Completed. It
// re-reads the order and the current holding inside the serialized region
// rather than closing over intake-time state, and no-ops if the order has
// already been completed, so invoking it twice is safe.
//
// A failed settlement write is logged and the order left Pending; it is
// never marked Completed without its side effect applied.
func (s *Service) settle(orderID string) {
	ctx := context.Background()

	order, err := s.journal.Get(ctx, s.db, orderID)
	if err != nil {
		s.logger.Error("Settlement could not load order",
			zap.String("order_id", orderID), zap.Error(err))
		return
	}

	var unlock func()
	if order.Side == models.OrderSideBuy {
		unlock = s.symbolLocks.Lock(order.Symbol)
	} else {
		unlock = s.accountLocks.Lock(order.AccountID)
	}
	defer unlock()

	// Re-read inside the lock; a duplicate invocation may have won the race.
	order, err = s.journal.Get(ctx, s.db, orderID)
	if err != nil {
		s.logger.Error("Settlement could not reload order",
			zap.String("order_id", orderID), zap.Error(err))
		return
	}
	if order.Status == models.OrderStatusCompleted {
		s.logger.Debug("Order already settled", zap.String("order_id", orderID))
		return
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if order.Side == models.OrderSideBuy {
			if err := s.applyBuySettlement(ctx, tx, order); err != nil {
				return err
			}
		} else {
			if err := s.cash.Credit(ctx, tx, order.AccountID, order.TotalAmount); err != nil {
				return err
			}
		}
		return s.journal.MarkCompleted(ctx, tx, order.ID)
	})
	if err != nil {
		s.logger.Error("Settlement failed, order left Pending",
			zap.String("order_id", orderID),
			zap.String("side", string(order.Side)),
			zap.Error(err))
		return
	}

	s.logger.Info("Order settled",
		zap.String("order_id", orderID),
		zap.String("symbol", order.Symbol),
		zap.String("side", string(order.Side)),
	)
}

// applyBuySettlement adds the bought shares to the holding, folding the
// purchase into the weighted-average cost basis.
func (s *Service) applyBuySettlement(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	holding, err := s.positions.Get(ctx, tx, order.AccountID, order.Symbol)
	if errors.Is(err, ErrNotFound) {
		holding = &models.Holding{
			AccountID:   order.AccountID,
			Symbol:      order.Symbol,
			DisplayName: order.DisplayName,
			Sector:      order.Sector,
			Quantity:    order.Quantity,
			AverageCost: order.UnitPrice.Round(s.precision),
		}
		return s.positions.Save(ctx, tx, holding)
	}
	if err != nil {
		return err
	}

	heldQty := decimal.NewFromInt(holding.Quantity)
	boughtQty := decimal.NewFromInt(order.Quantity)
	newQuantity := holding.Quantity + order.Quantity
	newAverageCost := heldQty.Mul(holding.AverageCost).
		Add(boughtQty.Mul(order.UnitPrice)).
		Div(decimal.NewFromInt(newQuantity)).
		Round(s.precision)

	holding.Quantity = newQuantity
	holding.AverageCost = newAverageCost
	return s.positions.Save(ctx, tx, holding)
}

// GetHoldings returns the account's current positions.
func (s *Service) GetHoldings(ctx context.Context, accountID string) ([]models.Holding, error) {
	return s.positions.List(ctx, s.db, accountID)
}

// GetBalance returns the account's cash balance.
func (s *Service) GetBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	account, err := s.cash.Get(ctx, s.db, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	return account.Balance, nil
}

// GetOrder returns a single order by id.
func (s *Service) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	return s.journal.Get(ctx, s.db, id)
}

// ListOrders returns the account's order journal, newest first.
func (s *Service) ListOrders(ctx context.Context, accountID string, limit int) ([]models.Order, error) {
	return s.journal.List(ctx, s.db, accountID, limit)
}

// PendingCount returns the number of orders still awaiting settlement.
func (s *Service) PendingCount(ctx context.Context, accountID string) (int64, error) {
	return s.journal.CountPending(ctx, s.db, accountID)
}

// WaitForSettlements blocks until every scheduled settlement has run.
func (s *Service) WaitForSettlements() {
	s.scheduler.Wait()
}

func (s *Service) validate(accountID, symbol string, quantity int64, tradeDate time.Time) error {
	if accountID == "" {
		return fmt.Errorf("account id must not be empty: %w", ErrInvalidArgument)
	}
	if strings.TrimSpace(symbol) == "" {
		return fmt.Errorf("symbol must not be empty: %w", ErrInvalidArgument)
	}
	if quantity <= 0 {
		return fmt.Errorf("quantity must be positive: %w", ErrInvalidArgument)
	}
	if tradeDate.IsZero() {
		return fmt.Errorf("trade date must be set: %w", ErrInvalidArgument)
	}
	if tradeDate.After(s.clock.Now()) {
		return fmt.Errorf("trade date must not be in the future: %w", ErrInvalidArgument)
	}
	return nil
}

func (s *Service) lookupPrice(ctx context.Context, symbol string, asOf time.Time) (*models.PricePoint, error) {
	point, err := s.oracle.PriceAsOf(ctx, symbol, asOf)
	if err != nil {
		if errors.Is(err, pricing.ErrNoPrice) {
			return nil, fmt.Errorf("no price data for %s on or before %s: %w",
				symbol, asOf.Format("2006-01-02"), ErrNotFound)
		}
		return nil, fmt.Errorf("price lookup for %s failed: %w", symbol, ErrInternal)
	}
	return point, nil
}
