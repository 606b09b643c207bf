package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cryptomart/payment-core/internal/adapter/config"
	"github.com/cryptomart/payment-core/internal/core/domain"
	"github.com/cryptomart/payment-core/internal/core/port"
	"go.uber.org/zap"
)

// Reconciler drives order settlement: on every tick it re-evaluates all
// non-terminal orders against the chain data and applies the verdicts
// through compare-and-set transitions. Overlapping passes over the same
// order are safe because the state machine is monotonic and only the worker
// winning the CAS performs side effects.
type Reconciler struct {
	repo    port.Repository
	factory port.ServiceFactory
	ledger  *Ledger
	logger  *zap.Logger

	interval    time.Duration
	expiry      time.Duration
	callTimeout time.Duration
	workers     int
	now         func() time.Time
}

func NewReconciler(repo port.Repository, factory port.ServiceFactory,
	ledger *Ledger, cfg *config.Payment, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		repo:        repo,
		factory:     factory,
		ledger:      ledger,
		logger:      logger,
		interval:    cfg.ReconcileInterval,
		expiry:      cfg.ExpiryWindow,
		callTimeout: cfg.CallTimeout,
		workers:     cfg.Workers,
		now:         time.Now,
	}
}

// Run blocks until the context is canceled.
func (r *Reconciler) Run(ctx context.Context) {
	r.logger.Info("starting reconciler",
		zap.Duration("interval", r.interval),
		zap.Int("workers", r.workers))

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("shutting down reconciler")
			return
		case <-ticker.C:
			if err := r.ReconcileOnce(ctx); err != nil {
				r.logger.Error("reconcile pass failed", zap.Error(err))
			}
		}
	}
}

// ReconcileOnce runs a single pass: fetch non-terminal orders, group them by
// currency and fan the evaluations out to a bounded worker pool so a slow
// provider for one currency does not stall the others.
func (r *Reconciler) ReconcileOnce(ctx context.Context) error {
	orders, err := r.repo.ListOrdersByStatus(ctx,
		[]domain.OrderStatus{domain.OrderStatusPending, domain.OrderStatusConfirming})
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		return nil
	}

	groups := make(map[domain.Currency][]*domain.Order)
	for _, order := range orders {
		groups[order.Currency] = append(groups[order.Currency], order)
	}

	sem := make(chan struct{}, r.workers)
	var wg sync.WaitGroup

	for currency, group := range groups {
		r.warnAmbiguousOrders(currency, group)

		svc, err := r.factory.Service(currency)
		if err != nil {
			r.logger.Error("no payment service for currency",
				zap.String("currency", string(currency)), zap.Error(err))
			continue
		}

		for _, order := range group {
			wg.Add(1)
			sem <- struct{}{}
			go func(order *domain.Order) {
				defer wg.Done()
				defer func() { <-sem }()
				if err := r.reconcileOrder(ctx, svc, order); err != nil {
					r.logger.Error("error reconciling order",
						zap.Uint64("order", order.ID), zap.Error(err))
				}
			}(order)
		}
	}

	wg.Wait()
	return nil
}

func (r *Reconciler) reconcileOrder(ctx context.Context, svc port.PaymentService, order *domain.Order) error {
	callCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
	defer cancel()

	eval, err := svc.Evaluate(callCtx, order)
	if err != nil {
		// Transient provider trouble is absorbed here: the order is left
		// untouched and picked up again on the next pass.
		if errors.Is(err, domain.ErrProviderUnavailable) || errors.Is(err, domain.ErrRateLimitExceeded) {
			r.logger.Info("provider unavailable, order left for next pass",
				zap.Uint64("order", order.ID), zap.Error(err))
			return nil
		}
		return err
	}

	switch eval.Outcome {
	case domain.OutcomePaid:
		return r.applyPaid(ctx, order, eval)

	case domain.OutcomeConfirming:
		return r.applyConfirming(ctx, order, eval)

	case domain.OutcomeUnderpaid:
		// First-class signal, not an error: needs operator attention and
		// never silently waits nor expires here.
		r.logger.Warn("underpaid payment observed",
			zap.Uint64("order", order.ID),
			zap.String("currency", string(order.Currency)),
			zap.String("expected", order.ExpectedAmount.String()),
			zap.String("received", eval.ReceivedAmount.String()),
			zap.String("tx_ref", eval.TxRef))
		return nil

	case domain.OutcomeNoMatch:
		return r.applyExpiry(ctx, order)
	}

	return nil
}

func (r *Reconciler) applyPaid(ctx context.Context, order *domain.Order, eval *domain.Evaluation) error {
	txRef := eval.TxRef
	if order.ObservedTxRef != "" {
		txRef = order.ObservedTxRef
	}
	confirmations := maxConfirmations(order, eval)

	won, err := r.repo.TransitionOrder(ctx, order.ID, order.Status, domain.OrderStatusPaid,
		port.OrderUpdate{ObservedTxRef: &txRef, Confirmations: &confirmations})
	if err != nil {
		return err
	}
	if !won {
		// A concurrent pass got there first; it owns the side effects.
		r.logger.Debug("lost paid transition race", zap.Uint64("order", order.ID))
		return nil
	}

	r.logger.Info("order paid",
		zap.Uint64("order", order.ID),
		zap.String("currency", string(order.Currency)),
		zap.String("tx_ref", txRef),
		zap.Int64("confirmations", confirmations))

	return r.ledger.RecordPaid(ctx, order)
}

func (r *Reconciler) applyConfirming(ctx context.Context, order *domain.Order, eval *domain.Evaluation) error {
	txRef := eval.TxRef
	if order.ObservedTxRef != "" {
		txRef = order.ObservedTxRef
	}
	confirmations := maxConfirmations(order, eval)

	_, err := r.repo.TransitionOrder(ctx, order.ID, order.Status, domain.OrderStatusConfirming,
		port.OrderUpdate{ObservedTxRef: &txRef, Confirmations: &confirmations})
	return err
}

func (r *Reconciler) applyExpiry(ctx context.Context, order *domain.Order) error {
	if r.now().Sub(order.CreatedAt) <= r.expiry {
		return nil
	}

	won, err := r.repo.TransitionOrder(ctx, order.ID, order.Status,
		domain.OrderStatusExpired, port.OrderUpdate{})
	if err != nil {
		return err
	}
	if won {
		r.logger.Info("order expired without payment",
			zap.Uint64("order", order.ID),
			zap.String("currency", string(order.Currency)))
	}
	return nil
}

// warnAmbiguousOrders flags non-terminal orders of one currency that share a
// receiving address and expect amounts within tolerance of each other. The
// amount+window matching cannot tell such payments apart; this is surfaced
// as an operational risk instead of silently resolved.
func (r *Reconciler) warnAmbiguousOrders(currency domain.Currency, orders []*domain.Order) {
	if currency == domain.CurrencyXMR {
		return // matched by payment id, never ambiguous
	}
	tolerance := domain.DefaultTolerance(currency)

	for i := 0; i < len(orders); i++ {
		for j := i + 1; j < len(orders); j++ {
			if orders[i].Address != orders[j].Address {
				continue
			}
			diff, err := orders[i].ExpectedAmount.Sub(orders[j].ExpectedAmount)
			if err != nil {
				continue
			}
			if diff.Abs().Cmp(tolerance) <= 0 {
				r.logger.Warn("ambiguous concurrent orders: same address and overlapping amounts",
					zap.String("currency", string(currency)),
					zap.Uint64("order_a", orders[i].ID),
					zap.Uint64("order_b", orders[j].ID),
					zap.String("address", orders[i].Address))
			}
		}
	}
}

func maxConfirmations(order *domain.Order, eval *domain.Evaluation) int64 {
	if order.Confirmations > eval.Confirmations {
		return order.Confirmations
	}
	return eval.Confirmations
}
