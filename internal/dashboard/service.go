package dashboard

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/robson-hennes/myfinai/internal/billing"
	"github.com/robson-hennes/myfinai/internal/clients"
	"github.com/robson-hennes/myfinai/internal/collections"
	"github.com/robson-hennes/myfinai/internal/subscriptions"
	"github.com/robson-hennes/myfinai/internal/transactions"
)

// Overview is the landing-page aggregate.
type Overview struct {
	Clients             int                        `json:"clients"`
	ActiveSubscriptions int                        `json:"active_subscriptions"`
	MonthlyRevenue      float64                    `json:"monthly_revenue"`
	MonthlyRevenueLabel string                     `json:"monthly_revenue_label"`
	OverdueCharges      int                        `json:"overdue_charges"`
	Summary             transactions.Summary       `json:"summary"`
	RecentTransactions  []transactions.Transaction `json:"recent_transactions"`
}

// ClientSource is the slice of the client service the dashboard needs.
type ClientSource interface {
	List(ctx context.Context, req clients.ListClientsRequest) ([]clients.Client, int, error)
}

// RevenueSource provides the subscription counts and the monthly
// recurring revenue total.
type RevenueSource interface {
	TotalMonthlyRevenue(ctx context.Context) (float64, error)
	List(ctx context.Context, req subscriptions.ListSubscriptionsRequest) ([]subscriptions.Subscription, error)
}

// TransactionSource provides movement aggregates and the recent feed.
type TransactionSource interface {
	Summarize(ctx context.Context) (*transactions.Summary, error)
	List(ctx context.Context, req transactions.ListTransactionsRequest) ([]transactions.Transaction, error)
}

// ChargeSource provides the classified subscription snapshot.
type ChargeSource interface {
	Snapshot(ctx context.Context, today time.Time) ([]collections.Item, error)
}

// Service aggregates the dashboard overview, cached behind Redis.
type Service struct {
	clients ClientSource
	revenue RevenueSource
	txs     TransactionSource
	charges ChargeSource
	cache   *Cache
}

// NewService builds a Service instance. cache may be nil.
func NewService(cs ClientSource, rs RevenueSource, ts TransactionSource, charges ChargeSource, cache *Cache) *Service {
	return &Service{clients: cs, revenue: rs, txs: ts, charges: charges, cache: cache}
}

// Overview returns the aggregate, serving from cache when fresh.
func (s *Service) Overview(ctx context.Context, today time.Time) (*Overview, error) {
	key, err := s.cache.BuildKey(ctx, "dashboard", "overview", today.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}

	var out Overview
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (interface{}, error) {
		return s.build(ctx, today)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Invalidate bumps the cache version after a write.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

func (s *Service) build(ctx context.Context, today time.Time) (*Overview, error) {
	var (
		out   Overview
		items []collections.Item
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, total, err := s.clients.List(ctx, clients.ListClientsRequest{Limit: 1})
		if err != nil {
			return err
		}
		out.Clients = total
		return nil
	})
	g.Go(func() error {
		mrr, err := s.revenue.TotalMonthlyRevenue(ctx)
		if err != nil {
			return err
		}
		out.MonthlyRevenue = mrr
		return nil
	})
	g.Go(func() error {
		active := true
		subs, err := s.revenue.List(ctx, subscriptions.ListSubscriptionsRequest{IsActive: &active})
		if err != nil {
			return err
		}
		out.ActiveSubscriptions = len(subs)
		return nil
	})
	g.Go(func() error {
		summary, err := s.txs.Summarize(ctx)
		if err != nil {
			return err
		}
		out.Summary = *summary
		return nil
	})
	g.Go(func() error {
		recent, err := s.txs.List(ctx, transactions.ListTransactionsRequest{Limit: 10})
		if err != nil {
			return err
		}
		out.RecentTransactions = recent
		return nil
	})
	g.Go(func() error {
		snapshot, err := s.charges.Snapshot(ctx, today)
		if err != nil {
			return err
		}
		items = snapshot
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, item := range items {
		if item.Status.State == billing.CycleOverdue {
			out.OverdueCharges++
		}
	}
	out.MonthlyRevenueLabel = billing.FormatBRL(out.MonthlyRevenue)
	if out.RecentTransactions == nil {
		out.RecentTransactions = []transactions.Transaction{}
	}
	return &out, nil
}
