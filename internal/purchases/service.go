package purchases

import (
	"context"
)

// Service is the read side of purchase history; writes happen inside the
// marketplace transaction through Repository
type Service interface {
	GetPurchase(ctx context.Context, id, caller string, isAdmin bool) (*Purchase, error)
	ListPurchases(ctx context.Context, query ListQuery) ([]Purchase, error)
	ListRefunds(ctx context.Context, eventID string) ([]Refund, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetPurchase(ctx context.Context, id, caller string, isAdmin bool) (*Purchase, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && p.BuyerLogin != caller && p.SellerLogin != caller {
		return nil, ErrNotYourPurchase
	}
	return p, nil
}

func (s *service) ListPurchases(ctx context.Context, query ListQuery) ([]Purchase, error) {
	return s.repo.List(ctx, query)
}

func (s *service) ListRefunds(ctx context.Context, eventID string) ([]Refund, error) {
	return s.repo.ListRefunds(ctx, eventID)
}
