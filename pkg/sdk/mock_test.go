package shopsearch

import (
	"context"
	"testing"

	"github.com/shoplens/shopsearch/internal/domain/product"
	"github.com/shoplens/shopsearch/internal/domain/search/request"
	"github.com/shoplens/shopsearch/internal/domain/search/result"
	healthuc "github.com/shoplens/shopsearch/internal/usecase/health"
)

// mockSearchUC records calls and returns canned pages.
type mockSearchUC struct {
	searchFn  func(ctx context.Context, req *request.Request) (result.Page, error)
	similarFn func(ctx context.Context, req *request.SimilarRequest) (result.Page, error)
	getFn     func(ctx context.Context, id string) (product.Product, error)

	lastSearch  *request.Request
	lastSimilar *request.SimilarRequest
}

func (m *mockSearchUC) Search(ctx context.Context, req *request.Request) (result.Page, error) {
	m.lastSearch = req
	if m.searchFn != nil {
		return m.searchFn(ctx, req)
	}
	return result.NewPage(nil, 0, false), nil
}

func (m *mockSearchUC) Similar(ctx context.Context, req *request.SimilarRequest) (result.Page, error) {
	m.lastSimilar = req
	if m.similarFn != nil {
		return m.similarFn(ctx, req)
	}
	return result.NewPage(nil, 0, false), nil
}

func (m *mockSearchUC) GetProduct(ctx context.Context, id string) (product.Product, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return product.Product{}, ErrProductNotFound
}

type mockActivityUC struct {
	trackFn    func(ctx context.Context, productID, action string) (int64, error)
	lastID     string
	lastAction string
}

func (m *mockActivityUC) Track(ctx context.Context, productID, action string) (int64, error) {
	m.lastID = productID
	m.lastAction = action
	if m.trackFn != nil {
		return m.trackFn(ctx, productID, action)
	}
	return 1, nil
}

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(ctx context.Context) healthuc.Report {
	return m.report
}

// newTestClient builds a Client with mocks in place of the real services.
func newTestClient(search *mockSearchUC, activity *mockActivityUC, health *mockHealthUC) *Client {
	return &Client{
		searchSvc:   search,
		activitySvc: activity,
		healthSvc:   health,
	}
}

func testDomainProduct(t *testing.T, id string, popularity int64) product.Product {
	t.Helper()
	return product.Reconstruct(
		id, "Trail Runner", "Lightweight trail shoes", "shoes,trail", "Footwear", "Acme",
		119.99, 139.99, 14, 4.6, popularity, "https://img.example/tr.jpg", "https://shop.example/tr",
	)
}
