package order

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tienda-be/internal/client"
	"tienda-be/internal/product"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockClientService struct {
	mock.Mock
}

func (m *MockClientService) Create(ctx context.Context, input client.ClientInput) (*client.Client, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Client), args.Error(1)
}

func (m *MockClientService) GetAll(ctx context.Context) ([]client.Client, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]client.Client), args.Error(1)
}

func (m *MockClientService) GetByID(ctx context.Context, id int64) (*client.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Client), args.Error(1)
}

func (m *MockClientService) GetBySubject(ctx context.Context, subjectID string) (*client.Client, error) {
	args := m.Called(ctx, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Client), args.Error(1)
}

func (m *MockClientService) Update(ctx context.Context, id int64, input client.ClientInput) (*client.Client, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Client), args.Error(1)
}

func (m *MockClientService) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockClientService) ResetPassword(ctx context.Context, id int64, newPassword string) error {
	args := m.Called(ctx, id, newPassword)
	return args.Error(0)
}

func (m *MockClientService) IsOwner(ctx context.Context, clientID int64, subjectID string) bool {
	args := m.Called(ctx, clientID, subjectID)
	return args.Bool(0)
}

// fakeRepo is an in-memory Repository. WithTx holds a mutex for the whole
// callback and restores a snapshot on error, modeling the serialization and
// atomicity the SQL implementation gets from row locks and rollback.
type fakeRepo struct {
	mu       sync.Mutex
	products map[int64]*product.Summary
	orders   map[int64]*Order
	subjects map[int64]string // client id -> subject id
	nextID   int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		products: make(map[int64]*product.Summary),
		orders:   make(map[int64]*Order),
		subjects: make(map[int64]string),
		nextID:   1,
	}
}

func (f *fakeRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prodSnap := make(map[int64]*product.Summary, len(f.products))
	for id, p := range f.products {
		cp := *p
		prodSnap[id] = &cp
	}
	orderSnap := make(map[int64]*Order, len(f.orders))
	for id, o := range f.orders {
		cp := *o
		cp.Items = append([]OrderItem(nil), o.Items...)
		orderSnap[id] = &cp
	}
	idSnap := f.nextID

	if err := fn(ctx); err != nil {
		f.products = prodSnap
		f.orders = orderSnap
		f.nextID = idSnap
		return err
	}
	return nil
}

func (f *fakeRepo) GetProductForUpdate(_ context.Context, productID int64) (*product.Summary, error) {
	p, ok := f.products[productID]
	if !ok {
		return nil, product.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRepo) SetProductStock(_ context.Context, productID int64, stock int) error {
	p, ok := f.products[productID]
	if !ok {
		return product.ErrProductNotFound
	}
	p.Stock = stock
	return nil
}

func (f *fakeRepo) InsertOrder(_ context.Context, o *Order) error {
	o.ID = f.nextID
	f.nextID++
	cp := *o
	cp.Items = append([]OrderItem(nil), o.Items...)
	f.orders[o.ID] = &cp
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id int64) (*Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	cp := *o
	cp.Items = append([]OrderItem(nil), o.Items...)
	return &cp, nil
}

func (f *fakeRepo) GetForUpdate(ctx context.Context, id int64) (*Order, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeRepo) ListAll(_ context.Context) ([]*Order, error) {
	var out []*Order
	for _, o := range f.orders {
		out = append(out, o)
	}
	return out, nil
}

func (f *fakeRepo) ListByClient(_ context.Context, clientID int64) ([]*Order, error) {
	var out []*Order
	for _, o := range f.orders {
		if o.ClientID == clientID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeRepo) SetStatus(_ context.Context, id int64, status Status) error {
	o, ok := f.orders[id]
	if !ok {
		return ErrOrderNotFound
	}
	o.Status = status
	return nil
}

func (f *fakeRepo) OwnerSubject(_ context.Context, orderID int64) (string, error) {
	o, ok := f.orders[orderID]
	if !ok {
		return "", ErrOrderNotFound
	}
	return f.subjects[o.ClientID], nil
}

func testClient() *client.Client {
	return &client.Client{
		ID:           1,
		Name:         "Ana García",
		Email:        "ana@example.com",
		SubjectID:    "subject-ana",
		RegisteredAt: time.Now(),
	}
}

func newTestService(repo Repository) (Service, *MockClientService) {
	clients := new(MockClientService)
	clients.On("GetByID", mock.Anything, int64(1)).Return(testClient(), nil)
	return NewService(repo, clients), clients
}

// --- Create ---

func TestCreate_Scenario(t *testing.T) {
	repo := newFakeRepo()
	repo.products[10] = &product.Summary{ID: 10, Name: "Teclado", Price: 10.00, Stock: 5}
	svc, _ := newTestService(repo)
	ctx := context.Background()

	o, err := svc.Create(ctx, 1, []NewOrderItem{{ProductID: 10, Quantity: 3}})
	require.NoError(t, err)
	assert.Equal(t, 30.00, o.Total)
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, 10.00, o.Items[0].UnitPrice)
	assert.Equal(t, 30.00, o.Items[0].Subtotal)
	assert.Equal(t, 2, repo.products[10].Stock)

	// Second order exceeds the remaining stock.
	_, err = svc.Create(ctx, 1, []NewOrderItem{{ProductID: 10, Quantity: 3}})
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(10), stockErr.ProductID)
	assert.Equal(t, 2, stockErr.Available)
	assert.Equal(t, 3, stockErr.Requested)
	assert.Equal(t, 2, repo.products[10].Stock)

	// Cancelling the first order restores the stock.
	require.NoError(t, svc.Cancel(ctx, o.ID))
	assert.Equal(t, 5, repo.products[10].Stock)
	cancelled, err := svc.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
}

func TestCreate_TotalMatchesSubtotals(t *testing.T) {
	repo := newFakeRepo()
	repo.products[10] = &product.Summary{ID: 10, Name: "Teclado", Price: 10.50, Stock: 10}
	repo.products[20] = &product.Summary{ID: 20, Name: "Ratón", Price: 4.25, Stock: 10}
	svc, _ := newTestService(repo)

	o, err := svc.Create(context.Background(), 1, []NewOrderItem{
		{ProductID: 10, Quantity: 2},
		{ProductID: 20, Quantity: 4},
	})
	require.NoError(t, err)

	var sum float64
	for _, it := range o.Items {
		sum += it.Subtotal
	}
	assert.Equal(t, sum, o.Total)
	assert.Equal(t, 8, repo.products[10].Stock)
	assert.Equal(t, 6, repo.products[20].Stock)

	// Line order follows the request order.
	assert.Equal(t, int64(10), o.Items[0].ProductID)
	assert.Equal(t, int64(20), o.Items[1].ProductID)
}

func TestCreate_EmptyItems(t *testing.T) {
	svc, _ := newTestService(newFakeRepo())

	_, err := svc.Create(context.Background(), 1, nil)
	assert.ErrorIs(t, err, ErrEmptyOrder)
}

func TestCreate_InvalidQuantity(t *testing.T) {
	svc, _ := newTestService(newFakeRepo())

	_, err := svc.Create(context.Background(), 1, []NewOrderItem{{ProductID: 10, Quantity: 0}})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestCreate_ClientNotFound(t *testing.T) {
	clients := new(MockClientService)
	clients.On("GetByID", mock.Anything, int64(99)).Return(nil, client.ErrClientNotFound)
	svc := NewService(newFakeRepo(), clients)

	_, err := svc.Create(context.Background(), 99, []NewOrderItem{{ProductID: 10, Quantity: 1}})
	assert.ErrorIs(t, err, client.ErrClientNotFound)
}

func TestCreate_ProductNotFound(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo)

	_, err := svc.Create(context.Background(), 1, []NewOrderItem{{ProductID: 404, Quantity: 1}})
	assert.ErrorIs(t, err, product.ErrProductNotFound)
	assert.Empty(t, repo.orders)
}

func TestCreate_AllOrNothing(t *testing.T) {
	repo := newFakeRepo()
	repo.products[10] = &product.Summary{ID: 10, Name: "Teclado", Price: 10.00, Stock: 5}
	repo.products[20] = &product.Summary{ID: 20, Name: "Ratón", Price: 4.00, Stock: 1}
	svc, _ := newTestService(repo)

	// First line would succeed, second line fails: nothing may change.
	_, err := svc.Create(context.Background(), 1, []NewOrderItem{
		{ProductID: 10, Quantity: 2},
		{ProductID: 20, Quantity: 3},
	})
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(20), stockErr.ProductID)

	assert.Equal(t, 5, repo.products[10].Stock, "earlier decrement must be rolled back")
	assert.Equal(t, 1, repo.products[20].Stock)
	assert.Empty(t, repo.orders)
}

func TestCreate_Concurrent(t *testing.T) {
	const stock = 5
	const callers = 20

	repo := newFakeRepo()
	repo.products[10] = &product.Summary{ID: 10, Name: "Teclado", Price: 10.00, Stock: stock}
	svc, _ := newTestService(repo)

	var wg sync.WaitGroup
	errs := make(chan error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(context.Background(), 1, []NewOrderItem{{ProductID: 10, Quantity: 1}})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	successes, failures := 0, 0
	for err := range errs {
		if err == nil {
			successes++
			continue
		}
		var stockErr *InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		failures++
	}

	assert.Equal(t, stock, successes)
	assert.Equal(t, callers-stock, failures)
	assert.Equal(t, 0, repo.products[10].Stock, "stock never goes negative")
}

// --- UpdateStatus ---

func TestUpdateStatus_MonotonicChain(t *testing.T) {
	repo := newFakeRepo()
	repo.products[10] = &product.Summary{ID: 10, Name: "Teclado", Price: 10.00, Stock: 5}
	svc, _ := newTestService(repo)
	ctx := context.Background()

	o, err := svc.Create(ctx, 1, []NewOrderItem{{ProductID: 10, Quantity: 1}})
	require.NoError(t, err)

	for _, next := range []Status{StatusConfirmed, StatusShipped, StatusDelivered} {
		updated, err := svc.UpdateStatus(ctx, o.ID, next)
		require.NoError(t, err)
		assert.Equal(t, next, updated.Status)
	}

	// Delivered is terminal.
	_, err = svc.UpdateStatus(ctx, o.ID, StatusShipped)
	var transErr *InvalidTransitionError
	require.ErrorAs(t, err, &transErr)
	assert.Equal(t, StatusDelivered, transErr.From)
}

func TestUpdateStatus_RejectsRegression(t *testing.T) {
	repo := newFakeRepo()
	repo.products[10] = &product.Summary{ID: 10, Name: "Teclado", Price: 10.00, Stock: 5}
	svc, _ := newTestService(repo)
	ctx := context.Background()

	o, err := svc.Create(ctx, 1, []NewOrderItem{{ProductID: 10, Quantity: 1}})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, o.ID, StatusDelivered)
	var transErr *InvalidTransitionError
	assert.ErrorAs(t, err, &transErr)
}

func TestUpdateStatus_UnknownStatus(t *testing.T) {
	svc, _ := newTestService(newFakeRepo())

	_, err := svc.UpdateStatus(context.Background(), 1, Status("PAID"))
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestUpdateStatus_NotFound(t *testing.T) {
	svc, _ := newTestService(newFakeRepo())

	_, err := svc.UpdateStatus(context.Background(), 404, StatusConfirmed)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestUpdateStatus_CancelledRestoresStock(t *testing.T) {
	repo := newFakeRepo()
	repo.products[10] = &product.Summary{ID: 10, Name: "Teclado", Price: 10.00, Stock: 5}
	svc, _ := newTestService(repo)
	ctx := context.Background()

	o, err := svc.Create(ctx, 1, []NewOrderItem{{ProductID: 10, Quantity: 4}})
	require.NoError(t, err)
	require.Equal(t, 1, repo.products[10].Stock)

	updated, err := svc.UpdateStatus(ctx, o.ID, StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, updated.Status)
	assert.Equal(t, 5, repo.products[10].Stock)
}

// --- Cancel ---

func TestCancel_ShippedRejected(t *testing.T) {
	repo := newFakeRepo()
	repo.products[10] = &product.Summary{ID: 10, Name: "Teclado", Price: 10.00, Stock: 5}
	svc, _ := newTestService(repo)
	ctx := context.Background()

	o, err := svc.Create(ctx, 1, []NewOrderItem{{ProductID: 10, Quantity: 2}})
	require.NoError(t, err)
	repo.orders[o.ID].Status = StatusShipped

	err = svc.Cancel(ctx, o.ID)
	var transErr *InvalidTransitionError
	require.ErrorAs(t, err, &transErr)
	assert.Equal(t, StatusShipped, transErr.From)
	assert.Equal(t, 3, repo.products[10].Stock, "stock must stay untouched")

	got, err := svc.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, got.Status)
}

func TestCancel_AlreadyCancelled(t *testing.T) {
	repo := newFakeRepo()
	repo.products[10] = &product.Summary{ID: 10, Name: "Teclado", Price: 10.00, Stock: 5}
	svc, _ := newTestService(repo)
	ctx := context.Background()

	o, err := svc.Create(ctx, 1, []NewOrderItem{{ProductID: 10, Quantity: 2}})
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(ctx, o.ID))
	require.Equal(t, 5, repo.products[10].Stock)

	// A second cancel must not restock again.
	err = svc.Cancel(ctx, o.ID)
	var transErr *InvalidTransitionError
	require.ErrorAs(t, err, &transErr)
	assert.Equal(t, 5, repo.products[10].Stock)
}

func TestCancel_NotFound(t *testing.T) {
	svc, _ := newTestService(newFakeRepo())

	err := svc.Cancel(context.Background(), 404)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

// --- Ownership ---

func TestIsOwner(t *testing.T) {
	repo := newFakeRepo()
	repo.products[10] = &product.Summary{ID: 10, Name: "Teclado", Price: 10.00, Stock: 5}
	repo.subjects[1] = "subject-ana"
	svc, _ := newTestService(repo)
	ctx := context.Background()

	o, err := svc.Create(ctx, 1, []NewOrderItem{{ProductID: 10, Quantity: 1}})
	require.NoError(t, err)

	assert.True(t, svc.IsOwner(ctx, o.ID, "subject-ana"))
	assert.False(t, svc.IsOwner(ctx, o.ID, "subject-otro"))
}

func TestIsOwner_UnknownOrderFailsClosed(t *testing.T) {
	svc, _ := newTestService(newFakeRepo())

	assert.False(t, svc.IsOwner(context.Background(), 404, "subject-ana"))
}

// --- Listing ---

func TestListByClient_UnknownClient(t *testing.T) {
	clients := new(MockClientService)
	clients.On("GetByID", mock.Anything, int64(99)).Return(nil, client.ErrClientNotFound)
	svc := NewService(newFakeRepo(), clients)

	_, err := svc.ListByClient(context.Background(), 99)
	assert.ErrorIs(t, err, client.ErrClientNotFound)
}

func TestCreate_RepoFailurePropagates(t *testing.T) {
	repo := newFakeRepo()
	repo.products[10] = &product.Summary{ID: 10, Name: "Teclado", Price: 10.00, Stock: 5}

	boom := errors.New("db down")
	clients := new(MockClientService)
	clients.On("GetByID", mock.Anything, int64(1)).Return(nil, boom)
	svc := NewService(repo, clients)

	_, err := svc.Create(context.Background(), 1, []NewOrderItem{{ProductID: 10, Quantity: 1}})
	assert.ErrorIs(t, err, boom)
}
