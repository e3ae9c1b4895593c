package product

import (
	"context"
	"testing"

	"tienda-be/internal/category"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, p *Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockRepository) GetAll(ctx context.Context) ([]Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Product), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id int64) (*Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Product), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, p *Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) Create(ctx context.Context, c *category.Category) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCategoryRepository) GetAll(ctx context.Context) ([]category.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]category.Category), args.Error(1)
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id int64) (*category.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*category.Category), args.Error(1)
}

func (m *MockCategoryRepository) Update(ctx context.Context, c *category.Category) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestCreate(t *testing.T) {
	repo := new(MockRepository)
	catRepo := new(MockCategoryRepository)
	svc := NewService(repo, catRepo)
	ctx := context.Background()

	input := ProductInput{Name: "Teclado", Price: 10.00, Stock: 5, CategoryID: 2}

	t.Run("Success", func(t *testing.T) {
		catRepo.On("GetByID", ctx, int64(2)).
			Return(&category.Category{ID: 2, Name: "Periféricos"}, nil).Once()
		repo.On("Create", ctx, mock.AnythingOfType("*product.Product")).
			Run(func(args mock.Arguments) {
				args.Get(1).(*Product).ID = 10
			}).
			Return(nil).Once()

		p, err := svc.Create(ctx, input)
		require.NoError(t, err)
		assert.Equal(t, int64(10), p.ID)
		assert.Equal(t, "Periféricos", p.Category.Name)
	})

	t.Run("CategoryNotFound", func(t *testing.T) {
		catRepo.On("GetByID", ctx, int64(2)).
			Return(nil, category.ErrCategoryNotFound).Once()

		_, err := svc.Create(ctx, input)
		assert.ErrorIs(t, err, category.ErrCategoryNotFound)
	})

	t.Run("InvalidPrice", func(t *testing.T) {
		bad := input
		bad.Price = 0

		_, err := svc.Create(ctx, bad)
		assert.ErrorIs(t, err, ErrInvalidPrice)
	})

	t.Run("NegativeStock", func(t *testing.T) {
		bad := input
		bad.Stock = -1

		_, err := svc.Create(ctx, bad)
		assert.ErrorIs(t, err, ErrInvalidStock)
	})

	t.Run("EmptyName", func(t *testing.T) {
		bad := input
		bad.Name = "  "

		_, err := svc.Create(ctx, bad)
		assert.ErrorIs(t, err, ErrNameRequired)
	})
}

func TestUpdate_CategoryChange(t *testing.T) {
	repo := new(MockRepository)
	catRepo := new(MockCategoryRepository)
	svc := NewService(repo, catRepo)
	ctx := context.Background()

	existing := &Product{
		ID: 10, Name: "Teclado", Price: 10.00, Stock: 5,
		Category: category.Summary{ID: 2, Name: "Periféricos"},
	}

	repo.On("GetByID", ctx, int64(10)).Return(existing, nil).Once()
	catRepo.On("GetByID", ctx, int64(3)).
		Return(&category.Category{ID: 3, Name: "Oficina"}, nil).Once()
	repo.On("Update", ctx, mock.AnythingOfType("*product.Product")).Return(nil).Once()

	p, err := svc.Update(ctx, 10, ProductInput{Name: "Teclado", Price: 12.00, Stock: 4, CategoryID: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(3), p.Category.ID)
	assert.Equal(t, 12.00, p.Price)
}

func TestDelete_NotFound(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, new(MockCategoryRepository))

	repo.On("Delete", mock.Anything, int64(404)).Return(ErrProductNotFound).Once()

	err := svc.Delete(context.Background(), 404)
	assert.ErrorIs(t, err, ErrProductNotFound)
}
