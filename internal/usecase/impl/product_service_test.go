package impl

import (
	"context"
	"fmt"
	"testing"
	"time"

	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	mockRepo "storefront/internal/mocks/repository"
	"storefront/internal/query"
	"storefront/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// productAdminFixtures holds all test dependencies for product admin tests.
type productAdminFixtures struct {
	service      usecase.ProductAdminUsecase
	queries      *query.Client
	productRepo  *mockRepo.MockProductRepository
	categoryRepo *mockRepo.MockCategoryRepository
}

func createTestProductAdminService(t *testing.T, user entity.User) productAdminFixtures {
	productRepo := mockRepo.NewMockProductRepository(t)
	categoryRepo := mockRepo.NewMockCategoryRepository(t)
	queries := newTestQueries()

	return productAdminFixtures{
		service:      NewProductAdminService(productRepo, categoryRepo, userStore(user), queries, newTestCache(), newDiscardLogger()),
		queries:      queries,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

// fiftyProducts returns 50 products of which every fifth is a mug.
func fiftyProducts() []entity.Product {
	products := make([]entity.Product, 0, 50)
	for i := range 50 {
		title := fmt.Sprintf("Desk Lamp %02d", i)
		if i%5 == 0 {
			title = fmt.Sprintf("Ceramic Mug %02d", i)
		}
		seller := "s1"
		if i%2 == 1 {
			seller = "s2"
		}
		products = append(products, entity.Product{
			ID:        fmt.Sprintf("p%02d", i),
			Title:     title,
			Price:     decimal.NewFromInt(int64(10 + i)),
			SellerID:  seller,
			Published: true,
		})
	}

	return products
}

func TestProductAdminService_Products_FilteredSinglePage(t *testing.T) {
	fx := createTestProductAdminService(t, entity.User{ID: "a1", Role: entity.RoleAdmin})

	fx.productRepo.On("ListAll", mock.Anything).Return(fiftyProducts(), nil).Once()

	res := fx.service.Products(context.Background(), usecase.ManageProductsInput{
		Filter: entity.ProductFilter{Title: "MUG"},
		Page:   1,
		Limit:  10,
	})

	require.True(t, res.HasData)
	assert.Len(t, res.Data.Items, 10)
	assert.Equal(t, 1, res.Data.TotalPages())
	assert.Equal(t, "1 to 10 of 10", res.Data.RangeLabel())
}

func TestProductAdminService_Products_SellerScope(t *testing.T) {
	fx := createTestProductAdminService(t, entity.User{ID: "s1", Role: entity.RoleSeller})
	ctx := context.Background()

	fx.productRepo.On("ListAll", mock.Anything).Return(fiftyProducts(), nil).Once()

	// A seller cannot widen the scope through the filter.
	res := fx.service.Products(ctx, usecase.ManageProductsInput{
		Filter: entity.ProductFilter{SellerID: "s2"},
		Page:   3,
		Limit:  10,
	})

	require.True(t, res.HasData)
	assert.Equal(t, 25, res.Data.Total)
	assert.Equal(t, 3, res.Data.Page)
	for _, p := range res.Data.Items {
		assert.Equal(t, "s1", p.SellerID)
	}

	// The filter runs on the cached list.
	next := fx.service.Products(ctx, usecase.ManageProductsInput{Page: 4, Limit: 10})
	assert.Equal(t, "21 to 25 of 25", next.Data.RangeLabel())
	fx.productRepo.AssertNumberOfCalls(t, "ListAll", 1)
}

func TestProductAdminService_DeletedProducts(t *testing.T) {
	fx := createTestProductAdminService(t, entity.User{ID: "s1", Role: entity.RoleSeller})
	deletedAt := time.Now()

	fx.productRepo.On("ListDeleted", mock.Anything).Return([]entity.Product{
		{ID: "p1", SellerID: "s1", DeletedAt: &deletedAt},
		{ID: "p2", SellerID: "s2", DeletedAt: &deletedAt},
	}, nil).Once()

	res := fx.service.DeletedProducts(context.Background())

	require.Len(t, res.Data, 1)
	assert.Equal(t, "p1", res.Data[0].ID)
	assert.True(t, res.Data[0].IsDeleted())
}

func TestProductAdminService_SetPublished_InvalidatesLists(t *testing.T) {
	fx := createTestProductAdminService(t, entity.User{ID: "a1", Role: entity.RoleAdmin})
	ctx := context.Background()

	catalogKey := query.K(resourceProducts, 1, 10, "", "")
	query.SetData(fx.queries, catalogKey, func(entity.Page[entity.Product], bool) entity.Page[entity.Product] {
		return entity.Page[entity.Product]{Page: 1, Limit: 10}
	})
	query.SetData(fx.queries, query.K(resourceProduct, "p1"), func(entity.Product, bool) entity.Product {
		return entity.Product{ID: "p1", Published: true}
	})

	fx.productRepo.On("SetPublished", mock.Anything, "p1", false).
		Return(&entity.Product{ID: "p1", Published: false}, nil).
		Once()

	product, err := fx.service.SetPublished(ctx, "p1", false)

	require.NoError(t, err)
	assert.False(t, product.Published)
	assert.True(t, query.Peek[entity.Page[entity.Product]](fx.queries, catalogKey).IsStale)
	assert.True(t, query.Peek[entity.Product](fx.queries, query.K(resourceProduct, "p1")).IsStale)
}

func TestProductAdminService_DeleteAndRestore(t *testing.T) {
	fx := createTestProductAdminService(t, entity.User{ID: "a1", Role: entity.RoleAdmin})
	ctx := context.Background()

	fx.productRepo.On("Delete", mock.Anything, "p1").Return(nil).Once()
	fx.productRepo.On("Restore", mock.Anything, "p1").Return(&entity.Product{ID: "p1"}, nil).Once()

	require.NoError(t, fx.service.Delete(ctx, "p1"))

	product, err := fx.service.Restore(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, product.IsDeleted())
}

func TestProductAdminService_Create_Validation(t *testing.T) {
	fx := createTestProductAdminService(t, entity.User{ID: "s1", Role: entity.RoleSeller})

	_, err := fx.service.Create(context.Background(), entity.ProductDraft{
		Price: decimal.NewFromInt(-1),
		Stock: 3,
	})

	require.Error(t, err)
	fields := domainerrors.AsAppError(err).Fields()
	require.Len(t, fields, 2)
	assert.Equal(t, "title", fields[0].Field)
	assert.Equal(t, "price", fields[1].Field)
}

func TestProductAdminService_Create_FailureSurfacesFieldErrors(t *testing.T) {
	fx := createTestProductAdminService(t, entity.User{ID: "s1", Role: entity.RoleSeller})
	draft := entity.ProductDraft{Title: "Mug", Price: decimal.NewFromInt(12), Stock: 4}

	fx.productRepo.On("Create", mock.Anything, draft).
		Return(nil, domainerrors.FromStatus(422, "Invalid product", []domainerrors.FieldError{{Field: "categories", Message: "at least one category"}})).
		Once()

	_, err := fx.service.Create(context.Background(), draft)

	require.Error(t, err)
	assert.True(t, domainerrors.IsKind(err, domainerrors.KindValidation))
	assert.Equal(t, "categories", domainerrors.AsAppError(err).Fields()[0].Field)
}

func TestProductAdminService_Categories(t *testing.T) {
	fx := createTestProductAdminService(t, entity.User{ID: "a1", Role: entity.RoleAdmin})
	ctx := context.Background()

	query.SetData(fx.queries, query.K(resourceCategories), func([]entity.Category, bool) []entity.Category {
		return []entity.Category{}
	})

	fx.categoryRepo.On("Create", mock.Anything, "Garden").Return(&entity.Category{ID: "c1", Name: "Garden"}, nil).Once()
	fx.categoryRepo.On("Update", mock.Anything, "c1", "Outdoor").Return(&entity.Category{ID: "c1", Name: "Outdoor"}, nil).Once()
	fx.categoryRepo.On("Delete", mock.Anything, "c1").Return(nil).Once()

	_, err := fx.service.CreateCategory(ctx, "  Garden ")
	require.NoError(t, err)
	assert.True(t, query.Peek[[]entity.Category](fx.queries, query.K(resourceCategories)).IsStale)

	category, err := fx.service.UpdateCategory(ctx, "c1", "Outdoor")
	require.NoError(t, err)
	assert.Equal(t, "Outdoor", category.Name)

	require.NoError(t, fx.service.DeleteCategory(ctx, "c1"))

	_, err = fx.service.CreateCategory(ctx, " ")
	assert.True(t, domainerrors.IsKind(err, domainerrors.KindValidation))
}
