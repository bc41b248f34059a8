package cart

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/monkeysroasters/roastery-backend/internal/pricing"
	"github.com/monkeysroasters/roastery-backend/pkg/db/models"
	"github.com/monkeysroasters/roastery-backend/pkg/enums"
	pkgerrors "github.com/monkeysroasters/roastery-backend/pkg/errors"
)

type stubCartRepo struct {
	items map[uuid.UUID]*models.CartItem
}

func newStubCartRepo() *stubCartRepo {
	return &stubCartRepo{items: make(map[uuid.UUID]*models.CartItem)}
}

func (s *stubCartRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubCartRepo) ListByUser(ctx context.Context, userID int64) ([]models.CartItem, error) {
	var out []models.CartItem
	for _, item := range s.items {
		if item.UserID == userID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (s *stubCartRepo) FindItem(ctx context.Context, itemID uuid.UUID, userID int64) (*models.CartItem, error) {
	item, ok := s.items[itemID]
	if !ok || item.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return item, nil
}

func (s *stubCartRepo) FindByProductFormat(ctx context.Context, userID int64, productID uuid.UUID, format enums.ProductFormat) (*models.CartItem, error) {
	for _, item := range s.items {
		if item.UserID == userID && item.ProductID == productID && item.Format == format {
			return item, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCartRepo) Create(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	item.ID = uuid.New()
	s.items[item.ID] = item
	return item, nil
}

func (s *stubCartRepo) SetQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	item, ok := s.items[itemID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	item.Quantity = quantity
	return nil
}

func (s *stubCartRepo) Delete(ctx context.Context, itemID uuid.UUID) error {
	if _, ok := s.items[itemID]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.items, itemID)
	return nil
}

func (s *stubCartRepo) Clear(ctx context.Context, userID int64) error {
	for id, item := range s.items {
		if item.UserID == userID {
			delete(s.items, id)
		}
	}
	return nil
}

func (s *stubCartRepo) Count(ctx context.Context, userID int64) (int, error) {
	count := 0
	for _, item := range s.items {
		if item.UserID == userID {
			count++
		}
	}
	return count, nil
}

type stubProductLoader struct {
	products map[uuid.UUID]*models.Product
}

func (s *stubProductLoader) FindByID(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, ok := s.products[productID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return product, nil
}

type stubUserLoader struct {
	users map[int64]*models.User
}

func (s *stubUserLoader) FindByID(ctx context.Context, userID int64) (*models.User, error) {
	user, ok := s.users[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

type stubLoyalty struct{ percent int }

func (s stubLoyalty) DiscountPercentFor(user *models.User) int { return s.percent }

type stubRules struct{ rules []models.VolumeDiscountRule }

func (s stubRules) ActiveRules(ctx context.Context) ([]models.VolumeDiscountRule, error) {
	return s.rules, nil
}

type stubPromoFinder struct{ promos map[string]*models.PromoCode }

func (s stubPromoFinder) FindUsable(ctx context.Context, code string, now time.Time) (*models.PromoCode, error) {
	promo, ok := s.promos[code]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "promo code not found")
	}
	return promo, nil
}

type stubCartTx struct{}

func (stubCartTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type cartFixture struct {
	repo     *stubCartRepo
	products *stubProductLoader
	users    *stubUserLoader
	promos   stubPromoFinder
	svc      Service
}

func newCartFixture(t *testing.T, loyaltyPercent int, rules []models.VolumeDiscountRule) *cartFixture {
	t.Helper()

	f := &cartFixture{
		repo:     newStubCartRepo(),
		products: &stubProductLoader{products: make(map[uuid.UUID]*models.Product)},
		users:    &stubUserLoader{users: map[int64]*models.User{42: {ID: 42, LoyaltyLevel: 1}}},
		promos:   stubPromoFinder{promos: make(map[string]*models.PromoCode)},
	}
	svc, err := NewService(
		f.repo, stubCartTx{}, f.products, f.users,
		stubLoyalty{percent: loyaltyPercent}, stubRules{rules: rules}, f.promos,
		pricing.DefaultDeliveryRates(), nil,
	)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f *cartFixture) addProduct(name string, price300, price1kg int, active bool) *models.Product {
	product := &models.Product{
		ID:        uuid.New(),
		Category:  "espresso",
		Name:      name,
		Price300g: price300,
		Price1kg:  price1kg,
		IsActive:  active,
	}
	f.products.products[product.ID] = product
	return product
}

func (f *cartFixture) seedLine(userID int64, product *models.Product, format enums.ProductFormat, quantity int) *models.CartItem {
	item := &models.CartItem{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: product.ID,
		Format:    format,
		Quantity:  quantity,
		Product:   product,
	}
	f.repo.items[item.ID] = item
	return item
}

func TestAddItemMergesSameProductAndFormat(t *testing.T) {
	f := newCartFixture(t, 0, nil)
	product := f.addProduct("Brazil Santos", 140, 420, true)
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, 42, AddItemInput{ProductID: product.ID, Format: "300g", Quantity: 2})
	require.NoError(t, err)

	_, err = f.svc.AddItem(ctx, 42, AddItemInput{ProductID: product.ID, Format: "300g", Quantity: 3})
	require.NoError(t, err)

	require.Len(t, f.repo.items, 1)
	for _, item := range f.repo.items {
		assert.Equal(t, 5, item.Quantity)
	}
}

func TestAddItemSeparateLinePerFormat(t *testing.T) {
	f := newCartFixture(t, 0, nil)
	product := f.addProduct("Brazil Santos", 140, 420, true)
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, 42, AddItemInput{ProductID: product.ID, Format: "300g", Quantity: 1})
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, 42, AddItemInput{ProductID: product.ID, Format: "1kg", Quantity: 1})
	require.NoError(t, err)

	assert.Len(t, f.repo.items, 2)
}

func TestAddItemRejectsInactiveProduct(t *testing.T) {
	f := newCartFixture(t, 0, nil)
	product := f.addProduct("Old Harvest", 140, 420, false)

	_, err := f.svc.AddItem(context.Background(), 42, AddItemInput{ProductID: product.ID, Format: "300g", Quantity: 1})
	domainErr := pkgerrors.As(err)
	require.NotNil(t, domainErr)
	assert.Equal(t, pkgerrors.CodeValidation, domainErr.Code())
}

func TestChangeQuantityRemovesLineAtZero(t *testing.T) {
	f := newCartFixture(t, 0, nil)
	product := f.addProduct("Brazil Santos", 140, 420, true)
	item := f.seedLine(42, product, enums.ProductFormatPack300, 2)
	ctx := context.Background()

	_, err := f.svc.ChangeQuantity(ctx, 42, item.ID, -1)
	require.NoError(t, err)
	assert.Equal(t, 1, f.repo.items[item.ID].Quantity)

	_, err = f.svc.ChangeQuantity(ctx, 42, item.ID, -1)
	require.NoError(t, err)
	assert.NotContains(t, f.repo.items, item.ID)
}

func TestChangeQuantityOtherUsersItemNotFound(t *testing.T) {
	f := newCartFixture(t, 0, nil)
	product := f.addProduct("Brazil Santos", 140, 420, true)
	item := f.seedLine(77, product, enums.ProductFormatPack300, 2)

	_, err := f.svc.ChangeQuantity(context.Background(), 42, item.ID, 1)
	domainErr := pkgerrors.As(err)
	require.NotNil(t, domainErr)
	assert.Equal(t, pkgerrors.CodeNotFound, domainErr.Code())
}

func TestQuoteEmptyCart(t *testing.T) {
	f := newCartFixture(t, 0, nil)

	_, err := f.svc.Quote(context.Background(), 42, "")
	domainErr := pkgerrors.As(err)
	require.NotNil(t, domainErr)
	assert.Equal(t, pkgerrors.CodeValidation, domainErr.Code())
}

func TestQuoteComputesVolumeDiscountAndDelivery(t *testing.T) {
	rules := []models.VolumeDiscountRule{
		{Kind: enums.VolumeRuleKindPacks, Threshold: 7, Percent: 25, IsActive: true},
	}
	f := newCartFixture(t, 0, rules)
	product := f.addProduct("Brazil Santos", 140, 420, true)
	f.seedLine(42, product, enums.ProductFormatPack300, 7)

	quote, err := f.svc.Quote(context.Background(), 42, "")
	require.NoError(t, err)
	assert.Equal(t, 980, quote.Subtotal)
	assert.Equal(t, 25, quote.VolumePercent)
	assert.Equal(t, 245, quote.VolumeAmount)
	assert.Equal(t, 735, quote.FinalTotal)
	// below 1500 the saved method defaults to Nova Poshta rates
	assert.Equal(t, 65, quote.DeliveryCost)
	assert.Equal(t, 1500-735, quote.AmountToFreeDelivery)
}

func TestQuoteAppliesStrongerPromo(t *testing.T) {
	rules := []models.VolumeDiscountRule{
		{Kind: enums.VolumeRuleKindPacks, Threshold: 7, Percent: 25, IsActive: true},
	}
	f := newCartFixture(t, 0, rules)
	product := f.addProduct("Brazil Santos", 140, 420, true)
	f.seedLine(42, product, enums.ProductFormatPack300, 7)
	f.promos.promos["VIP30"] = &models.PromoCode{Code: "VIP30", Percent: 30, Active: true}

	quote, err := f.svc.Quote(context.Background(), 42, "VIP30")
	require.NoError(t, err)
	assert.Equal(t, 30, quote.PromoPercent)
	assert.Zero(t, quote.VolumePercent)
	require.NotNil(t, quote.PromoCode)
	assert.Equal(t, "VIP30", *quote.PromoCode)
}

func TestQuoteRejectsPromoBelowMinimum(t *testing.T) {
	f := newCartFixture(t, 0, nil)
	product := f.addProduct("Brazil Santos", 140, 420, true)
	f.seedLine(42, product, enums.ProductFormatPack300, 1)
	f.promos.promos["BIG20"] = &models.PromoCode{Code: "BIG20", Percent: 20, Active: true, MinOrderAmount: 1000}

	_, err := f.svc.Quote(context.Background(), 42, "BIG20")
	domainErr := pkgerrors.As(err)
	require.NotNil(t, domainErr)
	assert.Equal(t, pkgerrors.CodeValidation, domainErr.Code())
}

func TestGetCartTotals(t *testing.T) {
	f := newCartFixture(t, 0, nil)
	product := f.addProduct("Brazil Santos", 140, 420, true)
	f.seedLine(42, product, enums.ProductFormatPack300, 2)
	f.seedLine(42, product, enums.ProductFormatBag1Kg, 1)

	cart, err := f.svc.GetCart(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, 3, cart.ItemCount)
	assert.Equal(t, 2*140+420, cart.Subtotal)
	assert.InDelta(t, 1.6, cart.WeightKg, 0.0001)
}
