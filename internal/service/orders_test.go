package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-core/internal/auth"
	"storefront-core/internal/kvstore"
	"storefront-core/internal/models"
	"storefront-core/internal/notify"
)

var orderNumberPattern = regexp.MustCompile(`^PL\d{6}\d{3}$`)

func newTestOrders() (*OrderService, *CartService) {
	store := kvstore.New(kvstore.NewMemoryBackend())
	cart := NewCartService(store, testCatalog(), notify.NopSink{})
	orders := NewOrderService(store, cart, auth.NewStaticSession(testUser()), notify.NopSink{})
	return orders, cart
}

func testItems() []models.OrderLine {
	return []models.OrderLine{
		{ProductID: 1, ProductName: "No. 5 Eau de Parfum", Quantity: 2, Price: 100, Size: "50ml"},
	}
}

func TestCreateOrderAllocatesMonotonicIDs(t *testing.T) {
	orders, _ := newTestOrders()

	var got []int64
	for i := 0; i < 4; i++ {
		order, err := orders.CreateOrder(CreateOrderRequest{
			UserID:        "u1",
			Items:         testItems(),
			PaymentMethod: models.PaymentMethodCOD,
		})
		require.NoError(t, err)
		got = append(got, order.ID)
	}

	// Strictly increasing, no gaps, starting at 1.
	assert.Equal(t, []int64{1, 2, 3, 4}, got)
}

func TestCreateOrderFreezesItemsAndTotal(t *testing.T) {
	orders, _ := newTestOrders()

	items := testItems()
	order, err := orders.CreateOrder(CreateOrderRequest{
		UserID:        "u1",
		Items:         items,
		PaymentMethod: models.PaymentMethodCOD,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(200), order.TotalAmount)

	// Mutating the caller's slice must not reach into the stored order.
	items[0].Price = 9999
	items[0].Quantity = 99

	stored := orders.OrderByID(order.ID)
	require.NotNil(t, stored)
	assert.Equal(t, int64(100), stored.Items[0].Price)
	assert.Equal(t, 2, stored.Items[0].Quantity)
	assert.Equal(t, int64(200), stored.TotalAmount)
}

func TestCreateOrderRejectsEmptyItems(t *testing.T) {
	orders, _ := newTestOrders()

	_, err := orders.CreateOrder(CreateOrderRequest{UserID: "u1"})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)

	// Fail fast: nothing was persisted.
	assert.Empty(t, orders.UserOrders("u1"))
}

func TestCheckoutScenario(t *testing.T) {
	orders, cart := newTestOrders()

	_, err := cart.AddLine(1, 2, "50ml") // 2 x 100
	require.NoError(t, err)
	_, err = cart.AddLine(2, 1, "30ml") // 1 x 50
	require.NoError(t, err)

	total, err := cart.TotalPrice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(250), total)

	order, err := orders.CheckoutCart(context.Background(), testShipping(), models.PaymentMethodCOD)
	require.NoError(t, err)

	assert.Equal(t, int64(250), order.TotalAmount)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Regexp(t, orderNumberPattern, order.OrderNumber)
	assert.Equal(t, "u1", order.UserID)
	require.Len(t, order.Items, 2)

	// A successful checkout consumes the cart.
	assert.Empty(t, cart.Lines())
	assert.Equal(t, 0, cart.TotalQuantity())
}

func TestCheckoutLeavesOrderUntouchedByLaterCartChanges(t *testing.T) {
	orders, cart := newTestOrders()

	_, err := cart.AddLine(1, 2, "50ml")
	require.NoError(t, err)

	order, err := orders.CheckoutCart(context.Background(), testShipping(), models.PaymentMethodBanking)
	require.NoError(t, err)

	_, err = cart.AddLine(2, 5, "30ml")
	require.NoError(t, err)

	stored := orders.OrderByID(order.ID)
	require.NotNil(t, stored)
	assert.Equal(t, int64(200), stored.TotalAmount)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, int64(1), stored.Items[0].ProductID)
}

func TestCheckoutWithEmptyCartFailsBeforeAnyWrite(t *testing.T) {
	orders, cart := newTestOrders()

	_, err := orders.CheckoutCart(context.Background(), testShipping(), models.PaymentMethodCOD)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Empty(t, cart.Lines())
	assert.Empty(t, orders.UserOrders("u1"))
}

func TestCheckoutRequiresSignedInUser(t *testing.T) {
	store := kvstore.New(kvstore.NewMemoryBackend())
	cart := NewCartService(store, testCatalog(), notify.NopSink{})
	orders := NewOrderService(store, cart, auth.NewStaticSession(nil), notify.NopSink{})

	_, err := cart.AddLine(1, 1, "50ml")
	require.NoError(t, err)

	_, err = orders.CheckoutCart(context.Background(), testShipping(), models.PaymentMethodCOD)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestFailedOrderWriteDoesNotClearCart(t *testing.T) {
	backend := newFailingBackend()
	store := kvstore.New(backend)
	cart := NewCartService(store, testCatalog(), notify.NopSink{})
	orders := NewOrderService(store, cart, auth.NewStaticSession(testUser()), notify.NopSink{})

	_, err := cart.AddLine(1, 2, "50ml")
	require.NoError(t, err)

	backend.fail = true
	_, err = orders.CheckoutCart(context.Background(), testShipping(), models.PaymentMethodCOD)
	require.Error(t, err)

	var writeErr *kvstore.WriteError
	require.ErrorAs(t, err, &writeErr)

	// The order was not placed, so the cart must survive.
	backend.fail = false
	require.Len(t, cart.Lines(), 1)
	assert.Empty(t, orders.UserOrders("u1"))
}

func TestUserOrdersSortedMostRecentFirst(t *testing.T) {
	orders, _ := newTestOrders()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	times := []time.Time{base, base.Add(time.Hour), base.Add(2 * time.Hour)}
	for i, ts := range times {
		ts := ts
		orders.now = func() time.Time { return ts }
		_, err := orders.CreateOrder(CreateOrderRequest{
			UserID:        "u1",
			Items:         testItems(),
			PaymentMethod: models.PaymentMethodCOD,
		})
		require.NoError(t, err, "order %d", i)
	}

	got := orders.UserOrders("u1")
	require.Len(t, got, 3)
	assert.Equal(t, []int64{3, 2, 1}, []int64{got[0].ID, got[1].ID, got[2].ID})
	assert.True(t, got[0].CreatedAt.After(got[1].CreatedAt))
	assert.True(t, got[1].CreatedAt.After(got[2].CreatedAt))
}

func TestUserOrdersFiltersByOwner(t *testing.T) {
	orders, _ := newTestOrders()

	_, err := orders.CreateOrder(CreateOrderRequest{UserID: "u1", Items: testItems()})
	require.NoError(t, err)
	_, err = orders.CreateOrder(CreateOrderRequest{UserID: "u2", Items: testItems()})
	require.NoError(t, err)

	got := orders.UserOrders("u1")
	require.Len(t, got, 1)
	assert.Equal(t, "u1", got[0].UserID)
}

func TestOrderByIDMissReturnsNil(t *testing.T) {
	orders, _ := newTestOrders()
	assert.Nil(t, orders.OrderByID(42))
}

func TestOrderForCurrentUserDistinguishesForeignOrders(t *testing.T) {
	orders, _ := newTestOrders()

	mine, err := orders.CreateOrder(CreateOrderRequest{UserID: "u1", Items: testItems()})
	require.NoError(t, err)
	foreign, err := orders.CreateOrder(CreateOrderRequest{UserID: "u2", Items: testItems()})
	require.NoError(t, err)

	got, err := orders.OrderForCurrentUser(mine.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, mine.ID, got.ID)

	// Exists but foreign: unauthorized, not not-found.
	got, err = orders.OrderForCurrentUser(foreign.ID)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// Absent: nil, nil.
	got, err = orders.OrderForCurrentUser(999)
	assert.Nil(t, got)
	assert.NoError(t, err)
}

func TestUpdateOrderStatus(t *testing.T) {
	orders, _ := newTestOrders()

	order, err := orders.CreateOrder(CreateOrderRequest{UserID: "u1", Items: testItems()})
	require.NoError(t, err)

	ok, err := orders.UpdateOrderStatus(order.ID, models.OrderStatusShipped)
	require.NoError(t, err)
	assert.True(t, ok)

	stored := orders.OrderByID(order.ID)
	assert.Equal(t, models.OrderStatusShipped, stored.Status)
	assert.False(t, stored.UpdatedAt.Before(stored.CreatedAt))

	ok, err = orders.UpdateOrderStatus(999, models.OrderStatusShipped)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = orders.UpdateOrderStatus(order.ID, "mislaid")
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestCancelOrderGuard(t *testing.T) {
	orders, _ := newTestOrders()

	order, err := orders.CreateOrder(CreateOrderRequest{UserID: "u1", Items: testItems()})
	require.NoError(t, err)

	ok, err := orders.CancelOrder(order.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.OrderStatusCancelled, orders.OrderByID(order.ID).Status)

	// Already cancelled: refuse.
	_, err = orders.CancelOrder(order.ID)
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)

	shipped, err := orders.CreateOrder(CreateOrderRequest{UserID: "u1", Items: testItems()})
	require.NoError(t, err)
	_, err = orders.UpdateOrderStatus(shipped.ID, models.OrderStatusShipped)
	require.NoError(t, err)

	_, err = orders.CancelOrder(shipped.ID)
	assert.ErrorAs(t, err, &validationErr)

	ok, err = orders.CancelOrder(404)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAddTrackingInfo(t *testing.T) {
	orders, _ := newTestOrders()

	order, err := orders.CreateOrder(CreateOrderRequest{UserID: "u1", Items: testItems()})
	require.NoError(t, err)

	ok, err := orders.AddTrackingInfo(order.ID, "TRACK-0001", "3-5 days")
	require.NoError(t, err)
	assert.True(t, ok)

	stored := orders.OrderByID(order.ID)
	assert.Equal(t, "TRACK-0001", stored.TrackingNumber)
	assert.Equal(t, "3-5 days", stored.EstimatedDelivery)

	ok, err = orders.AddTrackingInfo(999, "TRACK-0002", "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOrderNumberIsNotDerivedFromID(t *testing.T) {
	orders, _ := newTestOrders()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	orders.now = func() time.Time { return base }
	a, err := orders.CreateOrder(CreateOrderRequest{UserID: "u1", Items: testItems()})
	require.NoError(t, err)
	assert.Regexp(t, orderNumberPattern, a.OrderNumber)

	orders.now = func() time.Time { return base.Add(7 * time.Millisecond) }
	b, err := orders.CreateOrder(CreateOrderRequest{UserID: "u1", Items: testItems()})
	require.NoError(t, err)
	assert.Regexp(t, orderNumberPattern, b.OrderNumber)
	assert.NotEqual(t, a.OrderNumber, b.OrderNumber)
}
