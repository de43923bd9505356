package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-marketplace-services/cache"
)

// mockRepo is a stateful in-memory cart repository that tracks method calls
// so tests can verify caching and invariant behaviour.
type mockRepo struct {
	mu        sync.Mutex
	carts     map[string]*Cart // by cart id
	items     map[string]*Item // by item id
	callCount map[string]int
	errs      map[string]error
	nextID    int
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		carts:     make(map[string]*Cart),
		items:     make(map[string]*Item),
		callCount: make(map[string]int),
		errs:      make(map[string]error),
	}
}

func (m *mockRepo) track(method string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount[method]++
	return m.errs[method]
}

func (m *mockRepo) calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount[method]
}

func (m *mockRepo) totalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.callCount {
		total += n
	}
	return total
}

func (m *mockRepo) failWith(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[method] = err
}

func (m *mockRepo) id(prefix string) string {
	m.nextID++
	return fmt.Sprintf("%s-%d", prefix, m.nextID)
}

func (m *mockRepo) FindCartByUserID(ctx context.Context, userID string) (*Cart, error) {
	if err := m.track("FindCartByUserID"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.carts {
		if c.UserID == userID {
			return c, nil
		}
	}
	return nil, nil
}

func (m *mockRepo) FindCartByID(ctx context.Context, id string) (*Cart, error) {
	if err := m.track("FindCartByID"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.carts[id], nil
}

func (m *mockRepo) CreateCart(ctx context.Context, c *Cart) (*Cart, error) {
	if err := m.track("CreateCart"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = m.id("cart")
	c.CreatedAt = time.Now().UTC()
	m.carts[c.ID] = c
	return c, nil
}

func (m *mockRepo) FindCartItems(ctx context.Context, cartID string) ([]*Item, error) {
	if err := m.track("FindCartItems"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var items []*Item
	for _, item := range m.items {
		if item.CartID == cartID {
			items = append(items, item)
		}
	}
	return items, nil
}

func (m *mockRepo) FindCartItemByListing(ctx context.Context, cartID, listingID string) (*Item, error) {
	if err := m.track("FindCartItemByListing"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items {
		if item.CartID == cartID && item.ListingID == listingID {
			return item, nil
		}
	}
	return nil, nil
}

func (m *mockRepo) FindCartItemByID(ctx context.Context, id string) (*Item, error) {
	if err := m.track("FindCartItemByID"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[id], nil
}

func (m *mockRepo) AddCartItem(ctx context.Context, item *Item) (*Item, error) {
	if err := m.track("AddCartItem"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	item.ID = m.id("item")
	m.items[item.ID] = item
	return item, nil
}

func (m *mockRepo) UpdateCartItem(ctx context.Context, item *Item) (*Item, error) {
	if err := m.track("UpdateCartItem"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.ID] = item
	return item, nil
}

func (m *mockRepo) RemoveCartItem(ctx context.Context, item *Item) error {
	if err := m.track("RemoveCartItem"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, item.ID)
	return nil
}

func (m *mockRepo) ClearCart(ctx context.Context, cartID string) error {
	if err := m.track("ClearCart"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, item := range m.items {
		if item.CartID == cartID {
			delete(m.items, id)
		}
	}
	return nil
}

// recordingCache wraps the real in-process backend and records deletes so
// tests can assert exact invalidation.
type recordingCache struct {
	inner   cache.Service
	mu      sync.Mutex
	deletes []string
}

func newRecordingCache(t *testing.T) *recordingCache {
	t.Helper()
	// No early refresh: background refreshes would skew call counts.
	inner, err := cache.NewService(cache.Config{
		Capacity:           1024,
		NumShards:          8,
		TTL:                time.Minute,
		EvictionPercentage: 10,
	})
	if err != nil {
		t.Fatalf("failed to build cache: %v", err)
	}
	return &recordingCache{inner: inner}
}

func (c *recordingCache) GetOrFetch(ctx context.Context, key string, fetchFn any) (any, error) {
	return c.inner.GetOrFetch(ctx, key, fetchFn)
}

func (c *recordingCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	c.deletes = append(c.deletes, key)
	c.mu.Unlock()
	return c.inner.Delete(ctx, key)
}

func (c *recordingCache) DeleteByPrefix(ctx context.Context, prefix string) error {
	return c.inner.DeleteByPrefix(ctx, prefix)
}

func (c *recordingCache) deleted() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.deletes...)
}

func newTestService(t *testing.T) (*Service, *mockRepo, *recordingCache) {
	t.Helper()
	repo := newMockRepo()
	cacheSvc := newRecordingCache(t)
	return NewService(repo, cacheSvc, nil), repo, cacheSvc
}

func TestGetCart_CreatesCartLazily(t *testing.T) {
	svc, repo, cacheSvc := newTestService(t)
	ctx := context.Background()

	res := svc.GetCart(ctx, "user-1")
	if !res.Success {
		t.Fatalf("expected success, got error %q", res.Error)
	}
	if res.Cart == nil || res.Cart.Cart == nil {
		t.Fatal("expected a cart in the result")
	}
	if res.Cart.Cart.UserID != "user-1" {
		t.Errorf("expected cart owned by user-1, got %q", res.Cart.Cart.UserID)
	}
	if len(res.Cart.Items) != 0 {
		t.Errorf("expected empty item list, got %d items", len(res.Cart.Items))
	}
	if got := repo.calls("CreateCart"); got != 1 {
		t.Errorf("expected 1 CreateCart call, got %d", got)
	}
	if got := cacheSvc.deleted(); len(got) != 0 {
		t.Errorf("read must not invalidate, got deletes %v", got)
	}
}

func TestGetCart_SecondReadServedFromCache(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	first := svc.GetCart(ctx, "user-1")
	second := svc.GetCart(ctx, "user-1")
	if !first.Success || !second.Success {
		t.Fatalf("expected both reads to succeed")
	}
	if got := repo.calls("FindCartByUserID"); got != 1 {
		t.Errorf("expected 1 FindCartByUserID call, got %d", got)
	}
	if got := repo.calls("FindCartItems"); got != 1 {
		t.Errorf("expected 1 FindCartItems call, got %d", got)
	}
}

func TestGetCart_RepositoryFailure(t *testing.T) {
	svc, repo, _ := newTestService(t)
	repo.failWith("FindCartByUserID", errors.New("connection refused"))

	res := svc.GetCart(context.Background(), "user-1")
	if res.Success {
		t.Fatal("expected failure")
	}
	if res.Error != "Failed to retrieve cart" {
		t.Errorf("expected generic failure message, got %q", res.Error)
	}
}

// The end-to-end scenario: empty cart is created, an item is added and the
// cache invalidated, a duplicate add is rejected without a second write.
func TestAddItem_Scenario(t *testing.T) {
	svc, repo, cacheSvc := newTestService(t)
	ctx := context.Background()

	if res := svc.GetCart(ctx, "user-1"); !res.Success {
		t.Fatalf("GetCart failed: %q", res.Error)
	}

	added := svc.AddItem(ctx, AddItemInput{UserID: "user-1", ListingID: "listing-9", Quantity: 1})
	if !added.Success {
		t.Fatalf("AddItem failed: %q", added.Error)
	}
	if deletes := cacheSvc.deleted(); len(deletes) != 1 || deletes[0] != cache.CartKey("user-1") {
		t.Errorf("expected exactly one delete of %q, got %v", cache.CartKey("user-1"), deletes)
	}

	// The next read must reflect the mutation.
	res := svc.GetCart(ctx, "user-1")
	if !res.Success || len(res.Cart.Items) != 1 {
		t.Fatalf("expected 1 item after invalidation, got %+v", res.Cart)
	}

	dup := svc.AddItem(ctx, AddItemInput{UserID: "user-1", ListingID: "listing-9", Quantity: 3})
	if dup.Success {
		t.Fatal("expected duplicate add to fail")
	}
	if !strings.Contains(dup.Error, "already in your cart") {
		t.Errorf("expected duplicate error, got %q", dup.Error)
	}
	if got := repo.calls("AddCartItem"); got != 1 {
		t.Errorf("duplicate add must not write, AddCartItem called %d times", got)
	}
}

func TestAddItem_ValidationRejectsBeforeRepository(t *testing.T) {
	svc, repo, _ := newTestService(t)

	res := svc.AddItem(context.Background(), AddItemInput{UserID: "user-1", ListingID: "listing-9"})
	if res.Success {
		t.Fatal("expected validation failure for missing quantity")
	}
	if got := repo.totalCalls(); got != 0 {
		t.Errorf("expected no repository calls, got %d", got)
	}
}

func TestUpdateItem_QuantityRequired(t *testing.T) {
	svc, repo, _ := newTestService(t)

	res := svc.UpdateItem(context.Background(), "item-1", UpdateItemInput{})
	if res.Success {
		t.Fatal("expected failure")
	}
	if res.Error != "Quantity must be provided" {
		t.Errorf("expected quantity error, got %q", res.Error)
	}
	if got := repo.totalCalls(); got != 0 {
		t.Errorf("expected no repository calls, got %d", got)
	}
}

func TestUpdateItem_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	res := svc.UpdateItem(context.Background(), "missing", UpdateItemInput{Quantity: 2})
	if res.Success || res.Error != "Cart item not found" {
		t.Errorf("expected item-not-found, got %+v", res)
	}
}

func TestUpdateItem_InvalidatesOwnerKey(t *testing.T) {
	svc, _, cacheSvc := newTestService(t)
	ctx := context.Background()

	added := svc.AddItem(ctx, AddItemInput{UserID: "user-7", ListingID: "listing-1", Quantity: 1})
	if !added.Success {
		t.Fatalf("AddItem failed: %q", added.Error)
	}

	res := svc.UpdateItem(ctx, added.Item.ID, UpdateItemInput{Quantity: 4})
	if !res.Success {
		t.Fatalf("UpdateItem failed: %q", res.Error)
	}
	if res.Item.Quantity != 4 {
		t.Errorf("expected quantity 4, got %d", res.Item.Quantity)
	}

	deletes := cacheSvc.deleted()
	if len(deletes) != 2 || deletes[1] != cache.CartKey("user-7") {
		t.Errorf("expected update to delete %q, got %v", cache.CartKey("user-7"), deletes)
	}
}

func TestRemoveItem(t *testing.T) {
	svc, repo, cacheSvc := newTestService(t)
	ctx := context.Background()

	if res := svc.RemoveItem(ctx, "missing"); res.Success || res.Error != "Cart item not found" {
		t.Errorf("expected item-not-found, got %+v", res)
	}

	added := svc.AddItem(ctx, AddItemInput{UserID: "user-2", ListingID: "listing-5", Quantity: 2})
	if !added.Success {
		t.Fatalf("AddItem failed: %q", added.Error)
	}

	res := svc.RemoveItem(ctx, added.Item.ID)
	if !res.Success {
		t.Fatalf("RemoveItem failed: %q", res.Error)
	}
	if got := repo.calls("RemoveCartItem"); got != 1 {
		t.Errorf("expected 1 RemoveCartItem call, got %d", got)
	}

	deletes := cacheSvc.deleted()
	if deletes[len(deletes)-1] != cache.CartKey("user-2") {
		t.Errorf("expected removal to delete %q, got %v", cache.CartKey("user-2"), deletes)
	}

	view := svc.GetCart(ctx, "user-2")
	if !view.Success || len(view.Cart.Items) != 0 {
		t.Errorf("expected empty cart after removal, got %+v", view.Cart)
	}
}

func TestClearCart(t *testing.T) {
	svc, repo, cacheSvc := newTestService(t)
	ctx := context.Background()

	if res := svc.ClearCart(ctx, "nobody"); res.Success || res.Error != "Cart not found" {
		t.Errorf("expected cart-not-found, got %+v", res)
	}

	svc.AddItem(ctx, AddItemInput{UserID: "user-3", ListingID: "listing-1", Quantity: 1})
	svc.AddItem(ctx, AddItemInput{UserID: "user-3", ListingID: "listing-2", Quantity: 1})

	res := svc.ClearCart(ctx, "user-3")
	if !res.Success {
		t.Fatalf("ClearCart failed: %q", res.Error)
	}
	if got := repo.calls("ClearCart"); got != 1 {
		t.Errorf("expected 1 ClearCart call, got %d", got)
	}

	deletes := cacheSvc.deleted()
	if deletes[len(deletes)-1] != cache.CartKey("user-3") {
		t.Errorf("expected clear to delete %q, got %v", cache.CartKey("user-3"), deletes)
	}

	view := svc.GetCart(ctx, "user-3")
	if !view.Success || len(view.Cart.Items) != 0 {
		t.Errorf("expected empty cart after clear, got %+v", view.Cart)
	}
}

func TestWriteFailureDoesNotInvalidate(t *testing.T) {
	svc, repo, cacheSvc := newTestService(t)
	repo.failWith("AddCartItem", errors.New("disk full"))

	res := svc.AddItem(context.Background(), AddItemInput{UserID: "user-4", ListingID: "listing-1", Quantity: 1})
	if res.Success {
		t.Fatal("expected failure")
	}
	if res.Error != "Failed to add item to cart" {
		t.Errorf("expected generic failure message, got %q", res.Error)
	}
	if got := cacheSvc.deleted(); len(got) != 0 {
		t.Errorf("failed write must not invalidate, got deletes %v", got)
	}
}
