package storefront

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/xenking/storefront/internal/catalog"
	"github.com/xenking/storefront/internal/checkout"
	"github.com/xenking/storefront/internal/domain/contact"
	"github.com/xenking/storefront/internal/domain/inputerr"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/internal/notify"
	"github.com/xenking/storefront/internal/schedule"
	"github.com/xenking/storefront/internal/view"
)

// pageRecorder is a view.Sink that keeps every rendered page.
type pageRecorder struct {
	mu    sync.Mutex
	pages []view.Page
}

func (r *pageRecorder) Render(p view.Page) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages = append(r.pages, p)
}

func (r *pageRecorder) last() view.Page {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pages[len(r.pages)-1]
}

func (r *pageRecorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pages)
}

// toastLog is a notify.Sink that keeps every raised toast.
type toastLog struct {
	mu   sync.Mutex
	msgs []string
}

func (l *toastLog) Notify(message string, level notify.Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.msgs = append(l.msgs, string(level)+": "+message)
}

func (l *toastLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.msgs...)
}

func (l *toastLog) count(msg string) int {
	n := 0
	for _, m := range l.all() {
		if m == msg {
			n++
		}
	}
	return n
}

type mockRecorder struct {
	mu     sync.Mutex
	orders []*order.Order
	err    error
}

func (m *mockRecorder) Record(_ context.Context, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = append(m.orders, o)
	return m.err
}

func (m *mockRecorder) recorded() []*order.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*order.Order(nil), m.orders...)
}

type fixture struct {
	clock  *clockwork.FakeClock
	sf     *Storefront
	pages  *pageRecorder
	toasts *toastLog
	orders *mockRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	products, err := catalog.Default()
	require.NoError(t, err)

	metrics, err := NewMetrics(noop.NewMeterProvider().Meter("test"), nil)
	require.NoError(t, err)

	f := &fixture{
		clock:  clockwork.NewFakeClock(),
		pages:  &pageRecorder{},
		toasts: &toastLog{},
		orders: &mockRecorder{},
	}
	f.sf, err = New(context.Background(), "test-session", Options{
		Clock:    f.clock,
		Products: catalog.NewMemory(products),
		Orders:   f.orders,
		Sink:     f.pages,
		Notify:   f.toasts,
		Metrics:  metrics,
	})
	require.NoError(t, err)
	t.Cleanup(f.sf.Close)
	return f
}

func (f *fixture) login(t *testing.T) {
	t.Helper()
	require.NoError(t, f.sf.Login("admin", "password"))
}

func TestNew_RendersInitialPage(t *testing.T) {
	f := newFixture(t)

	require.Equal(t, 1, f.pages.len())
	p := f.pages.last()
	assert.Equal(t, uint64(1), p.Version)
	assert.Equal(t, view.SectionHome, p.Section)
	assert.Equal(t, "Login", p.User.Label)
	assert.Equal(t, "Total: $0.00", p.Cart.Total)
	assert.False(t, p.Cart.CheckoutEnabled)
	assert.NotEmpty(t, p.Products)
	assert.Equal(t, p, f.sf.Page())
}

func TestNew_RequiresProducts(t *testing.T) {
	_, err := New(context.Background(), "x", Options{})
	assert.Error(t, err)
}

func TestAddToCart_NegativeCatalogPrice(t *testing.T) {
	toasts := &toastLog{}
	sf, err := New(context.Background(), "bad-catalog", Options{
		Clock: clockwork.NewFakeClock(),
		Products: catalog.NewMemory([]product.Product{
			{ID: "broken", Name: "Broken", UnitPrice: decimal.NewFromInt(-5)},
		}),
		Notify: toasts,
	})
	require.NoError(t, err)
	t.Cleanup(sf.Close)

	_, err = sf.AddToCart(context.Background(), "broken")
	require.Error(t, err)
	assert.Equal(t, inputerr.KindFormat, inputerr.KindOf(err))
	assert.Equal(t, `invalid price "-5"`, inputerr.Message(err))
	assert.Equal(t, []string{`error: invalid price "-5"`}, toasts.all())
	assert.Empty(t, sf.CartItems())
}

func TestNavigate(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.sf.Navigate("contact"))
	assert.Equal(t, view.SectionContact, f.sf.CurrentSection())

	err := f.sf.Navigate("admin")
	assert.Equal(t, inputerr.KindFormat, inputerr.KindOf(err))
	assert.Equal(t, view.SectionContact, f.sf.CurrentSection())

	require.NoError(t, f.sf.GetStarted())
	assert.Equal(t, view.SectionProducts, f.pages.last().Section)
}

func TestReadsDoNotRender(t *testing.T) {
	f := newFixture(t)
	before := f.pages.len()

	_ = f.sf.Page()
	_ = f.sf.CartItems()
	_, _ = f.sf.CurrentUser()
	_ = f.sf.CurrentSection()

	assert.Equal(t, before, f.pages.len())
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.sf.OpenLogin())
	assert.True(t, f.pages.last().LoginOpen)

	err := f.sf.Login("admin", "")
	assert.Equal(t, inputerr.KindValidation, inputerr.KindOf(err))
	err = f.sf.Login("admin", "wrong")
	var authErr *inputerr.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.True(t, f.pages.last().LoginOpen)

	f.login(t)
	p := f.pages.last()
	assert.False(t, p.LoginOpen)
	assert.Equal(t, "Welcome, admin", p.User.Label)
	id, ok := f.sf.CurrentUser()
	assert.True(t, ok)
	assert.Equal(t, "admin", id)

	assert.Equal(t, []string{
		"error: Please fill in all fields",
		"error: Invalid credentials. Try admin/password",
		"success: Login successful!",
	}, f.toasts.all())

	require.NoError(t, f.sf.Logout())
	assert.Equal(t, "Login", f.pages.last().User.Label)
}

func TestCart_AddRemoveRender(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.sf.AddToCart(ctx, "product-5")
	require.NoError(t, err)
	line, err := f.sf.AddToCart(ctx, "product-5")
	require.NoError(t, err)
	assert.Equal(t, 2, line.Quantity)
	_, err = f.sf.AddProduct(product.Input{ID: "custom", Name: "Sticker", PriceText: "$5.50"})
	require.NoError(t, err)

	p := f.pages.last()
	require.Len(t, p.Cart.Lines, 2)
	assert.Equal(t, "Qty: 2", p.Cart.Lines[0].QuantityLabel)
	assert.Equal(t, "$24.00", p.Cart.Lines[0].LineTotal)
	assert.Equal(t, "Total: $29.50", p.Cart.Total)
	assert.True(t, p.Cart.CheckoutEnabled)
	assert.Equal(t, 2, f.toasts.count("success: USB-C Hub added to cart!"))

	removed, err := f.sf.RemoveFromCart("product-5")
	require.NoError(t, err)
	assert.True(t, removed)

	// Second removal is a silent no-op that still re-renders.
	renders := f.pages.len()
	removed, err = f.sf.RemoveFromCart("product-5")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, renders+1, f.pages.len())
	assert.Equal(t, 1, f.toasts.count("info: Item removed from cart"))

	_, ok, err := f.sf.DecrementItem("custom")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, f.pages.last().Cart.CheckoutEnabled)
	assert.Equal(t, 2, f.toasts.count("info: Item removed from cart"))
}

func TestCart_AddErrors(t *testing.T) {
	f := newFixture(t)

	_, err := f.sf.AddProduct(product.Input{ID: "x", Name: "Broken", PriceText: "free"})
	assert.Equal(t, inputerr.KindFormat, inputerr.KindOf(err))

	_, err = f.sf.AddToCart(context.Background(), "missing")
	assert.ErrorIs(t, err, product.ErrNotFound)

	assert.Empty(t, f.sf.CartItems())
	assert.Contains(t, f.toasts.all(), "error: Product not found")
}

func TestCheckout_Empty(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	out, err := f.sf.Checkout()
	require.NoError(t, err)
	assert.Equal(t, checkout.OutcomeEmpty, out)
	assert.Equal(t, checkout.StateIdle, f.pages.last().Checkout.State)
}

func TestCheckout_LoginRequired(t *testing.T) {
	f := newFixture(t)
	_, err := f.sf.AddToCart(context.Background(), "product-1")
	require.NoError(t, err)
	before := f.sf.CartItems()

	out, err := f.sf.Checkout()
	require.NoError(t, err)
	assert.Equal(t, checkout.OutcomeLoginRequired, out)
	assert.True(t, f.pages.last().LoginOpen)
	assert.Equal(t, before, f.sf.CartItems())
	assert.Contains(t, f.toasts.all(), "info: Please login to checkout")
}

func TestCheckout_Completes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)
	_, err := f.sf.AddToCart(ctx, "product-5")
	require.NoError(t, err)
	_, err = f.sf.AddToCart(ctx, "product-5")
	require.NoError(t, err)

	out, err := f.sf.Checkout()
	require.NoError(t, err)
	require.Equal(t, checkout.OutcomePending, out)
	assert.Equal(t, "Processing...", f.pages.last().Checkout.Label)

	// The cart is locked while pending.
	_, err = f.sf.AddToCart(ctx, "product-1")
	assert.ErrorIs(t, err, checkout.ErrInProgress)
	_, err = f.sf.RemoveFromCart("product-5")
	assert.ErrorIs(t, err, checkout.ErrInProgress)

	f.clock.Advance(checkout.DefaultDelay)
	require.Eventually(t, func() bool { return len(f.sf.CartItems()) == 0 }, time.Second, 5*time.Millisecond)

	p := f.pages.last()
	assert.Equal(t, "Total: $0.00", p.Cart.Total)
	assert.False(t, p.Cart.CheckoutEnabled)
	assert.Equal(t, "Checkout", p.Checkout.Label)
	assert.Equal(t, 1, f.toasts.count("success: Checkout completed successfully!"))

	orders := f.orders.recorded()
	require.Len(t, orders, 1)
	assert.Equal(t, "admin", orders[0].Identity)
	assert.True(t, orders[0].Total.Equal(decimal.RequireFromString("24")))
	require.Len(t, orders[0].Items, 1)
	assert.Equal(t, 2, orders[0].Items[0].Quantity)

	// Ready for another cycle right away.
	_, err = f.sf.AddToCart(ctx, "product-1")
	require.NoError(t, err)
}

func TestCheckout_ArchiveFailureStillCompletes(t *testing.T) {
	f := newFixture(t)
	f.orders.err = errors.New("db down")
	f.login(t)
	_, err := f.sf.AddToCart(context.Background(), "product-1")
	require.NoError(t, err)

	_, err = f.sf.Checkout()
	require.NoError(t, err)
	f.clock.Advance(checkout.DefaultDelay)

	require.Eventually(t, func() bool {
		return f.toasts.count("success: Checkout completed successfully!") == 1
	}, time.Second, 5*time.Millisecond)
	assert.Empty(t, f.sf.CartItems())
}

func TestClearCart_CancelsPendingCheckout(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	_, err := f.sf.AddToCart(context.Background(), "product-1")
	require.NoError(t, err)
	_, err = f.sf.Checkout()
	require.NoError(t, err)

	require.NoError(t, f.sf.ClearCart())
	assert.Equal(t, checkout.StateIdle, f.pages.last().Checkout.State)

	f.clock.Advance(checkout.DefaultDelay)
	assert.Never(t, func() bool {
		return f.toasts.count("success: Checkout completed successfully!") > 0
	}, 50*time.Millisecond, 5*time.Millisecond)
	assert.Empty(t, f.orders.recorded())
}

func TestToastsExpire(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	require.Len(t, f.pages.last().Toasts, 1)

	f.clock.Advance(notify.DefaultTTL)
	require.Eventually(t, func() bool { return len(f.sf.Page().Toasts) == 0 }, time.Second, 5*time.Millisecond)
}

func TestSubmitContact(t *testing.T) {
	f := newFixture(t)

	err := f.sf.SubmitContact(map[string]string{"name": "Ada"})
	require.Error(t, err)
	assert.Contains(t, f.toasts.all(), "error: Please fill in the email field")

	fields := map[string]string{"name": "Ada", "email": "ada@example.com", "subject": "Hi", "message": "Hello"}
	require.NoError(t, f.sf.SubmitContact(fields))
	assert.Equal(t, contact.PhaseSending, f.pages.last().Contact.Phase)

	assert.ErrorIs(t, f.sf.SubmitContact(fields), contact.ErrBusy)

	f.clock.Advance(contact.DefaultSendDelay)
	require.Eventually(t, func() bool { return f.sf.Page().Contact.ShowSuccess }, time.Second, 5*time.Millisecond)

	f.clock.Advance(contact.DefaultResetDelay)
	require.Eventually(t, func() bool {
		c := f.sf.Page().Contact
		return c.Phase == contact.PhaseEditing && c.Form.IsZero()
	}, time.Second, 5*time.Millisecond)
}

func TestClose(t *testing.T) {
	f := newFixture(t)
	f.sf.Close()

	assert.ErrorIs(t, f.sf.Navigate("products"), schedule.ErrClosed)
}
