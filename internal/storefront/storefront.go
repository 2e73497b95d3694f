// Package storefront owns the state of one shopper session and the registry
// of live sessions.
//
// A Storefront is the application context that replaces process-global
// state: it holds the cart, the mock login, the checkout and contact flows,
// the notifier and the current view. Every method runs on the session's
// schedule.Loop and re-renders the page once the change has settled.
package storefront

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/checkout"
	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/contact"
	"github.com/xenking/storefront/internal/domain/inputerr"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/internal/domain/session"
	"github.com/xenking/storefront/internal/notify"
	"github.com/xenking/storefront/internal/schedule"
	"github.com/xenking/storefront/internal/view"
)

// Config tunes a storefront session.
type Config struct {
	Credentials       session.Credentials
	CheckoutDelay     time.Duration
	NotifyTTL         time.Duration
	ContactSendDelay  time.Duration
	ContactResetDelay time.Duration
	// ArchiveTimeout bounds how long a completed checkout may wait on
	// the order archive.
	ArchiveTimeout time.Duration
}

// OrderRecorder archives completed checkouts.
type OrderRecorder interface {
	Record(ctx context.Context, o *order.Order) error
}

// Options are the collaborators of a Storefront. Only Products is required.
// Notify defaults to logging every toast.
type Options struct {
	Config
	Clock    clockwork.Clock
	Products product.Repository
	Orders   OrderRecorder
	Sink     view.Sink
	Notify   notify.Sink
	Logger   *zap.Logger
	Metrics  *Metrics
}

func (o *Options) setDefaults() {
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	if o.Sink == nil {
		o.Sink = view.Discard
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Credentials == (session.Credentials{}) {
		o.Credentials = session.DefaultCredentials
	}
	if o.ArchiveTimeout <= 0 {
		o.ArchiveTimeout = 5 * time.Second
	}
}

// Storefront is one shopper session.
type Storefront struct {
	id       string
	loop     *schedule.Loop
	lg       *zap.Logger
	metrics  *Metrics
	repo     product.Repository
	orders   OrderRecorder
	creds    session.Credentials
	archiveT time.Duration
	sink     view.Sink

	// Owned by the loop.
	catalog   []product.Product
	cart      *cart.Cart
	session   *session.State
	notifier  *notify.Notifier
	checkout  *checkout.Flow
	contact   *contact.Flow
	section   view.Section
	loginOpen bool
	version   uint64
	page      view.Page
}

// New creates a storefront session identified by id and renders its first
// page. The catalog is listed once here and projected on every render.
func New(ctx context.Context, id string, opts Options) (*Storefront, error) {
	if opts.Products == nil {
		return nil, errors.New("product repository is required")
	}
	opts.setDefaults()

	products, err := opts.Products.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}

	lg := opts.Logger.With(zap.String("session_id", id))
	if opts.Notify == nil {
		opts.Notify = notify.LogSink(lg)
	}

	loop := schedule.New(opts.Clock)
	s := &Storefront{
		id:       id,
		loop:     loop,
		lg:       lg,
		metrics:  opts.Metrics,
		repo:     opts.Products,
		orders:   opts.Orders,
		creds:    opts.Credentials,
		archiveT: opts.ArchiveTimeout,
		sink:     opts.Sink,
		catalog:  products,
		cart:     cart.New(),
		session:  session.New(opts.Credentials),
		section:  view.SectionHome,
	}
	s.notifier = notify.New(loop, opts.NotifyTTL, opts.Notify)
	s.checkout = checkout.New(s.cart, s.session, loop, s.notifier, opts.CheckoutDelay)
	s.checkout.OnComplete = s.archive
	s.contact = contact.NewFlow(loop, s.notifier, opts.ContactSendDelay, opts.ContactResetDelay)
	s.contact.OnSent = func(f contact.Form) {
		s.lg.Info("Contact message sent", zap.String("subject", f.Subject))
	}

	loop.OnSettle(s.render)
	if err := loop.Do(func() {}); err != nil {
		return nil, err
	}
	return s, nil
}

// ID returns the session identifier.
func (s *Storefront) ID() string { return s.id }

// Close stops every pending timer. Calls after Close return
// schedule.ErrClosed.
func (s *Storefront) Close() {
	s.loop.Close()
}

func (s *Storefront) render() {
	s.version++
	identity, ok := s.session.Identity()
	phase := s.contact.Phase()
	s.page = view.Page{
		Version:   s.version,
		Section:   s.section,
		LoginOpen: s.loginOpen,
		User:      view.UserLabel(identity, ok),
		Cart:      view.ProjectCart(s.cart),
		Checkout:  view.ProjectCheckout(s.checkout.State()),
		Products:  view.ProjectProducts(s.catalog, s.cart),
		Contact: view.Contact{
			Phase:       phase,
			Form:        s.contact.Form(),
			ShowSuccess: phase == contact.PhaseSent,
		},
		Toasts: view.ProjectToasts(s.notifier.Active()),
	}
	s.sink.Render(s.page)
}

// do runs fn on the loop and folds a closed loop into fn's error.
func (s *Storefront) do(fn func() error) error {
	var err error
	if loopErr := s.loop.Do(func() { err = fn() }); loopErr != nil {
		return loopErr
	}
	return err
}

// failInput raises an error toast for a user input error and returns it.
func (s *Storefront) failInput(err error) error {
	s.notifier.Error(inputerr.Message(err))
	return err
}

// Navigate switches the visible section. An unknown name leaves the view
// where it was.
func (s *Storefront) Navigate(section string) error {
	return s.do(func() error {
		sec, err := view.ParseSection(section)
		if err != nil {
			return s.failInput(err)
		}
		s.lg.Debug("Navigate", zap.String("from", string(s.section)), zap.String("to", string(sec)))
		s.section = sec
		return nil
	})
}

// GetStarted is the landing page call to action.
func (s *Storefront) GetStarted() error {
	return s.Navigate(string(view.SectionProducts))
}

// OpenLogin shows the login modal.
func (s *Storefront) OpenLogin() error {
	return s.do(func() error {
		s.loginOpen = true
		return nil
	})
}

// CloseLogin hides the login modal.
func (s *Storefront) CloseLogin() error {
	return s.do(func() error {
		s.loginOpen = false
		return nil
	})
}

// Login checks the credentials. On success the modal closes; on failure it
// stays open and an error toast explains why.
func (s *Storefront) Login(username, password string) error {
	return s.do(func() error {
		err := s.session.Login(username, password)
		s.metrics.login(err)
		if err == nil {
			s.lg.Info("Login", zap.String("identity", username))
			s.loginOpen = false
			s.notifier.Success("Login successful!")
			return nil
		}

		var authErr *inputerr.AuthError
		if errors.As(err, &authErr) {
			msg := fmt.Sprintf("Invalid credentials. Try %s/%s", s.creds.Username, s.creds.Password)
			s.notifier.Error(msg)
			return err
		}
		s.notifier.Error("Please fill in all fields")
		return err
	})
}

// Logout ends the mock session.
func (s *Storefront) Logout() error {
	return s.do(func() error {
		s.session.Logout()
		return nil
	})
}

// ForceLogout is Logout for the inspection surface.
func (s *Storefront) ForceLogout() error { return s.Logout() }

// cartLocked rejects cart mutations while a checkout is pending, so the
// completion clears exactly what was snapshotted when it started.
func (s *Storefront) cartLocked() error {
	if !s.checkout.Locked() {
		return nil
	}
	s.notifier.Info("Checkout in progress, please wait")
	return checkout.ErrInProgress
}

func (s *Storefront) add(p product.Product) (cart.Line, error) {
	if err := s.cartLocked(); err != nil {
		return cart.Line{}, err
	}
	line, err := s.cart.Add(p)
	if errors.Is(err, cart.ErrNegativePrice) {
		// Raw triggers are rejected by ParsePrice, so this is a bad catalog row.
		s.lg.Warn("Negative product price", zap.String("product_id", p.ID), zap.String("price", p.UnitPrice.String()))
		err = inputerr.Format("price", p.UnitPrice.String(), "")
	}
	if err != nil {
		return cart.Line{}, s.failInput(errors.Wrap(err, "add to cart"))
	}
	s.metrics.added()
	s.lg.Debug("Added to cart", zap.String("product_id", p.ID), zap.Int("quantity", line.Quantity))
	s.notifier.Success(p.Name+" added to cart!")
	return line, nil
}

// AddProduct handles a raw add trigger. The displayed price is parsed here;
// a malformed price is reported and nothing is added.
func (s *Storefront) AddProduct(in product.Input) (cart.Line, error) {
	var line cart.Line
	err := s.do(func() error {
		p, err := product.FromInput(in)
		if err != nil {
			return s.failInput(err)
		}
		line, err = s.add(p)
		return err
	})
	return line, err
}

// AddToCart adds one unit of a catalog product by id.
func (s *Storefront) AddToCart(ctx context.Context, productID string) (cart.Line, error) {
	p, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			_ = s.do(func() error {
				s.notifier.Error("Product not found")
				return nil
			})
		}
		return cart.Line{}, errors.Wrapf(err, "get product %q", productID)
	}

	var line cart.Line
	err = s.do(func() error {
		line, err = s.add(*p)
		return err
	})
	return line, err
}

// RemoveFromCart deletes the whole line. It reports whether a line was
// removed; removing an absent id re-renders silently.
func (s *Storefront) RemoveFromCart(productID string) (bool, error) {
	var removed bool
	err := s.do(func() error {
		if err := s.cartLocked(); err != nil {
			return err
		}
		removed = s.cart.Remove(productID)
		if removed {
			s.metrics.removed()
			s.notifier.Info("Item removed from cart")
		}
		return nil
	})
	return removed, err
}

// DecrementItem removes one unit of a line, dropping it at zero.
func (s *Storefront) DecrementItem(productID string) (cart.Line, bool, error) {
	var (
		line cart.Line
		ok   bool
	)
	err := s.do(func() error {
		if err := s.cartLocked(); err != nil {
			return err
		}
		line, ok = s.cart.Decrement(productID)
		if ok && line.Quantity == 0 {
			s.metrics.removed()
			s.notifier.Info("Item removed from cart")
		}
		return nil
	})
	return line, ok, err
}

// Checkout starts the checkout flow. An anonymous session gets the login
// modal instead.
func (s *Storefront) Checkout() (checkout.Outcome, error) {
	var out checkout.Outcome
	err := s.do(func() error {
		out = s.checkout.Start()
		s.metrics.checkout(out)
		switch out {
		case checkout.OutcomeLoginRequired:
			s.loginOpen = true
		case checkout.OutcomePending:
			s.lg.Info("Checkout started",
				zap.Int("items", s.cart.ItemCount()),
				zap.String("total", s.cart.Total().String()),
			)
		}
		return nil
	})
	return out, err
}

// archive stores a completed checkout. It runs on the loop, so the archive
// call is bounded by ArchiveTimeout.
func (s *Storefront) archive(r checkout.Receipt) {
	s.metrics.checkout("completed")
	s.lg.Info("Checkout completed",
		zap.Stringer("order_id", r.OrderID),
		zap.String("total", r.Total.String()),
	)
	if s.orders == nil {
		return
	}

	o := &order.Order{
		ID:       r.OrderID.String(),
		Identity: r.Identity,
		Total:    r.Total,
		PlacedAt: r.PlacedAt,
		Items:    make([]order.Item, 0, len(r.Lines)),
	}
	for _, l := range r.Lines {
		o.Items = append(o.Items, order.Item{
			ProductID: l.ProductID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.archiveT)
	defer cancel()
	if err := s.orders.Record(ctx, o); err != nil {
		s.lg.Error("Archive order", zap.String("order_id", o.ID), zap.Error(err))
	}
}

// SubmitContact validates the contact form and starts sending it.
func (s *Storefront) SubmitContact(fields map[string]string) error {
	return s.do(func() error {
		err := s.contact.Submit(contact.FromFields(fields))
		switch {
		case err == nil:
			return nil
		case errors.Is(err, contact.ErrBusy):
			s.notifier.Info("Message is already being sent")
			return err
		default:
			return s.failInput(err)
		}
	})
}

// DismissToast hides a toast before it expires.
func (s *Storefront) DismissToast(id uint64) error {
	return s.do(func() error {
		s.notifier.Dismiss(id)
		return nil
	})
}

// ClearCart empties the cart for the inspection surface. A pending checkout
// is cancelled first.
func (s *Storefront) ClearCart() error {
	return s.do(func() error {
		if s.checkout.Cancel() {
			s.lg.Debug("Pending checkout cancelled by clear")
		}
		s.cart.Clear()
		return nil
	})
}

// Page returns the most recently rendered page.
func (s *Storefront) Page() view.Page {
	var p view.Page
	_ = s.loop.View(func() { p = s.page })
	return p
}

// CartItems returns a copy of the cart lines.
func (s *Storefront) CartItems() []cart.Line {
	var lines []cart.Line
	_ = s.loop.View(func() { lines = s.cart.Lines() })
	return lines
}

// CurrentUser returns the logged in identity.
func (s *Storefront) CurrentUser() (string, bool) {
	var (
		id string
		ok bool
	)
	_ = s.loop.View(func() { id, ok = s.session.Identity() })
	return id, ok
}

// CurrentSection returns the visible section.
func (s *Storefront) CurrentSection() view.Section {
	var sec view.Section
	_ = s.loop.View(func() { sec = s.section })
	return sec
}
