package storefront

import (
	"context"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/xenking/storefront/internal/checkout"
	"github.com/xenking/storefront/internal/domain/inputerr"
)

// Metrics records storefront activity. A nil *Metrics records nothing.
type Metrics struct {
	cartAdds     metric.Int64Counter
	cartRemovals metric.Int64Counter
	checkouts    metric.Int64Counter
	logins       metric.Int64Counter
}

// NewMetrics creates the storefront instruments on meter. sessions, when
// not nil, backs the live session gauge.
func NewMetrics(meter metric.Meter, sessions func() int) (*Metrics, error) {
	var (
		m   Metrics
		err error
	)
	if m.cartAdds, err = meter.Int64Counter("storefront.cart.additions",
		metric.WithDescription("Units added to carts"),
	); err != nil {
		return nil, errors.Wrap(err, "create cart additions counter")
	}
	if m.cartRemovals, err = meter.Int64Counter("storefront.cart.removals",
		metric.WithDescription("Lines removed from carts"),
	); err != nil {
		return nil, errors.Wrap(err, "create cart removals counter")
	}
	if m.checkouts, err = meter.Int64Counter("storefront.checkouts",
		metric.WithDescription("Checkout attempts by outcome"),
	); err != nil {
		return nil, errors.Wrap(err, "create checkouts counter")
	}
	if m.logins, err = meter.Int64Counter("storefront.logins",
		metric.WithDescription("Login attempts by result"),
	); err != nil {
		return nil, errors.Wrap(err, "create logins counter")
	}
	if sessions != nil {
		if _, err = meter.Int64ObservableGauge("storefront.sessions.active",
			metric.WithDescription("Live storefront sessions"),
			metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
				o.Observe(int64(sessions()))
				return nil
			}),
		); err != nil {
			return nil, errors.Wrap(err, "create sessions gauge")
		}
	}
	return &m, nil
}

func (m *Metrics) added() {
	if m == nil {
		return
	}
	m.cartAdds.Add(context.Background(), 1)
}

func (m *Metrics) removed() {
	if m == nil {
		return
	}
	m.cartRemovals.Add(context.Background(), 1)
}

func (m *Metrics) checkout(out checkout.Outcome) {
	if m == nil {
		return
	}
	m.checkouts.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("outcome", string(out))),
	)
}

func (m *Metrics) login(err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = string(inputerr.KindOf(err))
	}
	m.logins.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("result", result)),
	)
}
