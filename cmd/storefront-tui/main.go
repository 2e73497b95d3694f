// Command storefront-tui runs one storefront session in the terminal.
package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-faster/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/catalog"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/internal/domain/session"
	"github.com/xenking/storefront/internal/storage/memory"
	"github.com/xenking/storefront/internal/storefront"
	"github.com/xenking/storefront/internal/tui"
)

type options struct {
	catalogFile   string
	logFile       string
	checkoutDelay time.Duration
	notifyTTL     time.Duration
	username      string
	password      string
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:           "storefront-tui",
		Short:         "Browse the storefront in your terminal",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.catalogFile, "catalog", "", "catalog file, defaults to the built-in catalog")
	f.StringVar(&opts.logFile, "log-file", "storefront-tui.log", "where to write logs")
	f.DurationVar(&opts.checkoutDelay, "checkout-delay", 2*time.Second, "simulated checkout time")
	f.DurationVar(&opts.notifyTTL, "notify-ttl", 3*time.Second, "how long toasts stay visible")
	f.StringVar(&opts.username, "username", session.DefaultCredentials.Username, "mock login username")
	f.StringVar(&opts.password, "password", session.DefaultCredentials.Password, "mock login password")
	return cmd
}

// newLogger writes JSON logs to path so the terminal stays clean.
func newLogger(path string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	lg, err := cfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "build logger")
	}
	return lg, nil
}

func run(ctx context.Context, opts options) error {
	lg, err := newLogger(opts.logFile)
	if err != nil {
		return err
	}
	defer func() { _ = lg.Sync() }()

	var products []product.Product
	if opts.catalogFile == "" {
		products, err = catalog.Default()
	} else {
		products, err = catalog.Load(opts.catalogFile)
	}
	if err != nil {
		return errors.Wrap(err, "load catalog")
	}

	orders := memory.NewOrderRepository()
	sink := tui.NewSink()
	defer sink.Close()

	sf, err := storefront.New(ctx, "tui", storefront.Options{
		Config: storefront.Config{
			Credentials:   session.Credentials{Username: opts.username, Password: opts.password},
			CheckoutDelay: opts.checkoutDelay,
			NotifyTTL:     opts.notifyTTL,
		},
		Products: catalog.NewMemory(products),
		Orders:   order.NewService(orders),
		Sink:     sink,
		Logger:   lg,
	})
	if err != nil {
		return errors.Wrap(err, "create storefront")
	}
	defer sf.Close()

	lg.Info("Starting", zap.Int("products", len(products)))
	p := tea.NewProgram(tui.New(sf, sink, lg), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return errors.Wrap(err, "run program")
	}
	lg.Info("Exiting", zap.Int("orders", orders.Len()))
	return nil
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		_, _ = os.Stderr.WriteString("storefront-tui: " + err.Error() + "\n")
		cancel()
		os.Exit(1)
	}
}
