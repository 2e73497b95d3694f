// Package tui is the terminal surface of a single storefront session.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/checkout"
	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/contact"
	"github.com/xenking/storefront/internal/domain/inputerr"
	"github.com/xenking/storefront/internal/view"
)

// Storefront is the session the TUI drives.
type Storefront interface {
	Navigate(section string) error
	GetStarted() error
	OpenLogin() error
	CloseLogin() error
	Login(username, password string) error
	Logout() error
	AddToCart(ctx context.Context, productID string) (cart.Line, error)
	RemoveFromCart(productID string) (bool, error)
	DecrementItem(productID string) (cart.Line, bool, error)
	Checkout() (checkout.Outcome, error)
	SubmitContact(fields map[string]string) error
	Page() view.Page
}

// formKeys orders the contact form inputs.
var formKeys = []string{"name", "email", "subject", "message"}

// Model is the bubbletea model.
type Model struct {
	sf   Storefront
	sink *Sink
	lg   *zap.Logger

	page   view.Page
	cursor int
	width  int

	login      [2]textinput.Model
	loginFocus int
	form       []textinput.Model
	formFocus  int
}

// New creates a Model for sf whose renders arrive through sink.
func New(sf Storefront, sink *Sink, lg *zap.Logger) Model {
	if lg == nil {
		lg = zap.NewNop()
	}
	m := Model{sf: sf, sink: sink, lg: lg, page: sf.Page()}

	user := textinput.New()
	user.Placeholder = "username"
	user.CharLimit = 64
	pass := textinput.New()
	pass.Placeholder = "password"
	pass.CharLimit = 64
	pass.EchoMode = textinput.EchoPassword
	m.login = [2]textinput.Model{user, pass}

	for _, k := range formKeys {
		in := textinput.New()
		in.Placeholder = k
		in.CharLimit = 256
		m.form = append(m.form, in)
	}
	return m
}

// Init waits for the first asynchronous render.
func (m Model) Init() tea.Cmd {
	return m.sink.Wait()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case pageMsg:
		m.accept(view.Page(msg))
		return m, m.sink.Wait()
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m.key(msg)
	}
	return m, nil
}

// accept keeps p unless a newer page was already read.
func (m *Model) accept(p view.Page) {
	if p.Version < m.page.Version {
		return
	}
	wasSent := m.page.Contact.Phase == contact.PhaseSent
	m.page = p
	if n := len(p.Products); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
	if p.Contact.Phase == contact.PhaseSent && !wasSent {
		for i := range m.form {
			m.form[i].Reset()
		}
	}
}

// refresh reads the page rendered by a synchronous action and reports
// unexpected failures. Input errors are already toasts.
func (m *Model) refresh(err error) {
	if err != nil && inputerr.KindOf(err) == "" &&
		!errors.Is(err, checkout.ErrInProgress) && !errors.Is(err, contact.ErrBusy) {
		m.lg.Warn("Action failed", zap.Error(err))
	}
	m.accept(m.sf.Page())
}

func (m Model) key(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := msg.String()
	switch k {
	case "ctrl+c":
		return m, tea.Quit
	case "alt+1":
		m.refresh(m.sf.Navigate(string(view.SectionHome)))
		return m, nil
	case "alt+2":
		m.refresh(m.sf.Navigate(string(view.SectionProducts)))
		return m, nil
	case "alt+3":
		m.refresh(m.sf.Navigate(string(view.SectionContact)))
		return m, nil
	}

	if m.page.LoginOpen {
		return m.loginKey(msg)
	}
	if m.page.Section == view.SectionContact {
		return m.contactKey(msg)
	}

	switch k {
	case "q":
		return m, tea.Quit
	case "g":
		m.refresh(m.sf.GetStarted())
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.page.Products)-1 {
			m.cursor++
		}
	case "enter", "a":
		if id, ok := m.selected(); ok {
			_, err := m.sf.AddToCart(context.Background(), id)
			m.refresh(err)
		}
	case "x":
		if id, ok := m.selected(); ok {
			_, err := m.sf.RemoveFromCart(id)
			m.refresh(err)
		}
	case "-":
		if id, ok := m.selected(); ok {
			_, _, err := m.sf.DecrementItem(id)
			m.refresh(err)
		}
	case "c":
		_, err := m.sf.Checkout()
		m.refresh(err)
		if m.page.LoginOpen {
			return m, m.focusLogin(0)
		}
	case "l":
		m.refresh(m.sf.OpenLogin())
		return m, m.focusLogin(0)
	case "o":
		m.refresh(m.sf.Logout())
	}
	return m, nil
}

// selected returns the product under the cursor. The cursor only moves in
// the products section.
func (m Model) selected() (string, bool) {
	if m.page.Section != view.SectionProducts || len(m.page.Products) == 0 {
		return "", false
	}
	return m.page.Products[m.cursor].ID, true
}

func (m *Model) focusLogin(i int) tea.Cmd {
	m.loginFocus = i
	for j := range m.login {
		m.login[j].Blur()
	}
	return m.login[i].Focus()
}

func (m Model) loginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.refresh(m.sf.CloseLogin())
		return m, nil
	case "tab", "shift+tab", "up", "down":
		return m, m.focusLogin((m.loginFocus + 1) % len(m.login))
	case "enter":
		err := m.sf.Login(m.login[0].Value(), m.login[1].Value())
		m.refresh(err)
		if err == nil {
			m.login[0].Reset()
			m.login[1].Reset()
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.login[m.loginFocus], cmd = m.login[m.loginFocus].Update(msg)
	return m, cmd
}

func (m *Model) focusForm(i int) tea.Cmd {
	m.formFocus = i
	for j := range m.form {
		m.form[j].Blur()
	}
	return m.form[i].Focus()
}

func (m Model) contactKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		for i := range m.form {
			m.form[i].Blur()
		}
		return m, nil
	case "tab", "down":
		if !m.form[m.formFocus].Focused() {
			return m, m.focusForm(m.formFocus)
		}
		return m, m.focusForm((m.formFocus + 1) % len(m.form))
	case "shift+tab", "up":
		return m, m.focusForm((m.formFocus + len(m.form) - 1) % len(m.form))
	case "enter":
		m.refresh(m.sf.SubmitContact(m.formFields()))
		return m, nil
	}
	if !m.form[m.formFocus].Focused() {
		if msg.String() == "q" {
			return m, tea.Quit
		}
		return m, m.focusForm(m.formFocus)
	}
	var cmd tea.Cmd
	m.form[m.formFocus], cmd = m.form[m.formFocus].Update(msg)
	return m, cmd
}

func (m Model) formFields() map[string]string {
	fields := make(map[string]string, len(formKeys))
	for i, k := range formKeys {
		fields[k] = m.form[i].Value()
	}
	return fields
}
