package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/storefront/internal/catalog"
	"github.com/xenking/storefront/internal/storefront"
	"github.com/xenking/storefront/internal/view"
)

type harness struct {
	t     *testing.T
	clock *clockwork.FakeClock
	sink  *Sink
	m     Model
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	products, err := catalog.Default()
	require.NoError(t, err)

	clock := clockwork.NewFakeClock()
	sink := NewSink()
	sf, err := storefront.New(context.Background(), "tui", storefront.Options{
		Clock:    clock,
		Products: catalog.NewMemory(products),
		Sink:     sink,
	})
	require.NoError(t, err)
	t.Cleanup(sf.Close)
	t.Cleanup(sink.Close)

	return &harness{t: t, clock: clock, sink: sink, m: New(sf, sink, nil)}
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func alt(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s), Alt: true} }

func (h *harness) send(msgs ...tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	for _, msg := range msgs {
		next, c := h.m.Update(msg)
		h.m = next.(Model)
		cmd = c
	}
	return cmd
}

func (h *harness) typeText(s string) {
	for _, r := range s {
		h.send(runes(string(r)))
	}
}

func TestSink_Coalesces(t *testing.T) {
	s := NewSink()
	s.Render(view.Page{Version: 1})
	s.Render(view.Page{Version: 2})
	s.Render(view.Page{Version: 3})

	msg := s.Wait()()
	assert.Equal(t, uint64(3), view.Page(msg.(pageMsg)).Version)

	s.Close()
	assert.Nil(t, s.Wait()())
}

func TestModel_Navigation(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, view.SectionHome, h.m.page.Section)
	assert.Contains(t, h.m.View(), "Get started")

	h.send(runes("g"))
	assert.Equal(t, view.SectionProducts, h.m.page.Section)

	h.send(alt("3"))
	assert.Equal(t, view.SectionContact, h.m.page.Section)

	h.send(alt("1"))
	assert.Equal(t, view.SectionHome, h.m.page.Section)
}

func TestModel_CartKeys(t *testing.T) {
	h := newHarness(t)
	h.send(alt("2"))

	h.send(tea.KeyMsg{Type: tea.KeyEnter})
	h.send(runes("a"))
	require.Len(t, h.m.page.Cart.Lines, 1)
	assert.Equal(t, 2, h.m.page.Cart.Lines[0].Quantity)
	assert.Equal(t, 2, h.m.page.Products[0].InCart)

	h.send(tea.KeyMsg{Type: tea.KeyDown}, runes("a"))
	assert.Len(t, h.m.page.Cart.Lines, 2)
	assert.Equal(t, 1, h.m.cursor)

	h.send(runes("-"))
	assert.Len(t, h.m.page.Cart.Lines, 1, "decrementing a single unit drops the line")

	h.send(tea.KeyMsg{Type: tea.KeyUp}, runes("x"))
	assert.Empty(t, h.m.page.Cart.Lines)
	assert.Contains(t, h.m.View(), "Your cart is empty")
}

func TestModel_CursorBounds(t *testing.T) {
	h := newHarness(t)
	h.send(alt("2"))

	h.send(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, h.m.cursor)
	for range 20 {
		h.send(tea.KeyMsg{Type: tea.KeyDown})
	}
	assert.Equal(t, len(h.m.page.Products)-1, h.m.cursor)
}

func TestModel_HomeIgnoresCartKeys(t *testing.T) {
	h := newHarness(t)
	h.send(runes("a"), runes("x"))
	assert.Empty(t, h.m.page.Cart.Lines)
}

func TestModel_CheckoutWithLogin(t *testing.T) {
	h := newHarness(t)
	h.send(alt("2"), runes("a"))

	h.send(runes("c"))
	require.True(t, h.m.page.LoginOpen, "anonymous checkout opens the login modal")

	h.typeText("admin")
	h.send(tea.KeyMsg{Type: tea.KeyTab})
	h.typeText("wrong")
	h.send(tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, h.m.page.LoginOpen)
	assert.Contains(t, h.m.View(), "Invalid credentials. Try admin/password")

	h.m.login[1].SetValue("password")
	h.send(tea.KeyMsg{Type: tea.KeyEnter})
	require.False(t, h.m.page.LoginOpen)
	assert.Equal(t, "Welcome, admin", h.m.page.User.Label)

	h.send(runes("c"))
	assert.Equal(t, "Processing...", h.m.page.Checkout.Label)

	h.clock.Advance(2 * time.Second)
	msg := h.sink.Wait()()
	for view.Page(msg.(pageMsg)).Checkout.Label != "Checkout" {
		msg = h.sink.Wait()()
	}
	h.send(msg)
	assert.Empty(t, h.m.page.Cart.Lines)
	assert.Contains(t, h.m.View(), "Checkout completed successfully!")

	h.send(runes("o"))
	assert.Equal(t, "Login", h.m.page.User.Label)
}

func TestModel_LoginEscape(t *testing.T) {
	h := newHarness(t)
	h.send(runes("l"))
	require.True(t, h.m.page.LoginOpen)

	h.send(runes("q"))
	assert.Equal(t, "q", h.m.login[0].Value(), "typing in the modal does not quit")

	h.send(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, h.m.page.LoginOpen)
}

func TestModel_ContactForm(t *testing.T) {
	h := newHarness(t)
	h.send(alt("3"))

	h.send(tea.KeyMsg{Type: tea.KeyTab})
	h.typeText("Ann")
	h.send(tea.KeyMsg{Type: tea.KeyTab})
	h.typeText("ann@example.com")
	h.send(tea.KeyMsg{Type: tea.KeyTab})
	h.typeText("Hello")
	h.send(tea.KeyMsg{Type: tea.KeyTab})
	h.typeText("Is this thing on?")

	h.send(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, "sending", string(h.m.page.Contact.Phase))
	assert.Equal(t, "Ann", h.m.page.Contact.Form.Name)

	h.clock.Advance(1500 * time.Millisecond)
	msg := h.sink.Wait()()
	for !view.Page(msg.(pageMsg)).Contact.ShowSuccess {
		msg = h.sink.Wait()()
	}
	h.send(msg)
	assert.Contains(t, h.m.View(), "Thank you!")
	assert.Empty(t, h.m.form[0].Value(), "inputs reset once the message is sent")
}

func TestModel_StalePageIgnored(t *testing.T) {
	h := newHarness(t)
	h.send(runes("g"))
	current := h.m.page.Version

	h.send(pageMsg(view.Page{Version: current - 1, Section: view.SectionHome}))
	assert.Equal(t, view.SectionProducts, h.m.page.Section)
}

func TestModel_Quit(t *testing.T) {
	h := newHarness(t)
	cmd := h.send(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
