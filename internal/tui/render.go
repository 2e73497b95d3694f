package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/xenking/storefront/internal/checkout"
	"github.com/xenking/storefront/internal/domain/contact"
	"github.com/xenking/storefront/internal/notify"
	"github.com/xenking/storefront/internal/view"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	tabStyle      = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("245"))
	activeTab     = tabStyle.Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("62")).Padding(0, 1)
	modalStyle    = panelStyle.BorderForeground(lipgloss.Color("212"))
	disabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("239")).Strikethrough(true)

	toastStyles = map[notify.Level]lipgloss.Style{
		notify.LevelSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		notify.LevelError:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		notify.LevelInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	}
)

var sectionTitles = map[view.Section]string{
	view.SectionHome:     "1 Home",
	view.SectionProducts: "2 Products",
	view.SectionContact:  "3 Contact",
}

// View renders the model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n\n")

	var body string
	switch {
	case m.page.LoginOpen:
		body = m.loginModal()
	case m.page.Section == view.SectionProducts:
		body = m.products()
	case m.page.Section == view.SectionContact:
		body = m.contactForm()
	default:
		body = m.home()
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, body, "  ", m.cartPanel()))
	b.WriteString("\n\n")

	for _, t := range m.page.Toasts {
		b.WriteString(toastStyles[t.Level].Render("● " + t.Message))
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render(m.help()))
	return b.String()
}

func (m Model) header() string {
	tabs := make([]string, 0, len(view.Sections))
	for _, s := range view.Sections {
		style := tabStyle
		if s == m.page.Section {
			style = activeTab
		}
		tabs = append(tabs, style.Render(sectionTitles[s]))
	}
	right := fmt.Sprintf("%s  Cart (%d)", m.page.User.Label, m.page.Cart.ItemCount)
	return lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render("Storefront"), "  ",
		lipgloss.JoinHorizontal(lipgloss.Center, tabs...), "  ",
		dimStyle.Render(right),
	)
}

func (m Model) home() string {
	return panelStyle.Render(strings.Join([]string{
		titleStyle.Render("Welcome to the storefront"),
		"",
		"Browse the catalog, fill your cart and check out.",
		"",
		cursorStyle.Render("[g] Get started"),
	}, "\n"))
}

func (m Model) products() string {
	lines := make([]string, 0, len(m.page.Products))
	for i, p := range m.page.Products {
		marker := "  "
		name := p.Name
		if i == m.cursor {
			marker = cursorStyle.Render("> ")
			name = cursorStyle.Render(name)
		}
		row := fmt.Sprintf("%s%-24s %10s  %s", marker, name, p.Price, dimStyle.Render(p.Category))
		if p.InCart > 0 {
			row += fmt.Sprintf("  ×%d", p.InCart)
		}
		lines = append(lines, row)
	}
	if len(lines) == 0 {
		lines = append(lines, dimStyle.Render("No products"))
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) contactForm() string {
	lines := []string{titleStyle.Render("Contact us"), ""}
	for i, k := range formKeys {
		lines = append(lines, fmt.Sprintf("%-8s %s", k, m.form[i].View()))
	}
	lines = append(lines, "")
	switch {
	case m.page.Contact.ShowSuccess:
		lines = append(lines, toastStyles[notify.LevelSuccess].Render("Thank you! Your message has been sent."))
	case m.page.Contact.Phase == contact.PhaseSending:
		lines = append(lines, dimStyle.Render("Sending..."))
	default:
		lines = append(lines, cursorStyle.Render("[enter] Send"))
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) loginModal() string {
	return modalStyle.Render(strings.Join([]string{
		titleStyle.Render("Login"),
		"",
		m.login[0].View(),
		m.login[1].View(),
		"",
		dimStyle.Render("[enter] login  [tab] next field  [esc] close"),
	}, "\n"))
}

func (m Model) cartPanel() string {
	c := m.page.Cart
	lines := []string{titleStyle.Render("Cart")}
	if len(c.Lines) == 0 {
		lines = append(lines, dimStyle.Render("Your cart is empty"))
	}
	for _, l := range c.Lines {
		lines = append(lines, fmt.Sprintf("%-20s %-7s %9s", l.Name, l.QuantityLabel, l.LineTotal))
	}
	lines = append(lines, "", c.Total)

	button := "[c] " + m.page.Checkout.Label
	if !c.CheckoutEnabled || m.page.Checkout.State == checkout.StatePending {
		button = disabledStyle.Render(button)
	} else {
		button = cursorStyle.Render(button)
	}
	lines = append(lines, button)
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) help() string {
	switch {
	case m.page.LoginOpen:
		return "alt+1/2/3 sections • ctrl+c quit"
	case m.page.Section == view.SectionContact:
		return "tab next field • enter send • alt+1/2/3 sections • esc unfocus • ctrl+c quit"
	}
	login := "l login"
	if m.page.User.Authenticated {
		login = "o logout"
	}
	return "alt+1/2/3 sections • g get started • ↑/↓ move • enter/a add • x remove • - decrement • c checkout • " +
		login + " • q quit"
}
