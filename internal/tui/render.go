package tui

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/jask/tracewalk/internal/backend"
	"github.com/jask/tracewalk/internal/session"
)

// Title renders a section heading.
func Title(label string) string {
	return titleStyle.Render(label)
}

// FormatJSON pretty-prints a record with four-space indentation.
func FormatJSON(r backend.Record) string {
	b, err := json.MarshalIndent(r, "", "    ")
	if err != nil {
		return fmt.Sprintf("%v", map[string]any(r))
	}
	return string(b)
}

// Response renders a step result. Unset results render as nothing.
func Response(r session.Result) string {
	switch r.Kind {
	case session.KindOK:
		return responseStyle.Render(FormatJSON(r.Value))
	case session.KindError:
		return errorStyle.Render("error: " + r.Message)
	default:
		return ""
	}
}

// ---------------------------------------------------------------------------
// Section rendering
// ---------------------------------------------------------------------------

func renderBanner(url string) string {
	return bannerStyle.Render("Make sure jaeger is running on ") + urlStyle.Render(url)
}

func renderHint(keyLabel, label string, pending bool) string {
	if pending {
		return pendingStyle.Render(label + "...")
	}
	return hintKeyStyle.Render("["+keyLabel+"]") + " " + hintStyle.Render(label)
}

func renderProduct(s session.Session) string {
	if !s.HasProduct() {
		return hintStyle.Render("No product selected")
	}
	return hintStyle.Render("Product: ") + s.Product.Name + hintStyle.Render(" ("+s.Product.Price+")")
}

func renderSections(s session.Session, picker *productPicker) string {
	var b strings.Builder
	section := func(parts ...string) {
		for _, p := range parts {
			if p == "" {
				continue
			}
			b.WriteString(p)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	section(
		Title("1. User Creation"),
		renderHint("c", "Create User", s.Pending[session.ActionCreateUser]),
		Response(s.User),
	)
	if !s.User.IsOK() {
		return b.String()
	}

	section(
		Title("2. Transfer amount"),
		renderHint("t", fmt.Sprintf("Transfer %d", session.TransferAmount), s.Pending[session.ActionTransfer]),
		Response(s.Payment),
	)
	if !s.Payment.IsOK() {
		return b.String()
	}

	parts := []string{Title("3. Place order"), renderProduct(s)}
	if picker != nil {
		parts = append(parts, picker.View())
	} else {
		parts = append(parts, renderHint("p", "Choose product", false))
	}
	if s.HasProduct() {
		parts = append(parts, renderHint("o", "Place Order", s.Pending[session.ActionPlaceOrder]))
	}
	parts = append(parts, Response(s.Order))
	if s.Order.IsOK() {
		parts = append(parts, successStyle.Render("Order Placed!"))
	}
	section(parts...)
	return b.String()
}

// truncateLines clips every line to width cells.
func truncateLines(s string, width int) string {
	if width <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = ansi.Truncate(line, width, "…")
	}
	return strings.Join(lines, "\n")
}
