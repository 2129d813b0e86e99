package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jask/tracewalk/internal/catalog"
)

type pickerAction int

const (
	pickerActionNone pickerAction = iota
	pickerActionMoved
	pickerActionSelected
	pickerActionCancelled
)

// productPicker lists the fixed catalog options with a cursor.
type productPicker struct {
	options []catalog.Option
	cursor  int
}

func newProductPicker(current catalog.Product) *productPicker {
	p := &productPicker{options: catalog.Options()}
	for i, o := range p.options {
		if o.Label == current.Name {
			p.cursor = i
		}
	}
	return p
}

// HandleKey applies one key press and reports what happened.
func (p *productPicker) HandleKey(k string) pickerAction {
	switch k {
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
		return pickerActionMoved
	case "down", "j":
		if p.cursor < len(p.options)-1 {
			p.cursor++
		}
		return pickerActionMoved
	case "enter", " ":
		return pickerActionSelected
	case "esc", "p":
		return pickerActionCancelled
	}
	if n, err := strconv.Atoi(k); err == nil && n >= 1 && n <= len(p.options) {
		p.cursor = n - 1
		return pickerActionSelected
	}
	return pickerActionNone
}

// Selected returns the label and value pair under the cursor as a product.
func (p *productPicker) Selected() catalog.Product {
	o := p.options[p.cursor]
	return catalog.SelectByValue(o.Label, strconv.Itoa(o.Value))
}

func (p *productPicker) View() string {
	var b strings.Builder
	b.WriteString(hintStyle.Render("Select product"))
	for i, o := range p.options {
		b.WriteString("\n")
		line := fmt.Sprintf("%d. %-12s %5d", i+1, o.Label, o.Value)
		if i == p.cursor {
			b.WriteString(cursorStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
	}
	return pickerBoxStyle.Render(b.String())
}
