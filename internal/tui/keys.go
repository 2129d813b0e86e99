package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	CreateUser key.Binding
	Transfer   key.Binding
	Pick       key.Binding
	PlaceOrder key.Binding
	Reset      key.Binding
	Dashboard  key.Binding
	EditURL    key.Binding
	Help       key.Binding
	Quit       key.Binding
	Confirm    key.Binding
	Cancel     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		CreateUser: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "create user")),
		Transfer:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "transfer")),
		Pick:       key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pick product")),
		PlaceOrder: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "place order")),
		Reset:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Dashboard:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "open dashboard")),
		EditURL:    key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "edit dashboard url")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Confirm:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		Cancel:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.CreateUser, k.Transfer, k.Pick, k.PlaceOrder, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.CreateUser, k.Transfer, k.Pick, k.PlaceOrder},
		{k.Reset, k.Dashboard, k.EditURL},
		{k.Help, k.Quit},
	}
}
