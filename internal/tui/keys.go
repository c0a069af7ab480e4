package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	prevObject  key.Binding
	nextObject  key.Binding
	up          key.Binding
	down        key.Binding
	edit        key.Binding
	collapse    key.Binding
	addProperty key.Binding
	delProperty key.Binding
	delObject   key.Binding
	addObject   key.Binding
	copyLast    key.Binding
	tableView   key.Binding
	formView    key.Binding
	preview     key.Binding
	save        key.Binding
	download    key.Binding
	open        key.Binding
	reload      key.Binding
	help        key.Binding
	quit        key.Binding
	cancel      key.Binding

	// table view
	sort      key.Binding
	selectRow key.Binding
	selectAll key.Binding
	newRow    key.Binding
	delRows   key.Binding
	nextCell  key.Binding
	prevCell  key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		prevObject: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "prev object"),
		),
		nextObject: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "next object"),
		),
		up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑", "up"),
		),
		down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓", "down"),
		),
		edit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "edit"),
		),
		collapse: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "fold"),
		),
		addProperty: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add property"),
		),
		delProperty: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete property"),
		),
		delObject: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "delete object"),
		),
		addObject: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new object"),
		),
		copyLast: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "copy last"),
		),
		tableView: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "table"),
		),
		formView: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "form"),
		),
		preview: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "edit raw"),
		),
		save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save"),
		),
		download: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "download"),
		),
		open: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open"),
		),
		reload: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "reload"),
		),
		help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort column"),
		),
		selectRow: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "select"),
		),
		selectAll: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "select all"),
		),
		newRow: key.NewBinding(
			key.WithKeys("N"),
			key.WithHelp("N", "new row"),
		),
		delRows: key.NewBinding(
			key.WithKeys("delete", "backspace"),
			key.WithHelp("del", "delete selected"),
		),
		nextCell: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next cell"),
		),
		prevCell: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev cell"),
		),
	}
}

func (k keyMap) formHelp() []key.Binding {
	return []key.Binding{k.prevObject, k.nextObject, k.edit, k.addProperty, k.addObject, k.tableView, k.preview, k.save, k.open, k.help, k.quit}
}

func (k keyMap) tableHelp() []key.Binding {
	return []key.Binding{k.edit, k.sort, k.selectRow, k.newRow, k.delRows, k.formView, k.save, k.help, k.quit}
}
