// Package tray provides the system tray menu using getlantern/systray.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// MenuItem is one entry of the tray menu. A nil entry is a separator.
type MenuItem struct {
	Title     string
	Checkable bool
	Checked   bool
	// OnClick receives the item so checkbox handlers can flip its state.
	OnClick func(item *MenuItem)

	mu   sync.Mutex
	item *systray.MenuItem
}

// SetChecked updates the checkbox state, before or after the tray is shown.
func (m *MenuItem) SetChecked(checked bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Checked = checked
	if m.item == nil {
		return
	}
	if checked {
		m.item.Check()
	} else {
		m.item.Uncheck()
	}
}

// IsChecked reports the current checkbox state.
func (m *MenuItem) IsChecked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Checked
}

// Tray manages the system tray icon and menu
type Tray struct {
	title   string
	tooltip string
	items   []*MenuItem
	quitCh  chan struct{}
	onExit  func()
}

// New creates a new system tray
func New(title, tooltip string) *Tray {
	return &Tray{
		title:   title,
		tooltip: tooltip,
		quitCh:  make(chan struct{}),
	}
}

// AddMenuItem adds a plain menu item.
func (t *Tray) AddMenuItem(title string, onClick func()) *MenuItem {
	item := &MenuItem{Title: title, OnClick: func(*MenuItem) { onClick() }}
	t.items = append(t.items, item)
	return item
}

// AddCheckbox adds a checkable menu item.
func (t *Tray) AddCheckbox(title string, checked bool, onClick func(item *MenuItem)) *MenuItem {
	item := &MenuItem{Title: title, Checkable: true, Checked: checked, OnClick: onClick}
	t.items = append(t.items, item)
	return item
}

// AddSeparator adds a separator to the menu
func (t *Tray) AddSeparator() {
	t.items = append(t.items, nil)
}

// OnExit registers fn to run after the tray loop ends.
func (t *Tray) OnExit(fn func()) {
	t.onExit = fn
}

// Run starts the tray event loop and blocks until Stop.
func (t *Tray) Run() {
	systray.Run(t.setupMenu, func() {
		close(t.quitCh)
		if t.onExit != nil {
			t.onExit()
		}
	})
}

func (t *Tray) setupMenu() {
	systray.SetTitle(t.title)
	systray.SetTooltip(t.tooltip)
	systray.SetIcon(icon())

	for _, mi := range t.items {
		if mi == nil {
			systray.AddSeparator()
			continue
		}
		mi.mu.Lock()
		if mi.Checkable {
			mi.item = systray.AddMenuItemCheckbox(mi.Title, "", mi.Checked)
		} else {
			mi.item = systray.AddMenuItem(mi.Title, "")
		}
		mi.mu.Unlock()

		if mi.OnClick != nil {
			go t.dispatch(mi)
		}
	}
}

func (t *Tray) dispatch(mi *MenuItem) {
	for {
		select {
		case <-mi.item.ClickedCh:
			mi.OnClick(mi)
		case <-t.quitCh:
			return
		}
	}
}

// Stop stops the tray
func (t *Tray) Stop() {
	systray.Quit()
}
