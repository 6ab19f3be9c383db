package desktop

import (
	"strings"

	"github.com/rivo/uniseg"
)

// Entry is one taskbar button.
type Entry struct {
	ID       ID
	Label    string
	State    State
	Active   bool
	activate func()
}

// Activate focuses the entry's window.
func (e Entry) Activate() {
	if e.activate != nil {
		e.activate()
	}
}

// Taskbar projects the manager's records into clickable entries.
type Taskbar struct {
	manager  *Manager
	maxLabel int
}

// NewTaskbar returns a taskbar over m. Labels longer than maxLabel grapheme
// clusters are truncated with an ellipsis; zero disables truncation.
func NewTaskbar(m *Manager, maxLabel int) *Taskbar {
	return &Taskbar{manager: m, maxLabel: maxLabel}
}

// Entries returns one entry per window in creation order.
func (t *Taskbar) Entries() []Entry {
	records := t.manager.Windows()
	entries := make([]Entry, 0, len(records))
	for _, r := range records {
		id := r.ID
		entries = append(entries, Entry{
			ID:       id,
			Label:    truncateLabel(r.Title, t.maxLabel),
			State:    r.State(),
			Active:   r.Active,
			activate: func() { t.manager.FocusWindow(id) },
		})
	}
	return entries
}

func truncateLabel(s string, max int) string {
	if max <= 0 || uniseg.GraphemeClusterCount(s) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	var b strings.Builder
	g := uniseg.NewGraphemes(s)
	for n := 0; n < max-1 && g.Next(); n++ {
		b.WriteString(g.Str())
	}
	b.WriteString("…")
	return b.String()
}
