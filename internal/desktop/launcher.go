package desktop

import (
	"fmt"

	"github.com/1broseidon/snapdesk/internal/bus"
)

// Icon is a desktop launch icon.
type Icon struct {
	Label string `yaml:"label" json:"label"`
	Tag   string `yaml:"tag" json:"tag"`
}

// DefaultIcons are the stock desktop icons.
var DefaultIcons = []Icon{
	{Label: "My Computer", Tag: "computer"},
	{Label: "New Text Window", Tag: "text"},
	{Label: "New Counter Window", Tag: "counter"},
	{Label: "New Image Window", Tag: "image"},
	{Label: "New File", Tag: "file"},
}

// Launcher publishes create-window requests for its icons.
type Launcher struct {
	bus   *bus.Bus
	icons []Icon
}

// NewLauncher returns a launcher emitting on b. Nil icons use DefaultIcons.
func NewLauncher(b *bus.Bus, icons []Icon) *Launcher {
	if icons == nil {
		icons = DefaultIcons
	}
	return &Launcher{bus: b, icons: icons}
}

// Icons returns the launcher's icons.
func (l *Launcher) Icons() []Icon { return l.icons }

// Launch requests a window showing tag.
func (l *Launcher) Launch(tag string) error {
	return l.bus.Emit(bus.CreateWindow, tag)
}

// Click launches the i-th icon.
func (l *Launcher) Click(i int) error {
	if i < 0 || i >= len(l.icons) {
		return fmt.Errorf("no launcher icon at index %d", i)
	}
	return l.Launch(l.icons[i].Tag)
}
