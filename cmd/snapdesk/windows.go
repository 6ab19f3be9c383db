package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/1broseidon/snapdesk/internal/desktop"
	"github.com/1broseidon/snapdesk/internal/geometry"
	"github.com/1broseidon/snapdesk/internal/ipc"
)

func printWindow(rec *desktop.WindowRecord) {
	fmt.Printf("%d\t%s\t%s\t%s\n", rec.ID, rec.State(), rec.Geometry(), rec.Title)
}

func parseID(s string) (desktop.ID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid window id %q", s)
	}
	return desktop.ID(n), nil
}

func parseInts(args []string) ([]int, error) {
	out := make([]int, len(args))
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", a)
		}
		out[i] = n
	}
	return out, nil
}

func runOpen(args []string) int {
	fs := newFlagSet("open", "Usage: snapdesk open [--path PATH] [tag]",
		"Open a window showing content tag. Without a tag, pick one of the",
		"launcher icons interactively.")
	path := fs.String("path", "", "Config file path (default: ~/.config/snapdesk/config.yaml)")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "open takes at most one tag")
		return 2
	}

	tag := fs.Arg(0)
	if tag == "" {
		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if tag, err = pickIcon(res.Config.Launcher); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return 130
			}
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	rec, err := ipc.NewClient().OpenWindow(tag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	printWindow(rec)
	return 0
}

func pickIcon(icons []desktop.Icon) (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("open requires a tag when stdin is not a terminal")
	}
	if len(icons) == 0 {
		icons = desktop.DefaultIcons
	}
	opts := make([]huh.Option[string], 0, len(icons))
	for _, icon := range icons {
		opts = append(opts, huh.NewOption(icon.Label, icon.Tag))
	}

	var tag string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Open window").
				Options(opts...).
				Value(&tag),
		),
	)
	if err := form.Run(); err != nil {
		return "", err
	}
	return tag, nil
}

func runWindowOp(name string, args []string) int {
	fs := newFlagSet(name, fmt.Sprintf("Usage: snapdesk %s <id>", name))
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "%s requires a window id\n", name)
		return 2
	}
	id, err := parseID(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	client := ipc.NewClient()
	var rec *desktop.WindowRecord
	switch name {
	case "close":
		err = client.CloseWindow(id)
	case "focus":
		rec, err = client.FocusWindow(id)
	case "minimize":
		rec, err = client.MinimizeWindow(id)
	case "maximize":
		rec, err = client.ToggleMaximize(id)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if rec != nil {
		printWindow(rec)
	}
	return 0
}

func runMove(args []string) int {
	fs := newFlagSet("move", "Usage: snapdesk move <id> <x> <y> <width> <height>",
		"Set a window's geometry. The size is clamped to the minimum window size.")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 5 {
		fs.Usage()
		return 2
	}
	id, err := parseID(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	n, err := parseInts(fs.Args()[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	rec, err := ipc.NewClient().MoveResize(id, geometry.Rect{
		Position: geometry.Point{X: n[0], Y: n[1]},
		Extent:   geometry.Extent{Width: n[2], Height: n[3]},
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	printWindow(rec)
	return 0
}

func runDrag(args []string) int {
	fs := newFlagSet("drag", "Usage: snapdesk drag [--resize DIR] [--steps N] <id> <dx> <dy>",
		"Drag a window by (dx, dy) pixels through the geometry engine, snapping",
		"on release like a pointer drag would.")
	resize := fs.String("resize", "", "Drag a border or corner instead of the title bar (n, s, e, w, ne, nw, se, sw)")
	steps := fs.Int("steps", 1, fmt.Sprintf("Number of pointer moves along the path (1-%d)", ipc.MaxDragSteps))
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 3 {
		fs.Usage()
		return 2
	}
	id, err := parseID(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	n, err := parseInts(fs.Args()[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	payload, err := dragPayload(id, geometry.Point{X: n[0], Y: n[1]}, *steps, *resize)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	rec, err := ipc.NewClient().Drag(payload)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	printWindow(rec)
	return 0
}

// dragPayload builds a gesture of steps evenly spaced moves from the origin
// to offset. The daemon applies the path relative to where the window is
// grabbed, so the result is a drag by offset pixels.
func dragPayload(id desktop.ID, offset geometry.Point, steps int, resize string) (ipc.DragPayload, error) {
	if steps < 1 || steps > ipc.MaxDragSteps {
		return ipc.DragPayload{}, fmt.Errorf("--steps must be between 1 and %d", ipc.MaxDragSteps)
	}
	payload := ipc.DragPayload{ID: id, Kind: "move"}
	if resize != "" {
		if _, err := geometry.ParseDirection(resize); err != nil {
			return ipc.DragPayload{}, err
		}
		payload.Kind = "resize"
		payload.Direction = resize
	}
	payload.Path = make([]geometry.Point, 0, steps)
	for i := 1; i <= steps; i++ {
		payload.Path = append(payload.Path, geometry.Point{X: offset.X * i / steps, Y: offset.Y * i / steps})
	}
	return payload, nil
}

func runPointer(args []string) int {
	usage := func() {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  snapdesk pointer down [--resize DIR] <id> <x> <y>")
		fmt.Fprintln(os.Stderr, "  snapdesk pointer move <x> <y>")
		fmt.Fprintln(os.Stderr, "  snapdesk pointer up")
	}
	if len(args) == 0 {
		usage()
		return 2
	}

	fs := newFlagSet("pointer " + args[0])
	resize := fs.String("resize", "", "Begin a resize from this border or corner instead of a move")
	if code, ok := parseFlags(fs, args[1:]); !ok {
		return code
	}

	p := ipc.PointerPayload{Action: args[0]}
	switch args[0] {
	case ipc.PointerDown:
		if fs.NArg() != 3 {
			usage()
			return 2
		}
		id, err := parseID(fs.Arg(0))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		n, err := parseInts(fs.Args()[1:])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		p.ID, p.X, p.Y = id, n[0], n[1]
		p.Kind = "move"
		if *resize != "" {
			p.Kind, p.Direction = "resize", *resize
		}
	case ipc.PointerMove:
		if fs.NArg() != 2 {
			usage()
			return 2
		}
		n, err := parseInts(fs.Args())
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		p.X, p.Y = n[0], n[1]
	case ipc.PointerUp:
	default:
		usage()
		return 2
	}

	data, err := ipc.NewClient().Pointer(p)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if p.Action == ipc.PointerDown && !data.Accepted {
		fmt.Fprintln(os.Stderr, "pointer down ignored: an interaction is already active")
		return 1
	}
	for _, z := range data.Zones {
		fmt.Printf("zone\t%s\t%s\n", z.Kind, z.Rect())
	}
	return 0
}

func runList(args []string) int {
	fs := newFlagSet("list", "Usage: snapdesk list [--json]", "List windows bottom to top.")
	asJSON := fs.Bool("json", false, "Output JSON")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	data, err := ipc.NewClient().ListWindows()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *asJSON {
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println(string(out))
		return 0
	}

	if len(data.Windows) == 0 {
		fmt.Println("no windows")
		return 0
	}
	fmt.Printf("%-4s %-9s %-6s %-20s %s\n", "ID", "STATE", "ACTIVE", "GEOMETRY", "TITLE")
	for _, w := range data.Windows {
		active := ""
		if w.Active {
			active = "*"
		}
		fmt.Printf("%-4d %-9s %-6s %-20s %s\n", w.ID, w.State(), active, w.Geometry(), w.Title)
	}
	for _, z := range data.Zones {
		fmt.Printf("zone %s %s\n", z.Kind, z.Rect())
	}
	return 0
}
