// Package layershell implements the client side of the
// wlr-layer-shell-unstable-v1 protocol extension, which lets clients
// place surfaces on layers of the desktop such as panels, docks, and
// overlays.
package layershell

import (
	_ "embed"
	"fmt"
	"strings"

	wl "deedles.dev/dwr/client"
	"deedles.dev/dwr/internal/debug"
	"deedles.dev/dwr/wire"
)

// ProtocolXML is the protocol definition that this package
// implements.
//
//go:embed wlr-layer-shell-unstable-v1.xml
var ProtocolXML []byte

const (
	shellInterface   = "zwlr_layer_shell_v1"
	shellVersion     = 4
	surfaceInterface = "zwlr_layer_surface_v1"
)

const (
	shellRequestGetLayerSurface uint16 = iota
	shellRequestDestroy
)

const (
	surfaceRequestSetSize uint16 = iota
	surfaceRequestSetAnchor
	surfaceRequestSetExclusiveZone
	surfaceRequestSetMargin
	surfaceRequestSetKeyboardInteractivity
	surfaceRequestGetPopup
	surfaceRequestAckConfigure
	surfaceRequestDestroy
	surfaceRequestSetLayer
)

const (
	surfaceEventConfigure uint16 = iota
	surfaceEventClosed
)

// Shell errors.
const (
	ShellErrorRole               = 0
	ShellErrorInvalidLayer       = 1
	ShellErrorAlreadyConstructed = 2
)

// Layer surface errors.
const (
	SurfaceErrorInvalidSurfaceState          = 0
	SurfaceErrorInvalidSize                  = 1
	SurfaceErrorInvalidAnchor                = 2
	SurfaceErrorInvalidKeyboardInteractivity = 3
)

type Layer uint32

const (
	LayerBackground Layer = iota
	LayerBottom
	LayerTop
	LayerOverlay
)

var layerNames = [...]string{"background", "bottom", "top", "overlay"}

func (l Layer) String() string {
	if int(l) < len(layerNames) {
		return layerNames[l]
	}
	return fmt.Sprintf("Layer(%d)", uint32(l))
}

// ParseLayer parses the name of a layer as returned by Layer.String.
func ParseLayer(v string) (Layer, error) {
	for i, name := range layerNames {
		if strings.EqualFold(v, name) {
			return Layer(i), nil
		}
	}
	return 0, fmt.Errorf("unknown layer: %q", v)
}

// Anchor is a set of edges of the output.
type Anchor uint32

const (
	AnchorTop Anchor = 1 << iota
	AnchorBottom
	AnchorLeft
	AnchorRight

	AnchorNone Anchor = 0
	AnchorAll         = AnchorTop | AnchorBottom | AnchorLeft | AnchorRight
)

var anchorNames = [...]string{"top", "bottom", "left", "right"}

// Has returns true if a contains every edge in edges.
func (a Anchor) Has(edges Anchor) bool {
	return a&edges == edges
}

func (a Anchor) String() string {
	if a == AnchorNone {
		return "none"
	}

	names := make([]string, 0, len(anchorNames))
	for i, name := range anchorNames {
		if a.Has(1 << i) {
			names = append(names, name)
		}
	}
	if rest := a &^ AnchorAll; rest != 0 {
		names = append(names, fmt.Sprintf("0x%x", uint32(rest)))
	}
	return strings.Join(names, "|")
}

// ParseAnchor parses a list of edge names, such as "top|left" or
// "top,left". An empty string or "none" is AnchorNone.
func ParseAnchor(v string) (Anchor, error) {
	var a Anchor
	for _, edge := range strings.FieldsFunc(v, func(r rune) bool { return (r == '|') || (r == ',') || (r == ' ') }) {
		if strings.EqualFold(edge, "none") {
			continue
		}

		e, err := parseEdge(edge)
		if err != nil {
			return 0, err
		}
		a |= e
	}
	return a, nil
}

func parseEdge(v string) (Anchor, error) {
	for i, name := range anchorNames {
		if strings.EqualFold(v, name) {
			return 1 << i, nil
		}
	}
	return 0, fmt.Errorf("unknown anchor edge: %q", v)
}

type KeyboardInteractivity uint32

const (
	KeyboardInteractivityNone KeyboardInteractivity = iota
	KeyboardInteractivityExclusive
	KeyboardInteractivityOnDemand
)

var keyboardInteractivityNames = [...]string{"none", "exclusive", "on_demand"}

func (k KeyboardInteractivity) String() string {
	if int(k) < len(keyboardInteractivityNames) {
		return keyboardInteractivityNames[k]
	}
	return fmt.Sprintf("KeyboardInteractivity(%d)", uint32(k))
}

func ParseKeyboardInteractivity(v string) (KeyboardInteractivity, error) {
	for i, name := range keyboardInteractivityNames {
		if strings.EqualFold(v, name) {
			return KeyboardInteractivity(i), nil
		}
	}
	return 0, fmt.Errorf("unknown keyboard interactivity: %q", v)
}

type Shell struct {
	wl.Proxy
}

func IsShell(i wl.Interface) bool {
	return i.Is(shellInterface, 1)
}

func BindShell(display *wl.Display, name uint32) *Shell {
	registry := display.GetRegistry()

	shell := Shell{Proxy: wl.NewProxy(display, registry.BindVersion(name, shellVersion))}
	display.AddObject(&shell)
	registry.Bind(name, shellInterface, &shell)

	return &shell
}

// GetLayerSurface gives surface the layer surface role. A nil output
// lets the compositor pick one.
func (shell *Shell) GetLayerSurface(surface *wl.Surface, output *wl.Output, layer Layer, namespace string) *LayerSurface {
	ls := LayerSurface{Proxy: wl.NewProxy(shell.Display(), shell.Version())}
	shell.Display().AddObject(&ls)
	shell.Display().Enqueue(wire.Message(
		shell,
		shellRequestGetLayerSurface,
		"get_layer_surface",
		&ls,
		surface,
		output,
		uint32(layer),
		namespace,
	))

	return &ls
}

// Destroy destroys the shell. Before version 3 there is no destructor
// request, so the object is only forgotten.
func (shell *Shell) Destroy() {
	if shell.Version() >= 3 {
		shell.Display().Enqueue(wire.Message(shell, shellRequestDestroy, "destroy"))
	}
	shell.Display().DeleteObject(shell.ID())
}

func (shell *Shell) String() string {
	return fmt.Sprintf("%v@%v", shellInterface, shell.ID())
}

func (shell *Shell) MethodName(op uint16) string {
	return "unknown"
}

func (shell *Shell) Dispatch(msg *wire.MessageBuffer) error {
	return wire.UnknownOpError{Interface: shellInterface, Type: "event", Op: msg.Op()}
}

type LayerSurface struct {
	wl.Proxy

	// Configure is called when the compositor suggests a size for the
	// surface. The handler is responsible for calling AckConfigure. A
	// zero dimension means that the client should pick it.
	Configure func(serial, width, height uint32)

	// Closed is called when the compositor will no longer show the
	// surface.
	Closed func()
}

func (ls *LayerSurface) SetSize(width, height uint32) {
	ls.Display().Enqueue(wire.Message(ls, surfaceRequestSetSize, "set_size", width, height))
}

func (ls *LayerSurface) SetAnchor(anchor Anchor) {
	ls.Display().Enqueue(wire.Message(ls, surfaceRequestSetAnchor, "set_anchor", uint32(anchor)))
}

func (ls *LayerSurface) SetExclusiveZone(zone int32) {
	ls.Display().Enqueue(wire.Message(ls, surfaceRequestSetExclusiveZone, "set_exclusive_zone", zone))
}

func (ls *LayerSurface) SetMargin(top, right, bottom, left int32) {
	ls.Display().Enqueue(wire.Message(ls, surfaceRequestSetMargin, "set_margin", top, right, bottom, left))
}

// SetKeyboardInteractivity sets how the surface receives keyboard
// focus. On-demand focus needs version 4, so older compositors get no
// keyboard focus instead.
func (ls *LayerSurface) SetKeyboardInteractivity(k KeyboardInteractivity) {
	if (k == KeyboardInteractivityOnDemand) && (ls.Version() < 4) {
		debug.Printf("%v: on-demand keyboard interactivity needs version 4, using none", ls)
		k = KeyboardInteractivityNone
	}
	ls.Display().Enqueue(wire.Message(ls, surfaceRequestSetKeyboardInteractivity, "set_keyboard_interactivity", uint32(k)))
}

func (ls *LayerSurface) AckConfigure(serial uint32) {
	ls.Display().Enqueue(wire.Message(ls, surfaceRequestAckConfigure, "ack_configure", serial))
}

// SetLayer moves the surface to another layer. It returns false if the
// compositor is too old to support it.
func (ls *LayerSurface) SetLayer(layer Layer) bool {
	if ls.Version() < 2 {
		return false
	}
	ls.Display().Enqueue(wire.Message(ls, surfaceRequestSetLayer, "set_layer", uint32(layer)))
	return true
}

func (ls *LayerSurface) Destroy() {
	ls.Display().Enqueue(wire.Message(ls, surfaceRequestDestroy, "destroy"))
	ls.Display().DeleteObject(ls.ID())
}

func (ls *LayerSurface) String() string {
	return fmt.Sprintf("%v@%v", surfaceInterface, ls.ID())
}

func (ls *LayerSurface) MethodName(op uint16) string {
	switch op {
	case surfaceEventConfigure:
		return "configure"
	case surfaceEventClosed:
		return "closed"
	default:
		return "unknown"
	}
}

func (ls *LayerSurface) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case surfaceEventConfigure:
		serial := msg.ReadUint()
		width, height := msg.ReadUint(), msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		if ls.Configure != nil {
			ls.Configure(serial, width, height)
		}

	case surfaceEventClosed:
		if ls.Closed != nil {
			ls.Closed()
		}

	default:
		return wire.UnknownOpError{Interface: surfaceInterface, Type: "event", Op: msg.Op()}
	}

	return nil
}
