package monitor

// Placement is the OS reported show state of a window.
type Placement int

const (
	PlacementUnknown Placement = iota
	PlacementNormal
	PlacementMinimized
	PlacementMaximized
)

func (p Placement) String() string {
	switch p {
	case PlacementNormal:
		return "normal"
	case PlacementMinimized:
		return "minimized"
	case PlacementMaximized:
		return "maximized"
	default:
		return "unknown"
	}
}

// RawKind is a platform neutral name for a native window event.
type RawKind int

const (
	RawOther RawKind = iota
	RawObjectShow
	RawObjectHide
	RawLocationChange
	RawDesktopSwitch
	RawMoveSizeStart
	RawMoveSizeEnd
	RawMinimizeStart
	RawMinimizeEnd
)

var rawKindNames = map[RawKind]string{
	RawOther:          "other",
	RawObjectShow:     "object_show",
	RawObjectHide:     "object_hide",
	RawLocationChange: "location_change",
	RawDesktopSwitch:  "desktop_switch",
	RawMoveSizeStart:  "move_size_start",
	RawMoveSizeEnd:    "move_size_end",
	RawMinimizeStart:  "minimize_start",
	RawMinimizeEnd:    "minimize_end",
}

func (k RawKind) String() string {
	if name, ok := rawKindNames[k]; ok {
		return name
	}

	return "other"
}

// ObjectScope tells which object inside the window a raw event refers to.
type ObjectScope int

const (
	ScopeOther ObjectScope = iota
	ScopeWindow
	ScopeCursor
)

// RawEvent is a native event after code translation by the platform.
// Code keeps the native event number for logging.
type RawEvent struct {
	Kind  RawKind
	Scope ObjectScope
	Code  uint32
}

// Sink receives raw events bound to one registration.
type Sink func(RawEvent)

// WindowQuery answers the auxiliary questions the classifier and the
// normalizer ask about a window. All methods are best effort.
type WindowQuery interface {
	Placement(id WindowID) Placement
	IsVisible(id WindowID) bool
	RawRect(id WindowID) (RawRect, bool)
	DPI(id WindowID) uint32
}

// HookSet is the set of native hooks installed for one registration.
type HookSet interface {
	// Installed reports how many native hook classes were installed.
	Installed() int
	// Wanted reports how many hook classes the platform tried to install.
	Wanted() int
	// Close uninstalls every native hook and then releases the bound sink.
	// After Close returns the sink is never invoked again.
	Close() error
}

// Platform is the native capability the manager is composed with.
type Platform interface {
	WindowQuery
	// Owner resolves the owning process and thread of a window.
	Owner(id WindowID) (Owner, bool)
	// Exists reports whether the handle still refers to a live window.
	Exists(id WindowID) bool
	// Install installs hooks scoped to owner and binds them to sink.
	// It returns an error only if no hook class could be installed.
	Install(id WindowID, owner Owner, sink Sink) (HookSet, error)
	// CheckPrivilege reports whether the process may observe other
	// processes' windows.
	CheckPrivilege() bool
}
