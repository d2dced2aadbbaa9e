//go:build windows

// Package windows is the Win32 backend of the window monitor. It installs
// out-of-context WinEvent hooks scoped to the owning thread of each
// monitored window and answers placement, visibility, rectangle and DPI
// queries.
package windows

import (
	sys "golang.org/x/sys/windows"
)

var (
	user32                    = sys.NewLazySystemDLL("user32.dll")
	procSetWinEventHook       = user32.NewProc("SetWinEventHook")
	procUnhookWinEvent        = user32.NewProc("UnhookWinEvent")
	procGetWindowPlacement    = user32.NewProc("GetWindowPlacement")
	procGetWindowRect         = user32.NewProc("GetWindowRect")
	procGetDpiForWindow       = user32.NewProc("GetDpiForWindow")
	procGetWindowTextW        = user32.NewProc("GetWindowTextW")
	procGetClassNameW         = user32.NewProc("GetClassNameW")
	procGetMessageW           = user32.NewProc("GetMessageW")
	procPeekMessageW          = user32.NewProc("PeekMessageW")
	procTranslateMessage      = user32.NewProc("TranslateMessage")
	procDispatchMessageW      = user32.NewProc("DispatchMessageW")
	procPostThreadMessageW    = user32.NewProc("PostThreadMessageW")
	kernel32                  = sys.NewLazySystemDLL("kernel32.dll")
	procSetConsoleCtrlHandler = kernel32.NewProc("SetConsoleCtrlHandler")
)

// WinEvent codes
const (
	EVENT_SYSTEM_MOVESIZESTART  = 0x000A
	EVENT_SYSTEM_MOVESIZEEND    = 0x000B
	EVENT_SYSTEM_MINIMIZESTART  = 0x0016
	EVENT_SYSTEM_MINIMIZEEND    = 0x0017
	EVENT_SYSTEM_DESKTOPSWITCH  = 0x0020
	EVENT_OBJECT_SHOW           = 0x8002
	EVENT_OBJECT_HIDE           = 0x8003
	EVENT_OBJECT_LOCATIONCHANGE = 0x800B

	WINEVENT_OUTOFCONTEXT   = 0x0000
	WINEVENT_SKIPOWNPROCESS = 0x0002
)

// Object ids carried by WinEvents
const (
	OBJID_WINDOW = 0
	OBJID_CURSOR = -9
)

// Show states reported by GetWindowPlacement
const (
	SW_SHOWNORMAL    = 1
	SW_SHOWMINIMIZED = 2
	SW_SHOWMAXIMIZED = 3
)

// Message queue
const (
	WM_QUIT     = 0x0012
	WM_USER     = 0x0400
	PM_NOREMOVE = 0x0000

	// wmRunCalls wakes the hook thread to run marshalled calls.
	wmRunCalls = WM_USER + 0x57
)

// winEvents are the event classes hooked for every registration, one
// native hook each.
var winEvents = []uint32{
	EVENT_OBJECT_SHOW,
	EVENT_OBJECT_HIDE,
	EVENT_OBJECT_LOCATIONCHANGE,
	EVENT_SYSTEM_DESKTOPSWITCH,
	EVENT_SYSTEM_MOVESIZESTART,
	EVENT_SYSTEM_MOVESIZEEND,
	EVENT_SYSTEM_MINIMIZESTART,
	EVENT_SYSTEM_MINIMIZEEND,
}
