//go:build windows

package windows

import (
	sys "golang.org/x/sys/windows"
)

type POINT struct {
	X int32
	Y int32
}

// WINDOWPLACEMENT for GetWindowPlacement
type WINDOWPLACEMENT struct {
	Length           uint32
	Flags            uint32
	ShowCmd          uint32
	PtMinPosition    POINT
	PtMaxPosition    POINT
	RcNormalPosition sys.Rect
}

// MSG for the hook thread message loop
type MSG struct {
	Hwnd    uintptr
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      POINT
	Private uint32
}

// WindowInfo describes a window for diagnostics
type WindowInfo struct {
	Hwnd  uintptr
	Title string
	Class string
	Pid   uint32
	Tid   uint32
}
