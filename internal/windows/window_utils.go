//go:build windows

package windows

import (
	"unsafe"

	sys "golang.org/x/sys/windows"

	"github.com/Norgate-AV/winmon/internal/monitor"
)

// GetWindowText retrieves the text of a window
func GetWindowText(hwnd uintptr) string {
	buf := make([]uint16, 256)

	ret, _, _ := procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if ret == 0 {
		return ""
	}

	return sys.UTF16ToString(buf)
}

// GetClassName retrieves the class name of a window
func GetClassName(hwnd uintptr) string {
	buf := make([]uint16, 256)

	ret, _, _ := procGetClassNameW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if ret == 0 {
		return ""
	}

	return sys.UTF16ToString(buf)
}

// IsWindow checks if a window handle is valid
func IsWindow(hwnd uintptr) bool {
	return sys.IsWindow(sys.HWND(hwnd))
}

// IsWindowVisible checks if a window is visible
func IsWindowVisible(hwnd uintptr) bool {
	return sys.IsWindowVisible(sys.HWND(hwnd))
}

// GetWindowOwner retrieves the owning process and UI thread of a window
func GetWindowOwner(hwnd uintptr) (pid, tid uint32, ok bool) {
	tid, err := sys.GetWindowThreadProcessId(sys.HWND(hwnd), &pid)
	if err != nil || tid == 0 || pid == 0 {
		return 0, 0, false
	}

	return pid, tid, true
}

// GetWindowPlacement retrieves the show state of a window
func GetWindowPlacement(hwnd uintptr) (WINDOWPLACEMENT, bool) {
	wp := WINDOWPLACEMENT{Length: uint32(unsafe.Sizeof(WINDOWPLACEMENT{}))}

	ret, _, _ := procGetWindowPlacement.Call(hwnd, uintptr(unsafe.Pointer(&wp)))
	return wp, ret != 0
}

// GetWindowRect retrieves the window rectangle in physical pixels
func GetWindowRect(hwnd uintptr) (sys.Rect, bool) {
	var rect sys.Rect

	ret, _, _ := procGetWindowRect.Call(hwnd, uintptr(unsafe.Pointer(&rect)))
	return rect, ret != 0
}

// GetDpiForWindow returns the DPI of the monitor hosting the window, or
// zero when the query fails or the API is unavailable (before Windows 10
// 1607).
func GetDpiForWindow(hwnd uintptr) uint32 {
	if procGetDpiForWindow.Find() != nil {
		return 0
	}

	ret, _, _ := procGetDpiForWindow.Call(hwnd)
	return uint32(ret)
}

// DescribeWindow collects diagnostic information about a window
func DescribeWindow(hwnd uintptr) WindowInfo {
	pid, tid, _ := GetWindowOwner(hwnd)

	return WindowInfo{
		Hwnd:  hwnd,
		Title: GetWindowText(hwnd),
		Class: GetClassName(hwnd),
		Pid:   pid,
		Tid:   tid,
	}
}

// placementOf maps a WINDOWPLACEMENT show command to a Placement
func placementOf(showCmd uint32) monitor.Placement {
	switch showCmd {
	case SW_SHOWNORMAL:
		return monitor.PlacementNormal
	case SW_SHOWMINIMIZED:
		return monitor.PlacementMinimized
	case SW_SHOWMAXIMIZED:
		return monitor.PlacementMaximized
	default:
		return monitor.PlacementUnknown
	}
}

// translateEvent maps a WinEvent code and object id to a raw event
func translateEvent(event uint32, objectID int32) monitor.RawEvent {
	raw := monitor.RawEvent{Code: event, Kind: monitor.RawOther, Scope: monitor.ScopeOther}

	switch event {
	case EVENT_OBJECT_SHOW:
		raw.Kind = monitor.RawObjectShow
	case EVENT_OBJECT_HIDE:
		raw.Kind = monitor.RawObjectHide
	case EVENT_OBJECT_LOCATIONCHANGE:
		raw.Kind = monitor.RawLocationChange
	case EVENT_SYSTEM_DESKTOPSWITCH:
		raw.Kind = monitor.RawDesktopSwitch
	case EVENT_SYSTEM_MOVESIZESTART:
		raw.Kind = monitor.RawMoveSizeStart
	case EVENT_SYSTEM_MOVESIZEEND:
		raw.Kind = monitor.RawMoveSizeEnd
	case EVENT_SYSTEM_MINIMIZESTART:
		raw.Kind = monitor.RawMinimizeStart
	case EVENT_SYSTEM_MINIMIZEEND:
		raw.Kind = monitor.RawMinimizeEnd
	}

	switch objectID {
	case OBJID_WINDOW:
		raw.Scope = monitor.ScopeWindow
	case OBJID_CURSOR:
		raw.Scope = monitor.ScopeCursor
	}

	return raw
}
