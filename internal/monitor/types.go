// Package monitor implements the window-event hook manager: the registration
// table, the raw event classifier, coordinate normalization and the delivery
// queue that hands semantic events to consumers.
package monitor

import (
	"errors"
	"fmt"
)

// WindowID is an opaque native window handle.
type WindowID uintptr

// EventType is the semantic window event delivered to consumers.
// The numeric values are part of the external contract.
type EventType int

const (
	Unknown EventType = iota
	Focused
	UnFocused
	Moved
	Moving
	Resized
	Shown
	Hide
	Minimized
	Maximized
	Restore
	Resizing
	FullScreen
)

var eventNames = map[EventType]string{
	Unknown:    "Unknown",
	Focused:    "Focused",
	UnFocused:  "UnFocused",
	Moved:      "Moved",
	Moving:     "Moving",
	Resized:    "Resized",
	Shown:      "Shown",
	Hide:       "Hide",
	Minimized:  "Minimized",
	Maximized:  "Maximized",
	Restore:    "Restore",
	Resizing:   "Resizing",
	FullScreen: "FullScreen",
}

func (e EventType) String() string {
	if name, ok := eventNames[e]; ok {
		return name
	}

	return fmt.Sprintf("EventType(%d)", int(e))
}

// Rect is a window rectangle in 96-DPI device independent units.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// Width returns the horizontal extent of the rectangle.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height returns the vertical extent of the rectangle.
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// RawRect is a native rectangle in physical pixels.
type RawRect struct {
	Left   int32
	Top    int32
	Right  int32
	Bottom int32
}

// Owner identifies the process and UI thread that own a window.
type Owner struct {
	PID uint32
	TID uint32
}

// Callback receives semantic events for a registered window.
// It is invoked from the manager's delivery goroutine, never from the
// native hook thread.
type Callback func(id WindowID, event EventType, rect Rect)

// ErrorCode is the integer result code of the external contract.
// Non-zero codes double as sentinel errors.
type ErrorCode int

const (
	Success ErrorCode = iota
	NoRights
	AlreadyExist
	ApplicationNotFound
	WindowNotFound
	CreateObserverFailed
)

var errorMessages = map[ErrorCode]string{
	Success:              "success",
	NoRights:             "no rights to observe other processes",
	AlreadyExist:         "window is already registered",
	ApplicationNotFound:  "owning application not found",
	WindowNotFound:       "window not found",
	CreateObserverFailed: "failed to create observer",
}

func (c ErrorCode) Error() string {
	if msg, ok := errorMessages[c]; ok {
		return msg
	}

	return fmt.Sprintf("error code %d", int(c))
}

// CodeOf maps an error returned by the manager to its integer code.
// Errors that carry no ErrorCode map to CreateObserverFailed.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return Success
	}

	var code ErrorCode
	if errors.As(err, &code) {
		return code
	}

	return CreateObserverFailed
}
