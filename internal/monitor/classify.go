package monitor

import (
	"log/slog"

	"github.com/Norgate-AV/winmon/internal/logger"
)

// Classifier maps raw native events to semantic events.
type Classifier struct {
	query WindowQuery
	log   logger.LoggerInterface
}

// NewClassifier creates a classifier backed by the given window queries.
func NewClassifier(query WindowQuery, log logger.LoggerInterface) *Classifier {
	return &Classifier{query: query, log: log}
}

// Classify returns the semantic event for raw, or Unknown when the event
// must be dropped.
//
// Hooks are scoped to the owning thread, so sibling and child windows of the
// same thread feed the same hook. Placement and visibility are always checked
// against the registered window id, never against the handle carried by the
// native event.
func (c *Classifier) Classify(id WindowID, raw RawEvent) EventType {
	switch raw.Kind {
	case RawObjectShow:
		if raw.Scope != ScopeWindow || !c.query.IsVisible(id) {
			return Unknown
		}

		if c.query.Placement(id) == PlacementMinimized {
			return Unknown
		}

		return Shown

	case RawObjectHide:
		if raw.Scope != ScopeWindow {
			return Unknown
		}

		return Hide

	case RawLocationChange:
		if raw.Scope == ScopeCursor {
			return Unknown
		}

		switch c.query.Placement(id) {
		case PlacementMaximized:
			return Maximized
		case PlacementNormal:
			if raw.Scope == ScopeWindow {
				return Moving
			}
		}

		return Unknown

	case RawDesktopSwitch, RawMoveSizeStart:
		c.log.Debug("Unhandled system event",
			slog.Uint64("hwnd", uint64(id)),
			slog.String("raw", raw.Kind.String()),
			slog.Uint64("code", uint64(raw.Code)),
		)
		return Unknown

	case RawMoveSizeEnd:
		return Moved

	case RawMinimizeStart:
		return Minimized

	case RawMinimizeEnd:
		// The end transition also fires when the window settles back into
		// the minimized state.
		if c.query.Placement(id) == PlacementMinimized {
			return Unknown
		}

		return Restore
	}

	return Unknown
}
