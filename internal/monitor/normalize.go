package monitor

// BaseDPI is the reference density of device independent units.
const BaseDPI = 96

// Normalize converts a physical rectangle into 96-DPI units.
// A dpi of zero means the density query failed and the rectangle is
// returned unscaled.
func Normalize(raw RawRect, dpi uint32) Rect {
	rect := Rect{
		Left:   float64(raw.Left),
		Top:    float64(raw.Top),
		Right:  float64(raw.Right),
		Bottom: float64(raw.Bottom),
	}

	if dpi == 0 {
		return rect
	}

	scale := float64(BaseDPI) / float64(dpi)

	return Rect{
		Left:   rect.Left * scale,
		Top:    rect.Top * scale,
		Right:  rect.Right * scale,
		Bottom: rect.Bottom * scale,
	}
}
