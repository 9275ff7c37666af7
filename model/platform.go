package model

// MotionSource indicates how a platform's motion is determined.
type MotionSource int

const (
	MotionSourceUnknown    MotionSource = iota
	MotionSourceSpacetrack              // TLE-based orbit propagation
	MotionSourceKeplerian               // two-body propagation from orbital elements
)

// String returns a short label suitable for metric labels and logs.
func (s MotionSource) String() string {
	switch s {
	case MotionSourceSpacetrack:
		return "sgp4"
	case MotionSourceKeplerian:
		return "keplerian"
	default:
		return "static"
	}
}

// Motion represents a position in ECEF metres.
type Motion struct {
	X float64
	Y float64
	Z float64
}

// PlatformDefinition represents a physical asset (satellite, ground station, etc.).
type PlatformDefinition struct {
	ID          string
	Name        string
	Type        string // e.g. "SATELLITE", "GROUND_STATION"
	CategoryTag string

	Coordinates  Motion
	MotionSource MotionSource

	NoradID uint32 // optional; useful when MotionSourceSpacetrack

	// TLE lines, set when MotionSource is MotionSourceSpacetrack.
	TLE1, TLE2 string

	// Elements is set when MotionSource is MotionSourceKeplerian.
	Elements *OrbitalElements
}
