package core

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/signalsfoundry/orbit-simulator/model"
)

// Scenario is the set of platforms decoded from a scenario file.
type Scenario struct {
	Platforms []*model.PlatformDefinition
}

// PlatformStore is the subset of the KB a scenario registers into.
type PlatformStore interface {
	AddPlatform(p *model.PlatformDefinition) error
}

// internal JSON shapes – keep them unexported so we’re free to evolve them.
type scenarioJSON struct {
	Platforms []platformJSON `json:"platforms"`
}

type platformJSON struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Type     string         `json:"type"`
	Category string         `json:"category"`
	NoradID  uint32         `json:"norad_id"`
	Position *positionJSON  `json:"position"`
	TLE      *tleJSON       `json:"tle"`
	Elements *keplerianJSON `json:"keplerian"`
}

type positionJSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type tleJSON struct {
	Line1 string `json:"line1"`
	Line2 string `json:"line2"`
}

// Angles are degrees in JSON.
type keplerianJSON struct {
	Eccentricity    float64   `json:"eccentricity"`
	SemiMajorAxisKm float64   `json:"semi_major_axis_km"`
	InclinationDeg  float64   `json:"inclination_deg"`
	RAANDeg         float64   `json:"raan_deg"`
	ArgPeriapsisDeg float64   `json:"arg_periapsis_deg"`
	PeriapsisEpoch  time.Time `json:"periapsis_epoch"`
	MuKm3S2         float64   `json:"mu_km3_s2"`
}

// LoadScenario decodes a JSON scenario from r. Each platform must have a
// unique, non-empty id and at most one of "keplerian" and "tle"; platforms
// with neither are static at their optional "position" (metres, ECEF).
func LoadScenario(r io.Reader) (*Scenario, error) {
	var payload scenarioJSON
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("LoadScenario: decode failed: %w", err)
	}

	seen := make(map[string]struct{}, len(payload.Platforms))
	result := &Scenario{Platforms: make([]*model.PlatformDefinition, 0, len(payload.Platforms))}
	for i, js := range payload.Platforms {
		if js.ID == "" {
			return nil, fmt.Errorf("LoadScenario: platform %d has empty id", i)
		}
		if _, dup := seen[js.ID]; dup {
			return nil, fmt.Errorf("LoadScenario: duplicate platform id %q", js.ID)
		}
		seen[js.ID] = struct{}{}

		p, err := js.toPlatform()
		if err != nil {
			return nil, fmt.Errorf("LoadScenario: platform %q: %w", js.ID, err)
		}
		result.Platforms = append(result.Platforms, p)
	}
	return result, nil
}

func (js platformJSON) toPlatform() (*model.PlatformDefinition, error) {
	p := &model.PlatformDefinition{
		ID:          js.ID,
		Name:        js.Name,
		Type:        js.Type,
		CategoryTag: js.Category,
		NoradID:     js.NoradID,
	}
	if js.Position != nil {
		p.Coordinates = model.Motion{X: js.Position.X, Y: js.Position.Y, Z: js.Position.Z}
	}

	switch {
	case js.TLE != nil && js.Elements != nil:
		return nil, fmt.Errorf("only one of tle and keplerian may be set")
	case js.TLE != nil:
		if err := validateTLELines(js.TLE.Line1, js.TLE.Line2); err != nil {
			return nil, err
		}
		p.MotionSource = model.MotionSourceSpacetrack
		p.TLE1, p.TLE2 = js.TLE.Line1, js.TLE.Line2
	case js.Elements != nil:
		el := &model.OrbitalElements{
			Eccentricity:    js.Elements.Eccentricity,
			SemiMajorAxisKm: js.Elements.SemiMajorAxisKm,
			InclinationRad:  degToRad(js.Elements.InclinationDeg),
			RAANRad:         degToRad(js.Elements.RAANDeg),
			ArgPeriapsisRad: degToRad(js.Elements.ArgPeriapsisDeg),
			PeriapsisEpoch:  js.Elements.PeriapsisEpoch,
			MuKm3S2:         js.Elements.MuKm3S2,
		}
		if err := el.Validate(); err != nil {
			return nil, err
		}
		p.MotionSource = model.MotionSourceKeplerian
		p.Elements = el
	}
	return p, nil
}

// Register adds every scenario platform to the store and the motion service,
// stopping at the first failure.
func (s *Scenario) Register(store PlatformStore, motion *MotionService) error {
	for _, p := range s.Platforms {
		if store != nil {
			if err := store.AddPlatform(p); err != nil {
				return err
			}
		}
		if motion != nil {
			if err := motion.AddPlatform(p); err != nil {
				return err
			}
		}
	}
	return nil
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}
