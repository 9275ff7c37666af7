package main

// defaultScenario runs when no -scenario flag is given: a Molniya-type
// Keplerian orbit, a circular LEO, the ISS on SGP4 and one equatorial
// ground station.
const defaultScenario = `{
  "platforms": [
    {
      "id": "molniya-1",
      "name": "Molniya-type HEO",
      "type": "SATELLITE",
      "keplerian": {
        "eccentricity": 0.74,
        "semi_major_axis_km": 26600,
        "inclination_deg": 63.4,
        "raan_deg": 40,
        "arg_periapsis_deg": 270,
        "periapsis_epoch": "2025-01-01T00:00:00Z"
      }
    },
    {
      "id": "leo-1",
      "name": "Circular LEO",
      "type": "SATELLITE",
      "keplerian": {
        "eccentricity": 0,
        "semi_major_axis_km": 6921,
        "inclination_deg": 53,
        "raan_deg": 120,
        "arg_periapsis_deg": 0,
        "periapsis_epoch": "2025-01-01T00:00:00Z"
      }
    },
    {
      "id": "iss",
      "name": "ISS (ZARYA)",
      "type": "SATELLITE",
      "norad_id": 25544,
      "tle": {
        "line1": "1 25544U 98067A   21275.59097222  .00000204  00000-0  10270-4 0  9990",
        "line2": "2 25544  51.6459 115.9059 0001817  61.3028  35.9198 15.49370953257760"
      }
    },
    {
      "id": "gs-equator",
      "name": "Equator-GS",
      "type": "GROUND_STATION",
      "position": {"x": 6371000, "y": 0, "z": 0}
    }
  ]
}`
