package domain

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

const (
	MaxLongitude = 180.0
	MaxLatitude  = 90.0
)

// Geometry is the GeoJSON-shaped representative geometry of a dataset.
// It marshals to {"type": ..., "coordinates": ...} and nothing else.
type Geometry struct {
	orb.Geometry
}

// NewGeometry wraps g. A nil orb geometry yields a nil Geometry.
func NewGeometry(g orb.Geometry) *Geometry {
	if g == nil {
		return nil
	}
	return &Geometry{Geometry: g}
}

// Type returns the GeoJSON type name (Point, LineString, Polygon...).
func (g *Geometry) Type() string {
	if g == nil || g.Geometry == nil {
		return ""
	}
	return g.Geometry.GeoJSONType()
}

// Equal reports whether both geometries have the same type and coordinates.
func (g *Geometry) Equal(other *Geometry) bool {
	if g == nil || other == nil {
		return g == other
	}
	return orb.Equal(g.Geometry, other.Geometry)
}

func (g Geometry) MarshalJSON() ([]byte, error) {
	if g.Geometry == nil {
		return []byte("null"), nil
	}
	return json.Marshal(geojson.NewGeometry(g.Geometry))
}

func (g *Geometry) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		g.Geometry = nil
		return nil
	}
	decoded, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return fmt.Errorf("failed to decode geojson geometry: %w", err)
	}
	g.Geometry = decoded.Geometry()
	return nil
}

// ValidLonLat reports whether lon/lat are finite and inside the WGS84 range.
func ValidLonLat(lon, lat float64) bool {
	// NaN fails every comparison, so it is rejected here too.
	return lon >= -MaxLongitude && lon <= MaxLongitude &&
		lat >= -MaxLatitude && lat <= MaxLatitude
}

// BoxOrPoint turns a (lonMin, latMin, lonMax, latMax) extent into a geometry.
//
// Out of range coordinates yield nil: no geometry is better than a wrong one.
// A degenerate extent becomes a Point, anything else a clockwise rectangle.
func BoxOrPoint(lonMin, latMin, lonMax, latMax float64) *Geometry {
	if !ValidLonLat(lonMin, latMin) || !ValidLonLat(lonMax, latMax) {
		return nil
	}

	if lonMin == lonMax && latMin == latMax {
		return NewGeometry(orb.Point{lonMin, latMin})
	}

	ring := orb.Ring{
		{lonMin, latMin},
		{lonMin, latMax},
		{lonMax, latMax},
		{lonMax, latMin},
		{lonMin, latMin},
	}
	return NewGeometry(orb.Polygon{ring})
}
