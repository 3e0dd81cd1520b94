package geometry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/coastwatch-labs/catalog/internal/utils"
)

// tableMarker identifies endpoints served through the table-oriented path.
const tableMarker = "erddap/tabledap"

// IsTableEndpoint reports whether url is a tabledap endpoint.
func IsTableEndpoint(url string) bool {
	return strings.Contains(url, tableMarker)
}

// TableFetcher retrieves trajectory positions of a tabledap dataset as
// GeoJSON instead of raw coordinate arrays.
type TableFetcher interface {
	FetchPositions(ctx context.Context, url, xName, yName string) ([]orb.Point, error)
}

// HTTPTableFetcher queries ERDDAP's .geoJson response type.
type HTTPTableFetcher struct {
	client *http.Client
}

func NewHTTPTableFetcher(timeout time.Duration) *HTTPTableFetcher {
	return &HTTPTableFetcher{client: &http.Client{Timeout: timeout}}
}

// GeoJSONURL builds the query for x/y, dropping the "s." sequence prefix.
func GeoJSONURL(url, xName, yName string) string {
	return url + ".geoJson?" + strings.TrimPrefix(xName, "s.") + "," + strings.TrimPrefix(yName, "s.")
}

func (f *HTTPTableFetcher) FetchPositions(ctx context.Context, url, xName, yName string) ([]orb.Point, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, GeoJSONURL(url, xName, yName), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geojson request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch geojson: %w", err)
	}
	defer utils.DrainClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geojson request returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read geojson: %w", err)
	}

	return decodePositions(body)
}

func decodePositions(body []byte) ([]orb.Point, error) {
	g, err := geojson.UnmarshalGeometry(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode geojson: %w", err)
	}

	switch geom := g.Geometry().(type) {
	case orb.MultiPoint:
		return []orb.Point(geom), nil
	case orb.LineString:
		return []orb.Point(geom), nil
	case orb.Point:
		return []orb.Point{geom}, nil
	default:
		return nil, fmt.Errorf("unexpected geojson type %s", g.Type)
	}
}
