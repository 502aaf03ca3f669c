package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/localbizintel/backend/internal/config"
	"github.com/localbizintel/backend/internal/domain"
)

// BusinessTypeSpec maps a business type name onto the OSM tag used to query it.
type BusinessTypeSpec struct {
	TagKey   string
	TagValue string
}

// DefaultBusinessTypes is the process-wide table used when a request does not
// carry its own options.business_types map.
var DefaultBusinessTypes = map[string]BusinessTypeSpec{
	"cafes":       {TagKey: "amenity", TagValue: "cafe"},
	"restaurants": {TagKey: "amenity", TagValue: "restaurant"},
	"gyms":        {TagKey: "leisure", TagValue: "fitness_centre"},
}

// OverpassClient fetches business counts for a city from the OpenStreetMap
// Overpass API.
type OverpassClient struct {
	cfg        config.OverpassConfig
	httpClient *http.Client
}

// NewOverpassClient creates a client using the configured endpoint and timeout.
func NewOverpassClient(cfg config.OverpassConfig) *OverpassClient {
	return &OverpassClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

type overpassElement struct {
	ID     int64    `json:"id"`
	Type   string   `json:"type"`
	Lat    *float64 `json:"lat"`
	Lon    *float64 `json:"lon"`
	Center *struct {
		Lat *float64 `json:"lat"`
		Lon *float64 `json:"lon"`
	} `json:"center"`
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

// FetchBusinessDensity issues one Overpass query per configured business type
// and returns one row per type for the city-wide region. Any HTTP failure
// aborts the whole fetch; no partial results are returned.
func (c *OverpassClient) FetchBusinessDensity(ctx context.Context, country string, city string, options map[string]any) ([]domain.BusinessDensity, error) {
	if city == "" {
		return nil, errors.New("city is required for business density ingestion")
	}

	resolved := country
	if resolved == "" {
		resolved = c.cfg.DefaultCountry
	}

	specs := resolveBusinessTypes(options)
	cityGeoID := fmt.Sprintf("%s-%s", citySlug(city), c.cfg.CityGeoIDSuffix)

	// Stable query order so repeated runs hit the provider identically.
	names := make([]string, 0, len(specs))
	for name := range specs {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]domain.BusinessDensity, 0, len(names))
	for _, name := range names {
		spec := specs[name]
		elements, err := c.query(ctx, city, spec)
		if err != nil {
			return nil, err
		}

		count := len(elements)
		rows = append(rows, domain.BusinessDensity{
			GeoID:        cityGeoID,
			Country:      resolved,
			City:         city,
			BusinessType: name,
			Count:        &count,
			Coordinates:  c.extractCoordinates(elements),
		})
	}

	return rows, nil
}

func (c *OverpassClient) query(ctx context.Context, city string, spec BusinessTypeSpec) ([]overpassElement, error) {
	body := c.buildQuery(city, spec)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, strings.NewReader(body))
	if err != nil {
		return nil, &FetchError{Provider: "overpass", Err: err}
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Provider: "overpass", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &FetchError{
			Provider: "overpass",
			Status:   resp.StatusCode,
			Err:      fmt.Errorf("unexpected response: %s", bytes.TrimSpace(payload)),
		}
	}

	var decoded overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, &FetchError{Provider: "overpass", Err: fmt.Errorf("malformed response: %w", err)}
	}
	return decoded.Elements, nil
}

func (c *OverpassClient) buildQuery(city string, spec BusinessTypeSpec) string {
	escapedCity := strings.ReplaceAll(city, `"`, `\"`)
	return fmt.Sprintf(`[out:json][timeout:%d];
area["name"="%s"]["boundary"="administrative"]->.searchArea;
(
  node["%s"="%s"](area.searchArea);
  way["%s"="%s"](area.searchArea);
  relation["%s"="%s"](area.searchArea);
);
out center;`,
		c.cfg.QueryTimeoutSeconds,
		escapedCity,
		spec.TagKey, spec.TagValue,
		spec.TagKey, spec.TagValue,
		spec.TagKey, spec.TagValue,
	)
}

// extractCoordinates keeps up to the configured number of samples, first N in
// response order. Elements without usable coordinates are skipped.
func (c *OverpassClient) extractCoordinates(elements []overpassElement) []domain.CoordinateSample {
	var samples []domain.CoordinateSample
	for _, element := range elements {
		lat, lon := element.Lat, element.Lon
		if (lat == nil || lon == nil) && element.Center != nil {
			lat, lon = element.Center.Lat, element.Center.Lon
		}
		if lat == nil || lon == nil {
			continue
		}
		samples = append(samples, domain.CoordinateSample{
			ID:   element.ID,
			Lat:  *lat,
			Lon:  *lon,
			Type: element.Type,
		})
		if len(samples) >= c.cfg.MaxCoordinateSamples {
			break
		}
	}
	return samples
}

// resolveBusinessTypes reads options.business_types entries shaped like
// {"tag_key": ..., "tag_value": ...}, falling back to the default table when
// nothing usable is present.
func resolveBusinessTypes(options map[string]any) map[string]BusinessTypeSpec {
	raw, ok := options["business_types"].(map[string]any)
	if ok {
		resolved := map[string]BusinessTypeSpec{}
		for name, value := range raw {
			spec, ok := value.(map[string]any)
			if !ok {
				continue
			}
			tagKey, keyOK := spec["tag_key"].(string)
			tagValue, valueOK := spec["tag_value"].(string)
			if keyOK && valueOK {
				resolved[name] = BusinessTypeSpec{TagKey: tagKey, TagValue: tagValue}
			}
		}
		if len(resolved) > 0 {
			return resolved
		}
	}
	return DefaultBusinessTypes
}
