package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/earth-window/earth-window-dataset-poc/internal/properties"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	copernicusSearchURL  = "https://sh.dataspace.copernicus.eu/api/v1/catalog/1.0.0/search"
	copernicusProcessURL = "https://sh.dataspace.copernicus.eu/api/v1/process"
	searchPageLimit      = 100
)

// CopernicusSource lists Sentinel-2 L2A scenes from the Copernicus Data Space
// catalog and fetches their pixels through the processing API.
type CopernicusSource struct {
	client     *http.Client
	collection string
	bands      []string
	resolution float64
}

// NewCopernicusSource builds a source authenticated via OAuth2 client
// credentials from the environment.
func NewCopernicusSource(bands []string, resolution float64) (*CopernicusSource, error) {
	clientID := properties.CopernicusClientID()
	clientSecret := properties.CopernicusClientSecret()
	tokenURL := properties.CopernicusTokenURL()
	if clientID == "" || clientSecret == "" || tokenURL == "" {
		return nil, fmt.Errorf("missing required environment variables: COPERNICUS_CLIENT_ID, COPERNICUS_CLIENT_SECRET, or COPERNICUS_TOKEN_URL")
	}
	config := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
	}
	return &CopernicusSource{
		client:     config.Client(context.Background()),
		collection: "sentinel-2-l2a",
		bands:      bands,
		resolution: resolution,
	}, nil
}

func (s *CopernicusSource) Name() string {
	return "copernicus/" + s.collection
}

func (s *CopernicusSource) ListCandidates(ctx context.Context, bound orb.Bound, start, end time.Time) ([]Item, error) {
	requestPayload := map[string]interface{}{
		"collections": []string{s.collection},
		"bbox":        []float64{bound.Min[0], bound.Min[1], bound.Max[0], bound.Max[1]},
		"datetime":    fmt.Sprintf("%s/%s", start.Format(time.RFC3339), end.Format(time.RFC3339)),
		"limit":       searchPageLimit,
	}
	requestBody, err := json.Marshal(requestPayload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search payload: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, copernicusSearchURL, bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	response, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog search failed: %v", err)
	}
	defer response.Body.Close()
	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %v", err)
	}
	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog search returned status %d: %s", response.StatusCode, string(body))
	}

	var result struct {
		Features []struct {
			ID         string            `json:"id"`
			Geometry   *geojson.Geometry `json:"geometry"`
			Properties struct {
				Datetime   time.Time `json:"datetime"`
				CloudCover float64   `json:"eo:cloud_cover"`
			} `json:"properties"`
		} `json:"features"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %v", err)
	}

	items := make([]Item, 0, len(result.Features))
	for _, f := range result.Features {
		items = append(items, Item{
			ID:         f.ID,
			Source:     s.Name(),
			Time:       f.Properties.Datetime,
			CloudCover: f.Properties.CloudCover,
			Footprint:  f.Geometry,
		})
	}
	return items, nil
}

// Fetch renders the item's scene through the processing API as a float32
// GeoTIFF covering the item footprint at the source resolution.
func (s *CopernicusSource) Fetch(ctx context.Context, item Item) ([]byte, error) {
	bound := item.Bound()
	widthPixels := clampPixels(bound.Max[0]-bound.Min[0], s.resolution)
	heightPixels := clampPixels(bound.Max[1]-bound.Min[1], s.resolution)

	evalscript := buildEvalscript(s.bands)
	dayStart := item.Time.Truncate(24 * time.Hour)
	dayEnd := dayStart.Add(24*time.Hour - time.Second)

	requestPayload := map[string]interface{}{
		"input": map[string]interface{}{
			"bounds": map[string]interface{}{
				"bbox": []float64{bound.Min[0], bound.Min[1], bound.Max[0], bound.Max[1]},
			},
			"data": []map[string]interface{}{
				{
					"dataFilter": map[string]interface{}{
						"timeRange": map[string]string{
							"from": dayStart.Format(time.RFC3339),
							"to":   dayEnd.Format(time.RFC3339),
						},
					},
					"type": s.collection,
				},
			},
		},
		"output": map[string]interface{}{
			"width":  widthPixels,
			"height": heightPixels,
			"responses": []map[string]interface{}{
				{
					"identifier": "default",
					"format": map[string]string{
						"type": "image/tiff",
					},
				},
			},
		},
		"evalscript": evalscript,
		"mosaicking": "mostRecent",
	}
	requestBody, err := json.Marshal(requestPayload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal process payload: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, copernicusProcessURL, bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	response, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("process request failed: %v", err)
	}
	defer response.Body.Close()
	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read process response: %v", err)
	}
	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("process request for item %s returned status %d: %s", item.ID, response.StatusCode, string(body))
	}
	return body, nil
}

func buildEvalscript(bands []string) string {
	inputs, _ := json.Marshal(bands)
	samples := ""
	for i, b := range bands {
		if i > 0 {
			samples += ", "
		}
		samples += "sample." + b
	}
	return fmt.Sprintf(`
    //VERSION=3
    function setup() {
      return {
        input: %s,
        output: {
          id: "default",
          bands: %d,
          sampleType: SampleType.FLOAT32,
        },
      }
    }

    function evaluatePixel(sample) {
      return [%s];
    }
  `, inputs, len(bands), samples)
}

// clampPixels converts a lon/lat extent to pixels at the given resolution,
// clamped to the processing API's allowed range (1-2500).
func clampPixels(distance float64, resolution float64) int {
	pixels := int(distance * (111_000.0 / resolution))
	if pixels < 1 {
		return 1
	}
	if pixels > 2500 {
		return 2500
	}
	return pixels
}
