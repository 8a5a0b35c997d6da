package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const (
	directionsURL = "https://maps.googleapis.com/maps/api/directions/json"
	findPlaceURL  = "https://maps.googleapis.com/maps/api/place/findplacefromtext/json"
	placePhotoURL = "https://maps.googleapis.com/maps/api/place/photo"
)

// GoogleClient fetches driving routes and place photos from the Google
// Maps APIs. One client per process, one *http.Client underneath.
type GoogleClient struct {
	apiKey     string
	httpClient *http.Client

	directionsURL string
	findPlaceURL  string
	placePhotoURL string
}

func NewGoogleClient(apiKey string) *GoogleClient {
	return &GoogleClient{
		apiKey:        apiKey,
		httpClient:    http.DefaultClient,
		directionsURL: directionsURL,
		findPlaceURL:  findPlaceURL,
		placePhotoURL: placePhotoURL,
	}
}

// Route fetches a driving route between origin and destination and
// returns the raw directions document.
func (g *GoogleClient) Route(ctx context.Context, origin, destination string) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("origin", origin)
	params.Set("destination", destination)
	params.Set("key", g.apiKey)

	body, err := g.get(ctx, g.directionsURL+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("directions: %w", err)
	}
	return json.RawMessage(body), nil
}

// PlacePhoto resolves a place name to a Google-hosted photo URL. An
// empty result with nil error never happens: a place without photos is
// an error the caller may ignore.
func (g *GoogleClient) PlacePhoto(ctx context.Context, placeName string) (string, error) {
	params := url.Values{}
	params.Set("input", placeName)
	params.Set("inputtype", "textquery")
	params.Set("fields", "photos")
	params.Set("key", g.apiKey)

	body, err := g.get(ctx, g.findPlaceURL+"?"+params.Encode())
	if err != nil {
		return "", fmt.Errorf("find place: %w", err)
	}

	var result struct {
		Candidates []struct {
			Photos []struct {
				PhotoReference string `json:"photo_reference"`
			} `json:"photos"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decode find place response: %w", err)
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Photos) == 0 {
		return "", errors.New("no photo for place " + placeName)
	}

	ref := result.Candidates[0].Photos[0].PhotoReference
	params = url.Values{}
	params.Set("maxwidth", "800")
	params.Set("photo_reference", ref)
	params.Set("key", g.apiKey)
	return g.placePhotoURL + "?" + params.Encode(), nil
}

func (g *GoogleClient) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
