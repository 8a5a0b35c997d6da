package planner

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Danilov210/Trip-Planner/internal/models"
)

func TestBuildPrompt(t *testing.T) {
	msg := models.JobMessage{
		StartLocation: "Berlin",
		StartDate:     "2025-07-01",
		EndDate:       "2025-07-05",
		Interests:     []string{"museums", "food"},
	}
	prompt := BuildPrompt(msg)
	assert.Contains(t, prompt, "Plan a trip to Berlin from 2025-07-01 to 2025-07-05")
	assert.Contains(t, prompt, "museums, food")
}

func TestBuildPromptNoInterests(t *testing.T) {
	msg := models.JobMessage{StartLocation: "Oslo", StartDate: "a", EndDate: "b"}
	assert.Contains(t, BuildPrompt(msg), "no specific interests")
}

func TestRouteReturnsRawDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Berlin", r.URL.Query().Get("origin"))
		assert.Equal(t, "Berlin", r.URL.Query().Get("destination"))
		w.Write([]byte(`{"routes":[{"summary":"A100"}]}`))
	}))
	defer server.Close()

	g := NewGoogleClient("key")
	g.directionsURL = server.URL

	route, err := g.Route(context.Background(), "Berlin", "Berlin")
	require.NoError(t, err)
	assert.JSONEq(t, `{"routes":[{"summary":"A100"}]}`, string(route))
}

func TestRouteServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	g := NewGoogleClient("key")
	g.directionsURL = server.URL

	_, err := g.Route(context.Background(), "a", "b")
	assert.Error(t, err)
}

func TestPlacePhotoBuildsPhotoURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Museum Island", r.URL.Query().Get("input"))
		w.Write([]byte(`{"candidates":[{"photos":[{"photo_reference":"ref123"}]}]}`))
	}))
	defer server.Close()

	g := NewGoogleClient("key")
	g.findPlaceURL = server.URL

	photo, err := g.PlacePhoto(context.Background(), "Museum Island")
	require.NoError(t, err)
	assert.Contains(t, photo, "photo_reference=ref123")
	assert.Contains(t, photo, "maps.googleapis.com")
}

func TestPlacePhotoNoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	g := NewGoogleClient("key")
	g.findPlaceURL = server.URL

	_, err := g.PlacePhoto(context.Background(), "Nowhere")
	assert.Error(t, err)
}
