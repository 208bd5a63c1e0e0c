package emissions

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/estimate", r.URL.Path)
		assert.Equal(t, "PLASTIC", r.URL.Query().Get("category"))
		assert.Equal(t, "500", r.URL.Query().Get("grams"))
		fmt.Fprint(w, `{"co2e_kg": 1.25}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	co2, err := client.Estimate(context.Background(), 500, "PLASTIC")
	require.NoError(t, err)
	assert.InDelta(t, 1.25, co2, 1e-9)
}

func TestEstimateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.Estimate(context.Background(), 500, "PLASTIC")
	assert.Error(t, err)
}

func TestEstimateNegativeValueRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"co2e_kg": -3}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.Estimate(context.Background(), 500, "PLASTIC")
	assert.Error(t, err)
}

func TestEstimateTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		fmt.Fprint(w, `{"co2e_kg": 1}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 50*time.Millisecond)
	_, err := client.Estimate(context.Background(), 500, "PLASTIC")
	assert.Error(t, err)
}

func TestEstimateMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `не json`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.Estimate(context.Background(), 500, "PLASTIC")
	assert.Error(t, err)
}
