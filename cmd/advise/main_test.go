package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/crop-advisory-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCLI(forecastURL string) cli {
	return cli{
		Crop:            " Potato ",
		Disease:         "Early blight",
		Location:        "18.52,73.85",
		APIKey:          "k",
		GeocodeURL:      forecastURL,
		ForecastURL:     forecastURL,
		GeocodeTimeout:  2 * time.Second,
		ForecastTimeout: 2 * time.Second,
		LogLevel:        "error",
	}
}

func TestRun_LiteralCoordinates(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "18.52", r.URL.Query().Get("lat"))
		_, _ = w.Write([]byte(`{"list":[{"rain":{"3h":12},"pop":0.9,"main":{"humidity":95}}]}`))
	}))
	defer srv.Close()

	require.NoError(t, run(context.Background(), testCLI(srv.URL)))
	assert.Equal(t, 1, calls, "only the forecast endpoint is called")
}

func TestRun_RejectsUnknownCrop(t *testing.T) {
	c := testCLI("http://unused")
	c.Crop = "wheat"
	err := run(context.Background(), c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid arguments")
}

func TestRun_RequireLocation(t *testing.T) {
	c := testCLI("http://unused")
	c.Location = ""
	c.RequireLocation = true
	err := run(context.Background(), c)
	require.ErrorIs(t, err, domain.ErrLocationRequired)
}
