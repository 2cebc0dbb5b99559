package client

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-paintmixer/internal/api"
	"github.com/tendant/simple-paintmixer/internal/mixer"
	"github.com/tendant/simple-paintmixer/pkg/schema"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	dev := mixer.New(mixer.Config{ProcessingTime: time.Hour})
	dev.Start()
	t.Cleanup(func() { _ = dev.Shutdown(context.Background()) })

	opts := api.DefaultOptions()
	opts.RatePerSecond = 0
	opts.SwatchSize = 4
	srv := httptest.NewServer(api.NewRouter(dev, slog.New(slog.NewTextHandler(io.Discard, nil)), opts))
	t.Cleanup(srv.Close)
	return New(srv.URL + "/")
}

func TestClientRoundTrip(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	created, err := c.Submit(ctx, schema.ColoringModel{Red: 25, Green: 25})
	require.NoError(t, err)
	assert.Equal(t, schema.ResponseSuccess, created.Type)

	status, err := c.Status(ctx, created.Code)
	require.NoError(t, err)
	assert.Equal(t, 0, status.Code)

	view, err := c.Inspect(ctx, created.Code)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"red": 25, "green": 25}, view.Dyes)

	body, err := c.Swatch(ctx, created.Code)
	require.NoError(t, err)
	data, err := io.ReadAll(body)
	body.Close()
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	canceled, err := c.Cancel(ctx, created.Code)
	require.NoError(t, err)
	assert.Equal(t, "The job with ID 0 was successfuly canceled.", canceled.Description)
}

func TestClientStatusErrors(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	_, err := c.Status(ctx, 42)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 404, se.StatusCode)
	assert.Equal(t, "404: The job with ID 42 does not exist.", se.Error())

	_, err = c.Submit(ctx, schema.ColoringModel{})
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 400, se.StatusCode)
	assert.Equal(t, []string{"Total dye amounts must sum between 1% and 100%"}, se.Messages)

	_, err = c.Cancel(ctx, 42)
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 422, se.StatusCode)
}
