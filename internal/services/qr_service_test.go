package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRenderer struct {
	available bool
	err       error
	rendered  []string
}

func (f *fakeRenderer) Available() bool { return f.available }

func (f *fakeRenderer) Render(_ context.Context, data string, _ int) ([]byte, error) {
	f.rendered = append(f.rendered, data)
	if f.err != nil {
		return nil, f.err
	}
	return []byte("png:" + data), nil
}

func TestTableURL(t *testing.T) {
	env := newTestEnv(t)
	svc := NewQRService("https://order.example.com", nil, env.catalogService)

	assert.Equal(t, "https://order.example.com/test-club/table/VIP1/", svc.TableURL(env.catalog.Venue, env.catalog.VIPTable))
}

func TestVenueQRCodes(t *testing.T) {
	env := newTestEnv(t)
	renderer := &fakeRenderer{available: true}
	svc := NewQRService("http://localhost:8080", renderer, env.catalogService)

	codes, available, err := svc.VenueQRCodes(context.Background(), adminScope, env.catalog.Venue.ID)
	require.NoError(t, err)
	assert.True(t, available)
	require.Len(t, codes, 2)
	assert.Equal(t, "http://localhost:8080/test-club/table/1/", codes[0].URL)
	assert.Equal(t, []byte("png:http://localhost:8080/test-club/table/1/"), codes[0].PNG)
	assert.Len(t, renderer.rendered, 2)
}

func TestVenueQRCodesWithoutRenderer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, renderer := range []QRRenderer{nil, &fakeRenderer{}, &fakeRenderer{available: true, err: errors.New("down")}} {
		svc := NewQRService("http://localhost:8080", renderer, env.catalogService)
		codes, available, err := svc.VenueQRCodes(ctx, adminScope, env.catalog.Venue.ID)
		require.NoError(t, err)
		assert.False(t, available)
		require.Len(t, codes, 2)
		assert.NotEmpty(t, codes[1].URL)
		assert.Nil(t, codes[0].PNG)
		assert.Nil(t, svc.TableQRCode(ctx, env.catalog.Venue, env.catalog.Table))
	}

	_, _, err := NewQRService("", nil, env.catalogService).VenueQRCodes(ctx, env.venueScope(env.catalog.Venue.ID+1), env.catalog.Venue.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
