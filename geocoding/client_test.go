package geocoding

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

func newTestClient(t *testing.T, handler fasthttp.RequestHandler) *Client {
	t.Helper()

	ln := fasthttputil.NewInmemoryListener()
	server := &fasthttp.Server{Handler: handler}
	go func() { _ = server.Serve(ln) }()
	t.Cleanup(func() { _ = ln.Close() })

	return NewClient("http://geocoder.test", "socialmap-test/1.0 (test@example.com)",
		WithDial(func(addr string) (net.Conn, error) { return ln.Dial() }),
	)
}

func TestClient_Reverse(t *testing.T) {
	var gotAgent, gotPath, gotLat string
	client := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		gotAgent = string(ctx.UserAgent())
		gotPath = string(ctx.Path())
		gotLat = string(ctx.QueryArgs().Peek("lat"))
		ctx.SetContentType("application/json")
		ctx.SetBodyString(`{"display_name":"Springfield","address":{"city":"Springfield","country":"Testland"}}`)
	})

	result, err := client.Reverse(context.Background(), 39.5, -89.25)
	require.NoError(t, err)
	require.NotNil(t, result.Address)

	assert.Equal(t, "Springfield", result.Address.City)
	assert.Equal(t, "Testland", result.Address.Country)
	assert.Equal(t, "/reverse", gotPath)
	assert.Equal(t, "39.5", gotLat)
	assert.Contains(t, gotAgent, "socialmap-test")
}

func TestClient_ReverseWithoutAddress(t *testing.T) {
	client := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		ctx.SetBodyString(`{"error":"Unable to geocode"}`)
	})

	result, err := client.Reverse(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Nil(t, result.Address)
}

func TestClient_Search(t *testing.T) {
	var gotQuery string
	client := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		gotQuery = string(ctx.QueryArgs().Peek("q"))
		ctx.SetBodyString(`[{"display_name":"Springfield, Testland","lat":"39.7817","lon":"-89.6501"}]`)
	})

	results, err := client.Search(context.Background(), "Springfield, Testland")
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, "Springfield, Testland", gotQuery)
	assert.InDelta(t, 39.7817, results[0].Latitude, 1e-9)
	assert.InDelta(t, -89.6501, results[0].Longitude, 1e-9)
}

func TestClient_Errors(t *testing.T) {
	t.Run("non-200 status", func(t *testing.T) {
		client := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
			ctx.SetStatusCode(fasthttp.StatusTooManyRequests)
		})
		_, err := client.Search(context.Background(), "x")
		assert.Error(t, err)
	})

	t.Run("undecodable body", func(t *testing.T) {
		client := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
			ctx.SetBodyString(`not json`)
		})
		_, err := client.Reverse(context.Background(), 1, 1)
		assert.Error(t, err)
	})

	t.Run("bad coordinate encoding", func(t *testing.T) {
		client := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
			ctx.SetBodyString(`[{"lat":"north","lon":"1"}]`)
		})
		_, err := client.Search(context.Background(), "x")
		assert.Error(t, err)
	})
}
