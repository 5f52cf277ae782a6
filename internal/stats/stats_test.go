package stats

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rook-computer/pipanel/internal/clock"
)

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestProvider(url string) (*Provider, *clock.MockClock) {
	clk := &clock.MockClock{}
	return NewProvider(Options{URL: url}, nil, clk), clk
}

func TestFetch_FullSnapshot(t *testing.T) {
	srv := serve(t, http.StatusOK, `{"dns_queries_today": 12345, "ads_blocked_today": "1,234", "unique_clients": 7, "status": "enabled"}`)
	p, clk := newTestProvider(srv.URL)

	snap := p.Fetch(context.Background())

	assert.Equal(t, Known(12345), snap.QueriesToday)
	assert.Equal(t, Known(1234), snap.AdsBlockedToday)
	assert.Equal(t, Known(7), snap.UniqueClients)
	assert.Empty(t, clk.Waits, "no pause on success")
}

func TestFetch_PartialSnapshot(t *testing.T) {
	srv := serve(t, http.StatusOK, `{"dns_queries_today": 10, "ads_blocked_today": "n/a"}`)
	p, clk := newTestProvider(srv.URL)

	snap := p.Fetch(context.Background())

	assert.Equal(t, Known(10), snap.QueriesToday)
	assert.False(t, snap.AdsBlockedToday.OK)
	assert.False(t, snap.UniqueClients.OK)
	assert.Equal(t, []time.Duration{DefaultRetryPause}, clk.Waits)
}

func TestFetch_FailuresYieldEmptySnapshot(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "malformed", status: http.StatusOK, body: `{"dns_queries_today": `},
		{name: "not an object", status: http.StatusOK, body: `[1,2,3]`},
		{name: "server error", status: http.StatusInternalServerError, body: `{"dns_queries_today": 1}`},
		{name: "empty", status: http.StatusOK, body: ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, tt.status, tt.body)
			p, clk := newTestProvider(srv.URL)

			snap := p.Fetch(context.Background())

			assert.Equal(t, Snapshot{}, snap)
			assert.Equal(t, []time.Duration{DefaultRetryPause}, clk.Waits)
		})
	}
}

func TestFetch_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	p, clk := newTestProvider(url)
	start := time.Now()
	snap := p.Fetch(context.Background())

	assert.Equal(t, Snapshot{}, snap)
	assert.Less(t, time.Since(start)+clk.Elapsed(), 1500*time.Millisecond)
}

func TestFetch_SlowSourceTimesOut(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	clk := &clock.MockClock{}
	p := NewProvider(Options{URL: srv.URL, Timeout: 50 * time.Millisecond}, nil, clk)
	start := time.Now()
	snap := p.Fetch(context.Background())

	assert.Equal(t, Snapshot{}, snap)
	assert.Less(t, time.Since(start), time.Second)
}

func TestFetch_SendsToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.URL.Query().Get("auth")
		_, _ = w.Write([]byte(`{"dns_queries_today":1,"ads_blocked_today":2,"unique_clients":3}`))
	}))
	t.Cleanup(srv.Close)

	p := NewProvider(Options{URL: srv.URL + "/admin/api.php", Token: "s3cret"}, nil, &clock.MockClock{})
	snap := p.Fetch(context.Background())

	require.True(t, snap.QueriesToday.OK)
	assert.Equal(t, "s3cret", gotAuth)
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		raw  string
		want int64
		ok   bool
	}{
		{raw: `42`, want: 42, ok: true},
		{raw: `"42"`, want: 42, ok: true},
		{raw: `"1,234,567"`, want: 1234567, ok: true},
		{raw: `3.0`, want: 3, ok: true},
		{raw: `3.5`},
		{raw: `"abc"`},
		{raw: `null`},
		{raw: `true`},
		{raw: ``},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := parseCount([]byte(tt.raw))
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestField_String(t *testing.T) {
	assert.Equal(t, "-", Field{}.String())
	assert.Equal(t, "1500", Known(1500).String())
}
