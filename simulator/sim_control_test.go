package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rook-computer/pipanel/internal/clock"
	"github.com/rook-computer/pipanel/internal/logging"
	"github.com/rook-computer/pipanel/internal/pihole"
	"github.com/rook-computer/pipanel/internal/stats"
	"github.com/rook-computer/pipanel/internal/system"
)

func newSimServer(t *testing.T) (*SimControl, *httptest.Server) {
	t.Helper()
	sim := NewSimControl("")
	mux := http.NewServeMux()
	registerSimEndpoints(mux, sim)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return sim, srv
}

func newProvider(url string, clk clock.Clock) *stats.Provider {
	return stats.NewProvider(stats.Options{URL: url + "/admin/api.php", Timeout: time.Second}, logging.NoopLogger{}, clk)
}

func TestGroupThousands(t *testing.T) {
	assert.Equal(t, "0", groupThousands(0))
	assert.Equal(t, "999", groupThousands(999))
	assert.Equal(t, "1,234", groupThousands(1234))
	assert.Equal(t, "12,345", groupThousands(12345))
	assert.Equal(t, "1,234,567", groupThousands(1234567))
	assert.Equal(t, "-1,000", groupThousands(-1000))
}

func TestServeStats_ParsedByProvider(t *testing.T) {
	_, srv := newSimServer(t)

	snap := newProvider(srv.URL, &clock.MockClock{}).Fetch(context.Background())
	assert.Equal(t, stats.Snapshot{
		QueriesToday:    stats.Known(12348),
		AdsBlockedToday: stats.Known(1234),
		UniqueClients:   stats.Known(7),
	}, snap)
}

func TestServeStats_Faults(t *testing.T) {
	sim, srv := newSimServer(t)

	sim.SetFaults(SimFaults{StatsFail: true})
	clk := &clock.MockClock{}
	snap := newProvider(srv.URL, clk).Fetch(context.Background())
	assert.False(t, snap.QueriesToday.OK)
	assert.Equal(t, "-", snap.UniqueClients.String())
	assert.Equal(t, stats.DefaultRetryPause, clk.Elapsed())

	sim.SetFaults(SimFaults{StatsMalformed: true})
	snap = newProvider(srv.URL, &clock.MockClock{}).Fetch(context.Background())
	assert.False(t, snap.AdsBlockedToday.OK)
}

func TestFaultsEndpoint_Patch(t *testing.T) {
	sim, srv := newSimServer(t)

	resp, err := http.Post(srv.URL+"/sim/faults", "application/json", strings.NewReader(`{"serviceFail":true,"statsDelayMs":50}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, SimFaults{ServiceFail: true, StatsDelayMs: 50}, sim.Faults())

	resp, err = http.Post(srv.URL+"/sim/faults", "application/json", strings.NewReader(`{"statsDelayMs":-1}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/sim/faults", "application/json", strings.NewReader(`nope`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/sim/reset", "application/json", nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, SimFaults{}, sim.Faults())
}

func TestSimControl_PiholeCommands(t *testing.T) {
	sim := NewSimControl("")
	svc := pihole.New(sim, "pihole", logging.NoopLogger{})
	ctx := context.Background()

	require.NoError(t, svc.DisableFor(ctx, 30*time.Second))
	blocking, _ := sim.Service()
	assert.False(t, blocking)

	require.NoError(t, svc.Enable(ctx))
	require.NoError(t, svc.Disable(ctx))
	blocking, commands := sim.Service()
	assert.False(t, blocking)
	assert.Equal(t, []string{"pihole disable 30s", "pihole enable", "pihole disable"}, commands)

	sim.SetFaults(SimFaults{ServiceFail: true})
	err := svc.Enable(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "simulated failure")

	sim.Reset()
	blocking, commands = sim.Service()
	assert.True(t, blocking)
	assert.Empty(t, commands)
}

func TestSimControl_HostIdentity(t *testing.T) {
	sim := NewSimControl("10.0.0.9")
	host := system.NewHostIdentity(sim, logging.NoopLogger{})
	host.Hostname = func() (string, error) { return "pi-hole-sim", nil }

	ip, name := host.Identity(context.Background())
	assert.Equal(t, "10.0.0.9", ip)
	assert.Equal(t, "pi-hole-sim", name)
}

func TestLocalURL(t *testing.T) {
	u, err := localURL("[::]:8080", "/admin/api.php")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8080/admin/api.php", u)

	_, err = localURL("nonsense", "/")
	assert.Error(t, err)
	assert.Equal(t, "nonsense/x", mustLocalURL("nonsense", "/x"))
}
