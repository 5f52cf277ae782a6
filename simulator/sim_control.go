package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rook-computer/pipanel/internal/web"
)

// SimFaults are switched on through /sim/faults to exercise the panel's
// failure paths without a real Pi-hole.
type SimFaults struct {
	StatsFail      bool `json:"statsFail"`
	StatsMalformed bool `json:"statsMalformed"`
	StatsDelayMs   int  `json:"statsDelayMs"`
	ServiceFail    bool `json:"serviceFail"`
}

// SimCounters are the values the fake API reports.
type SimCounters struct {
	QueriesToday    int64 `json:"queriesToday"`
	AdsBlockedToday int64 `json:"adsBlockedToday"`
	UniqueClients   int64 `json:"uniqueClients"`
}

var defaultCounters = SimCounters{QueriesToday: 12345, AdsBlockedToday: 1234, UniqueClients: 7}

// SimControl plays the Pi-hole side: the stats API, the pihole command and
// `hostname -I`. It implements system.Runner.
type SimControl struct {
	IP string

	faults struct {
		mu sync.RWMutex
		v  SimFaults
	}

	mu       sync.Mutex
	counters SimCounters
	blocking bool
	commands []string
}

func NewSimControl(ip string) *SimControl {
	if ip == "" {
		ip = "192.168.1.50"
	}
	return &SimControl{IP: ip, counters: defaultCounters, blocking: true}
}

func (c *SimControl) Reset() {
	c.SetFaults(SimFaults{})
	c.mu.Lock()
	c.counters = defaultCounters
	c.blocking = true
	c.commands = nil
	c.mu.Unlock()
}

func (c *SimControl) Faults() SimFaults {
	c.faults.mu.RLock()
	defer c.faults.mu.RUnlock()
	return c.faults.v
}

func (c *SimControl) SetFaults(v SimFaults) {
	c.faults.mu.Lock()
	c.faults.v = v
	c.faults.mu.Unlock()
}

// Service reports whether blocking is on and the pihole commands run so far.
func (c *SimControl) Service() (bool, []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.blocking, append([]string(nil), c.commands...)
}

func (c *SimControl) Run(ctx context.Context, cmd string, args ...string) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}
	switch cmd {
	case "hostname":
		return c.IP + " fd00::50\n", "", nil
	case "pihole":
		return c.runPihole(args)
	default:
		return "", cmd + ": command not found\n", fmt.Errorf("exec %s: not found", cmd)
	}
}

func (c *SimControl) runPihole(args []string) (string, string, error) {
	line := strings.TrimSpace("pihole " + strings.Join(args, " "))
	if c.Faults().ServiceFail {
		return "", "  [✗] simulated failure\n", fmt.Errorf("%s: exit status 1", line)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.commands = append(c.commands, line)
	switch {
	case len(args) >= 1 && args[0] == "disable":
		c.blocking = false
	case len(args) >= 1 && args[0] == "enable":
		c.blocking = true
	default:
		return "", "unknown option\n", fmt.Errorf("%s: exit status 1", line)
	}
	return "", "", nil
}

// ServeStats answers like /admin/api.php: numbers over 999 come back as
// strings with thousands separators, the way Pi-hole formats them.
func (c *SimControl) ServeStats(w http.ResponseWriter, r *http.Request) {
	faults := c.Faults()
	if faults.StatsDelayMs > 0 {
		timer := time.NewTimer(time.Duration(faults.StatsDelayMs) * time.Millisecond)
		defer timer.Stop()
		select {
		case <-r.Context().Done():
			return
		case <-timer.C:
		}
	}
	if faults.StatsFail {
		web.WriteError(w, http.StatusInternalServerError, "stats_failed", "simulated stats failure")
		return
	}
	if faults.StatsMalformed {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html>not json</html>"))
		return
	}

	c.mu.Lock()
	c.counters.QueriesToday += 3
	snap := c.counters
	status := "enabled"
	if !c.blocking {
		status = "disabled"
	}
	c.mu.Unlock()

	web.WriteJSON(w, http.StatusOK, map[string]any{
		"dns_queries_today": groupThousands(snap.QueriesToday),
		"ads_blocked_today": groupThousands(snap.AdsBlockedToday),
		"unique_clients":    snap.UniqueClients,
		"status":            status,
	})
}

func groupThousands(n int64) string {
	s := fmt.Sprint(n)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	var sb strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(r)
	}
	if neg {
		return "-" + sb.String()
	}
	return sb.String()
}

func registerSimEndpoints(mux *http.ServeMux, control *SimControl) {
	mux.HandleFunc("/admin/api.php", control.ServeStats)

	mux.HandleFunc("/sim/reset", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			web.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
			return
		}
		control.Reset()
		web.WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	mux.HandleFunc("/sim/service", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			web.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
			return
		}
		blocking, commands := control.Service()
		web.WriteJSON(w, http.StatusOK, map[string]any{"blocking": blocking, "commands": commands})
	})

	mux.HandleFunc("/sim/faults", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			web.WriteJSON(w, http.StatusOK, control.Faults())
			return
		case http.MethodPost:
			var patch struct {
				StatsFail      *bool `json:"statsFail"`
				StatsMalformed *bool `json:"statsMalformed"`
				StatsDelayMs   *int  `json:"statsDelayMs"`
				ServiceFail    *bool `json:"serviceFail"`
			}
			if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
				web.WriteError(w, http.StatusBadRequest, "invalid_json", "invalid json")
				return
			}
			current := control.Faults()
			if patch.StatsFail != nil {
				current.StatsFail = *patch.StatsFail
			}
			if patch.StatsMalformed != nil {
				current.StatsMalformed = *patch.StatsMalformed
			}
			if patch.StatsDelayMs != nil {
				if *patch.StatsDelayMs < 0 {
					web.WriteError(w, http.StatusBadRequest, "invalid_delay", "statsDelayMs must be >= 0")
					return
				}
				current.StatsDelayMs = *patch.StatsDelayMs
			}
			if patch.ServiceFail != nil {
				current.ServiceFail = *patch.ServiceFail
			}
			control.SetFaults(current)
			web.WriteJSON(w, http.StatusOK, current)
			return
		default:
			web.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
			return
		}
	})
}
