// Package stats reads the daily counters from the Pi-hole HTTP API.
package stats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rook-computer/pipanel/internal/clock"
	"github.com/rook-computer/pipanel/internal/logging"
)

const (
	DefaultURL        = "http://localhost/admin/api.php"
	DefaultTimeout    = 400 * time.Millisecond
	DefaultRetryPause = time.Second

	keyQueries = "dns_queries_today"
	keyBlocked = "ads_blocked_today"
	keyClients = "unique_clients"

	maxBodySize = 1 << 20
)

// ErrQuery marks a failed or partial read of the statistics source. It never
// leaves Fetch; it only shows up in logs.
var ErrQuery = errors.New("stats query failed")

// Field is one counter. OK is false when the source did not provide it.
type Field struct {
	Value int64
	OK    bool
}

func Known(v int64) Field { return Field{Value: v, OK: true} }

// String renders the value, or "-" when unknown.
func (f Field) String() string {
	if !f.OK {
		return "-"
	}
	return strconv.FormatInt(f.Value, 10)
}

type Snapshot struct {
	QueriesToday    Field
	AdsBlockedToday Field
	UniqueClients   Field
}

type Options struct {
	URL        string
	Token      string
	Timeout    time.Duration
	RetryPause time.Duration
}

// Provider queries the API once per Fetch.
type Provider struct {
	opts   Options
	client *http.Client
	logger logging.Logger
	clock  clock.Clock
}

func NewProvider(opts Options, logger logging.Logger, clk clock.Clock) *Provider {
	if opts.URL == "" {
		opts.URL = DefaultURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.RetryPause <= 0 {
		opts.RetryPause = DefaultRetryPause
	}
	if logger == nil {
		logger = logging.NoopLogger{}
	}
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Provider{
		opts:   opts,
		client: &http.Client{Timeout: opts.Timeout},
		logger: logger,
		clock:  clk,
	}
}

// Fetch returns whatever counters could be read. On any failure it logs,
// waits RetryPause so a struggling source is not hammered, and returns the
// partial snapshot.
func (p *Provider) Fetch(ctx context.Context) Snapshot {
	snap, err := p.query(ctx)
	if err == nil {
		return snap
	}
	p.logger.Warnf("stats", "%v", err)
	select {
	case <-p.clock.After(p.opts.RetryPause):
	case <-ctx.Done():
	}
	return snap
}

func (p *Provider) query(ctx context.Context) (Snapshot, error) {
	endpoint, err := p.endpoint()
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: build request: %w", ErrQuery, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return Snapshot{}, fmt.Errorf("%w: unexpected status %s", ErrQuery, resp.Status)
	}

	var body map[string]json.RawMessage
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&body); err != nil {
		return Snapshot{}, fmt.Errorf("%w: decode response: %w", ErrQuery, err)
	}
	return parseSnapshot(body)
}

func (p *Provider) endpoint() (string, error) {
	u, err := url.Parse(p.opts.URL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	if p.opts.Token != "" {
		q := u.Query()
		q.Set("auth", p.opts.Token)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func parseSnapshot(body map[string]json.RawMessage) (Snapshot, error) {
	var (
		snap    Snapshot
		missing []string
	)
	for _, f := range []struct {
		key string
		dst *Field
	}{
		{keyQueries, &snap.QueriesToday},
		{keyBlocked, &snap.AdsBlockedToday},
		{keyClients, &snap.UniqueClients},
	} {
		v, ok := parseCount(body[f.key])
		if !ok {
			missing = append(missing, f.key)
			continue
		}
		*f.dst = Known(v)
	}
	if len(missing) > 0 {
		return snap, fmt.Errorf("%w: missing or invalid %s", ErrQuery, strings.Join(missing, ", "))
	}
	return snap, nil
}

// parseCount accepts a JSON number or a string such as "1,234".
func parseCount(raw json.RawMessage) (int64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		v, err := strconv.ParseInt(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), 10, 64)
		return v, err == nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	if v, err := n.Int64(); err == nil {
		return v, true
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) {
		return 0, false
	}
	return int64(f), true
}
