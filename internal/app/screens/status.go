package screens

import (
	"fmt"

	"github.com/rook-computer/pipanel/internal/render"
	"github.com/rook-computer/pipanel/internal/render/layout"
	"github.com/rook-computer/pipanel/internal/stats"
)

// StatusScreen is the four-line stats page.
type StatusScreen struct {
	IP       string
	Host     string
	Snapshot stats.Snapshot
}

func (s StatusScreen) Lines() []string {
	return []string{
		fmt.Sprintf("IP: %s (%s)", s.IP, s.Host),
		fmt.Sprintf("Ads Blocked: %s", s.Snapshot.AdsBlockedToday),
		fmt.Sprintf("Clients:     %s", s.Snapshot.UniqueClients),
		fmt.Sprintf("DNS Queries: %s", s.Snapshot.QueriesToday),
	}
}

func (s StatusScreen) Draw(d render.Drawer) {
	lines := s.Lines()
	rows := layout.Rows(canvasRect(d), render.TopPadding, render.LineHeight, len(lines))
	for i, line := range lines {
		d.DrawText(0, rows[i], line)
	}
}
