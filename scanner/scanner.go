// Package scanner composes the status and auth probes into one scan per
// endpoint (spec.md 4.6), and fans a batch of endpoints out over a
// bounded worker pool (spec.md 5).
package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/go-mclib/mcprobe/authprobe"
	"github.com/go-mclib/mcprobe/protocol"
	"github.com/go-mclib/mcprobe/protocol/chat"
	"github.com/go-mclib/mcprobe/statusprobe"
)

// Endpoint is one host to probe. Port defaults to 25565 when the input
// collaborator doesn't supply one (spec.md 3).
type Endpoint struct {
	Host string
	Port uint16
}

// Player is one entry of a status response's player sample.
type Player struct {
	Name string `json:"name"`
	UUID string `json:"uuid"`
}

// ScanResult is produced once per endpoint and never mutated afterward
// (spec.md 3). Every field but IP/Port is optional; Error is mutually
// exclusive with a populated status block, except that a failed auth
// probe downgrades AuthMode to -1 without setting Error.
type ScanResult struct {
	IP            string   `json:"ip"`
	Port          uint16   `json:"port"`
	MOTD          string   `json:"motd,omitempty"`
	Version       string   `json:"version,omitempty"`
	Protocol      int      `json:"protocol,omitempty"`
	MaxPlayers    int      `json:"max_players,omitempty"`
	OnlinePlayers int      `json:"online_players,omitempty"`
	Players       []Player `json:"players,omitempty"`
	Favicon       string   `json:"favicon,omitempty"`
	AuthMode      *int     `json:"auth_mode,omitempty"`
	Error         string   `json:"error,omitempty"`
}

// Config holds the timeouts and behavior knobs for Probe and RunBatch,
// mirroring spec.md 6's "Constants" table.
type Config struct {
	ConnectTimeout         time.Duration
	AuthTimeout            time.Duration
	ScanTimeout            time.Duration
	MaxConcurrent          int64
	StatusProtocolSentinel int
	CheckAuth              bool
}

// DefaultConfig returns spec.md 6's documented defaults.
func DefaultConfig() Config {
	return Config{
		ConnectTimeout:         3 * time.Second,
		AuthTimeout:            3 * time.Second,
		ScanTimeout:            10 * time.Second,
		MaxConcurrent:          500,
		StatusProtocolSentinel: statusprobe.DefaultStatusProtocolSentinel,
		CheckAuth:              false,
	}
}

// Probe is the core entry point: it drives the status dialogue and,
// optionally, the auth-probe state machine, for one endpoint, and always
// returns exactly one ScanResult (spec.md 6's "Core entry point").
// Probe never panics and has no side effects beyond the network I/O of
// this one connection pair.
func Probe(ctx context.Context, ep Endpoint, cfg Config) ScanResult {
	result := ScanResult{IP: ep.Host, Port: ep.Port}

	scanCtx, cancel := context.WithTimeout(ctx, cfg.ScanTimeout)
	defer cancel()

	desc, err := fetchStatus(scanCtx, ep, cfg)
	if err != nil {
		if errors.Is(scanCtx.Err(), context.DeadlineExceeded) {
			result.Error = "Scan timeout"
		} else {
			result.Error = err.Error()
		}
		return result
	}
	applyDescriptor(&result, desc)

	if cfg.CheckAuth {
		mode := runAuthProbe(scanCtx, ep, result.Protocol, cfg)
		m := int(mode)
		result.AuthMode = &m
	}

	return result
}

func fetchStatus(ctx context.Context, ep Endpoint, cfg Config) (*statusprobe.Descriptor, error) {
	dial := func(dctx context.Context, network, addr string) (net.Conn, error) {
		return (&net.Dialer{}).DialContext(dctx, network, addr)
	}

	return statusprobe.Fetch(ctx, dial, ep.Host, ep.Port, cfg.ConnectTimeout, cfg.StatusProtocolSentinel)
}

func applyDescriptor(result *ScanResult, desc *statusprobe.Descriptor) {
	if desc.Version != nil {
		result.Version = desc.Version.Name
		result.Protocol = desc.Version.Protocol
	}
	if desc.Players != nil {
		result.MaxPlayers = desc.Players.Max
		result.OnlinePlayers = desc.Players.Online
		for _, p := range desc.Players.Sample {
			result.Players = append(result.Players, Player{Name: p.Name, UUID: p.ID})
		}
	}
	if len(desc.Description) > 0 {
		result.MOTD = chat.Flatten(desc.Description)
	}
	result.Favicon = desc.Favicon
}

// runAuthProbe runs the auth-probe state machine, absorbing every failure
// into AuthMode -1 without populating result.Error (spec.md 7). ctx is
// the wider per-scan context; authprobe.Probe carves its own connect and
// classification-loop deadlines out of cfg's timeouts rather than having
// one imposed here, so the two phases don't compete for the same budget.
func runAuthProbe(ctx context.Context, ep Endpoint, serverProtocol int, cfg Config) authprobe.AuthMode {
	if serverProtocol < protocol.MinLoginProtocol {
		return authprobe.Unknown
	}

	dial := func(dctx context.Context, network, addr string) (net.Conn, error) {
		return (&net.Dialer{}).DialContext(dctx, network, addr)
	}

	mode, err := authprobe.Probe(ctx, dial, ep.Host, ep.Port, serverProtocol, cfg.ConnectTimeout, cfg.AuthTimeout)
	if err != nil {
		return authprobe.Unknown
	}
	return mode
}

// RunBatch probes every endpoint concurrently, bounded by cfg.MaxConcurrent
// simultaneously open sockets (spec.md 5). Results are returned in the
// same order as endpoints; ordering across probes carries no other
// guarantee. logger receives a Debug line per completed probe.
func RunBatch(ctx context.Context, endpoints []Endpoint, cfg Config, logger *slog.Logger) ([]ScanResult, error) {
	if logger == nil {
		logger = slog.Default()
	}

	sem := semaphore.NewWeighted(cfg.MaxConcurrent)
	results := make([]ScanResult, len(endpoints))

	g, gctx := errgroup.WithContext(ctx)
	for i, ep := range endpoints {
		i, ep := i, ep
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				// Only reachable if gctx is canceled; still produce a
				// result rather than dropping the endpoint silently.
				results[i] = ScanResult{IP: ep.Host, Port: ep.Port, Error: "Scan timeout"}
				return nil
			}
			defer sem.Release(1)

			r := Probe(gctx, ep, cfg)
			results[i] = r

			attrs := []any{
				slog.String("host", ep.Host),
				slog.Int("port", int(ep.Port)),
				slog.String("error", r.Error),
			}
			if r.AuthMode != nil {
				attrs = append(attrs, slog.Int("auth_mode", *r.AuthMode))
			}
			logger.Debug("probe complete", attrs...)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, fmt.Errorf("batch scan: %w", err)
	}
	return results, nil
}
