package discovery

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"
)

// BrowserConfig configures browser behavior.
type BrowserConfig struct {
	// Timeout bounds Find. Default: BrowseTimeout.
	Timeout time.Duration

	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string

	// Source produces entries. If nil, an MDNSSource on Interface is used.
	Source Source

	// Logger for operational messages (optional).
	Logger *slog.Logger
}

// Browser aggregates entries into services.
type Browser struct {
	source  Source
	timeout time.Duration
	logger  *slog.Logger
}

// NewBrowser creates a browser.
func NewBrowser(cfg BrowserConfig) *Browser {
	if cfg.Timeout <= 0 {
		cfg.Timeout = BrowseTimeout
	}
	if cfg.Source == nil {
		cfg.Source = &MDNSSource{Interface: cfg.Interface}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &Browser{source: cfg.Source, timeout: cfg.Timeout, logger: cfg.Logger}
}

// Timeout returns the Find timeout.
func (b *Browser) Timeout() time.Duration { return b.timeout }

// Browse emits a snapshot of a service each time it is first seen or its
// address set grows, until ctx is done. Services are aggregated by instance
// name: addresses from multiple interfaces are combined into a single
// entry, and removals drop addresses. The channel is closed when ctx is
// done.
func (b *Browser) Browse(ctx context.Context) <-chan *Service {
	out := make(chan *Service)
	added := make(chan *ServiceEntry)
	removed := make(chan *ServiceEntry)

	go func() {
		if err := b.source.Browse(ctx, added, removed); err != nil && !errors.Is(err, context.Canceled) {
			b.logger.Warn("mdns browse failed", "error", err)
		}
	}()

	go func() {
		defer close(out)
		services := make(map[string]*Service)
		for {
			select {
			case entry := <-added:
				svc, err := entry.ToService()
				if err != nil {
					continue
				}
				if existing, found := services[svc.Instance]; found {
					before := len(existing.Addresses)
					existing.Addresses = mergeAddresses(existing.Addresses, svc.Addresses)
					if len(existing.Addresses) == before {
						continue
					}
					svc = existing
				} else {
					services[svc.Instance] = svc
				}
				emit := *svc
				emit.Addresses = append([]string(nil), svc.Addresses...)
				select {
				case out <- &emit:
				case <-ctx.Done():
					return
				}
			case entry := <-removed:
				if existing, found := services[entry.Instance]; found {
					existing.Addresses = removeAddresses(existing.Addresses, entry.Addrs)
					if len(existing.Addresses) == 0 {
						delete(services, entry.Instance)
					}
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Find browses for the configured timeout and returns every service seen,
// sorted by instance name.
func (b *Browser) Find(ctx context.Context) ([]*Service, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	byName := make(map[string]*Service)
	for svc := range b.Browse(ctx) {
		byName[svc.Instance] = svc
	}
	if err := ctx.Err(); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}

	out := make([]*Service, 0, len(byName))
	for _, svc := range byName {
		out = append(out, svc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Instance < out[j].Instance })
	return out, nil
}

// mergeAddresses adds new addresses to existing list, avoiding duplicates.
func mergeAddresses(existing, new []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, addr := range existing {
		seen[addr] = true
	}
	for _, addr := range new {
		if !seen[addr] {
			existing = append(existing, addr)
			seen[addr] = true
		}
	}
	return existing
}

// removeAddresses filters gone out of addresses.
func removeAddresses(addresses, gone []string) []string {
	toRemove := make(map[string]bool, len(gone))
	for _, a := range gone {
		toRemove[a] = true
	}
	result := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		if !toRemove[addr] {
			result = append(result, addr)
		}
	}
	return result
}
