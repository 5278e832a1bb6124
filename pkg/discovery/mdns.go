package discovery

import (
	"context"
	"net"

	"github.com/enbility/zeroconf/v3"
)

// Source produces raw DNS-SD entries. Browse blocks until ctx is done.
type Source interface {
	Browse(ctx context.Context, added, removed chan<- *ServiceEntry) error
}

// MDNSSource implements Source using zeroconf.
type MDNSSource struct {
	// Interface restricts browsing to one network interface. Empty means
	// all interfaces.
	Interface string
}

// Browse runs a zeroconf browse for ServiceType.
func (s *MDNSSource) Browse(ctx context.Context, added, removed chan<- *ServiceEntry) error {
	entries := make(chan *zeroconf.ServiceEntry)
	gone := make(chan *zeroconf.ServiceEntry)

	go func() {
		for {
			select {
			case e, ok := <-entries:
				if !ok {
					return
				}
				forward(ctx, added, e)
			case e, ok := <-gone:
				if !ok {
					gone = nil
					continue
				}
				forward(ctx, removed, e)
			case <-ctx.Done():
				return
			}
		}
	}()

	return zeroconf.Browse(ctx, ServiceType, Domain, entries, gone, s.options()...)
}

func forward(ctx context.Context, out chan<- *ServiceEntry, e *zeroconf.ServiceEntry) {
	select {
	case out <- fromZeroconf(e):
	case <-ctx.Done():
	}
}

func (s *MDNSSource) options() []zeroconf.ClientOption {
	var opts []zeroconf.ClientOption
	if s.Interface != "" {
		iface, err := net.InterfaceByName(s.Interface)
		if err == nil {
			opts = append(opts, zeroconf.SelectIfaces([]net.Interface{*iface}))
		}
	}
	return opts
}

func fromZeroconf(entry *zeroconf.ServiceEntry) *ServiceEntry {
	addrs := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	for _, ip := range entry.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}
	return &ServiceEntry{
		Instance: entry.Instance,
		Host:     entry.HostName,
		Port:     uint16(entry.Port),
		Text:     entry.Text,
		Addrs:    addrs,
	}
}

var _ Source = (*MDNSSource)(nil)
