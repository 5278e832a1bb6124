package simulator

import (
	"context"
	"fmt"
	"sync"

	"github.com/soxlink/soxlink-go/pkg/sox"
)

// Network routes dials to simulated devices by address and port.
type Network struct {
	mu      sync.RWMutex
	devices map[string]*Device
}

// NewNetwork creates an empty network.
func NewNetwork() *Network {
	return &Network{devices: make(map[string]*Device)}
}

// Attach makes d reachable at address:port.
func (n *Network) Attach(address string, port int, d *Device) {
	n.mu.Lock()
	n.devices[sox.Credentials{Address: address, Port: port}.HostPort()] = d
	n.mu.Unlock()
}

// Device returns the device at address:port.
func (n *Network) Device(address string, port int) (*Device, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	d, ok := n.devices[sox.Credentials{Address: address, Port: port}.HostPort()]
	return d, ok
}

// Dial dials the device at creds' address.
func (n *Network) Dial(ctx context.Context, creds sox.Credentials) (sox.Client, error) {
	d, ok := n.Device(creds.Address, creds.Port)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAddress, creds.HostPort())
	}
	return d.Dial(ctx, creds)
}

var _ sox.Dialer = (*Network)(nil)
