package sox

import (
	"context"
	"net"
	"strconv"
)

// DefaultPort is the standard SOX UDP port.
const DefaultPort = 1876

// Credentials identify a device and authenticate a session.
type Credentials struct {
	Address  string
	Port     int
	Username string
	Password string
}

// HostPort returns Address:Port.
func (c Credentials) HostPort() string {
	return net.JoinHostPort(c.Address, strconv.Itoa(c.Port))
}

// KitVersion describes one installed kit.
type KitVersion struct {
	Name     string
	Checksum int32
	Version  string
}

// VersionInfo is the device's platform and kit inventory.
type VersionInfo struct {
	PlatformID string
	ScodeFlags int
	Kits       []KitVersion
}

// Client is one authenticated session with a device.
//
// Change notifications are delivered asynchronously through the listener
// installed on each Component. Done is closed when the session is lost.
type Client interface {
	// LoadApp fetches the application component tree.
	LoadApp(ctx context.Context) (*Component, error)

	// Write sets a property slot.
	Write(ctx context.Context, c *Component, slot string, v Value) error

	// Invoke calls an action slot. v is nil for void actions.
	Invoke(ctx context.Context, c *Component, slot string, v Value) error

	Subscribe(ctx context.Context, c *Component, mask SubscriptionMask) error
	Unsubscribe(ctx context.Context, c *Component, mask SubscriptionMask) error

	// SubscribeToAllTreeEvents asks for structural change notifications
	// across the whole application.
	SubscribeToAllTreeEvents(ctx context.Context) error

	ReadVersion(ctx context.Context) (*VersionInfo, error)

	Done() <-chan struct{}
	Close() error
}

// Dialer opens client sessions.
type Dialer interface {
	Dial(ctx context.Context, creds Credentials) (Client, error)
}

// DialerFunc adapts a function to Dialer.
type DialerFunc func(ctx context.Context, creds Credentials) (Client, error)

// Dial calls f.
func (f DialerFunc) Dial(ctx context.Context, creds Credentials) (Client, error) {
	return f(ctx, creds)
}
