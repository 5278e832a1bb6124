package discovery

import (
	"errors"
	"net"
	"strconv"
	"time"

	"github.com/soxlink/soxlink-go/pkg/sox"
)

const (
	// ServiceType is the DNS-SD service type of SOX devices.
	ServiceType = "_sox._udp"

	// Domain is the mDNS domain.
	Domain = "local"

	// BrowseTimeout is the default timeout for mDNS browsing.
	BrowseTimeout = 5 * time.Second
)

// TXT record keys.
const (
	TXTKeyPlatform = "platform"
	TXTKeyID       = "id"
)

var ErrInvalidEntry = errors.New("invalid service entry")

// ServiceEntry is a resolved DNS-SD entry, independent of the mDNS library.
type ServiceEntry struct {
	Instance string
	Host     string
	Port     uint16
	Text     []string
	Addrs    []string
}

// Service is a discovered SOX device.
type Service struct {
	Instance  string
	Host      string
	Port      int
	Addresses []string
	TXT       TXTRecordMap
}

// ToService converts e. A zero port means the default SOX port.
func (e *ServiceEntry) ToService() (*Service, error) {
	if e.Instance == "" {
		return nil, ErrInvalidEntry
	}
	port := int(e.Port)
	if port == 0 {
		port = sox.DefaultPort
	}
	return &Service{
		Instance:  e.Instance,
		Host:      e.Host,
		Port:      port,
		Addresses: append([]string(nil), e.Addrs...),
		TXT:       StringsToTXTRecords(e.Text),
	}, nil
}

// Platform returns the advertised platform ID, if any.
func (s *Service) Platform() string {
	return s.TXT[TXTKeyPlatform]
}

// Address returns the address to dial: the first IPv4 address, else the
// first address, else the host name.
func (s *Service) Address() string {
	for _, a := range s.Addresses {
		if ip := net.ParseIP(a); ip != nil && ip.To4() != nil {
			return a
		}
	}
	if len(s.Addresses) > 0 {
		return s.Addresses[0]
	}
	return s.Host
}

// String renders host:port of the dial address.
func (s *Service) String() string {
	return net.JoinHostPort(s.Address(), strconv.Itoa(s.Port))
}
