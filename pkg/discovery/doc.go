// Package discovery finds SOX devices announced over mDNS/DNS-SD.
//
// Devices (or gateways in front of them) advertise the _sox._udp service.
// TXT records are optional and free-form; two keys are recognized:
//
//	platform  device platform ID
//	id        instance identifier
//
// The discover action on the root node runs one browse for the configured
// timeout and returns a table of name, host and port rows. The result is
// informational: endpoints are still added through addServer.
package discovery
