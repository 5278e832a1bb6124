// Package subscription multiplexes local observers onto device
// subscriptions.
//
// Any number of gateway clients may subscribe to the value nodes mirrored
// from one remote component. The device only needs one subscription per
// component: the Multiplexer issues a single Subscribe(runtime|config) when
// the first observer attaches and a single Unsubscribe when the last value
// node of that component loses its last observer.
//
// # Lifecycle
//
// Device subscriptions do not survive connection loss. Each session gets a
// fresh Multiplexer; Resync re-establishes subscriptions for components
// whose nodes are still observed.
package subscription
