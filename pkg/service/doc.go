// Package service wires the bridge together.
//
// BridgeService owns the node tree, the state file, the shared worker pool,
// the endpoint registry and, when enabled, mDNS discovery:
//
//	config := service.DefaultBridgeConfig()
//	config.StatePath = "/var/lib/soxlink/tree.yaml"
//
//	svc, err := service.NewBridgeService(config, dialer)
//	svc.Start(ctx)
//	defer svc.Stop()
//
// Start restores the persisted endpoint nodes and reconnects them in the
// background; Stop closes every endpoint and waits for pending work.
package service
