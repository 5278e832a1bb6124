// Package log captures soxlink protocol events.
//
// Protocol capture is separate from operational logging (slog). Each
// endpoint connection reports its lifecycle, the remote requests it issues
// and the change notifications it receives as an Event, which a Logger
// records.
//
// # Basic Usage
//
//	// Console during development
//	cfg.ProtocolLogger = log.NewSlogAdapter(slog.Default())
//
//	// Binary capture
//	fl, _ := log.NewFileLogger("/var/log/soxlink/bridge.soxlog")
//	cfg.ProtocolLogger = fl
//
//	// Both
//	cfg.ProtocolLogger = log.NewMultiLogger(log.NewSlogAdapter(slog.Default()), fl)
//
// # File Format
//
// Log files are a stream of CBOR-encoded events using integer map keys,
// conventionally with the .soxlog extension. The soxlink-log tool prints and
// filters them.
package log
