package log

import "time"

// Event is one captured protocol event. CBOR encoding uses integer keys.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID identifies one established device session (UUID).
	// Empty for events raised before a session exists.
	ConnectionID string `cbor:"2,keyasint,omitempty"`

	// Endpoint is the configured endpoint name.
	Endpoint string `cbor:"3,keyasint"`

	// Direction is In for device-originated traffic, Out for bridge-originated.
	Direction Direction `cbor:"4,keyasint"`

	// Category classifies the event.
	Category Category `cbor:"5,keyasint"`

	// RemoteAddr is the device address (host:port).
	RemoteAddr string `cbor:"6,keyasint,omitempty"`

	// Exactly one of these is set.
	StateChange  *StateChangeEvent  `cbor:"10,keyasint,omitempty"`
	Request      *RequestEvent      `cbor:"11,keyasint,omitempty"`
	Notification *NotificationEvent `cbor:"12,keyasint,omitempty"`
	Error        *ErrorEventData    `cbor:"13,keyasint,omitempty"`
}

// Direction indicates traffic flow relative to the bridge.
type Direction uint8

const (
	DirectionIn  Direction = 0
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryState is a connection state change.
	CategoryState Category = 0
	// CategoryRequest is a call issued to the device.
	CategoryRequest Category = 1
	// CategoryNotification is a change reported by the device.
	CategoryNotification Category = 2
	// CategoryError is a failure at any stage.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryState:
		return "STATE"
	case CategoryRequest:
		return "REQUEST"
	case CategoryNotification:
		return "NOTIFICATION"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseCategory maps a category name back to its value.
func ParseCategory(s string) (Category, bool) {
	for c := CategoryState; c <= CategoryError; c++ {
		if c.String() == s {
			return c, true
		}
	}
	return 0, false
}

// StateChangeEvent records a connection manager transition.
type StateChangeEvent struct {
	OldState string `cbor:"1,keyasint,omitempty"`
	NewState string `cbor:"2,keyasint"`
	Reason   string `cbor:"3,keyasint,omitempty"`
}

// Operation names a device request.
type Operation uint8

const (
	OpDial Operation = iota
	OpLoadApp
	OpWrite
	OpInvoke
	OpSubscribe
	OpUnsubscribe
	OpSubscribeTree
	OpReadVersion
	OpClose
)

// String returns the operation name.
func (o Operation) String() string {
	switch o {
	case OpDial:
		return "DIAL"
	case OpLoadApp:
		return "LOAD_APP"
	case OpWrite:
		return "WRITE"
	case OpInvoke:
		return "INVOKE"
	case OpSubscribe:
		return "SUBSCRIBE"
	case OpUnsubscribe:
		return "UNSUBSCRIBE"
	case OpSubscribeTree:
		return "SUBSCRIBE_TREE"
	case OpReadVersion:
		return "READ_VERSION"
	case OpClose:
		return "CLOSE"
	default:
		return "UNKNOWN"
	}
}

// RequestEvent records one call issued to the device and its outcome.
type RequestEvent struct {
	Operation Operation `cbor:"1,keyasint"`

	// Component is the remote component path, if the call targets one.
	Component string `cbor:"2,keyasint,omitempty"`

	// Slot is the slot name for write and invoke.
	Slot string `cbor:"3,keyasint,omitempty"`

	// Value is the string form of the sent value.
	Value string `cbor:"4,keyasint,omitempty"`

	// Mask is the subscription mask for subscribe and unsubscribe.
	Mask uint8 `cbor:"5,keyasint,omitempty"`

	// Error is set when the call failed.
	Error string `cbor:"6,keyasint,omitempty"`

	// Duration of the call. Stored as nanoseconds.
	Duration time.Duration `cbor:"7,keyasint,omitempty"`
}

// NotificationEvent records a change reported by the device.
type NotificationEvent struct {
	Component string `cbor:"1,keyasint"`
	Mask      uint8  `cbor:"2,keyasint"`

	// Dropped is set when the change could not be queued for refresh.
	Dropped bool `cbor:"3,keyasint,omitempty"`
}

// ErrorEventData records a failure that has no request of its own.
type ErrorEventData struct {
	Message string `cbor:"1,keyasint"`

	// Context describes what was being done.
	Context string `cbor:"2,keyasint,omitempty"`
}
