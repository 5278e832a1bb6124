package log

import (
	"sync"
	"time"
)

// Recorder stamps events for one endpoint before passing them to a Logger.
type Recorder struct {
	logger   Logger
	endpoint string
	now      func() time.Time

	mu         sync.RWMutex
	connID     string
	remoteAddr string
}

// NewRecorder creates a Recorder for the named endpoint. A nil logger
// discards everything.
func NewRecorder(logger Logger, endpoint string) *Recorder {
	return &Recorder{
		logger:   OrNoop(logger),
		endpoint: endpoint,
		now:      time.Now,
	}
}

// SetSession sets the connection ID and remote address stamped on
// subsequent events. Pass empty strings when the session ends.
func (r *Recorder) SetSession(connID, remoteAddr string) {
	r.mu.Lock()
	r.connID = connID
	r.remoteAddr = remoteAddr
	r.mu.Unlock()
}

// ConnectionID returns the current session's connection ID.
func (r *Recorder) ConnectionID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.connID
}

func (r *Recorder) base(dir Direction, cat Category) Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Event{
		Timestamp:    r.now(),
		ConnectionID: r.connID,
		Endpoint:     r.endpoint,
		Direction:    dir,
		Category:     cat,
		RemoteAddr:   r.remoteAddr,
	}
}

// State records a state transition.
func (r *Recorder) State(oldState, newState, reason string) {
	e := r.base(DirectionOut, CategoryState)
	e.StateChange = &StateChangeEvent{OldState: oldState, NewState: newState, Reason: reason}
	r.logger.Log(e)
}

// Request records a finished device call.
func (r *Recorder) Request(req RequestEvent, err error) {
	if err != nil {
		req.Error = err.Error()
	}
	e := r.base(DirectionOut, CategoryRequest)
	e.Request = &req
	r.logger.Log(e)
}

// Notification records a change reported by the device.
func (r *Recorder) Notification(component string, mask uint8, dropped bool) {
	e := r.base(DirectionIn, CategoryNotification)
	e.Notification = &NotificationEvent{Component: component, Mask: mask, Dropped: dropped}
	r.logger.Log(e)
}

// Error records a failure.
func (r *Recorder) Error(err error, context string) {
	e := r.base(DirectionOut, CategoryError)
	e.Error = &ErrorEventData{Message: err.Error(), Context: context}
	r.logger.Log(e)
}
