package core

import "sync"

type EventCode uint16

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT EventCode = iota + 1
	// Keyboard key pressed. Data: *KeyEvent
	EVENT_CODE_KEY_PRESSED
	// Keyboard key released. Data: *KeyEvent
	EVENT_CODE_KEY_RELEASED
	// Mouse button pressed. Data: *MouseEvent
	EVENT_CODE_BUTTON_PRESSED
	// Mouse button released. Data: *MouseEvent
	EVENT_CODE_BUTTON_RELEASED
	// Mouse moved. Data: *MouseEvent
	EVENT_CODE_MOUSE_MOVED
	// Mouse wheel. Data: *MouseEvent
	EVENT_CODE_MOUSE_WHEEL
	// Resized/resolution changed from the OS. Data: *SystemEvent
	EVENT_CODE_RESIZED
	// A definition tree was edited. Data: *DefinitionEvent
	EVENT_CODE_DEFINITION_CHANGED
	// A script wrote to its console. Data: string
	EVENT_CODE_SCRIPT_PRINT

	MAX_EVENT_CODE
)

type EventContext struct {
	Type EventCode
	Data interface{}
}

type KeyEvent struct {
	KeyCode KeyCode
}

type MouseEvent struct {
	Button Button
	PosX   uint16
	PosY   uint16
	Scroll int8
}

type SystemEvent struct {
	WindowWidth  uint32
	WindowHeight uint32
}

type DefinitionEvent struct {
	UUID string
}

// Should return true if handled.
type FnOnEvent func(sender interface{}, ctx EventContext) bool

type registeredEvent struct {
	listener interface{}
	callback FnOnEvent
}

// EventBus dispatches engine events to registered listeners. Each engine
// owns its own bus and hands it to the parts that need it.
type EventBus struct {
	mu         sync.RWMutex
	registered map[EventCode][]*registeredEvent
}

func NewEventBus() *EventBus {
	return &EventBus{
		registered: make(map[EventCode][]*registeredEvent),
	}
}

/**
 * Register to listen for when events are sent with the provided code. Events with duplicate
 * listeners will not be registered again and will cause this to return false.
 */
func (b *EventBus) Register(code EventCode, listener interface{}, onEvent FnOnEvent) bool {
	if onEvent == nil {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, e := range b.registered[code] {
		if e.listener == listener {
			LogWarn("listener already registered for event code %d", code)
			return false
		}
	}
	b.registered[code] = append(b.registered[code], &registeredEvent{
		listener: listener,
		callback: onEvent,
	})
	return true
}

// Unregister removes the listener for the code. Returns false if nothing matched.
func (b *EventBus) Unregister(code EventCode, listener interface{}) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	events := b.registered[code]
	for i, e := range events {
		if e.listener == listener {
			b.registered[code] = append(events[:i], events[i+1:]...)
			return true
		}
	}
	return false
}

// Fire sends ctx to the listeners of ctx.Type in registration order and stops
// at the first one that reports the event as handled.
func (b *EventBus) Fire(sender interface{}, ctx EventContext) bool {
	b.mu.RLock()
	events := make([]*registeredEvent, len(b.registered[ctx.Type]))
	copy(events, b.registered[ctx.Type])
	b.mu.RUnlock()

	for _, e := range events {
		if e.callback(sender, ctx) {
			// Message has been handled, do not send to other listeners.
			return true
		}
	}
	return false
}

// Reset drops every registration.
func (b *EventBus) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.registered = make(map[EventCode][]*registeredEvent)
}
