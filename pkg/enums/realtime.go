package enums

import "fmt"

// RealtimeEventType labels the frames emitted on the order change stream.
type RealtimeEventType string

const (
	RealtimeEventConnected       RealtimeEventType = "connected"
	RealtimeEventHeartbeat       RealtimeEventType = "heartbeat"
	RealtimeEventOrderUpdate     RealtimeEventType = "order_update"
	RealtimeEventOrderItemUpdate RealtimeEventType = "order_item_update"
	RealtimeEventOrderDelete     RealtimeEventType = "order_delete"
)

// String implements fmt.Stringer.
func (t RealtimeEventType) String() string {
	return string(t)
}

// ChangeKind mirrors the row-level operation behind a change notification.
type ChangeKind string

const (
	ChangeKindInsert ChangeKind = "INSERT"
	ChangeKindUpdate ChangeKind = "UPDATE"
	ChangeKindDelete ChangeKind = "DELETE"
)

var validChangeKinds = []ChangeKind{ChangeKindInsert, ChangeKindUpdate, ChangeKindDelete}

// IsValid reports whether the value is a known ChangeKind.
func (k ChangeKind) IsValid() bool {
	for _, candidate := range validChangeKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseChangeKind converts raw input into a ChangeKind.
func ParseChangeKind(value string) (ChangeKind, error) {
	for _, candidate := range validChangeKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid change kind %q", value)
}
