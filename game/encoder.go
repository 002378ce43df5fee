package game

// Encoder serializes what a session publishes to clients.
type Encoder interface {
	MarshalSnapshot(Snapshot) ([]byte, error)
	UnmarshalSnapshot([]byte) (Snapshot, error)
	MarshalEvents([]Event) ([]byte, error)
	UnmarshalEvents([]byte) ([]Event, error)
	ContentType() string
}
