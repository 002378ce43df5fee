package pb

import (
	"fmt"

	"github.com/arcade-cabinet/beppo-laughs/game"
	"github.com/goccy/go-json"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// ContentType is the media type of protobuf payloads.
const ContentType = "application/x-protobuf"

var _ game.Encoder = &Protobuf{}

// Protobuf encodes session payloads as google.protobuf.Struct messages, so
// clients can decode them with the well-known types and no schema of ours.
type Protobuf struct{}

// ContentType implements game.Encoder.
func (p *Protobuf) ContentType() string {
	return ContentType
}

// MarshalSnapshot implements game.Encoder.
func (p *Protobuf) MarshalSnapshot(s game.Snapshot) ([]byte, error) {
	msg, err := toStruct(s)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(msg)
}

// UnmarshalSnapshot implements game.Encoder.
func (p *Protobuf) UnmarshalSnapshot(b []byte) (game.Snapshot, error) {
	var s game.Snapshot
	msg := &structpb.Struct{}
	if err := proto.Unmarshal(b, msg); err != nil {
		return s, err
	}
	err := fromValue(structpb.NewStructValue(msg), &s)
	return s, err
}

// MarshalEvents implements game.Encoder.
func (p *Protobuf) MarshalEvents(events []game.Event) ([]byte, error) {
	msg, err := toStruct(map[string]any{"events": events})
	if err != nil {
		return nil, err
	}
	return proto.Marshal(msg)
}

// UnmarshalEvents implements game.Encoder.
func (p *Protobuf) UnmarshalEvents(b []byte) ([]game.Event, error) {
	msg := &structpb.Struct{}
	if err := proto.Unmarshal(b, msg); err != nil {
		return nil, err
	}
	var events []game.Event
	if v, ok := msg.GetFields()["events"]; ok {
		if err := fromValue(v, &events); err != nil {
			return nil, err
		}
	}
	return events, nil
}

// toStruct goes through the JSON form so that field names on the wire match
// the JSON API.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	msg, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("convert to struct: %w", err)
	}
	return msg, nil
}

func fromValue(v *structpb.Value, out any) error {
	raw, err := v.MarshalJSON()
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
