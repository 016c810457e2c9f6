package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	nb "github.com/akeil/notebook"
)

// Event is the type for event types used in notification messages.
type Event int

const (
	NodeAdded Event = iota
	NodeCreated
	NodeUpdated
	NodeRemoved
	PreferencesSaved
)

// Message is a single notification, sent as JSON.
// Title, Parent and Kind are empty for removed nodes.
type Message struct {
	MessageID   string    `json:"messageId"`
	PublishTime time.Time `json:"publishTime"`
	Event       Event     `json:"event"`
	NodeID      string    `json:"nodeId,omitempty"`
	Parent      string    `json:"parent,omitempty"`
	Kind        string    `json:"kind,omitempty"`
	Title       string    `json:"title,omitempty"`
}

// Messages creates one message per node listed in the sync report.
// Node details are looked up in the notebook.
func Messages(book *nb.Notebook, r *nb.SyncReport) []Message {
	now := time.Now().UTC().Truncate(time.Second)
	msgs := make([]Message, 0)

	add := func(e Event, id string) {
		m := Message{
			MessageID:   uuid.New().String(),
			PublishTime: now,
			Event:       e,
			NodeID:      id,
		}
		if e != NodeRemoved {
			if n := book.Node(id); n != nil {
				m.Title = n.Title()
				m.Kind = n.Kind().String()
				if p := n.Parent(); p != nil {
					m.Parent = p.ID()
				}
			}
		}
		msgs = append(msgs, m)
	}

	for _, id := range r.Added {
		add(NodeAdded, id)
	}
	for _, id := range r.Created {
		add(NodeCreated, id)
	}
	for _, id := range r.Updated {
		add(NodeUpdated, id)
	}
	for _, id := range r.Removed {
		add(NodeRemoved, id)
	}
	if r.Preferences {
		msgs = append(msgs, Message{
			MessageID:   uuid.New().String(),
			PublishTime: now,
			Event:       PreferencesSaved,
		})
	}

	return msgs
}

// UnmarshalJSON unmarshals an Event from a JSON string value.
func (e *Event) UnmarshalJSON(b []byte) error {
	var s string
	err := json.Unmarshal(b, &s)
	if err != nil {
		return err
	}

	var et Event
	switch s {
	case "NodeAdded":
		et = NodeAdded
	case "NodeCreated":
		et = NodeCreated
	case "NodeUpdated":
		et = NodeUpdated
	case "NodeRemoved":
		et = NodeRemoved
	case "PreferencesSaved":
		et = PreferencesSaved
	default:
		return fmt.Errorf("invalid event type %q", s)
	}

	*e = et
	return nil
}

// MarshalJSON marshals an Event to a JSON string value.
func (e Event) MarshalJSON() ([]byte, error) {
	s := e.String()

	if s == "UNKNOWN" {
		return nil, fmt.Errorf("invalid event type %d", int(e))
	}

	buf := bytes.NewBufferString(`"`)
	buf.WriteString(s)
	buf.WriteString(`"`)

	return buf.Bytes(), nil
}

func (e Event) String() string {
	switch e {
	case NodeAdded:
		return "NodeAdded"
	case NodeCreated:
		return "NodeCreated"
	case NodeUpdated:
		return "NodeUpdated"
	case NodeRemoved:
		return "NodeRemoved"
	case PreferencesSaved:
		return "PreferencesSaved"
	default:
		return "UNKNOWN"
	}
}
