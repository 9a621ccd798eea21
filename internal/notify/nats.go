package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

// Conn is the part of *nats.Conn the sink needs.
type Conn interface {
	Publish(subj string, data []byte) error
}

var _ Conn = (*nats.Conn)(nil)

// Message is the JSON body published to NATS and to webhooks.
type Message struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	Transition string    `json:"transition"`
	LetterID   string    `json:"letter_id"`
	UserID     string    `json:"user_id,omitempty"`
	Message    string    `json:"message,omitempty"`
	Actor      string    `json:"actor,omitempty"`
	Action     string    `json:"action,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	At         time.Time `json:"at"`
}

func messageOf(e Event) Message {
	m := Message{
		ID:         e.ID,
		Kind:       e.Kind(),
		Transition: e.Transition,
		LetterID:   e.LetterID(),
		At:         e.At,
	}
	if e.Notice != nil {
		m.UserID = e.Notice.UserID
		m.Message = e.Notice.Message
	}
	if e.Audit != nil {
		m.Actor = e.Audit.Actor
		m.Action = e.Audit.Action
		m.Detail = e.Audit.Detail
	}
	return m
}

// NATSSink publishes notices on <prefix>.notifications.<user id>, so a
// client subscribes to its own user's subject. Audit records go on
// <prefix>.audit.<letter id>.
type NATSSink struct {
	conn   Conn
	prefix string
}

// NewNATSSink creates a sink publishing through conn. An empty prefix means "surat".
func NewNATSSink(conn Conn, prefix string) *NATSSink {
	if prefix == "" {
		prefix = "surat"
	}
	return &NATSSink{conn: conn, prefix: strings.TrimSuffix(prefix, ".")}
}

// Name identifies the sink in logs and metrics.
func (s *NATSSink) Name() string { return "nats" }

// subjectToken keeps an id a single subject token.
var subjectToken = strings.NewReplacer(".", "_", " ", "_", "*", "_", ">", "_")

// Subject returns the subject e is published on.
func (s *NATSSink) Subject(e Event) string {
	if e.Notice != nil {
		return fmt.Sprintf("%s.notifications.%s", s.prefix, token(e.Notice.UserID))
	}
	return fmt.Sprintf("%s.audit.%s", s.prefix, token(e.LetterID()))
}

func token(id string) string {
	if id == "" {
		return "unknown"
	}
	return subjectToken.Replace(id)
}

// Deliver publishes e as a JSON Message.
func (s *NATSSink) Deliver(_ context.Context, e Event) error {
	data, err := json.Marshal(messageOf(e))
	if err != nil {
		return err
	}
	return s.conn.Publish(s.Subject(e), data)
}

// DialNATS connects with reconnects enabled; the returned conn must be drained on shutdown.
func DialNATS(url, name string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
