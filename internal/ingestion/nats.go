package ingestion

import (
	"context"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"pulseguard/internal/domain"
)

// ConnectNATS dials the broker with reconnect-forever semantics: a wearable
// link drops constantly and the monitor must ride it out.
func ConnectNATS(url string) (*nats.Conn, error) {
	return nats.Connect(
		url,
		nats.Name("pulseguard"),
		nats.Timeout(3*time.Second),
		nats.ReconnectWait(500*time.Millisecond),
		nats.MaxReconnects(-1),
	)
}

// NATSSource subscribes to a subject carrying sensor CSV lines, one or more
// per message.
type NATSSource struct {
	nc      *nats.Conn
	subject string
	sub     *nats.Subscription
}

// NewNATSSource wraps an existing connection.
func NewNATSSource(nc *nats.Conn, subject string) *NATSSource {
	return &NATSSource{nc: nc, subject: subject}
}

// Start subscribes and delivers parsed records until the context ends.
// Unparseable lines are dropped; a noisy serial bridge is normal.
func (s *NATSSource) Start(ctx context.Context, deliver func(domain.SessionRecord)) error {
	sub, err := s.nc.Subscribe(s.subject, func(msg *nats.Msg) {
		for _, line := range strings.Split(string(msg.Data), "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			rec, err := ParseLine(line)
			if err != nil {
				continue
			}
			deliver(rec)
		}
	})
	if err != nil {
		return err
	}
	s.sub = sub

	go func() {
		<-ctx.Done()
		s.Close()
	}()
	return nil
}

// Close drains the subscription.
func (s *NATSSource) Close() error {
	if s.sub != nil {
		if err := s.sub.Drain(); err != nil {
			return err
		}
		s.sub = nil
	}
	return nil
}

var _ RecordSource = (*NATSSource)(nil)
