package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/intensiva/docscribe/internal/summary"
)

// SubjectSummaryCreated carries one announcement per completed summary.
const SubjectSummaryCreated = "docscribe.summary.created"

// SummaryCreated is the announcement payload for downstream listeners
// (census boards, shift dashboards). List contents stay off the bus;
// only counts travel.
type SummaryCreated struct {
	Bed          string `json:"bed"`
	PatientName  string `json:"patient_name"`
	Diagnoses    int    `json:"diagnoses"`
	PendingItems int    `json:"pending_items"`
	CareActions  int    `json:"care_actions"`
	Source       string `json:"source"`
	CreatedAt    string `json:"created_at"`
}

type Publisher struct {
	conn   *nats.Conn
	logger *slog.Logger
}

func NewPublisher(url, token string, logger *slog.Logger) (*Publisher, error) {
	opts := []nats.Option{
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Publisher{conn: nc, logger: logger}, nil
}

func (p *Publisher) Publish(subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return p.conn.Publish(subject, payload)
}

// Announce publishes a summary-created event. Announcements are best
// effort: failures are logged and never surfaced to the caller.
func (p *Publisher) Announce(s *summary.PatientSummary, source string) {
	evt := SummaryCreated{
		Bed:          s.Bed,
		PatientName:  s.PatientName,
		Diagnoses:    len(s.Diagnoses),
		PendingItems: len(s.PendingItems),
		CareActions:  len(s.CareActions),
		Source:       source,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	if err := p.Publish(SubjectSummaryCreated, evt); err != nil {
		p.logger.Warn("failed to publish summary event", "error", err, "source", source)
	}
}

func (p *Publisher) Close() {
	p.conn.Close()
}
