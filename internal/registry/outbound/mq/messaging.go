// Package mq emits registry events to the message broker.
package mq

import (
	"context"
	"encoding/json"
	"errors"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/cratebin/cratebin/internal/pkg/instrument"
	"github.com/cratebin/cratebin/internal/pkg/messaging"
	"github.com/cratebin/cratebin/internal/registry/usecase"
)

// TopicCratePublished is the subject new releases are announced on.
const TopicCratePublished = "cratebin.crate.published"

type Messaging struct {
	publisher messaging.Publisher
	ins       instrument.Instrumentation
}

func NewMessaging(publisher messaging.Publisher, ins instrument.Instrumentation) *Messaging {
	return &Messaging{
		publisher: publisher,
		ins:       ins,
	}
}

func (m *Messaging) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return m.ins.Tracer("registry.outbound.mq").Start(ctx, name)
}

type cratePublishedPayload struct {
	CrateID   int64  `json:"crate_id"`
	Name      string `json:"name"`
	Version   string `json:"version"`
	Checksum  string `json:"checksum"`
	Publisher int64  `json:"publisher"`
}

func (m *Messaging) PublishCratePublished(ctx context.Context, msg usecase.CratePublishedEvent) (err error) {
	ctx, span := m.startSpan(ctx, "PublishCratePublished")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if m.publisher == nil {
		return errors.New("mq: publisher not configured")
	}

	body, err := json.Marshal(cratePublishedPayload{
		CrateID:   msg.CrateID,
		Name:      msg.Name,
		Version:   msg.Version,
		Checksum:  msg.Checksum,
		Publisher: msg.Publisher,
	})
	if err != nil {
		return err
	}

	_, err = m.publisher.Publish(ctx, TopicCratePublished, messaging.OutgoingMessage{
		Body:    body,
		Headers: map[string]string{"content-type": "application/json"},
	})
	return err
}
