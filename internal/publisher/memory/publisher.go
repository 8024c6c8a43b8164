// Package memory provides an in-process publisher for tests and local runs.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Message is one published payload.
type Message struct {
	Topic   string
	Payload []byte
}

// Publisher records messages in memory.
type Publisher struct {
	logger *zap.Logger

	mu       sync.Mutex
	messages []Message
	seq      int
}

// New returns an in-memory publisher.
func New(logger *zap.Logger) *Publisher {
	return &Publisher{logger: logger}
}

// Publish serializes the payload and appends it to the message log.
func (p *Publisher) Publish(_ context.Context, topic string, payload any) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.seq++
	p.messages = append(p.messages, Message{Topic: topic, Payload: data})
	id := fmt.Sprintf("mem-%d", p.seq)

	p.logger.Debug("published message",
		zap.String("topic", topic),
		zap.String("message_id", id),
	)
	return id, nil
}

// Messages returns a copy of everything published so far.
func (p *Publisher) Messages() []Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Message, len(p.messages))
	copy(out, p.messages)
	return out
}
