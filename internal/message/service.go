package message

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mznsh11/Blex/internal/model"
	"github.com/mznsh11/Blex/internal/state"
	"github.com/mznsh11/Blex/internal/store"
	"github.com/mznsh11/Blex/internal/stream"
)

type Service struct {
	state *state.State
	store *store.Orchestrator
	hub   *stream.Hub
}

func NewService(st *state.State, orch *store.Orchestrator, hub *stream.Hub) *Service {
	return &Service{state: st, store: orch, hub: hub}
}

// SendMessage resolves the receiver like any other identifier (username
// first, display name second), appends the message and pushes an inbox
// event to the receiver's stream.
func (s *Service) SendMessage(ctx context.Context, actor string, req SendRequest) (*model.Message, error) {
	var sent *model.Message
	err := s.state.Update(func(g *state.Graph) error {
		sender := g.FindUser(actor)
		if sender == nil {
			return model.ErrNotFound
		}
		receiver := g.FindUser(req.To)
		if receiver == nil {
			return model.ErrNotFound
		}
		m := model.NewMessage(sender, receiver, req.Content, time.Now())
		g.Messages = append(g.Messages, m)
		sent = m.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.persist(ctx); err != nil {
		return nil, err
	}

	if s.hub != nil {
		event, err := json.Marshal(InboxEvent{From: sent.Sender, Content: sent.Content, SentAt: sent.SentAt})
		if err == nil {
			s.hub.Broadcast(sent.Receiver, event)
		}
	}
	return sent, nil
}

// Inbox returns the messages addressed to the user, oldest first.
func (s *Service) Inbox(identifier string) ([]*model.Message, error) {
	var messages []*model.Message
	var found bool
	s.state.View(func(g *state.Graph) {
		u := g.FindUser(identifier)
		if u == nil {
			return
		}
		found = true
		for _, m := range g.Messages {
			if m.Receiver == u.Username() {
				messages = append(messages, m.Clone())
			}
		}
	})
	if !found {
		return nil, model.ErrNotFound
	}
	return messages, nil
}

// Sent returns the messages the user authored, oldest first.
func (s *Service) Sent(identifier string) ([]*model.Message, error) {
	var messages []*model.Message
	var found bool
	s.state.View(func(g *state.Graph) {
		u := g.FindUser(identifier)
		if u == nil {
			return
		}
		found = true
		for _, m := range g.Messages {
			if m.Sender == u.Username() {
				messages = append(messages, m.Clone())
			}
		}
	})
	if !found {
		return nil, model.ErrNotFound
	}
	return messages, nil
}

// persist writes the full snapshot; a failed save fails the mutation that
// triggered it even though the in-memory graph already moved on.
func (s *Service) persist(ctx context.Context) error {
	g := s.state.Snapshot()
	return s.store.SaveAll(ctx, g.Users, g.Posts, g.Messages, g.Marketplace)
}
