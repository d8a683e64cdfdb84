package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/devilmonastery/eventdesk/internal/client"
	"github.com/devilmonastery/eventdesk/internal/domain/entities"
)

const messagesPath = "/api/messages"

// MessageFilter narrows the inbox listing
type MessageFilter struct {
	ListFilter
	UnreadOnly bool
}

// MessageService reads and answers contact-form messages
type MessageService struct {
	c *client.Client
}

func (s *MessageService) List(ctx context.Context, filter MessageFilter) ([]entities.Message, error) {
	q := filter.ListFilter.values()
	if filter.UnreadOnly {
		q.Set("unread", "true")
	}
	return client.Get[[]entities.Message](ctx, s.c, messagesPath, q)
}

func (s *MessageService) Get(ctx context.Context, id string) (*entities.Message, error) {
	if err := requireID("message", id); err != nil {
		return nil, err
	}
	return client.Get[*entities.Message](ctx, s.c, resourcePath(messagesPath, id), nil)
}

// MarkRead flags a message as read
func (s *MessageService) MarkRead(ctx context.Context, id string) (*entities.Message, error) {
	if err := requireID("message", id); err != nil {
		return nil, err
	}
	return mutate[*entities.Message](ctx, s.c, http.MethodPatch, resourcePath(messagesPath, id, "read"), nil)
}

// Reply answers a message by email through the server
func (s *MessageService) Reply(ctx context.Context, id, body string) (*entities.Message, error) {
	if err := requireID("message", id); err != nil {
		return nil, err
	}
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("reply body is required")
	}
	return mutate[*entities.Message](ctx, s.c, http.MethodPost, resourcePath(messagesPath, id, "reply"), entities.MessageReply{Body: body})
}

func (s *MessageService) Delete(ctx context.Context, id string) error {
	if err := requireID("message", id); err != nil {
		return err
	}
	_, err := mutate[*Deleted](ctx, s.c, http.MethodDelete, resourcePath(messagesPath, id), nil)
	return err
}

// UnreadCount returns the number of unread messages
func (s *MessageService) UnreadCount(ctx context.Context) (int, error) {
	out, err := client.Get[struct {
		Count int `json:"count"`
	}](ctx, s.c, messagesPath+"/unread-count", nil)
	if err != nil {
		return 0, err
	}
	return out.Count, nil
}
