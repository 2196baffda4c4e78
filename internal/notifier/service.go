// Package notifier fans out update notifications to configured channels.
package notifier

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/user/registry-watch/pkg/errors"
	"github.com/user/registry-watch/pkg/types"
)

// Service coordinates message delivery across the configured clients.
type Service struct {
	clients  []types.NotificationClient
	template *template.Template
}

// NewService creates a notification service rendering messages with the
// given template. A nil template disables rendering; NotifyUpdates becomes a
// no-op.
func NewService(messageTemplate string, clients ...types.NotificationClient) (*Service, error) {
	svc := &Service{clients: clients}
	if messageTemplate != "" {
		tmpl, err := template.New("notification").Parse(messageTemplate)
		if err != nil {
			return nil, errors.Wrap("notifier.NewService", err)
		}
		svc.template = tmpl
	}
	return svc, nil
}

// AddClient registers another delivery channel.
func (s *Service) AddClient(client types.NotificationClient) {
	s.clients = append(s.clients, client)
}

// HasClients reports whether any delivery channel is configured.
func (s *Service) HasClients() bool {
	return len(s.clients) > 0
}

// NotifyUpdates renders the template over the states that just transitioned
// into "update available" and delivers the message to every client. Partial
// delivery failures are collected; the rest of the clients still get the
// message.
func (s *Service) NotifyUpdates(ctx context.Context, updated []types.ImageState) error {
	if len(s.clients) == 0 || len(updated) == 0 || s.template == nil {
		return nil
	}

	var buf bytes.Buffer
	if err := s.template.Execute(&buf, updated); err != nil {
		return errors.Wrap("notifier.NotifyUpdates", err)
	}

	return s.send(ctx, buf.String())
}

// NotifyMessage delivers a pre-rendered message to every client.
func (s *Service) NotifyMessage(ctx context.Context, message string) error {
	if len(s.clients) == 0 {
		return nil
	}
	return s.send(ctx, message)
}

func (s *Service) send(ctx context.Context, message string) error {
	var failed []string
	for _, client := range s.clients {
		if err := client.SendNotification(ctx, message); err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", client.Name(), err))
		}
	}
	if len(failed) > 0 {
		return errors.Newf("notifier.send", "delivery failed: %s", strings.Join(failed, "; "))
	}
	return nil
}
