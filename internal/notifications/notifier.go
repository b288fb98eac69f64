package notifications

import "context"

// ContactMessage is a message submitted through the public contact form.
type ContactMessage struct {
	Name    string
	Email   string
	Message string
}

type Notifier interface {
	SendContactMessage(ctx context.Context, msg ContactMessage) error
}
