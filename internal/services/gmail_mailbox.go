package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
)

// MailMessage is the part of an email the inbox sync needs.
type MailMessage struct {
	ID      string
	Subject string
	From    string
	Body    string
}

// Mailbox lists and reads messages. History ids are opaque bookmarks.
type Mailbox interface {
	// FullSync lists recent candidate messages and returns the current bookmark.
	FullSync(ctx context.Context) ([]string, uint64, error)
	// IncrementalSync lists messages added since startID. It returns
	// ErrHistoryExpired when the bookmark is too old.
	IncrementalSync(ctx context.Context, startID uint64) ([]string, uint64, error)
	Get(ctx context.Context, id string) (*MailMessage, error)
}

var ErrHistoryExpired = errors.New("mailbox history expired")

// fullSyncQuery limits the bootstrap to recent application mail.
const fullSyncQuery = "subject:(application OR interview OR update OR offer OR rejected OR status OR assessment) newer_than:7d"

type GmailMailbox struct {
	Service *gmail.Service
	Logger  *zap.Logger
}

func NewGmailMailbox(svc *gmail.Service, logger *zap.Logger) *GmailMailbox {
	return &GmailMailbox{Service: svc, Logger: logger}
}

func (m *GmailMailbox) FullSync(ctx context.Context) ([]string, uint64, error) {
	var resp *gmail.ListMessagesResponse
	err := retry(m.Logger, 3, time.Second, func() error {
		var e error
		resp, e = m.Service.Users.Messages.List("me").Q(fullSyncQuery).MaxResults(50).Context(ctx).Do()
		return e
	})
	if err != nil {
		return nil, 0, err
	}

	// The profile history id is the new anchor.
	profile, err := m.Service.Users.GetProfile("me").Context(ctx).Do()
	if err != nil {
		return nil, 0, fmt.Errorf("get profile: %w", err)
	}

	ids := make([]string, 0, len(resp.Messages))
	for _, msg := range resp.Messages {
		ids = append(ids, msg.Id)
	}
	return ids, profile.HistoryId, nil
}

func (m *GmailMailbox) IncrementalSync(ctx context.Context, startID uint64) ([]string, uint64, error) {
	var resp *gmail.ListHistoryResponse
	err := retry(m.Logger, 3, time.Second, func() error {
		var e error
		// Only added messages matter, not label changes.
		resp, e = m.Service.Users.History.List("me").
			StartHistoryId(startID).
			HistoryTypes("messageAdded").
			Context(ctx).Do()
		return e
	})
	if err != nil {
		if isHistoryExpiredError(err) {
			return nil, 0, ErrHistoryExpired
		}
		return nil, 0, err
	}

	var ids []string
	for _, h := range resp.History {
		for _, added := range h.MessagesAdded {
			if added.Message != nil {
				ids = append(ids, added.Message.Id)
			}
		}
	}
	return ids, resp.HistoryId, nil
}

func (m *GmailMailbox) Get(ctx context.Context, id string) (*MailMessage, error) {
	var msg *gmail.Message
	err := retry(m.Logger, 2, 500*time.Millisecond, func() error {
		var e error
		msg, e = m.Service.Users.Messages.Get("me", id).Context(ctx).Do()
		return e
	})
	if err != nil {
		return nil, err
	}
	headers := parseHeaders(msg)
	return &MailMessage{
		ID:      msg.Id,
		Subject: headers["Subject"],
		From:    headers["From"],
		Body:    getEmailBody(msg),
	}, nil
}

// retry executes f with exponential backoff.
func retry(logger *zap.Logger, attempts int, sleep time.Duration, f func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = f(); err == nil {
			return nil
		}
		// Expired history fails fast so the caller can switch to a full sync.
		if isHistoryExpiredError(err) {
			return err
		}
		if i == attempts-1 {
			break
		}
		logger.Warn("mailbox API error, retrying", zap.Error(err), zap.Duration("sleep", sleep))
		time.Sleep(sleep)
		sleep *= 2
	}
	return fmt.Errorf("failed after %d attempts: %w", attempts, err)
}

func isHistoryExpiredError(err error) bool {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return gErr.Code == 404
	}
	return false
}

func parseHeaders(msg *gmail.Message) map[string]string {
	res := make(map[string]string)
	if msg.Payload == nil {
		return res
	}
	for _, h := range msg.Payload.Headers {
		res[h.Name] = h.Value
	}
	return res
}

func getEmailBody(msg *gmail.Message) string {
	if msg.Payload == nil {
		return ""
	}
	if msg.Payload.Body != nil && msg.Payload.Body.Data != "" {
		return decodeBody(msg.Payload.Body.Data)
	}
	for _, mime := range []string{"text/plain", "text/html"} {
		for _, part := range msg.Payload.Parts {
			if part.MimeType == mime && part.Body != nil && part.Body.Data != "" {
				return decodeBody(part.Body.Data)
			}
		}
	}
	return ""
}

func decodeBody(data string) string {
	d, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		// Gmail sometimes omits padding.
		d, _ = base64.RawURLEncoding.DecodeString(data)
	}
	return string(d)
}
