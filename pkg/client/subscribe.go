package client

import (
	"context"
	"fmt"
	"math/rand"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Event is a change notification for one document.
type Event struct {
	Collection string   `json:"collection"`
	Action     string   `json:"action"`
	ID         string   `json:"id"`
	Document   Document `json:"document,omitempty"`
}

type wsEnvelope struct {
	Type  string `json:"type"`
	Event *Event `json:"event,omitempty"`
}

// Handler receives change events from Subscribe.
type Handler func(Event)

// SubscribeOptions tunes the live channel and its polling fallback.
type SubscribeOptions struct {
	// Token authenticates the websocket connection.
	Token string
	// PollCollections are watched when the websocket is unavailable.
	PollCollections []string
	// PollInterval is the steady-state polling cadence. Default 5s.
	PollInterval time.Duration
	// MaxBackoff caps the delay between reconnect attempts. Default 2m.
	MaxBackoff time.Duration
}

func (o *SubscribeOptions) defaults() {
	if o.PollInterval <= 0 {
		o.PollInterval = 5 * time.Second
	}
	if o.MaxBackoff <= 0 {
		o.MaxBackoff = 2 * time.Minute
	}
}

// Subscribe delivers change events to handler until ctx is cancelled. It
// prefers the websocket channel; while the socket cannot be established it
// polls the configured collections at a fixed interval, doubling the retry
// delay (with jitter) on consecutive connection failures and resetting it
// after a successful connect.
func (c *Client) Subscribe(ctx context.Context, opts SubscribeOptions, handler Handler) error {
	opts.defaults()
	backoff := newBackoff(opts.PollInterval, opts.MaxBackoff)
	poll := newPoller(c, opts.PollCollections)

	for {
		err := c.runSocket(ctx, opts, handler)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err == nil {
			// Clean server close; reconnect immediately.
			backoff.reset()
			continue
		}

		delay := backoff.next()
		if err := poll.poll(ctx, handler); err != nil && ctx.Err() != nil {
			return ctx.Err()
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

func (c *Client) runSocket(ctx context.Context, opts SubscribeOptions, handler Handler) error {
	wsURL, err := websocketURL(c.baseURL, opts.Token)
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("websocket dial failed: %w", err)
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		var env wsEnvelope
		if err := conn.ReadJSON(&env); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("websocket read failed: %w", err)
		}
		if env.Type == "change" && env.Event != nil {
			handler(*env.Event)
		}
	}
}

// poller is the fallback change source while the socket is down. It keeps a
// per-collection cursor on created_date so each document is reported once.
// RFC 3339 timestamps in UTC compare correctly as strings.
type poller struct {
	client      *Client
	collections []string
	cursor      map[string]string
}

func newPoller(c *Client, collections []string) *poller {
	return &poller{
		client:      c,
		collections: collections,
		cursor:      make(map[string]string, len(collections)),
	}
}

func (p *poller) poll(ctx context.Context, handler Handler) error {
	for _, collection := range p.collections {
		docs, err := p.client.List(ctx, collection, "-created_date", 20)
		if err != nil {
			return err
		}
		since := p.cursor[collection]
		// Newest first from the server; walk backwards so events land in
		// chronological order.
		for i := len(docs) - 1; i >= 0; i-- {
			doc := docs[i]
			created, _ := doc["created_date"].(string)
			if created == "" || created <= since {
				continue
			}
			handler(Event{
				Collection: collection,
				Action:     "created",
				ID:         doc.ID(),
				Document:   doc,
			})
			if created > p.cursor[collection] {
				p.cursor[collection] = created
			}
		}
	}
	return nil
}

func websocketURL(base, token string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("invalid base URL scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// backoff doubles its delay on each failure up to a cap, with up to 25%
// random jitter, and resets after a success.
type backoff struct {
	base    time.Duration
	max     time.Duration
	current time.Duration
	jitter  func(time.Duration) time.Duration
}

func newBackoff(base, max time.Duration) *backoff {
	return &backoff{
		base: base,
		max:  max,
		jitter: func(d time.Duration) time.Duration {
			return time.Duration(rand.Int63n(int64(d)/4 + 1))
		},
	}
}

func (b *backoff) next() time.Duration {
	if b.current == 0 {
		b.current = b.base
	} else {
		b.current *= 2
		if b.current > b.max {
			b.current = b.max
		}
	}
	return b.current + b.jitter(b.current)
}

func (b *backoff) reset() {
	b.current = 0
}
