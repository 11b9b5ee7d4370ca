package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/anonto42/recipe-share/backend/pkg/logger"
)

// Event names a session state change
type Event string

const (
	EventSignedIn       Event = "SIGNED_IN"
	EventSignedOut      Event = "SIGNED_OUT"
	EventTokenRefreshed Event = "TOKEN_REFRESHED"
)

const stateTopic = "auth.state"

// refreshMargin is how long before expiry GetSession refreshes the access token.
const refreshMargin = time.Minute

// StateChange is published on every sign in, sign out and token refresh.
// Session is nil after a sign out.
type StateChange struct {
	Event   Event    `json:"event"`
	Session *Session `json:"session,omitempty"`
}

// Subscription is a live stream of state changes. Unsubscribe may be called
// any number of times; C is closed once the stream has stopped.
type Subscription struct {
	C      <-chan StateChange
	cancel func()
	once   sync.Once
}

// NewSubscription wraps a stream produced outside this package; cancel
// runs on the first Unsubscribe.
func NewSubscription(c <-chan StateChange, cancel func()) *Subscription {
	return &Subscription{C: c, cancel: cancel}
}

func (s *Subscription) Unsubscribe() {
	s.once.Do(s.cancel)
}

// Client is the auth client of one browser tab. It holds that tab's session
// in memory and announces every change on its own event bus.
type Client struct {
	service *Service
	bus     *gochannel.GoChannel

	// changeMu serializes mutations so events are published in the order
	// the session was changed; mu guards reads of session.
	changeMu sync.Mutex
	mu       sync.RWMutex
	session  *Session
}

// NewClient creates a client with no session
func NewClient(service *Service) *Client {
	return &Client{
		service: service,
		bus: gochannel.NewGoChannel(
			gochannel.Config{BlockPublishUntilSubscriberAck: true},
			watermill.NopLogger{},
		),
	}
}

// SignUp creates a new identity. It does not sign the client in.
func (c *Client) SignUp(ctx context.Context, email, password string) (*Identity, error) {
	return c.service.SignUp(ctx, email, password)
}

// SignInWithPassword signs the client in with an email/password pair
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	c.changeMu.Lock()
	defer c.changeMu.Unlock()

	sess, err := c.service.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	c.setSession(sess)
	c.publish(EventSignedIn, sess)
	return copySession(sess), nil
}

// SignInWithIDToken signs the client in with a Firebase ID token
func (c *Client) SignInWithIDToken(ctx context.Context, idToken string) (*Session, error) {
	c.changeMu.Lock()
	defer c.changeMu.Unlock()

	sess, err := c.service.SignInWithIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}
	c.setSession(sess)
	c.publish(EventSignedIn, sess)
	return copySession(sess), nil
}

// SignOut drops the session
func (c *Client) SignOut(ctx context.Context) error {
	c.changeMu.Lock()
	defer c.changeMu.Unlock()

	c.setSession(nil)
	c.publish(EventSignedOut, nil)
	return nil
}

// GetSession returns the current session, or nil when signed out. A session
// close to expiry is refreshed first; a failed refresh signs the client out.
func (c *Client) GetSession(ctx context.Context) (*Session, error) {
	c.mu.RLock()
	sess := c.session
	c.mu.RUnlock()

	if sess == nil {
		return nil, nil
	}
	if c.service.now().Add(refreshMargin).Before(sess.ExpiresAt) {
		return copySession(sess), nil
	}

	c.changeMu.Lock()
	defer c.changeMu.Unlock()

	// Another caller may have refreshed or signed out while we waited.
	c.mu.RLock()
	current := c.session
	c.mu.RUnlock()
	if current == nil {
		return nil, nil
	}
	if current != sess {
		return copySession(current), nil
	}

	refreshed, err := c.service.Refresh(ctx, sess.RefreshToken)
	if err != nil {
		c.setSession(nil)
		c.publish(EventSignedOut, nil)
		return nil, fmt.Errorf("refresh session: %w", err)
	}
	c.setSession(refreshed)
	c.publish(EventTokenRefreshed, refreshed)
	return copySession(refreshed), nil
}

// OnAuthStateChange subscribes to state changes until ctx is done or the
// subscription is released.
func (c *Client) OnAuthStateChange(ctx context.Context) (*Subscription, error) {
	subCtx, cancel := context.WithCancel(ctx)

	messages, err := c.bus.Subscribe(subCtx, stateTopic)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("subscribe to auth state: %w", err)
	}

	out := make(chan StateChange)
	go func() {
		defer close(out)
		for msg := range messages {
			var change StateChange
			if err := json.Unmarshal(msg.Payload, &change); err != nil {
				logger.Log.WithError(err).Warn("dropping malformed auth state message")
				msg.Ack()
				continue
			}
			select {
			case out <- change:
				msg.Ack()
			case <-subCtx.Done():
				return
			}
		}
	}()

	return &Subscription{C: out, cancel: cancel}, nil
}

// Close shuts the event bus down; open subscriptions are closed.
func (c *Client) Close() error {
	return c.bus.Close()
}

func (c *Client) setSession(sess *Session) {
	c.mu.Lock()
	c.session = sess
	c.mu.Unlock()
}

func (c *Client) publish(event Event, sess *Session) {
	payload, err := json.Marshal(StateChange{Event: event, Session: sess})
	if err != nil {
		logger.Log.WithError(err).Error("encode auth state change")
		return
	}
	if err := c.bus.Publish(stateTopic, message.NewMessage(watermill.NewUUID(), payload)); err != nil {
		logger.Log.WithError(err).WithField("event", event).Warn("publish auth state change")
	}
}

func copySession(s *Session) *Session {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}
