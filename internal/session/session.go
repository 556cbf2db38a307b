package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/foodbridge/cli/internal/api"
	"github.com/foodbridge/cli/internal/model"
	"github.com/foodbridge/cli/internal/realtime"
)

// MaxNotifications bounds the live notification log. Older entries are
// evicted when the log is full.
const MaxNotifications = 20

// AuthService is the slice of the auth API the session store drives.
type AuthService interface {
	Login(ctx context.Context, creds api.Credentials) (*api.AuthResponse, error)
	Register(ctx context.Context, reg api.Registration) (*api.AuthResponse, error)
	Me(ctx context.Context) (*model.User, error)
}

// CredentialStore is the durable local storage for the bearer token
// and serialized identity.
type CredentialStore interface {
	Token() (string, error)
	Identity() (*model.User, error)
	SaveSession(token string, user *model.User) error
	SaveIdentity(user *model.User) error
	Clear() error
}

// TokenSink receives the current bearer token so outbound API calls
// stay in step with the session.
type TokenSink interface {
	SetToken(token string)
}

// Feed is one live push connection. Its events channel closes when the
// connection ends.
type Feed interface {
	Events() <-chan realtime.Event
	Close()
}

// Dialer opens push connections scoped to a credential.
type Dialer interface {
	Dial(token string) (Feed, error)
}

// DialerFunc adapts a function to the Dialer interface.
type DialerFunc func(token string) (Feed, error)

// Dial calls f.
func (f DialerFunc) Dial(token string) (Feed, error) { return f(token) }

// History persists ingested notifications beyond the live log.
type History interface {
	AppendNotification(ctx context.Context, n model.Notification) error
	MarkAllNotificationsRead(ctx context.Context) error
	ClearNotifications(ctx context.Context) error
}

// Update tells the UI that observable session state changed.
type Update int

const (
	// UpdateNotifications means the notification log changed.
	UpdateNotifications Update = iota

	// UpdateExpired means the session was torn down by the global
	// unauthorized policy and the UI should return to the login view.
	UpdateExpired
)

// Config wires the session store's collaborators.
type Config struct {
	Auth        AuthService
	Credentials CredentialStore
	Tokens      TokenSink
	Dialer      Dialer
	History     History
	Logger      *log.Logger
}

// Store is the single source of truth for "who is logged in". All
// mutation funnels through its methods; the mutex makes every
// operation atomic with respect to readers and the feed consumer.
type Store struct {
	auth    AuthService
	creds   CredentialStore
	tokens  TokenSink
	dialer  Dialer
	history History
	logger  *log.Logger

	mu            sync.Mutex
	user          *model.User
	token         string
	loading       bool
	booted        bool
	notifications []model.Notification

	feed    Feed
	feedGen uint64

	updates chan Update
}

// New creates a session store. Loading stays true until the first
// Bootstrap completes.
func New(cfg Config) *Store {
	return &Store{
		auth:    cfg.Auth,
		creds:   cfg.Credentials,
		tokens:  cfg.Tokens,
		dialer:  cfg.Dialer,
		history: cfg.History,
		logger:  cfg.Logger,
		loading: true,
		updates: make(chan Update, 16),
	}
}

// Updates returns the channel the UI watches for session changes.
// Slow consumers lose updates rather than blocking the session.
func (s *Store) Updates() <-chan Update {
	return s.updates
}

// Bootstrap rehydrates the session from durable storage. It runs the
// stored-credential identity check exactly once per process lifetime;
// later calls are no-ops. Loading is false once it returns.
func (s *Store) Bootstrap(ctx context.Context) {
	s.mu.Lock()
	if s.booted {
		s.mu.Unlock()
		return
	}
	s.booted = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	token, err := s.creds.Token()
	if err != nil {
		s.logf("reading stored token: %v", err)
		return
	}
	if token == "" {
		return
	}

	// Authenticate the identity lookup with the stored token. Identity
	// and credential are only half-set until the check settles.
	if s.tokens != nil {
		s.tokens.SetToken(token)
	}

	user, err := s.auth.Me(ctx)
	if err != nil {
		// Stored credential is stale or the server is unreachable;
		// either way the session starts signed out.
		s.logf("rehydration check failed: %v", err)
		s.Logout()
		return
	}

	s.mu.Lock()
	s.commitLocked(token, user)
	s.mu.Unlock()

	if err := s.creds.SaveIdentity(user); err != nil {
		s.logf("refreshing stored identity: %v", err)
	}
}

// Login exchanges credentials for a session. On failure nothing is
// mutated and the error propagates to the caller for display.
func (s *Store) Login(ctx context.Context, creds api.Credentials) error {
	resp, err := s.auth.Login(ctx, creds)
	if err != nil {
		return err
	}
	s.establish(resp)
	return nil
}

// Register creates an account and signs it in. Failure semantics match
// Login.
func (s *Store) Register(ctx context.Context, reg api.Registration) error {
	resp, err := s.auth.Register(ctx, reg)
	if err != nil {
		return err
	}
	s.establish(resp)
	return nil
}

// establish commits a successful auth response to memory and durable
// storage together.
func (s *Store) establish(resp *api.AuthResponse) {
	user := resp.User

	s.mu.Lock()
	s.commitLocked(resp.Token, &user)
	s.mu.Unlock()

	if err := s.creds.SaveSession(resp.Token, &user); err != nil {
		s.logf("persisting session: %v", err)
	}
}

// commitLocked installs a credential/identity pair and brings the feed
// in line with the new credential. Callers hold the mutex.
func (s *Store) commitLocked(token string, user *model.User) {
	s.token = token
	s.user = user
	if s.tokens != nil {
		s.tokens.SetToken(token)
	}
	s.connectFeedLocked(token)
}

// Logout clears the session from memory and durable storage and closes
// the feed. Safe to call when already signed out.
func (s *Store) Logout() {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.notifications = nil
	if s.tokens != nil {
		s.tokens.SetToken("")
	}
	s.closeFeedLocked()
	s.mu.Unlock()

	if err := s.creds.Clear(); err != nil {
		s.logf("clearing stored credentials: %v", err)
	}
	if s.history != nil {
		if err := s.history.ClearNotifications(context.Background()); err != nil {
			s.logf("clearing notification history: %v", err)
		}
	}
}

// HandleUnauthorized applies the global 401 policy: the side effects
// of Logout plus a redirect signal to the login view. Register it as
// the API client's OnUnauthorized hook.
func (s *Store) HandleUnauthorized() {
	s.Logout()
	s.notify(UpdateExpired)
}

// MarkAllNotificationsRead flips the read flag on every entry
// currently in the log. Entries arriving afterward are unaffected.
func (s *Store) MarkAllNotificationsRead() {
	s.mu.Lock()
	for i := range s.notifications {
		s.notifications[i].Read = true
	}
	s.mu.Unlock()

	if s.history != nil {
		if err := s.history.MarkAllNotificationsRead(context.Background()); err != nil {
			s.logf("marking history read: %v", err)
		}
	}
	s.notify(UpdateNotifications)
}

// User returns a copy of the current identity, or nil when signed out.
func (s *Store) User() *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Token returns the current bearer token, or "" when signed out.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Loading reports whether the startup rehydration check is still in
// flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Notifications returns the live log, newest first.
func (s *Store) Notifications() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Notification, len(s.notifications))
	copy(out, s.notifications)
	return out
}

// UnreadCount returns how many log entries are unread.
func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, n := range s.notifications {
		if !n.Read {
			count++
		}
	}
	return count
}

// connectFeedLocked replaces the live connection with one scoped to
// token. An empty token leaves the feed closed. Callers hold the mutex.
func (s *Store) connectFeedLocked(token string) {
	s.closeFeedLocked()
	if token == "" || s.dialer == nil {
		return
	}

	feed, err := s.dialer.Dial(token)
	if err != nil {
		// Connection failures are swallowed; the session works without
		// realtime updates.
		s.logf("opening push connection: %v", err)
		return
	}

	s.feed = feed
	s.feedGen++
	go s.consume(feed, s.feedGen)
}

// closeFeedLocked tears down the live connection. Its consumer exits
// when the events channel closes, and the generation check keeps any
// still-draining consumer from touching the log.
func (s *Store) closeFeedLocked() {
	if s.feed == nil {
		return
	}
	s.feed.Close()
	s.feed = nil
	s.feedGen++
}

// consume folds one connection's event sequence into the notification
// log. Exactly one consumer per generation ever appends.
func (s *Store) consume(feed Feed, gen uint64) {
	for evt := range feed.Events() {
		s.ingest(evt, gen)
	}
}

// ingest prepends one event to the log, evicting the oldest entry past
// the capacity bound. Events from a superseded connection are dropped.
func (s *Store) ingest(evt realtime.Event, gen uint64) {
	n := model.Notification{
		ID:         uuid.New().String(),
		Event:      evt.Name,
		Payload:    evt.Payload,
		ReceivedAt: time.Now(),
	}

	s.mu.Lock()
	if gen != s.feedGen {
		s.mu.Unlock()
		return
	}
	s.notifications = append([]model.Notification{n}, s.notifications...)
	if len(s.notifications) > MaxNotifications {
		s.notifications = s.notifications[:MaxNotifications]
	}
	s.mu.Unlock()

	if s.history != nil {
		if err := s.history.AppendNotification(context.Background(), n); err != nil {
			s.logf("appending notification history: %v", err)
		}
	}
	s.notify(UpdateNotifications)
}

// notify signals the UI without ever blocking session operations.
func (s *Store) notify(u Update) {
	select {
	case s.updates <- u:
	default:
	}
}

func (s *Store) logf(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}
