package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/foodbridge/cli/internal/api"
	"github.com/foodbridge/cli/internal/model"
	"github.com/foodbridge/cli/internal/realtime"
)

// --- fakes ---------------------------------------------------------------

type fakeAuth struct {
	loginResp    *api.AuthResponse
	loginErr     error
	registerResp *api.AuthResponse
	registerErr  error
	meResp       *model.User
	meErr        error
	meCalls      int
}

func (f *fakeAuth) Login(ctx context.Context, creds api.Credentials) (*api.AuthResponse, error) {
	return f.loginResp, f.loginErr
}

func (f *fakeAuth) Register(ctx context.Context, reg api.Registration) (*api.AuthResponse, error) {
	return f.registerResp, f.registerErr
}

func (f *fakeAuth) Me(ctx context.Context) (*model.User, error) {
	f.meCalls++
	return f.meResp, f.meErr
}

type fakeCreds struct {
	mu    sync.Mutex
	token string
	user  *model.User
}

func (f *fakeCreds) Token() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token, nil
}

func (f *fakeCreds) Identity() (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.user, nil
}

func (f *fakeCreds) SaveSession(token string, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
	f.user = user
	return nil
}

func (f *fakeCreds) SaveIdentity(user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.user = user
	return nil
}

func (f *fakeCreds) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = ""
	f.user = nil
	return nil
}

func (f *fakeCreds) stored() (string, *model.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token, f.user
}

type fakeFeed struct {
	mu      sync.Mutex
	events  chan realtime.Event
	closed  bool
	onClose func()
}

func newFakeFeed(onClose func()) *fakeFeed {
	return &fakeFeed{events: make(chan realtime.Event, 32), onClose: onClose}
}

func (f *fakeFeed) Events() <-chan realtime.Event { return f.events }

func (f *fakeFeed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	close(f.events)
	if f.onClose != nil {
		f.onClose()
	}
}

func (f *fakeFeed) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// fakeDialer tracks how many connections are live so tests can assert
// the single-connection invariant.
type fakeDialer struct {
	mu      sync.Mutex
	feeds   []*fakeFeed
	tokens  []string
	live    int
	maxLive int
}

func (d *fakeDialer) Dial(token string) (Feed, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	feed := newFakeFeed(func() {
		d.mu.Lock()
		d.live--
		d.mu.Unlock()
	})
	d.feeds = append(d.feeds, feed)
	d.tokens = append(d.tokens, token)
	d.live++
	if d.live > d.maxLive {
		d.maxLive = d.live
	}
	return feed, nil
}

func (d *fakeDialer) lastFeed() *fakeFeed {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.feeds) == 0 {
		return nil
	}
	return d.feeds[len(d.feeds)-1]
}

func (d *fakeDialer) stats() (dials, live, maxLive int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.feeds), d.live, d.maxLive
}

type tokenRecorder struct {
	mu    sync.Mutex
	token string
}

func (r *tokenRecorder) SetToken(token string) {
	r.mu.Lock()
	r.token = token
	r.mu.Unlock()
}

func (r *tokenRecorder) current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.token
}

// --- helpers -------------------------------------------------------------

func ngoUser() *model.User {
	return &model.User{
		ID:           "u-ngo",
		Name:         "Helping Hands",
		Email:        "ngo@test.com",
		Role:         model.RoleNGO,
		Organization: "Helping Hands Trust",
	}
}

func newTestStore(t *testing.T, auth *fakeAuth, creds *fakeCreds, dialer *fakeDialer) *Store {
	t.Helper()
	if creds == nil {
		creds = &fakeCreds{}
	}
	s := New(Config{
		Auth:        auth,
		Credentials: creds,
		Tokens:      &tokenRecorder{},
		Dialer:      dialer,
	})
	t.Cleanup(s.Logout)
	return s
}

// checkCoupling asserts P1: credential is empty iff identity is nil.
func checkCoupling(t *testing.T, s *Store) {
	t.Helper()
	token, user := s.Token(), s.User()
	if (token == "") != (user == nil) {
		t.Fatalf("credential/identity decoupled: token=%q user=%v", token, user)
	}
}

func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// --- tests ---------------------------------------------------------------

func TestLoginCommitsSessionAndPersists(t *testing.T) {
	auth := &fakeAuth{loginResp: &api.AuthResponse{Token: "tok-ngo", User: *ngoUser()}}
	creds := &fakeCreds{}
	dialer := &fakeDialer{}
	s := newTestStore(t, auth, creds, dialer)

	err := s.Login(context.Background(), api.Credentials{
		Email:    "ngo@test.com",
		Password: "Test1234",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	checkCoupling(t, s)

	if s.Token() != "tok-ngo" {
		t.Errorf("token = %q, want tok-ngo", s.Token())
	}
	user := s.User()
	if user == nil || user.Role != model.RoleNGO {
		t.Fatalf("user = %+v, want ngo identity", user)
	}

	storedToken, storedUser := creds.stored()
	if storedToken != "tok-ngo" || storedUser == nil || storedUser.Email != "ngo@test.com" {
		t.Errorf("durable storage = (%q, %+v), want committed session", storedToken, storedUser)
	}

	if dials, live, _ := dialer.stats(); dials != 1 || live != 1 {
		t.Errorf("dials=%d live=%d, want one live connection after login", dials, live)
	}
}

func TestLoginFailureMutatesNothing(t *testing.T) {
	auth := &fakeAuth{loginErr: &api.Error{Kind: api.KindValidation, StatusCode: 400, Message: "bad password"}}
	creds := &fakeCreds{}
	s := newTestStore(t, auth, creds, &fakeDialer{})

	err := s.Login(context.Background(), api.Credentials{Email: "x@test.com", Password: "nope"})
	if !api.IsValidation(err) {
		t.Fatalf("err = %v, want the API error propagated unmodified", err)
	}
	checkCoupling(t, s)

	if s.Token() != "" || s.User() != nil {
		t.Error("failed login mutated session state")
	}
	if storedToken, _ := creds.stored(); storedToken != "" {
		t.Error("failed login wrote durable storage")
	}
}

func TestRegisterCommitsSession(t *testing.T) {
	donor := &model.User{ID: "u-d", Name: "Ravi Sharma", Email: "donor@test.com", Role: model.RoleDonor}
	auth := &fakeAuth{registerResp: &api.AuthResponse{Token: "tok-d", User: *donor}}
	s := newTestStore(t, auth, &fakeCreds{}, &fakeDialer{})

	if err := s.Register(context.Background(), api.Registration{Email: "donor@test.com"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	checkCoupling(t, s)
	if got := s.User(); got == nil || got.Role != model.RoleDonor {
		t.Errorf("user = %+v, want donor identity", got)
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	auth := &fakeAuth{loginResp: &api.AuthResponse{Token: "tok", User: *ngoUser()}}
	creds := &fakeCreds{}
	dialer := &fakeDialer{}
	s := newTestStore(t, auth, creds, dialer)

	if err := s.Login(context.Background(), api.Credentials{}); err != nil {
		t.Fatalf("login: %v", err)
	}

	s.Logout()
	checkCoupling(t, s)
	if token, user := creds.stored(); token != "" || user != nil {
		t.Error("durable storage not cleared on logout")
	}
	if _, live, _ := dialer.stats(); live != 0 {
		t.Error("push connection still live after logout")
	}

	// Logging out again when already signed out changes nothing.
	s.Logout()
	s.Logout()
	checkCoupling(t, s)
	if len(s.Notifications()) != 0 {
		t.Error("notification log not empty after logout")
	}
}

func TestBootstrapWithoutCredential(t *testing.T) {
	auth := &fakeAuth{}
	s := newTestStore(t, auth, &fakeCreds{}, &fakeDialer{})

	if !s.Loading() {
		t.Fatal("loading should be true before bootstrap")
	}
	s.Bootstrap(context.Background())

	if s.Loading() {
		t.Error("loading still true after bootstrap")
	}
	checkCoupling(t, s)
	if auth.meCalls != 0 {
		t.Errorf("meCalls = %d, want no identity lookup without a credential", auth.meCalls)
	}
}

func TestBootstrapRefreshesIdentity(t *testing.T) {
	stale := ngoUser()
	stale.Name = "Old Name"
	fresh := ngoUser()

	auth := &fakeAuth{meResp: fresh}
	creds := &fakeCreds{token: "tok-stored", user: stale}
	dialer := &fakeDialer{}
	s := newTestStore(t, auth, creds, dialer)

	s.Bootstrap(context.Background())

	checkCoupling(t, s)
	if got := s.User(); got == nil || got.Name != "Helping Hands" {
		t.Errorf("user = %+v, want refreshed identity", got)
	}
	if _, storedUser := creds.stored(); storedUser == nil || storedUser.Name != "Helping Hands" {
		t.Error("refreshed identity not re-persisted")
	}
	if _, live, _ := dialer.stats(); live != 1 {
		t.Error("no push connection after successful bootstrap")
	}
}

func TestBootstrapFailureLogsOut(t *testing.T) {
	auth := &fakeAuth{meErr: &api.Error{Kind: api.KindUnauthorized, StatusCode: 401, Message: "expired"}}
	creds := &fakeCreds{token: "tok-stale", user: ngoUser()}
	s := newTestStore(t, auth, creds, &fakeDialer{})

	s.Bootstrap(context.Background())

	if s.Loading() {
		t.Error("loading still true after failed bootstrap")
	}
	checkCoupling(t, s)
	if s.User() != nil {
		t.Error("identity survived a failed rehydration check")
	}
	if token, user := creds.stored(); token != "" || user != nil {
		t.Error("durable storage survived a failed rehydration check")
	}
}

func TestBootstrapRunsOnce(t *testing.T) {
	auth := &fakeAuth{meResp: ngoUser()}
	creds := &fakeCreds{token: "tok", user: ngoUser()}
	s := newTestStore(t, auth, creds, &fakeDialer{})

	s.Bootstrap(context.Background())
	s.Bootstrap(context.Background())

	if auth.meCalls != 1 {
		t.Errorf("meCalls = %d, want exactly one identity lookup", auth.meCalls)
	}
	if s.Loading() {
		t.Error("loading true after repeated bootstrap")
	}
}

func TestUnauthorizedPolicyTearsDownSession(t *testing.T) {
	auth := &fakeAuth{loginResp: &api.AuthResponse{Token: "tok", User: *ngoUser()}}
	creds := &fakeCreds{}
	dialer := &fakeDialer{}
	s := newTestStore(t, auth, creds, dialer)

	if err := s.Login(context.Background(), api.Credentials{}); err != nil {
		t.Fatalf("login: %v", err)
	}
	dialer.lastFeed().events <- realtime.Event{Name: model.EventNewListing, Payload: json.RawMessage(`{}`)}
	waitFor(t, func() bool { return len(s.Notifications()) == 1 }, "notification ingest")

	s.HandleUnauthorized()

	checkCoupling(t, s)
	if s.User() != nil || s.Token() != "" {
		t.Error("session survived the unauthorized policy")
	}
	if len(s.Notifications()) != 0 {
		t.Error("notification log survived the unauthorized policy")
	}
	if token, user := creds.stored(); token != "" || user != nil {
		t.Error("durable storage survived the unauthorized policy")
	}

	expired := false
	for done := false; !done; {
		select {
		case u := <-s.Updates():
			if u == UpdateExpired {
				expired = true
				done = true
			}
		default:
			done = true
		}
	}
	if !expired {
		t.Error("no redirect signal emitted by the unauthorized policy")
	}
}

func TestNotificationLogBound(t *testing.T) {
	auth := &fakeAuth{loginResp: &api.AuthResponse{Token: "tok", User: *ngoUser()}}
	dialer := &fakeDialer{}
	s := newTestStore(t, auth, &fakeCreds{}, dialer)

	if err := s.Login(context.Background(), api.Credentials{}); err != nil {
		t.Fatalf("login: %v", err)
	}

	feed := dialer.lastFeed()
	for i := 1; i <= 21; i++ {
		payload := fmt.Sprintf(`{"seq":%d}`, i)
		feed.events <- realtime.Event{Name: model.EventNewListing, Payload: json.RawMessage(payload)}
	}

	waitFor(t, func() bool {
		log := s.Notifications()
		return len(log) == MaxNotifications && string(log[0].Payload) == `{"seq":21}`
	}, "21 events to settle")

	log := s.Notifications()
	if len(log) != MaxNotifications {
		t.Fatalf("log length = %d, want %d", len(log), MaxNotifications)
	}
	// Newest first: e21 at the head, e2 at the tail, e1 evicted.
	for i, n := range log {
		want := fmt.Sprintf(`{"seq":%d}`, 21-i)
		if string(n.Payload) != want {
			t.Fatalf("log[%d].payload = %s, want %s", i, n.Payload, want)
		}
		if n.Read {
			t.Errorf("log[%d] arrived already read", i)
		}
		if n.ID == "" {
			t.Errorf("log[%d] has no id", i)
		}
	}
}

func TestSingleConnectionAcrossCredentialChange(t *testing.T) {
	auth := &fakeAuth{loginResp: &api.AuthResponse{Token: "tok-a", User: *ngoUser()}}
	dialer := &fakeDialer{}
	s := newTestStore(t, auth, &fakeCreds{}, dialer)

	if err := s.Login(context.Background(), api.Credentials{}); err != nil {
		t.Fatalf("login a: %v", err)
	}
	firstFeed := dialer.lastFeed()

	// Sign in again with a different credential.
	auth.loginResp = &api.AuthResponse{Token: "tok-b", User: *ngoUser()}
	if err := s.Login(context.Background(), api.Credentials{}); err != nil {
		t.Fatalf("login b: %v", err)
	}

	dials, live, maxLive := dialer.stats()
	if dials != 2 {
		t.Errorf("dials = %d, want 2", dials)
	}
	if live != 1 {
		t.Errorf("live connections = %d, want 1", live)
	}
	if maxLive != 1 {
		t.Errorf("max simultaneous connections = %d, want 1", maxLive)
	}

	// An event still draining from the replaced connection's sequence
	// must not reach the log.
	before := len(s.Notifications())
	s.mu.Lock()
	staleGen := s.feedGen - 1
	s.mu.Unlock()
	s.ingest(realtime.Event{Name: model.EventNewTask}, staleGen)
	if got := len(s.Notifications()); got != before {
		t.Errorf("stale connection fed the log: %d -> %d entries", before, got)
	}
	if !firstFeed.isClosed() {
		t.Error("replaced connection left open")
	}

	if dialer.tokens[1] != "tok-b" {
		t.Errorf("second connection dialed with %q, want tok-b", dialer.tokens[1])
	}
}

func TestMarkAllNotificationsRead(t *testing.T) {
	auth := &fakeAuth{loginResp: &api.AuthResponse{Token: "tok", User: *ngoUser()}}
	dialer := &fakeDialer{}
	s := newTestStore(t, auth, &fakeCreds{}, dialer)

	if err := s.Login(context.Background(), api.Credentials{}); err != nil {
		t.Fatalf("login: %v", err)
	}
	feed := dialer.lastFeed()

	feed.events <- realtime.Event{Name: model.EventNewListing}
	feed.events <- realtime.Event{Name: model.EventNewTask}
	waitFor(t, func() bool { return len(s.Notifications()) == 2 }, "two notifications")

	if s.UnreadCount() != 2 {
		t.Fatalf("unread = %d, want 2", s.UnreadCount())
	}
	s.MarkAllNotificationsRead()
	if s.UnreadCount() != 0 {
		t.Errorf("unread = %d after mark all read, want 0", s.UnreadCount())
	}

	// An entry arriving afterward is unread.
	feed.events <- realtime.Event{Name: model.EventFoodPicked}
	waitFor(t, func() bool { return len(s.Notifications()) == 3 }, "third notification")
	if s.UnreadCount() != 1 {
		t.Errorf("unread = %d after new arrival, want 1", s.UnreadCount())
	}
}

func TestStaleFeedEventAfterLogoutIsDropped(t *testing.T) {
	auth := &fakeAuth{loginResp: &api.AuthResponse{Token: "tok", User: *ngoUser()}}
	dialer := &fakeDialer{}
	s := newTestStore(t, auth, &fakeCreds{}, dialer)

	if err := s.Login(context.Background(), api.Credentials{}); err != nil {
		t.Fatalf("login: %v", err)
	}
	s.Logout()

	if len(s.Notifications()) != 0 {
		t.Error("log not empty after logout")
	}
	if _, live, _ := dialer.stats(); live != 0 {
		t.Error("connection still live after logout")
	}
}
