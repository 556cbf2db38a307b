package realtime

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/foodbridge/cli/internal/model"
)

// Event is one named push event received from the stream.
type Event struct {
	Name    model.EventName
	Payload json.RawMessage
}

// Dialer opens authenticated connections to the FoodBridge event
// stream. The zero value is not usable; set URL first.
type Dialer struct {
	// URL is the text/event-stream endpoint.
	URL string

	// HTTPClient is the client used for the long-lived stream request.
	// It must not carry a request timeout. Nil means a dedicated
	// default client.
	HTTPClient *http.Client

	// Logger receives connection lifecycle entries. Nil disables them.
	// Lifecycle events are observability only and never surface as
	// notifications.
	Logger *log.Logger
}

// Dial opens one push connection authenticated with token. The caller
// owns the returned Conn and must Close it.
func (d *Dialer) Dial(token string) (*Conn, error) {
	httpClient := d.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	ctx, cancel := context.WithCancel(context.Background())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.URL, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("creating stream request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := httpClient.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("connecting to event stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("event stream refused: status %d", resp.StatusCode)
	}

	c := &Conn{
		events: make(chan Event, 16),
		cancel: cancel,
		logger: d.Logger,
	}
	c.logf("event stream connected: %s", d.URL)
	go c.readLoop(resp.Body)

	return c, nil
}

// Conn is a single live connection to the event stream. Events arrive
// on the channel returned by Events, which is closed when the
// connection ends for any reason.
type Conn struct {
	events    chan Event
	cancel    context.CancelFunc
	closeOnce sync.Once
	logger    *log.Logger
}

// Events returns the inbound event sequence. Only the six subscribed
// event names appear here; comments, heartbeats, and unknown events
// are dropped.
func (c *Conn) Events() <-chan Event {
	return c.events
}

// Close tears the connection down. It is safe to call any number of
// times, including after the transport already failed.
func (c *Conn) Close() {
	c.closeOnce.Do(c.cancel)
}

// readLoop parses text/event-stream frames until the body ends, then
// closes the events channel.
func (c *Conn) readLoop(body io.ReadCloser) {
	defer body.Close()
	defer close(c.events)

	var (
		eventName string
		data      strings.Builder
	)

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case line == "":
			c.dispatch(eventName, data.String())
			eventName = ""
			data.Reset()
		case strings.HasPrefix(line, ":"):
			// Comment / heartbeat.
		case strings.HasPrefix(line, "event:"):
			eventName = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		}
	}

	// The transport reports a read error both on remote disconnect and
	// on local Close; neither is surfaced to the user.
	if err := scanner.Err(); err != nil {
		c.logf("event stream disconnected: %v", err)
	} else {
		c.logf("event stream closed by server")
	}
}

// dispatch forwards one complete frame if it is a subscribed event.
func (c *Conn) dispatch(name, data string) {
	event := model.EventName(name)
	if !event.Known() {
		return
	}
	c.events <- Event{
		Name:    event,
		Payload: json.RawMessage(data),
	}
}

func (c *Conn) logf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Printf(format, args...)
	}
}
