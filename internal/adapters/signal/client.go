package signal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/semitha-uni-west/google-beet/internal/core"
	"github.com/semitha-uni-west/google-beet/internal/domain"
)

// SignalPath is where the server mounts the presence channel.
const SignalPath = "/api/ws/signal"

// PresenceHandler consumes presence as seen by one participant.
type PresenceHandler interface {
	Sync(members []core.MemberDTO)
	Apply(ev core.PresenceEvent)
}

// EndHandler is implemented by handlers that want to hear about the host
// ending the meeting.
type EndHandler interface {
	MeetingEnded(code domain.MeetingCode)
}

// RemoteError is an error frame sent by the server.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string { return "signal: " + e.Message }

// Client is the participant end of the presence channel.
type Client struct {
	conn    *websocket.Conn
	handler PresenceHandler

	writeMu sync.Mutex
	replies chan any
	done    chan struct{}
	once    sync.Once
}

// SignalURL turns an http(s) server base URL into the websocket endpoint.
func SignalURL(server string) (string, error) {
	u, err := url.Parse(server)
	if err != nil {
		return "", fmt.Errorf("parse server url: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + SignalPath
	return u.String(), nil
}

func Dial(ctx context.Context, server, token string, h PresenceHandler) (*Client, error) {
	target, err := SignalURL(server)
	if err != nil {
		return nil, err
	}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	ws, resp, err := websocket.DefaultDialer.DialContext(ctx, target, header)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return nil, domain.ErrAuthenticationRequired
		}
		return nil, fmt.Errorf("dial %s: %w", target, err)
	}

	c := &Client{
		conn:    ws,
		handler: h,
		replies: make(chan any, 1),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

func (c *Client) send(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

// Join enters the room of code and returns the server's view of it.
func (c *Client) Join(ctx context.Context, code domain.MeetingCode) (RoomStateMessage, error) {
	if err := c.send(JoinMessage{Type: TypeJoin, Meeting: string(code)}); err != nil {
		return RoomStateMessage{}, fmt.Errorf("send join: %w", err)
	}
	select {
	case <-ctx.Done():
		return RoomStateMessage{}, ctx.Err()
	case <-c.done:
		return RoomStateMessage{}, ErrConnClosed
	case r := <-c.replies:
		switch v := r.(type) {
		case RoomStateMessage:
			return v, nil
		case *RemoteError:
			return RoomStateMessage{}, v
		}
		return RoomStateMessage{}, errors.New("signal: unexpected reply")
	}
}

func (c *Client) Leave() error {
	return c.send(Envelope{Type: TypeLeave})
}

func (c *Client) Ping() error {
	return c.send(Envelope{Type: TypePing})
}

// Done is closed once the read loop stops.
func (c *Client) Done() <-chan struct{} { return c.done }

func (c *Client) Close() error {
	var err error
	c.once.Do(func() {
		c.writeMu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
		c.writeMu.Unlock()
		err = c.conn.Close()
	})
	return err
}

func (c *Client) reply(v any) {
	select {
	case c.replies <- v:
	default:
		log.Warn().Str("module", "signal.client").Msg("unclaimed reply dropped")
	}
}

func (c *Client) readLoop() {
	defer close(c.done)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("module", "signal.client").Msg("read")
			}
			return
		}
		c.dispatch(data)
	}
}

func (c *Client) dispatch(data []byte) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal.client").Msg("bad json")
		return
	}
	switch env.Type {
	case TypeRoomState:
		var m RoomStateMessage
		if err := json.Unmarshal(data, &m); err != nil {
			log.Error().Err(err).Str("module", "signal.client").Msg("bad room_state")
			return
		}
		if c.handler != nil {
			c.handler.Sync(m.Members)
		}
		c.reply(m)
	case TypePeerJoined, TypePeerLeft:
		var m PeerMessage
		if err := json.Unmarshal(data, &m); err != nil {
			log.Error().Err(err).Str("module", "signal.client").Msg("bad peer frame")
			return
		}
		if c.handler != nil {
			c.handler.Apply(core.PresenceEvent{Kind: core.PresenceKind(m.Type), Code: m.Meeting, Peer: m.Peer})
		}
	case TypeMeetingEnded:
		var m MeetingEndedMessage
		_ = json.Unmarshal(data, &m)
		if eh, ok := c.handler.(EndHandler); ok {
			eh.MeetingEnded(m.Meeting)
		}
	case TypeError:
		var m ErrorMessage
		_ = json.Unmarshal(data, &m)
		c.reply(&RemoteError{Message: m.Error})
	case TypePong, TypeLeft, TypeWhoAmI:
		log.Debug().Str("module", "signal.client").Str("type", env.Type).Msg("frame")
	default:
		log.Warn().Str("module", "signal.client").Str("type", env.Type).Msg("unknown frame")
	}
}
