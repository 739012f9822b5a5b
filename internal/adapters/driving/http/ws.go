package http

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v5"

	"github.com/custodia-labs/urbanbot/internal/core/domain"
	"github.com/custodia-labs/urbanbot/internal/logger"
)

const (
	wsWriteWait = 10 * time.Second
	wsPongWait  = 60 * time.Second
	wsPingEvery = (wsPongWait * 9) / 10

	// wsMaxMessage caps one inbound frame; questions are short.
	wsMaxMessage = 8 << 10

	// wsQueueDepth is how many questions may wait behind the one being answered.
	wsQueueDepth = 4
)

// Inbound and outbound frame types.
const (
	wsTypeAsk    = "ask"
	wsTypePing   = "ping"
	wsTypeReady  = "ready"
	wsTypeAnswer = "answer"
	wsTypePong   = "pong"
	wsTypeError  = "error"
)

// wsUpgrader keeps gorilla's same-origin check: a browser page may only
// open the chat when its Origin host matches the request Host. Clients
// that send no Origin, such as CLIs, are accepted.
var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type wsInbound struct {
	Type     string `json:"type"`
	ID       string `json:"id,omitempty"`
	Question string `json:"question,omitempty"`
}

type wsOutbound struct {
	Type    string       `json:"type"`
	ID      string       `json:"id,omitempty"`
	Answer  *askResponse `json:"answer,omitempty"`
	Code    string       `json:"code,omitempty"`
	Message string       `json:"message,omitempty"`
}

type wsQuestion struct {
	id       string
	question string
}

// chat serves a conversation over a websocket. Questions on one connection
// are answered in the order they arrive, one at a time.
func (s *Server) chat(c *echo.Context) error {
	conn, err := wsUpgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader has already written the HTTP error.
		logger.Debug("websocket upgrade failed: %v", err)
		return nil
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	conn.SetReadLimit(wsMaxMessage)
	if err := conn.SetReadDeadline(time.Now().Add(wsPongWait)); err != nil {
		return nil
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	out := make(chan wsOutbound, wsQueueDepth+2)
	writerDone := make(chan struct{})
	go wsWriter(ctx, cancel, conn, out, writerDone)

	questions := make(chan wsQuestion, wsQueueDepth)
	askerDone := make(chan struct{})
	go s.wsAsker(ctx, questions, out, askerDone)

	push(ctx, out, wsOutbound{Type: wsTypeReady})

	for {
		var in wsInbound
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("websocket closed: %v", err)
			}
			break
		}

		switch strings.ToLower(strings.TrimSpace(in.Type)) {
		case wsTypePing:
			push(ctx, out, wsOutbound{Type: wsTypePong, ID: in.ID})
		case wsTypeAsk:
			q := strings.TrimSpace(in.Question)
			if q == "" {
				push(ctx, out, wsOutbound{Type: wsTypeError, ID: in.ID, Code: "invalid_argument", Message: "question required"})
				continue
			}
			select {
			case questions <- wsQuestion{id: in.ID, question: q}:
			default:
				push(ctx, out, wsOutbound{Type: wsTypeError, ID: in.ID, Code: "busy", Message: "too many questions pending"})
			}
		default:
			push(ctx, out, wsOutbound{Type: wsTypeError, ID: in.ID, Code: "invalid_argument", Message: "unknown type " + strconv.Quote(in.Type)})
		}
	}

	cancel()
	<-askerDone
	<-writerDone
	return nil
}

// wsAsker answers queued questions sequentially.
func (s *Server) wsAsker(ctx context.Context, questions <-chan wsQuestion, out chan<- wsOutbound, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case q := <-questions:
			answer, err := s.ports.Assistant.Ask(ctx, q.question)
			if err != nil && !errors.Is(err, domain.ErrGenerationFailed) {
				push(ctx, out, wsOutbound{Type: wsTypeError, ID: q.id, Code: "internal", Message: err.Error()})
				continue
			}
			resp := newAskResponse(answer)
			push(ctx, out, wsOutbound{Type: wsTypeAnswer, ID: q.id, Answer: &resp})
		}
	}
}

// wsWriter owns all writes to conn, interleaving frames with keepalive pings.
// A failed write ends the session.
func wsWriter(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, out <-chan wsOutbound, done chan<- struct{}) {
	defer close(done)
	defer cancel()
	ticker := time.NewTicker(wsPingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			deadline := time.Now().Add(wsWriteWait)
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = conn.WriteControl(websocket.CloseMessage, msg, deadline)
			return
		case frame := <-out:
			if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
				return
			}
			if err := conn.WriteJSON(frame); err != nil {
				conn.Close()
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}

func push(ctx context.Context, out chan<- wsOutbound, frame wsOutbound) {
	select {
	case out <- frame:
	case <-ctx.Done():
	}
}
