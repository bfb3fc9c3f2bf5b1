package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"classroom-quiz/internal/app"
	"classroom-quiz/internal/domain"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 64
)

// WSOptions configures the websocket endpoint.
type WSOptions struct {
	AllowedOrigins []string
	ReadLimit      int64
}

type WSHandler struct {
	service   *app.QuizService
	log       logrus.FieldLogger
	upgrader  websocket.Upgrader
	readLimit int64
}

func NewWSHandler(service *app.QuizService, log logrus.FieldLogger, opts WSOptions) *WSHandler {
	allowed := opts.AllowedOrigins
	return &WSHandler{
		service:   service,
		log:       log,
		readLimit: opts.ReadLimit,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return originAllowed(allowed, r.Header.Get("Origin"))
			},
		},
	}
}

// originAllowed accepts requests without an Origin (non-browser clients),
// any origin when the list is empty or contains "*", and listed origins.
func originAllowed(allowed []string, origin string) bool {
	if origin == "" || len(allowed) == 0 {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	normalized := strings.ToLower(u.Scheme + "://" + u.Host)
	for _, a := range allowed {
		if a == "*" || strings.ToLower(strings.TrimRight(a, "/")) == normalized {
			return true
		}
	}
	return false
}

// connection is the per-socket state. bind and unbind run on the read goroutine only.
type connection struct {
	id         string
	handler    *WSHandler
	log        logrus.FieldLogger
	send       chan outboundMessage
	writerDone chan struct{}
	sub        *subscription
}

type subscription struct {
	pin    string
	cancel func()
	stop   chan struct{}
	done   chan struct{}
}

// ServeWS upgrades HTTP requests to websockets and routes their events to rooms.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	id := uuid.NewString()
	c := &connection{
		id:         id,
		handler:    h,
		log:        h.log.WithField("conn", id),
		send:       make(chan outboundMessage, sendBuffer),
		writerDone: make(chan struct{}),
	}
	c.log.Debug("connection opened")

	go c.writePump(conn)

	if h.readLimit > 0 {
		conn.SetReadLimit(h.readLimit)
	}
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	ctx := r.Context()
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.WithError(err).Debug("ws read error")
			}
			break
		}
		c.dispatch(ctx, inbound)
	}

	c.unbind()
	close(c.send)
	<-c.writerDone
	c.log.Debug("connection closed")
}

func (c *connection) writePump(conn *websocket.Conn) {
	defer close(c.writerDone)
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				c.log.WithError(err).Debug("ws write error")
				// Unblock the reader so the connection is torn down.
				conn.Close()
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				conn.Close()
				return
			}
		}
	}
}

// push queues a message for the writer. It reports false once the writer has stopped.
func (c *connection) push(msg outboundMessage) bool {
	select {
	case c.send <- msg:
		return true
	case <-c.writerDone:
		return false
	}
}

// bind moves the connection onto a room's broadcast stream.
func (c *connection) bind(pin string, events <-chan domain.Event, cancel func()) {
	c.unbind()

	sub := &subscription{
		pin:    pin,
		cancel: cancel,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go func() {
		defer close(sub.done)
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				if !c.push(outboundMessage{Event: ev.Name, Payload: ev.Payload}) {
					return
				}
			case <-sub.stop:
				return
			}
		}
	}()
	c.sub = sub
}

func (c *connection) unbind() {
	sub := c.sub
	if sub == nil {
		return
	}
	c.sub = nil
	close(sub.stop)
	<-sub.done
	sub.cancel()
	c.handler.service.Release(sub.pin)
}

func (c *connection) dispatch(ctx context.Context, in inboundMessage) {
	svc := c.handler.service

	switch in.Event {
	case eventJoin:
		var p joinPayload
		if !c.decode(in, &p) {
			return
		}
		pin, ok := c.pin(in.Event, p.Pin)
		if !ok {
			return
		}
		var student *domain.Student
		if s, ok := domain.NewStudent(p.Student); ok {
			student = &s
		}
		events, cancel := svc.Join(ctx, pin, student)
		c.bind(pin, events, cancel)

	case eventMetaSet:
		var p metaPayload
		if !c.decode(in, &p) {
			return
		}
		if pin, ok := c.pin(in.Event, p.Pin); ok {
			svc.SetMeta(ctx, pin, p.Meta)
		}

	case eventQuestionShow:
		var p showPayload
		if !c.decode(in, &p) {
			return
		}
		pin, ok := c.pin(in.Event, p.Pin)
		if !ok {
			return
		}
		if p.Question != nil {
			svc.ShowQuestion(ctx, pin, *p.Question)
			return
		}
		quizID := domain.String(p.QuizID)
		if quizID == "" {
			c.log.WithField("pin", pin).Debug("question:show without question or quizId")
			return
		}
		if _, err := svc.ShowFromBank(ctx, pin, quizID, domain.Int(p.QuestionIndex, 0)); err != nil {
			c.log.WithError(err).WithFields(logrus.Fields{"pin": pin, "quizId": quizID}).Warn("show question from bank")
		}

	case eventAnswer:
		var p domain.ChoiceInput
		if !c.decode(in, &p) {
			return
		}
		pin, ok := c.pin(in.Event, p.Pin)
		if !ok {
			return
		}
		if sub, ok := domain.NewChoiceSubmission(p); ok {
			svc.SubmitChoice(ctx, pin, sub)
		}

	case eventAnswerInput:
		var p domain.InputAnswerInput
		if !c.decode(in, &p) {
			return
		}
		pin, ok := c.pin(in.Event, p.Pin)
		if !ok {
			return
		}
		if sub, ok := domain.NewInputSubmission(p); ok {
			svc.SubmitInput(ctx, pin, sub)
		}

	case eventMatchAttempt:
		correct := false
		var p domain.MatchInput
		if c.decode(in, &p) {
			if pin, ok := c.pin(in.Event, p.Pin); ok {
				if att, ok := domain.NewMatchAttempt(p); ok {
					correct = svc.AttemptMatch(ctx, pin, att)
				}
			}
		}
		c.push(outboundMessage{Event: eventMatchResult, Payload: matchResult{Correct: correct}, Ack: in.Ack})

	case eventReveal:
		var p domain.RevealInput
		if !c.decode(in, &p) {
			return
		}
		if pin, ok := c.pin(in.Event, p.Pin); ok {
			svc.Reveal(ctx, pin, p)
		}

	case eventFinish:
		var p finishPayload
		if !c.decode(in, &p) {
			return
		}
		pin, ok := c.pin(in.Event, p.Pin)
		if !ok {
			return
		}
		var summary finishSummary
		_ = json.Unmarshal(p.Payload, &summary)
		svc.Finish(ctx, pin, domain.Int(summary.Total, 0), domain.QuizFinished(p.Payload))

	case eventLeave:
		var p leavePayload
		if !c.decode(in, &p) {
			return
		}
		if pin, ok := c.pin(in.Event, p.Pin); ok {
			svc.Leave(ctx, pin, domain.StudentID(p.StudentID))
		}

	default:
		c.log.WithField("event", in.Event).Debug("unsupported event")
	}
}

func (c *connection) decode(in inboundMessage, v any) bool {
	if len(in.Payload) == 0 {
		c.log.WithField("event", in.Event).Debug("empty payload")
		return false
	}
	if err := json.Unmarshal(in.Payload, v); err != nil {
		c.log.WithError(err).WithField("event", in.Event).Debug("invalid payload")
		return false
	}
	return true
}

func (c *connection) pin(event string, raw any) (string, bool) {
	pin := domain.Pin(raw)
	if pin == "" {
		c.log.WithError(domain.ErrMissingPin).WithField("event", event).Debug("event ignored")
		return "", false
	}
	return pin, true
}
