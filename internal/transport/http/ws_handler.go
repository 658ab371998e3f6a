package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"

	"verbiverse-quiz/internal/app"
	"verbiverse-quiz/internal/domain"
	"verbiverse-quiz/internal/infra/wallet"
)

// WSHandler serves one quiz screen per websocket connection. Connections of the same
// address share the address state and all receive its snapshots.
type WSHandler struct {
	service  *app.QuizService
	chainID  uint64
	upgrader websocket.Upgrader
}

// NewWSHandler requires clients to report chainID; 0 accepts any network.
func NewWSHandler(service *app.QuizService, chainID uint64) *WSHandler {
	return &WSHandler{
		service: service,
		chainID: chainID,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type startPayload struct {
	LanguagePair string `json:"languagePair"`
	BatchID      int    `json:"batchId"`
}

type answerPayload struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

type movePayload struct {
	Index int `json:"index"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type connectedPayload struct {
	Address       string               `json:"address"`
	LanguagePairs []domain.LanguagePair `json:"languagePairs"`
}

type viewPayload struct {
	Mode app.ViewMode `json:"mode"`
}

type historyPayload struct {
	Local  []domain.QuizSession `json:"local"`
	Ledger []domain.Submission  `json:"ledger,omitempty"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the quiz use cases.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	rawAddress := r.URL.Query().Get("address")
	if rawAddress == "" {
		http.Error(w, "missing address", http.StatusBadRequest)
		return
	}
	var chainID uint64
	if raw := r.URL.Query().Get("chainId"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 0, 64)
		if err != nil {
			http.Error(w, "invalid chainId", http.StatusBadRequest)
			return
		}
		chainID = parsed
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	userWallet := wallet.NewStatic(rawAddress, chainID, h.chainID)
	if err := userWallet.Connect(ctx); err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	address := userWallet.Address()

	updates, cancel := h.service.Subscribe(ctx, address)
	defer func() {
		cancel()
		h.service.Leave(ctx, address)
	}()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// single writer: gorilla connections support one concurrent writer
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				// unblock the read loop
				_ = conn.Close()
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "snapshot", Payload: update}:
				case <-closeSignals:
					return
				case <-writerDone:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	c := &wsConn{
		handler: h,
		wallet:  userWallet,
		address: address,
		view:    app.NewViewController(),
		send:    send,
		done:    writerDone,
	}
	c.push(outboundMessage[any]{Type: "connected", Payload: connectedPayload{Address: address, LanguagePairs: domain.LanguagePairs}})
	c.sendView(ctx)

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if err := c.handle(ctx, inbound); err != nil {
			c.sendError(err)
			continue
		}
		c.sendView(ctx)
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

// wsConn is the per-connection screen state; only the read loop touches it.
type wsConn struct {
	handler *WSHandler
	wallet  app.WalletProvider
	address string
	view    *app.ViewController
	send    chan<- outboundMessage[any]
	done    <-chan struct{}
}

// push queues msg for the writer; it drops msg once the writer has stopped.
func (c *wsConn) push(msg outboundMessage[any]) bool {
	select {
	case c.send <- msg:
		return true
	case <-c.done:
		return false
	}
}

var (
	errInvalidPayload = errors.New("invalid payload")
	errBlankAnswer    = errors.New("answer required before moving on")
	errNoNextQuestion = errors.New("no further question")
	errNoPrevQuestion = errors.New("already on the first question")
)

func (c *wsConn) handle(ctx context.Context, msg inboundMessage) error {
	service := c.handler.service
	switch msg.Type {
	case "start":
		var payload startPayload
		if err := decodePayload(msg.Payload, &payload); err != nil {
			return err
		}
		var err error
		if payload.BatchID > 0 {
			_, err = service.BeginBatch(ctx, c.wallet, payload.LanguagePair, payload.BatchID)
		} else {
			_, err = service.Begin(ctx, c.wallet, payload.LanguagePair)
		}
		if err != nil {
			return err
		}
		c.view.StartQuiz()
	case "answer":
		var payload answerPayload
		if err := decodePayload(msg.Payload, &payload); err != nil {
			return err
		}
		return service.Answer(ctx, c.address, payload.Index, payload.Text)
	case "move":
		var payload movePayload
		if err := decodePayload(msg.Payload, &payload); err != nil {
			return err
		}
		return service.Move(ctx, c.address, payload.Index)
	case "next":
		session, err := c.activeSession(ctx)
		if err != nil {
			return err
		}
		if !app.CanAdvance(session.Questions[session.CurrentQuestionIndex].UserAnswer) {
			return errBlankAnswer
		}
		next, ok := app.NextIndex(session)
		if !ok {
			return errNoNextQuestion
		}
		return service.Move(ctx, c.address, next)
	case "previous":
		session, err := c.activeSession(ctx)
		if err != nil {
			return err
		}
		prev, ok := app.PreviousIndex(session)
		if !ok {
			return errNoPrevQuestion
		}
		return service.Move(ctx, c.address, prev)
	case "complete":
		result, err := service.Finish(ctx, c.address)
		if err != nil {
			return err
		}
		c.view.Complete(result.Session)
		c.push(outboundMessage[any]{Type: "result", Payload: result})
	case "abandon":
		if err := service.Abandon(ctx, c.address); err != nil {
			return err
		}
		c.view.Exit()
	case "reset":
		service.Reset(ctx, c.address)
		c.view.GoHome()
	case "home":
		c.view.GoHome()
	case "history":
		local, err := service.History(ctx, c.address)
		if err != nil {
			return err
		}
		payload := historyPayload{Local: local}
		if ledger, err := service.LedgerHistory(ctx, c.address); err == nil {
			payload.Ledger = ledger
		} else if !errors.Is(err, domain.ErrLedgerUnavailable) {
			log.Printf("ledger history for %s: %v", c.address, err)
		}
		c.view.ViewHistory()
		c.push(outboundMessage[any]{Type: "history", Payload: payload})
	default:
		return errors.New("unsupported message type")
	}
	return nil
}

func (c *wsConn) activeSession(ctx context.Context) (*domain.QuizSession, error) {
	snap, err := c.handler.service.Snapshot(ctx, c.address)
	if err != nil {
		return nil, err
	}
	if snap.Session == nil {
		return nil, domain.ErrNoActiveSession
	}
	if snap.Session.Status != domain.StatusInProgress {
		return nil, domain.ErrSessionNotInProgress
	}
	return snap.Session, nil
}

func (c *wsConn) sendView(ctx context.Context) {
	var session *domain.QuizSession
	if snap, err := c.handler.service.Snapshot(ctx, c.address); err == nil {
		session = snap.Session
	}
	c.push(outboundMessage[any]{Type: "view", Payload: viewPayload{Mode: c.view.Render(session)}})
}

func (c *wsConn) sendError(err error) {
	c.push(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}})
}

func decodePayload(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errInvalidPayload
	}
	return nil
}
