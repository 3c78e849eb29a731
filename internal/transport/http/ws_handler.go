package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"blindpick-service/internal/app"
	"blindpick-service/internal/domain"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

// Connection roles. The host is the moderator console and drives the control
// boundary; audience connections are a read-only projection of show state.
const (
	RoleHost     = "host"
	RoleAudience = "audience"
)

var errInvalidPayload = errors.New("invalid payload")

type WSHandler struct {
	service  *app.ShowService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.ShowService) *WSHandler {
	return &WSHandler{
		service: service,
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

type setupPayload struct {
	Players []string `json:"players"`
	Pack    string   `json:"pack"`
}

type answersPayload struct {
	Answers map[string]string `json:"answers"`
}

type selectPayload struct {
	Player string `json:"player"`
	Row    int    `json:"row"`
}

type rowPayload struct {
	Row int `json:"row"`
}

type gotoPayload struct {
	Round int `json:"round"`
}

type playbackPayload struct {
	Action string `json:"action"`
}

type volumePayload struct {
	Level int `json:"level"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type readyPayload struct {
	ShowID string `json:"showId"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the show
// use cases. Hosts may omit the show id and get a fresh one minted.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	showID := r.URL.Query().Get("show")
	role := r.URL.Query().Get("role")
	if role == "" {
		role = RoleHost
	}
	if role != RoleHost && role != RoleAudience {
		http.Error(w, "unknown role", http.StatusBadRequest)
		return
	}
	if role == RoleAudience && showID == "" {
		http.Error(w, "missing show id", http.StatusBadRequest)
		return
	}
	if showID == "" {
		showID = uuid.NewString()
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	if role == RoleAudience {
		h.serveAudience(r, conn, showID)
		return
	}
	h.serveHost(r, conn, showID)
}

func (h *WSHandler) serveAudience(r *http.Request, conn *websocket.Conn, showID string) {
	updates, cancel, err := h.service.Subscribe(r.Context(), showID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()
	defer h.service.Leave(r.Context(), showID)

	done := make(chan struct{})
	go func() {
		defer close(done)
		// Audience displays never send commands; this loop only notices disconnects.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case snap, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(outboundMessage[domain.ShowSnapshot]{Type: "snapshot", Payload: snap.Masked()}); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (h *WSHandler) serveHost(r *http.Request, conn *websocket.Conn, showID string) {
	ctx := r.Context()
	h.service.Open(ctx, showID)

	updates, cancel, err := h.service.Subscribe(ctx, showID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()
	defer h.service.Leave(ctx, showID)

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// Single writer goroutine; gorilla connections reject concurrent writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
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
				}
			case <-closeSignals:
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "ready", Payload: readyPayload{ShowID: showID}}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if err := h.dispatch(ctx, showID, inbound, send); err != nil {
			// Sequencing and config errors are guidance for the moderator;
			// core state is unchanged.
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func (h *WSHandler) dispatch(ctx context.Context, showID string, inbound inboundMessage, send chan<- outboundMessage[any]) error {
	switch inbound.Type {
	case "setup":
		var payload setupPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errInvalidPayload
		}
		_, err := h.service.Setup(ctx, showID, payload.Pack, payload.Players)
		return err
	case "answers":
		var payload answersPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errInvalidPayload
		}
		_, err := h.service.SubmitAnswers(ctx, showID, payload.Answers)
		return err
	case "shuffle":
		_, err := h.service.Shuffle(ctx, showID)
		return err
	case "select":
		var payload selectPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errInvalidPayload
		}
		return h.service.Select(ctx, showID, payload.Player, domain.DisplayRow(payload.Row))
	case "reveal":
		var payload rowPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errInvalidPayload
		}
		delta, _, err := h.service.Reveal(ctx, showID, domain.DisplayRow(payload.Row))
		if err != nil {
			return err
		}
		send <- outboundMessage[any]{Type: "scoreDelta", Payload: delta}
		return nil
	case "goto":
		var payload gotoPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errInvalidPayload
		}
		return h.service.GotoRound(ctx, showID, payload.Round)
	case "nextRound":
		return h.service.NextRound(ctx, showID)
	case "prevRound":
		return h.service.PrevRound(ctx, showID)
	case "playback":
		var payload playbackPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errInvalidPayload
		}
		switch payload.Action {
		case "play":
			return h.service.SetPlayback(ctx, showID, domain.PlaybackPlaying)
		case "pause":
			return h.service.SetPlayback(ctx, showID, domain.PlaybackPaused)
		case "stop":
			return h.service.SetPlayback(ctx, showID, domain.PlaybackStopped)
		default:
			return errors.New("unsupported playback action")
		}
	case "volume":
		var payload volumePayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errInvalidPayload
		}
		return h.service.SetVolume(ctx, showID, payload.Level)
	default:
		return errors.New("unsupported message type")
	}
}
