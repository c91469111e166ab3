package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"golang.org/x/exp/slog"

	"go-wingo/internal/lib/logger/sl"
)

type Message struct {
	Channel string                 `json:"channel"`
	Event   string                 `json:"event"`
	Data    map[string]interface{} `json:"data"`
}

type Subscription struct {
	Conn    *websocket.Conn
	Channel string
}

// Hub relays wingo round and balance events to websocket subscribers.
// Clients subscribe by sending a message naming a channel; the publish
// endpoint fans a message out to every subscriber of its channel.
type Hub struct {
	channels    map[string]map[*websocket.Conn]bool
	broadcast   chan Message
	subscribe   chan Subscription
	unsubscribe chan *websocket.Conn
	log         *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		channels:    make(map[string]map[*websocket.Conn]bool),
		broadcast:   make(chan Message),
		subscribe:   make(chan Subscription),
		unsubscribe: make(chan *websocket.Conn),
		log:         log,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func (hub *Hub) run() {
	for {
		select {
		case sub := <-hub.subscribe:
			if hub.channels[sub.Channel] == nil {
				hub.channels[sub.Channel] = make(map[*websocket.Conn]bool)
			}
			hub.channels[sub.Channel][sub.Conn] = true
		case conn := <-hub.unsubscribe:
			for _, receivers := range hub.channels {
				delete(receivers, conn)
			}
		case message := <-hub.broadcast:
			receivers, ok := hub.channels[message.Channel]
			if !ok {
				continue
			}

			data, err := json.Marshal(message)
			if err != nil {
				hub.log.Error("failed to marshal message", sl.Err(err))

				continue
			}

			hub.log.Info("broadcasting message",
				sl.String("channel", message.Channel),
				sl.String("event", message.Event))

			for conn := range receivers {
				if err = conn.WriteMessage(websocket.TextMessage, data); err != nil {
					hub.log.Error("failed to write message", sl.Err(err))
				}
			}
		}
	}
}

// HandleConnection upgrades a client and treats every inbound message as a
// channel subscription request.
func (hub *Hub) HandleConnection(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.log.Error("failed to upgrade connection", sl.Err(err))

		return
	}

	defer func() {
		hub.unsubscribe <- ws

		if err = ws.Close(); err != nil {
			hub.log.Error("failed to close connection", sl.Err(err))
		}
	}()

	for {
		var message Message

		_, p, err := ws.ReadMessage()
		if err != nil {
			return
		}

		if err = json.Unmarshal(p, &message); err != nil {
			hub.log.Error("failed to unmarshal message", sl.Err(err))

			continue
		}

		hub.subscribe <- Subscription{Conn: ws, Channel: message.Channel}
	}
}

// HandlePublish accepts a message from the engine process and fans it out.
func (hub *Hub) HandlePublish(w http.ResponseWriter, r *http.Request) {
	var message Message

	if err := json.NewDecoder(r.Body).Decode(&message); err != nil {
		hub.log.Error("failed to decode publish request", sl.Err(err))

		w.WriteHeader(http.StatusBadRequest)

		return
	}

	hub.broadcast <- message

	w.WriteHeader(http.StatusAccepted)
}

func (hub *Hub) RunServer() {
	go hub.run()
}
