package event

import (
	"github.com/pusher/pusher-http-go/v5"
	"golang.org/x/exp/slog"
)

type Message struct {
	Channel string                 `json:"channel"`
	Event   string                 `json:"event"`
	Data    map[string]interface{} `json:"data"`
}

type PusherEvent struct {
	log    *slog.Logger
	pusher *pusher.Client
}

func NewPusherEvent(log *slog.Logger, pusherClient *pusher.Client) *PusherEvent {
	return &PusherEvent{
		log:    log,
		pusher: pusherClient,
	}
}

func (p *PusherEvent) TriggerEvent(message Message) error {
	if err := p.pusher.Trigger(message.Channel, message.Event, message.Data); err != nil {
		p.log.Error("failed to trigger pusher event",
			slog.String("channel", message.Channel),
			slog.String("event", message.Event))

		return err
	}

	return nil
}
