package job

import (
	"go-wingo/internal/http-server/handlers/event"
)

// RevealEventJob pushes a round-revealed notification off the scheduler's
// hot path.
type RevealEventJob struct {
	EventMessage event.Message
	Event        *event.PusherEvent
}

func (job *RevealEventJob) Execute() {
	if job.Event == nil {
		return
	}

	_ = job.Event.TriggerEvent(job.EventMessage)
}
