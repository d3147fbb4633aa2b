package eventbus

import (
	"context"
	"encoding/json"

	"github.com/annel0/footstep-fx/internal/logging"
)

// StartLoggingListener подписывается на все события и пишет их в лог шины.
// Для событий шага дополнительно раскрывает итог. Функция неблокирующая.
func StartLoggingListener(bus EventBus) (Subscription, error) {
	log := logging.GetEventBusLogger()

	sub, err := bus.Subscribe(context.Background(), Filter{}, func(ctx context.Context, ev *Envelope) {
		log.Debug("[EventBus] %s %s src=%s prio=%d size=%dB", ev.ID, ev.EventType, ev.Source, ev.Priority, len(ev.Payload))

		if ev.EventType != EventFootstepStep {
			return
		}
		var step StepPayload
		if err := json.Unmarshal(ev.Payload, &step); err != nil {
			log.Warn("Повреждённое событие %s: %v", ev.ID, err)
			return
		}
		log.Trace("👣 %s %s -> %s (%s)", step.Actor, step.Foot, step.Outcome, step.Kind)
	})
	if err != nil {
		return nil, err
	}
	log.Info("🪵 LoggingListener: подписка на все события активирована")
	return sub, nil
}
