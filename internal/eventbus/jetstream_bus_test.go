package eventbus

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/annel0/footstep-fx/internal/vec"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Адрес NATS с JetStream, например nats://127.0.0.1:4222
const natsTestEnv = "FOOTSTEP_TEST_NATS"

func setupJetStreamBus(t *testing.T) *JetStreamBus {
	t.Helper()
	url := os.Getenv(natsTestEnv)
	if url == "" {
		t.Skipf("%s не задан, тест JetStream пропущен", natsTestEnv)
	}

	// Свой стрим на тест, чтобы durable consumer не получил чужие сообщения
	suffix := strings.ReplaceAll(uuid.NewString()[:8], "-", "")
	bus, err := NewJetStreamBus(JetStreamConfig{
		URL:           url,
		Stream:        "FOOTSTEPS_TEST_" + suffix,
		SubjectPrefix: "footstep_test_" + suffix,
		Retention:     time.Minute,
	})
	require.NoError(t, err, "Не удалось подключиться к NATS")
	t.Cleanup(func() {
		_ = bus.js.DeleteStream(bus.cfg.Stream)
		bus.Close()
	})
	return bus
}

func TestJetStreamBusRoundTrip(t *testing.T) {
	bus := setupJetStreamBus(t)
	c := &collector{}

	sub, err := bus.Subscribe(context.Background(), Filter{Types: []string{EventFootstepSound}}, c.handle)
	require.NoError(t, err)
	defer sub.Unsubscribe()

	pub := NewEffectPublisher(bus, "footstep-sim", "hero")
	pub.Audio().PlayAt("sfx/grass", vec.Vec3Float{Z: 90})
	pub.Decals().SpawnAt("decal/grass", vec.Vec3Float{X: 1}, vec.Vec3Float{}, vec.Rotator{}, 10)

	require.Eventually(t, func() bool { return bus.Metrics().Consumed == 1 }, 5*time.Second, 20*time.Millisecond)
	require.Len(t, c.snapshot(), 1)

	ev := c.snapshot()[0]
	assert.Equal(t, EventFootstepSound, ev.EventType)
	assert.Equal(t, "footstep-sim", ev.Source)
	assert.Equal(t, uint64(2), bus.Metrics().Published)
	assert.Zero(t, bus.Metrics().Dropped)
}
