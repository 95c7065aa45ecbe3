package fanout

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alicebob/miniredis/v2"

	"github.com/jrennick/gambit/internal/broker"
	"github.com/jrennick/gambit/internal/models"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return log
}

func TestRegistrySubscribeDispatch(t *testing.T) {
	r := NewRegistry(testLogger())
	gameA, gameB := uuid.New(), uuid.New()

	subA1 := r.Subscribe(gameA, uuid.New())
	subA2 := r.Subscribe(gameA, uuid.New())
	subB := r.Subscribe(gameB, uuid.New())

	assert.Equal(t, 2, r.Count(gameA))
	assert.Equal(t, 1, r.Count(gameB))

	n := r.Dispatch(gameA, []byte("frame-a"))
	assert.Equal(t, 2, n, "only game A subscribers receive game A frames")

	assert.Equal(t, []byte("frame-a"), <-subA1.Send())
	assert.Equal(t, []byte("frame-a"), <-subA2.Send())
	select {
	case f := <-subB.Send():
		t.Fatalf("game B subscriber received stray frame %q", f)
	default:
	}
}

func TestRegistryUnsubscribeIdempotent(t *testing.T) {
	r := NewRegistry(testLogger())
	game := uuid.New()
	sub := r.Subscribe(game, uuid.New())

	r.Unsubscribe(sub)
	assert.Equal(t, 0, r.Count(game))

	_, open := <-sub.Send()
	assert.False(t, open, "send channel closes on unsubscribe")

	// Double unsubscribe must not panic on a closed channel.
	r.Unsubscribe(sub)
}

func TestDispatchDropsWhenSubscriberIsSlow(t *testing.T) {
	r := NewRegistry(testLogger())
	game := uuid.New()
	sub := r.Subscribe(game, uuid.New())

	// Nobody drains; fill the buffer and then some.
	for i := 0; i < sendBuffer; i++ {
		require.Equal(t, 1, r.Dispatch(game, []byte("x")))
	}
	assert.Equal(t, 0, r.Dispatch(game, []byte("overflow")), "a full buffer drops instead of blocking")
	assert.Len(t, sub.Send(), sendBuffer)
}

// TestCrossProcessFanout runs two registries with their own relays against the
// same Redis, the multi-process topology in miniature: an event published by
// one process reaches subscribers held by the other.
func TestCrossProcessFanout(t *testing.T) {
	mr := miniredis.RunT(t)
	log := testLogger()

	rdbA, err := broker.Connect(mr.Addr(), 0)
	require.NoError(t, err)
	t.Cleanup(func() { rdbA.Close() })
	rdbB, err := broker.Connect(mr.Addr(), 0)
	require.NoError(t, err)
	t.Cleanup(func() { rdbB.Close() })

	brokerA := broker.NewRedis(rdbA, "", "", log)
	brokerB := broker.NewRedis(rdbB, "", "", log)

	regA := NewRegistry(log)
	regB := NewRegistry(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go NewRelay(regA, brokerA, log).Run(ctx)
	go NewRelay(regB, brokerB, log).Run(ctx)

	// Give both relays a moment to establish their subscriptions.
	time.Sleep(100 * time.Millisecond)

	game := uuid.New()
	subA := regA.Subscribe(game, uuid.New())
	subB := regB.Subscribe(game, uuid.New())

	// "Process A" applies a mutation and publishes.
	ev := broker.Event{
		Type:        broker.EventGameUpdate,
		GameID:      game,
		Status:      models.StatusPlaying,
		CurrentTurn: models.Black,
		MoveCount:   3,
	}
	require.NoError(t, brokerA.Publish(ctx, ev))

	for name, sub := range map[string]*Subscriber{"local": subA, "remote": subB} {
		select {
		case frame := <-sub.Send():
			assert.Contains(t, string(frame), game.String(), "%s subscriber frame carries the game id", name)
			assert.Contains(t, string(frame), `"move_count":3`, "%s subscriber frame carries context", name)
		case <-time.After(5 * time.Second):
			t.Fatalf("%s subscriber never received the frame", name)
		}
	}
}
