package broadcast

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/dkeye/StudyHub/internal/config"
	"github.com/dkeye/StudyHub/internal/core"
	"github.com/dkeye/StudyHub/internal/domain"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type delivery struct {
	room   domain.RoomID
	except core.SessionID
	data   string
}

type chanFanout chan delivery

func (c chanFanout) Deliver(room domain.RoomID, except core.SessionID, data core.Frame) {
	c <- delivery{room: room, except: except, data: string(data)}
}

func receive(t *testing.T, c chanFanout) delivery {
	t.Helper()
	select {
	case d := <-c:
		return d
	case <-time.After(3 * time.Second):
		t.Fatal("no delivery")
	}
	return delivery{}
}

func runBackend(t *testing.T, b Backend) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
		_ = b.Close()
	})
	select {
	case <-b.Ready():
	case err := <-done:
		t.Fatalf("backend stopped early: %v", err)
	case <-time.After(3 * time.Second):
		t.Fatal("backend not ready")
	}
}

func TestLocal_DeliversSynchronously(t *testing.T) {
	req := require.New(t)
	fan := make(chanFanout, 1)
	b, err := New(context.Background(), config.BroadcastConfig{Backend: "local"}, fan)
	req.NoError(err)
	runBackend(t, b)

	req.NoError(b.Publish(context.Background(), "r1", "s1", core.Frame(`{"event":"x"}`)))
	req.Equal(delivery{room: "r1", except: "s1", data: `{"event":"x"}`}, <-fan)
}

func TestNew_UnknownBackend(t *testing.T) {
	_, err := New(context.Background(), config.BroadcastConfig{Backend: "kafka"}, make(chanFanout))
	require.Error(t, err)
}

func startNATS(t *testing.T) string {
	t.Helper()
	ns, err := server.NewServer(&server.Options{Host: "127.0.0.1", Port: -1, NoLog: true, NoSigs: true})
	require.NoError(t, err)
	go ns.Start()
	if !ns.ReadyForConnections(5 * time.Second) {
		t.Fatal("nats server not ready")
	}
	t.Cleanup(ns.Shutdown)
	return ns.ClientURL()
}

func TestNATS_FansOutAcrossProcesses(t *testing.T) {
	req := require.New(t)
	url := startNATS(t)
	cfg := config.BroadcastConfig{Backend: "nats", NatsURL: url, Prefix: "test.rooms"}

	fanA, fanB := make(chanFanout, 4), make(chanFanout, 4)
	a, err := New(context.Background(), cfg, fanA)
	req.NoError(err)
	b, err := New(context.Background(), cfg, fanB)
	req.NoError(err)
	runBackend(t, a)
	runBackend(t, b)

	req.NoError(a.Publish(context.Background(), "room-1", "sid-a", core.Frame(`{"event":"typing:start"}`)))

	want := delivery{room: "room-1", except: "sid-a", data: `{"event":"typing:start"}`}
	req.Equal(want, receive(t, fanA))
	req.Equal(want, receive(t, fanB))
}

func TestNATS_RejectsUnroutableRoom(t *testing.T) {
	url := startNATS(t)
	nc, err := nats.Connect(url)
	require.NoError(t, err)
	b := NewNATS(nc, "test.rooms", make(chanFanout))
	defer b.Close()

	err = b.Publish(context.Background(), "a.b", "", core.Frame(`{}`))
	require.ErrorIs(t, err, domain.ErrProtocol)
}

func TestRedis_FansOut(t *testing.T) {
	addr := os.Getenv("STUDYHUB_TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("redis not available at %s: %v", addr, err)
	}
	_ = client.Close()

	req := require.New(t)
	fan := make(chanFanout, 1)
	b, err := New(context.Background(), config.BroadcastConfig{Backend: "redis", RedisAddr: addr, Prefix: "test:rooms"}, fan)
	req.NoError(err)
	runBackend(t, b)

	req.NoError(b.Publish(context.Background(), "room-1", "", core.Frame(`{"event":"message:new"}`)))
	req.Equal(delivery{room: "room-1", data: `{"event":"message:new"}`}, receive(t, fan))
}
