package events

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/folio-works/portfolio-backend/internal/logger"
)

func TestMemoryBus_PublishSubscribe(t *testing.T) {
	bus := NewMemoryBus(zap.NewNop())
	ch, cancel := bus.Subscribe(context.Background())

	bus.Publish(context.Background(), Success("project", "append", "p1", "2 images added"))

	select {
	case e := <-ch:
		assert.Equal(t, StatusSuccess, e.Status)
		assert.Equal(t, "append", e.Op)
		assert.Equal(t, "p1", e.ID)
		assert.False(t, e.Timestamp.IsZero())
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}

	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)

	// publishing without subscribers does not block
	bus.Publish(context.Background(), Failure("project", "append", "p1", errors.New("boom")))
}

func TestMemoryBus_RecordsActingAdmin(t *testing.T) {
	bus := NewMemoryBus(zap.NewNop())
	ch, cancel := bus.Subscribe(context.Background())
	defer cancel()

	ctx := logger.ContextWithAdminUID(context.Background(), "admin-1")
	bus.Publish(ctx, Success("skill", "delete", "s1", "skill deleted"))
	bus.Publish(context.Background(), Success("skill", "delete", "s2", "skill deleted"))

	for _, want := range []string{"admin-1", ""} {
		select {
		case e := <-ch:
			assert.Equal(t, want, e.Actor)
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}
}

func TestRedisBus_PublishSubscribe(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	bus := NewRedisBus(client, zap.NewNop())
	ch, cancel := bus.Subscribe(context.Background())
	defer cancel()

	want := Failure("project", "remove", "p2", errors.New("version conflict"))

	var got Event
	require.Eventually(t, func() bool {
		bus.Publish(context.Background(), want)
		select {
		case got = <-ch:
			return true
		case <-time.After(20 * time.Millisecond):
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, StatusError, got.Status)
	assert.Equal(t, "version conflict", got.Message)
	assert.Equal(t, "p2", got.ID)
}

func TestStreamHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	bus := NewMemoryBus(zap.NewNop())

	r := gin.New()
	NewStreamHandler(bus).Register(r.Group("/api/v1/admin"))
	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/admin/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, ": connected\n", line)

	bus.Publish(context.Background(), Success("skill", "create", "s1", "skill created"))

	var eventLine, dataLine string
	for eventLine == "" || dataLine == "" {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		switch {
		case strings.HasPrefix(line, "event: "):
			eventLine = strings.TrimSpace(strings.TrimPrefix(line, "event: "))
		case strings.HasPrefix(line, "data: "):
			dataLine = strings.TrimSpace(strings.TrimPrefix(line, "data: "))
		}
	}

	assert.Equal(t, StatusSuccess, eventLine)
	var e Event
	require.NoError(t, json.Unmarshal([]byte(dataLine), &e))
	assert.Equal(t, "skill", e.Resource)
	assert.Equal(t, "s1", e.ID)
}

func TestStreamHandler_OutlivesWriteTimeout(t *testing.T) {
	gin.SetMode(gin.TestMode)
	bus := NewMemoryBus(zap.NewNop())

	r := gin.New()
	NewStreamHandler(bus).Register(r.Group("/api/v1/admin"))
	srv := httptest.NewUnstartedServer(r)
	srv.Config.WriteTimeout = 100 * time.Millisecond
	srv.Start()
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/admin/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, ": connected\n", line)

	time.Sleep(300 * time.Millisecond)
	bus.Publish(context.Background(), Success("project", "update", "p1", "project updated"))

	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "event: ") {
			assert.Equal(t, StatusSuccess, strings.TrimSpace(strings.TrimPrefix(line, "event: ")))
			return
		}
	}
}
