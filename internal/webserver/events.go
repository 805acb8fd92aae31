package webserver

import (
	"fmt"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/talkincode/hexshop/internal/store"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const keepAliveInterval = 30 * time.Second

// EventSource subscribes notify to one observable and returns the func
// that removes the subscription.
type EventSource func(notify func()) (unsubscribe func())

// Watch turns a store into an EventSource.
func Watch[T any](s *store.Store[T]) EventSource {
	return func(notify func()) func() {
		return s.Subscribe(func(T) { notify() })
	}
}

// StreamEvents writes server-sent events named name carrying the JSON of
// snapshot, once on connect and again after every change of any source,
// until the client goes away. Bursts of changes collapse into one event.
func StreamEvents(c echo.Context, name string, snapshot func() interface{}, sources ...EventSource) error {
	updates := make(chan struct{}, 1)
	notify := func() {
		select {
		case updates <- struct{}{}:
		default:
		}
	}
	for _, src := range sources {
		unsub := src(notify)
		defer unsub()
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)

	send := func() error {
		data, err := json.Marshal(snapshot())
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(res, "event: %s\ndata: %s\n\n", name, data); err != nil {
			return err
		}
		res.Flush()
		return nil
	}
	if err := send(); err != nil {
		zap.L().Debug("event stream closed", zap.String("event", name), zap.Error(err))
		return nil
	}

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()
	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-updates:
			if err := send(); err != nil {
				return nil
			}
		case <-keepAlive.C:
			if _, err := fmt.Fprint(res, ": ping\n\n"); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}
