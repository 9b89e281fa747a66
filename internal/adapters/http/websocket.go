package http

import (
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/backoffice/internal/adapters/nats"
	"github.com/samirrijal/backoffice/internal/pkg/metrics"
)

// wsMessage is sent by clients to narrow or widen the collections they follow.
type wsMessage struct {
	Action     string `json:"action"`     // "subscribe" | "unsubscribe"
	Collection string `json:"collection"` // e.g. "products", "cities"
}

// collectionOf extracts the collection from a change-event subject.
func collectionOf(subject string) string {
	rest := strings.TrimPrefix(subject, natsadapter.SubjectPrefix+".")
	if i := strings.IndexByte(rest, '.'); i >= 0 {
		return rest[:i]
	}
	return rest
}

// WebSocketHandler relays change events to admin clients so open editors can
// refresh. A client receives every collection until it subscribes to one;
// from then on only the subscribed collections are sent.
// Clients send JSON: {"action":"subscribe","collection":"products"}
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		remote := c.RemoteAddr().String()
		slog.Info("ws client connected", "remote", remote)

		var (
			writeMu  sync.Mutex
			filterMu sync.RWMutex
			follow   = map[string]bool{}
		)

		writeJSON := func(v any) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			writeMu.Lock()
			defer writeMu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		stop, err := natsadapter.Relay(nc, func(subject string, data []byte) {
			filterMu.RLock()
			wanted := len(follow) == 0 || follow[collectionOf(subject)]
			filterMu.RUnlock()
			if wanted {
				_ = writeJSON(json.RawMessage(data))
			}
		})
		if err != nil {
			slog.Error("ws relay subscribe failed", "error", err)
			return
		}
		defer stop()

		done := make(chan struct{})
		defer close(done)
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					writeMu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					writeMu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil || m.Collection == "" {
				_ = writeJSON(map[string]string{"error": "expected {\"action\":...,\"collection\":...}"})
				continue
			}

			filterMu.Lock()
			switch m.Action {
			case "subscribe":
				follow[m.Collection] = true
			case "unsubscribe":
				delete(follow, m.Collection)
			default:
				filterMu.Unlock()
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
				continue
			}
			filterMu.Unlock()
			_ = writeJSON(map[string]string{"status": m.Action + "d", "collection": m.Collection})
		}

		slog.Info("ws client disconnected", "remote", remote)
	}
}
