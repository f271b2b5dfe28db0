package server

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gramseva/vaani/pkg/protocol"
)

const (
	outboundBuffer = 32
	writeTimeout   = 10 * time.Second
)

// connNotifier adapts a WebSocket connection to session.Notifier. All writes
// go through a single pump goroutine; Send never blocks on the network.
type connNotifier struct {
	conn   *websocket.Conn
	out    chan protocol.Message
	done   chan struct{}
	logger *slog.Logger

	closeOnce sync.Once
}

func newConnNotifier(conn *websocket.Conn, logger *slog.Logger) *connNotifier {
	return &connNotifier{
		conn:   conn,
		out:    make(chan protocol.Message, outboundBuffer),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Send queues a message for delivery. A full buffer drops the message rather
// than stalling the pipeline behind a slow client.
func (n *connNotifier) Send(msg protocol.Message) error {
	select {
	case <-n.done:
		return fmt.Errorf("connection closed")
	default:
	}

	select {
	case n.out <- msg:
		return nil
	default:
		n.logger.Warn("outbound buffer full, dropping message",
			slog.String("type", msg.Type))
		return fmt.Errorf("outbound buffer full")
	}
}

// Close stops the write pump and closes the connection.
func (n *connNotifier) Close() error {
	n.closeOnce.Do(func() {
		close(n.done)
	})
	return nil
}

// writePump serializes all writes to the connection. It runs until Close or a
// write failure.
func (n *connNotifier) writePump() {
	defer n.conn.Close()

	for {
		select {
		case <-n.done:
			n.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			n.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case msg := <-n.out:
			n.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := n.conn.WriteJSON(msg); err != nil {
				n.logger.Debug("write failed, closing connection",
					slog.String("error", err.Error()))
				n.Close()
				return
			}
		}
	}
}
