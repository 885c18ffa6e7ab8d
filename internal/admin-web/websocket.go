package adminweb

import (
	"net/http"
	"strconv"
	"sync"

	msgtype "github.com/cloud-barista/cb-subnet/pkg/message-type"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo"
)

var (
	upgrader = websocket.Upgrader{}
)

// client serializes the writes to one websocket connection.
type client struct {
	conn       *websocket.Conn
	writeMutex sync.Mutex
}

func (cl *client) write(message []byte) error {
	cl.writeMutex.Lock()
	defer cl.writeMutex.Unlock()
	return cl.conn.WriteMessage(websocket.TextMessage, message)
}

type connectionPool struct {
	sync.RWMutex
	connections map[*client]struct{}
}

func newConnectionPool() *connectionPool {
	return &connectionPool{connections: make(map[*client]struct{})}
}

func (pool *connectionPool) add(cl *client) {
	pool.Lock()
	defer pool.Unlock()
	pool.connections[cl] = struct{}{}
}

func (pool *connectionPool) remove(cl *client) {
	pool.Lock()
	defer pool.Unlock()
	delete(pool.connections, cl)
}

func (pool *connectionPool) len() int {
	pool.RLock()
	defer pool.RUnlock()
	return len(pool.connections)
}

// sendMessageToAllPool writes message to every connection. A connection failing the write is closed,
// which ends its read loop and removes it from the pool.
func (pool *connectionPool) sendMessageToAllPool(message []byte) {
	pool.RLock()
	defer pool.RUnlock()
	for cl := range pool.connections {
		if err := cl.write(message); err != nil {
			CBLogger.Error(err)
			cl.conn.Close()
		}
	}
}

func (pool *connectionPool) closeAll() {
	pool.RLock()
	defer pool.RUnlock()
	for cl := range pool.connections {
		cl.conn.Close()
	}
}

// websocketHandler represents a handler to stream event records to a client.
// The records after ?since=N are replayed on connection; a client may send a replay frame at any time.
// A replayed record may also arrive live, so clients order and deduplicate records by sequence.
func (aw *AdminWeb) websocketHandler(c echo.Context) error {
	var since uint64
	replay := false
	if s := c.QueryParam("since"); s != "" {
		var err error
		if since, err = strconv.ParseUint(s, 10, 64); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid since "+strconv.Quote(s))
		}
		replay = true
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	cl := &client{conn: ws}
	aw.pool.add(cl)
	defer aw.pool.remove(cl)

	if replay {
		if err := aw.replay(cl, since); err != nil {
			CBLogger.Error(err)
			return nil
		}
	}

	for {
		// Read
		_, msgRead, err := ws.ReadMessage()
		if err != nil {
			CBLogger.Debug(err)
			return nil
		}
		CBLogger.Tracef("Message Read: %s", msgRead)

		message := string(msgRead)
		switch msgtype.ParseMessageType(message) {
		case msgtype.Replay:
			since, ok := msgtype.ParseReplaySince(message)
			if !ok {
				_ = cl.write(buildResponseBytes(msgtype.Error, "invalid replay request"))
				continue
			}
			if err := aw.replay(cl, since); err != nil {
				CBLogger.Error(err)
				return nil
			}

		default:
			_ = cl.write(buildResponseBytes(msgtype.Error, "unknown message type"))
		}
	}
}

func (aw *AdminWeb) replay(cl *client, since uint64) error {
	for _, e := range aw.log.Since(since) {
		if err := cl.write(buildResponseBytes(msgtype.Event, eventText(e))); err != nil {
			return err
		}
	}
	return nil
}
