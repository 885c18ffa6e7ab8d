package adminweb

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cloud-barista/cb-subnet/pkg/event"
	"github.com/cloud-barista/cb-subnet/pkg/model"
	msgtype "github.com/cloud-barista/cb-subnet/pkg/message-type"
	"github.com/cloud-barista/cb-subnet/pkg/subnet"
	manager "github.com/cloud-barista/cb-subnet/pkg/subnet-manager"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	admin    = "A"
	stranger = "B"
)

type fixture struct {
	t      *testing.T
	server *httptest.Server
	log    *event.Log
	aw     *AdminWeb
}

func newFixture(t *testing.T) *fixture {
	log := event.NewLog()
	m := manager.New(manager.WithEmitter(log), manager.WithAddress("M"))
	aw := New(m, log)
	server := httptest.NewServer(aw.Handler())
	t.Cleanup(server.Close)
	return &fixture{t: t, server: server, log: log, aw: aw}
}

func (f *fixture) do(method, path, caller, body string) (int, string) {
	f.t.Helper()
	req, err := http.NewRequest(method, f.server.URL+path, strings.NewReader(body))
	require.NoError(f.t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if caller != "" {
		req.Header.Set(model.CallerHeader, caller)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(f.t, err)
	defer resp.Body.Close()
	b, err := ioutil.ReadAll(resp.Body)
	require.NoError(f.t, err)
	return resp.StatusCode, string(b)
}

func TestTwoPeerScenario(t *testing.T) {
	f := newFixture(t)

	code, body := f.do(http.MethodPost, "/networks", admin, "")
	require.Equal(t, http.StatusCreated, code, body)
	var created event.Event
	require.NoError(t, json.Unmarshal([]byte(body), &created))
	assert.Equal(t, event.NetworkCreated, created.Name)
	assert.Equal(t, 0, *created.Args.NetworkID)
	assert.Equal(t, admin, created.Args.Admin)

	code, body = f.do(http.MethodPost, "/networks/0/peers", admin, `{"pubKeyHash":"abc123"}`)
	require.Equal(t, http.StatusCreated, code, body)
	code, body = f.do(http.MethodPost, "/networks/0/peers", admin, `{"pubKeyHash":"456xyz"}`)
	require.Equal(t, http.StatusCreated, code, body)
	code, body = f.do(http.MethodPost, "/networks/0/relations", admin, `{"mine":"abc123","other":"456xyz"}`)
	require.Equal(t, http.StatusCreated, code, body)

	code, body = f.do(http.MethodGet, "/networks/0/peers/abc123", "", "")
	require.Equal(t, http.StatusOK, code)
	var info subnet.PeerInfo
	require.NoError(t, json.Unmarshal([]byte(body), &info))
	assert.Equal(t, "10.27.16.10/24", info.IP)
	assert.Equal(t, "456xyz", info.Neighbors)

	code, body = f.do(http.MethodGet, "/networks/0/data", "", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, `{ "networkId": "0", "admin": "A", "networkManager": "M", "active": true, "peers": [`+
		`{"pubKeyHash": "abc123", "macHash": "", "ip": "10.27.16.10/24", "neighbors": ["456xyz"]}, `+
		`{"pubKeyHash": "456xyz", "macHash": "", "ip": "10.27.16.11/24", "neighbors": ["abc123"]}] }`, body)

	code, body = f.do(http.MethodGet, "/networks/0/peers/count", "", "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"count":2}`, body)

	code, _ = f.do(http.MethodDelete, "/networks/0/relations?mine=456xyz&other=abc123", admin, "")
	assert.Equal(t, http.StatusOK, code)
	code, _ = f.do(http.MethodDelete, "/networks/0/peers/abc123", admin, "")
	assert.Equal(t, http.StatusOK, code)

	code, body = f.do(http.MethodGet, "/events?since=4", "", "")
	require.Equal(t, http.StatusOK, code)
	var records []event.Event
	require.NoError(t, json.Unmarshal([]byte(body), &records))
	require.Len(t, records, 2)
	assert.Equal(t, event.PeerRelationRemoved, records[0].Name)
	assert.Equal(t, event.PeerRemoved, records[1].Name)
}

func TestErrorMapping(t *testing.T) {
	f := newFixture(t)
	code, _ := f.do(http.MethodPost, "/networks", admin, "")
	require.Equal(t, http.StatusCreated, code)
	code, _ = f.do(http.MethodPost, "/networks/0/peers", admin, `{"pubKeyHash":"abc123"}`)
	require.Equal(t, http.StatusCreated, code)

	for _, tc := range []struct {
		name           string
		method, path   string
		caller, body   string
		code           int
		messageContain string
	}{
		{"missing caller", http.MethodPost, "/networks", "", "", http.StatusBadRequest, model.CallerHeader},
		{"non-admin", http.MethodPost, "/networks/0/peers", stranger, `{"pubKeyHash":"x"}`, http.StatusForbidden, "unauthorized"},
		{"duplicate", http.MethodPost, "/networks/0/peers", admin, `{"pubKeyHash":"abc123"}`, http.StatusConflict, "duplicate"},
		{"missing peer", http.MethodGet, "/networks/0/peers/nobody", "", "", http.StatusNotFound, "peer not found"},
		{"missing network", http.MethodGet, "/networks/9", "", "", http.StatusNotFound, "network not found"},
		{"bad id", http.MethodGet, "/networks/zero", "", "", http.StatusBadRequest, "invalid network id"},
		{"self relation", http.MethodPost, "/networks/0/relations", admin, `{"mine":"abc123","other":"abc123"}`, http.StatusBadRequest, "self relation"},
		{"missing relation", http.MethodDelete, "/networks/0/relations?mine=abc123&other=zzz", admin, "", http.StatusNotFound, "peer not found"},
		{"missing user", http.MethodGet, "/users/nobody", "", "", http.StatusNotFound, "user not found"},
		{"missing active", http.MethodPut, "/networks/0/state", admin, `{}`, http.StatusBadRequest, "missing active"},
		{"bad since", http.MethodGet, "/events?since=x", "", "", http.StatusBadRequest, "invalid since"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			code, body := f.do(tc.method, tc.path, tc.caller, tc.body)
			assert.Equal(t, tc.code, code, body)
			var resp model.ErrorResponse
			require.NoError(t, json.Unmarshal([]byte(body), &resp))
			assert.Contains(t, resp.Message, tc.messageContain)
		})
	}
}

func TestInactiveAndDeletedNetwork(t *testing.T) {
	f := newFixture(t)
	code, _ := f.do(http.MethodPost, "/networks", admin, "")
	require.Equal(t, http.StatusCreated, code)

	code, _ = f.do(http.MethodPut, "/networks/0/state", admin, `{"active":false}`)
	require.Equal(t, http.StatusOK, code)
	code, body := f.do(http.MethodPost, "/networks/0/peers", admin, `{"pubKeyHash":"abc123"}`)
	assert.Equal(t, http.StatusConflict, code, body)
	code, _ = f.do(http.MethodPut, "/networks/0/state", admin, `{"active":true}`)
	require.Equal(t, http.StatusOK, code)

	code, _ = f.do(http.MethodDelete, "/networks/0", stranger, "")
	assert.Equal(t, http.StatusForbidden, code)
	code, body = f.do(http.MethodGet, "/networks/count", "", "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"count":1}`, body)

	code, _ = f.do(http.MethodDelete, "/networks/0", admin, "")
	require.Equal(t, http.StatusOK, code)
	code, body = f.do(http.MethodGet, "/networks/count", "", "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"count":0}`, body)

	code, body = f.do(http.MethodGet, "/networks/0", "", "")
	require.Equal(t, http.StatusOK, code)
	var snap subnet.Snapshot
	require.NoError(t, json.Unmarshal([]byte(body), &snap))
	assert.True(t, snap.Deleted)
	assert.Equal(t, "deleted", snap.State)

	code, _ = f.do(http.MethodPost, "/networks/0/peers", admin, `{"pubKeyHash":"abc123"}`)
	assert.Equal(t, http.StatusConflict, code)
	code, _ = f.do(http.MethodDelete, "/networks/0", admin, "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestUsers(t *testing.T) {
	f := newFixture(t)

	code, _ := f.do(http.MethodPost, "/users", "", `{"pubKeyHash":"abc123","macHash":"111aaa"}`)
	require.Equal(t, http.StatusCreated, code)
	code, _ = f.do(http.MethodPost, "/users", "", `{"pubKeyHash":"456xyz","macHash":"222bbb"}`)
	require.Equal(t, http.StatusCreated, code)

	code, body := f.do(http.MethodGet, "/users/count", "", "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"count":2}`, body)

	code, body = f.do(http.MethodGet, "/users/456xyz", "", "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"pubKeyHash":"456xyz","macHash":"222bbb"}`, body)

	code, body = f.do(http.MethodGet, "/users", "", "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[{"pubKeyHash":"abc123","macHash":"111aaa"},{"pubKeyHash":"456xyz","macHash":"222bbb"}]`, body)

	code, _ = f.do(http.MethodPost, "/users", "", `{"macHash":"222bbb"}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func readFrame(t *testing.T, ws *websocket.Conn) model.WebsocketMessageFrame {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))
	var frame model.WebsocketMessageFrame
	require.NoError(t, ws.ReadJSON(&frame))
	return frame
}

func TestWebsocketStream(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.aw.Start(ctx)

	code, _ := f.do(http.MethodPost, "/users", "", `{"pubKeyHash":"abc123","macHash":"111aaa"}`)
	require.Equal(t, http.StatusCreated, code)

	wsURL := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws?since=0"
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer ws.Close()

	frame := readFrame(t, ws)
	assert.Equal(t, msgtype.Event, frame.Type)
	assert.Equal(t, "UserRegistered", msgtype.ParseEventName(frame.Text))

	require.Eventually(t, func() bool { return f.aw.pool.len() == 1 }, 5*time.Second, 10*time.Millisecond)
	code, _ = f.do(http.MethodPost, "/networks", admin, "")
	require.Equal(t, http.StatusCreated, code)

	frame = readFrame(t, ws)
	assert.Equal(t, msgtype.Event, frame.Type)
	assert.Equal(t, "NetworkCreated", msgtype.ParseEventName(frame.Text))

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(msgtype.BuildReplayMessage(1))))
	frame = readFrame(t, ws)
	assert.Equal(t, "NetworkCreated", msgtype.ParseEventName(frame.Text))

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(`{"type":"bogus"}`)))
	frame = readFrame(t, ws)
	assert.Equal(t, msgtype.Error, frame.Type)
}

func TestMetrics(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.aw.Start(ctx)

	code, _ := f.do(http.MethodPost, "/networks", admin, "")
	require.Equal(t, http.StatusCreated, code)
	code, _ = f.do(http.MethodGet, "/networks/7", "", "")
	require.Equal(t, http.StatusNotFound, code)

	require.Eventually(t, func() bool {
		_, body := f.do(http.MethodGet, "/metrics", "", "")
		return strings.Contains(body, `cb_subnet_events_total{event="NetworkCreated"} 1`)
	}, 5*time.Second, 20*time.Millisecond)

	_, body := f.do(http.MethodGet, "/metrics", "", "")
	assert.Contains(t, body, "cb_subnet_networks 1")
	assert.Contains(t, body, `cb_subnet_http_requests_total{code="404",method="GET",path="/networks/:id"} 1`)
	assert.Contains(t, body, `cb_subnet_http_requests_total{code="201",method="POST",path="/networks"} 1`)
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	code, body := f.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body)
}
