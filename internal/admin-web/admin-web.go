// Package adminweb serves the subnet registry over REST, streams its event
// records to websocket clients and exposes Prometheus metrics.
package adminweb

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cloud-barista/cb-subnet/pkg/event"
	"github.com/cloud-barista/cb-subnet/pkg/logger"
	"github.com/cloud-barista/cb-subnet/pkg/model"
	msgtype "github.com/cloud-barista/cb-subnet/pkg/message-type"
	manager "github.com/cloud-barista/cb-subnet/pkg/subnet-manager"
	"github.com/labstack/echo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// CBLogger represents a logger to show execution processes according to the logging level.
var CBLogger *logrus.Logger

func init() {
	CBLogger = logger.GetLogger()
}

const subscriberBuffer = 256

// AdminWeb represents the REST, websocket and metrics surface of a subnet manager.
type AdminWeb struct {
	echo    *echo.Echo
	manager *manager.Manager
	log     *event.Log
	pool    *connectionPool
	metrics *metrics
}

// New represents a constructor of AdminWeb.
func New(m *manager.Manager, log *event.Log) *AdminWeb {
	CBLogger.Debug("Start.........")

	aw := &AdminWeb{
		echo:    echo.New(),
		manager: m,
		log:     log,
		pool:    newConnectionPool(),
	}
	aw.metrics = newMetrics(aw)

	e := aw.echo
	e.HideBanner = true
	e.HTTPErrorHandler = aw.handleError
	e.Use(aw.metrics.middleware)

	e.GET("/health", aw.health)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(aw.metrics.registry, promhttp.HandlerOpts{})))
	e.GET("/ws", aw.websocketHandler)
	e.GET("/events", aw.listEvents)

	e.POST("/networks", aw.createNetwork)
	e.GET("/networks", aw.listNetworks)
	e.GET("/networks/count", aw.networkCount)
	e.GET("/networks/:id", aw.getNetwork)
	e.GET("/networks/:id/data", aw.getDataJSON)
	e.DELETE("/networks/:id", aw.deleteNetwork)
	e.PUT("/networks/:id/state", aw.updateNetworkState)

	e.POST("/networks/:id/peers", aw.addPeer)
	e.GET("/networks/:id/peers", aw.listPeers)
	e.GET("/networks/:id/peers/count", aw.peerCount)
	e.GET("/networks/:id/peers/:pubKeyHash", aw.getPeerInfo)
	e.DELETE("/networks/:id/peers/:pubKeyHash", aw.removePeer)

	e.POST("/networks/:id/relations", aw.addPeerRelation)
	e.DELETE("/networks/:id/relations", aw.removePeerRelation)

	e.POST("/users", aw.registerUser)
	e.GET("/users", aw.listUsers)
	e.GET("/users/count", aw.userCount)
	e.GET("/users/:pubKeyHash", aw.getUserMacHash)

	CBLogger.Debug("End.........")
	return aw
}

// Handler returns the HTTP handler of the admin web.
func (aw *AdminWeb) Handler() http.Handler {
	return aw.echo
}

// Start represents a function to forward event records to the websocket clients and the metrics
// until ctx is done. The subscription is in place when Start returns.
func (aw *AdminWeb) Start(ctx context.Context) {
	records, cancel := aw.log.Subscribe(subscriberBuffer)
	go aw.forward(ctx, records, cancel)
}

func (aw *AdminWeb) forward(ctx context.Context, records <-chan event.Event, cancel func()) {
	CBLogger.Debug("Start.........")
	defer CBLogger.Debug("End.........")
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			aw.pool.closeAll()
			return
		case e, ok := <-records:
			if !ok {
				return
			}
			aw.metrics.events.WithLabelValues(string(e.Name)).Inc()
			aw.pool.sendMessageToAllPool(buildResponseBytes(msgtype.Event, eventText(e)))
		}
	}
}

func eventText(e event.Event) string {
	doc, err := json.Marshal(e)
	if err != nil {
		CBLogger.Error(err)
		return ""
	}
	return string(doc)
}

func buildResponseBytes(responseType string, responseText string) []byte {
	var response model.WebsocketMessageFrame
	response.Type = responseType
	response.Text = responseText

	CBLogger.Tracef("ResponseStr: %#v", response)
	responseBytes, _ := json.Marshal(response)
	return responseBytes
}

// Metrics returns the registry of the admin web metrics.
func (aw *AdminWeb) Metrics() *prometheus.Registry {
	return aw.metrics.registry
}
