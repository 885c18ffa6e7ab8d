package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adminweb "github.com/cloud-barista/cb-subnet/internal/admin-web"
	natspub "github.com/cloud-barista/cb-subnet/internal/nats-publisher"
	"github.com/cloud-barista/cb-subnet/pkg/event"
	"github.com/cloud-barista/cb-subnet/pkg/file"
	idpool "github.com/cloud-barista/cb-subnet/pkg/identity-pool"
	"github.com/cloud-barista/cb-subnet/pkg/logger"
	"github.com/cloud-barista/cb-subnet/pkg/model"
	"github.com/cloud-barista/cb-subnet/pkg/store"
	manager "github.com/cloud-barista/cb-subnet/pkg/subnet-manager"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// CBLogger represents a logger to show execution processes according to the logging level.
var CBLogger *logrus.Logger
var config model.Config

func init() {
	fmt.Println("Start......... init() of cb-subnet-registry")
	CBLogger = logger.GetLogger()

	// Load cb-subnet config from the current directory (usually for the production)
	// or from the project directory (usually for the development)
	configPath := os.Getenv("CB_SUBNET_CONFIG")
	if configPath == "" {
		configPath = file.FindConfigFile("config.yaml")
	}
	if configPath == "" {
		CBLogger.Fatal("Can't find config/config.yaml")
	}

	var err error
	config, err = model.LoadConfig(configPath)
	if err != nil {
		CBLogger.Fatal(err)
	}
	CBLogger.Debugf("Load %v", configPath)
	fmt.Println("End......... init() of cb-subnet-registry")
}

func openStore(config model.Config) (store.Store, error) {
	switch config.Registry.Store {
	case model.StoreEtcd:
		return store.NewEtcd(config.ETCD.Endpoints)
	case model.StoreBadger:
		return store.NewBadger(config.Registry.BadgerPath)
	case model.StoreMemory:
		return store.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store %q", config.Registry.Store)
	}
}

func main() {
	CBLogger.Debug("Start cb-subnet registry .........")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Store section
	st, err := openStore(config)
	if err != nil {
		CBLogger.Fatal(err)
	}
	defer func() {
		errClose := st.Close()
		if errClose != nil {
			CBLogger.Error("Can't close the store", errClose)
		}
	}()
	CBLogger.Infof("The %s store is ready.", config.Registry.Store)

	pool, err := idpool.New(config.Registry.CIDRBlock, config.Registry.FirstOffset)
	if err != nil {
		CBLogger.Fatal(err)
	}

	// Registry section
	log := event.NewLog(event.WithStore(st))
	if err := log.Load(ctx); err != nil {
		CBLogger.Fatal(err)
	}

	m := manager.New(manager.WithStore(st), manager.WithEmitter(log), manager.WithPool(pool))
	if err := m.Load(ctx); err != nil {
		CBLogger.Fatal(err)
	}
	CBLogger.Infof("The subnet manager (%s) is loaded: %d subnets, %d users", m.Address(), m.NetworkCount(), m.UserCount())

	// NATS section
	if config.NATS.URL != "" {
		publisher, err := natspub.NewPublisher(config.NATS.URL, config.NATS.Subject)
		if err != nil {
			CBLogger.Errorf("Event records are not published to NATS: %v", err)
		} else {
			publisher.Start(ctx, log)
			defer publisher.Close()
		}
	}

	// Admin web section
	aw := adminweb.New(m, log)
	aw.Start(ctx)

	server := &http.Server{
		Addr:    config.AdminWeb.Host + ":" + config.AdminWeb.Port,
		Handler: h2c.NewHandler(aw.Handler(), &http2.Server{}),
	}

	go func() {
		adminWebURL := fmt.Sprintf("The cb-subnet admin-web URL => http://%s:%s\n", config.AdminWeb.Host, config.AdminWeb.Port)
		fmt.Println("")
		fmt.Printf("\033[1;36m%s\033[0m", adminWebURL)
		fmt.Println("")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			CBLogger.Error(err)
			stop()
		}
	}()

	<-ctx.Done()
	CBLogger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		CBLogger.Error(err)
	}

	CBLogger.Debug("End cb-subnet registry .........")
}
