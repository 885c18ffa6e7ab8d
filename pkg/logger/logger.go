// Package logger builds the logrus logger shared by the cb-subnet packages.
package logger

import (
	"os"
	"sync"

	"github.com/cloud-barista/cb-subnet/pkg/file"
	cblog "github.com/cloud-barista/cb-log"
	"github.com/sirupsen/logrus"
)

// Name is the logger name registered in cb-log.
const Name = "cb-subnet"

var (
	shared *logrus.Logger
	once   sync.Once
)

// GetLogger represents a function to get a logger to show execution processes according to the logging level.
// cb-log is used when its configuration is available, either through CBLOG_ROOT or
// config/log_conf.yaml. Otherwise a plain logrus logger at the info level is returned,
// so library users and tests need no cb-log setup.
func GetLogger() *logrus.Logger {
	once.Do(func() {
		if os.Getenv("CBLOG_ROOT") != "" {
			shared = cblog.GetLogger(Name)
			return
		}

		if logConfPath := file.FindConfigFile("log_conf.yaml"); logConfPath != "" {
			shared = cblog.GetLoggerWithConfigPath(Name, logConfPath)
			return
		}

		shared = logrus.New()
		shared.SetLevel(logrus.InfoLevel)
	})
	return shared
}
