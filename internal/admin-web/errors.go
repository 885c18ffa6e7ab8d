package adminweb

import (
	"errors"
	"fmt"
	"net/http"

	idpool "github.com/cloud-barista/cb-subnet/pkg/identity-pool"
	"github.com/cloud-barista/cb-subnet/pkg/model"
	"github.com/cloud-barista/cb-subnet/pkg/subnet"
	manager "github.com/cloud-barista/cb-subnet/pkg/subnet-manager"
	userdir "github.com/cloud-barista/cb-subnet/pkg/user-directory"
	"github.com/labstack/echo"
)

var errMissingCaller = echo.NewHTTPError(http.StatusBadRequest, "missing "+model.CallerHeader+" header")

var statusByError = []struct {
	err  error
	code int
}{
	{subnet.ErrUnauthorized, http.StatusForbidden},
	{subnet.ErrPeerNotFound, http.StatusNotFound},
	{subnet.ErrRelationNotFound, http.StatusNotFound},
	{manager.ErrNetworkNotFound, http.StatusNotFound},
	{userdir.ErrUserNotFound, http.StatusNotFound},
	{subnet.ErrDuplicatePeer, http.StatusConflict},
	{subnet.ErrInactiveNetwork, http.StatusConflict},
	{subnet.ErrNetworkDeleted, http.StatusConflict},
	{idpool.ErrPoolExhausted, http.StatusConflict},
	{subnet.ErrSelfRelation, http.StatusBadRequest},
}

// statusOf returns the status code and message of a failed request.
func statusOf(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprint(he.Message)
	}
	for _, s := range statusByError {
		if errors.Is(err, s.err) {
			return s.code, err.Error()
		}
	}
	return http.StatusInternalServerError, err.Error()
}

func (aw *AdminWeb) handleError(err error, c echo.Context) {
	code, message := statusOf(err)
	if code >= http.StatusInternalServerError {
		CBLogger.Errorf("%s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	} else {
		CBLogger.Debugf("%s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	}

	if c.Response().Committed {
		return
	}
	if err := c.JSON(code, model.ErrorResponse{Message: message}); err != nil {
		CBLogger.Error(err)
	}
}
