package adminweb

import (
	"net/http"
	"strconv"

	"github.com/cloud-barista/cb-subnet/pkg/model"
	"github.com/cloud-barista/cb-subnet/pkg/subnet"
	"github.com/labstack/echo"
)

func caller(c echo.Context) (string, error) {
	identity := c.Request().Header.Get(model.CallerHeader)
	if identity == "" {
		return "", errMissingCaller
	}
	return identity, nil
}

func (aw *AdminWeb) network(c echo.Context) (*subnet.Subnet, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid network id "+strconv.Quote(c.Param("id")))
	}
	return aw.manager.Network(id)
}

func (aw *AdminWeb) health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func (aw *AdminWeb) listEvents(c echo.Context) error {
	var since uint64
	if s := c.QueryParam("since"); s != "" {
		var err error
		if since, err = strconv.ParseUint(s, 10, 64); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid since "+strconv.Quote(s))
		}
	}
	return c.JSON(http.StatusOK, aw.log.Since(since))
}

func (aw *AdminWeb) createNetwork(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	_, e, err := aw.manager.CreateNetwork(c.Request().Context(), identity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, e)
}

func (aw *AdminWeb) listNetworks(c echo.Context) error {
	networks := aw.manager.Networks()
	snapshots := make([]subnet.Snapshot, 0, len(networks))
	for _, sn := range networks {
		snapshots = append(snapshots, sn.Snapshot())
	}
	return c.JSON(http.StatusOK, snapshots)
}

func (aw *AdminWeb) networkCount(c echo.Context) error {
	return c.JSON(http.StatusOK, model.CountResponse{Count: aw.manager.NetworkCount()})
}

func (aw *AdminWeb) getNetwork(c echo.Context) error {
	sn, err := aw.network(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sn.Snapshot())
}

func (aw *AdminWeb) getDataJSON(c echo.Context) error {
	sn, err := aw.network(c)
	if err != nil {
		return err
	}
	return c.JSONBlob(http.StatusOK, []byte(sn.DataJSON()))
}

func (aw *AdminWeb) deleteNetwork(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid network id "+strconv.Quote(c.Param("id")))
	}
	e, err := aw.manager.DeleteNetwork(c.Request().Context(), id, identity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, e)
}

func (aw *AdminWeb) updateNetworkState(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	sn, err := aw.network(c)
	if err != nil {
		return err
	}
	var req model.NetworkStateRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if req.Active == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing active")
	}
	e, err := sn.UpdateNetworkState(c.Request().Context(), identity, *req.Active)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, e)
}

func (aw *AdminWeb) addPeer(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	sn, err := aw.network(c)
	if err != nil {
		return err
	}
	var req model.PeerRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if req.PubKeyHash == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing pubKeyHash")
	}
	e, err := sn.AddPeer(c.Request().Context(), identity, req.PubKeyHash, subnet.WithMacHash(req.MacHash))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, e)
}

func (aw *AdminWeb) listPeers(c echo.Context) error {
	sn, err := aw.network(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sn.Peers())
}

func (aw *AdminWeb) peerCount(c echo.Context) error {
	sn, err := aw.network(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, model.CountResponse{Count: sn.PeerCount()})
}

func (aw *AdminWeb) getPeerInfo(c echo.Context) error {
	sn, err := aw.network(c)
	if err != nil {
		return err
	}
	info, err := sn.PeerInfo(c.Param("pubKeyHash"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, info)
}

func (aw *AdminWeb) removePeer(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	sn, err := aw.network(c)
	if err != nil {
		return err
	}
	e, err := sn.RemovePeer(c.Request().Context(), identity, c.Param("pubKeyHash"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, e)
}

func (aw *AdminWeb) addPeerRelation(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	sn, err := aw.network(c)
	if err != nil {
		return err
	}
	var req model.RelationRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if req.Mine == "" || req.Other == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing mine or other")
	}
	e, err := sn.AddPeerRelation(c.Request().Context(), identity, req.Mine, req.Other)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, e)
}

func (aw *AdminWeb) removePeerRelation(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	sn, err := aw.network(c)
	if err != nil {
		return err
	}
	mine, other := c.QueryParam("mine"), c.QueryParam("other")
	if mine == "" || other == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing mine or other")
	}
	e, err := sn.RemovePeerRelation(c.Request().Context(), identity, mine, other)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, e)
}

func (aw *AdminWeb) registerUser(c echo.Context) error {
	var req model.PeerRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if req.PubKeyHash == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing pubKeyHash")
	}
	e, err := aw.manager.RegisterUser(c.Request().Context(), req.PubKeyHash, req.MacHash)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, e)
}

func (aw *AdminWeb) listUsers(c echo.Context) error {
	return c.JSON(http.StatusOK, aw.manager.Users())
}

func (aw *AdminWeb) userCount(c echo.Context) error {
	return c.JSON(http.StatusOK, model.CountResponse{Count: aw.manager.UserCount()})
}

func (aw *AdminWeb) getUserMacHash(c echo.Context) error {
	pubKeyHash := c.Param("pubKeyHash")
	macHash, err := aw.manager.UserMacHash(pubKeyHash)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, model.MacHashResponse{PubKeyHash: pubKeyHash, MacHash: macHash})
}
