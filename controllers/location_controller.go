package controllers

import (
	"net/http"

	"Gin_postgres_redis_inventory/app"
	"Gin_postgres_redis_inventory/db"
	"Gin_postgres_redis_inventory/models"

	"github.com/gin-gonic/gin"
)

type LocationController struct{ *Srv }

func NewLocationController(s *Srv) *LocationController { return &LocationController{Srv: s} }

type locationReq struct {
	RoomName *string `json:"roomName"`
	Floor    *string `json:"floor"`
	Block    *string `json:"block"`
}

func (lc *LocationController) ListLocations(c *gin.Context) {
	ls, err := lc.Repo.ListLocations(c.Request.Context())
	if err != nil {
		lc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": ls})
}

func (lc *LocationController) CreateLocation(c *gin.Context) {
	var req locationReq
	if !lc.bind(c, &req) {
		return
	}
	l := &models.Location{Floor: req.Floor, Block: req.Block}
	if req.RoomName != nil {
		l.RoomName = *req.RoomName
	}
	if err := lc.Repo.CreateLocation(c.Request.Context(), l); err != nil {
		lc.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, l)
}

func (lc *LocationController) UpdateLocation(c *gin.Context) {
	id, ok := lc.intParam(c, "id")
	if !ok {
		return
	}
	var req locationReq
	if !lc.bind(c, &req) {
		return
	}
	l, err := lc.Repo.UpdateLocation(c.Request.Context(), id, db.LocationPatch{
		RoomName: req.RoomName,
		Floor:    req.Floor,
		Block:    req.Block,
	})
	if err != nil {
		lc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

func (lc *LocationController) DeleteLocation(c *gin.Context) {
	id, ok := lc.intParam(c, "id")
	if !ok {
		return
	}
	if err := lc.Repo.DeleteLocation(c.Request.Context(), id); err != nil {
		lc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}
