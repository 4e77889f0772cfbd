package controllers

import (
	"net/http"

	"Gin_postgres_redis_inventory/app"
	"Gin_postgres_redis_inventory/db"
	"Gin_postgres_redis_inventory/models"

	"github.com/gin-gonic/gin"
)

type AssetController struct{ *Srv }

func NewAssetController(s *Srv) *AssetController { return &AssetController{Srv: s} }

type createAssetReq struct {
	Name              string           `json:"name" binding:"required"`
	Description       *string          `json:"description"`
	Category          models.Category  `json:"category" binding:"required"`
	Condition         models.Condition `json:"condition" binding:"required"`
	Quantity          *int             `json:"quantity"`
	CurrentLocationID *int             `json:"currentLocationId"`
}

type updateAssetReq struct {
	Name              *string           `json:"name"`
	Description       *string           `json:"description"`
	Category          *models.Category  `json:"category"`
	Condition         *models.Condition `json:"condition"`
	Quantity          *int              `json:"quantity"`
	CurrentLocationID *int              `json:"currentLocationId"`
	ClearLocation     bool              `json:"clearLocation"`
	MoveReason        *string           `json:"moveReason"`
}

// GET /api/assets?q=&category=&available=true
func (ac *AssetController) ListAssets(c *gin.Context) {
	q := db.AssetQuery{
		Q:             c.Query("q"),
		Category:      models.Category(c.Query("category")),
		OnlyAvailable: c.Query("available") == "true",
	}
	rows, err := ac.Repo.ListAssets(c.Request.Context(), q)
	if err != nil {
		ac.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": rows})
}

// GET /api/assets/:id
func (ac *AssetController) GetAsset(c *gin.Context) {
	id, ok := ac.intParam(c, "id")
	if !ok {
		return
	}
	a, err := ac.Repo.GetAsset(c.Request.Context(), id)
	if err != nil {
		ac.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// POST /api/assets 只做存储层的约束（非空与 cantidad >= 0）
func (ac *AssetController) CreateAsset(c *gin.Context) {
	var req createAssetReq
	if !ac.bind(c, &req) {
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	a := &models.Asset{
		Name:              req.Name,
		Description:       req.Description,
		Category:          req.Category,
		Condition:         req.Condition,
		Quantity:          qty,
		CurrentLocationID: req.CurrentLocationID,
	}
	if err := ac.Repo.CreateAsset(c.Request.Context(), a); err != nil {
		ac.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

// PUT /api/assets/:id
func (ac *AssetController) UpdateAsset(c *gin.Context) {
	id, ok := ac.intParam(c, "id")
	if !ok {
		return
	}
	var req updateAssetReq
	if !ac.bind(c, &req) {
		return
	}
	a, err := ac.Repo.UpdateAsset(c.Request.Context(), id, db.AssetPatch{
		Name:              req.Name,
		Description:       req.Description,
		Category:          req.Category,
		Condition:         req.Condition,
		Quantity:          req.Quantity,
		CurrentLocationID: req.CurrentLocationID,
		ClearLocation:     req.ClearLocation,
		MoveReason:        req.MoveReason,
	})
	if err != nil {
		ac.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// DELETE /api/assets/:id
func (ac *AssetController) DeleteAsset(c *gin.Context) {
	id, ok := ac.intParam(c, "id")
	if !ok {
		return
	}
	if err := ac.Repo.DeleteAsset(c.Request.Context(), id); err != nil {
		ac.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// GET /api/assets/:id/availability
func (ac *AssetController) Availability(c *gin.Context) {
	id, ok := ac.intParam(c, "id")
	if !ok {
		return
	}
	free, err := ac.Repo.IsAssetAvailable(c.Request.Context(), id)
	if err != nil {
		ac.fail(c, err)
		return
	}
	a, err := ac.Repo.GetAsset(c.Request.Context(), id)
	if err != nil {
		ac.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"assetId": id, "available": free, "quantity": a.Quantity})
}

// GET /api/assets/:id/movements
func (ac *AssetController) Movements(c *gin.Context) {
	id, ok := ac.intParam(c, "id")
	if !ok {
		return
	}
	ms, err := ac.Repo.ListMovements(c.Request.Context(), id)
	if err != nil {
		ac.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": ms})
}
