package routes

import (
	"net/http"

	"Gin_postgres_redis_inventory/app"
	"Gin_postgres_redis_inventory/controllers"
	"Gin_postgres_redis_inventory/models"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	// 控制器与依赖
	s := controllers.GetSrv(a)
	authCtl := controllers.NewAuthController(s)
	assetCtl := controllers.NewAssetController(s)
	locCtl := controllers.NewLocationController(s)
	personCtl := controllers.NewPersonController(s)
	loanCtl := controllers.NewLoanController(s)
	reportCtl := controllers.NewReportController(s)

	// 复用的中间件
	authMW := a.AuthRequired()
	seenMW := a.TouchSession()
	readMW := app.RequireLevel(models.PermissionReadOnly)
	writeMW := app.RequireLevel(models.PermissionAdmin)

	r.GET("/healthz", func(c *app.Ctx) { c.JSON(http.StatusOK, app.H{"ok": true}) })

	// ------------------------------
	// 登录 / 会话
	// ------------------------------
	r.POST("/api/auth/login", authCtl.Login)
	sess := r.Group("/api/auth", authMW, seenMW)
	{
		sess.POST("/logout", authCtl.Logout)
		sess.GET("/me", authCtl.Me)
	}

	api := r.Group("/api", authMW, seenMW)

	// ------------------------------
	// 资产
	// ------------------------------
	assets := api.Group("/assets")
	{
		assets.GET("", readMW, assetCtl.ListAssets) // ?q=&category=&available=
		assets.GET("/:id", readMW, assetCtl.GetAsset)
		assets.GET("/:id/availability", readMW, assetCtl.Availability)
		assets.GET("/:id/movements", readMW, assetCtl.Movements)

		assets.POST("", writeMW, assetCtl.CreateAsset)
		assets.PUT("/:id", writeMW, assetCtl.UpdateAsset)
		assets.DELETE("/:id", writeMW, assetCtl.DeleteAsset)
	}

	// ------------------------------
	// 位置
	// ------------------------------
	locs := api.Group("/locations")
	{
		locs.GET("", readMW, locCtl.ListLocations)
		locs.POST("", writeMW, locCtl.CreateLocation)
		locs.PUT("/:id", writeMW, locCtl.UpdateLocation)
		locs.DELETE("/:id", writeMW, locCtl.DeleteLocation)
	}

	// ------------------------------
	// 人员
	// ------------------------------
	persons := api.Group("/persons")
	{
		persons.GET("", readMW, personCtl.ListPersons) // ?q=&type=
		persons.GET("/:id", readMW, personCtl.GetPerson)
		persons.POST("", writeMW, personCtl.CreatePerson)
		persons.PUT("/:id", writeMW, personCtl.UpdatePerson)
		persons.DELETE("/:id", writeMW, personCtl.DeletePerson)
		persons.PUT("/:id/password", writeMW, personCtl.SetPassword)
	}

	// ------------------------------
	// 借还
	// ------------------------------
	loans := api.Group("/loans")
	{
		loans.GET("", readMW, loanCtl.ListLoans) // ?person=&asset=&status=&from=&to=
		loans.GET("/active", readMW, loanCtl.ActiveLoans)
		loans.GET("/:id", readMW, loanCtl.GetLoan)

		loans.POST("", writeMW, loanCtl.CreateLoan)
		loans.POST("/sweep", writeMW, loanCtl.Sweep)
		loans.POST("/:id/return", writeMW, loanCtl.ReturnLoan)
	}

	// ------------------------------
	// 报表
	// ------------------------------
	reports := api.Group("/reports", readMW)
	{
		reports.GET("/dashboard", reportCtl.Dashboard)
		reports.GET("/summary", reportCtl.Summary)
		reports.GET("/loans", reportCtl.LoanReport) // ?by=&id=&from=&to=&format=
	}
}
