package api

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/viper"

	"github.com/ougirez/bizmap/internal/api/controller"
	"github.com/ougirez/bizmap/internal/pkg/constants"
	"github.com/ougirez/bizmap/internal/pkg/logger"
	"github.com/ougirez/bizmap/internal/pkg/store"
	"github.com/ougirez/bizmap/internal/service/analytics"
	"github.com/ougirez/bizmap/internal/service/auth"
	"github.com/ougirez/bizmap/internal/service/business"
	"github.com/ougirez/bizmap/internal/service/dashboard"
)

type APIService struct {
	router *echo.Echo
}

func (svc *APIService) Serve(addr string) {
	logger.Fatal(context.Background(), svc.router.Start(addr))
}

func (svc *APIService) Shutdown(ctx context.Context) error {
	return svc.router.Shutdown(ctx)
}

func newRouter() *echo.Echo {
	router := echo.New()
	router.HideBanner = true
	router.Validator = NewValidator()
	router.Binder = NewBinder()
	router.HTTPErrorHandler = httpErrorHandler
	router.Use(middleware.Logger())
	router.Use(RequestIDMiddleware)
	router.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{viper.GetString(constants.ViperCORSOrigin)},
		AllowMethods: []string{echo.GET, echo.PUT, echo.POST, echo.DELETE},
		AllowHeaders: []string{"Content-Type", "Authorization"},
	}))
	return router
}

// NewAPIService builds the companion analytics backend: the catalog,
// location and timeline endpoints the dashboard engine consumes.
func NewAPIService(st store.Store) (*APIService, error) {
	svc := &APIService{router: newRouter()}

	cntrl := controller.NewController(
		business.NewBusinessService(st),
		analytics.NewAnalyticsService(st),
		auth.NewAuthService(),
	)

	api := svc.router.Group("/api/v1")

	businesses := api.Group("/businesses")
	businesses.GET("", cntrl.ListBusinesses)
	businesses.GET("/viewport", cntrl.ListBusinessesInViewport)
	businesses.GET("/search", cntrl.SearchBusinesses)
	businesses.GET("/:id", cntrl.GetBusiness)

	api.GET("/reviews/:business_id", cntrl.ListReviews)

	api.GET("/states", cntrl.ListStates)
	api.GET("/cities", cntrl.ListCities)
	api.GET("/locations/summary", cntrl.LocationsSummary)

	analyticsGroup := api.Group("/analytics")
	analyticsGroup.GET("/business/:id/ratings-timeline", cntrl.BusinessRatingsTimeline)
	analyticsGroup.GET("/business/:id/sentiment-timeline", cntrl.BusinessSentimentTimeline)
	analyticsGroup.GET("/business/:id/comparison/city", cntrl.BusinessCityComparison)
	analyticsGroup.GET("/business/:id/comparison/state", cntrl.BusinessStateComparison)
	analyticsGroup.GET("/city/:state/:city/ratings-timeline", cntrl.CityRatingsTimeline)
	analyticsGroup.GET("/state/:state/ratings-timeline", cntrl.StateRatingsTimeline)
	analyticsGroup.GET("/category/:category/ratings-timeline", cntrl.CategoryRatingsTimeline)

	admin := api.Group("/admin")
	admin.POST("/login", cntrl.AdminLogin)
	admin.POST("/seed", cntrl.Seed, AdminMiddleware)

	return svc, nil
}

// NewEngineService builds the dashboard engine surface: session-scoped
// filter, selection, map, scatter, timeline and search operations.
func NewEngineService(svc *dashboard.Service) (*APIService, error) {
	engine := &APIService{router: newRouter()}

	cntrl := controller.NewEngineController(svc)

	sessions := engine.router.Group("/api/v1/dashboard/sessions")
	sessions.POST("", cntrl.CreateSession)

	one := sessions.Group("/:session_id")
	one.DELETE("", cntrl.CloseSession)
	one.POST("/filters", cntrl.SetFilters)
	one.POST("/reset", cntrl.Reset)
	one.POST("/select", cntrl.Select)
	one.DELETE("/select", cntrl.Deselect)
	one.POST("/viewport", cntrl.SetViewport)
	one.POST("/markers/click", cntrl.ClickMarker)
	one.POST("/background/click", cntrl.ClickBackground)
	one.POST("/zoom/in", cntrl.ZoomIn)
	one.POST("/zoom/out", cntrl.ZoomOut)
	one.POST("/orientation/reset", cntrl.ResetOrientation)
	one.GET("/map", cntrl.MapFrame)
	one.GET("/scatter", cntrl.ScatterFrame)
	one.GET("/timeline", cntrl.TimelineFrame)
	one.POST("/search", cntrl.SetSearchQuery)
	one.DELETE("/search", cntrl.CloseSearch)
	one.GET("/search/results", cntrl.SearchResults)
	one.POST("/search/highlight/next", cntrl.SearchHighlightNext)
	one.POST("/search/highlight/prev", cntrl.SearchHighlightPrev)
	one.POST("/search/confirm", cntrl.SearchConfirm)

	return engine, nil
}
