package engine

import (
	"net/http"

	"github.com/drummonds/goLIMS/router"
	"github.com/labstack/echo/v4"
)

// RegisterPageRoutes serves the web app at every path in the route table.
// Each echo route carries the page's route name so echo.Reverse and
// router.Table.Path produce the same URLs.
func RegisterPageRoutes(e *echo.Echo, table *router.Table, appHandler http.Handler) {
	h := echo.WrapHandler(appHandler)
	for _, r := range table.Routes() {
		e.GET(r.Path, h).Name = r.Name
		Logger.Debug("Registered page route", "name", r.Name, "path", r.Path, "view", r.View)
	}
}

// GetRoutes returns the page route table
func (serverHandler *ServerHandler) GetRoutes(context echo.Context) error {
	return context.JSON(http.StatusOK, serverHandler.Routes.Routes())
}

// ResolveRoute matches ?path= against the page route table
func (serverHandler *ServerHandler) ResolveRoute(context echo.Context) error {
	path := context.QueryParam("path")
	match, ok := serverHandler.Routes.Match(path)
	if !ok {
		serverHandler.Metrics.resolved("none")
		return context.JSON(http.StatusNotFound, map[string]interface{}{
			"error": "No page matches path",
			"path":  path,
		})
	}
	serverHandler.Metrics.resolved(match.Route.Name)
	params := match.Params
	if params == nil {
		params = router.Params{}
	}
	return context.JSON(http.StatusOK, map[string]interface{}{
		"name":   match.Route.Name,
		"view":   match.Route.View,
		"path":   match.Route.Path,
		"params": params,
		"props":  match.Props(),
	})
}
