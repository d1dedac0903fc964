package server

const (
	RouteIndex    = "/"
	RouteLogin    = "/login"
	RouteCallback = "/callback"
	RouteResource = "/resource"
	RouteLogout   = "/logout"
)
