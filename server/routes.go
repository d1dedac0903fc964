package server

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteIndex, s.IndexHandler())

	s.RegisterRouteFunc("GET "+RouteLogin, s.LoginHandler())
	s.RegisterRouteFunc("GET "+RouteCallback, s.CallbackHandler())
	s.RegisterRouteFunc("POST "+RouteCallback, s.CallbackHandler()) // For form_post response mode
	s.RegisterRouteFunc("GET "+RouteLogout, s.LogoutHandler())

	s.RegisterRouteFunc("GET "+RouteResource, s.ResourceHandler())
}
