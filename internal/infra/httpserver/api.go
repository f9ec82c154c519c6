package httpserver

import "github.com/gorilla/mux"

type Controller interface {
	AddRoutes(*mux.Router)
}
