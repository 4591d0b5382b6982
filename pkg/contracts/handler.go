package contracts

import "github.com/julienschmidt/httprouter"

// Handler is an HTTP module that mounts its routes on the shared router.
type Handler interface {
	RegisterRoutes(*httprouter.Router)
}

// Closer is a resource the application releases during graceful shutdown.
type Closer interface {
	Close() error
}

// CloserFunc adapts a plain function to Closer.
type CloserFunc func() error

func (f CloserFunc) Close() error {
	return f()
}
