package contracts

import "github.com/julienschmidt/httprouter"

type Handler interface {
	RegisterRoutes(*httprouter.Router)
}

type composite []Handler

// Compose groups handlers so a service can mount several domains on one
// router.
func Compose(handlers ...Handler) Handler {
	return composite(handlers)
}

func (c composite) RegisterRoutes(router *httprouter.Router) {
	for _, h := range c {
		h.RegisterRoutes(router)
	}
}
