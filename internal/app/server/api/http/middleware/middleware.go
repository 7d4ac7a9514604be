package middleware

import "github.com/danielgtaylor/huma/v2"

// Container накапливает цепочку middleware для очередного хендлера.
// Порядок вызова совпадает с порядком Add.
type Container struct {
	middlewares huma.Middlewares
}

func NewContainer() *Container {
	return &Container{}
}

func (c *Container) Add(mw func(huma.Context, func(huma.Context))) {
	c.middlewares = append(c.middlewares, mw)
}

// GetAllAndClear отдает собранную цепочку и готовит контейнер к следующей
func (c *Container) GetAllAndClear() huma.Middlewares {
	mws := c.middlewares
	c.middlewares = nil
	return mws
}
