package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/campus/core"
)

// resource serves the list/detail endpoints of one entity (T) through its JSON representation (R).
//
// Writes decode the body onto a representation first: create and PUT start from blank(), PATCH from
// the rendered row, so keys absent from a PATCH keep their values. save turns the representation into
// a service call; id is 0 on create.
type resource[T any, R any] struct {
	name   string // used in wrapped errors
	query  func(ctx context.Context, orderings []core.DBOrdering) ([]T, error)
	get    func(ctx context.Context, id int64) (T, error)
	delete func(ctx context.Context, id int64) error
	render func(l links, obj T) R
	blank  func(l links) R
	save   func(ctx echo.Context, id int64, rep R) (T, error)
	bind   func(ctx echo.Context, rep *R) error // defaults to bindJSON
}

func (res resource[T, R]) register(g *echo.Group, path string, m ...echo.MiddlewareFunc) {
	rg := g.Group(path, m...)
	rg.GET("", res.list)
	rg.POST("", res.create)
	rg.GET("/:id", res.retrieve)
	rg.PUT("/:id", res.update)
	rg.PATCH("/:id", res.partialUpdate)
	rg.DELETE("/:id", res.destroy)
}

func (res resource[T, R]) decode(ctx echo.Context, rep *R) error {
	if res.bind != nil {
		return res.bind(ctx, rep)
	}
	return bindJSON(ctx, rep)
}

func (res resource[T, R]) list(ctx echo.Context) error {
	ordering := new(Ordering)
	ordering.Bind(ctx)

	objs, err := res.query(ctx.Request().Context(), ordering.Orderings)
	if err != nil {
		return errors.Wrapf(err, "querying %s", res.name)
	}
	l := newLinks(ctx)
	reps := make([]R, 0, len(objs))
	for _, obj := range objs {
		reps = append(reps, res.render(l, obj))
	}
	return ctx.JSON(http.StatusOK, reps)
}

func (res resource[T, R]) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	obj, err := res.get(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrapf(err, "getting %s", res.name)
	}
	return ctx.JSON(http.StatusOK, res.render(newLinks(ctx), obj))
}

func (res resource[T, R]) create(ctx echo.Context) error {
	l := newLinks(ctx)
	rep := res.blank(l)
	if err := res.decode(ctx, &rep); err != nil {
		return err
	}
	obj, err := res.save(ctx, 0, rep)
	if err != nil {
		return errors.Wrapf(err, "creating %s", res.name)
	}
	return ctx.JSON(http.StatusCreated, res.render(l, obj))
}

func (res resource[T, R]) update(ctx echo.Context) error {
	return res.write(ctx, false)
}

func (res resource[T, R]) partialUpdate(ctx echo.Context) error {
	return res.write(ctx, true)
}

func (res resource[T, R]) write(ctx echo.Context, partial bool) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	current, err := res.get(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrapf(err, "getting %s", res.name)
	}

	l := newLinks(ctx)
	rep := res.blank(l)
	if partial {
		rep = res.render(l, current)
	}
	if err = res.decode(ctx, &rep); err != nil {
		return err
	}
	obj, err := res.save(ctx, id, rep)
	if err != nil {
		return errors.Wrapf(err, "updating %s", res.name)
	}
	return ctx.JSON(http.StatusOK, res.render(l, obj))
}

func (res resource[T, R]) destroy(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err = res.delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrapf(err, "deleting %s", res.name)
	}
	return ctx.NoContent(http.StatusNoContent)
}
