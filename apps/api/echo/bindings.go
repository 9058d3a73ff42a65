package echoapi

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/campus/core"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// readOnly is a server-set representation field: it renders its value and ignores any client input.
type readOnly[T any] struct {
	v T
}

func ro[T any](v T) readOnly[T] {
	return readOnly[T]{v: v}
}

func (r readOnly[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.v)
}

func (*readOnly[T]) UnmarshalJSON([]byte) error {
	return nil
}

// pathID parses the :id path param. A malformed id is reported as not found.
func pathID(ctx echo.Context) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errHttpNotFound
	}
	return id, nil
}

func mediaType(ctx echo.Context) string {
	mt, _, _ := mime.ParseMediaType(ctx.Request().Header.Get(echo.HeaderContentType))
	return mt
}

// bindJSON decodes the request body onto dst, leaving the fields of absent keys untouched.
// An empty body is accepted.
func bindJSON(ctx echo.Context, dst interface{}) error {
	req := ctx.Request()
	if req.Body == nil || req.Body == http.NoBody {
		return nil
	}
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return errors.Wrap(err, "reading request body")
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}
	if mt := mediaType(ctx); mt != echo.MIMEApplicationJSON {
		return echo.NewHTTPError(http.StatusUnsupportedMediaType, fmt.Sprintf("Unsupported media type %q in request.", mt))
	}
	return decodeJSON(body, dst)
}

func decodeJSON(body []byte, dst interface{}) error {
	err := json.Unmarshal(body, dst)
	if err == nil {
		return nil
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return core.NewFieldError(typeErr.Field, fmt.Sprintf("Incorrect type. Expected %s, received %s.", typeErr.Type, typeErr.Value))
	}
	return core.NewValidationError(errors.Errorf("JSON parse error - %v", err))
}
