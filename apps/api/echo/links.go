package echoapi

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/campus/core"
)

const (
	msgNoURLMatch    = "Invalid hyperlink - No URL match."
	msgIncorrectLink = "Incorrect type. Expected URL string, received %s."

	userRoute        = "core/user"
	facultyRoute     = "academics/faculty"
	departmentRoute  = "academics/department"
	programmeRoute   = "academics/programme"
	courseRoute      = "academics/course"
	levelRoute       = "academics/level"
	quizRoute        = "assessment/quiz"
	questionRoute    = "assessment/question"
	answerRoute      = "assessment/answer"
	quizTakerRoute   = "assessment/quizTaker"
	responseRoute    = "assessment/response"
	gradeRoute       = "assessment/grade"
	scopeRoute       = "information/scope"
	informationRoute = "information/information"
	noticeRoute      = "information/notice"
	imageRoute       = "information/image"
)

// Link is a hyperlink to another resource. It renders as a URL string, or null when unset.
// Any JSON value is accepted on input; it is checked when resolved against a route.
type Link struct {
	URL   string
	Valid bool

	received string // JSON type of a non-string input
}

func (l Link) MarshalJSON() ([]byte, error) {
	if !l.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(l.URL)
}

func (l *Link) UnmarshalJSON(data []byte) error {
	*l = Link{}
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case nil:
	case string:
		l.URL, l.Valid = val, true
	case float64:
		l.received = "int"
	case bool:
		l.received = "bool"
	case []interface{}:
		l.received = "list"
	default:
		l.received = "dict"
	}
	return nil
}

// links renders resource URLs for the host a request was made to.
type links struct {
	base string // scheme://host
}

func newLinks(ctx echo.Context) links {
	return links{base: ctx.Scheme() + "://" + ctx.Request().Host}
}

func (l links) url(route string, id int64) string {
	return fmt.Sprintf("%s/%s/%d/", l.base, route, id)
}

func (l links) link(route string, id int64) Link {
	return Link{URL: l.url(route, id), Valid: true}
}

func (l links) optional(route string, id *int64) Link {
	if id == nil {
		return Link{}
	}
	return l.link(route, *id)
}

func (l links) many(route string, ids []int64) []Link {
	out := make([]Link, 0, len(ids))
	for _, id := range ids {
		out = append(out, l.link(route, id))
	}
	return out
}

// linkID extracts the id of a route's detail URL. Absolute URLs and bare paths are both accepted.
func linkID(route, raw string) (int64, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return 0, false
	}
	p := strings.Trim(u.Path, "/")
	prefix := route + "/"
	if !strings.HasPrefix(p, prefix) {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(p, prefix), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// linkResolver turns incoming links into ids, collecting per-field errors.
type linkResolver struct {
	errs core.FieldErrors
}

func (r *linkResolver) resolve(field, route string, l Link) (int64, bool) {
	if l.received != "" {
		r.errs.Add(field, fmt.Sprintf(msgIncorrectLink, l.received))
		return 0, false
	}
	if !l.Valid {
		return 0, false
	}
	id, ok := linkID(route, l.URL)
	if !ok {
		r.errs.Add(field, msgNoURLMatch)
		return 0, false
	}
	return id, true
}

// required returns 0 for a null link; required field validation reports it.
func (r *linkResolver) required(field, route string, l Link) int64 {
	id, _ := r.resolve(field, route, l)
	return id
}

func (r *linkResolver) optional(field, route string, l Link) *int64 {
	if id, ok := r.resolve(field, route, l); ok {
		return &id
	}
	return nil
}

func (r *linkResolver) many(field, route string, ls []Link) []int64 {
	ids := make([]int64, 0, len(ls))
	for _, l := range ls {
		if !l.Valid && l.received == "" {
			r.errs.Add(field, "This field may not be null.")
			continue
		}
		if id, ok := r.resolve(field, route, l); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func (r *linkResolver) err() error {
	return r.errs.Err()
}
