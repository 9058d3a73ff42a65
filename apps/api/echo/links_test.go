package echoapi

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/campus/core"
)

func TestLink_JSON(t *testing.T) {
	var l Link
	b, err := json.Marshal(l)
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))

	l = Link{URL: "http://example.com/academics/faculty/1/", Valid: true}
	b, err = json.Marshal(l)
	require.NoError(t, err)
	assert.Equal(t, `"http://example.com/academics/faculty/1/"`, string(b))

	tests := []struct {
		in           string
		wantValid    bool
		wantReceived string
	}{
		{in: `null`},
		{in: `"http://x/academics/faculty/1/"`, wantValid: true},
		{in: `1`, wantReceived: "int"},
		{in: `true`, wantReceived: "bool"},
		{in: `[1]`, wantReceived: "list"},
		{in: `{"id": 1}`, wantReceived: "dict"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var got Link
			require.NoError(t, json.Unmarshal([]byte(tt.in), &got))
			assert.Equal(t, tt.wantValid, got.Valid)
			assert.Equal(t, tt.wantReceived, got.received)
		})
	}
}

func TestLinks(t *testing.T) {
	req := httptest.NewRequest("GET", "/academics/faculty", nil)
	req.Host = "campus.test"
	ctx := echo.New().NewContext(req, httptest.NewRecorder())

	l := newLinks(ctx)
	assert.Equal(t, "http://campus.test/academics/faculty/3/", l.url(facultyRoute, 3))
	assert.False(t, l.optional(levelRoute, nil).Valid)

	id := int64(7)
	assert.Equal(t, "http://campus.test/academics/level/7/", l.optional(levelRoute, &id).URL)

	many := l.many(quizRoute, []int64{1, 2})
	require.Len(t, many, 2)
	assert.Equal(t, "http://campus.test/assessment/quiz/2/", many[1].URL)
}

func TestLinkID(t *testing.T) {
	tests := []struct {
		name   string
		route  string
		raw    string
		wantID int64
		wantOK bool
	}{
		{name: "absolute", route: facultyRoute, raw: "http://campus.test/academics/faculty/12/", wantID: 12, wantOK: true},
		{name: "no trailing slash", route: facultyRoute, raw: "http://campus.test/academics/faculty/12", wantID: 12, wantOK: true},
		{name: "path only", route: quizTakerRoute, raw: "/assessment/quizTaker/4/", wantID: 4, wantOK: true},
		{name: "other route", route: facultyRoute, raw: "http://campus.test/academics/department/12/"},
		{name: "list url", route: facultyRoute, raw: "http://campus.test/academics/faculty/"},
		{name: "not a number", route: facultyRoute, raw: "http://campus.test/academics/faculty/abc/"},
		{name: "nested", route: facultyRoute, raw: "http://campus.test/academics/faculty/1/2/"},
		{name: "zero", route: facultyRoute, raw: "http://campus.test/academics/faculty/0/"},
		{name: "garbage", route: facultyRoute, raw: "lol"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := linkID(tt.route, tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestLinkResolver(t *testing.T) {
	var r linkResolver

	assert.Equal(t, int64(5), r.required("faculty", facultyRoute, Link{URL: "/academics/faculty/5/", Valid: true}))
	assert.Equal(t, int64(0), r.required("faculty", facultyRoute, Link{}))
	assert.Nil(t, r.optional("level", levelRoute, Link{}))
	require.NoError(t, r.err())

	r.required("department", departmentRoute, Link{URL: "/academics/faculty/5/", Valid: true})
	r.optional("level", levelRoute, Link{received: "int"})
	ids := r.many("quiz", quizRoute, []Link{{URL: "/assessment/quiz/1/", Valid: true}, {}})
	assert.Equal(t, []int64{1}, ids)

	err := r.err()
	require.Error(t, err)
	vErr, ok := err.(*core.ValidationError)
	require.True(t, ok)
	assert.ElementsMatch(t, []core.FieldError{
		{Field: "department", Error: msgNoURLMatch},
		{Field: "level", Error: "Incorrect type. Expected URL string, received int."},
		{Field: "quiz", Error: "This field may not be null."},
	}, vErr.Fields)
}
