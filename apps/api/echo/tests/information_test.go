package tests

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/campus/tests"
)

const (
	scopeRoute       = "information/scope"
	informationRoute = "information/information"
	noticeRoute      = "information/notice"
	imageRoute       = "information/image"
)

func pngBytes(t *testing.T) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// upload sends a multipart form; file is attached as "image" when not nil.
func (app *testApp) upload(t *testing.T, method, target string, fields map[string]string, filename string, file []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if file != nil {
		fw, err := w.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+app.staffTok)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

func decodeObj(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	var obj map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &obj), rec.Body.String())
	return obj
}

// mediaFile maps an image URL to its path under the media root.
func (app *testApp) mediaFile(imageURL interface{}) string {
	rel := strings.TrimPrefix(imageURL.(string), host+app.conf.Media.URL)
	return filepath.Join(app.conf.Media.Root, filepath.FromSlash(rel))
}

func Test_informationApi(t *testing.T) {
	app := setup(t)
	tok := app.studentTk

	scope := app.call(t, http.MethodPost, path(scopeRoute), tok, map[string]interface{}{"description": "Everyone"}, http.StatusCreated)
	assert.Equal(t, true, scope["is_general"])
	assert.Nil(t, scope["faculty"])

	faculty := app.call(t, http.MethodPost, path("academics/faculty"), tok, map[string]interface{}{"name": "Science"}, http.StatusCreated)
	narrow := app.call(t, http.MethodPost, path(scopeRoute), tok, map[string]interface{}{
		"description":   "Science finalists",
		"is_general":    false,
		"is_final_year": true,
		"faculty":       faculty["url"],
	}, http.StatusCreated)
	assert.Equal(t, faculty["url"], narrow["faculty"])
	assert.Equal(t, true, narrow["is_final_year"])

	info := app.call(t, http.MethodPost, path(informationRoute), tok, map[string]interface{}{
		"title":  "Exams",
		"body":   "Exams start on Monday.",
		"scope":  scope["url"],
		"source": 999, // owner fields are not writable
	}, http.StatusCreated)
	assert.Equal(t, float64(app.student.ID), info["source"])
	assert.Equal(t, scope["url"], info["scope"])

	notice := app.call(t, http.MethodPost, path(noticeRoute), tok, map[string]interface{}{
		"title":   "Closed",
		"message": "The library is closed today.",
		"scope":   narrow["url"],
	}, http.StatusCreated)
	assert.Equal(t, float64(app.student.ID), notice["source"])

	tests := []httpTest{
		{
			name: "information: missing scope", method: http.MethodPost, path: path(informationRoute), token: tok,
			body: []byte(`{"title": "t", "body": "b"}`), wantCode: http.StatusBadRequest, wantData: []byte(`{"scope": "this field is required"}`),
		},
		{
			name: "notice: scope of wrong type", method: http.MethodPost, path: path(noticeRoute), token: tok,
			body: []byte(`{"title": "t", "message": "m", "scope": true}`), wantCode: http.StatusBadRequest,
			wantData: []byte(`{"scope": "Incorrect type. Expected URL string, received bool."}`),
		},
	}
	runHTTPTests(t, app, tests)

	t.Run("deleting a scope removes its information", func(t *testing.T) {
		app.call(t, http.MethodDelete, path(scopeRoute, narrow["id"]), tok, nil, http.StatusNoContent)
		app.call(t, http.MethodGet, path(noticeRoute, notice["id"]), tok, nil, http.StatusNotFound)
		app.call(t, http.MethodGet, path(informationRoute, info["id"]), tok, nil, http.StatusOK)
	})
}

func Test_imageApi(t *testing.T) {
	app := setup(t)
	tok := app.staffTok

	scope := app.call(t, http.MethodPost, path(scopeRoute), tok, map[string]interface{}{"description": "Everyone"}, http.StatusCreated)
	info := app.call(t, http.MethodPost, path(informationRoute), tok, map[string]interface{}{"title": "Campus", "body": "Photos", "scope": scope["url"]}, http.StatusCreated)
	infoURL := info["url"].(string)

	rec := app.upload(t, http.MethodPost, path(imageRoute), map[string]string{"information": infoURL, "description": "Front"}, "front.PNG", pngBytes(t))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	img := decodeObj(t, rec)
	assert.Equal(t, infoURL, img["information"])
	assert.Equal(t, "Front", img["description"])
	require.NotNil(t, img["image"])
	assert.True(t, strings.HasPrefix(img["image"].(string), host+"/media/images/"), img["image"])
	assert.True(t, strings.HasSuffix(img["image"].(string), ".png"), img["image"])
	first := app.mediaFile(img["image"])
	assert.FileExists(t, first)

	t.Run("served under media", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, strings.TrimPrefix(img["image"].(string), host), nil)
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, pngBytes(t), rec.Body.Bytes())
	})

	t.Run("invalid image leaves the row unchanged", func(t *testing.T) {
		rec := app.upload(t, http.MethodPatch, path(imageRoute, img["id"]), map[string]string{"description": "Broken"}, "notes.png", []byte("not an image"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeObj(t, rec)["image"], "Upload a valid image.")

		got := app.call(t, http.MethodGet, path(imageRoute, img["id"]), tok, nil, http.StatusOK)
		assert.Equal(t, img["image"], got["image"])
		assert.Equal(t, "Front", got["description"])
	})

	t.Run("empty file", func(t *testing.T) {
		rec := app.upload(t, http.MethodPost, path(imageRoute), map[string]string{"information": infoURL}, "empty.png", []byte{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "The submitted file is empty.", decodeObj(t, rec)["image"])
	})

	t.Run("json image value is not a file", func(t *testing.T) {
		got := app.call(t, http.MethodPatch, path(imageRoute, img["id"]), tok, map[string]interface{}{"image": "cat.png"}, http.StatusBadRequest)
		assert.Equal(t, "The submitted data was not a file. Check the encoding type on the form.", got["image"])
	})

	t.Run("json patch keeps the file", func(t *testing.T) {
		got := app.call(t, http.MethodPatch, path(imageRoute, img["id"]), tok, map[string]interface{}{"description": "Front gate"}, http.StatusOK)
		assert.Equal(t, img["image"], got["image"])
		assert.Equal(t, "Front gate", got["description"])
	})

	var second string
	t.Run("replacing the file removes the previous one", func(t *testing.T) {
		rec := app.upload(t, http.MethodPatch, path(imageRoute, img["id"]), nil, "back.png", pngBytes(t))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		got := decodeObj(t, rec)
		assert.NotEqual(t, img["image"], got["image"])
		assert.Equal(t, "Front gate", got["description"])
		second = app.mediaFile(got["image"])
		assert.FileExists(t, second)
		assert.NoFileExists(t, first)
	})

	t.Run("clearing the file", func(t *testing.T) {
		got := app.call(t, http.MethodPatch, path(imageRoute, img["id"]), tok, []byte(`{"image": null}`), http.StatusOK)
		assert.Nil(t, got["image"])
		assert.NoFileExists(t, second)
	})

	t.Run("deleting the row removes its file", func(t *testing.T) {
		rec := app.upload(t, http.MethodPatch, path(imageRoute, img["id"]), nil, "side.png", pngBytes(t))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		file := app.mediaFile(decodeObj(t, rec)["image"])

		app.call(t, http.MethodDelete, path(imageRoute, img["id"]), tok, nil, http.StatusNoContent)
		_, err := os.Stat(file)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("deleting the information or its scope removes image files", func(t *testing.T) {
		other := app.call(t, http.MethodPost, path(informationRoute), tok, map[string]interface{}{"title": "Labs", "body": "More photos", "scope": scope["url"]}, http.StatusCreated)

		rec := app.upload(t, http.MethodPost, path(imageRoute), map[string]string{"information": infoURL}, "a.png", pngBytes(t))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		infoFile := app.mediaFile(decodeObj(t, rec)["image"])

		rec = app.upload(t, http.MethodPost, path(imageRoute), map[string]string{"information": other["url"].(string)}, "b.png", pngBytes(t))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		scopeFile := app.mediaFile(decodeObj(t, rec)["image"])

		app.call(t, http.MethodDelete, path(informationRoute, info["id"]), tok, nil, http.StatusNoContent)
		assert.NoFileExists(t, infoFile)
		assert.FileExists(t, scopeFile)

		app.call(t, http.MethodDelete, path(scopeRoute, scope["id"]), tok, nil, http.StatusNoContent)
		assert.NoFileExists(t, scopeFile)
		app.call(t, http.MethodGet, path(informationRoute, other["id"]), tok, nil, http.StatusNotFound)
	})
}

func Test_deletingSourceRemovesImageFiles(t *testing.T) {
	app := setup(t)
	tok := app.staffTok

	author := testutil.CreateUser(t, app.usrRepo, "Author", "author@test.cd", "author-pwd-123", false, true)
	authorTok := getToken(t, app.conf, author)

	scope := app.call(t, http.MethodPost, path(scopeRoute), tok, map[string]interface{}{"description": "Everyone"}, http.StatusCreated)
	info := app.call(t, http.MethodPost, path(informationRoute), authorTok, map[string]interface{}{"title": "Trip", "body": "Photos", "scope": scope["url"]}, http.StatusCreated)
	assert.Equal(t, float64(author.ID), info["source"])
	kept := app.call(t, http.MethodPost, path(informationRoute), tok, map[string]interface{}{"title": "Fair", "body": "Photos", "scope": scope["url"]}, http.StatusCreated)

	rec := app.upload(t, http.MethodPost, path(imageRoute), map[string]string{"information": info["url"].(string)}, "trip.png", pngBytes(t))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	img := decodeObj(t, rec)
	authorFile := app.mediaFile(img["image"])
	assert.FileExists(t, authorFile)

	rec = app.upload(t, http.MethodPost, path(imageRoute), map[string]string{"information": kept["url"].(string)}, "fair.png", pngBytes(t))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	keptFile := app.mediaFile(decodeObj(t, rec)["image"])

	app.call(t, http.MethodDelete, path(userRoute, author.ID), tok, nil, http.StatusNoContent)
	app.call(t, http.MethodGet, path(informationRoute, info["id"]), tok, nil, http.StatusNotFound)
	app.call(t, http.MethodGet, path(imageRoute, img["id"]), tok, nil, http.StatusNotFound)
	assert.NoFileExists(t, authorFile)
	assert.FileExists(t, keptFile)
}
