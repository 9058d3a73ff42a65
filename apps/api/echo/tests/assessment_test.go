package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	quizRoute      = "assessment/quiz"
	questionRoute  = "assessment/question"
	answerRoute    = "assessment/answer"
	quizTakerRoute = "assessment/quizTaker"
	responseRoute  = "assessment/response"
	gradeRoute     = "assessment/grade"
)

func Test_quizApi(t *testing.T) {
	app := setup(t)
	tok := app.staffTok

	quiz := app.call(t, http.MethodPost, path(quizRoute), tok, map[string]interface{}{
		"name":       "Algebra I",
		"max_score":  20,
		"supervisor": 999, // owner fields are not writable
	}, http.StatusCreated)
	assert.Equal(t, float64(app.staff.ID), quiz["supervisor"])
	assert.Equal(t, float64(20), quiz["max_score"])
	assert.Nil(t, quiz["course"])
	assert.Equal(t, true, quiz["is_active"])

	t.Run("read-only fields ignore any client value", func(t *testing.T) {
		got := app.call(t, http.MethodPost, path(quizRoute), tok, map[string]interface{}{
			"url":        42,
			"id":         "first",
			"name":       "Statistics",
			"supervisor": url(userRoute, app.student.ID),
			"timestamp":  "yesterday",
		}, http.StatusCreated)
		assert.Equal(t, float64(app.staff.ID), got["supervisor"])
		assert.Equal(t, url(quizRoute, got["id"]), got["url"])
		assert.NotEqual(t, "yesterday", got["timestamp"])

		app.call(t, http.MethodDelete, path(quizRoute, got["id"]), tok, nil, http.StatusNoContent)
	})

	t.Run("another user keeps the supervisor", func(t *testing.T) {
		got := app.call(t, http.MethodPatch, path(quizRoute, quiz["id"]), app.studentTk, map[string]interface{}{"name": "Algebra II"}, http.StatusOK)
		assert.Equal(t, "Algebra II", got["name"])
		assert.Equal(t, float64(app.staff.ID), got["supervisor"])
	})

	question := app.call(t, http.MethodPost, path(questionRoute), tok, map[string]interface{}{
		"quiz":  quiz["url"],
		"label": "2 + 2 = ?",
		"order": 1,
	}, http.StatusCreated)
	assert.Equal(t, quiz["url"], question["quiz"])

	answer := app.call(t, http.MethodPost, path(answerRoute), tok, map[string]interface{}{
		"question":   question["url"],
		"text":       "4",
		"is_correct": true,
	}, http.StatusCreated)
	assert.Equal(t, true, answer["is_correct"])

	t.Run("questions are ordered", func(t *testing.T) {
		app.call(t, http.MethodPost, path(questionRoute), tok, map[string]interface{}{"quiz": quiz["url"], "label": "first", "order": 0}, http.StatusCreated)
		objs := app.list(t, "/assessment/question", tok)
		require.Len(t, objs, 2)
		assert.Equal(t, "first", objs[0]["label"])
	})

	t.Run("deleting a quiz cascades", func(t *testing.T) {
		app.call(t, http.MethodDelete, path(quizRoute, quiz["id"]), tok, nil, http.StatusNoContent)
		app.call(t, http.MethodGet, path(questionRoute, question["id"]), tok, nil, http.StatusNotFound)
		app.call(t, http.MethodGet, path(answerRoute, answer["id"]), tok, nil, http.StatusNotFound)
	})
}

func Test_gradeApi(t *testing.T) {
	app := setup(t)
	tok := app.staffTok

	quiz := app.call(t, http.MethodPost, path(quizRoute), tok, map[string]interface{}{"name": "Algebra", "max_score": 20}, http.StatusCreated)
	grade := app.call(t, http.MethodPost, path(gradeRoute), tok, map[string]interface{}{
		"quiz":      quiz["url"],
		"score":     12,
		"max_score": 20,
	}, http.StatusCreated)
	assert.Equal(t, quiz["url"], grade["quiz"])
	_, hasValue := grade["value"]
	assert.False(t, hasValue)

	tests := []httpTest{
		{
			name: "zero max score", method: http.MethodPost, path: path(gradeRoute), token: tok,
			body: []byte(`{"score": 1, "max_score": 0}`), wantCode: http.StatusBadRequest,
		},
		{
			name: "negative score", method: http.MethodPost, path: path(gradeRoute), token: tok,
			body: []byte(`{"score": -1, "max_score": 10}`), wantCode: http.StatusBadRequest,
		},
	}
	runHTTPTests(t, app, tests)

	t.Run("deleting the quiz removes the grade", func(t *testing.T) {
		app.call(t, http.MethodDelete, path(quizRoute, quiz["id"]), tok, nil, http.StatusNoContent)
		app.call(t, http.MethodGet, path(gradeRoute, grade["id"]), tok, nil, http.StatusNotFound)
	})
}

func Test_quizTakerApi(t *testing.T) {
	app := setup(t)
	tok := app.studentTk

	quiz1 := app.call(t, http.MethodPost, path(quizRoute), app.staffTok, map[string]interface{}{"name": "Quiz 1", "max_score": 10}, http.StatusCreated)
	quiz2 := app.call(t, http.MethodPost, path(quizRoute), app.staffTok, map[string]interface{}{"name": "Quiz 2", "max_score": 10}, http.StatusCreated)
	grade := app.call(t, http.MethodPost, path(gradeRoute), app.staffTok, map[string]interface{}{"quiz": quiz1["url"], "score": 7, "max_score": 10}, http.StatusCreated)

	qt := app.call(t, http.MethodPost, path(quizTakerRoute), tok, map[string]interface{}{
		"quiz": []interface{}{quiz2["url"], quiz1["url"], quiz1["url"]},
	}, http.StatusCreated)
	assert.Equal(t, float64(app.student.ID), qt["student"])
	assert.Equal(t, []interface{}{quiz1["url"], quiz2["url"]}, qt["quiz"])
	assert.Equal(t, []interface{}{}, qt["grade"])
	assert.Equal(t, false, qt["completed"])

	t.Run("partial update keeps quizzes", func(t *testing.T) {
		got := app.call(t, http.MethodPatch, path(quizTakerRoute, qt["id"]), tok, map[string]interface{}{
			"grade":     []interface{}{grade["url"]},
			"completed": true,
		}, http.StatusOK)
		assert.Equal(t, []interface{}{quiz1["url"], quiz2["url"]}, got["quiz"])
		assert.Equal(t, []interface{}{grade["url"]}, got["grade"])
		assert.Equal(t, true, got["completed"])
	})

	t.Run("invalid link in list", func(t *testing.T) {
		got := app.call(t, http.MethodPatch, path(quizTakerRoute, qt["id"]), tok, map[string]interface{}{
			"quiz": []interface{}{quiz1["url"], url(gradeRoute, 1)},
		}, http.StatusBadRequest)
		assert.Equal(t, "Invalid hyperlink - No URL match.", got["quiz"])
	})

	t.Run("missing quiz", func(t *testing.T) {
		got := app.call(t, http.MethodPatch, path(quizTakerRoute, qt["id"]), tok, map[string]interface{}{
			"quiz": []interface{}{url(quizRoute, 999)},
		}, http.StatusBadRequest)
		assert.Equal(t, "Invalid hyperlink - Object does not exist.", got["quiz"])

		current := app.call(t, http.MethodGet, path(quizTakerRoute, qt["id"]), tok, nil, http.StatusOK)
		assert.Len(t, current["quiz"], 2)
	})

	question := app.call(t, http.MethodPost, path(questionRoute), app.staffTok, map[string]interface{}{"quiz": quiz1["url"], "label": "Q1"}, http.StatusCreated)
	answer := app.call(t, http.MethodPost, path(answerRoute), app.staffTok, map[string]interface{}{"question": question["url"], "text": "A1"}, http.StatusCreated)

	t.Run("responses", func(t *testing.T) {
		resp := app.call(t, http.MethodPost, path(responseRoute), tok, map[string]interface{}{
			"quiz_taker": qt["url"],
			"question":   question["url"],
			"answer":     nil,
		}, http.StatusCreated)
		assert.Nil(t, resp["answer"])

		got := app.call(t, http.MethodPatch, path(responseRoute, resp["id"]), tok, map[string]interface{}{"answer": answer["url"]}, http.StatusOK)
		assert.Equal(t, answer["url"], got["answer"])
		assert.Equal(t, qt["url"], got["quiz_taker"])

		unanswered := app.call(t, http.MethodPost, path(responseRoute), tok, map[string]interface{}{
			"quiz_taker": qt["url"],
			"question":   question["url"],
		}, http.StatusCreated)

		// deleting the answer removes the responses that chose it
		app.call(t, http.MethodDelete, path(answerRoute, answer["id"]), app.staffTok, nil, http.StatusNoContent)
		app.call(t, http.MethodGet, path(responseRoute, resp["id"]), tok, nil, http.StatusNotFound)
		app.call(t, http.MethodGet, path(responseRoute, unanswered["id"]), tok, nil, http.StatusOK)

		// deleting the quiz taker removes its responses
		app.call(t, http.MethodDelete, path(quizTakerRoute, qt["id"]), tok, nil, http.StatusNoContent)
		app.call(t, http.MethodGet, path(responseRoute, unanswered["id"]), tok, nil, http.StatusNotFound)
	})
}
