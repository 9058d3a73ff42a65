package echoapi

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/campus/core/assessment"
)

type (
	QuizRep struct {
		URL         readOnly[string]    `json:"url"`
		ID          readOnly[int64]     `json:"id"`
		Supervisor  readOnly[int64]     `json:"supervisor"`
		Course      Link                `json:"course"`
		Name        string              `json:"name"`
		MaxScore    int64               `json:"max_score"`
		Description *string             `json:"description"`
		IsActive    bool                `json:"is_active"`
		Timestamp   readOnly[time.Time] `json:"timestamp"`
	}

	QuestionRep struct {
		URL   readOnly[string] `json:"url"`
		ID    readOnly[int64]  `json:"id"`
		Quiz  Link             `json:"quiz"`
		Label string           `json:"label"`
		Order int64            `json:"order"`
	}

	AnswerRep struct {
		URL       readOnly[string] `json:"url"`
		ID        readOnly[int64]  `json:"id"`
		Question  Link             `json:"question"`
		Text      string           `json:"text"`
		IsCorrect bool             `json:"is_correct"`
	}

	QuizTakerRep struct {
		URL       readOnly[string]    `json:"url"`
		ID        readOnly[int64]     `json:"id"`
		Student   readOnly[int64]     `json:"student"`
		Quiz      []Link              `json:"quiz"`
		Grade     []Link              `json:"grade"`
		Completed bool                `json:"completed"`
		Timestamp readOnly[time.Time] `json:"timestamp"`
	}

	ResponseRep struct {
		URL       readOnly[string] `json:"url"`
		ID        readOnly[int64]  `json:"id"`
		QuizTaker Link             `json:"quiz_taker"`
		Question  Link             `json:"question"`
		Answer    Link             `json:"answer"`
	}

	GradeRep struct {
		URL       readOnly[string]    `json:"url"`
		ID        readOnly[int64]     `json:"id"`
		Quiz      Link                `json:"quiz"`
		Score     int64               `json:"score"`
		MaxScore  int64               `json:"max_score"`
		Timestamp readOnly[time.Time] `json:"timestamp"`
	}
)

func registerAssessmentAPI(g *echo.Group, svc *assessment.Service, m ...echo.MiddlewareFunc) {
	ag := g.Group("/assessment", m...)

	resource[assessment.Quiz, QuizRep]{
		name:   "quiz",
		query:  svc.QueryQuizzes,
		get:    svc.GetQuiz,
		delete: svc.DeleteQuiz,
		render: renderQuiz,
		blank:  func(links) QuizRep { return QuizRep{IsActive: true} },
		save: func(ctx echo.Context, id int64, rep QuizRep) (assessment.Quiz, error) {
			var r linkResolver
			in := assessment.QuizInput{
				CourseID:    r.optional("course", courseRoute, rep.Course),
				Name:        rep.Name,
				MaxScore:    rep.MaxScore,
				Description: rep.Description,
				IsActive:    rep.IsActive,
			}
			if err := r.err(); err != nil {
				return assessment.Quiz{}, err
			}
			if id != 0 {
				return svc.UpdateQuiz(ctx.Request().Context(), id, in)
			}
			usr, err := getContextUser(ctx)
			if err != nil {
				return assessment.Quiz{}, errors.Wrap(err, "getting context user")
			}
			return svc.CreateQuiz(ctx.Request().Context(), usr.ID, in)
		},
	}.register(ag, "/quiz")

	resource[assessment.Question, QuestionRep]{
		name:   "question",
		query:  svc.QueryQuestions,
		get:    svc.GetQuestion,
		delete: svc.DeleteQuestion,
		render: renderQuestion,
		blank:  func(links) QuestionRep { return QuestionRep{} },
		save: func(ctx echo.Context, id int64, rep QuestionRep) (assessment.Question, error) {
			var r linkResolver
			in := assessment.QuestionInput{
				QuizID: r.required("quiz", quizRoute, rep.Quiz),
				Label:  rep.Label,
				Order:  rep.Order,
			}
			if err := r.err(); err != nil {
				return assessment.Question{}, err
			}
			if id == 0 {
				return svc.CreateQuestion(ctx.Request().Context(), in)
			}
			return svc.UpdateQuestion(ctx.Request().Context(), id, in)
		},
	}.register(ag, "/question")

	resource[assessment.Answer, AnswerRep]{
		name:   "answer",
		query:  svc.QueryAnswers,
		get:    svc.GetAnswer,
		delete: svc.DeleteAnswer,
		render: renderAnswer,
		blank:  func(links) AnswerRep { return AnswerRep{} },
		save: func(ctx echo.Context, id int64, rep AnswerRep) (assessment.Answer, error) {
			var r linkResolver
			in := assessment.AnswerInput{
				QuestionID: r.required("question", questionRoute, rep.Question),
				Text:       rep.Text,
				IsCorrect:  rep.IsCorrect,
			}
			if err := r.err(); err != nil {
				return assessment.Answer{}, err
			}
			if id == 0 {
				return svc.CreateAnswer(ctx.Request().Context(), in)
			}
			return svc.UpdateAnswer(ctx.Request().Context(), id, in)
		},
	}.register(ag, "/answer")

	resource[assessment.QuizTaker, QuizTakerRep]{
		name:   "quiz taker",
		query:  svc.QueryQuizTakers,
		get:    svc.GetQuizTaker,
		delete: svc.DeleteQuizTaker,
		render: renderQuizTaker,
		blank:  func(links) QuizTakerRep { return QuizTakerRep{Quiz: []Link{}, Grade: []Link{}} },
		save: func(ctx echo.Context, id int64, rep QuizTakerRep) (assessment.QuizTaker, error) {
			var r linkResolver
			in := assessment.QuizTakerInput{
				QuizIDs:   r.many("quiz", quizRoute, rep.Quiz),
				GradeIDs:  r.many("grade", gradeRoute, rep.Grade),
				Completed: rep.Completed,
			}
			if err := r.err(); err != nil {
				return assessment.QuizTaker{}, err
			}
			if id != 0 {
				return svc.UpdateQuizTaker(ctx.Request().Context(), id, in)
			}
			usr, err := getContextUser(ctx)
			if err != nil {
				return assessment.QuizTaker{}, errors.Wrap(err, "getting context user")
			}
			return svc.CreateQuizTaker(ctx.Request().Context(), usr.ID, in)
		},
	}.register(ag, "/quizTaker")

	resource[assessment.Response, ResponseRep]{
		name:   "response",
		query:  svc.QueryResponses,
		get:    svc.GetResponse,
		delete: svc.DeleteResponse,
		render: renderResponse,
		blank:  func(links) ResponseRep { return ResponseRep{} },
		save: func(ctx echo.Context, id int64, rep ResponseRep) (assessment.Response, error) {
			var r linkResolver
			in := assessment.ResponseInput{
				QuizTakerID: r.required("quiz_taker", quizTakerRoute, rep.QuizTaker),
				QuestionID:  r.required("question", questionRoute, rep.Question),
				AnswerID:    r.optional("answer", answerRoute, rep.Answer),
			}
			if err := r.err(); err != nil {
				return assessment.Response{}, err
			}
			if id == 0 {
				return svc.CreateResponse(ctx.Request().Context(), in)
			}
			return svc.UpdateResponse(ctx.Request().Context(), id, in)
		},
	}.register(ag, "/response")

	resource[assessment.Grade, GradeRep]{
		name:   "grade",
		query:  svc.QueryGrades,
		get:    svc.GetGrade,
		delete: svc.DeleteGrade,
		render: renderGrade,
		blank:  func(links) GradeRep { return GradeRep{} },
		save: func(ctx echo.Context, id int64, rep GradeRep) (assessment.Grade, error) {
			var r linkResolver
			in := assessment.GradeInput{
				QuizID:   r.optional("quiz", quizRoute, rep.Quiz),
				Score:    rep.Score,
				MaxScore: rep.MaxScore,
			}
			if err := r.err(); err != nil {
				return assessment.Grade{}, err
			}
			if id == 0 {
				return svc.CreateGrade(ctx.Request().Context(), in)
			}
			return svc.UpdateGrade(ctx.Request().Context(), id, in)
		},
	}.register(ag, "/grade")
}

func renderQuiz(l links, q assessment.Quiz) QuizRep {
	return QuizRep{
		URL:         ro(l.url(quizRoute, q.ID)),
		ID:          ro(q.ID),
		Supervisor:  ro(q.SupervisorID),
		Course:      l.optional(courseRoute, q.CourseID),
		Name:        q.Name,
		MaxScore:    q.MaxScore,
		Description: q.Description,
		IsActive:    q.IsActive,
		Timestamp:   ro(q.Timestamp),
	}
}

func renderQuestion(l links, q assessment.Question) QuestionRep {
	return QuestionRep{
		URL:   ro(l.url(questionRoute, q.ID)),
		ID:    ro(q.ID),
		Quiz:  l.link(quizRoute, q.QuizID),
		Label: q.Label,
		Order: q.Order,
	}
}

func renderAnswer(l links, a assessment.Answer) AnswerRep {
	return AnswerRep{
		URL:       ro(l.url(answerRoute, a.ID)),
		ID:        ro(a.ID),
		Question:  l.link(questionRoute, a.QuestionID),
		Text:      a.Text,
		IsCorrect: a.IsCorrect,
	}
}

func renderQuizTaker(l links, qt assessment.QuizTaker) QuizTakerRep {
	return QuizTakerRep{
		URL:       ro(l.url(quizTakerRoute, qt.ID)),
		ID:        ro(qt.ID),
		Student:   ro(qt.StudentID),
		Quiz:      l.many(quizRoute, qt.QuizIDs),
		Grade:     l.many(gradeRoute, qt.GradeIDs),
		Completed: qt.Completed,
		Timestamp: ro(qt.Timestamp),
	}
}

func renderResponse(l links, r assessment.Response) ResponseRep {
	return ResponseRep{
		URL:       ro(l.url(responseRoute, r.ID)),
		ID:        ro(r.ID),
		QuizTaker: l.link(quizTakerRoute, r.QuizTakerID),
		Question:  l.link(questionRoute, r.QuestionID),
		Answer:    l.optional(answerRoute, r.AnswerID),
	}
}

func renderGrade(l links, g assessment.Grade) GradeRep {
	return GradeRep{
		URL:       ro(l.url(gradeRoute, g.ID)),
		ID:        ro(g.ID),
		Quiz:      l.optional(quizRoute, g.QuizID),
		Score:     g.Score,
		MaxScore:  g.MaxScore,
		Timestamp: ro(g.Timestamp),
	}
}
