package assessment

import (
	"context"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/campus/core"
)

var nowFunc = func() time.Time { return time.Now().UTC() } // mockable

type Repository interface {
	QueryQuizzes(ctx context.Context, orderBy string, exec ...core.DBExecutor) ([]Quiz, error)
	GetQuiz(ctx context.Context, id int64, exec ...core.DBExecutor) (Quiz, error)
	CreateQuiz(ctx context.Context, q Quiz, exec ...core.DBExecutor) (Quiz, error)
	UpdateQuiz(ctx context.Context, q Quiz, exec ...core.DBExecutor) (Quiz, error)
	DeleteQuiz(ctx context.Context, id int64, exec ...core.DBExecutor) error

	QueryQuestions(ctx context.Context, orderBy string, exec ...core.DBExecutor) ([]Question, error)
	GetQuestion(ctx context.Context, id int64, exec ...core.DBExecutor) (Question, error)
	CreateQuestion(ctx context.Context, q Question, exec ...core.DBExecutor) (Question, error)
	UpdateQuestion(ctx context.Context, q Question, exec ...core.DBExecutor) (Question, error)
	DeleteQuestion(ctx context.Context, id int64, exec ...core.DBExecutor) error

	QueryAnswers(ctx context.Context, orderBy string, exec ...core.DBExecutor) ([]Answer, error)
	GetAnswer(ctx context.Context, id int64, exec ...core.DBExecutor) (Answer, error)
	CreateAnswer(ctx context.Context, a Answer, exec ...core.DBExecutor) (Answer, error)
	UpdateAnswer(ctx context.Context, a Answer, exec ...core.DBExecutor) (Answer, error)
	DeleteAnswer(ctx context.Context, id int64, exec ...core.DBExecutor) error

	// QuizTaker rows are returned with their quiz and grade links loaded.
	QueryQuizTakers(ctx context.Context, orderBy string, exec ...core.DBExecutor) ([]QuizTaker, error)
	GetQuizTaker(ctx context.Context, id int64, exec ...core.DBExecutor) (QuizTaker, error)
	CreateQuizTaker(ctx context.Context, qt QuizTaker, exec ...core.DBExecutor) (QuizTaker, error)
	UpdateQuizTaker(ctx context.Context, qt QuizTaker, exec ...core.DBExecutor) (QuizTaker, error)
	DeleteQuizTaker(ctx context.Context, id int64, exec ...core.DBExecutor) error

	QueryResponses(ctx context.Context, orderBy string, exec ...core.DBExecutor) ([]Response, error)
	GetResponse(ctx context.Context, id int64, exec ...core.DBExecutor) (Response, error)
	CreateResponse(ctx context.Context, r Response, exec ...core.DBExecutor) (Response, error)
	UpdateResponse(ctx context.Context, r Response, exec ...core.DBExecutor) (Response, error)
	DeleteResponse(ctx context.Context, id int64, exec ...core.DBExecutor) error

	QueryGrades(ctx context.Context, orderBy string, exec ...core.DBExecutor) ([]Grade, error)
	GetGrade(ctx context.Context, id int64, exec ...core.DBExecutor) (Grade, error)
	CreateGrade(ctx context.Context, g Grade, exec ...core.DBExecutor) (Grade, error)
	UpdateGrade(ctx context.Context, g Grade, exec ...core.DBExecutor) (Grade, error)
	DeleteGrade(ctx context.Context, id int64, exec ...core.DBExecutor) error

	QueryGradeReport(ctx context.Context, exec ...core.DBExecutor) ([]GradeReportRow, error)
}

// Service manages quizzes and everything hanging off them.
type Service struct {
	db       core.DB
	repo     Repository
	validate *validator.Validate
}

func NewService(db core.DB, repo Repository, validate *validator.Validate) *Service {
	return &Service{db: db, repo: repo, validate: validate}
}

// Quiz

func (svc *Service) QueryQuizzes(ctx context.Context, orderings []core.DBOrdering) ([]Quiz, error) {
	orderBy, err := core.OrderBy(orderings, QuizOrderings, "timestamp DESC, id DESC")
	if err != nil {
		return nil, err
	}
	return svc.repo.QueryQuizzes(ctx, orderBy)
}

func (svc *Service) GetQuiz(ctx context.Context, id int64) (Quiz, error) {
	return svc.repo.GetQuiz(ctx, id)
}

// CreateQuiz creates a quiz supervised by supervisorID.
func (svc *Service) CreateQuiz(ctx context.Context, supervisorID int64, in QuizInput) (q Quiz, err error) {
	in.Name = core.CleanString(in.Name)
	if err = svc.validate.Struct(in); err != nil {
		return Quiz{}, err
	}
	q = Quiz{SupervisorID: supervisorID, Timestamp: nowFunc()}
	in.apply(&q)
	err = core.WithTx(ctx, svc.db, func(exec core.DBExecutor) error {
		q, err = svc.repo.CreateQuiz(ctx, q, exec)
		return err
	})
	return q, err
}

// UpdateQuiz keeps the quiz supervisor.
func (svc *Service) UpdateQuiz(ctx context.Context, id int64, in QuizInput) (q Quiz, err error) {
	in.Name = core.CleanString(in.Name)
	if err = svc.validate.Struct(in); err != nil {
		return Quiz{}, err
	}
	err = core.WithTx(ctx, svc.db, func(exec core.DBExecutor) error {
		if q, err = svc.repo.GetQuiz(ctx, id, exec); err != nil {
			return err
		}
		in.apply(&q)
		q, err = svc.repo.UpdateQuiz(ctx, q, exec)
		return err
	})
	return q, err
}

func (svc *Service) DeleteQuiz(ctx context.Context, id int64) error {
	return core.WithTx(ctx, svc.db, func(exec core.DBExecutor) error {
		return svc.repo.DeleteQuiz(ctx, id, exec)
	})
}

func (in QuizInput) apply(q *Quiz) {
	q.CourseID = in.CourseID
	q.Name = in.Name
	q.MaxScore = in.MaxScore
	q.Description = in.Description
	q.IsActive = in.IsActive
}

// Question

func (svc *Service) QueryQuestions(ctx context.Context, orderings []core.DBOrdering) ([]Question, error) {
	orderBy, err := core.OrderBy(orderings, QuestionOrderings, `"order" ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	return svc.repo.QueryQuestions(ctx, orderBy)
}

func (svc *Service) GetQuestion(ctx context.Context, id int64) (Question, error) {
	return svc.repo.GetQuestion(ctx, id)
}

func (svc *Service) CreateQuestion(ctx context.Context, in QuestionInput) (q Question, err error) {
	in.Label = core.CleanString(in.Label)
	if err = svc.validate.Struct(in); err != nil {
		return Question{}, err
	}
	q = Question{QuizID: in.QuizID, Label: in.Label, Order: in.Order}
	err = core.WithTx(ctx, svc.db, func(exec core.DBExecutor) error {
		q, err = svc.repo.CreateQuestion(ctx, q, exec)
		return err
	})
	return q, err
}

func (svc *Service) UpdateQuestion(ctx context.Context, id int64, in QuestionInput) (q Question, err error) {
	in.Label = core.CleanString(in.Label)
	if err = svc.validate.Struct(in); err != nil {
		return Question{}, err
	}
	err = core.WithTx(ctx, svc.db, func(exec core.DBExecutor) error {
		if q, err = svc.repo.GetQuestion(ctx, id, exec); err != nil {
			return err
		}
		q.QuizID, q.Label, q.Order = in.QuizID, in.Label, in.Order
		q, err = svc.repo.UpdateQuestion(ctx, q, exec)
		return err
	})
	return q, err
}

func (svc *Service) DeleteQuestion(ctx context.Context, id int64) error {
	return core.WithTx(ctx, svc.db, func(exec core.DBExecutor) error {
		return svc.repo.DeleteQuestion(ctx, id, exec)
	})
}

// Answer

func (svc *Service) QueryAnswers(ctx context.Context, orderings []core.DBOrdering) ([]Answer, error) {
	orderBy, err := core.OrderBy(orderings, AnswerOrderings, "id ASC")
	if err != nil {
		return nil, err
	}
	return svc.repo.QueryAnswers(ctx, orderBy)
}

func (svc *Service) GetAnswer(ctx context.Context, id int64) (Answer, error) {
	return svc.repo.GetAnswer(ctx, id)
}

func (svc *Service) CreateAnswer(ctx context.Context, in AnswerInput) (a Answer, err error) {
	in.Text = core.CleanString(in.Text)
	if err = svc.validate.Struct(in); err != nil {
		return Answer{}, err
	}
	a = Answer{QuestionID: in.QuestionID, Text: in.Text, IsCorrect: in.IsCorrect}
	err = core.WithTx(ctx, svc.db, func(exec core.DBExecutor) error {
		a, err = svc.repo.CreateAnswer(ctx, a, exec)
		return err
	})
	return a, err
}

func (svc *Service) UpdateAnswer(ctx context.Context, id int64, in AnswerInput) (a Answer, err error) {
	in.Text = core.CleanString(in.Text)
	if err = svc.validate.Struct(in); err != nil {
		return Answer{}, err
	}
	err = core.WithTx(ctx, svc.db, func(exec core.DBExecutor) error {
		if a, err = svc.repo.GetAnswer(ctx, id, exec); err != nil {
			return err
		}
		a.QuestionID, a.Text, a.IsCorrect = in.QuestionID, in.Text, in.IsCorrect
		a, err = svc.repo.UpdateAnswer(ctx, a, exec)
		return err
	})
	return a, err
}

func (svc *Service) DeleteAnswer(ctx context.Context, id int64) error {
	return core.WithTx(ctx, svc.db, func(exec core.DBExecutor) error {
		return svc.repo.DeleteAnswer(ctx, id, exec)
	})
}

// QuizTaker

func (svc *Service) QueryQuizTakers(ctx context.Context, orderings []core.DBOrdering) ([]QuizTaker, error) {
	orderBy, err := core.OrderBy(orderings, QuizTakerOrderings, "id ASC")
	if err != nil {
		return nil, err
	}
	return svc.repo.QueryQuizTakers(ctx, orderBy)
}

func (svc *Service) GetQuizTaker(ctx context.Context, id int64) (QuizTaker, error) {
	return svc.repo.GetQuizTaker(ctx, id)
}

// CreateQuizTaker creates an attempt owned by studentID.
func (svc *Service) CreateQuizTaker(ctx context.Context, studentID int64, in QuizTakerInput) (qt QuizTaker, err error) {
	if err = svc.validate.Struct(in); err != nil {
		return QuizTaker{}, err
	}
	qt = QuizTaker{StudentID: studentID, Timestamp: nowFunc()}
	in.apply(&qt)
	err = core.WithTx(ctx, svc.db, func(exec core.DBExecutor) error {
		qt, err = svc.repo.CreateQuizTaker(ctx, qt, exec)
		return err
	})
	return qt, err
}

// UpdateQuizTaker keeps the student and replaces the quiz and grade links.
func (svc *Service) UpdateQuizTaker(ctx context.Context, id int64, in QuizTakerInput) (qt QuizTaker, err error) {
	if err = svc.validate.Struct(in); err != nil {
		return QuizTaker{}, err
	}
	err = core.WithTx(ctx, svc.db, func(exec core.DBExecutor) error {
		if qt, err = svc.repo.GetQuizTaker(ctx, id, exec); err != nil {
			return err
		}
		in.apply(&qt)
		qt, err = svc.repo.UpdateQuizTaker(ctx, qt, exec)
		return err
	})
	return qt, err
}

func (svc *Service) DeleteQuizTaker(ctx context.Context, id int64) error {
	return core.WithTx(ctx, svc.db, func(exec core.DBExecutor) error {
		return svc.repo.DeleteQuizTaker(ctx, id, exec)
	})
}

func (in QuizTakerInput) apply(qt *QuizTaker) {
	qt.QuizIDs = uniqueIDs(in.QuizIDs)
	qt.GradeIDs = uniqueIDs(in.GradeIDs)
	qt.Completed = in.Completed
}

// uniqueIDs returns the sorted, de-duplicated ids.
func uniqueIDs(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Response

func (svc *Service) QueryResponses(ctx context.Context, orderings []core.DBOrdering) ([]Response, error) {
	orderBy, err := core.OrderBy(orderings, ResponseOrderings, "id ASC")
	if err != nil {
		return nil, err
	}
	return svc.repo.QueryResponses(ctx, orderBy)
}

func (svc *Service) GetResponse(ctx context.Context, id int64) (Response, error) {
	return svc.repo.GetResponse(ctx, id)
}

func (svc *Service) CreateResponse(ctx context.Context, in ResponseInput) (r Response, err error) {
	if err = svc.validate.Struct(in); err != nil {
		return Response{}, err
	}
	r = Response{QuizTakerID: in.QuizTakerID, QuestionID: in.QuestionID, AnswerID: in.AnswerID}
	err = core.WithTx(ctx, svc.db, func(exec core.DBExecutor) error {
		r, err = svc.repo.CreateResponse(ctx, r, exec)
		return err
	})
	return r, err
}

func (svc *Service) UpdateResponse(ctx context.Context, id int64, in ResponseInput) (r Response, err error) {
	if err = svc.validate.Struct(in); err != nil {
		return Response{}, err
	}
	err = core.WithTx(ctx, svc.db, func(exec core.DBExecutor) error {
		if r, err = svc.repo.GetResponse(ctx, id, exec); err != nil {
			return err
		}
		r.QuizTakerID, r.QuestionID, r.AnswerID = in.QuizTakerID, in.QuestionID, in.AnswerID
		r, err = svc.repo.UpdateResponse(ctx, r, exec)
		return err
	})
	return r, err
}

func (svc *Service) DeleteResponse(ctx context.Context, id int64) error {
	return core.WithTx(ctx, svc.db, func(exec core.DBExecutor) error {
		return svc.repo.DeleteResponse(ctx, id, exec)
	})
}

// Grade

func (svc *Service) QueryGrades(ctx context.Context, orderings []core.DBOrdering) ([]Grade, error) {
	orderBy, err := core.OrderBy(orderings, GradeOrderings, "id ASC")
	if err != nil {
		return nil, err
	}
	return svc.repo.QueryGrades(ctx, orderBy)
}

func (svc *Service) GetGrade(ctx context.Context, id int64) (Grade, error) {
	return svc.repo.GetGrade(ctx, id)
}

func (svc *Service) CreateGrade(ctx context.Context, in GradeInput) (g Grade, err error) {
	if err = svc.validate.Struct(in); err != nil {
		return Grade{}, err
	}
	g = Grade{QuizID: in.QuizID, Score: in.Score, MaxScore: in.MaxScore, Timestamp: nowFunc()}
	err = core.WithTx(ctx, svc.db, func(exec core.DBExecutor) error {
		g, err = svc.repo.CreateGrade(ctx, g, exec)
		return err
	})
	return g, err
}

func (svc *Service) UpdateGrade(ctx context.Context, id int64, in GradeInput) (g Grade, err error) {
	if err = svc.validate.Struct(in); err != nil {
		return Grade{}, err
	}
	err = core.WithTx(ctx, svc.db, func(exec core.DBExecutor) error {
		if g, err = svc.repo.GetGrade(ctx, id, exec); err != nil {
			return err
		}
		g.QuizID, g.Score, g.MaxScore = in.QuizID, in.Score, in.MaxScore
		g, err = svc.repo.UpdateGrade(ctx, g, exec)
		return err
	})
	return g, err
}

func (svc *Service) DeleteGrade(ctx context.Context, id int64) error {
	return core.WithTx(ctx, svc.db, func(exec core.DBExecutor) error {
		return svc.repo.DeleteGrade(ctx, id, exec)
	})
}

// GradeReport lists every grade attached to a quiz taker, oldest attempt first.
func (svc *Service) GradeReport(ctx context.Context) ([]GradeReportRow, error) {
	return svc.repo.QueryGradeReport(ctx)
}
