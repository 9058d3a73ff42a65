package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/campus/core"
	"github.com/trezcool/campus/core/assessment"
	"github.com/trezcool/campus/storage/database"
)

const (
	quizColumns      = "id, supervisor_id, course_id, name, max_score, description, is_active, timestamp"
	questionColumns  = `id, quiz_id, label, "order"`
	answerColumns    = "id, question_id, text, is_correct"
	quizTakerColumns = "id, student_id, completed, timestamp"
	responseColumns  = "id, quiz_taker_id, question_id, answer_id"
	gradeColumns     = "id, quiz_id, score, max_score, timestamp"
)

type assessmentRepository struct {
	repository
}

var _ assessment.Repository = (*assessmentRepository)(nil) // interface compliance check

func NewAssessmentRepository(exec core.DBExecutor) *assessmentRepository {
	return &assessmentRepository{repository{exec: exec}}
}

// Quiz

func (repo assessmentRepository) QueryQuizzes(ctx context.Context, orderBy string, exec ...core.DBExecutor) ([]assessment.Quiz, error) {
	quizzes := make([]assessment.Quiz, 0)
	q := "SELECT " + quizColumns + " FROM quiz ORDER BY " + orderBy
	if err := repo.getExec(exec).SelectContext(ctx, &quizzes, q); err != nil {
		return nil, database.MapError(err, "querying quizzes")
	}
	return quizzes, nil
}

func (repo assessmentRepository) GetQuiz(ctx context.Context, id int64, exec ...core.DBExecutor) (assessment.Quiz, error) {
	var qz assessment.Quiz
	q := "SELECT " + quizColumns + " FROM quiz WHERE id = $1"
	if err := repo.getExec(exec).GetContext(ctx, &qz, q, id); err != nil {
		return assessment.Quiz{}, database.MapError(err, "getting quiz")
	}
	return qz, nil
}

func (repo assessmentRepository) CreateQuiz(ctx context.Context, qz assessment.Quiz, exec ...core.DBExecutor) (assessment.Quiz, error) {
	var created assessment.Quiz
	q := `INSERT INTO quiz (supervisor_id, course_id, name, max_score, description, is_active, timestamp)
		VALUES (:supervisor_id, :course_id, :name, :max_score, :description, :is_active, :timestamp)
		RETURNING ` + quizColumns
	if err := namedGet(ctx, repo.getExec(exec), &created, q, qz); err != nil {
		return assessment.Quiz{}, database.MapError(err, "creating quiz")
	}
	return created, nil
}

func (repo assessmentRepository) UpdateQuiz(ctx context.Context, qz assessment.Quiz, exec ...core.DBExecutor) (assessment.Quiz, error) {
	var updated assessment.Quiz
	q := `UPDATE quiz SET course_id = :course_id, name = :name, max_score = :max_score, description = :description,
		is_active = :is_active
		WHERE id = :id
		RETURNING ` + quizColumns
	if err := namedGet(ctx, repo.getExec(exec), &updated, q, qz); err != nil {
		return assessment.Quiz{}, database.MapError(err, "updating quiz")
	}
	return updated, nil
}

func (repo assessmentRepository) DeleteQuiz(ctx context.Context, id int64, exec ...core.DBExecutor) error {
	return deleteRow(ctx, repo.getExec(exec), "quiz", id)
}

// Question

func (repo assessmentRepository) QueryQuestions(ctx context.Context, orderBy string, exec ...core.DBExecutor) ([]assessment.Question, error) {
	questions := make([]assessment.Question, 0)
	q := "SELECT " + questionColumns + " FROM question ORDER BY " + orderBy
	if err := repo.getExec(exec).SelectContext(ctx, &questions, q); err != nil {
		return nil, database.MapError(err, "querying questions")
	}
	return questions, nil
}

func (repo assessmentRepository) GetQuestion(ctx context.Context, id int64, exec ...core.DBExecutor) (assessment.Question, error) {
	var qn assessment.Question
	q := "SELECT " + questionColumns + " FROM question WHERE id = $1"
	if err := repo.getExec(exec).GetContext(ctx, &qn, q, id); err != nil {
		return assessment.Question{}, database.MapError(err, "getting question")
	}
	return qn, nil
}

func (repo assessmentRepository) CreateQuestion(ctx context.Context, qn assessment.Question, exec ...core.DBExecutor) (assessment.Question, error) {
	var created assessment.Question
	q := `INSERT INTO question (quiz_id, label, "order") VALUES (:quiz_id, :label, :order) RETURNING ` + questionColumns
	if err := namedGet(ctx, repo.getExec(exec), &created, q, qn); err != nil {
		return assessment.Question{}, database.MapError(err, "creating question")
	}
	return created, nil
}

func (repo assessmentRepository) UpdateQuestion(ctx context.Context, qn assessment.Question, exec ...core.DBExecutor) (assessment.Question, error) {
	var updated assessment.Question
	q := `UPDATE question SET quiz_id = :quiz_id, label = :label, "order" = :order WHERE id = :id RETURNING ` + questionColumns
	if err := namedGet(ctx, repo.getExec(exec), &updated, q, qn); err != nil {
		return assessment.Question{}, database.MapError(err, "updating question")
	}
	return updated, nil
}

func (repo assessmentRepository) DeleteQuestion(ctx context.Context, id int64, exec ...core.DBExecutor) error {
	return deleteRow(ctx, repo.getExec(exec), "question", id)
}

// Answer

func (repo assessmentRepository) QueryAnswers(ctx context.Context, orderBy string, exec ...core.DBExecutor) ([]assessment.Answer, error) {
	answers := make([]assessment.Answer, 0)
	q := "SELECT " + answerColumns + " FROM answer ORDER BY " + orderBy
	if err := repo.getExec(exec).SelectContext(ctx, &answers, q); err != nil {
		return nil, database.MapError(err, "querying answers")
	}
	return answers, nil
}

func (repo assessmentRepository) GetAnswer(ctx context.Context, id int64, exec ...core.DBExecutor) (assessment.Answer, error) {
	var a assessment.Answer
	q := "SELECT " + answerColumns + " FROM answer WHERE id = $1"
	if err := repo.getExec(exec).GetContext(ctx, &a, q, id); err != nil {
		return assessment.Answer{}, database.MapError(err, "getting answer")
	}
	return a, nil
}

func (repo assessmentRepository) CreateAnswer(ctx context.Context, a assessment.Answer, exec ...core.DBExecutor) (assessment.Answer, error) {
	var created assessment.Answer
	q := `INSERT INTO answer (question_id, text, is_correct) VALUES (:question_id, :text, :is_correct) RETURNING ` + answerColumns
	if err := namedGet(ctx, repo.getExec(exec), &created, q, a); err != nil {
		return assessment.Answer{}, database.MapError(err, "creating answer")
	}
	return created, nil
}

func (repo assessmentRepository) UpdateAnswer(ctx context.Context, a assessment.Answer, exec ...core.DBExecutor) (assessment.Answer, error) {
	var updated assessment.Answer
	q := `UPDATE answer SET question_id = :question_id, text = :text, is_correct = :is_correct
		WHERE id = :id
		RETURNING ` + answerColumns
	if err := namedGet(ctx, repo.getExec(exec), &updated, q, a); err != nil {
		return assessment.Answer{}, database.MapError(err, "updating answer")
	}
	return updated, nil
}

func (repo assessmentRepository) DeleteAnswer(ctx context.Context, id int64, exec ...core.DBExecutor) error {
	return deleteRow(ctx, repo.getExec(exec), "answer", id)
}

// QuizTaker

type quizTakerLink struct {
	QuizTakerID int64 `db:"quiz_taker_id"`
	TargetID    int64 `db:"target_id"`
}

// loadLinks fills the quiz and grade ids of takers from the join tables.
func (repo assessmentRepository) loadLinks(ctx context.Context, exec core.DBExecutor, takers []assessment.QuizTaker) error {
	if len(takers) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(takers))
	byID := make(map[int64]*assessment.QuizTaker, len(takers))
	for i := range takers {
		takers[i].QuizIDs = make([]int64, 0)
		takers[i].GradeIDs = make([]int64, 0)
		ids = append(ids, takers[i].ID)
		byID[takers[i].ID] = &takers[i]
	}

	quizLinks, err := repo.selectLinks(ctx, exec, "SELECT quiz_taker_id, quiz_id AS target_id FROM quiz_taker_quiz WHERE quiz_taker_id IN (?) ORDER BY quiz_id", ids)
	if err != nil {
		return errors.Wrap(err, "loading quiz links")
	}
	for _, l := range quizLinks {
		qt := byID[l.QuizTakerID]
		qt.QuizIDs = append(qt.QuizIDs, l.TargetID)
	}

	gradeLinks, err := repo.selectLinks(ctx, exec, "SELECT quiz_taker_id, grade_id AS target_id FROM quiz_taker_grade WHERE quiz_taker_id IN (?) ORDER BY grade_id", ids)
	if err != nil {
		return errors.Wrap(err, "loading grade links")
	}
	for _, l := range gradeLinks {
		qt := byID[l.QuizTakerID]
		qt.GradeIDs = append(qt.GradeIDs, l.TargetID)
	}
	return nil
}

func (repo assessmentRepository) selectLinks(ctx context.Context, exec core.DBExecutor, query string, ids []int64) ([]quizTakerLink, error) {
	q, args, err := sqlx.In(query, ids)
	if err != nil {
		return nil, err
	}
	var links []quizTakerLink
	if err = exec.SelectContext(ctx, &links, exec.Rebind(q), args...); err != nil {
		return nil, err
	}
	return links, nil
}

// saveLinks replaces the join rows of qt with its current quiz and grade ids.
func (repo assessmentRepository) saveLinks(ctx context.Context, exec core.DBExecutor, qt assessment.QuizTaker) error {
	if _, err := exec.ExecContext(ctx, "DELETE FROM quiz_taker_quiz WHERE quiz_taker_id = $1", qt.ID); err != nil {
		return database.MapError(err, "clearing quiz links")
	}
	if _, err := exec.ExecContext(ctx, "DELETE FROM quiz_taker_grade WHERE quiz_taker_id = $1", qt.ID); err != nil {
		return database.MapError(err, "clearing grade links")
	}
	for _, quizID := range qt.QuizIDs {
		if _, err := exec.ExecContext(ctx, "INSERT INTO quiz_taker_quiz (quiz_taker_id, quiz_id) VALUES ($1, $2)", qt.ID, quizID); err != nil {
			return database.MapError(err, "linking quiz")
		}
	}
	for _, gradeID := range qt.GradeIDs {
		if _, err := exec.ExecContext(ctx, "INSERT INTO quiz_taker_grade (quiz_taker_id, grade_id) VALUES ($1, $2)", qt.ID, gradeID); err != nil {
			return database.MapError(err, "linking grade")
		}
	}
	return nil
}

func (repo assessmentRepository) QueryQuizTakers(ctx context.Context, orderBy string, exec ...core.DBExecutor) ([]assessment.QuizTaker, error) {
	ex := repo.getExec(exec)
	takers := make([]assessment.QuizTaker, 0)
	q := "SELECT " + quizTakerColumns + " FROM quiz_taker ORDER BY " + orderBy
	if err := ex.SelectContext(ctx, &takers, q); err != nil {
		return nil, database.MapError(err, "querying quiz takers")
	}
	if err := repo.loadLinks(ctx, ex, takers); err != nil {
		return nil, err
	}
	return takers, nil
}

func (repo assessmentRepository) GetQuizTaker(ctx context.Context, id int64, exec ...core.DBExecutor) (assessment.QuizTaker, error) {
	ex := repo.getExec(exec)
	var qt assessment.QuizTaker
	q := "SELECT " + quizTakerColumns + " FROM quiz_taker WHERE id = $1"
	if err := ex.GetContext(ctx, &qt, q, id); err != nil {
		return assessment.QuizTaker{}, database.MapError(err, "getting quiz taker")
	}
	takers := []assessment.QuizTaker{qt}
	if err := repo.loadLinks(ctx, ex, takers); err != nil {
		return assessment.QuizTaker{}, err
	}
	return takers[0], nil
}

func (repo assessmentRepository) CreateQuizTaker(ctx context.Context, qt assessment.QuizTaker, exec ...core.DBExecutor) (assessment.QuizTaker, error) {
	ex := repo.getExec(exec)
	var created assessment.QuizTaker
	q := `INSERT INTO quiz_taker (student_id, completed, timestamp) VALUES (:student_id, :completed, :timestamp)
		RETURNING ` + quizTakerColumns
	if err := namedGet(ctx, ex, &created, q, qt); err != nil {
		return assessment.QuizTaker{}, database.MapError(err, "creating quiz taker")
	}
	created.QuizIDs, created.GradeIDs = qt.QuizIDs, qt.GradeIDs
	if err := repo.saveLinks(ctx, ex, created); err != nil {
		return assessment.QuizTaker{}, err
	}
	return repo.GetQuizTaker(ctx, created.ID, ex)
}

func (repo assessmentRepository) UpdateQuizTaker(ctx context.Context, qt assessment.QuizTaker, exec ...core.DBExecutor) (assessment.QuizTaker, error) {
	ex := repo.getExec(exec)
	var updated assessment.QuizTaker
	q := "UPDATE quiz_taker SET completed = :completed WHERE id = :id RETURNING " + quizTakerColumns
	if err := namedGet(ctx, ex, &updated, q, qt); err != nil {
		return assessment.QuizTaker{}, database.MapError(err, "updating quiz taker")
	}
	updated.QuizIDs, updated.GradeIDs = qt.QuizIDs, qt.GradeIDs
	if err := repo.saveLinks(ctx, ex, updated); err != nil {
		return assessment.QuizTaker{}, err
	}
	return repo.GetQuizTaker(ctx, updated.ID, ex)
}

func (repo assessmentRepository) DeleteQuizTaker(ctx context.Context, id int64, exec ...core.DBExecutor) error {
	return deleteRow(ctx, repo.getExec(exec), "quiz_taker", id)
}

// Response

func (repo assessmentRepository) QueryResponses(ctx context.Context, orderBy string, exec ...core.DBExecutor) ([]assessment.Response, error) {
	responses := make([]assessment.Response, 0)
	q := "SELECT " + responseColumns + " FROM response ORDER BY " + orderBy
	if err := repo.getExec(exec).SelectContext(ctx, &responses, q); err != nil {
		return nil, database.MapError(err, "querying responses")
	}
	return responses, nil
}

func (repo assessmentRepository) GetResponse(ctx context.Context, id int64, exec ...core.DBExecutor) (assessment.Response, error) {
	var r assessment.Response
	q := "SELECT " + responseColumns + " FROM response WHERE id = $1"
	if err := repo.getExec(exec).GetContext(ctx, &r, q, id); err != nil {
		return assessment.Response{}, database.MapError(err, "getting response")
	}
	return r, nil
}

func (repo assessmentRepository) CreateResponse(ctx context.Context, r assessment.Response, exec ...core.DBExecutor) (assessment.Response, error) {
	var created assessment.Response
	q := `INSERT INTO response (quiz_taker_id, question_id, answer_id) VALUES (:quiz_taker_id, :question_id, :answer_id)
		RETURNING ` + responseColumns
	if err := namedGet(ctx, repo.getExec(exec), &created, q, r); err != nil {
		return assessment.Response{}, database.MapError(err, "creating response")
	}
	return created, nil
}

func (repo assessmentRepository) UpdateResponse(ctx context.Context, r assessment.Response, exec ...core.DBExecutor) (assessment.Response, error) {
	var updated assessment.Response
	q := `UPDATE response SET quiz_taker_id = :quiz_taker_id, question_id = :question_id, answer_id = :answer_id
		WHERE id = :id
		RETURNING ` + responseColumns
	if err := namedGet(ctx, repo.getExec(exec), &updated, q, r); err != nil {
		return assessment.Response{}, database.MapError(err, "updating response")
	}
	return updated, nil
}

func (repo assessmentRepository) DeleteResponse(ctx context.Context, id int64, exec ...core.DBExecutor) error {
	return deleteRow(ctx, repo.getExec(exec), "response", id)
}

// Grade

func (repo assessmentRepository) QueryGrades(ctx context.Context, orderBy string, exec ...core.DBExecutor) ([]assessment.Grade, error) {
	grades := make([]assessment.Grade, 0)
	q := "SELECT " + gradeColumns + " FROM grade ORDER BY " + orderBy
	if err := repo.getExec(exec).SelectContext(ctx, &grades, q); err != nil {
		return nil, database.MapError(err, "querying grades")
	}
	return grades, nil
}

func (repo assessmentRepository) GetGrade(ctx context.Context, id int64, exec ...core.DBExecutor) (assessment.Grade, error) {
	var g assessment.Grade
	q := "SELECT " + gradeColumns + " FROM grade WHERE id = $1"
	if err := repo.getExec(exec).GetContext(ctx, &g, q, id); err != nil {
		return assessment.Grade{}, database.MapError(err, "getting grade")
	}
	return g, nil
}

func (repo assessmentRepository) CreateGrade(ctx context.Context, g assessment.Grade, exec ...core.DBExecutor) (assessment.Grade, error) {
	var created assessment.Grade
	q := `INSERT INTO grade (quiz_id, score, max_score, timestamp) VALUES (:quiz_id, :score, :max_score, :timestamp)
		RETURNING ` + gradeColumns
	if err := namedGet(ctx, repo.getExec(exec), &created, q, g); err != nil {
		return assessment.Grade{}, database.MapError(err, "creating grade")
	}
	return created, nil
}

func (repo assessmentRepository) UpdateGrade(ctx context.Context, g assessment.Grade, exec ...core.DBExecutor) (assessment.Grade, error) {
	var updated assessment.Grade
	q := `UPDATE grade SET quiz_id = :quiz_id, score = :score, max_score = :max_score
		WHERE id = :id
		RETURNING ` + gradeColumns
	if err := namedGet(ctx, repo.getExec(exec), &updated, q, g); err != nil {
		return assessment.Grade{}, database.MapError(err, "updating grade")
	}
	return updated, nil
}

func (repo assessmentRepository) DeleteGrade(ctx context.Context, id int64, exec ...core.DBExecutor) error {
	return deleteRow(ctx, repo.getExec(exec), "grade", id)
}

func (repo assessmentRepository) QueryGradeReport(ctx context.Context, exec ...core.DBExecutor) ([]assessment.GradeReportRow, error) {
	rows := make([]assessment.GradeReportRow, 0)
	q := `SELECT qt.id AS quiz_taker_id, u.email AS student_email, u.name AS student_name, g.id AS grade_id,
			qz.name AS quiz_name, g.score, g.max_score, qt.completed, g.timestamp
		FROM quiz_taker qt
		JOIN users u ON u.id = qt.student_id
		JOIN quiz_taker_grade qtg ON qtg.quiz_taker_id = qt.id
		JOIN grade g ON g.id = qtg.grade_id
		LEFT JOIN quiz qz ON qz.id = g.quiz_id
		ORDER BY qt.timestamp, qt.id, g.id`
	if err := repo.getExec(exec).SelectContext(ctx, &rows, q); err != nil {
		return nil, database.MapError(err, "querying grade report")
	}
	return rows, nil
}
