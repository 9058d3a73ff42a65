package assessment

import "time"

const (
	GradePass = "Pass"
	GradeFail = "Fail"

	// passRatio is the minimum score/max_score ratio for a passing grade.
	passRatio = 0.5
)

type Quiz struct {
	ID           int64     `db:"id"`
	SupervisorID int64     `db:"supervisor_id"`
	CourseID     *int64    `db:"course_id"`
	Name         string    `db:"name"`
	MaxScore     int64     `db:"max_score"`
	Description  *string   `db:"description"`
	IsActive     bool      `db:"is_active"`
	Timestamp    time.Time `db:"timestamp"`
}

type Question struct {
	ID     int64  `db:"id"`
	QuizID int64  `db:"quiz_id"`
	Label  string `db:"label"`
	Order  int64  `db:"order"`
}

type Answer struct {
	ID         int64  `db:"id"`
	QuestionID int64  `db:"question_id"`
	Text       string `db:"text"`
	IsCorrect  bool   `db:"is_correct"`
}

// QuizTaker is one student's attempt at one or more quizzes.
type QuizTaker struct {
	ID        int64     `db:"id"`
	StudentID int64     `db:"student_id"`
	QuizIDs   []int64   `db:"-"`
	GradeIDs  []int64   `db:"-"`
	Completed bool      `db:"completed"`
	Timestamp time.Time `db:"timestamp"`
}

type Response struct {
	ID          int64  `db:"id"`
	QuizTakerID int64  `db:"quiz_taker_id"`
	QuestionID  int64  `db:"question_id"`
	AnswerID    *int64 `db:"answer_id"`
}

type Grade struct {
	ID        int64     `db:"id"`
	QuizID    *int64    `db:"quiz_id"`
	Score     int64     `db:"score"`
	MaxScore  int64     `db:"max_score"`
	Timestamp time.Time `db:"timestamp"`
}

// Value classifies the grade: Pass when score/max_score >= 0.5, else Fail.
func (g Grade) Value() string {
	return GradeValue(g.Score, g.MaxScore)
}

// GradeValue classifies a score against its maximum. A non-positive max_score is a Fail.
func GradeValue(score, maxScore int64) string {
	if maxScore <= 0 {
		return GradeFail
	}
	if float64(score)/float64(maxScore) >= passRatio {
		return GradePass
	}
	return GradeFail
}

// GradeReportRow is one grade of one quiz taker, as exported by the admin tooling.
type GradeReportRow struct {
	QuizTakerID  int64     `db:"quiz_taker_id"`
	StudentEmail string    `db:"student_email"`
	StudentName  string    `db:"student_name"`
	GradeID      int64     `db:"grade_id"`
	QuizName     *string   `db:"quiz_name"`
	Score        int64     `db:"score"`
	MaxScore     int64     `db:"max_score"`
	Completed    bool      `db:"completed"`
	Timestamp    time.Time `db:"timestamp"`
}

func (r GradeReportRow) Value() string {
	return GradeValue(r.Score, r.MaxScore)
}

type (
	QuizInput struct {
		CourseID    *int64  `json:"course"`
		Name        string  `json:"name" validate:"required,notblank,max=250"`
		MaxScore    int64   `json:"max_score" validate:"min=0"`
		Description *string `json:"description"`
		IsActive    bool    `json:"is_active"`
	}

	QuestionInput struct {
		QuizID int64  `json:"quiz" validate:"required"`
		Label  string `json:"label" validate:"required,notblank,max=250"`
		Order  int64  `json:"order"`
	}

	AnswerInput struct {
		QuestionID int64  `json:"question" validate:"required"`
		Text       string `json:"text" validate:"required,notblank,max=250"`
		IsCorrect  bool   `json:"is_correct"`
	}

	QuizTakerInput struct {
		QuizIDs   []int64 `json:"quiz" validate:"dive,gt=0"`
		GradeIDs  []int64 `json:"grade" validate:"dive,gt=0"`
		Completed bool    `json:"completed"`
	}

	ResponseInput struct {
		QuizTakerID int64  `json:"quiz_taker" validate:"required"`
		QuestionID  int64  `json:"question" validate:"required"`
		AnswerID    *int64 `json:"answer"`
	}

	GradeInput struct {
		QuizID   *int64 `json:"quiz"`
		Score    int64  `json:"score" validate:"min=0"`
		MaxScore int64  `json:"max_score" validate:"gt=0"`
	}
)

var (
	QuizOrderings      = map[string]string{"id": "id", "name": "name", "max_score": "max_score", "timestamp": "timestamp", "is_active": "is_active"}
	QuestionOrderings  = map[string]string{"id": "id", "label": "label", "order": `"order"`}
	AnswerOrderings    = map[string]string{"id": "id", "text": "text", "is_correct": "is_correct"}
	QuizTakerOrderings = map[string]string{"id": "id", "completed": "completed", "timestamp": "timestamp"}
	ResponseOrderings  = map[string]string{"id": "id"}
	GradeOrderings     = map[string]string{"id": "id", "score": "score", "max_score": "max_score", "timestamp": "timestamp"}
)
