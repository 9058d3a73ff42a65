package database

import (
	"database/sql"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/campus/core"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"

	msgObjectDoesNotExist = "Invalid hyperlink - Object does not exist."
)

// constraints maps constraint names to the API field and message reported when they are violated.
var constraints = map[string]core.FieldError{
	"users_email_key": {Field: "email", Error: "user with this email already exists."},

	"level_code_key":               {Field: "code", Error: "level with this code already exists."},
	"faculty_name_key":             {Field: "name", Error: "faculty with this name already exists."},
	"faculty_code_key":             {Field: "code", Error: "faculty with this code already exists."},
	"faculty_dean_id_fkey":         {Field: "dean", Error: msgObjectDoesNotExist},
	"department_name_key":          {Field: "name", Error: "department with this name already exists."},
	"department_code_key":          {Field: "code", Error: "department with this code already exists."},
	"department_faculty_id_fkey":   {Field: "faculty", Error: msgObjectDoesNotExist},
	"department_head_id_fkey":      {Field: "head", Error: msgObjectDoesNotExist},
	"programme_name_key":           {Field: "name", Error: "programme with this name already exists."},
	"programme_code_key":           {Field: "code", Error: "programme with this code already exists."},
	"programme_department_id_fkey": {Field: "department", Error: msgObjectDoesNotExist},
	"programme_max_level_id_fkey":  {Field: "max_level", Error: msgObjectDoesNotExist},
	"course_name_key":              {Field: "name", Error: "course with this name already exists."},
	"course_code_key":              {Field: "code", Error: "course with this code already exists."},
	"course_programme_id_fkey":     {Field: "programme", Error: msgObjectDoesNotExist},
	"course_coordinator_id_fkey":   {Field: "coordinator", Error: msgObjectDoesNotExist},

	"quiz_supervisor_id_fkey":        {Field: "supervisor", Error: msgObjectDoesNotExist},
	"quiz_course_id_fkey":            {Field: "course", Error: msgObjectDoesNotExist},
	"question_quiz_id_fkey":          {Field: "quiz", Error: msgObjectDoesNotExist},
	"answer_question_id_fkey":        {Field: "question", Error: msgObjectDoesNotExist},
	"grade_quiz_id_fkey":             {Field: "quiz", Error: msgObjectDoesNotExist},
	"quiz_taker_student_id_fkey":     {Field: "student", Error: msgObjectDoesNotExist},
	"quiz_taker_quiz_quiz_id_fkey":   {Field: "quiz", Error: msgObjectDoesNotExist},
	"quiz_taker_grade_grade_id_fkey": {Field: "grade", Error: msgObjectDoesNotExist},
	"response_quiz_taker_id_fkey":    {Field: "quiz_taker", Error: msgObjectDoesNotExist},
	"response_question_id_fkey":      {Field: "question", Error: msgObjectDoesNotExist},
	"response_answer_id_fkey":        {Field: "answer", Error: msgObjectDoesNotExist},

	"scope_faculty_id_fkey":                 {Field: "faculty", Error: msgObjectDoesNotExist},
	"scope_department_id_fkey":              {Field: "department", Error: msgObjectDoesNotExist},
	"scope_programme_id_fkey":               {Field: "programme", Error: msgObjectDoesNotExist},
	"scope_course_id_fkey":                  {Field: "course", Error: msgObjectDoesNotExist},
	"scope_level_id_fkey":                   {Field: "level", Error: msgObjectDoesNotExist},
	"information_source_id_fkey":            {Field: "source", Error: msgObjectDoesNotExist},
	"information_scope_id_fkey":             {Field: "scope", Error: msgObjectDoesNotExist},
	"notice_source_id_fkey":                 {Field: "source", Error: msgObjectDoesNotExist},
	"notice_scope_id_fkey":                  {Field: "scope", Error: msgObjectDoesNotExist},
	"information_image_information_id_fkey": {Field: "information", Error: msgObjectDoesNotExist},
}

// constraintViolation extracts the SQLSTATE and constraint name from a lib/pq or pgx error.
func constraintViolation(err error) (code, constraint string, ok bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Constraint, true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName, true
	}
	return "", "", false
}

// MapError translates storage errors into domain errors:
// sql.ErrNoRows becomes core.ErrNotFound, known unique and foreign key violations become
// core.ValidationError on the matching field. Anything else is wrapped with msg.
func MapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Cause(err) == sql.ErrNoRows {
		return core.ErrNotFound
	}
	if code, constraint, ok := constraintViolation(err); ok {
		if code == codeUniqueViolation || code == codeForeignKeyViolation {
			if fe, known := constraints[constraint]; known {
				return core.NewValidationError(nil, fe)
			}
		}
	}
	return errors.Wrap(err, msg)
}
