package sqlxrepos

import (
	"context"

	"github.com/trezcool/campus/core"
	"github.com/trezcool/campus/core/academics"
	"github.com/trezcool/campus/storage/database"
)

const (
	facultyColumns    = "id, name, code, description, dean_id, is_active, timestamp"
	departmentColumns = "id, faculty_id, name, code, description, head_id, is_active, timestamp"
	programmeColumns  = "id, department_id, name, code, max_level_id, description, is_active, timestamp"
	courseColumns     = "id, programme_id, name, code, description, coordinator_id, is_active, timestamp"
	levelColumns      = "id, code"
)

type academicsRepository struct {
	repository
}

var _ academics.Repository = (*academicsRepository)(nil) // interface compliance check

func NewAcademicsRepository(exec core.DBExecutor) *academicsRepository {
	return &academicsRepository{repository{exec: exec}}
}

// Faculty

func (repo academicsRepository) QueryFaculties(ctx context.Context, orderBy string, exec ...core.DBExecutor) ([]academics.Faculty, error) {
	faculties := make([]academics.Faculty, 0)
	q := "SELECT " + facultyColumns + " FROM faculty ORDER BY " + orderBy
	if err := repo.getExec(exec).SelectContext(ctx, &faculties, q); err != nil {
		return nil, database.MapError(err, "querying faculties")
	}
	return faculties, nil
}

func (repo academicsRepository) GetFaculty(ctx context.Context, id int64, exec ...core.DBExecutor) (academics.Faculty, error) {
	var f academics.Faculty
	q := "SELECT " + facultyColumns + " FROM faculty WHERE id = $1"
	if err := repo.getExec(exec).GetContext(ctx, &f, q, id); err != nil {
		return academics.Faculty{}, database.MapError(err, "getting faculty")
	}
	return f, nil
}

func (repo academicsRepository) CreateFaculty(ctx context.Context, f academics.Faculty, exec ...core.DBExecutor) (academics.Faculty, error) {
	var created academics.Faculty
	q := `INSERT INTO faculty (name, code, description, dean_id, is_active, timestamp)
		VALUES (:name, :code, :description, :dean_id, :is_active, :timestamp)
		RETURNING ` + facultyColumns
	if err := namedGet(ctx, repo.getExec(exec), &created, q, f); err != nil {
		return academics.Faculty{}, database.MapError(err, "creating faculty")
	}
	return created, nil
}

func (repo academicsRepository) UpdateFaculty(ctx context.Context, f academics.Faculty, exec ...core.DBExecutor) (academics.Faculty, error) {
	var updated academics.Faculty
	q := `UPDATE faculty SET name = :name, code = :code, description = :description, dean_id = :dean_id, is_active = :is_active
		WHERE id = :id
		RETURNING ` + facultyColumns
	if err := namedGet(ctx, repo.getExec(exec), &updated, q, f); err != nil {
		return academics.Faculty{}, database.MapError(err, "updating faculty")
	}
	return updated, nil
}

func (repo academicsRepository) DeleteFaculty(ctx context.Context, id int64, exec ...core.DBExecutor) error {
	return deleteRow(ctx, repo.getExec(exec), "faculty", id)
}

// Department

func (repo academicsRepository) QueryDepartments(ctx context.Context, orderBy string, exec ...core.DBExecutor) ([]academics.Department, error) {
	departments := make([]academics.Department, 0)
	q := "SELECT " + departmentColumns + " FROM department ORDER BY " + orderBy
	if err := repo.getExec(exec).SelectContext(ctx, &departments, q); err != nil {
		return nil, database.MapError(err, "querying departments")
	}
	return departments, nil
}

func (repo academicsRepository) GetDepartment(ctx context.Context, id int64, exec ...core.DBExecutor) (academics.Department, error) {
	var d academics.Department
	q := "SELECT " + departmentColumns + " FROM department WHERE id = $1"
	if err := repo.getExec(exec).GetContext(ctx, &d, q, id); err != nil {
		return academics.Department{}, database.MapError(err, "getting department")
	}
	return d, nil
}

func (repo academicsRepository) CreateDepartment(ctx context.Context, d academics.Department, exec ...core.DBExecutor) (academics.Department, error) {
	var created academics.Department
	q := `INSERT INTO department (faculty_id, name, code, description, head_id, is_active, timestamp)
		VALUES (:faculty_id, :name, :code, :description, :head_id, :is_active, :timestamp)
		RETURNING ` + departmentColumns
	if err := namedGet(ctx, repo.getExec(exec), &created, q, d); err != nil {
		return academics.Department{}, database.MapError(err, "creating department")
	}
	return created, nil
}

func (repo academicsRepository) UpdateDepartment(ctx context.Context, d academics.Department, exec ...core.DBExecutor) (academics.Department, error) {
	var updated academics.Department
	q := `UPDATE department SET faculty_id = :faculty_id, name = :name, code = :code, description = :description,
		head_id = :head_id, is_active = :is_active
		WHERE id = :id
		RETURNING ` + departmentColumns
	if err := namedGet(ctx, repo.getExec(exec), &updated, q, d); err != nil {
		return academics.Department{}, database.MapError(err, "updating department")
	}
	return updated, nil
}

func (repo academicsRepository) DeleteDepartment(ctx context.Context, id int64, exec ...core.DBExecutor) error {
	return deleteRow(ctx, repo.getExec(exec), "department", id)
}

// Programme

func (repo academicsRepository) QueryProgrammes(ctx context.Context, orderBy string, exec ...core.DBExecutor) ([]academics.Programme, error) {
	programmes := make([]academics.Programme, 0)
	q := "SELECT " + programmeColumns + " FROM programme ORDER BY " + orderBy
	if err := repo.getExec(exec).SelectContext(ctx, &programmes, q); err != nil {
		return nil, database.MapError(err, "querying programmes")
	}
	return programmes, nil
}

func (repo academicsRepository) GetProgramme(ctx context.Context, id int64, exec ...core.DBExecutor) (academics.Programme, error) {
	var p academics.Programme
	q := "SELECT " + programmeColumns + " FROM programme WHERE id = $1"
	if err := repo.getExec(exec).GetContext(ctx, &p, q, id); err != nil {
		return academics.Programme{}, database.MapError(err, "getting programme")
	}
	return p, nil
}

func (repo academicsRepository) CreateProgramme(ctx context.Context, p academics.Programme, exec ...core.DBExecutor) (academics.Programme, error) {
	var created academics.Programme
	q := `INSERT INTO programme (department_id, name, code, max_level_id, description, is_active, timestamp)
		VALUES (:department_id, :name, :code, :max_level_id, :description, :is_active, :timestamp)
		RETURNING ` + programmeColumns
	if err := namedGet(ctx, repo.getExec(exec), &created, q, p); err != nil {
		return academics.Programme{}, database.MapError(err, "creating programme")
	}
	return created, nil
}

func (repo academicsRepository) UpdateProgramme(ctx context.Context, p academics.Programme, exec ...core.DBExecutor) (academics.Programme, error) {
	var updated academics.Programme
	q := `UPDATE programme SET department_id = :department_id, name = :name, code = :code, max_level_id = :max_level_id,
		description = :description, is_active = :is_active
		WHERE id = :id
		RETURNING ` + programmeColumns
	if err := namedGet(ctx, repo.getExec(exec), &updated, q, p); err != nil {
		return academics.Programme{}, database.MapError(err, "updating programme")
	}
	return updated, nil
}

func (repo academicsRepository) DeleteProgramme(ctx context.Context, id int64, exec ...core.DBExecutor) error {
	return deleteRow(ctx, repo.getExec(exec), "programme", id)
}

// Course

func (repo academicsRepository) QueryCourses(ctx context.Context, orderBy string, exec ...core.DBExecutor) ([]academics.Course, error) {
	courses := make([]academics.Course, 0)
	q := "SELECT " + courseColumns + " FROM course ORDER BY " + orderBy
	if err := repo.getExec(exec).SelectContext(ctx, &courses, q); err != nil {
		return nil, database.MapError(err, "querying courses")
	}
	return courses, nil
}

func (repo academicsRepository) GetCourse(ctx context.Context, id int64, exec ...core.DBExecutor) (academics.Course, error) {
	var c academics.Course
	q := "SELECT " + courseColumns + " FROM course WHERE id = $1"
	if err := repo.getExec(exec).GetContext(ctx, &c, q, id); err != nil {
		return academics.Course{}, database.MapError(err, "getting course")
	}
	return c, nil
}

func (repo academicsRepository) CreateCourse(ctx context.Context, c academics.Course, exec ...core.DBExecutor) (academics.Course, error) {
	var created academics.Course
	q := `INSERT INTO course (programme_id, name, code, description, coordinator_id, is_active, timestamp)
		VALUES (:programme_id, :name, :code, :description, :coordinator_id, :is_active, :timestamp)
		RETURNING ` + courseColumns
	if err := namedGet(ctx, repo.getExec(exec), &created, q, c); err != nil {
		return academics.Course{}, database.MapError(err, "creating course")
	}
	return created, nil
}

func (repo academicsRepository) UpdateCourse(ctx context.Context, c academics.Course, exec ...core.DBExecutor) (academics.Course, error) {
	var updated academics.Course
	q := `UPDATE course SET programme_id = :programme_id, name = :name, code = :code, description = :description,
		coordinator_id = :coordinator_id, is_active = :is_active
		WHERE id = :id
		RETURNING ` + courseColumns
	if err := namedGet(ctx, repo.getExec(exec), &updated, q, c); err != nil {
		return academics.Course{}, database.MapError(err, "updating course")
	}
	return updated, nil
}

func (repo academicsRepository) DeleteCourse(ctx context.Context, id int64, exec ...core.DBExecutor) error {
	return deleteRow(ctx, repo.getExec(exec), "course", id)
}

// Level

func (repo academicsRepository) QueryLevels(ctx context.Context, orderBy string, exec ...core.DBExecutor) ([]academics.Level, error) {
	levels := make([]academics.Level, 0)
	q := "SELECT " + levelColumns + " FROM level ORDER BY " + orderBy
	if err := repo.getExec(exec).SelectContext(ctx, &levels, q); err != nil {
		return nil, database.MapError(err, "querying levels")
	}
	return levels, nil
}

func (repo academicsRepository) GetLevel(ctx context.Context, id int64, exec ...core.DBExecutor) (academics.Level, error) {
	var l academics.Level
	q := "SELECT " + levelColumns + " FROM level WHERE id = $1"
	if err := repo.getExec(exec).GetContext(ctx, &l, q, id); err != nil {
		return academics.Level{}, database.MapError(err, "getting level")
	}
	return l, nil
}

func (repo academicsRepository) CreateLevel(ctx context.Context, l academics.Level, exec ...core.DBExecutor) (academics.Level, error) {
	var created academics.Level
	q := "INSERT INTO level (code) VALUES (:code) RETURNING " + levelColumns
	if err := namedGet(ctx, repo.getExec(exec), &created, q, l); err != nil {
		return academics.Level{}, database.MapError(err, "creating level")
	}
	return created, nil
}

func (repo academicsRepository) UpdateLevel(ctx context.Context, l academics.Level, exec ...core.DBExecutor) (academics.Level, error) {
	var updated academics.Level
	q := "UPDATE level SET code = :code WHERE id = :id RETURNING " + levelColumns
	if err := namedGet(ctx, repo.getExec(exec), &updated, q, l); err != nil {
		return academics.Level{}, database.MapError(err, "updating level")
	}
	return updated, nil
}

func (repo academicsRepository) DeleteLevel(ctx context.Context, id int64, exec ...core.DBExecutor) error {
	return deleteRow(ctx, repo.getExec(exec), "level", id)
}
