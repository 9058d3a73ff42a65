package academics

import "time"

type Faculty struct {
	ID          int64     `db:"id"`
	Name        string    `db:"name"`
	Code        *int64    `db:"code"`
	Description *string   `db:"description"`
	DeanID      *int64    `db:"dean_id"`
	IsActive    bool      `db:"is_active"`
	Timestamp   time.Time `db:"timestamp"`
}

type Department struct {
	ID          int64     `db:"id"`
	FacultyID   int64     `db:"faculty_id"`
	Name        string    `db:"name"`
	Code        *string   `db:"code"`
	Description *string   `db:"description"`
	HeadID      *int64    `db:"head_id"`
	IsActive    bool      `db:"is_active"`
	Timestamp   time.Time `db:"timestamp"`
}

type Programme struct {
	ID           int64     `db:"id"`
	DepartmentID int64     `db:"department_id"`
	Name         string    `db:"name"`
	Code         *string   `db:"code"`
	MaxLevelID   int64     `db:"max_level_id"`
	Description  *string   `db:"description"`
	IsActive     bool      `db:"is_active"`
	Timestamp    time.Time `db:"timestamp"`
}

type Course struct {
	ID            int64     `db:"id"`
	ProgrammeID   int64     `db:"programme_id"`
	Name          string    `db:"name"`
	Code          *string   `db:"code"`
	Description   *string   `db:"description"`
	CoordinatorID *int64    `db:"coordinator_id"`
	IsActive      bool      `db:"is_active"`
	Timestamp     time.Time `db:"timestamp"`
}

type Level struct {
	ID   int64 `db:"id"`
	Code int64 `db:"code"`
}

// Inputs carry the writable fields of each entity. JSON names are the API field names so that
// validation errors are keyed the way clients sent them.
type (
	FacultyInput struct {
		Name        string  `json:"name" validate:"required,notblank,max=250"`
		Code        *int64  `json:"code"`
		Description *string `json:"description"`
		DeanID      *int64  `json:"dean"`
		IsActive    bool    `json:"is_active"`
	}

	DepartmentInput struct {
		FacultyID   int64   `json:"faculty" validate:"required"`
		Name        string  `json:"name" validate:"required,notblank,max=250"`
		Code        *string `json:"code" validate:"omitempty,max=250"`
		Description *string `json:"description"`
		HeadID      *int64  `json:"head"`
		IsActive    bool    `json:"is_active"`
	}

	ProgrammeInput struct {
		DepartmentID int64   `json:"department" validate:"required"`
		Name         string  `json:"name" validate:"required,notblank,max=250"`
		Code         *string `json:"code" validate:"omitempty,max=250"`
		MaxLevelID   int64   `json:"max_level" validate:"required"`
		Description  *string `json:"description"`
		IsActive     bool    `json:"is_active"`
	}

	CourseInput struct {
		ProgrammeID   int64   `json:"programme" validate:"required"`
		Name          string  `json:"name" validate:"required,notblank,max=250"`
		Code          *string `json:"code" validate:"omitempty,max=250"`
		Description   *string `json:"description"`
		CoordinatorID *int64  `json:"coordinator"`
		IsActive      bool    `json:"is_active"`
	}

	LevelInput struct {
		Code *int64 `json:"code" validate:"required"`
	}
)

// Orderings maps the `ordering` query fields to columns, per entity.
var (
	FacultyOrderings    = map[string]string{"id": "id", "name": "name", "code": "code", "timestamp": "timestamp", "is_active": "is_active"}
	DepartmentOrderings = map[string]string{"id": "id", "name": "name", "code": "code", "timestamp": "timestamp", "is_active": "is_active"}
	ProgrammeOrderings  = map[string]string{"id": "id", "name": "name", "code": "code", "timestamp": "timestamp", "is_active": "is_active"}
	CourseOrderings     = map[string]string{"id": "id", "name": "name", "code": "code", "timestamp": "timestamp", "is_active": "is_active"}
	LevelOrderings      = map[string]string{"id": "id", "code": "code"}
)
