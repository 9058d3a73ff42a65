package information

import "time"

// Scope narrows who a piece of information is meant for. All links may be nil (general scope).
type Scope struct {
	ID           int64  `db:"id"`
	Description  string `db:"description"`
	IsGeneral    bool   `db:"is_general"`
	IsFirstYear  bool   `db:"is_first_year"`
	IsFinalYear  bool   `db:"is_final_year"`
	FacultyID    *int64 `db:"faculty_id"`
	DepartmentID *int64 `db:"department_id"`
	ProgrammeID  *int64 `db:"programme_id"`
	CourseID     *int64 `db:"course_id"`
	LevelID      *int64 `db:"level_id"`
}

type Information struct {
	ID        int64     `db:"id"`
	SourceID  int64     `db:"source_id"`
	ScopeID   int64     `db:"scope_id"`
	Title     string    `db:"title"`
	Body      string    `db:"body"`
	Timestamp time.Time `db:"timestamp"`
}

type Notice struct {
	ID       int64  `db:"id"`
	SourceID int64  `db:"source_id"`
	ScopeID  int64  `db:"scope_id"`
	Title    string `db:"title"`
	Message  string `db:"message"`
}

type Image struct {
	ID            int64     `db:"id"`
	InformationID int64     `db:"information_id"`
	Image         *string   `db:"image"` // stored file name, relative to the media root
	Description   *string   `db:"description"`
	Timestamp     time.Time `db:"timestamp"`
}

// ImageFilter selects images by their information row, or by the scope or source of that row.
type ImageFilter struct {
	InformationID int64
	ScopeID       int64
	SourceID      int64
}

// Upload is a file received from a client.
type Upload struct {
	Filename string
	Content  []byte
}

type (
	ScopeInput struct {
		Description  string `json:"description" validate:"required,notblank,max=250"`
		IsGeneral    bool   `json:"is_general"`
		IsFirstYear  bool   `json:"is_first_year"`
		IsFinalYear  bool   `json:"is_final_year"`
		FacultyID    *int64 `json:"faculty"`
		DepartmentID *int64 `json:"department"`
		ProgrammeID  *int64 `json:"programme"`
		CourseID     *int64 `json:"course"`
		LevelID      *int64 `json:"level"`
	}

	InformationInput struct {
		ScopeID int64  `json:"scope" validate:"required"`
		Title   string `json:"title" validate:"required,notblank,max=250"`
		Body    string `json:"body" validate:"required,notblank"`
	}

	NoticeInput struct {
		ScopeID int64  `json:"scope" validate:"required"`
		Title   string `json:"title" validate:"required,notblank,max=250"`
		Message string `json:"message" validate:"required,notblank"`
	}

	// ImageInput describes an image row. A nil Upload keeps the current file unless ClearImage is set.
	ImageInput struct {
		InformationID int64   `json:"information" validate:"required"`
		Description   *string `json:"description"`
		Upload        *Upload `json:"-"`
		ClearImage    bool    `json:"-"`
	}
)

var (
	ScopeOrderings       = map[string]string{"id": "id", "description": "description", "is_general": "is_general"}
	InformationOrderings = map[string]string{"id": "id", "title": "title", "timestamp": "timestamp"}
	NoticeOrderings      = map[string]string{"id": "id", "title": "title"}
	ImageOrderings       = map[string]string{"id": "id", "timestamp": "timestamp"}
)
