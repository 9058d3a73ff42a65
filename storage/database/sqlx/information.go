package sqlxrepos

import (
	"context"

	"github.com/trezcool/campus/core"
	"github.com/trezcool/campus/core/information"
	"github.com/trezcool/campus/storage/database"
)

const (
	scopeColumns       = "id, description, is_general, is_first_year, is_final_year, faculty_id, department_id, programme_id, course_id, level_id"
	informationColumns = "id, source_id, scope_id, title, body, timestamp"
	noticeColumns      = "id, source_id, scope_id, title, message"
	imageColumns       = "id, information_id, image, description, timestamp"
)

type informationRepository struct {
	repository
}

var _ information.Repository = (*informationRepository)(nil) // interface compliance check

func NewInformationRepository(exec core.DBExecutor) *informationRepository {
	return &informationRepository{repository{exec: exec}}
}

// Scope

func (repo informationRepository) QueryScopes(ctx context.Context, orderBy string, exec ...core.DBExecutor) ([]information.Scope, error) {
	scopes := make([]information.Scope, 0)
	q := "SELECT " + scopeColumns + " FROM scope ORDER BY " + orderBy
	if err := repo.getExec(exec).SelectContext(ctx, &scopes, q); err != nil {
		return nil, database.MapError(err, "querying scopes")
	}
	return scopes, nil
}

func (repo informationRepository) GetScope(ctx context.Context, id int64, exec ...core.DBExecutor) (information.Scope, error) {
	var s information.Scope
	q := "SELECT " + scopeColumns + " FROM scope WHERE id = $1"
	if err := repo.getExec(exec).GetContext(ctx, &s, q, id); err != nil {
		return information.Scope{}, database.MapError(err, "getting scope")
	}
	return s, nil
}

func (repo informationRepository) CreateScope(ctx context.Context, s information.Scope, exec ...core.DBExecutor) (information.Scope, error) {
	var created information.Scope
	q := `INSERT INTO scope (description, is_general, is_first_year, is_final_year, faculty_id, department_id, programme_id, course_id, level_id)
		VALUES (:description, :is_general, :is_first_year, :is_final_year, :faculty_id, :department_id, :programme_id, :course_id, :level_id)
		RETURNING ` + scopeColumns
	if err := namedGet(ctx, repo.getExec(exec), &created, q, s); err != nil {
		return information.Scope{}, database.MapError(err, "creating scope")
	}
	return created, nil
}

func (repo informationRepository) UpdateScope(ctx context.Context, s information.Scope, exec ...core.DBExecutor) (information.Scope, error) {
	var updated information.Scope
	q := `UPDATE scope SET description = :description, is_general = :is_general, is_first_year = :is_first_year,
		is_final_year = :is_final_year, faculty_id = :faculty_id, department_id = :department_id,
		programme_id = :programme_id, course_id = :course_id, level_id = :level_id
		WHERE id = :id
		RETURNING ` + scopeColumns
	if err := namedGet(ctx, repo.getExec(exec), &updated, q, s); err != nil {
		return information.Scope{}, database.MapError(err, "updating scope")
	}
	return updated, nil
}

func (repo informationRepository) DeleteScope(ctx context.Context, id int64, exec ...core.DBExecutor) error {
	return deleteRow(ctx, repo.getExec(exec), "scope", id)
}

// Information

func (repo informationRepository) QueryInformation(ctx context.Context, orderBy string, exec ...core.DBExecutor) ([]information.Information, error) {
	infos := make([]information.Information, 0)
	q := "SELECT " + informationColumns + " FROM information ORDER BY " + orderBy
	if err := repo.getExec(exec).SelectContext(ctx, &infos, q); err != nil {
		return nil, database.MapError(err, "querying information")
	}
	return infos, nil
}

func (repo informationRepository) GetInformation(ctx context.Context, id int64, exec ...core.DBExecutor) (information.Information, error) {
	var info information.Information
	q := "SELECT " + informationColumns + " FROM information WHERE id = $1"
	if err := repo.getExec(exec).GetContext(ctx, &info, q, id); err != nil {
		return information.Information{}, database.MapError(err, "getting information")
	}
	return info, nil
}

func (repo informationRepository) CreateInformation(ctx context.Context, info information.Information, exec ...core.DBExecutor) (information.Information, error) {
	var created information.Information
	q := `INSERT INTO information (source_id, scope_id, title, body, timestamp)
		VALUES (:source_id, :scope_id, :title, :body, :timestamp)
		RETURNING ` + informationColumns
	if err := namedGet(ctx, repo.getExec(exec), &created, q, info); err != nil {
		return information.Information{}, database.MapError(err, "creating information")
	}
	return created, nil
}

func (repo informationRepository) UpdateInformation(ctx context.Context, info information.Information, exec ...core.DBExecutor) (information.Information, error) {
	var updated information.Information
	q := `UPDATE information SET scope_id = :scope_id, title = :title, body = :body
		WHERE id = :id
		RETURNING ` + informationColumns
	if err := namedGet(ctx, repo.getExec(exec), &updated, q, info); err != nil {
		return information.Information{}, database.MapError(err, "updating information")
	}
	return updated, nil
}

func (repo informationRepository) DeleteInformation(ctx context.Context, id int64, exec ...core.DBExecutor) error {
	return deleteRow(ctx, repo.getExec(exec), "information", id)
}

// Notice

func (repo informationRepository) QueryNotices(ctx context.Context, orderBy string, exec ...core.DBExecutor) ([]information.Notice, error) {
	notices := make([]information.Notice, 0)
	q := "SELECT " + noticeColumns + " FROM notice ORDER BY " + orderBy
	if err := repo.getExec(exec).SelectContext(ctx, &notices, q); err != nil {
		return nil, database.MapError(err, "querying notices")
	}
	return notices, nil
}

func (repo informationRepository) GetNotice(ctx context.Context, id int64, exec ...core.DBExecutor) (information.Notice, error) {
	var n information.Notice
	q := "SELECT " + noticeColumns + " FROM notice WHERE id = $1"
	if err := repo.getExec(exec).GetContext(ctx, &n, q, id); err != nil {
		return information.Notice{}, database.MapError(err, "getting notice")
	}
	return n, nil
}

func (repo informationRepository) CreateNotice(ctx context.Context, n information.Notice, exec ...core.DBExecutor) (information.Notice, error) {
	var created information.Notice
	q := `INSERT INTO notice (source_id, scope_id, title, message) VALUES (:source_id, :scope_id, :title, :message)
		RETURNING ` + noticeColumns
	if err := namedGet(ctx, repo.getExec(exec), &created, q, n); err != nil {
		return information.Notice{}, database.MapError(err, "creating notice")
	}
	return created, nil
}

func (repo informationRepository) UpdateNotice(ctx context.Context, n information.Notice, exec ...core.DBExecutor) (information.Notice, error) {
	var updated information.Notice
	q := `UPDATE notice SET scope_id = :scope_id, title = :title, message = :message
		WHERE id = :id
		RETURNING ` + noticeColumns
	if err := namedGet(ctx, repo.getExec(exec), &updated, q, n); err != nil {
		return information.Notice{}, database.MapError(err, "updating notice")
	}
	return updated, nil
}

func (repo informationRepository) DeleteNotice(ctx context.Context, id int64, exec ...core.DBExecutor) error {
	return deleteRow(ctx, repo.getExec(exec), "notice", id)
}

// Image

func (repo informationRepository) QueryImages(ctx context.Context, orderBy string, exec ...core.DBExecutor) ([]information.Image, error) {
	images := make([]information.Image, 0)
	q := "SELECT " + imageColumns + " FROM information_image ORDER BY " + orderBy
	if err := repo.getExec(exec).SelectContext(ctx, &images, q); err != nil {
		return nil, database.MapError(err, "querying images")
	}
	return images, nil
}

func (repo informationRepository) GetImage(ctx context.Context, id int64, exec ...core.DBExecutor) (information.Image, error) {
	var img information.Image
	q := "SELECT " + imageColumns + " FROM information_image WHERE id = $1"
	if err := repo.getExec(exec).GetContext(ctx, &img, q, id); err != nil {
		return information.Image{}, database.MapError(err, "getting image")
	}
	return img, nil
}

func (repo informationRepository) CreateImage(ctx context.Context, img information.Image, exec ...core.DBExecutor) (information.Image, error) {
	var created information.Image
	q := `INSERT INTO information_image (information_id, image, description, timestamp)
		VALUES (:information_id, :image, :description, :timestamp)
		RETURNING ` + imageColumns
	if err := namedGet(ctx, repo.getExec(exec), &created, q, img); err != nil {
		return information.Image{}, database.MapError(err, "creating image")
	}
	return created, nil
}

func (repo informationRepository) UpdateImage(ctx context.Context, img information.Image, exec ...core.DBExecutor) (information.Image, error) {
	var updated information.Image
	q := `UPDATE information_image SET information_id = :information_id, image = :image, description = :description
		WHERE id = :id
		RETURNING ` + imageColumns
	if err := namedGet(ctx, repo.getExec(exec), &updated, q, img); err != nil {
		return information.Image{}, database.MapError(err, "updating image")
	}
	return updated, nil
}

func (repo informationRepository) DeleteImage(ctx context.Context, id int64, exec ...core.DBExecutor) error {
	return deleteRow(ctx, repo.getExec(exec), "information_image", id)
}

// StoredImageFiles lists the stored file names of the images attached to information rows, selected by
// information id, scope id or source id.
func (repo informationRepository) StoredImageFiles(ctx context.Context, f information.ImageFilter, exec ...core.DBExecutor) ([]string, error) {
	names := make([]string, 0)
	q := `SELECT ii.image FROM information_image ii
		JOIN information i ON i.id = ii.information_id
		WHERE ii.image IS NOT NULL AND ii.image <> '' AND `
	var arg int64
	switch {
	case f.InformationID != 0:
		q += "i.id = $1"
		arg = f.InformationID
	case f.ScopeID != 0:
		q += "i.scope_id = $1"
		arg = f.ScopeID
	case f.SourceID != 0:
		q += "i.source_id = $1"
		arg = f.SourceID
	default:
		return names, nil
	}
	if err := repo.getExec(exec).SelectContext(ctx, &names, q, arg); err != nil {
		return nil, database.MapError(err, "querying image files")
	}
	return names, nil
}
