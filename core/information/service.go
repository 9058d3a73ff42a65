package information

import (
	"context"
	"path"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/campus/core"
)

var nowFunc = func() time.Time { return time.Now().UTC() } // mockable

type (
	Repository interface {
		QueryScopes(ctx context.Context, orderBy string, exec ...core.DBExecutor) ([]Scope, error)
		GetScope(ctx context.Context, id int64, exec ...core.DBExecutor) (Scope, error)
		CreateScope(ctx context.Context, s Scope, exec ...core.DBExecutor) (Scope, error)
		UpdateScope(ctx context.Context, s Scope, exec ...core.DBExecutor) (Scope, error)
		DeleteScope(ctx context.Context, id int64, exec ...core.DBExecutor) error

		QueryInformation(ctx context.Context, orderBy string, exec ...core.DBExecutor) ([]Information, error)
		GetInformation(ctx context.Context, id int64, exec ...core.DBExecutor) (Information, error)
		CreateInformation(ctx context.Context, info Information, exec ...core.DBExecutor) (Information, error)
		UpdateInformation(ctx context.Context, info Information, exec ...core.DBExecutor) (Information, error)
		DeleteInformation(ctx context.Context, id int64, exec ...core.DBExecutor) error

		QueryNotices(ctx context.Context, orderBy string, exec ...core.DBExecutor) ([]Notice, error)
		GetNotice(ctx context.Context, id int64, exec ...core.DBExecutor) (Notice, error)
		CreateNotice(ctx context.Context, n Notice, exec ...core.DBExecutor) (Notice, error)
		UpdateNotice(ctx context.Context, n Notice, exec ...core.DBExecutor) (Notice, error)
		DeleteNotice(ctx context.Context, id int64, exec ...core.DBExecutor) error

		QueryImages(ctx context.Context, orderBy string, exec ...core.DBExecutor) ([]Image, error)
		GetImage(ctx context.Context, id int64, exec ...core.DBExecutor) (Image, error)
		CreateImage(ctx context.Context, img Image, exec ...core.DBExecutor) (Image, error)
		UpdateImage(ctx context.Context, img Image, exec ...core.DBExecutor) (Image, error)
		DeleteImage(ctx context.Context, id int64, exec ...core.DBExecutor) error
		StoredImageFiles(ctx context.Context, f ImageFilter, exec ...core.DBExecutor) ([]string, error)
	}

	// FileStorage stores uploaded files under names relative to its root.
	FileStorage interface {
		// Save writes content under dir with a unique name derived from filename and returns the stored name.
		Save(ctx context.Context, dir, filename string, content []byte) (string, error)
		Delete(name string) error
		URL(name string) string
	}
)

// Service manages scopes and the bulletin: information, notices and their images.
type Service struct {
	db       core.DB
	repo     Repository
	files    FileStorage
	validate *validator.Validate
	logger   core.Logger
}

func NewService(db core.DB, repo Repository, files FileStorage, validate *validator.Validate, logger core.Logger) *Service {
	return &Service{db: db, repo: repo, files: files, validate: validate, logger: logger}
}

// ImageURL returns the public URL of a stored image, or nil when there is none.
func (svc *Service) ImageURL(img Image) *string {
	if img.Image == nil || *img.Image == "" {
		return nil
	}
	u := svc.files.URL(*img.Image)
	return &u
}

// Scope

func (svc *Service) QueryScopes(ctx context.Context, orderings []core.DBOrdering) ([]Scope, error) {
	orderBy, err := core.OrderBy(orderings, ScopeOrderings, "id ASC")
	if err != nil {
		return nil, err
	}
	return svc.repo.QueryScopes(ctx, orderBy)
}

func (svc *Service) GetScope(ctx context.Context, id int64) (Scope, error) {
	return svc.repo.GetScope(ctx, id)
}

func (svc *Service) CreateScope(ctx context.Context, in ScopeInput) (s Scope, err error) {
	in.Description = core.CleanString(in.Description)
	if err = svc.validate.Struct(in); err != nil {
		return Scope{}, err
	}
	in.apply(&s)
	err = core.WithTx(ctx, svc.db, func(exec core.DBExecutor) error {
		s, err = svc.repo.CreateScope(ctx, s, exec)
		return err
	})
	return s, err
}

func (svc *Service) UpdateScope(ctx context.Context, id int64, in ScopeInput) (s Scope, err error) {
	in.Description = core.CleanString(in.Description)
	if err = svc.validate.Struct(in); err != nil {
		return Scope{}, err
	}
	err = core.WithTx(ctx, svc.db, func(exec core.DBExecutor) error {
		if s, err = svc.repo.GetScope(ctx, id, exec); err != nil {
			return err
		}
		in.apply(&s)
		s, err = svc.repo.UpdateScope(ctx, s, exec)
		return err
	})
	return s, err
}

// DeleteScope also deletes the scope's information and notices, and the files of their images.
func (svc *Service) DeleteScope(ctx context.Context, id int64) error {
	return svc.deleteWithImages(ctx, ImageFilter{ScopeID: id}, func(exec core.DBExecutor) error {
		return svc.repo.DeleteScope(ctx, id, exec)
	})
}

// DeleteSource runs del, which deletes the user sourceID and cascades to the information it published,
// then removes the files of that information's images.
func (svc *Service) DeleteSource(ctx context.Context, sourceID int64, del func(ctx context.Context, id int64) error) error {
	files, err := svc.repo.StoredImageFiles(ctx, ImageFilter{SourceID: sourceID})
	if err != nil {
		return err
	}
	if err = del(ctx, sourceID); err != nil {
		return err
	}
	for _, name := range files {
		svc.removeFile(name)
	}
	return nil
}

// deleteWithImages runs del in a transaction and removes the files of the images selected by f
// (which del cascades to) once it is committed.
func (svc *Service) deleteWithImages(ctx context.Context, f ImageFilter, del func(exec core.DBExecutor) error) error {
	var files []string
	err := core.WithTx(ctx, svc.db, func(exec core.DBExecutor) (err error) {
		if files, err = svc.repo.StoredImageFiles(ctx, f, exec); err != nil {
			return err
		}
		return del(exec)
	})
	if err != nil {
		return err
	}
	for _, name := range files {
		svc.removeFile(name)
	}
	return nil
}

func (in ScopeInput) apply(s *Scope) {
	s.Description = in.Description
	s.IsGeneral = in.IsGeneral
	s.IsFirstYear = in.IsFirstYear
	s.IsFinalYear = in.IsFinalYear
	s.FacultyID = in.FacultyID
	s.DepartmentID = in.DepartmentID
	s.ProgrammeID = in.ProgrammeID
	s.CourseID = in.CourseID
	s.LevelID = in.LevelID
}

// Information

func (svc *Service) QueryInformation(ctx context.Context, orderings []core.DBOrdering) ([]Information, error) {
	orderBy, err := core.OrderBy(orderings, InformationOrderings, "id ASC")
	if err != nil {
		return nil, err
	}
	return svc.repo.QueryInformation(ctx, orderBy)
}

func (svc *Service) GetInformation(ctx context.Context, id int64) (Information, error) {
	return svc.repo.GetInformation(ctx, id)
}

// CreateInformation publishes information on behalf of sourceID.
func (svc *Service) CreateInformation(ctx context.Context, sourceID int64, in InformationInput) (info Information, err error) {
	in.Title = core.CleanString(in.Title)
	if err = svc.validate.Struct(in); err != nil {
		return Information{}, err
	}
	info = Information{SourceID: sourceID, ScopeID: in.ScopeID, Title: in.Title, Body: in.Body, Timestamp: nowFunc()}
	err = core.WithTx(ctx, svc.db, func(exec core.DBExecutor) error {
		info, err = svc.repo.CreateInformation(ctx, info, exec)
		return err
	})
	return info, err
}

// UpdateInformation keeps the source.
func (svc *Service) UpdateInformation(ctx context.Context, id int64, in InformationInput) (info Information, err error) {
	in.Title = core.CleanString(in.Title)
	if err = svc.validate.Struct(in); err != nil {
		return Information{}, err
	}
	err = core.WithTx(ctx, svc.db, func(exec core.DBExecutor) error {
		if info, err = svc.repo.GetInformation(ctx, id, exec); err != nil {
			return err
		}
		info.ScopeID, info.Title, info.Body = in.ScopeID, in.Title, in.Body
		info, err = svc.repo.UpdateInformation(ctx, info, exec)
		return err
	})
	return info, err
}

func (svc *Service) DeleteInformation(ctx context.Context, id int64) error {
	return svc.deleteWithImages(ctx, ImageFilter{InformationID: id}, func(exec core.DBExecutor) error {
		return svc.repo.DeleteInformation(ctx, id, exec)
	})
}

// Notice

func (svc *Service) QueryNotices(ctx context.Context, orderings []core.DBOrdering) ([]Notice, error) {
	orderBy, err := core.OrderBy(orderings, NoticeOrderings, "id ASC")
	if err != nil {
		return nil, err
	}
	return svc.repo.QueryNotices(ctx, orderBy)
}

func (svc *Service) GetNotice(ctx context.Context, id int64) (Notice, error) {
	return svc.repo.GetNotice(ctx, id)
}

// CreateNotice publishes a notice on behalf of sourceID.
func (svc *Service) CreateNotice(ctx context.Context, sourceID int64, in NoticeInput) (n Notice, err error) {
	in.Title = core.CleanString(in.Title)
	if err = svc.validate.Struct(in); err != nil {
		return Notice{}, err
	}
	n = Notice{SourceID: sourceID, ScopeID: in.ScopeID, Title: in.Title, Message: in.Message}
	err = core.WithTx(ctx, svc.db, func(exec core.DBExecutor) error {
		n, err = svc.repo.CreateNotice(ctx, n, exec)
		return err
	})
	return n, err
}

// UpdateNotice keeps the source.
func (svc *Service) UpdateNotice(ctx context.Context, id int64, in NoticeInput) (n Notice, err error) {
	in.Title = core.CleanString(in.Title)
	if err = svc.validate.Struct(in); err != nil {
		return Notice{}, err
	}
	err = core.WithTx(ctx, svc.db, func(exec core.DBExecutor) error {
		if n, err = svc.repo.GetNotice(ctx, id, exec); err != nil {
			return err
		}
		n.ScopeID, n.Title, n.Message = in.ScopeID, in.Title, in.Message
		n, err = svc.repo.UpdateNotice(ctx, n, exec)
		return err
	})
	return n, err
}

func (svc *Service) DeleteNotice(ctx context.Context, id int64) error {
	return core.WithTx(ctx, svc.db, func(exec core.DBExecutor) error {
		return svc.repo.DeleteNotice(ctx, id, exec)
	})
}

// Image

func (svc *Service) QueryImages(ctx context.Context, orderings []core.DBOrdering) ([]Image, error) {
	orderBy, err := core.OrderBy(orderings, ImageOrderings, "id ASC")
	if err != nil {
		return nil, err
	}
	return svc.repo.QueryImages(ctx, orderBy)
}

func (svc *Service) GetImage(ctx context.Context, id int64) (Image, error) {
	return svc.repo.GetImage(ctx, id)
}

// storeUpload validates and stores in.Upload, returning the stored name ("" when there is no upload).
func (svc *Service) storeUpload(ctx context.Context, in ImageInput) (string, error) {
	if in.Upload == nil {
		return "", nil
	}
	ext, err := ValidateImage(in.Upload.Content)
	if err != nil {
		return "", err
	}
	// the stored extension follows the detected format, not the client's file name
	filename := strings.TrimSuffix(in.Upload.Filename, path.Ext(in.Upload.Filename)) + ext
	name, err := svc.files.Save(ctx, uploadDir(nowFunc()), filename, in.Upload.Content)
	return name, errors.Wrap(err, "saving image")
}

func (svc *Service) removeFile(name string) {
	if name == "" {
		return
	}
	if err := svc.files.Delete(name); err != nil {
		svc.logger.Warn("could not delete stored image", err, "file", name)
	}
}

func (svc *Service) CreateImage(ctx context.Context, in ImageInput) (img Image, err error) {
	if err = svc.validate.Struct(in); err != nil {
		return Image{}, err
	}
	stored, err := svc.storeUpload(ctx, in)
	if err != nil {
		return Image{}, err
	}
	img = Image{InformationID: in.InformationID, Description: in.Description, Timestamp: nowFunc()}
	if stored != "" {
		img.Image = &stored
	}
	err = core.WithTx(ctx, svc.db, func(exec core.DBExecutor) error {
		img, err = svc.repo.CreateImage(ctx, img, exec)
		return err
	})
	if err != nil {
		svc.removeFile(stored)
		return Image{}, err
	}
	return img, nil
}

// UpdateImage replaces the row; a new upload (or ClearImage) drops the previous file once committed.
func (svc *Service) UpdateImage(ctx context.Context, id int64, in ImageInput) (img Image, err error) {
	if err = svc.validate.Struct(in); err != nil {
		return Image{}, err
	}
	stored, err := svc.storeUpload(ctx, in)
	if err != nil {
		return Image{}, err
	}
	var previous string
	err = core.WithTx(ctx, svc.db, func(exec core.DBExecutor) error {
		if img, err = svc.repo.GetImage(ctx, id, exec); err != nil {
			return err
		}
		img.InformationID, img.Description = in.InformationID, in.Description
		if stored != "" || in.ClearImage {
			if img.Image != nil {
				previous = *img.Image
			}
			img.Image = nil
			if stored != "" {
				img.Image = &stored
			}
		}
		img, err = svc.repo.UpdateImage(ctx, img, exec)
		return err
	})
	if err != nil {
		svc.removeFile(stored)
		return Image{}, err
	}
	svc.removeFile(previous)
	return img, nil
}

func (svc *Service) DeleteImage(ctx context.Context, id int64) error {
	var img Image
	err := core.WithTx(ctx, svc.db, func(exec core.DBExecutor) (err error) {
		if img, err = svc.repo.GetImage(ctx, id, exec); err != nil {
			return err
		}
		return svc.repo.DeleteImage(ctx, id, exec)
	})
	if err != nil {
		return err
	}
	if img.Image != nil {
		svc.removeFile(*img.Image)
	}
	return nil
}
