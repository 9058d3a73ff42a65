package echoapi

import (
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/campus/core"
	"github.com/trezcool/campus/core/information"
)

const msgNotAFile = "The submitted data was not a file. Check the encoding type on the form."

type (
	ScopeRep struct {
		URL         readOnly[string] `json:"url"`
		ID          readOnly[int64]  `json:"id"`
		Description string           `json:"description"`
		IsGeneral   bool             `json:"is_general"`
		IsFirstYear bool             `json:"is_first_year"`
		IsFinalYear bool             `json:"is_final_year"`
		Faculty     Link             `json:"faculty"`
		Department  Link             `json:"department"`
		Programme   Link             `json:"programme"`
		Course      Link             `json:"course"`
		Level       Link             `json:"level"`
	}

	InformationRep struct {
		URL       readOnly[string]    `json:"url"`
		ID        readOnly[int64]     `json:"id"`
		Title     string              `json:"title"`
		Body      string              `json:"body"`
		Source    readOnly[int64]     `json:"source"`
		Scope     Link                `json:"scope"`
		Timestamp readOnly[time.Time] `json:"timestamp"`
	}

	NoticeRep struct {
		URL     readOnly[string] `json:"url"`
		ID      readOnly[int64]  `json:"id"`
		Title   string           `json:"title"`
		Message string           `json:"message"`
		Source  readOnly[int64]  `json:"source"`
		Scope   Link             `json:"scope"`
	}

	ImageRep struct {
		URL         readOnly[string]    `json:"url"`
		ID          readOnly[int64]     `json:"id"`
		Information Link                `json:"information"`
		Image       imageValue          `json:"image"`
		Description *string             `json:"description"`
		Timestamp   readOnly[time.Time] `json:"timestamp"`

		upload *information.Upload
	}
)

// imageValue renders the URL of a stored image. On input only null or "" (clear the image) are valid
// JSON values; files come in multipart requests.
type imageValue struct {
	URL *string

	supplied bool
	clear    bool
	notFile  bool
}

func (v imageValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.URL)
}

func (v *imageValue) UnmarshalJSON(data []byte) error {
	*v = imageValue{supplied: true}
	var s *string
	if err := json.Unmarshal(data, &s); err != nil || (s != nil && *s != "") {
		v.notFile = true
		return nil
	}
	v.clear = true
	return nil
}

// bindImage accepts multipart forms (with an optional image file) as well as JSON.
func bindImage(ctx echo.Context, rep *ImageRep) error {
	if !strings.HasPrefix(mediaType(ctx), "multipart/") {
		return bindJSON(ctx, rep)
	}
	form, err := ctx.MultipartForm()
	if err != nil {
		return core.NewValidationError(errors.Errorf("Multipart form parse error - %v", err))
	}

	if vs := form.Value["information"]; len(vs) > 0 {
		rep.Information = Link{URL: vs[0], Valid: vs[0] != ""}
	}
	if vs := form.Value["description"]; len(vs) > 0 {
		desc := vs[0]
		rep.Description = &desc
	}

	if fhs := form.File["image"]; len(fhs) > 0 {
		f, err := fhs[0].Open()
		if err != nil {
			return errors.Wrap(err, "opening uploaded file")
		}
		defer func() { _ = f.Close() }()
		content, err := io.ReadAll(f)
		if err != nil {
			return errors.Wrap(err, "reading uploaded file")
		}
		rep.Image = imageValue{supplied: true}
		rep.upload = &information.Upload{Filename: fhs[0].Filename, Content: content}
	} else if vs, ok := form.Value["image"]; ok {
		rep.Image = imageValue{supplied: true, clear: len(vs) == 0 || vs[0] == "", notFile: len(vs) > 0 && vs[0] != ""}
	}
	return nil
}

func registerInformationAPI(g *echo.Group, svc *information.Service, m ...echo.MiddlewareFunc) {
	ig := g.Group("/information", m...)

	resource[information.Information, InformationRep]{
		name:   "information",
		query:  svc.QueryInformation,
		get:    svc.GetInformation,
		delete: svc.DeleteInformation,
		render: renderInformation,
		blank:  func(links) InformationRep { return InformationRep{} },
		save: func(ctx echo.Context, id int64, rep InformationRep) (information.Information, error) {
			var r linkResolver
			in := information.InformationInput{
				ScopeID: r.required("scope", scopeRoute, rep.Scope),
				Title:   rep.Title,
				Body:    rep.Body,
			}
			if err := r.err(); err != nil {
				return information.Information{}, err
			}
			if id != 0 {
				return svc.UpdateInformation(ctx.Request().Context(), id, in)
			}
			usr, err := getContextUser(ctx)
			if err != nil {
				return information.Information{}, errors.Wrap(err, "getting context user")
			}
			return svc.CreateInformation(ctx.Request().Context(), usr.ID, in)
		},
	}.register(ig, "/information")

	resource[information.Image, ImageRep]{
		name:   "image",
		query:  svc.QueryImages,
		get:    svc.GetImage,
		delete: svc.DeleteImage,
		render: func(l links, img information.Image) ImageRep {
			var u *string
			if stored := svc.ImageURL(img); stored != nil {
				abs := *stored
				if strings.HasPrefix(abs, "/") {
					abs = l.base + abs
				}
				u = &abs
			}
			return ImageRep{
				URL:         ro(l.url(imageRoute, img.ID)),
				ID:          ro(img.ID),
				Information: l.link(informationRoute, img.InformationID),
				Image:       imageValue{URL: u},
				Description: img.Description,
				Timestamp:   ro(img.Timestamp),
			}
		},
		blank: func(links) ImageRep { return ImageRep{} },
		bind:  bindImage,
		save: func(ctx echo.Context, id int64, rep ImageRep) (information.Image, error) {
			var r linkResolver
			infoID := r.required("information", informationRoute, rep.Information)
			if rep.Image.notFile {
				r.errs.Add("image", msgNotAFile)
			}
			if err := r.err(); err != nil {
				return information.Image{}, err
			}
			in := information.ImageInput{
				InformationID: infoID,
				Description:   rep.Description,
				Upload:        rep.upload,
				ClearImage:    rep.Image.clear,
			}
			if id == 0 {
				return svc.CreateImage(ctx.Request().Context(), in)
			}
			return svc.UpdateImage(ctx.Request().Context(), id, in)
		},
	}.register(ig, "/image")

	resource[information.Notice, NoticeRep]{
		name:   "notice",
		query:  svc.QueryNotices,
		get:    svc.GetNotice,
		delete: svc.DeleteNotice,
		render: renderNotice,
		blank:  func(links) NoticeRep { return NoticeRep{} },
		save: func(ctx echo.Context, id int64, rep NoticeRep) (information.Notice, error) {
			var r linkResolver
			in := information.NoticeInput{
				ScopeID: r.required("scope", scopeRoute, rep.Scope),
				Title:   rep.Title,
				Message: rep.Message,
			}
			if err := r.err(); err != nil {
				return information.Notice{}, err
			}
			if id != 0 {
				return svc.UpdateNotice(ctx.Request().Context(), id, in)
			}
			usr, err := getContextUser(ctx)
			if err != nil {
				return information.Notice{}, errors.Wrap(err, "getting context user")
			}
			return svc.CreateNotice(ctx.Request().Context(), usr.ID, in)
		},
	}.register(ig, "/notice")

	resource[information.Scope, ScopeRep]{
		name:   "scope",
		query:  svc.QueryScopes,
		get:    svc.GetScope,
		delete: svc.DeleteScope,
		render: renderScope,
		blank:  func(links) ScopeRep { return ScopeRep{IsGeneral: true} },
		save: func(ctx echo.Context, id int64, rep ScopeRep) (information.Scope, error) {
			var r linkResolver
			in := information.ScopeInput{
				Description:  rep.Description,
				IsGeneral:    rep.IsGeneral,
				IsFirstYear:  rep.IsFirstYear,
				IsFinalYear:  rep.IsFinalYear,
				FacultyID:    r.optional("faculty", facultyRoute, rep.Faculty),
				DepartmentID: r.optional("department", departmentRoute, rep.Department),
				ProgrammeID:  r.optional("programme", programmeRoute, rep.Programme),
				CourseID:     r.optional("course", courseRoute, rep.Course),
				LevelID:      r.optional("level", levelRoute, rep.Level),
			}
			if err := r.err(); err != nil {
				return information.Scope{}, err
			}
			if id == 0 {
				return svc.CreateScope(ctx.Request().Context(), in)
			}
			return svc.UpdateScope(ctx.Request().Context(), id, in)
		},
	}.register(ig, "/scope")
}

func renderScope(l links, s information.Scope) ScopeRep {
	return ScopeRep{
		URL:         ro(l.url(scopeRoute, s.ID)),
		ID:          ro(s.ID),
		Description: s.Description,
		IsGeneral:   s.IsGeneral,
		IsFirstYear: s.IsFirstYear,
		IsFinalYear: s.IsFinalYear,
		Faculty:     l.optional(facultyRoute, s.FacultyID),
		Department:  l.optional(departmentRoute, s.DepartmentID),
		Programme:   l.optional(programmeRoute, s.ProgrammeID),
		Course:      l.optional(courseRoute, s.CourseID),
		Level:       l.optional(levelRoute, s.LevelID),
	}
}

func renderInformation(l links, info information.Information) InformationRep {
	return InformationRep{
		URL:       ro(l.url(informationRoute, info.ID)),
		ID:        ro(info.ID),
		Title:     info.Title,
		Body:      info.Body,
		Source:    ro(info.SourceID),
		Scope:     l.link(scopeRoute, info.ScopeID),
		Timestamp: ro(info.Timestamp),
	}
}

func renderNotice(l links, n information.Notice) NoticeRep {
	return NoticeRep{
		URL:     ro(l.url(noticeRoute, n.ID)),
		ID:      ro(n.ID),
		Title:   n.Title,
		Message: n.Message,
		Source:  ro(n.SourceID),
		Scope:   l.link(scopeRoute, n.ScopeID),
	}
}
