package echoapi

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/campus/core/academics"
)

type (
	FacultyRep struct {
		URL         readOnly[string]    `json:"url"`
		ID          readOnly[int64]     `json:"id"`
		Name        string              `json:"name"`
		Code        *int64              `json:"code"`
		Description *string             `json:"description"`
		Dean        Link                `json:"dean"`
		IsActive    bool                `json:"is_active"`
		Timestamp   readOnly[time.Time] `json:"timestamp"`
	}

	DepartmentRep struct {
		URL         readOnly[string]    `json:"url"`
		ID          readOnly[int64]     `json:"id"`
		Faculty     Link                `json:"faculty"`
		Name        string              `json:"name"`
		Code        *string             `json:"code"`
		Description *string             `json:"description"`
		Head        Link                `json:"head"`
		IsActive    bool                `json:"is_active"`
		Timestamp   readOnly[time.Time] `json:"timestamp"`
	}

	ProgrammeRep struct {
		URL         readOnly[string]    `json:"url"`
		ID          readOnly[int64]     `json:"id"`
		Department  Link                `json:"department"`
		Name        string              `json:"name"`
		Code        *string             `json:"code"`
		MaxLevel    Link                `json:"max_level"`
		Description *string             `json:"description"`
		IsActive    bool                `json:"is_active"`
		Timestamp   readOnly[time.Time] `json:"timestamp"`
	}

	CourseRep struct {
		URL         readOnly[string]    `json:"url"`
		ID          readOnly[int64]     `json:"id"`
		Programme   Link                `json:"programme"`
		Name        string              `json:"name"`
		Code        *string             `json:"code"`
		Description *string             `json:"description"`
		Coordinator Link                `json:"coordinator"`
		IsActive    bool                `json:"is_active"`
		Timestamp   readOnly[time.Time] `json:"timestamp"`
	}

	LevelRep struct {
		URL  readOnly[string] `json:"url"`
		ID   readOnly[int64]  `json:"id"`
		Code *int64           `json:"code"`
	}
)

func registerAcademicsAPI(g *echo.Group, svc *academics.Service, m ...echo.MiddlewareFunc) {
	ag := g.Group("/academics", m...)

	resource[academics.Faculty, FacultyRep]{
		name:   "faculty",
		query:  svc.QueryFaculties,
		get:    svc.GetFaculty,
		delete: svc.DeleteFaculty,
		render: renderFaculty,
		blank:  func(links) FacultyRep { return FacultyRep{IsActive: true} },
		save: func(ctx echo.Context, id int64, rep FacultyRep) (academics.Faculty, error) {
			var r linkResolver
			in := academics.FacultyInput{
				Name:        rep.Name,
				Code:        rep.Code,
				Description: rep.Description,
				DeanID:      r.optional("dean", userRoute, rep.Dean),
				IsActive:    rep.IsActive,
			}
			if err := r.err(); err != nil {
				return academics.Faculty{}, err
			}
			if id == 0 {
				return svc.CreateFaculty(ctx.Request().Context(), in)
			}
			return svc.UpdateFaculty(ctx.Request().Context(), id, in)
		},
	}.register(ag, "/faculty")

	resource[academics.Department, DepartmentRep]{
		name:   "department",
		query:  svc.QueryDepartments,
		get:    svc.GetDepartment,
		delete: svc.DeleteDepartment,
		render: renderDepartment,
		blank:  func(links) DepartmentRep { return DepartmentRep{IsActive: true} },
		save: func(ctx echo.Context, id int64, rep DepartmentRep) (academics.Department, error) {
			var r linkResolver
			in := academics.DepartmentInput{
				FacultyID:   r.required("faculty", facultyRoute, rep.Faculty),
				Name:        rep.Name,
				Code:        rep.Code,
				Description: rep.Description,
				HeadID:      r.optional("head", userRoute, rep.Head),
				IsActive:    rep.IsActive,
			}
			if err := r.err(); err != nil {
				return academics.Department{}, err
			}
			if id == 0 {
				return svc.CreateDepartment(ctx.Request().Context(), in)
			}
			return svc.UpdateDepartment(ctx.Request().Context(), id, in)
		},
	}.register(ag, "/department")

	resource[academics.Programme, ProgrammeRep]{
		name:   "programme",
		query:  svc.QueryProgrammes,
		get:    svc.GetProgramme,
		delete: svc.DeleteProgramme,
		render: renderProgramme,
		blank:  func(links) ProgrammeRep { return ProgrammeRep{IsActive: true} },
		save: func(ctx echo.Context, id int64, rep ProgrammeRep) (academics.Programme, error) {
			var r linkResolver
			in := academics.ProgrammeInput{
				DepartmentID: r.required("department", departmentRoute, rep.Department),
				Name:         rep.Name,
				Code:         rep.Code,
				MaxLevelID:   r.required("max_level", levelRoute, rep.MaxLevel),
				Description:  rep.Description,
				IsActive:     rep.IsActive,
			}
			if err := r.err(); err != nil {
				return academics.Programme{}, err
			}
			if id == 0 {
				return svc.CreateProgramme(ctx.Request().Context(), in)
			}
			return svc.UpdateProgramme(ctx.Request().Context(), id, in)
		},
	}.register(ag, "/programme")

	resource[academics.Course, CourseRep]{
		name:   "course",
		query:  svc.QueryCourses,
		get:    svc.GetCourse,
		delete: svc.DeleteCourse,
		render: renderCourse,
		blank:  func(links) CourseRep { return CourseRep{IsActive: true} },
		save: func(ctx echo.Context, id int64, rep CourseRep) (academics.Course, error) {
			var r linkResolver
			in := academics.CourseInput{
				ProgrammeID:   r.required("programme", programmeRoute, rep.Programme),
				Name:          rep.Name,
				Code:          rep.Code,
				Description:   rep.Description,
				CoordinatorID: r.optional("coordinator", userRoute, rep.Coordinator),
				IsActive:      rep.IsActive,
			}
			if err := r.err(); err != nil {
				return academics.Course{}, err
			}
			if id == 0 {
				return svc.CreateCourse(ctx.Request().Context(), in)
			}
			return svc.UpdateCourse(ctx.Request().Context(), id, in)
		},
	}.register(ag, "/course")

	resource[academics.Level, LevelRep]{
		name:   "level",
		query:  svc.QueryLevels,
		get:    svc.GetLevel,
		delete: svc.DeleteLevel,
		render: renderLevel,
		blank:  func(links) LevelRep { return LevelRep{} },
		save: func(ctx echo.Context, id int64, rep LevelRep) (academics.Level, error) {
			in := academics.LevelInput{Code: rep.Code}
			if id == 0 {
				return svc.CreateLevel(ctx.Request().Context(), in)
			}
			return svc.UpdateLevel(ctx.Request().Context(), id, in)
		},
	}.register(ag, "/level")
}

func renderFaculty(l links, f academics.Faculty) FacultyRep {
	return FacultyRep{
		URL:         ro(l.url(facultyRoute, f.ID)),
		ID:          ro(f.ID),
		Name:        f.Name,
		Code:        f.Code,
		Description: f.Description,
		Dean:        l.optional(userRoute, f.DeanID),
		IsActive:    f.IsActive,
		Timestamp:   ro(f.Timestamp),
	}
}

func renderDepartment(l links, d academics.Department) DepartmentRep {
	return DepartmentRep{
		URL:         ro(l.url(departmentRoute, d.ID)),
		ID:          ro(d.ID),
		Faculty:     l.link(facultyRoute, d.FacultyID),
		Name:        d.Name,
		Code:        d.Code,
		Description: d.Description,
		Head:        l.optional(userRoute, d.HeadID),
		IsActive:    d.IsActive,
		Timestamp:   ro(d.Timestamp),
	}
}

func renderProgramme(l links, p academics.Programme) ProgrammeRep {
	return ProgrammeRep{
		URL:         ro(l.url(programmeRoute, p.ID)),
		ID:          ro(p.ID),
		Department:  l.link(departmentRoute, p.DepartmentID),
		Name:        p.Name,
		Code:        p.Code,
		MaxLevel:    l.link(levelRoute, p.MaxLevelID),
		Description: p.Description,
		IsActive:    p.IsActive,
		Timestamp:   ro(p.Timestamp),
	}
}

func renderCourse(l links, c academics.Course) CourseRep {
	return CourseRep{
		URL:         ro(l.url(courseRoute, c.ID)),
		ID:          ro(c.ID),
		Programme:   l.link(programmeRoute, c.ProgrammeID),
		Name:        c.Name,
		Code:        c.Code,
		Description: c.Description,
		Coordinator: l.optional(userRoute, c.CoordinatorID),
		IsActive:    c.IsActive,
		Timestamp:   ro(c.Timestamp),
	}
}

func renderLevel(l links, lv academics.Level) LevelRep {
	code := lv.Code
	return LevelRep{URL: ro(l.url(levelRoute, lv.ID)), ID: ro(lv.ID), Code: &code}
}
