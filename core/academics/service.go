package academics

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/campus/core"
)

var nowFunc = func() time.Time { return time.Now().UTC() } // mockable

type Repository interface {
	QueryFaculties(ctx context.Context, orderBy string, exec ...core.DBExecutor) ([]Faculty, error)
	GetFaculty(ctx context.Context, id int64, exec ...core.DBExecutor) (Faculty, error)
	CreateFaculty(ctx context.Context, f Faculty, exec ...core.DBExecutor) (Faculty, error)
	UpdateFaculty(ctx context.Context, f Faculty, exec ...core.DBExecutor) (Faculty, error)
	DeleteFaculty(ctx context.Context, id int64, exec ...core.DBExecutor) error

	QueryDepartments(ctx context.Context, orderBy string, exec ...core.DBExecutor) ([]Department, error)
	GetDepartment(ctx context.Context, id int64, exec ...core.DBExecutor) (Department, error)
	CreateDepartment(ctx context.Context, d Department, exec ...core.DBExecutor) (Department, error)
	UpdateDepartment(ctx context.Context, d Department, exec ...core.DBExecutor) (Department, error)
	DeleteDepartment(ctx context.Context, id int64, exec ...core.DBExecutor) error

	QueryProgrammes(ctx context.Context, orderBy string, exec ...core.DBExecutor) ([]Programme, error)
	GetProgramme(ctx context.Context, id int64, exec ...core.DBExecutor) (Programme, error)
	CreateProgramme(ctx context.Context, p Programme, exec ...core.DBExecutor) (Programme, error)
	UpdateProgramme(ctx context.Context, p Programme, exec ...core.DBExecutor) (Programme, error)
	DeleteProgramme(ctx context.Context, id int64, exec ...core.DBExecutor) error

	QueryCourses(ctx context.Context, orderBy string, exec ...core.DBExecutor) ([]Course, error)
	GetCourse(ctx context.Context, id int64, exec ...core.DBExecutor) (Course, error)
	CreateCourse(ctx context.Context, c Course, exec ...core.DBExecutor) (Course, error)
	UpdateCourse(ctx context.Context, c Course, exec ...core.DBExecutor) (Course, error)
	DeleteCourse(ctx context.Context, id int64, exec ...core.DBExecutor) error

	QueryLevels(ctx context.Context, orderBy string, exec ...core.DBExecutor) ([]Level, error)
	GetLevel(ctx context.Context, id int64, exec ...core.DBExecutor) (Level, error)
	CreateLevel(ctx context.Context, l Level, exec ...core.DBExecutor) (Level, error)
	UpdateLevel(ctx context.Context, l Level, exec ...core.DBExecutor) (Level, error)
	DeleteLevel(ctx context.Context, id int64, exec ...core.DBExecutor) error
}

// Service manages the academic structure: faculties, departments, programmes, courses and levels.
type Service struct {
	db       core.DB
	repo     Repository
	validate *validator.Validate
}

func NewService(db core.DB, repo Repository, validate *validator.Validate) *Service {
	return &Service{db: db, repo: repo, validate: validate}
}

// Faculty

func (svc *Service) QueryFaculties(ctx context.Context, orderings []core.DBOrdering) ([]Faculty, error) {
	orderBy, err := core.OrderBy(orderings, FacultyOrderings, "id ASC")
	if err != nil {
		return nil, err
	}
	return svc.repo.QueryFaculties(ctx, orderBy)
}

func (svc *Service) GetFaculty(ctx context.Context, id int64) (Faculty, error) {
	return svc.repo.GetFaculty(ctx, id)
}

func (svc *Service) CreateFaculty(ctx context.Context, in FacultyInput) (f Faculty, err error) {
	in.Name = core.CleanString(in.Name)
	if err = svc.validate.Struct(in); err != nil {
		return Faculty{}, err
	}
	f = Faculty{Timestamp: nowFunc()}
	in.apply(&f)
	err = core.WithTx(ctx, svc.db, func(exec core.DBExecutor) error {
		f, err = svc.repo.CreateFaculty(ctx, f, exec)
		return err
	})
	return f, err
}

func (svc *Service) UpdateFaculty(ctx context.Context, id int64, in FacultyInput) (f Faculty, err error) {
	in.Name = core.CleanString(in.Name)
	if err = svc.validate.Struct(in); err != nil {
		return Faculty{}, err
	}
	err = core.WithTx(ctx, svc.db, func(exec core.DBExecutor) error {
		if f, err = svc.repo.GetFaculty(ctx, id, exec); err != nil {
			return err
		}
		in.apply(&f)
		f, err = svc.repo.UpdateFaculty(ctx, f, exec)
		return err
	})
	return f, err
}

func (svc *Service) DeleteFaculty(ctx context.Context, id int64) error {
	return core.WithTx(ctx, svc.db, func(exec core.DBExecutor) error {
		return svc.repo.DeleteFaculty(ctx, id, exec)
	})
}

func (in FacultyInput) apply(f *Faculty) {
	f.Name = in.Name
	f.Code = in.Code
	f.Description = in.Description
	f.DeanID = in.DeanID
	f.IsActive = in.IsActive
}

// Department

func (svc *Service) QueryDepartments(ctx context.Context, orderings []core.DBOrdering) ([]Department, error) {
	orderBy, err := core.OrderBy(orderings, DepartmentOrderings, "id ASC")
	if err != nil {
		return nil, err
	}
	return svc.repo.QueryDepartments(ctx, orderBy)
}

func (svc *Service) GetDepartment(ctx context.Context, id int64) (Department, error) {
	return svc.repo.GetDepartment(ctx, id)
}

func (svc *Service) CreateDepartment(ctx context.Context, in DepartmentInput) (d Department, err error) {
	in.Name = core.CleanString(in.Name)
	if err = svc.validate.Struct(in); err != nil {
		return Department{}, err
	}
	d = Department{Timestamp: nowFunc()}
	in.apply(&d)
	err = core.WithTx(ctx, svc.db, func(exec core.DBExecutor) error {
		d, err = svc.repo.CreateDepartment(ctx, d, exec)
		return err
	})
	return d, err
}

func (svc *Service) UpdateDepartment(ctx context.Context, id int64, in DepartmentInput) (d Department, err error) {
	in.Name = core.CleanString(in.Name)
	if err = svc.validate.Struct(in); err != nil {
		return Department{}, err
	}
	err = core.WithTx(ctx, svc.db, func(exec core.DBExecutor) error {
		if d, err = svc.repo.GetDepartment(ctx, id, exec); err != nil {
			return err
		}
		in.apply(&d)
		d, err = svc.repo.UpdateDepartment(ctx, d, exec)
		return err
	})
	return d, err
}

func (svc *Service) DeleteDepartment(ctx context.Context, id int64) error {
	return core.WithTx(ctx, svc.db, func(exec core.DBExecutor) error {
		return svc.repo.DeleteDepartment(ctx, id, exec)
	})
}

func (in DepartmentInput) apply(d *Department) {
	d.FacultyID = in.FacultyID
	d.Name = in.Name
	d.Code = in.Code
	d.Description = in.Description
	d.HeadID = in.HeadID
	d.IsActive = in.IsActive
}

// Programme

func (svc *Service) QueryProgrammes(ctx context.Context, orderings []core.DBOrdering) ([]Programme, error) {
	orderBy, err := core.OrderBy(orderings, ProgrammeOrderings, "id ASC")
	if err != nil {
		return nil, err
	}
	return svc.repo.QueryProgrammes(ctx, orderBy)
}

func (svc *Service) GetProgramme(ctx context.Context, id int64) (Programme, error) {
	return svc.repo.GetProgramme(ctx, id)
}

func (svc *Service) CreateProgramme(ctx context.Context, in ProgrammeInput) (p Programme, err error) {
	in.Name = core.CleanString(in.Name)
	if err = svc.validate.Struct(in); err != nil {
		return Programme{}, err
	}
	p = Programme{Timestamp: nowFunc()}
	in.apply(&p)
	err = core.WithTx(ctx, svc.db, func(exec core.DBExecutor) error {
		p, err = svc.repo.CreateProgramme(ctx, p, exec)
		return err
	})
	return p, err
}

func (svc *Service) UpdateProgramme(ctx context.Context, id int64, in ProgrammeInput) (p Programme, err error) {
	in.Name = core.CleanString(in.Name)
	if err = svc.validate.Struct(in); err != nil {
		return Programme{}, err
	}
	err = core.WithTx(ctx, svc.db, func(exec core.DBExecutor) error {
		if p, err = svc.repo.GetProgramme(ctx, id, exec); err != nil {
			return err
		}
		in.apply(&p)
		p, err = svc.repo.UpdateProgramme(ctx, p, exec)
		return err
	})
	return p, err
}

func (svc *Service) DeleteProgramme(ctx context.Context, id int64) error {
	return core.WithTx(ctx, svc.db, func(exec core.DBExecutor) error {
		return svc.repo.DeleteProgramme(ctx, id, exec)
	})
}

func (in ProgrammeInput) apply(p *Programme) {
	p.DepartmentID = in.DepartmentID
	p.Name = in.Name
	p.Code = in.Code
	p.MaxLevelID = in.MaxLevelID
	p.Description = in.Description
	p.IsActive = in.IsActive
}

// Course

func (svc *Service) QueryCourses(ctx context.Context, orderings []core.DBOrdering) ([]Course, error) {
	orderBy, err := core.OrderBy(orderings, CourseOrderings, "id ASC")
	if err != nil {
		return nil, err
	}
	return svc.repo.QueryCourses(ctx, orderBy)
}

func (svc *Service) GetCourse(ctx context.Context, id int64) (Course, error) {
	return svc.repo.GetCourse(ctx, id)
}

func (svc *Service) CreateCourse(ctx context.Context, in CourseInput) (c Course, err error) {
	in.Name = core.CleanString(in.Name)
	if err = svc.validate.Struct(in); err != nil {
		return Course{}, err
	}
	c = Course{Timestamp: nowFunc()}
	in.apply(&c)
	err = core.WithTx(ctx, svc.db, func(exec core.DBExecutor) error {
		c, err = svc.repo.CreateCourse(ctx, c, exec)
		return err
	})
	return c, err
}

func (svc *Service) UpdateCourse(ctx context.Context, id int64, in CourseInput) (c Course, err error) {
	in.Name = core.CleanString(in.Name)
	if err = svc.validate.Struct(in); err != nil {
		return Course{}, err
	}
	err = core.WithTx(ctx, svc.db, func(exec core.DBExecutor) error {
		if c, err = svc.repo.GetCourse(ctx, id, exec); err != nil {
			return err
		}
		in.apply(&c)
		c, err = svc.repo.UpdateCourse(ctx, c, exec)
		return err
	})
	return c, err
}

func (svc *Service) DeleteCourse(ctx context.Context, id int64) error {
	return core.WithTx(ctx, svc.db, func(exec core.DBExecutor) error {
		return svc.repo.DeleteCourse(ctx, id, exec)
	})
}

func (in CourseInput) apply(c *Course) {
	c.ProgrammeID = in.ProgrammeID
	c.Name = in.Name
	c.Code = in.Code
	c.Description = in.Description
	c.CoordinatorID = in.CoordinatorID
	c.IsActive = in.IsActive
}

// Level

func (svc *Service) QueryLevels(ctx context.Context, orderings []core.DBOrdering) ([]Level, error) {
	orderBy, err := core.OrderBy(orderings, LevelOrderings, "id ASC")
	if err != nil {
		return nil, err
	}
	return svc.repo.QueryLevels(ctx, orderBy)
}

func (svc *Service) GetLevel(ctx context.Context, id int64) (Level, error) {
	return svc.repo.GetLevel(ctx, id)
}

func (svc *Service) CreateLevel(ctx context.Context, in LevelInput) (l Level, err error) {
	if err = svc.validate.Struct(in); err != nil {
		return Level{}, err
	}
	l = Level{Code: *in.Code}
	err = core.WithTx(ctx, svc.db, func(exec core.DBExecutor) error {
		l, err = svc.repo.CreateLevel(ctx, l, exec)
		return err
	})
	return l, err
}

func (svc *Service) UpdateLevel(ctx context.Context, id int64, in LevelInput) (l Level, err error) {
	if err = svc.validate.Struct(in); err != nil {
		return Level{}, err
	}
	err = core.WithTx(ctx, svc.db, func(exec core.DBExecutor) error {
		if l, err = svc.repo.GetLevel(ctx, id, exec); err != nil {
			return err
		}
		l.Code = *in.Code
		l, err = svc.repo.UpdateLevel(ctx, l, exec)
		return err
	})
	return l, err
}

func (svc *Service) DeleteLevel(ctx context.Context, id int64) error {
	return core.WithTx(ctx, svc.db, func(exec core.DBExecutor) error {
		return svc.repo.DeleteLevel(ctx, id, exec)
	})
}
