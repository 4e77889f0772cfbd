package db

import (
	"context"
	"strings"

	"Gin_postgres_redis_inventory/apperr"
	"Gin_postgres_redis_inventory/models"

	"gorm.io/gorm"
)

func validateDetails(t models.PersonType, d models.PersonDetails) error {
	if !t.Valid() {
		return apperr.New(apperr.Validation, "unknown person type %q", t)
	}
	if d == nil {
		return nil
	}
	if d.PersonType() != t {
		return apperr.New(apperr.Validation, "details of type %q do not match person type %q", d.PersonType(), t)
	}
	if s, ok := d.(*models.StaffProfile); ok {
		if s.PermissionLevel != models.PermissionAdmin && s.PermissionLevel != models.PermissionReadOnly {
			return apperr.New(apperr.Validation, "permission level must be 1 or 2")
		}
	}
	return nil
}

// CreatePerson 新建人员及其扩展资料（同一事务）
func (r *Repo) CreatePerson(ctx context.Context, p *models.Person, d models.PersonDetails) error {
	p.ID = strings.TrimSpace(p.ID)
	if p.ID == "" || strings.TrimSpace(p.Name) == "" {
		return apperr.New(apperr.Validation, "carnet and name are required")
	}
	if err := validateDetails(p.PersonType, d); err != nil {
		return err
	}
	p.Email = normalizeEmailPtr(p.Email)
	p.AttachDetails(d)

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Person{}).Where("carnet = ?", p.ID).Count(&n).Error; err != nil {
			return apperr.Store("check person", err)
		}
		if n > 0 {
			return apperr.New(apperr.Validation, "person %s already exists", p.ID)
		}
		if err := checkEmailFree(tx, p.Email, p.PersonType, p.ID); err != nil {
			return err
		}
		if err := tx.Create(p).Error; err != nil {
			return apperr.Store("insert person", err)
		}
		return nil
	})
}

func (r *Repo) GetPerson(ctx context.Context, id string) (*models.Person, error) {
	var p models.Person
	err := r.DB.WithContext(ctx).
		Preload("Faculty").Preload("Staff").Preload("Student").
		First(&p, "carnet = ?", id).Error
	if err != nil {
		return nil, notFoundOr(err, apperr.NotFound, "get person", "person %s not found", id)
	}
	return &p, nil
}

type PersonQuery struct {
	Q    string
	Type models.PersonType
}

func (r *Repo) ListPersons(ctx context.Context, q PersonQuery) ([]models.Person, error) {
	tx := r.DB.WithContext(ctx).Model(&models.Person{}).
		Preload("Faculty").Preload("Staff").Preload("Student")
	if q.Type != "" {
		tx = tx.Where("tipo_persona = ?", q.Type)
	}
	if s := strings.TrimSpace(q.Q); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		tx = tx.Where("LOWER(nombre) LIKE ? OR LOWER(carnet) LIKE ? OR LOWER(correo) LIKE ?", like, like, like)
	}
	var ps []models.Person
	if err := tx.Order("nombre ASC").Find(&ps).Error; err != nil {
		return nil, apperr.Store("list persons", err)
	}
	return ps, nil
}

// 以下 patch 中 nil 字段保持不变
type FacultyPatch struct {
	Specialty      *string
	Department     *string
	AcademicDegree *string
}

type StaffPatch struct {
	Role            *string
	Department      *string
	PermissionLevel *int
}

type StudentPatch struct {
	Major    *string
	Semester *int
	RU       *string
}

// PersonPatch 只能带与人员类型一致的那一种扩展资料
type PersonPatch struct {
	Name    *string
	Phone   *string
	Email   *string
	Faculty *FacultyPatch
	Staff   *StaffPatch
	Student *StudentPatch
}

// detailUpdates 把 patch 转成待更新列，同时返回资料行不存在时要插入的记录
func (patch PersonPatch) detailUpdates(t models.PersonType) (map[string]any, models.PersonDetails, error) {
	sent := map[models.PersonType]bool{
		models.PersonFaculty: patch.Faculty != nil,
		models.PersonStaff:   patch.Staff != nil,
		models.PersonStudent: patch.Student != nil,
	}
	for pt, ok := range sent {
		if ok && pt != t {
			return nil, nil, apperr.New(apperr.Validation, "details of type %q do not match person type %q", pt, t)
		}
	}

	cols := map[string]any{}
	set := func(col string, v any, present bool) {
		if present {
			cols[col] = v
		}
	}
	switch t {
	case models.PersonFaculty:
		f := patch.Faculty
		if f == nil {
			return nil, nil, nil
		}
		set("especialidad", f.Specialty, f.Specialty != nil)
		set("departamento", f.Department, f.Department != nil)
		set("grado_academico", f.AcademicDegree, f.AcademicDegree != nil)
		return cols, &models.FacultyProfile{Specialty: f.Specialty, Department: f.Department, AcademicDegree: f.AcademicDegree}, nil
	case models.PersonStaff:
		s := patch.Staff
		if s == nil {
			return nil, nil, nil
		}
		row := &models.StaffProfile{PermissionLevel: models.PermissionReadOnly}
		if s.Role != nil {
			cols["cargo"], row.Role = *s.Role, *s.Role
		}
		if s.Department != nil {
			cols["area_trabajo"], row.Department = *s.Department, *s.Department
		}
		if s.PermissionLevel != nil {
			lvl := *s.PermissionLevel
			if lvl != models.PermissionAdmin && lvl != models.PermissionReadOnly {
				return nil, nil, apperr.New(apperr.Validation, "permission level must be 1 or 2")
			}
			cols["nivel_permiso"], row.PermissionLevel = lvl, lvl
		}
		return cols, row, nil
	case models.PersonStudent:
		st := patch.Student
		if st == nil {
			return nil, nil, nil
		}
		set("carrera", st.Major, st.Major != nil)
		set("semestre", st.Semester, st.Semester != nil)
		set("ru", st.RU, st.RU != nil)
		return cols, &models.StudentProfile{Major: st.Major, Semester: st.Semester, RU: st.RU}, nil
	}
	return nil, nil, nil
}

// UpdatePerson 不允许修改 tipo_persona；扩展资料只改传入的列，password_hash 只走 SetStaffPassword
func (r *Repo) UpdatePerson(ctx context.Context, id string, patch PersonPatch) (*models.Person, error) {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Person
		if err := tx.First(&p, "carnet = ?", id).Error; err != nil {
			return notFoundOr(err, apperr.NotFound, "get person", "person %s not found", id)
		}
		cols, row, err := patch.detailUpdates(p.PersonType)
		if err != nil {
			return err
		}

		updates := map[string]any{}
		if patch.Name != nil {
			if strings.TrimSpace(*patch.Name) == "" {
				return apperr.New(apperr.Validation, "name cannot be empty")
			}
			updates["nombre"] = *patch.Name
		}
		if patch.Phone != nil {
			updates["telefono"] = *patch.Phone
		}
		if patch.Email != nil {
			email := normalizeEmailPtr(patch.Email)
			if err := checkEmailFree(tx, email, p.PersonType, id); err != nil {
				return err
			}
			updates["correo"] = email
		}
		if len(updates) > 0 {
			if err := tx.Model(&models.Person{}).Where("carnet = ?", id).Updates(updates).Error; err != nil {
				return apperr.Store("update person", err)
			}
		}

		if row == nil {
			return nil
		}
		var n int64
		if err := tx.Model(row).Where("carnet = ?", id).Count(&n).Error; err != nil {
			return apperr.Store("check person details", err)
		}
		if n == 0 {
			// 之前没有扩展资料，按传入字段新建
			p.AttachDetails(row)
			if err := tx.Create(row).Error; err != nil {
				return apperr.Store("insert person details", err)
			}
			return nil
		}
		if len(cols) > 0 {
			if err := tx.Model(row).Where("carnet = ?", id).Updates(cols).Error; err != nil {
				return apperr.Store("update person details", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetPerson(ctx, id)
}

// DeletePerson 有借用记录时拒绝删除（restrict）
func (r *Repo) DeletePerson(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Person
		if err := tx.First(&p, "carnet = ?", id).Error; err != nil {
			return notFoundOr(err, apperr.NotFound, "get person", "person %s not found", id)
		}
		var n int64
		if err := tx.Model(&models.Loan{}).Where("carnet_persona = ?", id).Count(&n).Error; err != nil {
			return apperr.Store("count loans", err)
		}
		if n > 0 {
			return apperr.New(apperr.ReferenceConflict, "person %s has %d loan records", id, n)
		}
		// 显式删除扩展资料（不依赖外键级联）
		for _, m := range []any{&models.FacultyProfile{}, &models.StaffProfile{}, &models.StudentProfile{}} {
			if err := tx.Where("carnet = ?", id).Delete(m).Error; err != nil {
				return apperr.Store("delete person details", err)
			}
		}
		if err := tx.Where("carnet = ?", id).Delete(&models.Person{}).Error; err != nil {
			return apperr.Store("delete person", err)
		}
		return nil
	})
}

// normalizeEmailPtr 去空格转小写；空串视为未填
func normalizeEmailPtr(email *string) *string {
	if email == nil {
		return nil
	}
	e := strings.ToLower(strings.TrimSpace(*email))
	if e == "" {
		return nil
	}
	return &e
}

// checkEmailFree 同一类型的人员邮箱不能重复（不区分大小写），登录按邮箱查人
func checkEmailFree(tx *gorm.DB, email *string, t models.PersonType, selfID string) error {
	if email == nil {
		return nil
	}
	var n int64
	if err := tx.Model(&models.Person{}).
		Where("LOWER(correo) = ? AND tipo_persona = ? AND carnet <> ?", *email, t, selfID).
		Count(&n).Error; err != nil {
		return apperr.Store("check email", err)
	}
	if n > 0 {
		return apperr.New(apperr.Validation, "email %s is already used by another %s", *email, t)
	}
	return nil
}

func (r *Repo) SetStaffPassword(ctx context.Context, personID, hash string) error {
	res := r.DB.WithContext(ctx).Model(&models.StaffProfile{}).
		Where("carnet = ?", personID).
		Update("password_hash", hash)
	if res.Error != nil {
		return apperr.Store("set password", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "staff member %s not found", personID)
	}
	return nil
}

// FindPersonByEmail 按邮箱（不区分大小写）和类型查人员
func (r *Repo) FindPersonByEmail(ctx context.Context, email string, t models.PersonType) (*models.Person, error) {
	var p models.Person
	err := r.DB.WithContext(ctx).
		Where("LOWER(correo) = ? AND tipo_persona = ?", strings.ToLower(strings.TrimSpace(email)), t).
		First(&p).Error
	if err != nil {
		return nil, notFoundOr(err, apperr.NotFound, "find person by email", "no %s with that email", t)
	}
	return &p, nil
}

func (r *Repo) FindStaffProfile(ctx context.Context, personID string) (*models.StaffProfile, error) {
	var s models.StaffProfile
	if err := r.DB.WithContext(ctx).First(&s, "carnet = ?", personID).Error; err != nil {
		return nil, notFoundOr(err, apperr.NotFound, "find staff profile", "staff profile %s not found", personID)
	}
	return &s, nil
}
