package controllers

import (
	"net/http"

	"Gin_postgres_redis_inventory/app"
	"Gin_postgres_redis_inventory/apperr"
	"Gin_postgres_redis_inventory/auth"
	"Gin_postgres_redis_inventory/db"
	"Gin_postgres_redis_inventory/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PersonController struct{ *Srv }

func NewPersonController(s *Srv) *PersonController { return &PersonController{Srv: s} }

type staffReq struct {
	Role            string `json:"role"`
	Department      string `json:"department"`
	PermissionLevel int    `json:"permissionLevel"`
	Password        string `json:"password"`
}

// 扩展资料按 personType 取对应字段，其余忽略
type detailsReq struct {
	Faculty *models.FacultyProfile `json:"faculty"`
	Staff   *staffReq              `json:"staff"`
	Student *models.StudentProfile `json:"student"`
}

type createPersonReq struct {
	ID         string            `json:"id" binding:"required"`
	Name       string            `json:"name" binding:"required"`
	Phone      *string           `json:"phone"`
	Email      *string           `json:"email"`
	PersonType models.PersonType `json:"personType" binding:"required"`
	detailsReq
}

// 更新时未传的字段保持原值
type staffPatchReq struct {
	Role            *string `json:"role"`
	Department      *string `json:"department"`
	PermissionLevel *int    `json:"permissionLevel"`
	Password        *string `json:"password"`
}

type facultyPatchReq struct {
	Specialty      *string `json:"specialty"`
	Department     *string `json:"department"`
	AcademicDegree *string `json:"academicDegree"`
}

type studentPatchReq struct {
	Major    *string `json:"major"`
	Semester *int    `json:"semester"`
	RU       *string `json:"ru"`
}

type updatePersonReq struct {
	Name    *string          `json:"name"`
	Phone   *string          `json:"phone"`
	Email   *string          `json:"email"`
	Faculty *facultyPatchReq `json:"faculty"`
	Staff   *staffPatchReq   `json:"staff"`
	Student *studentPatchReq `json:"student"`
}

func (r updatePersonReq) patch() db.PersonPatch {
	p := db.PersonPatch{Name: r.Name, Phone: r.Phone, Email: r.Email}
	if f := r.Faculty; f != nil {
		p.Faculty = &db.FacultyPatch{Specialty: f.Specialty, Department: f.Department, AcademicDegree: f.AcademicDegree}
	}
	if s := r.Staff; s != nil {
		p.Staff = &db.StaffPatch{Role: s.Role, Department: s.Department, PermissionLevel: s.PermissionLevel}
	}
	if st := r.Student; st != nil {
		p.Student = &db.StudentPatch{Major: st.Major, Semester: st.Semester, RU: st.RU}
	}
	return p
}

type passwordReq struct {
	Password string `json:"password" binding:"required"`
}

// details 新建时转成 models.PersonDetails；staff 未填等级时默认只读，密码单独返回需先哈希
func (d detailsReq) details(t models.PersonType) (models.PersonDetails, string) {
	switch t {
	case models.PersonFaculty:
		if d.Faculty != nil {
			return d.Faculty, ""
		}
	case models.PersonStudent:
		if d.Student != nil {
			return d.Student, ""
		}
	case models.PersonStaff:
		if d.Staff != nil {
			level := d.Staff.PermissionLevel
			if level == 0 {
				level = models.PermissionReadOnly
			}
			return &models.StaffProfile{
				Role:            d.Staff.Role,
				Department:      d.Staff.Department,
				PermissionLevel: level,
			}, d.Staff.Password
		}
	}
	return nil, ""
}

// GET /api/persons?q=&type=
func (pc *PersonController) ListPersons(c *gin.Context) {
	ps, err := pc.Repo.ListPersons(c.Request.Context(), db.PersonQuery{
		Q:    c.Query("q"),
		Type: models.PersonType(c.Query("type")),
	})
	if err != nil {
		pc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": ps})
}

func (pc *PersonController) GetPerson(c *gin.Context) {
	p, err := pc.Repo.GetPerson(c.Request.Context(), c.Param("id"))
	if err != nil {
		pc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// POST /api/persons
func (pc *PersonController) CreatePerson(c *gin.Context) {
	var req createPersonReq
	if !pc.bind(c, &req) {
		return
	}
	d, password := req.details(req.PersonType)
	if s, ok := d.(*models.StaffProfile); ok && password != "" {
		hash, err := auth.HashPassword(password)
		if err != nil {
			pc.fail(c, err)
			return
		}
		s.PasswordHash = hash
	}
	p := &models.Person{
		ID:         req.ID,
		Name:       req.Name,
		Phone:      req.Phone,
		Email:      req.Email,
		PersonType: req.PersonType,
	}
	if err := pc.Repo.CreatePerson(c.Request.Context(), p, d); err != nil {
		pc.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// PUT /api/persons/:id
func (pc *PersonController) UpdatePerson(c *gin.Context) {
	id := c.Param("id")
	var req updatePersonReq
	if !pc.bind(c, &req) {
		return
	}
	if req.Staff != nil && req.Staff.Password != nil {
		pc.fail(c, apperr.New(apperr.Validation, "use the password endpoint to change passwords"))
		return
	}
	p, err := pc.Repo.UpdatePerson(c.Request.Context(), id, req.patch())
	if err != nil {
		pc.fail(c, err)
		return
	}
	// 员工资料变化（角色/权限/邮箱）后旧会话作废
	if p.PersonType == models.PersonStaff && (req.Staff != nil || req.Email != nil) {
		pc.revoke(c, id)
	}
	c.JSON(http.StatusOK, p)
}

// DELETE /api/persons/:id
func (pc *PersonController) DeletePerson(c *gin.Context) {
	id := c.Param("id")
	if err := pc.Repo.DeletePerson(c.Request.Context(), id); err != nil {
		pc.fail(c, err)
		return
	}
	pc.revoke(c, id)
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// PUT /api/persons/:id/password
func (pc *PersonController) SetPassword(c *gin.Context) {
	id := c.Param("id")
	var req passwordReq
	if !pc.bind(c, &req) {
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		pc.fail(c, err)
		return
	}
	if err := pc.Repo.SetStaffPassword(c.Request.Context(), id, hash); err != nil {
		pc.fail(c, err)
		return
	}
	pc.revoke(c, id)
	c.JSON(http.StatusOK, app.H{"ok": true})
}

func (pc *PersonController) revoke(c *gin.Context, personID string) {
	if err := pc.Sessions.RevokeAllForPerson(c.Request.Context(), personID); err != nil {
		pc.Log.Warn("revoke sessions", zap.String("person", personID), zap.Error(err))
	}
}
