package models

const (
	PersonTable  = "persona"
	FacultyTable = "docente"
	StaffTable   = "funcionario"
	StudentTable = "estudiante"
)

// PersonType 与 persona.tipo_persona 对应
type PersonType string

const (
	PersonFaculty PersonType = "docente"
	PersonStaff   PersonType = "funcionario"
	PersonStudent PersonType = "estudiante"
)

func (t PersonType) Valid() bool {
	switch t {
	case PersonFaculty, PersonStaff, PersonStudent:
		return true
	}
	return false
}

// 权限等级：数值越小权限越大
const (
	PermissionAdmin    = 1
	PermissionReadOnly = 2
)

// Person 人员主表，carnet 作为外部主键
type Person struct {
	ID         string     `gorm:"column:carnet;primaryKey;size:40" json:"id"`
	Name       string     `gorm:"column:nombre;size:200;not null" json:"name"`
	Phone      *string    `gorm:"column:telefono;size:40" json:"phone,omitempty"`
	Email      *string    `gorm:"column:correo;size:255;index" json:"email,omitempty"`
	PersonType PersonType `gorm:"column:tipo_persona;size:20;not null;index" json:"personType"`

	Faculty *FacultyProfile `gorm:"foreignKey:PersonID;references:ID;constraint:OnDelete:CASCADE" json:"faculty,omitempty"`
	Staff   *StaffProfile   `gorm:"foreignKey:PersonID;references:ID;constraint:OnDelete:CASCADE" json:"staff,omitempty"`
	Student *StudentProfile `gorm:"foreignKey:PersonID;references:ID;constraint:OnDelete:CASCADE" json:"student,omitempty"`
}

func (Person) TableName() string { return PersonTable }

// Details 返回与 PersonType 匹配的扩展资料（可能为 nil）
func (p *Person) Details() PersonDetails {
	switch p.PersonType {
	case PersonFaculty:
		if p.Faculty != nil {
			return p.Faculty
		}
	case PersonStaff:
		if p.Staff != nil {
			return p.Staff
		}
	case PersonStudent:
		if p.Student != nil {
			return p.Student
		}
	}
	return nil
}

// PersonDetails 是三种人员扩展资料的封闭联合类型
type PersonDetails interface {
	PersonType() PersonType
	setPersonID(id string)
}

type FacultyProfile struct {
	PersonID       string  `gorm:"column:carnet;primaryKey;size:40" json:"-"`
	Specialty      *string `gorm:"column:especialidad;size:200" json:"specialty,omitempty"`
	Department     *string `gorm:"column:departamento;size:200" json:"department,omitempty"`
	AcademicDegree *string `gorm:"column:grado_academico;size:120" json:"academicDegree,omitempty"`
}

func (FacultyProfile) TableName() string       { return FacultyTable }
func (*FacultyProfile) PersonType() PersonType { return PersonFaculty }
func (f *FacultyProfile) setPersonID(id string) { f.PersonID = id }

type StaffProfile struct {
	PersonID        string `gorm:"column:carnet;primaryKey;size:40" json:"-"`
	Role            string `gorm:"column:cargo;size:200" json:"role"`
	Department      string `gorm:"column:area_trabajo;size:200" json:"department"`
	PermissionLevel int    `gorm:"column:nivel_permiso;not null;default:2" json:"permissionLevel"`
	PasswordHash    string `gorm:"column:password_hash;size:100" json:"-"`
}

func (StaffProfile) TableName() string       { return StaffTable }
func (*StaffProfile) PersonType() PersonType { return PersonStaff }
func (s *StaffProfile) setPersonID(id string) { s.PersonID = id }

type StudentProfile struct {
	PersonID string  `gorm:"column:carnet;primaryKey;size:40" json:"-"`
	Major    *string `gorm:"column:carrera;size:200" json:"major,omitempty"`
	Semester *int    `gorm:"column:semestre" json:"semester,omitempty"`
	RU       *string `gorm:"column:ru;size:40" json:"ru,omitempty"`
}

func (StudentProfile) TableName() string       { return StudentTable }
func (*StudentProfile) PersonType() PersonType { return PersonStudent }
func (s *StudentProfile) setPersonID(id string) { s.PersonID = id }

// AttachDetails 把扩展资料挂到 Person 上，并同步外键
func (p *Person) AttachDetails(d PersonDetails) {
	p.Faculty, p.Staff, p.Student = nil, nil, nil
	if d == nil {
		return
	}
	d.setPersonID(p.ID)
	switch v := d.(type) {
	case *FacultyProfile:
		p.Faculty = v
	case *StaffProfile:
		p.Staff = v
	case *StudentProfile:
		p.Student = v
	}
}
