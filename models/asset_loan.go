// models/asset_loan.go
package models

import "time"

const (
	LocationTable = "ubicacion"
	AssetTable    = "activo"
	LoanTable     = "prestamo"
	MovementTable = "movimiento"
)

type Category string

const (
	CategoryFurniture Category = "mueble"
	CategoryAudio     Category = "audio"
	CategoryComputing Category = "computacion"
	CategoryTool      Category = "herramienta"
	CategoryOther     Category = "otro"
)

// Categories 按展示顺序排列
var Categories = []Category{CategoryFurniture, CategoryAudio, CategoryComputing, CategoryTool, CategoryOther}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

type Condition string

const (
	ConditionNew         Condition = "nuevo"
	ConditionUsed        Condition = "usado"
	ConditionDamaged     Condition = "dañado"
	ConditionUnderRepair Condition = "en_reparacion"
)

func (c Condition) Valid() bool {
	switch c {
	case ConditionNew, ConditionUsed, ConditionDamaged, ConditionUnderRepair:
		return true
	}
	return false
}

type LoanStatus string

const (
	LoanPending  LoanStatus = "pendiente"
	LoanReturned LoanStatus = "devuelto"
	LoanOverdue  LoanStatus = "retraso"
)

var LoanStatuses = []LoanStatus{LoanPending, LoanReturned, LoanOverdue}

// Active 未归还（含逾期）
func (s LoanStatus) Active() bool { return s == LoanPending || s == LoanOverdue }

func (s LoanStatus) Valid() bool {
	switch s {
	case LoanPending, LoanReturned, LoanOverdue:
		return true
	}
	return false
}

type Location struct {
	ID       int     `gorm:"column:codigo_ubicacion;primaryKey;autoIncrement" json:"id"`
	RoomName string  `gorm:"column:nombre_ambiente;size:200;not null" json:"roomName"`
	Floor    *string `gorm:"column:piso;size:40" json:"floor,omitempty"`
	Block    *string `gorm:"column:bloque;size:40" json:"block,omitempty"`
}

// Asset 的 Quantity 表示当前可借数量：借出减少，归还增加
type Asset struct {
	ID                int       `gorm:"column:codigo_activo;primaryKey;autoIncrement" json:"id"`
	Name              string    `gorm:"column:nombre;size:200;not null" json:"name"`
	Description       *string   `gorm:"column:descripcion;type:text" json:"description,omitempty"`
	Category          Category  `gorm:"column:categoria;size:20;not null;index" json:"category"`
	Condition         Condition `gorm:"column:estado;size:20;not null" json:"condition"`
	Quantity          int       `gorm:"column:cantidad;not null;check:chk_activo_cantidad,cantidad >= 0" json:"quantity"`
	CurrentLocationID *int      `gorm:"column:ubicacion_actual;index" json:"currentLocationId,omitempty"`
	RegisteredAt      time.Time `gorm:"column:fecha_registro;not null;autoCreateTime" json:"registeredAt"`

	CurrentLocation *Location `gorm:"foreignKey:CurrentLocationID;references:ID" json:"currentLocation,omitempty"`
}

type Loan struct {
	ID                  int        `gorm:"column:codigo_prestamo;primaryKey;autoIncrement" json:"id"`
	AssetID             int        `gorm:"column:codigo_activo;not null;index" json:"assetId"`
	PersonID            string     `gorm:"column:carnet_persona;size:40;not null;index" json:"personId"`
	LoanDate            time.Time  `gorm:"column:fecha_prestamo;not null;index" json:"loanDate"`
	ExpectedReturnDate  *time.Time `gorm:"column:fecha_devolucion_esperada" json:"expectedReturnDate,omitempty"`
	ReturnDate          *time.Time `gorm:"column:fecha_devolucion" json:"returnDate,omitempty"`
	Status              LoanStatus `gorm:"column:estado_prestamo;size:20;not null;index" json:"status"`
	TemporaryLocationID *int       `gorm:"column:ubicacion_temporal;index" json:"temporaryLocationId,omitempty"`

	Asset             *Asset    `gorm:"foreignKey:AssetID;references:ID" json:"asset,omitempty"`
	Person            *Person   `gorm:"foreignKey:PersonID;references:ID" json:"person,omitempty"`
	TemporaryLocation *Location `gorm:"foreignKey:TemporaryLocationID;references:ID" json:"temporaryLocation,omitempty"`
}

// Movement 记录资产位置变更
type Movement struct {
	ID             int       `gorm:"column:codigo_movimiento;primaryKey;autoIncrement" json:"id"`
	AssetID        int       `gorm:"column:codigo_activo;not null;index" json:"assetId"`
	FromLocationID *int      `gorm:"column:ubicacion_anterior" json:"fromLocationId,omitempty"`
	ToLocationID   *int      `gorm:"column:ubicacion_nueva" json:"toLocationId,omitempty"`
	MovedAt        time.Time `gorm:"column:fecha_movimiento;not null" json:"movedAt"`
	Reason         *string   `gorm:"column:motivo;size:255" json:"reason,omitempty"`
}

func (Location) TableName() string { return LocationTable }
func (Asset) TableName() string    { return AssetTable }
func (Loan) TableName() string     { return LoanTable }
func (Movement) TableName() string { return MovementTable }
