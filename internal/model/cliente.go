package model

// Cliente holds a running account for deferred sales. Blocked clients cannot
// receive new deferred-sale entries.
type Cliente struct {
	ID        int64  `gorm:"primaryKey"`
	Nome      string `gorm:"index;not null"`
	Documento *string
	PostoID   *int64 `gorm:"index"`
	Ativo     bool   `gorm:"not null;default:true"`
	Bloqueado bool   `gorm:"not null;default:false"`
}

func (Cliente) TableName() string { return "clientes" }
