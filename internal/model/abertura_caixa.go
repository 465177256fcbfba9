package model

import "time"

// AberturaCaixa records that an attendant opened their register for a day.
// At most one row per (frentista_id, data); "already open today" is a lookup
// on that key.
type AberturaCaixa struct {
	ID          int64     `gorm:"primaryKey"`
	FrentistaID int64     `gorm:"not null;uniqueIndex:idx_abertura_frentista_data"`
	TurnoID     int64     `gorm:"not null"`
	PostoID     int64     `gorm:"not null;index"`
	Data        time.Time `gorm:"type:date;not null;uniqueIndex:idx_abertura_frentista_data"`
	AbertaEm    time.Time `gorm:"not null"`

	Turno *Turno `gorm:"foreignKey:TurnoID"`
}

func (AberturaCaixa) TableName() string { return "caixa_aberturas" }
