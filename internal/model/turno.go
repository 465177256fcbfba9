package model

// Turno is a named recurring time-of-day window ("HH:MM" start/end).
// A window whose start is after its end wraps midnight.
type Turno struct {
	ID            int64  `gorm:"primaryKey"`
	Nome          string `gorm:"not null"`
	HorarioInicio string `gorm:"type:varchar(5);not null"`
	HorarioFim    string `gorm:"type:varchar(5);not null"`
	// Ativo nil means "not flagged"; only an explicit false excludes it.
	Ativo   *bool
	PostoID int64 `gorm:"not null;index"`
}

func (Turno) TableName() string { return "turnos" }

// Ativado reports whether the window counts as active.
func (t Turno) Ativado() bool { return t.Ativo == nil || *t.Ativo }
