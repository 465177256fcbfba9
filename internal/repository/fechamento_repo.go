package repository

import (
	"context"
	"time"

	"postocaixa/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FechamentoRepository stores closing envelopes and the per-attendant lines
// attached to them.
type FechamentoRepository interface {
	FindByPeriodo(ctx context.Context, data time.Time, turnoID, postoID int64) (*model.Fechamento, error)
	FindByID(ctx context.Context, id int64) (*model.Fechamento, error)
	// GetOrCreate returns the envelope for (f.Data, f.TurnoID, f.PostoID),
	// inserting f when none exists. An existing envelope is never modified.
	GetOrCreate(ctx context.Context, f *model.Fechamento) (*model.Fechamento, error)
	// RecomputeAndPersist re-sums every line of the envelope. TotalVendas is
	// replaced only by a non-zero override; a nil obs keeps the stored notes.
	RecomputeAndPersist(ctx context.Context, id int64, totalVendas decimal.Decimal, obs *string) error

	// ── Linhas ──
	CreateLinha(ctx context.Context, l *model.FechamentoFrentista) error
	UpdateLinha(ctx context.Context, id int64, campos map[string]any) (*model.FechamentoFrentista, error)
	FindLinhaID(ctx context.Context, fechamentoID, frentistaID int64) (int64, bool, error)
	// DeleteLinha removes the line and the deferred sales the attendant
	// recorded against the envelope, in one transaction.
	DeleteLinha(ctx context.Context, linhaID int64) error
	FrentistasQueFecharam(ctx context.Context, data time.Time, turnoID, postoID int64) ([]int64, error)
	Historico(ctx context.Context, frentistaID, postoID int64, limite int) ([]model.FechamentoFrentista, error)
}

type fechamentoRepo struct{ db *gorm.DB }

func NewFechamentoRepository(db *gorm.DB) FechamentoRepository { return &fechamentoRepo{db: db} }

func (r *fechamentoRepo) FindByPeriodo(ctx context.Context, data time.Time, turnoID, postoID int64) (*model.Fechamento, error) {
	var f model.Fechamento
	ok, err := talvez(r.db.WithContext(ctx).
		Where("data = ? AND turno_id = ? AND posto_id = ?", model.Dia(data), turnoID, postoID).
		First(&f).Error)
	if !ok {
		return nil, err
	}
	return &f, nil
}

func (r *fechamentoRepo) FindByID(ctx context.Context, id int64) (*model.Fechamento, error) {
	var f model.Fechamento
	ok, err := talvez(r.db.WithContext(ctx).
		Preload("Turno").
		Preload("Linhas", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Linhas.Frentista").
		First(&f, id).Error)
	if !ok {
		return nil, err
	}
	return &f, nil
}

func (r *fechamentoRepo) GetOrCreate(ctx context.Context, f *model.Fechamento) (*model.Fechamento, error) {
	f.Data = model.Dia(f.Data)
	// Two attendants may be first at the same time; the unique index picks
	// one insert and the other falls through to the select.
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(f).Error
	if err != nil {
		return nil, traduzir(err)
	}
	return r.FindByPeriodo(ctx, f.Data, f.TurnoID, f.PostoID)
}

func (r *fechamentoRepo) RecomputeAndPersist(ctx context.Context, id int64, totalVendas decimal.Decimal, obs *string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var f model.Fechamento
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&f, id).Error; err != nil {
			return err
		}
		var linhas []model.FechamentoFrentista
		if err := tx.Where("fechamento_id = ?", id).Find(&linhas).Error; err != nil {
			return err
		}
		campos := AgregarFechamento(&f, linhas, totalVendas, obs)
		return tx.Model(&model.Fechamento{}).Where("id = ?", id).Updates(campos).Error
	})
}

// AgregarFechamento applies the aggregate recomputation to f in memory and
// returns the columns to persist.
func AgregarFechamento(f *model.Fechamento, linhas []model.FechamentoFrentista, totalVendas decimal.Decimal, obs *string) map[string]any {
	recebido := decimal.Zero
	for _, l := range linhas {
		recebido = recebido.Add(l.TotalDeclarado())
	}
	recebido = recebido.Round(2)
	if !totalVendas.IsZero() {
		f.TotalVendas = totalVendas.Round(2)
	}
	f.TotalRecebido = recebido
	f.Diferenca = recebido.Sub(f.TotalVendas).Round(2)
	f.Status = model.StatusFechado

	campos := map[string]any{
		"total_recebido": f.TotalRecebido,
		"total_vendas":   f.TotalVendas,
		"diferenca":      f.Diferenca,
		"status":         f.Status,
		"updated_at":     time.Now(),
	}
	if obs != nil {
		f.Observacoes = obs
		campos["observacoes"] = *obs
	}
	return campos
}

// ── Linhas ───────────────────────────────────────────────────────────────────

func (r *fechamentoRepo) CreateLinha(ctx context.Context, l *model.FechamentoFrentista) error {
	return traduzir(r.db.WithContext(ctx).Create(l).Error)
}

func (r *fechamentoRepo) UpdateLinha(ctx context.Context, id int64, campos map[string]any) (*model.FechamentoFrentista, error) {
	res := r.db.WithContext(ctx).Model(&model.FechamentoFrentista{}).Where("id = ?", id).Updates(campos)
	if res.Error != nil {
		return nil, traduzir(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	var l model.FechamentoFrentista
	if err := r.db.WithContext(ctx).First(&l, id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *fechamentoRepo) FindLinhaID(ctx context.Context, fechamentoID, frentistaID int64) (int64, bool, error) {
	var l model.FechamentoFrentista
	ok, err := talvez(r.db.WithContext(ctx).
		Select("id").
		Where("fechamento_id = ? AND frentista_id = ?", fechamentoID, frentistaID).
		First(&l).Error)
	if !ok {
		return 0, false, err
	}
	return l.ID, true, nil
}

func (r *fechamentoRepo) DeleteLinha(ctx context.Context, linhaID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var l model.FechamentoFrentista
		if err := tx.First(&l, linhaID).Error; err != nil {
			return err
		}
		if err := tx.Where("fechamento_id = ? AND frentista_id = ?", l.FechamentoID, l.FrentistaID).
			Delete(&model.NotaPrazo{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.VendaProduto{}).
			Where("fechamento_frentista_id = ?", l.ID).
			Update("fechamento_frentista_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&model.FechamentoFrentista{}, l.ID).Error
	})
}

func (r *fechamentoRepo) FrentistasQueFecharam(ctx context.Context, data time.Time, turnoID, postoID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&model.FechamentoFrentista{}).
		Joins("JOIN fechamentos f ON f.id = fechamento_frentistas.fechamento_id").
		Where("f.data = ? AND f.turno_id = ? AND f.posto_id = ?", model.Dia(data), turnoID, postoID).
		Pluck("fechamento_frentistas.frentista_id", &ids).Error
	return ids, err
}

func (r *fechamentoRepo) Historico(ctx context.Context, frentistaID, postoID int64, limite int) ([]model.FechamentoFrentista, error) {
	var ls []model.FechamentoFrentista
	err := r.db.WithContext(ctx).
		Preload("Fechamento").
		Preload("Fechamento.Turno").
		Where("frentista_id = ? AND posto_id = ?", frentistaID, postoID).
		Order("created_at DESC").
		Limit(limite).
		Find(&ls).Error
	return ls, err
}
