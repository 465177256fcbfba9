package infra

import (
	"fmt"

	"postocaixa/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens a GORM connection backed by pgx and brings the schema up
// to date.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates or updates every table and then applies the patches
// AutoMigrate cannot express. Integration tests call it directly.
func RunMigrations(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		return fmt.Errorf("pgcrypto: %w", err)
	}
	if err := db.AutoMigrate(
		&model.Posto{},
		&model.Usuario{},
		&model.Turno{},
		&model.Frentista{},
		&model.Cliente{},
		&model.AberturaCaixa{},
		&model.Fechamento{},
		&model.FechamentoFrentista{},
		&model.NotaPrazo{},
		&model.Produto{},
		&model.VendaProduto{},
		&model.MovimentoEstoque{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches runs idempotent DDL that GORM tags cannot describe.
// Every statement is guarded so re-running on a patched schema is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// notes follow their envelope
		{"fk notas_frentista → fechamentos", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_notas_frentista_fechamento') THEN
    ALTER TABLE notas_frentista
      ADD CONSTRAINT fk_notas_frentista_fechamento
      FOREIGN KEY (fechamento_id) REFERENCES fechamentos(id) ON DELETE CASCADE;
  END IF;
END $$`},
		{"check non-negative line amounts", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_linha_valores_nao_negativos') THEN
    ALTER TABLE fechamento_frentistas
      ADD CONSTRAINT chk_linha_valores_nao_negativos CHECK (
        valor_cartao >= 0 AND valor_debito >= 0 AND valor_credito >= 0 AND
        valor_nota >= 0 AND valor_pix >= 0 AND valor_dinheiro >= 0 AND
        valor_moedas >= 0 AND valor_baratao >= 0 AND encerrante >= 0);
  END IF;
END $$`},
		{"check positive note amount", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_nota_valor_positivo') THEN
    ALTER TABLE notas_frentista ADD CONSTRAINT chk_nota_valor_positivo CHECK (valor > 0);
  END IF;
END $$`},
		{"check non-negative stock", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_produto_estoque') THEN
    ALTER TABLE produtos ADD CONSTRAINT chk_produto_estoque CHECK (estoque_atual >= 0);
  END IF;
END $$`},
		// history reads the newest lines of one attendant
		{"idx history", `CREATE INDEX IF NOT EXISTS idx_linhas_frentista_recentes
  ON fechamento_frentistas (frentista_id, created_at DESC)`},
		{"idx active attendants", `CREATE INDEX IF NOT EXISTS idx_frentistas_posto_ativos
  ON frentistas (posto_id, nome) WHERE ativo`},
		{"idx client name search", `CREATE INDEX IF NOT EXISTS idx_clientes_nome_lower
  ON clientes (posto_id, LOWER(nome))`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
