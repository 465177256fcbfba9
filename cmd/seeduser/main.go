// Seeds a station, its admin profile and the default shift windows.
// Safe to re-run: existing rows are updated or left alone.
// Uso: go run ./cmd/seeduser
package main

import (
	"context"
	"os"
	"time"

	"postocaixa/internal/config"
	"postocaixa/internal/infra"
	"postocaixa/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	email := envOr("SEED_ADMIN_EMAIL", "admin@postocaixa.com")
	senha := envOr("SEED_ADMIN_SENHA", "postocaixa2026")

	hash, err := bcrypt.GenerateFromPassword([]byte(senha), 12)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt error")
	}

	ctx := context.Background()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		posto := model.Posto{ID: cfg.DefaultPostoID, Nome: "Posto Central", Ativo: true}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&posto).Error; err != nil {
			return err
		}

		admin := model.Usuario{
			AuthID:    uuid.New(),
			Nome:      "Administrador",
			Email:     email,
			SenhaHash: string(hash),
			Role:      model.RoleAdmin,
			PostoID:   &posto.ID,
			Ativo:     true,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{"senha_hash", "role", "ativo", "updated_at"}),
		}).Create(&admin).Error; err != nil {
			return err
		}

		var n int64
		if err := tx.Model(&model.Turno{}).Where("posto_id = ?", posto.ID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		turnos := []model.Turno{
			{Nome: "Manhã", HorarioInicio: "06:00", HorarioFim: "14:00", PostoID: posto.ID},
			{Nome: "Tarde", HorarioInicio: "14:00", HorarioFim: "22:00", PostoID: posto.ID},
			{Nome: "Noite", HorarioInicio: "22:00", HorarioFim: "06:00", PostoID: posto.ID},
		}
		return tx.Create(&turnos).Error
	})
	if err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
	log.Info().Str("email", email).Int64("posto_id", cfg.DefaultPostoID).Msg("admin profile and shift windows seeded")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
