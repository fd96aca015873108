package main

import (
	"fmt"
	"log/slog"
	"net/http"

	"gorm.io/gorm"
)

// seedDatabase initializes the database with sample data.
// This function drops and recreates the table to ensure a clean state.
func seedDatabase(db *gorm.DB) error {
	if err := db.Migrator().DropTable(&Product{}); err != nil {
		return fmt.Errorf("failed to drop tables: %w", err)
	}

	if err := db.AutoMigrate(&Product{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	sampleProducts := GetSampleProducts()
	if err := db.Create(&sampleProducts).Error; err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}

	return nil
}

// handleReseed resets the database to its sample state.
func (s *server) handleReseed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		s.writeError(w, r, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", r.Method))
		return
	}

	if err := seedDatabase(s.db.WithContext(r.Context())); err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}

	s.logger.Info("Database reseeded", slog.Int("products", len(GetSampleProducts())))
	w.WriteHeader(http.StatusNoContent)
}
