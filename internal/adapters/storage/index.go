package storage

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/lcalzada-xor/steermap/internal/core/domain"
)

// AnalysisRow is the sqlite index record for one persisted artifact. The
// JSON file stays the source of truth; the index only accelerates listing
// and lookup over large trees.
type AnalysisRow struct {
	ID          string    `gorm:"primaryKey;column:id"`
	Vendor      string    `gorm:"index;column:vendor"`
	Model       string    `gorm:"column:model"`
	Filename    string    `gorm:"column:filename"`
	Verdict     string    `gorm:"index;column:verdict"`
	Transitions int       `gorm:"column:transitions"`
	AnalyzedAt  time.Time `gorm:"index;column:analyzed_at"`
	Path        string    `gorm:"column:path"`
}

// TableName keeps the table name stable across gorm naming strategies.
func (AnalysisRow) TableName() string { return "analyses" }

// Index is the sqlite-backed artifact index.
type Index struct {
	db *gorm.DB
}

// OpenIndex opens (creating if needed) the sqlite index at path.
func OpenIndex(path string) (*Index, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: opening index %s: %v", domain.ErrPersistence, path, err)
	}
	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, fmt.Errorf("%w: index tracing: %v", domain.ErrPersistence, err)
	}
	if err := db.AutoMigrate(&AnalysisRow{}); err != nil {
		return nil, fmt.Errorf("%w: migrating index: %v", domain.ErrPersistence, err)
	}
	return &Index{db: db}, nil
}

// Insert upserts the index row for one artifact.
func (i *Index) Insert(analysis *domain.BandSteeringAnalysis, path string) error {
	device := analysis.PrimaryDevice()
	row := AnalysisRow{
		ID:          analysis.AnalysisID,
		Vendor:      device.Vendor,
		Model:       stringOr(device.Model, ""),
		Filename:    analysis.Filename,
		Verdict:     string(analysis.Verdict),
		Transitions: len(analysis.Transitions),
		AnalyzedAt:  analysis.AnalysisTimestamp,
		Path:        path,
	}
	return i.db.Save(&row).Error
}

// PathFor resolves an artifact ID to its JSON path, "" when unknown.
func (i *Index) PathFor(analysisID string) (string, error) {
	var row AnalysisRow
	err := i.db.Select("path").First(&row, "id = ?", analysisID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return row.Path, nil
}

// Remove drops an artifact's index row. Unknown IDs are a no-op.
func (i *Index) Remove(analysisID string) error {
	return i.db.Delete(&AnalysisRow{}, "id = ?", analysisID).Error
}

// Rescan rebuilds the index from the on-disk tree.
func (i *Index) Rescan(summaries []domain.AnalysisSummary) error {
	return i.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&AnalysisRow{}).Error; err != nil {
			return err
		}
		for _, s := range summaries {
			row := AnalysisRow{
				ID:          s.AnalysisID,
				Vendor:      s.Vendor,
				Model:       s.Model,
				Filename:    s.Filename,
				Verdict:     string(s.Verdict),
				Transitions: s.Transitions,
				AnalyzedAt:  s.AnalysisTimestamp,
				Path:        s.Path,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
