package eval

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrRunNotFound is returned when a run id does not occur in the store.
var ErrRunNotFound = errors.New("run not found")

// Run is one persisted evaluation run.
type Run struct {
	ID        string
	Algorithm string
	Notes     string
	CreatedAt time.Time
	Result    *Result
}

type runRecord struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	Algorithm string `gorm:"index:idx_runs_algorithm"`
	Notes     string
	CreatedAt time.Time
}

func (runRecord) TableName() string { return "runs" }

type pieceRecord struct {
	ID               uint   `gorm:"primaryKey;autoIncrement"`
	RunID            string `gorm:"type:varchar(36);index:idx_run_pieces_run"`
	Piece            string
	PointCount       int
	PatternCount     int
	GroundTruthCount int

	EstPrecision float64
	EstRecall    float64
	EstF1        float64

	ThreeLayerPrecision float64
	ThreeLayerRecall    float64
	ThreeLayerF1        float64

	Occ75Precision float64
	Occ75Recall    float64
	Occ75F1        float64

	Occ50Precision float64
	Occ50Recall    float64
	Occ50F1        float64
}

func (pieceRecord) TableName() string { return "run_pieces" }

// RunStore persists evaluation runs in an embedded SQLite database so
// that algorithm revisions can be compared later.
type RunStore struct {
	gdb *gorm.DB
	db  *sql.DB
}

// OpenRunStore opens or creates the run database at the given path.
func OpenRunStore(path string) (*RunStore, error) {
	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening run database: %w", err)
	}

	db, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if err := gdb.AutoMigrate(&runRecord{}, &pieceRecord{}); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating run database: %w", err)
	}
	return &RunStore{gdb: gdb, db: db}, nil
}

// Close closes the underlying database.
func (s *RunStore) Close() error {
	return s.db.Close()
}

// Save persists a run and its per-piece rows. A missing id or creation
// time is filled in and written back to the run.
func (s *RunStore) Save(run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	rows := make([]pieceRecord, 0, len(run.Result.Pieces))
	for _, p := range run.Result.Pieces {
		rows = append(rows, pieceRecord{
			RunID:            run.ID,
			Piece:            p.Piece,
			PointCount:       p.PointCount,
			PatternCount:     p.PatternCount,
			GroundTruthCount: p.GroundTruthCount,

			EstPrecision: p.Establishment.Precision,
			EstRecall:    p.Establishment.Recall,
			EstF1:        p.Establishment.F1,

			ThreeLayerPrecision: p.ThreeLayer.Precision,
			ThreeLayerRecall:    p.ThreeLayer.Recall,
			ThreeLayerF1:        p.ThreeLayer.F1,

			Occ75Precision: p.OccurrenceAt75.Precision,
			Occ75Recall:    p.OccurrenceAt75.Recall,
			Occ75F1:        p.OccurrenceAt75.F1,

			Occ50Precision: p.OccurrenceAt50.Precision,
			Occ50Recall:    p.OccurrenceAt50.Recall,
			Occ50F1:        p.OccurrenceAt50.F1,
		})
	}

	return s.gdb.Transaction(func(tx *gorm.DB) error {
		record := runRecord{
			ID:        run.ID,
			Algorithm: run.Algorithm,
			Notes:     run.Notes,
			CreatedAt: run.CreatedAt,
		}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("creating run: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, 500).Error; err != nil {
			return fmt.Errorf("batch inserting run pieces: %w", err)
		}
		return nil
	})
}

// Load returns the run with the given id, including its per-piece
// rows sorted by piece name.
func (s *RunStore) Load(id string) (*Run, error) {
	var record runRecord
	if err := s.gdb.Where("id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("querying run: %w", err)
	}

	var rows []pieceRecord
	if err := s.gdb.Where("run_id = ?", id).Order("piece").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying run pieces: %w", err)
	}

	result := &Result{Pieces: make([]PieceResult, 0, len(rows))}
	for _, row := range rows {
		result.Pieces = append(result.Pieces, PieceResult{
			Piece:            row.Piece,
			PointCount:       row.PointCount,
			PatternCount:     row.PatternCount,
			GroundTruthCount: row.GroundTruthCount,

			Establishment:  Scores{Precision: row.EstPrecision, Recall: row.EstRecall, F1: row.EstF1},
			ThreeLayer:     Scores{Precision: row.ThreeLayerPrecision, Recall: row.ThreeLayerRecall, F1: row.ThreeLayerF1},
			OccurrenceAt75: Scores{Precision: row.Occ75Precision, Recall: row.Occ75Recall, F1: row.Occ75F1},
			OccurrenceAt50: Scores{Precision: row.Occ50Precision, Recall: row.Occ50Recall, F1: row.Occ50F1},
		})
	}

	return &Run{
		ID:        record.ID,
		Algorithm: record.Algorithm,
		Notes:     record.Notes,
		CreatedAt: record.CreatedAt,
		Result:    result,
	}, nil
}

// List returns all runs without their per-piece rows, newest first.
func (s *RunStore) List() ([]Run, error) {
	var records []runRecord
	if err := s.gdb.Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	runs := make([]Run, 0, len(records))
	for _, r := range records {
		runs = append(runs, Run{
			ID:        r.ID,
			Algorithm: r.Algorithm,
			Notes:     r.Notes,
			CreatedAt: r.CreatedAt,
		})
	}
	return runs, nil
}

// Delete removes a run and its per-piece rows.
func (s *RunStore) Delete(id string) error {
	return s.gdb.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("run_id = ?", id).Delete(&pieceRecord{}).Error; err != nil {
			return fmt.Errorf("deleting run pieces: %w", err)
		}
		result := tx.Where("id = ?", id).Delete(&runRecord{})
		if result.Error != nil {
			return fmt.Errorf("deleting run: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrRunNotFound
		}
		return nil
	})
}
