package history

import (
	"context"
	"fmt"
	"time"

	"github.com/chrissnell/astralphase/pkg/phase"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// phaseTransition is the database row for a Transition
type phaseTransition struct {
	ID        string    `gorm:"primaryKey;column:id"`
	Sensor    string    `gorm:"column:sensor;not null;index:idx_phase_transitions_sensor_at,priority:1"`
	At        time.Time `gorm:"column:at;not null;index:idx_phase_transitions_sensor_at,priority:2,sort:desc"`
	FromLabel string    `gorm:"column:from_label;not null"`
	ToLabel   string    `gorm:"column:to_label;not null"`
	Elevation float64   `gorm:"column:elevation;not null"`
}

// TableName specifies the table name for phaseTransition
func (phaseTransition) TableName() string {
	return "phase_transitions"
}

func toRow(t Transition) phaseTransition {
	return phaseTransition{
		ID:        t.ID,
		Sensor:    t.Sensor,
		At:        t.At.UTC(),
		FromLabel: t.From.String(),
		ToLabel:   t.To.String(),
		Elevation: t.Elevation,
	}
}

func (r phaseTransition) toTransition() (Transition, error) {
	from, err := phase.ParseLabel(r.FromLabel)
	if err != nil {
		return Transition{}, err
	}
	to, err := phase.ParseLabel(r.ToLabel)
	if err != nil {
		return Transition{}, err
	}
	return Transition{
		ID:        r.ID,
		Sensor:    r.Sensor,
		At:        r.At.UTC(),
		From:      from,
		To:        to,
		Elevation: r.Elevation,
	}, nil
}

// TimescaleDBStore keeps transitions in PostgreSQL/TimescaleDB through GORM
type TimescaleDBStore struct {
	DB *gorm.DB
}

// OpenTimescaleDB connects and migrates the phase_transitions table
func OpenTimescaleDB(connectionString string, zl *zap.SugaredLogger) (*TimescaleDBStore, error) {
	// Create a logger for gorm
	dbLogger := logger.New(
		zap.NewStdLog(zl.Desugar()),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	zl.Info("connecting to TimescaleDB...")
	db, err := gorm.Open(postgres.Open(connectionString), &gorm.Config{Logger: dbLogger})
	if err != nil {
		return nil, fmt.Errorf("unable to create a TimescaleDB connection: %w", err)
	}

	if err := db.AutoMigrate(&phaseTransition{}); err != nil {
		return nil, fmt.Errorf("unable to migrate phase_transitions: %w", err)
	}
	zl.Info("TimescaleDB connection successful")

	return &TimescaleDBStore{DB: db}, nil
}

func (s *TimescaleDBStore) Record(ctx context.Context, t Transition) error {
	row := toRow(t)
	if err := s.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert transition: %w", err)
	}
	return nil
}

func (s *TimescaleDBStore) Recent(ctx context.Context, sensorName string, limit int) ([]Transition, error) {
	var rows []phaseTransition
	err := s.DB.WithContext(ctx).
		Where("sensor = ?", sensorName).
		Order("at DESC").
		Limit(ClampLimit(limit)).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("error querying database for transitions: %w", err)
	}

	transitions := make([]Transition, 0, len(rows))
	for _, r := range rows {
		t, err := r.toTransition()
		if err != nil {
			return nil, err
		}
		transitions = append(transitions, t)
	}
	return transitions, nil
}

func (s *TimescaleDBStore) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
