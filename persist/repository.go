package persist

import (
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/katalvlaran/lvroute/route"
)

var (
	// ErrNotFound is returned when no route is stored under a name.
	ErrNotFound = errors.New("persist: route not found")

	// ErrUnknownDriver is returned by Open for drivers other than sqlite and postgres.
	ErrUnknownDriver = errors.New("persist: unknown driver")

	// ErrEmptyName is returned for an empty route name.
	ErrEmptyName = errors.New("persist: empty route name")
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	memoryDSN = "file::memory:?cache=shared"
)

// Config selects the database backing a Repository.
type Config struct {
	Driver string // sqlite (default) or postgres
	DSN    string // sqlite file path or postgres DSN; empty sqlite DSN is in-memory
}

// Open connects to the configured database.
func Open(cfg Config, log zerolog.Logger) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case "", DriverSQLite:
		dsn := cfg.DSN
		if dsn == "" {
			dsn = memoryDSN
		}
		db, err = gorm.Open(sqlite.Open(dsn), gcfg)
		if err == nil {
			log.Debug().Str("driver", DriverSQLite).Str("dsn", dsn).Msg("opened route store")
		}
	case DriverPostgres:
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  cfg.DSN,
			PreferSimpleProtocol: true,
		}), gcfg)
		if err == nil {
			log.Debug().Str("driver", DriverPostgres).Msg("opened route store")
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("persist: open %s: %w", cfg.Driver, err)
	}
	return db, nil
}

// StoredRoute is one named route row.
type StoredRoute struct {
	Name      string         `gorm:"primaryKey;size:128"`
	Payload   datatypes.JSON `gorm:"not null"`
	Waypoints int
	Length    float64
	UpdatedAt time.Time
}

func (*StoredRoute) TableName() string {
	return "routes"
}

// Repository keeps routes by name.
type Repository struct {
	db  *gorm.DB
	log zerolog.Logger
}

// NewRepository migrates the schema and returns a repository on db.
func NewRepository(db *gorm.DB, log zerolog.Logger) (*Repository, error) {
	if err := db.AutoMigrate(&StoredRoute{}); err != nil {
		return nil, fmt.Errorf("persist: migrate: %w", err)
	}
	return &Repository{db: db, log: log.With().Str("component", "persist").Logger()}, nil
}

// Save stores r under name, replacing any previous route of that name.
func (p *Repository) Save(name string, r route.Route) error {
	if name == "" {
		return ErrEmptyName
	}
	data, err := Marshal(r)
	if err != nil {
		return fmt.Errorf("persist: encode %q: %w", name, err)
	}
	row := StoredRoute{
		Name:      name,
		Payload:   datatypes.JSON(data),
		Waypoints: len(r.Waypoints),
		Length:    r.Length,
		UpdatedAt: time.Now().UTC(),
	}
	err = p.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("persist: save %q: %w", name, err)
	}
	p.log.Debug().Str("name", name).Int("waypoints", row.Waypoints).Msg("saved")
	return nil
}

// Load decodes the route stored under name against live markers.
func (p *Repository) Load(name string, live Markers) (route.Route, Report, error) {
	var row StoredRoute
	err := p.db.Where("name = ?", name).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return route.Route{}, Report{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return route.Route{}, Report{}, fmt.Errorf("persist: load %q: %w", name, err)
	}

	r, rep, err := Unmarshal(row.Payload, live)
	if err != nil {
		return route.Route{}, Report{}, fmt.Errorf("persist: load %q: %w", name, err)
	}
	if rep.Degraded > 0 {
		p.log.Warn().Str("name", name).Int("degraded", rep.Degraded).Msg("unresolved markers loaded as free waypoints")
	}
	return r, rep, nil
}

// Delete removes the route stored under name.
func (p *Repository) Delete(name string) error {
	res := p.db.Where("name = ?", name).Delete(&StoredRoute{})
	if res.Error != nil {
		return fmt.Errorf("persist: delete %q: %w", name, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return nil
}

// Names lists stored route names in ascending order.
func (p *Repository) Names() ([]string, error) {
	var names []string
	if err := p.db.Model(&StoredRoute{}).Order("name").Pluck("name", &names).Error; err != nil {
		return nil, fmt.Errorf("persist: list: %w", err)
	}
	return names, nil
}
