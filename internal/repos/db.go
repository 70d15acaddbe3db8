package repos

import (
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	applog "cocolabs/internal/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339Nano, s); err2 == nil {
			return t2
		}
		return time.Time{}
	}
	return t
}

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// SQLite serializes writers anyway; one connection also keeps ":memory:"
	// databases from splitting across the pool.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		return nil, err
	}

	if err := runMigrations(db); err != nil {
		return nil, err
	}
	// Seed catalog and demo account (idempotent; safe to run every start)
	if err := seedCatalog(db); err != nil {
		return nil, err
	}
	if err := seedUsers(db); err != nil {
		return nil, err
	}

	return db, nil
}

func runMigrations(db *sqlx.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("could not open migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(db.DB, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}
	// m.Close would also close db, so only the source is released.
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		_ = src.Close()
		return fmt.Errorf("could not create migrate instance: %w", err)
	}
	defer func() { _ = src.Close() }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}
	return nil
}

type seedProduct struct {
	ID          int64
	Name        string
	Price       string
	Category    string
	Tags        string
	Description string
}

var catalog = []seedProduct{
	{1, "Precision CNC Machined Component", "159.99", "components", "cnc,aluminum,precision",
		"Aircraft-grade aluminum with sub-micron tolerances for critical applications."},
	{2, "Advanced Modular Controller", "249.99", "electronics", "controller,modular,programmable",
		"Programmable control system with multiple I/O ports and wireless connectivity."},
	{3, "Carbon Fiber Composite Frame", "334.99", "structures", "carbon-fiber,lightweight,durable",
		"Ultra-lightweight yet incredibly strong frame for aerospace and robotics applications."},
	{4, "Precision Sensor Array", "189.99", "electronics", "sensors,precision,array",
		"High-accuracy sensor array for environmental monitoring and data collection."},
	{5, "Titanium Mounting Brackets", "79.99", "components", "titanium,mounting,lightweight",
		"Aerospace-grade titanium brackets with exceptional strength-to-weight ratio."},
}

// seedCatalog inserts the base catalog rows that don't exist yet.
func seedCatalog(db *sqlx.DB) error {
	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, p := range catalog {
		if _, err := tx.Exec(`
			INSERT INTO products(id, name, price, image, category, tags, description, active)
			VALUES(?, ?, ?, '/placeholder.svg?height=400&width=400', ?, ?, ?, 1)
			ON CONFLICT(id) DO NOTHING
		`, p.ID, p.Name, p.Price, p.Category, p.Tags, p.Description); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// seedUsers ensures the demo account exists (idempotent).
func seedUsers(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM users WHERE id = 'u-demo'`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	applog.Info(nil, "seed.users", map[string]any{"email": "demo@cocolabs.test"})

	h, err := bcrypt.GenerateFromPassword([]byte("Passw0rd!"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	now := formatTime(time.Now())

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	tx.MustExec(`INSERT INTO users(id,email,name,password_hash,role,created_at) VALUES(?,?,?,?,?,?)
		ON CONFLICT(email) DO NOTHING`, "u-demo", "demo@cocolabs.test", "Demo", string(h), "USER", now)
	tx.MustExec(`INSERT INTO profiles(user_id, updated_at) VALUES(?, ?) ON CONFLICT(user_id) DO NOTHING`, "u-demo", now)
	tx.MustExec(`INSERT INTO wishlists(id, user_id, created_at) VALUES(?, ?, ?) ON CONFLICT(user_id) DO NOTHING`, "w-demo", "u-demo", now)
	return tx.Commit()
}
