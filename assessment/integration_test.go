//go:build integration
// +build integration

package assessment_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/liamcoop/riskscore/assessment"
	"github.com/liamcoop/riskscore/classifier"
	"github.com/liamcoop/riskscore/engine"
	"github.com/liamcoop/riskscore/policy"
	"github.com/liamcoop/riskscore/refdata"
	"github.com/liamcoop/riskscore/rules"

	_ "github.com/lib/pq"
)

// setupTestDB creates a PostgreSQL container and returns a connection
func setupTestDB(t *testing.T) (*sql.DB, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "riskscore_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	postgresContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}

	host, err := postgresContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := postgresContainer.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	connStr := fmt.Sprintf("host=%s port=%s user=test password=test dbname=riskscore_test sslmode=disable", host, port.Port())

	var db *sql.DB
	for i := 0; i < 30; i++ {
		db, err = sql.Open("postgres", connStr)
		if err == nil {
			err = db.Ping()
			if err == nil {
				break
			}
		}
		time.Sleep(time.Second)
	}
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	migrationSQL, err := os.ReadFile(filepath.Join("..", "migrations", "000001_initial_schema.up.sql"))
	if err != nil {
		t.Fatalf("Failed to read migration file: %v", err)
	}
	if _, err := db.Exec(string(migrationSQL)); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	cleanup := func() {
		db.Close()
		postgresContainer.Terminate(ctx)
	}

	return db, cleanup
}

func scored(t *testing.T, e *engine.Engine, p rules.Profile, docs rules.DocumentChecklist, at time.Time) *assessment.Assessment {
	t.Helper()
	res, err := e.Run(p, docs, "")
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	return &assessment.Assessment{
		SubmittedAt: at,
		Profile:     p,
		Documents:   docs,
		Result:      *res,
	}
}

func TestPostgresStore_RoundTrip(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ref, err := refdata.LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault() failed: %v", err)
	}
	e, err := engine.New(ref, policy.Default())
	if err != nil {
		t.Fatalf("engine.New() failed: %v", err)
	}

	ctx := context.Background()
	store := assessment.NewPostgresStore(db)

	profile := rules.Profile{
		FullName:       "Donald Trump",
		DateOfBirth:    rules.NewDate(1946, time.June, 14),
		Nationality:    "United States",
		Occupation:     "Cryptocurrency / Virtual Assets",
		Amount:         decimal.NewNullDecimal(decimal.RequireFromString("250000.75")),
		SourceOfWealth: "crypto held offshore and cash",
		Purpose:        rules.PurposeInvestment,
	}
	at := time.Now().UTC().Truncate(time.Millisecond)
	a := scored(t, e, profile, rules.DocumentChecklist{Identity: true, Selfie: true, ProofOfAddress: true}, at)

	if err := store.Add(ctx, a); err != nil {
		t.Fatalf("Add() failed: %v", err)
	}

	got, err := store.Get(ctx, a.ID)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.Result.Score != 85 || got.Result.Band != classifier.BandHigh {
		t.Errorf("result = %d/%s, want 85/High", got.Result.Score, got.Result.Band)
	}
	if len(got.Result.Contributions) != len(a.Result.Contributions) {
		t.Errorf("contributions = %d, want %d", len(got.Result.Contributions), len(a.Result.Contributions))
	}
	if !got.Profile.Amount.Decimal.Equal(profile.Amount.Decimal) {
		t.Errorf("amount = %s, want %s", got.Profile.Amount.Decimal, profile.Amount.Decimal)
	}
	if !got.Profile.DateOfBirth.Equal(profile.DateOfBirth.Time) {
		t.Errorf("date of birth = %v", got.Profile.DateOfBirth)
	}
	if !got.SubmittedAt.Equal(at) {
		t.Errorf("submitted at = %v, want %v", got.SubmittedAt, at)
	}
}

func TestPostgresStore_NotFoundAndDuplicate(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := assessment.NewPostgresStore(db)

	if _, err := store.Get(ctx, uuid.New()); !errors.Is(err, assessment.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}

	a := &assessment.Assessment{
		Profile: rules.Profile{FullName: "Jane Smith", Amount: decimal.NewNullDecimal(decimal.NewFromInt(1))},
		Result: engine.RiskResult{
			Band:          classifier.BandLow,
			Action:        classifier.ActionApprove,
			ActionDetail:  classifier.BandLow.Recommendation(),
			Contributions: []rules.Contribution{},
		},
	}
	if err := store.Add(ctx, a); err != nil {
		t.Fatalf("Add() failed: %v", err)
	}
	if err := store.Add(ctx, a); !errors.Is(err, assessment.ErrDuplicate) {
		t.Errorf("second Add() error = %v, want ErrDuplicate", err)
	}
}

func TestPostgresStore_List(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := assessment.NewPostgresStore(db)
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	for i, band := range []classifier.Band{classifier.BandLow, classifier.BandHigh, classifier.BandMedium, classifier.BandHigh} {
		a := &assessment.Assessment{
			SubmittedAt: base.Add(time.Duration(i) * time.Hour),
			Profile:     rules.Profile{FullName: fmt.Sprintf("Applicant %d", i), Amount: decimal.NewNullDecimal(decimal.NewFromInt(1))},
			Result: engine.RiskResult{
				Band:         band,
				Action:       band.Action(),
				ActionDetail: band.Recommendation(),
			},
		}
		if err := store.Add(ctx, a); err != nil {
			t.Fatalf("Add() failed: %v", err)
		}
	}

	all, err := store.List(ctx, assessment.Filter{})
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(all) != 4 || all[0].Profile.FullName != "Applicant 3" {
		t.Errorf("List() should return 4 rows newest first, got %d", len(all))
	}

	high, err := store.List(ctx, assessment.Filter{Band: classifier.BandHigh, Limit: 1})
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(high) != 1 || high[0].Profile.FullName != "Applicant 3" {
		t.Errorf("filtered List() = %v", high)
	}
}
