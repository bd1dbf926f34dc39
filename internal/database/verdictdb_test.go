package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/classifurlr/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *VerdictDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func record(url string, status model.Direction, blocked model.Blocked, confidence *float64) model.Record {
	return model.Record{
		Subject:    url,
		Status:     status,
		Blocked:    blocked,
		Confidence: confidence,
		Classifier: "classification_pipeline",
		Version:    "0.1",
		Constituents: []model.Record{
			{Subject: "page_1", Status: status, Blocked: blocked, Confidence: confidence, Classifier: "page_rollup", Version: "0.1"},
		},
	}
}

func ptr(f float64) *float64 { return &f }

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, FileName)); err != nil {
			t.Errorf("database file was not created: %v", err)
		}
		if db.Path() != filepath.Join(dbDir, FileName) {
			t.Errorf("unexpected path %s", db.Path())
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		_, err := Open(filepath.Join(t.TempDir(), "missing"), Options{CreateIfNotExists: false})
		if err == nil {
			t.Error("expected error for missing database")
		}
	})

	t.Run("CreateIfNotExists=false opens existing database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		_ = db.Close()

		db, err = Open(dir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		_ = db.Close()
	})
}

func TestDigest(t *testing.T) {
	t.Parallel()

	a := Digest([]byte(`{"url":"http://example.com/"}`))
	b := Digest([]byte(`{"url":"http://example.com/"}`))
	c := Digest([]byte(`{"url":"http://example.org/"}`))

	if len(a) != 64 {
		t.Errorf("expected 64 hex characters, got %d", len(a))
	}
	if a != b {
		t.Error("expected identical inputs to share a digest")
	}
	if a == c {
		t.Error("expected different inputs to have different digests")
	}
}

func TestSaveAndRecent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := setupTestDB(t)
	base := time.Date(2019, 1, 2, 3, 4, 5, 0, time.UTC)

	inputs := []struct {
		rec model.Record
		at  time.Time
	}{
		{record("http://example.com/", model.DirectionUp, model.BlockedNo, ptr(0.4)), base},
		{record("http://example.com/", model.DirectionDown, model.BlockedYes, ptr(1)), base.Add(time.Hour)},
		{record("http://example.com/", model.DirectionInconclusive, model.BlockedUnknown, nil), base.Add(2 * time.Hour)},
		{record("http://example.org/", model.DirectionUp, model.BlockedNo, ptr(0.9)), base.Add(90 * time.Minute)},
	}
	for i, in := range inputs {
		id, err := db.SaveAt(ctx, in.rec, []byte{byte(i)}, in.at)
		if err != nil {
			t.Fatalf("failed to save verdict %d: %v", i, err)
		}
		if id <= 0 {
			t.Errorf("expected positive id, got %d", id)
		}
	}

	t.Run("newest first and limited", func(t *testing.T) {
		t.Parallel()

		got, err := db.Recent(ctx, "http://example.com/", 2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 verdicts, got %d", len(got))
		}
		if got[0].Status != model.DirectionInconclusive || got[1].Status != model.DirectionDown {
			t.Errorf("unexpected order %s, %s", got[0].Status, got[1].Status)
		}
	})

	t.Run("nullable columns round trip", func(t *testing.T) {
		t.Parallel()

		got, err := db.Recent(ctx, "http://example.com/", 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("expected 3 verdicts, got %d", len(got))
		}
		inconclusive, down, up := got[0], got[1], got[2]
		if inconclusive.Blocked != model.BlockedUnknown || inconclusive.Confidence != nil {
			t.Errorf("expected null blocked and confidence, got %v %v", inconclusive.Blocked, inconclusive.Confidence)
		}
		if down.Blocked != model.BlockedYes || down.Confidence == nil || *down.Confidence != 1 {
			t.Errorf("unexpected down verdict %+v", down)
		}
		if up.Blocked != model.BlockedNo {
			t.Errorf("expected blocked false, got %v", up.Blocked)
		}
		if !up.ClassifiedAt.Equal(base) {
			t.Errorf("expected classification time %v, got %v", base, up.ClassifiedAt)
		}
		if len(down.Record.Constituents) != 1 || !down.Record.Constituents[0].IsBlocked() {
			t.Errorf("expected stored record tree, got %+v", down.Record)
		}
	})

	t.Run("latest spans urls", func(t *testing.T) {
		t.Parallel()

		got, err := db.Latest(ctx, 2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 2 || got[1].URL != "http://example.org/" {
			t.Errorf("unexpected latest verdicts %+v", got)
		}
	})

	t.Run("by digest", func(t *testing.T) {
		t.Parallel()

		got, err := db.ByDigest(ctx, Digest([]byte{1}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 || got[0].Status != model.DirectionDown {
			t.Errorf("unexpected verdicts for digest %+v", got)
		}
	})

	t.Run("list urls", func(t *testing.T) {
		t.Parallel()

		urls, err := db.ListURLs(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(urls) != 2 || urls[0] != "http://example.com/" || urls[1] != "http://example.org/" {
			t.Errorf("unexpected urls %v", urls)
		}
	})

	t.Run("unknown url has no history", func(t *testing.T) {
		t.Parallel()

		got, err := db.Recent(ctx, "http://example.net/", 5)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("expected no verdicts, got %d", len(got))
		}
	})

	t.Run("non-positive limit", func(t *testing.T) {
		t.Parallel()

		if _, err := db.Recent(ctx, "http://example.com/", 0); !errors.Is(err, ErrInvalidLimit) {
			t.Errorf("expected ErrInvalidLimit, got %v", err)
		}
		if _, err := db.Latest(ctx, -1); !errors.Is(err, ErrInvalidLimit) {
			t.Errorf("expected ErrInvalidLimit, got %v", err)
		}
	})
}

func TestSave(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	before := time.Now().Add(-time.Second)
	if _, err := db.Save(context.Background(), record("http://example.com/", model.DirectionUp, model.BlockedNo, ptr(0.5)), []byte("input")); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	got, err := db.Recent(context.Background(), "http://example.com/", 1)
	if err != nil || len(got) != 1 {
		t.Fatalf("expected one verdict, got %v, %v", got, err)
	}
	if got[0].ClassifiedAt.Before(before) {
		t.Errorf("expected a current timestamp, got %v", got[0].ClassifiedAt)
	}
	if got[0].InputDigest != Digest([]byte("input")) {
		t.Errorf("unexpected digest %s", got[0].InputDigest)
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		zero bool
	}{
		{"2019-01-02T03:04:05.000000000Z", false},
		{"2019-01-02T03:04:05Z", false},
		{"2019-01-02 03:04:05", false},
		{"yesterday", true},
	}
	for _, tt := range tests {
		if got := parseTimestamp(tt.in); got.IsZero() != tt.zero {
			t.Errorf("parseTimestamp(%q) = %v", tt.in, got)
		}
	}
}
