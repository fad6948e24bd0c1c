package google

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	gsheet "google.golang.org/api/sheets/v4"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{ServiceAccountJSON: "{}"})
	if err == nil {
		t.Fatal("expected error for missing spreadsheet id")
	}
	if err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	t.Run("inline wins", func(t *testing.T) {
		b, err := loadCredentials(Config{ServiceAccountJSON: ` {"type":"service_account"} `, ServiceAccountFile: "/nope"})
		if err != nil || string(b) != `{"type":"service_account"}` {
			t.Fatalf("got %q, %v", b, err)
		}
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sa.json")
		if err := os.WriteFile(path, []byte(`{"k":1}`), 0o600); err != nil {
			t.Fatal(err)
		}
		b, err := loadCredentials(Config{ServiceAccountFile: path})
		if err != nil || string(b) != `{"k":1}` {
			t.Fatalf("got %q, %v", b, err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loadCredentials(Config{ServiceAccountFile: filepath.Join(t.TempDir(), "absent.json")})
		if err == nil || !strings.Contains(err.Error(), "read service account file") {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("nothing configured", func(t *testing.T) {
		_, err := loadCredentials(Config{})
		if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestHasSheet(t *testing.T) {
	ss := &gsheet.Spreadsheet{Sheets: []*gsheet.Sheet{
		{Properties: &gsheet.SheetProperties{Title: "Entries"}},
		{Properties: nil},
		{Properties: &gsheet.SheetProperties{Title: "Stats 1"}},
	}}
	if !hasSheet(ss, "Stats 1") {
		t.Error("expected Stats 1 to be found")
	}
	if hasSheet(ss, "Stats 2") {
		t.Error("Stats 2 should be missing")
	}
	if hasSheet(nil, "x") {
		t.Error("nil spreadsheet has no sheets")
	}
}

func TestNilServiceErrors(t *testing.T) {
	c := &Client{spreadsheetID: "test"}
	ctx := context.Background()
	if _, err := c.ReadRange(ctx, "A1"); err == nil {
		t.Error("ReadRange should fail without a service")
	}
	if err := c.EnsureSheet(ctx, "s"); err == nil {
		t.Error("EnsureSheet should fail without a service")
	}
	if err := c.ClearRange(ctx, "A1"); err == nil {
		t.Error("ClearRange should fail without a service")
	}
	if err := c.WriteRange(ctx, "A1", nil); err == nil {
		t.Error("WriteRange should fail without a service")
	}
}
