package google

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zaad/internal/aggregate"
)

func TestNewFromEnv_MissingSpreadsheetID(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")

	_, err := NewFromEnv(context.Background())
	require.Error(t, err)
	assert.EqualError(t, err, "missing GOOGLE_SPREADSHEET_ID")
}

func TestNewFromEnv_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "test-id")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	_, err := NewFromEnv(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing service account credentials")
}

func TestNew_UnreadableCredentialsFile(t *testing.T) {
	_, err := New(context.Background(), Options{
		SpreadsheetID:   "test-id",
		CredentialsFile: "/non/existent/sa.json",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read service account file")
}

func TestLoadCredentials_PrefersInline(t *testing.T) {
	got, err := loadCredentials(context.Background(), Options{
		CredentialsJSON: ` {"type":"service_account"} `,
		CredentialsFile: "/ignored.json",
	})
	require.NoError(t, err)
	assert.Equal(t, `{"type":"service_account"}`, string(got))
}

func TestClient_ExportWithoutService(t *testing.T) {
	c := &Client{spreadsheetID: "test", sheetName: "Summary"}
	_, err := c.Export(context.Background(), aggregate.Report{})
	assert.EqualError(t, err, "sheets service not initialized")
}

func TestSheetRange(t *testing.T) {
	tests := []struct {
		sheet, cells, want string
	}{
		{"Summary", "A1", "Summary!A1"},
		{"Zaad Summary", "A:Z", "'Zaad Summary'!A:Z"},
		{"Bob's", "A1", "'Bob''s'!A1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sheetRange(tt.sheet, tt.cells), "sheetRange(%q, %q)", tt.sheet, tt.cells)
	}
}
