package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"bidtrack/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportBidsWorkbook(t *testing.T) {
	repo := newFakeRepo()
	ctx := context.Background()

	bidded := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	for i, name := range []string{"Acme", "Globex"} {
		b := models.Bid{
			CompanyName: name,
			CompanyNorm: name,
			JobTitle:    "Eng",
			JDLink:      "https://x.test/jd",
			Status:      models.StatusApplied,
			BiddedDate:  bidded.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, repo.Create(ctx, &b))
	}

	svc := NewExportService(repo)
	data, err := svc.ExportBids(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Bids")
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus one row per bid")

	assert.Equal(t, "Company", rows[0][1])
	// newest first
	assert.Equal(t, "Globex", rows[1][1])
	assert.Equal(t, "Acme", rows[2][1])
}
