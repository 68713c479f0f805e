package services

import (
	"context"

	"bidtrack/internal/models"
	pgrepo "bidtrack/internal/repositories/postgres"
	"bidtrack/internal/utils"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Bids"

type ExportService interface {
	// ExportBids renders every bid, newest first, into a single-sheet .xlsx
	// workbook and returns the encoded bytes.
	ExportBids(ctx context.Context) ([]byte, error)
}

type exportService struct {
	bids pgrepo.BidRepository
}

func NewExportService(bids pgrepo.BidRepository) ExportService {
	return &exportService{bids: bids}
}

func (s *exportService) ExportBids(ctx context.Context) ([]byte, error) {
	const op = "ExportService.ExportBids"

	bids, err := s.bids.ListAll(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load bids", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create sheet", err)
	}
	f.DeleteSheet("Sheet1")

	headers := []string{
		"ID", "Company", "Job Title", "JD Link", "Description",
		"Status", "Interview Status", "Bidded Date", "Interview Scheduled",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(exportSheet, cell, header)
	}

	for rowIdx, b := range bids {
		row := []any{
			b.ID, b.CompanyName, b.JobTitle, b.JDLink, b.Description,
			b.Status, b.InterviewStatus,
			b.BiddedDate.Format("2006-01-02 15:04:05"),
			formatNullable(b),
		}
		for col, v := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			f.SetCellValue(exportSheet, cell, v)
		}
	}

	for i := 1; i <= len(headers); i++ {
		colName, _ := excelize.ColumnNumberToName(i)
		f.SetColWidth(exportSheet, colName, colName, 20)
	}
	f.SetActiveSheet(index)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to encode workbook", err)
	}
	return buf.Bytes(), nil
}

func formatNullable(b models.Bid) string {
	if b.InterviewScheduled == nil {
		return ""
	}
	return b.InterviewScheduled.Format("2006-01-02 15:04:05")
}
