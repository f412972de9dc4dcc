package ledger

import (
	"context"
	"fmt"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const sheetsScope = "https://www.googleapis.com/auth/spreadsheets"

// SheetsLedger stores rows on the first sheet of a Google Spreadsheet.
type SheetsLedger struct {
	svc     *sheets.Service
	sheetID string
	gridID  int64
}

// NewSheetsLedger authenticates with a service-account credentials JSON
// blob and binds to the given spreadsheet. The first sheet's grid ID is
// resolved up front (it is 0 only on a never-touched spreadsheet), and
// the header row is written if missing so a fresh sheet behaves like an
// empty ledger.
func NewSheetsLedger(ctx context.Context, credentialsJSON []byte, sheetID string) (*SheetsLedger, error) {
	creds, err := google.CredentialsFromJSON(ctx, credentialsJSON, sheetsScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse google credentials: %w", err)
	}

	svc, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	meta, err := svc.Spreadsheets.Get(sheetID).Fields("sheets.properties.sheetId").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read spreadsheet metadata: %w", err)
	}
	if len(meta.Sheets) == 0 || meta.Sheets[0].Properties == nil {
		return nil, fmt.Errorf("spreadsheet %s has no sheets", sheetID)
	}

	l := &SheetsLedger{
		svc:     svc,
		sheetID: sheetID,
		gridID:  meta.Sheets[0].Properties.SheetId,
	}
	if err := l.ensureHeader(ctx); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *SheetsLedger) ensureHeader(ctx context.Context) error {
	rows, err := l.ReadAll(ctx)
	if err != nil {
		return err
	}
	if len(rows) > 0 {
		return nil
	}

	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	_, err = l.svc.Spreadsheets.Values.Append(l.sheetID, "A1", &sheets.ValueRange{
		Values: [][]interface{}{header},
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}
	return nil
}

func (l *SheetsLedger) Append(ctx context.Context, row Row) error {
	values := row.Values()
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}

	_, err := l.svc.Spreadsheets.Values.Append(l.sheetID, "A1", &sheets.ValueRange{
		Values: [][]interface{}{cells},
	}).ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to append row: %w", err)
	}
	return nil
}

func (l *SheetsLedger) ReadAll(ctx context.Context) ([][]string, error) {
	resp, err := l.svc.Spreadsheets.Values.Get(l.sheetID, "A:H").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			row[i] = fmt.Sprint(cell)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (l *SheetsLedger) DeleteRow(ctx context.Context, index int) error {
	// DeleteDimension is 0-based and end-exclusive; index counts the
	// header as row 1.
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    l.gridID,
					Dimension:  "ROWS",
					StartIndex: int64(index - 1),
					EndIndex:   int64(index),
				},
			},
		}},
	}
	_, err := l.svc.Spreadsheets.BatchUpdate(l.sheetID, req).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to delete row %d: %w", index, err)
	}
	return nil
}
