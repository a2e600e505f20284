package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"caltext/internal/models"
)

const sheetsScope = "https://www.googleapis.com/auth/spreadsheets"

// Column layout of the spreadsheet. Row 1 is a header; data rows start at
// row 2. Indices are zero-based positions within a values row.
const (
	colDate  = 0 // A: YYYY-MM-DD
	colTime  = 1 // B: hh:mm AM/PM
	colDesc  = 2 // C: description (replaced on edit)
	colItems = 3 // D: "item (cal), item (cal)" breakdown
	colCals  = 4 // E: calories for this entry
	colTotal = 5 // F: running daily total, rewritten on every mutation
)

var _ EntryStore = (*SheetsStore)(nil)

// SheetsStore keeps the calorie log in a Google spreadsheet, one row per
// entry, appended in write order. RowRefs are absolute 1-based sheet row
// numbers, valid only for the snapshot they were listed from.
type SheetsStore struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetTitle    string
	sheetID       int64 // numeric grid id, required for row deletion
	loc           *time.Location
	logger        *slog.Logger
	now           func() time.Time
}

// NewSheetsStore authenticates with a service-account key taken from the
// GOOGLE_CREDENTIALS env var (the full JSON, not a path) and binds to the
// first sheet of the given spreadsheet.
func NewSheetsStore(ctx context.Context, spreadsheetID string, loc *time.Location, logger *slog.Logger) (*SheetsStore, error) {
	credsJSON := os.Getenv("GOOGLE_CREDENTIALS")
	if credsJSON == "" {
		return nil, fmt.Errorf("GOOGLE_CREDENTIALS environment variable is not set")
	}
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is not set")
	}

	creds, err := google.CredentialsFromJSON(ctx, []byte(credsJSON), sheetsScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account credentials: %w", err)
	}

	svc, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("failed to create Sheets service: %w", err)
	}

	meta, err := svc.Spreadsheets.Get(spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read spreadsheet metadata: %w", err)
	}
	if len(meta.Sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet %s has no sheets", spreadsheetID)
	}
	props := meta.Sheets[0].Properties

	logger.Info("Sheets store ready",
		slog.String("spreadsheet_id", spreadsheetID),
		slog.String("sheet", props.Title),
	)

	return &SheetsStore{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetTitle:    props.Title,
		sheetID:       props.SheetId,
		loc:           loc,
		logger:        logger,
		now:           time.Now,
	}, nil
}

func (s *SheetsStore) today() string {
	return s.now().In(s.loc).Format("2006-01-02")
}

func (s *SheetsStore) rangeName(a1 string) string {
	return fmt.Sprintf("'%s'!%s", s.sheetTitle, a1)
}

func (s *SheetsStore) ListToday(ctx context.Context) ([]models.Entry, error) {
	today := s.today()

	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.rangeName("A2:F")).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet values: %w", err)
	}

	var entries []models.Entry
	for i, row := range resp.Values {
		if cellString(row, colDate) != today {
			continue
		}
		// resp.Values[0] is sheet row 2, hence the +2 offset.
		entries = append(entries, entryFromRow(i+2, row))
	}
	return entries, nil
}

func (s *SheetsStore) Append(ctx context.Context, entry models.Entry) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{rowValues(entry)}}
	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, s.rangeName("A:F"), vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to append entry row: %w", err)
	}
	return nil
}

func (s *SheetsStore) UpdateAt(ctx context.Context, ref models.RowRef, entry models.Entry) error {
	rowIdx, err := sheetRow(ref)
	if err != nil {
		return err
	}

	// Only C..E change on an edit; date and time stay as logged, and the
	// total column is rewritten by RecomputeDailyTotals right after.
	vr := &sheets.ValueRange{Values: [][]interface{}{{
		entry.Description,
		models.FormatItems(entry.Items),
		entry.Calories,
	}}}
	_, err = s.svc.Spreadsheets.Values.Update(s.spreadsheetID, s.rangeName(fmt.Sprintf("C%d:E%d", rowIdx, rowIdx)), vr).
		ValueInputOption("USER_ENTERED").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to update entry row %d: %w", rowIdx, err)
	}
	return nil
}

func (s *SheetsStore) DeleteAt(ctx context.Context, ref models.RowRef) error {
	rowIdx, err := sheetRow(ref)
	if err != nil {
		return err
	}

	// DeleteDimension takes zero-based, end-exclusive grid indices.
	req := &sheets.BatchUpdateSpreadsheetRequest{Requests: []*sheets.Request{{
		DeleteDimension: &sheets.DeleteDimensionRequest{
			Range: &sheets.DimensionRange{
				SheetId:    s.sheetID,
				Dimension:  "ROWS",
				StartIndex: int64(rowIdx - 1),
				EndIndex:   int64(rowIdx),
			},
		},
	}}}
	if _, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete entry row %d: %w", rowIdx, err)
	}
	return nil
}

func (s *SheetsStore) RecomputeDailyTotals(ctx context.Context) (int, error) {
	entries, err := s.ListToday(ctx)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}

	totals := runningTotals(entries)
	data := make([]*sheets.ValueRange, len(entries))
	for i, e := range entries {
		rowIdx, err := sheetRow(e.Ref)
		if err != nil {
			return 0, err
		}
		data[i] = &sheets.ValueRange{
			Range:  s.rangeName(fmt.Sprintf("F%d", rowIdx)),
			Values: [][]interface{}{{totals[i]}},
		}
	}

	req := &sheets.BatchUpdateValuesRequest{
		ValueInputOption: "USER_ENTERED",
		Data:             data,
	}
	if _, err := s.svc.Spreadsheets.Values.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return 0, fmt.Errorf("failed to rewrite daily totals: %w", err)
	}
	return totals[len(totals)-1], nil
}

func sheetRow(ref models.RowRef) (int, error) {
	rowIdx, err := strconv.Atoi(string(ref))
	if err != nil || rowIdx < 2 {
		return 0, fmt.Errorf("invalid sheet row ref %q", ref)
	}
	return rowIdx, nil
}

// entryFromRow maps one values row onto an Entry, tolerating short rows
// and non-numeric cells the way a hand-editable sheet demands.
func entryFromRow(sheetRowIdx int, row []interface{}) models.Entry {
	return models.Entry{
		Ref:         models.RowRef(strconv.Itoa(sheetRowIdx)),
		Date:        cellString(row, colDate),
		Time:        cellString(row, colTime),
		Description: cellString(row, colDesc),
		Items:       models.ParseItems(cellString(row, colItems)),
		Calories:    cellInt(row, colCals),
		DailyTotal:  cellInt(row, colTotal),
	}
}

func rowValues(e models.Entry) []interface{} {
	return []interface{}{
		e.Date,
		e.Time,
		e.Description,
		models.FormatItems(e.Items),
		e.Calories,
		e.DailyTotal,
	}
}

func cellString(row []interface{}, idx int) string {
	if idx >= len(row) || row[idx] == nil {
		return ""
	}
	if s, ok := row[idx].(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprint(row[idx]))
}

func cellInt(row []interface{}, idx int) int {
	n, err := strconv.Atoi(cellString(row, idx))
	if err != nil {
		return 0
	}
	return n
}
