package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"expensetracker/internal/core"
	"expensetracker/internal/log"
	"expensetracker/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheet         string
}

var _ sheets.Mirror = (*Client)(nil)

type Config struct {
	SpreadsheetID      string
	SheetName          string
	ServiceAccountJSON string
	ServiceAccountFile string
	Logger             *log.Logger
}

// New creates a Sheets client authenticated with a service account.
// Credentials come from the inline JSON, the file, or
// GOOGLE_APPLICATION_CREDENTIALS in that order.
func New(ctx context.Context, cfg Config) (*Client, error) {
	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	sheet := strings.TrimSpace(cfg.SheetName)
	if sheet == "" {
		sheet = "Expenses"
	}

	credentials, err := loadCredentials(cfg.ServiceAccountJSON, cfg.ServiceAccountFile)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentials),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger.WithComponent(log.ComponentSheets).InfoContext(ctx, "Google Sheets mirror ready",
		log.FieldOperation, log.OpStartup,
		"sheet", sheet)

	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheet: sheet}, nil
}

func loadCredentials(inline, file string) ([]byte, error) {
	inline = strings.TrimSpace(inline)
	file = strings.TrimSpace(file)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case inline != "":
		return []byte(inline), nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

func (c *Client) Upsert(ctx context.Context, e core.Expense) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	ids, err := c.readIDs(ctx)
	if err != nil {
		return err
	}

	writeHeader, err := needsHeader(ids)
	if err != nil {
		return fmt.Errorf("sheet %s: %w", c.sheet, err)
	}
	if writeHeader {
		if err := c.update(ctx, rowRange(c.sheet, 1), [][]any{header}); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	row := findRow(ids, e.ID)
	if row == 0 {
		row = nextRow(ids)
	}

	if err := c.update(ctx, rowRange(c.sheet, row), [][]any{expenseRow(e)}); err != nil {
		return fmt.Errorf("write expense %d to row %d: %w", e.ID, row, err)
	}
	return nil
}

// Remove clears the row in place so row numbers of other expenses stay stable.
func (c *Client) Remove(ctx context.Context, id int64) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	ids, err := c.readIDs(ctx)
	if err != nil {
		return err
	}
	row := findRow(ids, id)
	if row == 0 {
		return nil
	}

	_, err = c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rowRange(c.sheet, row), &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear row %d in %s: %w", row, c.sheet, err)
	}
	return nil
}

func (c *Client) Replace(ctx context.Context, expenses []core.Expense) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	all := fmt.Sprintf("%s!A:%s", c.sheet, lastColumn)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, all, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", all, err)
	}

	if err := c.update(ctx, fmt.Sprintf("%s!A1", c.sheet), replaceValues(expenses)); err != nil {
		return fmt.Errorf("write %d expenses: %w", len(expenses), err)
	}
	return nil
}

func (c *Client) readIDs(ctx context.Context) ([][]any, error) {
	rng := fmt.Sprintf("%s!A:A", c.sheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}

func (c *Client) update(ctx context.Context, rng string, values [][]any) error {
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("RAW").Context(ctx).Do()
	return err
}
