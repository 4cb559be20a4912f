// Package gsheets reads and writes report workbooks through the Google Sheets API
package gsheets

import (
	"context"
	"fmt"
	"log"
	"strings"

	"salondesk/domain/ticket"
	"salondesk/internal/errors"

	"github.com/xuri/excelize/v2"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Client resolves sheet names to spreadsheet IDs and talks to the Sheets API
type Client struct {
	svc *sheets.Service
	ids map[string]string
}

// New creates a client authenticated with a service account key file
func New(ctx context.Context, credentialsFile string, ids map[string]string) (*Client, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, errors.ExternalServiceError("google sheets", err)
	}
	return NewWithService(svc, ids), nil
}

// NewWithService wraps an already configured service
func NewWithService(svc *sheets.Service, ids map[string]string) *Client {
	return &Client{svc: svc, ids: ids}
}

// Name identifies the source in logs
func (c *Client) Name() string {
	return "gsheets"
}

func (c *Client) spreadsheetID(sheet string) (string, error) {
	id, ok := c.ids[sheet]
	if !ok || id == "" {
		return "", errors.NotFound(fmt.Sprintf("spreadsheet id for %q", sheet))
	}
	return id, nil
}

// quoteTab makes a tab title safe for A1 notation
func quoteTab(tab string) string {
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'"
}

// Tabs lists the tab titles of a spreadsheet in order
func (c *Client) Tabs(ctx context.Context, sheet string) ([]string, error) {
	id, err := c.spreadsheetID(sheet)
	if err != nil {
		return nil, err
	}

	resp, err := c.svc.Spreadsheets.Get(id).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return nil, errors.ExternalServiceError("google sheets", fmt.Errorf("failed to open %s: %w", sheet, err))
	}

	tabs := make([]string, 0, len(resp.Sheets))
	for _, s := range resp.Sheets {
		if s.Properties != nil {
			tabs = append(tabs, s.Properties.Title)
		}
	}
	return tabs, nil
}

// ReadTab returns every row of a tab as the text shown in the sheet
func (c *Client) ReadTab(ctx context.Context, sheet, tab string) ([][]string, error) {
	id, err := c.spreadsheetID(sheet)
	if err != nil {
		return nil, err
	}

	resp, err := c.svc.Spreadsheets.Values.Get(id, quoteTab(tab)).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, errors.ExternalServiceError("google sheets", fmt.Errorf("failed to read %s/%s: %w", sheet, tab, err))
	}

	rows := make([][]string, len(resp.Values))
	for i, values := range resp.Values {
		row := make([]string, len(values))
		for j, v := range values {
			row[j] = fmt.Sprint(v)
		}
		rows[i] = row
	}
	return rows, nil
}

// UpdateCells writes edited cells of one row in a single batch request
func (c *Client) UpdateCells(ctx context.Context, origin ticket.Origin, values map[int]string) error {
	if len(values) == 0 {
		return nil
	}
	id, err := c.spreadsheetID(origin.Sheet)
	if err != nil {
		return err
	}

	req := &sheets.BatchUpdateValuesRequest{ValueInputOption: "USER_ENTERED"}
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, origin.Row)
		if err != nil {
			return fmt.Errorf("failed to address column %d row %d: %w", col, origin.Row, err)
		}
		req.Data = append(req.Data, &sheets.ValueRange{
			Range:  quoteTab(origin.Tab) + "!" + cell,
			Values: [][]interface{}{{v}},
		})
	}

	if _, err := c.svc.Spreadsheets.Values.BatchUpdate(id, req).Context(ctx).Do(); err != nil {
		return errors.ExternalServiceError("google sheets", fmt.Errorf("failed to update %s/%s row %d: %w", origin.Sheet, origin.Tab, origin.Row, err))
	}
	log.Printf("[GSheets] Updated %d cells on %s/%s row %d", len(values), origin.Sheet, origin.Tab, origin.Row)
	return nil
}
