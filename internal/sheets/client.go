package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/meetlog/internal/common"
)

// spreadsheetAPI is the subset of the Sheets API the mirror needs.
type spreadsheetAPI interface {
	SheetTitles(ctx context.Context) ([]string, error)
	AddSheet(ctx context.Context, title string, header []any, format bool) error
	AppendRow(ctx context.Context, title string, row []any) error
	ReadRows(ctx context.Context, title string) ([][]any, error)
}

// googleAPI talks to one spreadsheet through the Sheets v4 service.
type googleAPI struct {
	service       *sheets.Service
	spreadsheetID string
}

// createSheetsService creates a Google Sheets API service.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		client := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{sheets.SpreadsheetsScope},
		}

		token := &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		}

		tokenSource = client.TokenSource(ctx, token)
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}

func (g *googleAPI) SheetTitles(ctx context.Context) ([]string, error) {
	resp, err := g.service.Spreadsheets.Get(g.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return nil, classify(fmt.Errorf("unable to access spreadsheet %s: %w", g.spreadsheetID, err))
	}

	titles := make([]string, 0, len(resp.Sheets))
	for _, sh := range resp.Sheets {
		if sh.Properties != nil {
			titles = append(titles, sh.Properties.Title)
		}
	}
	return titles, nil
}

func (g *googleAPI) AddSheet(ctx context.Context, title string, header []any, format bool) error {
	resp, err := g.service.Spreadsheets.BatchUpdate(g.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: title},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return classify(fmt.Errorf("add sheet %q: %w", title, err))
	}

	_, err = g.service.Spreadsheets.Values.Update(g.spreadsheetID, a1(title), &sheets.ValueRange{
		Values: [][]any{header},
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return classify(fmt.Errorf("write header of %q: %w", title, err))
	}

	if !format || len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil {
		return nil
	}
	return g.formatHeader(ctx, resp.Replies[0].AddSheet.Properties.SheetId, len(header))
}

// formatHeader makes the header row bold and frozen.
func (g *googleAPI) formatHeader(ctx context.Context, sheetID int64, columns int) error {
	requests := []*sheets.Request{
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    0,
					EndRowIndex:      1,
					StartColumnIndex: 0,
					EndColumnIndex:   int64(columns),
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat: &sheets.TextFormat{Bold: true},
					},
				},
				Fields: "userEnteredFormat.textFormat",
			},
		},
		{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{
					SheetId: sheetID,
					GridProperties: &sheets.GridProperties{
						FrozenRowCount: 1,
					},
				},
				Fields: "gridProperties.frozenRowCount",
			},
		},
	}

	_, err := g.service.Spreadsheets.BatchUpdate(g.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	if err != nil {
		return classify(fmt.Errorf("format header: %w", err))
	}
	return nil
}

func (g *googleAPI) AppendRow(ctx context.Context, title string, row []any) error {
	_, err := g.service.Spreadsheets.Values.Append(g.spreadsheetID, a1(title), &sheets.ValueRange{
		Values: [][]any{row},
	}).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return classify(fmt.Errorf("append to %q: %w", title, err))
	}
	return nil
}

func (g *googleAPI) ReadRows(ctx context.Context, title string) ([][]any, error) {
	resp, err := g.service.Spreadsheets.Values.Get(g.spreadsheetID, a1(title)).Context(ctx).Do()
	if err != nil {
		return nil, classify(fmt.Errorf("read %q: %w", title, err))
	}
	return resp.Values, nil
}

// a1 quotes a sheet title for use as an A1 range.
func a1(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

// classify marks API errors for the retry loop: 429 and 5xx are retried,
// other client errors are permanent. Transport failures are retried unless
// the caller cancelled.
func classify(err error) error {
	if err == nil || errors.Is(err, context.Canceled) {
		return err
	}
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return &common.RetryableError{Err: err, Retryable: true}
	}
	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", common.ErrRateLimit, err)
	case apiErr.Code >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %w", common.ErrSheetsUnavailable, err)
	case apiErr.Code >= http.StatusBadRequest:
		return common.Permanent(err)
	}
	return err
}
