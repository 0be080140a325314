package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	goauth "golang.org/x/oauth2/google"
	"golang.org/x/sync/errgroup"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"monev/internal/core"
	ports "monev/internal/sheets"
)

// Ensure interface conformance
var _ ports.SnapshotExporter = (*Exporter)(nil)

// maxParallelWrites bounds concurrent tab writes to stay under the per-user quota.
const maxParallelWrites = 2

// Config selects the spreadsheet and how to authenticate. Service account
// credentials win over an OAuth client and token.
type Config struct {
	SpreadsheetID      string
	ServiceAccountJSON string
	ServiceAccountFile string
	OAuthClientFile    string
	OAuthTokenFile     string
}

// Exporter mirrors dashboard snapshots into one Google spreadsheet, one tab
// per collection plus the action summary.
type Exporter struct {
	svc           *gsheet.Service
	spreadsheetID string
}

// NewExporter builds an Exporter from cfg.
func NewExporter(ctx context.Context, cfg Config) (*Exporter, error) {
	id := strings.TrimSpace(cfg.SpreadsheetID)
	if id == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Exporter{svc: svc, spreadsheetID: id}, nil
}

// NewWithService wraps an existing Sheets service.
func NewWithService(svc *gsheet.Service, spreadsheetID string) *Exporter {
	return &Exporter{svc: svc, spreadsheetID: spreadsheetID}
}

// newSheetsService initializes a Sheets Service from service account
// credentials, or from an OAuth client plus a token saved by oauth-init.
func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	saJSON := strings.TrimSpace(cfg.ServiceAccountJSON)
	saFile := strings.TrimSpace(cfg.ServiceAccountFile)

	switch {
	case saJSON != "" || saFile != "":
		credentialsJSON := []byte(saJSON)
		if saJSON == "" {
			var err error
			credentialsJSON, err = os.ReadFile(saFile)
			if err != nil {
				return nil, fmt.Errorf("read service account file: %w", err)
			}
		}
		slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
			"credentials_size", len(credentialsJSON),
			"scope", gsheet.SpreadsheetsScope)

		return gsheet.NewService(ctx,
			goption.WithCredentialsJSON(credentialsJSON),
			goption.WithScopes(gsheet.SpreadsheetsScope))

	case cfg.OAuthClientFile != "":
		return newOAuthService(ctx, cfg.OAuthClientFile, cfg.OAuthTokenFile)

	default:
		return nil, errors.New("missing credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_OAUTH_CLIENT_FILE)")
	}
}

func newOAuthService(ctx context.Context, clientFile, tokenFile string) (*gsheet.Service, error) {
	if tokenFile == "" {
		return nil, errors.New("missing oauth token (set GOOGLE_OAUTH_TOKEN_FILE or run monevctl oauth-init)")
	}
	clientJSON, err := os.ReadFile(clientFile)
	if err != nil {
		return nil, fmt.Errorf("read oauth client file: %w", err)
	}
	oauthCfg, err := OAuthConfig(clientJSON)
	if err != nil {
		return nil, err
	}
	tok, err := LoadToken(tokenFile)
	if err != nil {
		return nil, err
	}

	// Token refreshes and API calls share the pooled transport.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, newHTTPClientWithPooling())
	slog.InfoContext(ctx, "Creating Google Sheets service with OAuth token", "token_file", tokenFile)

	return gsheet.NewService(ctx, goption.WithHTTPClient(oauthCfg.Client(ctx, tok)))
}

// OAuthConfig parses an OAuth client JSON for the Sheets scope.
func OAuthConfig(clientJSON []byte) (*oauth2.Config, error) {
	cfg, err := goauth.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("oauth config: %w", err)
	}
	return cfg, nil
}

// LoadToken reads a token written by SaveToken.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read oauth token: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("parse oauth token: %w", err)
	}
	return &tok, nil
}

// SaveToken writes tok to path readable only by the owner.
func SaveToken(path string, tok *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open token file: %w", err)
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(tok); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

// newHTTPClientWithPooling creates an HTTP client optimized for Google Sheets API
// with connection pooling, proper timeouts, and keep-alive settings
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   maxParallelWrites * 2,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   60 * time.Second,
	}
}

// Export creates missing tabs, then clears and rewrites every tab.
func (e *Exporter) Export(ctx context.Context, snap core.Snapshot) error {
	if e.svc == nil {
		return errors.New("sheets service not initialized")
	}
	tabs := ports.Tabs(snap)

	if err := e.ensureTabs(ctx, tabs); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelWrites)
	for _, tab := range tabs {
		g.Go(func() error {
			return e.writeTab(gctx, tab)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Snapshot exported to Google Sheets",
		"spreadsheet_id", e.spreadsheetID,
		"tabs", len(tabs),
		"budgets", len(snap.Budgets))
	return nil
}

func (e *Exporter) ensureTabs(ctx context.Context, tabs []ports.Tab) error {
	ss, err := e.svc.Spreadsheets.Get(e.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet: %w", err)
	}

	existing := make(map[string]bool, len(ss.Sheets))
	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			existing[sh.Properties.Title] = true
		}
	}

	var reqs []*gsheet.Request
	for _, t := range tabs {
		if !existing[t.Title] {
			reqs = append(reqs, &gsheet.Request{
				AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: t.Title}},
			})
		}
	}
	if len(reqs) == 0 {
		return nil
	}

	_, err = e.svc.Spreadsheets.BatchUpdate(e.spreadsheetID, &gsheet.BatchUpdateSpreadsheetRequest{Requests: reqs}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("add %d tabs: %w", len(reqs), err)
	}
	slog.InfoContext(ctx, "Created spreadsheet tabs", "count", len(reqs))
	return nil
}

func (e *Exporter) writeTab(ctx context.Context, tab ports.Tab) error {
	rng := quoteTitle(tab.Title)

	if _, err := e.svc.Spreadsheets.Values.Clear(e.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).
		Do(); err != nil {
		return fmt.Errorf("clear tab %q: %w", tab.Title, err)
	}

	vr := &gsheet.ValueRange{Values: tab.Rows}
	if _, err := e.svc.Spreadsheets.Values.Update(e.spreadsheetID, rng+"!A1", vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do(); err != nil {
		return fmt.Errorf("write tab %q: %w", tab.Title, err)
	}
	return nil
}

// quoteTitle quotes a sheet title for A1 notation.
func quoteTitle(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}
