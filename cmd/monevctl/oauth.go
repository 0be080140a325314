package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	gsheet "monev/internal/sheets/google"
)

const oauthTimeout = 5 * time.Minute

// callbackHandler forwards the authorization code for the expected state.
func callbackHandler(state string, codes chan<- string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if e := q.Get("error"); e != "" {
			http.Error(w, "OAuth error: "+e, http.StatusBadRequest)
			return
		}
		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}
		code := q.Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}
		fmt.Fprintln(w, "Otorisasi berhasil. Jendela ini boleh ditutup.")
		select {
		case codes <- code:
		default:
		}
	}
}

func newOAuthInitCommand(a *app) *cobra.Command {
	var port, out string

	cmd := &cobra.Command{
		Use:   "oauth-init",
		Short: "Authorize Google Sheets access and store the OAuth token",
		Long: `Run the OAuth consent flow for the client in GOOGLE_OAUTH_CLIENT_FILE.

The client must list http://localhost:<port>/callback as a redirect URI.
The token is written to GOOGLE_OAUTH_TOKEN_FILE unless --out is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.GoogleOAuthClientFile == "" {
				return errors.New("GOOGLE_OAUTH_CLIENT_FILE is not set")
			}
			if out == "" {
				out = a.cfg.GoogleOAuthTokenFile
			}
			if out == "" {
				out = "token.json"
			}

			clientJSON, err := os.ReadFile(a.cfg.GoogleOAuthClientFile)
			if err != nil {
				return fmt.Errorf("read oauth client file: %w", err)
			}
			oauthCfg, err := gsheet.OAuthConfig(clientJSON)
			if err != nil {
				return err
			}
			oauthCfg.RedirectURL = "http://localhost:" + port + "/callback"

			state := uuid.NewString()
			codes := make(chan string, 1)
			mux := http.NewServeMux()
			mux.Handle("GET /callback", callbackHandler(state, codes))
			srv := &http.Server{Addr: ":" + port, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

			serveErr := make(chan error, 1)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serveErr <- err
				}
			}()
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			fmt.Fprintf(cmd.OutOrStdout(), "Open this URL to authorize:\n%s\n",
				oauthCfg.AuthCodeURL(state, oauth2.AccessTypeOffline))

			ctx, cancel := context.WithTimeout(cmd.Context(), oauthTimeout)
			defer cancel()

			var code string
			select {
			case code = <-codes:
			case err := <-serveErr:
				return fmt.Errorf("callback server: %w", err)
			case <-ctx.Done():
				return fmt.Errorf("authorization not completed: %w", ctx.Err())
			}

			tok, err := oauthCfg.Exchange(ctx, code)
			if err != nil {
				return fmt.Errorf("token exchange: %w", err)
			}
			if err := gsheet.SaveToken(out, tok); err != nil {
				return err
			}
			a.logger.Info("OAuth token saved", "path", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&port, "port", "8085", "local port for the OAuth redirect")
	cmd.Flags().StringVar(&out, "out", "", "token output path")
	return cmd
}
