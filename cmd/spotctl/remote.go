package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spot-resolver/internal/config"
	"github.com/spot-resolver/internal/infrastructure/auth"
	"github.com/spot-resolver/internal/usecase/dto"
)

type remoteOptions struct {
	baseURL      string
	refreshURL   string
	accessToken  string
	refreshToken string
	timeout      time.Duration
}

func newRemoteCmd(root *rootOptions) *cobra.Command {
	opts := &remoteOptions{}

	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Call a running spot resolver API",
	}
	cmd.PersistentFlags().StringVar(&opts.baseURL, "base-url", envOr("SPOT_API_URL", "http://localhost:8080"), "API base URL")
	cmd.PersistentFlags().StringVar(&opts.refreshURL, "refresh-url", os.Getenv("AUTH_REFRESH_URL"), "Token refresh endpoint")
	cmd.PersistentFlags().StringVar(&opts.accessToken, "access-token", os.Getenv("SPOT_ACCESS_TOKEN"), "Bearer access token")
	cmd.PersistentFlags().StringVar(&opts.refreshToken, "refresh-token", os.Getenv("SPOT_REFRESH_TOKEN"), "Refresh token")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")

	cmd.AddCommand(newRemoteResolveCmd(root, opts))
	return cmd
}

func newRemoteResolveCmd(root *rootOptions, opts *remoteOptions) *cobra.Command {
	var req dto.ResolveRequest

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "POST /api/v1/resolve",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := root.logger()
			defer func() { _ = log.Sync() }()

			var out interface{}
			if err := opts.post(cmd.Context(), log, "/api/v1/resolve", req, &out); err != nil {
				return err
			}
			return root.print(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&req.Date, "date", time.Now().UTC().Format("2006-01-02"), "Dataset date (yyyy-MM-dd)")
	cmd.Flags().StringVar(&req.Time, "time", "", "Dataset time (HH:mm)")
	cmd.Flags().Float64Var(&req.Lat, "lat", 0, "Click latitude")
	cmd.Flags().Float64Var(&req.Lng, "lng", 0, "Click longitude")
	cmd.Flags().StringVar(&req.Level, "level", "", "Surfer level")
	cmd.Flags().Float64Var(&req.RadiusKm, "radius-km", 0, "Override nearest-match radius")
	return cmd
}

// post отправляет JSON и декодирует ответ; токены обновляются транспортом
func (o *remoteOptions) post(ctx context.Context, log *zap.Logger, path string, body, out interface{}) error {
	if ctx == nil {
		ctx = context.Background()
	}

	transport := auth.NewTransport(&config.AuthConfig{
		RefreshURL:     o.refreshURL,
		RequestTimeout: o.timeout,
	}, nil, log)
	transport.SetTokens(o.accessToken, o.refreshToken)

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	url := strings.TrimRight(o.baseURL, "/") + path
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := transport.Client().Do(httpReq)
	if err != nil {
		return fmt.Errorf("call %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	log.Debug("Remote call done", zap.String("path", path), zap.Int("status", resp.StatusCode))
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
