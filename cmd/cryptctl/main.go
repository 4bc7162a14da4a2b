// Package main はCLIツールのエントリポイント。
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

var (
	apiURL  string
	output  string
	timeout time.Duration
)

// HTTPクライアント
var httpClient *http.Client

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cryptctl",
		Short: "Crypto Audit Service CLI",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if apiURL == "" {
				apiURL = os.Getenv("CRYPTCTL_API_URL")
			}
			apiURL = strings.TrimRight(apiURL, "/")
			httpClient = &http.Client{Timeout: timeout}
		},
	}

	// グローバルフラグ
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "API endpoint URL (or set CRYPTCTL_API_URL)")
	rootCmd.PersistentFlags().StringVar(&output, "output", "text", "Output format: text, json")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")

	// サブコマンド登録
	rootCmd.AddCommand(cipherCmd("encrypt", "Encrypt data with an RSA public key"))
	rootCmd.AddCommand(cipherCmd("decrypt", "Decrypt base64 ciphertext with an RSA private key"))
	rootCmd.AddCommand(logsCmd())
	rootCmd.AddCommand(countCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(versionCmd())
	return rootCmd
}

// versionCmd はバージョン情報を表示する。
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cryptctl version %s\n", version)
		},
	}
}

// cipherCmd は暗号化/復号コマンド。どちらも同じリクエスト形式を使う。
func cipherCmd(action, short string) *cobra.Command {
	var keyFile, data string
	cmd := &cobra.Command{
		Use:   action,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			if apiURL == "" {
				return fmt.Errorf("--api-url is required (or set CRYPTCTL_API_URL)")
			}
			key, err := os.ReadFile(keyFile)
			if err != nil {
				return fmt.Errorf("reading key file: %w", err)
			}

			payload, err := json.Marshal(map[string]string{"key": string(key), "data": data})
			if err != nil {
				return fmt.Errorf("encoding request: %w", err)
			}

			body, err := doRequest(http.MethodPost, apiURL+"/api/v1/"+action, payload)
			if err != nil {
				return err
			}

			if output == "json" {
				fmt.Fprintln(cmd.OutOrStdout(), string(body))
				return nil
			}
			var result struct {
				Data string `json:"data"`
			}
			if err := json.Unmarshal(body, &result); err != nil {
				return fmt.Errorf("parsing response: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Data)
			return nil
		},
	}
	cmd.Flags().StringVar(&keyFile, "key-file", "", "Path to PEM or JWK key file (required)")
	cmd.Flags().StringVar(&data, "data", "", "Plaintext or base64 ciphertext (required)")
	cmd.MarkFlagRequired("key-file")
	cmd.MarkFlagRequired("data")
	return cmd
}

// logsCmd は監査ログ一覧の取得コマンド。
func logsCmd() *cobra.Command {
	var size, offset int
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "List audit log entries (oldest first)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if apiURL == "" {
				return fmt.Errorf("--api-url is required (or set CRYPTCTL_API_URL)")
			}

			url := fmt.Sprintf("%s/api/v1/logs?size=%d&offset=%d", apiURL, size, offset)
			body, err := doRequest(http.MethodGet, url, nil)
			if err != nil {
				return err
			}

			if output == "json" {
				fmt.Fprintln(cmd.OutOrStdout(), string(body))
				return nil
			}
			var entries []struct {
				ID        string `json:"id"`
				Timestamp int64  `json:"timestamp"`
				IP        string `json:"ip"`
				Data      string `json:"data"`
			}
			if err := json.Unmarshal(body, &entries); err != nil {
				return fmt.Errorf("parsing response: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-36s %-20s %-16s %s\n", "ID", "TIMESTAMP", "IP", "DATA")
			for _, e := range entries {
				ts := time.Unix(e.Timestamp, 0).UTC().Format("2006-01-02 15:04:05")
				fmt.Fprintf(out, "%-36s %-20s %-16s %s\n", e.ID, ts, e.IP, e.Data)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&size, "size", 25, "Page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of entries to skip")
	return cmd
}

// countCmd は監査ログ件数の取得コマンド。
func countCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Show the total number of audit log entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			if apiURL == "" {
				return fmt.Errorf("--api-url is required (or set CRYPTCTL_API_URL)")
			}

			body, err := doRequest(http.MethodGet, apiURL+"/api/v1/logs/count", nil)
			if err != nil {
				return err
			}

			if output == "json" {
				fmt.Fprintln(cmd.OutOrStdout(), string(body))
				return nil
			}
			var result struct {
				Total int64 `json:"total"`
			}
			if err := json.Unmarshal(body, &result); err != nil {
				return fmt.Errorf("parsing response: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Total)
			return nil
		},
	}
}

// doRequest はAPIを呼び出し、200以外はエラーとして返す。
func doRequest(method, url string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, handleErrorResponse(resp.StatusCode, body)
	}
	return body, nil
}

func handleErrorResponse(statusCode int, body []byte) error {
	var errResp struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&errResp); err == nil && errResp.Message != "" {
		return fmt.Errorf("Error: %s (%s)", errResp.Message, errResp.Code)
	}
	return fmt.Errorf("Error: server returned status %d", statusCode)
}
