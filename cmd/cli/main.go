package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mypocket/mypocket/internal/infrastructure/postgres"
)

var (
	baseURL string
	timeout time.Duration
	token   string
	userID  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mypocket-cli",
		Short: "MyPocket CLI tool",
		Long:  `A command line interface for interacting with the MyPocket API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the MyPocket API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "Bearer token for authenticated servers")
	rootCmd.PersistentFlags().StringVar(&userID, "user", "", "User ID header for servers without token auth")

	rootCmd.AddCommand(balanceCmd())
	rootCmd.AddCommand(feedCmd())
	rootCmd.AddCommand(summaryCmd())
	rootCmd.AddCommand(addCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show the wallet balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			var profile map[string]any
			if err := getJSON("/api/v1/profile/", &profile); err != nil {
				return err
			}

			fmt.Printf("Balance: %v\n", profile["wallet_balance"])
			return nil
		},
	}
}

func feedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "feed",
		Short: "Show the transaction feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			var feed struct {
				Transactions []map[string]any `json:"transactions"`
			}
			if err := getJSON("/api/v1/feed/", &feed); err != nil {
				return err
			}

			for _, t := range feed.Transactions {
				kind, _ := t["kind"].(string)
				title, _ := t["title"].(string)
				sign := "-"
				if kind == "topup" {
					sign = "+"
				}
				fmt.Printf("%-8s %-30s %s%v\n", kind, truncate(title, 30), sign, t["amount"])
			}
			return nil
		},
	}
}

func summaryCmd() *cobra.Command {
	var month, year int
	var tz string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show monthly and category analytics",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/summary"
			params := []string{}
			if month > 0 {
				params = append(params, fmt.Sprintf("month=%d", month))
			}
			if year > 0 {
				params = append(params, fmt.Sprintf("year=%d", year))
			}
			if tz != "" {
				params = append(params, "tz="+tz)
			}
			if len(params) > 0 {
				path += "?" + strings.Join(params, "&")
			}

			var summary map[string]any
			if err := getJSON(path, &summary); err != nil {
				return err
			}

			printJSON(summary)
			return nil
		},
	}

	cmd.Flags().IntVar(&month, "month", 0, "Month (1-12, defaults to current)")
	cmd.Flags().IntVar(&year, "year", 0, "Year (defaults to current)")
	cmd.Flags().StringVar(&tz, "tz", "", "IANA timezone for month boundaries")
	return cmd
}

func addCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction",
	}

	var title, category, source, notes, date, amount string

	expenseCmd := &cobra.Command{
		Use:   "expense",
		Short: "Record an expense",
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{
				"title":    title,
				"category": category,
				"amount":   amount,
			}
			if notes != "" {
				body["notes"] = notes
			}
			if date != "" {
				body["date"] = date
			}

			var created map[string]any
			if err := postJSON("/api/v1/transactions/expenses", body, &created); err != nil {
				return err
			}

			printJSON(created)
			return nil
		},
	}
	expenseCmd.Flags().StringVar(&title, "title", "", "Expense title")
	expenseCmd.Flags().StringVar(&category, "category", "Other", "Expense category")
	expenseCmd.Flags().StringVar(&amount, "amount", "", "Amount")
	expenseCmd.Flags().StringVar(&notes, "notes", "", "Optional notes")
	expenseCmd.Flags().StringVar(&date, "date", "", "Date (RFC 3339 or YYYY-MM-DD)")

	topupCmd := &cobra.Command{
		Use:   "topup",
		Short: "Record a top-up",
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{
				"title":  title,
				"source": source,
				"amount": amount,
			}
			if notes != "" {
				body["notes"] = notes
			}
			if date != "" {
				body["date"] = date
			}

			var created map[string]any
			if err := postJSON("/api/v1/transactions/topups", body, &created); err != nil {
				return err
			}

			printJSON(created)
			return nil
		},
	}
	topupCmd.Flags().StringVar(&title, "title", "", "Top-up title")
	topupCmd.Flags().StringVar(&source, "source", "Manual", "Top-up source")
	topupCmd.Flags().StringVar(&amount, "amount", "", "Amount")
	topupCmd.Flags().StringVar(&notes, "notes", "", "Optional notes")
	topupCmd.Flags().StringVar(&date, "date", "", "Date (RFC 3339 or YYYY-MM-DD)")

	cmd.AddCommand(expenseCmd)
	cmd.AddCommand(topupCmd)
	return cmd
}

func exportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the feed as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := doRequest(http.MethodGet, "/api/v1/export", nil)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				body, _ := io.ReadAll(resp.Body)
				return fmt.Errorf("export failed (status %d): %s", resp.StatusCode, string(body))
			}

			out := os.Stdout
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}

			_, err = io.Copy(out, resp.Body)
			return err
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write CSV to a file instead of stdout")
	return cmd
}

func migrateCmd() *cobra.Command {
	var databaseURL, path string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postgres.RunMigrations(databaseURL, path)
		},
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postgres.RunMigrationsDown(databaseURL, path)
		},
	}

	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "Database URL")
	cmd.PersistentFlags().StringVar(&path, "path", "migrations", "Migrations directory")

	cmd.AddCommand(upCmd)
	cmd.AddCommand(downCmd)
	return cmd
}

func doRequest(method, path string, body io.Reader) (*http.Response, error) {
	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		return nil, err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	return client.Do(req)
}

func getJSON(path string, v any) error {
	resp, err := doRequest(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	return json.Unmarshal(respBody, v)
}

func postJSON(path string, body, v any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	resp, err := doRequest(http.MethodPost, path, strings.NewReader(string(payload)))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	return json.Unmarshal(respBody, v)
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("failed to render response: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
