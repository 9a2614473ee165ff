// Package client contains Cobra CLI commands for Ora.
package client

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// BaseURLFunc provides the base HTTP API URL (e.g., from env or flag).
type BaseURLFunc func() string

// NewFeedCommand constructs the `feed` command group and subcommands.
func NewFeedCommand(baseURL BaseURLFunc) *cobra.Command {
	feedCmd := &cobra.Command{Use: "feed", Short: "Feed operations"}

	feedCmd.AddCommand(
		newFeedCreateCommand(baseURL),
		newFeedPushCommand(baseURL),
		newFeedDataCommand(baseURL),
		newFeedCleanupCommand(baseURL),
		newFeedStatsCommand(baseURL),
		newFeedListCommand(baseURL),
		newFeedSubscribeCommand(baseURL),
	)

	return feedCmd
}

// producerFromEnv returns the producer identity from ORA_PRODUCER.
func producerFromEnv() string {
	return os.Getenv("ORA_PRODUCER")
}

func postJSON(baseURL BaseURLFunc, path string, body any, producer string) (*http.Response, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest(http.MethodPost, baseURL()+path, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if producer != "" {
		req.Header.Set("Authorization", "Bearer "+producer)
	}
	return http.DefaultClient.Do(req)
}

// newFeedCreateCommand constructs the `feed create` subcommand.
func newFeedCreateCommand(baseURL BaseURLFunc) *cobra.Command {
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create feed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, _ := cmd.Flags().GetString("name")
			resp, err := postJSON(baseURL, "/v1/feeds/create", map[string]string{"feed": name}, "")
			if err != nil {
				return err
			}
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			fmt.Fprintln(cmd.OutOrStdout(), "status:", resp.Status)
			return nil
		},
	}
	createCmd.Flags().String("name", "default", "Feed name")
	return createCmd
}

// newFeedPushCommand constructs the `feed push` subcommand.
func newFeedPushCommand(baseURL BaseURLFunc) *cobra.Command {
	pushCmd := &cobra.Command{
		Use:   "push",
		Short: "Push a payload onto a feed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			feed, _ := cmd.Flags().GetString("feed")
			data, _ := cmd.Flags().GetString("data")
			producer, _ := cmd.Flags().GetString("producer")
			if producer == "" {
				producer = producerFromEnv()
			}
			resp, err := postJSON(baseURL, "/v1/feeds/push",
				map[string]any{"feed": feed, "payload": []byte(data)}, producer)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("push failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))
			}
			fmt.Fprint(cmd.OutOrStdout(), string(body))
			return nil
		},
	}
	pushCmd.Flags().String("feed", "default", "Feed name")
	pushCmd.Flags().String("data", "", "Payload data")
	pushCmd.Flags().String("producer", "", "Producer identity (default ORA_PRODUCER)")
	return pushCmd
}

// newFeedDataCommand constructs the `feed data` subcommand.
func newFeedDataCommand(baseURL BaseURLFunc) *cobra.Command {
	dataCmd := &cobra.Command{
		Use:   "data",
		Short: "Read live feed data",
		RunE: func(cmd *cobra.Command, _ []string) error {
			feed, _ := cmd.Flags().GetString("feed")
			filter, _ := cmd.Flags().GetString("filter")
			limit, _ := cmd.Flags().GetInt("limit")

			q := url.Values{}
			q.Set("feed", feed)
			if filter != "" {
				q.Set("filter", filter)
			}
			if limit > 0 {
				q.Set("limit", fmt.Sprintf("%d", limit))
			}
			resp, err := http.Get(baseURL() + "/v1/feeds/data?" + q.Encode())
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				body, _ := io.ReadAll(resp.Body)
				return fmt.Errorf("data failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))
			}
			var dr struct {
				Feed    string   `json:"feed"`
				Entries [][]byte `json:"entries"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, e := range dr.Entries {
				_ = enc.Encode(decodedPayload(e))
			}
			return nil
		},
	}
	dataCmd.Flags().String("feed", "default", "Feed name")
	dataCmd.Flags().String("filter", "", "CEL filter (server-side)")
	dataCmd.Flags().Int("limit", 0, "Return at most N newest entries (0 = all)")
	return dataCmd
}

// newFeedCleanupCommand constructs the `feed cleanup` subcommand.
func newFeedCleanupCommand(baseURL BaseURLFunc) *cobra.Command {
	cleanupCmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Evict aged-out entries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			feed, _ := cmd.Flags().GetString("feed")
			resp, err := postJSON(baseURL, "/v1/feeds/cleanup", map[string]string{"feed": feed}, "")
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("cleanup failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))
			}
			fmt.Fprint(cmd.OutOrStdout(), string(body))
			return nil
		},
	}
	cleanupCmd.Flags().String("feed", "default", "Feed name")
	return cleanupCmd
}

// newFeedStatsCommand constructs the `feed stats` subcommand.
func newFeedStatsCommand(baseURL BaseURLFunc) *cobra.Command {
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show feed stats",
		RunE: func(cmd *cobra.Command, _ []string) error {
			feed, _ := cmd.Flags().GetString("feed")
			resp, err := http.Get(baseURL() + "/v1/feeds/stats?feed=" + url.QueryEscape(feed))
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("stats failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))
			}
			fmt.Fprint(cmd.OutOrStdout(), string(body))
			return nil
		},
	}
	statsCmd.Flags().String("feed", "default", "Feed name")
	return statsCmd
}

// newFeedListCommand constructs the `feed list` subcommand.
func newFeedListCommand(baseURL BaseURLFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered feeds",
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := http.Get(baseURL() + "/v1/feeds")
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("list failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))
			}
			fmt.Fprint(cmd.OutOrStdout(), string(body))
			return nil
		},
	}
}

// newFeedSubscribeCommand constructs the `feed subscribe` subcommand. It
// reads the server's SSE stream and prints each event as one JSON line.
func newFeedSubscribeCommand(baseURL BaseURLFunc) *cobra.Command {
	subCmd := &cobra.Command{
		Use:   "subscribe",
		Short: "Stream committed entries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			feed, _ := cmd.Flags().GetString("feed")
			after, _ := cmd.Flags().GetUint64("after")
			limit, _ := cmd.Flags().GetInt("limit")

			q := url.Values{}
			q.Set("feed", feed)
			if after > 0 {
				q.Set("after", fmt.Sprintf("%d", after))
			}
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet,
				baseURL()+"/v1/feeds/subscribe?"+q.Encode(), nil)
			if err != nil {
				return err
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				body, _ := io.ReadAll(resp.Body)
				return fmt.Errorf("subscribe failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))
			}

			out := cmd.OutOrStdout()
			seen := 0
			scanner := bufio.NewScanner(resp.Body)
			scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
			for scanner.Scan() {
				line := scanner.Text()
				if !strings.HasPrefix(line, "data: ") {
					continue
				}
				fmt.Fprintln(out, strings.TrimPrefix(line, "data: "))
				seen++
				if limit > 0 && seen >= limit {
					return nil
				}
			}
			return scanner.Err()
		},
	}
	subCmd.Flags().String("feed", "default", "Feed name")
	subCmd.Flags().Uint64("after", 0, "Resume after sequence number")
	subCmd.Flags().Int("limit", 0, "Stop after N entries (0 = infinite)")
	return subCmd
}
