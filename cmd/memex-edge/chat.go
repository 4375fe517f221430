package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
)

var (
	chatServerURL string
	chatCross     bool
	chatSessionID string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive chat REPL against a prometheus-server instance",
	Long: `Opens a line-oriented REPL: each line you type is POSTed as one chat
turn against the server's SSE chat endpoint, and the streamed text, tool
call, and tool result events are printed as they arrive.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if chatServerURL == "" {
			return fmt.Errorf("chat requires --server (e.g. http://localhost:8080)")
		}

		fmt.Printf("memex-edge chat — instance %q, server %s. Empty line to exit.\n", cfg.InstanceName, chatServerURL)
		reader := bufio.NewReader(cmdInput)
		for {
			fmt.Print("> ")
			line, err := reader.ReadString('\n')
			line = strings.TrimSpace(line)
			if line == "" || err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}

			if err := sendChatTurn(cmd, line); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
			}
		}
	},
}

func chatEndpoint() string {
	base := strings.TrimRight(chatServerURL, "/")
	if chatCross {
		return base + "/chat"
	}
	return base + "/" + cfg.InstanceName + "/chat"
}

func sendChatTurn(cmd *cobra.Command, message string) error {
	body, err := json.Marshal(map[string]string{"message": message, "session_id": chatSessionID})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost, chatEndpoint(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+apiToken)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %s", resp.Status)
	}

	return streamSSE(resp.Body)
}

// streamSSE reads "event: X\ndata: {...}\n\n" frames and prints each one in
// a compact human-readable form.
func streamSSE(body io.Reader) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var event string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			printSSEFrame(event, strings.TrimPrefix(line, "data: "))
		case line == "":
			event = ""
		}
	}
	return scanner.Err()
}

func printSSEFrame(event, data string) {
	var payload map[string]interface{}
	_ = json.Unmarshal([]byte(data), &payload)

	switch event {
	case "session":
		if id, ok := payload["session_id"].(string); ok {
			chatSessionID = id
		}
	case "text":
		fmt.Print(payload["text"])
	case "tool_call":
		fmt.Printf("\n[tool_call] %s\n", payload["name"])
	case "tool_result":
		fmt.Printf("[tool_result] %s: %v\n", payload["name"], payload["result_preview"])
	case "page_created":
		fmt.Printf("[page] %v — %v\n", payload["title"], payload["url"])
	case "error":
		fmt.Printf("\n[error] %v\n", payload["error"])
	case "done":
		fmt.Println()
	}
}

func init() {
	chatCmd.Flags().StringVar(&chatServerURL, "server", "", "Base URL of the prometheus-server (required)")
	chatCmd.Flags().BoolVar(&chatCross, "cross-instance", false, "Use the cross-instance /chat endpoint instead of /{instance}/chat")
	rootCmd.AddCommand(chatCmd)
}
