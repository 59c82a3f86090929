package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/coder/websocket"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/crmhub/pipedrive-mcp/internal/gateway"
)

var gatewayURL string

var gatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Client CLI for a Codex Gateway instance",
	Long: "Talks to a running Codex Gateway: health checks, one-shot JSON-RPC\n" +
		"prompts, exec mode with event rendering, and an interactive WebSocket\n" +
		"session. Reads GATEWAY_URL and GATEWAY_KEY/GATEWAY_API_KEY from the\n" +
		"environment.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var gatewayHealthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check gateway health",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := gateway.NewFromEnv(gatewayURL)
		if err != nil {
			return err
		}
		if err := client.Health(cmd.Context()); err != nil {
			color.Red("✗ %v", err)
			return err
		}
		color.Green("✓ gateway is healthy")
		return nil
	},
}

var gatewayPromptCmd = &cobra.Command{
	Use:   "prompt <text>",
	Short: "Send one prompt over JSON-RPC and print the result",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := gateway.NewFromEnv(gatewayURL)
		if err != nil {
			return err
		}
		result, err := client.Prompt(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		var pretty map[string]any
		if json.Unmarshal(result, &pretty) == nil {
			if response, ok := pretty["response"].(string); ok {
				fmt.Println(response)
				return nil
			}
		}
		fmt.Println(string(result))
		return nil
	},
}

var gatewayExecCmd = &cobra.Command{
	Use:   "exec <text>",
	Short: "Run a one-shot prompt and render the event stream",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := gateway.NewFromEnv(gatewayURL)
		if err != nil {
			return err
		}
		events, err := client.Exec(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		renderEvents(events)
		return nil
	},
}

func renderEvents(events []gateway.Event) {
	for _, ev := range events {
		switch ev.Type {
		case "assistant_message":
			fmt.Println(ev.Content)
		case "tool_use":
			color.Cyan("→ %s", ev.Tool)
		case "error":
			color.Red("✗ %s", ev.Message)
		default:
			color.Yellow("[%s]", ev.Type)
		}
	}
}

var gatewayWSCmd = &cobra.Command{
	Use:   "ws",
	Short: "Open an interactive WebSocket session",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := gateway.NewFromEnv(gatewayURL)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		conn, err := client.Dial(ctx)
		if err != nil {
			return err
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		color.Green("connected — type a message, Ctrl-C to quit")

		// Reader pump: print everything the gateway sends.
		readErr := make(chan error, 1)
		go func() {
			for {
				_, data, err := conn.Read(ctx)
				if err != nil {
					readErr <- err
					return
				}
				printWSMessage(data)
			}
		}()

		// Writer pump: forward stdin lines.
		lines := make(chan string)
		go func() {
			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				lines <- scanner.Text()
			}
			close(lines)
		}()

		for {
			select {
			case <-ctx.Done():
				return nil
			case err := <-readErr:
				if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
					return nil
				}
				return fmt.Errorf("connection closed: %w", err)
			case line, ok := <-lines:
				if !ok {
					return nil
				}
				if strings.TrimSpace(line) == "" {
					continue
				}
				payload, _ := json.Marshal(map[string]string{"prompt": line})
				if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
					return fmt.Errorf("send: %w", err)
				}
			}
		}
	},
}

func printWSMessage(data []byte) {
	var ev gateway.Event
	if err := json.Unmarshal(data, &ev); err == nil && ev.Type != "" {
		renderEvents([]gateway.Event{ev})
		return
	}
	fmt.Println(string(data))
}

func init() {
	gatewayCmd.PersistentFlags().StringVar(&gatewayURL, "url", "", "gateway base URL (defaults to GATEWAY_URL)")
	gatewayCmd.AddCommand(gatewayHealthCmd)
	gatewayCmd.AddCommand(gatewayPromptCmd)
	gatewayCmd.AddCommand(gatewayExecCmd)
	gatewayCmd.AddCommand(gatewayWSCmd)
}
