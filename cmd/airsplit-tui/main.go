package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"strings"

	"github.com/airsplit/airsplit/internal/tui/app"
	"github.com/airsplit/airsplit/internal/tui/client"
	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	wsURL := flag.String("url", "ws://127.0.0.1:8080/ws", "WebSocket URL of the airsplit daemon")
	token := flag.String("token", "", "Auth token (if the daemon requires it)")
	logPath := flag.String("log", "", "Write client logs to this file")
	flag.Parse()

	// The alt screen owns the terminal, so logs go to a file or nowhere.
	if *logPath != "" {
		f, err := tea.LogToFile(*logPath, "airsplit-tui")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	httpBase := deriveHTTPBase(*wsURL)

	ws := client.NewWSClient(*wsURL, *token)
	defer ws.Close()
	httpClient := client.NewHTTPClient(httpBase, *token)

	m := app.New(ws, httpClient)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// deriveHTTPBase converts ws://host:port/ws → http://host:port
func deriveHTTPBase(wsURL string) string {
	u, err := url.Parse(wsURL)
	if err != nil {
		return "http://127.0.0.1:8080"
	}
	scheme := "http"
	if strings.HasPrefix(u.Scheme, "wss") {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, u.Host)
}
