// studycli is a small terminal client for reviewing due flashcards against a
// running cardvault server. Point CARDVAULT_URI at the server and put a
// valid JWT in CARDVAULT_JWT.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type card struct {
	ID    int64  `json:"id"`
	Front string `json:"front"`
	Back  string `json:"back"`
}

type batchLoaded struct {
	cards []card
}

type reviewDone struct {
	XPEarned   int    `json:"xp_earned"`
	NextReview string `json:"next_review"`
}

type clientError struct{ err error }

type model struct {
	textInput textinput.Model
	serverURI string
	jwt       string

	cards    []card
	current  int
	showBack bool
	status   string
	xpTotal  int
}

func initialModel(serverURI, jwt string) model {
	ti := textinput.New()
	ti.Placeholder = "Answer"
	ti.Focus()
	ti.CharLimit = 80
	ti.Width = 40

	return model{
		textInput: ti,
		serverURI: serverURI,
		jwt:       jwt,
		status:    "loading cards...",
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, loadBatchCmd(m.serverURI, m.jwt))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.current < len(m.cards) && !m.showBack {
				m.showBack = true
			}
			return m, nil
		}
		if m.current < len(m.cards) && m.showBack {
			switch msg.String() {
			case "1":
				return m, reviewCmd(m.serverURI, m.jwt, m.cards[m.current].ID, false)
			case "2":
				return m, reviewCmd(m.serverURI, m.jwt, m.cards[m.current].ID, true)
			}
		}

	case batchLoaded:
		m.cards = msg.cards
		m.current = 0
		m.showBack = false
		if len(m.cards) == 0 {
			m.status = "no cards due, you're all caught up"
		} else {
			m.status = fmt.Sprintf("%d cards loaded", len(m.cards))
		}

	case reviewDone:
		m.xpTotal += msg.XPEarned
		m.status = fmt.Sprintf("+%d xp, next review %s", msg.XPEarned, msg.NextReview)
		m.current++
		m.showBack = false
		m.textInput.Reset()
		if m.current >= len(m.cards) {
			return m, loadBatchCmd(m.serverURI, m.jwt)
		}

	case clientError:
		m.status = "error: " + msg.err.Error()
	}

	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m model) View() string {
	var body string
	if m.current < len(m.cards) {
		c := m.cards[m.current]
		body = strings.Repeat("-", 30) + "\n\n  " + c.Front + "\n\n"
		if m.showBack {
			body += "  " + c.Back + "\n\n"
			body += "(1) Missed    (2) Got it\n"
		} else {
			body += "(Enter) Flip\n"
		}
	}
	footer := fmt.Sprintf("session xp: %d    %s", m.xpTotal, m.status)
	return body + "\n" + m.textInput.View() + "\n\n" + footer + "\n"
}

func loadBatchCmd(serverURI, jwt string) tea.Cmd {
	return func() tea.Msg {
		req, err := http.NewRequest(http.MethodGet, serverURI+"/api/flashcards/study?limit=20", nil)
		if err != nil {
			return clientError{err}
		}
		req.Header.Set("Authorization", "Bearer "+jwt)
		resp, err := httpClient().Do(req)
		if err != nil {
			return clientError{err}
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return clientError{fmt.Errorf("server returned %s", resp.Status)}
		}
		var payload struct {
			Flashcards []card `json:"flashcards"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return clientError{err}
		}
		return batchLoaded{cards: payload.Flashcards}
	}
}

func reviewCmd(serverURI, jwt string, cardID int64, correct bool) tea.Cmd {
	return func() tea.Msg {
		body, err := json.Marshal(map[string]bool{"correct": correct})
		if err != nil {
			return clientError{err}
		}
		req, err := http.NewRequest(http.MethodPost,
			fmt.Sprintf("%s/api/flashcards/%d/review", serverURI, cardID),
			bytes.NewReader(body))
		if err != nil {
			return clientError{err}
		}
		req.Header.Set("Authorization", "Bearer "+jwt)
		req.Header.Set("Content-Type", "application/json")
		resp, err := httpClient().Do(req)
		if err != nil {
			return clientError{err}
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return clientError{fmt.Errorf("server returned %s", resp.Status)}
		}
		var done reviewDone
		if err := json.NewDecoder(resp.Body).Decode(&done); err != nil {
			return clientError{err}
		}
		return done
	}
}

func httpClient() *http.Client {
	return &http.Client{Timeout: 10 * time.Second}
}

func main() {
	serverURI := os.Getenv("CARDVAULT_URI")
	if serverURI == "" {
		serverURI = "http://localhost:8190"
	}
	jwt := os.Getenv("CARDVAULT_JWT")
	if jwt == "" {
		fmt.Println("CARDVAULT_JWT must be set to a valid token")
		os.Exit(1)
	}
	p := tea.NewProgram(initialModel(serverURI, jwt))

	if _, err := p.Run(); err != nil {
		fmt.Printf("Alas, there's been an error: %v", err)
		os.Exit(1)
	}
}
