package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
)

// Pretty print JSON helper
func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

type client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Request helper
func (c *client) send(method, path string, body interface{}) (int, map[string]interface{}, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return 0, nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	var decoded map[string]interface{}
	_ = json.Unmarshal(raw, &decoded)
	return resp.StatusCode, decoded, nil
}

func step(c *client, title, method, path string, body interface{}, want int) map[string]interface{} {
	color.Yellow("\n%s", title)
	status, res, err := c.send(method, path, body)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	if status != want {
		color.Red("Status: %d (want %d)", status, want)
		prettyPrint(res)
		os.Exit(1)
	}
	color.Green("Status: %d", status)
	prettyPrint(res)
	return res
}

// Walks the chat API end to end against a running server.
func main() {
	baseURL := flag.String("url", "http://localhost:3000/api", "API base URL")
	flag.Parse()

	c := &client{baseURL: *baseURL, http: &http.Client{Timeout: 30 * time.Second}}
	email := fmt.Sprintf("smoke-%d@example.com", time.Now().UnixNano())
	creds := map[string]interface{}{"email": email, "password": "smoke-password"}

	color.Cyan("Starting chat API smoke test against %s\n", *baseURL)

	step(c, "1. Register", http.MethodPost, "/auth/register", creds, http.StatusCreated)

	login := step(c, "2. Login", http.MethodPost, "/auth/login", creds, http.StatusOK)
	token, _ := login["token"].(string)
	if token == "" {
		color.Red("No token in login response")
		os.Exit(1)
	}
	c.token = token

	created := step(c, "3. Create chat", http.MethodPost, "/chats", nil, http.StatusCreated)
	chat, _ := created["chat"].(map[string]interface{})
	chatID, _ := chat["id"].(string)

	msg := "Give me one tip for writing readable Go."
	step(c, "4. Send message", http.MethodPost, "/chat", map[string]interface{}{"chatId": chatID, "message": msg}, http.StatusOK)
	step(c, "5. Generate title", http.MethodPost, "/chat/title", map[string]interface{}{"chatId": chatID, "message": msg}, http.StatusOK)
	step(c, "6. List messages", http.MethodGet, "/chat/messages?chatId="+chatID, nil, http.StatusOK)
	step(c, "7. List chats", http.MethodGet, "/chats", nil, http.StatusOK)
	step(c, "8. Delete chat", http.MethodPost, "/chat/delete", map[string]interface{}{"chatId": chatID}, http.StatusOK)
	step(c, "9. Logout", http.MethodPost, "/auth/logout", nil, http.StatusOK)

	color.Cyan("\nSmoke test passed")
}
