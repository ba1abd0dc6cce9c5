package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/fatih/color"
)

var (
	baseURL  = flag.String("url", "http://localhost:3000", "backend base URL")
	userId   = flag.String("user", "smoke-user", "userId to run the session as")
	filePath = flag.String("file", "", "spreadsheet to upload (skips the upload step when empty)")
)

// Pretty print JSON helper
func prettyPrint(body []byte) {
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		fmt.Println(string(body))
		return
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

// Request helper
func sendRequest(method, url, contentType string, body io.Reader) (*http.Response, []byte, error) {
	req, err := http.NewRequest(method, *baseURL+url, body)
	if err != nil {
		return nil, nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	client := &http.Client{} // completions can be slow
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func sendJSON(method, url string, payload interface{}) (*http.Response, []byte, error) {
	var reader io.Reader
	if payload != nil {
		b, _ := json.Marshal(payload)
		reader = bytes.NewBuffer(b)
	}
	return sendRequest(method, url, "application/json", reader)
}

func uploadFile(path string) (*http.Response, []byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("userId", *userId); err != nil {
		return nil, nil, err
	}
	part, err := w.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, nil, err
	}
	if _, err := part.Write(content); err != nil {
		return nil, nil, err
	}
	if err := w.Close(); err != nil {
		return nil, nil, err
	}
	return sendRequest(http.MethodPost, "/upload", w.FormDataContentType(), &buf)
}

func report(step string, resp *http.Response, body []byte, err error) {
	color.Yellow("\n%s", step)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	if resp.StatusCode >= 400 {
		color.Red("Status: %s", resp.Status)
	} else {
		color.Green("Status: %s", resp.Status)
	}
	prettyPrint(body)
}

func main() {
	flag.Parse()
	color.Cyan("Starting trading chat smoke test against %s (user %s)", *baseURL, *userId)

	resp, body, err := sendJSON(http.MethodPost, "/chat", map[string]string{
		"userId":  *userId,
		"message": "I feel anxious about my trade",
	})
	report("[CHAT] 1. Send message", resp, body, err)

	resp, body, err = sendJSON(http.MethodGet, "/history/"+*userId, nil)
	report("[CHAT] 2. Get history", resp, body, err)

	if *filePath == "" {
		color.Cyan("\nNo -file given, skipping upload")
		return
	}

	resp, body, err = uploadFile(*filePath)
	report("[DATA] 3. Upload spreadsheet", resp, body, err)

	resp, body, err = sendJSON(http.MethodGet, "/financial-data/"+*userId, nil)
	report("[DATA] 4. Get financial data", resp, body, err)

	resp, body, err = sendJSON(http.MethodPost, "/chat", map[string]string{
		"userId":  *userId,
		"message": "What stands out in the data I uploaded?",
	})
	report("[CHAT] 5. Ask about the data", resp, body, err)

	color.Cyan("\nSmoke test finished")
}
