package ingest

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/extrange/mcq-bot/internal/services"
)

// LLMParser normalizes loosely structured CSV files through an
// OpenAI-compatible chat-completions endpoint. Each data row is sent as a
// header→value JSON object; the model maps it onto the normalized record
// schema. Rows the model cannot parse are skipped with a log line.
type LLMParser struct {
	httpClient *http.Client
	apiKey     string
	apiURL     string
	model      string
}

func NewLLMParser(apiKey, apiURL, model string) *LLMParser {
	return &LLMParser{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		apiKey:     apiKey,
		apiURL:     apiURL,
		model:      model,
	}
}

func (p *LLMParser) IsAvailable() bool {
	return p.apiKey != ""
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

const systemPrompt = `You are a question normalizer. The user sends one dictionary containing a multiple-choice question, its answer options, the correct answer, and an explanation. You must respond with ONLY valid JSON (no markdown, no code fences, no explanations) in the following format:

{
  "question": {"text": "Question text?", "explanation": "Why the correct answer is correct"},
  "answers": [
    {"text": "Option text", "key": 0, "is_correct": true},
    {"text": "Option text", "key": 1, "is_correct": false}
  ]
}

Rules:
- "key" is the option ordinal: A=0, B=1, C=2, D=3, E=4
- Exactly one answer must have "is_correct": true
- Don't repeat the answer choices in the question text
- If the question is empty or unintelligible, respond with the single word null
- Return ONLY the JSON object, nothing else`

func (p *LLMParser) Parse(path string) ([]services.ProcessedRow, error) {
	if !p.IsAvailable() {
		return nil, fmt.Errorf("LLM parsing is not configured")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%s has no data rows", path)
	}
	headers := records[0]

	var rows []services.ProcessedRow
	for i, record := range records[1:] {
		row, err := p.parseRecord(headers, record)
		if err != nil {
			log.Printf("skipping row %d of %s: %v", i+2, path, err)
			continue
		}
		if row == nil {
			continue
		}
		trimRow(row)
		rows = append(rows, *row)
	}
	return rows, nil
}

// parseRecord asks the model to normalize one CSV row. A nil row without
// error means the model refused the row (empty question).
func (p *LLMParser) parseRecord(headers, record []string) (*services.ProcessedRow, error) {
	formatted := make(map[string]string, len(record))
	for idx, value := range record {
		key := fmt.Sprintf("Unnamed column %d", idx)
		if idx < len(headers) && headers[idx] != "" {
			key = headers[idx]
		}
		if value == "" {
			value = "Empty"
		}
		formatted[key] = value
	}

	payload, err := json.Marshal(formatted)
	if err != nil {
		return nil, err
	}

	content, err := p.complete(string(payload))
	if err != nil {
		return nil, err
	}

	content = cleanJSONContent(content)
	if content == "null" {
		return nil, nil
	}

	var row services.ProcessedRow
	if err := json.Unmarshal([]byte(content), &row); err != nil {
		return nil, fmt.Errorf("model returned invalid JSON: %w", err)
	}
	return &row, nil
}

func (p *LLMParser) complete(userContent string) (string, error) {
	reqBody := chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userContent},
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", p.apiURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to parse API response: %w", err)
	}
	if chatResp.Error != nil {
		return "", fmt.Errorf("API error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("empty response from model")
	}

	return chatResp.Choices[0].Message.Content, nil
}

func cleanJSONContent(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
	}
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
	}
	if strings.HasSuffix(content, "```") {
		content = strings.TrimSuffix(content, "```")
	}
	return strings.TrimSpace(content)
}
