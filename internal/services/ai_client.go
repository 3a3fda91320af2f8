package services

import (
  "bytes"
  "context"
  "encoding/json"
  "fmt"
  "io"
  "net/http"
  "os"
  "strconv"
  "strings"
  "time"

  "github.com/edpsychconnect/backend/internal/logger"
)

// CompletionClient is the thin seam over the upstream text model. A single
// attempt per call; the caller decides whether a failure is worth retrying,
// never this layer.
type CompletionClient interface {
  GenerateText(ctx context.Context, prompt string, opts CompletionOpts) (string, error)
}

type CompletionOpts struct {
  System    string
  MaxTokens int
}

type openAIClient struct {
  log        *logger.Logger
  baseURL    string
  apiKey     string
  model      string
  httpClient *http.Client
}

func NewOpenAIClient(baseLog *logger.Logger) (CompletionClient, error) {
  apiKey := os.Getenv("OPENAI_API_KEY")
  if apiKey == "" {
    return nil, fmt.Errorf("missing OPENAI_API_KEY")
  }

  baseURL := os.Getenv("OPENAI_BASE_URL")
  if baseURL == "" {
    baseURL = "https://api.openai.com"
  }

  model := os.Getenv("OPENAI_MODEL")
  if model == "" {
    model = "gpt-4o-mini"
  }

  timeoutSec := 60
  if v := os.Getenv("OPENAI_TIMEOUT_SECONDS"); v != "" {
    if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
      timeoutSec = parsed
    }
  }

  return &openAIClient{
    log:        baseLog.With("service", "OpenAIClient"),
    baseURL:    baseURL,
    apiKey:     apiKey,
    model:      model,
    httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
  }, nil
}

type chatMessage struct {
  Role    string `json:"role"`
  Content string `json:"content"`
}

type chatRequest struct {
  Model     string        `json:"model"`
  Messages  []chatMessage `json:"messages"`
  MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
  Choices []struct {
    Message struct {
      Content string `json:"content"`
    } `json:"message"`
  } `json:"choices"`
}

func (c *openAIClient) GenerateText(ctx context.Context, prompt string, opts CompletionOpts) (string, error) {
  messages := make([]chatMessage, 0, 2)
  if opts.System != "" {
    messages = append(messages, chatMessage{Role: "system", Content: opts.System})
  }
  messages = append(messages, chatMessage{Role: "user", Content: prompt})

  body := chatRequest{
    Model:     c.model,
    Messages:  messages,
    MaxTokens: opts.MaxTokens,
  }

  var buf bytes.Buffer
  if err := json.NewEncoder(&buf).Encode(body); err != nil {
    return "", fmt.Errorf("encode request: %w", err)
  }

  req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", &buf)
  if err != nil {
    return "", fmt.Errorf("build request: %w", err)
  }
  req.Header.Set("Authorization", "Bearer "+c.apiKey)
  req.Header.Set("Content-Type", "application/json")

  resp, err := c.httpClient.Do(req)
  if err != nil {
    return "", fmt.Errorf("call completion api: %w", err)
  }
  defer resp.Body.Close()

  raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
  if err != nil {
    return "", fmt.Errorf("read response: %w", err)
  }
  if resp.StatusCode != http.StatusOK {
    c.log.Warn("completion api error", "status", resp.StatusCode)
    return "", fmt.Errorf("completion api http %d", resp.StatusCode)
  }

  var parsed chatResponse
  if err := json.Unmarshal(raw, &parsed); err != nil {
    return "", fmt.Errorf("decode response: %w", err)
  }
  if len(parsed.Choices) == 0 {
    return "", fmt.Errorf("completion api returned no choices")
  }
  return parsed.Choices[0].Message.Content, nil
}
