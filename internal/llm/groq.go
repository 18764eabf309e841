package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultGroqBaseURL = "https://api.groq.com/openai/v1"
	defaultGroqModel   = "llama3-8b-8192"
)

// GroqConfig holds configuration options for the Groq client.
type GroqConfig struct {
	APIKey string

	// BaseURL of the OpenAI-compatible API (default: https://api.groq.com/openai/v1)
	BaseURL string

	// Model used for text-only conversations (default: llama3-8b-8192)
	Model string

	// VisionModel is used when the request carries an image. Falls back to Model.
	VisionModel string

	// HTTPClient is used for all requests. It must not set a Timeout, since
	// streams are bounded by the request context instead.
	HTTPClient *http.Client
}

// GroqClient streams chat completions from Groq's OpenAI-compatible API.
// It is safe for concurrent use.
type GroqClient struct {
	config GroqConfig
	client *openai.Client
}

// NewGroqClient creates a Groq client, filling in defaults for zero values.
func NewGroqClient(config GroqConfig) *GroqClient {
	if config.BaseURL == "" {
		config.BaseURL = defaultGroqBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Model == "" {
		config.Model = defaultGroqModel
	}
	if config.VisionModel == "" {
		config.VisionModel = config.Model
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	clientConfig.BaseURL = config.BaseURL
	if config.HTTPClient != nil {
		clientConfig.HTTPClient = config.HTTPClient
	}

	return &GroqClient{
		config: config,
		client: openai.NewClientWithConfig(clientConfig),
	}
}

func (c *GroqClient) Name() string { return "groq" }

// buildGroqMessages converts the assembled conversation into chat completion
// messages. An image, if any, is attached to the last user turn as a data URL.
func buildGroqMessages(req *Request) []openai.ChatCompletionMessage {
	lastUser := -1
	if req.Image != nil {
		for i := len(req.Messages) - 1; i >= 0; i-- {
			if req.Messages[i].Role == RoleUser {
				lastUser = i
				break
			}
		}
	}

	out := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, m := range req.Messages {
		if i == lastUser {
			dataURL := "data:" + req.Image.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(req.Image.Data)
			out[i] = openai.ChatCompletionMessage{
				Role: m.Role,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: m.Content},
					{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: dataURL}},
				},
			}
			continue
		}
		out[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}
	return out
}

// groqError turns an error from the OpenAI client into a *ClientError.
func groqError(msg string, err error) *ClientError {
	var apiErr *openai.APIError
	var reqErr *openai.RequestError

	switch {
	case errors.As(err, &apiErr):
		ce := &ClientError{Type: ErrTypeUpstream, StatusCode: apiErr.HTTPStatusCode, Message: msg, Cause: err}
		if apiErr.HTTPStatusCode != 0 {
			ce.Type = errorTypeForStatus(apiErr.HTTPStatusCode)
		}
		if apiErr.Message != "" {
			ce.Message = msg + ": " + apiErr.Message
		}
		return ce
	case errors.As(err, &reqErr):
		return &ClientError{Type: errorTypeForStatus(reqErr.HTTPStatusCode), StatusCode: reqErr.HTTPStatusCode, Message: msg, Cause: err}
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return &ClientError{Type: ErrTypeTimeout, Message: msg, Cause: err}
	default:
		return &ClientError{Type: ErrTypeConnection, Message: msg, Cause: err}
	}
}

// Open sends the streaming chat request and returns once Groq has answered
// with a status line. Non-200 answers become a *ClientError.
func (c *GroqClient) Open(ctx context.Context, req *Request) (Stream, error) {
	model := c.config.Model
	if req.Image != nil {
		model = c.config.VisionModel
	}

	stream, err := c.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: buildGroqMessages(req),
		Stream:   true,
	})
	if err != nil {
		return nil, groqError("groq chat request failed", err)
	}

	return &groqStream{stream: stream}, nil
}

type groqStream struct {
	stream *openai.ChatCompletionStream
	done   bool
}

func (s *groqStream) Recv() ([]byte, error) {
	for {
		if s.done {
			return nil, io.EOF
		}

		resp, err := s.stream.Recv()
		if errors.Is(err, io.EOF) {
			s.done = true
			return nil, io.EOF
		}
		if err != nil {
			s.done = true
			return nil, groqError("groq stream interrupted", err)
		}

		if len(resp.Choices) == 0 || resp.Choices[0].Delta.Content == "" {
			continue
		}
		return []byte(resp.Choices[0].Delta.Content), nil
	}
}

func (s *groqStream) Close() error {
	s.done = true
	s.stream.Close()
	return nil
}
