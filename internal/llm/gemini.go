package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GeminiClient streams chat replies through the Gemini SDK.
type GeminiClient struct {
	client    *genai.Client
	modelName string
}

func NewGeminiClient(ctx context.Context, apiKey, modelName string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if modelName == "" {
		modelName = "gemini-2.0-flash"
	}

	return &GeminiClient{
		client:    client,
		modelName: modelName,
	}, nil
}

func (c *GeminiClient) Close() error {
	return c.client.Close()
}

func (c *GeminiClient) Name() string { return "gemini" }

// buildGeminiContents splits the assembled conversation into the system
// instruction and the chat contents. Gemini calls the assistant "model".
func buildGeminiContents(req *Request) (*genai.Content, []*genai.Content) {
	var system []genai.Part
	var contents []*genai.Content

	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			system = append(system, genai.Text(m.Content))
		case RoleAssistant:
			contents = append(contents, &genai.Content{Role: "model", Parts: []genai.Part{genai.Text(m.Content)}})
		default:
			contents = append(contents, &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(m.Content)}})
		}
	}

	if req.Image != nil {
		for i := len(contents) - 1; i >= 0; i-- {
			if contents[i].Role == "user" {
				contents[i].Parts = append(contents[i].Parts, genai.Blob{MIMEType: req.Image.MIMEType, Data: req.Image.Data})
				break
			}
		}
	}

	var instruction *genai.Content
	if len(system) > 0 {
		instruction = &genai.Content{Parts: system}
	}
	return instruction, contents
}

// Open starts a chat session with the prior turns as history and streams the
// reply to the last turn. The first response is fetched eagerly because the
// SDK only reports errors such as rate limiting on the first Next call.
func (c *GeminiClient) Open(ctx context.Context, req *Request) (Stream, error) {
	instruction, contents := buildGeminiContents(req)
	if len(contents) == 0 {
		return nil, &ClientError{Type: ErrTypeBadRequest, Message: "no conversation turns to send"}
	}

	model := c.client.GenerativeModel(c.modelName)
	model.SetTemperature(0.7)
	model.SetTopP(0.95)
	model.SystemInstruction = instruction

	streamCtx, cancel := context.WithCancel(ctx)

	cs := model.StartChat()
	cs.History = contents[:len(contents)-1]
	iter := cs.SendMessageStream(streamCtx, contents[len(contents)-1].Parts...)

	first, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return &geminiStream{cancel: cancel, done: true}, nil
	}
	if err != nil {
		cancel()
		return nil, &ClientError{Type: classifyGoogleError(err), Message: "gemini stream failed", Cause: err}
	}

	return &geminiStream{iter: iter, pending: first, cancel: cancel}, nil
}

type geminiStream struct {
	iter    *genai.GenerateContentResponseIterator
	pending *genai.GenerateContentResponse
	cancel  context.CancelFunc
	done    bool
}

func (s *geminiStream) Recv() ([]byte, error) {
	for {
		if s.done {
			return nil, io.EOF
		}

		resp := s.pending
		s.pending = nil
		if resp == nil {
			var err error
			resp, err = s.iter.Next()
			if errors.Is(err, iterator.Done) {
				s.done = true
				return nil, io.EOF
			}
			if err != nil {
				s.done = true
				return nil, &ClientError{Type: classifyGoogleError(err), Message: "gemini stream interrupted", Cause: err}
			}
		}

		if text := extractText(resp); text != "" {
			return []byte(text), nil
		}
	}
}

func (s *geminiStream) Close() error {
	s.done = true
	s.cancel()
	return nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
