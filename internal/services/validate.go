package services

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"nlvx-chat/internal/llm"
	"nlvx-chat/internal/models"
)

const maxLanguageLength = 64

// ValidatedChat is a chat request that passed validation. Turns is the
// client's conversation in its original order.
type ValidatedChat struct {
	Turns    []models.ChatMessage
	Mode     Mode
	Language string // empty means mirror the user's language
	Image    *llm.Image
}

// DecodeChatRequest parses a JSON chat request body. Type mismatches on known
// fields are reported as validation errors naming the field.
func DecodeChatRequest(r io.Reader) (*models.ChatRequest, error) {
	var req models.ChatRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		var typeErr *json.UnmarshalTypeError
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &typeErr) && typeErr.Field != "":
			return nil, &ValidationError{
				Reason: fmt.Sprintf("Invalid input: %s must be of type %s.", typeErr.Field, jsonTypeName(typeErr.Type.Kind().String())),
				Fields: map[string]string{typeErr.Field: "invalid type"},
			}
		case errors.As(err, &maxErr):
			return nil, &ValidationError{Reason: "Invalid input: request body is too large."}
		default:
			return nil, &ValidationError{Reason: "Invalid input: request body must be a JSON object."}
		}
	}
	return &req, nil
}

func jsonTypeName(kind string) string {
	switch kind {
	case "bool":
		return "boolean"
	case "slice", "array":
		return "array"
	case "struct", "map":
		return "object"
	case "ptr":
		return "value"
	default:
		return kind
	}
}

func invalid(field, reason string) *ValidationError {
	return &ValidationError{
		Reason: "Invalid input: " + reason,
		Fields: map[string]string{field: reason},
	}
}

// ValidateChatRequest checks a decoded request and returns the first violated
// constraint as a *ValidationError.
func ValidateChatRequest(req *models.ChatRequest) (*ValidatedChat, error) {
	if req == nil || len(req.History) == 0 {
		return nil, invalid("history", "history is missing or empty.")
	}

	for i, turn := range req.History {
		field := fmt.Sprintf("history[%d]", i)
		if turn.Role != models.RoleUser && turn.Role != models.RoleAssistant {
			return nil, invalid(field+".role", fmt.Sprintf("%s.role must be \"user\" or \"assistant\".", field))
		}
		if turn.Content == "" {
			return nil, invalid(field+".content", fmt.Sprintf("%s.content must be a non-empty string.", field))
		}
	}

	out := &ValidatedChat{
		Turns: req.History,
		Mode:  ModeStandard,
	}

	if req.NLVXMode != nil && *req.NLVXMode {
		out.Mode = ModeUnchained
	}

	if req.UserLanguage != nil {
		lang := strings.TrimSpace(*req.UserLanguage)
		if lang == "" || len(lang) > maxLanguageLength {
			return nil, invalid("user_language", "user_language must be a short non-empty string.")
		}
		out.Language = lang
	}

	if req.ImageBase64 != nil && *req.ImageBase64 != "" {
		img, err := decodeImage(*req.ImageBase64, req.ImageMimeType)
		if err != nil {
			return nil, err
		}
		out.Image = img
	}

	return out, nil
}

func decodeImage(encoded string, mimeType *string) (*llm.Image, error) {
	mime := ""
	if mimeType != nil {
		mime = strings.ToLower(strings.TrimSpace(*mimeType))
	}

	// Accept data URLs as produced by FileReader.readAsDataURL.
	if strings.HasPrefix(encoded, "data:") {
		header, payload, ok := strings.Cut(encoded, ",")
		if !ok || !strings.HasSuffix(header, ";base64") {
			return nil, invalid("imageBase64", "imageBase64 must be base64 encoded.")
		}
		if mime == "" {
			mime = strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
		}
		encoded = payload
	}

	if mime == "" {
		return nil, invalid("imageMimeType", "imageMimeType is required when imageBase64 is set.")
	}
	if !strings.HasPrefix(mime, "image/") {
		return nil, invalid("imageMimeType", "imageMimeType must be an image type.")
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil || len(data) == 0 {
		return nil, invalid("imageBase64", "imageBase64 must be base64 encoded.")
	}

	return &llm.Image{MIMEType: mime, Data: data}, nil
}
