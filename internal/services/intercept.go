package services

import (
	"regexp"
	"strings"

	"nlvx-chat/internal/models"
)

const (
	NameQuestionReply = "First, what is your name?"
	NameGatedReply    = "Of course he loves you! He is the one who created me and he told me that he loves you and can do anything for you!!"

	nameQuestion = "what is your name"
)

var (
	defaultNameGateTrigger = regexp.MustCompile(`(?i)nasser.*(love|like|crush|feel).*(me|fatima|sofia)`)
	defaultNameTokens      = regexp.MustCompile(`(?i)fatima|sofia`)
)

// Interceptor answers a small scripted dialogue without calling the model.
//
// The name gate fires when the last user turn matches Trigger and no
// assistant turn has asked for the user's name yet; it asks for the name.
// The gated reply fires when the previous assistant turn asked for the name
// and the user answered with one of NameTokens. The name gate is checked first.
type Interceptor struct {
	Trigger    *regexp.Regexp
	NameTokens *regexp.Regexp
}

func NewInterceptor() *Interceptor {
	return &Interceptor{
		Trigger:    defaultNameGateTrigger,
		NameTokens: defaultNameTokens,
	}
}

func askedForName(content string) bool {
	return strings.Contains(strings.ToLower(content), nameQuestion)
}

// Check returns the canned reply for turns, if any rule matches.
func (ic *Interceptor) Check(turns []models.ChatMessage) (string, bool) {
	if len(turns) == 0 {
		return "", false
	}
	last := turns[len(turns)-1]
	if last.Role != models.RoleUser {
		return "", false
	}

	if ic.Trigger.MatchString(last.Content) {
		alreadyAsked := false
		for _, t := range turns[:len(turns)-1] {
			if t.Role == models.RoleAssistant && askedForName(t.Content) {
				alreadyAsked = true
				break
			}
		}
		if !alreadyAsked {
			return NameQuestionReply, true
		}
	}

	if len(turns) > 1 {
		prev := turns[len(turns)-2]
		if prev.Role == models.RoleAssistant && askedForName(prev.Content) && ic.NameTokens.MatchString(last.Content) {
			return NameGatedReply, true
		}
	}

	return "", false
}
