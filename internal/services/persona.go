package services

import (
	"fmt"
	"strings"
	"text/template"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Mode selects the persona variant for one request.
type Mode string

const (
	ModeStandard  Mode = "standard"
	ModeUnchained Mode = "unchained"
)

// UnchainedSignOff is the line the unchained persona is told to end every
// reply with. The server never appends it itself.
const UnchainedSignOff = "~ NLVX Unchained ⚡"

const languageRulesTemplate = `**Language Rules:**
{{- if .LanguageName }}
- You MUST respond only in {{ .LanguageName }}, regardless of the language of earlier messages.
{{- else }}
- You MUST respond in the same language as the user's most recent message.
- For example, if the user writes in Arabic, you MUST reply in Arabic. If they write in Spanish, reply in Spanish.
- Never translate your own answer into another language unless the user asks for a translation.
{{- end }}`

const identityRules = `**Core Identity Rules:**
- When asked who created you, who made you, or who is your developer, you MUST answer: "I was created by NLVX." Do not mention nlvxvz.
- When asked for the social media of your creator (NLVX), you MUST provide his Instagram accounts: "@nlvx.v and @nlvxvz". You must say they are Instagram accounts and provide this link for both: https://www.instagram.com/nlvx.v`

const standardTemplate = `You are NLVX Ai, a powerful and helpful AI assistant created by a brilliant developer named "NLVX".
Your goal is to be helpful, accurate, friendly, and use Markdown for formatting.

` + identityRules + `

` + languageRulesTemplate

const unchainedTemplate = `You are NLVX Ai in Unchained mode, created by a brilliant developer named "NLVX".
In this mode you are direct, witty and informal. Skip pleasantries and filler, give your honest opinion when asked, and keep answers tight. Use Markdown for formatting.

` + identityRules + `

` + languageRulesTemplate + `

**Sign-off Rule:**
- You MUST end every reply with this exact line, on its own line, without changing it: {{ .SignOff }}`

// Persona template keys, "<mode>/<version>".
const (
	PersonaStandardV1  = "standard/v1"
	PersonaUnchainedV1 = "unchained/v1"
)

type personaData struct {
	LanguageName string
	SignOff      string
}

// PersonaSet holds the named, versioned system prompt templates and the key
// used for each mode. New personas are registered as data.
type PersonaSet struct {
	templates map[string]*template.Template
	active    map[Mode]string
}

func NewPersonaSet() *PersonaSet {
	ps := &PersonaSet{
		templates: make(map[string]*template.Template),
		active:    make(map[Mode]string),
	}
	ps.MustRegister(PersonaStandardV1, standardTemplate)
	ps.MustRegister(PersonaUnchainedV1, unchainedTemplate)
	ps.active[ModeStandard] = PersonaStandardV1
	ps.active[ModeUnchained] = PersonaUnchainedV1
	return ps
}

// Register parses and stores a template under key.
func (ps *PersonaSet) Register(key, text string) error {
	tmpl, err := template.New(key).Option("missingkey=error").Parse(text)
	if err != nil {
		return fmt.Errorf("parse persona %s: %w", key, err)
	}
	ps.templates[key] = tmpl
	return nil
}

func (ps *PersonaSet) MustRegister(key, text string) {
	if err := ps.Register(key, text); err != nil {
		panic(err)
	}
}

// Use makes key the template for mode.
func (ps *PersonaSet) Use(mode Mode, key string) error {
	if _, ok := ps.templates[key]; !ok {
		return fmt.Errorf("unknown persona %q", key)
	}
	ps.active[mode] = key
	return nil
}

// Render executes the template stored under key.
func (ps *PersonaSet) Render(key, lang string) (string, error) {
	tmpl, ok := ps.templates[key]
	if !ok {
		return "", fmt.Errorf("unknown persona %q", key)
	}

	var b strings.Builder
	err := tmpl.Execute(&b, personaData{
		LanguageName: LanguageName(lang),
		SignOff:      UnchainedSignOff,
	})
	if err != nil {
		return "", fmt.Errorf("render persona %s: %w", key, err)
	}
	return b.String(), nil
}

// SystemPrompt returns the system prompt for mode. An empty lang tells the
// model to mirror the user's language. Unknown modes use the standard persona.
func (ps *PersonaSet) SystemPrompt(mode Mode, lang string) (string, error) {
	key, ok := ps.active[mode]
	if !ok {
		key = ps.active[ModeStandard]
	}
	return ps.Render(key, lang)
}

// LanguageName turns a declared language into the text used in the prompt:
// BCP 47 tags get their English name ("ar" -> "Arabic (ar)"), anything else
// is used verbatim.
func LanguageName(lang string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return ""
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return lang
	}
	name := display.English.Tags().Name(tag)
	if name == "" || strings.EqualFold(name, lang) {
		return lang
	}
	return fmt.Sprintf("%s (%s)", name, lang)
}
