package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/staysocial/staysocial-backend/internal/platforms"
	"github.com/staysocial/staysocial-backend/internal/posts"
)

type Language string

const (
	English Language = "english"
	Korean  Language = "korean"
)

type Tone string

const (
	Professional Tone = "professional"
	Casual       Tone = "casual"
	Luxury       Tone = "luxury"
)

var ErrInvalidRequest = errors.New("invalid generation request")

// Request asks for one piece of content, either from a template plus the
// user's details or, when PostType is set instead, canned copy for that type.
type Request struct {
	TemplateID string   `json:"templateId,omitempty"`
	Details    string   `json:"details,omitempty"`
	PostType   string   `json:"postType,omitempty"`
	Date       string   `json:"date,omitempty"`
	Language   Language `json:"language,omitempty"`
	Tone       Tone     `json:"tone,omitempty"`
	Platform   string   `json:"platform,omitempty"`
}

// Normalize fills defaults and lowercases the enum fields
func (r *Request) Normalize() {
	r.TemplateID = strings.TrimSpace(r.TemplateID)
	r.Details = strings.TrimSpace(r.Details)
	r.PostType = strings.ToLower(strings.TrimSpace(r.PostType))
	r.Date = strings.TrimSpace(r.Date)
	r.Language = Language(strings.ToLower(strings.TrimSpace(string(r.Language))))
	r.Tone = Tone(strings.ToLower(strings.TrimSpace(string(r.Tone))))
	r.Platform = strings.ToLower(strings.TrimSpace(r.Platform))

	switch r.Language {
	case "", "en":
		r.Language = English
	case "ko":
		r.Language = Korean
	}
	if r.Tone == "" {
		r.Tone = Professional
	}
	if r.Platform == "" {
		r.Platform = string(posts.Instagram)
	}
}

func (r Request) Validate() error {
	if r.TemplateID == "" && r.PostType == "" {
		return fmt.Errorf("%w: templateId or postType is required", ErrInvalidRequest)
	}
	if r.TemplateID != "" {
		if _, ok := FindTemplate(r.TemplateID); !ok {
			return fmt.Errorf("%w: unknown template %q", ErrInvalidRequest, r.TemplateID)
		}
		if r.Details == "" {
			return fmt.Errorf("%w: details are required", ErrInvalidRequest)
		}
	}
	if r.Date != "" {
		if _, err := time.Parse(posts.DateLayout, r.Date); err != nil {
			return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidRequest)
		}
	}
	switch r.Language {
	case English, Korean:
	default:
		return fmt.Errorf("%w: unsupported language %q", ErrInvalidRequest, r.Language)
	}
	switch r.Tone {
	case Professional, Casual, Luxury:
	default:
		return fmt.Errorf("%w: unsupported tone %q", ErrInvalidRequest, r.Tone)
	}
	return nil
}

// Result is one generated piece of content
type Result struct {
	Title       string    `json:"title,omitempty"`
	Content     string    `json:"content"`
	Hashtags    []string  `json:"hashtags"`
	TemplateID  string    `json:"templateId,omitempty"`
	PostType    string    `json:"postType,omitempty"`
	Date        string    `json:"date,omitempty"`
	Language    Language  `json:"language"`
	Tone        Tone      `json:"tone"`
	Platform    string    `json:"platform"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// Provider produces content for a request
type Provider interface {
	Generate(ctx context.Context, req Request) (Result, error)
}

// TemplateProvider fills the built-in templates; no model is involved
type TemplateProvider struct {
	platforms *platforms.Service
	now       func() time.Time
}

func NewTemplateProvider(catalog *platforms.Service) *TemplateProvider {
	if catalog == nil {
		catalog = platforms.NewService()
	}
	return &TemplateProvider{platforms: catalog, now: time.Now}
}

func (p *TemplateProvider) Generate(ctx context.Context, req Request) (Result, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	res := Result{
		TemplateID:  req.TemplateID,
		PostType:    req.PostType,
		Date:        req.Date,
		Language:    req.Language,
		Tone:        req.Tone,
		Platform:    req.Platform,
		GeneratedAt: p.now(),
	}

	if req.TemplateID != "" {
		v := variants[req.TemplateID][req.Language]
		tmpl, _ := FindTemplate(req.TemplateID)
		res.Title = tmpl.Name
		res.Content = fmt.Sprintf(v.format, req.Details)
		res.Hashtags = prefixed(v.hashtags)
	} else {
		draft, ok := quickDrafts[req.PostType]
		if !ok {
			draft = quickDrafts["promotion"]
		}
		res.Title = draft.title
		res.Content = draft.content
		res.Hashtags = posts.ExtractHashtags(draft.content)
	}

	if req.Language == English {
		res.Content = adjustTone(res.Content, req.Tone)
	}
	res.Content = p.adjustForPlatform(res.Content, req.Platform)
	return res, nil
}

var toneReplacements = map[Tone][][2]string{
	Casual: {
		{"Join us for", "Hey! Come check out"},
		{"Book your spot now!", "Don't miss out!"},
		{"Reserve your table now!", "Come grab a bite with us!"},
		{"Ask our front desk for more information!", "Just ask us for the inside scoop!"},
	},
	Luxury: {
		{"Join us for", "We cordially invite you to experience"},
		{"Book your spot now!", "Secure your exclusive reservation today."},
		{"Reserve your table now!", "We invite you to reserve your exclusive dining experience."},
		{"Ask our front desk for more information!", "Our concierge team would be delighted to provide personalized recommendations."},
	},
}

func adjustTone(content string, tone Tone) string {
	for _, r := range toneReplacements[tone] {
		content = strings.Replace(content, r[0], r[1], 1)
	}
	return content
}

func (p *TemplateProvider) adjustForPlatform(content, platform string) string {
	info, ok := p.platforms.Get(platform)
	if !ok {
		return content
	}
	if info.StripsEmoji {
		content = StripEmoji(content)
	}
	if info.CharacterLimit > 0 {
		content = Truncate(content, info.CharacterLimit)
	}
	return content
}

// Truncate shortens s to at most limit runes, ending in "..." when cut
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

// StripEmoji drops pictographs and their joiners, then trims the result
func StripEmoji(s string) string {
	stripped := strings.Map(func(r rune) rune {
		switch {
		case r == '\uFE0F' || r == '\u200D':
			return -1
		case unicode.Is(unicode.So, r) && r > 0x2000:
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(stripped)
}

func prefixed(tags []string) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = "#" + t
	}
	return out
}
