package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
	config "github.com/maheshrc27/autopost/configs"
	"github.com/maheshrc27/autopost/internal/metrics"
	"github.com/maheshrc27/autopost/internal/models"
	"github.com/maheshrc27/autopost/internal/transfer"
)

const (
	postMaxTokens       = 1000
	postTemperature     = 0.7
	hashtagMaxTokens    = 200
	hashtagTemperature  = 0.5
	copywriterSystemMsg = "You are a digital marketing expert who writes LinkedIn content. " +
		"You write engaging, professional posts tailored to a LinkedIn audience. " +
		"Always stay within LinkedIn's 3000 character limit."
)

var toneInstructions = map[string]string{
	models.ToneProfessional: "Use a professional, formal tone",
	models.ToneCasual:       "Use a relaxed, friendly tone",
	models.ToneInspiring:    "Use an inspiring, motivational tone",
	models.ToneEducational:  "Use an educational, informative tone",
	models.TonePromotional:  "Use a promotional tone without sounding too commercial",
}

var lengthInstructions = map[string]string{
	models.LengthShort:  "Keep the post short (100-200 words)",
	models.LengthMedium: "Write a medium-length post (200-400 words)",
	models.LengthLong:   "Write a detailed post (400-600 words)",
}

// ContentGenerator produces post text and hashtags from an LLM.
type ContentGenerator interface {
	GeneratePost(ctx context.Context, req *transfer.PostGeneration) (string, error)
	GenerateHashtags(ctx context.Context, topic string, count int) ([]string, error)
}

type openAIService struct {
	cfg     config.OpenAI
	client  *resty.Client
	metrics metrics.Recorder
}

func NewOpenAIService(cfg config.OpenAI, timeout time.Duration, m metrics.Recorder) ContentGenerator {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.APIURL, "/")).
		SetAuthToken(cfg.APIKey).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	return &openAIService{
		cfg:     cfg,
		client:  client,
		metrics: m,
	}
}

func (s *openAIService) GeneratePost(ctx context.Context, req *transfer.PostGeneration) (string, error) {
	content, err := s.complete(ctx, "generate_post", transfer.ChatCompletionRequest{
		Model: s.cfg.Model,
		Messages: []transfer.ChatMessage{
			{Role: "system", Content: copywriterSystemMsg},
			{Role: "user", Content: buildPostPrompt(req)},
		},
		MaxTokens:   postMaxTokens,
		Temperature: postTemperature,
	})
	if err != nil {
		return "", err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		err = errors.New("openai returned no content")
		slog.Error(err.Error())
		return "", fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if utf8.RuneCountInString(content) > models.MaxContentLength {
		err = fmt.Errorf("generated content exceeds %d characters", models.MaxContentLength)
		slog.Error(err.Error(), "length", utf8.RuneCountInString(content))
		return "", fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return content, nil
}

func (s *openAIService) GenerateHashtags(ctx context.Context, topic string, count int) ([]string, error) {
	if count <= 0 {
		count = transfer.DefaultHashtagCount
	}

	prompt := fmt.Sprintf("Generate %d relevant, popular hashtags for a LinkedIn post about: %q.\n"+
		"Return only the hashtags, one per line, without the # symbol.", count, topic)

	content, err := s.complete(ctx, "generate_hashtags", transfer.ChatCompletionRequest{
		Model:       s.cfg.HashtagModel,
		Messages:    []transfer.ChatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   hashtagMaxTokens,
		Temperature: hashtagTemperature,
	})
	if err != nil {
		return nil, err
	}
	return parseHashtags(content, count), nil
}

// complete runs one chat completion and returns the first choice's text, or "" when there is none.
func (s *openAIService) complete(ctx context.Context, operation string, body transfer.ChatCompletionRequest) (string, error) {
	var (
		result transfer.ChatCompletionResponse
		apiErr transfer.OpenAIErrorResponse
	)

	start := time.Now()
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		SetError(&apiErr).
		Post("/chat/completions")
	if err == nil && resp.IsError() {
		err = fmt.Errorf("openai returned status %d: %s", resp.StatusCode(), apiErr.Error.Message)
	}
	s.metrics.RecordExternalCall("openai", operation, time.Since(start), err)
	if err != nil {
		slog.Error(err.Error(), "operation", operation)
		return "", fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	if len(result.Choices) == 0 {
		return "", nil
	}
	return result.Choices[0].Message.Content, nil
}

func buildPostPrompt(req *transfer.PostGeneration) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Write a LinkedIn post about: %q\n\n", req.Topic)
	fmt.Fprintf(&b, "%s.\n", toneInstructions[req.Tone])
	fmt.Fprintf(&b, "%s.\n", lengthInstructions[req.Length])

	if req.TargetAudience != "" {
		fmt.Fprintf(&b, "Tailor the content for this audience: %s.\n", req.TargetAudience)
	}
	if req.IncludeHashtags {
		b.WriteString("Include 3-5 relevant hashtags at the end of the post.\n")
	}
	if req.IncludeEmojis {
		b.WriteString("Use fitting emojis to make the post more engaging.\n")
	}

	b.WriteString("\nStructure the post to maximize engagement:\n" +
		"- Open with a catchy hook\n" +
		"- Develop your main message\n" +
		"- End with a question or call to action that invites interaction\n" +
		"- Make sure the content brings value to your audience\n\n" +
		"Stay within LinkedIn's 3000 character limit.")

	return b.String()
}

// parseHashtags keeps one tag per non-blank line, without a leading '#', up to count tags.
func parseHashtags(raw string, count int) []string {
	tags := []string{}
	for _, line := range strings.Split(raw, "\n") {
		tag := strings.TrimPrefix(strings.TrimSpace(line), "#")
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		tags = append(tags, tag)
		if len(tags) == count {
			break
		}
	}
	return tags
}
