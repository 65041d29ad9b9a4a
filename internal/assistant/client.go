// Package assistant — клиент генеративного сервиса Gemini: ответы ассистента по данным панели,
// письма о продлении и иллюстрации предложений. Ошибки сервиса возвращаются вызывающему
// и показываются оператору рядом с действием; операции с данными от них не зависят.
package assistant

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

var (
	// ErrNotConfigured — ключ API не задан.
	ErrNotConfigured = errors.New("assistant API key is not configured")
	// ErrEmptyResponse — сервис ответил без текста или изображения.
	ErrEmptyResponse = errors.New("assistant returned an empty response")
)

// APIError — ответ сервиса с кодом ошибки.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("assistant API error %d: %s", e.StatusCode, e.Message)
}

// Config — параметры клиента.
type Config struct {
	APIKey     string
	BaseURL    string
	APIVersion string
	TextModel  string
	ImageModel string
	Timeout    time.Duration
}

// Client обращается к Gemini через официальный SDK.
type Client struct {
	genai      *genai.Client
	textModel  string
	imageModel string
	now        func() time.Time
}

// NewClient создаёт клиент. Пустой ключ допустим: каждый вызов тогда вернёт ErrNotConfigured.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	const op = "assistant.NewClient"

	if cfg.TextModel == "" {
		cfg.TextModel = "gemini-2.5-flash"
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = "imagen-4.0-generate-001"
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = "v1beta"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	c := &Client{
		textModel:  cfg.TextModel,
		imageModel: cfg.ImageModel,
		now:        time.Now,
	}
	if cfg.APIKey == "" {
		return c, nil
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    cfg.BaseURL,
			APIVersion: cfg.APIVersion,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	c.genai = gc
	return c, nil
}

// Configured сообщает, задан ли ключ API.
func (c *Client) Configured() bool {
	return c.genai != nil
}

// apiError приводит ошибку SDK к APIError, остальные ошибки возвращает как есть.
func apiError(err error) error {
	var value genai.APIError
	if errors.As(err, &value) {
		return &APIError{StatusCode: value.Code, Message: strings.TrimSpace(value.Message)}
	}
	var ptr *genai.APIError
	if errors.As(err, &ptr) {
		return &APIError{StatusCode: ptr.Code, Message: strings.TrimSpace(ptr.Message)}
	}
	return err
}

// generateText отправляет промпт текстовой модели и возвращает её ответ.
func (c *Client) generateText(ctx context.Context, prompt string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	resp, err := c.genai.Models.GenerateContent(ctx, c.textModel, genai.Text(prompt), nil)
	if err != nil {
		return "", apiError(err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// generateImage запрашивает одно квадратное изображение JPEG и возвращает data URL.
func (c *Client) generateImage(ctx context.Context, prompt string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	resp, err := c.genai.Models.GenerateImages(ctx, c.imageModel, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		AspectRatio:    "1:1",
		OutputMIMEType: "image/jpeg",
	})
	if err != nil {
		return "", apiError(err)
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil || len(resp.GeneratedImages[0].Image.ImageBytes) == 0 {
		return "", ErrEmptyResponse
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(resp.GeneratedImages[0].Image.ImageBytes), nil
}
