package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/magabrotheeeer/iptv-panel/internal/models"
)

// Brand — название сервиса в промптах.
const Brand = "ALL IPTV"

type subscriberContext struct {
	Name    string        `json:"name"`
	Email   string        `json:"email"`
	Status  models.Status `json:"status"`
	EndDate time.Time     `json:"endDate"`
	OfferID string        `json:"offerId"`
}

type dataContext struct {
	Subscribers []subscriberContext `json:"subscribers"`
	Offers      []models.Offer      `json:"offers"`
	CurrentDate time.Time           `json:"currentDate"`
}

// formatContext сериализует видимые актору данные для промпта. Телефоны, устройства
// и заметки в контекст не передаются.
func formatContext(subs []models.Subscription, offers []models.Offer, now time.Time) (string, error) {
	dc := dataContext{
		Subscribers: make([]subscriberContext, 0, len(subs)),
		Offers:      make([]models.Offer, 0, len(offers)),
		CurrentDate: now.UTC(),
	}
	for _, s := range subs {
		dc.Subscribers = append(dc.Subscribers, subscriberContext{
			Name:    s.FullName,
			Email:   s.Email,
			Status:  s.Status,
			EndDate: s.EndDate,
			OfferID: s.OfferID,
		})
	}
	for _, o := range offers {
		o.ImageURL = ""
		dc.Offers = append(dc.Offers, o)
	}
	b, err := json.Marshal(dc)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// GenerateResponse отвечает на вопрос оператора с учётом снимка данных.
func (c *Client) GenerateResponse(ctx context.Context, prompt string, subs []models.Subscription, offers []models.Offer) (string, error) {
	const op = "assistant.GenerateResponse"

	data, err := formatContext(subs, offers, c.now())
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	full := fmt.Sprintf(`You are the official virtual assistant of the %q platform.
Here is the current system data in JSON:
%s

Your job is to help the manager analyse the data, draft renewal reminders and suggest marketing strategies for %s.
Always answer professionally, concisely and helpfully, in the language of the request.
If you propose actions, make sure they are relevant to an IPTV streaming service.

The user's request is: %q`, Brand, data, Brand, prompt)

	text, err := c.generateText(ctx, full)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return text, nil
}

// GenerateRenewalEmail составляет письмо с предложением продлить подписку.
func (c *Client) GenerateRenewalEmail(ctx context.Context, sub models.Subscription, offer models.Offer) (string, error) {
	const op = "assistant.GenerateRenewalEmail"

	prompt := fmt.Sprintf(`Write a compelling sales email for the customer %s.
Context: their %q subscription with %s expires on %s.
Goal: convince them to renew right away so they do not lose access to their favourite channels and VOD.

Tone: professional, urgent but friendly.

Strict rules:
1. The subject line must be catchy.
2. The body must be clear.
3. The signature must be exactly: "The %s team".

Output format:
Subject: [subject]

[body]`, sub.FullName, offer.Name, Brand, sub.EndDate.Format("2006-01-02"), Brand)

	text, err := c.generateText(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return text, nil
}

// GenerateOfferImage рисует иконку предложения и возвращает её как data URL.
func (c *Client) GenerateOfferImage(ctx context.Context, name, description string) (string, error) {
	const op = "assistant.GenerateOfferImage"

	prompt := fmt.Sprintf(`Create a premium, high-tech 3D icon for an IPTV subscription service called %q.
Package name: %q.
Description context: %q.
Visual style: cyberpunk aesthetic, neon glowing accents (blue, purple, cyan), dark metallic background, glossy finish.
The image should look like a high-end digital product badge or shield.
No text inside the image, just the symbol or graphic representation.`, Brand, name, description)

	img, err := c.generateImage(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return img, nil
}
