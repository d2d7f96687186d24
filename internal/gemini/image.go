package gemini

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"google.golang.org/genai"

	"pegasusedge/internal/logging"
)

// ImageGenerator produces images through the GenAI SDK. The SDK is used
// only for this modality; text and chat go through the REST client.
type ImageGenerator struct {
	client *genai.Client
	model  string
}

// NewImageGenerator creates an image generator.
func NewImageGenerator(ctx context.Context, apiKey, model string) (*ImageGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if model == "" {
		model = "imagen-3.0-generate-002"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &ImageGenerator{client: client, model: model}, nil
}

// Generate produces a single JPEG image for the prompt and returns it as
// a data URI suitable for storage or decoding. No automatic retries.
func (g *ImageGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	startTime := time.Now()

	result, err := g.client.Models.GenerateImages(ctx,
		g.model,
		prompt,
		&genai.GenerateImagesConfig{
			NumberOfImages:   1,
			OutputMIMEType:   "image/jpeg",
			AspectRatio:      "16:9",
			IncludeRAIReason: true,
		},
	)
	if err != nil {
		logging.GeminiError("GenerateImages failed after %v: %v", time.Since(startTime), err)
		return "", fmt.Errorf("image generation failed: %w", err)
	}

	if len(result.GeneratedImages) == 0 || result.GeneratedImages[0].Image == nil ||
		len(result.GeneratedImages[0].Image.ImageBytes) == 0 {
		return "", fmt.Errorf("no image returned")
	}

	encoded := base64.StdEncoding.EncodeToString(result.GeneratedImages[0].Image.ImageBytes)
	logging.Gemini("GenerateImages: completed in %v model=%s bytes=%d",
		time.Since(startTime), g.model, len(result.GeneratedImages[0].Image.ImageBytes))

	return "data:image/jpeg;base64," + encoded, nil
}
