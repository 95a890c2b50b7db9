/* Copyright 2025 SolarCareer Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package insight produces weekly recaps and journal analyses with a
// text-generation service
package insight

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"google.golang.org/genai"
)

// DefaultModel is the model used when none is configured
const DefaultModel = "gemini-2.5-flash"

// ErrNoAPIKey is returned when the text-generation service has no API key
var ErrNoAPIKey = errors.New("an API key for the text-generation service is required")

// Generator turns a prompt into text
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GenAIConfig holds the settings of the GenAI generator
type GenAIConfig struct {
	APIKey string
	Model  string
	// BaseURL overrides the service endpoint
	BaseURL    string
	HTTPClient *http.Client
}

// GenAI generates text with the Gemini API
type GenAI struct {
	client *genai.Client
	model  string
}

// NewGenAI returns a generator for the Gemini API
func NewGenAI(ctx context.Context, cfg GenAIConfig) (*GenAI, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, errors.Wrap(err, "creating the genai client")
	}

	return &GenAI{client: client, model: model}, nil
}

// Generate sends the prompt and returns the text of the first candidate
func (g *GenAI) Generate(ctx context.Context, prompt string) (string, error) {
	res, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", errors.Wrap(err, "generating content")
	}

	text := res.Text()
	if text == "" {
		return "", errors.New("empty response")
	}

	return text, nil
}
