// Package gemini implements the extraction oracle on top of the Gemini API.
package gemini

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/goliatone/go-quotefill/pkg/extraction"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

var errEmptyResponse = errors.New("gemini: empty response")

type modelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type filesAPI interface {
	Upload(ctx context.Context, r io.Reader, config *genai.UploadFileConfig) (*genai.File, error)
	Delete(ctx context.Context, name string, config *genai.DeleteFileConfig) (*genai.DeleteFileResponse, error)
}

// Option configures an Oracle.
type Option func(*Oracle)

// WithModel selects the generation model.
func WithModel(model string) Option {
	return func(o *Oracle) {
		if trimmed := strings.TrimSpace(model); trimmed != "" {
			o.model = trimmed
		}
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float32) Option {
	return func(o *Oracle) {
		o.temperature = &t
	}
}

// WithSystemInstruction sets a system instruction sent with every call.
func WithSystemInstruction(text string) Option {
	return func(o *Oracle) {
		o.system = strings.TrimSpace(text)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Oracle) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Oracle sends prompts and uploaded source files to Gemini and asks for JSON
// matching the extraction result schema.
type Oracle struct {
	models      modelsAPI
	files       filesAPI
	model       string
	temperature *float32
	system      string
	schema      *genai.Schema
	logger      *zap.Logger
}

var (
	_ extraction.Oracle    = (*Oracle)(nil)
	_ extraction.FileStore = (*Oracle)(nil)
)

// New creates a Gemini API client authenticated with apiKey.
func New(ctx context.Context, apiKey string, opts ...Option) (*Oracle, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini: api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return newOracle(client.Models, client.Files, opts...)
}

func newOracle(models modelsAPI, files filesAPI, opts ...Option) (*Oracle, error) {
	schema, err := ResponseSchema()
	if err != nil {
		return nil, err
	}
	o := &Oracle{
		models: models,
		files:  files,
		model:  DefaultModel,
		schema: schema,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o, nil
}

// Extract asks the model for a JSON answer to the call prompt, attaching any
// uploaded files.
func (o *Oracle) Extract(ctx context.Context, call extraction.Call) ([]byte, error) {
	parts := make([]*genai.Part, 0, len(call.Files)+1)
	for _, ref := range call.Files {
		parts = append(parts, genai.NewPartFromURI(ref.URI, ref.MIMEType))
	}
	parts = append(parts, genai.NewPartFromText(call.Prompt))

	config := &genai.GenerateContentConfig{
		Temperature:      o.temperature,
		ResponseMIMEType: "application/json",
		ResponseSchema:   o.schema,
	}
	if o.system != "" {
		config.SystemInstruction = genai.NewContentFromText(o.system, genai.RoleUser)
	}

	o.logger.Debug("gemini generate",
		zap.String("model", o.model),
		zap.Int("attempt", call.Attempt),
		zap.Int("files", len(call.Files)),
	)
	resp, err := o.models.GenerateContent(ctx, o.model, []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, config)
	if err != nil {
		return nil, fmt.Errorf("gemini: generate content: %w", err)
	}
	if resp == nil {
		return nil, errEmptyResponse
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, errEmptyResponse
	}
	return []byte(text), nil
}

// Upload sends a source file to the Files API.
func (o *Oracle) Upload(ctx context.Context, source extraction.Source) (extraction.FileRef, error) {
	reader, err := openSource(source)
	if err != nil {
		return extraction.FileRef{}, err
	}
	if closer, ok := reader.(io.Closer); ok {
		defer closer.Close()
	}

	mimeType := source.MIMEType
	if mimeType == "" {
		mimeType = guessMIME(sourceName(source))
	}
	file, err := o.files.Upload(ctx, reader, &genai.UploadFileConfig{
		MIMEType:    mimeType,
		DisplayName: sourceName(source),
	})
	if err != nil {
		return extraction.FileRef{}, fmt.Errorf("gemini: upload %q: %w", sourceName(source), err)
	}
	if file == nil {
		return extraction.FileRef{}, fmt.Errorf("gemini: upload %q: %w", sourceName(source), errEmptyResponse)
	}
	if file.MIMEType != "" {
		mimeType = file.MIMEType
	}
	return extraction.FileRef{
		Source:   source.Name,
		Name:     file.Name,
		URI:      file.URI,
		MIMEType: mimeType,
	}, nil
}

// Release deletes an uploaded file.
func (o *Oracle) Release(ctx context.Context, ref extraction.FileRef) error {
	if ref.Name == "" {
		return nil
	}
	if _, err := o.files.Delete(ctx, ref.Name, nil); err != nil {
		return fmt.Errorf("gemini: delete %q: %w", ref.Name, err)
	}
	return nil
}

func openSource(source extraction.Source) (io.Reader, error) {
	if len(source.Content) > 0 {
		return bytes.NewReader(source.Content), nil
	}
	if source.Path == "" {
		return nil, fmt.Errorf("gemini: source %q has no file", source.Name)
	}
	f, err := os.Open(source.Path)
	if err != nil {
		return nil, fmt.Errorf("gemini: open source: %w", err)
	}
	return f, nil
}

func sourceName(source extraction.Source) string {
	if source.Name != "" {
		return source.Name
	}
	return filepath.Base(source.Path)
}

func guessMIME(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".txt":
		return "text/plain"
	case ".html", ".htm":
		return "text/html"
	default:
		return "application/octet-stream"
	}
}
