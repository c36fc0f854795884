package suggest

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/critpath/pkg/config"
	"github.com/matzehuels/critpath/pkg/errors"
	"github.com/matzehuels/critpath/pkg/httputil"
	"github.com/matzehuels/critpath/pkg/task"
)

// GeminiOptions configures a [Gemini] client. Zero values select defaults.
type GeminiOptions struct {
	APIKey   string
	Model    string
	Endpoint string
	Timeout  time.Duration
	// Attempts and RetryDelay control retries of transient failures.
	Attempts   int
	RetryDelay time.Duration
}

// Gemini calls the Gemini generateContent REST endpoint.
type Gemini struct {
	client   *httputil.Client
	model    string
	endpoint string
	attempts int
	delay    time.Duration
}

// NewGemini returns a client for opts. The API key is sent in the
// x-goog-api-key header.
func NewGemini(opts GeminiOptions) *Gemini {
	g := &Gemini{
		client:   httputil.NewClient(opts.Timeout, map[string]string{"x-goog-api-key": opts.APIKey}),
		model:    opts.Model,
		endpoint: strings.TrimRight(opts.Endpoint, "/"),
		attempts: opts.Attempts,
		delay:    opts.RetryDelay,
	}
	if g.model == "" {
		g.model = config.DefaultModel
	}
	if g.endpoint == "" {
		g.endpoint = config.DefaultEndpoint
	}
	if g.attempts <= 0 {
		g.attempts = 3
	}
	if g.delay <= 0 {
		g.delay = time.Second
	}
	return g
}

func (g *Gemini) Name() string { return "gemini/" + g.model }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Suggest sends the prompt for t and returns the trimmed response text.
func (g *Gemini) Suggest(ctx context.Context, t task.Task, all []task.Task) (string, error) {
	req := geminiRequest{Contents: []geminiContent{{Parts: []geminiPart{{Text: Prompt(t, all)}}}}}
	url := fmt.Sprintf("%s/models/%s:generateContent", g.endpoint, g.model)

	var resp geminiResponse
	err := httputil.Retry(ctx, g.attempts, g.delay, func() error {
		resp = geminiResponse{}
		return g.client.PostJSON(ctx, url, req, &resp)
	})
	if err != nil {
		return "", mapGeminiError(err)
	}

	var b strings.Builder
	for _, c := range resp.Candidates {
		for _, p := range c.Content.Parts {
			b.WriteString(p.Text)
		}
		if b.Len() > 0 {
			break
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", errors.New(errors.ErrCodeInternal, "no response text received from Gemini API")
	}
	return text, nil
}

// mapGeminiError turns transport and API failures into coded errors with
// messages a user can act on.
func mapGeminiError(err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Wrap(errors.ErrCodeTimeout, err, "Gemini API request timed out")
	}
	if stderrors.Is(err, context.Canceled) {
		return err
	}
	var se *httputil.StatusError
	if stderrors.As(err, &se) {
		body := strings.ToLower(se.Body)
		switch {
		case strings.Contains(se.Body, "API_KEY_INVALID"):
			return errors.New(errors.ErrCodeUnauthorized, "Invalid Gemini API key. Please check your GEMINI_API_KEY.")
		case se.Code == 429 || strings.Contains(body, "quota") || strings.Contains(body, "billing"):
			return errors.New(errors.ErrCodeQuotaExceeded, "API quota exceeded. Please check your Google AI Studio billing.")
		case se.Code == 401 || se.Code == 403:
			return errors.Wrap(errors.ErrCodeUnauthorized, err, "Gemini API rejected the credentials")
		}
	}
	return errors.Wrap(errors.ErrCodeNetwork, err, "Error calling Gemini API")
}
