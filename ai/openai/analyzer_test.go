package openai

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/glimpse/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

// fakeModel replays canned responses in order; the last one repeats.
type fakeModel struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	calls     int
	lastParts []llms.ContentPart
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.calls
	f.calls++
	f.lastParts = messages[len(messages)-1].Parts

	if len(f.errs) > 0 {
		if err := f.errs[min(i, len(f.errs)-1)]; err != nil {
			return nil, err
		}
	}
	if len(f.responses) == 0 {
		return &llms.ContentResponse{}, nil
	}
	content := f.responses[min(i, len(f.responses)-1)]
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: content}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func (f *fakeModel) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testAnalyzer(client llms.Model) *Analyzer {
	return &Analyzer{
		client: client,
		model:  "test-vision",
		policy: ai.RetryPolicy{MaxAttempts: 2, BaseDelay: time.Millisecond},
		logger: slog.Default(),
	}
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestAnalyzer_Describe(t *testing.T) {
	ctx := context.Background()

	t.Run("parses fenced and damaged JSON", func(t *testing.T) {
		client := &fakeModel{responses: []string{
			"```json\n{visual_summary\": \"A login form\", \"text_content\": \"Invalid password\",}\n```",
		}}
		desc, err := testAnalyzer(client).Describe(ctx, pngHeader, "image/png")
		require.NoError(t, err)
		assert.Equal(t, "A login form", desc.VisualSummary)
		assert.Equal(t, "Invalid password", desc.TextContent)
		assert.Equal(t, 1, client.callCount())

		require.Len(t, client.lastParts, 2)
		img, ok := client.lastParts[0].(llms.ImageURLContent)
		require.True(t, ok, "image is sent as a data URL part")
		assert.Contains(t, img.URL, "data:image/png;base64,")
	})

	t.Run("retries malformed output", func(t *testing.T) {
		client := &fakeModel{responses: []string{
			"I cannot comply",
			`{"visual_summary": "A bar chart", "text_content": ""}`,
		}}
		desc, err := testAnalyzer(client).Describe(ctx, pngHeader, "image/png")
		require.NoError(t, err)
		assert.Equal(t, "A bar chart", desc.VisualSummary)
		assert.Empty(t, desc.TextContent)
		assert.Equal(t, 2, client.callCount())
	})

	t.Run("unparseable output is permanent", func(t *testing.T) {
		client := &fakeModel{responses: []string{"not json at all"}}
		_, err := testAnalyzer(client).Describe(ctx, pngHeader, "image/png")
		require.Error(t, err)
		assert.True(t, ai.IsPermanent(err))
		assert.ErrorIs(t, err, ErrUnparseableResponse)
		assert.Equal(t, parseAttempts, client.callCount(), "permanent failures are not retried by the policy")
	})

	t.Run("empty description is rejected", func(t *testing.T) {
		client := &fakeModel{responses: []string{`{"visual_summary": "", "text_content": ""}`}}
		_, err := testAnalyzer(client).Describe(ctx, pngHeader, "image/png")
		assert.True(t, ai.IsPermanent(err))
	})

	t.Run("transient failures are retried then reported", func(t *testing.T) {
		client := &fakeModel{errs: []error{ai.NewTransientError("rate limited", nil)}}
		_, err := testAnalyzer(client).Describe(ctx, pngHeader, "image/png")
		require.Error(t, err)
		assert.True(t, ai.IsTransient(err))
		assert.Equal(t, 2, client.callCount())
	})

	t.Run("recovers after a transient failure", func(t *testing.T) {
		client := &fakeModel{
			errs:      []error{ai.NewTransientError("busy", nil), nil},
			responses: []string{`{"visual_summary": "Settings page", "text_content": "Dark mode"}`},
		}
		desc, err := testAnalyzer(client).Describe(ctx, pngHeader, "image/png")
		require.NoError(t, err)
		assert.Equal(t, "Dark mode", desc.TextContent)
		assert.Equal(t, 2, client.callCount())
	})

	t.Run("no choices is permanent", func(t *testing.T) {
		client := &fakeModel{}
		_, err := testAnalyzer(client).Describe(ctx, pngHeader, "image/png")
		assert.ErrorIs(t, err, ErrEmptyResponse)
		assert.True(t, ai.IsPermanent(err))
	})

	t.Run("empty image", func(t *testing.T) {
		client := &fakeModel{}
		_, err := testAnalyzer(client).Describe(ctx, nil, "image/png")
		assert.ErrorIs(t, err, ai.ErrEmptyImage)
		assert.Equal(t, 0, client.callCount())
	})

	t.Run("sniffs octet-stream and rejects non-images", func(t *testing.T) {
		client := &fakeModel{}
		_, err := testAnalyzer(client).Describe(ctx, []byte("just some text"), "application/octet-stream")
		assert.ErrorIs(t, err, ErrUnsupportedImage)
		assert.True(t, ai.IsPermanent(err))
		assert.Equal(t, 0, client.callCount())
	})
}

func TestClassifyError(t *testing.T) {
	assert.NoError(t, classifyError(nil))

	ae := ai.NewTransientError("busy", nil)
	assert.Same(t, ae, classifyError(ae))

	assert.True(t, ai.IsTransient(classifyError(context.DeadlineExceeded)))
	assert.True(t, ai.IsTransient(classifyError(context.Canceled)))

	var target *ai.AnalysisError
	require.ErrorAs(t, classifyError(errors.New("boom")), &target)
}

func TestModel(t *testing.T) {
	assert.Equal(t, "test-vision", testAnalyzer(&fakeModel{}).Model())
}
