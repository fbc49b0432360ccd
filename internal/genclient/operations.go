package genclient

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"genstudio/internal/filecodec"
	"genstudio/internal/metrics"
	"genstudio/internal/studio"

	genai "google.golang.org/genai"
)

var errNoInlineImage = errors.New("response carried no inline image data")

// GenerateImage asks the image model for image-only output and returns the
// first inline image of the response.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (*studio.Result, error) {
	start := time.Now()
	resp, err := c.models.GenerateContent(ctx, c.imageModel,
		[]*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: prompt}}}},
		&genai.GenerateContentConfig{ResponseModalities: []string{string(genai.ModalityImage)}},
	)
	if err != nil {
		return nil, c.fail(studio.ModeImage, c.imageModel, start, metrics.OutcomeFailed,
			studio.KindGenerationFailed, studio.MsgGenerationFailed, err)
	}
	blob := firstInlineData(resp)
	if blob == nil {
		return nil, c.fail(studio.ModeImage, c.imageModel, start, metrics.OutcomeEmpty,
			studio.KindGenerationEmpty, studio.MsgGenerationEmpty, blockDetail(resp))
	}
	c.metrics.ObserveGeneration(string(studio.ModeImage), metrics.OutcomeSuccess, time.Since(start))
	return studio.ImageResult(base64.StdEncoding.EncodeToString(blob.Data), blob.MIMEType), nil
}

// GetVisionResponse sends the image inline, followed by the prompt, and
// returns the model's text answer.
func (c *Client) GetVisionResponse(ctx context.Context, prompt string, image filecodec.File) (*studio.Result, error) {
	start := time.Now()
	data, err := filecodec.ReadAll(image)
	if err != nil {
		return nil, c.fail(studio.ModeVision, c.textModel, start, metrics.OutcomeFailed,
			studio.KindVisionFailed, studio.MsgVisionFailed, err)
	}
	resp, err := c.models.GenerateContent(ctx, c.textModel,
		[]*genai.Content{{Role: "user", Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: image.MIMEType(), Data: data}},
			{Text: prompt},
		}}},
		nil,
	)
	if err != nil {
		return nil, c.fail(studio.ModeVision, c.textModel, start, metrics.OutcomeFailed,
			studio.KindVisionFailed, studio.MsgVisionFailed, err)
	}
	c.metrics.ObserveGeneration(string(studio.ModeVision), metrics.OutcomeSuccess, time.Since(start))
	return studio.TextResult(responseText(resp)), nil
}

// ChatWithFile embeds the decoded file ahead of the question and sends it as
// a single text prompt.
func (c *Client) ChatWithFile(ctx context.Context, prompt string, file filecodec.File) (*studio.Result, error) {
	start := time.Now()
	content, err := filecodec.DecodeAsText(file)
	if err != nil {
		return nil, c.fail(studio.ModeFile, c.textModel, start, metrics.OutcomeFailed,
			studio.KindFileChatFailed, studio.MsgFileChatFailed, err)
	}
	full := FilePrompt(file.Name(), content, prompt)
	resp, err := c.models.GenerateContent(ctx, c.textModel,
		[]*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: full}}}},
		nil,
	)
	if err != nil {
		return nil, c.fail(studio.ModeFile, c.textModel, start, metrics.OutcomeFailed,
			studio.KindFileChatFailed, studio.MsgFileChatFailed, err)
	}
	c.metrics.ObserveGeneration(string(studio.ModeFile), metrics.OutcomeSuccess, time.Since(start))
	return studio.TextResult(responseText(resp)), nil
}

// FilePrompt builds the combined prompt for a file chat: the file's name and
// full content as context, then the question.
func FilePrompt(name, content, question string) string {
	var b strings.Builder
	b.WriteString("CONTEXT from the file \"" + name + "\":\n")
	b.WriteString("---\n")
	b.WriteString(content)
	b.WriteString("\n---\n\n")
	b.WriteString("Based on the context above, answer the following question:\n")
	b.WriteString(question)
	return b.String()
}

func (c *Client) fail(mode studio.Mode, model string, start time.Time, outcome string, kind studio.ErrorKind, msg string, cause error) error {
	elapsed := time.Since(start)
	c.metrics.ObserveGeneration(string(mode), outcome, elapsed)
	c.log.Error().
		Err(cause).
		Str("mode", string(mode)).
		Str("model", model).
		Str("kind", string(kind)).
		Dur("elapsed", elapsed).
		Msg("generation failed")
	return studio.NewUserError(kind, msg, cause)
}

func firstInlineData(resp *genai.GenerateContentResponse) *genai.Blob {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return nil
	}
	for _, part := range cand.Content.Parts {
		if part != nil && part.InlineData != nil {
			return part.InlineData
		}
	}
	return nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range cand.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		b.WriteString(part.Text)
	}
	return b.String()
}

// blockDetail describes why a response had no image, for the log only.
func blockDetail(resp *genai.GenerateContentResponse) error {
	if resp == nil {
		return fmt.Errorf("%w: nil response", errNoInlineImage)
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" {
		return fmt.Errorf("%w: prompt blocked (%s)", errNoInlineImage, fb.BlockReason)
	}
	if len(resp.Candidates) > 0 && resp.Candidates[0] != nil && resp.Candidates[0].FinishReason != "" {
		return fmt.Errorf("%w: finish reason %s", errNoInlineImage, resp.Candidates[0].FinishReason)
	}
	return errNoInlineImage
}
