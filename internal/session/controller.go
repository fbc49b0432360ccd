package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"genstudio/internal/filecodec"
	"genstudio/internal/metrics"
	"genstudio/internal/studio"

	"github.com/rs/zerolog"
)

// ErrBusy is returned by intents that arrive while a submission is in flight.
// The intent is ignored.
var ErrBusy = errors.New("session: submission in flight")

// Generator performs the remote call for each mode.
type Generator interface {
	GenerateImage(ctx context.Context, prompt string) (*studio.Result, error)
	GetVisionResponse(ctx context.Context, prompt string, image filecodec.File) (*studio.Result, error)
	ChatWithFile(ctx context.Context, prompt string, file filecodec.File) (*studio.Result, error)
}

// Outcome reports what a submit intent did.
type Outcome int

const (
	// OutcomeIgnored: empty prompt or already in flight. Nothing changed.
	OutcomeIgnored Outcome = iota
	// OutcomeRejected: a required attachment was missing. An error result was
	// set without any remote call.
	OutcomeRejected
	// OutcomeDispatched: the remote call was issued.
	OutcomeDispatched
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeRejected:
		return "rejected"
	case OutcomeDispatched:
		return "dispatched"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Controller owns the interaction state of one user session and enforces
// single-flight submission. All methods are safe for concurrent use.
type Controller struct {
	gen     Generator
	log     zerolog.Logger
	metrics *metrics.Metrics

	mu       sync.Mutex
	mode     studio.Mode
	prompt   string
	image    filecodec.File
	file     filecodec.File
	inFlight bool
	result   *studio.Result
	version  uint64
	changed  chan struct{}
}

type Option func(*Controller)

func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Controller) { c.metrics = m }
}

// NewController starts in image mode with empty inputs.
func NewController(gen Generator, opts ...Option) *Controller {
	c := &Controller{
		gen:     gen,
		log:     zerolog.Nop(),
		mode:    studio.ModeImage,
		changed: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ChangeMode switches mode and clears the prompt, both attachments and the
// result, whatever the previous values were.
func (c *Controller) ChangeMode(mode studio.Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("session: unknown mode %q", mode)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight {
		return ErrBusy
	}
	c.mode = mode
	c.prompt = ""
	c.image = nil
	c.file = nil
	c.result = nil
	c.notifyLocked()
	return nil
}

func (c *Controller) SetPrompt(text string) error {
	return c.mutate(func() { c.prompt = text })
}

// SetImageAttachment sets or, with nil, clears the image slot.
func (c *Controller) SetImageAttachment(f filecodec.File) error {
	return c.mutate(func() { c.image = f })
}

// SetFileAttachment sets or, with nil, clears the file slot.
func (c *Controller) SetFileAttachment(f filecodec.File) error {
	return c.mutate(func() { c.file = f })
}

// ClearInputs empties the prompt and both attachments. The result stays.
func (c *Controller) ClearInputs() error {
	return c.mutate(func() {
		c.prompt = ""
		c.image = nil
		c.file = nil
	})
}

func (c *Controller) mutate(fn func()) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight {
		return ErrBusy
	}
	fn()
	c.notifyLocked()
	return nil
}

// Submit validates the pending inputs for the current mode and, when they are
// complete, performs the remote call and waits for it to resolve.
func (c *Controller) Submit(ctx context.Context) Outcome {
	done, outcome := c.SubmitAsync(ctx)
	<-done
	return outcome
}

// SubmitAsync is Submit without the wait: validation and the transition to
// in-flight happen before it returns, the remote call runs on its own
// goroutine and done closes once the result is set. The call is not
// cancelled when ctx is.
func (c *Controller) SubmitAsync(ctx context.Context) (done <-chan struct{}, outcome Outcome) {
	c.mu.Lock()
	if c.inFlight || c.prompt == "" {
		c.mu.Unlock()
		c.metrics.ObserveSubmission(OutcomeIgnored.String())
		return closedChan(), OutcomeIgnored
	}
	switch {
	case c.mode == studio.ModeVision && c.image == nil:
		c.rejectLocked(studio.MsgMissingImage)
		c.mu.Unlock()
		return closedChan(), OutcomeRejected
	case c.mode == studio.ModeFile && c.file == nil:
		c.rejectLocked(studio.MsgMissingFile)
		c.mu.Unlock()
		return closedChan(), OutcomeRejected
	}
	mode, prompt, image, file := c.mode, c.prompt, c.image, c.file
	c.result = nil
	c.inFlight = true
	c.notifyLocked()
	c.mu.Unlock()
	c.metrics.ObserveSubmission(OutcomeDispatched.String())

	ch := make(chan struct{})
	go func() {
		defer close(ch)
		res := c.run(context.WithoutCancel(ctx), mode, prompt, image, file)
		c.mu.Lock()
		c.result = res
		c.inFlight = false
		c.notifyLocked()
		c.mu.Unlock()
	}()
	return ch, OutcomeDispatched
}

func (c *Controller) rejectLocked(msg string) {
	c.result = studio.ErrorResult(msg)
	c.notifyLocked()
	c.metrics.ObserveSubmission(OutcomeRejected.String())
	c.log.Debug().Str("mode", string(c.mode)).Msg(msg)
}

// run always yields a complete result: success, or an error result carrying
// only the user-facing message.
func (c *Controller) run(ctx context.Context, mode studio.Mode, prompt string, image, file filecodec.File) (res *studio.Result) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error().Interface("panic", r).Str("mode", string(mode)).Msg("generator panicked")
			res = studio.ErrorResult(studio.MsgUnexpected)
		}
	}()

	var err error
	switch mode {
	case studio.ModeImage:
		res, err = c.gen.GenerateImage(ctx, prompt)
	case studio.ModeVision:
		res, err = c.gen.GetVisionResponse(ctx, prompt, image)
	case studio.ModeFile:
		res, err = c.gen.ChatWithFile(ctx, prompt, file)
	default:
		err = fmt.Errorf("session: invalid mode %q", mode)
	}
	if err != nil {
		c.log.Warn().Err(err).Str("mode", string(mode)).Msg("submission failed")
		return studio.ErrorResult(studio.UserMessage(err))
	}
	if res == nil {
		return studio.ErrorResult(studio.MsgUnexpected)
	}
	return res
}

func (c *Controller) notifyLocked() {
	c.version++
	close(c.changed)
	c.changed = make(chan struct{})
}

func closedChan() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
