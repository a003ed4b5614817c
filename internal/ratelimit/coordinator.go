package ratelimit

import (
	"fmt"
	"sync"
	"time"

	pkgerrors "github.com/sorodev/marketplace-client/pkg/errors"
)

// Info is the advisory quota state carried by response metadata. It is
// informational only and never blocks a request by itself.
type Info struct {
	Remaining int
	Limit     int
	ResetAt   *time.Time
}

// CaptchaState is the server's escalation signal. Once Required is set
// it stays set until a verification token is supplied.
type CaptchaState struct {
	Required bool
	Attempts int
}

// Exceeded is the hard gate raised by a 429. While active, submissions
// are refused locally without a network call. The coordinator owns no
// timer; the transport clears the gate on the next successful response.
type Exceeded struct {
	Exceeded   bool
	RetryAfter int
}

// Coordinator tracks the server-communicated throttling state for one
// session. It is a pure state guard: it never retries and never issues
// network calls. Safe for concurrent use.
type Coordinator struct {
	mu           sync.Mutex
	info         *Info
	captcha      CaptchaState
	captchaToken string
	exceeded     Exceeded

	nextSubID    int
	exceededSubs map[int]func(Exceeded)
	captchaSubs  map[int]func(CaptchaState)
}

func NewCoordinator() *Coordinator {
	return &Coordinator{
		exceededSubs: map[int]func(Exceeded){},
		captchaSubs:  map[int]func(CaptchaState){},
	}
}

// RecordResponseMetadata updates the advisory state from rate-limit
// response headers. Called opportunistically on every response that
// carries them.
func (c *Coordinator) RecordResponseMetadata(remaining, limit int, resetAt *time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.info = &Info{Remaining: remaining, Limit: limit, ResetAt: resetAt}
}

// RecordCaptcha updates the escalation state. Lowering a previously
// raised requirement is ignored; it only clears via a supplied token or
// Reset.
func (c *Coordinator) RecordCaptcha(required bool, attempts int) {
	c.mu.Lock()
	if !required && c.captcha.Required {
		c.mu.Unlock()
		return
	}
	c.captcha = CaptchaState{Required: required, Attempts: attempts}
	state := c.captcha
	subs := c.copyCaptchaSubs()
	c.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}

// SupplyCaptchaToken stores the verification token for the pending
// attempt, unlocking submission.
func (c *Coordinator) SupplyCaptchaToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.captchaToken = token
}

// RecordExceeded raises the hard gate with the server-supplied wait.
func (c *Coordinator) RecordExceeded(retryAfterSeconds int) {
	c.mu.Lock()
	c.exceeded = Exceeded{Exceeded: true, RetryAfter: retryAfterSeconds}
	state := c.exceeded
	subs := c.copyExceededSubs()
	c.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}

// ClearExceeded drops the hard gate. The transport invokes this when a
// later request succeeds.
func (c *Coordinator) ClearExceeded() {
	c.mu.Lock()
	if !c.exceeded.Exceeded {
		c.mu.Unlock()
		return
	}
	c.exceeded = Exceeded{}
	state := c.exceeded
	subs := c.copyExceededSubs()
	c.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}

// InfoSnapshot returns the latest advisory state, if any was recorded.
func (c *Coordinator) InfoSnapshot() (Info, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.info == nil {
		return Info{}, false
	}
	return *c.info, true
}

// Captcha returns the current escalation state.
func (c *Coordinator) Captcha() CaptchaState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.captcha
}

// ExceededState returns the current hard-gate state.
func (c *Coordinator) ExceededState() Exceeded {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exceeded
}

// SubmissionAllowed reports whether an order submission may proceed.
func (c *Coordinator) SubmissionAllowed() bool {
	return c.CheckSubmission() == nil
}

// CheckSubmission returns nil when submission may proceed, or the typed
// refusal to surface. The check is purely local.
func (c *Coordinator) CheckSubmission() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.exceeded.Exceeded {
		return pkgerrors.New(pkgerrors.CodeRateLimitBlocked,
			fmt.Sprintf("too many requests, retry in %d seconds", c.exceeded.RetryAfter)).
			WithDetails(map[string]any{"retryAfter": c.exceeded.RetryAfter})
	}
	if c.captcha.Required && c.captchaToken == "" {
		return pkgerrors.New(pkgerrors.CodeCaptchaRequired,
			"additional verification is required before ordering").
			WithDetails(map[string]any{"attempts": c.captcha.Attempts})
	}
	return nil
}

// Reset clears all throttling state, e.g. after an explicit user action.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	c.info = nil
	c.captcha = CaptchaState{}
	c.captchaToken = ""
	c.exceeded = Exceeded{}
	exceededState := c.exceeded
	captchaState := c.captcha
	exceededSubs := c.copyExceededSubs()
	captchaSubs := c.copyCaptchaSubs()
	c.mu.Unlock()

	for _, fn := range exceededSubs {
		fn(exceededState)
	}
	for _, fn := range captchaSubs {
		fn(captchaState)
	}
}

// SubscribeExceeded registers fn for hard-gate changes. The returned
// cancel func must be invoked on teardown.
func (c *Coordinator) SubscribeExceeded(fn func(Exceeded)) (cancel func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSubID
	c.nextSubID++
	c.exceededSubs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.exceededSubs, id)
	}
}

// SubscribeCaptcha registers fn for escalation changes. The returned
// cancel func must be invoked on teardown.
func (c *Coordinator) SubscribeCaptcha(fn func(CaptchaState)) (cancel func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSubID
	c.nextSubID++
	c.captchaSubs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.captchaSubs, id)
	}
}

func (c *Coordinator) copyExceededSubs() []func(Exceeded) {
	subs := make([]func(Exceeded), 0, len(c.exceededSubs))
	for _, fn := range c.exceededSubs {
		subs = append(subs, fn)
	}
	return subs
}

func (c *Coordinator) copyCaptchaSubs() []func(CaptchaState) {
	subs := make([]func(CaptchaState), 0, len(c.captchaSubs))
	for _, fn := range c.captchaSubs {
		subs = append(subs, fn)
	}
	return subs
}
