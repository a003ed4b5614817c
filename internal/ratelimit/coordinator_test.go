package ratelimit

import (
	"testing"
	"time"

	pkgerrors "github.com/sorodev/marketplace-client/pkg/errors"
)

func TestCheckSubmissionAllowsByDefault(t *testing.T) {
	t.Parallel()

	coord := NewCoordinator()
	if !coord.SubmissionAllowed() {
		t.Fatal("fresh coordinator must allow submission")
	}
}

func TestRecordExceededBlocksSubmission(t *testing.T) {
	t.Parallel()

	coord := NewCoordinator()
	coord.RecordExceeded(30)

	state := coord.ExceededState()
	if !state.Exceeded || state.RetryAfter != 30 {
		t.Fatalf("unexpected exceeded state %+v", state)
	}

	err := coord.CheckSubmission()
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeRateLimitBlocked {
		t.Fatalf("expected rate limit blocked, got %v", err)
	}

	coord.ClearExceeded()
	if !coord.SubmissionAllowed() {
		t.Fatal("clearing the gate must allow submission again")
	}
}

func TestCaptchaGateUntilTokenSupplied(t *testing.T) {
	t.Parallel()

	coord := NewCoordinator()
	coord.RecordCaptcha(true, 3)

	err := coord.CheckSubmission()
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeCaptchaRequired {
		t.Fatalf("expected captcha required, got %v", err)
	}

	// A later response without the header must not lower the gate.
	coord.RecordCaptcha(false, 0)
	if coord.SubmissionAllowed() {
		t.Fatal("captcha requirement must be monotonic")
	}

	coord.SupplyCaptchaToken("tok-123")
	if !coord.SubmissionAllowed() {
		t.Fatal("token should unlock submission")
	}
}

func TestRecordResponseMetadataIsAdvisoryOnly(t *testing.T) {
	t.Parallel()

	coord := NewCoordinator()
	reset := time.Now().Add(time.Minute)
	coord.RecordResponseMetadata(0, 10, &reset)

	info, ok := coord.InfoSnapshot()
	if !ok || info.Remaining != 0 || info.Limit != 10 || info.ResetAt == nil {
		t.Fatalf("unexpected info %+v ok=%v", info, ok)
	}

	// Zero remaining is advisory; it must not block by itself.
	if !coord.SubmissionAllowed() {
		t.Fatal("advisory state must never block submissions")
	}
}

func TestSubscriptionsDeliverAndCancel(t *testing.T) {
	t.Parallel()

	coord := NewCoordinator()

	var got []Exceeded
	cancel := coord.SubscribeExceeded(func(state Exceeded) {
		got = append(got, state)
	})

	coord.RecordExceeded(15)
	coord.ClearExceeded()

	if len(got) != 2 || got[0].RetryAfter != 15 || got[1].Exceeded {
		t.Fatalf("unexpected notifications %+v", got)
	}

	cancel()
	coord.RecordExceeded(30)
	if len(got) != 2 {
		t.Fatalf("cancelled subscriber must not be notified, got %+v", got)
	}
}

func TestResetClearsEverything(t *testing.T) {
	t.Parallel()

	coord := NewCoordinator()
	coord.RecordResponseMetadata(1, 10, nil)
	coord.RecordCaptcha(true, 2)
	coord.RecordExceeded(60)

	coord.Reset()

	if _, ok := coord.InfoSnapshot(); ok {
		t.Fatal("info should be cleared")
	}
	if coord.Captcha().Required {
		t.Fatal("captcha should be cleared")
	}
	if coord.ExceededState().Exceeded {
		t.Fatal("gate should be cleared")
	}
	if !coord.SubmissionAllowed() {
		t.Fatal("reset coordinator must allow submission")
	}
}
