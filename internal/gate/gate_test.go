package gate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"katze_backend/platform/apperr"
)

var errOverloaded = errors.New("overloaded")

func isOverloaded(err error) bool { return errors.Is(err, errOverloaded) }

type fakeClassifier struct {
	mu      sync.Mutex
	replies []string
	errs    []error
	calls   []time.Time
	prompts []string
}

func (f *fakeClassifier) Classify(_ context.Context, _ string, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := len(f.calls)
	f.calls = append(f.calls, time.Now())
	f.prompts = append(f.prompts, prompt)

	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	} else if len(f.errs) > 0 {
		err = f.errs[len(f.errs)-1]
	}
	if err != nil {
		return "", err
	}
	if i < len(f.replies) {
		return f.replies[i], nil
	}
	return f.replies[len(f.replies)-1], nil
}

func TestIsCatAffirmative(t *testing.T) {
	for _, reply := range []string{"YES", "yes.", "  Yes!\n", "\"YES\""} {
		g := New(&fakeClassifier{replies: []string{reply}}, isOverloaded, nil, WithPolicy(3, 0))
		ok, err := g.IsCat(context.Background(), "/tmp/cat.jpg")
		if err != nil || !ok {
			t.Errorf("reply %q: got %v, %v; want true", reply, ok, err)
		}
	}
}

func TestIsCatNegative(t *testing.T) {
	for _, reply := range []string{"NO", "no.", "Maybe", "YES, but it is a drawing", ""} {
		g := New(&fakeClassifier{replies: []string{reply}}, isOverloaded, nil, WithPolicy(3, 0))
		ok, err := g.IsCat(context.Background(), "/tmp/cat.jpg")
		if err != nil || ok {
			t.Errorf("reply %q: got %v, %v; want false", reply, ok, err)
		}
	}
}

func TestIsCatSendsFixedPrompt(t *testing.T) {
	fc := &fakeClassifier{replies: []string{"YES"}}
	g := New(fc, isOverloaded, nil, WithPolicy(3, 0))
	if _, err := g.IsCat(context.Background(), "/tmp/cat.jpg"); err != nil {
		t.Fatal(err)
	}
	if len(fc.prompts) != 1 || fc.prompts[0] != Prompt {
		t.Fatalf("prompts = %v", fc.prompts)
	}
}

func TestIsCatExhaustsRetriesAndFailsClosed(t *testing.T) {
	delay := 20 * time.Millisecond
	fc := &fakeClassifier{errs: []error{errOverloaded}}
	g := New(fc, isOverloaded, nil, WithPolicy(3, delay))

	ok, err := g.IsCat(context.Background(), "/tmp/cat.jpg")
	if err != nil {
		t.Fatalf("exhaustion should not raise, got %v", err)
	}
	if ok {
		t.Fatal("exhaustion should fail closed")
	}
	if len(fc.calls) != 3 {
		t.Fatalf("attempts = %d, want 3", len(fc.calls))
	}
	for i := 1; i < len(fc.calls); i++ {
		if gap := fc.calls[i].Sub(fc.calls[i-1]); gap < delay {
			t.Errorf("gap between attempt %d and %d = %s, want >= %s", i, i+1, gap, delay)
		}
	}
}

func TestEvaluateReportsExhausted(t *testing.T) {
	g := New(&fakeClassifier{errs: []error{errOverloaded}}, isOverloaded, nil, WithPolicy(3, 0))
	verdict, err := g.Evaluate(context.Background(), "/tmp/cat.jpg")
	if err != nil || verdict != VerdictExhausted {
		t.Fatalf("got %v, %v; want exhausted", verdict, err)
	}
}

func TestIsCatRecoversAfterTransientFailure(t *testing.T) {
	fc := &fakeClassifier{errs: []error{errOverloaded, nil}, replies: []string{"", "YES"}}
	g := New(fc, isOverloaded, nil, WithPolicy(3, 0))

	ok, err := g.IsCat(context.Background(), "/tmp/cat.jpg")
	if err != nil || !ok {
		t.Fatalf("got %v, %v; want true", ok, err)
	}
	if len(fc.calls) != 2 {
		t.Fatalf("attempts = %d, want 2", len(fc.calls))
	}
}

func TestIsCatNonRetryableIsServiceUnavailable(t *testing.T) {
	fc := &fakeClassifier{errs: []error{errors.New("invalid api key")}}
	g := New(fc, isOverloaded, nil, WithPolicy(3, 0))

	ok, err := g.IsCat(context.Background(), "/tmp/cat.jpg")
	if ok {
		t.Fatal("expected false")
	}
	if !apperr.Is(err, apperr.KindServiceUnavailable) {
		t.Fatalf("err = %v, want service unavailable", err)
	}
	if len(fc.calls) != 1 {
		t.Fatalf("attempts = %d, want 1", len(fc.calls))
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("  yes!! \n"); got != "YES" {
		t.Fatalf("Normalize() = %q", got)
	}
}
