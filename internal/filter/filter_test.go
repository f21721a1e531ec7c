package filter

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nao1215/threadscan/internal/model"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("empty pattern disables filtering", func(t *testing.T) {
		t.Parallel()

		e, err := New("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if e.Enabled() {
			t.Error("expected filter to be disabled")
		}
		if e.Pattern() != "" {
			t.Errorf("Pattern() = %q", e.Pattern())
		}
	})

	t.Run("pattern is kept as configured", func(t *testing.T) {
		t.Parallel()

		e, err := New(`go(lang)?`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if e.Pattern() != `go(lang)?` {
			t.Errorf("Pattern() = %q", e.Pattern())
		}
	})

	t.Run("invalid pattern returns ErrInvalidPattern", func(t *testing.T) {
		t.Parallel()

		_, err := New(`([`)
		if !errors.Is(err, ErrInvalidPattern) {
			t.Errorf("expected ErrInvalidPattern, got %v", err)
		}
	})
}

func TestEvaluatorDecide(t *testing.T) {
	t.Parallel()

	rec := model.CommentRecord{
		Commenter: "alice",
		Content:   "nothing to see",
		Children:  []model.CommentRecord{{Content: "a reply"}},
	}

	t.Run("without a pattern every record passes unmodified", func(t *testing.T) {
		t.Parallel()

		e, _ := New("")
		e.Reset()
		e.Test("anything")
		got := e.Decide(rec)
		if got == nil {
			t.Fatal("expected record to pass")
		}
		if diff := cmp.Diff(rec, *got); diff != "" {
			t.Errorf("record changed (-want +got):\n%s", diff)
		}
	})

	t.Run("match is case insensitive", func(t *testing.T) {
		t.Parallel()

		e, _ := New("golang")
		e.Reset()
		e.Test("I love GoLang")
		if e.Decide(rec) == nil {
			t.Error("expected record to pass")
		}
	})

	t.Run("no match suppresses the whole thread", func(t *testing.T) {
		t.Parallel()

		e, _ := New("golang")
		e.Reset()
		e.Test("nothing to see")
		e.Test("a reply")
		if got := e.Decide(rec); got != nil {
			t.Errorf("expected suppression, got %+v", got)
		}
	})

	t.Run("a reply match passes the parent", func(t *testing.T) {
		t.Parallel()

		e, _ := New("reply")
		e.Reset()
		e.Test("parent text without the word")
		e.Test("this is a REPLY")
		got := e.Decide(rec)
		if got == nil {
			t.Fatal("expected parent to pass")
		}
		if len(got.Children) != 1 {
			t.Errorf("expected children to be kept, got %d", len(got.Children))
		}
	})

	t.Run("decision is final until reset", func(t *testing.T) {
		t.Parallel()

		e, _ := New("late")
		e.Reset()
		e.Test("early")
		if e.Decide(rec) != nil {
			t.Fatal("expected suppression")
		}

		e.Test("late")
		if e.Decide(rec) != nil {
			t.Error("repeated Decide changed the outcome")
		}
		if e.Found() {
			t.Error("Test after Decide must not change the found flag")
		}

		e.Reset()
		e.Test("late")
		if e.Decide(rec) == nil {
			t.Error("expected the next thread to pass after Reset")
		}
	})

	t.Run("reset clears the found flag", func(t *testing.T) {
		t.Parallel()

		e, _ := New("x")
		e.Reset()
		e.Test("x")
		if !e.Found() {
			t.Fatal("expected found")
		}
		e.Reset()
		if e.Found() {
			t.Error("expected found to be cleared")
		}
	})
}
