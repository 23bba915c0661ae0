package capture

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ambientanki/ambientd/internal/models"
	"github.com/ambientanki/ambientd/internal/monitor"
	"github.com/ambientanki/ambientd/internal/queue"
)

func TestShouldCaptureURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		url   string
		rules models.AutoCaptureRules
		want  bool
	}{
		{
			name: "no rules allows everything",
			url:  "https://example.com/article",
			want: true,
		},
		{
			name:  "blacklist match rejects",
			url:   "https://social.example.com/feed",
			rules: models.AutoCaptureRules{Blacklist: []string{`social\.`}},
			want:  false,
		},
		{
			name: "blacklist wins over whitelist",
			url:  "https://docs.example.com/private",
			rules: models.AutoCaptureRules{
				Whitelist: []string{`docs\.example\.com`},
				Blacklist: []string{`/private`},
			},
			want: false,
		},
		{
			name:  "whitelist present requires a match",
			url:   "https://other.example.com/page",
			rules: models.AutoCaptureRules{Whitelist: []string{`docs\.example\.com`}},
			want:  false,
		},
		{
			name:  "whitelist match allows",
			url:   "https://docs.example.com/page",
			rules: models.AutoCaptureRules{Whitelist: []string{`docs\.example\.com`}},
			want:  true,
		},
		{
			name:  "invalid pattern is ignored",
			url:   "https://example.com/page",
			rules: models.AutoCaptureRules{Blacklist: []string{`[`}},
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ShouldCaptureURL(tt.url, tt.rules); got != tt.want {
				t.Errorf("ShouldCaptureURL(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestAutoCapturerEnqueuesAfterDwell(t *testing.T) {
	t.Parallel()

	extractor := &stubExtractor{page: suitablePage()}
	generator := &stubGenerator{cards: []models.Flashcard{{Question: "Q", Answer: "A"}}}
	st := &stubStore{settings: models.DefaultSettings()}
	st.settings.AutoCapture.Enabled = true
	st.settings.AutoCapture.MinDwellTime = 10 // ms

	svc := newTestService(extractor, generator, &stubSubmitter{}, st)
	tabMonitor := monitor.New()
	q := queue.New(queue.Options{
		RateLimit:      10,
		RefillInterval: time.Minute,
		TaskDelay:      time.Millisecond,
	})
	defer q.Close()

	a := NewAutoCapturer(svc, st, tabMonitor, q, zap.NewNop())
	if err := a.TabActivated(context.Background(), 7, "https://example.com/go-concurrency"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for generator.calls == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if generator.calls == 0 {
		t.Fatal("dwell timer did not trigger a capture")
	}
}

func TestAutoCapturerDisabledDoesNotMonitor(t *testing.T) {
	t.Parallel()

	st := &stubStore{settings: models.DefaultSettings()}
	svc := newTestService(&stubExtractor{page: suitablePage()}, &stubGenerator{}, &stubSubmitter{}, st)
	tabMonitor := monitor.New()
	q := queue.New(queue.Options{})
	defer q.Close()

	a := NewAutoCapturer(svc, st, tabMonitor, q, zap.NewNop())
	if err := a.TabActivated(context.Background(), 7, "https://example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tabMonitor.MonitoredTabs()) != 0 {
		t.Fatal("tab should not be monitored when auto capture is disabled")
	}
}

func TestAutoCapturerTabClosedCancelsTimer(t *testing.T) {
	t.Parallel()

	st := &stubStore{settings: models.DefaultSettings()}
	st.settings.AutoCapture.Enabled = true
	st.settings.AutoCapture.MinDwellTime = 50

	generator := &stubGenerator{cards: []models.Flashcard{{Question: "Q", Answer: "A"}}}
	svc := newTestService(&stubExtractor{page: suitablePage()}, generator, &stubSubmitter{}, st)
	tabMonitor := monitor.New()
	q := queue.New(queue.Options{})
	defer q.Close()

	a := NewAutoCapturer(svc, st, tabMonitor, q, zap.NewNop())
	if err := a.TabActivated(context.Background(), 7, "https://example.com/go-concurrency"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a.TabClosed(7)

	time.Sleep(150 * time.Millisecond)
	if generator.calls != 0 {
		t.Fatal("capture ran for a closed tab")
	}
}
