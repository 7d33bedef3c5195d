package pages

import (
	"testing"
	"time"

	"nameplate/model"
)

func TestCenteredPage(t *testing.T) {
	t.Parallel()

	container := model.ContainerMetrics{Top: 100, Height: 400} // center 300

	tests := []struct {
		name  string
		items []model.PageMetrics
		want  int
		found bool
	}{
		{name: "empty", items: nil, found: false},
		{
			name: "exact center wins",
			items: []model.PageMetrics{
				{PageNumber: 1, Top: -150, Height: 400},
				{PageNumber: 2, Top: 100, Height: 400},
				{PageNumber: 3, Top: 350, Height: 400},
			},
			want: 2, found: true,
		},
		{
			name: "tie goes to first",
			items: []model.PageMetrics{
				{PageNumber: 1, Top: 0, Height: 400},
				{PageNumber: 2, Top: 200, Height: 400},
			},
			want: 1, found: true,
		},
		{
			name: "closest of uneven pages",
			items: []model.PageMetrics{
				{PageNumber: 4, Top: 250, Height: 60},
				{PageNumber: 5, Top: 0, Height: 100},
			},
			want: 4, found: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := CenteredPage(container, tt.items)
			if ok != tt.found {
				t.Fatalf("CenteredPage() found = %v, want %v", ok, tt.found)
			}
			if ok && got.PageNumber != tt.want {
				t.Fatalf("CenteredPage() = page %d, want %d", got.PageNumber, tt.want)
			}
			again, _ := CenteredPage(container, tt.items)
			if again != got {
				t.Fatalf("CenteredPage() not deterministic: %+v then %+v", got, again)
			}
		})
	}
}

func TestClampScroll(t *testing.T) {
	t.Parallel()

	tests := []struct {
		top, scrollHeight, clientHeight, want float64
	}{
		{top: -20, scrollHeight: 1800, clientHeight: 600, want: 0},
		{top: 500, scrollHeight: 1800, clientHeight: 600, want: 500},
		{top: 1300, scrollHeight: 1800, clientHeight: 600, want: 1200},
		{top: 50, scrollHeight: 400, clientHeight: 600, want: 0},
	}
	for _, tt := range tests {
		if got := ClampScroll(tt.top, tt.scrollHeight, tt.clientHeight); got != tt.want {
			t.Fatalf("ClampScroll(%v, %v, %v) = %v, want %v", tt.top, tt.scrollHeight, tt.clientHeight, got, tt.want)
		}
	}
}

func threePageReport(scrollTop float64) ScrollReport {
	const h = 600.0
	r := ScrollReport{
		Container: model.ContainerMetrics{Top: 0, Height: h, ScrollTop: scrollTop, ScrollHeight: 3 * h, ClientHeight: h},
	}
	for i := 0; i < 3; i++ {
		r.Pages = append(r.Pages, model.PageMetrics{
			PageNumber: i + 1,
			Top:        float64(i)*h - scrollTop,
			Height:     h,
			OffsetTop:  float64(i) * h,
		})
	}
	return r
}

func TestScrollTrackerSnapsAfterDebounce(t *testing.T) {
	t.Parallel()

	snaps := make(chan Snap, 4)
	tracker := NewScrollTracker(10*time.Millisecond, func(s Snap) { snaps <- s })
	defer tracker.Stop()

	tracker.Report(threePageReport(100))
	tracker.Report(threePageReport(400))
	if got := tracker.Report(threePageReport(700)); got != 700 {
		t.Fatalf("Report() = %v, want 700", got)
	}

	select {
	case s := <-snaps:
		if s.PageNumber != 2 || s.Top != 600 {
			t.Fatalf("snap = %+v, want page 2 at 600", s)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no snap after debounce")
	}

	select {
	case s := <-snaps:
		t.Fatalf("unexpected extra snap %+v", s)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestScrollTrackerClampsOverscroll(t *testing.T) {
	t.Parallel()

	snaps := make(chan Snap, 1)
	tracker := NewScrollTracker(time.Millisecond, func(s Snap) { snaps <- s })
	defer tracker.Stop()

	if got := tracker.Report(threePageReport(5000)); got != 1200 {
		t.Fatalf("Report() = %v, want 1200", got)
	}
	if got := tracker.Report(threePageReport(-30)); got != 0 {
		t.Fatalf("Report() = %v, want 0", got)
	}
	<-snaps
}

func TestScrollTrackerStop(t *testing.T) {
	t.Parallel()

	snaps := make(chan Snap, 1)
	tracker := NewScrollTracker(20*time.Millisecond, func(s Snap) { snaps <- s })
	tracker.Report(threePageReport(0))
	tracker.Stop()

	select {
	case s := <-snaps:
		t.Fatalf("snap after Stop: %+v", s)
	case <-time.After(60 * time.Millisecond):
	}
}
