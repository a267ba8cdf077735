package service

import (
	"io"
	"log/slog"
	"testing"
	"time"
)

func TestBuildDailySpec(t *testing.T) {
	cases := []struct {
		in, want string
		wantErr  bool
	}{
		{in: "09:00", want: "0 0 9 * * *"},
		{in: " 21:45 ", want: "0 45 21 * * *"},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "noon", wantErr: true},
	}
	for _, tc := range cases {
		got, err := BuildDailySpec(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("BuildDailySpec(%q) expected error", tc.in)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("BuildDailySpec(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
	}
}

func TestSchedulerNext(t *testing.T) {
	s := NewSchedulerService(time.UTC, quietLogger())
	id, err := s.ScheduleDaily("06:30", func() {})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	s.Start()
	defer s.Stop()

	next := s.Next(id)
	if next.IsZero() {
		t.Fatal("next activation not computed")
	}
	if next.Hour() != 6 || next.Minute() != 30 || next.Second() != 0 {
		t.Fatalf("next = %v, want 06:30:00", next)
	}
}

func TestSchedulerIntervalRecoversPanics(t *testing.T) {
	s := NewSchedulerService(time.UTC, quietLogger())
	if _, err := s.ScheduleInterval(0, func() {}); err == nil {
		t.Fatal("expected error for zero interval")
	}

	runs := make(chan int, 4)
	n := 0
	if _, err := s.ScheduleInterval(200*time.Millisecond, func() {
		n++
		runs <- n
		if n == 1 {
			panic("boom")
		}
	}); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	s.Start()
	defer s.Stop()

	for want := 1; want <= 2; want++ {
		select {
		case got := <-runs:
			if got != want {
				t.Fatalf("run %d, want %d", got, want)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("run %d never happened", want)
		}
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
