package chunk

import (
	"context"
	"errors"
	"testing"
	"time"
)

func identity(n int) (int, error) { return n, nil }

func sequence(n int) []int {
	items := make([]int, n)
	for i := range items {
		items[i] = i
	}
	return items
}

func TestRun_PreservesOrder(t *testing.T) {
	items := sequence(257)
	for _, size := range []int{1, 2, 100, 500, 1000} {
		got := Run(context.Background(), items, identity, Options{Size: size})
		if len(got) != len(items) {
			t.Fatalf("size %d: got %d results, want %d", size, len(got), len(items))
		}
		for i, v := range got {
			if v != items[i] {
				t.Fatalf("size %d: result %d = %d, want %d", size, i, v, items[i])
			}
		}
	}
}

func TestRun_EmptyInput(t *testing.T) {
	got := Run(context.Background(), nil, identity, Options{})
	if len(got) != 0 {
		t.Fatalf("expected no results, got %d", len(got))
	}
}

func TestRun_SkipsFailedItems(t *testing.T) {
	items := sequence(10)
	got := Run(context.Background(), items, func(n int) (int, error) {
		if n == 3 || n == 7 {
			return 0, errors.New("bad item")
		}
		return n, nil
	}, Options{Size: 4})

	if len(got) != 8 {
		t.Fatalf("expected 8 results, got %d", len(got))
	}
	for _, v := range got {
		if v == 3 || v == 7 {
			t.Errorf("failed item %d leaked into results", v)
		}
	}
}

func TestRun_CancellationStopsAtChunkBoundary(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	items := sequence(100)

	var got []int
	processed := RunSink(ctx, items, identity, func(n int) { got = append(got, n) }, Options{
		Size: 10,
		OnProgress: func(p Progress) {
			if p.Processed == 20 {
				cancel() // after chunk 2
			}
		},
	})

	if processed != 20 {
		t.Fatalf("expected 20 processed, got %d", processed)
	}
	if len(got) != 20 {
		t.Fatalf("expected 20 results, got %d", len(got))
	}
	for _, v := range got {
		if v >= 20 {
			t.Errorf("item %d from a cancelled chunk appeared", v)
		}
	}
}

func TestRun_UnsetCancelFlagChangesNothing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	items := sequence(42)
	got := Run(ctx, items, identity, Options{Size: 5})
	if len(got) != 42 {
		t.Fatalf("an armed but unset cancel flag must not affect results, got %d", len(got))
	}
}

func TestRun_ProgressReports(t *testing.T) {
	var reports []Progress
	Run(context.Background(), sequence(25), identity, Options{
		Size:       10,
		Phase:      "occupations",
		OnProgress: func(p Progress) { reports = append(reports, p) },
	})

	if len(reports) != 3 {
		t.Fatalf("expected 3 progress reports, got %d", len(reports))
	}
	want := []Progress{
		{Phase: "occupations", Processed: 10, Total: 25, Percentage: 40},
		{Phase: "occupations", Processed: 20, Total: 25, Percentage: 80},
		{Phase: "occupations", Processed: 25, Total: 25, Percentage: 100},
	}
	for i, p := range reports {
		if p != want[i] {
			t.Errorf("report %d = %+v, want %+v", i, p, want[i])
		}
	}
}

func TestRun_BudgetOverrunStillProcessesEverything(t *testing.T) {
	slow := func(n int) (int, error) {
		time.Sleep(time.Millisecond)
		return n, nil
	}
	got := Run(context.Background(), sequence(20), slow, Options{Size: 5, Budget: time.Millisecond})
	if len(got) != 20 {
		t.Fatalf("yielding must not drop items, got %d", len(got))
	}
}

func TestPercentageRounding(t *testing.T) {
	cases := []struct {
		processed, total, want int
	}{
		{1, 3, 33},
		{2, 3, 67},
		{1, 200, 1}, // 0.5 rounds half away from zero
		{0, 0, 100},
		{5, 5, 100},
	}
	for _, c := range cases {
		if got := percentage(c.processed, c.total); got != c.want {
			t.Errorf("percentage(%d, %d) = %d, want %d", c.processed, c.total, got, c.want)
		}
	}
}
