package bucket

import (
	"testing"
	"time"

	"tableflip.dev/adhdo/pkg/task"
)

func TestSelectPoolPrecedence(t *testing.T) {
	all := map[string]*task.Task{
		"urgent today":     mk("ut", "2024-01-05", true),
		"today":            mk("nt", "2024-01-03", false),
		"urgent tomorrow":  mk("utm", "2024-01-06", true),
		"tomorrow":         mk("ntm", "2024-01-06", false),
		"urgent this week": mk("uw", "2024-01-09", true),
		"this week":        mk("nw", "2024-01-11", false),
		"urgent later":     mk("ul", "2024-03-01", true),
		"later":            mk("nl", "2024-02-01", false),
		"void":             mk("v", "", true),
	}

	// Remove the winning tier one at a time and check the next one wins.
	remaining := make([]*task.Task, 0, len(all))
	for _, tier := range Tiers {
		remaining = append(remaining, all[tier.Label])
	}
	for i, tier := range Tiers {
		pool, ok := SelectPool(Partition(now, remaining[i:]))
		if !ok {
			t.Fatalf("expected a pool at step %d", i)
		}
		if pool.Name() != tier.Label {
			t.Fatalf("step %d: expected %q, got %q", i, tier.Label, pool.Name())
		}
		if len(pool.Tasks) != 1 || pool.Tasks[0] != all[tier.Label] {
			t.Fatalf("step %d: unexpected members %+v", i, pool.Tasks)
		}
	}

	if _, ok := SelectPool(Partition(now, nil)); ok {
		t.Fatalf("expected no pool for empty input")
	}
}

func TestSelectPoolExactlyOneTierForAnySet(t *testing.T) {
	sets := [][]*task.Task{
		{mk("a", "", false), mk("b", "", true)},
		{mk("a", "2024-01-20", false), mk("b", "2024-01-06", false), mk("c", "", true)},
		{mk("a", "2024-01-01", false), mk("b", "2024-01-05", true)},
	}
	wantLabels := []string{"void", "tomorrow", "urgent today"}
	for i, set := range sets {
		b := Partition(now, set)
		pool, ok := SelectPool(b)
		if !ok || pool.Name() != wantLabels[i] {
			t.Fatalf("set %d: got %q, want %q", i, pool.Name(), wantLabels[i])
		}
		for _, tier := range Tiers {
			if tier.Label == pool.Name() {
				break
			}
			if len(tier.Members(b)) != 0 {
				t.Fatalf("set %d: earlier tier %q was not empty", i, tier.Label)
			}
		}
	}
}

func TestVoidPoolIncludesUrgent(t *testing.T) {
	pool, ok := SelectPool(Partition(now, []*task.Task{mk("a", "", true), mk("b", "", false)}))
	if !ok || pool.Name() != "void" || len(pool.Tasks) != 2 {
		t.Fatalf("unexpected void pool %+v", pool)
	}
}

func TestCandidatesEveningFiltersOutTasks(t *testing.T) {
	out := mk("out", "2024-01-05", true)
	out.Location = task.LocationOut
	home := mk("home", "2024-01-08", false)
	home.Location = task.LocationHome
	unset := mk("unset", "", false)
	done := mk("done", "", false)
	done.Completed = true
	all := []*task.Task{out, home, unset, done}

	evening := time.Date(2024, 1, 5, 19, 0, 0, 0, time.UTC)
	got := Candidates(all, evening, 19)
	if len(got) != 2 || got[0] != home || got[1] != unset {
		t.Fatalf("unexpected evening candidates %+v", got)
	}
	pool, _ := SelectPool(Partition(evening, got))
	if pool.Name() != "this week" {
		t.Fatalf("out task must be excluded before the cascade, got %q", pool.Name())
	}

	day := time.Date(2024, 1, 5, 18, 59, 0, 0, time.UTC)
	if got := Candidates(all, day, 19); len(got) != 3 {
		t.Fatalf("expected all open tasks before evening, got %d", len(got))
	}
}
