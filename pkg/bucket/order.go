package bucket

import (
	"sort"

	"tableflip.dev/adhdo/pkg/task"
)

// Order is the manual per-section ordering produced by drag-and-drop style
// moves, keyed by section and holding task ids.
type Order map[Name][]string

// Sort returns the section tasks with urgent tasks first, then by manual
// order, then in stored order.
func (o Order) Sort(n Name, tasks []*task.Task) []*task.Task {
	rank := make(map[string]int, len(o[n]))
	for i, id := range o[n] {
		if _, dup := rank[id]; !dup {
			rank[id] = i
		}
	}
	sorted := append([]*task.Task(nil), tasks...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Urgent != b.Urgent {
			return a.Urgent
		}
		ai, aok := rank[a.ID]
		bi, bok := rank[b.ID]
		switch {
		case aok && bok:
			return ai < bi
		case aok != bok:
			return aok
		default:
			return false
		}
	})
	return sorted
}

// Insert places id at index within section n, removing any earlier position
// it held there. An index past the end appends.
func (o Order) Insert(n Name, id string, index int) {
	ids := remove(o[n], id)
	if index < 0 || index > len(ids) {
		index = len(ids)
	}
	ids = append(ids, "")
	copy(ids[index+1:], ids[index:])
	ids[index] = id
	o[n] = ids
}

// Place rebuilds the order of section n from its current display order and
// moves id to index in it. An index past the end appends.
func (o Order) Place(n Name, current []*task.Task, id string, index int) {
	ids := make([]string, 0, len(current)+1)
	for _, t := range current {
		if t.ID != id {
			ids = append(ids, t.ID)
		}
	}
	o[n] = ids
	o.Insert(n, id, index)
}

// Remove drops id from every section.
func (o Order) Remove(id string) {
	for n, ids := range o {
		o[n] = remove(ids, id)
	}
}

func remove(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// Sections returns every bucket sorted for display.
func Sections(b Buckets, o Order) Buckets {
	out := make(Buckets, len(b))
	for n, ts := range b {
		out[n] = o.Sort(n, ts)
	}
	return out
}
