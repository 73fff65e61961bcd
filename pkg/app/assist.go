package app

import (
	"context"
	"errors"
	"fmt"

	"tableflip.dev/adhdo/pkg/bucket"
	"tableflip.dev/adhdo/pkg/llm"
	"tableflip.dev/adhdo/pkg/parse"
	"tableflip.dev/adhdo/pkg/store"
	"tableflip.dev/adhdo/pkg/suggest"
	"tableflip.dev/adhdo/pkg/task"
	"tableflip.dev/adhdo/pkg/weather"
)

// completer returns the completion client for the stored key.
func (s *Service) completer() (llm.Completer, error) {
	if s.Connect == nil {
		return nil, ErrNoCredential
	}
	st, err := s.Persistence.Settings()
	if err != nil {
		s.logger().Warn("app: read settings", "err", err)
	}
	c, err := s.Connect(st.APIKey)
	if errors.Is(err, llm.ErrNoCredential) || (err == nil && c == nil) {
		return nil, ErrNoCredential
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) eveningHour() int {
	st, err := s.Persistence.Settings()
	if err != nil {
		s.logger().Warn("app: read settings", "err", err)
	}
	if st.EveningHour == 0 {
		return store.DefaultEveningHour
	}
	return st.EveningHour
}

// Evening reports whether evening mode is active now.
func (s *Service) Evening(_ context.Context) (bool, error) {
	if s.Persistence == nil {
		return false, errNoPersistence
	}
	return bucket.IsEvening(s.now(), s.eveningHour()), nil
}

// CurrentWeather reads the weather source, or returns nil when none is set
// or it fails.
func (s *Service) CurrentWeather(ctx context.Context) *weather.Reading {
	if s.Weather == nil {
		return nil
	}
	r, err := s.Weather.Current(ctx)
	if err != nil {
		s.logger().Warn("app: weather", "err", err)
		return nil
	}
	return r
}

// Suggest picks the task to do now. It returns nil without calling out when
// there are no open tasks, and ErrNoCredential when no key is configured.
func (s *Service) Suggest(ctx context.Context) (*suggest.Suggestion, error) {
	return s.suggest(ctx, "")
}

// Skip asks again without the task skipID, unless it is the only task in
// its pool.
func (s *Service) Skip(ctx context.Context, skipID string) (*suggest.Suggestion, error) {
	return s.suggest(ctx, skipID)
}

func (s *Service) suggest(ctx context.Context, skipID string) (*suggest.Suggestion, error) {
	open, err := s.Open(ctx)
	if err != nil {
		return nil, err
	}
	if len(open) == 0 {
		return nil, nil
	}
	c, err := s.completer()
	if err != nil {
		return nil, err
	}

	now := s.now()
	hour := s.eveningHour()
	candidates := bucket.Candidates(open, now, hour)
	sections := bucket.Sections(bucket.Partition(now, candidates), s.order())
	pool, ok := bucket.SelectPool(sections)
	if !ok {
		return nil, nil
	}
	if skipID != "" && len(pool.Tasks) > 1 {
		kept := make([]*task.Task, 0, len(pool.Tasks))
		for _, t := range pool.Tasks {
			if t.ID != skipID {
				kept = append(kept, t)
			}
		}
		pool.Tasks = kept
	}

	r := &suggest.Requester{LLM: c, Model: s.Model, Logger: s.Logger}
	return r.Suggest(ctx, pool, candidates, suggest.Context{
		Now:     now,
		Evening: bucket.IsEvening(now, hour),
		Weather: s.CurrentWeather(ctx),
	}), nil
}

// Celebrate returns the "all caught up" card when it is earned, and nil
// otherwise. Without a key the static card is used.
func (s *Service) Celebrate(ctx context.Context) (*suggest.Celebration, error) {
	all, err := s.Tasks(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if !suggest.ShouldCelebrate(all, now) {
		return nil, nil
	}
	done := suggest.DoneToday(all, now)
	c, err := s.completer()
	if err != nil {
		return suggest.StaticCelebration(len(done)), nil
	}
	cb := &suggest.Celebrator{
		Requester: &suggest.Requester{LLM: c, Model: s.Model, Logger: s.Logger},
		Images:    s.Images,
	}
	return cb.Celebrate(ctx, done), nil
}

// Steps breaks the task into micro-steps. The boolean reports a fallback.
func (s *Service) Steps(ctx context.Context, id string) (*task.Task, []string, bool, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, false, err
	}
	c, err := s.completer()
	if err != nil {
		return t, nil, false, err
	}
	r := &suggest.Requester{LLM: c, Model: s.Model, Logger: s.Logger}
	steps, fallback, err := r.Steps(ctx, t)
	if errors.Is(err, llm.ErrNoCredential) {
		err = ErrNoCredential
	}
	return t, steps, fallback, err
}

// Capture parses a brain dump into drafts without storing anything.
func (s *Service) Capture(ctx context.Context, input string) (*parse.Result, error) {
	open, err := s.Open(ctx)
	if err != nil {
		return nil, err
	}
	c, err := s.completer()
	if err != nil {
		if errors.Is(err, ErrNoCredential) {
			return &parse.Result{Drafts: []task.Draft{}, Response: parse.NoKeyResponse}, err
		}
		return nil, err
	}
	p := &parse.Parser{LLM: c, Model: s.ParseModel, Logger: s.Logger}
	res, err := p.Parse(ctx, input, open, s.now())
	if errors.Is(err, llm.ErrNoCredential) {
		err = ErrNoCredential
	}
	return res, err
}

// Commit stores the drafts of res. With a merge proposal, accepting folds
// the referenced draft into the existing task; declining keeps every draft
// as an unscheduled task.
func (s *Service) Commit(ctx context.Context, res *parse.Result, acceptMerge bool) ([]*task.Task, error) {
	if res == nil {
		return nil, nil
	}
	drafts := append([]task.Draft(nil), res.Drafts...)
	if m := res.Merge; m != nil {
		if m.Draft < 0 || m.Draft >= len(drafts) {
			return nil, fmt.Errorf("app: merge references draft %d of %d", m.Draft, len(drafts))
		}
		if acceptMerge {
			if m.Mode == parse.MergeSubtask {
				if _, err := s.AddSubtask(ctx, m.TaskID, drafts[m.Draft].Text); err != nil {
					return nil, err
				}
			}
			drafts = append(drafts[:m.Draft], drafts[m.Draft+1:]...)
		} else {
			for i := range drafts {
				drafts[i].DoDate = ""
			}
		}
	}

	created := make([]*task.Task, 0, len(drafts))
	for _, d := range drafts {
		t, err := s.Add(ctx, d)
		if err != nil {
			return created, err
		}
		created = append(created, t)
	}
	return created, nil
}
