package store

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tentkids/internal/events"
	"tentkids/internal/gate"
	"tentkids/internal/i18n"
	"tentkids/internal/kv"
	"tentkids/internal/metrics"
	"tentkids/internal/models"
)

// Open builds a store and loads its persisted state. A load failure is
// logged and the store keeps its defaults.
func Open(ctx context.Context, store kv.Store, table *i18n.Table, logger *zap.Logger, opts ...Option) *Store {
	s := New(store, table, logger, opts...)
	if err := s.Load(ctx); err != nil {
		logger.Error("failed to load state, using defaults", zap.Error(err))
	}
	return s
}

type rawSlice struct {
	value string
	found bool
}

// Load reads all slices in parallel and replaces the defaults with whatever
// was stored. Only the first call does any work. A slice that fails to parse
// keeps its default; a failed read keeps the defaults for every slice.
func (s *Store) Load(ctx context.Context) error {
	s.loadOnce.Do(func() {
		s.loadErr = s.load(ctx)

		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
		s.publish(events.Loaded, "")
	})
	return s.loadErr
}

func (s *Store) load(ctx context.Context) error {
	raw := make([]rawSlice, len(Slices))

	g, gctx := errgroup.WithContext(ctx)
	for i, slice := range Slices {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(gctx, s.persistTimeout)
			defer cancel()

			v, ok, err := s.kv.Get(cctx, slice)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", slice, err)
			}
			raw[i] = rawSlice{value: v, found: ok}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		metrics.SliceFallbacksTotal.WithLabelValues("*", "read_error").Inc()
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state
	for i, slice := range Slices {
		r := raw[i]
		if !r.found || r.value == "" {
			continue
		}
		if err := decodeSlice(&next, slice, r.value); err != nil {
			metrics.SliceFallbacksTotal.WithLabelValues(slice, "parse_error").Inc()
			s.logger.Warn("malformed persisted slice, using default",
				zap.String("slice", slice),
				zap.Error(err))
		}
	}
	s.state = next
	return nil
}

// decodeSlice parses value into the matching field of st. On error st is unchanged.
func decodeSlice(st *State, slice, value string) error {
	switch slice {
	case SliceLanguage:
		lang := models.Language(value)
		if lang != models.LanguageArabic && lang != models.LanguageEnglish {
			return fmt.Errorf("unsupported language %q", value)
		}
		st.Language = lang
	case SliceProfile:
		var p *models.Profile
		if err := json.Unmarshal([]byte(value), &p); err != nil {
			return err
		}
		st.Profile = p
	case SliceOnboarded:
		return json.Unmarshal([]byte(value), &st.Onboarded)
	case SliceTerms:
		return json.Unmarshal([]byte(value), &st.AgreedTerms)
	case SlicePosts:
		return decodeList(value, &st.Posts)
	case SliceStories:
		return decodeList(value, &st.Stories)
	case SliceFriends:
		return decodeList(value, &st.Friends)
	case SliceNotifications:
		return decodeList(value, &st.Notifications)
	case SliceVideos:
		return decodeList(value, &st.Videos)
	case SliceGate:
		var r gate.Record
		if err := json.Unmarshal([]byte(value), &r); err != nil {
			return err
		}
		st.Gate = r
	default:
		return fmt.Errorf("unknown slice %q", slice)
	}
	return nil
}

func decodeList[T any](value string, dst *[]T) error {
	var out []T
	if err := json.Unmarshal([]byte(value), &out); err != nil {
		return err
	}
	if out == nil {
		out = []T{}
	}
	*dst = out
	return nil
}
