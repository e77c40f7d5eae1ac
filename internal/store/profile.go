package store

import (
	"go.uber.org/zap"

	"tentkids/internal/events"
	"tentkids/internal/gate"
	"tentkids/internal/i18n"
	"tentkids/internal/models"
)

// SetLanguage switches the UI language. tag may be any BCP 47 tag; it is
// matched to a supported language and ignored when nothing matches.
func (s *Store) SetLanguage(tag string) bool {
	lang, ok := i18n.Match(tag)
	if !ok {
		s.logger.Debug("unsupported language", zap.String("tag", tag))
		s.record("set_language", false)
		return false
	}

	s.mu.Lock()
	s.state.Language = lang
	s.saveRaw(SliceLanguage, string(lang))
	s.mu.Unlock()

	s.record("set_language", true)
	s.publish(events.Changed, SliceLanguage)
	return true
}

// SetProfile replaces the profile. nil clears it and removes the stored copy.
func (s *Store) SetProfile(p *models.Profile) {
	s.mu.Lock()
	if p == nil {
		s.state.Profile = nil
		s.removeSlice(SliceProfile)
	} else {
		cp := *p
		s.state.Profile = &cp
		s.saveJSON(SliceProfile, cp)
	}
	s.mu.Unlock()

	s.record("set_profile", true)
	s.publish(events.Changed, SliceProfile)
}

// UpdateProfile merges the non-nil fields of u into the current profile.
func (s *Store) UpdateProfile(u models.ProfileUpdate) bool {
	s.mu.Lock()
	applied := s.updateProfileLocked(u)
	s.mu.Unlock()

	s.record("update_profile", applied)
	if applied {
		s.publish(events.Changed, SliceProfile)
	}
	return applied
}

func (s *Store) updateProfileLocked(u models.ProfileUpdate) bool {
	if s.state.Profile == nil {
		return false
	}
	merged := s.state.Profile.Merge(u)
	s.state.Profile = &merged
	s.saveJSON(SliceProfile, merged)
	return true
}

func (s *Store) SetOnboarded(v bool) {
	s.mu.Lock()
	s.state.Onboarded = v
	s.saveJSON(SliceOnboarded, v)
	s.mu.Unlock()

	s.record("set_onboarded", true)
	s.publish(events.Changed, SliceOnboarded)
}

func (s *Store) SetAgreedTerms(v bool) {
	s.mu.Lock()
	s.state.AgreedTerms = v
	s.saveJSON(SliceTerms, v)
	s.mu.Unlock()

	s.record("set_agreed_terms", true)
	s.publish(events.Changed, SliceTerms)
}

// SignOut wipes every persisted slice and restores the defaults in memory,
// profile, onboarding and terms included. The UI language is kept in memory
// and a running parent gate lockout survives; a gate pass does not.
func (s *Store) SignOut() {
	s.mu.Lock()
	s.clearAll()
	now := s.now()
	def := Defaults(now)
	def.Language = s.state.Language
	if until := s.state.Gate.LockedUntil; until.After(now) {
		def.Gate = gate.Record{LockedUntil: until}
		s.saveJSON(SliceGate, def.Gate)
	}
	s.state = def
	s.mu.Unlock()

	s.logger.Info("store reset on sign-out")
	s.record("sign_out", true)
	s.publish(events.Reset, "")
}
