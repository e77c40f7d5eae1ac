package models

// Reactions maps a reaction label to the ids of users who chose it.
// A user id appears at most once per label and empty labels are never stored.
type Reactions map[string][]string

func (r Reactions) Has(emoji, userID string) bool {
	for _, id := range r[emoji] {
		if id == userID {
			return true
		}
	}
	return false
}

func (r Reactions) Count(emoji string) int {
	return len(r[emoji])
}

// Toggle returns a new Reactions with userID added under emoji if absent, or
// removed if present. The receiver is not modified.
func (r Reactions) Toggle(emoji, userID string) Reactions {
	out := r.Clone()
	if out == nil {
		out = Reactions{}
	}

	if !r.Has(emoji, userID) {
		out[emoji] = append(out[emoji], userID)
		return out
	}

	kept := make([]string, 0, len(out[emoji]))
	for _, id := range out[emoji] {
		if id != userID {
			kept = append(kept, id)
		}
	}
	if len(kept) == 0 {
		delete(out, emoji)
	} else {
		out[emoji] = kept
	}
	return out
}

func (r Reactions) Clone() Reactions {
	if r == nil {
		return nil
	}
	out := make(Reactions, len(r))
	for k, ids := range r {
		out[k] = append([]string(nil), ids...)
	}
	return out
}
