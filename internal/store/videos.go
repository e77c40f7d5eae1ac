package store

import (
	"tentkids/internal/events"
	"tentkids/internal/models"
)

// ReactToVideo toggles the current user's emoji reaction on a video.
// Videos have no reporting path.
func (s *Store) ReactToVideo(videoID, emoji string) bool {
	s.mu.Lock()
	applied := func() bool {
		me := s.state.Profile
		if me == nil || emoji == "" {
			return false
		}
		idx := indexOf(s.state.Videos, func(v models.VideoItem) bool { return v.ID == videoID })
		if idx < 0 {
			return false
		}

		videos := append([]models.VideoItem(nil), s.state.Videos...)
		updated := videos[idx].Clone()
		updated.Reactions = updated.Reactions.Toggle(emoji, me.ID)
		videos[idx] = updated
		s.state.Videos = videos
		s.saveJSON(SliceVideos, videos)
		return true
	}()
	s.mu.Unlock()

	s.record("react_to_video", applied)
	if applied {
		s.publish(events.Changed, SliceVideos)
	}
	return applied
}
