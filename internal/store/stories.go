package store

import (
	"tentkids/internal/events"
	"tentkids/internal/models"
)

// AddStory prepends a story by the current profile. Stories never change afterwards.
func (s *Store) AddStory(color, iconName string) (models.Story, bool) {
	s.mu.Lock()
	if s.state.Profile == nil {
		s.mu.Unlock()
		s.record("add_story", false)
		return models.Story{}, false
	}

	story := models.Story{
		ID:        s.newID(),
		Author:    s.state.Profile.Author(),
		Color:     color,
		IconName:  iconName,
		CreatedAt: s.now(),
	}
	stories := make([]models.Story, 0, len(s.state.Stories)+1)
	stories = append(stories, story)
	stories = append(stories, s.state.Stories...)
	s.state.Stories = stories
	s.saveJSON(SliceStories, stories)
	s.mu.Unlock()

	s.record("add_story", true)
	s.publish(events.Changed, SliceStories)
	return story, true
}
