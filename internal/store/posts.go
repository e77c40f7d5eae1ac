package store

import (
	"go.uber.org/zap"

	"tentkids/internal/events"
	"tentkids/internal/models"
)

// AddPost prepends a post by the current profile. imageURL and videoURL may be empty.
func (s *Store) AddPost(content, imageURL, videoURL string) (models.Post, bool) {
	s.mu.Lock()
	if s.state.Profile == nil {
		s.mu.Unlock()
		s.record("add_post", false)
		return models.Post{}, false
	}

	post := models.Post{
		ID:        s.newID(),
		Author:    s.state.Profile.Author(),
		Content:   content,
		ImageURL:  imageURL,
		VideoURL:  videoURL,
		Reactions: models.Reactions{},
		Comments:  []models.SafeComment{},
		CreatedAt: s.now(),
	}
	posts := make([]models.Post, 0, len(s.state.Posts)+1)
	posts = append(posts, post)
	posts = append(posts, s.state.Posts...)
	s.state.Posts = posts
	s.saveJSON(SlicePosts, posts)
	s.mu.Unlock()

	s.logger.Debug("post added", zap.String("post_id", post.ID))
	s.record("add_post", true)
	s.publish(events.Changed, SlicePosts)
	return post.Clone(), true
}

// ReactToPost toggles the current user's emoji reaction on a post.
func (s *Store) ReactToPost(postID, emoji string) bool {
	return s.mutatePost("react_to_post", postID, true, func(p *models.Post, me *models.Profile) bool {
		if emoji == "" {
			return false
		}
		p.Reactions = p.Reactions.Toggle(emoji, me.ID)
		return true
	})
}

// AddSafeComment appends a pre-approved comment. Keys outside
// models.SafeCommentKeys are ignored.
func (s *Store) AddSafeComment(postID, commentKey string) (models.SafeComment, bool) {
	var added models.SafeComment
	applied := s.mutatePost("add_safe_comment", postID, true, func(p *models.Post, me *models.Profile) bool {
		if !models.IsSafeCommentKey(commentKey) {
			return false
		}
		added = models.SafeComment{
			ID:         s.newID(),
			Author:     me.Author(),
			CommentKey: commentKey,
			CreatedAt:  s.now(),
		}
		comments := make([]models.SafeComment, 0, len(p.Comments)+1)
		comments = append(comments, p.Comments...)
		p.Comments = append(comments, added)
		return true
	})
	return added, applied
}

// ReportPost hides a post for good. It needs no profile.
func (s *Store) ReportPost(postID string) bool {
	return s.mutatePost("report_post", postID, false, func(p *models.Post, _ *models.Profile) bool {
		p.Reported = true
		return true
	})
}

// mutatePost replaces the post with id postID by a modified copy. fn receives
// the copy and the current profile (nil when needProfile is false and none is set).
func (s *Store) mutatePost(op, postID string, needProfile bool, fn func(*models.Post, *models.Profile) bool) bool {
	s.mu.Lock()
	applied := func() bool {
		me := s.state.Profile
		if needProfile && me == nil {
			return false
		}
		idx := indexOf(s.state.Posts, func(p models.Post) bool { return p.ID == postID })
		if idx < 0 {
			return false
		}

		updated := s.state.Posts[idx].Clone()
		if !fn(&updated, me) {
			return false
		}
		posts := append([]models.Post(nil), s.state.Posts...)
		posts[idx] = updated
		s.state.Posts = posts
		s.saveJSON(SlicePosts, posts)
		return true
	}()
	s.mu.Unlock()

	s.record(op, applied)
	if applied {
		s.publish(events.Changed, SlicePosts)
	}
	return applied
}

// VisiblePosts is the feed: every post that has not been reported, newest first.
func (s *Store) VisiblePosts() []models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Post, 0, len(s.state.Posts))
	for _, p := range s.state.Posts {
		if !p.Reported {
			out = append(out, p.Clone())
		}
	}
	return out
}

func indexOf[T any](items []T, match func(T) bool) int {
	for i, it := range items {
		if match(it) {
			return i
		}
	}
	return -1
}
