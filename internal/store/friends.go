package store

import (
	"go.uber.org/zap"

	"tentkids/internal/events"
	"tentkids/internal/models"
)

// SendFriendRequest appends a pending request and a friend_request
// notification. The request's FromID is freshly generated: the friend graph
// is simulated on this device and no real counterparty exists.
func (s *Store) SendFriendRequest(nickname, avatarID string) (models.FriendRequest, bool) {
	s.mu.Lock()
	if s.state.Profile == nil {
		s.mu.Unlock()
		s.record("send_friend_request", false)
		return models.FriendRequest{}, false
	}

	req := models.FriendRequest{
		ID:           s.newID(),
		FromID:       s.newID(),
		FromNickname: nickname,
		FromAvatarID: avatarID,
		Status:       models.FriendPending,
		CreatedAt:    s.now(),
	}
	friends := make([]models.FriendRequest, 0, len(s.state.Friends)+1)
	friends = append(friends, s.state.Friends...)
	friends = append(friends, req)
	s.state.Friends = friends
	s.saveJSON(SliceFriends, friends)
	s.notifyFriendRequest(nickname)
	s.mu.Unlock()

	s.logger.Debug("friend request sent", zap.String("request_id", req.ID))
	s.record("send_friend_request", true)
	s.publish(events.Changed, SliceFriends)
	s.publish(events.Changed, SliceNotifications)
	return req, true
}

// AcceptFriend marks a request accepted, whatever its current status, bumps
// the profile's friend count when a profile is set and emits a friend_accepted
// notification. An unknown id changes nothing.
func (s *Store) AcceptFriend(requestID string) bool {
	s.mu.Lock()
	applied := s.setFriendStatus(requestID, models.FriendAccepted)
	profileChanged := false
	if applied {
		if s.state.Profile != nil {
			count := s.state.Profile.FriendCount + 1
			profileChanged = s.updateProfileLocked(models.ProfileUpdate{FriendCount: &count})
		}
		s.notifyFriendAccepted()
	}
	s.mu.Unlock()

	s.record("accept_friend", applied)
	if applied {
		s.publish(events.Changed, SliceFriends)
		if profileChanged {
			s.publish(events.Changed, SliceProfile)
		}
		s.publish(events.Changed, SliceNotifications)
	}
	return applied
}

// RejectFriend marks a request rejected. No notification, no count change.
func (s *Store) RejectFriend(requestID string) bool {
	s.mu.Lock()
	applied := s.setFriendStatus(requestID, models.FriendRejected)
	s.mu.Unlock()

	s.record("reject_friend", applied)
	if applied {
		s.publish(events.Changed, SliceFriends)
	}
	return applied
}

// setFriendStatus overwrites the status of the matching request. Must be
// called with s.mu held.
func (s *Store) setFriendStatus(requestID string, status models.FriendStatus) bool {
	idx := indexOf(s.state.Friends, func(r models.FriendRequest) bool { return r.ID == requestID })
	if idx < 0 {
		return false
	}
	friends := append([]models.FriendRequest(nil), s.state.Friends...)
	friends[idx].Status = status
	s.state.Friends = friends
	s.saveJSON(SliceFriends, friends)
	return true
}

// AcceptedFriends lists accepted requests in the order they were sent.
func (s *Store) AcceptedFriends() []models.FriendRequest {
	return s.friendsWithStatus(models.FriendAccepted)
}

// PendingRequests lists requests still awaiting an answer.
func (s *Store) PendingRequests() []models.FriendRequest {
	return s.friendsWithStatus(models.FriendPending)
}

func (s *Store) friendsWithStatus(status models.FriendStatus) []models.FriendRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.FriendRequest{}
	for _, r := range s.state.Friends {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out
}
