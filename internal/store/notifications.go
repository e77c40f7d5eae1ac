package store

import (
	"fmt"

	"tentkids/internal/events"
	"tentkids/internal/models"
)

// notify prepends an unread notification. Must be called with s.mu held.
func (s *Store) notify(typ models.NotificationType, titleAr, titleEn, messageAr, messageEn string) models.Notification {
	n := models.Notification{
		ID:        s.newID(),
		Type:      typ,
		TitleAr:   titleAr,
		TitleEn:   titleEn,
		MessageAr: messageAr,
		MessageEn: messageEn,
		CreatedAt: s.now(),
	}
	notifs := make([]models.Notification, 0, len(s.state.Notifications)+1)
	notifs = append(notifs, n)
	notifs = append(notifs, s.state.Notifications...)
	s.state.Notifications = notifs
	s.saveJSON(SliceNotifications, notifs)
	return n
}

func (s *Store) notifyFriendRequest(nickname string) models.Notification {
	return s.notify(models.NotificationFriendRequest,
		"طلب صداقة", "Friend Request",
		fmt.Sprintf("طلب من %s", nickname), fmt.Sprintf("Request from %s", nickname))
}

func (s *Store) notifyFriendAccepted() models.Notification {
	return s.notify(models.NotificationFriendAccepted,
		"صديق جديد", "New Friend",
		"لديك صديق جديد!", "You have a new friend!")
}

// MarkNotificationRead flags a notification as read. There is no way back to unread.
func (s *Store) MarkNotificationRead(notifID string) bool {
	s.mu.Lock()
	applied := false
	idx := indexOf(s.state.Notifications, func(n models.Notification) bool { return n.ID == notifID })
	if idx >= 0 {
		notifs := append([]models.Notification(nil), s.state.Notifications...)
		notifs[idx].Read = true
		s.state.Notifications = notifs
		s.saveJSON(SliceNotifications, notifs)
		applied = true
	}
	s.mu.Unlock()

	s.record("mark_notification_read", applied)
	if applied {
		s.publish(events.Changed, SliceNotifications)
	}
	return applied
}

// UnreadCount is the number of notifications not yet marked read.
func (s *Store) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, notif := range s.state.Notifications {
		if !notif.Read {
			n++
		}
	}
	return n
}
