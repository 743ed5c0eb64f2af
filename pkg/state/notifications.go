package state

import "slices"

// Notification is a pending unlock ready for display.
type Notification struct {
	EventID         string `json:"event_id"`
	HypothesisLabel string `json:"hypothesis_label"`
}

// PendingNotifications joins the pending queue against the unlock history and
// the label table. Entries whose event or label cannot be found are skipped.
func PendingNotifications(s *PlayerState, labels map[string]string) []Notification {
	out := make([]Notification, 0)
	if s == nil {
		return out
	}
	for _, eventID := range s.PendingUnlockNotifications {
		i := slices.IndexFunc(s.UnlockHistory, func(e UnlockEvent) bool { return e.ID == eventID })
		if i < 0 {
			continue
		}
		label, ok := labels[s.UnlockHistory[i].HypothesisID]
		if !ok {
			continue
		}
		out = append(out, Notification{EventID: eventID, HypothesisLabel: label})
	}
	return out
}
