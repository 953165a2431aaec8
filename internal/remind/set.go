package remind

// UserReminderSet maps a user id (stable decimal string) to that user's
// reminders in insertion order. Insertion order is also the 1-based numbering
// users see in listings and removal prompts.
type UserReminderSet map[string][]Reminder

// Clone returns a deep copy. Reminder values copy cleanly except the EndDate
// pointer, which is re-boxed so mutations never alias across copies.
func (s UserReminderSet) Clone() UserReminderSet {
	out := make(UserReminderSet, len(s))
	for user, list := range s {
		cp := make([]Reminder, len(list))
		copy(cp, list)
		for i := range cp {
			if cp[i].EndDate != nil {
				end := *cp[i].EndDate
				cp[i].EndDate = &end
			}
		}
		out[user] = cp
	}
	return out
}
