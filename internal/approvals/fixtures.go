package approvals

import "time"

func avatar(seed string) string {
	return "https://api.dicebear.com/7.x/avataaars/svg?seed=" + seed
}

func photo(id string) string {
	return "https://images.unsplash.com/photo-" + id + "?w=600&q=80"
}

// clock returns the given wall time days away from now, in now's location
func clock(now time.Time, days, hour, minute int) *time.Time {
	y, m, d := now.Date()
	t := time.Date(y, m, d+days, hour, minute, 0, 0, now.Location())
	return &t
}

// Fixtures returns the demo review queue relative to now
func Fixtures(now time.Time) []Item {
	sarah := Submitter{Name: "Sarah Kim", Initials: "SK", Avatar: avatar("sarah")}
	david := Submitter{Name: "David Chen", Initials: "DC", Avatar: avatar("david")}
	minji := Submitter{Name: "Min-ji Park", Initials: "MP", Avatar: avatar("minji")}

	daysUntil := func(weekday time.Weekday) int {
		n := (int(weekday) - int(now.Weekday()) + 7) % 7
		if n == 0 {
			n = 7
		}
		return n
	}

	return []Item{
		{
			Title:        "Weekend Brunch Promotion",
			Platform:     "Instagram",
			Submitter:    sarah,
			SubmittedAt:  now.Add(-2 * time.Hour),
			ScheduledFor: clock(now, 1, 10, 0),
			Status:       StatusPending,
			Content:      "Join us this weekend for our special brunch menu featuring local ingredients and craft cocktails!",
			Image:        photo("1504674900247-0877df9cc836"),
		},
		{
			Title:        "Spa Package Promotion",
			Platform:     "Facebook",
			Submitter:    david,
			SubmittedAt:  now.Add(-5 * time.Hour),
			ScheduledFor: clock(now, daysUntil(time.Friday), 14, 0),
			Status:       StatusPending,
			Content:      "Treat yourself to our luxury spa package. Book now and get 15% off on all treatments this month.",
			Image:        photo("1540555700478-4be289fbecef"),
		},
		{
			Title:        "Room Promotion for Korean Travelers",
			Platform:     "Naver",
			Submitter:    minji,
			SubmittedAt:  now.AddDate(0, 0, -1),
			ScheduledFor: clock(now, daysUntil(time.Monday), 9, 0),
			Status:       StatusPending,
			Content:      "특별 할인: 3박 이상 예약 시 30% 할인 및 무료 조식 제공. 지금 예약하세요!",
			Image:        photo("1566073771259-6a8506099945"),
		},
		{
			Title:        "Summer Pool Party Announcement",
			Platform:     "Instagram",
			Submitter:    sarah,
			SubmittedAt:  now.AddDate(0, 0, -2),
			ScheduledFor: clock(now, 1, 11, 0),
			Status:       StatusApproved,
			Reviewer:     "Marketing Director",
			ReviewedAt:   clock(now, -1, 15, 45),
			Content:      "Beat the heat at our exclusive summer pool party! Join us for refreshing cocktails, live DJ, and summer vibes. Limited spots available!",
			Image:        photo("1575429198097-0414ec08e8cd"),
		},
		{
			Title:        "New Executive Chef Announcement",
			Platform:     "Facebook",
			Submitter:    david,
			SubmittedAt:  now.AddDate(0, 0, -3),
			ScheduledFor: clock(now, 0, 14, 0),
			Status:       StatusApproved,
			Reviewer:     "Marketing Director",
			ReviewedAt:   clock(now, -2, 10, 0),
			Content:      "We're thrilled to welcome Chef Michael Laurent to our culinary team! With 15 years of experience in Michelin-starred restaurants, he brings a fresh perspective to our menu.",
			Image:        photo("1577219491135-ce391730fb2c"),
		},
		{
			Title:       "Discount Promotion for All Guests",
			Platform:    "Instagram",
			Submitter:   sarah,
			SubmittedAt: now.AddDate(0, 0, -2),
			Status:      StatusRejected,
			Reviewer:    "Marketing Director",
			Reason:      "Discount percentage too high. Please revise to 15% instead of 30%.",
			ReviewedAt:  clock(now, -1, 17, 30),
			Content:     "SPECIAL OFFER: 30% off all bookings this month! Use code SUMMER30 at checkout. Limited time only!",
			Image:       photo("1551918120-9739cb430c6d"),
		},
		{
			Title:       "Staff Party Announcement",
			Platform:    "Facebook",
			Submitter:   david,
			SubmittedAt: now.AddDate(0, 0, -4),
			Status:      StatusRejected,
			Reviewer:    "HR Manager",
			Reason:      "Internal events should not be posted on public channels. Please use internal communication tools.",
			ReviewedAt:  clock(now, -3, 9, 0),
			Content:     "Join us for the annual staff appreciation party this Friday at 8 PM in the Grand Ballroom. Food and drinks provided!",
			Image:       photo("1516997121675-4c2d1684aa3e"),
		},
	}
}
