package posts

import (
	"fmt"
	"math/rand"
	"time"
)

var demoTitles = map[string][]string{
	"promotion":    {"Weekend Special", "Happy Hour Deal", "Limited Offer"},
	"event":        {"Live Music Night", "Chef's Table", "Wine Tasting"},
	"announcement": {"New Staff Member", "Renovation Complete", "Extended Hours"},
	"menu":         {"New Menu Item", "Seasonal Specials", "Chef's Recommendation"},
	"holiday":      {"Holiday Special", "Christmas Menu", "New Year's Eve Party"},
}

var demoContent = map[string]string{
	"promotion":    "%s at our hotel this week only. Book now and save! #HotelDeals #StaySocial",
	"event":        "Join us for %s. Reserve your spot today! #HotelEvents #Nightlife",
	"announcement": "%s: we can't wait to welcome you. #HotelNews",
	"menu":         "%s now served at our restaurant. #Foodie #ChefSpecial",
	"holiday":      "Celebrate with our %s. #HolidaySeason #Celebrate",
}

var demoImages = []string{
	"1467003909585-2f8a72700288",
	"1445019980597-93fa8acb246c",
	"1414235077428-338989a2e8c0",
	"1504674900247-0877df9cc836",
}

// Seeder produces demo posts the way the planning dashboard's fixtures look
type Seeder struct {
	rng *rand.Rand
}

// NewSeeder returns a seeder; seed 0 seeds from the clock
func NewSeeder(seed int64) *Seeder {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Seeder{rng: rand.New(rand.NewSource(seed))}
}

// Drafts returns 0 to 3 posts for each of the days starting at from
func (s *Seeder) Drafts(from time.Time, days int) []Draft {
	var drafts []Draft
	for i := 0; i < days; i++ {
		day := from.AddDate(0, 0, i).Format(DateLayout)

		for n := s.rng.Intn(4); n > 0; n-- {
			postType := KnownTypes[s.rng.Intn(len(KnownTypes))]
			titles := demoTitles[postType]
			title := titles[s.rng.Intn(len(titles))]

			d := Draft{
				Title:         title,
				Content:       fmt.Sprintf(demoContent[postType], title),
				Platform:      Platforms[s.rng.Intn(len(Platforms))],
				Status:        []Status{StatusDraft, StatusScheduled, StatusPublished}[s.rng.Intn(3)],
				ScheduledDate: day,
				ScheduledTime: s.clock(),
				Type:          postType,
			}
			if s.rng.Float64() > 0.5 {
				d.Image = fmt.Sprintf("https://images.unsplash.com/photo-%s?w=150&q=80", demoImages[s.rng.Intn(len(demoImages))])
			}
			drafts = append(drafts, d)
		}
	}
	return drafts
}

// clock picks a quarter-hour between 8:00 AM and 7:45 PM
func (s *Seeder) clock() string {
	hour := s.rng.Intn(12) + 8
	minute := s.rng.Intn(4) * 15
	return time.Date(2000, 1, 1, hour, minute, 0, 0, time.UTC).Format("3:04 PM")
}
