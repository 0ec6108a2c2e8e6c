package analytics

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlatformStats is one row of the platform performance table
type PlatformStats struct {
	Platform       string          `json:"platform"`
	Engagement     int64           `json:"engagement"`
	Reach          int64           `json:"reach"`
	NewFollowers   int64           `json:"newFollowers"`
	EngagementRate decimal.Decimal `json:"engagementRate"`
}

// ContentItem is a published post ranked by how well it did
type ContentItem struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Platform         string    `json:"platform"`
	PublishedAt      time.Time `json:"publishedAt"`
	Image            string    `json:"image,omitempty"`
	Impressions      int64     `json:"impressions"`
	Likes            int64     `json:"likes"`
	Comments         int64     `json:"comments"`
	PerformanceScore int       `json:"performanceScore"`
}

// GrowthPoint is the follower count at the end of a month
type GrowthPoint struct {
	Month     string `json:"month"` // YYYY-MM
	Followers int64  `json:"followers"`
}

type GrowthSeries struct {
	Platform string        `json:"platform"`
	Points   []GrowthPoint `json:"points"`
}

type platformFigures struct {
	platform   string
	engagement int64
	reach      int64
	followers  int64
	// month-end follower totals, oldest first, ending with the current month
	growth []int64
}

// Dataset holds the reporting figures the analytics pages are built from.
// Social network APIs are not called; the figures are fixed.
type Dataset struct {
	platforms []platformFigures
	content   []contentFigures
}

type contentFigures struct {
	id, title, platform, image string
	age                        time.Duration
	impressions, likes         int64
	comments                   int64
	score                      int
}

func DefaultDataset() *Dataset {
	return &Dataset{
		platforms: []platformFigures{
			{platform: "instagram", engagement: 12453, reach: 78945, followers: 723, growth: []int64{8120, 8450, 8790, 9210, 9640, 10363}},
			{platform: "facebook", engagement: 8765, reach: 45678, followers: 412, growth: []int64{6200, 6310, 6480, 6590, 6755, 7167}},
			{platform: "twitter", engagement: 3674, reach: 17945, followers: 112, growth: []int64{2100, 2150, 2190, 2260, 2310, 2422}},
		},
		content: []contentFigures{
			{
				id: "1", title: "Luxury Suite Promotion for Summer Getaways", platform: "Instagram",
				image: "https://images.unsplash.com/photo-1611892440504-42a792e24d32?w=600&q=80",
				age:   3 * 24 * time.Hour, impressions: 12453, likes: 843, comments: 67, score: 92,
			},
			{
				id: "2", title: "Behind the Scenes: Our Award-Winning Restaurant", platform: "Facebook",
				image: "https://images.unsplash.com/photo-1414235077428-338989a2e8c0?w=600&q=80",
				age:   7 * 24 * time.Hour, impressions: 8765, likes: 632, comments: 45, score: 87,
			},
			{
				id: "3", title: "Meet Our New Executive Chef", platform: "Twitter",
				image: "https://images.unsplash.com/photo-1577219491135-ce391730fb2c?w=600&q=80",
				age:   14 * 24 * time.Hour, impressions: 5432, likes: 321, comments: 28, score: 78,
			},
			{
				id: "4", title: "한국 여행객을 위한 특별 패키지 - 서울에서 3시간 거리", platform: "Naver",
				image: "https://images.unsplash.com/photo-1566073771259-6a8506099945?w=600&q=80",
				age:   21 * 24 * time.Hour, impressions: 7654, likes: 543, comments: 89, score: 85,
			},
		},
	}
}

// EngagementRate is engagement over reach as a percentage, rounded to two
// places. Zero reach yields zero.
func EngagementRate(engagement, reach int64) decimal.Decimal {
	if reach <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(engagement).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(reach), 2)
}

func (d *Dataset) platformStats() []PlatformStats {
	out := make([]PlatformStats, 0, len(d.platforms))
	for _, p := range d.platforms {
		out = append(out, PlatformStats{
			Platform:       p.platform,
			Engagement:     p.engagement,
			Reach:          p.reach,
			NewFollowers:   p.followers,
			EngagementRate: EngagementRate(p.engagement, p.reach),
		})
	}
	return out
}

func (d *Dataset) topContent(now time.Time) []ContentItem {
	out := make([]ContentItem, 0, len(d.content))
	for _, c := range d.content {
		out = append(out, ContentItem{
			ID:               c.id,
			Title:            c.title,
			Platform:         c.platform,
			PublishedAt:      now.Add(-c.age),
			Image:            c.image,
			Impressions:      c.impressions,
			Likes:            c.likes,
			Comments:         c.comments,
			PerformanceScore: c.score,
		})
	}
	return out
}

func (d *Dataset) growth(now time.Time) []GrowthSeries {
	out := make([]GrowthSeries, 0, len(d.platforms))
	for _, p := range d.platforms {
		series := GrowthSeries{Platform: p.platform, Points: make([]GrowthPoint, len(p.growth))}
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, 1-len(p.growth), 0)
		for i, followers := range p.growth {
			series.Points[i] = GrowthPoint{
				Month:     first.AddDate(0, i, 0).Format("2006-01"),
				Followers: followers,
			}
		}
		out = append(out, series)
	}
	return out
}
