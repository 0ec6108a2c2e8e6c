package media

import "time"

// Fixtures is the sample library shown before anything is uploaded
func Fixtures() []Asset {
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	return []Asset{
		{
			Name: "Restaurant Interior", Kind: KindImage, ContentType: "image/jpeg", Size: 2516582,
			URL:        "https://images.unsplash.com/photo-1517248135467-4c7edcad34c4?w=800&q=80",
			Tags:       []string{"interior", "restaurant", "design"},
			UploadedAt: day(2023, time.June, 15),
		},
		{
			Name: "Signature Dish", Kind: KindImage, ContentType: "image/jpeg", Size: 1887437,
			URL:        "https://images.unsplash.com/photo-1504674900247-0877df9cc836?w=800&q=80",
			Tags:       []string{"food", "dish", "signature"},
			UploadedAt: day(2023, time.July, 20),
		},
		{
			Name: "Cocktail Menu", Kind: KindImage, ContentType: "image/jpeg", Size: 3355443,
			URL:        "https://images.unsplash.com/photo-1551024709-8f23befc6f87?w=800&q=80",
			Tags:       []string{"drinks", "cocktail", "menu"},
			UploadedAt: day(2023, time.August, 5),
		},
		{
			Name: "Chef Interview", Kind: KindVideo, ContentType: "video/mp4", Size: 16462643,
			URL:        "https://example.com/video1.mp4",
			Thumbnail:  "https://images.unsplash.com/photo-1577219491135-ce391730fb2c?w=800&q=80",
			Tags:       []string{"chef", "interview", "cooking"},
			UploadedAt: day(2023, time.September, 10),
		},
		{
			Name: "Menu PDF", Kind: KindDocument, ContentType: "application/pdf", Size: 4718592,
			URL:        "https://example.com/menu.pdf",
			Tags:       []string{"menu", "document", "pdf"},
			UploadedAt: day(2023, time.October, 1),
		},
		{
			Name: "Hotel Exterior", Kind: KindImage, ContentType: "image/jpeg", Size: 3040870,
			URL:        "https://images.unsplash.com/photo-1566073771259-6a8506099945?w=800&q=80",
			Tags:       []string{"hotel", "exterior", "architecture"},
			UploadedAt: day(2023, time.November, 12),
		},
	}
}
