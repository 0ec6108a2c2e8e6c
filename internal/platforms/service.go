package platforms

import "strings"

// Service exposes a small in-memory catalog of platforms.
type Service struct {
	platforms []Platform
}

func NewService() *Service {
	return &Service{
		platforms: []Platform{
			{
				ID:             "instagram",
				Label:          "Instagram",
				Icon:           "📸",
				ColorClass:     "bg-pink-100 text-pink-600 hover:bg-pink-200",
				CharacterLimit: 2200,
				Schedulable:    true,
				Connected:      true,
				Username:       "@hotelgrand",
			},
			{
				ID:             "facebook",
				Label:          "Facebook",
				Icon:           "👍",
				ColorClass:     "bg-blue-100 text-blue-600 hover:bg-blue-200",
				CharacterLimit: 63206,
				Schedulable:    true,
				Connected:      true,
				Username:       "Grand Hotel Official",
			},
			{
				ID:             "twitter",
				Label:          "Twitter",
				Icon:           "🐦",
				ColorClass:     "bg-sky-100 text-sky-600 hover:bg-sky-200",
				CharacterLimit: 280,
				Schedulable:    true,
			},
			{
				ID:             "linkedin",
				Label:          "LinkedIn",
				Icon:           "💼",
				ColorClass:     "bg-indigo-100 text-indigo-600 hover:bg-indigo-200",
				CharacterLimit: 3000,
				StripsEmoji:    true,
				Schedulable:    true,
			},
			{
				ID:         "naver",
				Label:      "Naver",
				Icon:       "🇰🇷",
				ColorClass: "bg-green-100 text-green-600 hover:bg-green-200",
				Connected:  true,
				Username:   "그랜드호텔",
			},
		},
	}
}

func (s *Service) List() []Platform {
	out := make([]Platform, len(s.platforms))
	copy(out, s.platforms)
	return out
}

// Get looks a platform up by id, ignoring case
func (s *Service) Get(id string) (Platform, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, p := range s.platforms {
		if p.ID == id {
			return p, true
		}
	}
	return Platform{}, false
}

// Schedulable lists the platforms posts can be scheduled on
func (s *Service) Schedulable() []Platform {
	var out []Platform
	for _, p := range s.platforms {
		if p.Schedulable {
			out = append(out, p)
		}
	}
	return out
}
