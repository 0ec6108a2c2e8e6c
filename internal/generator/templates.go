package generator

// Template is a prompt preset the user picks before generating
type Template struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Prompt      string `json:"prompt"`
	Category    string `json:"category"`
}

type variant struct {
	format   string // %s is replaced by the user's details
	hashtags []string
}

var templates = []Template{
	{
		ID:          "promo-event",
		Name:        "Event Promotion",
		Description: "Promote an upcoming event at your hotel",
		Prompt:      "Create a social media post promoting an event at our hotel. Event details: {{eventDetails}}",
		Category:    "promotion",
	},
	{
		ID:          "special-offer",
		Name:        "Special Offer",
		Description: "Highlight a special offer or discount",
		Prompt:      "Create a social media post about a special offer at our hotel. Offer details: {{offerDetails}}",
		Category:    "promotion",
	},
	{
		ID:          "room-highlight",
		Name:        "Room Highlight",
		Description: "Showcase a room or suite",
		Prompt:      "Create a social media post highlighting a room or suite at our hotel. Room details: {{roomDetails}}",
		Category:    "showcase",
	},
	{
		ID:          "dining-experience",
		Name:        "Dining Experience",
		Description: "Promote restaurant or dining options",
		Prompt:      "Create a social media post about dining options at our hotel. Dining details: {{diningDetails}}",
		Category:    "showcase",
	},
	{
		ID:          "local-attraction",
		Name:        "Local Attraction",
		Description: "Highlight nearby attractions or activities",
		Prompt:      "Create a social media post about a local attraction near our hotel. Attraction details: {{attractionDetails}}",
		Category:    "local",
	},
	{
		ID:          "seasonal-special",
		Name:        "Seasonal Special",
		Description: "Promote seasonal offerings or holiday specials",
		Prompt:      "Create a social media post about our seasonal or holiday special. Details: {{seasonalDetails}}",
		Category:    "promotion",
	},
	{
		ID:          "guest-testimonial",
		Name:        "Guest Testimonial",
		Description: "Share a positive guest experience or review",
		Prompt:      "Create a social media post highlighting a guest testimonial. Review details: {{testimonialDetails}}",
		Category:    "social-proof",
	},
}

var variants = map[string]map[Language]variant{
	"promo-event": {
		English: {
			format:   "🎉 EVENT ALERT! 🎉\n\nJoin us for %s\n\nBook your spot now! Link in bio. #HotelEvents #SpecialOccasions #LuxuryHotel #WeekendGetaway",
			hashtags: []string{"HotelEvents", "SpecialOccasions", "LuxuryHotel", "WeekendGetaway"},
		},
		Korean: {
			format:   "🎉 특별 이벤트 알림! 🎉\n\n%s\n\n지금 바로 예약하세요! 링크는 프로필에 있습니다. #호텔이벤트 #특별행사 #럭셔리호텔 #주말여행",
			hashtags: []string{"호텔이벤트", "특별행사", "럭셔리호텔", "주말여행"},
		},
	},
	"special-offer": {
		English: {
			format:   "💯 SPECIAL OFFER ALERT! 💯\n\n%s\n\nBook now and enjoy this amazing deal! #HotelDeals #SpecialOffer #LuxuryStay #HotelPromotion",
			hashtags: []string{"HotelDeals", "SpecialOffer", "LuxuryStay", "HotelPromotion"},
		},
		Korean: {
			format:   "💯 특별 할인 혜택! 💯\n\n%s\n\n지금 예약하고 특별한 경험을 누리세요! #호텔특가 #할인혜택 #럭셔리스테이 #호캉스",
			hashtags: []string{"호텔특가", "할인혜택", "럭셔리스테이", "호캉스"},
		},
	},
	"room-highlight": {
		English: {
			format:   "✨ Room Spotlight ✨\n\n%s\n\nBook now for an unforgettable stay! #HotelRoom #LuxuryStay #RoomWithAView #VacationMode",
			hashtags: []string{"HotelRoom", "LuxuryStay", "RoomWithAView", "VacationMode"},
		},
		Korean: {
			format:   "✨ 럭셔리한 객실 소개 ✨\n\n%s\n\n지금 예약하고 특별한 경험을 누리세요! #호텔객실 #럭셔리스테이 #호캉스 #힐링여행",
			hashtags: []string{"호텔객실", "럭셔리스테이", "호캉스", "힐링여행"},
		},
	},
	"dining-experience": {
		English: {
			format:   "🍽️ Culinary Excellence 🍽️\n\n%s\n\nReserve your table now! #HotelDining #CulinaryExperience #Foodie #ChefsTable",
			hashtags: []string{"HotelDining", "CulinaryExperience", "Foodie", "ChefsTable"},
		},
		Korean: {
			format:   "🍽️ 특별한 다이닝 경험 🍽️\n\n%s\n\n지금 예약하세요! #호텔다이닝 #맛있는경험 #미식가 #셰프스테이블",
			hashtags: []string{"호텔다이닝", "맛있는경험", "미식가", "셰프스테이블"},
		},
	},
	"local-attraction": {
		English: {
			format:   "🌟 Local Attraction Spotlight 🌟\n\n%s\n\nAsk our front desk for more information! #TravelTips #LocalExperience #TravelGram #ExploreMore",
			hashtags: []string{"TravelTips", "LocalExperience", "TravelGram", "ExploreMore"},
		},
		Korean: {
			format:   "🌟 주변 명소 추천 🌟\n\n%s\n\n더 많은 정보는 프론트 데스크에 문의하세요! #여행팁 #현지경험 #여행스타그램 #로컬여행",
			hashtags: []string{"여행팁", "현지경험", "여행스타그램", "로컬여행"},
		},
	},
	"seasonal-special": {
		English: {
			format:   "🍂 Seasonal Special 🍂\n\n%s\n\nBook your spot now! Available for a limited time. #SeasonalSpecial #HolidayStay #LuxuryHotel #LimitedTime",
			hashtags: []string{"SeasonalSpecial", "HolidayStay", "LuxuryHotel", "LimitedTime"},
		},
		Korean: {
			format:   "🍂 시즌 스페셜 🍂\n\n%s\n\n기간 한정! 지금 예약하세요! #시즌특가 #연휴여행 #럭셔리호텔 #한정판",
			hashtags: []string{"시즌특가", "연휴여행", "럭셔리호텔", "한정판"},
		},
	},
	"guest-testimonial": {
		English: {
			format:   "💬 What Our Guests Say 💬\n\n\"%s\"\n\nThank you for staying with us! #GuestReview #HappyGuests #HotelLife #Hospitality",
			hashtags: []string{"GuestReview", "HappyGuests", "HotelLife", "Hospitality"},
		},
		Korean: {
			format:   "💬 고객 후기 💬\n\n\"%s\"\n\n저희 호텔을 찾아주셔서 감사합니다! #고객후기 #호텔리뷰 #호캉스 #감사합니다",
			hashtags: []string{"고객후기", "호텔리뷰", "호캉스", "감사합니다"},
		},
	},
}

// quickDrafts is the canned copy used when generating straight from a
// calendar day by post type.
var quickDrafts = map[string]struct{ title, content string }{
	"promotion": {
		title:   "Weekend Brunch Special",
		content: "Join us this weekend for our special brunch menu featuring locally sourced ingredients and craft cocktails! Perfect for a relaxing Sunday with friends and family. #BrunchGoals #FoodieHeaven",
	},
	"event": {
		title:   "Live Jazz Night",
		content: "Mark your calendars! This Friday we're hosting a live jazz night with the renowned local quartet 'The Smooth Notes'. Enjoy our special cocktail menu while listening to the best jazz in town. #JazzNight #LiveMusic",
	},
	"announcement": {
		title:   "Meet Our New Head Chef",
		content: "We're excited to announce our new head chef, Maria Rodriguez, who brings 15 years of experience from Michelin-starred restaurants. Come taste her innovative creations starting next week! #NewChef #CulinaryExcellence",
	},
	"menu": {
		title:   "Summer Menu Launch",
		content: "Our new summer menu has arrived! Featuring fresh seasonal ingredients, innovative dishes, and refreshing cocktails perfect for warm evenings on our patio. #SummerMenu #SeasonalCuisine",
	},
	"holiday": {
		title:   "Festive Holiday Dining",
		content: "Celebrate the holidays with us! Our special festive menu is now available for booking. Gather your loved ones for an unforgettable dining experience with traditional favorites and creative holiday cocktails. #HolidayDining #FestiveSeason",
	},
}

// Templates returns the catalog in display order
func Templates() []Template {
	out := make([]Template, len(templates))
	copy(out, templates)
	return out
}

// FindTemplate looks a template up by id
func FindTemplate(id string) (Template, bool) {
	for _, t := range templates {
		if t.ID == id {
			return t, true
		}
	}
	return Template{}, false
}
