package store

import (
	"time"

	"tentkids/internal/models"
)

const sampleVideoBase = "https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/"

func bot(id, nickname, avatarID string) models.Author {
	return models.Author{AuthorID: id, AuthorNickname: nickname, AuthorAvatarID: avatarID}
}

// SeedPosts are shown until the user has posted anything.
func SeedPosts(now time.Time) []models.Post {
	return []models.Post{
		{
			ID:        "sp1",
			Author:    bot("bot1", "Cupcake", "cupcake"),
			Content:   "Welcome to Tent-Kids! Have fun everyone!",
			Reactions: models.Reactions{"heart": {"bot2"}},
			Comments:  []models.SafeComment{},
			CreatedAt: now.Add(-time.Hour),
		},
		{
			ID:        "sp2",
			Author:    bot("bot2", "Bear", "bear"),
			Content:   "I love my tent color! What about you?",
			VideoURL:  sampleVideoBase + "ForBiggerBlazes.mp4",
			Reactions: models.Reactions{"star": {"bot1"}},
			Comments:  []models.SafeComment{},
			CreatedAt: now.Add(-2 * time.Hour),
		},
		{
			ID:        "sp3",
			Author:    bot("bot3", "Bunny", "rabbit"),
			Content:   "Check out this cool video!",
			VideoURL:  sampleVideoBase + "ForBiggerEscapes.mp4",
			Reactions: models.Reactions{},
			Comments:  []models.SafeComment{},
			CreatedAt: now.Add(-3 * time.Hour),
		},
	}
}

func SeedStories(now time.Time) []models.Story {
	return []models.Story{
		{ID: "ss1", Author: bot("bot1", "Cupcake", "cupcake"), Color: "#FF80AB", IconName: "cupcake", CreatedAt: now.Add(-30 * time.Minute)},
		{ID: "ss2", Author: bot("bot2", "Bear", "bear"), Color: "#B388FF", IconName: "teddy-bear", CreatedAt: now.Add(-time.Hour)},
	}
}

func SeedVideos(now time.Time) []models.VideoItem {
	day := 24 * time.Hour
	return []models.VideoItem{
		{
			ID: "v1", TitleAr: "مغامرة في أرض الحلويات", TitleEn: "Candy Land Adventure",
			ThumbnailColor: "#FFB74D", IconName: "candy",
			VideoURL:  sampleVideoBase + "ForBiggerBlazes.mp4",
			Reactions: models.Reactions{}, Duration: "3:45", CreatedAt: now.Add(-day),
		},
		{
			ID: "v2", TitleAr: "تعلم الألوان مع الكب كيك", TitleEn: "Learn Colors with Cupcakes",
			ThumbnailColor: "#F48FB1", IconName: "cupcake",
			VideoURL:  sampleVideoBase + "ForBiggerEscapes.mp4",
			Reactions: models.Reactions{}, Duration: "5:12", CreatedAt: now.Add(-2 * day),
		},
		{
			ID: "v3", TitleAr: "قصة الخيمة السحرية", TitleEn: "Magic Tent Story",
			ThumbnailColor: "#7E57C2", IconName: "tent",
			VideoURL:  sampleVideoBase + "ForBiggerFun.mp4",
			Reactions: models.Reactions{}, Duration: "8:30", CreatedAt: now.Add(-3 * day),
		},
		{
			ID: "v4", TitleAr: "أغنية الآيس كريم", TitleEn: "Ice Cream Song",
			ThumbnailColor: "#4FC3F7", IconName: "ice-cream",
			VideoURL:  sampleVideoBase + "ForBiggerJoyrides.mp4",
			Reactions: models.Reactions{}, Duration: "2:58", CreatedAt: now.Add(-4 * day),
		},
	}
}
