package engagement

import "github.com/ecoplus-hub/ecoplus/internal/domain"

// ─── Badge Catalog ──────────────────────────────────────────────────────────
// Eight badges, ascending by ID. Users store badges by Name.

func intp(v int) *int { return &v }

var catalog = []domain.BadgeDefinition{
	{
		ID: 1, Name: "Seed Planter", Icon: "🌱",
		Description: "Complete your very first climate quiz.",
		Criteria:    domain.Criteria{Events: []domain.EventType{domain.EventQuiz}},
	},
	{
		ID: 2, Name: "Climate Scholar", Icon: "📚",
		Description: "Complete 2 quizzes on Climate Science.",
		Criteria: domain.Criteria{
			Events:          []domain.EventType{domain.EventQuiz},
			Subject:         "Climate Science",
			MinSubjectCount: 2,
		},
	},
	{
		ID: 3, Name: "Ocean Defender", Icon: "🌊",
		Description: "Score 60%+ in an Oceans & Water quiz.",
		Criteria: domain.Criteria{
			Events:   []domain.EventType{domain.EventQuiz},
			Subject:  "Oceans",
			MinScore: intp(60),
		},
	},
	{
		ID: 4, Name: "Green Genius", Icon: "🧠",
		Description: "Complete any quiz with a score of 70% or higher.",
		Criteria: domain.Criteria{
			Events:   []domain.EventType{domain.EventQuiz},
			MinScore: intp(70),
		},
	},
	{
		ID: 5, Name: "Habit Hero", Icon: "♻️",
		Description: "Engage with the platform on 2 different days.",
		Criteria:    domain.Criteria{MinUniqueDays: 2},
	},
	{
		ID: 6, Name: "Change Maker", Icon: "🌍",
		Description: "Complete 5 unique lessons or quizzes.",
		Criteria: domain.Criteria{
			Events:          []domain.EventType{domain.EventQuiz},
			MinTotalQuizzes: 5,
		},
	},
	{
		ID: 7, Name: "Net Zero Hero", Icon: "🦸",
		Description: "Achieve a perfect score (100%) in any quiz.",
		Criteria: domain.Criteria{
			Events:     []domain.EventType{domain.EventQuiz},
			ExactScore: intp(100),
		},
	},
	{
		ID: 8, Name: "Nocturnal Nature", Icon: "🦉",
		Description: "Complete a learning module after 10 PM.",
		Criteria: domain.Criteria{
			Events:   []domain.EventType{domain.EventQuiz, domain.EventLearn},
			FromHour: intp(22),
		},
	},
}

// Catalog returns a copy of the badge catalog in ascending ID order.
func Catalog() []domain.BadgeDefinition {
	out := make([]domain.BadgeDefinition, len(catalog))
	copy(out, catalog)
	return out
}

// BadgeByID looks up a catalog entry by its stable ID.
func BadgeByID(id int) (domain.BadgeDefinition, bool) {
	for _, b := range catalog {
		if b.ID == id {
			return b, true
		}
	}
	return domain.BadgeDefinition{}, false
}

// BadgeByName looks up a catalog entry by display name.
func BadgeByName(name string) (domain.BadgeDefinition, bool) {
	for _, b := range catalog {
		if b.Name == name {
			return b, true
		}
	}
	return domain.BadgeDefinition{}, false
}
