package engagement

import "github.com/ecoplus-hub/ecoplus/internal/domain"

// Levels are points bands, ascending. Quiz answers are the main source of
// points (+20 per correct answer).
var levels = []domain.Level{
	{Level: 1, Name: "Seedling", MinPoints: 0, Avatar: avatarURL("Seedling")},
	{Level: 2, Name: "Sprout", MinPoints: 500, Avatar: avatarURL("Sprout")},
	{Level: 3, Name: "Sapling", MinPoints: 1000, Avatar: avatarURL("Sapling")},
	{Level: 4, Name: "Tree", MinPoints: 2000, Avatar: avatarURL("Tree")},
	{Level: 5, Name: "Forest", MinPoints: 4000, Avatar: avatarURL("Forest")},
}

func avatarURL(seed string) string {
	return "https://api.dicebear.com/7.x/avataaars/svg?seed=" + seed
}

// Levels returns a copy of the level table.
func Levels() []domain.Level {
	out := make([]domain.Level, len(levels))
	copy(out, levels)
	return out
}

// LevelForPoints returns the highest level whose threshold points reach,
// with percentage progress toward the next level (100 at the top level).
func LevelForPoints(points int) domain.LevelProgress {
	idx := 0
	for i := len(levels) - 1; i >= 0; i-- {
		if points >= levels[i].MinPoints {
			idx = i
			break
		}
	}

	lp := domain.LevelProgress{Level: levels[idx], Progress: 100}
	if idx+1 < len(levels) {
		next := levels[idx+1]
		span := next.MinPoints - levels[idx].MinPoints
		gained := points - levels[idx].MinPoints
		progress := float64(gained) / float64(span) * 100
		if progress < 0 {
			progress = 0
		}
		if progress > 100 {
			progress = 100
		}
		lp.Progress = progress
		nextPoints := next.MinPoints
		lp.NextLevelPoints = &nextPoints
	}
	return lp
}
