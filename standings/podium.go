package standings

import "github.com/Dosada05/tournament-engine/models"

// ResolvePodium takes ordered standings and returns the first three places.
func ResolvePodium(rows []models.TournamentStanding) models.Podium {
	var podium models.Podium
	places := []**models.TournamentStanding{&podium.First, &podium.Second, &podium.Third}
	for i, slot := range places {
		if i >= len(rows) {
			break
		}
		r := rows[i]
		*slot = &r
	}
	return podium
}
