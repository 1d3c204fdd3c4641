package models

import "time"

// TournamentStanding is one participant's ranking line. It is computed from completed matches
// and frozen into the tournament_standings table when the tournament completes.
type TournamentStanding struct {
	ID               int       `json:"-" db:"id"`
	TournamentID     int       `json:"-" db:"tournament_id"`
	UserID           int       `json:"userId" db:"user_id"`
	UserName         string    `json:"userName" db:"user_name"`
	Rank             int       `json:"rank" db:"rank"`
	Wins             int       `json:"wins" db:"wins"`
	Draws            int       `json:"draws" db:"draws"`
	Losses           int       `json:"losses" db:"losses"`
	Byes             int       `json:"byes" db:"byes"`
	TournamentPoints int       `json:"tournamentPoints" db:"tournament_points"`
	ScorePoints      int       `json:"scorePoints" db:"score_points"`
	MatchesPlayed    int       `json:"matchesPlayed" db:"matches_played"`
	UpdatedAt        time.Time `json:"-" db:"updated_at"`
}

// Podium holds the top three of a completed tournament; missing places stay nil.
type Podium struct {
	First  *TournamentStanding `json:"first"`
	Second *TournamentStanding `json:"second"`
	Third  *TournamentStanding `json:"third"`
}
