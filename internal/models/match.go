package models

// SkillProfile is the pair of skill sets the match scorer operates on.
type SkillProfile struct {
	Offered []string
	Wanted  []string
}

// Match is one ranked entry returned by the match finder.
type Match struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Initials     string   `json:"initials"`
	Rating       float64  `json:"rating"`
	MatchPercent int      `json:"matchPercent"`
	Offers       []string `json:"offers"`
	Wants        []string `json:"wants"`
}
