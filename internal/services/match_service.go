package services

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/jogivikas/skill-exchange/internal/models"
)

// MatchServiceProvider defines the interface for the match finder.
type MatchServiceProvider interface {
	FindMatches(userID string) ([]models.Match, error)
}

// MatchService ranks other users by skill compatibility.
type MatchService struct {
	users UserServiceProvider
}

// NewMatchService creates a new MatchService.
func NewMatchService(users UserServiceProvider) *MatchService {
	return &MatchService{users: users}
}

// MatchScore computes the compatibility percentage between two skill
// profiles: the number of A's wanted skills offered by B, plus the number of
// B's wanted skills offered by A, over the larger of the two want-list sizes
// (floored at 1), times 100.
//
// Skill comparison is exact and case-sensitive. The result is not capped and
// can exceed 100 when both directions match heavily relative to one side's
// want-list size. Consumers rely on the exact magnitudes, so this must not be
// normalized or clamped.
func MatchScore(a, b models.SkillProfile) float64 {
	wantsMatch := countOverlap(a.Wanted, b.Offered)
	offersMatch := countOverlap(b.Wanted, a.Offered)

	denominator := len(a.Wanted)
	if len(b.Wanted) > denominator {
		denominator = len(b.Wanted)
	}
	if denominator < 1 {
		denominator = 1
	}

	return float64(wantsMatch+offersMatch) / float64(denominator) * 100
}

func countOverlap(wanted, offered []string) int {
	offeredSet := make(map[string]struct{}, len(offered))
	for _, skill := range offered {
		offeredSet[skill] = struct{}{}
	}
	count := 0
	for _, skill := range wanted {
		if _, ok := offeredSet[skill]; ok {
			count++
		}
	}
	return count
}

// Initials derives up to two uppercase initials from a display name.
// An empty name yields a single placeholder character.
func Initials(name string) string {
	var initials []rune
	for _, token := range strings.Fields(name) {
		r, _ := utf8.DecodeRuneInString(token)
		initials = append(initials, r)
		if len(initials) == 2 {
			break
		}
	}
	if len(initials) == 0 {
		return "?"
	}
	return strings.ToUpper(string(initials))
}

// FindMatches returns every other active account ranked against the given
// user: descending match percentage, ties broken by descending rating. The
// full result set is returned, unpaginated.
func (s *MatchService) FindMatches(userID string) ([]models.Match, error) {
	current, err := s.users.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	currentProfile := models.SkillProfile{Offered: current.SkillsOffered, Wanted: current.SkillsWanted}

	allUsers, err := s.users.GetAllUsers()
	if err != nil {
		return nil, err
	}

	matches := make([]models.Match, 0, len(allUsers))
	for _, user := range allUsers {
		if user.ID == current.ID || user.Status != "active" {
			continue
		}
		score := MatchScore(currentProfile, models.SkillProfile{
			Offered: user.SkillsOffered,
			Wanted:  user.SkillsWanted,
		})
		matches = append(matches, models.Match{
			ID:           user.ID,
			Name:         user.FullName,
			Initials:     Initials(user.FullName),
			Rating:       user.Rating,
			MatchPercent: int(math.Round(score)),
			Offers:       user.SkillsOffered,
			Wants:        user.SkillsWanted,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].MatchPercent != matches[j].MatchPercent {
			return matches[i].MatchPercent > matches[j].MatchPercent
		}
		return matches[i].Rating > matches[j].Rating
	})

	return matches, nil
}
