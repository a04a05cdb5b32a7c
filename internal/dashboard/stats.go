// Package dashboard computes end-of-round team statistics, decision influences
// and the what-if substitution simulation.
//
// Every exported computation deduplicates its input by candidate id first;
// a session's selected candidates may repeat when decisions are resubmitted.
package dashboard

import (
	"math"
	"strings"

	"github.com/jonathan/hiring-bias-game/internal/types"
)

// Bucket is a count and its share of the total, rounded to a whole percent.
type Bucket struct {
	Count      int `json:"count"`
	Percentage int `json:"percentage"`
}

// GenderDistribution splits a team by gender. Anything other than male or female counts as non-binary.
type GenderDistribution struct {
	Male      Bucket `json:"male"`
	Female    Bucket `json:"female"`
	NonBinary Bucket `json:"nonBinary"`
}

// AgeDistribution splits a team by decade.
type AgeDistribution struct {
	Twenties Bucket `json:"20-29"`
	Thirties Bucket `json:"30-39"`
	Forties  Bucket `json:"40-49"`
	FiftyUp  Bucket `json:"50+"`
}

// EducationDistribution splits a team by degree level.
type EducationDistribution struct {
	Bachelors Bucket `json:"bachelors"`
	Masters   Bucket `json:"masters"`
	Other     Bucket `json:"other"`
}

// Performance score constants.
const (
	BaseScore          = 50
	MaxScore           = 95
	MaxExperienceScore = 25
)

// Dedupe keeps the first occurrence of each candidate id, preserving order.
func Dedupe(candidates []types.Candidate) []types.Candidate {
	seen := make(map[int64]struct{}, len(candidates))
	out := make([]types.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := seen[c.ID]; ok {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	return out
}

// Genders returns the gender distribution of the deduplicated team.
func Genders(candidates []types.Candidate) GenderDistribution {
	team := Dedupe(candidates)
	counts := genderCounts(team)
	return GenderDistribution{
		Male:      bucket(counts[0], len(team)),
		Female:    bucket(counts[1], len(team)),
		NonBinary: bucket(counts[2], len(team)),
	}
}

// Ages returns the age distribution of the deduplicated team.
func Ages(candidates []types.Candidate) AgeDistribution {
	team := Dedupe(candidates)
	counts := ageCounts(team)
	return AgeDistribution{
		Twenties: bucket(counts[0], len(team)),
		Thirties: bucket(counts[1], len(team)),
		Forties:  bucket(counts[2], len(team)),
		FiftyUp:  bucket(counts[3], len(team)),
	}
}

// Educations returns the education distribution of the deduplicated team.
func Educations(candidates []types.Candidate) EducationDistribution {
	team := Dedupe(candidates)
	counts := educationCounts(team)
	return EducationDistribution{
		Bachelors: bucket(counts[0], len(team)),
		Masters:   bucket(counts[1], len(team)),
		Other:     bucket(counts[2], len(team)),
	}
}

// PerformanceScore is min(95, 50 + diversity + min(25, 2 * average experience)),
// rounded to a whole number. An empty team scores 50.
func PerformanceScore(candidates []types.Candidate) int {
	return int(math.Round(score(Dedupe(candidates)).performance))
}

// teamScore holds the aggregates the what-if simulator compares.
type teamScore struct {
	diversityCount int
	avgExperience  float64
	performance    float64
}

// score expects an already deduplicated team.
func score(team []types.Candidate) teamScore {
	n := len(team)
	if n == 0 {
		return teamScore{performance: BaseScore}
	}

	genders, ages, edu := genderCounts(team), ageCounts(team), educationCounts(team)
	genderDiversity := bucketsAbove(genders[:], n, 0.2)
	ageDiversity := bucketsAbove(ages[:], n, 0.1)
	eduDiversity := bucketsAbove(edu[:], n, 0.1)

	sum := 0
	for _, c := range team {
		sum += c.Experience
	}
	avg := float64(sum) / float64(n)

	diversity := float64(genderDiversity*10 + ageDiversity*5 + eduDiversity*10)
	experience := math.Min(MaxExperienceScore, avg*2)
	return teamScore{
		diversityCount: genderDiversity + ageDiversity + eduDiversity,
		avgExperience:  avg,
		performance:    math.Min(MaxScore, BaseScore+diversity+experience),
	}
}

func genderCounts(team []types.Candidate) [3]int {
	var counts [3]int
	for _, c := range team {
		switch strings.ToLower(c.Gender) {
		case "male":
			counts[0]++
		case "female":
			counts[1]++
		default:
			counts[2]++
		}
	}
	return counts
}

func ageCounts(team []types.Candidate) [4]int {
	var counts [4]int
	for _, c := range team {
		switch {
		case c.Age < 30:
			counts[0]++
		case c.Age < 40:
			counts[1]++
		case c.Age < 50:
			counts[2]++
		default:
			counts[3]++
		}
	}
	return counts
}

func educationCounts(team []types.Candidate) [3]int {
	var counts [3]int
	for _, c := range team {
		e := strings.ToLower(c.Education)
		switch {
		case strings.Contains(e, "bachelor"):
			counts[0]++
		case strings.Contains(e, "master"):
			counts[1]++
		default:
			counts[2]++
		}
	}
	return counts
}

func bucketsAbove(counts []int, total int, floor float64) int {
	n := 0
	for _, c := range counts {
		if float64(c)/float64(total) > floor {
			n++
		}
	}
	return n
}

func bucket(count, total int) Bucket {
	b := Bucket{Count: count}
	if total > 0 {
		b.Percentage = int(math.Round(float64(count) / float64(total) * 100))
	}
	return b
}
