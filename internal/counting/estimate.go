// Package counting estimates how many exercises an exercise sheet contains from its extracted text.
package counting

import (
	"errors"
	"math"
	"regexp"
	"strconv"
)

// Tier identifies which heuristic produced an estimate.
type Tier string

const (
	// TierEmpty is used when there is no text at all.
	TierEmpty Tier = "empty"
	// TierNumbered means at least one "Exercice N" reference was found.
	TierNumbered Tier = "numbered"
	// TierOccurrences means the estimate is the bare-word occurrence count.
	TierOccurrences Tier = "occurrences"
	// TierHalved means the occurrence count was halved because corrections are bundled in.
	TierHalved Tier = "halved"
	// TierNone means the word never appears.
	TierNone Tier = "none"
)

var (
	// "Exercice 12", "exercises n° 3", "EXERCICE no4", "Exercice n º 7".
	// \s is ASCII-only in RE2, \p{Zs} adds the no-break spaces common in French typesetting.
	numberedPattern = regexp.MustCompile(`(?i)\bexerci[cs]es?[\s\p{Zs}]*(?:n[\s\p{Zs}]*[o°º][\s\p{Zs}]*)?(\d+)\b`)
	wordPattern     = regexp.MustCompile(`(?i)\bexerci[cs]es?\b`)
	// singular only, "Corrections" does not trigger halving
	correctionPattern = regexp.MustCompile(`(?i)\bcorrection\b`)
)

// Breakdown records the intermediate values behind an estimate.
type Breakdown struct {
	Tier          Tier
	Estimate      int
	Numbers       []int
	Occurrences   int
	HasCorrection bool
}

// Estimate returns the estimated number of exercises in text. It never returns a negative value.
//
// Sheets are numbered sequentially, so the highest "Exercice N" seen wins. This is a heuristic:
// it has not been checked against hand-counted sheets and a stray "exercice 2020" will inflate it.
func Estimate(text string) int {
	return Explain(text).Estimate
}

// Explain runs the same heuristic as Estimate and reports which tier produced the result.
func Explain(text string) Breakdown {
	if text == "" {
		return Breakdown{Tier: TierEmpty}
	}

	numbers := numberedReferences(text)
	if len(numbers) > 0 {
		highest := numbers[0]
		for _, n := range numbers[1:] {
			if n > highest {
				highest = n
			}
		}
		return Breakdown{Tier: TierNumbered, Estimate: highest, Numbers: numbers}
	}

	occurrences := len(wordPattern.FindAllStringIndex(text, -1))
	if occurrences == 0 {
		return Breakdown{Tier: TierNone}
	}

	if correctionPattern.MatchString(text) {
		// statement and solution each mention every exercise
		return Breakdown{
			Tier:          TierHalved,
			Estimate:      max(1, occurrences/2),
			Occurrences:   occurrences,
			HasCorrection: true,
		}
	}

	return Breakdown{Tier: TierOccurrences, Estimate: occurrences, Occurrences: occurrences}
}

func numberedReferences(text string) []int {
	matches := numberedPattern.FindAllStringSubmatch(text, -1)
	numbers := make([]int, 0, len(matches))
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if errors.Is(err, strconv.ErrRange) {
			n = math.MaxInt
		} else if err != nil {
			continue
		}
		numbers = append(numbers, n)
	}
	return numbers
}
