package engine

import (
	"fmt"
	"time"

	"github.com/saadjs/nutrilog/internal/model"
)

type ServingMode string

const (
	ServingModeAgeBand ServingMode = "age_band"
	ServingModeGrams   ServingMode = "grams"
	ServingModePortion ServingMode = "portion"
)

// DefaultPortions is used when a caller asks for the portion path without a multiplier.
const DefaultPortions = 1.0

// ServingTarget is either a weight in grams or a multiplier of the whole recipe. The two
// are built by separate constructors and never inferred from a bare number.
type ServingTarget struct {
	mode       ServingMode
	grams      float64
	multiplier float64
}

// GramsTarget serves a fixed weight of the dish. mode records where the weight came from
// (an age band rule or an explicit weighing).
func GramsTarget(grams float64, mode ServingMode) (ServingTarget, error) {
	if !finite(grams) || grams <= 0 {
		return ServingTarget{}, fmt.Errorf("serving of %.2f g: %w", grams, ErrInvalidGrams)
	}
	if mode == "" {
		mode = ServingModeGrams
	}
	if mode == ServingModePortion {
		return ServingTarget{}, fmt.Errorf("%w: portion mode needs a multiplier", ErrInvalidInput)
	}
	return ServingTarget{mode: mode, grams: grams}, nil
}

// PortionTarget applies multiplier directly to the base recipe.
func PortionTarget(multiplier float64) (ServingTarget, error) {
	if !finite(multiplier) || multiplier <= 0 {
		return ServingTarget{}, fmt.Errorf("portions %.2f: %w", multiplier, ErrInvalidPortion)
	}
	return ServingTarget{mode: ServingModePortion, multiplier: multiplier}, nil
}

func (t ServingTarget) Mode() ServingMode { return t.mode }

func (t ServingTarget) IsPortion() bool { return t.mode == ServingModePortion }

func (t ServingTarget) Grams() float64 { return t.grams }

func (t ServingTarget) Multiplier() float64 { return t.multiplier }

// FindAgeBand returns the band with MinMonths <= age <= MaxMonths. Both ends are
// inclusive. Gaps in the configured bands surface as ErrNoAgeBandFound.
func FindAgeBand(bands []model.AgeBand, ageMonths int) (model.AgeBand, error) {
	if ageMonths < 0 {
		return model.AgeBand{}, fmt.Errorf("age %d months: %w", ageMonths, ErrNoAgeBandFound)
	}
	for _, b := range bands {
		if b.MinMonths <= ageMonths && ageMonths <= b.MaxMonths {
			return b, nil
		}
	}
	return model.AgeBand{}, fmt.Errorf("age %d months: %w", ageMonths, ErrNoAgeBandFound)
}

// BandIssue describes a gap or overlap between two adjacent age bands.
type BandIssue struct {
	Kind      string `json:"kind"`
	FromMonth int    `json:"from_month"`
	ToMonth   int    `json:"to_month"`
}

// CheckAgeBands reports gaps and overlaps in bands sorted by MinMonths. Each band is
// compared with the furthest month covered so far, so a band nested inside an earlier
// one is an overlap and never opens a gap.
func CheckAgeBands(bands []model.AgeBand) []BandIssue {
	issues := make([]BandIssue, 0)
	if len(bands) == 0 {
		return issues
	}
	covered := bands[0].MaxMonths
	for _, cur := range bands[1:] {
		switch {
		case cur.MinMonths <= covered:
			issues = append(issues, BandIssue{Kind: "overlap", FromMonth: cur.MinMonths, ToMonth: min(cur.MaxMonths, covered)})
		case cur.MinMonths > covered+1:
			issues = append(issues, BandIssue{Kind: "gap", FromMonth: covered + 1, ToMonth: cur.MinMonths - 1})
		}
		covered = max(covered, cur.MaxMonths)
	}
	return issues
}

// AgeInMonths counts the full months between birth and at, comparing calendar dates in
// birth's location. It returns -1 when at falls before the birth date.
func AgeInMonths(birth, at time.Time) int {
	by, bm, bd := birth.Date()
	ay, am, ad := at.In(birth.Location()).Date()
	if ay < by || (ay == by && (am < bm || (am == bm && ad < bd))) {
		return -1
	}
	months := (ay-by)*12 + int(am-bm)
	if ad < bd {
		months--
	}
	return months
}
