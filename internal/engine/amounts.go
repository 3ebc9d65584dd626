package engine

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"
)

// AmountPrecision is the number of decimal places consumed amounts are rounded to.
const AmountPrecision = 2

// Amounts maps a nutrient id to an amount in that nutrient's catalog unit.
type Amounts map[int64]float64

// Clone returns an independent copy.
func (a Amounts) Clone() Amounts {
	out := make(Amounts, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// NutrientIDs returns the keys in ascending order.
func (a Amounts) NutrientIDs() []int64 {
	ids := make([]int64, 0, len(a))
	for id := range a {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// finite reports whether v is neither NaN nor an infinity. decimal cannot represent
// those, so they are rejected before any arithmetic.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// RoundAmount rounds half away from zero to AmountPrecision places.
func RoundAmount(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(AmountPrecision).Float64()
	return f
}

// EncodeAmounts renders a snapshot as JSON. encoding/json sorts map keys, so the output
// for a given map is stable and a stored snapshot can be compared byte for byte.
func EncodeAmounts(a Amounts) (string, error) {
	if len(a) == 0 {
		return "{}", nil
	}
	ordered := make(map[string]json.Number, len(a))
	for id, v := range a {
		ordered[strconv.FormatInt(id, 10)] = json.Number(decimal.NewFromFloat(v).String())
	}
	b, err := json.Marshal(ordered)
	if err != nil {
		return "", fmt.Errorf("marshal nutrient amounts: %w", err)
	}
	return string(b), nil
}

// DecodeAmounts parses a snapshot written by EncodeAmounts.
func DecodeAmounts(value string) (Amounts, error) {
	if value == "" {
		return Amounts{}, nil
	}
	var raw map[string]json.Number
	if err := json.Unmarshal([]byte(value), &raw); err != nil {
		return nil, fmt.Errorf("nutrient amounts must be a JSON object: %w", err)
	}
	out := make(Amounts, len(raw))
	for k, n := range raw {
		id, err := strconv.ParseInt(k, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid nutrient id %q in snapshot", k)
		}
		v, err := n.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid amount for nutrient %d: %w", id, err)
		}
		out[id] = v
	}
	return out, nil
}

// decimalSum accumulates amounts exactly so the result does not depend on the order in
// which entries are added.
type decimalSum map[int64]decimal.Decimal

func (s decimalSum) add(a Amounts) {
	for id, v := range a {
		s[id] = s[id].Add(decimal.NewFromFloat(v))
	}
}

func (s decimalSum) amounts(seed []int64) Amounts {
	out := make(Amounts, len(s)+len(seed))
	for _, id := range seed {
		out[id] = 0
	}
	for id, d := range s {
		f, _ := d.Float64()
		out[id] = f
	}
	return out
}
