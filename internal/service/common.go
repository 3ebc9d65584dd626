package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/saadjs/nutrilog/internal/engine"
)

func validateNonNegativeFloat(name string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return fmt.Errorf("%s must be a finite number >= 0: %w", name, engine.ErrInvalidAmount)
	}
	return nil
}

func requireName(kind, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: %s name is required", engine.ErrInvalidInput, kind)
	}
	return name, nil
}

func normalizeName(name string) string {
	return strings.TrimSpace(strings.ToLower(name))
}

func parseIDLoose(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("not numeric")
	}
	return id, nil
}
