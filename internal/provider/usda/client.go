// Package usda fetches per-100 g nutrient values from USDA FoodData Central.
package usda

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const DefaultBaseURL = "https://api.nal.usda.gov"

// Food is a FoodData Central item. Nutrient amounts are per 100 g of the food.
type Food struct {
	FDCID       int64      `json:"fdc_id"`
	Description string     `json:"description"`
	DataType    string     `json:"data_type"`
	Nutrients   []Nutrient `json:"nutrients"`
}

type Nutrient struct {
	Number       string  `json:"number"`
	Name         string  `json:"name"`
	Unit         string  `json:"unit"`
	AmountPer100 float64 `json:"amount_per_100"`
}

type Client struct {
	http   *resty.Client
	apiKey string
	logger *zap.Logger
}

func NewClient(baseURL, apiKey string, logger *zap.Logger) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(12*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(3*time.Second).
		SetHeader("Accept", "application/json")
	return &Client{http: client, apiKey: strings.TrimSpace(apiKey), logger: logger}
}

// GetFood fetches one food by FDC id.
func (c *Client) GetFood(ctx context.Context, fdcID int64) (Food, error) {
	if c.apiKey == "" {
		return Food{}, fmt.Errorf("missing USDA API key")
	}
	if fdcID <= 0 {
		return Food{}, fmt.Errorf("fdc id must be > 0")
	}

	var parsed foodResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("api_key", c.apiKey).
		SetPathParam("id", fmt.Sprintf("%d", fdcID)).
		SetResult(&parsed).
		Get("/fdc/v1/food/{id}")
	if err != nil {
		return Food{}, fmt.Errorf("execute USDA request: %w", err)
	}
	if resp.IsError() {
		c.logger.Warn("USDA request failed",
			zap.Int64("fdc_id", fdcID),
			zap.Int("status_code", resp.StatusCode()),
		)
		if resp.StatusCode() == 404 {
			return Food{}, fmt.Errorf("no USDA food with fdc id %d", fdcID)
		}
		return Food{}, fmt.Errorf("USDA request failed with status %d", resp.StatusCode())
	}

	out := Food{
		FDCID:       parsed.FDCID,
		Description: strings.TrimSpace(parsed.Description),
		DataType:    strings.TrimSpace(parsed.DataType),
		Nutrients:   make([]Nutrient, 0, len(parsed.FoodNutrients)),
	}
	for _, n := range parsed.FoodNutrients {
		item := n.normalize()
		if item.Name == "" || item.Unit == "" {
			continue
		}
		out.Nutrients = append(out.Nutrients, item)
	}
	c.logger.Debug("fetched USDA food",
		zap.Int64("fdc_id", out.FDCID),
		zap.Int("nutrient_count", len(out.Nutrients)),
	)
	return out, nil
}

type foodResponse struct {
	FDCID         int64          `json:"fdcId"`
	Description   string         `json:"description"`
	DataType      string         `json:"dataType"`
	FoodNutrients []foodNutrient `json:"foodNutrients"`
}

// foodNutrient accepts both the nested shape of /food/{id} and the flat shape of search
// results.
type foodNutrient struct {
	Nutrient *struct {
		Number   string `json:"number"`
		Name     string `json:"name"`
		UnitName string `json:"unitName"`
	} `json:"nutrient"`
	Amount float64 `json:"amount"`

	NutrientNumber string  `json:"nutrientNumber"`
	NutrientName   string  `json:"nutrientName"`
	UnitName       string  `json:"unitName"`
	Value          float64 `json:"value"`
}

func (n foodNutrient) normalize() Nutrient {
	if n.Nutrient != nil {
		return Nutrient{
			Number:       strings.TrimSpace(n.Nutrient.Number),
			Name:         strings.TrimSpace(n.Nutrient.Name),
			Unit:         strings.TrimSpace(n.Nutrient.UnitName),
			AmountPer100: n.Amount,
		}
	}
	return Nutrient{
		Number:       strings.TrimSpace(n.NutrientNumber),
		Name:         strings.TrimSpace(n.NutrientName),
		Unit:         strings.TrimSpace(n.UnitName),
		AmountPer100: n.Value,
	}
}

var aliases = map[string]string{
	"total lipid (fat)":              "fat",
	"carbohydrate, by difference":    "carbohydrate",
	"fiber, total dietary":           "fiber",
	"sugars, total including nlea":   "sugar",
	"sugars, total":                  "sugar",
	"vitamin c, total ascorbic acid": "vitamin c",
	"vitamin a, rae":                 "vitamin a",
	"folate, total":                  "folate",
	"vitamin d (d2 + d3)":            "vitamin d",
}

// CanonicalName maps a USDA nutrient name onto the short name a catalog would use:
// "Iron, Fe" becomes "iron" and "Total lipid (fat)" becomes "fat".
func CanonicalName(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := aliases[lower]; ok {
		return alias
	}
	if i := strings.Index(lower, ","); i > 0 {
		lower = strings.TrimSpace(lower[:i])
	}
	return lower
}
