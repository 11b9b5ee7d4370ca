// Package mealdb is a small client for TheMealDB ingredient search.
package mealdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultIngredient = "Chicken"

// Meal is one search hit
type Meal struct {
	ID        string `json:"idMeal"`
	Name      string `json:"strMeal"`
	Thumbnail string `json:"strMealThumb"`
}

// RecipeURL is the public page of the meal
func (m Meal) RecipeURL() string {
	return "https://www.themealdb.com/meal.php?c=" + url.QueryEscape(m.ID)
}

type filterResponse struct {
	// null when nothing matches
	Meals []Meal `json:"meals"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// ByIngredient lists meals that use ingredient
func (c *Client) ByIngredient(ctx context.Context, ingredient string) ([]Meal, error) {
	if strings.TrimSpace(ingredient) == "" {
		ingredient = DefaultIngredient
	}

	endpoint := c.baseURL + "/filter.php?i=" + url.QueryEscape(ingredient)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch meals: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch meals: unexpected status %d", resp.StatusCode)
	}

	var body filterResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode meals: %w", err)
	}
	if body.Meals == nil {
		return []Meal{}, nil
	}
	return body.Meals, nil
}
