package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/example/wordcards/pkg/models"
)

type translateRequest struct {
	Text string `json:"text"`
	Lang string `json:"lang"`
}

type translateResponse struct {
	Result string `json:"result"`
}

type reviewRequest struct {
	Quality int `json:"quality"`
}

// WordBook fetches the raw entries of a word-book
func (c *Client) WordBook(ctx context.Context, name string) ([]models.Entry, error) {
	var entries []models.Entry
	if err := c.Request(ctx, http.MethodGet, "/wordbook/"+url.PathEscape(name), nil, &entries); err != nil {
		return nil, fmt.Errorf("get word book (name: %s): %w", name, err)
	}
	return entries, nil
}

// WordBooks lists the names of the available word-books
func (c *Client) WordBooks(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.Request(ctx, http.MethodGet, "/wordbooks", nil, &names); err != nil {
		return nil, fmt.Errorf("list word books: %w", err)
	}
	return names, nil
}

// Search finds entries whose spelling or translation contains q
func (c *Client) Search(ctx context.Context, q string) ([]models.Entry, error) {
	var entries []models.Entry
	path := "/search?" + url.Values{"q": {q}}.Encode()
	if err := c.Request(ctx, http.MethodGet, path, nil, &entries); err != nil {
		return nil, fmt.Errorf("search words (query: %s): %w", q, err)
	}
	return entries, nil
}

// Favorites lists the account's favorites, optionally filtered by q
func (c *Client) Favorites(ctx context.Context, q string) ([]models.Favorite, error) {
	path := "/favorites"
	if q = strings.TrimSpace(q); q != "" {
		path += "?" + url.Values{"q": {q}}.Encode()
	}

	var favorites []models.Favorite
	if err := c.Request(ctx, http.MethodGet, path, nil, &favorites); err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return favorites, nil
}

func (c *Client) AddFavorite(ctx context.Context, id int64) error {
	if err := c.Request(ctx, http.MethodPost, favoritePath(id), nil, nil); err != nil {
		return fmt.Errorf("add favorite (id: %d): %w", id, err)
	}
	return nil
}

func (c *Client) RemoveFavorite(ctx context.Context, id int64) error {
	if err := c.Request(ctx, http.MethodDelete, favoritePath(id), nil, nil); err != nil {
		return fmt.Errorf("remove favorite (id: %d): %w", id, err)
	}
	return nil
}

func favoritePath(id int64) string {
	return "/favorites/" + strconv.FormatInt(id, 10)
}

// Translate translates text into lang
func (c *Client) Translate(ctx context.Context, text, lang string) (string, error) {
	var resp translateResponse
	if err := c.Request(ctx, http.MethodPost, "/translate", translateRequest{Text: text, Lang: lang}, &resp); err != nil {
		return "", fmt.Errorf("translate text (lang: %s): %w", lang, err)
	}
	return strings.TrimSpace(resp.Result), nil
}

// Review reports a study answer for a word
func (c *Client) Review(ctx context.Context, id int64, outcome models.Outcome) error {
	body := reviewRequest{Quality: outcome.ReviewQuality()}
	if err := c.Request(ctx, http.MethodPost, "/review/"+strconv.FormatInt(id, 10), body, nil); err != nil {
		return fmt.Errorf("post review (id: %d): %w", id, err)
	}
	return nil
}

// Overview returns the review summary; a positive limit caps the due count
// to what is left of today's allowance.
func (c *Client) Overview(ctx context.Context, limit int) (models.Overview, error) {
	path := "/stats/overview"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	var overview models.Overview
	if err := c.Request(ctx, http.MethodGet, path, nil, &overview); err != nil {
		return models.Overview{}, fmt.Errorf("get stats overview: %w", err)
	}
	return overview, nil
}

// ExportStats returns the account's review log as CSV
func (c *Client) ExportStats(ctx context.Context) (string, error) {
	var csv string
	if err := c.Request(ctx, http.MethodGet, "/stats/export", nil, &csv); err != nil {
		return "", fmt.Errorf("export stats: %w", err)
	}
	return csv, nil
}
