package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"cocolabs/internal/domain"
	applog "cocolabs/internal/log"
	"cocolabs/internal/repos"
	"cocolabs/internal/telemetry"
)

const (
	recommendationLimit         = 6
	maxGeneratedPerUser         = 5
	DefaultRecommendationMaxAge = 7 * 24 * time.Hour
)

// TextGenerator completes a prompt. *ai.Client satisfies it.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type RecommendationService struct {
	Recs     *repos.RecommendationRepo
	Prods    *repos.ProductRepo
	Orders   *repos.OrderRepo
	Profiles *repos.ProfileRepo
	AI       TextGenerator
	MaxAge   time.Duration
	Now      func() time.Time

	group singleflight.Group
}

func NewRecommendationService(recs *repos.RecommendationRepo, prods *repos.ProductRepo, orders *repos.OrderRepo,
	profiles *repos.ProfileRepo, gen TextGenerator, maxAge time.Duration) *RecommendationService {
	if maxAge <= 0 {
		maxAge = DefaultRecommendationMaxAge
	}
	return &RecommendationService{
		Recs: recs, Prods: prods, Orders: orders, Profiles: profiles,
		AI: gen, MaxAge: maxAge, Now: time.Now,
	}
}

// ForUser serves the user's recommendations, regenerating them when the cache
// is empty or any entry has outlived MaxAge. Generation failures fall back to
// the stale cache, or to a fixed list when there is no cache.
func (s *RecommendationService) ForUser(ctx context.Context, userID string) ([]domain.RecommendedProduct, error) {
	// the refresh is shared by every collapsed caller and outlives any one of them
	shared := context.WithoutCancel(ctx)
	v, err, _ := s.group.Do(userID, func() (any, error) {
		return s.resolve(shared, userID)
	})
	if err != nil {
		return nil, err
	}
	recs := v.([]domain.Recommendation)
	return s.withDetails(ctx, recs)
}

func (s *RecommendationService) resolve(ctx context.Context, userID string) ([]domain.Recommendation, error) {
	cached, err := s.Recs.Top(ctx, userID, recommendationLimit)
	if err != nil {
		return nil, fmt.Errorf("read recommendations: %w", err)
	}
	if !s.stale(cached) {
		telemetry.RecommendationRefresh.WithLabelValues(telemetry.OutcomeCached).Inc()
		return cached, nil
	}

	fresh, err := s.regenerate(ctx, userID)
	if err == nil {
		telemetry.RecommendationRefresh.WithLabelValues(telemetry.OutcomeGenerated).Inc()
		return fresh, nil
	}
	applog.Error(nil, "recommendations.generate_failed", err, map[string]any{"user_id": userID, "cached": len(cached)})
	if len(cached) == 0 {
		telemetry.RecommendationRefresh.WithLabelValues(telemetry.OutcomeFallback).Inc()
		return fallbackRecommendations(userID, s.Now()), nil
	}
	telemetry.RecommendationRefresh.WithLabelValues(telemetry.OutcomeStale).Inc()
	return cached, nil
}

func (s *RecommendationService) stale(recs []domain.Recommendation) bool {
	if len(recs) == 0 {
		return true
	}
	cutoff := s.Now().Add(-s.MaxAge)
	for _, r := range recs {
		if r.UpdatedAt.Before(cutoff) {
			return true
		}
	}
	return false
}

func (s *RecommendationService) regenerate(ctx context.Context, userID string) ([]domain.Recommendation, error) {
	if s.AI == nil {
		return nil, errors.New("no text generator configured")
	}
	catalog, err := s.Prods.Search(ctx, "", "", 100, 0)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	summary, err := s.summarize(ctx, userID)
	if err != nil {
		return nil, err
	}
	text, err := s.AI.Generate(ctx, buildPrompt(summary, catalog))
	if err != nil {
		return nil, err
	}

	known := make(map[int64]bool, len(catalog))
	for _, p := range catalog {
		known[p.ID] = true
	}
	parsed, err := parseRecommendations(text, known)
	if err != nil {
		return nil, err
	}

	now := s.Now().UTC()
	recs := make([]domain.Recommendation, 0, len(parsed))
	for _, p := range parsed {
		recs = append(recs, domain.Recommendation{
			ID: uuid.NewString(), UserID: userID, ProductID: p.ProductID,
			Score: p.Score, Reason: p.Reason, CreatedAt: now, UpdatedAt: now,
		})
	}
	if err := s.Recs.Replace(ctx, userID, recs); err != nil {
		return nil, fmt.Errorf("replace recommendations: %w", err)
	}
	return s.Recs.Top(ctx, userID, recommendationLimit)
}

type userSummary struct {
	Purchased []int64
	Viewed    []int64
	Location  string
}

func (s *RecommendationService) summarize(ctx context.Context, userID string) (userSummary, error) {
	purchased, err := s.Orders.PurchasedProductIDs(ctx, userID)
	if err != nil {
		return userSummary{}, fmt.Errorf("purchase history: %w", err)
	}
	viewed, err := s.Prods.ViewedProductIDs(ctx, userID)
	if err != nil {
		return userSummary{}, fmt.Errorf("view history: %w", err)
	}
	loc := "Unknown"
	p, err := s.Profiles.Get(ctx, userID)
	switch {
	case err == nil:
		loc = p.Location()
	case !repos.IsNotFound(err):
		return userSummary{}, fmt.Errorf("profile: %w", err)
	}
	return userSummary{Purchased: purchased, Viewed: viewed, Location: loc}, nil
}

func joinIDs(ids []int64) string {
	if len(ids) == 0 {
		return "None yet"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ", ")
}

type promptProduct struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Description string   `json:"description"`
}

func buildPrompt(u userSummary, catalog []domain.Product) string {
	products := make([]promptProduct, 0, len(catalog))
	for _, p := range catalog {
		products = append(products, promptProduct{p.ID, p.Name, p.Category, p.Tags, p.Description})
	}
	data, _ := json.MarshalIndent(products, "", "  ")

	var b strings.Builder
	b.WriteString("You are a product recommendation AI for an engineering products company.\n\n")
	b.WriteString("User profile:\n")
	fmt.Fprintf(&b, "- Purchased products: %s\n", joinIDs(u.Purchased))
	fmt.Fprintf(&b, "- Viewed products: %s\n", joinIDs(u.Viewed))
	fmt.Fprintf(&b, "- Location: %s\n\n", u.Location)
	b.WriteString("Available products:\n")
	b.Write(data)
	b.WriteString("\n\nBased on the user's profile, recommend 3-5 products from the available products list.\n")
	b.WriteString("For each recommendation, provide:\n")
	b.WriteString("1. The product ID\n")
	b.WriteString("2. A score between 0 and 1 indicating how well it matches the user\n")
	b.WriteString("3. A brief, personalized reason why this product would be good for this specific user\n\n")
	b.WriteString("Respond with JSON only, in this shape:\n")
	b.WriteString(`{"recommendations": [{"productId": 1, "score": 0.95, "reason": "..."}]}`)
	b.WriteString("\n")
	return b.String()
}

type generated struct {
	ProductID int64   `json:"productId"`
	Score     float64 `json:"score"`
	Reason    string  `json:"reason"`
}

// parseRecommendations decodes the model's reply, tolerating a fenced code
// block around the JSON. Entries for unknown products, scores outside [0,1]
// and repeats are dropped; at least one usable entry is required.
func parseRecommendations(text string, known map[int64]bool) ([]generated, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimPrefix(text, "json")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	if i, j := strings.Index(text, "{"), strings.LastIndex(text, "}"); i >= 0 && j > i {
		text = text[i : j+1]
	}
	var body struct {
		Recommendations []generated `json:"recommendations"`
	}
	if err := json.Unmarshal([]byte(text), &body); err != nil {
		return nil, fmt.Errorf("parse recommendations: %w", err)
	}
	seen := map[int64]bool{}
	out := make([]generated, 0, maxGeneratedPerUser)
	for _, g := range body.Recommendations {
		if g.ProductID < 1 || !known[g.ProductID] || seen[g.ProductID] || g.Score < 0 || g.Score > 1 {
			continue
		}
		seen[g.ProductID] = true
		g.Reason = strings.TrimSpace(g.Reason)
		out = append(out, g)
		if len(out) == maxGeneratedPerUser {
			break
		}
	}
	if len(out) == 0 {
		return nil, errors.New("parse recommendations: no usable entries")
	}
	return out, nil
}

func fallbackRecommendations(userID string, now time.Time) []domain.Recommendation {
	mk := func(n int, pid int64, score float64, reason string) domain.Recommendation {
		return domain.Recommendation{
			ID: fmt.Sprintf("fallback-%d", n), UserID: userID, ProductID: pid,
			Score: score, Reason: reason, CreatedAt: now, UpdatedAt: now,
		}
	}
	return []domain.Recommendation{
		mk(1, 1, 0.9, "This is one of our most popular products"),
		mk(2, 2, 0.85, "Many customers find this product useful"),
		mk(3, 3, 0.8, "This product has excellent reviews"),
	}
}

func (s *RecommendationService) withDetails(ctx context.Context, recs []domain.Recommendation) ([]domain.RecommendedProduct, error) {
	ids := make([]int64, 0, len(recs))
	for _, r := range recs {
		ids = append(ids, r.ProductID)
	}
	products, err := s.Prods.ByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]domain.RecommendedProduct, 0, len(recs))
	for _, r := range recs {
		p, ok := products[r.ProductID]
		if !ok {
			p = domain.PlaceholderProduct(r.ProductID)
		}
		out = append(out, domain.RecommendedProduct{
			ID: r.ID, ProductID: r.ProductID, Name: p.Name, Price: p.Price,
			Image: p.Image, Description: p.Description, Score: r.Score, Reason: r.Reason,
		})
	}
	return out, nil
}
