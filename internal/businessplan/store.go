package businessplan

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"agency-backend/internal/cache"
	"agency-backend/internal/database"
	"agency-backend/internal/models"
	"agency-backend/internal/plan"

	"gorm.io/gorm"
)

// Store loads and saves plan documents and caches their projections.
type Store struct {
	cache cache.Cache
	ttl   time.Duration
}

func NewStore(c cache.Cache, ttl time.Duration) *Store {
	return &Store{cache: c, ttl: ttl}
}

func EncodeDocument(p *plan.Plan) (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode plan: %w", err)
	}
	return string(b), nil
}

// DecodeDocument reads a stored document. The variant always comes from the
// record, never from the JSON, and a missing time frame gets the default.
func DecodeDocument(doc string, v plan.Variant) (*plan.Plan, error) {
	p := plan.New(v)
	if doc == "" || doc == "null" {
		return p, nil
	}
	if err := json.Unmarshal([]byte(doc), p); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	p.Variant = v
	if p.Aggregate.TimeFrame == "" {
		p.Aggregate.TimeFrame = v.DefaultTimeFrame()
	}
	if p.Agents == nil {
		p.Agents = []plan.AgentFinancialInput{}
	}
	return p, nil
}

func encodeProjection(proj plan.Projection) (string, error) {
	b, err := json.Marshal(proj)
	if err != nil {
		return "", fmt.Errorf("encode projection: %w", err)
	}
	return string(b), nil
}

func decodeProjection(raw string) (plan.Projection, error) {
	var proj plan.Projection
	if err := json.Unmarshal([]byte(raw), &proj); err != nil {
		return plan.Projection{}, fmt.Errorf("decode projection: %w", err)
	}
	return proj, nil
}

// Load fetches the owner's plan. A plan that was never saved comes back
// empty with a zero record ID.
func (s *Store) Load(ownerID uint, v plan.Variant) (*models.BusinessPlan, *plan.Plan, error) {
	var rec models.BusinessPlan
	err := database.DB.Where("owner_id = ? AND variant = ?", ownerID, string(v)).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.BusinessPlan{OwnerID: ownerID, Variant: string(v)}, plan.New(v), nil
	}
	if err != nil {
		return nil, nil, err
	}
	p, err := DecodeDocument(rec.Document, v)
	if err != nil {
		return nil, nil, err
	}
	return &rec, p, nil
}

// Save replaces the stored document with p. Concurrent writers are not
// reconciled; the last save wins.
func (s *Store) Save(ctx context.Context, rec *models.BusinessPlan, p *plan.Plan) error {
	doc, err := EncodeDocument(p)
	if err != nil {
		return err
	}
	prev := rec.Document
	rec.Document = doc
	rec.Revision++
	if err := database.DB.WithContext(ctx).Save(rec).Error; err != nil {
		return fmt.Errorf("save plan: %w", err)
	}
	if prev != "" && prev != doc {
		key := cacheKey(plan.Variant(rec.Variant), prev)
		if err := s.cache.Delete(ctx, key); err != nil {
			log.Printf("[WARN] projection cache delete %s: %v", key, err)
		}
	}
	return nil
}

// cacheKey addresses a projection by the content of the document it was
// derived from, so two saves that land on the same revision never share one.
func cacheKey(v plan.Variant, doc string) string {
	sum := sha256.Sum256([]byte(doc))
	return fmt.Sprintf("projection:%s:%s", v, hex.EncodeToString(sum[:]))
}

// Projection returns the derived view of p, computing it on a cache miss.
// Cache failures fall back to computing.
func (s *Store) Projection(ctx context.Context, rec *models.BusinessPlan, p *plan.Plan) (plan.Projection, error) {
	doc, err := EncodeDocument(p)
	if err != nil {
		return plan.Projection{}, err
	}
	key := cacheKey(plan.Variant(rec.Variant), doc)
	if raw, err := s.cache.Get(ctx, key); err == nil {
		if proj, err := decodeProjection(string(raw)); err == nil {
			return proj, nil
		}
	} else if !errors.Is(err, cache.ErrMiss) {
		log.Printf("[WARN] projection cache get %s: %v", key, err)
	}

	proj, err := p.Project()
	if err != nil {
		return plan.Projection{}, err
	}

	if raw, err := encodeProjection(proj); err == nil {
		if err := s.cache.Set(ctx, key, []byte(raw), s.ttl); err != nil {
			log.Printf("[WARN] projection cache set %s: %v", key, err)
		}
	}
	return proj, nil
}
