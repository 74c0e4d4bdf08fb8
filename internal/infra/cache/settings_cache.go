package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	domain "github.com/agendafacil/agenda-api/internal/domain/booking"
	"github.com/agendafacil/agenda-api/internal/models"
)

// CachedRepository decora o Repository com cache em Redis para os
// registros lidos em TODA validação de agendamento: configuração e
// perfil da empresa. O cache é best-effort — qualquer erro de Redis
// só é logado e a leitura cai no banco.
type CachedRepository struct {
	domain.Repository

	rdb *redis.Client
	ttl time.Duration
}

func NewCachedRepository(repo domain.Repository, rdb *redis.Client, ttl time.Duration) *CachedRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedRepository{
		Repository: repo,
		rdb:        rdb,
		ttl:        ttl,
	}
}

func settingsKey(companyID uint) string {
	return fmt.Sprintf("company:%d:settings", companyID)
}

func profileKey(companyID uint) string {
	return fmt.Sprintf("company:%d:profile", companyID)
}

func (c *CachedRepository) GetSettings(ctx context.Context, companyID uint) (*models.CompanySettings, error) {
	var cached models.CompanySettings
	if c.get(ctx, settingsKey(companyID), &cached) {
		return &cached, nil
	}

	settings, err := c.Repository.GetSettings(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if settings != nil {
		c.set(ctx, settingsKey(companyID), settings)
	}
	return settings, nil
}

func (c *CachedRepository) GetProfile(ctx context.Context, companyID uint) (*models.Profile, error) {
	var cached models.Profile
	if c.get(ctx, profileKey(companyID), &cached) {
		return &cached, nil
	}

	profile, err := c.Repository.GetProfile(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		c.set(ctx, profileKey(companyID), profile)
	}
	return profile, nil
}

// Invalidate derruba as entradas da empresa. Chamar após qualquer
// escrita em company_settings ou profiles.
func (c *CachedRepository) Invalidate(ctx context.Context, companyID uint) {
	if err := c.rdb.Del(ctx, settingsKey(companyID), profileKey(companyID)).Err(); err != nil {
		log.Printf("cache: invalidate company %d failed: %v", companyID, err)
	}
}

func (c *CachedRepository) get(ctx context.Context, key string, out any) bool {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		log.Printf("cache: get %s failed: %v", key, err)
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		log.Printf("cache: decode %s failed: %v", key, err)
		return false
	}
	return true
}

func (c *CachedRepository) set(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		log.Printf("cache: set %s failed: %v", key, err)
	}
}
