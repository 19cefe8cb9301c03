package service

import (
	"context"
	"strings"
	"time"

	"ugc-marketplace-backend/internal/cache"
	"ugc-marketplace-backend/internal/domain"
	"ugc-marketplace-backend/internal/logger"
	"ugc-marketplace-backend/internal/utils"
)

type enrichmentService struct {
	cnpj  CNPJProvider
	cep   CEPProvider
	ibge  MunicipalityProvider
	cache cache.Cache
	ttl   time.Duration
}

func NewEnrichmentService(cnpj CNPJProvider, cep CEPProvider, ibge MunicipalityProvider, c cache.Cache, ttl time.Duration) EnrichmentService {
	return &enrichmentService{cnpj: cnpj, cep: cep, ibge: ibge, cache: c, ttl: ttl}
}

func (s *enrichmentService) LookupCNPJ(ctx context.Context, cnpj string) (*domain.CNPJInfo, error) {
	if err := utils.ValidateCNPJ(cnpj); err != nil {
		return nil, validationError("%v", err)
	}
	digits := utils.OnlyDigits(cnpj)
	return cached(ctx, s, cache.Key("cnpj", digits), func() (*domain.CNPJInfo, error) {
		return s.cnpj.LookupCNPJ(ctx, digits)
	})
}

func (s *enrichmentService) LookupCEP(ctx context.Context, cep string) (*domain.Address, error) {
	if err := utils.ValidateCEP(cep); err != nil {
		return nil, validationError("%v", err)
	}
	digits := utils.OnlyDigits(cep)
	return cached(ctx, s, cache.Key("cep", digits), func() (*domain.Address, error) {
		return s.cep.LookupCEP(ctx, digits)
	})
}

func (s *enrichmentService) ListMunicipalities(ctx context.Context, uf string) ([]domain.Municipality, error) {
	uf = strings.ToUpper(strings.TrimSpace(uf))
	if err := utils.ValidateUF(uf); err != nil {
		return nil, validationError("%v", err)
	}
	list, err := cached(ctx, s, cache.Key("ibge", "municipios", uf), func() (*[]domain.Municipality, error) {
		m, err := s.ibge.ListMunicipalities(ctx, uf)
		return &m, err
	})
	if err != nil {
		return nil, err
	}
	return *list, nil
}

// cached reads key from the cache or calls fetch and stores its result. Cache errors degrade to a live call.
func cached[T any](ctx context.Context, s *enrichmentService, key string, fetch func() (*T, error)) (*T, error) {
	var hit T
	if found, err := s.cache.GetJSON(ctx, key, &hit); err != nil {
		logger.Warn("Enrichment cache read failed", "key", key, "error", err)
	} else if found {
		return &hit, nil
	}

	value, err := fetch()
	if err != nil {
		return nil, providerError(err)
	}
	if err := s.cache.SetJSON(ctx, key, value, s.ttl); err != nil {
		logger.Warn("Enrichment cache write failed", "key", key, "error", err)
	}
	return value, nil
}
