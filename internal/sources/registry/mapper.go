package registry

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/coastwatch-labs/catalog/internal/domain"
)

// SourceRegistry tags services discovered from the registry file.
const SourceRegistry = "registry"

// Mapper converts registry entries to domain.Service entities
type Mapper struct {
	now func() time.Time
}

// NewMapper creates a new mapper instance
func NewMapper() *Mapper {
	return &Mapper{now: time.Now}
}

// WithClock sets the time source stamped on mapped services.
func (m *Mapper) WithClock(now func() time.Time) *Mapper {
	m.now = now
	return m
}

// MapServices converts Config to []domain.Service. Entries without a valid
// absolute URL or a type are skipped; duplicate IDs are an error.
func (m *Mapper) MapServices(config Config) ([]*domain.Service, error) {
	var services []*domain.Service
	seen := make(map[string]string)
	now := m.now().UTC()

	for _, provider := range config.Providers {
		for _, props := range provider.Services {
			if !validURL(props.URL) {
				continue
			}
			serviceType := strings.ToUpper(strings.TrimSpace(props.Type))
			if serviceType == "" {
				continue
			}

			id := props.ID
			if id == "" {
				id = generateServiceID(serviceType, props.URL)
			}
			if previous, dup := seen[id]; dup {
				return nil, fmt.Errorf("duplicate service id %s (%s and %s)", id, previous, props.URL)
			}
			seen[id] = props.URL

			active := true
			if props.Active != nil {
				active = *props.Active
			}

			services = append(services, &domain.Service{
				ID:           id,
				URL:          props.URL,
				Name:         props.Name,
				ServiceType:  serviceType,
				DataProvider: provider.Name,
				Active:       active,
				Sources:      []string{SourceRegistry},
				CreatedAt:    now,
				UpdatedAt:    now,
			})
		}
	}

	if len(services) == 0 {
		return nil, fmt.Errorf("no valid services found in registry")
	}

	return services, nil
}

func validURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Scheme != "" && (u.Host != "" || u.Scheme == "file")
}

// generateServiceID creates a stable ID from type and URL, so the same
// endpoint keeps its ID even when renamed or moved to another provider.
func generateServiceID(serviceType, url string) string {
	hash := sha256.Sum256([]byte(serviceType + "|" + url))
	return hex.EncodeToString(hash[:])[:16]
}
