package harvest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/coastwatch-labs/catalog/internal/cdm"
	"github.com/coastwatch-labs/catalog/internal/cf"
	"github.com/coastwatch-labs/catalog/internal/compliance"
	"github.com/coastwatch-labs/catalog/internal/domain"
	"github.com/coastwatch-labs/catalog/internal/geometry"
	"github.com/coastwatch-labs/catalog/internal/logger"
)

const (
	MsgNoTitle    = "Could not get dataset name.  No global attribute named 'title'."
	MsgNoSummary  = "Could not get dataset description.  No global attribute named 'summary'."
	MsgNoKeywords = "Could not get dataset keywords.  No global attribute named 'keywords' or was not comma seperated list."

	MetadataTypeNcML = "ncml"
)

// DAPHarvester harvests one OPeNDAP service: one service, one dataset.
type DAPHarvester struct {
	opener   cdm.Opener
	resolver *geometry.Resolver
	scorer   *compliance.Scorer
	store    Store
	logger   logger.Logger
	now      func() time.Time
}

func NewDAPHarvester(
	opener cdm.Opener,
	resolver *geometry.Resolver,
	scorer *compliance.Scorer,
	store Store,
	log logger.Logger,
) *DAPHarvester {
	return &DAPHarvester{
		opener:   opener,
		resolver: resolver,
		scorer:   scorer,
		store:    store,
		logger:   log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Harvest opens the dataset, builds the service entry and merges it. Only
// a failing open (or a failing catalog write) yields StatusNotHarvested.
func (h *DAPHarvester) Harvest(ctx context.Context, svc *domain.Service) (domain.Status, error) {
	log := h.logger.With(logger.String("service_id", svc.ID), logger.String("url", svc.URL))

	ds, err := h.opener.Open(ctx, svc.URL)
	if err != nil {
		log.Error("could not open DAP dataset", logger.Error(err))
		return domain.StatusNotHarvested, fmt.Errorf("could not open DAP dataset from %q: %w", svc.URL, err)
	}
	defer func() {
		if err := ds.Close(); err != nil {
			log.Warn("failed to close dataset", logger.Error(err))
		}
	}()

	entry := h.buildEntry(ctx, svc, ds, log)

	// For DAP the dataset UID is the service URL.
	uid := svc.URL
	if _, err := h.store.UpdateDataset(ctx, uid, func(current *domain.Dataset) (*domain.Dataset, error) {
		return domain.MergeServiceEntry(current, uid, entry, h.now()), nil
	}); err != nil {
		log.Error("failed to save dataset", logger.Error(err))
		return domain.StatusNotHarvested, fmt.Errorf("failed to save dataset %s: %w", uid, err)
	}

	h.saveCompliance(ctx, svc, uid, ds, log)

	log.Info("dataset harvested",
		logger.String("asset_type", entry.AssetType),
		logger.Int("variables", len(entry.Variables)),
		logger.Bool("geometry", entry.Geometry != nil),
		logger.Int("messages", len(entry.Messages)))

	return domain.StatusHarvested, nil
}

func (h *DAPHarvester) buildEntry(ctx context.Context, svc *domain.Service, ds cdm.Dataset, log logger.Logger) domain.ServiceEntry {
	var messages []string
	globals := ds.GlobalAttributes()

	tr, err := cf.TimeRange(ctx, ds)
	if err != nil {
		log.Debug("time variable unusable", logger.Error(err))
	}

	var name, description *string
	if v, ok := globals.Lookup("title"); ok {
		name = stringPtr(v.String())
	} else {
		messages = append(messages, MsgNoTitle)
	}
	if v, ok := globals.Lookup("summary"); ok {
		description = stringPtr(v.String())
	} else {
		messages = append(messages, MsgNoSummary)
	}

	keywords := []string{}
	if v, ok := globals.Lookup("keywords"); ok {
		keywords = SplitKeywords(v.String())
	} else {
		messages = append(messages, MsgNoKeywords)
	}

	classification := cf.Classify(ds)
	feature := cf.DetectFeatureType(ds)

	res := h.resolver.Resolve(ctx, ds, feature, classification)
	messages = append(messages, res.Messages...)
	messages = append(messages, classification.Messages...)
	if res.Geometry != nil {
		log.Debug("geometry resolved",
			logger.String("feature", feature.String()),
			logger.String("variable", res.Variable),
			logger.String("strategy", res.Strategy))
	}

	ncml, err := ds.StructuralMetadata(ctx)
	if err != nil {
		log.Warn("failed to serialize structural metadata", logger.Error(err))
	}

	return domain.ServiceEntry{
		ServiceID:     svc.ID,
		ServiceType:   svc.ServiceType,
		DataProvider:  svc.DataProvider,
		Name:          name,
		Description:   description,
		MetadataType:  MetadataTypeNcML,
		MetadataValue: ncml,
		TimeMin:       tr.Min,
		TimeMax:       tr.Max,
		Messages:      messages,
		Keywords:      keywords,
		Variables:     classification.VariableNames(),
		AssetType:     cf.AssetType(ds),
		Geometry:      res.Geometry,
		UpdatedAt:     h.now(),
	}
}

// saveCompliance scores the dataset and upserts the metadata entry.
// Nothing here can fail the run.
func (h *DAPHarvester) saveCompliance(ctx context.Context, svc *domain.Service, uid string, ds cdm.Dataset, log logger.Logger) {
	if h.scorer == nil {
		return
	}

	entry, err := h.scorer.Score(ctx, ds, svc.ID)
	if errors.Is(err, compliance.ErrDisabled) {
		log.Debug("compliance scoring skipped", logger.Error(err))
		return
	}
	if err != nil {
		log.Warn("caught error running compliance checker", logger.Error(err))
		return
	}

	if _, err := h.store.UpdateMetadata(ctx, uid, domain.RefTypeDataset, func(current *domain.Metadata) (*domain.Metadata, error) {
		return domain.MergeMetadataEntry(current, uid, domain.RefTypeDataset, entry, h.now()), nil
	}); err != nil {
		log.Error("could not save compliance and metamap information", logger.Error(err))
	}
}

// SplitKeywords splits a comma separated keyword list, trimmed and sorted.
func SplitKeywords(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if kw := strings.TrimSpace(p); kw != "" {
			out = append(out, kw)
		}
	}
	sort.Strings(out)
	return out
}

func stringPtr(s string) *string { return &s }
