package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/coastwatch-labs/catalog/internal/domain"
	"github.com/coastwatch-labs/catalog/internal/httpserver/deps"
	"github.com/coastwatch-labs/catalog/internal/logger"
)

type datasetsResponse struct {
	Datasets []*domain.Dataset `json:"datasets"`
}

// ResolveAsset returns the datasets whose UID is the asset id, optionally
// restricted to those with an entry of ?service_type=.
func ResolveAsset(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assetID, err := url.PathUnescape(chi.URLParam(r, "*"))
		if err != nil || assetID == "" {
			badRequest(w, "invalid asset id")
			return
		}

		out := []*domain.Dataset{}
		ds, err := d.Store.GetDataset(r.Context(), assetID)
		switch {
		case err == nil:
			if st := r.URL.Query().Get("service_type"); st == "" || ds.HasServiceType(strings.ToUpper(st)) {
				out = append(out, ds)
			}
		case !isNotFound(err):
			writeError(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, datasetsResponse{Datasets: out})
	}
}

// Datasets returns one dataset (?uid=) or the catalog, optionally filtered
// by ?asset_type= over its service entries. With ?q= the result is ranked by
// text relevance and inactive datasets are dropped.
func Datasets(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		if uid := q.Get("uid"); uid != "" {
			ds, err := d.Store.GetDataset(r.Context(), uid)
			if err != nil {
				writeError(w, d, err)
				return
			}
			writeJSON(w, http.StatusOK, ds)
			return
		}

		all, err := d.Store.ListDatasets(r.Context())
		if err != nil {
			writeError(w, d, err)
			return
		}

		assetType := q.Get("asset_type")
		out := make([]*domain.Dataset, 0, len(all))
		for _, ds := range all {
			if assetType == "" || hasAssetType(ds, assetType) {
				out = append(out, ds)
			}
		}

		if query := strings.TrimSpace(q.Get("q")); query != "" {
			ranked := domain.RankDatasets(query, out)
			out = make([]*domain.Dataset, 0, len(ranked))
			for _, c := range ranked {
				out = append(out, c.Dataset)
			}
		}
		writeJSON(w, http.StatusOK, datasetsResponse{Datasets: out})
	}
}

func hasAssetType(ds *domain.Dataset, assetType string) bool {
	for _, entry := range ds.Services {
		if strings.EqualFold(entry.AssetType, assetType) {
			return true
		}
	}
	return false
}

// DeleteDataset removes a dataset record (?uid=). Its metadata is kept.
func DeleteDataset(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := r.URL.Query().Get("uid")
		if uid == "" {
			badRequest(w, "missing uid")
			return
		}

		if _, err := d.Store.GetDataset(r.Context(), uid); err != nil {
			writeError(w, d, err)
			return
		}
		if err := d.Store.DeleteDataset(r.Context(), uid); err != nil {
			writeError(w, d, err)
			return
		}

		d.Logger.Info("dataset deleted",
			logger.String("uid", uid),
			logger.String("remote_ip", r.RemoteAddr))
		w.WriteHeader(http.StatusNoContent)
	}
}

// Metadata returns the compliance metadata of a reference object.
func Metadata(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		refID := q.Get("ref_id")
		if refID == "" {
			badRequest(w, "missing ref_id")
			return
		}
		refType := q.Get("ref_type")
		if refType == "" {
			refType = domain.RefTypeDataset
		}

		md, err := d.Store.GetMetadata(r.Context(), refID, refType)
		if err != nil {
			writeError(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, md)
	}
}
