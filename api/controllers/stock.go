package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/simpos-backend/api/responses"
	"github.com/angelmondragon/simpos-backend/api/validators"
	"github.com/angelmondragon/simpos-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/simpos-backend/pkg/errors"
	"github.com/angelmondragon/simpos-backend/pkg/logger"
)

type stockFinder interface {
	FindByID(ctx context.Context, id int64) (*models.StockRecord, error)
}

// StockDetail returns a single ICCID stock record.
func StockDetail(store stockFinder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stock store unavailable"))
			return
		}

		stockID, err := validators.ParsePathID(chi.URLParam(r, "stockId"), "stockId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := store.FindByID(r.Context(), stockID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}
