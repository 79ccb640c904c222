package sales

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/simpos-backend/api/middleware"
	"github.com/angelmondragon/simpos-backend/api/responses"
	"github.com/angelmondragon/simpos-backend/api/validators"
	internalsales "github.com/angelmondragon/simpos-backend/internal/sales"
	"github.com/angelmondragon/simpos-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/simpos-backend/pkg/errors"
	"github.com/angelmondragon/simpos-backend/pkg/logger"
)

// Create records a new sale for the acting cashier.
func Create(svc internalsales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		var payload createSaleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		saleID, err := svc.CreateSale(r.Context(), payload.toInput(middleware.UserIDFromContext(r.Context())))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]int64{"sale_id": saleID})
	}
}

// Detail returns a sale with its items and refund rows.
func Detail(svc internalsales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		saleID, err := validators.ParsePathID(chi.URLParam(r, "saleId"), "saleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sale, err := svc.GetSale(r.Context(), saleID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sale)
	}
}

// Cancel voids a completed sale and returns its ICCIDs to stock. The body is
// optional and only carries the cancellation reason.
func Cancel(svc internalsales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		saleID, err := validators.ParsePathID(chi.URLParam(r, "saleId"), "saleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cancelSaleRequest
		if err := validators.DecodeOptionalJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err = svc.CancelSale(r.Context(), internalsales.CancelSaleInput{
			SaleID: saleID,
			UserID: middleware.UserIDFromContext(r.Context()),
			Reason: validators.SanitizeOptional(payload.Reason, maxTextLength),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"sale_id": saleID, "status": enums.SaleStatusCancelled})
	}
}

// Refund settles some or all remaining quantities as refund or credit. An
// empty line list refunds everything still available.
func Refund(svc internalsales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		saleID, err := validators.ParsePathID(chi.URLParam(r, "saleId"), "saleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload refundSaleRequest
		if err := validators.DecodeOptionalJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.RefundSale(r.Context(), payload.toInput(saleID, middleware.UserIDFromContext(r.Context())))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
