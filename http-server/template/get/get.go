package get

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"tender-backend/http-server/response"
	"tender-backend/internal/artifact"
	"tender-backend/internal/pricing"
	"tender-backend/internal/storage"
)

type TemplateCatalog interface {
	Layouts() []pricing.Layout
	Template(t storage.OrderType) ([]byte, error)
}

type Cell struct {
	Field string `json:"field"`
	Cell  string `json:"cell"`
	Kind  string `json:"kind"`
}

type ResponseForm struct {
	Type    storage.OrderType `json:"typeOrder"`
	File    string            `json:"file"`
	Sheet   string            `json:"sheet,omitempty"`
	Inputs  []Cell            `json:"inputs"`
	Outputs map[string]string `json:"outputs"`
	Rates   []string          `json:"rates,omitempty"`
}

// GetAllTemplates описывает раскладку ячеек каждого шаблона.
func GetAllTemplates(log *slog.Logger, catalog TemplateCatalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.template.GetAllTemplates"

		log.Debug("listing templates",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		layouts := catalog.Layouts()
		forms := make([]ResponseForm, 0, len(layouts))
		for _, l := range layouts {
			form := ResponseForm{
				Type:   l.Type,
				File:   l.File,
				Sheet:  l.Sheet,
				Inputs: make([]Cell, 0, len(l.Inputs)),
				Outputs: map[string]string{
					storage.ParamCompanyProfit:         l.Outputs.CompanyProfit,
					storage.ParamCompanyProfitMinusVAT: l.Outputs.CompanyProfitMinusVAT,
					storage.ParamCompanyProfitMinusTAX: l.Outputs.CompanyProfitMinusTAX,
					storage.ParamProjectProfitability:  l.Outputs.ProjectProfitability,
					storage.ParamPercentShareInProfit:  l.Outputs.PercentShareInProfit,
				},
			}
			for _, in := range l.Inputs {
				form.Inputs = append(form.Inputs, Cell{Field: in.Field, Cell: in.Cell, Kind: in.Kind.String()})
			}
			if l.Rates != nil {
				form.Rates = l.Rates.Codes
			}
			forms = append(forms, form)
		}

		render.JSON(w, r, forms)
	}
}

// GetTemplateFile отдаёт пустой шаблон типа заказа в xlsx.
func GetTemplateFile(log *slog.Logger, catalog TemplateCatalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.template.GetTemplateFile"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		t, ok := storage.ParseOrderType(chi.URLParam(r, "type"))
		if !ok {
			log.Warn("unknown template type", slog.String("type", chi.URLParam(r, "type")))
			http.Error(w, "Form not found", http.StatusNotFound)
			return
		}

		data, err := catalog.Template(t)
		if err != nil {
			response.FromError(w, r, log, err)
			return
		}

		w.Header().Set("Content-Type", artifact.ContentTypeXLSX)
		w.Header().Set("Content-Disposition", "attachment; filename="+string(t)+".xlsx")
		w.Write(data)
	}
}
