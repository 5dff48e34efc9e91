package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/MinhQuan-Tran/ShiftPay-Backend/internal/config"
	"github.com/MinhQuan-Tran/ShiftPay-Backend/internal/repository"
)

type Handler struct {
	validate   *validator.Validate
	config     *config.Config
	repository *repository.Repository
	translator ut.Translator

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:   validate,
		config:     cfg,
		repository: repo,
		translator: trans,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// every route reads data out of the caller's partition, so the whole
	// surface sits behind the identity middleware
	h.Mux.Route("/api", func(r chi.Router) {
		r.Use(h.auth)

		r.Route("/shifts", func(r chi.Router) {
			r.Get("/", h.ListShifts)
			r.Post("/", h.CreateShift)
			r.Post("/batch", h.BatchCreateShifts)
			r.Delete("/", h.DeleteShifts)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetShift)
				r.Put("/", h.UpdateShift)
				r.Delete("/", h.DeleteShift)
			})
		})

		r.Route("/workinfos", func(r chi.Router) {
			r.Get("/", h.ListWorkInfos)
			r.Post("/", h.CreateWorkInfo)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetWorkInfo)
				r.Delete("/", h.DeleteWorkInfo)
			})
		})

		r.Route("/shifttemplates", func(r chi.Router) {
			r.Get("/", h.ListShiftTemplates)
			r.Post("/", h.CreateShiftTemplate)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetShiftTemplate)
				r.Put("/", h.UpdateShiftTemplate)
				r.Delete("/", h.DeleteShiftTemplate)
			})
		})
	})
}
