package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/pradiptha/bookstore/internal/catalog"
	inHttp "github.com/pradiptha/bookstore/internal/http"
	"github.com/pradiptha/bookstore/internal/log"
	"github.com/pradiptha/bookstore/internal/middleware"
	"github.com/pradiptha/bookstore/internal/otel"
	commonOtel "github.com/pradiptha/bookstore/storefront/internal/common/otel"
	"github.com/pradiptha/bookstore/storefront/internal/service"
	"github.com/pradiptha/bookstore/storefront/pkg/request"
)

type ContentController struct {
	service *service.StorefrontService
}

func AttachContentController(
	router *mux.Router,
	svc *service.StorefrontService,
	adminKeyHash string,
) {
	controller := ContentController{service: svc}

	router.HandleFunc("/books", controller.FindBooks).Methods(http.MethodGet)
	router.HandleFunc("/books/{bookId}", controller.FindBookById).Methods(http.MethodGet)
	router.HandleFunc("/categories", controller.FindCategories).Methods(http.MethodGet)
	router.HandleFunc("/pages/{slug}", controller.FindPageBySlug).Methods(http.MethodGet)
	router.HandleFunc("/toasts", controller.FindToasts).Methods(http.MethodGet)
	router.HandleFunc("/toasts/{toastId}", controller.DismissToast).Methods(http.MethodDelete)

	subrouter := router.PathPrefix("/admin").Subrouter()
	subrouter.Use(middleware.AdminKey(adminKeyHash))
	subrouter.HandleFunc("/pages/{slug}", controller.SavePage).Methods(http.MethodPut)
	subrouter.HandleFunc("/pages/{slug}", controller.DeletePage).Methods(http.MethodDelete)
}

func (t ContentController) FindBooks(w http.ResponseWriter, r *http.Request) {
	c, span := commonOtel.Tracer.Start(r.Context(), "ContentController FindBooks")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "ContentController FindBooks").
		Str(log.KEY_PROCESS, "finding books").
		Logger()

	logger.Info().Msg("finding books")
	c = logger.WithContext(c)
	books, err := t.service.Catalog().Books(c)
	if err != nil {
		err = fmt.Errorf("failed finding books with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadGateway,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msgf("found %d books", len(books))

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "books found",
		"data": map[string]interface{}{
			"books": books,
		},
	})
}

func (t ContentController) FindBookById(w http.ResponseWriter, r *http.Request) {
	c, span := commonOtel.Tracer.Start(r.Context(), "ContentController FindBookById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "ContentController FindBookById").
		Logger()

	pathValues := mux.Vars(r)
	bookID := pathValues["bookId"]
	logger = logger.With().
		Str(log.KEY_PRODUCT_ID, bookID).
		Str(log.KEY_PROCESS, fmt.Sprintf("finding bookId=%s", bookID)).
		Logger()

	logger.Info().Msgf("finding bookId=%s", bookID)
	c = logger.WithContext(c)
	book, err := t.service.Catalog().Book(c, bookID)
	if err != nil {
		err = fmt.Errorf("failed finding bookId=%s with error=%w", bookID, err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusNotFound,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msgf("found bookId=%s", bookID)

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    fmt.Sprintf("bookId=%s found", bookID),
		"data": map[string]interface{}{
			"book":     book,
			"imageUrl": t.service.Catalog().ImageURL(book.Ref),
		},
	})
}

func (t ContentController) FindCategories(w http.ResponseWriter, r *http.Request) {
	c, span := commonOtel.Tracer.Start(r.Context(), "ContentController FindCategories")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "ContentController FindCategories").
		Str(log.KEY_PROCESS, "finding categories").
		Logger()

	logger.Info().Msg("finding categories")
	c = logger.WithContext(c)
	categories, err := t.service.Catalog().Categories(c)
	if err != nil {
		err = fmt.Errorf("failed finding categories with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadGateway,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msgf("found %d categories", len(categories))

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "categories found",
		"data": map[string]interface{}{
			"categories": categories,
		},
	})
}

func (t ContentController) FindPageBySlug(w http.ResponseWriter, r *http.Request) {
	c, span := commonOtel.Tracer.Start(r.Context(), "ContentController FindPageBySlug")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "ContentController FindPageBySlug").
		Logger()

	pathValues := mux.Vars(r)
	slug := pathValues["slug"]
	logger = logger.With().
		Str(log.KEY_PAGE_SLUG, slug).
		Str(log.KEY_PROCESS, fmt.Sprintf("finding page slug=%s", slug)).
		Logger()

	logger.Info().Msgf("finding page slug=%s", slug)
	c = logger.WithContext(c)
	page, err := t.service.Catalog().Page(c, slug)
	if err != nil {
		err = fmt.Errorf("failed finding page slug=%s with error=%w", slug, err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusNotFound,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msgf("found page slug=%s", slug)

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    fmt.Sprintf("page slug=%s found", slug),
		"data": map[string]interface{}{
			"page": page,
		},
	})
}

func (t ContentController) FindToasts(w http.ResponseWriter, r *http.Request) {
	c, span := commonOtel.Tracer.Start(r.Context(), "ContentController FindToasts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "ContentController FindToasts").
		Logger()

	toasts := t.service.Toasts().Active()
	logger.Info().Msgf("found %d active toasts", len(toasts))

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "toasts found",
		"data": map[string]interface{}{
			"toasts": toasts,
		},
	})
}

func (t ContentController) DismissToast(w http.ResponseWriter, r *http.Request) {
	c, span := commonOtel.Tracer.Start(r.Context(), "ContentController DismissToast")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "ContentController DismissToast").
		Str(log.KEY_PROCESS, "validating toastId").
		Logger()

	pathValues := mux.Vars(r)
	toastID, err := strconv.ParseInt(pathValues["toastId"], 10, 64)
	if err != nil {
		err = fmt.Errorf("failed validating toastId=%s with error=%w", pathValues["toastId"], err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger = logger.With().Int64(log.KEY_TOAST_ID, toastID).Logger()

	logger = logger.With().Str(log.KEY_PROCESS, "dismissing toast").Logger()
	dismissed := t.service.Toasts().Dismiss(toastID)
	logger.Info().Msgf("dismissed toastId=%d dismissed=%t", toastID, dismissed)

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    fmt.Sprintf("toastId=%d dismissed", toastID),
		"data": map[string]interface{}{
			"dismissed": dismissed,
		},
	})
}

func (t ContentController) SavePage(w http.ResponseWriter, r *http.Request) {
	c, span := commonOtel.Tracer.Start(r.Context(), "ContentController SavePage")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "ContentController SavePage").
		Logger()

	pathValues := mux.Vars(r)
	slug := pathValues["slug"]
	logger = logger.With().Str(log.KEY_PAGE_SLUG, slug).Logger()

	logger = logger.With().Str(log.KEY_PROCESS, "decoding requestbody").Logger()
	logger.Info().Msg("decoding requestbody")
	reqBody := request.SavePage{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("decoded request body")

	logger = logger.With().Str(log.KEY_PROCESS, "validating requestbody").Logger()
	logger.Info().Msg("validating request body")
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("validated request body")

	logger = logger.With().
		Str(log.KEY_PROCESS, fmt.Sprintf("saving page slug=%s", slug)).
		Logger()
	logger.Info().Msgf("saving page slug=%s", slug)
	c = logger.WithContext(c)
	page := catalog.Page{Slug: slug, Title: reqBody.Title, Body: reqBody.Body}
	if err := t.service.Catalog().SavePage(c, page); err != nil {
		err = fmt.Errorf("failed saving page slug=%s with error=%w", slug, err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadGateway,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msgf("saved page slug=%s", slug)

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    fmt.Sprintf("page slug=%s saved", slug),
		"data": map[string]interface{}{
			"page": page,
		},
	})
}

func (t ContentController) DeletePage(w http.ResponseWriter, r *http.Request) {
	c, span := commonOtel.Tracer.Start(r.Context(), "ContentController DeletePage")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "ContentController DeletePage").
		Logger()

	pathValues := mux.Vars(r)
	slug := pathValues["slug"]
	logger = logger.With().
		Str(log.KEY_PAGE_SLUG, slug).
		Str(log.KEY_PROCESS, fmt.Sprintf("deleting page slug=%s", slug)).
		Logger()

	logger.Info().Msgf("deleting page slug=%s", slug)
	c = logger.WithContext(c)
	if err := t.service.Catalog().DeletePage(c, slug); err != nil {
		err = fmt.Errorf("failed deleting page slug=%s with error=%w", slug, err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadGateway,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msgf("deleted page slug=%s", slug)

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    fmt.Sprintf("page slug=%s deleted", slug),
	})
}
