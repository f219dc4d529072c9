package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/norikae/norikae/internal/api/models"
	"github.com/norikae/norikae/internal/api/response"
	"github.com/norikae/norikae/internal/jorudan"
	"github.com/norikae/norikae/internal/provider/resilience"
	"github.com/norikae/norikae/internal/search"
)

// maxRequestBody bounds the route search request body.
const maxRequestBody = 64 << 10

// Searcher answers place and route queries.
type Searcher interface {
	FindPlaces(ctx context.Context, q search.PlaceQuery) (string, error)
	FindRoutes(ctx context.Context, q search.RouteQuery) (string, error)
}

// SearchHandler handles the place and route search endpoints.
type SearchHandler struct {
	searcher         Searcher
	validate         *validator.Validate
	defaultMaxTokens int
	logger           zerolog.Logger
}

// NewSearchHandler creates a new SearchHandler. defaultMaxTokens applies
// when a request does not set maxTokens.
func NewSearchHandler(searcher Searcher, defaultMaxTokens int, logger zerolog.Logger) *SearchHandler {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	return &SearchHandler{
		searcher:         searcher,
		validate:         validate,
		defaultMaxTokens: defaultMaxTokens,
		logger:           logger,
	}
}

// FindPlaces handles GET /v1/places - stations, bus stops and spots
// matching a partial name, as one comma-separated text line.
func (h *SearchHandler) FindPlaces(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	params := models.PlaceSearchParams{Query: strings.TrimSpace(q.Get("q"))}

	var fieldErrors []models.FieldError
	if raw := q.Get("maxTokens"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			fieldErrors = append(fieldErrors, models.FieldError{Field: "maxTokens", Message: "must be an integer", Code: "type"})
		} else {
			params.MaxTokens = &n
		}
	}
	if raw := q.Get("onlyName"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			fieldErrors = append(fieldErrors, models.FieldError{Field: "onlyName", Message: "must be a boolean", Code: "type"})
		}
		params.OnlyName = b
	}
	if len(fieldErrors) > 0 {
		response.BadRequest(w, r, "invalid query parameters", fieldErrors)
		return
	}

	if err := h.validate.Struct(params); err != nil {
		response.BadRequest(w, r, "invalid query parameters", fieldErrorsOf(err))
		return
	}

	text, err := h.searcher.FindPlaces(r.Context(), search.PlaceQuery{
		Query:     params.Query,
		MaxTokens: h.maxTokens(params.MaxTokens),
		OnlyName:  params.OnlyName,
	})
	if err != nil {
		h.writeError(w, r, err, search.PlaceErrorText(err))
		return
	}

	response.Text(w, r, http.StatusOK, text)
}

// SearchRoutes handles POST /v1/routes:search - routes between two places,
// rendered as text.
func (h *SearchHandler) SearchRoutes(w http.ResponseWriter, r *http.Request) {
	var input models.RouteSearchRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if err := h.validate.Struct(input); err != nil {
		response.BadRequest(w, r, "invalid route search request", fieldErrorsOf(err))
		return
	}

	mode := jorudan.ModeDeparture
	if input.DatetimeType != "" {
		// Validated by the oneof tag above
		mode, _ = jorudan.ParseSearchMode(string(input.DatetimeType))
	}

	text, err := h.searcher.FindRoutes(r.Context(), search.RouteQuery{
		From:      input.From,
		To:        input.To,
		Mode:      mode,
		Datetime:  input.Datetime,
		MaxTokens: h.maxTokens(input.MaxTokens),
	})
	if err != nil {
		h.writeError(w, r, err, search.RouteErrorText(err))
		return
	}

	response.Text(w, r, http.StatusOK, text)
}

func (h *SearchHandler) maxTokens(requested *int) int {
	if requested != nil {
		return *requested
	}
	return h.defaultMaxTokens
}

// writeError maps a search failure to a problem. Caller mistakes are 400s,
// an open circuit is a 503 and every other upstream or page failure a 502.
func (h *SearchHandler) writeError(w http.ResponseWriter, r *http.Request, err error, detail string) {
	switch {
	case errors.Is(err, search.ErrInvalidDatetime), errors.Is(err, jorudan.ErrInvalidQuery):
		response.BadRequest(w, r, detail, nil)
	case errors.Is(err, resilience.ErrCircuitOpen):
		response.Problem(w, r, http.StatusServiceUnavailable, detail)
	default:
		h.logger.Warn().Err(err).Str("path", r.URL.Path).Msg("search failed")
		response.Problem(w, r, http.StatusBadGateway, detail)
	}
}

// fieldErrorsOf converts validator errors into problem field errors named
// by their json tags.
func fieldErrorsOf(err error) []models.FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []models.FieldError{{Message: err.Error()}}
	}

	return lo.Map(verrs, func(fe validator.FieldError, _ int) models.FieldError {
		return models.FieldError{
			Field:   fe.Field(),
			Message: validationMessage(fe),
			Code:    fe.Tag(),
		}
	})
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "gte":
		return "must be at least " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "failed " + fe.Tag() + " validation"
	}
}
