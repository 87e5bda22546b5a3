package api

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/vytor/chessduel/internal/aggregate"
	"github.com/vytor/chessduel/internal/errors"
	"github.com/vytor/chessduel/internal/models"
	"github.com/vytor/chessduel/internal/services"
)

var validate = newValidator()

var (
	yearRe = regexp.MustCompile(`^\d{4}$`)
	partRe = regexp.MustCompile(`^\d{2}$`)
)

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their query or JSON name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"query", "json"} {
			if name, _, _ := strings.Cut(f.Tag.Get(tag), ","); name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	_ = v.RegisterValidation("range_year", allOr(yearRe))
	_ = v.RegisterValidation("range_part", allOr(partRe))
	return v
}

func allOr(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == aggregate.All || re.MatchString(s)
	}
}

type rangeQuery struct {
	Year  string `query:"year" validate:"range_year"`
	Month string `query:"month" validate:"range_part"`
	Day   string `query:"day" validate:"range_part"`
}

// Optional integers are pointers so an explicit 0 is validated rather than
// mistaken for an absent parameter.
type sessionsQuery struct {
	Gap *int `query:"gap" validate:"omitempty,min=1,max=120"`
}

type calendarQuery struct {
	Year int `query:"year" validate:"min=1970,max=9999"`
}

type archiveQuery struct {
	Month  string `query:"month" validate:"omitempty,datetime=2006-01"`
	Player string `query:"player" validate:"omitempty,max=30"`
	Winner string `query:"winner" validate:"omitempty,max=30"`
	Order  string `query:"order" validate:"omitempty,oneof=asc desc"`
	Limit  *int   `query:"limit" validate:"omitempty,min=1,max=500"`
	Offset int    `query:"offset" validate:"min=0"`
}

type syncBody struct {
	Username string `json:"username" validate:"omitempty,min=2,max=30"`
	Opponent string `json:"opponent" validate:"omitempty,min=2,max=30"`
}

func parseRange(r *http.Request) (models.Range, error) {
	q := r.URL.Query()
	rq := rangeQuery{
		Year:  valueOr(q.Get("year"), aggregate.All),
		Month: valueOr(q.Get("month"), aggregate.All),
		Day:   valueOr(q.Get("day"), aggregate.All),
	}
	if err := validateStruct(rq); err != nil {
		return models.Range{}, err
	}
	return models.Range{Year: rq.Year, Month: rq.Month, Day: rq.Day}, nil
}

// parseGap returns 0 when gap is absent so the dashboard default applies.
func parseGap(r *http.Request) (int, error) {
	gap, err := queryIntPtr(r, "gap")
	if err != nil {
		return 0, err
	}
	if err := validateStruct(sessionsQuery{Gap: gap}); err != nil {
		return 0, err
	}
	if gap == nil {
		return 0, nil
	}
	return *gap, nil
}

func parseCalendarYear(r *http.Request, now time.Time) (int, error) {
	year, err := queryInt(r, "year", now.Year())
	if err != nil {
		return 0, err
	}
	if err := validateStruct(calendarQuery{Year: year}); err != nil {
		return 0, err
	}
	return year, nil
}

const defaultArchiveLimit = 50

func parseArchiveFilter(r *http.Request) (models.GameFilter, error) {
	q := r.URL.Query()
	aq := archiveQuery{
		Month:  q.Get("month"),
		Player: q.Get("player"),
		Winner: q.Get("winner"),
		Order:  strings.ToLower(q.Get("order")),
	}
	var err error
	if aq.Limit, err = queryIntPtr(r, "limit"); err != nil {
		return models.GameFilter{}, err
	}
	if aq.Offset, err = queryInt(r, "offset", 0); err != nil {
		return models.GameFilter{}, err
	}
	if err := validateStruct(aq); err != nil {
		return models.GameFilter{}, err
	}
	limit := defaultArchiveLimit
	if aq.Limit != nil {
		limit = *aq.Limit
	}
	return models.GameFilter{
		MonthKey: aq.Month,
		Speed:    models.SpeedBlitz,
		Player:   aq.Player,
		Winner:   aq.Winner,
		Limit:    limit,
		Offset:   aq.Offset,
		OrderDir: strings.ToUpper(aq.Order),
	}, nil
}

// parseSyncRequest reads the optional JSON body of a sync request.
func parseSyncRequest(r *http.Request) (services.SyncRequest, bool, error) {
	backfill := false
	if v := r.URL.Query().Get("backfill"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return services.SyncRequest{}, false, errors.NewValidationError("backfill", "must be a boolean")
		}
		backfill = b
	}

	var body syncBody
	if r.Body != nil {
		dec := json.NewDecoder(io.LimitReader(r.Body, 1<<16))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&body); err != nil && !stderrors.Is(err, io.EOF) {
			return services.SyncRequest{}, false, errors.NewBadRequestError("invalid request body")
		}
	}
	body.Username = strings.TrimSpace(body.Username)
	body.Opponent = strings.TrimSpace(body.Opponent)
	if err := validateStruct(body); err != nil {
		return services.SyncRequest{}, false, err
	}
	return services.SyncRequest{Username: body.Username, Opponent: body.Opponent}, backfill, nil
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.NewValidationError(key, "must be an integer")
	}
	return n, nil
}

func queryIntPtr(r *http.Request, key string) (*int, error) {
	if r.URL.Query().Get(key) == "" {
		return nil, nil
	}
	n, err := queryInt(r, key, 0)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func valueOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// validateStruct runs the struct tags and folds every failure into one
// validation error.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return errors.NewInternalError(err)
	}

	fields := make([]string, 0, len(verrs))
	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
		details = append(details, describe(fe))
	}
	return errors.NewValidationError(strings.Join(fields, ", "), strings.Join(details, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "range_year":
		return fmt.Sprintf("%s must be %q or four digits", fe.Field(), aggregate.All)
	case "range_part":
		return fmt.Sprintf("%s must be %q or two digits", fe.Field(), aggregate.All)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must match %s", fe.Field(), fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
