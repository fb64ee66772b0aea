package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/seenimoa/valuescreen/internal/datasource"
	"github.com/seenimoa/valuescreen/internal/report"
	"github.com/seenimoa/valuescreen/internal/scoring"
	"github.com/seenimoa/valuescreen/internal/screen"
	"github.com/seenimoa/valuescreen/internal/valuation"
	"github.com/seenimoa/valuescreen/pkg/utils"
)

// ============================================================
// Request / Response types
// ============================================================

// ValuationRequest is the body for POST /api/v1/valuation. FCF is oldest
// first. Omitted parameters take the configured defaults.
type ValuationRequest struct {
	FCF            []float64 `json:"fcf" validate:"required"`
	GrowthInitial  *float64  `json:"growth_initial,omitempty"`
	GrowthTerminal *float64  `json:"growth_terminal,omitempty"`
	DiscountRate   *float64  `json:"discount_rate,omitempty"`
	ForecastYears  *int      `json:"forecast_years,omitempty" validate:"omitempty,min=1,max=100"`
	SplitYear      *int      `json:"split_year,omitempty" validate:"omitempty,min=0"`
	MarketPrice    *float64  `json:"market_price,omitempty"`
	Shares         *float64  `json:"shares,omitempty" validate:"omitempty,gt=0"`
}

// ValuationResponse is returned by POST /api/v1/valuation. Margin is only
// present when a market price was supplied.
type ValuationResponse struct {
	Parameters             valuation.Parameters `json:"parameters"`
	Result                 valuation.Result     `json:"result"`
	IntrinsicValuePerShare *float64             `json:"intrinsic_value_per_share,omitempty"`
	Margin                 *valuation.Margin    `json:"margin_of_safety,omitempty"`
	MarginError            *screen.ErrorInfo    `json:"margin_error,omitempty"`
}

// MarginRequest is the body for POST /api/v1/margin.
type MarginRequest struct {
	IntrinsicValue *float64 `json:"intrinsic_value" validate:"required"`
	MarketPrice    *float64 `json:"market_price" validate:"required"`
}

// RankRequest is the body for POST /api/v1/rank. A missing margin ranks on
// the scores alone.
type RankRequest struct {
	FundamentalScore *int     `json:"fundamental_score" validate:"required,min=0,max=4"`
	QualitativeScore *int     `json:"qualitative_score" validate:"required,min=0,max=5"`
	MarginOfSafety   *float64 `json:"margin_of_safety,omitempty"`
}

// RankResponse is returned by POST /api/v1/rank.
type RankResponse struct {
	Rating     valuation.Rating `json:"rating"`
	TotalScore int              `json:"total_score"`
	Margin     valuation.Margin `json:"margin_of_safety"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleScreen(w http.ResponseWriter, r *http.Request) {
	ticker, err := utils.ParseTicker(chi.URLParam(r, "ticker"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	q := r.URL.Query()
	format := report.FormatJSON
	if f := q.Get("format"); f != "" {
		if format, err = report.ParseFormat(f); err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	in, err := s.screenInputs(q)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if s.svc == nil {
		s.writeError(w, http.StatusServiceUnavailable, "screening service not configured")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	rep, err := s.svc.Run(ctx, ticker, in)
	if err != nil {
		s.writeError(w, fetchStatus(err), err.Error())
		return
	}

	switch format {
	case report.FormatText:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	case report.FormatHTML:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	default:
		s.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: rep})
		return
	}
	if err := report.Render(w, rep, format); err != nil {
		s.logger.Error().Err(err).Str("ticker", ticker).Msg("render report")
	}
}

// screenInputs reads the optional valuation overrides and moat factors from
// the query string, falling back to the configured defaults.
func (s *Server) screenInputs(q url.Values) (screen.Inputs, error) {
	p := s.cfg.Valuation.Parameters()

	floats := []struct {
		key string
		dst *float64
	}{
		{"growth", &p.GrowthRateInitial},
		{"terminal", &p.GrowthRateTerminal},
		{"discount", &p.DiscountRate},
	}
	for _, f := range floats {
		if v := q.Get(f.key); v != "" {
			x, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return screen.Inputs{}, fmt.Errorf("%s: not a number: %q", f.key, v)
			}
			*f.dst = x
		}
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"years", &p.ForecastYears},
		{"split", &p.SplitYear},
	}
	for _, f := range ints {
		if v := q.Get(f.key); v != "" {
			x, err := strconv.Atoi(v)
			if err != nil {
				return screen.Inputs{}, fmt.Errorf("%s: not an integer: %q", f.key, v)
			}
			*f.dst = x
		}
	}

	moat, err := scoring.ParseMoatFactors(q.Get("moat"))
	if err != nil {
		return screen.Inputs{}, err
	}
	return screen.Inputs{Parameters: p, Moat: moat}, nil
}

func (s *Server) handleValuation(w http.ResponseWriter, r *http.Request) {
	var req ValuationRequest
	if !s.decode(w, r, &req) {
		return
	}

	p := s.cfg.Valuation.Parameters()
	if req.GrowthInitial != nil {
		p.GrowthRateInitial = *req.GrowthInitial
	}
	if req.GrowthTerminal != nil {
		p.GrowthRateTerminal = *req.GrowthTerminal
	}
	if req.DiscountRate != nil {
		p.DiscountRate = *req.DiscountRate
	}
	if req.ForecastYears != nil {
		p.ForecastYears = *req.ForecastYears
	}
	if req.SplitYear != nil {
		p.SplitYear = *req.SplitYear
	}

	res, err := valuation.ComputeIntrinsicValue(valuation.SeriesOf(req.FCF...), p)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	resp := ValuationResponse{Parameters: p, Result: res}
	value := res.IntrinsicValue
	if req.Shares != nil {
		value = res.IntrinsicValue / *req.Shares
		if math.IsInf(value, 0) || math.IsNaN(value) {
			s.writeEngineError(w, &valuation.InvalidParameterError{
				Field:  "shares",
				Value:  *req.Shares,
				Reason: "per-share value overflows",
			})
			return
		}
		resp.IntrinsicValuePerShare = &value
	}
	if req.MarketPrice != nil {
		m := valuation.MarginOf(value, req.MarketPrice)
		resp.Margin = &m
		if m.Err != nil {
			resp.MarginError = &screen.ErrorInfo{Kind: valuation.Kind(m.Err), Message: m.Err.Error()}
		}
	}

	s.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: resp})
}

func (s *Server) handleMargin(w http.ResponseWriter, r *http.Request) {
	var req MarginRequest
	if !s.decode(w, r, &req) {
		return
	}

	m, err := valuation.ComputeMarginOfSafety(*req.IntrinsicValue, *req.MarketPrice)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]any{
			"margin_of_safety": m,
			"undervalued":      m > 0,
		},
	})
}

func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	var req RankRequest
	if !s.decode(w, r, &req) {
		return
	}

	margin := valuation.Margin{}
	if req.MarginOfSafety != nil {
		margin = valuation.MarginValue(*req.MarginOfSafety)
	}

	s.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: RankResponse{
			Rating:     valuation.RankInvestment(*req.FundamentalScore, *req.QualitativeScore, margin),
			TotalScore: *req.FundamentalScore + *req.QualitativeScore,
			Margin:     margin,
		},
	})
}

// ============================================================
// Helpers
// ============================================================

// decode reads a JSON body into dst and validates it. On failure it writes
// a 400 response and returns false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		s.writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationMessage flattens validator errors into "field: rule" pairs.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch {
		case fe.Tag() == "required":
			msgs = append(msgs, fe.Field()+" is required")
		case fe.Param() != "":
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

// writeEngineError reports a valuation error as 422 with its kind.
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	if !screen.IsValuationError(err) {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusUnprocessableEntity, APIResponse{
		Success:   false,
		Error:     err.Error(),
		ErrorKind: valuation.Kind(err),
	})
}

// fetchStatus maps a data retrieval error to an HTTP status.
func fetchStatus(err error) int {
	switch {
	case errors.Is(err, datasource.ErrTickerNotFound), errors.Is(err, datasource.ErrNoData):
		return http.StatusNotFound
	case errors.Is(err, datasource.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, datasource.ErrMissingAPIKey):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}
