package form

import (
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/jekabolt/creator-analytics/internal/entity"
)

const dateLayout = "2006-01-02"

// RevenueFilterRequest is the raw query of a revenue analytics call.
type RevenueFilterRequest struct {
	Period               string `json:"period"`
	StartDate            string `json:"startDate"`
	EndDate              string `json:"endDate"`
	Occasion             string `json:"occasionType"`
	IncludeSubscriptions string `json:"includeSubscriptions"`
}

func (r *RevenueFilterRequest) Validate() error {
	return ValidateStruct(r,
		validation.Field(&r.Period, validation.Required, validation.By(validPeriod)),
		validation.Field(&r.StartDate,
			validation.When(r.Period == string(entity.PeriodCustom), validation.Required),
			validation.Date(dateLayout),
		),
		validation.Field(&r.EndDate,
			validation.When(r.Period == string(entity.PeriodCustom), validation.Required),
			validation.Date(dateLayout),
			validation.By(notBefore(r.StartDate)),
		),
		validation.Field(&r.Occasion, validation.By(validOccasion)),
		validation.Field(&r.IncludeSubscriptions, validation.By(validBool)),
	)
}

// Filter validates the request and converts it to an entity.RevenueFilter.
// Dates are interpreted in loc.
func (r *RevenueFilterRequest) Filter(loc *time.Location) (entity.RevenueFilter, error) {
	if err := r.Validate(); err != nil {
		return entity.RevenueFilter{}, err
	}
	f := entity.RevenueFilter{Period: entity.Period(r.Period)}
	if r.StartDate != "" {
		t, _ := time.ParseInLocation(dateLayout, r.StartDate, loc)
		f.StartDate = &t
	}
	if r.EndDate != "" {
		t, _ := time.ParseInLocation(dateLayout, r.EndDate, loc)
		f.EndDate = &t
	}
	if r.Occasion != "" {
		f.Occasion, _ = entity.ParseOccasion(r.Occasion)
	}
	if r.IncludeSubscriptions != "" {
		b, _ := strconv.ParseBool(r.IncludeSubscriptions)
		f.IncludeSubscriptions = &b
	}
	return f, nil
}

func validPeriod(value interface{}) error {
	s, _ := value.(string)
	if s == "" || entity.Period(s).Valid() {
		return nil
	}
	return validation.NewError("validation_period", "must be one of 7d, 30d, 90d, 1y, custom")
}

func validOccasion(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, ok := entity.ParseOccasion(s); !ok {
		return validation.NewError("validation_occasion", "unknown occasion")
	}
	return nil
}

func validBool(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := strconv.ParseBool(s); err != nil {
		return validation.NewError("validation_bool", "must be true or false")
	}
	return nil
}

func notBefore(start string) validation.RuleFunc {
	return func(value interface{}) error {
		end, _ := value.(string)
		if start == "" || end == "" {
			return nil
		}
		s, err := time.Parse(dateLayout, start)
		if err != nil {
			return nil
		}
		e, err := time.Parse(dateLayout, end)
		if err != nil {
			return nil
		}
		if e.Before(s) {
			return validation.NewError("validation_range", "must not be before start date")
		}
		return nil
	}
}
