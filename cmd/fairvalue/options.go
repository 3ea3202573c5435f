package main

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"

	"github.com/seenimoa/fairvalue/internal/analysis/dcf"
	"github.com/seenimoa/fairvalue/internal/config"
	"github.com/seenimoa/fairvalue/internal/report"
	"github.com/seenimoa/fairvalue/internal/runner"
	"github.com/seenimoa/fairvalue/pkg/utils"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	// Report fields by their flag names.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("flag"); name != "" {
			return name
		}
		return f.Name
	})
}

// valueOptions are the inputs of the value command. Precedence, lowest
// first: struct defaults, config file and environment, command-line flags.
type valueOptions struct {
	Tickers             []string `flag:"ticks"                 validate:"min=1,dive,required"`
	MinimumYears        int      `flag:"minimum-years"         default:"4"            validate:"gte=2"`
	YearsToProject      int      `flag:"years-to-project"      default:"4"            validate:"gte=1"`
	ReturnPercentage    float64  `flag:"return-percentage"     default:"8.0"          validate:"gte=0"`
	PerpetualGrowthRate float64  `flag:"perpetual-growth-rate" default:"2.5"          validate:"gte=0"`
	MarginOfSafety      float64  `flag:"margin-of-safety"      default:"50.0"         validate:"gte=0,lte=100"`
	Risk                string   `flag:"risk"                  default:"conservative" validate:"oneof=conservative moderate bullish"`
	Output              string   `flag:"output"                default:"text"         validate:"oneof=text json yaml yml"`
	Breakdown           bool     `flag:"breakdown"`
}

// newValueOptions returns the defaults overlaid with cfg, which may be nil.
func newValueOptions(cfg *config.Config) (*valueOptions, error) {
	o := &valueOptions{}
	if err := defaults.Set(o); err != nil {
		return nil, fmt.Errorf("setting defaults: %w", err)
	}
	if cfg == nil {
		return o, nil
	}

	v := cfg.Valuation
	if v.MinimumYears != 0 {
		o.MinimumYears = v.MinimumYears
	}
	if v.YearsToProject != 0 {
		o.YearsToProject = v.YearsToProject
	}
	o.ReturnPercentage = v.ReturnPercentage
	o.PerpetualGrowthRate = v.PerpetualGrowthRate
	o.MarginOfSafety = v.MarginOfSafety
	if v.Risk != "" {
		o.Risk = v.Risk
	}
	if cfg.Output.Format != "" {
		o.Output = cfg.Output.Format
	}
	return o, nil
}

// overrideFromFlags copies every flag the user set explicitly from src.
func (o *valueOptions) overrideFromFlags(fs *pflag.FlagSet, src *valueOptions) {
	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}
	set("ticks", func() { o.Tickers = append(o.Tickers, src.Tickers...) })
	set("minimum-years", func() { o.MinimumYears = src.MinimumYears })
	set("years-to-project", func() { o.YearsToProject = src.YearsToProject })
	set("return-percentage", func() { o.ReturnPercentage = src.ReturnPercentage })
	set("perpetual-growth-rate", func() { o.PerpetualGrowthRate = src.PerpetualGrowthRate })
	set("margin-of-safety", func() { o.MarginOfSafety = src.MarginOfSafety })
	set("risk", func() { o.Risk = src.Risk })
	set("output", func() { o.Output = src.Output })
	set("breakdown", func() { o.Breakdown = src.Breakdown })
}

// validate normalizes names and checks every field, joining all failures.
func (o *valueOptions) validate() error {
	o.Tickers = utils.NormalizeTickers(o.Tickers)
	o.Risk = strings.ToLower(strings.TrimSpace(o.Risk))
	o.Output = strings.ToLower(strings.TrimSpace(o.Output))

	err := validate.Struct(o)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, errors.New(validationMessage(fe)))
	}
	return errors.Join(msgs...)
}

func validationMessage(fe validator.FieldError) string {
	flag := "--" + fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s must not contain empty values", flag)
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s needs at least %s ticker symbol", flag, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", flag, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s, got %v", flag, fe.Param(), fe.Value())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s, got %v", flag, fe.Param(), fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s, got %q", flag, strings.ReplaceAll(fe.Param(), " ", ", "), fe.Value())
	default:
		return fmt.Sprintf("%s failed validation: %s", flag, fe.Tag())
	}
}

// params converts validated options into runner input.
func (o *valueOptions) params() (runner.Params, error) {
	risk, err := dcf.ParseRiskPosture(o.Risk)
	if err != nil {
		return runner.Params{}, err
	}
	return runner.Params{
		Tickers:      o.Tickers,
		MinimumYears: o.MinimumYears,
		Valuation: dcf.Config{
			RequiredRateOfReturn: o.ReturnPercentage,
			YearsToProject:       o.YearsToProject,
			Risk:                 risk,
			PerpetualGrowthRate:  o.PerpetualGrowthRate,
			MarginOfSafety:       o.MarginOfSafety,
		},
	}, nil
}

func (o *valueOptions) format() (report.Format, error) {
	return report.ParseFormat(o.Output)
}
