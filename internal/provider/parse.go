package provider

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/Ckrest/graph-lib/internal/errors"
	"github.com/tidwall/gjson"
)

// Mode selects how command output is turned into a scalar.
type Mode string

const (
	// ModeScalar extracts the first floating-point literal from free text.
	ModeScalar Mode = "scalar"
	// ModeRatio parses "X/Y", "X of Y" or a literal "X%" into a percentage.
	ModeRatio Mode = "ratio"
	// ModeStructured navigates a dotted key path into JSON output.
	ModeStructured Mode = "structured"
	// ModePattern extracts the first capture group of a configured regexp.
	ModePattern Mode = "pattern"
)

var (
	scalarRe  = regexp.MustCompile(`[-+]?\d*\.?\d+`)
	ratioRe   = regexp.MustCompile(`(?i)([\d.]+)\s*(?:/|of)\s*([\d.]+)`)
	percentRe = regexp.MustCompile(`([\d.]+)\s*%`)
)

// Parser converts process output into a finite float64 according to its
// configured mode. Built once at provider construction; mode arguments are
// validated there, never per cycle.
type Parser struct {
	mode    Mode
	keyPath string
	pattern *regexp.Regexp
}

// NewParser validates the mode and its arguments and returns a ready parser.
func NewParser(mode Mode, keyPath, pattern string) (*Parser, error) {
	errFactory := errors.New()

	p := &Parser{mode: mode, keyPath: keyPath}

	switch mode {
	case ModeScalar, ModeRatio:
	case ModeStructured:
		if keyPath == "" {
			return nil, errFactory.New(ErrMissingKeyPath)
		}
	case ModePattern:
		if pattern == "" {
			return nil, errFactory.WithMessage(ErrInvalidPattern, "pattern mode requires a regular expression")
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, errFactory.Wrap(ErrInvalidPattern, err)
		}
		if re.NumSubexp() < 1 {
			return nil, errFactory.WithMessage(ErrInvalidPattern, "pattern must contain a capture group")
		}
		p.pattern = re
	default:
		return nil, errFactory.WithData(ErrInvalidConfig, struct {
			Mode string
		}{Mode: string(mode)})
	}

	return p, nil
}

// Mode returns the configured parse mode.
func (p *Parser) Mode() Mode {
	return p.mode
}

// Parse extracts a scalar from the given text. A reading that does not
// match the configured shape, or that is not finite, is a parse error.
func (p *Parser) Parse(text string) (float64, error) {
	errFactory := errors.New()

	text = strings.TrimSpace(text)
	if text == "" {
		return 0, errFactory.WithMessage(ErrParseFailed, "empty output")
	}

	var (
		value float64
		err   error
	)

	switch p.mode {
	case ModeScalar:
		value, err = p.parseScalar(text)
	case ModeRatio:
		value, err = p.parseRatio(text)
	case ModeStructured:
		value, err = p.parseStructured(text)
	case ModePattern:
		value, err = p.parsePattern(text)
	}

	if err != nil {
		return 0, err
	}

	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, errFactory.WithMessage(ErrParseFailed, "value is not finite")
	}

	return value, nil
}

func (p *Parser) parseScalar(text string) (float64, error) {
	match := scalarRe.FindString(text)
	if match == "" {
		return 0, errors.New().WithData(ErrParseFailed, struct {
			Output string
		}{Output: text})
	}

	return strconv.ParseFloat(match, 64)
}

func (p *Parser) parseRatio(text string) (float64, error) {
	if m := ratioRe.FindStringSubmatch(text); m != nil {
		numerator, errN := strconv.ParseFloat(m[1], 64)
		denominator, errD := strconv.ParseFloat(m[2], 64)
		if errN == nil && errD == nil && denominator > 0 {
			return numerator / denominator * 100, nil
		}
	}

	// A literal percentage counts as already computed.
	if m := percentRe.FindStringSubmatch(text); m != nil {
		return strconv.ParseFloat(m[1], 64)
	}

	return 0, errors.New().WithData(ErrParseFailed, struct {
		Output string
	}{Output: text})
}

func (p *Parser) parseStructured(text string) (float64, error) {
	errFactory := errors.New()

	if !gjson.Valid(text) {
		return 0, errFactory.WithMessage(ErrParseFailed, "output is not valid JSON")
	}

	leaf := gjson.Get(text, p.keyPath)
	if !leaf.Exists() {
		return 0, errFactory.WithData(ErrParseFailed, struct {
			KeyPath string
		}{KeyPath: p.keyPath})
	}

	switch leaf.Type {
	case gjson.Number:
		return leaf.Float(), nil
	case gjson.String:
		return strconv.ParseFloat(leaf.String(), 64)
	default:
		return 0, errFactory.WithMessage(ErrParseFailed, "key path does not resolve to a number")
	}
}

func (p *Parser) parsePattern(text string) (float64, error) {
	m := p.pattern.FindStringSubmatch(text)
	if m == nil || len(m) < 2 {
		return 0, errors.New().WithData(ErrParseFailed, struct {
			Pattern string
		}{Pattern: p.pattern.String()})
	}

	return strconv.ParseFloat(m[1], 64)
}
