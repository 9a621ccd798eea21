package numbering

import (
	"strconv"
	"strings"

	"suratapi/internal/apperror"
)

// Template placeholders. Substitution is exact-match; anything else in the
// template, including unknown bracketed tokens, is copied through untouched.
const (
	TokenUnitCode       = "[KODE_UNIT_KERJA_LENGKAP]"
	TokenClassification = "[KODE_KLASIFIKASI_ARSIP]"
	TokenSequence       = "[NOMOR_URUT_PER_MASALAH]"
	TokenYear           = "[TAHUN_SAAT_INI]"
)

// Tokens lists every recognized placeholder.
var Tokens = []string{TokenUnitCode, TokenClassification, TokenSequence, TokenYear}

// DefaultTemplate is used when neither the unit nor the configuration supplies one.
const DefaultTemplate = TokenUnitCode + "/" + TokenClassification + "/" + TokenSequence + "/" + TokenYear

// Input carries everything Generate substitutes.
type Input struct {
	UnitCode           string
	ParentUnitCode     string
	ClassificationCode string
	Sequence           int64
	Year               int
}

// FullUnitCode joins a branch office's own code with its parent's code.
func FullUnitCode(code, parentCode string) string {
	if parentCode == "" {
		return code
	}
	return code + "." + parentCode
}

// Generate renders template for in. It has no side effects.
func Generate(in Input, template string) (string, error) {
	if strings.TrimSpace(in.UnitCode) == "" {
		return "", apperror.Validation("unit_code", "unit cannot be resolved")
	}
	if strings.TrimSpace(in.ClassificationCode) == "" {
		return "", apperror.Validation("classification_code", "classification cannot be resolved")
	}
	if in.Sequence < 1 {
		return "", apperror.Validation("sequence", "must be a positive integer, got %d", in.Sequence)
	}
	if in.Year < 1 {
		return "", apperror.Validation("year", "must be positive, got %d", in.Year)
	}
	for field, v := range map[string]string{
		"unit_code":           in.UnitCode,
		"parent_unit_code":    in.ParentUnitCode,
		"classification_code": in.ClassificationCode,
	} {
		if containsToken(v) {
			return "", apperror.Validation(field, "must not contain a template placeholder")
		}
	}

	r := strings.NewReplacer(
		TokenUnitCode, FullUnitCode(in.UnitCode, in.ParentUnitCode),
		TokenClassification, in.ClassificationCode,
		TokenSequence, strconv.FormatInt(in.Sequence, 10),
		TokenYear, strconv.Itoa(in.Year),
	)
	return r.Replace(template), nil
}

// ValidateTemplate checks that a stored template carries every placeholder.
// Counters are keyed by unit, main issue and year, so a template missing any
// of them can render the same number for two different counters.
func ValidateTemplate(template string) error {
	var missing []string
	for _, t := range Tokens {
		if !strings.Contains(template, t) {
			missing = append(missing, t)
		}
	}
	if len(missing) > 0 {
		return apperror.Validation("number_template", "must contain %s", strings.Join(missing, ", "))
	}
	return nil
}

func containsToken(s string) bool {
	for _, t := range Tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
