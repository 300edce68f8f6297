package filter

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	appErrors "github.com/noah-isme/lms-portal-gateway/pkg/errors"
)

// FromQuery reads q, status and min<Name>/max<Name> for each range name from
// the request query. Unparseable bounds are validation errors.
func FromQuery(values url.Values, ranges ...string) (Criteria, error) {
	c := Criteria{
		Search: strings.TrimSpace(values.Get("q")),
		Status: strings.TrimSpace(values.Get("status")),
	}
	if c.Search == "" {
		c.Search = strings.TrimSpace(values.Get("search"))
	}
	if len(ranges) == 0 {
		return c, nil
	}

	c.Ranges = make(map[string]Range, len(ranges))
	fields := map[string]string{}
	for _, name := range ranges {
		suffix := capitalize(name)
		var r Range
		for _, end := range []struct {
			key string
			dst **float64
		}{{"min" + suffix, &r.Min}, {"max" + suffix, &r.Max}} {
			raw := strings.TrimSpace(values.Get(end.key))
			if raw == "" {
				continue
			}
			v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				fields[end.key] = fmt.Sprintf("valor numérico inválido: %q", raw)
				continue
			}
			*end.dst = &v
		}
		c.Ranges[name] = r
	}
	if len(fields) > 0 {
		return Criteria{}, appErrors.WithFields("filtro inválido", fields)
	}
	return c, nil
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
