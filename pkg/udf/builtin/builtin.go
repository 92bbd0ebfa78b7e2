// Package builtin provides the stock functions installed by the renderer:
// HTML sanitising, case mapping and rune-aware string helpers.
package builtin

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/goliatone/go-teng/pkg/udf"
)

var (
	policyOnce  sync.Once
	ugcPolicy   *bluemonday.Policy
	plainPolicy *bluemonday.Policy
)

func policies() (*bluemonday.Policy, *bluemonday.Policy) {
	policyOnce.Do(func() {
		ugcPolicy = bluemonday.UGCPolicy()
		plainPolicy = bluemonday.StrictPolicy()
	})
	return ugcPolicy, plainPolicy
}

// Functions returns the stock functions keyed by name.
func Functions() map[string]any {
	return map[string]any{
		"sanitize":  Sanitize,
		"plaintext": Plaintext,
		"upper":     Upper,
		"lower":     Lower,
		"title":     Title,
		"nfc":       NFC,
		"runelen":   RuneLen,
		"truncate":  Truncate,
	}
}

// Register installs every stock function in reg. Names already taken are
// left alone; the result lists the names that were installed.
func Register(reg *udf.Registry) ([]string, error) {
	var installed []string
	for _, name := range Names() {
		ok, err := reg.RegisterNative(name, Functions()[name])
		if err != nil {
			return installed, fmt.Errorf("builtin: %w", err)
		}
		if ok {
			installed = append(installed, name)
		}
	}
	return installed, nil
}

// Names lists the stock function names in registration order.
func Names() []string {
	return []string{"sanitize", "plaintext", "upper", "lower", "title", "nfc", "runelen", "truncate"}
}

// Sanitize strips markup that is unsafe in user generated content.
func Sanitize(s string) string {
	ugc, _ := policies()
	return ugc.Sanitize(s)
}

// Plaintext removes all markup.
func Plaintext(s string) string {
	_, plain := policies()
	return strings.TrimSpace(plain.Sanitize(s))
}

// Upper maps s to upper case using the optional BCP 47 tag.
func Upper(s string, tag ...string) (string, error) {
	lang, err := parseTag(tag)
	if err != nil {
		return "", err
	}
	return cases.Upper(lang).String(s), nil
}

// Lower maps s to lower case using the optional BCP 47 tag.
func Lower(s string, tag ...string) (string, error) {
	lang, err := parseTag(tag)
	if err != nil {
		return "", err
	}
	return cases.Lower(lang).String(s), nil
}

// Title maps s to title case using the optional BCP 47 tag.
func Title(s string, tag ...string) (string, error) {
	lang, err := parseTag(tag)
	if err != nil {
		return "", err
	}
	return cases.Title(lang).String(s), nil
}

// NFC returns s in Unicode normalisation form C.
func NFC(s string) string {
	return norm.NFC.String(s)
}

// RuneLen counts the code points in s.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// Truncate shortens s to at most n code points, appending suffix when
// anything was cut. The suffix counts towards n.
func Truncate(s string, n int, suffix ...string) (string, error) {
	if n < 0 {
		return "", fmt.Errorf("truncate: negative length %d", n)
	}
	if utf8.RuneCountInString(s) <= n {
		return s, nil
	}
	tail := strings.Join(suffix, "")
	keep := n - utf8.RuneCountInString(tail)
	if keep < 0 {
		keep = 0
		tail = string([]rune(tail)[:n])
	}
	return string([]rune(s)[:keep]) + tail, nil
}

func parseTag(tag []string) (language.Tag, error) {
	switch len(tag) {
	case 0:
		return language.Und, nil
	case 1:
		lang, err := language.Parse(tag[0])
		if err != nil {
			return language.Und, fmt.Errorf("invalid language tag %q: %w", tag[0], err)
		}
		return lang, nil
	}
	return language.Und, fmt.Errorf("expects at most one language tag, got %d", len(tag))
}
