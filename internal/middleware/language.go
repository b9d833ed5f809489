// Package middleware provides HTTP middleware for request language
// detection, rate limiting and timeouts.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyLanguageCode holds the detected content language code.
const ContextKeyLanguageCode ContextKey = "language_code"

// LanguageCookieName is the cookie name for language preference.
const LanguageCookieName = "mm_lang"

// Language creates middleware that detects the active content language.
// Priority order:
// 1. Query parameter ?lang=XX (the first one if repeated)
// 2. Cookie preference
// 3. Accept-Language header
// 4. defaultLang
//
// Only codes from languages are accepted; matching is case-insensitive.
func Language(languages []string, defaultLang string) func(http.Handler) http.Handler {
	langMap := make(map[string]string, len(languages))
	tags := make([]language.Tag, 0, len(languages))
	codes := make([]string, 0, len(languages))
	for _, code := range languages {
		tag, err := language.Parse(code)
		if err != nil {
			continue
		}
		langMap[strings.ToLower(code)] = code
		tags = append(tags, tag)
		codes = append(codes, code)
	}
	matcher := language.NewMatcher(tags)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			code := defaultLang

			if q := r.URL.Query().Get("lang"); q != "" {
				if lang, ok := langMap[strings.ToLower(q)]; ok {
					next.ServeHTTP(w, r.WithContext(withLanguage(r.Context(), lang)))
					return
				}
			}

			if cookie, err := r.Cookie(LanguageCookieName); err == nil {
				if lang, ok := langMap[strings.ToLower(cookie.Value)]; ok {
					next.ServeHTTP(w, r.WithContext(withLanguage(r.Context(), lang)))
					return
				}
			}

			if accept := r.Header.Get("Accept-Language"); accept != "" && len(tags) > 0 {
				if lang, ok := matchAcceptLanguage(matcher, codes, accept); ok {
					code = lang
				}
			}

			next.ServeHTTP(w, r.WithContext(withLanguage(r.Context(), code)))
		})
	}
}

// matchAcceptLanguage returns the configured language best matching the
// Accept-Language header.
func matchAcceptLanguage(matcher language.Matcher, codes []string, accept string) (string, bool) {
	desired, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(desired) == 0 {
		return "", false
	}
	_, idx, conf := matcher.Match(desired...)
	if conf == language.No || idx < 0 || idx >= len(codes) {
		return "", false
	}
	return codes[idx], true
}

func withLanguage(ctx context.Context, code string) context.Context {
	return context.WithValue(ctx, ContextKeyLanguageCode, code)
}

// GetLanguageCode returns the detected language code, or "" if the
// middleware did not run.
func GetLanguageCode(r *http.Request) string {
	code, _ := r.Context().Value(ContextKeyLanguageCode).(string)
	return code
}

// SetLanguageCookie sets the language preference cookie.
func SetLanguageCookie(w http.ResponseWriter, langCode string) {
	http.SetCookie(w, &http.Cookie{
		Name:     LanguageCookieName,
		Value:    langCode,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60, // 1 year
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
