// Package locale выбирает язык ответа по заголовку Accept-Language и
// переводит пользовательские сообщения. Язык живет в context.Context запроса.
package locale

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const HeaderAcceptLanguage = "Accept-Language"

var (
	English = language.English
	Russian = language.Russian

	// Default - язык по умолчанию, если в контексте ничего не выставлено
	Default = Russian
)

var supported = map[string]language.Tag{
	"en": English,
	"ru": Russian,
}

type ctxKey struct{}

// Parse возвращает поддерживаемый тег для строки "en"/"ru"
func Parse(value string) (language.Tag, bool) {
	tag, ok := supported[strings.ToLower(strings.TrimSpace(value))]
	return tag, ok
}

// Resolve выбирает язык по значению заголовка, иначе fallback
func Resolve(header string, fallback language.Tag) language.Tag {
	if tag, ok := Parse(header); ok {
		return tag
	}
	return fallback
}

func WithTag(ctx context.Context, tag language.Tag) context.Context {
	return context.WithValue(ctx, ctxKey{}, tag)
}

func FromContext(ctx context.Context) language.Tag {
	if tag, ok := ctx.Value(ctxKey{}).(language.Tag); ok {
		return tag
	}
	return Default
}

// Middleware кладет выбранный язык в контекст запроса
func Middleware(fallback language.Tag) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tag := Resolve(r.Header.Get(HeaderAcceptLanguage), fallback)
			w.Header().Set("Content-Language", tag.String())
			next.ServeHTTP(w, r.WithContext(WithTag(r.Context(), tag)))
		})
	}
}

func printer(ctx context.Context) *message.Printer {
	return message.NewPrinter(FromContext(ctx), message.Catalog(messageCatalog))
}

// T переводит ключ сообщения на язык из контекста
func T(ctx context.Context, key string, args ...any) string {
	return printer(ctx).Sprintf(key, args...)
}
