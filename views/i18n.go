package views

import "github.com/eringen/folio"

var texts = map[folio.Locale]map[string]string{
	folio.LocaleEN: {
		"blog":            "Blog",
		"allPosts":        "All posts",
		"noPosts":         "No posts yet.",
		"related":         "Related posts",
		"by":              "by",
		"notFound":        "Page not found",
		"notFoundBody":    "The page you are looking for does not exist in this language.",
		"unavailable":     "Temporarily unavailable",
		"unavailableBody": "The blog is temporarily unavailable. Please try again later.",
		"serverError":     "Something went wrong",
		"serverErrorBody": "An unexpected error occurred. Please try again later.",
		"backHome":        "Back to the blog",
		"feed":            "RSS feed",
	},
	folio.LocaleRU: {
		"blog":            "Блог",
		"allPosts":        "Все записи",
		"noPosts":         "Записей пока нет.",
		"related":         "Похожие записи",
		"by":              "автор:",
		"notFound":        "Страница не найдена",
		"notFoundBody":    "Запрошенной страницы нет на этом языке.",
		"unavailable":     "Временно недоступно",
		"unavailableBody": "Блог временно недоступен. Попробуйте позже.",
		"serverError":     "Что-то пошло не так",
		"serverErrorBody": "Произошла непредвиденная ошибка. Попробуйте позже.",
		"backHome":        "Вернуться в блог",
		"feed":            "RSS-лента",
	},
}

// translate looks key up for locale, then in English, then returns key.
func translate(locale folio.Locale, key string) string {
	if s, ok := texts[locale][key]; ok {
		return s
	}
	if s, ok := texts[folio.LocaleEN][key]; ok {
		return s
	}
	return key
}
