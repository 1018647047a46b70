package i18n

// Translator retrieves localized titles for error codes. data provides
// optional metadata to embed in the message (for example, "type" or
// "member").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "invalid_type":
			return "型が不正です"
		case "invalid_value":
			return "値が不正です"
		case "required":
			return "必須メンバーが不足しています"
		case "read_only":
			return "読み取り専用のメンバーです"
		case "unknown_member":
			return "未知のメンバーです"
		case "duplicate_member":
			return "重複するメンバーです"
		case "unknown_type":
			return "未知のリソース型です"
		case "invalid_identifier":
			return "リソース識別子が不正です"
		case "validation_error":
			return "検証エラー"
		case "unsupported_media_type":
			return "サポートされないメディアタイプです"
		}
	default: // "en"
		switch code {
		case "invalid_type":
			return "invalid type"
		case "invalid_value":
			return "invalid value"
		case "required":
			return "required member missing"
		case "read_only":
			return "member is read only"
		case "unknown_member":
			return "unknown member"
		case "duplicate_member":
			return "duplicate member"
		case "unknown_type":
			return "unknown resource type"
		case "invalid_identifier":
			return "invalid resource identifier"
		case "validation_error":
			return "validation error"
		case "unsupported_media_type":
			return "unsupported media type"
		}
	}
	return code
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
