// Package respdoc はPBXへ返す通話制御XMLドキュメントの組み立てを提供する。
package respdoc

import (
	"strings"
)

// ContentTypeXML は制御ドキュメントのContent-Type
const ContentTypeXML = "application/xml"

// validLanguages は受け付けるBCP-47言語コード。一覧外はen-USに落とす。
var validLanguages = map[string]struct{}{
	"en-US": {}, "en-GB": {}, "en-AU": {}, "en-CA": {}, "en-IN": {},
	"es-ES": {}, "es-MX": {}, "es-US": {},
	"fr-FR": {}, "fr-CA": {},
	"de-DE": {}, "de-AT": {}, "de-CH": {},
	"it-IT": {},
	"pt-BR": {}, "pt-PT": {},
	"nl-NL": {},
	"ja-JP": {},
	"ko-KR": {},
	"zh-CN": {}, "zh-TW": {},
	"ru-RU": {},
	"pl-PL": {},
	"sv-SE": {},
	"da-DK": {},
	"no-NO": {},
	"fi-FI": {},
}

// Voice は読み上げの言語・話者設定。
type Voice struct {
	Language string
	Name     string
}

// NewVoice は入力を検証済みのVoiceに正規化する。
// 言語は許可リスト外ならen-US、話者はmale/female/ボイスID風の
// 文字列以外ならfemaleに落とす。
func NewVoice(language, voice string) Voice {
	return Voice{
		Language: validateLanguage(language),
		Name:     validateVoiceName(voice),
	}
}

func validateLanguage(language string) string {
	if _, ok := validLanguages[language]; ok {
		return language
	}
	return "en-US"
}

func validateVoiceName(voice string) string {
	voice = strings.ToLower(strings.TrimSpace(voice))
	if voice == "male" || voice == "female" {
		return voice
	}
	// ハイフンか数字を含むものはボイスIDとしてそのまま通す
	if strings.ContainsAny(voice, "-0123456789") {
		return voice
	}
	return "female"
}
