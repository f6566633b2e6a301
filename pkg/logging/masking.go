// Package logging はログ関連のユーティリティを提供する。
package logging

// MaskNumber は電話番号をマスキングする。
// 例: 12135551234 → 121*******4
// enabled=false の場合はマスキングせずにそのまま返す。
func MaskNumber(number string, enabled bool) string {
	if !enabled {
		return number
	}
	return MaskPartial(number, 3, 1, '*')
}

// MaskPartial は文字列の一部をマスキングする。
// keepPrefix: 先頭から保持する文字数
// keepSuffix: 末尾から保持する文字数
// maskChar: マスキングに使用する文字
func MaskPartial(s string, keepPrefix, keepSuffix int, maskChar rune) string {
	runes := []rune(s)
	length := len(runes)

	// 文字列が短すぎる場合はそのまま返す
	if length <= keepPrefix+keepSuffix {
		return s
	}

	result := make([]rune, length)

	for i := 0; i < keepPrefix; i++ {
		result[i] = runes[i]
	}
	for i := keepPrefix; i < length-keepSuffix; i++ {
		result[i] = maskChar
	}
	for i := length - keepSuffix; i < length; i++ {
		result[i] = runes[i]
	}

	return string(result)
}

// Masker はマスキング設定を保持する構造体。
type Masker struct {
	enabled bool
}

// NewMasker は新しいMaskerを生成する。
func NewMasker(enabled bool) *Masker {
	return &Masker{enabled: enabled}
}

// Number は電話番号をマスキングする。
func (m *Masker) Number(number string) string {
	return MaskNumber(number, m.enabled)
}

// IsEnabled はマスキングが有効かどうかを返す。
func (m *Masker) IsEnabled() bool {
	return m.enabled
}
