// Package model はアプリケーション全体で共有されるデータ型を提供する。
package model

// Entry はディレクトリ掲載対象の1ユーザーを表す。
// FirstDigits/LastDigits は名前から導出されるキーパッド数字列で、
// 名前と独立に保存・変更してはならない。
type Entry struct {
	Extension   string `json:"extension"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	FullName    string `json:"full_name"`
	Department  string `json:"department"`
	Site        string `json:"site"`
	FirstDigits string `json:"first_digits"`
	LastDigits  string `json:"last_digits"`
}
