package directory

import (
	"strings"

	"github.com/jeremyapple/netsapiens-dialbyname-directory/internal/keypad"
	"github.com/jeremyapple/netsapiens-dialbyname-directory/internal/model"
	"github.com/jeremyapple/netsapiens-dialbyname-directory/internal/nsapi"
)

// systemServicePrefix が付くユーザーはシステム用途（AA、キュー等）で掲載対象外
const systemServicePrefix = "system-"

// EntryFromRaw はAPIユーザーレコードをディレクトリエントリへ変換する。
// 掲載対象外のユーザーは (zero, false) を返す。
//
// 掲載条件:
//   - service-codeが "system-" で始まらない
//   - ディレクトリ掲載フラグが "yes"
//   - 内線番号と姓名のいずれかが存在する
func EntryFromRaw(raw nsapi.RawUser) (model.Entry, bool) {
	if strings.HasPrefix(strings.ToLower(raw.ServiceCode), systemServicePrefix) {
		return model.Entry{}, false
	}
	if strings.ToLower(strings.TrimSpace(raw.DirectoryEnabled)) != "yes" {
		return model.Entry{}, false
	}

	first := strings.TrimSpace(raw.FirstName)
	last := strings.TrimSpace(raw.LastName)
	ext := strings.TrimSpace(raw.User)
	if ext == "" || (first == "" && last == "") {
		return model.Entry{}, false
	}

	return model.Entry{
		Extension:   ext,
		FirstName:   first,
		LastName:    last,
		FullName:    strings.TrimSpace(first + " " + last),
		Department:  strings.TrimSpace(raw.Department),
		Site:        strings.TrimSpace(raw.Site),
		FirstDigits: keypad.Encode(first),
		LastDigits:  keypad.Encode(last),
	}, true
}
