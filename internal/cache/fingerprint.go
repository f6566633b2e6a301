package cache

import (
	"crypto/md5"
	"encoding/hex"
	"sort"
	"strings"
)

// Fingerprint はクエリ条件からキャッシュキーの元になる文字列を生成する。
// site/departmentの指定順序が違っても同じクエリとして扱えるよう、
// それぞれソートしたコピーを使う。
func Fingerprint(domain string, sites, departments []string) string {
	sortedSites := append([]string(nil), sites...)
	sort.Strings(sortedSites)
	sortedDepts := append([]string(nil), departments...)
	sort.Strings(sortedDepts)

	return domain + "|" + strings.Join(sortedSites, ",") + "|" + strings.Join(sortedDepts, ",")
}

// hashKey はフィンガープリントをValkeyキーに使う固定長のハッシュへ変換する。
func hashKey(fingerprint string) string {
	sum := md5.Sum([]byte(fingerprint))
	return hex.EncodeToString(sum[:])
}
