package nsapi

// RawUser はNetSapiens APIのユーザーレコードを表す。
// 未設定のフィールドは空文字列のままとなり、取り込み境界
// （directory.EntryFromRaw）で明示的にデフォルト処理される。
type RawUser struct {
	User        string `json:"user"`
	ServiceCode string `json:"service-code"`
	FirstName   string `json:"name-first-name"`
	LastName    string `json:"name-last-name"`
	Department  string `json:"department"`
	Site        string `json:"site"`

	// フィールド名の綴りはAPI側の誤記（annouce）そのまま
	DirectoryEnabled string `json:"directory-annouce-in-dial-by-name-enabled"`
}
