package nsapi

// HTTPヘッダ名
const (
	HeaderAuthorization = "Authorization"
	HeaderAccept        = "Accept"
)

// Content-Type
const (
	ContentTypeJSON = "application/json"
)

// オートアテンダントを示すservice-codeプレフィックス
const serviceCodeAutoAttendant = "system-aa"
