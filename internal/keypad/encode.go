// Package keypad は名前から電話キーパッドの数字列への変換を提供する。
package keypad

// digitForLetter は標準的な電話キーパッドの文字→数字マッピング。
// 2=ABC 3=DEF 4=GHI 5=JKL 6=MNO 7=PQRS 8=TUV 9=WXYZ
var digitForLetter = [26]byte{
	'2', '2', '2', // A B C
	'3', '3', '3', // D E F
	'4', '4', '4', // G H I
	'5', '5', '5', // J K L
	'6', '6', '6', // M N O
	'7', '7', '7', '7', // P Q R S
	'8', '8', '8', // T U V
	'9', '9', '9', '9', // W X Y Z
}

// Encode は名前をキーパッド数字列に変換する。
// 大文字小文字を区別せず、A-Z以外の文字（空白・記号・ダイアクリティカル
// マーク付き文字など）は数字に置き換えず単に捨てる。常に成功する。
func Encode(name string) string {
	buf := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'A' && c <= 'Z':
			buf = append(buf, digitForLetter[c-'A'])
		case c >= 'a' && c <= 'z':
			buf = append(buf, digitForLetter[c-'a'])
		}
	}
	return string(buf)
}
