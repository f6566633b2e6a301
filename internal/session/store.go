package session

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/jeremyapple/netsapiens-dialbyname-directory/internal/config"
	"github.com/jeremyapple/netsapiens-dialbyname-directory/internal/model"
	"github.com/jeremyapple/netsapiens-dialbyname-directory/internal/store"
)

// センチネルエラー
var (
	// ErrSessionNotFound はセッションが存在しない場合のエラー
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionInvalid は保存データが復元できない場合のエラー
	ErrSessionInvalid = errors.New("session data is invalid")
)

// Store は通話セッションの永続化の契約。
type Store interface {
	// Get は通話IDに対応するセッションを取得する。
	// 存在しない場合はErrSessionNotFoundを返す。
	Get(ctx context.Context, callID string) (*Call, error)

	// Save はセッションを保存しTTLを更新する。
	Save(ctx context.Context, callID string, call *Call) error

	// Clear はセッションを削除する。存在しない場合もエラーにしない。
	Clear(ctx context.Context, callID string) error
}

// ハッシュフィールド名
const (
	fieldState           = "state"
	fieldDigits          = "digits"
	fieldMatches         = "matches"
	fieldPage            = "page"
	fieldReturnTo        = "return_to"
	fieldReturnToChecked = "return_to_checked"
)

// ValkeyStore はValkeyハッシュをバックエンドとするStore実装。
type ValkeyStore struct {
	vc *store.ValkeyClient
}

// NewValkeyStore は新しいValkeyStoreを生成する。
func NewValkeyStore(vc *store.ValkeyClient) *ValkeyStore {
	return &ValkeyStore{vc: vc}
}

func sessionKey(callID string) string {
	return store.KeyPrefixSession + callID
}

// Get は通話セッションをValkeyハッシュから復元する。
func (s *ValkeyStore) Get(ctx context.Context, callID string) (*Call, error) {
	fields, err := s.vc.Client().HGetAll(ctx, sessionKey(callID)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, ErrSessionNotFound
	}

	call := &Call{
		State:             State(fields[fieldState]),
		AccumulatedDigits: fields[fieldDigits],
		ReturnTo:          fields[fieldReturnTo],
		ReturnToChecked:   fields[fieldReturnToChecked] == "1",
	}

	if page, err := strconv.Atoi(fields[fieldPage]); err == nil {
		call.CurrentPage = page
	}

	if raw := fields[fieldMatches]; raw != "" {
		var matches []model.Entry
		if err := json.Unmarshal([]byte(raw), &matches); err != nil {
			return nil, ErrSessionInvalid
		}
		call.AllMatches = matches
	}

	switch call.State {
	case StateInitial, StateSearching, StateSelecting:
	default:
		return nil, ErrSessionInvalid
	}

	return call, nil
}

// Save はセッションをハッシュに書き込みTTLを設定する。
func (s *ValkeyStore) Save(ctx context.Context, callID string, call *Call) error {
	matches, err := json.Marshal(call.AllMatches)
	if err != nil {
		return err
	}

	checked := "0"
	if call.ReturnToChecked {
		checked = "1"
	}

	key := sessionKey(callID)
	pipe := s.vc.Client().Pipeline()
	pipe.HSet(ctx, key, map[string]any{
		fieldState:           string(call.State),
		fieldDigits:          call.AccumulatedDigits,
		fieldMatches:         string(matches),
		fieldPage:            strconv.Itoa(call.CurrentPage),
		fieldReturnTo:        call.ReturnTo,
		fieldReturnToChecked: checked,
	})
	pipe.Expire(ctx, key, config.CallSessionTTL)
	_, err = pipe.Exec(ctx)
	return err
}

// Clear はセッションを削除する。
func (s *ValkeyStore) Clear(ctx context.Context, callID string) error {
	return s.vc.Client().Del(ctx, sessionKey(callID)).Err()
}

// List は保存中の通話IDの一覧を返す（管理用）。
func (s *ValkeyStore) List(ctx context.Context) ([]string, error) {
	var ids []string
	var cursor uint64
	for {
		keys, next, err := s.vc.Client().Scan(ctx, cursor, store.KeyPrefixSession+"*", 100).Result()
		if err != nil {
			return nil, err
		}
		for _, key := range keys {
			ids = append(ids, key[len(store.KeyPrefixSession):])
		}
		if next == 0 {
			return ids, nil
		}
		cursor = next
	}
}
